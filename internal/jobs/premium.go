package jobs

import "context"

const PremiumExpiryJob = "premium_expiry"

// PremiumExpirer: сервис, умеющий сбрасывать истёкшие подписки.
type PremiumExpirer interface {
	ExpirePremium(ctx context.Context) (int64, error)
}

// PremiumExpiry задача для Runner.Every.
func PremiumExpiry(svc PremiumExpirer) Job {
	return func(ctx context.Context) error {
		n, err := svc.ExpirePremium(ctx)
		if err != nil {
			return err
		}
		premiumExpired.Add(float64(n))
		return nil
	}
}
