package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Spok95/skedule/internal/ctxutil"
	"github.com/Spok95/skedule/internal/logging"
)

const ctxKeyAccess = "access_level"

var (
	errTokenMissing = echo.NewHTTPError(http.StatusUnauthorized, "missing bearer token")
	errTokenInvalid = echo.NewHTTPError(http.StatusUnauthorized, "invalid token")
)

// Claims: полезная нагрузка сервисного токена.
type Claims struct {
	Access int `json:"access"`
	jwt.RegisteredClaims
}

// MintToken выпускает HS256-токен с уровнем доступа; ttl <= 0: без срока.
func MintToken(secret []byte, level Level, ttl time.Duration, now time.Time) (string, error) {
	if len(secret) == 0 {
		return "", errors.New("jwt: empty secret")
	}
	claims := Claims{
		Access: int(level),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  level.String(),
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return tok, nil
}

// ParseToken проверяет подпись и срок и возвращает уровень доступа.
func ParseToken(secret []byte, raw string) (Level, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return 0, err
	}
	if !tok.Valid {
		return 0, errors.New("token is not valid")
	}
	return Level(claims.Access), nil
}

func bearer(c echo.Context) string {
	authz := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
	if len(authz) < 7 || !strings.EqualFold(authz[:7], "bearer ") {
		return ""
	}
	return strings.TrimSpace(authz[7:])
}

// authJWT кладёт уровень доступа в echo.Context и в context запроса.
func authJWT(secret []byte) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearer(c)
			if raw == "" {
				return errTokenMissing
			}
			level, err := ParseToken(secret, raw)
			if err != nil {
				return errTokenInvalid.WithInternal(err)
			}
			c.Set(ctxKeyAccess, level)

			ctx := ctxutil.WithAccess(c.Request().Context(), int(level))
			l := logging.From(ctx, nil).With(zap.String("access", level.String()))
			c.SetRequest(c.Request().WithContext(logging.With(ctx, l)))
			return next(c)
		}
	}
}
