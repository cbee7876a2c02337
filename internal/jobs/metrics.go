package jobs

import "github.com/prometheus/client_golang/prometheus"

var (
	jobRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skedule",
			Name:      "job_runs_total",
			Help:      "Total background job runs",
		},
		[]string{"job"},
	)

	jobErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "skedule",
			Name:      "job_errors_total",
			Help:      "Total background job errors",
		},
		[]string{"job"},
	)

	jobDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "skedule",
			Name:      "job_duration_seconds",
			Help:      "Background job duration in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"job"},
	)

	premiumExpired = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skedule",
		Name:      "premium_expired_total",
		Help:      "Accounts moved back to basic status after subscription end",
	})
)

func init() {
	prometheus.MustRegister(jobRuns, jobErrors, jobDuration, premiumExpired)
}
