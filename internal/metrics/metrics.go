package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skedule", Name: "http_requests_total", Help: "Processed HTTP requests",
	}, []string{"route", "code"})
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "skedule", Name: "http_request_seconds", Help: "HTTP request latency",
		Buckets: prometheus.DefBuckets,
	}, []string{"route"})
	RoleTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skedule", Name: "role_transitions_total", Help: "Role state machine transitions",
	}, []string{"op", "branch"})
	Announcements = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "skedule", Name: "announcements_total", Help: "Announcement dispatch results",
	}, []string{"result"})
	InvariantViolations = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "skedule", Name: "invariant_violations_total", Help: "Accounts found without a main role",
	})
	DBPing = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "skedule", Name: "db_ping_seconds", Help: "DB ping latency",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(HTTPRequests, HTTPDuration, RoleTransitions, Announcements, InvariantViolations, DBPing)
}

func Handler() http.Handler { return promhttp.Handler() }

func ObserveDBPing(d time.Duration) { DBPing.Observe(d.Seconds()) }

func ObserveHTTP(route string, code int, d time.Duration) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(d.Seconds())
}

func RoleTransition(op, branch string) { RoleTransitions.WithLabelValues(op, branch).Inc() }

func Announcement(result string) { Announcements.WithLabelValues(result).Inc() }
