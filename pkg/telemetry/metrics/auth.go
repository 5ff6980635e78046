package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/fortitude-run/fortitude/pkg/config"
)

// authMetrics tracks pkg/auth.Authenticator outcomes.
type authMetrics struct {
	rateLimitRejections prometheus.Counter
	authFailures        *prometheus.CounterVec
}

func newAuthMetrics(cfg *config.MetricsConfig, registry *prometheus.Registry) *authMetrics {
	m := &authMetrics{
		rateLimitRejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "auth_rate_limit_rejections_total",
			Help:      "Total number of requests rejected for exceeding the per-client rate limit",
		}),
		authFailures: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "auth_failures_total",
				Help:      "Total number of failed authentication attempts, by reason",
			},
			[]string{"reason"},
		),
	}

	registry.MustRegister(m.rateLimitRejections, m.authFailures)
	return m
}
