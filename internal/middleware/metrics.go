package middleware

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/frankli0324/go-xhr/internal/http"
)

type Metrics struct {
	exchanges *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewMetrics registers the exchange collectors on reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		exchanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "xhr",
			Name:      "exchanges_total",
			Help:      "Settled exchanges by method and outcome.",
		}, []string{"method", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "xhr",
			Name:      "exchange_duration_seconds",
			Help:      "Time from dispatch until an exchange settled.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
	}
	for _, c := range []prometheus.Collector{m.exchanges, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) Middleware() http.Middleware {
	return func(next http.Handler) http.Handler {
		return func(ctx context.Context, req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			m.duration.WithLabelValues(req.Method).Observe(time.Since(start).Seconds())
			m.exchanges.WithLabelValues(req.Method, outcome(err)).Inc()
			return resp, err
		}
	}
}
