package internal

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/frankli0324/go-xhr/internal/config"
	"github.com/frankli0324/go-xhr/internal/engine"
	"github.com/frankli0324/go-xhr/internal/middleware"
	"github.com/frankli0324/go-xhr/internal/transport"
)

// NewClient assembles a client from cfg. The middleware chain is, from the
// outside in: logging, metrics (when reg is non-nil and cfg enables them),
// throttling and default headers. A nil log disables logging.
func NewClient(cfg *config.Config, log *zap.Logger, reg prometheus.Registerer) (*Client, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	e, err := engine.New(cfg.CoreDialer())
	if err != nil {
		return nil, err
	}
	e.SetLogger(log.Named("engine"))

	c := &Client{}
	c.UseTransport(&transport.Adapter{
		Engine: e.Factory(),
		Quirks: cfg.Quirks(),
		Logger: log.Named("transport"),
	})
	c.Use(middleware.Logging(log.Named("client")))
	if cfg.Metrics && reg != nil {
		m, err := middleware.NewMetrics(reg)
		if err != nil {
			return nil, err
		}
		c.Use(m.Middleware())
	}
	if cfg.Client.RateLimit > 0 {
		burst := cfg.Client.RateBurst
		if burst < 1 {
			burst = 1
		}
		c.Use(middleware.Throttle(rate.NewLimiter(rate.Limit(cfg.Client.RateLimit), burst)))
	}
	if len(cfg.Client.DefaultHeaders) > 0 {
		c.Use(middleware.DefaultHeaders(cfg.Client.DefaultHeaders))
	}
	if cfg.Client.Timeout > 0 {
		c.Use(middleware.Timeout(cfg.Client.Timeout))
	}
	return c, nil
}
