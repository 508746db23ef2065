// package middleware contains interceptors for [internal.Client].
package middleware

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/frankli0324/go-xhr/internal/http"
)

// Throttle delays requests so that they start no faster than l allows.
// A request whose context ends while waiting never reaches the transport.
func Throttle(l *rate.Limiter) http.Middleware {
	return func(next http.Handler) http.Handler {
		return func(ctx context.Context, req *http.Request) (*http.Response, error) {
			if err := l.Wait(ctx); err != nil {
				return nil, err
			}
			return next(ctx, req)
		}
	}
}

// DefaultHeaders adds headers missing from the request. Header names are
// matched exactly, the way they are forwarded to the primitive.
func DefaultHeaders(headers map[string]string) http.Middleware {
	return func(next http.Handler) http.Handler {
		return func(ctx context.Context, req *http.Request) (*http.Response, error) {
			if len(headers) > 0 {
				merged := make(map[string]string, len(headers)+len(req.Headers))
				for k, v := range headers {
					merged[k] = v
				}
				for k, v := range req.Headers {
					merged[k] = v
				}
				req.Headers = merged
			}
			return next(ctx, req)
		}
	}
}

// Logging logs every exchange once it settled.
func Logging(log *zap.Logger) http.Middleware {
	return func(next http.Handler) http.Handler {
		return func(ctx context.Context, req *http.Request) (*http.Response, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			fields := []zap.Field{
				zap.String("method", req.Method),
				zap.String("path", req.Path),
				zap.Duration("elapsed", time.Since(start)),
			}
			if resp != nil {
				fields = append(fields, zap.String("exchange", resp.ID))
				if resp.Status != nil {
					fields = append(fields, zap.Int("status", resp.Status.Code))
				}
			}
			if err != nil {
				log.Warn("request_failed", append(fields, zap.String("kind", outcome(err)), zap.Error(err))...)
			} else {
				log.Info("request_done", fields...)
			}
			return resp, err
		}
	}
}

// outcome names the result of an exchange for logs and metrics.
func outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var re *http.ResponseError
	if errors.As(err, &re) {
		return string(re.Response.Error)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return "context"
	}
	return "error"
}

// Timeout bounds every exchange to d. The client cancels requests whose
// context expires, so they reject with the canceled kind.
func Timeout(d time.Duration) http.Middleware {
	return func(next http.Handler) http.Handler {
		return func(ctx context.Context, req *http.Request) (*http.Response, error) {
			ctx, cancel := context.WithTimeout(ctx, d)
			defer cancel()
			return next(ctx, req)
		}
	}
}
