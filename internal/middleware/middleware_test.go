package middleware

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/time/rate"

	"github.com/frankli0324/go-xhr/internal/http"
)

func ok(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req.Method == "" {
		req.Method = "GET"
	}
	return &http.Response{ID: "id", Request: req, Status: &http.Status{Code: 200}}, nil
}

func canceled(ctx context.Context, req *http.Request) (*http.Response, error) {
	req.Method = "GET"
	resp := &http.Response{Request: req, Error: http.ErrCanceled}
	return resp, &http.ResponseError{Response: resp}
}

func TestThrottle(t *testing.T) {
	h := Throttle(rate.NewLimiter(rate.Every(time.Hour), 1))(ok)

	_, err := h(context.Background(), &http.Request{})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	resp, err := h(ctx, &http.Request{})
	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestDefaultHeaders(t *testing.T) {
	h := DefaultHeaders(map[string]string{"User-Agent": "go-xhr", "Accept": "*/*"})(ok)
	req := &http.Request{Headers: map[string]string{"Accept": "application/json"}}
	_, err := h(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"User-Agent": "go-xhr", "Accept": "application/json"}, req.Headers)
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	log := zap.New(core)

	_, err := Logging(log)(ok)(context.Background(), &http.Request{Path: "/a"})
	require.NoError(t, err)
	_, err = Logging(log)(canceled)(context.Background(), &http.Request{Path: "/b"})
	require.Error(t, err)

	entries := logs.AllUntimed()
	require.Len(t, entries, 2)
	assert.Equal(t, "request_done", entries[0].Message)
	assert.Equal(t, int64(200), entries[0].ContextMap()["status"])
	assert.Equal(t, "request_failed", entries[1].Message)
	assert.Equal(t, "canceled", entries[1].ContextMap()["kind"])
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	require.NoError(t, err)

	h := m.Middleware()
	_, _ = h(ok)(context.Background(), &http.Request{})
	_, _ = h(ok)(context.Background(), &http.Request{})
	_, _ = h(canceled)(context.Background(), &http.Request{})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.exchanges.WithLabelValues("GET", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.exchanges.WithLabelValues("GET", "canceled")))

	_, err = NewMetrics(reg)
	assert.Error(t, err, "collectors can only be registered once")
}

func TestOutcome(t *testing.T) {
	assert.Equal(t, "ok", outcome(nil))
	assert.Equal(t, "loaderror", outcome(&http.ResponseError{Response: &http.Response{Error: http.ErrLoad}}))
	assert.Equal(t, "context", outcome(context.DeadlineExceeded))
	assert.Equal(t, "error", outcome(errors.New("x")))
}

func TestTimeout(t *testing.T) {
	h := Timeout(10 * time.Millisecond)(func(ctx context.Context, req *http.Request) (*http.Response, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	})
	_, err := h(context.Background(), &http.Request{})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
