package internal

import (
	"context"
	"sync"

	"github.com/frankli0324/go-xhr/internal/engine"
	"github.com/frankli0324/go-xhr/internal/http"
	"github.com/frankli0324/go-xhr/internal/transport"
)

type Handler = http.Handler
type Middleware = http.Middleware

type Client struct {
	middlewares []Middleware
	transport   transport.Transport
}

// Use appends mws to the chain. Middlewares run in the order they were
// added, the first one seeing the request first.
func (c *Client) Use(mws ...Middleware) {
	c.middlewares = append(c.middlewares, mws...)
}

// UseTransport replaces the transport requests are executed with.
func (c *Client) UseTransport(t transport.Transport) {
	c.transport = t
}

var (
	defaultTransport     transport.Transport
	defaultTransportOnce sync.Once
)

func (c *Client) getTransport() transport.Transport {
	if c.transport != nil {
		return c.transport
	}
	defaultTransportOnce.Do(func() {
		a := &transport.Adapter{}
		if e, err := engine.New(nil); err == nil {
			a.Engine = e.Factory()
		} // without an engine every exchange rejects with transport-not-available
		defaultTransport = a
	})
	return defaultTransport
}

// CtxDo runs req through the middleware chain and the transport. When ctx
// is done before the exchange settles, req is canceled.
func (c *Client) CtxDo(ctx context.Context, req *http.Request) (*http.Response, error) {
	if req == nil {
		req = &http.Request{}
	}
	t := c.getTransport()
	next := func(ctx context.Context, req *http.Request) (*http.Response, error) {
		f := t.Execute(req)
		select {
		case <-f.Done():
		case <-ctx.Done():
			req.Cancel()
			<-f.Done()
		}
		return f.Wait(context.Background())
	}
	for i := len(c.middlewares) - 1; i >= 0; i-- {
		next = c.middlewares[i](next)
	}
	return next(ctx, req)
}

// Do is CtxDo with a background context.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.CtxDo(context.Background(), req)
}
