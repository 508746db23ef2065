package dialer

import (
	"context"
	"crypto/tls"
	"net/url"
)

// CoreDialer holds everything related to reaching a server for the default
// primitive: resolver settings, proxy selection and TLS configuration. It
// holds no connection state and can be swapped out freely.
type CoreDialer struct {
	ResolveConfig *ResolveConfig

	TLSConfig *tls.Config // the config to use

	// GetProxy returns the proxy URL for a request, or "" to go direct.
	GetProxy func(ctx context.Context, u *url.URL) (string, error)
}

func (d *CoreDialer) Clone() *CoreDialer {
	if d == nil {
		return nil
	}
	return &CoreDialer{
		ResolveConfig: d.ResolveConfig.Clone(),
		TLSConfig:     d.TLSConfig.Clone(),
		GetProxy:      d.GetProxy,
	}
}

// StaticProxy returns a GetProxy func that sends everything through proxy.
func StaticProxy(proxy string) func(context.Context, *url.URL) (string, error) {
	return func(context.Context, *url.URL) (string, error) {
		return proxy, nil
	}
}
