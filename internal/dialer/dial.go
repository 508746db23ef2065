package dialer

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/net/http2"
)

var zeroDialer = net.Dialer{Timeout: 30 * time.Second, KeepAlive: 30 * time.Second}
var customDnsDialer = net.Dialer{
	Timeout:   30 * time.Second,
	KeepAlive: 30 * time.Second,
	Resolver:  &customServerResolver,
}

// DialContext dials addr honoring the resolver settings of d.
func (d *CoreDialer) DialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	cfg := d.ResolveConfig
	if cfg == nil {
		return zeroDialer.DialContext(ctx, network, addr)
	}

	dialer, dst := &zeroDialer, addr
	if network == "tcp" {
		if cfg.Network == "ip4" {
			network = "tcp4"
		} else if cfg.Network == "ip6" {
			network = "tcp6"
		}
	}
	if static, ok := cfg.StaticHosts[host]; ok {
		dst = net.JoinHostPort(static, port)
	}
	if dns := cfg.CustomDNSServer; dns != "" {
		ctx = dnsServerCtx{ctx, dns}
		dialer = &customDnsDialer
	}
	return dialer.DialContext(ctx, network, dst)
}

func (d *CoreDialer) proxy(r *http.Request) (*url.URL, error) {
	if d.GetProxy == nil {
		return nil, nil
	}
	p, err := d.GetProxy(r.Context(), r.URL)
	if err != nil || p == "" {
		return nil, err
	}
	return url.Parse(p)
}

// Transport builds the round tripper the default primitive sends through.
// HTTP/2 is negotiated over TLS when the server offers it.
func (d *CoreDialer) Transport() (*http.Transport, error) {
	tlsCfg := d.TLSConfig.Clone()
	if tlsCfg == nil {
		tlsCfg = &tls.Config{}
	}
	t := &http.Transport{
		Proxy:                 d.proxy,
		DialContext:           d.DialContext,
		TLSClientConfig:       tlsCfg,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: time.Second,
		IdleConnTimeout:       90 * time.Second,
	}
	if err := http2.ConfigureTransport(t); err != nil {
		return nil, err
	}
	return t, nil
}
