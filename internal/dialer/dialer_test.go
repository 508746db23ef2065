package dialer

import (
	"context"
	"crypto/tls"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticHosts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(r.Host))
	}))
	defer server.Close()
	_, port, err := net.SplitHostPort(server.Listener.Addr().String())
	require.NoError(t, err)

	d := &CoreDialer{ResolveConfig: &ResolveConfig{
		StaticHosts: map[string]string{"service.internal": "127.0.0.1"},
	}}
	conn, err := d.DialContext(context.Background(), "tcp", net.JoinHostPort("service.internal", port))
	require.NoError(t, err)
	conn.Close()
}

func TestTransportProxy(t *testing.T) {
	d := &CoreDialer{GetProxy: StaticProxy("http://proxy.local:3128")}
	tr, err := d.Transport()
	require.NoError(t, err)

	req := httptest.NewRequest("GET", "http://example.com/", nil)
	u, err := tr.Proxy(req)
	require.NoError(t, err)
	assert.Equal(t, &url.URL{Scheme: "http", Host: "proxy.local:3128"}, u)

	direct, err := (&CoreDialer{}).Transport()
	require.NoError(t, err)
	u, err = direct.Proxy(req)
	require.NoError(t, err)
	assert.Nil(t, u)
}

func TestTransportNegotiatesH2(t *testing.T) {
	tr, err := (&CoreDialer{TLSConfig: &tls.Config{}}).Transport()
	require.NoError(t, err)
	assert.Contains(t, tr.TLSClientConfig.NextProtos, "h2")
}

func TestClone(t *testing.T) {
	d := &CoreDialer{
		ResolveConfig: &ResolveConfig{Network: "ip4", StaticHosts: map[string]string{"a": "127.0.0.1"}},
		TLSConfig:     &tls.Config{ServerName: "a"},
	}
	c := d.Clone()
	c.ResolveConfig.Network = "ip6"
	c.ResolveConfig.StaticHosts["a"] = "10.0.0.1"
	c.TLSConfig.ServerName = "b"
	assert.Equal(t, "ip4", d.ResolveConfig.Network)
	assert.Equal(t, "127.0.0.1", d.ResolveConfig.StaticHosts["a"])
	assert.Equal(t, "a", d.TLSConfig.ServerName)

	var nilDialer *CoreDialer
	assert.Nil(t, nilDialer.Clone())
}
