package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
log:
  level: debug
  format: json
transport:
  no_content_1223: true
  zero_status_grace: 25ms
client:
  timeout: 3s
  default_headers:
    User-Agent: go-xhr
  rate_limit: 5
  rate_burst: 2
dialer:
  network: ip4
  static_hosts:
    example.com: 127.0.0.1
  proxy: http://127.0.0.1:8080
`

// chdir moves into dir for the duration of the test, keeping a stray .env
// file out of the way.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestLoad(t *testing.T) {
	chdir(t, t.TempDir())
	path := filepath.Join(t.TempDir(), "xhr.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sample), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 25*time.Millisecond, cfg.Transport.ZeroStatusGrace)
	assert.True(t, cfg.Transport.NoContent1223)
	assert.True(t, cfg.Transport.OptionalErrorHandler, "absent keys keep their defaults")
	assert.Equal(t, 3*time.Second, cfg.Client.Timeout)
	assert.Equal(t, map[string]string{"User-Agent": "go-xhr"}, cfg.Client.DefaultHeaders)
	assert.Equal(t, 5.0, cfg.Client.RateLimit)
	assert.Equal(t, 2, cfg.Client.RateBurst)

	d := cfg.CoreDialer()
	require.NotNil(t, d.ResolveConfig)
	assert.Equal(t, "ip4", d.ResolveConfig.Network)
	assert.Equal(t, "127.0.0.1", d.ResolveConfig.StaticHosts["example.com"])
	require.NotNil(t, d.GetProxy)
	p, err := d.GetProxy(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, "http://127.0.0.1:8080", p)
	assert.Nil(t, d.TLSConfig)
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	q := cfg.Quirks()
	assert.True(t, q.NoContent1223)
	assert.True(t, q.OptionalErrorHandler)
	assert.Equal(t, 10*time.Millisecond, q.ZeroStatusGrace)

	d := cfg.CoreDialer()
	assert.Nil(t, d.ResolveConfig)
	assert.Nil(t, d.GetProxy)
}

func TestLoadErrors(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("dialer:\n  network: ipx\n"), 0o600))
	_, err = Load(bad)
	assert.ErrorContains(t, err, "ipx")
}

func TestDotEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("XHR_LOG_LEVEL", "")
	require.NoError(t, os.Unsetenv("XHR_LOG_LEVEL"))
	require.NoError(t, os.WriteFile(".env", []byte("XHR_LOG_LEVEL=warn\n"), 0o600))

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"XHR_ZERO_STATUS_GRACE":    "1ms",
		"XHR_TIMEOUT":              "2s",
		"XHR_RATE_BURST":           "4",
		"XHR_INSECURE_SKIP_VERIFY": "true",
		"XHR_METRICS":              "1",
	}
	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(func(k string) string { return env[k] }))
	assert.Equal(t, time.Millisecond, cfg.Transport.ZeroStatusGrace)
	assert.Equal(t, 2*time.Second, cfg.Client.Timeout)
	assert.Equal(t, 4, cfg.Client.RateBurst)
	assert.True(t, cfg.Metrics)
	assert.True(t, cfg.CoreDialer().TLSConfig.InsecureSkipVerify)

	env["XHR_TIMEOUT"] = "soon"
	assert.ErrorContains(t, Default().ApplyEnv(func(k string) string { return env[k] }), "XHR_TIMEOUT")
}
