// package config loads client settings from a YAML file, a .env file and
// XHR_* environment variables, in increasing order of precedence.
package config

import (
	"crypto/tls"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/frankli0324/go-xhr/internal/dialer"
	"github.com/frankli0324/go-xhr/internal/transport"
)

type Config struct {
	Log       LogConfig       `yaml:"log"`
	Transport TransportConfig `yaml:"transport"`
	Client    ClientConfig    `yaml:"client"`
	Dialer    DialerConfig    `yaml:"dialer"`
	Metrics   bool            `yaml:"metrics"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or console
}

type TransportConfig struct {
	NoContent1223        bool          `yaml:"no_content_1223"`
	OptionalErrorHandler bool          `yaml:"optional_error_handler"`
	ZeroStatusGrace      time.Duration `yaml:"zero_status_grace"`
}

type ClientConfig struct {
	Timeout        time.Duration     `yaml:"timeout"`
	DefaultHeaders map[string]string `yaml:"default_headers"`
	RateLimit      float64           `yaml:"rate_limit"` // requests per second, 0 disables
	RateBurst      int               `yaml:"rate_burst"`
}

type DialerConfig struct {
	DNSServer          string            `yaml:"dns_server"`
	Network            string            `yaml:"network"`
	StaticHosts        map[string]string `yaml:"static_hosts"`
	Proxy              string            `yaml:"proxy"`
	InsecureSkipVerify bool              `yaml:"insecure_skip_verify"`
}

func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "console"},
		Transport: TransportConfig{
			NoContent1223:        transport.DefaultQuirks.NoContent1223,
			OptionalErrorHandler: transport.DefaultQuirks.OptionalErrorHandler,
			ZeroStatusGrace:      transport.DefaultQuirks.ZeroStatusGrace,
		},
		Client: ClientConfig{RateBurst: 1},
	}
}

// Load reads path on top of [Default] and applies environment overrides.
// An empty path skips the file. A missing .env file is not an error.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from XHR_* variables looked up with getenv.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv("XHR_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("XHR_LOG_FORMAT"); v != "" {
		c.Log.Format = v
	}
	if v := getenv("XHR_ZERO_STATUS_GRACE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("XHR_ZERO_STATUS_GRACE: %w", err)
		}
		c.Transport.ZeroStatusGrace = d
	}
	if v := getenv("XHR_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("XHR_TIMEOUT: %w", err)
		}
		c.Client.Timeout = d
	}
	if v := getenv("XHR_RATE_LIMIT"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("XHR_RATE_LIMIT: %w", err)
		}
		c.Client.RateLimit = f
	}
	if v := getenv("XHR_RATE_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("XHR_RATE_BURST: %w", err)
		}
		c.Client.RateBurst = n
	}
	if v := getenv("XHR_DNS_SERVER"); v != "" {
		c.Dialer.DNSServer = v
	}
	if v := getenv("XHR_NETWORK"); v != "" {
		c.Dialer.Network = v
	}
	if v := getenv("XHR_PROXY"); v != "" {
		c.Dialer.Proxy = v
	}
	if v := getenv("XHR_INSECURE_SKIP_VERIFY"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("XHR_INSECURE_SKIP_VERIFY: %w", err)
		}
		c.Dialer.InsecureSkipVerify = b
	}
	if v := getenv("XHR_METRICS"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("XHR_METRICS: %w", err)
		}
		c.Metrics = b
	}
	return c.validate()
}

func (c *Config) validate() error {
	switch c.Dialer.Network {
	case "", "ip", "ip4", "ip6":
	default:
		return fmt.Errorf("dialer network must be ip, ip4 or ip6, got %q", c.Dialer.Network)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "json", "console":
	default:
		return fmt.Errorf("log format must be json or console, got %q", c.Log.Format)
	}
	if c.Transport.ZeroStatusGrace < 0 || c.Client.Timeout < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}

func (c *Config) Quirks() *transport.Quirks {
	return &transport.Quirks{
		NoContent1223:        c.Transport.NoContent1223,
		OptionalErrorHandler: c.Transport.OptionalErrorHandler,
		ZeroStatusGrace:      c.Transport.ZeroStatusGrace,
	}
}

// CoreDialer returns the dialer settings for the default engine.
func (c *Config) CoreDialer() *dialer.CoreDialer {
	d := &dialer.CoreDialer{}
	dc := c.Dialer
	if dc.DNSServer != "" || dc.Network != "" || len(dc.StaticHosts) > 0 {
		d.ResolveConfig = &dialer.ResolveConfig{
			CustomDNSServer: dc.DNSServer,
			Network:         dc.Network,
			StaticHosts:     dc.StaticHosts,
		}
	}
	if dc.Proxy != "" {
		d.GetProxy = dialer.StaticProxy(dc.Proxy)
	}
	if dc.InsecureSkipVerify {
		d.TLSConfig = &tls.Config{InsecureSkipVerify: true}
	}
	return d
}
