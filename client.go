// package xhr executes request descriptors through XMLHttpRequest style
// primitives and settles each exchange exactly once.
package xhr

import (
	"net/textproto"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/frankli0324/go-xhr/internal"
	"github.com/frankli0324/go-xhr/internal/config"
	"github.com/frankli0324/go-xhr/internal/engine"
	"github.com/frankli0324/go-xhr/internal/future"
	"github.com/frankli0324/go-xhr/internal/http"
	"github.com/frankli0324/go-xhr/internal/transport"
)

// Client runs requests through its middlewares and an [Adapter]. A zero
// Client uses the default engine.
type Client = internal.Client
type Middleware = internal.Middleware
type Handler = internal.Handler

type Request = http.Request
type Response = http.Response
type Status = http.Status
type Header = http.Header
type FormData = http.FormData
type ResponseError = http.ResponseError
type ErrorKind = http.ErrorKind

const (
	ErrPrecanceled           = http.ErrPrecanceled
	ErrTransportNotAvailable = http.ErrTransportNotAvailable
	ErrLoad                  = http.ErrLoad
	ErrCanceled              = http.ErrCanceled
)

// Primitive is the stateful, callback driven request object an [Engine]
// hands out. See [DefaultEngine] for the net/http based one.
type Primitive = http.Primitive
type PropertySetter = http.PropertySetter
type DoneStater = http.DoneStater
type ReadyState = http.ReadyState
type Engine = http.Engine

type Adapter = transport.Adapter
type Transport = transport.Transport
type Quirks = transport.Quirks
type Future = future.Future

type Config = config.Config

var DefaultQuirks = transport.DefaultQuirks

// ErrUnsupported may be returned by [Primitive.OnError] for hosts without
// error notifications.
var ErrUnsupported = http.ErrUnsupported

// NewFormData returns an empty multipart body.
func NewFormData() *FormData {
	return &FormData{}
}

// ParseHeaders parses a raw CRLF separated header block, canonicalizing names
// with canonicalize, or [textproto.CanonicalMIMEHeaderKey] when it is nil.
func ParseHeaders(raw string, canonicalize func(string) string) Header {
	if canonicalize == nil {
		canonicalize = textproto.CanonicalMIMEHeaderKey
	}
	return transport.ParseHeaders(raw, canonicalize)
}

// DefaultEngine returns the net/http based engine dialing through d, which
// may be nil.
func DefaultEngine(d *CoreDialer) (Engine, error) {
	e, err := engine.New(d)
	if err != nil {
		return nil, err
	}
	return e.Factory(), nil
}

// LoadConfig reads a YAML config file, then .env and XHR_* overrides.
func LoadConfig(path string) (*Config, error) {
	return config.Load(path)
}

// NewClient builds a client with the middlewares cfg asks for. log and reg
// may be nil.
func NewClient(cfg *Config, log *zap.Logger, reg prometheus.Registerer) (*Client, error) {
	return internal.NewClient(cfg, log, reg)
}
