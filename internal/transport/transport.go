package transport

import (
	"net/textproto"

	"go.uber.org/zap"

	"github.com/frankli0324/go-xhr/internal/future"
	"github.com/frankli0324/go-xhr/internal/http"
)

type Transport interface {
	Execute(req *http.Request) *future.Future
}

// Adapter is the xhr transport. A zero Adapter is usable but rejects every
// request that doesn't bring its own [http.Engine] with
// [http.ErrTransportNotAvailable].
type Adapter struct {
	// Engine is the default primitive factory, used when a request doesn't
	// specify one.
	Engine http.Engine

	// Quirks selects the host runtime normalizations. nil means
	// [DefaultQuirks].
	Quirks *Quirks

	// Canonicalize normalizes response header names. nil means
	// [textproto.CanonicalMIMEHeaderKey].
	Canonicalize func(string) string

	Logger *zap.Logger
}

func (a *Adapter) quirks() Quirks {
	if a.Quirks == nil {
		return DefaultQuirks
	}
	return *a.Quirks
}

func (a *Adapter) canonicalize() func(string) string {
	if a.Canonicalize == nil {
		return textproto.CanonicalMIMEHeaderKey
	}
	return a.Canonicalize
}

func (a *Adapter) logger() *zap.Logger {
	if a.Logger == nil {
		return zap.NewNop()
	}
	return a.Logger
}

// ExecutePath is shorthand for executing a GET of path.
func (a *Adapter) ExecutePath(path string) *future.Future {
	return a.Execute(&http.Request{Path: path})
}
