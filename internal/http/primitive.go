package http

import "errors"

// ReadyState mirrors the readyState values of an XMLHttpRequest.
type ReadyState int

const (
	Unsent ReadyState = iota
	Opened
	HeadersReceived
	Loading
	Done
)

// ErrUnsupported is returned by primitives that cannot provide an optional
// capability, e.g. an error notification slot.
var ErrUnsupported = errors.New("xhr: unsupported by primitive")

// Primitive is the stateful, event driven network handle a transport drives
// through open, configure, send and the asynchronous ready state
// notifications that follow. A Primitive performs exactly one exchange.
//
// Notifications may be delivered on any goroutine, but a Primitive MUST NOT
// deliver them concurrently for the same handle.
type Primitive interface {
	Open(method, url string, async bool) error
	SetRequestHeader(name, value string) error
	Send(body interface{}) error
	// Abort stops an in-flight exchange. Aborting a finished exchange is a
	// no-op.
	Abort()

	OnReadyStateChange(fn func())
	// OnError registers fn for primitive level failures. Primitives without
	// error notifications return [ErrUnsupported].
	OnError(fn func(error)) error

	ReadyState() ReadyState
	Status() int
	StatusText() string
	ResponseText() string
	GetAllResponseHeaders() string
}

// PropertySetter is implemented by primitives that expose settable
// properties to request mixins.
type PropertySetter interface {
	HasProperty(name string) bool
	// SetProperty may fail for properties that are only writable in some
	// phases of the exchange.
	SetProperty(name string, value interface{}) error
}

// DoneStater is implemented by primitives whose terminal ready state is not
// [Done].
type DoneStater interface {
	DoneState() ReadyState
}

// Engine constructs a fresh primitive for every exchange.
type Engine func() (Primitive, error)
