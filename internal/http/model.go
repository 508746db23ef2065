package http

import (
	"sync"
)

// Request describes one exchange. It is owned by the caller, but the
// transport mutates it in place: Method is defaulted and a cancel
// capability is attached for the lifetime of the exchange.
type Request struct {
	Path    string
	Method  string
	Headers map[string]string
	Entity  interface{}

	// Mixin holds property overrides applied to the primitive before and
	// after it is opened. Unknown properties are ignored.
	Mixin map[string]interface{}

	// Engine overrides the primitive factory of the transport.
	Engine Engine

	mu       sync.Mutex
	canceled bool
	canceler func()
}

// HasEntity reports whether the request carries a payload. nil and the
// empty string are treated as no payload.
func (r *Request) HasEntity() bool {
	switch e := r.Entity.(type) {
	case nil:
		return false
	case string:
		return e != ""
	}
	return true
}

// Cancel marks the request canceled. If an exchange is in flight the
// exchange is aborted and rejected with [ErrCanceled]. Calling Cancel before
// the request is executed makes the exchange reject with [ErrPrecanceled].
func (r *Request) Cancel() {
	r.mu.Lock()
	r.canceled = true
	fn := r.canceler
	r.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Canceled reports whether [Request.Cancel] has been called.
func (r *Request) Canceled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.canceled
}

// SetCanceler installs the cancel capability of an exchange. If the request
// got canceled before the capability was installed, fn is invoked right
// away. Only transports should call this.
func (r *Request) SetCanceler(fn func()) {
	r.mu.Lock()
	r.canceler = fn
	canceled := r.canceled
	r.mu.Unlock()
	if canceled && fn != nil {
		fn()
	}
}

type Status struct {
	Code int    `json:"code"`
	Text string `json:"text"`
}

// Response describes the outcome of an exchange. It is built while the
// exchange is running and is never modified after it has been handed to the
// caller.
type Response struct {
	ID      string    `json:"id"`
	Request *Request  `json:"-"`
	URL     string    `json:"url,omitempty"`
	Raw     Primitive `json:"-"`
	Status  *Status   `json:"status,omitempty"`
	Headers Header    `json:"headers,omitempty"`
	Entity  *string   `json:"entity,omitempty"`
	Error   ErrorKind `json:"error,omitempty"`

	// Cause is the underlying error behind a [ErrLoad], if any.
	Cause error `json:"-"`
}

// Text returns the response entity or the empty string if there is none.
func (r *Response) Text() string {
	if r.Entity == nil {
		return ""
	}
	return *r.Entity
}
