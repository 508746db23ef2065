package http

import "fmt"

// ErrorKind is carried by the response of a rejected exchange.
type ErrorKind string

const (
	ErrPrecanceled           ErrorKind = "precanceled"
	ErrTransportNotAvailable ErrorKind = "transport-not-available"
	ErrLoad                  ErrorKind = "loaderror"
	ErrCanceled              ErrorKind = "canceled"
)

func (k ErrorKind) Error() string {
	return "xhr: " + string(k)
}

// ResponseError is the error a rejected exchange resolves to. The response
// is populated as far as the exchange got.
type ResponseError struct {
	Response *Response
}

func (e *ResponseError) Error() string {
	if e.Response.Cause != nil {
		return fmt.Sprintf("%s %s: %v", e.Response.Error.Error(), e.Response.URL, e.Response.Cause)
	}
	return e.Response.Error.Error() + " " + e.Response.URL
}

// Unwrap allows errors.Is(err, ErrCanceled) style checks.
func (e *ResponseError) Unwrap() []error {
	if e.Response.Cause != nil {
		return []error{e.Response.Error, e.Response.Cause}
	}
	return []error{e.Response.Error}
}
