package transport

import (
	"errors"
	"time"

	"github.com/frankli0324/go-xhr/internal/http"
)

// Quirks toggles the normalizations applied for misbehaving primitives.
//
// Some runtimes never report Set-Cookie in the raw header blob no matter
// what the server sent. That is expected and needs no switch here.
type Quirks struct {
	// NoContent1223 corrects a reported status 1223 to 204.
	NoContent1223 bool

	// OptionalErrorHandler tolerates primitives that can't register an error
	// notification.
	OptionalErrorHandler bool

	// ZeroStatusGrace is how long a terminal notification with status 0 waits
	// before resolving, giving a pending error notification the chance to
	// reject instead. Status 0 is typical for file:// exchanges.
	ZeroStatusGrace time.Duration
}

var DefaultQuirks = Quirks{
	NoContent1223:        true,
	OptionalErrorHandler: true,
	ZeroStatusGrace:      10 * time.Millisecond,
}

const statusNoContentMisreported = 1223

// CorrectStatus maps a primitive reported status code to the real one.
func (q Quirks) CorrectStatus(code int) int {
	if q.NoContent1223 && code == statusNoContentMisreported {
		return 204
	}
	return code
}

// RegisterOnError installs fn as the error notification of p. A primitive
// that can't provide one is tolerated if OptionalErrorHandler is set.
func (q Quirks) RegisterOnError(p http.Primitive, fn func(error)) (err error) {
	if q.OptionalErrorHandler {
		defer func() {
			if r := recover(); r != nil {
				err = nil
			}
		}()
	}
	err = p.OnError(fn)
	if q.OptionalErrorHandler && errors.Is(err, http.ErrUnsupported) {
		return nil
	}
	return err
}

// doneState returns the terminal ready state of p.
func doneState(p http.Primitive) http.ReadyState {
	if ds, ok := p.(http.DoneStater); ok {
		if s := ds.DoneState(); s != 0 {
			return s
		}
	}
	return http.Done
}
