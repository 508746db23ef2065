package future

import (
	"context"
	"sync"

	"github.com/frankli0324/go-xhr/internal/http"
)

// Future settles exactly once, either resolved with a response or rejected
// with a response carrying an [http.ErrorKind]. Settling a settled future is
// a no-op. The zero Future is ready to use.
type Future struct {
	initOnce sync.Once
	once     sync.Once
	done     chan struct{}

	resp *http.Response
	err  error
}

func New() *Future {
	return &Future{}
}

func (f *Future) ch() chan struct{} {
	f.initOnce.Do(func() {
		f.done = make(chan struct{})
	})
	return f.done
}

// Resolve settles f with resp and reports whether this call settled it.
func (f *Future) Resolve(resp *http.Response) (settled bool) {
	f.once.Do(func() {
		f.resp = resp
		close(f.ch())
		settled = true
	})
	return
}

// Reject settles f with resp as a failure and reports whether this call
// settled it.
func (f *Future) Reject(resp *http.Response) (settled bool) {
	f.once.Do(func() {
		f.resp = resp
		f.err = &http.ResponseError{Response: resp}
		close(f.ch())
		settled = true
	})
	return
}

// Done is closed once the future has settled.
func (f *Future) Done() <-chan struct{} {
	return f.ch()
}

// Settled reports whether f has settled without blocking.
func (f *Future) Settled() bool {
	select {
	case <-f.ch():
		return true
	default:
		return false
	}
}

// Wait blocks until f settles or ctx is done. The response is returned for
// rejected futures too, along with a *[http.ResponseError]. Only a settled
// future yields a *ResponseError, whose chain may hold a context error of
// the primitive itself; use errors.As or [Future.Settled] to tell it apart
// from ctx ending.
func (f *Future) Wait(ctx context.Context) (*http.Response, error) {
	select {
	case <-f.ch():
		return f.resp, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Then calls fn on a new goroutine once f settles.
func (f *Future) Then(fn func(*http.Response, error)) {
	go func() {
		<-f.ch()
		fn(f.resp, f.err)
	}()
}
