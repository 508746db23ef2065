package transport

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/frankli0324/go-xhr/internal/future"
	"github.com/frankli0324/go-xhr/internal/http"
)

type state int

const (
	stateIdle state = iota
	stateOpened
	stateSent
	stateSettled
)

func (s state) String() string {
	switch s {
	case stateIdle:
		return "idle"
	case stateOpened:
		return "opened"
	case stateSent:
		return "sent"
	case stateSettled:
		return "settled"
	}
	return "unknown"
}

const multipartFormData = "multipart/form-data"

// Execute starts the exchange described by req and returns a future that
// settles exactly once. Failures are never returned or panicked, they
// reject the future with a response whose Error is set. A nil req is
// treated as an empty request.
//
// req is modified: Method is defaulted and a cancel capability is
// attached, reachable through [http.Request.Cancel].
func (a *Adapter) Execute(req *http.Request) *future.Future {
	f := future.New()
	if req == nil {
		req = &http.Request{}
	}
	resp := &http.Response{ID: uuid.NewString(), Request: req}
	log := a.logger().With(zap.String("exchange", resp.ID))

	if req.Canceled() {
		resp.Error = http.ErrPrecanceled
		log.Debug("exchange_precanceled", zap.String("path", req.Path))
		f.Reject(resp)
		return f
	}

	engine := req.Engine
	if engine == nil {
		engine = a.Engine
	}
	if engine == nil {
		log.Warn("exchange_no_engine", zap.String("path", req.Path))
		f.Reject(&http.Response{ID: resp.ID, Request: req, Error: http.ErrTransportNotAvailable})
		return f
	}

	if req.Method == "" {
		if req.HasEntity() {
			req.Method = "POST"
		} else {
			req.Method = "GET"
		}
	}
	resp.URL = req.Path

	x := &exchange{
		quirks:       a.quirks(),
		canonicalize: a.canonicalize(),
		log:          log,
		engine:       engine,
		req:          req,
		resp:         resp,
		f:            f,
	}
	if err := x.start(); err != nil {
		x.fail(http.ErrLoad, err)
	}
	return f
}

type exchange struct {
	quirks       Quirks
	canonicalize func(string) string
	log          *zap.Logger
	engine       http.Engine

	req  *http.Request
	f    *future.Future
	prim http.Primitive
	done http.ReadyState

	mu       sync.Mutex // guards everything below and resp until settled
	state    state
	terminal bool
	deferred *time.Timer
	resp     *http.Response
}

// start runs the synchronous part of the exchange. Any returned error or
// panic turns into a loaderror.
func (x *exchange) start() (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	p, err := x.engine()
	if err != nil {
		return fmt.Errorf("instantiate primitive: %w", err)
	}
	if p == nil {
		return errors.New("engine returned no primitive")
	}
	x.prim, x.done = p, doneState(p)
	x.mu.Lock()
	x.resp.Raw = p
	x.mu.Unlock()

	safeMixin(p, x.req.Mixin, x.log)
	if err := p.Open(x.req.Method, x.req.Path, true); err != nil {
		return fmt.Errorf("open: %w", err)
	}
	x.advance(stateOpened)
	safeMixin(p, x.req.Mixin, x.log)

	for _, name := range sortedKeys(x.req.Headers) {
		value := x.req.Headers[name]
		if name == "Content-Type" && value == multipartFormData {
			// the primitive generates its own boundary qualified type
			continue
		}
		if err := p.SetRequestHeader(name, value); err != nil {
			return fmt.Errorf("set header %s: %w", name, err)
		}
	}

	x.req.SetCanceler(x.cancel)
	p.OnReadyStateChange(x.onReadyStateChange)
	if err := x.quirks.RegisterOnError(p, x.onError); err != nil {
		return fmt.Errorf("register error handler: %w", err)
	}

	if x.settled() {
		return nil // canceled before anything went out
	}
	x.log.Debug("exchange_send", zap.String("method", x.req.Method), zap.String("url", x.req.Path))
	// a nil entity is sent as no body at all
	if err := p.Send(x.req.Entity); err != nil {
		return fmt.Errorf("send: %w", err)
	}
	x.advance(stateSent)
	return nil
}

func (x *exchange) advance(to state) {
	x.mu.Lock()
	if x.state != stateSettled && x.state < to {
		x.state = to
	}
	x.mu.Unlock()
}

func (x *exchange) settled() bool {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.state == stateSettled
}

// settleLocked moves the exchange to its final state. It reports false if
// the exchange had already settled.
func (x *exchange) settleLocked() bool {
	if x.state == stateSettled {
		return false
	}
	x.state = stateSettled
	if x.deferred != nil {
		x.deferred.Stop()
	}
	return true
}

func (x *exchange) resolve() {
	x.mu.Lock()
	if !x.settleLocked() {
		x.mu.Unlock()
		return
	}
	x.mu.Unlock()
	x.log.Debug("exchange_settled", zap.Int("status", x.resp.Status.Code))
	x.f.Resolve(x.resp)
}

func (x *exchange) fail(kind http.ErrorKind, cause error) {
	x.mu.Lock()
	from := x.state
	if !x.settleLocked() {
		x.mu.Unlock()
		return
	}
	x.resp.Error = kind
	x.resp.Cause = cause
	x.mu.Unlock()
	x.log.Debug("exchange_rejected", zap.String("error", string(kind)), zap.Stringer("state", from), zap.Error(cause))
	x.f.Reject(x.resp)
}

// cancel is the capability installed on the request. Calling it after the
// exchange settled does nothing.
func (x *exchange) cancel() {
	x.mu.Lock()
	if !x.settleLocked() {
		x.mu.Unlock()
		return
	}
	x.resp.Error = http.ErrCanceled
	x.mu.Unlock()

	x.log.Debug("exchange_canceled")
	x.abort()
	x.f.Reject(x.resp)
}

func (x *exchange) abort() {
	defer func() {
		if r := recover(); r != nil {
			x.log.Debug("exchange_abort_failed", zap.Any("panic", r))
		}
	}()
	x.prim.Abort()
}

func (x *exchange) onReadyStateChange() {
	if x.req.Canceled() {
		return // the cancel path owns the rejection
	}
	p := x.prim
	if p.ReadyState() != x.done {
		return
	}

	x.mu.Lock()
	if x.state == stateSettled || x.terminal {
		x.mu.Unlock()
		return
	}
	x.terminal = true
	entity := p.ResponseText()
	x.resp.Status = &http.Status{
		Code: x.quirks.CorrectStatus(p.Status()),
		Text: p.StatusText(),
	}
	x.resp.Headers = ParseHeaders(p.GetAllResponseHeaders(), x.canonicalize)
	x.resp.Entity = &entity

	if x.resp.Status.Code > 0 {
		x.mu.Unlock()
		x.resolve()
		return
	}
	// no status line, e.g. file://. an error notification may still be
	// on its way and takes precedence.
	x.deferred = time.AfterFunc(x.quirks.ZeroStatusGrace, x.resolve)
	x.mu.Unlock()
}

func (x *exchange) onError(err error) {
	if err == nil {
		err = errors.New("primitive reported an error")
	}
	x.fail(http.ErrLoad, err)
}
