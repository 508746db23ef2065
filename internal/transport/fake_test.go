package transport

import (
	"errors"
	"sync"

	"github.com/frankli0324/go-xhr/internal/http"
)

type call struct {
	op   string
	args []interface{}
}

// fakePrimitive records every call made on it. onSend scripts what happens
// after Send returns.
type fakePrimitive struct {
	mu    sync.Mutex
	calls []call

	readyState http.ReadyState
	status     int
	statusText string
	body       string
	headers    string

	props      map[string]interface{}
	propErr    map[string]error
	noOnError  bool
	openErr    error
	headerFail string

	onReady func()
	onError func(error)
	onSend  func(p *fakePrimitive)
	aborts  int
}

func (p *fakePrimitive) record(op string, args ...interface{}) {
	p.mu.Lock()
	p.calls = append(p.calls, call{op, args})
	p.mu.Unlock()
}

func (p *fakePrimitive) ops() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	ops := make([]string, len(p.calls))
	for i, c := range p.calls {
		ops[i] = c.op
	}
	return ops
}

func (p *fakePrimitive) headerCalls() map[string]string {
	p.mu.Lock()
	defer p.mu.Unlock()
	h := map[string]string{}
	for _, c := range p.calls {
		if c.op == "setRequestHeader" {
			h[c.args[0].(string)] = c.args[1].(string)
		}
	}
	return h
}

func (p *fakePrimitive) Open(method, url string, async bool) error {
	p.record("open", method, url, async)
	if p.openErr != nil {
		return p.openErr
	}
	p.readyState = http.Opened
	return nil
}

func (p *fakePrimitive) SetRequestHeader(name, value string) error {
	if name == p.headerFail {
		panic("invalid header " + name)
	}
	p.record("setRequestHeader", name, value)
	return nil
}

func (p *fakePrimitive) Send(body interface{}) error {
	p.record("send", body)
	if p.onSend != nil {
		go p.onSend(p)
	}
	return nil
}

func (p *fakePrimitive) Abort() {
	p.mu.Lock()
	p.aborts++
	p.mu.Unlock()
	p.record("abort")
}

func (p *fakePrimitive) OnReadyStateChange(fn func()) { p.onReady = fn }

func (p *fakePrimitive) OnError(fn func(error)) error {
	if p.noOnError {
		return http.ErrUnsupported
	}
	p.onError = fn
	return nil
}

func (p *fakePrimitive) ReadyState() http.ReadyState   { return p.readyState }
func (p *fakePrimitive) Status() int                   { return p.status }
func (p *fakePrimitive) StatusText() string            { return p.statusText }
func (p *fakePrimitive) ResponseText() string          { return p.body }
func (p *fakePrimitive) GetAllResponseHeaders() string { return p.headers }

func (p *fakePrimitive) HasProperty(name string) bool {
	_, ok := p.props[name]
	return ok
}

func (p *fakePrimitive) SetProperty(name string, value interface{}) error {
	p.record("set:"+name, value)
	if err := p.propErr[name]; err != nil {
		return err
	}
	p.props[name] = value
	return nil
}

// complete moves p to its terminal state and notifies.
func (p *fakePrimitive) complete(status int, text, body, headers string) {
	p.status, p.statusText, p.body, p.headers = status, text, body, headers
	p.readyState = http.HeadersReceived
	p.onReady()
	p.readyState = http.Done
	p.onReady()
}

func (p *fakePrimitive) engine() http.Engine {
	return func() (http.Primitive, error) { return p, nil }
}

var errFakeNetwork = errors.New("network down")
