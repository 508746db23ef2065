// package engine provides the default [http.Primitive]: an XMLHttpRequest
// lookalike performing its exchange with net/http.
//
// file:// URLs are read from disk and complete with status 0, like a
// browser would do for local documents.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/net/http/httpguts"

	"github.com/frankli0324/go-xhr/internal/dialer"
	"github.com/frankli0324/go-xhr/internal/http"
)

var (
	ErrInvalidState = errors.New("xhr: InvalidStateError")
	ErrSyntax       = errors.New("xhr: SyntaxError")
)

// Engine creates primitives sharing one round tripper and cookie jar.
type Engine struct {
	client *nethttp.Client
	// anonymous is used for exchanges without credentials
	anonymous *nethttp.Client

	log *zap.Logger
}

// New builds an engine dialing through a copy of d, later changes to d
// don't affect it. A nil d dials directly.
func New(d *dialer.CoreDialer) (*Engine, error) {
	d = d.Clone()
	if d == nil {
		d = &dialer.CoreDialer{}
	}
	t, err := d.Transport()
	if err != nil {
		return nil, err
	}
	return NewWithRoundTripper(t), nil
}

// NewWithRoundTripper builds an engine over an existing round tripper.
func NewWithRoundTripper(rt nethttp.RoundTripper) *Engine {
	jar, _ := cookiejar.New(nil) // never fails without options
	return &Engine{
		client:    &nethttp.Client{Transport: rt, Jar: jar},
		anonymous: &nethttp.Client{Transport: rt},
	}
}

// New returns a fresh, unopened primitive.
func (e *Engine) New() (http.Primitive, error) {
	return &Request{engine: e, header: nethttp.Header{}}, nil
}

// Factory adapts e to the transport's [http.Engine].
func (e *Engine) Factory() http.Engine {
	return e.New
}

// Request is a single XMLHttpRequest style exchange.
type Request struct {
	engine *Engine

	mu              sync.Mutex
	state           http.ReadyState
	sendFlag        bool
	method          string
	url             *url.URL
	header          nethttp.Header
	timeout         time.Duration
	withCredentials bool
	cancel          context.CancelFunc

	status     int
	statusText string
	respHeader nethttp.Header
	body       string

	notifyMu sync.Mutex // serializes notifications
	onReady  func()
	onError  func(error)
}

func (r *Request) Open(method, rawURL string, async bool) error {
	if !async {
		return fmt.Errorf("%w: synchronous requests are not supported", ErrInvalidState)
	}
	if !httpguts.ValidHeaderFieldName(method) {
		return fmt.Errorf("%w: invalid method %q", ErrSyntax, method)
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSyntax, err)
	}

	r.mu.Lock()
	if r.sendFlag {
		r.mu.Unlock()
		return fmt.Errorf("%w: already sent", ErrInvalidState)
	}
	r.method = strings.ToUpper(method)
	r.url = u
	r.header = nethttp.Header{}
	r.status, r.statusText, r.respHeader, r.body = 0, "", nil, ""
	r.state = http.Opened
	r.mu.Unlock()

	r.notify()
	return nil
}

func (r *Request) SetRequestHeader(name, value string) error {
	if !httpguts.ValidHeaderFieldName(name) || !httpguts.ValidHeaderFieldValue(value) {
		return fmt.Errorf("%w: invalid header %q", ErrSyntax, name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state != http.Opened || r.sendFlag {
		return fmt.Errorf("%w: headers can only be set after open and before send", ErrInvalidState)
	}
	r.header.Add(name, value)
	return nil
}

func (r *Request) Send(body interface{}) error {
	payload, err := http.PreparePayload(body)
	if err != nil {
		return err
	}

	r.mu.Lock()
	if r.state != http.Opened || r.sendFlag {
		r.mu.Unlock()
		return fmt.Errorf("%w: send before open", ErrInvalidState)
	}
	var ctx context.Context
	if r.timeout > 0 {
		ctx, r.cancel = context.WithTimeout(context.Background(), r.timeout)
	} else {
		ctx, r.cancel = context.WithCancel(context.Background())
	}
	r.sendFlag = true
	method, u, header := r.method, r.url, r.header.Clone()
	client := r.engine.anonymous
	if r.withCredentials {
		client = r.engine.client
	}
	r.mu.Unlock()

	if u.Scheme == "file" {
		go r.readFile(ctx, u)
		return nil
	}

	req, err := newHTTPRequest(r.engine.withTrace(ctx, u.String()), method, u, header, payload)
	if err != nil {
		r.mu.Lock()
		r.sendFlag = false
		r.cancel()
		r.mu.Unlock()
		return err
	}
	go r.roundTrip(ctx, client, req)
	return nil
}

func newHTTPRequest(ctx context.Context, method string, u *url.URL, header nethttp.Header, payload *http.Payload) (*nethttp.Request, error) {
	if ct := payload.ContentType; ct != "" {
		// a multipart boundary is only known here, so it replaces a bare
		// multipart type but never one of another kind
		if set := header.Get("Content-Type"); set == "" ||
			strings.HasPrefix(ct, "multipart/form-data;") && strings.HasPrefix(set, "multipart/form-data") {
			header.Set("Content-Type", ct)
		}
	}
	body, err := payload.GetBody()
	if err != nil {
		return nil, err
	}
	req, err := nethttp.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}
	req.Header = header
	req.GetBody = payload.GetBody
	if payload.ContentLength == 0 {
		req.Body, req.ContentLength = nethttp.NoBody, 0
	} else {
		req.ContentLength = payload.ContentLength
	}
	return req, nil
}

func (r *Request) roundTrip(ctx context.Context, client *nethttp.Client, req *nethttp.Request) {
	resp, err := client.Do(req)
	if err != nil {
		r.finishWithError(ctx, err)
		return
	}
	defer resp.Body.Close()

	r.mu.Lock()
	if !r.sendFlag {
		r.mu.Unlock()
		return // aborted
	}
	r.status = resp.StatusCode
	r.statusText = strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	r.respHeader = resp.Header
	r.state = http.HeadersReceived
	r.mu.Unlock()
	r.notify()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		r.finishWithError(ctx, err)
		return
	}
	r.mu.Lock()
	if !r.sendFlag {
		r.mu.Unlock()
		return
	}
	r.state = http.Loading
	r.body = string(b)
	r.mu.Unlock()
	r.notify()

	r.finish()
}

func (r *Request) readFile(ctx context.Context, u *url.URL) {
	b, err := os.ReadFile(u.Path)
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		r.finishWithError(ctx, err)
		return
	}
	r.mu.Lock()
	r.body = string(b)
	r.mu.Unlock()
	r.finish()
}

func (r *Request) finish() {
	r.mu.Lock()
	if !r.sendFlag {
		r.mu.Unlock()
		return
	}
	r.state = http.Done
	r.sendFlag = false
	r.cancel()
	r.mu.Unlock()
	r.notify()
}

// finishWithError reports a network failure the way browsers do: a ready
// state change to DONE with status 0 followed by the error notification.
func (r *Request) finishWithError(ctx context.Context, err error) {
	r.mu.Lock()
	if !r.sendFlag {
		r.mu.Unlock()
		return // aborted, no error event
	}
	r.state = http.Done
	r.sendFlag = false
	r.status, r.statusText, r.respHeader, r.body = 0, "", nil, ""
	r.cancel()
	r.mu.Unlock()

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		err = fmt.Errorf("timeout: %w", err)
	}
	r.notify()
	r.notifyMu.Lock()
	fn := r.onError
	r.notifyMu.Unlock()
	if fn != nil {
		fn(err)
	}
}

// Abort cancels an in-flight exchange. The primitive moves through DONE
// back to UNSENT. Aborting an idle or finished request does nothing.
func (r *Request) Abort() {
	r.mu.Lock()
	if !r.sendFlag {
		r.mu.Unlock()
		return
	}
	r.sendFlag = false
	r.cancel()
	r.state = http.Done
	r.status, r.statusText, r.respHeader, r.body = 0, "", nil, ""
	r.mu.Unlock()

	r.notify()

	r.mu.Lock()
	r.state = http.Unsent
	r.mu.Unlock()
}

func (r *Request) notify() {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()
	if r.onReady != nil {
		r.onReady()
	}
}

func (r *Request) OnReadyStateChange(fn func()) {
	r.notifyMu.Lock()
	r.onReady = fn
	r.notifyMu.Unlock()
}

func (r *Request) OnError(fn func(error)) error {
	r.notifyMu.Lock()
	r.onError = fn
	r.notifyMu.Unlock()
	return nil
}

func (r *Request) ReadyState() http.ReadyState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

func (r *Request) Status() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

func (r *Request) StatusText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.statusText
}

func (r *Request) ResponseText() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.body
}

// GetAllResponseHeaders returns one "name: value" line per header value,
// names lower cased and sorted. Set-Cookie is never exposed.
func (r *Request) GetAllResponseHeaders() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.respHeader) == 0 {
		return ""
	}
	names := make([]string, 0, len(r.respHeader))
	for k := range r.respHeader {
		switch strings.ToLower(k) {
		case "set-cookie", "set-cookie2":
			continue
		}
		names = append(names, k)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, k := range names {
		for _, v := range r.respHeader[k] {
			sb.WriteString(strings.ToLower(k))
			sb.WriteString(": ")
			sb.WriteString(v)
			sb.WriteString("\r\n")
		}
	}
	return sb.String()
}
