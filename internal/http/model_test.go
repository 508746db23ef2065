package http

import (
	"encoding/json"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeaderJSON(t *testing.T) {
	h := Header{"Content-Type": {"text/plain"}, "X-A": {"1", "2"}}
	b, err := json.Marshal(h)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Content-Type":"text/plain","X-A":["1","2"]}`, string(b))

	var back Header
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, h, back)

	assert.Error(t, json.Unmarshal([]byte(`{"A":1}`), &back))
}

func TestHeaderLookup(t *testing.T) {
	h := Header{"x-lower": {"a"}, "Content-Type": {"text/plain"}, "Vary": {"1", "2"}}
	assert.Equal(t, "a", h.Get("x-lower"), "keys stored by a custom canonicalizer")
	assert.Equal(t, "", h.Get("X-Lower"))
	assert.Equal(t, "text/plain", h.Get("content-type"))
	assert.Equal(t, []string{"1", "2"}, h.Values("vary"))
	assert.True(t, h.IsMulti("Vary"))
}

func TestRequestCancel(t *testing.T) {
	r := &Request{}
	assert.False(t, r.Canceled())
	r.Cancel()
	assert.True(t, r.Canceled())

	calls := 0
	r.SetCanceler(func() { calls++ })
	assert.Equal(t, 1, calls, "canceler installed on a canceled request runs immediately")

	r.Cancel()
	assert.Equal(t, 2, calls)
}

func TestHasEntity(t *testing.T) {
	assert.False(t, (&Request{}).HasEntity())
	assert.False(t, (&Request{Entity: ""}).HasEntity())
	assert.True(t, (&Request{Entity: "x"}).HasEntity())
	assert.True(t, (&Request{Entity: []byte{}}).HasEntity())
}

func TestResponseErrorMessage(t *testing.T) {
	err := &ResponseError{Response: &Response{URL: "/x", Error: ErrCanceled}}
	assert.Equal(t, "xhr: canceled /x", err.Error())
	assert.ErrorIs(t, err, ErrCanceled)
}

func readAll(t *testing.T, p *Payload) string {
	t.Helper()
	rc, err := p.GetBody()
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return string(b)
}

func TestPreparePayload(t *testing.T) {
	p, err := PreparePayload(nil)
	require.NoError(t, err)
	assert.Equal(t, int64(0), p.ContentLength)

	p, err = PreparePayload("abc")
	require.NoError(t, err)
	assert.Equal(t, int64(3), p.ContentLength)
	assert.Equal(t, "abc", readAll(t, p))
	assert.Equal(t, "abc", readAll(t, p), "string bodies are replayable")

	p, err = PreparePayload(url.Values{"a": {"1"}})
	require.NoError(t, err)
	assert.Equal(t, "a=1", readAll(t, p))
	assert.Contains(t, p.ContentType, "application/x-www-form-urlencoded")

	p, err = PreparePayload(io.MultiReader(strings.NewReader("x")))
	require.NoError(t, err)
	assert.Equal(t, int64(-1), p.ContentLength)
	assert.Equal(t, "x", readAll(t, p))
	_, err = p.GetBody()
	assert.Error(t, err, "plain readers can only be read once")

	_, err = PreparePayload(42)
	assert.Error(t, err)
}

func TestFormData(t *testing.T) {
	f := &FormData{}
	f.Append("a", "1")
	require.NoError(t, f.AppendFile("f", "x.txt", strings.NewReader("data")))

	p, err := PreparePayload(f)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(p.ContentType, "multipart/form-data; boundary="))
	body := readAll(t, p)
	assert.Contains(t, body, `name="a"`)
	assert.Contains(t, body, `filename="x.txt"`)
	assert.Equal(t, int64(len(body)), p.ContentLength)
}
