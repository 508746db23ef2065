package http

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

// Payload is an entity prepared for sending. ContentLength is -1 when the
// size is not known in advance.
type Payload struct {
	GetBody       func() (io.ReadCloser, error)
	ContentLength int64
	// ContentType is the type implied by the entity, e.g. the boundary
	// qualified multipart type of a [FormData]. Empty if the entity implies
	// none.
	ContentType string
}

// PreparePayload converts an entity into a [Payload]. A nil entity yields an
// empty body.
func PreparePayload(entity interface{}) (*Payload, error) {
	p := &Payload{ContentLength: -1}
	switch b := entity.(type) {
	case nil:
		p.ContentLength = 0
		p.GetBody = func() (io.ReadCloser, error) { return http.NoBody, nil }
	case string:
		p.ContentLength = int64(len(b))
		p.ContentType = "text/plain;charset=UTF-8"
		p.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(b)), nil
		}
	case []byte:
		p.ContentLength = int64(len(b))
		p.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(b)), nil
		}
	case url.Values:
		enc := b.Encode()
		p.ContentLength = int64(len(enc))
		p.ContentType = "application/x-www-form-urlencoded;charset=UTF-8"
		p.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(enc)), nil
		}
	case *FormData:
		buf, ct, err := b.encode()
		if err != nil {
			return nil, err
		}
		data := buf.Bytes()
		p.ContentLength = int64(len(data))
		p.ContentType = ct
		p.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(data)), nil
		}
	case *bytes.Buffer: // below is taken from http.NewRequest
		p.ContentLength = int64(b.Len())
		buf := b.Bytes()
		p.GetBody = func() (io.ReadCloser, error) {
			return io.NopCloser(bytes.NewReader(buf)), nil
		}
	case *bytes.Reader:
		p.ContentLength = int64(b.Len())
		snapshot := *b
		p.GetBody = func() (io.ReadCloser, error) {
			r := snapshot
			return io.NopCloser(&r), nil
		}
	case *strings.Reader:
		p.ContentLength = int64(b.Len())
		snapshot := *b
		p.GetBody = func() (io.ReadCloser, error) {
			r := snapshot
			return io.NopCloser(&r), nil
		}
	case io.Reader:
		if sizer, ok := b.(interface{ Size() int64 }); ok {
			p.ContentLength = sizer.Size()
		}
		cb, ok := b.(io.ReadCloser)
		if !ok {
			cb = io.NopCloser(b)
		}
		once := uint32(0)
		p.GetBody = func() (io.ReadCloser, error) {
			if atomic.CompareAndSwapUint32(&once, 0, 1) {
				return cb, nil
			}
			return nil, http.ErrBodyReadAfterClose
		}
	default:
		return nil, fmt.Errorf("unsupported entity type: %T", entity)
	}
	return p, nil
}
