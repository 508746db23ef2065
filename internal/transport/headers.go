package transport

import (
	"strings"

	"github.com/frankli0324/go-xhr/internal/http"
)

// ParseHeaders parses the blob returned by getAllResponseHeaders. Lines may
// be separated by any run of CR and LF. Names are normalized with
// canonicalize, and a name seen more than once keeps all of its values in
// arrival order.
//
// Lines without a name are dropped.
func ParseHeaders(raw string, canonicalize func(string) string) http.Header {
	headers := http.Header{}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return headers
	}

	lines := strings.FieldsFunc(raw, func(r rune) bool { return r == '\r' || r == '\n' })
	for _, line := range lines {
		name, value, _ := strings.Cut(line, ":")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if canonicalize != nil {
			name = canonicalize(name)
		}
		headers.Add(name, strings.TrimSpace(value))
	}
	return headers
}
