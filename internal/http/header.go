package http

import (
	"encoding/json"
	"net/textproto"
)

// Header maps canonical header names to the values received for them, in
// arrival order. A name received once holds a single value; repeated names
// are promoted to a sequence.
type Header map[string][]string

// Add appends value to name. name is expected to be canonical already.
func (h Header) Add(name, value string) {
	h[name] = append(h[name], value)
}

// Get returns the first value of name. name is looked up as given first,
// then canonicalized with [textproto.CanonicalMIMEHeaderKey].
func (h Header) Get(name string) string {
	if v := h.Values(name); len(v) > 0 {
		return v[0]
	}
	return ""
}

func (h Header) Values(name string) []string {
	if v, ok := h[name]; ok {
		return v
	}
	return h[textproto.CanonicalMIMEHeaderKey(name)]
}

// IsMulti reports whether name has been promoted to a sequence.
func (h Header) IsMulti(name string) bool {
	return len(h.Values(name)) > 1
}

// MarshalJSON encodes single values as strings and promoted values as
// arrays.
func (h Header) MarshalJSON() ([]byte, error) {
	m := make(map[string]interface{}, len(h))
	for k, v := range h {
		if len(v) == 1 {
			m[k] = v[0]
		} else {
			m[k] = v
		}
	}
	return json.Marshal(m)
}

func (h *Header) UnmarshalJSON(b []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(b, &m); err != nil {
		return err
	}
	*h = make(Header, len(m))
	for k, raw := range m {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			(*h)[k] = []string{s}
			continue
		}
		var ss []string
		if err := json.Unmarshal(raw, &ss); err != nil {
			return err
		}
		(*h)[k] = ss
	}
	return nil
}
