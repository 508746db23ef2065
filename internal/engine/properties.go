package engine

import (
	"fmt"
	"time"

	"github.com/frankli0324/go-xhr/internal/http"
)

const (
	propTimeout         = "timeout"
	propWithCredentials = "withCredentials"
)

func (r *Request) HasProperty(name string) bool {
	switch name {
	case propTimeout, propWithCredentials:
		return true
	}
	return false
}

// SetProperty sets timeout (milliseconds or a [time.Duration]) or
// withCredentials. withCredentials can't change once the request is sent.
func (r *Request) SetProperty(name string, value interface{}) error {
	switch name {
	case propTimeout:
		d, err := toDuration(value)
		if err != nil {
			return err
		}
		r.mu.Lock()
		r.timeout = d
		r.mu.Unlock()
		return nil
	case propWithCredentials:
		b, ok := value.(bool)
		if !ok {
			return fmt.Errorf("%w: withCredentials must be a bool, got %T", ErrSyntax, value)
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.sendFlag || r.state > http.Opened {
			return fmt.Errorf("%w: withCredentials after send", ErrInvalidState)
		}
		r.withCredentials = b
		return nil
	}
	return fmt.Errorf("unknown property %q", name)
}

func toDuration(v interface{}) (time.Duration, error) {
	switch v := v.(type) {
	case time.Duration:
		return v, nil
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	case string:
		return time.ParseDuration(v)
	}
	return 0, fmt.Errorf("%w: timeout must be a number of milliseconds, got %T", ErrSyntax, v)
}
