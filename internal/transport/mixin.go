package transport

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/frankli0324/go-xhr/internal/http"
)

// safeMixin copies props onto target. Only properties target already has
// are written and failed writes are dropped: some properties only become
// writable at a certain phase of the exchange.
func safeMixin(target http.Primitive, props map[string]interface{}, log *zap.Logger) {
	if len(props) == 0 {
		return
	}
	ps, ok := target.(http.PropertySetter)
	if !ok {
		return
	}
	for _, name := range sortedKeys(props) {
		if !ps.HasProperty(name) {
			continue
		}
		if err := trySetProperty(ps, name, props[name]); err != nil {
			log.Debug("mixin_skipped", zap.String("property", name), zap.Error(err))
		}
	}
}

func trySetProperty(ps http.PropertySetter, name string, value interface{}) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("set %s: %v", name, r)
		}
	}()
	return ps.SetProperty(name, value)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
