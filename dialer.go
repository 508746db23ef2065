package xhr

import (
	"github.com/frankli0324/go-xhr/internal/dialer"
)

type CoreDialer = dialer.CoreDialer
type ResolveConfig = dialer.ResolveConfig

var StaticProxy = dialer.StaticProxy
