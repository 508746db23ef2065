// package dialer configures how the default engine reaches servers.
package dialer

import (
	"github.com/frankli0324/go-xhr/internal/dialer"
)

// CoreDialer holds no connection state, so it can be swapped between
// engines without pain. Like [net/http.Transport], it holds the connection
// related configs: resolver, proxy selection and *[crypto/tls.Config].
type CoreDialer = dialer.CoreDialer

// we need a dedicated resolver for two scenarios:
//
//  1. resolve hostnames through static entries, like /etc/hosts
//  2. to customize the DNS server used for resolving hostname
//
// the standard library only follows the system configuration, leaving us
// the [net.Resolver.Dial] hook with a Go resolver.
type ResolveConfig = dialer.ResolveConfig

// StaticProxy sends every request through one proxy URL.
var StaticProxy = dialer.StaticProxy
