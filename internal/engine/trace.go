package engine

import (
	"context"
	"crypto/tls"
	"net/http/httptrace"

	"go.uber.org/zap"
)

// SetLogger makes primitives report connection events at debug level.
func (e *Engine) SetLogger(log *zap.Logger) {
	e.log = log
}

func (e *Engine) withTrace(ctx context.Context, url string) context.Context {
	if e.log == nil || !e.log.Core().Enabled(zap.DebugLevel) {
		return ctx
	}
	log := e.log.With(zap.String("url", url))
	return httptrace.WithClientTrace(ctx, &httptrace.ClientTrace{
		DNSDone: func(info httptrace.DNSDoneInfo) {
			log.Debug("dns_done", zap.Int("addrs", len(info.Addrs)), zap.Error(info.Err))
		},
		ConnectDone: func(network, addr string, err error) {
			log.Debug("connect_done", zap.String("network", network), zap.String("addr", addr), zap.Error(err))
		},
		TLSHandshakeDone: func(state tls.ConnectionState, err error) {
			log.Debug("tls_done", zap.String("proto", state.NegotiatedProtocol), zap.Error(err))
		},
		GotConn: func(info httptrace.GotConnInfo) {
			log.Debug("got_conn", zap.Bool("reused", info.Reused))
		},
		GotFirstResponseByte: func() {
			log.Debug("first_byte")
		},
	})
}
