package http

import "context"

// Handler performs an exchange and waits for it to settle. A rejected
// exchange returns its response along with a *[ResponseError].
type Handler = func(ctx context.Context, req *Request) (*Response, error)

type Middleware func(next Handler) Handler
