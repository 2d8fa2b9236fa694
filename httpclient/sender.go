package httpclient

import (
	"context"

	"github.com/kbukum/hurl/domain"
)

// Sender performs one HTTP exchange. Implementations return TRANSPORT_FAILED
// or RESPONSE_INVALID errors; a non-2xx status is a normal response.
type Sender interface {
	Send(ctx context.Context, req domain.Request) (domain.Response, error)
}

// SenderFunc adapts a function to Sender.
type SenderFunc func(ctx context.Context, req domain.Request) (domain.Response, error)

// Send calls f.
func (f SenderFunc) Send(ctx context.Context, req domain.Request) (domain.Response, error) {
	return f(ctx, req)
}
