package goConsole

import (
	"context"

	"github.com/MrEthical07/goConsole/api"
)

// WithRequestID attaches id to ctx. Backend calls made with the returned context send
// it as X-Request-Id and audit events record it.
func WithRequestID(ctx context.Context, id string) context.Context {
	return api.WithRequestID(ctx, id)
}

// RequestIDFromContext returns the request id attached by [WithRequestID].
func RequestIDFromContext(ctx context.Context) string {
	return api.RequestIDFromContext(ctx)
}
