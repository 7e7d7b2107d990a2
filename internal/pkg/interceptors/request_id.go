package interceptors

import (
	"context"

	"github.com/jcmexdev/order-console/internal/pkg/interceptors/constants"
)

// WithRequestID stores the inbound request id so outgoing calls can carry it.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, constants.ContextKeyRequestID, id)
}

// WithIdempotencyKey marks every outgoing write made with ctx with key.
func WithIdempotencyKey(ctx context.Context, key string) context.Context {
	if key == "" {
		return ctx
	}
	return context.WithValue(ctx, constants.ContextKeyIdempotencyKey, key)
}

func RequestID(ctx context.Context) string {
	return GetContextValue(ctx, constants.ContextKeyRequestID)
}

func IdempotencyKey(ctx context.Context) string {
	return GetContextValue(ctx, constants.ContextKeyIdempotencyKey)
}

// GetContextValue uses the comma-ok idiom so a missing key yields "".
func GetContextValue(ctx context.Context, key any) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
