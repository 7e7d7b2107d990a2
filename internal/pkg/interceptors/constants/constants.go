package constants

// contextKey is an unexported type for context keys in this package.
type contextKey string

// HTTP header names in canonical form, as sent to the upstream services.
const (
	HeaderXRequestId      = "X-Request-Id"
	HeaderXIdempotencyKey = "X-Idempotency-Key"
)

const (
	// ContextKeyRequestID carries the id chi assigned to the inbound request.
	ContextKeyRequestID contextKey = "request_id"
	// ContextKeyIdempotencyKey carries the key for the next upstream write.
	ContextKeyIdempotencyKey contextKey = "idempotency_key"
)
