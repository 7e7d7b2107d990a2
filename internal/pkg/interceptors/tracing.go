package interceptors

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/jcmexdev/order-console/internal/pkg/interceptors/constants"
)

// Transport decorates outgoing upstream requests with the request id,
// the idempotency key (writes only) and W3C trace context.
type Transport struct {
	Base http.RoundTripper
}

// NewTransport wraps base; a nil base means http.DefaultTransport.
func NewTransport(base http.RoundTripper) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{Base: base}
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	ctx := req.Context()

	// RoundTrippers must not mutate the caller's request.
	out := req.Clone(ctx)

	requestID := RequestID(ctx)
	if requestID != "" {
		out.Header.Set(constants.HeaderXRequestId, requestID)
	}

	idempotencyKey := IdempotencyKey(ctx)
	if idempotencyKey != "" && out.Method != http.MethodGet && out.Method != http.MethodHead {
		out.Header.Set(constants.HeaderXIdempotencyKey, idempotencyKey)
	}

	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(out.Header))

	slog.DebugContext(ctx, "upstream call",
		"method", out.Method,
		"url", out.URL.String(),
		"request_id", requestID,
		"idempotency_key", idempotencyKey,
	)

	return t.Base.RoundTrip(out)
}
