package middlewares

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"

	"github.com/jcmexdev/order-console/internal/pkg/interceptors"
)

func TestAttachRequestContext(t *testing.T) {
	var got string
	h := middleware.RequestID(AttachRequestContext(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = interceptors.RequestID(r.Context())
	})))

	req := httptest.NewRequest(http.MethodGet, "/orders", nil)
	req.Header.Set(middleware.RequestIDHeader, "req-from-proxy")
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.Equal(t, "req-from-proxy", got)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/orders", nil))
	assert.NotEmpty(t, got)
	assert.NotEqual(t, "req-from-proxy", got)
}
