package httpx

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/jcmexdev/order-console/internal/console/infra/httpx/middlewares"
)

func NewRouter(handler *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewares.AttachRequestContext)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", handler.Healthz)
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/products", http.StatusFound)
	})

	r.Get("/products", handler.ListProducts)

	r.Get("/orders/new", handler.NewDraft)
	r.Get("/drafts/{id}", handler.GetDraft)
	r.Post("/drafts/{id}", handler.UpdateDraft)

	r.Get("/orders", handler.ListOrders)
	r.Get("/orders/events", handler.OrderEvents)
	r.Get("/orders/{id}", handler.GetOrder)
	return r
}
