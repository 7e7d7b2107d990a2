package httpx

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/order-console/internal/console/core/monitor"
	"github.com/jcmexdev/order-console/internal/console/core/ordering"
	"github.com/jcmexdev/order-console/internal/console/core/ports"
	"github.com/jcmexdev/order-console/internal/console/infra/adapters/service"
)

// Handler serves the staff console pages.
type Handler struct {
	catalog     ports.CatalogService
	orders      ports.OrderService
	ordering    *ordering.Service
	monitorOpts []monitor.Option
	pollEvery   string
	views       views
}

type HandlerOption func(*Handler)

// WithPollInterval sets how often the orders page re-fetches while orders
// are in flight.
func WithPollInterval(d time.Duration) HandlerOption {
	return func(h *Handler) {
		if d > 0 {
			h.monitorOpts = append(h.monitorOpts, monitor.WithInterval(d))
			h.pollEvery = d.String()
		}
	}
}

func NewHandler(catalog ports.CatalogService, orders ports.OrderService, svc *ordering.Service, opts ...HandlerOption) (*Handler, error) {
	v, err := loadViews()
	if err != nil {
		return nil, err
	}
	h := &Handler{
		catalog:   catalog,
		orders:    orders,
		ordering:  svc,
		pollEvery: monitor.DefaultInterval.String(),
		views:     v,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

// ListProducts renders the catalog with one fetch per page load.
func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "list products", "error", err)
		h.views.render(w, r, statusFor(err), pageProducts, "Products", "products", productsView{Error: err.Error()})
		return
	}
	h.views.render(w, r, http.StatusOK, pageProducts, "Products", "products", productsView{Products: products})
}

// NewDraft starts an order draft and sends the browser to its builder.
func (h *Handler) NewDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.ordering.NewDraft(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "create draft", "error", err)
		h.views.renderError(w, r, http.StatusInternalServerError, "New Order", "Could not start a new order")
		return
	}
	http.Redirect(w, r, draftPath(d.ID), http.StatusSeeOther)
}

// GetDraft renders the builder, or the confirmation once the draft became
// an order, so reloading after a submission shows the order again.
func (h *Handler) GetDraft(w http.ResponseWriter, r *http.Request) {
	d, err := h.ordering.Draft(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.draftError(w, r, err)
		return
	}
	if conf := ordering.ConfirmationFor(d); conf != nil {
		h.views.render(w, r, http.StatusOK, pageConfirmation, "Order Created", "new", confirmationView{conf})
		return
	}
	h.renderDraft(w, r, http.StatusOK, d)
}

// UpdateDraft handles every builder button. The customer fields are saved
// with each action so nothing typed is lost across round trips.
func (h *Handler) UpdateDraft(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		h.views.renderError(w, r, http.StatusBadRequest, "New Order", "Invalid form submission")
		return
	}

	customerID := r.PostForm.Get("customer_id")
	customerName := r.PostForm.Get("customer_name")
	edit := ordering.Edit{CustomerID: &customerID, CustomerName: &customerName}

	action, productID := parseAction(r.PostForm.Get("action"))
	switch action {
	case "submit":
		h.submitDraft(w, r, id, edit)
		return
	case "discard":
		if err := h.ordering.Discard(r.Context(), id); err != nil && !errors.Is(err, ports.ErrDraftNotFound) {
			slog.WarnContext(r.Context(), "discard draft", "draft_id", id, "error", err)
		}
		http.Redirect(w, r, "/orders/new", http.StatusSeeOther)
		return
	case "add":
		edit.Op = ordering.OpAdd
		edit.ProductID, _ = strconv.Atoi(r.PostForm.Get("product_id"))
	case "inc":
		edit.Op, edit.ProductID = ordering.OpIncrement, productID
	case "dec":
		edit.Op, edit.ProductID = ordering.OpDecrement, productID
	case "set":
		edit.Op, edit.ProductID = ordering.OpSetQuantity, productID
		edit.Quantity, _ = strconv.Atoi(r.PostForm.Get(fmt.Sprintf("qty_%d", productID)))
	case "remove":
		edit.Op, edit.ProductID = ordering.OpRemove, productID
	case "", "save":
	default:
		h.views.renderError(w, r, http.StatusBadRequest, "New Order", fmt.Sprintf("Unknown action %q", action))
		return
	}

	if _, err := h.ordering.Apply(r.Context(), id, edit); err != nil {
		if errors.Is(err, ports.ErrDraftNotFound) {
			h.draftError(w, r, err)
			return
		}
		// Rejected item operations are stored on the draft and shown
		// after the redirect.
		slog.InfoContext(r.Context(), "draft edit rejected", "draft_id", id, "action", action, "error", err)
	}
	http.Redirect(w, r, draftPath(id), http.StatusSeeOther)
}

// submitDraft answers a successful submission with a redirect to the
// draft, which then renders its confirmation.
func (h *Handler) submitDraft(w http.ResponseWriter, r *http.Request, id string, edit ordering.Edit) {
	if _, err := h.ordering.Apply(r.Context(), id, edit); err != nil &&
		!errors.Is(err, ordering.ErrSubmitInFlight) && !errors.Is(err, ordering.ErrDraftSubmitted) {
		h.draftError(w, r, err)
		return
	}

	conf, d, err := h.ordering.Submit(r.Context(), id)
	if err == nil {
		slog.InfoContext(r.Context(), "order confirmed", "draft_id", id, "order_number", conf.OrderNumber)
		http.Redirect(w, r, draftPath(id), http.StatusSeeOther)
		return
	}
	if d == nil && errors.Is(err, ordering.ErrSubmitInFlight) {
		d, _ = h.ordering.Draft(r.Context(), id)
	}
	if d == nil {
		h.draftError(w, r, err)
		return
	}

	status := statusFor(err)
	var verr *entity.ValidationError
	switch {
	case errors.As(err, &verr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, ordering.ErrSubmitInFlight):
		status = http.StatusConflict
		if d.Error == "" {
			d.Error = "Order is being created..."
		}
	}
	h.renderDraft(w, r, status, d)
}

func (h *Handler) renderDraft(w http.ResponseWriter, r *http.Request, status int, d *entity.Draft) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		slog.WarnContext(r.Context(), "list products for draft", "draft_id", d.ID, "error", err)
	}
	h.views.render(w, r, status, pageDraft, "New Order", "new", newDraftView(d, products, err))
}

func (h *Handler) draftError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, ports.ErrDraftNotFound) {
		h.views.renderError(w, r, http.StatusNotFound, "New Order", "This order draft has expired. Start a new order.")
		return
	}
	slog.ErrorContext(r.Context(), "draft", "error", err)
	h.views.renderError(w, r, statusFor(err), "New Order", err.Error())
}

// ListOrders renders the first monitor snapshot. When orders are still in
// flight the page subscribes to OrderEvents for the silent re-fetches.
func (h *Handler) ListOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithCancel(r.Context())
	m := monitor.New(h.orders, h.monitorOpts...)
	m.Start(ctx)
	snap := m.Snapshot()
	cancel()

	status := http.StatusOK
	if snap.Err != nil && len(snap.Orders) == 0 {
		status = statusFor(snap.Err)
	}
	h.views.render(w, r, status, pageOrders, "Orders", "orders", ordersView{Snapshot: snap, PollEvery: h.pollEvery})
}

func (h *Handler) GetOrder(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		h.views.renderError(w, r, http.StatusBadRequest, "Order", "Invalid order id")
		return
	}

	order, err := h.orders.GetOrder(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			h.views.renderError(w, r, http.StatusNotFound, "Order", "Order not found")
			return
		}
		slog.ErrorContext(r.Context(), "get order", "order_id", id, "error", err)
		h.views.renderError(w, r, statusFor(err), "Order", err.Error()+" (Order Service)")
		return
	}
	h.views.render(w, r, http.StatusOK, pageOrder, order.OrderNumber, "orders", order)
}

func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func draftPath(id string) string { return "/drafts/" + id }

// parseAction splits "inc:3" into its verb and product id.
func parseAction(v string) (string, int) {
	verb, arg, _ := strings.Cut(v, ":")
	id, _ := strconv.Atoi(arg)
	return verb, id
}

// statusFor maps upstream failures to a response status: unreachable or
// failing upstreams are a bad gateway, upstream 4xx pass through.
func statusFor(err error) int {
	var apiErr *service.APIError
	if errors.As(err, &apiErr) {
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			return apiErr.StatusCode
		}
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
