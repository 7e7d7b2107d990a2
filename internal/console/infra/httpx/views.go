package httpx

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/order-console/internal/console/core/monitor"
	"github.com/jcmexdev/order-console/internal/console/core/ordering"
)

//go:embed templates/*.html
var templateFS embed.FS

const (
	pageProducts     = "products.html"
	pageDraft        = "draft.html"
	pageConfirmation = "confirmation.html"
	pageOrders       = "orders.html"
	pageOrder        = "order.html"
	pageError        = "error.html"
)

var funcs = template.FuncMap{
	"money":       func(m entity.Money) string { return m.String() },
	"statusLabel": func(s entity.Status) string { return strings.ToUpper(string(s)) },
	"stockBadge":  stockBadge,
	"count": func(stats map[entity.Status]int, status string) int {
		return stats[entity.Status(status)]
	},
	"clock": func(t time.Time) string { return t.Local().Format("15:04:05") },
	"datetime": func(ts entity.Timestamp) string {
		if ts.IsZero() {
			return ""
		}
		return ts.Local().Format("2006-01-02 15:04:05")
	},
}

// views holds one template set per page, each joined with the layout.
type views map[string]*template.Template

func loadViews() (views, error) {
	v := views{}
	pages := map[string][]string{
		pageProducts:     {"templates/products.html"},
		pageDraft:        {"templates/draft.html"},
		pageConfirmation: {"templates/confirmation.html"},
		pageOrders:       {"templates/orders.html", "templates/orders_list.html"},
		pageOrder:        {"templates/order.html"},
		pageError:        {"templates/error.html"},
	}
	for name, files := range pages {
		t, err := template.New(name).Funcs(funcs).ParseFS(templateFS, append([]string{"templates/layout.html"}, files...)...)
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", name, err)
		}
		v[name] = t
	}
	return v, nil
}

type layoutData struct {
	Title string
	Nav   string
	Body  any
}

func (v views) render(w http.ResponseWriter, r *http.Request, status int, page, title, nav string, body any) {
	var buf bytes.Buffer
	if err := v[page].ExecuteTemplate(&buf, "layout", layoutData{Title: title, Nav: nav, Body: body}); err != nil {
		slog.ErrorContext(r.Context(), "render page", "page", page, "error", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func (v views) renderError(w http.ResponseWriter, r *http.Request, status int, title, message string) {
	v.render(w, r, status, pageError, title, "", errorView{Title: title, Message: message})
}

func (v views) ordersFragment(w io.Writer, data ordersView) error {
	return v[pageOrders].ExecuteTemplate(w, "orders_list", data)
}

func stockBadge(p entity.Product) string {
	switch p.StockLevel() {
	case entity.StockOut:
		return "OUT OF STOCK"
	case entity.StockLow:
		return fmt.Sprintf("LOW · %d", p.StockQuantity)
	default:
		return fmt.Sprintf("IN STOCK · %d", p.StockQuantity)
	}
}

type errorView struct {
	Title   string
	Message string
}

type productsView struct {
	Products []entity.Product
	Error    string
}

type productOption struct {
	entity.Product
	Disabled bool
	Suffix   string
}

type draftLine struct {
	ProductID    int
	Quantity     int
	Product      entity.Product
	Known        bool
	LineTotal    entity.Money
	CanIncrement bool
	CanDecrement bool
}

type draftView struct {
	Draft        *entity.Draft
	Options      []productOption
	Lines        []draftLine
	Total        entity.Money
	CatalogError string
	Submitting   bool
}

func newDraftView(d *entity.Draft, products []entity.Product, catalogErr error) draftView {
	idx := entity.IndexProducts(products)
	v := draftView{
		Draft:      d,
		Total:      d.Total(idx),
		Submitting: d.Phase == entity.PhaseSubmitting,
	}
	if catalogErr != nil {
		v.CatalogError = catalogErr.Error()
	}

	for _, p := range products {
		opt := productOption{Product: p}
		switch {
		case !p.InStock():
			opt.Disabled, opt.Suffix = true, " (out of stock)"
		case d.Has(p.ID):
			opt.Disabled, opt.Suffix = true, " (added)"
		}
		v.Options = append(v.Options, opt)
	}

	for _, it := range d.Items {
		line := draftLine{ProductID: it.ProductID, Quantity: it.Quantity}
		if p, ok := idx[it.ProductID]; ok {
			line.Product, line.Known = p, true
			line.LineTotal = p.Price.Times(it.Quantity).Round()
			line.CanIncrement = it.Quantity < p.StockQuantity
		}
		line.CanDecrement = it.Quantity > 1
		v.Lines = append(v.Lines, line)
	}
	return v
}

type confirmationView struct {
	*ordering.Confirmation
}

type ordersView struct {
	monitor.Snapshot
	PollEvery string
}
