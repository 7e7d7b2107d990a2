package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/order-console/internal/console/core/ports"
)

// Ensure FakeUpstreams implements both ports at compile time.
var (
	_ ports.CatalogService = (*FakeUpstreams)(nil)
	_ ports.OrderService   = (*FakeUpstreams)(nil)
)

// FakeUpstreams is an in-memory catalog and order service intended for
// local development and manual testing only. Do NOT use in production.
//
// Orders move from pending to processing to completed as time passes, so
// the orders page has something to poll for.
type FakeUpstreams struct {
	mu       sync.RWMutex
	products []*entity.Product
	orders   []*entity.Order
	nextID   int

	now             func() time.Time
	processingAfter time.Duration
	completedAfter  time.Duration
}

// FakeOption tweaks a FakeUpstreams.
type FakeOption func(*FakeUpstreams)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) FakeOption {
	return func(f *FakeUpstreams) { f.now = now }
}

// WithProgress sets how long an order stays pending and how long until it completes.
func WithProgress(processingAfter, completedAfter time.Duration) FakeOption {
	return func(f *FakeUpstreams) {
		f.processingAfter = processingAfter
		f.completedAfter = completedAfter
	}
}

// WithProducts replaces the seeded catalog.
func WithProducts(products ...entity.Product) FakeOption {
	return func(f *FakeUpstreams) {
		f.products = f.products[:0]
		for i := range products {
			p := products[i]
			f.products = append(f.products, &p)
		}
	}
}

func NewFakeUpstreams(opts ...FakeOption) *FakeUpstreams {
	f := &FakeUpstreams{
		products: []*entity.Product{
			{ID: 1, Name: "Laptop Pro 15", Code: "LAP-001", Price: 1299.99, StockQuantity: 12},
			{ID: 2, Name: "Wireless Mouse", Code: "MOU-002", Price: 24.50, StockQuantity: 4},
			{ID: 3, Name: "Mechanical Keyboard", Code: "KEY-003", Price: 89.00, StockQuantity: 30},
			{ID: 4, Name: "USB-C Dock", Code: "DOC-004", Price: 149.00, StockQuantity: 0},
		},
		nextID:          1,
		now:             time.Now,
		processingAfter: 3 * time.Second,
		completedAfter:  12 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

func (f *FakeUpstreams) ListProducts(ctx context.Context) ([]entity.Product, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]entity.Product, 0, len(f.products))
	for _, p := range f.products {
		out = append(out, *p)
	}
	return out, nil
}

func (f *FakeUpstreams) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	p := f.product(id)
	if p == nil {
		return nil, fakeError(CatalogServiceName, http.StatusNotFound, "Product not found")
	}
	cp := *p
	return &cp, nil
}

func (f *FakeUpstreams) ListOrders(ctx context.Context) ([]entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	// newest first, like the order service
	out := make([]entity.Order, 0, len(f.orders))
	for i := len(f.orders) - 1; i >= 0; i-- {
		f.advance(f.orders[i])
		out = append(out, copyOrder(f.orders[i]))
	}
	return out, nil
}

func (f *FakeUpstreams) GetOrder(ctx context.Context, id int) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, o := range f.orders {
		if o.ID == id {
			f.advance(o)
			cp := copyOrder(o)
			return &cp, nil
		}
	}
	return nil, fakeError(OrderServiceName, http.StatusNotFound, "Order not found")
}

func (f *FakeUpstreams) CreateOrder(ctx context.Context, req entity.CreateOrderRequest) (*entity.Order, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	customerID := strings.TrimSpace(req.CustomerID)
	customerName := strings.TrimSpace(req.CustomerName)
	switch {
	case customerID == "":
		return nil, fakeError(OrderServiceName, http.StatusBadRequest, "customer_id is required")
	case customerName == "":
		return nil, fakeError(OrderServiceName, http.StatusBadRequest, "customer_name is required")
	case len(req.Items) == 0:
		return nil, fakeError(OrderServiceName, http.StatusBadRequest, "At least one item is required")
	}

	// Check every line before touching stock so a rejected order reserves nothing.
	for _, it := range req.Items {
		if it.Quantity < 1 {
			return nil, fakeError(OrderServiceName, http.StatusBadRequest, "quantity must be at least 1")
		}
		p := f.product(it.ProductID)
		if p == nil || p.StockQuantity < it.Quantity {
			return nil, fakeError(OrderServiceName, http.StatusBadRequest, "Insufficient stock for one or more products")
		}
	}

	now := f.now().UTC()
	order := &entity.Order{
		ID:           f.nextID,
		OrderNumber:  fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), strings.ToUpper(uuid.NewString()[:8])),
		CustomerID:   customerID,
		CustomerName: customerName,
		Status:       entity.StatusPending,
		CreatedAt:    entity.Timestamp{Time: now},
		UpdatedAt:    entity.Timestamp{Time: now},
	}
	f.nextID++

	var total entity.Money
	for _, it := range req.Items {
		p := f.product(it.ProductID)
		p.StockQuantity -= it.Quantity
		line := p.Price.Times(it.Quantity)
		total += line
		order.Items = append(order.Items, entity.OrderItem{
			ProductID:   p.ID,
			ProductCode: p.Code,
			ProductName: p.Name,
			Quantity:    it.Quantity,
			UnitPrice:   p.Price,
			TotalPrice:  line.Round(),
		})
	}
	order.TotalPrice = total.Round()

	f.orders = append(f.orders, order)
	cp := copyOrder(order)
	return &cp, nil
}

func (f *FakeUpstreams) product(id int) *entity.Product {
	for _, p := range f.products {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// advance moves the order along its lifecycle based on its age. Caller holds mu.
func (f *FakeUpstreams) advance(o *entity.Order) {
	age := f.now().Sub(o.CreatedAt.Time)
	next := o.Status
	switch {
	case age >= f.completedAfter:
		next = entity.StatusCompleted
	case age >= f.processingAfter:
		next = entity.StatusProcessing
	}
	if next == o.Status {
		return
	}
	o.Status = next
	o.UpdatedAt = entity.Timestamp{Time: f.now().UTC()}
	if next == entity.StatusCompleted {
		o.PDFURL = "/invoices/" + o.OrderNumber + ".pdf"
	}
}

func copyOrder(o *entity.Order) entity.Order {
	cp := *o
	cp.Items = append([]entity.OrderItem(nil), o.Items...)
	return cp
}

func fakeError(service string, status int, msg string) error {
	return &APIError{
		Service:    service,
		StatusCode: status,
		Message:    msg,
		Err:        fmt.Errorf("%s responded %d", service, status),
	}
}
