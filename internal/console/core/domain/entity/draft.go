package entity

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrAlreadyInDraft = errors.New("product already added to the order")
	ErrOutOfStock     = errors.New("product is out of stock")
	ErrNotInDraft     = errors.New("product is not part of the order")
)

// Validation messages, in the order the checks run.
const (
	MsgCustomerIDRequired   = "Customer ID is required"
	MsgCustomerNameRequired = "Customer name is required"
	MsgItemsRequired        = "Add at least one product"
)

// ValidationError blocks submission of a draft. It is always recoverable.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

type Phase string

const (
	PhaseBuilding   Phase = "building"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
)

// Receipt is the order a submitted draft became.
type Receipt struct {
	OrderID     int    `json:"order_id"`
	OrderNumber string `json:"order_number"`
	TotalPrice  Money  `json:"total_price"`
}

type DraftItem struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

// Draft is an order being assembled by staff before submission.
type Draft struct {
	ID           string      `json:"id"`
	CustomerID   string      `json:"customer_id"`
	CustomerName string      `json:"customer_name"`
	Items        []DraftItem `json:"items"`
	Phase        Phase       `json:"phase"`
	Error        string      `json:"error,omitempty"`
	Receipt      *Receipt    `json:"receipt,omitempty"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

func NewDraft(id string) *Draft {
	return &Draft{ID: id, Phase: PhaseBuilding, Items: []DraftItem{}, UpdatedAt: time.Now().UTC()}
}

// Submitted reports whether the draft already became an order. A
// submitted draft is read-only and only kept to show its confirmation.
func (d *Draft) Submitted() bool {
	return d.Phase == PhaseSuccess && d.Receipt != nil
}

func (d *Draft) indexOf(productID int) int {
	for i, it := range d.Items {
		if it.ProductID == productID {
			return i
		}
	}
	return -1
}

func (d *Draft) Has(productID int) bool { return d.indexOf(productID) >= 0 }

// AddItem appends the product with quantity 1.
func (d *Draft) AddItem(p Product) error {
	if d.Has(p.ID) {
		return ErrAlreadyInDraft
	}
	if !p.InStock() {
		return ErrOutOfStock
	}
	d.Items = append(d.Items, DraftItem{ProductID: p.ID, Quantity: 1})
	return nil
}

// SetQuantity stores qty clamped to [1, p.StockQuantity].
func (d *Draft) SetQuantity(p Product, qty int) error {
	i := d.indexOf(p.ID)
	if i < 0 {
		return ErrNotInDraft
	}
	d.Items[i].Quantity = ClampQuantity(qty, p.StockQuantity)
	return nil
}

func (d *Draft) Increment(p Product) error {
	i := d.indexOf(p.ID)
	if i < 0 {
		return ErrNotInDraft
	}
	return d.SetQuantity(p, d.Items[i].Quantity+1)
}

func (d *Draft) Decrement(p Product) error {
	i := d.indexOf(p.ID)
	if i < 0 {
		return ErrNotInDraft
	}
	return d.SetQuantity(p, d.Items[i].Quantity-1)
}

func (d *Draft) RemoveItem(productID int) {
	i := d.indexOf(productID)
	if i < 0 {
		return
	}
	d.Items = append(d.Items[:i], d.Items[i+1:]...)
}

// ClampQuantity keeps qty within [1, stock]. The lower bound wins when
// stock has dropped to zero after the item was added.
func ClampQuantity(qty, stock int) int {
	if qty > stock {
		qty = stock
	}
	if qty < 1 {
		qty = 1
	}
	return qty
}

// Total sums unit price times quantity. Items whose product is not in the
// index contribute nothing.
func (d *Draft) Total(products ProductIndex) Money {
	var total Money
	for _, it := range d.Items {
		p, ok := products[it.ProductID]
		if !ok {
			continue
		}
		total += p.Price.Times(it.Quantity)
	}
	return total.Round()
}

// Validate runs the submission checks in order; the first failure wins.
func (d *Draft) Validate() error {
	if strings.TrimSpace(d.CustomerID) == "" {
		return &ValidationError{Field: "customer_id", Message: MsgCustomerIDRequired}
	}
	if strings.TrimSpace(d.CustomerName) == "" {
		return &ValidationError{Field: "customer_name", Message: MsgCustomerNameRequired}
	}
	if len(d.Items) == 0 {
		return &ValidationError{Field: "items", Message: MsgItemsRequired}
	}
	return nil
}

// Request builds the order submission with trimmed customer fields.
func (d *Draft) Request() CreateOrderRequest {
	items := make([]CreateOrderItem, 0, len(d.Items))
	for _, it := range d.Items {
		items = append(items, CreateOrderItem{ProductID: it.ProductID, Quantity: it.Quantity})
	}
	return CreateOrderRequest{
		CustomerID:   strings.TrimSpace(d.CustomerID),
		CustomerName: strings.TrimSpace(d.CustomerName),
		Items:        items,
	}
}
