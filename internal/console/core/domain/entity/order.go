package entity

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
)

// Terminal reports whether the order service is done with the order.
// Unknown statuses are treated as terminal so they never keep a poll alive.
func (s Status) Terminal() bool {
	return s != StatusPending && s != StatusProcessing
}

// Order is owned by the order service; the console only reads it.
type Order struct {
	ID           int         `json:"id"`
	OrderNumber  string      `json:"order_number"`
	CustomerID   string      `json:"customer_id"`
	CustomerName string      `json:"customer_name"`
	Status       Status      `json:"status"`
	TotalPrice   Money       `json:"total_price"`
	PDFURL       string      `json:"pdf_url,omitempty"`
	Items        []OrderItem `json:"items"`
	CreatedAt    Timestamp   `json:"created_at"`
	UpdatedAt    Timestamp   `json:"updated_at"`
}

type OrderItem struct {
	ProductID   int    `json:"product_id"`
	ProductCode string `json:"product_code"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	UnitPrice   Money  `json:"unit_price"`
	TotalPrice  Money  `json:"total_price"`
}

// CreateOrderItem is a line of an order submission.
type CreateOrderItem struct {
	ProductID int `json:"product_id"`
	Quantity  int `json:"quantity"`
}

type CreateOrderRequest struct {
	CustomerID   string            `json:"customer_id"`
	CustomerName string            `json:"customer_name"`
	Items        []CreateOrderItem `json:"items"`
}

// AnyInFlight reports whether at least one order is still pending or processing.
func AnyInFlight(orders []Order) bool {
	for _, o := range orders {
		if !o.Status.Terminal() {
			return true
		}
	}
	return false
}

// CountByStatus tallies orders per status.
func CountByStatus(orders []Order) map[Status]int {
	out := make(map[Status]int, 3)
	for _, o := range orders {
		out[o.Status]++
	}
	return out
}
