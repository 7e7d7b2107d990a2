package service

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/order-console/internal/console/core/ports"
)

// HTTPOrderService is the adapter that talks to the order service REST API.
type HTTPOrderService struct {
	client *restClient
}

func NewHTTPOrderService(baseURL string, httpClient *http.Client) ports.OrderService {
	return &HTTPOrderService{client: newRESTClient(OrderServiceName, baseURL, httpClient)}
}

// Ensure the adapter implements the port at compile time.
var _ ports.OrderService = (*HTTPOrderService)(nil)

type ordersResponse struct {
	Success bool           `json:"success"`
	Count   int            `json:"count"`
	Orders  []entity.Order `json:"orders"`
}

type orderResponse struct {
	Success bool          `json:"success"`
	Message string        `json:"message,omitempty"`
	Order   *entity.Order `json:"order"`
}

func (s *HTTPOrderService) ListOrders(ctx context.Context) ([]entity.Order, error) {
	var res ordersResponse
	if err := s.client.do(ctx, http.MethodGet, "/orders", nil, &res); err != nil {
		return nil, err
	}
	if res.Orders == nil {
		return []entity.Order{}, nil
	}
	return res.Orders, nil
}

func (s *HTTPOrderService) GetOrder(ctx context.Context, id int) (*entity.Order, error) {
	var res orderResponse
	if err := s.client.do(ctx, http.MethodGet, "/orders/"+strconv.Itoa(id), nil, &res); err != nil {
		return nil, err
	}
	if res.Order == nil {
		return nil, fmt.Errorf("GetOrder: empty order in response")
	}
	return res.Order, nil
}

// CreateOrder submits the order. The idempotency key, if any, travels in ctx.
func (s *HTTPOrderService) CreateOrder(ctx context.Context, req entity.CreateOrderRequest) (*entity.Order, error) {
	var res orderResponse
	if err := s.client.do(ctx, http.MethodPost, "/orders", req, &res); err != nil {
		return nil, err
	}
	if res.Order == nil {
		return nil, fmt.Errorf("CreateOrder: empty order in response")
	}
	return res.Order, nil
}
