package ports

import (
	"context"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
)

// CatalogService is the read side of the catalog service.
type CatalogService interface {
	ListProducts(ctx context.Context) ([]entity.Product, error)
	GetProduct(ctx context.Context, id int) (*entity.Product, error)
}

// OrderService is the order service as seen by staff.
type OrderService interface {
	ListOrders(ctx context.Context) ([]entity.Order, error)
	GetOrder(ctx context.Context, id int) (*entity.Order, error)
	CreateOrder(ctx context.Context, req entity.CreateOrderRequest) (*entity.Order, error)
}
