package service

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/order-console/internal/console/core/ports"
)

// HTTPCatalogService talks to the catalog service REST API.
type HTTPCatalogService struct {
	client *restClient
}

// NewHTTPCatalogService returns the port backed by baseURL. A nil
// httpClient selects NewHTTPClient().
func NewHTTPCatalogService(baseURL string, httpClient *http.Client) ports.CatalogService {
	return &HTTPCatalogService{client: newRESTClient(CatalogServiceName, baseURL, httpClient)}
}

var _ ports.CatalogService = (*HTTPCatalogService)(nil)

type productsResponse struct {
	Success  bool             `json:"success"`
	Count    int              `json:"count"`
	Products []entity.Product `json:"products"`
}

func (s *HTTPCatalogService) ListProducts(ctx context.Context) ([]entity.Product, error) {
	var res productsResponse
	if err := s.client.do(ctx, http.MethodGet, "/products", nil, &res); err != nil {
		return nil, err
	}
	if res.Products == nil {
		return []entity.Product{}, nil
	}
	return res.Products, nil
}

// GetProduct accepts both {"product": {...}} and a bare product object.
func (s *HTTPCatalogService) GetProduct(ctx context.Context, id int) (*entity.Product, error) {
	var raw json.RawMessage
	if err := s.client.do(ctx, http.MethodGet, "/products/"+strconv.Itoa(id), nil, &raw); err != nil {
		return nil, err
	}

	var wrapped struct {
		Product *entity.Product `json:"product"`
	}
	if err := json.Unmarshal(raw, &wrapped); err == nil && wrapped.Product != nil {
		return wrapped.Product, nil
	}

	var p entity.Product
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, &APIError{
			Service:    CatalogServiceName,
			StatusCode: http.StatusOK,
			Message:    "Invalid response from " + CatalogServiceName,
			Err:        err,
		}
	}
	return &p, nil
}
