package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jcmexdev/order-console/internal/pkg/interceptors"
	"github.com/jcmexdev/order-console/internal/pkg/telemetry"
)

const (
	CatalogServiceName = "Catalog Service"
	OrderServiceName   = "Order Service"

	// fallbackMessage is used when an error response carries no "error" field.
	fallbackMessage = "Request failed"
)

// ErrNotFound is matched by APIErrors for 404 responses.
var ErrNotFound = errors.New("not found")

// APIError is returned for every failed upstream call. StatusCode is 0
// when the service could not be reached at all.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Err        error
}

func (e *APIError) Error() string { return e.Message }

func (e *APIError) Unwrap() error { return e.Err }

func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// Unreachable reports a transport-level failure.
func (e *APIError) Unreachable() bool { return e.StatusCode == 0 }

// envelope is the common shape of every upstream response.
type envelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// restClient performs single-attempt JSON calls against one upstream.
// No retries, no client-side timeout and no caching: the caller's context
// is the only bound on a call.
type restClient struct {
	service string
	baseURL string
	http    *http.Client
	tracer  trace.Tracer
}

func newRESTClient(service, baseURL string, httpClient *http.Client) *restClient {
	if httpClient == nil {
		httpClient = NewHTTPClient()
	}
	return &restClient{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		tracer:  telemetry.Tracer("upstream"),
	}
}

// NewHTTPClient returns the http.Client the adapters use by default.
func NewHTTPClient() *http.Client {
	return &http.Client{Transport: interceptors.NewTransport(nil)}
}

func (c *restClient) do(ctx context.Context, method, path string, body, out any) error {
	ctx, span := c.tracer.Start(ctx, c.service+" "+method+" "+path,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("peer.service", c.service),
		),
	)
	defer span.End()

	err := c.roundTrip(ctx, method, path, body, out)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	return err
}

func (c *restClient) roundTrip(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", c.service, err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return &APIError{
			Service: c.service,
			Message: c.service + " is unavailable",
			Err:     err,
		}
	}
	defer res.Body.Close()

	return c.handleResponse(res, out)
}

// handleResponse maps non-2xx statuses to *APIError carrying the
// upstream's "error" text, and decodes successful bodies into out.
func (c *restClient) handleResponse(res *http.Response, out any) error {
	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return &APIError{
			Service:    c.service,
			StatusCode: res.StatusCode,
			Message:    c.service + " is unavailable",
			Err:        fmt.Errorf("read body: %w", err),
		}
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		msg := fallbackMessage
		var env envelope
		if json.Unmarshal(raw, &env) == nil && env.Error != "" {
			msg = env.Error
		}
		return &APIError{
			Service:    c.service,
			StatusCode: res.StatusCode,
			Message:    msg,
			Err:        fmt.Errorf("%s responded %d", c.service, res.StatusCode),
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &APIError{
			Service:    c.service,
			StatusCode: res.StatusCode,
			Message:    "Invalid response from " + c.service,
			Err:        fmt.Errorf("decode body: %w", err),
		}
	}
	return nil
}
