// Package ordering runs the create-order workflow: a draft is built,
// submitted once, and either confirmed or handed back with the error.
package ordering

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
	"github.com/jcmexdev/order-console/internal/console/core/ports"
	"github.com/jcmexdev/order-console/internal/pkg/interceptors"
)

// ErrSubmitInFlight is returned while a submission of the same draft is running.
var ErrSubmitInFlight = errors.New("order submission already in progress")

// ErrDraftSubmitted is returned when editing a draft that already became an order.
var ErrDraftSubmitted = errors.New("order draft was already submitted")

// staleSubmission bounds how long a stored "submitting" phase blocks a
// retry when the instance that started it is gone.
const staleSubmission = 2 * time.Minute

type Op string

const (
	OpNone        Op = ""
	OpAdd         Op = "add"
	OpIncrement   Op = "inc"
	OpDecrement   Op = "dec"
	OpSetQuantity Op = "set"
	OpRemove      Op = "remove"
)

// Edit is one change to a draft. Customer fields are applied when non-nil,
// before the item operation.
type Edit struct {
	CustomerID   *string
	CustomerName *string
	Op           Op
	ProductID    int
	Quantity     int
}

// Confirmation is what staff see after a successful submission. Invoice
// generation happens asynchronously upstream, so the status starts pending.
type Confirmation struct {
	OrderID     int
	OrderNumber string
	TotalPrice  entity.Money
	Status      entity.Status
}

type Service struct {
	catalog ports.CatalogService
	orders  ports.OrderService
	drafts  ports.DraftStore
	now     func() time.Time

	inFlight sync.Map // draft id -> struct{}
	locks    [32]sync.Mutex
}

func NewService(catalog ports.CatalogService, orders ports.OrderService, drafts ports.DraftStore) *Service {
	return &Service{catalog: catalog, orders: orders, drafts: drafts, now: time.Now}
}

// lock serialises the load-modify-save cycles on one draft.
func (s *Service) lock(id string) func() {
	h := fnv.New32a()
	h.Write([]byte(id))
	mu := &s.locks[h.Sum32()%uint32(len(s.locks))]
	mu.Lock()
	return mu.Unlock
}

// ConfirmationFor rebuilds the confirmation of a submitted draft.
func ConfirmationFor(d *entity.Draft) *Confirmation {
	if !d.Submitted() {
		return nil
	}
	return &Confirmation{
		OrderID:     d.Receipt.OrderID,
		OrderNumber: d.Receipt.OrderNumber,
		TotalPrice:  d.Receipt.TotalPrice,
		Status:      entity.StatusPending,
	}
}

func (s *Service) NewDraft(ctx context.Context) (*entity.Draft, error) {
	d := entity.NewDraft(uuid.NewString())
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	slog.InfoContext(ctx, "draft created", "draft_id", d.ID)
	return d, nil
}

func (s *Service) Draft(ctx context.Context, id string) (*entity.Draft, error) {
	return s.drafts.Get(ctx, id)
}

// Discard drops a draft, e.g. when staff start over.
func (s *Service) Discard(ctx context.Context, id string) error {
	if _, busy := s.inFlight.Load(id); busy {
		return ErrSubmitInFlight
	}
	unlock := s.lock(id)
	defer unlock()
	return s.drafts.Delete(ctx, id)
}

// Apply edits the draft and saves it. When the item operation is rejected
// (duplicate, out of stock) the customer fields are still saved and the
// returned error explains the rejection. Edits are refused while the draft
// is being submitted and once it became an order.
func (s *Service) Apply(ctx context.Context, id string, e Edit) (*entity.Draft, error) {
	if _, busy := s.inFlight.Load(id); busy {
		d, err := s.drafts.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		return d, ErrSubmitInFlight
	}

	unlock := s.lock(id)
	defer unlock()

	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Submitted() {
		return d, ErrDraftSubmitted
	}
	if s.submitting(d) {
		return d, ErrSubmitInFlight
	}

	if e.CustomerID != nil {
		d.CustomerID = *e.CustomerID
	}
	if e.CustomerName != nil {
		d.CustomerName = *e.CustomerName
	}
	d.Error = ""

	opErr := s.applyOp(ctx, d, e)
	if opErr != nil {
		d.Error = userMessage(opErr)
	}

	d.UpdatedAt = s.now().UTC()
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, err
	}
	return d, opErr
}

func (s *Service) applyOp(ctx context.Context, d *entity.Draft, e Edit) error {
	switch e.Op {
	case OpNone:
		return nil
	case OpRemove:
		d.RemoveItem(e.ProductID)
		return nil
	case OpAdd, OpIncrement, OpDecrement, OpSetQuantity:
	default:
		return fmt.Errorf("unknown draft operation %q", e.Op)
	}

	if e.ProductID == 0 {
		return errors.New("select a product first")
	}
	p, err := s.catalog.GetProduct(ctx, e.ProductID)
	if err != nil {
		return err
	}

	switch e.Op {
	case OpAdd:
		return d.AddItem(*p)
	case OpIncrement:
		return d.Increment(*p)
	case OpDecrement:
		return d.Decrement(*p)
	default:
		return d.SetQuantity(*p, e.Quantity)
	}
}

// Submit validates and submits the draft with a single upstream call. On
// failure the draft goes back to building with the error attached. On
// success the draft keeps the order as its receipt until it expires;
// submitting it again returns the same confirmation without a new call.
func (s *Service) Submit(ctx context.Context, id string) (*Confirmation, *entity.Draft, error) {
	if _, busy := s.inFlight.LoadOrStore(id, struct{}{}); busy {
		return nil, nil, ErrSubmitInFlight
	}
	defer s.inFlight.Delete(id)

	unlock := s.lock(id)
	defer unlock()

	d, err := s.drafts.Get(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	if d.Submitted() {
		return ConfirmationFor(d), d, nil
	}
	if s.submitting(d) {
		return nil, d, ErrSubmitInFlight
	}

	d.Error = ""
	if err := d.Validate(); err != nil {
		d.Error = err.Error()
		if saveErr := s.drafts.Save(ctx, d); saveErr != nil {
			return nil, nil, saveErr
		}
		return nil, d, err
	}

	d.Phase = entity.PhaseSubmitting
	d.UpdatedAt = s.now().UTC()
	if err := s.drafts.Save(ctx, d); err != nil {
		return nil, nil, err
	}

	// Detach from the request so a closed tab cannot leave the draft
	// stuck in submitting; the draft id doubles as idempotency key.
	submitCtx := interceptors.WithIdempotencyKey(context.WithoutCancel(ctx), d.ID)

	slog.InfoContext(ctx, "submitting order", "draft_id", d.ID, "customer_id", d.Request().CustomerID, "items", len(d.Items))

	order, err := s.orders.CreateOrder(submitCtx, d.Request())
	if err != nil {
		slog.ErrorContext(ctx, "order submission failed", "draft_id", d.ID, "error", err)
		d.Phase = entity.PhaseBuilding
		d.Error = userMessage(err)
		d.UpdatedAt = s.now().UTC()
		if saveErr := s.drafts.Save(submitCtx, d); saveErr != nil {
			slog.ErrorContext(ctx, "failed to restore draft after submission error", "draft_id", d.ID, "error", saveErr)
		}
		return nil, d, err
	}

	d.Phase = entity.PhaseSuccess
	d.Receipt = &entity.Receipt{OrderID: order.ID, OrderNumber: order.OrderNumber, TotalPrice: order.TotalPrice}
	d.UpdatedAt = s.now().UTC()
	if err := s.drafts.Save(submitCtx, d); err != nil {
		slog.WarnContext(ctx, "failed to store receipt of submitted draft", "draft_id", d.ID, "error", err)
	}

	slog.InfoContext(ctx, "order created", "draft_id", d.ID, "order_number", order.OrderNumber)

	return ConfirmationFor(d), d, nil
}

func (s *Service) submitting(d *entity.Draft) bool {
	return d.Phase == entity.PhaseSubmitting && s.now().Sub(d.UpdatedAt) < staleSubmission
}

func userMessage(err error) string {
	switch {
	case errors.Is(err, entity.ErrAlreadyInDraft):
		return "Product is already in the order"
	case errors.Is(err, entity.ErrOutOfStock):
		return "Product is out of stock"
	case errors.Is(err, entity.ErrNotInDraft):
		return "Product is not in the order"
	default:
		return err.Error()
	}
}
