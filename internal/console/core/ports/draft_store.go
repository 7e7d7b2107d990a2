package ports

import (
	"context"
	"errors"

	"github.com/jcmexdev/order-console/internal/console/core/domain/entity"
)

var ErrDraftNotFound = errors.New("draft not found")

// DraftStore keeps drafts between page loads. Entries expire on their own;
// the store is not a system of record.
type DraftStore interface {
	// Get returns ErrDraftNotFound when the draft expired or never existed.
	Get(ctx context.Context, id string) (*entity.Draft, error)
	Save(ctx context.Context, d *entity.Draft) error
	Delete(ctx context.Context, id string) error
}
