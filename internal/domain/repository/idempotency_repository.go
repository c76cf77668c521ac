package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sangkips/studio-ledger/internal/domain/entity"
)

// IdempotencyRepository stores the first response to a keyed write so a
// retried payment is answered without posting a second receipt. Keys are
// scoped to the staff member who sent them.
type IdempotencyRepository interface {
	// GetByKey returns the live stored response for a key, nil when unseen
	// or expired
	GetByKey(ctx context.Context, key string, userID uuid.UUID) (*entity.IdempotencyKey, error)

	// Create inserts the row, replacing an expired row for the same key. A
	// live duplicate yields a conflict error, which makes Create usable as a
	// claim shared by every API instance.
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error

	// Complete stores the response on a claimed row
	Complete(ctx context.Context, ikey *entity.IdempotencyKey) error

	// Release drops a claim whose request did not succeed
	Release(ctx context.Context, ikey *entity.IdempotencyKey) error

	// DeleteExpired removes keys that expired before cutoff
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
