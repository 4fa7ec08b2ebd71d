package repository

import (
	"context"
	"time"

	"github.com/sangkips/pharmacy-pos-api/internal/domain/entity"
)

// IdempotencyRepository defines the interface for idempotency key operations
type IdempotencyRepository interface {
	// GetByKey retrieves a stored response by key and endpoint
	GetByKey(ctx context.Context, key, endpoint string) (*entity.IdempotencyKey, error)
	// Create stores a new idempotency key. It fails when the key is already
	// held for the endpoint.
	Create(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Complete records the final response of a pending key
	Complete(ctx context.Context, ikey *entity.IdempotencyKey) error
	// Release drops a pending key so the request can be retried
	Release(ctx context.Context, id uint) error
	// DeleteExpired removes keys that expired before now and returns how many went
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
