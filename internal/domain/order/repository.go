package order

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/shared"
)

// Repository defines the interface for order persistence
type Repository interface {
	// FindByID finds an order by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByOrderNumber finds an order by its order number
	FindByOrderNumber(ctx context.Context, orderNumber string) (*Order, error)

	// FindByUser finds orders for a user with filtering
	FindByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) ([]Order, error)

	// CountByUser counts orders for a user with optional filters
	CountByUser(ctx context.Context, userID uuid.UUID, filter shared.Filter) (int64, error)

	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// SaveWithLock saves with optimistic locking (version check). A losing
	// writer gets shared.ErrConcurrentModification and must reload first.
	SaveWithLock(ctx context.Context, o *Order) error

	// NextOrderNumber atomically reserves the next order number for the
	// given day. Two concurrent callers never receive the same number.
	NextOrderNumber(ctx context.Context, day time.Time) (string, error)
}
