package cart

import (
	"context"

	"github.com/google/uuid"
)

// Store persists the raw line items of a cart under a single key per user.
// Only items are stored; derived aggregates are recomputed on load.
//
// Load returns an empty slice when no cart has been saved yet. A payload that
// cannot be decoded is reported as shared.ErrPersistenceCorrupt so callers
// can degrade to an empty cart instead of failing the session.
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) ([]LineItem, error)
	Save(ctx context.Context, userID uuid.UUID, items []LineItem) error
	Delete(ctx context.Context, userID uuid.UUID) error
}
