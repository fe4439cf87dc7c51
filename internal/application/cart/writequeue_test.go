package cart

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// slowStore blocks each write until released so tests can pile up pending
// snapshots behind an in-flight one.
type slowStore struct {
	mu      sync.Mutex
	gate    chan struct{}
	saved   [][]cart.LineItem
	deleted int
}

func newSlowStore() *slowStore {
	return &slowStore{gate: make(chan struct{})}
}

func (s *slowStore) Load(ctx context.Context, userID uuid.UUID) ([]cart.LineItem, error) {
	return nil, nil
}

func (s *slowStore) Save(ctx context.Context, userID uuid.UUID, items []cart.LineItem) error {
	<-s.gate
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saved = append(s.saved, items)
	return nil
}

func (s *slowStore) Delete(ctx context.Context, userID uuid.UUID) error {
	<-s.gate
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted++
	return nil
}

func (s *slowStore) release() {
	close(s.gate)
}

func lineItems(quantity int) []cart.LineItem {
	return []cart.LineItem{{ProductID: uuid.New(), ProductName: "Widget", UnitPrice: decimal.NewFromInt(10), Quantity: quantity}}
}

func TestWriteQueue_NewestWins(t *testing.T) {
	store := newSlowStore()
	q := newWriteQueue(store, zap.NewNop())
	userID := uuid.New()

	// First write blocks on the gate; the next three collapse into one
	// pending slot, of which only the last survives.
	q.EnqueueSave(userID, lineItems(1))
	time.Sleep(10 * time.Millisecond)
	q.EnqueueSave(userID, lineItems(2))
	q.EnqueueSave(userID, lineItems(3))
	q.EnqueueSave(userID, lineItems(4))

	store.release()
	q.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	require.Len(t, store.saved, 2)
	assert.Equal(t, 1, store.saved[0][0].Quantity)
	assert.Equal(t, 4, store.saved[1][0].Quantity)
}

func TestWriteQueue_DeleteReplacesPendingSave(t *testing.T) {
	store := newSlowStore()
	q := newWriteQueue(store, zap.NewNop())
	userID := uuid.New()

	q.EnqueueSave(userID, lineItems(1))
	time.Sleep(10 * time.Millisecond)
	q.EnqueueSave(userID, lineItems(2))
	q.EnqueueDelete(userID)

	store.release()
	q.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.saved, 1)
	assert.Equal(t, 1, store.deleted)
}

func TestWriteQueue_IndependentUsers(t *testing.T) {
	store := newSlowStore()
	store.release()
	q := newWriteQueue(store, zap.NewNop())

	q.EnqueueSave(uuid.New(), lineItems(1))
	q.EnqueueSave(uuid.New(), lineItems(2))
	q.Wait()

	store.mu.Lock()
	defer store.mu.Unlock()
	assert.Len(t, store.saved, 2)
}
