package cart

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"go.uber.org/zap"
)

// pendingWrite is the newest snapshot waiting to be persisted for one user.
// remove means the persisted entry should be deleted instead of replaced.
type pendingWrite struct {
	items  []cart.LineItem
	remove bool
}

// writeQueue serializes durable cart writes per user. Each user has at most
// one write in flight and at most one pending snapshot; enqueueing while a
// snapshot is already pending replaces it, so intermediate states are
// skipped and the newest state always wins.
//
// Persistence failures are logged and dropped: the in-memory cart stays
// authoritative and the next mutation retries with a fresh snapshot.
type writeQueue struct {
	store  cart.Store
	logger *zap.Logger

	mu      sync.Mutex
	pending map[uuid.UUID]pendingWrite
	active  map[uuid.UUID]bool
	wg      sync.WaitGroup
}

func newWriteQueue(store cart.Store, logger *zap.Logger) *writeQueue {
	return &writeQueue{
		store:   store,
		logger:  logger,
		pending: make(map[uuid.UUID]pendingWrite),
		active:  make(map[uuid.UUID]bool),
	}
}

// EnqueueSave schedules the snapshot as the next durable state for the user
func (q *writeQueue) EnqueueSave(userID uuid.UUID, items []cart.LineItem) {
	q.enqueue(userID, pendingWrite{items: items})
}

// EnqueueDelete schedules removal of the user's persisted cart
func (q *writeQueue) EnqueueDelete(userID uuid.UUID) {
	q.enqueue(userID, pendingWrite{remove: true})
}

func (q *writeQueue) enqueue(userID uuid.UUID, write pendingWrite) {
	q.mu.Lock()
	defer q.mu.Unlock()

	q.pending[userID] = write
	if q.active[userID] {
		return
	}

	q.active[userID] = true
	q.wg.Add(1)
	go q.drain(userID)
}

// drain writes the user's pending snapshots until none remain. It runs as a
// single goroutine per user; enqueue starts it again once it has exited.
func (q *writeQueue) drain(userID uuid.UUID) {
	defer q.wg.Done()

	for {
		q.mu.Lock()
		write, ok := q.pending[userID]
		if !ok {
			q.active[userID] = false
			q.mu.Unlock()
			return
		}
		delete(q.pending, userID)
		q.mu.Unlock()

		var err error
		if write.remove {
			err = q.store.Delete(context.Background(), userID)
		} else {
			err = q.store.Save(context.Background(), userID, write.items)
		}
		if err != nil {
			q.logger.Warn("cart write failed, keeping in-memory state",
				zap.String("user_id", userID.String()),
				zap.Bool("remove", write.remove),
				zap.Error(err))
		}
	}
}

// Wait blocks until every pending write has been attempted. Used on shutdown.
func (q *writeQueue) Wait() {
	q.wg.Wait()
}
