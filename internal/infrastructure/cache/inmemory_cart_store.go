package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
)

// InMemoryCartStore implements cart.Store using an in-memory map. It is
// suitable for single-instance deployments and testing. Payloads are kept
// JSON-encoded so the store round-trips exactly like the Redis one.
type InMemoryCartStore struct {
	mu      sync.RWMutex
	entries map[uuid.UUID][]byte
}

// NewInMemoryCartStore creates a new in-memory cart store
func NewInMemoryCartStore() *InMemoryCartStore {
	return &InMemoryCartStore{
		entries: make(map[uuid.UUID][]byte),
	}
}

// Load reads the user's persisted cart lines; a missing entry yields nil
func (s *InMemoryCartStore) Load(ctx context.Context, userID uuid.UUID) ([]cart.LineItem, error) {
	s.mu.RLock()
	payload, exists := s.entries[userID]
	s.mu.RUnlock()

	if !exists {
		return nil, nil
	}
	return decodeCartItems(payload)
}

// Save replaces the user's persisted cart lines
func (s *InMemoryCartStore) Save(ctx context.Context, userID uuid.UUID, items []cart.LineItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart encode: %w", err)
	}

	s.mu.Lock()
	s.entries[userID] = payload
	s.mu.Unlock()
	return nil
}

// Delete removes the user's persisted cart
func (s *InMemoryCartStore) Delete(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	delete(s.entries, userID)
	s.mu.Unlock()
	return nil
}

// Corrupt overwrites a user's payload with undecodable bytes. Test hook.
func (s *InMemoryCartStore) Corrupt(userID uuid.UUID) {
	s.mu.Lock()
	s.entries[userID] = []byte("{not json")
	s.mu.Unlock()
}
