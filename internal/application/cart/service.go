package cart

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/catalog"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// Service owns the live cart state. Carts are held in memory and are the
// authoritative copy while the process runs; the durable store is loaded
// lazily on first access and written back asynchronously after each
// mutation, newest state first.
type Service struct {
	store       cart.Store
	productRepo catalog.ProductRepository
	logger      *zap.Logger
	queue       *writeQueue

	mu    sync.Mutex
	carts map[uuid.UUID]*cart.Cart
}

// NewService creates a new cart service
func NewService(store cart.Store, productRepo catalog.ProductRepository, logger *zap.Logger) *Service {
	return &Service{
		store:       store,
		productRepo: productRepo,
		logger:      logger,
		queue:       newWriteQueue(store, logger),
		carts:       make(map[uuid.UUID]*cart.Cart),
	}
}

// Get returns the user's cart, creating an empty one if none exists
func (s *Service) Get(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	response := ToCartResponse(c)
	return &response, nil
}

// AddItem adds a product to the user's cart, resolving the unit price from
// the catalog at add time. Adding a product already in the cart merges the
// quantities into the existing line.
func (s *Service) AddItem(ctx context.Context, userID uuid.UUID, req AddItemRequest) (*CartResponse, error) {
	product, err := s.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, err
	}
	if !product.IsActive() {
		return nil, shared.NewDomainError("PRODUCT_UNAVAILABLE", "Product is not available for purchase")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.AddItem(product.ID, product.Name, product.SKU, product.PriceMoney(), req.Quantity); err != nil {
		return nil, err
	}

	s.queue.EnqueueSave(userID, c.Snapshot())
	response := ToCartResponse(c)
	return &response, nil
}

// RemoveItem removes a product from the cart. Removing a product that is
// not in the cart is a no-op.
func (s *Service) RemoveItem(ctx context.Context, userID, productID uuid.UUID) (*CartResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.RemoveItem(productID)

	s.queue.EnqueueSave(userID, c.Snapshot())
	response := ToCartResponse(c)
	return &response, nil
}

// SetQuantity sets the quantity of an existing line. Zero removes the line.
func (s *Service) SetQuantity(ctx context.Context, userID, productID uuid.UUID, quantity int) (*CartResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := c.SetQuantity(productID, quantity); err != nil {
		return nil, err
	}

	s.queue.EnqueueSave(userID, c.Snapshot())
	response := ToCartResponse(c)
	return &response, nil
}

// Clear empties the user's cart and removes its persisted entry
func (s *Service) Clear(ctx context.Context, userID uuid.UUID) (*CartResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}

	c.Clear()

	s.queue.EnqueueDelete(userID)
	response := ToCartResponse(c)
	return &response, nil
}

// Snapshot returns a detached copy of the user's current cart lines,
// loading the cart first if necessary. Order creation reads from this.
func (s *Service) Snapshot(ctx context.Context, userID uuid.UUID) ([]cart.LineItem, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, err := s.loadLocked(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.Snapshot(), nil
}

// Flush blocks until all queued durable writes have been attempted
func (s *Service) Flush() {
	s.queue.Wait()
}

// loadLocked returns the in-memory cart for the user, reading it from the
// durable store on first access. A corrupt stored payload is logged and
// replaced with an empty cart rather than surfaced to the caller.
// Callers must hold s.mu.
func (s *Service) loadLocked(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	if c, ok := s.carts[userID]; ok {
		return c, nil
	}

	items, err := s.store.Load(ctx, userID)
	if err != nil {
		if errors.Is(err, shared.ErrPersistenceCorrupt) {
			s.logger.Warn("stored cart payload corrupt, starting empty",
				zap.String("user_id", userID.String()),
				zap.Error(err))
			items = nil
		} else {
			return nil, err
		}
	}

	c := cart.Restore(userID, items)
	s.carts[userID] = c
	return c, nil
}
