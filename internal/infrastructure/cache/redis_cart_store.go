package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/storefront/backend/internal/domain/cart"
	"github.com/storefront/backend/internal/domain/shared"
)

// RedisCartStore implements cart.Store on Redis. Each user's cart is one
// key holding the JSON-encoded line items.
type RedisCartStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisCartStoreConfig holds Redis cart store settings
type RedisCartStoreConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string        // defaults to "cart:"
	TTL       time.Duration // 0 means entries never expire
}

// NewRedisCartStore creates a Redis-backed cart store and verifies the
// connection
func NewRedisCartStore(cfg RedisCartStoreConfig) (*RedisCartStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisCartStoreWithClient(client, cfg.KeyPrefix, cfg.TTL), nil
}

// NewRedisCartStoreWithClient creates a store with an existing Redis client
func NewRedisCartStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisCartStore {
	if keyPrefix == "" {
		keyPrefix = "cart:"
	}
	return &RedisCartStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

// Load reads the user's persisted cart lines. A missing key yields an
// empty slice; a payload that does not decode yields ErrPersistenceCorrupt.
func (s *RedisCartStore) Load(ctx context.Context, userID uuid.UUID) ([]cart.LineItem, error) {
	payload, err := s.client.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cart load: %w", err)
	}

	items, err := decodeCartItems(payload)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Save replaces the user's persisted cart lines
func (s *RedisCartStore) Save(ctx context.Context, userID uuid.UUID, items []cart.LineItem) error {
	payload, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("cart encode: %w", err)
	}

	if err := s.client.Set(ctx, s.key(userID), payload, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrPersistenceWriteFailed, err)
	}
	return nil
}

// Delete removes the user's persisted cart
func (s *RedisCartStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %s", shared.ErrPersistenceWriteFailed, err)
	}
	return nil
}

// Close closes the underlying Redis client
func (s *RedisCartStore) Close() error {
	return s.client.Close()
}

func (s *RedisCartStore) key(userID uuid.UUID) string {
	return s.keyPrefix + userID.String()
}

// decodeCartItems decodes a persisted cart payload, mapping any decode
// failure to ErrPersistenceCorrupt so callers can degrade to an empty cart.
func decodeCartItems(payload []byte) ([]cart.LineItem, error) {
	var items []cart.LineItem
	if err := json.Unmarshal(payload, &items); err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrPersistenceCorrupt, err)
	}
	return items, nil
}
