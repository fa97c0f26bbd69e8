package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/retailpos/backend/internal/domain/sales"
)

const cartKeyPrefix = "pos:cart:"

// RedisCartStore keeps each cashier's cart as a JSON document with an idle TTL
type RedisCartStore struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewRedisCartStore creates a cart store on an existing client
func NewRedisCartStore(client redis.UniversalClient, ttl time.Duration) *RedisCartStore {
	return &RedisCartStore{client: client, ttl: ttl}
}

func cartKey(userID uuid.UUID) string {
	return cartKeyPrefix + userID.String()
}

// Get returns the stored cart, or an empty one
func (s *RedisCartStore) Get(ctx context.Context, userID uuid.UUID) (*sales.Cart, error) {
	raw, err := s.client.Get(ctx, cartKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return sales.NewCart(userID), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cart: %w", err)
	}

	var cart sales.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return nil, fmt.Errorf("failed to decode cart: %w", err)
	}
	if cart.Lines == nil {
		cart.Lines = make([]sales.CartLine, 0)
	}
	cart.UserID = userID
	return &cart, nil
}

// Save stores the cart and refreshes its TTL
func (s *RedisCartStore) Save(ctx context.Context, cart *sales.Cart) error {
	raw, err := json.Marshal(cart)
	if err != nil {
		return fmt.Errorf("failed to encode cart: %w", err)
	}
	if err := s.client.Set(ctx, cartKey(cart.UserID), raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save cart: %w", err)
	}
	return nil
}

// Delete removes the user's cart
func (s *RedisCartStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, cartKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete cart: %w", err)
	}
	return nil
}

var _ sales.CartStore = (*RedisCartStore)(nil)
