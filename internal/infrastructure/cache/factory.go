package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Stores bundles the register-side stores built from configuration
type Stores struct {
	Idempotency shared.IdempotencyStore
	Carts       sales.CartStore
	// Redis is nil when the in-memory stores are in use
	Redis *redis.Client
}

// Close releases the stores and the Redis connection
func (s *Stores) Close() error {
	if err := s.Idempotency.Close(); err != nil {
		return err
	}
	if s.Redis != nil {
		return s.Redis.Close()
	}
	return nil
}

// StoreFactory creates the cart and idempotency stores
type StoreFactory struct {
	cfg                   *config.Config
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// StoreFactoryOption configures the factory
type StoreFactoryOption func(*StoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis falls back to in-memory stores
func WithInMemoryFallback(allow bool) StoreFactoryOption {
	return func(f *StoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewStoreFactory creates a factory. Fallback defaults to on outside production.
func NewStoreFactory(cfg *config.Config, opts ...StoreFactoryOption) *StoreFactory {
	f := &StoreFactory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: !cfg.IsProduction(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Create builds Redis-backed stores when Redis is enabled and reachable,
// otherwise in-memory ones.
func (f *StoreFactory) Create(ctx context.Context) (*Stores, error) {
	if f.cfg.Redis.Enabled {
		client, err := NewRedisClient(ctx, f.cfg.Redis)
		if err == nil {
			f.logger.Info("Using Redis for carts and checkout idempotency", zap.String("addr", f.cfg.Redis.Addr()))
			return &Stores{
				Idempotency: NewRedisIdempotencyStore(client),
				Carts:       NewRedisCartStore(client, f.cfg.Cart.TTL),
				Redis:       client,
			}, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis required but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory carts and idempotency keys. "+
			"Double-submit protection only covers this instance.", zap.Error(err))
	}

	return &Stores{
		Idempotency: NewInMemoryIdempotencyStore(0),
		Carts:       NewInMemoryCartStore(f.cfg.Cart.TTL),
	}, nil
}
