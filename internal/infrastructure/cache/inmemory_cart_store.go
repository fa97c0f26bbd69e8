package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sales"
)

type cartEntry struct {
	cart      sales.Cart
	expiresAt time.Time
}

// InMemoryCartStore keeps carts in process memory. Stored carts are copied on
// the way in and out so callers never share line slices.
type InMemoryCartStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID]cartEntry
	ttl   time.Duration
}

// NewInMemoryCartStore creates an in-memory cart store
func NewInMemoryCartStore(ttl time.Duration) *InMemoryCartStore {
	return &InMemoryCartStore{
		carts: make(map[uuid.UUID]cartEntry),
		ttl:   ttl,
	}
}

// Get returns a copy of the stored cart, or an empty one
func (s *InMemoryCartStore) Get(_ context.Context, userID uuid.UUID) (*sales.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[userID]
	if !ok || (s.ttl > 0 && time.Now().After(e.expiresAt)) {
		delete(s.carts, userID)
		return sales.NewCart(userID), nil
	}
	return copyCart(&e.cart), nil
}

// Save stores a copy of the cart
func (s *InMemoryCartStore) Save(_ context.Context, cart *sales.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.carts[cart.UserID] = cartEntry{
		cart:      *copyCart(cart),
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Delete removes the user's cart
func (s *InMemoryCartStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

func copyCart(c *sales.Cart) *sales.Cart {
	cp := *c
	cp.Lines = append(make([]sales.CartLine, 0, len(c.Lines)), c.Lines...)
	return &cp
}

var _ sales.CartStore = (*InMemoryCartStore)(nil)
