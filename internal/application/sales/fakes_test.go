package sales

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// memProductRepo is an in-memory ProductRepository that copies on read and write
type memProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]catalog.Product
	locked   [][]uuid.UUID
}

func newMemProductRepo(products ...*catalog.Product) *memProductRepo {
	r := &memProductRepo{products: make(map[uuid.UUID]catalog.Product)}
	for _, p := range products {
		r.products[p.ID] = *p
	}
	return r
}

func (r *memProductRepo) stock(id uuid.UUID) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.products[id].Stock
}

func (r *memProductRepo) FindByID(_ context.Context, id uuid.UUID) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil, catalog.ErrProductNotFound
	}
	return &p, nil
}

func (r *memProductRepo) FindBySKU(_ context.Context, sku string) (*catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.SKU == sku {
			return &p, nil
		}
	}
	return nil, catalog.ErrProductNotFound
}

func (r *memProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []catalog.Product
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *memProductRepo) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	sorted := append([]uuid.UUID(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })
	r.mu.Lock()
	r.locked = append(r.locked, sorted)
	r.mu.Unlock()
	return r.FindByIDs(ctx, sorted)
}

func (r *memProductRepo) FindAll(context.Context, shared.Filter) ([]catalog.Product, error) {
	return nil, nil
}
func (r *memProductRepo) Count(context.Context, shared.Filter) (int64, error) { return 0, nil }
func (r *memProductRepo) FindLowStock(context.Context, int) ([]catalog.Product, error) {
	return nil, nil
}
func (r *memProductRepo) FindOutOfStock(context.Context, int) ([]catalog.Product, error) {
	return nil, nil
}
func (r *memProductRepo) CountByCategory(context.Context) (map[uuid.UUID]int64, error) {
	return nil, nil
}
func (r *memProductRepo) CountBySupplier(context.Context) (map[uuid.UUID]int64, error) {
	return nil, nil
}
func (r *memProductRepo) ExistsBySKU(context.Context, string, *uuid.UUID) (bool, error) {
	return false, nil
}

func (r *memProductRepo) Save(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) SaveStock(_ context.Context, p *catalog.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.products[p.ID]
	if !ok || current.Version != p.Version-1 {
		return shared.ErrConcurrencyConflict
	}
	r.products[p.ID] = *p
	return nil
}

func (r *memProductRepo) Delete(context.Context, uuid.UUID) error { return nil }

// memSaleRepo keeps sales in memory
type memSaleRepo struct {
	mu    sync.Mutex
	sales []sales.Sale
}

func (r *memSaleRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, sales.ErrSaleNotFound
}

func (r *memSaleRepo) FindBySaleNumber(_ context.Context, number string) (*sales.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sales {
		if s.SaleNumber == number {
			return &s, nil
		}
	}
	return nil, sales.ErrSaleNotFound
}

func (r *memSaleRepo) FindAll(context.Context, shared.Filter) ([]sales.Sale, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sales.Sale(nil), r.sales...), nil
}

func (r *memSaleRepo) Count(context.Context, shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.sales)), nil
}

func (r *memSaleRepo) FindBetween(context.Context, time.Time, time.Time) ([]sales.Sale, error) {
	return nil, nil
}
func (r *memSaleRepo) FindRecent(context.Context, int) ([]sales.Sale, error) { return nil, nil }

func (r *memSaleRepo) Save(_ context.Context, s *sales.Sale) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *s
	cp.Items = append([]sales.SaleItem(nil), s.Items...)
	r.sales = append(r.sales, cp)
	return nil
}

// memReturnRepo keeps returns in memory
type memReturnRepo struct {
	mu      sync.Mutex
	returns []sales.SaleReturn
}

func (r *memReturnRepo) FindByID(_ context.Context, id uuid.UUID) (*sales.SaleReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ret := range r.returns {
		if ret.ID == id {
			return &ret, nil
		}
	}
	return nil, sales.ErrReturnNotFound
}

func (r *memReturnRepo) FindBySale(_ context.Context, saleID uuid.UUID) ([]sales.SaleReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []sales.SaleReturn
	for _, ret := range r.returns {
		if ret.SaleID == saleID {
			out = append(out, ret)
		}
	}
	return out, nil
}

func (r *memReturnRepo) FindAll(context.Context, shared.Filter) ([]sales.SaleReturn, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]sales.SaleReturn(nil), r.returns...), nil
}

func (r *memReturnRepo) Count(context.Context, shared.Filter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.returns)), nil
}

func (r *memReturnRepo) ReturnedQuantities(ctx context.Context, saleID uuid.UUID) (map[uuid.UUID]int, error) {
	list, _ := r.FindBySale(ctx, saleID)
	out := make(map[uuid.UUID]int)
	for _, ret := range list {
		for _, item := range ret.Items {
			out[item.ProductID] += item.Quantity
		}
	}
	return out, nil
}

func (r *memReturnRepo) Save(_ context.Context, ret *sales.SaleReturn) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.returns = append(r.returns, *ret)
	return nil
}

// memCartStore keeps carts in memory
type memCartStore struct {
	mu    sync.Mutex
	carts map[uuid.UUID]sales.Cart
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: make(map[uuid.UUID]sales.Cart)}
}

func (s *memCartStore) Get(_ context.Context, userID uuid.UUID) (*sales.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.carts[userID]
	if !ok {
		return sales.NewCart(userID), nil
	}
	c.Lines = append([]sales.CartLine(nil), c.Lines...)
	return &c, nil
}

func (s *memCartStore) Save(_ context.Context, cart *sales.Cart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c := *cart
	c.Lines = append([]sales.CartLine(nil), cart.Lines...)
	s.carts[cart.UserID] = c
	return nil
}

func (s *memCartStore) Delete(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, userID)
	return nil
}

// memIdempotencyStore claims keys without expiry
type memIdempotencyStore struct {
	mu   sync.Mutex
	keys map[string]bool
}

func newMemIdempotencyStore() *memIdempotencyStore {
	return &memIdempotencyStore{keys: make(map[string]bool)}
}

func (s *memIdempotencyStore) MarkProcessed(_ context.Context, key string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.keys[key] {
		return false, nil
	}
	s.keys[key] = true
	return true, nil
}

func (s *memIdempotencyStore) IsProcessed(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.keys[key], nil
}

func (s *memIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

func (s *memIdempotencyStore) Close() error { return nil }

// lockingScope serialises Execute calls the way row locks serialise checkouts
type lockingScope struct {
	mu sync.Mutex
	*NoOpTransactionScope
}

func (s *lockingScope) Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.NoOpTransactionScope.Execute(ctx, fn)
}

// MockSessionRepository is a testify mock of drawer.SessionRepository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*drawer.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*drawer.Session), args.Error(1)
}

func (m *MockSessionRepository) FindActiveByUser(ctx context.Context, userID uuid.UUID) (*drawer.Session, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*drawer.Session), args.Error(1)
}

func (m *MockSessionRepository) LockActive(ctx context.Context, id uuid.UUID) (*drawer.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*drawer.Session), args.Error(1)
}

func (m *MockSessionRepository) FindAll(ctx context.Context, filter shared.Filter) ([]drawer.Session, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]drawer.Session), args.Error(1)
}

func (m *MockSessionRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) FindStartedBetween(ctx context.Context, from, to time.Time) ([]drawer.Session, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]drawer.Session), args.Error(1)
}

func (m *MockSessionRepository) CountActive(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) Save(ctx context.Context, session *drawer.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

// MockCustomerRepository is a testify mock of partner.CustomerRepository
type MockCustomerRepository struct {
	mock.Mock
}

func (m *MockCustomerRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Customer, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockCustomerRepository) Search(ctx context.Context, query string, limit int) ([]partner.Customer, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]partner.Customer), args.Error(1)
}

func (m *MockCustomerRepository) Save(ctx context.Context, customer *partner.Customer) error {
	return m.Called(ctx, customer).Error(0)
}

func (m *MockCustomerRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

// MockUserRepository is a testify mock of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]identity.User, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.User, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	return m.Called(ctx, user).Error(0)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(_ context.Context, events ...shared.DomainEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

func newProduct(name, sku, price string, stock int) *catalog.Product {
	p, err := catalog.NewProduct(name, sku, decimal.RequireFromString(price))
	if err != nil {
		panic(err)
	}
	p.Stock = stock
	return p
}

func errorsIsAny(err error, targets ...error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
