package sales

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type checkoutFixture struct {
	products  *memProductRepo
	sales     *memSaleRepo
	carts     *memCartStore
	keys      *memIdempotencyStore
	sessions  *MockSessionRepository
	customers *MockCustomerRepository
	publisher *recordingPublisher
	cartSvc   *CartService
	svc       *CheckoutService
}

func newCheckoutFixture(products ...*catalog.Product) *checkoutFixture {
	f := &checkoutFixture{
		products:  newMemProductRepo(products...),
		sales:     &memSaleRepo{},
		carts:     newMemCartStore(),
		keys:      newMemIdempotencyStore(),
		sessions:  new(MockSessionRepository),
		customers: new(MockCustomerRepository),
		publisher: &recordingPublisher{},
	}
	scope := &lockingScope{NoOpTransactionScope: NewNoOpTransactionScope(f.products, f.sales, &memReturnRepo{}, f.sessions)}
	f.cartSvc = NewCartService(f.carts, f.products, nil)
	f.svc = NewCheckoutService(scope, f.sessions, f.customers, f.carts, f.keys, time.Minute, nil)
	f.svc.SetEventPublisher(f.publisher)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func (f *checkoutFixture) openSession(t *testing.T, userID uuid.UUID) *drawer.Session {
	t.Helper()
	session, err := drawer.OpenSession(userID, decimal.NewFromInt(100), time.Now())
	require.NoError(t, err)
	f.sessions.On("FindActiveByUser", mock.Anything, userID).Return(session, nil)
	f.sessions.On("LockActive", mock.Anything, session.ID).Return(session, nil)
	return session
}

func (f *checkoutFixture) fillCart(t *testing.T, userID uuid.UUID, sku string, qty int) {
	t.Helper()
	p, err := f.products.FindBySKU(context.Background(), sku)
	require.NoError(t, err)
	_, err = f.cartSvc.AddBySKU(context.Background(), userID, AddToCartRequest{SKU: sku})
	require.NoError(t, err)
	if qty > 1 {
		_, err = f.cartSvc.SetQuantity(context.Background(), userID, p.ID, SetQuantityRequest{Quantity: qty})
		require.NoError(t, err)
	}
}

func TestCheckoutService_Checkout(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cola := newProduct("Cola 350ml", "COLA-350", "2.50", 10)
	chips := newProduct("Potato Chips", "CHIPS-1", "3.00", 5)
	f := newCheckoutFixture(cola, chips)
	session := f.openSession(t, userID)

	f.fillCart(t, userID, "COLA-350", 3)
	f.fillCart(t, userID, "CHIPS-1", 2)

	// a price change after the product entered the cart is honoured at checkout
	repriced, _ := f.products.FindByID(ctx, chips.ID)
	repriced.Price = decimal.RequireFromString("3.50")
	require.NoError(t, f.products.Save(ctx, repriced))

	resp, err := f.svc.Checkout(ctx, userID, CheckoutRequest{PaymentMethod: "CARD"}, "")
	require.NoError(t, err)

	assert.Equal(t, "14.5", resp.Sale.TotalAmount.String())
	assert.Equal(t, "card", resp.Sale.PaymentMethod)
	assert.Equal(t, &session.ID, resp.Sale.SessionID)
	assert.Equal(t, 5, resp.Sale.ItemCount)
	assert.Regexp(t, `^S-20240301-[0-9A-F]{8}$`, resp.Sale.SaleNumber)
	assert.Equal(t, "Sale #"+resp.Sale.SaleNumber+" registered - Total: 14.50", resp.Message)

	assert.Equal(t, 7, f.products.stock(cola.ID))
	assert.Equal(t, 3, f.products.stock(chips.ID))

	require.Len(t, f.sales.sales, 1)
	saved := f.sales.sales[0]
	require.Len(t, saved.Items, 2)
	for _, item := range saved.Items {
		if item.ProductID == chips.ID {
			assert.Equal(t, "Potato Chips", item.ProductName)
			assert.Equal(t, "CHIPS-1", item.SKU)
			assert.Equal(t, "3.5", item.UnitPrice.String())
		}
	}

	cart, err := f.cartSvc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, cart.Lines)

	assert.Equal(t, []string{sales.EventTypeSaleCompleted}, f.publisher.types())
	assert.Len(t, f.products.locked, 1)
}

func TestCheckoutService_Preconditions(t *testing.T) {
	ctx := context.Background()

	t.Run("invalid payment method", func(t *testing.T) {
		f := newCheckoutFixture()
		_, err := f.svc.Checkout(ctx, uuid.New(), CheckoutRequest{PaymentMethod: "cheque"}, "")
		assert.ErrorIs(t, err, sales.ErrInvalidPaymentMethod)
	})

	t.Run("no active session", func(t *testing.T) {
		f := newCheckoutFixture()
		userID := uuid.New()
		f.sessions.On("FindActiveByUser", mock.Anything, userID).Return(nil, drawer.ErrNoActiveSession)
		_, err := f.svc.Checkout(ctx, userID, CheckoutRequest{}, "")
		assert.ErrorIs(t, err, drawer.ErrNoActiveSession)
	})

	t.Run("empty cart", func(t *testing.T) {
		f := newCheckoutFixture()
		userID := uuid.New()
		f.openSession(t, userID)
		_, err := f.svc.Checkout(ctx, userID, CheckoutRequest{}, "")
		assert.ErrorIs(t, err, sales.ErrCartEmpty)
	})

	t.Run("unknown customer", func(t *testing.T) {
		f := newCheckoutFixture(newProduct("Cola", "COLA", "1.00", 3))
		userID := uuid.New()
		customerID := uuid.New()
		f.openSession(t, userID)
		f.fillCart(t, userID, "COLA", 1)
		f.customers.On("FindByID", mock.Anything, customerID).Return(nil, partner.ErrCustomerNotFound)

		_, err := f.svc.Checkout(ctx, userID, CheckoutRequest{CustomerID: &customerID}, "")
		assert.ErrorIs(t, err, partner.ErrCustomerNotFound)
		assert.Empty(t, f.sales.sales)
	})
}

func TestCheckoutService_InsufficientStockReleasesKey(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cola := newProduct("Cola 350ml", "COLA-350", "2.50", 5)
	f := newCheckoutFixture(cola)
	f.openSession(t, userID)
	f.fillCart(t, userID, "COLA-350", 4)

	// another register sold three units meanwhile
	p, _ := f.products.FindByID(ctx, cola.ID)
	require.NoError(t, p.DecreaseStock(3))
	require.NoError(t, f.products.SaveStock(ctx, p))

	_, err := f.svc.Checkout(ctx, userID, CheckoutRequest{}, "key-1")
	require.ErrorIs(t, err, shared.ErrInsufficientStock)
	assert.Equal(t, "Insufficient stock for Cola 350ml. Available: 2, Requested: 4", err.Error())
	assert.Equal(t, 2, f.products.stock(cola.ID))
	assert.Empty(t, f.sales.sales)
	assert.Empty(t, f.publisher.types())

	_, err = f.cartSvc.SetQuantity(ctx, userID, cola.ID, SetQuantityRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.svc.Checkout(ctx, userID, CheckoutRequest{}, "key-1")
	require.NoError(t, err)
	assert.Equal(t, 0, f.products.stock(cola.ID))
}

func TestCheckoutService_SessionClosedBeforeCommit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cola := newProduct("Cola 350ml", "COLA-350", "2.50", 5)
	f := newCheckoutFixture(cola)

	session, err := drawer.OpenSession(userID, decimal.NewFromInt(100), time.Now())
	require.NoError(t, err)
	f.sessions.On("FindActiveByUser", mock.Anything, userID).Return(session, nil)
	// the drawer was closed between the lookup and the row lock
	f.sessions.On("LockActive", mock.Anything, session.ID).Return(nil, drawer.ErrNoActiveSession)
	f.fillCart(t, userID, "COLA-350", 2)

	_, err = f.svc.Checkout(ctx, userID, CheckoutRequest{}, "key-1")
	require.ErrorIs(t, err, drawer.ErrNoActiveSession)
	assert.Empty(t, f.sales.sales)
	assert.Empty(t, f.products.locked)
	assert.Equal(t, 5, f.products.stock(cola.ID))
	assert.Empty(t, f.keys.keys)

	cart, err := f.cartSvc.GetCart(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, cart.Lines, 1)
}

func TestCheckoutService_RemovesCartAfterSale(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	f := newCheckoutFixture(newProduct("Cola 350ml", "COLA-350", "2.50", 5))
	f.openSession(t, userID)
	f.fillCart(t, userID, "COLA-350", 1)

	_, err := f.svc.Checkout(ctx, userID, CheckoutRequest{}, "")
	require.NoError(t, err)

	f.carts.mu.Lock()
	_, stored := f.carts.carts[userID]
	f.carts.mu.Unlock()
	assert.False(t, stored)
}

func TestCheckoutService_DuplicateSubmit(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cola := newProduct("Cola 350ml", "COLA-350", "2.50", 5)
	f := newCheckoutFixture(cola)
	f.openSession(t, userID)
	f.fillCart(t, userID, "COLA-350", 3)

	cart, err := f.carts.Get(ctx, userID)
	require.NoError(t, err)
	claimed, err := f.keys.MarkProcessed(ctx, CheckoutKey(userID, "", cart), time.Minute)
	require.NoError(t, err)
	require.True(t, claimed)

	_, err = f.svc.Checkout(ctx, userID, CheckoutRequest{}, "")
	assert.ErrorIs(t, err, sales.ErrDuplicateCheckout)
	assert.Equal(t, 5, f.products.stock(cola.ID))
}

func TestCheckoutService_ConcurrentDoubleSubmitDoesNotOversell(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	cola := newProduct("Cola 350ml", "COLA-350", "2.50", 5)
	f := newCheckoutFixture(cola)
	f.openSession(t, userID)
	f.fillCart(t, userID, "COLA-350", 3)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		failures  []error
	)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.svc.Checkout(ctx, userID, CheckoutRequest{}, "")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
				return
			}
			failures = append(failures, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	require.Len(t, failures, 1)
	assert.True(t,
		errorsIsAny(failures[0], sales.ErrDuplicateCheckout, sales.ErrCartEmpty),
		"unexpected error: %v", failures[0])
	assert.Equal(t, 2, f.products.stock(cola.ID))
	assert.Len(t, f.sales.sales, 1)
}

func TestCheckoutService_ConcurrentCashiersCompeteForStock(t *testing.T) {
	ctx := context.Background()
	cola := newProduct("Cola 350ml", "COLA-350", "2.50", 5)
	f := newCheckoutFixture(cola)

	users := []uuid.UUID{uuid.New(), uuid.New()}
	for _, u := range users {
		f.openSession(t, u)
		f.fillCart(t, u, "COLA-350", 3)
	}

	errs := make([]error, len(users))
	var wg sync.WaitGroup
	for i, u := range users {
		wg.Add(1)
		go func(i int, u uuid.UUID) {
			defer wg.Done()
			_, errs[i] = f.svc.Checkout(ctx, u, CheckoutRequest{}, "")
		}(i, u)
	}
	wg.Wait()

	var ok, short int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errorsIsAny(err, shared.ErrInsufficientStock):
			short++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, short)
	assert.Equal(t, 2, f.products.stock(cola.ID))
}

func TestCheckoutKey(t *testing.T) {
	userID := uuid.MustParse("11111111-1111-1111-1111-111111111111")
	cart := sales.NewCart(userID)
	cart.Version = 4
	cart.UpdatedAt = time.Unix(0, 42)

	assert.Equal(t, "checkout:11111111-1111-1111-1111-111111111111:abc", CheckoutKey(userID, " abc ", cart))
	assert.Equal(t, "checkout:11111111-1111-1111-1111-111111111111:v4-42", CheckoutKey(userID, "", cart))
}
