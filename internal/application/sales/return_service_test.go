package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type returnFixture struct {
	products  *memProductRepo
	sales     *memSaleRepo
	returns   *memReturnRepo
	sessions  *MockSessionRepository
	users     *MockUserRepository
	publisher *recordingPublisher
	svc       *ReturnService
	sale      *sales.Sale
	colaID    uuid.UUID
	chipsID   uuid.UUID
}

// newReturnFixture records a cash sale of 3 colas at 2.50 and 2 chips at 3.00.
// Stock after the sale is 7 colas and 3 chips.
func newReturnFixture(t *testing.T) *returnFixture {
	t.Helper()
	cola := newProduct("Cola 350ml", "COLA-350", "2.50", 7)
	chips := newProduct("Potato Chips", "CHIPS-1", "3.00", 3)

	sale, err := sales.NewSale(uuid.New(), nil, nil, sales.PaymentCash, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = sale.AddItem(cola.ID, cola.Name, cola.SKU, 3, cola.Price)
	require.NoError(t, err)
	_, err = sale.AddItem(chips.ID, chips.Name, chips.SKU, 2, chips.Price)
	require.NoError(t, err)
	require.NoError(t, sale.Complete())
	sale.ClearDomainEvents()

	f := &returnFixture{
		products:  newMemProductRepo(cola, chips),
		sales:     &memSaleRepo{},
		returns:   &memReturnRepo{},
		sessions:  new(MockSessionRepository),
		users:     new(MockUserRepository),
		publisher: &recordingPublisher{},
		sale:      sale,
		colaID:    cola.ID,
		chipsID:   chips.ID,
	}
	require.NoError(t, f.sales.Save(context.Background(), sale))

	scope := NewNoOpTransactionScope(f.products, f.sales, f.returns, f.sessions)
	f.svc = NewReturnService(scope, f.sales, f.returns, f.sessions, f.users, time.UTC, nil)
	f.svc.SetEventPublisher(f.publisher)
	f.svc.now = func() time.Time { return time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC) }
	return f
}

func TestReturnService_ProcessReturn(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture(t)
	cashierID := uuid.New()
	session, err := drawer.OpenSession(cashierID, decimal.NewFromInt(50), time.Now())
	require.NoError(t, err)
	f.sessions.On("FindActiveByUser", mock.Anything, cashierID).Return(session, nil)
	f.sessions.On("LockActive", mock.Anything, session.ID).Return(session, nil)

	resp, err := f.svc.ProcessReturn(ctx, cashierID, ProcessReturnRequest{
		SaleID: f.sale.ID,
		Reason: "Damaged packaging",
		Items: []ReturnItemRequest{
			{ProductID: f.colaID, Quantity: 1},
			{ProductID: f.chipsID, Quantity: 2},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "8.5", resp.Return.TotalRefund.String())
	assert.Equal(t, "cash", resp.Return.RefundMethod)
	assert.Equal(t, &session.ID, resp.Return.SessionID)
	assert.Equal(t, f.sale.SaleNumber, resp.Return.SaleNumber)
	assert.Equal(t, "Return processed - Refund: 8.50", resp.Message)

	assert.Equal(t, 8, f.products.stock(f.colaID))
	assert.Equal(t, 5, f.products.stock(f.chipsID))
	assert.Equal(t, []string{sales.EventTypeSaleReturned}, f.publisher.types())

	// only two colas are left to return
	_, err = f.svc.ProcessReturn(ctx, cashierID, ProcessReturnRequest{
		SaleID: f.sale.ID,
		Items:  []ReturnItemRequest{{ProductID: f.colaID, Quantity: 3}},
	})
	require.ErrorIs(t, err, sales.ErrReturnQuantityLimit)
	assert.Equal(t, "Cannot return 3 of Cola 350ml. Returnable: 2", err.Error())
	assert.Equal(t, 8, f.products.stock(f.colaID))
	assert.Len(t, f.returns.returns, 1)
}

func TestReturnService_ProcessReturnWithoutSession(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture(t)
	userID := uuid.New()
	f.sessions.On("FindActiveByUser", mock.Anything, userID).Return(nil, drawer.ErrNoActiveSession)

	resp, err := f.svc.ProcessReturn(ctx, userID, ProcessReturnRequest{
		SaleID: f.sale.ID,
		Items:  []ReturnItemRequest{{ProductID: f.colaID, Quantity: 3}},
	})
	require.NoError(t, err)
	assert.Nil(t, resp.Return.SessionID)
	assert.Equal(t, 10, f.products.stock(f.colaID))
}

func TestReturnService_SessionClosedBeforeCommit(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture(t)
	cashierID := uuid.New()
	session, err := drawer.OpenSession(cashierID, decimal.NewFromInt(50), time.Now())
	require.NoError(t, err)
	f.sessions.On("FindActiveByUser", mock.Anything, cashierID).Return(session, nil)
	f.sessions.On("LockActive", mock.Anything, session.ID).Return(nil, drawer.ErrNoActiveSession)

	_, err = f.svc.ProcessReturn(ctx, cashierID, ProcessReturnRequest{
		SaleID: f.sale.ID,
		Items:  []ReturnItemRequest{{ProductID: f.colaID, Quantity: 1}},
	})
	require.ErrorIs(t, err, drawer.ErrNoActiveSession)
	assert.Equal(t, 7, f.products.stock(f.colaID))
	assert.Empty(t, f.returns.returns)
	assert.Empty(t, f.publisher.types())
}

func TestReturnService_ProcessReturnErrors(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture(t)
	userID := uuid.New()
	f.sessions.On("FindActiveByUser", mock.Anything, userID).Return(nil, drawer.ErrNoActiveSession)

	tests := []struct {
		name string
		req  ProcessReturnRequest
		want error
	}{
		{
			name: "unknown sale",
			req:  ProcessReturnRequest{SaleID: uuid.New(), Items: []ReturnItemRequest{{ProductID: f.colaID, Quantity: 1}}},
			want: sales.ErrSaleNotFound,
		},
		{
			name: "product not in sale",
			req:  ProcessReturnRequest{SaleID: f.sale.ID, Items: []ReturnItemRequest{{ProductID: uuid.New(), Quantity: 1}}},
			want: sales.ErrItemNotInSale,
		},
		{
			name: "no items",
			req:  ProcessReturnRequest{SaleID: f.sale.ID},
			want: sales.ErrNoReturnItems,
		},
		{
			name: "zero quantity",
			req:  ProcessReturnRequest{SaleID: f.sale.ID, Items: []ReturnItemRequest{{ProductID: f.colaID, Quantity: 0}}},
			want: shared.NewDomainError("INVALID_QUANTITY", ""),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.ProcessReturn(ctx, userID, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
	assert.Equal(t, 7, f.products.stock(f.colaID))
	assert.Empty(t, f.returns.returns)
}

func TestReturnService_SearchSaleForReturn(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture(t)
	userID := uuid.New()
	f.sessions.On("FindActiveByUser", mock.Anything, userID).Return(nil, drawer.ErrNoActiveSession)

	_, err := f.svc.SearchSaleForReturn(ctx, "  ")
	assert.ErrorIs(t, err, ErrReturnQueryRequired)

	_, err = f.svc.SearchSaleForReturn(ctx, "S-19990101-FFFFFFFF")
	assert.ErrorIs(t, err, sales.ErrSaleNotFound)

	_, err = f.svc.ProcessReturn(ctx, userID, ProcessReturnRequest{
		SaleID: f.sale.ID,
		Items:  []ReturnItemRequest{{ProductID: f.chipsID, Quantity: 2}},
	})
	require.NoError(t, err)

	byNumber, err := f.svc.SearchSaleForReturn(ctx, f.sale.SaleNumber)
	require.NoError(t, err)
	byID, err := f.svc.SearchSaleForReturn(ctx, f.sale.ID.String())
	require.NoError(t, err)
	assert.Equal(t, byNumber, byID)

	require.Len(t, byNumber.Lines, 2)
	lines := map[uuid.UUID]ReturnableLineResponse{}
	for _, l := range byNumber.Lines {
		lines[l.ProductID] = l
	}
	assert.Equal(t, ReturnableLineResponse{
		ProductID: f.chipsID, ProductName: "Potato Chips", SKU: "CHIPS-1",
		UnitPrice: lines[f.chipsID].UnitPrice, Sold: 2, Returned: 2, Returnable: 0,
	}, lines[f.chipsID])
	assert.Equal(t, 3, lines[f.colaID].Returnable)
	assert.False(t, byNumber.FullyReturned)
}

func TestReturnService_ListAndGet(t *testing.T) {
	ctx := context.Background()
	f := newReturnFixture(t)
	cashier, err := identity.NewUser("ana", "secret123", "Ana Cashier", identity.RoleCashier)
	require.NoError(t, err)
	f.sessions.On("FindActiveByUser", mock.Anything, cashier.ID).Return(nil, drawer.ErrNoActiveSession)
	f.users.On("FindByIDs", mock.Anything, mock.Anything).Return([]identity.User{*cashier}, nil)

	created, err := f.svc.ProcessReturn(ctx, cashier.ID, ProcessReturnRequest{
		SaleID: f.sale.ID,
		Items:  []ReturnItemRequest{{ProductID: f.colaID, Quantity: 1}},
	})
	require.NoError(t, err)

	list, total, err := f.svc.ListReturns(ctx, ReturnListFilter{SaleID: &f.sale.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, "Ana Cashier", list[0].ProcessedByName)

	got, err := f.svc.GetReturn(ctx, created.Return.ID)
	require.NoError(t, err)
	assert.Equal(t, "2.5", got.TotalRefund.String())

	_, _, err = f.svc.ListReturns(ctx, ReturnListFilter{From: "2024/03/01"})
	assert.Error(t, err)
}
