package sales

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/identity"
	"github.com/retailpos/backend/internal/domain/partner"
	"github.com/retailpos/backend/internal/domain/report"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type capturePrinter struct {
	doc printing.ReceiptDocument
}

func (p *capturePrinter) PrintReceipt(_ context.Context, doc printing.ReceiptDocument) ([]byte, error) {
	p.doc = doc
	return []byte("%PDF-1.7"), nil
}

type saleFixture struct {
	repo      *MockSaleRepository
	users     *MockUserRepository
	customers *MockCustomerRepository
	printer   *capturePrinter
	svc       *SaleService
	cashier   *identity.User
	customer  *partner.Customer
	sale      *sales.Sale
}

func newSaleFixture(t *testing.T) *saleFixture {
	t.Helper()
	cashier, err := identity.NewUser("ana", "secret123", "Ana Cashier", identity.RoleCashier)
	require.NoError(t, err)
	customer, err := partner.NewCustomer(partner.CustomerDetails{Name: "ACME Corp", TaxID: "RUC-1"})
	require.NoError(t, err)

	sale, err := sales.NewSale(cashier.ID, nil, &customer.ID, sales.PaymentCard, time.Date(2024, 3, 1, 15, 4, 0, 0, time.UTC))
	require.NoError(t, err)
	p := newProduct("Cola 350ml", "COLA-350", "2.50", 10)
	_, err = sale.AddItem(p.ID, p.Name, p.SKU, 2, p.Price)
	require.NoError(t, err)
	require.NoError(t, sale.Complete())

	f := &saleFixture{
		repo:      new(MockSaleRepository),
		users:     new(MockUserRepository),
		customers: new(MockCustomerRepository),
		printer:   &capturePrinter{},
		cashier:   cashier,
		customer:  customer,
		sale:      sale,
	}
	f.svc = NewSaleService(f.repo, f.users, f.customers, f.printer, time.UTC, nil)
	return f
}

func TestSaleService_GetByID(t *testing.T) {
	f := newSaleFixture(t)
	f.repo.On("FindByID", mock.Anything, f.sale.ID).Return(f.sale, nil)
	f.users.On("FindByIDs", mock.Anything, []uuid.UUID{f.cashier.ID}).Return([]identity.User{*f.cashier}, nil)
	f.customers.On("FindByID", mock.Anything, f.customer.ID).Return(f.customer, nil)

	resp, err := f.svc.GetByID(context.Background(), f.sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ana Cashier", resp.CashierName)
	assert.Equal(t, "ACME Corp", resp.CustomerName)
	assert.Equal(t, "5", resp.TotalAmount.String())
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "5", resp.Items[0].Subtotal.String())
}

func TestSaleService_List(t *testing.T) {
	f := newSaleFixture(t)
	sessionID := uuid.New()

	f.repo.On("FindAll", mock.Anything, mock.MatchedBy(func(filter shared.Filter) bool {
		return filter.Filters[sales.FilterSessionID] == sessionID &&
			filter.Filters[sales.FilterPaymentMethod] == sales.PaymentCard &&
			filter.Filters[sales.FilterFrom] == time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC) &&
			filter.Filters[sales.FilterTo] == time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)
	})).Return([]sales.Sale{*f.sale}, nil)
	f.repo.On("Count", mock.Anything, mock.Anything).Return(int64(1), nil)
	f.users.On("FindByIDs", mock.Anything, mock.Anything).Return([]identity.User{*f.cashier}, nil)
	f.customers.On("FindByID", mock.Anything, f.customer.ID).Return(nil, partner.ErrCustomerNotFound)

	list, total, err := f.svc.List(context.Background(), SaleListFilter{
		From:          "2024-03-01",
		SessionID:     &sessionID,
		PaymentMethod: "card",
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Nil(t, list[0].Items)
	assert.Equal(t, "Ana Cashier", list[0].CashierName)
	assert.Empty(t, list[0].CustomerName)

	_, _, err = f.svc.List(context.Background(), SaleListFilter{From: "2024-03-05", To: "2024-03-01"})
	assert.ErrorIs(t, err, report.ErrInvalidDateRange)
}

func TestSaleService_Receipt(t *testing.T) {
	f := newSaleFixture(t)
	f.repo.On("FindByID", mock.Anything, f.sale.ID).Return(f.sale, nil)
	f.users.On("FindByID", mock.Anything, f.cashier.ID).Return(f.cashier, nil)
	f.customers.On("FindByID", mock.Anything, f.customer.ID).Return(f.customer, nil)

	pdf, name, err := f.svc.Receipt(context.Background(), f.sale.ID)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.7", string(pdf))
	assert.Equal(t, "receipt_"+f.sale.SaleNumber+".pdf", name)

	doc := f.printer.doc
	assert.Equal(t, "Ana Cashier", doc.CashierName)
	assert.Equal(t, "RUC-1", doc.CustomerTaxID)
	assert.Equal(t, "card", doc.PaymentMethod)
	assert.Equal(t, 2, doc.ItemCount)
	require.Len(t, doc.Items, 1)
	assert.Equal(t, "COLA-350", doc.Items[0].SKU)

	noPrinter := NewSaleService(f.repo, f.users, f.customers, nil, nil, nil)
	_, _, err = noPrinter.Receipt(context.Background(), f.sale.ID)
	assert.ErrorIs(t, err, ErrReceiptUnavailable)
}

// MockSaleRepository is a testify mock of sales.SaleRepository
type MockSaleRepository struct {
	mock.Mock
}

func (m *MockSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindBySaleNumber(ctx context.Context, number string) (*sales.Sale, error) {
	args := m.Called(ctx, number)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Sale, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSaleRepository) FindBetween(ctx context.Context, from, to time.Time) ([]sales.Sale, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindRecent(ctx context.Context, limit int) ([]sales.Sale, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]sales.Sale), args.Error(1)
}

func (m *MockSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	return m.Called(ctx, sale).Error(0)
}
