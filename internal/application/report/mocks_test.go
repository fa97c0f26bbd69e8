package report

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/drawer"
	"github.com/retailpos/backend/internal/domain/report"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/printing"
	"github.com/stretchr/testify/mock"
)

type MockReportRepository struct {
	mock.Mock
}

func (m *MockReportRepository) SalesTotals(ctx context.Context, from, to time.Time) (report.SalesTotals, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(report.SalesTotals), args.Error(1)
}

func (m *MockReportRepository) TopProducts(ctx context.Context, limit int) ([]report.TopProduct, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]report.TopProduct), args.Error(1)
}

func (m *MockReportRepository) SessionsStartedBetween(ctx context.Context, from, to time.Time) ([]report.SessionOverview, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]report.SessionOverview), args.Error(1)
}

func (m *MockReportRepository) RecentSales(ctx context.Context, limit int) ([]report.SaleRow, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]report.SaleRow), args.Error(1)
}

func (m *MockReportRepository) SalesBetween(ctx context.Context, from, to time.Time) ([]report.SaleRow, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]report.SaleRow), args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	args := m.Called(ctx, sku)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	args := m.Called(ctx, ids)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) FindLowStock(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) FindOutOfStock(ctx context.Context, limit int) ([]catalog.Product, error) {
	args := m.Called(ctx, limit)
	return args.Get(0).([]catalog.Product), args.Error(1)
}

func (m *MockProductRepository) CountByCategory(ctx context.Context) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockProductRepository) CountBySupplier(ctx context.Context) (map[uuid.UUID]int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[uuid.UUID]int64), args.Error(1)
}

func (m *MockProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	args := m.Called(ctx, sku, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) SaveStock(ctx context.Context, product *catalog.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

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
	return m.Called(ctx, session).Error(0)
}

type fakeSpreadsheet struct {
	rows int
}

func (f *fakeSpreadsheet) Write(rep *report.SalesReport) ([]byte, error) {
	f.rows = len(rep.Sales)
	return []byte("PK-xlsx"), nil
}

type fakeReportPrinter struct {
	doc printing.SalesReportDocument
}

func (f *fakeReportPrinter) PrintSalesReport(_ context.Context, doc printing.SalesReportDocument) ([]byte, error) {
	f.doc = doc
	return []byte("%PDF-1.7"), nil
}
