package persistence

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

func preloadSaleItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC, product_name ASC")
}

// FindByID loads a sale with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadSaleItems).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, sales.ErrSaleNotFound)
	}
	return model.ToDomain(), nil
}

// FindBySaleNumber loads a sale with its items by receipt number
func (r *GormSaleRepository) FindBySaleNumber(ctx context.Context, saleNumber string) (*sales.Sale, error) {
	var model models.SaleModel
	if err := r.db.WithContext(ctx).
		Preload("Items", preloadSaleItems).
		Where("sale_number = ?", strings.ToUpper(strings.TrimSpace(saleNumber))).
		First(&model).Error; err != nil {
		return nil, notFound(err, sales.ErrSaleNotFound)
	}
	return model.ToDomain(), nil
}

// FindAll lists sales newest first, without items
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.Sale, error) {
	var rows []models.SaleModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter).
		Order(saleSort.clause(filter))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSales(rows), nil
}

// Count counts sales matching the filter
func (r *GormSaleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleModel{}), filter).Count(&count).Error
	return count, err
}

// FindBetween returns sales with from <= created_at < to, newest first
func (r *GormSaleRepository) FindBetween(ctx context.Context, from, to time.Time) ([]sales.Sale, error) {
	var rows []models.SaleModel
	if err := r.db.WithContext(ctx).
		Where("created_at >= ? AND created_at < ?", from, to).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSales(rows), nil
}

// FindRecent returns the latest sales
func (r *GormSaleRepository) FindRecent(ctx context.Context, limit int) ([]sales.Sale, error) {
	var rows []models.SaleModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toSales(rows), nil
}

// Save inserts a sale together with its items
func (r *GormSaleRepository) Save(ctx context.Context, sale *sales.Sale) error {
	err := r.db.WithContext(ctx).
		Omit("Session", "Cashier", "Customer").
		Create(models.SaleModelFromDomain(sale)).Error
	return translateWriteError(err, sales.ErrSaleNumberExists)
}

func (r *GormSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("sale_number LIKE ?", likePattern(strings.ToUpper(search)))
	}
	for key, value := range filter.Filters {
		switch key {
		case sales.FilterSessionID:
			query = query.Where("cash_drawer_session_id = ?", value)
		case sales.FilterCashierID:
			query = query.Where("cashier_id = ?", value)
		case sales.FilterPaymentMethod:
			query = query.Where("payment_method = ?", value)
		case sales.FilterFrom:
			query = query.Where("created_at >= ?", value)
		case sales.FilterTo:
			query = query.Where("created_at < ?", value)
		}
	}
	return query
}

func toSales(rows []models.SaleModel) []sales.Sale {
	result := make([]sales.Sale, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result
}

// Ensure GormSaleRepository implements SaleRepository
var _ sales.SaleRepository = (*GormSaleRepository)(nil)
