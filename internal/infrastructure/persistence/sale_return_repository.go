package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/sales"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleReturnRepository implements SaleReturnRepository using GORM
type GormSaleReturnRepository struct {
	db *gorm.DB
}

// NewGormSaleReturnRepository creates a new GormSaleReturnRepository
func NewGormSaleReturnRepository(db *gorm.DB) *GormSaleReturnRepository {
	return &GormSaleReturnRepository{db: db}
}

func preloadReturnSale(db *gorm.DB) *gorm.DB {
	return db.Select("id", "sale_number")
}

// FindByID loads a return with its items
func (r *GormSaleReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*sales.SaleReturn, error) {
	var model models.SaleReturnModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Sale", preloadReturnSale).
		First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, sales.ErrReturnNotFound)
	}
	return model.ToDomain(), nil
}

// FindBySale lists the returns booked against a sale, oldest first
func (r *GormSaleReturnRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]sales.SaleReturn, error) {
	var rows []models.SaleReturnModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("Sale", preloadReturnSale).
		Where("sale_id = ?", saleID).
		Order("returned_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReturns(rows), nil
}

// FindAll lists returns newest first
func (r *GormSaleReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]sales.SaleReturn, error) {
	var rows []models.SaleReturnModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleReturnModel{}), filter).
		Preload("Sale", preloadReturnSale).
		Order(saleReturnSort.clause(filter))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toReturns(rows), nil
}

// Count counts returns matching the filter
func (r *GormSaleReturnRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.SaleReturnModel{}), filter).Count(&count).Error
	return count, err
}

type returnedQuantity struct {
	ProductID uuid.UUID
	Qty       int
}

// ReturnedQuantities sums the returned units per product for a sale
func (r *GormSaleReturnRepository) ReturnedQuantities(ctx context.Context, saleID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []returnedQuantity
	if err := r.db.WithContext(ctx).
		Table("sale_return_items AS ri").
		Select("ri.product_id AS product_id, SUM(ri.quantity) AS qty").
		Joins("JOIN sale_returns AS sr ON sr.id = ri.sale_return_id").
		Where("sr.sale_id = ?", saleID).
		Group("ri.product_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	returned := make(map[uuid.UUID]int, len(rows))
	for _, row := range rows {
		returned[row.ProductID] = row.Qty
	}
	return returned, nil
}

// Save inserts a return together with its items
func (r *GormSaleReturnRepository) Save(ctx context.Context, ret *sales.SaleReturn) error {
	err := r.db.WithContext(ctx).
		Omit("Sale", "Session").
		Create(models.SaleReturnModelFromDomain(ret)).Error
	return translateWriteError(err, nil)
}

func (r *GormSaleReturnRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	for key, value := range filter.Filters {
		switch key {
		case sales.FilterSaleID:
			query = query.Where("sale_id = ?", value)
		case sales.FilterSessionID:
			query = query.Where("cash_drawer_session_id = ?", value)
		case sales.FilterFrom:
			query = query.Where("returned_at >= ?", value)
		case sales.FilterTo:
			query = query.Where("returned_at < ?", value)
		}
	}
	return query
}

func toReturns(rows []models.SaleReturnModel) []sales.SaleReturn {
	result := make([]sales.SaleReturn, len(rows))
	for i := range rows {
		result[i] = *rows[i].ToDomain()
	}
	return result
}

// Ensure GormSaleReturnRepository implements SaleReturnRepository
var _ sales.SaleReturnRepository = (*GormSaleReturnRepository)(nil)
