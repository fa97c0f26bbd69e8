package persistence

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormProductRepository implements ProductRepository using GORM
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// FindByID finds a product by its ID
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	var model models.ProductModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, catalog.ErrProductNotFound)
	}
	return model.ToDomain(), nil
}

// FindBySKU finds a product by its normalized SKU
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*catalog.Product, error) {
	sku = catalog.NormalizeSKU(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	var model models.ProductModel
	if err := r.db.WithContext(ctx).Where("sku = ?", sku).First(&model).Error; err != nil {
		return nil, notFound(err, catalog.ErrProductNotFound)
	}
	return model.ToDomain(), nil
}

// FindByIDs finds multiple products by their IDs
func (r *GormProductRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	var rows []models.ProductModel
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindByIDsForUpdate loads products with SELECT ... FOR UPDATE. IDs are sorted
// first so that concurrent checkouts acquire row locks in the same order.
func (r *GormProductRepository) FindByIDsForUpdate(ctx context.Context, ids []uuid.UUID) ([]catalog.Product, error) {
	if len(ids) == 0 {
		return []catalog.Product{}, nil
	}
	sorted := make([]uuid.UUID, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].String() < sorted[j].String() })

	query := r.db.WithContext(ctx).Where("id IN ?", sorted).Order("id")
	if r.db.Dialector.Name() != "sqlite" {
		query = query.Clauses(clause.Locking{Strength: clause.LockingStrengthUpdate})
	}

	var rows []models.ProductModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindAll lists products matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter)
	query = query.Order(productSort.clause(filter))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// Count counts products matching the filter
func (r *GormProductRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.ProductModel{}), filter).Count(&count).Error
	return count, err
}

// FindLowStock returns products with 0 < stock < LowStockThreshold, lowest first
func (r *GormProductRepository) FindLowStock(ctx context.Context, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.db.WithContext(ctx).
		Where("stock > 0 AND stock < ?", catalog.LowStockThreshold).
		Order("stock ASC, name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

// FindOutOfStock returns products with no stock
func (r *GormProductRepository) FindOutOfStock(ctx context.Context, limit int) ([]catalog.Product, error) {
	var rows []models.ProductModel
	query := r.db.WithContext(ctx).Where("stock <= 0").Order("name ASC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	return toProducts(rows), nil
}

type groupCount struct {
	GroupID uuid.UUID
	Total   int64
}

// CountByCategory returns the number of products per category
func (r *GormProductRepository) CountByCategory(ctx context.Context) (map[uuid.UUID]int64, error) {
	return r.countGroupedBy(ctx, "category_id")
}

// CountBySupplier returns the number of products per supplier
func (r *GormProductRepository) CountBySupplier(ctx context.Context) (map[uuid.UUID]int64, error) {
	return r.countGroupedBy(ctx, "supplier_id")
}

func (r *GormProductRepository) countGroupedBy(ctx context.Context, column string) (map[uuid.UUID]int64, error) {
	var rows []groupCount
	if err := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Select(column + " AS group_id, COUNT(*) AS total").
		Where(column + " IS NOT NULL").
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		counts[row.GroupID] = row.Total
	}
	return counts, nil
}

// ExistsBySKU reports whether another product already uses the SKU
func (r *GormProductRepository) ExistsBySKU(ctx context.Context, sku string, excludeID *uuid.UUID) (bool, error) {
	query := r.db.WithContext(ctx).Model(&models.ProductModel{}).Where("sku = ?", catalog.NormalizeSKU(sku))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save creates or updates a product
func (r *GormProductRepository) Save(ctx context.Context, product *catalog.Product) error {
	model := models.ProductModelFromDomain(product)
	err := r.db.WithContext(ctx).Omit(clause.Associations).Save(model).Error
	return translateWriteError(err, catalog.ErrSKUExists)
}

// SaveStock writes the stock level if the row still carries the version the
// product was loaded with. The domain bumps Version once per stock change.
func (r *GormProductRepository) SaveStock(ctx context.Context, product *catalog.Product) error {
	result := r.db.WithContext(ctx).
		Model(&models.ProductModel{}).
		Where("id = ? AND version = ?", product.ID, product.Version-1).
		Updates(map[string]any{
			"stock":      product.Stock,
			"version":    product.Version,
			"updated_at": product.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// Delete deletes a product. Products referenced by sales cannot be deleted.
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProductModel{}, "id = ?", id)
	if result.Error != nil {
		return translateWriteError(result.Error, nil)
	}
	if result.RowsAffected == 0 {
		return catalog.ErrProductNotFound
	}
	return nil
}

func (r *GormProductRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		pattern := likePattern(strings.ToLower(search))
		query = query.Where("LOWER(name) LIKE ? OR LOWER(sku) LIKE ?", pattern, pattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case catalog.FilterCategoryID:
			query = query.Where("category_id = ?", value)
		case catalog.FilterSupplierID:
			query = query.Where("supplier_id = ?", value)
		case catalog.FilterStockStatus:
			switch catalog.StockStatus(toString(value)) {
			case catalog.StockStatusOutOfStock:
				query = query.Where("stock <= 0")
			case catalog.StockStatusLowStock:
				query = query.Where("stock > 0 AND stock < ?", catalog.LowStockThreshold)
			case catalog.StockStatusInStock:
				query = query.Where("stock >= ?", catalog.LowStockThreshold)
			}
		}
	}
	return query
}

func toProducts(rows []models.ProductModel) []catalog.Product {
	products := make([]catalog.Product, len(rows))
	for i := range rows {
		products[i] = *rows[i].ToDomain()
	}
	return products
}

// Ensure GormProductRepository implements ProductRepository
var _ catalog.ProductRepository = (*GormProductRepository)(nil)
