package persistence

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/retailpos/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormCategoryRepository implements CategoryRepository using GORM
type GormCategoryRepository struct {
	db *gorm.DB
}

// NewGormCategoryRepository creates a new GormCategoryRepository
func NewGormCategoryRepository(db *gorm.DB) *GormCategoryRepository {
	return &GormCategoryRepository{db: db}
}

// FindByID finds a category by its ID
func (r *GormCategoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*catalog.Category, error) {
	var model models.CategoryModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		return nil, notFound(err, catalog.ErrCategoryNotFound)
	}
	return model.ToDomain(), nil
}

// FindAll lists categories ordered by name
func (r *GormCategoryRepository) FindAll(ctx context.Context, filter shared.Filter) ([]catalog.Category, error) {
	var rows []models.CategoryModel
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.CategoryModel{}), filter).
		Order(categorySort.clause(filter))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.Limit())
	}
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	categories := make([]catalog.Category, len(rows))
	for i := range rows {
		categories[i] = *rows[i].ToDomain()
	}
	return categories, nil
}

// Count counts categories matching the filter
func (r *GormCategoryRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	err := r.applyFilter(r.db.WithContext(ctx).Model(&models.CategoryModel{}), filter).Count(&count).Error
	return count, err
}

// ExistsByName reports whether another category has the name, ignoring case
func (r *GormCategoryRepository) ExistsByName(ctx context.Context, name string, excludeID *uuid.UUID) (bool, error) {
	return existsByName(ctx, r.db, &models.CategoryModel{}, name, excludeID)
}

// Save creates or updates a category
func (r *GormCategoryRepository) Save(ctx context.Context, category *catalog.Category) error {
	err := r.db.WithContext(ctx).Save(models.CategoryModelFromDomain(category)).Error
	return translateWriteError(err, catalog.ErrCategoryExists)
}

// Delete deletes a category; products keep existing with no category
func (r *GormCategoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return deleteNullingProducts(ctx, r.db, &models.CategoryModel{}, "category_id", id, catalog.ErrCategoryNotFound)
}

func (r *GormCategoryRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if search := strings.TrimSpace(filter.Search); search != "" {
		query = query.Where("LOWER(name) LIKE ?", likePattern(strings.ToLower(search)))
	}
	return query
}

// existsByName runs a case-insensitive name lookup for categories and suppliers
func existsByName(ctx context.Context, db *gorm.DB, model any, name string, excludeID *uuid.UUID) (bool, error) {
	query := db.WithContext(ctx).Model(model).Where("LOWER(name) = ?", strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// deleteNullingProducts clears the product reference and deletes the row in
// one transaction. The schema also declares ON DELETE SET NULL.
func deleteNullingProducts(ctx context.Context, db *gorm.DB, model any, column string, id uuid.UUID, missing error) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.ProductModel{}).
			Where(column+" = ?", id).
			Update(column, nil).Error; err != nil {
			return err
		}
		result := tx.Delete(model, "id = ?", id)
		if result.Error != nil {
			return translateWriteError(result.Error, nil)
		}
		if result.RowsAffected == 0 {
			return missing
		}
		return nil
	})
}

// Ensure GormCategoryRepository implements CategoryRepository
var _ catalog.CategoryRepository = (*GormCategoryRepository)(nil)
