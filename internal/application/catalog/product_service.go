package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"github.com/retailpos/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ProductService handles product-related business operations
type ProductService struct {
	productRepo  catalog.ProductRepository
	categoryRepo catalog.CategoryRepository
	supplierRepo catalog.SupplierRepository
	logger       *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	supplierRepo catalog.SupplierRepository,
	logger *zap.Logger,
) *ProductService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProductService{
		productRepo:  productRepo,
		categoryRepo: categoryRepo,
		supplierRepo: supplierRepo,
		logger:       logger,
	}
}

// Create creates a new product with its opening stock
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.SKU, req.Price)
	if err != nil {
		return nil, err
	}
	if req.Stock < 0 {
		return nil, shared.NewDomainError("NEGATIVE_STOCK", "Stock cannot be negative")
	}
	product.Stock = req.Stock
	if err := product.SetCost(req.Cost); err != nil {
		return nil, err
	}
	if err := s.checkReferences(ctx, req.CategoryID, req.SupplierID); err != nil {
		return nil, err
	}
	product.Assign(req.CategoryID, req.SupplierID)

	exists, err := s.productRepo.ExistsBySKU(ctx, product.SKU, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, catalog.ErrSKUExists
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return s.respond(ctx, product)
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, product)
}

// GetBySKU retrieves a product by SKU; the lookup ignores case and surrounding spaces
func (s *ProductService) GetBySKU(ctx context.Context, sku string) (*ProductResponse, error) {
	sku = catalog.NormalizeSKU(sku)
	if sku == "" {
		return nil, shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	product, err := s.productRepo.FindBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	return s.respond(ctx, product)
}

// List retrieves products matching the filter
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := filter.toDomainFilter()
	if filter.OrderBy == "" {
		domainFilter.OrderBy = "name"
		domainFilter.OrderDir = "asc"
	}
	if filter.CategoryID != nil {
		domainFilter.Filters[catalog.FilterCategoryID] = *filter.CategoryID
	}
	if filter.SupplierID != nil {
		domainFilter.Filters[catalog.FilterSupplierID] = *filter.SupplierID
	}
	if filter.StockStatus != "" {
		status := catalog.StockStatus(filter.StockStatus)
		if !status.IsValid() {
			return nil, 0, shared.NewDomainError("INVALID_STOCK_STATUS", "Unknown stock status")
		}
		domainFilter.Filters[catalog.FilterStockStatus] = status
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProductResponse, len(products))
	for i := range products {
		responses[i] = ToProductResponse(&products[i])
	}
	if err := s.attachNames(ctx, responses); err != nil {
		return nil, 0, err
	}
	return responses, total, nil
}

// Update changes the product details. Stock is left untouched.
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	sku := catalog.NormalizeSKU(req.SKU)
	if sku != product.SKU {
		exists, err := s.productRepo.ExistsBySKU(ctx, sku, &id)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, catalog.ErrSKUExists
		}
	}
	if err := s.checkReferences(ctx, req.CategoryID, req.SupplierID); err != nil {
		return nil, err
	}

	if err := product.Update(req.Name, sku, req.Price); err != nil {
		return nil, err
	}
	if err := product.SetCost(req.Cost); err != nil {
		return nil, err
	}
	product.Assign(req.CategoryID, req.SupplierID)

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	return s.respond(ctx, product)
}

// AdjustStock applies a manual stock correction. The write is version
// guarded, so a concurrent checkout makes it fail with a conflict instead
// of overwriting the sold units.
func (s *ProductService) AdjustStock(ctx context.Context, id, userID uuid.UUID, req AdjustStockRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	before := product.Stock
	if err := product.AdjustStock(req.Delta); err != nil {
		return nil, err
	}
	if err := s.productRepo.SaveStock(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info("Stock adjusted",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
		zap.Int("before", before),
		zap.Int("after", product.Stock),
		zap.String("reason", req.Reason),
		zap.String("user_id", userID.String()),
	)
	return s.respond(ctx, product)
}

// Delete removes a product that has never been sold
func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.productRepo.Delete(ctx, id)
}

func (s *ProductService) checkReferences(ctx context.Context, categoryID, supplierID *uuid.UUID) error {
	if categoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
			return err
		}
	}
	if supplierID != nil {
		if _, err := s.supplierRepo.FindByID(ctx, *supplierID); err != nil {
			return err
		}
	}
	return nil
}

func (s *ProductService) respond(ctx context.Context, product *catalog.Product) (*ProductResponse, error) {
	responses := []ProductResponse{ToProductResponse(product)}
	if err := s.attachNames(ctx, responses); err != nil {
		return nil, err
	}
	return &responses[0], nil
}

// attachNames fills category and supplier names. Both tables are small, so
// they are read whole rather than per product.
func (s *ProductService) attachNames(ctx context.Context, responses []ProductResponse) error {
	var needCategories, needSuppliers bool
	for _, r := range responses {
		needCategories = needCategories || r.CategoryID != nil
		needSuppliers = needSuppliers || r.SupplierID != nil
	}

	if needCategories {
		categories, err := s.categoryRepo.FindAll(ctx, shared.Filter{})
		if err != nil {
			return err
		}
		names := make(map[uuid.UUID]string, len(categories))
		for _, c := range categories {
			names[c.ID] = c.Name
		}
		for i := range responses {
			if id := responses[i].CategoryID; id != nil {
				responses[i].CategoryName = names[*id]
			}
		}
	}

	if needSuppliers {
		suppliers, err := s.supplierRepo.FindAll(ctx, shared.Filter{})
		if err != nil {
			return err
		}
		names := make(map[uuid.UUID]string, len(suppliers))
		for _, sp := range suppliers {
			names[sp.ID] = sp.Name
		}
		for i := range responses {
			if id := responses[i].SupplierID; id != nil {
				responses[i].SupplierName = names[*id]
			}
		}
	}
	return nil
}
