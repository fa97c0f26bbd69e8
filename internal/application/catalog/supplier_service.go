package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/catalog"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo catalog.SupplierRepository
	productRepo  catalog.ProductRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(
	supplierRepo catalog.SupplierRepository,
	productRepo catalog.ProductRepository,
) *SupplierService {
	return &SupplierService{
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
	}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := catalog.NewSupplier(req.Name)
	if err != nil {
		return nil, err
	}
	if err := supplier.SetContact(titleCase(req.ContactName), req.Phone, req.Email); err != nil {
		return nil, err
	}

	exists, err := s.supplierRepo.ExistsByName(ctx, supplier.Name, nil)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, catalog.ErrSupplierExists
	}

	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier, 0)
	return &resp, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	counts, err := s.productRepo.CountBySupplier(ctx)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier, counts[supplier.ID])
	return &resp, nil
}

// List retrieves suppliers ordered by name, each with its product count
func (s *SupplierService) List(ctx context.Context, filter ListFilter) ([]SupplierResponse, int64, error) {
	domainFilter := filter.toDomainFilter()
	if filter.OrderBy == "" {
		domainFilter.OrderBy = "name"
		domainFilter.OrderDir = "asc"
	}

	suppliers, err := s.supplierRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.supplierRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	counts, err := s.productRepo.CountBySupplier(ctx)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]SupplierResponse, len(suppliers))
	for i := range suppliers {
		responses[i] = ToSupplierResponse(&suppliers[i], counts[suppliers[i].ID])
	}
	return responses, total, nil
}

// Update changes a supplier's name and contact details
func (s *SupplierService) Update(ctx context.Context, id uuid.UUID, req UpdateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	exists, err := s.supplierRepo.ExistsByName(ctx, req.Name, &id)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, catalog.ErrSupplierExists
	}

	if err := supplier.Rename(req.Name); err != nil {
		return nil, err
	}
	if err := supplier.SetContact(titleCase(req.ContactName), req.Phone, req.Email); err != nil {
		return nil, err
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// Delete removes a supplier. Its products stay in the catalog without a supplier.
func (s *SupplierService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.supplierRepo.Delete(ctx, id)
}

// titleCase capitalizes each word of a person's name, leaving the rest of the
// word as typed. A Caser keeps state, so one is built per call.
func titleCase(name string) string {
	return cases.Title(language.Und, cases.NoLower).String(name)
}
