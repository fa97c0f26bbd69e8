package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/retailpos/backend/internal/domain/shared"
)

// ErrCustomerNotFound is returned when a customer does not exist
var ErrCustomerNotFound = shared.NewDomainError("CUSTOMER_NOT_FOUND", "Customer not found")

// CustomerRepository defines customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindAll lists customers ordered by name by default
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// Search matches name, tax ID, email and phone
	Search(ctx context.Context, query string, limit int) ([]Customer, error)

	Save(ctx context.Context, customer *Customer) error
	Delete(ctx context.Context, id uuid.UUID) error
}
