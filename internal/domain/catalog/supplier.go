package catalog

import (
	"net/mail"
	"strings"

	"github.com/retailpos/backend/internal/domain/shared"
)

// Supplier is a vendor products are bought from
type Supplier struct {
	shared.BaseAggregateRoot
	Name        string
	ContactName string
	Phone       string
	Email       string
}

// NewSupplier creates a new supplier
func NewSupplier(name string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if err := validateGroupName("supplier", name); err != nil {
		return nil, err
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
	}, nil
}

// Rename changes the supplier name
func (s *Supplier) Rename(name string) error {
	name = strings.TrimSpace(name)
	if err := validateGroupName("supplier", name); err != nil {
		return err
	}
	s.Name = name
	s.IncrementVersion()
	return nil
}

// SetContact updates the contact details
func (s *Supplier) SetContact(contactName, phone, email string) error {
	email = strings.TrimSpace(email)
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}
	s.ContactName = strings.TrimSpace(contactName)
	s.Phone = strings.TrimSpace(phone)
	s.Email = email
	s.IncrementVersion()
	return nil
}
