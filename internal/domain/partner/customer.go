package partner

import (
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/retailpos/backend/internal/domain/shared"
)

// Customer is a buyer that can be attached to a sale, e.g. for invoicing
type Customer struct {
	shared.BaseAggregateRoot
	Name    string
	TaxID   string
	Phone   string
	Email   string
	Address string
}

// CustomerDetails carries the editable customer fields
type CustomerDetails struct {
	Name    string
	TaxID   string
	Phone   string
	Email   string
	Address string
}

// NewCustomer creates a customer
func NewCustomer(details CustomerDetails) (*Customer, error) {
	c := &Customer{BaseAggregateRoot: shared.NewBaseAggregateRoot()}
	if err := c.apply(details); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the customer details
func (c *Customer) Update(details CustomerDetails) error {
	if err := c.apply(details); err != nil {
		return err
	}
	c.IncrementVersion()
	return nil
}

func (c *Customer) apply(d CustomerDetails) error {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	taxID := strings.ToUpper(strings.TrimSpace(d.TaxID))
	if len(taxID) > 20 {
		return shared.NewDomainError("INVALID_TAX_ID", "Tax ID cannot exceed 20 characters")
	}
	email := strings.ToLower(strings.TrimSpace(d.Email))
	if email != "" {
		if _, err := mail.ParseAddress(email); err != nil {
			return shared.NewDomainError("INVALID_EMAIL", "Invalid email format")
		}
	}

	c.Name = name
	c.TaxID = taxID
	c.Phone = strings.TrimSpace(d.Phone)
	c.Email = email
	c.Address = strings.TrimSpace(d.Address)
	return nil
}
