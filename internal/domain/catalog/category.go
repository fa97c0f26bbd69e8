package catalog

import (
	"strings"
	"unicode/utf8"

	"github.com/retailpos/backend/internal/domain/shared"
)

// Category groups products for browsing and reporting
type Category struct {
	shared.BaseAggregateRoot
	Name        string
	Description string
}

// NewCategory creates a new category
func NewCategory(name, description string) (*Category, error) {
	name = strings.TrimSpace(name)
	if err := validateGroupName("category", name); err != nil {
		return nil, err
	}
	return &Category{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Description:       strings.TrimSpace(description),
	}, nil
}

// Update renames the category
func (c *Category) Update(name, description string) error {
	name = strings.TrimSpace(name)
	if err := validateGroupName("category", name); err != nil {
		return err
	}
	c.Name = name
	c.Description = strings.TrimSpace(description)
	c.IncrementVersion()
	return nil
}

func validateGroupName(kind, name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "The "+kind+" name cannot be empty")
	}
	if utf8.RuneCountInString(name) > 100 {
		return shared.NewDomainError("INVALID_NAME", "The "+kind+" name cannot exceed 100 characters")
	}
	return nil
}
