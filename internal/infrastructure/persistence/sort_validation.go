package persistence

import (
	"strings"

	"github.com/retailpos/backend/internal/domain/shared"
)

// sortRule lists the columns a list endpoint may order by. Anything else
// in the request falls back to the default, so user input never reaches
// the ORDER BY clause unchecked.
type sortRule struct {
	columns    map[string]struct{}
	defaultCol string
	defaultDir string
}

func newSortRule(defaultCol, defaultDir string, columns ...string) sortRule {
	set := make(map[string]struct{}, len(columns)+2)
	for _, c := range append(columns, "id", "created_at") {
		set[c] = struct{}{}
	}
	return sortRule{columns: set, defaultCol: defaultCol, defaultDir: defaultDir}
}

// allows reports whether column is sortable
func (s sortRule) allows(column string) bool {
	_, ok := s.columns[column]
	return ok
}

// column returns the requested column when allowed, else the default
func (s sortRule) column(requested string) string {
	if c := strings.TrimSpace(requested); s.allows(c) {
		return c
	}
	return s.defaultCol
}

// direction normalises to ASC or DESC. An empty value takes the default,
// anything unrecognised sorts descending.
func (s sortRule) direction(requested string) string {
	d := strings.TrimSpace(requested)
	if d == "" {
		d = s.defaultDir
	}
	if strings.EqualFold(d, "asc") {
		return "ASC"
	}
	return "DESC"
}

// clause renders the ORDER BY expression for a list filter
func (s sortRule) clause(f shared.Filter) string {
	return s.column(f.OrderBy) + " " + s.direction(f.OrderDir)
}

var (
	categorySort   = newSortRule("name", "asc", "updated_at", "name")
	supplierSort   = newSortRule("name", "asc", "updated_at", "name", "contact_name")
	customerSort   = newSortRule("name", "asc", "updated_at", "name", "tax_id", "email")
	productSort    = newSortRule("name", "asc", "updated_at", "name", "sku", "price", "cost", "stock", "category_id", "supplier_id")
	userSort       = newSortRule("username", "asc", "updated_at", "username", "full_name", "role", "is_active", "last_login_at")
	sessionSort    = newSortRule("start_time", "desc", "start_time", "end_time", "starting_balance", "ending_balance")
	saleSort       = newSortRule("created_at", "desc", "sale_number", "total_amount", "payment_method")
	saleReturnSort = newSortRule("returned_at", "desc", "returned_at", "total_refund", "refund_method")
)
