package persistence

import (
	"testing"

	"github.com/retailpos/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
)

func TestSortRule_Clause(t *testing.T) {
	tests := []struct {
		name string
		rule sortRule
		by   string
		dir  string
		want string
	}{
		{"defaults", productSort, "", "", "name ASC"},
		{"allowed column", productSort, "price", "desc", "price DESC"},
		{"padded input", productSort, "  stock ", " asc ", "stock ASC"},
		{"unknown direction sorts descending", productSort, "stock", "sideways", "stock DESC"},
		{"unknown column falls back", userSort, "password_hash", "", "username ASC"},
		{"column names are case sensitive", customerSort, "NAME", "asc", "name ASC"},
		{"id always sortable", saleSort, "id", "asc", "id ASC"},
		{"sessions newest first", sessionSort, "", "", "start_time DESC"},
		{"returns newest first", saleReturnSort, "", "", "returned_at DESC"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := shared.Filter{OrderBy: tt.by, OrderDir: tt.dir}
			assert.Equal(t, tt.want, tt.rule.clause(f))
		})
	}
}

func TestSortRule_RejectsInjection(t *testing.T) {
	payloads := []string{
		"id; DROP TABLE sales;--",
		"id' OR '1'='1",
		"total_amount UNION SELECT * FROM users",
		"id, (SELECT password_hash FROM users)",
		"CASE WHEN 1=1 THEN id ELSE sale_number END",
		"id/**/;DROP TABLE drawer_sessions",
		"id\n; DROP TABLE products",
	}
	for _, p := range payloads {
		assert.Equal(t, "created_at", saleSort.column(p), p)
		assert.Equal(t, "DESC", saleSort.direction(p), p)
	}
}

func TestSortRules_IncludeCommonColumns(t *testing.T) {
	for _, rule := range []sortRule{
		categorySort, supplierSort, customerSort, productSort,
		userSort, sessionSort, saleSort, saleReturnSort,
	} {
		assert.True(t, rule.allows("id"))
		assert.True(t, rule.allows("created_at"))
		assert.True(t, rule.allows(rule.defaultCol), rule.defaultCol)
	}
}
