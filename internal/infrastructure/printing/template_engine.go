package printing

import (
	"bytes"
	"embed"
	"html/template"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

//go:embed templates/*.html
var templateFS embed.FS

// Names of the embedded document templates
const (
	TemplateReceipt     = "receipt.html"
	TemplateSalesReport = "sales_report.html"
)

// TemplateEngine renders the embedded document templates with business data
type TemplateEngine struct {
	templates *template.Template
	location  *time.Location
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithLocation prints dates and times in loc instead of UTC
func WithLocation(loc *time.Location) TemplateEngineOption {
	return func(e *TemplateEngine) {
		if loc != nil {
			e.location = loc
		}
	}
}

// NewTemplateEngine parses the embedded templates. It panics if they do not
// parse, which only happens with a broken build.
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{location: time.UTC}
	for _, opt := range opts {
		opt(e)
	}

	funcMap := template.FuncMap{
		"formatMoney":    formatMoney,
		"formatDate":     e.formatDate,
		"formatDateTime": e.formatDateTime,
		"formatInt":      formatInt,
		"title":          titleCase,
		"upper":          strings.ToUpper,
		"truncate":       truncate,
		"subtotal":       subtotal,
	}
	e.templates = template.Must(template.New("documents").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))
	return e
}

// Render executes the named template
func (e *TemplateEngine) Render(name string, data interface{}) (string, error) {
	tmpl := e.templates.Lookup(name)
	if tmpl == nil {
		return "", NewRenderError(ErrCodeTemplateNotFound, "template not found: "+name, nil)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", NewRenderError(ErrCodeRenderFailed, "failed to execute template "+name, err)
	}
	return buf.String(), nil
}

// formatMoney formats an amount with thousand separators and two decimals.
// Example: 1234.5 -> "$1,234.50"
func formatMoney(v interface{}) string {
	d := toDecimal(v)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}

	parts := strings.Split(d.StringFixed(2), ".")
	intPart := parts[0]

	var result strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			result.WriteRune(',')
		}
		result.WriteRune(c)
	}
	return sign + "$" + result.String() + "." + parts[1]
}

func (e *TemplateEngine) formatDate(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.In(e.location).Format("2006-01-02")
}

func (e *TemplateEngine) formatDateTime(v interface{}) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.In(e.location).Format("2006-01-02 15:04")
}

func formatInt(v interface{}) string {
	return toDecimal(v).Truncate(0).String()
}

func titleCase(s string) string {
	return cases.Title(language.Und, cases.NoLower).String(s)
}

func truncate(n int, s string) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}

// subtotal multiplies a unit price by a quantity
func subtotal(price interface{}, qty int) decimal.Decimal {
	return toDecimal(price).Mul(decimal.NewFromInt(int64(qty)))
}

func toDecimal(v interface{}) decimal.Decimal {
	switch val := v.(type) {
	case decimal.Decimal:
		return val
	case *decimal.Decimal:
		if val == nil {
			return decimal.Zero
		}
		return *val
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case float64:
		return decimal.NewFromFloat(val)
	case string:
		d, err := decimal.NewFromString(val)
		if err != nil {
			return decimal.Zero
		}
		return d
	default:
		return decimal.Zero
	}
}

func toTime(v interface{}) time.Time {
	switch val := v.(type) {
	case time.Time:
		return val
	case *time.Time:
		if val == nil {
			return time.Time{}
		}
		return *val
	default:
		return time.Time{}
	}
}

