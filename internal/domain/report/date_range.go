package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/retailpos/backend/internal/domain/shared"
)

// DateLayout is the accepted date format for report ranges
const DateLayout = "2006-01-02"

var (
	ErrInvalidDate      = shared.NewDomainError("INVALID_DATE", "Invalid date format, expected YYYY-MM-DD")
	ErrInvalidDateRange = shared.NewDomainError("INVALID_DATE_RANGE", "Start date must not be after end date")
)

// DateRange is an inclusive range of calendar days
type DateRange struct {
	StartDate time.Time
	EndDate   time.Time
}

// ParseDateRange parses two YYYY-MM-DD dates in loc
func ParseDateRange(start, end string, loc *time.Location) (DateRange, error) {
	s, err := parseDate(start, loc)
	if err != nil {
		return DateRange{}, err
	}
	e, err := parseDate(end, loc)
	if err != nil {
		return DateRange{}, err
	}
	if s.After(e) {
		return DateRange{}, ErrInvalidDateRange
	}
	return DateRange{StartDate: s, EndDate: e}, nil
}

// From is the first instant of the range
func (r DateRange) From() time.Time {
	return r.StartDate
}

// To is the first instant after the range
func (r DateRange) To() time.Time {
	return r.EndDate.AddDate(0, 0, 1)
}

// Label renders the range for file names and titles
func (r DateRange) Label() string {
	return fmt.Sprintf("%s_%s", r.StartDate.Format(DateLayout), r.EndDate.Format(DateLayout))
}

// StartOfDay truncates t to midnight in its location
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func parseDate(raw string, loc *time.Location) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, shared.NewDomainError(ErrInvalidDate.Code, "Start and end dates are required")
	}
	t, err := time.ParseInLocation(DateLayout, raw, loc)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}
