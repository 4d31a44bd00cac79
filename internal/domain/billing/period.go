package billing

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Period is one calendar billing month
type Period struct {
	Year  int
	Month time.Month
}

// PeriodOf returns the period a point in time falls in
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// monthNames maps lowercase month names and common abbreviations
var monthNames = map[string]time.Month{
	"january": time.January, "jan": time.January,
	"february": time.February, "feb": time.February,
	"march": time.March, "mar": time.March,
	"april": time.April, "apr": time.April,
	"may":  time.May,
	"june": time.June, "jun": time.June,
	"july": time.July, "jul": time.July,
	"august": time.August, "aug": time.August,
	"september": time.September, "sep": time.September, "sept": time.September,
	"october": time.October, "oct": time.October,
	"november": time.November, "nov": time.November,
	"december": time.December, "dec": time.December,
}

// ParsePeriod parses a declared billing-period label. It accepts the
// "2006-01" form and a month name with optional year ("September",
// "September 2026"). A month name without a year resolves against the
// reference time's year. Returns false when the label is unparseable;
// callers decide the conservative fallback.
func ParsePeriod(label string, ref time.Time) (Period, bool) {
	label = strings.TrimSpace(label)
	if label == "" {
		return Period{}, false
	}

	if t, err := time.Parse("2006-01", label); err == nil {
		return PeriodOf(t), true
	}

	fields := strings.Fields(strings.ToLower(label))
	switch len(fields) {
	case 1:
		if m, ok := monthNames[fields[0]]; ok {
			return Period{Year: ref.Year(), Month: m}, true
		}
	case 2:
		m, ok := monthNames[fields[0]]
		if !ok {
			return Period{}, false
		}
		year, err := strconv.Atoi(fields[1])
		if err != nil || year < 1900 || year > 9999 {
			return Period{}, false
		}
		return Period{Year: year, Month: m}, true
	}

	return Period{}, false
}

// String returns the canonical "2006-01" label
func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// IsZero returns true for the zero period
func (p Period) IsZero() bool {
	return p.Year == 0
}

// Start returns the first instant of the period in UTC
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

// Days returns the number of days in the period's month
func (p Period) Days() int {
	return p.Start().AddDate(0, 1, -1).Day()
}

// Next returns the following period
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Compare returns -1, 0 or 1 as p is before, equal to or after other
func (p Period) Compare(other Period) int {
	switch {
	case p.Year != other.Year:
		if p.Year < other.Year {
			return -1
		}
		return 1
	case p.Month != other.Month:
		if p.Month < other.Month {
			return -1
		}
		return 1
	}
	return 0
}

// Before returns true if p is strictly before other
func (p Period) Before(other Period) bool {
	return p.Compare(other) < 0
}

// After returns true if p is strictly after other
func (p Period) After(other Period) bool {
	return p.Compare(other) > 0
}

// Equal returns true if both periods are the same month
func (p Period) Equal(other Period) bool {
	return p.Compare(other) == 0
}
