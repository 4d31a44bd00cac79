package billing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParsePeriod(t *testing.T) {
	ref := time.Date(2026, time.October, 3, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		label string
		want  Period
		ok    bool
	}{
		{"canonical form", "2026-09", Period{2026, time.September}, true},
		{"month name uses reference year", "September", Period{2026, time.September}, true},
		{"month abbreviation", "Sept", Period{2026, time.September}, true},
		{"month name with year", "september 2025", Period{2025, time.September}, true},
		{"mixed case with padding", "  December 2026 ", Period{2026, time.December}, true},
		{"empty label", "", Period{}, false},
		{"garbage", "next month sometime", Period{}, false},
		{"unknown month with year", "smarch 2026", Period{}, false},
		{"year out of range", "september 12", Period{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePeriod(tt.label, ref)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestPeriod_Next(t *testing.T) {
	assert.Equal(t, Period{2026, time.October}, Period{2026, time.September}.Next())
	assert.Equal(t, Period{2027, time.January}, Period{2026, time.December}.Next())
}

func TestPeriod_Days(t *testing.T) {
	assert.Equal(t, 30, Period{2026, time.September}.Days())
	assert.Equal(t, 31, Period{2026, time.October}.Days())
	assert.Equal(t, 28, Period{2026, time.February}.Days())
	assert.Equal(t, 29, Period{2028, time.February}.Days())
}

func TestPeriod_Compare(t *testing.T) {
	sep := Period{2026, time.September}
	oct := Period{2026, time.October}
	janNext := Period{2027, time.January}

	assert.True(t, sep.Before(oct))
	assert.True(t, oct.After(sep))
	assert.True(t, sep.Before(janNext))
	assert.True(t, sep.Equal(Period{2026, time.September}))
	assert.Equal(t, 0, sep.Compare(sep))
	assert.Equal(t, -1, sep.Compare(oct))
	assert.Equal(t, 1, janNext.Compare(oct))
}

func TestPeriod_String(t *testing.T) {
	assert.Equal(t, "2026-09", Period{2026, time.September}.String())
	assert.Equal(t, "2026-12", Period{2026, time.December}.String())
	assert.True(t, Period{}.IsZero())
	assert.False(t, Period{2026, time.September}.IsZero())
}
