package period

import (
	"fmt"
	"time"

	"github.com/hisabi/hisabi/internal/utils"
)

// Period identifies a calendar month. It is always handled as the first day
// of the month; two dates in the same calendar month normalize to the same
// Period regardless of time-of-day or timezone serialization quirks.
type Period struct {
	Year  int
	Month time.Month
}

// Normalize maps a date to its calendar-month period using the local
// year/month components of t, not a UTC-shifted timestamp. This matters for
// timestamps near midnight at UTC month boundaries.
func Normalize(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// NormalizeOrNow resolves an optional explicit date, falling back to the
// injected clock for the current month.
func NormalizeOrNow(t *time.Time, clock utils.Clock) Period {
	if t != nil {
		return Normalize(*t)
	}
	return Normalize(clock.Now())
}

// Next returns the following calendar month, rolling December over to
// January of the next year.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Start returns the first day of the month at midnight UTC. Stored periods
// are date-only values, so UTC keeps storage round-trips stable.
func (p Period) Start() time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (p Period) Before(o Period) bool {
	return p.Year < o.Year || (p.Year == o.Year && p.Month < o.Month)
}

func (p Period) Equal(o Period) bool {
	return p.Year == o.Year && p.Month == o.Month
}

func (p Period) IsZero() bool {
	return p.Year == 0 && p.Month == 0
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

// Parse accepts either "2006-01" or "2006-01-02" and normalizes to the
// containing month.
func Parse(s string) (Period, error) {
	for _, layout := range []string{"2006-01-02", "2006-01"} {
		if t, err := time.Parse(layout, s); err == nil {
			return Normalize(t), nil
		}
	}
	return Period{}, fmt.Errorf("invalid period %q: expected YYYY-MM or YYYY-MM-DD", s)
}
