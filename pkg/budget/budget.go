package budget

import (
	"github.com/hisabi/hisabi/pkg/period"
)

// Budget is the amount a user plans to spend on one category in one calendar
// month. At most one row exists per (user, category, period); the row is
// mutated in place by later upserts for the same period and never deleted.
type Budget struct {
	ID          int
	UserID      int
	CategoryID  int
	Period      period.Period
	AmountPaise int64
}

// Effective is the result of a carry-forward lookup: either the exact-period
// budget, or the most recent earlier one standing in for it. A budget set in
// January keeps applying every later month until it is explicitly changed.
type Effective struct {
	Budget Budget
	// SourcePeriod is the period of the row the amount actually came from.
	SourcePeriod   period.Period
	CarriedForward bool
}
