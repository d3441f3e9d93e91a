package notification

import (
	"fmt"
	"strconv"
	"time"

	"github.com/hisabi/hisabi/internal/config"
	"github.com/hisabi/hisabi/internal/money"
	"github.com/hisabi/hisabi/pkg/budget"
	"github.com/hisabi/hisabi/pkg/category"
	"github.com/hisabi/hisabi/pkg/expense"
	"github.com/hisabi/hisabi/pkg/period"
)

// CategoryActivity is everything the derivation rules need to know about one
// category. Both computation paths reduce to this shape, so the rules below
// are the single implementation of the alert thresholds.
type CategoryActivity struct {
	Category category.Category
	// Budget is nil when the category has no budget row for any period up
	// to now. A category without a ceiling cannot be overspent.
	Budget *budget.Effective
	// SpentPaise is the buying+labour total inside the current period.
	SpentPaise int64
	// RecentCount is the number of buying+labour entries in the trailing
	// frequent-spending window.
	RecentCount int
	// Topups are the top-up entries inside the lookback window.
	Topups []expense.Expense
}

// Snapshot is the input of the local computation path: category, budget, and
// expense lists that a client already holds. DeriveFromSnapshot recomputes
// the same alerts the aggregated path produces, with identical windowing and
// thresholds.
type Snapshot struct {
	Categories []category.Category
	// Budgets maps category id to its effective (carry-forward aware)
	// budget; absent keys mean no budget was ever set.
	Budgets  map[int]budget.Effective
	Expenses []expense.Expense
}

func deriveForCategory(a CategoryActivity, now time.Time, cfg config.Notifications) []Notification {
	var out []Notification

	if a.Budget != nil && a.Budget.Budget.AmountPaise > 0 && a.SpentPaise > a.Budget.Budget.AmountPaise {
		budgetPaise := a.Budget.Budget.AmountPaise
		n := Notification{
			ID:           "overspend-" + a.Category.Slug,
			Type:         TypeOverspend,
			Title:        "Budget exceeded",
			Message: fmt.Sprintf("%s is %s over budget this month: spent %s of %s",
				a.Category.Name, money.Rupees(a.SpentPaise-budgetPaise), money.Rupees(a.SpentPaise), money.Rupees(budgetPaise)),
			CategorySlug:   a.Category.Slug,
			Severity:       SeverityDanger,
			Date:           now,
			CarriedForward: a.Budget.CarriedForward,
		}
		if a.Budget.CarriedForward {
			n.SourcePeriod = a.Budget.SourcePeriod.String()
		}
		out = append(out, n)
	}

	if a.RecentCount >= cfg.FrequentThreshold {
		out = append(out, Notification{
			ID:    "freq-" + a.Category.Slug,
			Type:  TypeFrequent,
			Title: "Frequent spending",
			Message: fmt.Sprintf("%d expenses in %s over the last %d days",
				a.RecentCount, a.Category.Name, cfg.FrequentWindowDays),
			CategorySlug: a.Category.Slug,
			Severity:     SeverityWarning,
			Date:         now,
		})
	}

	for _, t := range a.Topups {
		out = append(out, Notification{
			ID:           "topup-" + strconv.Itoa(t.ID),
			Type:         TypeTopup,
			Title:        "Budget topped up",
			Message:      fmt.Sprintf("%s topped up by %s", a.Category.Name, money.Rupees(t.AmountPaise)),
			CategorySlug: a.Category.Slug,
			Severity:     SeverityInfo,
			Date:         t.SpentAt,
		})
	}

	return out
}

// DeriveFromSnapshot is the client-local fallback path: it recomputes the
// alert set from already-fetched lists instead of aggregate queries.
func DeriveFromSnapshot(snap Snapshot, now time.Time, cfg config.Notifications) []Notification {
	periodStart, periodEnd := periodWindow(now)
	frequentFrom := now.AddDate(0, 0, -cfg.FrequentWindowDays)
	topupFrom := now.AddDate(0, 0, -cfg.TopupLookbackDays)

	var out []Notification
	for _, cat := range snap.Categories {
		activity := CategoryActivity{Category: cat}
		if eff, found := snap.Budgets[cat.ID]; found {
			e := eff
			activity.Budget = &e
		}
		for _, ex := range snap.Expenses {
			if ex.CategoryID != cat.ID {
				continue
			}
			switch ex.Kind {
			case expense.KindBuying, expense.KindLabour:
				if !ex.SpentAt.Before(periodStart) && ex.SpentAt.Before(periodEnd) {
					activity.SpentPaise += ex.AmountPaise
				}
				if !ex.SpentAt.Before(frequentFrom) && ex.SpentAt.Before(now) {
					activity.RecentCount++
				}
			case expense.KindTopup:
				if !ex.SpentAt.Before(topupFrom) && ex.SpentAt.Before(now) {
					activity.Topups = append(activity.Topups, ex)
				}
			}
		}
		out = append(out, deriveForCategory(activity, now, cfg)...)
	}
	return out
}

// periodWindow is the half-open [start, end) range of the month containing now.
func periodWindow(now time.Time) (time.Time, time.Time) {
	p := period.Normalize(now)
	return p.Start(), p.Next().Start()
}
