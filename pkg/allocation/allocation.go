package allocation

import (
	"errors"
	"fmt"
)

// Allocation attributes part of a budget to one payment source. A budget may
// allocate to a given source at most once; reconciliation upserts, it never
// duplicates.
type Allocation struct {
	ID          int
	UserID      int
	BudgetID    int
	SourceID    int
	SourceName  string
	AmountPaise int64
}

// Split is one entry of a requested payment-source breakdown. Either
// SourceID or BankName identifies the source; a bank name that the registry
// has never seen creates a new source on the fly.
type Split struct {
	SourceID int
	BankName string
	Amount   string
}

// Mode selects what happens to existing allocations absent from the input.
type Mode string

const (
	// ModeAdditive adds and updates the supplied splits only; allocations
	// not mentioned are left untouched.
	ModeAdditive Mode = "additive"
	// ModeSync makes the input set authoritative: allocations whose source
	// is absent from the input are deleted. An empty input clears the
	// budget's payment-source breakdown entirely.
	ModeSync Mode = "sync"
)

var ErrBudgetNotFound = errors.New("budget not found")

// ParseMode maps a request-level mode string to a Mode, defaulting to sync.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAdditive:
		return ModeAdditive, nil
	case ModeSync, "":
		return ModeSync, nil
	default:
		return "", fmt.Errorf("unknown allocation mode %q", s)
	}
}
