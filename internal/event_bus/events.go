package event_bus

const (
	// EventBudgetUpserted is published after a budget amount is created or
	// updated for a (user, category, period) key.
	EventBudgetUpserted EventType = "budget.upserted"
	// EventAllocationsReconciled is published after a payment-source split
	// set is applied to a budget.
	EventAllocationsReconciled EventType = "allocations.reconciled"
)

type BudgetUpserted struct {
	BudgetID    int
	UserID      int
	CategoryID  int
	Period      string
	AmountPaise int64
}

type AllocationsReconciled struct {
	UserID    int
	BudgetID  int
	SourceIDs []int
}
