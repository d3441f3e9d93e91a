package expense

import "time"

// Kind classifies a ledger entry. Buying and labour entries consume a
// category's budget; a topup adds funds to it.
type Kind string

const (
	KindBuying Kind = "buying"
	KindLabour Kind = "labour"
	KindTopup  Kind = "topup"
)

// SpendingKinds are the kinds that count against a budget.
var SpendingKinds = []Kind{KindBuying, KindLabour}

type Expense struct {
	ID          int
	UserID      int
	CategoryID  int
	Kind        Kind
	AmountPaise int64
	Note        string
	SpentAt     time.Time
}
