package notification

import "time"

type Type string

const (
	TypeOverspend Type = "overspend"
	TypeFrequent  Type = "frequent"
	TypeTopup     Type = "topup"
)

type Severity string

const (
	SeverityDanger  Severity = "danger"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Notification is derived state, never persisted: it is recomputed from the
// budget ledger and expense history on read. The ID is deterministic over
// type and category slug (or expense id for top-ups), so repeated derivations
// over unchanged data yield identical identities and consumers can
// deduplicate. The derivation itself makes no ordering promise.
type Notification struct {
	ID           string
	Type         Type
	Title        string
	Message      string
	CategorySlug string
	Severity     Severity
	Date         time.Time
	// SourcePeriod and CarriedForward describe where the budget amount
	// behind an overspend alert came from, when it was carried forward
	// from an earlier month.
	SourcePeriod   string
	CarriedForward bool
}
