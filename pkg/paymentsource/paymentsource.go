package paymentsource

// PaymentSource is a named bank or wallet a budget can be split across.
// Sources are shared reference data: names are unique case-insensitively
// across all users, so "HDFC" entered by one user and "hdfc" by another
// resolve to the same row.
type PaymentSource struct {
	ID       int
	Name     string
	ImageUrl string
}
