package category

// Category is reference data owned by the excluded category module; the
// ledger only ever reads it (names and slugs feed notification messages).
type Category struct {
	ID     int
	UserID int
	Name   string
	Slug   string
}
