package expense

import (
	"context"
	"time"
)

// ReaderStub is an in-memory Reader used by service tests. It applies the
// same half-open [from, to) windowing as the SQL implementation.
type ReaderStub struct {
	Expenses []Expense
	// FailAggregates makes the aggregate methods return this error, to
	// exercise fallback paths.
	FailAggregates error
}

func NewStubReader() *ReaderStub {
	return &ReaderStub{}
}

func (s *ReaderStub) SumByKinds(ctx context.Context, userId int, categoryId int, kinds []Kind, from time.Time, to time.Time) (int64, error) {
	if s.FailAggregates != nil {
		return 0, s.FailAggregates
	}
	var sum int64
	for _, e := range s.match(userId, categoryId, kinds, from, to) {
		sum += e.AmountPaise
	}
	return sum, nil
}

func (s *ReaderStub) CountByKinds(ctx context.Context, userId int, categoryId int, kinds []Kind, from time.Time, to time.Time) (int, error) {
	if s.FailAggregates != nil {
		return 0, s.FailAggregates
	}
	return len(s.match(userId, categoryId, kinds, from, to)), nil
}

func (s *ReaderStub) ListByKind(ctx context.Context, userId int, categoryId int, kind Kind, from time.Time, to time.Time) ([]Expense, error) {
	if s.FailAggregates != nil {
		return nil, s.FailAggregates
	}
	return s.match(userId, categoryId, []Kind{kind}, from, to), nil
}

func (s *ReaderStub) ListForUser(ctx context.Context, userId int, from time.Time, to time.Time) ([]Expense, error) {
	var out []Expense
	for _, e := range s.Expenses {
		if e.UserID == userId && inWindow(e.SpentAt, from, to) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *ReaderStub) match(userId, categoryId int, kinds []Kind, from, to time.Time) []Expense {
	var out []Expense
	for _, e := range s.Expenses {
		if e.UserID != userId || e.CategoryID != categoryId || !inWindow(e.SpentAt, from, to) {
			continue
		}
		for _, k := range kinds {
			if e.Kind == k {
				out = append(out, e)
				break
			}
		}
	}
	return out
}

func (s *ReaderStub) Cleanup() {
	s.Expenses = nil
	s.FailAggregates = nil
}

func inWindow(t, from, to time.Time) bool {
	return !t.Before(from) && t.Before(to)
}
