package budget

import (
	"context"
	"sort"

	"github.com/hisabi/hisabi/pkg/period"
)

type RepositoryStub struct {
	nextId  int
	budgets map[int]Budget
}

func NewStubRepository() *RepositoryStub {
	return &RepositoryStub{budgets: map[int]Budget{}}
}

func (s *RepositoryStub) Find(ctx context.Context, userId int, categoryId int, p period.Period) (Budget, error) {
	for _, b := range s.budgets {
		if b.UserID == userId && b.CategoryID == categoryId && b.Period.Equal(p) {
			return b, nil
		}
	}
	return Budget{}, ErrBudgetNotFound
}

func (s *RepositoryStub) FindByID(ctx context.Context, userId int, budgetId int) (Budget, error) {
	if b, ok := s.budgets[budgetId]; ok && b.UserID == userId {
		return b, nil
	}
	return Budget{}, ErrBudgetNotFound
}

func (s *RepositoryStub) FindLatestUpTo(ctx context.Context, userId int, categoryId int, p period.Period) (Budget, error) {
	var candidates []Budget
	for _, b := range s.budgets {
		if b.UserID == userId && b.CategoryID == categoryId && !p.Before(b.Period) {
			candidates = append(candidates, b)
		}
	}
	if len(candidates) == 0 {
		return Budget{}, ErrBudgetNotFound
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[j].Period.Before(candidates[i].Period)
	})
	return candidates[0], nil
}

func (s *RepositoryStub) FindLatestUpToBulk(ctx context.Context, userId int, categoryIds []int, p period.Period) ([]Budget, error) {
	var out []Budget
	for _, categoryId := range categoryIds {
		b, err := s.FindLatestUpTo(ctx, userId, categoryId, p)
		if err == nil {
			out = append(out, b)
		}
	}
	return out, nil
}

func (s *RepositoryStub) Insert(ctx context.Context, userId int, categoryId int, p period.Period, amountPaise int64) (Budget, error) {
	if existing, err := s.Find(ctx, userId, categoryId, p); err == nil {
		// mirrors the SQL ON CONFLICT DO UPDATE arm
		existing.AmountPaise = amountPaise
		s.budgets[existing.ID] = existing
		return existing, nil
	}
	s.nextId++
	b := Budget{ID: s.nextId, UserID: userId, CategoryID: categoryId, Period: p, AmountPaise: amountPaise}
	s.budgets[b.ID] = b
	return b, nil
}

func (s *RepositoryStub) UpdateAmount(ctx context.Context, userId int, budgetId int, amountPaise int64) (bool, error) {
	b, ok := s.budgets[budgetId]
	if !ok || b.UserID != userId {
		return false, nil
	}
	b.AmountPaise = amountPaise
	s.budgets[budgetId] = b
	return true, nil
}

func (s *RepositoryStub) Exists(ctx context.Context, userId int, budgetId int) (bool, error) {
	b, ok := s.budgets[budgetId]
	return ok && b.UserID == userId, nil
}

// Count returns the number of stored rows; tests use it to assert the
// uniqueness invariant after repeated upserts.
func (s *RepositoryStub) Count() int {
	return len(s.budgets)
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.budgets = map[int]Budget{}
}
