package allocation

import (
	"context"
	"sort"
	"strings"
)

// RepositoryStub keeps allocations in memory. Tests that need source names
// in the listing wire in a NameLookup (usually the payment source stub).
type RepositoryStub struct {
	nextId      int
	allocations map[int]Allocation
	NameLookup  func(sourceId int) string
}

func NewStubRepository() *RepositoryStub {
	return &RepositoryStub{allocations: map[int]Allocation{}}
}

func (s *RepositoryStub) Upsert(ctx context.Context, userId int, budgetId int, sourceId int, amountPaise int64) (Allocation, error) {
	for id, a := range s.allocations {
		if a.UserID == userId && a.BudgetID == budgetId && a.SourceID == sourceId {
			a.AmountPaise = amountPaise
			s.allocations[id] = a
			return a, nil
		}
	}
	s.nextId++
	a := Allocation{ID: s.nextId, UserID: userId, BudgetID: budgetId, SourceID: sourceId, AmountPaise: amountPaise}
	s.allocations[a.ID] = a
	return a, nil
}

func (s *RepositoryStub) DeleteMissing(ctx context.Context, userId int, budgetId int, keepSourceIds []int) (int64, error) {
	keep := make(map[int]bool, len(keepSourceIds))
	for _, id := range keepSourceIds {
		keep[id] = true
	}
	var deleted int64
	for id, a := range s.allocations {
		if a.UserID == userId && a.BudgetID == budgetId && !keep[a.SourceID] {
			delete(s.allocations, id)
			deleted++
		}
	}
	return deleted, nil
}

func (s *RepositoryStub) ListForBudget(ctx context.Context, userId int, budgetId int) ([]Allocation, error) {
	var out []Allocation
	for _, a := range s.allocations {
		if a.UserID == userId && a.BudgetID == budgetId {
			if s.NameLookup != nil {
				a.SourceName = s.NameLookup(a.SourceID)
			}
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return strings.ToLower(out[i].SourceName) < strings.ToLower(out[j].SourceName)
	})
	return out, nil
}

func (s *RepositoryStub) Cleanup() {
	s.nextId = 0
	s.allocations = map[int]Allocation{}
}
