package allocation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/hisabi/hisabi/internal/event_bus"
	"github.com/hisabi/hisabi/internal/money"
	"github.com/hisabi/hisabi/pkg/paymentsource"
	"github.com/hisabi/hisabi/pkg/user"
	log "github.com/sirupsen/logrus"
)

// BudgetFinder is the slice of the budget ledger the reconciler needs: it
// only ever checks that the target budget exists and belongs to the caller.
type BudgetFinder interface {
	Exists(ctx context.Context, userId int, budgetId int) (bool, error)
}

type Reconciler interface {
	// Reconcile applies a payment-source breakdown to a budget and returns
	// the full allocation set attached to it afterwards.
	//
	// The split amounts are applied as given; whether they sum to the
	// budget's amount is the caller's concern, since the same call path
	// carries partial breakdowns. Budget.amount is never touched here.
	//
	// The per-split writes are not wrapped in one transaction: a failure
	// partway through leaves the already-applied splits in place and the
	// call reports the error. Re-running the same call converges, every
	// step is an idempotent upsert.
	Reconcile(ctx context.Context, budgetId int, splits []Split, mode Mode) ([]Allocation, error)
	ListForBudget(ctx context.Context, budgetId int) ([]Allocation, error)
}

type ReconcilerImpl struct {
	repo    Repository
	budgets BudgetFinder
	sources paymentsource.Service
	bus     *event_bus.EventBus
}

func NewReconciler(repo Repository, budgets BudgetFinder, sources paymentsource.Service, bus *event_bus.EventBus) *ReconcilerImpl {
	return &ReconcilerImpl{repo: repo, budgets: budgets, sources: sources, bus: bus}
}

func (s *ReconcilerImpl) Reconcile(ctx context.Context, budgetId int, splits []Split, mode Mode) ([]Allocation, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	exists, err := s.budgets.Exists(ctx, userId, budgetId)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrBudgetNotFound
	}

	resolved, err := s.resolveSplits(ctx, splits)
	if err != nil {
		return nil, err
	}

	keepSourceIds := make([]int, 0, len(resolved))
	for _, split := range resolved {
		if _, err := s.repo.Upsert(ctx, userId, budgetId, split.sourceId, split.amountPaise); err != nil {
			// No rollback of the splits already applied; the caller
			// re-runs to converge.
			return nil, fmt.Errorf("allocation splits partially applied: %w", err)
		}
		keepSourceIds = append(keepSourceIds, split.sourceId)
	}

	if mode == ModeSync {
		deleted, err := s.repo.DeleteMissing(ctx, userId, budgetId, keepSourceIds)
		if err != nil {
			return nil, fmt.Errorf("allocation splits partially applied: %w", err)
		}
		if deleted > 0 {
			log.Debugf("removed %d stale allocations from budget %d", deleted, budgetId)
		}
	}

	event := event_bus.NewEvent(ctx, event_bus.EventAllocationsReconciled, event_bus.AllocationsReconciled{
		UserID:    userId,
		BudgetID:  budgetId,
		SourceIDs: keepSourceIds,
	})
	if err := s.bus.Publish(event); err != nil {
		log.Warnf("failed to publish allocations reconciled event: %v", err)
	}

	return s.repo.ListForBudget(ctx, userId, budgetId)
}

func (s *ReconcilerImpl) ListForBudget(ctx context.Context, budgetId int) ([]Allocation, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.ListForBudget(ctx, userId, budgetId)
}

type resolvedSplit struct {
	sourceId    int
	amountPaise int64
}

// resolveSplits normalizes the raw input: entries with no usable identity or
// a non-positive amount are dropped, bank names are resolved (and created)
// through the registry. A source appearing twice keeps the last amount.
func (s *ReconcilerImpl) resolveSplits(ctx context.Context, splits []Split) ([]resolvedSplit, error) {
	resolved := make([]resolvedSplit, 0, len(splits))
	seen := make(map[int]int, len(splits))
	for _, split := range splits {
		name := strings.TrimSpace(split.BankName)
		if split.SourceID == 0 && name == "" {
			log.Warnf("dropping allocation split with no source identity")
			continue
		}
		amountPaise, err := money.ParsePaise(split.Amount)
		if err != nil || amountPaise <= 0 {
			log.Warnf("dropping allocation split for %q with non-positive amount %q", name, split.Amount)
			continue
		}

		sourceId := split.SourceID
		if sourceId == 0 {
			source, err := s.sources.Resolve(ctx, name)
			if err != nil {
				if errors.Is(err, paymentsource.ErrEmptyName) {
					continue
				}
				return nil, fmt.Errorf("failed to resolve payment source %q: %w", name, err)
			}
			sourceId = source.ID
		}

		if idx, dup := seen[sourceId]; dup {
			resolved[idx].amountPaise = amountPaise
			continue
		}
		seen[sourceId] = len(resolved)
		resolved = append(resolved, resolvedSplit{sourceId: sourceId, amountPaise: amountPaise})
	}
	return resolved, nil
}
