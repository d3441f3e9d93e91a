package budget

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hisabi/hisabi/internal/event_bus"
	"github.com/hisabi/hisabi/internal/money"
	"github.com/hisabi/hisabi/internal/utils"
	"github.com/hisabi/hisabi/pkg/period"
	"github.com/hisabi/hisabi/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	// Get is the exact-period lookup, without carry-forward.
	Get(ctx context.Context, categoryId int, p period.Period) (Budget, error)
	// GetEffective applies the carry-forward policy: an exact-period hit is
	// returned as-is, otherwise the most recent earlier budget for the same
	// category stands in. ErrBudgetNotFound means no budget was ever set and
	// callers should treat the effective budget as zero.
	GetEffective(ctx context.Context, categoryId int, p period.Period) (Effective, error)
	// GetEffectiveBulk is the batched form of GetEffective for rendering an
	// overview without one round-trip per category. Categories with no
	// budget at all are absent from the result map.
	GetEffectiveBulk(ctx context.Context, categoryIds []int, p period.Period) (map[int]Effective, error)
	// Upsert sets the budget amount for the category and the month of `at`
	// (current month when at is nil). Calling it twice with the same
	// arguments leaves exactly one row with that amount, never two.
	Upsert(ctx context.Context, categoryId int, amount string, at *time.Time) (Budget, error)
}

type ServiceImpl struct {
	repo  Repository
	bus   *event_bus.EventBus
	clock utils.Clock
}

func NewService(repo Repository, bus *event_bus.EventBus, clock utils.Clock) *ServiceImpl {
	return &ServiceImpl{repo: repo, bus: bus, clock: clock}
}

func (s *ServiceImpl) Get(ctx context.Context, categoryId int, p period.Period) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}
	return s.repo.Find(ctx, userId, categoryId, p)
}

func (s *ServiceImpl) GetEffective(ctx context.Context, categoryId int, p period.Period) (Effective, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Effective{}, fmt.Errorf("failed to get current user: %w", err)
	}
	latest, err := s.repo.FindLatestUpTo(ctx, userId, categoryId, p)
	if err != nil {
		return Effective{}, err
	}
	return Effective{
		Budget:         latest,
		SourcePeriod:   latest.Period,
		CarriedForward: !latest.Period.Equal(p),
	}, nil
}

func (s *ServiceImpl) GetEffectiveBulk(ctx context.Context, categoryIds []int, p period.Period) (map[int]Effective, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}
	if len(categoryIds) == 0 {
		return map[int]Effective{}, nil
	}
	budgets, err := s.repo.FindLatestUpToBulk(ctx, userId, categoryIds, p)
	if err != nil {
		return nil, err
	}
	effective := make(map[int]Effective, len(budgets))
	for _, b := range budgets {
		effective[b.CategoryID] = Effective{
			Budget:         b,
			SourcePeriod:   b.Period,
			CarriedForward: !b.Period.Equal(p),
		}
	}
	return effective, nil
}

func (s *ServiceImpl) Upsert(ctx context.Context, categoryId int, amount string, at *time.Time) (Budget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return Budget{}, fmt.Errorf("failed to get current user: %w", err)
	}

	// Validation happens before any write is attempted.
	amountPaise, err := money.ParsePaise(amount)
	if err != nil {
		return Budget{}, fmt.Errorf("invalid budget amount %q: %w", amount, err)
	}

	p := period.NormalizeOrNow(at, s.clock)

	// Select-then-write keeps the common existing-row case free of conflict
	// churn; the unique index (and the insert's DO UPDATE arm) handles the
	// race when two requests create the same period at once.
	result, err := s.repo.Find(ctx, userId, categoryId, p)
	if err == nil {
		updated, err := s.repo.UpdateAmount(ctx, userId, result.ID, amountPaise)
		if err != nil {
			return Budget{}, err
		}
		if !updated {
			log.Warnf("budget %d for user %d disappeared during upsert, re-inserting", result.ID, userId)
			result, err = s.repo.Insert(ctx, userId, categoryId, p, amountPaise)
			if err != nil {
				return Budget{}, err
			}
		}
		result.AmountPaise = amountPaise
	} else if errors.Is(err, ErrBudgetNotFound) {
		result, err = s.repo.Insert(ctx, userId, categoryId, p, amountPaise)
		if err != nil {
			return Budget{}, err
		}
	} else {
		return Budget{}, err
	}

	event := event_bus.NewEvent(ctx, event_bus.EventBudgetUpserted, event_bus.BudgetUpserted{
		BudgetID:    result.ID,
		UserID:      userId,
		CategoryID:  categoryId,
		Period:      p.String(),
		AmountPaise: amountPaise,
	})
	if err := s.bus.Publish(event); err != nil {
		log.Warnf("failed to publish budget upserted event: %v", err)
	}

	return result, nil
}
