package notification

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hisabi/hisabi/internal/config"
	"github.com/hisabi/hisabi/internal/event_bus"
	"github.com/hisabi/hisabi/internal/utils"
	"github.com/hisabi/hisabi/pkg/budget"
	"github.com/hisabi/hisabi/pkg/category"
	"github.com/hisabi/hisabi/pkg/expense"
	"github.com/hisabi/hisabi/pkg/period"
	"github.com/hisabi/hisabi/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	// ForUser derives the current alert set for the calling user across all
	// of their categories, over the current month.
	ForUser(ctx context.Context) ([]Notification, error)
}

type ServiceImpl struct {
	categories category.Repository
	budgets    budget.Service
	expenses   expense.Reader
	cfg        config.Notifications
	clock      utils.Clock

	mu    sync.RWMutex
	cache map[int]cacheEntry
}

type cacheEntry struct {
	notifications []Notification
	expiresAt     time.Time
}

func NewService(
	categories category.Repository,
	budgets budget.Service,
	expenses expense.Reader,
	cfg config.Notifications,
	clock utils.Clock,
	bus *event_bus.EventBus,
) *ServiceImpl {
	s := &ServiceImpl{
		categories: categories,
		budgets:    budgets,
		expenses:   expenses,
		cfg:        cfg,
		clock:      clock,
		cache:      make(map[int]cacheEntry),
	}
	// Budget writes change what "overspent" means immediately; drop the
	// cached derivation for that user instead of waiting out the TTL.
	event_bus.SubscribeTyped[event_bus.BudgetUpserted](bus, event_bus.EventBudgetUpserted,
		func(e event_bus.EventT[event_bus.BudgetUpserted]) error {
			s.invalidate(e.Data.UserID)
			return nil
		})
	return s
}

func (s *ServiceImpl) ForUser(ctx context.Context) ([]Notification, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current user: %w", err)
	}

	now := s.clock.Now()
	if cached, found := s.cached(userId, now); found {
		return cached, nil
	}

	categories, err := s.categories.ListForUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	notifications, err := s.deriveAggregated(ctx, categories, now)
	if err != nil {
		log.Warnf("aggregated notification derivation failed, recomputing locally: %v", err)
		notifications, err = s.deriveFromLists(ctx, userId, categories, now)
		if err != nil {
			return nil, err
		}
	}

	s.store(userId, notifications, now)
	return notifications, nil
}

// deriveAggregated is the server path: one pass of pre-filtered aggregate
// queries per category.
func (s *ServiceImpl) deriveAggregated(ctx context.Context, categories []category.Category, now time.Time) ([]Notification, error) {
	periodStart, periodEnd := periodWindow(now)
	frequentFrom := now.AddDate(0, 0, -s.cfg.FrequentWindowDays)
	topupFrom := now.AddDate(0, 0, -s.cfg.TopupLookbackDays)
	p := period.Normalize(now)

	var out []Notification
	for _, cat := range categories {
		activity := CategoryActivity{Category: cat}

		eff, err := s.budgets.GetEffective(ctx, cat.ID, p)
		if err == nil {
			activity.Budget = &eff
		} else if !errors.Is(err, budget.ErrBudgetNotFound) {
			return nil, err
		}

		activity.SpentPaise, err = s.expenses.SumByKinds(ctx, cat.UserID, cat.ID, expense.SpendingKinds, periodStart, periodEnd)
		if err != nil {
			return nil, err
		}
		activity.RecentCount, err = s.expenses.CountByKinds(ctx, cat.UserID, cat.ID, expense.SpendingKinds, frequentFrom, now)
		if err != nil {
			return nil, err
		}
		activity.Topups, err = s.expenses.ListByKind(ctx, cat.UserID, cat.ID, expense.KindTopup, topupFrom, now)
		if err != nil {
			return nil, err
		}

		out = append(out, deriveForCategory(activity, now, s.cfg)...)
	}
	return out, nil
}

// deriveFromLists is the fallback path: fetch plain lists once and reuse the
// snapshot derivation, which applies the same windows and thresholds.
func (s *ServiceImpl) deriveFromLists(ctx context.Context, userId int, categories []category.Category, now time.Time) ([]Notification, error) {
	periodStart, _ := periodWindow(now)
	from := now.AddDate(0, 0, -s.cfg.FrequentWindowDays)
	if periodStart.Before(from) {
		from = periodStart
	}

	expenses, err := s.expenses.ListForUser(ctx, userId, from, now)
	if err != nil {
		return nil, err
	}

	categoryIds := make([]int, 0, len(categories))
	for _, cat := range categories {
		categoryIds = append(categoryIds, cat.ID)
	}
	budgets, err := s.budgets.GetEffectiveBulk(ctx, categoryIds, period.Normalize(now))
	if err != nil {
		return nil, err
	}

	return DeriveFromSnapshot(Snapshot{
		Categories: categories,
		Budgets:    budgets,
		Expenses:   expenses,
	}, now, s.cfg), nil
}

func (s *ServiceImpl) cached(userId int, now time.Time) ([]Notification, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, found := s.cache[userId]
	if !found || now.After(entry.expiresAt) {
		return nil, false
	}
	return entry.notifications, true
}

func (s *ServiceImpl) store(userId int, notifications []Notification, now time.Time) {
	if s.cfg.CacheTTLSeconds <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cache[userId] = cacheEntry{
		notifications: notifications,
		expiresAt:     now.Add(time.Duration(s.cfg.CacheTTLSeconds) * time.Second),
	}
}

func (s *ServiceImpl) invalidate(userId int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.cache, userId)
}
