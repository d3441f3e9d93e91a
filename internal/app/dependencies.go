package app

import (
	"github.com/hisabi/hisabi/internal/config"
	"github.com/hisabi/hisabi/internal/event_bus"
	"github.com/hisabi/hisabi/internal/utils"
	"github.com/hisabi/hisabi/pkg/allocation"
	"github.com/hisabi/hisabi/pkg/budget"
	"github.com/hisabi/hisabi/pkg/category"
	"github.com/hisabi/hisabi/pkg/expense"
	"github.com/hisabi/hisabi/pkg/notification"
	"github.com/hisabi/hisabi/pkg/paymentsource"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus   *event_bus.EventBus
	Clock utils.Clock

	PaymentSourceRepo    paymentsource.Repository
	PaymentSourceService paymentsource.Service
	PaymentSourceHandler *paymentsource.Handler

	BudgetRepo    budget.Repository
	BudgetService budget.Service
	BudgetHandler *budget.Handler

	AllocationRepo allocation.Repository
	Reconciler     allocation.Reconciler

	CategoryRepo  category.Repository
	ExpenseReader expense.Reader

	NotificationService notification.Service
	NotificationHandler *notification.Handler
}

// BuildDependencies initializes and wires all application services and handlers.
func BuildDependencies(db *pgxpool.Pool, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = event_bus.NewEventBus()
	deps.Clock = &utils.SystemClock{}

	deps.PaymentSourceRepo = paymentsource.NewRepository(db)
	deps.PaymentSourceService = paymentsource.NewService(deps.PaymentSourceRepo)
	deps.PaymentSourceHandler = paymentsource.NewHandler(deps.PaymentSourceService)

	budgetRepo := budget.NewRepository(db)
	deps.BudgetRepo = budgetRepo
	deps.BudgetService = budget.NewService(deps.BudgetRepo, deps.Bus, deps.Clock)

	deps.AllocationRepo = allocation.NewRepository(db)
	deps.Reconciler = allocation.NewReconciler(deps.AllocationRepo, budgetRepo, deps.PaymentSourceService, deps.Bus)

	deps.BudgetHandler = budget.NewHandler(deps.BudgetService, deps.Reconciler, deps.Clock)

	deps.CategoryRepo = category.NewRepository(db)
	deps.ExpenseReader = expense.NewReader(db)

	deps.NotificationService = notification.NewService(
		deps.CategoryRepo,
		deps.BudgetService,
		deps.ExpenseReader,
		cfg.Notifications,
		deps.Clock,
		deps.Bus,
	)
	deps.NotificationHandler = notification.NewHandler(deps.NotificationService)

	return deps
}
