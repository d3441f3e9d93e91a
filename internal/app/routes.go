package app

import (
	"github.com/gorilla/mux"
	"github.com/hisabi/hisabi/internal/config"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies, cfg config.Application) {

	// Budget ledger
	r.HandleFunc("/api/budget", deps.BudgetHandler.GetBudget).Queries("categoryId", "{categoryId}").Methods("GET")
	r.HandleFunc("/api/budget", deps.BudgetHandler.UpsertBudget).Methods("PUT")
	r.HandleFunc("/api/budget/overview", deps.BudgetHandler.GetOverview).Methods("GET")
	r.HandleFunc("/api/budget/{budgetId}/allocations", deps.BudgetHandler.GetAllocations).Methods("GET")

	// Payment sources
	r.HandleFunc("/api/paymentsource", deps.PaymentSourceHandler.List).Methods("GET")

	// Notifications
	r.HandleFunc("/api/notification", deps.NotificationHandler.List).Methods("GET")
}
