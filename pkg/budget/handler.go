package budget

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/hisabi/hisabi/internal/money"
	"github.com/hisabi/hisabi/internal/utils"
	"github.com/hisabi/hisabi/pkg/allocation"
	"github.com/hisabi/hisabi/pkg/period"
	log "github.com/sirupsen/logrus"
)

type BudgetDTO struct {
	ID             int             `json:"id"`
	CategoryID     int             `json:"categoryId"`
	Period         string          `json:"period"`
	Amount         string          `json:"amount"`
	AmountPaise    int64           `json:"amountPaise"`
	CarriedForward bool            `json:"carriedForward"`
	SourcePeriod   string          `json:"sourcePeriod,omitempty"`
	Allocations    []AllocationDTO `json:"allocations,omitempty"`
}

type AllocationDTO struct {
	ID          int    `json:"id"`
	SourceID    int    `json:"sourceId"`
	SourceName  string `json:"sourceName"`
	Amount      string `json:"amount"`
	AmountPaise int64  `json:"amountPaise"`
}

type SplitDTO struct {
	SourceID int    `json:"sourceId,omitempty"`
	BankName string `json:"bankName,omitempty"`
	Amount   string `json:"amount"`
}

type UpsertBudgetDTO struct {
	CategoryID int    `json:"categoryId"`
	Amount     string `json:"amount"`
	Date       string `json:"date,omitempty"`
	// Splits is a pointer so that an omitted field (leave allocations
	// alone) is distinguishable from an explicit empty list (sync mode
	// clears them).
	Splits *[]SplitDTO `json:"splits,omitempty"`
	Mode   string      `json:"mode,omitempty"`
}

type Handler struct {
	service    Service
	reconciler allocation.Reconciler
	clock      utils.Clock
}

func NewHandler(service Service, reconciler allocation.Reconciler, clock utils.Clock) *Handler {
	return &Handler{service: service, reconciler: reconciler, clock: clock}
}

// GetBudget godoc
// @Summary Get the effective budget for a category
// @Description Get the budget for a category and month, applying carry-forward from earlier months when the requested month has none set
// @Tags Budget
// @Produce json
// @Param categoryId query int true "Category ID"
// @Param date query string false "Any date inside the wanted month (YYYY-MM-DD or YYYY-MM); defaults to now"
// @Success 200 {object} BudgetDTO
// @Failure 400 {string} string "Bad Request"
// @Failure 404 {string} string "No budget ever set for this category"
// @Router /api/budget [get]
// @Security XUserId
func (handler *Handler) GetBudget(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting effective budget")
	w.Header().Set("Content-Type", "application/json")
	categoryId, err := strconv.Atoi(r.URL.Query().Get("categoryId"))
	if err != nil {
		http.Error(w, "invalid categoryId", http.StatusBadRequest)
		return
	}
	p, ok := handler.periodFromQuery(w, r)
	if !ok {
		return
	}

	effective, err := handler.service.GetEffective(r.Context(), categoryId, p)
	if err != nil {
		if errors.Is(err, ErrBudgetNotFound) {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dto := effectiveToDTO(effective, p)
	allocations, err := handler.reconciler.ListForBudget(r.Context(), effective.Budget.ID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	dto.Allocations = allocationsToDTO(allocations)

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dto); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// UpsertBudget godoc
// @Summary Set the budget for a category and month
// @Description Create or replace the budget amount for one category and month; optional payment-source splits are reconciled in sync or additive mode
// @Tags Budget
// @Accept json
// @Produce json
// @Param budget body UpsertBudgetDTO true "Budget"
// @Success 200 {object} BudgetDTO
// @Failure 400 {string} string "Bad Request"
// @Router /api/budget [put]
// @Security XUserId
func (handler *Handler) UpsertBudget(w http.ResponseWriter, r *http.Request) {
	log.Debug("Upserting budget")
	w.Header().Set("Content-Type", "application/json")
	var dto UpsertBudgetDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if dto.CategoryID == 0 {
		http.Error(w, "categoryId is required", http.StatusBadRequest)
		return
	}

	var at *time.Time
	if dto.Date != "" {
		parsed, err := time.Parse("2006-01-02", dto.Date)
		if err != nil {
			http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		at = &parsed
	}

	mode, err := allocation.ParseMode(dto.Mode)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	upserted, err := handler.service.Upsert(r.Context(), dto.CategoryID, dto.Amount, at)
	if err != nil {
		if errors.Is(err, money.ErrInvalidAmount) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	result := BudgetDTO{
		ID:          upserted.ID,
		CategoryID:  upserted.CategoryID,
		Period:      upserted.Period.String(),
		Amount:      money.FormatPaise(upserted.AmountPaise),
		AmountPaise: upserted.AmountPaise,
	}

	if dto.Splits != nil {
		splits := make([]allocation.Split, 0, len(*dto.Splits))
		for _, s := range *dto.Splits {
			splits = append(splits, allocation.Split{SourceID: s.SourceID, BankName: s.BankName, Amount: s.Amount})
		}
		allocations, err := handler.reconciler.Reconcile(r.Context(), upserted.ID, splits, mode)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		result.Allocations = allocationsToDTO(allocations)
	}

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(result); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// GetOverview godoc
// @Summary Effective budgets for several categories at once
// @Description Batched carry-forward lookup; categories with no budget ever set are omitted from the response
// @Tags Budget
// @Produce json
// @Param categoryId query []int true "Category IDs (repeated)"
// @Param date query string false "Any date inside the wanted month; defaults to now"
// @Success 200 {array} BudgetDTO
// @Failure 400 {string} string "Bad Request"
// @Router /api/budget/overview [get]
// @Security XUserId
func (handler *Handler) GetOverview(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting budget overview")
	w.Header().Set("Content-Type", "application/json")

	rawIds := r.URL.Query()["categoryId"]
	if len(rawIds) == 0 {
		http.Error(w, "at least one categoryId is required", http.StatusBadRequest)
		return
	}
	categoryIds := make([]int, 0, len(rawIds))
	for _, raw := range rawIds {
		id, err := strconv.Atoi(raw)
		if err != nil {
			http.Error(w, "invalid categoryId", http.StatusBadRequest)
			return
		}
		categoryIds = append(categoryIds, id)
	}
	p, ok := handler.periodFromQuery(w, r)
	if !ok {
		return
	}

	effective, err := handler.service.GetEffectiveBulk(r.Context(), categoryIds, p)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]BudgetDTO, 0, len(effective))
	for _, categoryId := range categoryIds {
		if e, found := effective[categoryId]; found {
			dtos = append(dtos, effectiveToDTO(e, p))
		}
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

// GetAllocations godoc
// @Summary List a budget's payment-source splits
// @Tags Budget
// @Produce json
// @Param budgetId path int true "Budget ID"
// @Success 200 {array} AllocationDTO
// @Failure 400 {string} string "Bad Request"
// @Router /api/budget/{budgetId}/allocations [get]
// @Security XUserId
func (handler *Handler) GetAllocations(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	vars := mux.Vars(r)
	budgetId, err := strconv.Atoi(vars["budgetId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	allocations, err := handler.reconciler.ListForBudget(r.Context(), budgetId)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(allocationsToDTO(allocations)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}

func (handler *Handler) periodFromQuery(w http.ResponseWriter, r *http.Request) (period.Period, bool) {
	dateParam := r.URL.Query().Get("date")
	if dateParam == "" {
		return period.Normalize(handler.clock.Now()), true
	}
	p, err := period.Parse(dateParam)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return period.Period{}, false
	}
	return p, true
}

// effectiveToDTO renders an effective budget against the requested period:
// "period" is the month the caller asked about, "sourcePeriod" the month the
// amount was actually set in when carried forward.
func effectiveToDTO(e Effective, requested period.Period) BudgetDTO {
	dto := BudgetDTO{
		ID:             e.Budget.ID,
		CategoryID:     e.Budget.CategoryID,
		Period:         requested.String(),
		Amount:         money.FormatPaise(e.Budget.AmountPaise),
		AmountPaise:    e.Budget.AmountPaise,
		CarriedForward: e.CarriedForward,
	}
	if e.CarriedForward {
		dto.SourcePeriod = e.SourcePeriod.String()
	}
	return dto
}

func allocationsToDTO(allocations []allocation.Allocation) []AllocationDTO {
	dtos := make([]AllocationDTO, 0, len(allocations))
	for _, a := range allocations {
		dtos = append(dtos, AllocationDTO{
			ID:          a.ID,
			SourceID:    a.SourceID,
			SourceName:  a.SourceName,
			Amount:      money.FormatPaise(a.AmountPaise),
			AmountPaise: a.AmountPaise,
		})
	}
	return dtos
}
