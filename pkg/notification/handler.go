package notification

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	log "github.com/sirupsen/logrus"
)

type NotificationDTO struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	Title          string    `json:"title"`
	Message        string    `json:"message"`
	CategorySlug   string    `json:"categorySlug"`
	Severity       string    `json:"severity"`
	Date           time.Time `json:"date"`
	SourcePeriod   string    `json:"sourcePeriod,omitempty"`
	CarriedForward bool      `json:"carriedForward,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// List godoc
// @Summary List current notifications
// @Description Derive overspend, frequent-spending, and top-up alerts for the current user over the current month
// @Tags Notification
// @Produce json
// @Success 200 {array} NotificationDTO
// @Failure 403 {string} string "User not found"
// @Router /api/notification [get]
// @Security XUserId
func (handler *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing notifications")
	w.Header().Set("Content-Type", "application/json")
	notifications, err := handler.service.ForUser(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	dtos := make([]NotificationDTO, 0, len(notifications))
	for _, n := range notifications {
		dtos = append(dtos, NotificationDTO{
			ID:             n.ID,
			Type:           string(n.Type),
			Title:          n.Title,
			Message:        n.Message,
			CategorySlug:   n.CategorySlug,
			Severity:       string(n.Severity),
			Date:           n.Date,
			SourcePeriod:   n.SourcePeriod,
			CarriedForward: n.CarriedForward,
		})
	}
	// Derivation order is unspecified; newest-first is purely presentation.
	sort.SliceStable(dtos, func(i, j int) bool {
		return dtos[j].Date.Before(dtos[i].Date)
	})

	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(dtos); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
