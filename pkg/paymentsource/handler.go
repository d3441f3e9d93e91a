package paymentsource

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"
)

type PaymentSourceDTO struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	ImageUrl string `json:"imageUrl,omitempty"`
}

type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service}
}

// List godoc
// @Summary List known payment sources
// @Description Get all payment sources (banks) known to the registry
// @Tags PaymentSource
// @Produce json
// @Success 200 {array} PaymentSourceDTO
// @Router /api/paymentsource [get]
// @Security XUserId
func (handler *Handler) List(w http.ResponseWriter, r *http.Request) {
	log.Debug("Listing payment sources")
	w.Header().Set("Content-Type", "application/json")
	sources, err := handler.service.List(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	sourcesDTO := make([]PaymentSourceDTO, 0, len(sources))
	for _, source := range sources {
		sourcesDTO = append(sourcesDTO, PaymentSourceDTO{
			ID:       source.ID,
			Name:     source.Name,
			ImageUrl: source.ImageUrl,
		})
	}
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(sourcesDTO); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
}
