package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"reelscout/models"
	"reelscout/services/recommend"
)

type recommendService interface {
	ForUser(ctx context.Context, userID string) ([]models.Recommendation, error)
}

var _ recommendService = (*recommend.Service)(nil)

// RecommendationsHandler serves the recommendation stub.
type RecommendationsHandler struct {
	Service recommendService
	Users   userService
}

func NewRecommendationsHandler(service recommendService, users userService) *RecommendationsHandler {
	return &RecommendationsHandler{Service: service, Users: users}
}

func (h *RecommendationsHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	userID := strings.TrimSpace(mux.Vars(r)["userID"])
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return
	}
	if h.Users != nil && !h.Users.Exists(userID) {
		http.Error(w, "user not found", http.StatusNotFound)
		return
	}

	recs, err := h.Service.ForUser(r.Context(), userID)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, recommend.ErrUserIDRequired) {
			status = http.StatusBadRequest
		}
		http.Error(w, err.Error(), status)
		return
	}
	if recs == nil {
		recs = []models.Recommendation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(recs)
}
