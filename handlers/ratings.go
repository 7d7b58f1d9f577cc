package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"reelscout/models"
	"reelscout/services/ratings"
)

type ratingsService interface {
	List(ctx context.Context, userID string) ([]models.EnrichedRating, error)
	Set(ctx context.Context, userID, externalID, mediaType string, value float64) (models.EnrichedRating, error)
	Remove(ctx context.Context, userID, ratingID string) error
}

var _ ratingsService = (*ratings.Service)(nil)

// RatingsHandler exposes rating CRUD over HTTP.
type RatingsHandler struct {
	Service ratingsService
	Users   userService
}

func NewRatingsHandler(service ratingsService, users userService) *RatingsHandler {
	return &RatingsHandler{Service: service, Users: users}
}

func (h *RatingsHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.Service.List(r.Context(), userID)
	if err != nil {
		writeRatingsError(w, err)
		return
	}
	if items == nil {
		items = []models.EnrichedRating{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *RatingsHandler) Set(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		ExternalID string  `json:"externalId"`
		MediaType  string  `json:"mediaType"`
		Value      float64 `json:"value"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Service.Set(r.Context(), userID, body.ExternalID, body.MediaType, body.Value)
	if err != nil {
		writeRatingsError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (h *RatingsHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	ratingID := mux.Vars(r)["ratingID"]

	if err := h.Service.Remove(r.Context(), userID, ratingID); err != nil {
		writeRatingsError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RatingsHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := strings.TrimSpace(mux.Vars(r)["userID"])
	if userID == "" {
		http.Error(w, "user id is required", http.StatusBadRequest)
		return "", false
	}

	if h.Users != nil && !h.Users.Exists(userID) {
		http.Error(w, "user not found", http.StatusNotFound)
		return "", false
	}

	return userID, true
}

func writeRatingsError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ratings.ErrRatingNotFound):
		status = http.StatusNotFound
	case errors.Is(err, ratings.ErrUserIDRequired),
		errors.Is(err, ratings.ErrIDRequired),
		errors.Is(err, ratings.ErrMediaTypeRequired),
		errors.Is(err, ratings.ErrValueOutOfRange):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
