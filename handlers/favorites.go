package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"reelscout/models"
	"reelscout/services/favorites"
)

type favoritesService interface {
	List(ctx context.Context, userID string) ([]models.EnrichedFavorite, error)
	Add(ctx context.Context, userID, externalID, mediaType string) (models.EnrichedFavorite, error)
	Update(ctx context.Context, userID, favoriteID string, patch models.FavoritePatch) (models.EnrichedFavorite, error)
	Remove(ctx context.Context, userID, favoriteID string) error
}

var _ favoritesService = (*favorites.Service)(nil)

type userService interface {
	Exists(id string) bool
}

// FavoritesHandler exposes favorites CRUD over HTTP. Every response item is
// enriched with provider metadata or the placeholder record.
type FavoritesHandler struct {
	Service favoritesService
	Users   userService
}

func NewFavoritesHandler(service favoritesService, users userService) *FavoritesHandler {
	return &FavoritesHandler{Service: service, Users: users}
}

func (h *FavoritesHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.Service.List(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if items == nil {
		items = []models.EnrichedFavorite{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *FavoritesHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var body struct {
		ExternalID string `json:"externalId"`
		MediaType  string `json:"mediaType"`
	}
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Service.Add(r.Context(), userID, body.ExternalID, body.MediaType)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(item)
}

func (h *FavoritesHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	favoriteID := mux.Vars(r)["favoriteID"]

	var patch models.FavoritePatch
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Service.Update(r.Context(), userID, favoriteID, patch)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (h *FavoritesHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	favoriteID := mux.Vars(r)["favoriteID"]

	if err := h.Service.Remove(r.Context(), userID, favoriteID); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoritesHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
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

// writeServiceError maps favorites service errors onto HTTP statuses.
// Store failures stay generic 500s.
func writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, favorites.ErrFavoriteExists):
		status = http.StatusConflict
	case errors.Is(err, favorites.ErrFavoriteNotFound):
		status = http.StatusNotFound
	case errors.Is(err, favorites.ErrUserIDRequired),
		errors.Is(err, favorites.ErrIDRequired),
		errors.Is(err, favorites.ErrMediaTypeRequired):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
