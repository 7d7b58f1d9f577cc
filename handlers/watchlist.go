package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"reelscout/models"
	"reelscout/services/watchlist"
)

type watchlistService interface {
	List(ctx context.Context, userID string) ([]models.EnrichedWatchlistItem, error)
	AddOrUpdate(ctx context.Context, userID string, input models.WatchlistUpsert) (models.EnrichedWatchlistItem, error)
	Remove(ctx context.Context, userID, mediaType, externalID string) (bool, error)
}

var _ watchlistService = (*watchlist.Service)(nil)

// WatchlistHandler exposes the watchlist over HTTP.
type WatchlistHandler struct {
	Service watchlistService
	Users   userService
}

func NewWatchlistHandler(service watchlistService, users userService) *WatchlistHandler {
	return &WatchlistHandler{Service: service, Users: users}
}

func (h *WatchlistHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	items, err := h.Service.List(r.Context(), userID)
	if err != nil {
		writeWatchlistError(w, err)
		return
	}
	if items == nil {
		items = []models.EnrichedWatchlistItem{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *WatchlistHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	var body models.WatchlistUpsert
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	item, err := h.Service.AddOrUpdate(r.Context(), userID, body)
	if err != nil {
		writeWatchlistError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(item)
}

func (h *WatchlistHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, ok := h.requireUser(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	mediaType := vars["mediaType"]
	id := vars["id"]

	removed, err := h.Service.Remove(r.Context(), userID, mediaType, id)
	if err != nil {
		writeWatchlistError(w, err)
		return
	}

	if !removed {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *WatchlistHandler) requireUser(w http.ResponseWriter, r *http.Request) (string, bool) {
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

func writeWatchlistError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, watchlist.ErrUserIDRequired),
		errors.Is(err, watchlist.ErrIDRequired),
		errors.Is(err, watchlist.ErrMediaTypeRequired),
		errors.Is(err, watchlist.ErrIdentifierRequired):
		status = http.StatusBadRequest
	}
	http.Error(w, err.Error(), status)
}
