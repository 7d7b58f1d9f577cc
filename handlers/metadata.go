package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"reelscout/models"
	metadatapkg "reelscout/services/metadata"
)

type metadataService interface {
	Trending(ctx context.Context, mediaType string) ([]models.TrendingItem, error)
	Search(ctx context.Context, mediaType, query string) ([]models.SearchResult, error)
	GetMetadata(ctx context.Context, mediaType, externalID string) (*models.Metadata, bool)
}

var _ metadataService = (*metadatapkg.Service)(nil)

// MetadataHandler exposes the provider pass-through endpoints: trending,
// search, and per-title details. Responses come from the TTL cache when
// fresh.
type MetadataHandler struct {
	Service metadataService
}

func NewMetadataHandler(service metadataService) *MetadataHandler {
	return &MetadataHandler{Service: service}
}

func (h *MetadataHandler) Trending(w http.ResponseWriter, r *http.Request) {
	mediaType := mux.Vars(r)["mediaType"]
	if !models.ValidMediaType(mediaType) {
		http.Error(w, "media type must be movie or tv", http.StatusBadRequest)
		return
	}

	items, err := h.Service.Trending(r.Context(), mediaType)
	if err != nil {
		http.Error(w, "metadata provider unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(items)
}

func (h *MetadataHandler) Search(w http.ResponseWriter, r *http.Request) {
	mediaType := r.URL.Query().Get("type")
	if mediaType == "" {
		mediaType = models.MediaTypeMovie
	}
	if !models.ValidMediaType(mediaType) {
		http.Error(w, "media type must be movie or tv", http.StatusBadRequest)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("query"))
	if query == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	results, err := h.Service.Search(r.Context(), mediaType, query)
	if err != nil {
		http.Error(w, "metadata provider unavailable", http.StatusBadGateway)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(results)
}

func (h *MetadataHandler) Details(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	mediaType := vars["mediaType"]
	id := vars["id"]
	if !models.ValidMediaType(mediaType) {
		http.Error(w, "media type must be movie or tv", http.StatusBadRequest)
		return
	}

	meta, ok := h.Service.GetMetadata(r.Context(), mediaType, id)
	if !ok {
		// Absence and provider failure look the same at this boundary
		http.Error(w, "title not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(meta)
}
