package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"reelscout/handlers"
	"reelscout/models"
)

type fakeMetadataService struct {
	trendingItems []models.TrendingItem
	trendingErr   error
	searchResults []models.SearchResult
	searchErr     error
	metadata      *models.Metadata
	metadataOK    bool

	lastQuery string
}

func (f *fakeMetadataService) Trending(ctx context.Context, mediaType string) ([]models.TrendingItem, error) {
	return f.trendingItems, f.trendingErr
}

func (f *fakeMetadataService) Search(ctx context.Context, mediaType, query string) ([]models.SearchResult, error) {
	f.lastQuery = query
	return f.searchResults, f.searchErr
}

func (f *fakeMetadataService) GetMetadata(ctx context.Context, mediaType, externalID string) (*models.Metadata, bool) {
	return f.metadata, f.metadataOK
}

func metadataRouter(h *handlers.MetadataHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/metadata/trending/{mediaType}", h.Trending).Methods(http.MethodGet)
	r.HandleFunc("/api/metadata/search", h.Search).Methods(http.MethodGet)
	r.HandleFunc("/api/metadata/details/{mediaType}/{id}", h.Details).Methods(http.MethodGet)
	return r
}

func TestMetadataTrending(t *testing.T) {
	svc := &fakeMetadataService{trendingItems: []models.TrendingItem{
		{ExternalID: "550", MediaType: "movie", Title: "Fight Club"},
	}}
	router := metadataRouter(handlers.NewMetadataHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/trending/movie", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var items []models.TrendingItem
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].Title != "Fight Club" {
		t.Fatalf("unexpected body: %+v", items)
	}
}

func TestMetadataTrendingBadMediaType(t *testing.T) {
	router := metadataRouter(handlers.NewMetadataHandler(&fakeMetadataService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/trending/book", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMetadataTrendingProviderDown(t *testing.T) {
	svc := &fakeMetadataService{trendingErr: errors.New("timeout")}
	router := metadataRouter(handlers.NewMetadataHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/trending/movie", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}
}

func TestMetadataSearch(t *testing.T) {
	svc := &fakeMetadataService{searchResults: []models.SearchResult{
		{ExternalID: "603", Title: "The Matrix"},
	}}
	router := metadataRouter(handlers.NewMetadataHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/search?query=matrix", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if svc.lastQuery != "matrix" {
		t.Errorf("expected query matrix, got %q", svc.lastQuery)
	}
}

func TestMetadataSearchMissingQuery(t *testing.T) {
	router := metadataRouter(handlers.NewMetadataHandler(&fakeMetadataService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/search", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestMetadataDetails(t *testing.T) {
	svc := &fakeMetadataService{
		metadata:   &models.Metadata{ExternalID: "550", Title: "Fight Club"},
		metadataOK: true,
	}
	router := metadataRouter(handlers.NewMetadataHandler(svc))

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/details/movie/550", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var meta models.Metadata
	if err := json.NewDecoder(rec.Body).Decode(&meta); err != nil {
		t.Fatal(err)
	}
	if meta.Title != "Fight Club" {
		t.Fatalf("unexpected metadata: %+v", meta)
	}
}

func TestMetadataDetailsNotFound(t *testing.T) {
	router := metadataRouter(handlers.NewMetadataHandler(&fakeMetadataService{}))

	req := httptest.NewRequest(http.MethodGet, "/api/metadata/details/movie/999999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
