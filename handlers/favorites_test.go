package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"

	"reelscout/handlers"
	"reelscout/models"
	"reelscout/services/favorites"
)

// fakeFavoritesService records calls and returns canned results.
type fakeFavoritesService struct {
	listResult   []models.EnrichedFavorite
	listErr      error
	addResult    models.EnrichedFavorite
	addErr       error
	updateResult models.EnrichedFavorite
	updateErr    error
	removeErr    error

	lastUserID     string
	lastExternalID string
	lastMediaType  string
	lastFavoriteID string
}

func (f *fakeFavoritesService) List(ctx context.Context, userID string) ([]models.EnrichedFavorite, error) {
	f.lastUserID = userID
	return f.listResult, f.listErr
}

func (f *fakeFavoritesService) Add(ctx context.Context, userID, externalID, mediaType string) (models.EnrichedFavorite, error) {
	f.lastUserID = userID
	f.lastExternalID = externalID
	f.lastMediaType = mediaType
	return f.addResult, f.addErr
}

func (f *fakeFavoritesService) Update(ctx context.Context, userID, favoriteID string, patch models.FavoritePatch) (models.EnrichedFavorite, error) {
	f.lastUserID = userID
	f.lastFavoriteID = favoriteID
	return f.updateResult, f.updateErr
}

func (f *fakeFavoritesService) Remove(ctx context.Context, userID, favoriteID string) error {
	f.lastUserID = userID
	f.lastFavoriteID = favoriteID
	return f.removeErr
}

// fakeUserService approves every user id unless told otherwise.
type fakeUserService struct {
	missing map[string]bool
}

func (f *fakeUserService) Exists(id string) bool {
	return !f.missing[id]
}

func allUsers() *fakeUserService { return &fakeUserService{} }

func favoritesRouter(h *handlers.FavoritesHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/api/users/{userID}/favorites", h.List).Methods(http.MethodGet)
	r.HandleFunc("/api/users/{userID}/favorites", h.Add).Methods(http.MethodPost)
	r.HandleFunc("/api/users/{userID}/favorites/{favoriteID}", h.Update).Methods(http.MethodPatch)
	r.HandleFunc("/api/users/{userID}/favorites/{favoriteID}", h.Remove).Methods(http.MethodDelete)
	return r
}

func TestFavoritesList(t *testing.T) {
	svc := &fakeFavoritesService{listResult: []models.EnrichedFavorite{
		{Favorite: models.Favorite{ID: "fav-1", ExternalID: "550"}, Title: "Fight Club", GenreNames: []string{"Drama"}},
	}}
	router := favoritesRouter(handlers.NewFavoritesHandler(svc, allUsers()))

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/favorites", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastUserID != "user-1" {
		t.Errorf("expected user-1, got %q", svc.lastUserID)
	}

	var items []models.EnrichedFavorite
	if err := json.NewDecoder(rec.Body).Decode(&items); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if len(items) != 1 || items[0].Title != "Fight Club" {
		t.Fatalf("unexpected body: %+v", items)
	}
}

func TestFavoritesListEmptyIsArray(t *testing.T) {
	router := favoritesRouter(handlers.NewFavoritesHandler(&fakeFavoritesService{}, allUsers()))

	req := httptest.NewRequest(http.MethodGet, "/api/users/user-1/favorites", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if body != "[]\n" {
		t.Fatalf("expected empty JSON array, got %q", body)
	}
}

func TestFavoritesListUnknownUser(t *testing.T) {
	users := &fakeUserService{missing: map[string]bool{"ghost": true}}
	router := favoritesRouter(handlers.NewFavoritesHandler(&fakeFavoritesService{}, users))

	req := httptest.NewRequest(http.MethodGet, "/api/users/ghost/favorites", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown user, got %d", rec.Code)
	}
}

func TestFavoritesAdd(t *testing.T) {
	svc := &fakeFavoritesService{addResult: models.EnrichedFavorite{
		Favorite: models.Favorite{ID: "fav-1", ExternalID: "550", MediaType: "movie"},
		Title:    "Fight Club",
	}}
	router := favoritesRouter(handlers.NewFavoritesHandler(svc, allUsers()))

	body := bytes.NewBufferString(`{"externalId":"550","mediaType":"movie"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/users/user-1/favorites", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastExternalID != "550" || svc.lastMediaType != "movie" {
		t.Errorf("service called with %q/%q", svc.lastExternalID, svc.lastMediaType)
	}
}

func TestFavoritesAddStatusMapping(t *testing.T) {
	tests := []struct {
		err    error
		status int
	}{
		{favorites.ErrFavoriteExists, http.StatusConflict},
		{favorites.ErrMediaTypeRequired, http.StatusBadRequest},
		{favorites.ErrIDRequired, http.StatusBadRequest},
		{context.DeadlineExceeded, http.StatusInternalServerError},
	}

	for _, tc := range tests {
		svc := &fakeFavoritesService{addErr: tc.err}
		router := favoritesRouter(handlers.NewFavoritesHandler(svc, allUsers()))

		body := bytes.NewBufferString(`{"externalId":"550","mediaType":"movie"}`)
		req := httptest.NewRequest(http.MethodPost, "/api/users/user-1/favorites", body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if rec.Code != tc.status {
			t.Errorf("error %v: expected %d, got %d", tc.err, tc.status, rec.Code)
		}
	}
}

func TestFavoritesAddMalformedBody(t *testing.T) {
	router := favoritesRouter(handlers.NewFavoritesHandler(&fakeFavoritesService{}, allUsers()))

	req := httptest.NewRequest(http.MethodPost, "/api/users/user-1/favorites", bytes.NewBufferString(`{not json`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestFavoritesUpdate(t *testing.T) {
	svc := &fakeFavoritesService{updateResult: models.EnrichedFavorite{
		Favorite: models.Favorite{ID: "fav-1", MediaType: "tv"},
		Title:    "The Wire",
	}}
	router := favoritesRouter(handlers.NewFavoritesHandler(svc, allUsers()))

	body := bytes.NewBufferString(`{"mediaType":"tv"}`)
	req := httptest.NewRequest(http.MethodPatch, "/api/users/user-1/favorites/fav-1", body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.lastFavoriteID != "fav-1" {
		t.Errorf("expected fav-1, got %q", svc.lastFavoriteID)
	}
}

func TestFavoritesRemove(t *testing.T) {
	svc := &fakeFavoritesService{}
	router := favoritesRouter(handlers.NewFavoritesHandler(svc, allUsers()))

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user-1/favorites/fav-1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestFavoritesRemoveNotFound(t *testing.T) {
	svc := &fakeFavoritesService{removeErr: favorites.ErrFavoriteNotFound}
	router := favoritesRouter(handlers.NewFavoritesHandler(svc, allUsers()))

	req := httptest.NewRequest(http.MethodDelete, "/api/users/user-1/favorites/fav-404", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}
