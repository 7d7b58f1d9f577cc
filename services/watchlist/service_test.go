package watchlist

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"reelscout/internal/database"
	"reelscout/models"
)

// fakeRepo mirrors the sqlite upsert semantics: one row per
// (user, external id), AddedAt and id preserved on replace.
type fakeRepo struct {
	mu    sync.Mutex
	items []models.WatchlistItem
}

func (f *fakeRepo) Upsert(ctx context.Context, item *models.WatchlistItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.items {
		if existing.UserID == item.UserID && existing.ExternalID == item.ExternalID {
			f.items[i].MediaType = item.MediaType
			f.items[i].Watched = item.Watched
			f.items[i].UpdatedAt = item.UpdatedAt
			return nil
		}
	}
	f.items = append(f.items, *item)
	return nil
}

func (f *fakeRepo) GetByExternalID(ctx context.Context, userID, externalID string) (*models.WatchlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.items {
		if item.UserID == userID && item.ExternalID == externalID {
			found := item
			return &found, nil
		}
	}
	return nil, database.ErrNotFound
}

func (f *fakeRepo) ListByUser(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.WatchlistItem
	for _, item := range f.items {
		if item.UserID == userID {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f *fakeRepo) Delete(ctx context.Context, userID, externalID, mediaType string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, item := range f.items {
		if item.UserID == userID && item.ExternalID == externalID && item.MediaType == mediaType {
			f.items = append(f.items[:i], f.items[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

type stubFetcher struct {
	fn func(mediaType, externalID string) (*models.Metadata, bool)
}

func (s *stubFetcher) GetMetadata(ctx context.Context, mediaType, externalID string) (*models.Metadata, bool) {
	return s.fn(mediaType, externalID)
}

func noMetadata() *stubFetcher {
	return &stubFetcher{fn: func(string, string) (*models.Metadata, bool) { return nil, false }}
}

func boolPtr(v bool) *bool { return &v }

func TestAddOrUpdateCreatesEntry(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, &stubFetcher{fn: func(mediaType, externalID string) (*models.Metadata, bool) {
		return &models.Metadata{Title: "The Wire"}, true
	}})

	item, err := svc.AddOrUpdate(context.Background(), "user-1", models.WatchlistUpsert{
		ExternalID: "1438",
		MediaType:  models.MediaTypeTV,
	})
	if err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if item.Watched {
		t.Fatal("new entries default to unwatched")
	}
	if item.Title != "The Wire" {
		t.Fatalf("unexpected title: %q", item.Title)
	}
}

func TestAddOrUpdateTogglesWatched(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, noMetadata())
	ctx := context.Background()

	first, err := svc.AddOrUpdate(ctx, "user-1", models.WatchlistUpsert{
		ExternalID: "1438",
		MediaType:  models.MediaTypeTV,
	})
	if err != nil {
		t.Fatal(err)
	}

	time.Sleep(5 * time.Millisecond)
	second, err := svc.AddOrUpdate(ctx, "user-1", models.WatchlistUpsert{
		ExternalID: "1438",
		MediaType:  models.MediaTypeTV,
		Watched:    boolPtr(true),
	})
	if err != nil {
		t.Fatal(err)
	}

	if !second.Watched {
		t.Fatal("expected watched to flip to true")
	}
	if second.ID != first.ID {
		t.Fatalf("row identity must survive the update: %q != %q", second.ID, first.ID)
	}
	if !second.AddedAt.Equal(first.AddedAt) {
		t.Fatal("AddedAt must be preserved on update")
	}

	items, _ := repo.ListByUser(ctx, "user-1")
	if len(items) != 1 {
		t.Fatalf("update must not create a row, have %d", len(items))
	}
}

func TestAddOrUpdateNilWatchedPreservesFlag(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, noMetadata())
	ctx := context.Background()

	if _, err := svc.AddOrUpdate(ctx, "user-1", models.WatchlistUpsert{
		ExternalID: "1438",
		MediaType:  models.MediaTypeTV,
		Watched:    boolPtr(true),
	}); err != nil {
		t.Fatal(err)
	}

	// Re-submit without the watched field; the flag must not reset
	item, err := svc.AddOrUpdate(ctx, "user-1", models.WatchlistUpsert{
		ExternalID: "1438",
		MediaType:  models.MediaTypeTV,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !item.Watched {
		t.Fatal("omitted watched field must preserve the stored flag")
	}
}

func TestAddOrUpdateValidation(t *testing.T) {
	svc := NewService(&fakeRepo{}, noMetadata())
	ctx := context.Background()

	if _, err := svc.AddOrUpdate(ctx, "", models.WatchlistUpsert{ExternalID: "1", MediaType: "tv"}); !errors.Is(err, ErrUserIDRequired) {
		t.Fatalf("expected ErrUserIDRequired, got %v", err)
	}
	if _, err := svc.AddOrUpdate(ctx, "user-1", models.WatchlistUpsert{MediaType: "tv"}); !errors.Is(err, ErrIDRequired) {
		t.Fatalf("expected ErrIDRequired, got %v", err)
	}
	if _, err := svc.AddOrUpdate(ctx, "user-1", models.WatchlistUpsert{ExternalID: "1", MediaType: "vinyl"}); !errors.Is(err, ErrMediaTypeRequired) {
		t.Fatalf("expected ErrMediaTypeRequired, got %v", err)
	}
}

func TestListWithDeadProvider(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, noMetadata())
	ctx := context.Background()

	for _, id := range []string{"100", "200", "300"} {
		if _, err := svc.AddOrUpdate(ctx, "user-1", models.WatchlistUpsert{
			ExternalID: id,
			MediaType:  models.MediaTypeMovie,
		}); err != nil {
			t.Fatal(err)
		}
	}

	items, err := svc.List(ctx, "user-1")
	if err != nil {
		t.Fatalf("list must not fail on provider outage: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	for i, id := range []string{"100", "200", "300"} {
		if items[i].ExternalID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, items[i].ExternalID)
		}
		if items[i].Title != models.PlaceholderTitle {
			t.Fatalf("position %d: expected placeholder title, got %q", i, items[i].Title)
		}
	}
}

func TestRemove(t *testing.T) {
	repo := &fakeRepo{}
	svc := NewService(repo, noMetadata())
	ctx := context.Background()

	if _, err := svc.AddOrUpdate(ctx, "user-1", models.WatchlistUpsert{
		ExternalID: "550",
		MediaType:  models.MediaTypeMovie,
	}); err != nil {
		t.Fatal(err)
	}

	removed, err := svc.Remove(ctx, "user-2", models.MediaTypeMovie, "550")
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("another user's remove must not match")
	}

	removed, err = svc.Remove(ctx, "user-1", models.MediaTypeMovie, "550")
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("expected entry to be removed")
	}

	if _, err := svc.Remove(ctx, "user-1", "", "550"); !errors.Is(err, ErrIdentifierRequired) {
		t.Fatalf("expected ErrIdentifierRequired, got %v", err)
	}
}
