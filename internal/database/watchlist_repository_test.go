package database

import (
	"context"
	"testing"
	"time"

	"reelscout/models"
)

func testWatchlistItem(userID, externalID string, watched bool, at time.Time) *models.WatchlistItem {
	return &models.WatchlistItem{
		ID:         userID + "-" + externalID,
		UserID:     userID,
		ExternalID: externalID,
		MediaType:  models.MediaTypeMovie,
		Watched:    watched,
		AddedAt:    at,
		UpdatedAt:  at,
	}
}

func TestWatchlistUpsertPreservesAddedAt(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	addedAt := time.Now().UTC().Truncate(time.Second)

	if err := db.Watchlist.Upsert(ctx, testWatchlistItem("user-1", "550", false, addedAt)); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}

	later := addedAt.Add(time.Hour)
	update := testWatchlistItem("user-1", "550", true, later)
	update.ID = "discarded-on-conflict"
	if err := db.Watchlist.Upsert(ctx, update); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}

	stored, err := db.Watchlist.GetByExternalID(ctx, "user-1", "550")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !stored.Watched {
		t.Error("expected watched to flip to true")
	}
	if !stored.AddedAt.Equal(addedAt) {
		t.Errorf("AddedAt must be preserved: %v != %v", stored.AddedAt, addedAt)
	}
	if stored.ID != "user-1-550" {
		t.Errorf("row id must survive the upsert, got %q", stored.ID)
	}

	items, err := db.Watchlist.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("expected a single row, got %d", len(items))
	}
}

func TestWatchlistDelete(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := db.Watchlist.Upsert(ctx, testWatchlistItem("user-1", "550", false, now)); err != nil {
		t.Fatal(err)
	}

	removed, err := db.Watchlist.Delete(ctx, "user-2", "550", models.MediaTypeMovie)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("wrong owner must not remove anything")
	}

	removed, err = db.Watchlist.Delete(ctx, "user-1", "550", models.MediaTypeTV)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("mismatched media type must not remove anything")
	}

	removed, err = db.Watchlist.Delete(ctx, "user-1", "550", models.MediaTypeMovie)
	if err != nil {
		t.Fatal(err)
	}
	if !removed {
		t.Fatal("expected the entry to be removed")
	}

	removed, err = db.Watchlist.Delete(ctx, "user-1", "550", models.MediaTypeMovie)
	if err != nil {
		t.Fatal(err)
	}
	if removed {
		t.Fatal("second delete must report nothing removed")
	}
}

func TestWatchlistCrossUserIsolation(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	now := time.Now().UTC()

	if err := db.Watchlist.Upsert(ctx, testWatchlistItem("user-1", "550", false, now)); err != nil {
		t.Fatal(err)
	}
	if err := db.Watchlist.Upsert(ctx, testWatchlistItem("user-2", "603", true, now)); err != nil {
		t.Fatal(err)
	}

	items, err := db.Watchlist.ListByUser(ctx, "user-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 || items[0].ExternalID != "550" {
		t.Fatalf("expected only user-1's entry, got %+v", items)
	}
}
