package models

import "time"

// WatchlistItem is an external content item a user plans to watch.
// One entry per (UserID, ExternalID) pair; re-adding updates in place.
type WatchlistItem struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ExternalID string    `json:"externalId"`
	MediaType  string    `json:"mediaType"`
	Watched    bool      `json:"watched"`
	AddedAt    time.Time `json:"addedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// WatchlistUpsert is the request payload for adding or updating a
// watchlist entry.
type WatchlistUpsert struct {
	ExternalID string `json:"externalId"`
	MediaType  string `json:"mediaType"`
	Watched    *bool  `json:"watched,omitempty"`
}

// EnrichedWatchlistItem is a watchlist entry joined with provider metadata.
type EnrichedWatchlistItem struct {
	WatchlistItem
	Title      string   `json:"title"`
	PosterPath string   `json:"posterPath,omitempty"`
	GenreNames []string `json:"genreNames"`
}

// Enrich joins the watchlist entry with provider metadata, falling back to
// the placeholder record when metadata is unavailable.
func (w WatchlistItem) Enrich(meta *Metadata) EnrichedWatchlistItem {
	enriched := EnrichedWatchlistItem{
		WatchlistItem: w,
		Title:         PlaceholderTitle,
		GenreNames:    []string{},
	}
	if meta != nil {
		enriched.Title = meta.Title
		enriched.PosterPath = meta.PosterPath
		if len(meta.GenreNames) > 0 {
			enriched.GenreNames = meta.GenreNames
		}
	}
	return enriched
}
