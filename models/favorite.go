package models

import "time"

const (
	// MediaTypeMovie and MediaTypeTV are the only media types the provider knows about.
	MediaTypeMovie = "movie"
	MediaTypeTV    = "tv"
)

// ValidMediaType reports whether the given media type is one we accept.
func ValidMediaType(mediaType string) bool {
	return mediaType == MediaTypeMovie || mediaType == MediaTypeTV
}

// Favorite is a user's saved reference to an external content item.
// No two favorites share the same (UserID, ExternalID) pair.
type Favorite struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ExternalID string    `json:"externalId"`
	MediaType  string    `json:"mediaType"`
	AddedAt    time.Time `json:"addedAt"`
}

// FavoritePatch carries the mutable fields of a favorite. Nil fields are
// left untouched by an update.
type FavoritePatch struct {
	MediaType *string `json:"mediaType,omitempty"`
}

// PlaceholderTitle is used when the provider cannot supply metadata.
const PlaceholderTitle = "Unknown"

// EnrichedFavorite is a favorite joined with display metadata fetched from
// the external provider. It is recomputed on every read and never persisted.
type EnrichedFavorite struct {
	Favorite
	Title      string   `json:"title"`
	PosterPath string   `json:"posterPath,omitempty"`
	GenreNames []string `json:"genreNames"`
}

// Enrich joins the favorite with provider metadata. A nil metadata record
// produces the placeholder enrichment rather than an error.
func (f Favorite) Enrich(meta *Metadata) EnrichedFavorite {
	enriched := EnrichedFavorite{
		Favorite:   f,
		Title:      PlaceholderTitle,
		GenreNames: []string{},
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
