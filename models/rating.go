package models

import "time"

// Rating is a user's score for an external content item, on the provider's
// half-point 0.5-10 scale. One rating per (UserID, ExternalID) pair.
type Rating struct {
	ID         string    `json:"id"`
	UserID     string    `json:"userId"`
	ExternalID string    `json:"externalId"`
	MediaType  string    `json:"mediaType"`
	Value      float64   `json:"value"`
	RatedAt    time.Time `json:"ratedAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// EnrichedRating is a rating joined with provider display metadata.
type EnrichedRating struct {
	Rating
	Title      string   `json:"title"`
	PosterPath string   `json:"posterPath,omitempty"`
	GenreNames []string `json:"genreNames"`
}

// Enrich joins the rating with provider metadata, falling back to the
// placeholder record when metadata is unavailable.
func (r Rating) Enrich(meta *Metadata) EnrichedRating {
	enriched := EnrichedRating{
		Rating:     r,
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
