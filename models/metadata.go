package models

// Metadata is the display record the metadata service resolves for a single
// content item, either from cache or from the external provider.
type Metadata struct {
	ExternalID   string   `json:"externalId"`
	MediaType    string   `json:"mediaType"`
	Title        string   `json:"title"`
	Overview     string   `json:"overview,omitempty"`
	PosterPath   string   `json:"posterPath,omitempty"`
	BackdropPath string   `json:"backdropPath,omitempty"`
	ReleaseYear  int      `json:"releaseYear,omitempty"`
	GenreIDs     []int64  `json:"genreIds,omitempty"`
	GenreNames   []string `json:"genreNames"`
	VoteAverage  float64  `json:"voteAverage,omitempty"`
}

// TrendingItem is a single entry from the provider's trending feed.
type TrendingItem struct {
	ExternalID  string   `json:"externalId"`
	MediaType   string   `json:"mediaType"`
	Title       string   `json:"title"`
	PosterPath  string   `json:"posterPath,omitempty"`
	ReleaseYear int      `json:"releaseYear,omitempty"`
	GenreNames  []string `json:"genreNames"`
	VoteAverage float64  `json:"voteAverage,omitempty"`
}

// SearchResult is a single entry from the provider's search endpoint.
type SearchResult struct {
	ExternalID  string   `json:"externalId"`
	MediaType   string   `json:"mediaType"`
	Title       string   `json:"title"`
	PosterPath  string   `json:"posterPath,omitempty"`
	ReleaseYear int      `json:"releaseYear,omitempty"`
	GenreNames  []string `json:"genreNames"`
}

// Recommendation is a trending title suggested to a user.
// The reason string is static; there is no scoring engine behind it.
type Recommendation struct {
	TrendingItem
	Reason string `json:"reason"`
}
