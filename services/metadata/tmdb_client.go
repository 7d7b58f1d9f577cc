package metadata

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"reelscout/models"
)

const (
	tmdbBaseURL      = "https://api.themoviedb.org/3"
	tmdbImageBaseURL = "https://image.tmdb.org/t/p"
	tmdbPosterSize   = "w780"
)

// tmdbClient talks to the TMDB REST API. All methods return plain errors;
// caching and failure downgrading happen in the service, not here.
type tmdbClient struct {
	apiKey     string
	language   string
	baseURL    string
	httpClient *http.Client
}

type tmdbGenre struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type tmdbGenreListResponse struct {
	Genres []tmdbGenre `json:"genres"`
}

// tmdbTitleResponse covers both movie and TV detail payloads. Movies carry
// title/release_date, series carry name/first_air_date.
type tmdbTitleResponse struct {
	ID           int64       `json:"id"`
	Title        string      `json:"title"`
	Name         string      `json:"name"`
	Overview     string      `json:"overview"`
	PosterPath   string      `json:"poster_path"`
	BackdropPath string      `json:"backdrop_path"`
	ReleaseDate  string      `json:"release_date"`
	FirstAirDate string      `json:"first_air_date"`
	VoteAverage  float64     `json:"vote_average"`
	Genres       []tmdbGenre `json:"genres"`
	GenreIDs     []int64     `json:"genre_ids"`
}

type tmdbListResponse struct {
	Results []tmdbTitleResponse `json:"results"`
}

func newTMDBClient(apiKey, language string, httpClient *http.Client) *tmdbClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &tmdbClient{
		apiKey:     apiKey,
		language:   normalizeLanguage(language),
		baseURL:    tmdbBaseURL,
		httpClient: httpClient,
	}
}

func (c *tmdbClient) isConfigured() bool {
	return c.apiKey != ""
}

// fetchGenreList fetches the id-to-name genre list for a media type.
func (c *tmdbClient) fetchGenreList(ctx context.Context, mediaType string) (map[int64]string, error) {
	var resp tmdbGenreListResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/genre/%s/list", mediaType), nil, &resp); err != nil {
		return nil, err
	}

	genres := make(map[int64]string, len(resp.Genres))
	for _, g := range resp.Genres {
		if g.Name != "" {
			genres[g.ID] = g.Name
		}
	}
	return genres, nil
}

// fetchDetails fetches the detail record for a single title.
func (c *tmdbClient) fetchDetails(ctx context.Context, mediaType, externalID string) (*tmdbTitleResponse, error) {
	var resp tmdbTitleResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/%s/%s", mediaType, url.PathEscape(externalID)), nil, &resp); err != nil {
		return nil, err
	}
	if resp.ID == 0 {
		return nil, fmt.Errorf("malformed detail response for %s/%s", mediaType, externalID)
	}
	return &resp, nil
}

// fetchTrending fetches the daily trending feed for a media type.
func (c *tmdbClient) fetchTrending(ctx context.Context, mediaType string) ([]tmdbTitleResponse, error) {
	var resp tmdbListResponse
	if err := c.getJSON(ctx, fmt.Sprintf("/trending/%s/day", mediaType), nil, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// fetchSearch searches titles of a media type by query string.
func (c *tmdbClient) fetchSearch(ctx context.Context, mediaType, query string) ([]tmdbTitleResponse, error) {
	var resp tmdbListResponse
	params := url.Values{"query": {query}}
	if err := c.getJSON(ctx, fmt.Sprintf("/search/%s", mediaType), params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

func (c *tmdbClient) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	if !c.isConfigured() {
		return fmt.Errorf("tmdb api key not configured")
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_key", c.apiKey)
	params.Set("language", c.language)

	reqURL := c.baseURL + path + "?" + params.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d for %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// toMetadata converts a raw TMDB title into the provider-agnostic record.
// Genre names come from the inline genre objects when the detail endpoint
// supplied them, otherwise from the genre cache via genre_ids.
func (t *tmdbTitleResponse) toMetadata(mediaType string, genres *genreCache) models.Metadata {
	meta := models.Metadata{
		ExternalID:   strconv.FormatInt(t.ID, 10),
		MediaType:    mediaType,
		Title:        t.displayTitle(),
		Overview:     t.Overview,
		PosterPath:   buildTMDBImageURL(t.PosterPath, tmdbPosterSize),
		BackdropPath: buildTMDBImageURL(t.BackdropPath, tmdbPosterSize),
		ReleaseYear:  parseTMDBYear(t.ReleaseDate, t.FirstAirDate),
		VoteAverage:  t.VoteAverage,
		GenreNames:   []string{},
	}

	if len(t.Genres) > 0 {
		for _, g := range t.Genres {
			meta.GenreIDs = append(meta.GenreIDs, g.ID)
			meta.GenreNames = append(meta.GenreNames, g.Name)
		}
		return meta
	}

	meta.GenreIDs = t.GenreIDs
	if genres != nil {
		meta.GenreNames = genres.Names(mediaType, t.GenreIDs)
	}
	return meta
}

func (t *tmdbTitleResponse) displayTitle() string {
	if t.Title != "" {
		return t.Title
	}
	return t.Name
}

// normalizeLanguage converts loose language inputs to TMDB's ll-RR form.
func normalizeLanguage(language string) string {
	language = strings.TrimSpace(strings.ReplaceAll(language, "_", "-"))
	if language == "" {
		return "en-US"
	}

	parts := strings.SplitN(language, "-", 2)
	lang := strings.ToLower(parts[0])
	region := "US"
	if len(parts) == 2 && parts[1] != "" {
		region = strings.ToUpper(parts[1])
	}
	return lang + "-" + region
}

// buildTMDBImageURL builds a full image URL from a TMDB image path.
// Empty paths yield an empty URL.
func buildTMDBImageURL(path, size string) string {
	if path == "" {
		return ""
	}
	return tmdbImageBaseURL + "/" + size + path
}

// parseTMDBYear extracts the year from the first parsable of the two
// YYYY-MM-DD date strings TMDB uses for movies and series.
func parseTMDBYear(releaseDate, firstAirDate string) int {
	for _, date := range []string{releaseDate, firstAirDate} {
		if len(date) < 4 {
			continue
		}
		if year, err := strconv.Atoi(date[:4]); err == nil {
			return year
		}
	}
	return 0
}
