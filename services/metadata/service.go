package metadata

import (
	"context"
	"fmt"
	"log"
	"time"

	"reelscout/models"
)

// Service resolves display metadata for external content items, caching
// provider responses in memory for a fixed TTL. Provider failures never
// escape GetMetadata; they surface as a not-ok result the caller turns into
// placeholder data.
type Service struct {
	tmdb   *tmdbClient
	cache  *memoryCache
	genres *genreCache
}

// NewService creates a metadata service for the given provider credentials.
// ttl bounds the staleness of every cached provider response.
func NewService(apiKey, language string, ttl time.Duration) *Service {
	return newService(newTMDBClient(apiKey, language, nil), ttl)
}

// newService wires a service around an existing client. Tests use it to
// inject an http.Client with a stub transport.
func newService(client *tmdbClient, ttl time.Duration) *Service {
	svc := &Service{
		tmdb:   client,
		cache:  newMemoryCache(ttl),
		genres: newGenreCache(),
	}
	go svc.sweepLoop(ttl)
	return svc
}

// Initialize populates the genre cache. Best effort: failures are logged
// and genre names degrade to "Unknown" instead of failing startup.
func (s *Service) Initialize(ctx context.Context) {
	s.genres.initialize(ctx, s.tmdb)
}

// GetMetadata returns the display record for (mediaType, externalID) from
// cache or the provider. The second return value tags the result: ok=false
// means the provider could not supply data and nothing was cached, so the
// next call retries immediately.
func (s *Service) GetMetadata(ctx context.Context, mediaType, externalID string) (*models.Metadata, bool) {
	if !models.ValidMediaType(mediaType) || externalID == "" {
		return nil, false
	}

	key := detailsCacheKey(mediaType, externalID)
	if cached, ok := s.cache.get(key); ok {
		if title, ok := cached.(*tmdbTitleResponse); ok {
			meta := title.toMetadata(mediaType, s.genres)
			return &meta, true
		}
	}

	title, err := s.tmdb.fetchDetails(ctx, mediaType, externalID)
	if err != nil {
		log.Printf("[metadata] details fetch failed %s/%s: %v", mediaType, externalID, err)
		return nil, false
	}

	s.cache.set(key, title)
	meta := title.toMetadata(mediaType, s.genres)
	return &meta, true
}

// Trending returns the provider's daily trending feed for a media type,
// memoized under the metadata TTL.
func (s *Service) Trending(ctx context.Context, mediaType string) ([]models.TrendingItem, error) {
	if !models.ValidMediaType(mediaType) {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}

	key := "trending:" + mediaType
	if cached, ok := s.cache.get(key); ok {
		if items, ok := cached.([]models.TrendingItem); ok {
			return items, nil
		}
	}

	titles, err := s.tmdb.fetchTrending(ctx, mediaType)
	if err != nil {
		return nil, fmt.Errorf("fetch trending: %w", err)
	}

	items := make([]models.TrendingItem, 0, len(titles))
	for i := range titles {
		meta := titles[i].toMetadata(mediaType, s.genres)
		items = append(items, models.TrendingItem{
			ExternalID:  meta.ExternalID,
			MediaType:   mediaType,
			Title:       meta.Title,
			PosterPath:  meta.PosterPath,
			ReleaseYear: meta.ReleaseYear,
			GenreNames:  meta.GenreNames,
			VoteAverage: meta.VoteAverage,
		})
	}

	s.cache.set(key, items)
	return items, nil
}

// Search proxies the provider's title search, memoized per query under the
// metadata TTL.
func (s *Service) Search(ctx context.Context, mediaType, query string) ([]models.SearchResult, error) {
	if !models.ValidMediaType(mediaType) {
		return nil, fmt.Errorf("unsupported media type %q", mediaType)
	}
	if query == "" {
		return []models.SearchResult{}, nil
	}

	key := "search:" + mediaType + ":" + query
	if cached, ok := s.cache.get(key); ok {
		if results, ok := cached.([]models.SearchResult); ok {
			return results, nil
		}
	}

	titles, err := s.tmdb.fetchSearch(ctx, mediaType, query)
	if err != nil {
		return nil, fmt.Errorf("search titles: %w", err)
	}

	results := make([]models.SearchResult, 0, len(titles))
	for i := range titles {
		meta := titles[i].toMetadata(mediaType, s.genres)
		results = append(results, models.SearchResult{
			ExternalID:  meta.ExternalID,
			MediaType:   mediaType,
			Title:       meta.Title,
			PosterPath:  meta.PosterPath,
			ReleaseYear: meta.ReleaseYear,
			GenreNames:  meta.GenreNames,
		})
	}

	s.cache.set(key, results)
	return results, nil
}

// GenreName resolves a genre id to its display name for a media type.
func (s *Service) GenreName(mediaType string, id int64) string {
	return s.genres.Name(mediaType, id)
}

func (s *Service) sweepLoop(ttl time.Duration) {
	ticker := time.NewTicker(ttl)
	defer ticker.Stop()
	for range ticker.C {
		s.cache.sweep()
	}
}

func detailsCacheKey(mediaType, externalID string) string {
	return mediaType + ":" + externalID
}
