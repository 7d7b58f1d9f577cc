package metadata

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/avast/retry-go/v4"

	"reelscout/models"
)

// UnknownGenre is the name reported for genre ids the cache cannot resolve.
const UnknownGenre = "Unknown"

// genreCache holds the provider's genre id-to-name maps for movies and
// series. It is populated once at startup and read-only afterwards; the
// provider's genre lists change rarely enough that no refresh runs during
// the process lifetime.
type genreCache struct {
	mu     sync.RWMutex
	genres map[string]map[int64]string // mediaType -> id -> name
}

func newGenreCache() *genreCache {
	return &genreCache{
		genres: map[string]map[int64]string{
			models.MediaTypeMovie: {},
			models.MediaTypeTV:    {},
		},
	}
}

// initialize fetches the movie and TV genre lists concurrently. Each fetch
// is retried a few times; on final failure the map for that media type
// stays empty and lookups degrade to UnknownGenre. Startup never fails on
// provider unavailability.
func (gc *genreCache) initialize(ctx context.Context, client *tmdbClient) {
	if client == nil || !client.isConfigured() {
		log.Printf("[metadata] genre cache disabled: provider not configured")
		return
	}

	var wg sync.WaitGroup
	for _, mediaType := range []string{models.MediaTypeMovie, models.MediaTypeTV} {
		wg.Add(1)
		go func(mediaType string) {
			defer wg.Done()

			genres, err := retry.DoWithData(
				func() (map[int64]string, error) {
					return client.fetchGenreList(ctx, mediaType)
				},
				retry.Context(ctx),
				retry.Attempts(3),
				retry.Delay(500*time.Millisecond),
				retry.LastErrorOnly(true),
			)
			if err != nil {
				log.Printf("[metadata] failed to load %s genre list, names degrade to %q: %v",
					mediaType, UnknownGenre, err)
				return
			}

			gc.mu.Lock()
			gc.genres[mediaType] = genres
			gc.mu.Unlock()
			log.Printf("[metadata] loaded %d %s genres", len(genres), mediaType)
		}(mediaType)
	}
	wg.Wait()
}

// Name resolves a single genre id for a media type.
func (gc *genreCache) Name(mediaType string, id int64) string {
	gc.mu.RLock()
	defer gc.mu.RUnlock()

	if names, ok := gc.genres[mediaType]; ok {
		if name, ok := names[id]; ok {
			return name
		}
	}
	return UnknownGenre
}

// Names resolves a list of genre ids, preserving order.
func (gc *genreCache) Names(mediaType string, ids []int64) []string {
	names := make([]string, 0, len(ids))
	for _, id := range ids {
		names = append(names, gc.Name(mediaType, id))
	}
	return names
}
