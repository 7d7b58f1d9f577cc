package watchlist

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"reelscout/models"
)

var (
	ErrUserIDRequired     = errors.New("user id is required")
	ErrIDRequired         = errors.New("external id is required")
	ErrMediaTypeRequired  = errors.New("media type must be movie or tv")
	ErrIdentifierRequired = errors.New("media type and external id are required")
)

const enrichWorkers = 8

// Repository is the persistence surface the service needs.
type Repository interface {
	Upsert(ctx context.Context, item *models.WatchlistItem) error
	GetByExternalID(ctx context.Context, userID, externalID string) (*models.WatchlistItem, error)
	ListByUser(ctx context.Context, userID string) ([]models.WatchlistItem, error)
	Delete(ctx context.Context, userID, externalID, mediaType string) (bool, error)
}

// Fetcher resolves display metadata for a content item.
type Fetcher interface {
	GetMetadata(ctx context.Context, mediaType, externalID string) (*models.Metadata, bool)
}

// Service manages per-user watchlists. Re-adding an external id updates
// the existing entry instead of duplicating it.
type Service struct {
	repo    Repository
	fetcher Fetcher
}

// NewService creates a watchlist service over the given repository and
// metadata fetcher.
func NewService(repo Repository, fetcher Fetcher) *Service {
	return &Service{repo: repo, fetcher: fetcher}
}

// AddOrUpdate inserts or updates a watchlist entry and returns it enriched.
// AddedAt is preserved across updates; the watched flag only changes when
// the upsert carries one.
func (s *Service) AddOrUpdate(ctx context.Context, userID string, input models.WatchlistUpsert) (models.EnrichedWatchlistItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.EnrichedWatchlistItem{}, ErrUserIDRequired
	}
	input.ExternalID = strings.TrimSpace(input.ExternalID)
	if input.ExternalID == "" {
		return models.EnrichedWatchlistItem{}, ErrIDRequired
	}
	if !models.ValidMediaType(input.MediaType) {
		return models.EnrichedWatchlistItem{}, ErrMediaTypeRequired
	}

	now := time.Now().UTC()
	item := models.WatchlistItem{
		ID:         uuid.NewString(),
		UserID:     userID,
		ExternalID: input.ExternalID,
		MediaType:  input.MediaType,
		AddedAt:    now,
		UpdatedAt:  now,
	}
	if input.Watched != nil {
		item.Watched = *input.Watched
	} else if existing, err := s.repo.GetByExternalID(ctx, userID, input.ExternalID); err == nil {
		item.Watched = existing.Watched
	}

	if err := s.repo.Upsert(ctx, &item); err != nil {
		return models.EnrichedWatchlistItem{}, fmt.Errorf("upsert watchlist item: %w", err)
	}

	stored, err := s.repo.GetByExternalID(ctx, userID, input.ExternalID)
	if err != nil {
		return models.EnrichedWatchlistItem{}, fmt.Errorf("read back watchlist item: %w", err)
	}

	return s.enrich(ctx, *stored), nil
}

// List returns the user's watchlist in insertion order, enriched
// concurrently with stored order preserved.
func (s *Service) List(ctx context.Context, userID string) ([]models.EnrichedWatchlistItem, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}

	enriched := make([]models.EnrichedWatchlistItem, len(items))
	p := pool.New().WithMaxGoroutines(enrichWorkers)
	for i := range items {
		p.Go(func() {
			enriched[i] = s.enrich(ctx, items[i])
		})
	}
	p.Wait()

	return enriched, nil
}

// Remove deletes the entry for (mediaType, externalID) from the user's
// watchlist and reports whether anything was removed.
func (s *Service) Remove(ctx context.Context, userID, mediaType, externalID string) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, ErrUserIDRequired
	}
	if strings.TrimSpace(mediaType) == "" || strings.TrimSpace(externalID) == "" {
		return false, ErrIdentifierRequired
	}

	removed, err := s.repo.Delete(ctx, userID, externalID, mediaType)
	if err != nil {
		return false, fmt.Errorf("remove watchlist item: %w", err)
	}
	return removed, nil
}

func (s *Service) enrich(ctx context.Context, item models.WatchlistItem) models.EnrichedWatchlistItem {
	if s.fetcher == nil {
		return item.Enrich(nil)
	}
	meta, ok := s.fetcher.GetMetadata(ctx, item.MediaType, item.ExternalID)
	if !ok {
		log.Printf("[watchlist] enrichment unavailable for %s/%s, using placeholder",
			item.MediaType, item.ExternalID)
		return item.Enrich(nil)
	}
	return item.Enrich(meta)
}
