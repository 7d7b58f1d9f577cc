package ratings

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sourcegraph/conc/pool"

	"reelscout/internal/database"
	"reelscout/models"
)

var (
	ErrUserIDRequired    = errors.New("user id is required")
	ErrIDRequired        = errors.New("external id is required")
	ErrMediaTypeRequired = errors.New("media type must be movie or tv")
	ErrValueOutOfRange   = errors.New("rating value must be between 0.5 and 10")
	ErrRatingNotFound    = errors.New("rating not found")
)

const enrichWorkers = 8

// Repository is the persistence surface the service needs.
type Repository interface {
	Upsert(ctx context.Context, rating *models.Rating) error
	GetByExternalID(ctx context.Context, userID, externalID string) (*models.Rating, error)
	ListByUser(ctx context.Context, userID string) ([]models.Rating, error)
	Delete(ctx context.Context, userID, id string) error
}

// Fetcher resolves display metadata for a content item.
type Fetcher interface {
	GetMetadata(ctx context.Context, mediaType, externalID string) (*models.Metadata, bool)
}

// Service manages user ratings with read-time enrichment. Setting a rating
// for an already-rated title updates it in place rather than failing.
type Service struct {
	repo    Repository
	fetcher Fetcher
}

// NewService creates a ratings service over the given repository and
// metadata fetcher.
func NewService(repo Repository, fetcher Fetcher) *Service {
	return &Service{repo: repo, fetcher: fetcher}
}

// Set stores or replaces the user's rating for an external id and returns
// the enriched record. RatedAt survives replacement; UpdatedAt moves.
func (s *Service) Set(ctx context.Context, userID, externalID, mediaType string, value float64) (models.EnrichedRating, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.EnrichedRating{}, ErrUserIDRequired
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return models.EnrichedRating{}, ErrIDRequired
	}
	if !models.ValidMediaType(mediaType) {
		return models.EnrichedRating{}, ErrMediaTypeRequired
	}
	if value < 0.5 || value > 10 {
		return models.EnrichedRating{}, ErrValueOutOfRange
	}

	now := time.Now().UTC()
	rating := models.Rating{
		ID:         uuid.NewString(),
		UserID:     userID,
		ExternalID: externalID,
		MediaType:  mediaType,
		Value:      value,
		RatedAt:    now,
		UpdatedAt:  now,
	}

	if err := s.repo.Upsert(ctx, &rating); err != nil {
		return models.EnrichedRating{}, fmt.Errorf("set rating: %w", err)
	}

	// The upsert may have kept the existing row's id and RatedAt; read back
	// what was actually stored.
	stored, err := s.repo.GetByExternalID(ctx, userID, externalID)
	if err != nil {
		return models.EnrichedRating{}, fmt.Errorf("read back rating: %w", err)
	}

	return s.enrich(ctx, *stored), nil
}

// List returns all of the user's ratings in insertion order, enriched
// concurrently with stored order preserved.
func (s *Service) List(ctx context.Context, userID string) ([]models.EnrichedRating, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	ratings, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}

	enriched := make([]models.EnrichedRating, len(ratings))
	p := pool.New().WithMaxGoroutines(enrichWorkers)
	for i := range ratings {
		p.Go(func() {
			enriched[i] = s.enrich(ctx, ratings[i])
		})
	}
	p.Wait()

	return enriched, nil
}

// Remove deletes the rating with the given id if the user owns it.
func (s *Service) Remove(ctx context.Context, userID, ratingID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	ratingID = strings.TrimSpace(ratingID)
	if ratingID == "" {
		return ErrRatingNotFound
	}

	err := s.repo.Delete(ctx, userID, ratingID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrRatingNotFound
	}
	if err != nil {
		return fmt.Errorf("remove rating: %w", err)
	}
	return nil
}

func (s *Service) enrich(ctx context.Context, rating models.Rating) models.EnrichedRating {
	if s.fetcher == nil {
		return rating.Enrich(nil)
	}
	meta, ok := s.fetcher.GetMetadata(ctx, rating.MediaType, rating.ExternalID)
	if !ok {
		log.Printf("[ratings] enrichment unavailable for %s/%s, using placeholder",
			rating.MediaType, rating.ExternalID)
		return rating.Enrich(nil)
	}
	return rating.Enrich(meta)
}
