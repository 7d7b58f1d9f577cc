package favorites

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
	ErrFavoriteExists    = errors.New("favorite already exists")
	ErrFavoriteNotFound  = errors.New("favorite not found")
)

// enrichWorkers caps concurrent provider fetches during a single List call.
const enrichWorkers = 8

// Repository is the persistence surface the service needs.
type Repository interface {
	Insert(ctx context.Context, fav *models.Favorite) error
	ListByUser(ctx context.Context, userID string) ([]models.Favorite, error)
	Delete(ctx context.Context, userID, id string) error
	Update(ctx context.Context, userID, id string, patch models.FavoritePatch) (*models.Favorite, error)
}

// Fetcher resolves display metadata for a content item. ok=false means the
// provider could not supply data; callers fall back to placeholders.
type Fetcher interface {
	GetMetadata(ctx context.Context, mediaType, externalID string) (*models.Metadata, bool)
}

// Service implements favorites CRUD with read-time enrichment. Enrichment
// is best effort throughout: a provider outage never fails a CRUD
// operation or drops an item from a listing.
type Service struct {
	repo    Repository
	fetcher Fetcher
}

// NewService creates a favorites service over the given repository and
// metadata fetcher.
func NewService(repo Repository, fetcher Fetcher) *Service {
	return &Service{repo: repo, fetcher: fetcher}
}

// Add persists a new favorite and returns it enriched. Adding an external
// id the user already has returns ErrFavoriteExists; the stored record is
// left untouched.
func (s *Service) Add(ctx context.Context, userID, externalID, mediaType string) (models.EnrichedFavorite, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.EnrichedFavorite{}, ErrUserIDRequired
	}
	externalID = strings.TrimSpace(externalID)
	if externalID == "" {
		return models.EnrichedFavorite{}, ErrIDRequired
	}
	if !models.ValidMediaType(mediaType) {
		return models.EnrichedFavorite{}, ErrMediaTypeRequired
	}

	fav := models.Favorite{
		ID:         uuid.NewString(),
		UserID:     userID,
		ExternalID: externalID,
		MediaType:  mediaType,
		AddedAt:    time.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, &fav); err != nil {
		if errors.Is(err, database.ErrDuplicate) {
			return models.EnrichedFavorite{}, ErrFavoriteExists
		}
		return models.EnrichedFavorite{}, fmt.Errorf("add favorite: %w", err)
	}

	return s.enrich(ctx, fav), nil
}

// List returns all of the user's favorites in insertion order, each
// enriched independently. Enrichment runs concurrently but results are
// reassembled in stored order, and one failed fetch only affects its own
// item.
func (s *Service) List(ctx context.Context, userID string) ([]models.EnrichedFavorite, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	favorites, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	enriched := make([]models.EnrichedFavorite, len(favorites))
	p := pool.New().WithMaxGoroutines(enrichWorkers)
	for i := range favorites {
		p.Go(func() {
			enriched[i] = s.enrich(ctx, favorites[i])
		})
	}
	p.Wait()

	return enriched, nil
}

// Remove deletes the favorite with the given id if the user owns it.
// Ownership check and delete are one conditional statement in the store.
func (s *Service) Remove(ctx context.Context, userID, favoriteID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return ErrUserIDRequired
	}
	favoriteID = strings.TrimSpace(favoriteID)
	if favoriteID == "" {
		return ErrFavoriteNotFound
	}

	err := s.repo.Delete(ctx, userID, favoriteID)
	if errors.Is(err, database.ErrNotFound) {
		return ErrFavoriteNotFound
	}
	if err != nil {
		return fmt.Errorf("remove favorite: %w", err)
	}
	return nil
}

// Update applies the patch to the favorite with the given id if the user
// owns it, returning the enriched updated record. Only fields present in
// the patch change; AddedAt is immutable.
func (s *Service) Update(ctx context.Context, userID, favoriteID string, patch models.FavoritePatch) (models.EnrichedFavorite, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.EnrichedFavorite{}, ErrUserIDRequired
	}
	favoriteID = strings.TrimSpace(favoriteID)
	if favoriteID == "" {
		return models.EnrichedFavorite{}, ErrFavoriteNotFound
	}
	if patch.MediaType != nil && !models.ValidMediaType(*patch.MediaType) {
		return models.EnrichedFavorite{}, ErrMediaTypeRequired
	}

	fav, err := s.repo.Update(ctx, userID, favoriteID, patch)
	if errors.Is(err, database.ErrNotFound) {
		return models.EnrichedFavorite{}, ErrFavoriteNotFound
	}
	if err != nil {
		return models.EnrichedFavorite{}, fmt.Errorf("update favorite: %w", err)
	}

	return s.enrich(ctx, *fav), nil
}

func (s *Service) enrich(ctx context.Context, fav models.Favorite) models.EnrichedFavorite {
	if s.fetcher == nil {
		return fav.Enrich(nil)
	}
	meta, ok := s.fetcher.GetMetadata(ctx, fav.MediaType, fav.ExternalID)
	if !ok {
		log.Printf("[favorites] enrichment unavailable for %s/%s, using placeholder",
			fav.MediaType, fav.ExternalID)
		return fav.Enrich(nil)
	}
	return fav.Enrich(meta)
}
