package recommend

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mozillazg/go-unidecode"

	"reelscout/models"
)

var ErrUserIDRequired = errors.New("user id is required")

// Reason is attached to every recommendation. There is no scoring engine;
// recommendations are the trending feed minus what the user already saved.
const Reason = "Because it's trending now"

// defaultLimit caps how many recommendations a single call returns.
const defaultLimit = 20

// Trender supplies the provider's trending feed.
type Trender interface {
	Trending(ctx context.Context, mediaType string) ([]models.TrendingItem, error)
}

// FavoritesLister supplies a user's stored favorites.
type FavoritesLister interface {
	List(ctx context.Context, userID string) ([]models.EnrichedFavorite, error)
}

// Service produces recommendations for a user by filtering the trending
// feed against their favorites.
type Service struct {
	trending  Trender
	favorites FavoritesLister
}

// NewService creates a recommendation service over the given sources.
func NewService(trending Trender, favorites FavoritesLister) *Service {
	return &Service{trending: trending, favorites: favorites}
}

// ForUser returns trending titles the user has not already favorited.
// Already-saved items are matched by external id and, as a fallback for
// items saved from a different provider listing, by normalized title.
func (s *Service) ForUser(ctx context.Context, userID string) ([]models.Recommendation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, ErrUserIDRequired
	}

	favorites, err := s.favorites.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}

	seenIDs := make(map[string]bool, len(favorites))
	seenTitles := make(map[string]bool, len(favorites))
	for _, fav := range favorites {
		seenIDs[fav.MediaType+":"+fav.ExternalID] = true
		if fav.Title != "" && fav.Title != models.PlaceholderTitle {
			seenTitles[normalizeTitle(fav.Title)] = true
		}
	}

	var recs []models.Recommendation
	for _, mediaType := range []string{models.MediaTypeMovie, models.MediaTypeTV} {
		items, err := s.trending.Trending(ctx, mediaType)
		if err != nil {
			return nil, fmt.Errorf("fetch trending %s: %w", mediaType, err)
		}
		for _, item := range items {
			if seenIDs[item.MediaType+":"+item.ExternalID] {
				continue
			}
			if item.Title != "" && seenTitles[normalizeTitle(item.Title)] {
				continue
			}
			recs = append(recs, models.Recommendation{TrendingItem: item, Reason: Reason})
			if len(recs) >= defaultLimit {
				return recs, nil
			}
		}
	}

	return recs, nil
}

// normalizeTitle folds a title to lowercase ASCII so the same work saved
// under transliterated or accented names still matches.
func normalizeTitle(title string) string {
	return strings.Join(strings.Fields(strings.ToLower(unidecode.Unidecode(title))), " ")
}
