package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelscout/models"
)

// FavoriteRepository persists favorites. Uniqueness of (user_id, external_id)
// is enforced by the schema, not by application-level checks.
type FavoriteRepository struct {
	db *sql.DB
}

// NewFavoriteRepository creates a repository backed by the given connection.
func NewFavoriteRepository(db *sql.DB) *FavoriteRepository {
	return &FavoriteRepository{db: db}
}

// Insert stores a new favorite. Returns ErrDuplicate when the user already
// has a favorite for the same external id.
func (r *FavoriteRepository) Insert(ctx context.Context, fav *models.Favorite) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO favorites (id, user_id, external_id, media_type, added_at)
		VALUES (?, ?, ?, ?, ?)`,
		fav.ID, fav.UserID, fav.ExternalID, fav.MediaType, fav.AddedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert favorite: %w", err)
	}
	return nil
}

// ListByUser returns all favorites owned by userID in insertion order.
func (r *FavoriteRepository) ListByUser(ctx context.Context, userID string) ([]models.Favorite, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, external_id, media_type, added_at
		FROM favorites
		WHERE user_id = ?
		ORDER BY added_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var favorites []models.Favorite
	for rows.Next() {
		var fav models.Favorite
		if err := rows.Scan(&fav.ID, &fav.UserID, &fav.ExternalID, &fav.MediaType, &fav.AddedAt); err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		favorites = append(favorites, fav)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}

	return favorites, nil
}

// Get returns the favorite with the given id owned by userID.
func (r *FavoriteRepository) Get(ctx context.Context, userID, id string) (*models.Favorite, error) {
	var fav models.Favorite
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, external_id, media_type, added_at
		FROM favorites
		WHERE id = ? AND user_id = ?`,
		id, userID,
	).Scan(&fav.ID, &fav.UserID, &fav.ExternalID, &fav.MediaType, &fav.AddedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get favorite: %w", err)
	}
	return &fav, nil
}

// Delete removes the favorite with the given id if it is owned by userID.
// The ownership check and the delete are a single conditional statement, so
// concurrent deletes of the same row cannot both succeed.
func (r *FavoriteRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete favorite rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Update applies the non-nil patch fields to the favorite with the given id
// if it is owned by userID, returning the updated record. AddedAt is never
// touched.
func (r *FavoriteRepository) Update(ctx context.Context, userID, id string, patch models.FavoritePatch) (*models.Favorite, error) {
	if patch.MediaType == nil {
		// Nothing to change; still enforce existence and ownership.
		return r.Get(ctx, userID, id)
	}

	res, err := r.db.ExecContext(ctx, `
		UPDATE favorites SET media_type = ? WHERE id = ? AND user_id = ?`,
		*patch.MediaType, id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("update favorite: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("update favorite rows affected: %w", err)
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return r.Get(ctx, userID, id)
}

// CountByUser returns the number of favorites stored for userID.
func (r *FavoriteRepository) CountByUser(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM favorites WHERE user_id = ?`,
		userID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count favorites: %w", err)
	}
	return count, nil
}
