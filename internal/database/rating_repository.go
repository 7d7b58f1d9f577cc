package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelscout/models"
)

// RatingRepository persists user ratings, one per (user_id, external_id).
type RatingRepository struct {
	db *sql.DB
}

// NewRatingRepository creates a repository backed by the given connection.
func NewRatingRepository(db *sql.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

// Upsert stores the rating, replacing any existing rating the user has for
// the same external id. RatedAt is preserved on replace; UpdatedAt moves.
func (r *RatingRepository) Upsert(ctx context.Context, rating *models.Rating) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO ratings (id, user_id, external_id, media_type, value, rated_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, external_id) DO UPDATE SET
			media_type = excluded.media_type,
			value = excluded.value,
			updated_at = excluded.updated_at`,
		rating.ID, rating.UserID, rating.ExternalID, rating.MediaType,
		rating.Value, rating.RatedAt, rating.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert rating: %w", err)
	}
	return nil
}

// GetByExternalID returns the user's rating for an external id, if any.
func (r *RatingRepository) GetByExternalID(ctx context.Context, userID, externalID string) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, external_id, media_type, value, rated_at, updated_at
		FROM ratings
		WHERE user_id = ? AND external_id = ?`,
		userID, externalID,
	).Scan(&rating.ID, &rating.UserID, &rating.ExternalID, &rating.MediaType,
		&rating.Value, &rating.RatedAt, &rating.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get rating: %w", err)
	}
	return &rating, nil
}

// ListByUser returns all ratings owned by userID in insertion order.
func (r *RatingRepository) ListByUser(ctx context.Context, userID string) ([]models.Rating, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, external_id, media_type, value, rated_at, updated_at
		FROM ratings
		WHERE user_id = ?
		ORDER BY rated_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ratings: %w", err)
	}
	defer rows.Close()

	var ratings []models.Rating
	for rows.Next() {
		var rating models.Rating
		if err := rows.Scan(&rating.ID, &rating.UserID, &rating.ExternalID, &rating.MediaType,
			&rating.Value, &rating.RatedAt, &rating.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan rating: %w", err)
		}
		ratings = append(ratings, rating)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ratings: %w", err)
	}

	return ratings, nil
}

// Delete removes the rating with the given id if it is owned by userID.
// Single conditional statement; returns ErrNotFound when nothing matched.
func (r *RatingRepository) Delete(ctx context.Context, userID, id string) error {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM ratings WHERE id = ? AND user_id = ?`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("delete rating: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete rating rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
