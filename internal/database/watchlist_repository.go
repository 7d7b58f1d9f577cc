package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"reelscout/models"
)

// WatchlistRepository persists watchlist entries, one per
// (user_id, external_id).
type WatchlistRepository struct {
	db *sql.DB
}

// NewWatchlistRepository creates a repository backed by the given connection.
func NewWatchlistRepository(db *sql.DB) *WatchlistRepository {
	return &WatchlistRepository{db: db}
}

// Upsert stores the entry, updating media type, watched flag, and UpdatedAt
// in place when the user already has the external id on their watchlist.
// AddedAt is preserved on update.
func (r *WatchlistRepository) Upsert(ctx context.Context, item *models.WatchlistItem) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO watchlist (id, user_id, external_id, media_type, watched, added_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, external_id) DO UPDATE SET
			media_type = excluded.media_type,
			watched = excluded.watched,
			updated_at = excluded.updated_at`,
		item.ID, item.UserID, item.ExternalID, item.MediaType,
		item.Watched, item.AddedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert watchlist item: %w", err)
	}
	return nil
}

// GetByExternalID returns the user's watchlist entry for an external id.
func (r *WatchlistRepository) GetByExternalID(ctx context.Context, userID, externalID string) (*models.WatchlistItem, error) {
	var item models.WatchlistItem
	err := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, external_id, media_type, watched, added_at, updated_at
		FROM watchlist
		WHERE user_id = ? AND external_id = ?`,
		userID, externalID,
	).Scan(&item.ID, &item.UserID, &item.ExternalID, &item.MediaType,
		&item.Watched, &item.AddedAt, &item.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get watchlist item: %w", err)
	}
	return &item, nil
}

// ListByUser returns all watchlist entries owned by userID in insertion order.
func (r *WatchlistRepository) ListByUser(ctx context.Context, userID string) ([]models.WatchlistItem, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, external_id, media_type, watched, added_at, updated_at
		FROM watchlist
		WHERE user_id = ?
		ORDER BY added_at, id`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("list watchlist: %w", err)
	}
	defer rows.Close()

	var items []models.WatchlistItem
	for rows.Next() {
		var item models.WatchlistItem
		if err := rows.Scan(&item.ID, &item.UserID, &item.ExternalID, &item.MediaType,
			&item.Watched, &item.AddedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan watchlist item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watchlist: %w", err)
	}

	return items, nil
}

// Delete removes the entry for (userID, externalID, mediaType) and reports
// whether anything was removed.
func (r *WatchlistRepository) Delete(ctx context.Context, userID, externalID, mediaType string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		DELETE FROM watchlist WHERE user_id = ? AND external_id = ? AND media_type = ?`,
		userID, externalID, mediaType,
	)
	if err != nil {
		return false, fmt.Errorf("delete watchlist item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete watchlist rows affected: %w", err)
	}
	return affected > 0, nil
}
