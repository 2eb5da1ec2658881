package db

import (
	"context"
	"database/sql"
	"time"

	"github.com/hpungsan/quotebook/internal/errors"
)

// IsRecent reports whether quoteID was surfaced in scope and has not expired.
func IsRecent(ctx context.Context, db *sql.DB, scope string, quoteID int64, now time.Time) (bool, error) {
	query := `
		SELECT 1 FROM recent_sends
		WHERE scope = ? AND quote_id = ? AND expires_at > ?
		LIMIT 1
	`

	var exists int
	err := db.QueryRowContext(ctx, query, scope, quoteID, now.UnixMilli()).Scan(&exists)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}

	return true, nil
}

// MarkRecent records quoteID as surfaced in scope until expiresAt.
func MarkRecent(ctx context.Context, db *sql.DB, scope string, quoteID int64, expiresAt time.Time) error {
	query := `
		INSERT INTO recent_sends (scope, quote_id, expires_at)
		VALUES (?, ?, ?)
		ON CONFLICT(scope, quote_id) DO UPDATE SET expires_at = excluded.expires_at
	`

	if _, err := db.ExecContext(ctx, query, scope, quoteID, expiresAt.UnixMilli()); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// PurgeExpiredRecent deletes expired recency entries and returns how many were removed.
func PurgeExpiredRecent(ctx context.Context, db *sql.DB, now time.Time) (int, error) {
	result, err := db.ExecContext(ctx, `DELETE FROM recent_sends WHERE expires_at <= ?`, now.UnixMilli())
	if err != nil {
		return 0, errors.NewInternal(err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return 0, errors.NewInternal(err)
	}
	return int(n), nil
}
