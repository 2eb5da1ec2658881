package db

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/hpungsan/quotebook/internal/errors"
	"github.com/hpungsan/quotebook/internal/quote"
)

const quoteColumns = `id, content, time, origin_message_id, tags, group_id`

// Insert stores a new quote and sets q.ID to the assigned id.
func Insert(ctx context.Context, db *sql.DB, q *quote.Quote) error {
	query := `
		INSERT INTO quotes (content, time, origin_message_id, tags, group_id)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := db.ExecContext(ctx, query,
		q.Content, q.Time.UnixMilli(), q.OriginMessageID, q.Tags.String(), q.Group,
	)
	if err != nil {
		return errors.NewInternal(err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return errors.NewInternal(err)
	}
	q.ID = id

	return nil
}

// GetByID retrieves a quote by id.
func GetByID(ctx context.Context, db *sql.DB, id int64) (*quote.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE id = ?`

	q, err := scanQuote(db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound(strconv.FormatInt(id, 10))
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return q, nil
}

// GetByOriginMessageID retrieves the oldest quote originating from messageID.
func GetByOriginMessageID(ctx context.Context, db *sql.DB, messageID string) (*quote.Quote, error) {
	if messageID == "" {
		return nil, errors.NewNotFound("empty message id")
	}

	query := `SELECT ` + quoteColumns + ` FROM quotes WHERE origin_message_id = ? ORDER BY id LIMIT 1`

	q, err := scanQuote(db.QueryRowContext(ctx, query, messageID))
	if err == sql.ErrNoRows {
		return nil, errors.NewNotFound("message " + messageID)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return q, nil
}

// QueryFilters narrows Query results. A nil Group means every scope.
type QueryFilters struct {
	Group *string
}

// Query returns quotes matching filters, ordered by id.
func Query(ctx context.Context, db *sql.DB, filters QueryFilters) ([]quote.Quote, error) {
	query := `SELECT ` + quoteColumns + ` FROM quotes`
	var args []any
	if filters.Group != nil {
		query += ` WHERE group_id = ?`
		args = append(args, *filters.Group)
	}
	query += ` ORDER BY id`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var quotes []quote.Quote
	for rows.Next() {
		q, err := scanQuote(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		quotes = append(quotes, *q)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return quotes, nil
}

// UpdateTags replaces the serialized tag set of a quote.
func UpdateTags(ctx context.Context, db *sql.DB, id int64, tags quote.TagSet) error {
	return updateColumn(ctx, db, id, "tags", tags.String())
}

// UpdateOriginMessageID rewrites the origin message of a quote.
func UpdateOriginMessageID(ctx context.Context, db *sql.DB, id int64, messageID string) error {
	return updateColumn(ctx, db, id, "origin_message_id", messageID)
}

// updateColumn sets one column of a quote. column must be a trusted constant.
func updateColumn(ctx context.Context, db *sql.DB, id int64, column string, value any) error {
	query := fmt.Sprintf(`UPDATE quotes SET %s = ? WHERE id = ?`, column)

	result, err := db.ExecContext(ctx, query, value, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(strconv.FormatInt(id, 10))
	}

	return nil
}

// Delete permanently removes a quote.
func Delete(ctx context.Context, db *sql.DB, id int64) error {
	result, err := db.ExecContext(ctx, `DELETE FROM quotes WHERE id = ?`, id)
	if err != nil {
		return errors.NewInternal(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return errors.NewInternal(err)
	}
	if rowsAffected == 0 {
		return errors.NewNotFound(strconv.FormatInt(id, 10))
	}

	return nil
}

// Count returns the number of stored quotes.
func Count(ctx context.Context, db *sql.DB) (int, error) {
	var n int
	if err := db.QueryRowContext(ctx, `SELECT COUNT(*) FROM quotes`).Scan(&n); err != nil {
		return 0, errors.NewInternal(err)
	}
	return n, nil
}

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanQuote scans a single row into a Quote struct.
func scanQuote(row rowScanner) (*quote.Quote, error) {
	var (
		q        quote.Quote
		millis   int64
		tagsJSON string
	)

	err := row.Scan(&q.ID, &q.Content, &millis, &q.OriginMessageID, &tagsJSON, &q.Group)
	if err != nil {
		return nil, err
	}

	q.Time = time.UnixMilli(millis)

	tags, err := quote.ParseTagSet(tagsJSON)
	if err != nil {
		return nil, fmt.Errorf("quote %d: parse tags: %w", q.ID, err)
	}
	q.Tags = tags

	return &q, nil
}
