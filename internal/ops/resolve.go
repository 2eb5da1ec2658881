package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/quotebook/internal/chat"
	"github.com/hpungsan/quotebook/internal/db"
	"github.com/hpungsan/quotebook/internal/errors"
	"github.com/hpungsan/quotebook/internal/quote"
)

// ResolveQuoted returns the id of the quote a chat reply points at. The
// rendered "id:" prefix of the quoted text wins; otherwise the quoted message
// is looked up as the origin of a stored quote.
func ResolveQuoted(ctx context.Context, database *sql.DB, q *chat.Quote) (int64, error) {
	if q == nil {
		return 0, errors.NewMalformedReference("")
	}

	if id, ok := quote.ParseReference(q.Content); ok {
		return id, nil
	}

	found, err := db.GetByOriginMessageID(ctx, database, q.MessageID)
	if err == nil {
		return found.ID, nil
	}
	if !errors.Is(err, errors.ErrNotFound) {
		return 0, err
	}
	return 0, errors.NewMalformedReference(q.Content)
}
