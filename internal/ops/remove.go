package ops

import (
	"context"
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/quotebook/internal/db"
	"github.com/hpungsan/quotebook/internal/ingest"
)

// RemoveOutput contains the result of the Remove operation.
type RemoveOutput struct {
	Removed bool  `json:"removed"`
	ID      int64 `json:"id"`
}

// Remove permanently deletes quote id and its attachment.
func Remove(ctx context.Context, database *sql.DB, dataDir string, id int64) (*RemoveOutput, error) {
	// Verify it exists (GetByID will return ErrNotFound if not)
	if _, err := db.GetByID(ctx, database, id); err != nil {
		return nil, err
	}

	if err := ingest.RemoveFile(dataDir, id); err != nil {
		log.Warn().Err(err).Int64("quote_id", id).Msg("remove quote file")
	}

	if err := db.Delete(ctx, database, id); err != nil {
		return nil, err
	}

	return &RemoveOutput{Removed: true, ID: id}, nil
}
