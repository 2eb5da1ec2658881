package ingest

import (
	"context"
	"database/sql"
	"os"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/quotebook/internal/db"
	"github.com/hpungsan/quotebook/internal/metrics"
	"github.com/hpungsan/quotebook/internal/notify"
	"github.com/hpungsan/quotebook/internal/quote"
)

// Janitor removes quotes whose attachment is broken. Removal is delayed and,
// once scheduled, always runs; nothing cancels it.
type Janitor struct {
	db       *sql.DB
	dataDir  string
	delay    time.Duration
	notifier notify.Notifier

	sleep func(time.Duration)
	wg    sync.WaitGroup
}

// NewJanitor creates a janitor that waits delay before removing a quote.
func NewJanitor(database *sql.DB, dataDir string, delay time.Duration, notifier notify.Notifier) *Janitor {
	return &Janitor{
		db:       database,
		dataDir:  dataDir,
		delay:    delay,
		notifier: notifier,
		sleep:    time.Sleep,
	}
}

// Schedule tells the requester that quote id is broken and removes the quote
// and its file after the configured delay.
func (j *Janitor) Schedule(id int64, scope, user string) {
	ctx := context.Background()
	log.Warn().Int64("quote_id", id).Str("scope", scope).Msg("quote file is broken, removing")

	notice := notify.Notice{Kind: notify.KindDownloadFailed, QuoteID: id, Scope: scope, User: user}
	if q, err := db.GetByID(ctx, j.db, id); err == nil {
		notice.Tags = q.Tags.Slice()
	}
	j.notifier.Notify(ctx, notice)

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		j.sleep(j.delay)

		if err := RemoveFile(j.dataDir, id); err != nil {
			log.Warn().Err(err).Int64("quote_id", id).Msg("remove quote file")
		}
		if err := db.Delete(ctx, j.db, id); err != nil {
			// Already gone through another path
			log.Warn().Err(err).Int64("quote_id", id).Msg("remove quote record")
		}
		metrics.Cleanup()
		j.notifier.Notify(ctx, notify.Notice{Kind: notify.KindRemoved, QuoteID: id, Scope: scope, User: user})
	}()
}

// Wait blocks until every scheduled removal has run.
func (j *Janitor) Wait() {
	j.wg.Wait()
}

// RemoveFile deletes the attachment of quote id. A missing file is not an error.
func RemoveFile(dataDir string, id int64) error {
	err := os.Remove(quote.FilePath(dataDir, id))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
