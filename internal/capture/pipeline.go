package capture

import (
	"context"
	"database/sql"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/quotebook/internal/chat"
	"github.com/hpungsan/quotebook/internal/config"
	"github.com/hpungsan/quotebook/internal/db"
	"github.com/hpungsan/quotebook/internal/errors"
	"github.com/hpungsan/quotebook/internal/ingest"
	"github.com/hpungsan/quotebook/internal/metrics"
	"github.com/hpungsan/quotebook/internal/notify"
	"github.com/hpungsan/quotebook/internal/quote"
)

// Annotator derives extra tags from a downloaded attachment.
type Annotator interface {
	Annotate(ctx context.Context, path string) ([]string, error)
}

// Outcome reports what HandleMessage did with a message.
type Outcome int

const (
	// Ignored means no waiting capture matched the message.
	Ignored Outcome = iota
	// Cancelled means the message cancelled a waiting capture.
	Cancelled
	// Started means the message's attachment is being ingested.
	Started
)

// Deps are the collaborators of a Pipeline. Annotator is optional.
type Deps struct {
	DB        *sql.DB
	Config    *config.Config
	Fetcher   ingest.Fetcher
	Janitor   *ingest.Janitor
	Notifier  notify.Notifier
	Annotator Annotator
}

// Pipeline drives capture entries from request to stored quote.
type Pipeline struct {
	db        *sql.DB
	cfg       *config.Config
	registry  *Registry
	fetcher   ingest.Fetcher
	validator ingest.Validator
	retry     ingest.RetryPolicy
	janitor   *ingest.Janitor
	notifier  notify.Notifier
	annotator Annotator
	now       func() time.Time

	wg sync.WaitGroup
}

// NewPipeline creates a pipeline with an empty registry.
func NewPipeline(d Deps) *Pipeline {
	return &Pipeline{
		db:        d.DB,
		cfg:       d.Config,
		registry:  NewRegistry(),
		fetcher:   d.Fetcher,
		validator: ingest.Validator{MinBytes: int64(d.Config.MinImageSize), MaxBytes: d.Config.MaxImageBytes()},
		retry:     ingest.RetryPolicy{MaxRetries: uint64(d.Config.RetryAttempts), Delay: d.Config.RetryDelay()},
		janitor:   d.Janitor,
		notifier:  d.Notifier,
		annotator: d.Annotator,
		now:       time.Now,
	}
}

// Registry exposes the working set.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Request registers a capture for the sender of msg. The next attachment the
// sender posts in the same scope becomes a quote tagged with tags.
func (p *Pipeline) Request(msg *chat.Message, tags []string) (Entry, error) {
	return p.registry.Register(msg.Scope(), msg.UserID, msg.ID, p.now(), tags)
}

// HandleMessage reconciles msg with the sender's waiting capture, then purges
// finished entries. Ingestion continues in the background after it returns.
func (p *Pipeline) HandleMessage(ctx context.Context, msg *chat.Message) Outcome {
	defer p.registry.Purge()

	e, ok := p.registry.Lookup(msg.Scope(), msg.UserID)
	if !ok || e.State != StateWait {
		return Ignored
	}

	if strings.TrimSpace(msg.Text()) == p.cfg.CancelKeyword {
		if p.registry.Transition(e.ID, e.Scope, e.User, StateFinished) {
			metrics.Ingest(metrics.OutcomeCancelled)
			return Cancelled
		}
		return Ignored
	}

	img, ok := msg.FirstImage()
	if !ok {
		return Ignored
	}
	if !p.registry.Transition(e.ID, e.Scope, e.User, StatePending) {
		return Ignored
	}

	ctx = context.WithoutCancel(ctx)
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.ingest(ctx, e, msg.ID, img.Src)
	}()
	return Started
}

// Wait blocks until in-flight ingestions and their cleanups finish.
func (p *Pipeline) Wait() {
	p.wg.Wait()
	p.janitor.Wait()
}

// ingest stores the attachment at src for entry e. Every path ends with the
// entry finished.
func (p *Pipeline) ingest(ctx context.Context, e Entry, attachmentMessageID, src string) {
	defer p.registry.Transition(e.ID, e.Scope, e.User, StateFinished)

	logger := log.With().Str("scope", e.Scope).Str("user", e.User).Logger()

	q := &quote.Quote{
		Content:         src,
		Time:            e.Payload.Time,
		OriginMessageID: e.Payload.OriginMessageID,
		Tags:            e.Payload.Tags,
		Group:           e.Payload.Scope,
	}
	if err := db.Insert(ctx, p.db, q); err != nil {
		logger.Error().Err(err).Msg("create quote record")
		metrics.Ingest(metrics.OutcomeError)
		return
	}
	logger = logger.With().Int64("quote_id", q.ID).Logger()

	dest := quote.FilePath(p.cfg.DataDir, q.ID)
	retries, err := ingest.Download(ctx, p.fetcher, p.validator, p.retry, src, dest)
	if err != nil {
		logger.Warn().Err(err).Int("retries", retries).Msg("attachment failed integrity check")
		metrics.Ingest(metrics.OutcomeIntegrity)
		p.janitor.Schedule(q.ID, e.Scope, e.User)
		return
	}

	if size, err := p.validator.CheckSize(q.ID, dest); err != nil {
		if !errors.Is(err, errors.ErrSizeViolation) {
			logger.Warn().Err(err).Msg("attachment vanished after download")
			metrics.Ingest(metrics.OutcomeIntegrity)
			p.janitor.Schedule(q.ID, e.Scope, e.User)
			return
		}
		logger.Warn().Int64("bytes", size).Int64("max_bytes", p.validator.MaxBytes).Msg("attachment too large")
		if err := ingest.RemoveFile(p.cfg.DataDir, q.ID); err != nil {
			logger.Error().Err(err).Msg("remove oversized file")
		}
		if err := db.Delete(ctx, p.db, q.ID); err != nil {
			logger.Error().Err(err).Msg("remove oversized quote")
		}
		metrics.Ingest(metrics.OutcomeTooLarge)
		p.notifier.Notify(ctx, notify.Notice{Kind: notify.KindTooLarge, QuoteID: q.ID, Scope: e.Scope, User: e.User})
		return
	}

	if p.annotator != nil {
		p.annotate(ctx, q, dest)
	}

	if err := db.UpdateOriginMessageID(ctx, p.db, q.ID, attachmentMessageID); err != nil {
		logger.Error().Err(err).Msg("rewrite origin message")
	}

	metrics.Ingest(metrics.OutcomeCaptured)
	p.notifier.Notify(ctx, notify.Notice{Kind: notify.KindCaptured, QuoteID: q.ID, Scope: e.Scope, User: e.User})
}

func (p *Pipeline) annotate(ctx context.Context, q *quote.Quote, path string) {
	tags, err := p.annotator.Annotate(ctx, path)
	if err != nil {
		log.Warn().Err(err).Int64("quote_id", q.ID).Msg("annotate attachment")
		return
	}
	if q.Tags.Add(tags...) == 0 {
		return
	}
	if err := db.UpdateTags(ctx, p.db, q.ID, q.Tags); err != nil {
		log.Error().Err(err).Int64("quote_id", q.ID).Msg("store annotated tags")
	}
}
