package main

import (
	"database/sql"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/quotebook/internal/bot"
	"github.com/hpungsan/quotebook/internal/capture"
	"github.com/hpungsan/quotebook/internal/config"
	"github.com/hpungsan/quotebook/internal/ingest"
	"github.com/hpungsan/quotebook/internal/notify"
	"github.com/hpungsan/quotebook/internal/ops"
	"github.com/hpungsan/quotebook/internal/recency"
)

// env is the wired application shared by every command.
type env struct {
	db       *sql.DB
	cfg      *config.Config
	pipeline *capture.Pipeline
	selector *ops.Selector
	bot      *bot.Bot
}

// newEnv wires storage, ingestion, selection and the command dispatcher.
func newEnv(database *sql.DB, cfg *config.Config) (*env, error) {
	if err := ingest.EnsureDataDir(cfg.DataDir); err != nil {
		log.Warn().Err(err).Str("data_dir", cfg.DataDir).Msg("data directory unavailable")
	}

	cache, err := recency.New(cfg.RecencyCache, database)
	if err != nil {
		return nil, err
	}

	sinks := notify.Multi{notify.Log{}}
	if cfg.NotifyWebhook != "" {
		sinks = append(sinks, notify.NewWebhook(cfg.NotifyWebhook, cfg.FetchTimeout()))
	}
	notifier := bot.TextNotifier{Next: sinks}

	janitor := ingest.NewJanitor(database, cfg.DataDir, cfg.CleanupDelay(), notifier)
	pipeline := capture.NewPipeline(capture.Deps{
		DB:       database,
		Config:   cfg,
		Fetcher:  ingest.NewHTTPFetcher(cfg.FetchTimeout()),
		Janitor:  janitor,
		Notifier: notifier,
	})
	selector := ops.NewSelector(database, cfg, cache, janitor)

	return &env{
		db:       database,
		cfg:      cfg,
		pipeline: pipeline,
		selector: selector,
		bot:      bot.New(database, cfg, pipeline, selector),
	}, nil
}

// drain waits for in-flight ingests and scheduled cleanups. The pipeline
// shares its janitor with the selector, so one wait covers both.
func (e *env) drain() {
	e.pipeline.Wait()
}
