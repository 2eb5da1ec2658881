// Package ops implements the quote operations shared by the chat commands,
// the HTTP API, the MCP tools and the CLI.
package ops

import (
	"database/sql"
	"math/rand/v2"

	"github.com/hpungsan/quotebook/internal/config"
	"github.com/hpungsan/quotebook/internal/ingest"
	"github.com/hpungsan/quotebook/internal/recency"
)

// MaxDraws bounds the anti-repetition loop.
const MaxDraws = 10

// Rand draws uniform integers in [0, n).
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Selector answers lookups, listings and random picks.
type Selector struct {
	db        *sql.DB
	cfg       *config.Config
	cache     recency.Cache
	janitor   *ingest.Janitor
	validator ingest.Validator
	rand      Rand
}

// NewSelector creates a selector. A nil cache disables anti-repetition.
func NewSelector(database *sql.DB, cfg *config.Config, cache recency.Cache, janitor *ingest.Janitor) *Selector {
	return &Selector{
		db:        database,
		cfg:       cfg,
		cache:     cache,
		janitor:   janitor,
		validator: ingest.Validator{MinBytes: int64(cfg.MinImageSize)},
		rand:      globalRand{},
	}
}

// SetRand replaces the random source.
func (s *Selector) SetRand(r Rand) {
	s.rand = r
}
