package ops

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/quotebook/internal/config"
	"github.com/hpungsan/quotebook/internal/db"
	"github.com/hpungsan/quotebook/internal/ingest"
	"github.com/hpungsan/quotebook/internal/notify"
	"github.com/hpungsan/quotebook/internal/quote"
	"github.com/hpungsan/quotebook/internal/recency"
)

// seqRand replays values, reducing each modulo n.
type seqRand struct {
	values []int
	i      int
}

func (r *seqRand) IntN(n int) int {
	v := r.values[r.i%len(r.values)]
	r.i++
	return v % n
}

type fixture struct {
	db       *sql.DB
	cfg      *config.Config
	cache    *recency.Memory
	notices  *notify.Recorder
	janitor  *ingest.Janitor
	selector *Selector
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	baseDir := t.TempDir()
	database, err := db.Init(baseDir)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	cfg := config.DefaultConfig()
	cfg.DataDir = filepath.Join(baseDir, "quotes")
	require.NoError(t, ingest.EnsureDataDir(cfg.DataDir))

	f := &fixture{db: database, cfg: cfg, cache: recency.NewMemory(), notices: &notify.Recorder{}}
	f.janitor = ingest.NewJanitor(database, cfg.DataDir, 0, f.notices)
	f.selector = NewSelector(database, cfg, f.cache, f.janitor)
	return f
}

// insert stores a text quote in group with extra tags.
func (f *fixture) insert(t *testing.T, group, content string, tags ...string) *quote.Quote {
	t.Helper()
	q := &quote.Quote{
		Content:         content,
		Time:            time.Now(),
		OriginMessageID: "origin-" + content,
		Tags:            quote.NewTagSet(append([]string{group}, tags...)...),
		Group:           group,
	}
	require.NoError(t, db.Insert(context.Background(), f.db, q))
	return q
}

// insertFile stores a file quote and writes size bytes as its attachment.
func (f *fixture) insertFile(t *testing.T, group string, size int) *quote.Quote {
	t.Helper()
	q := f.insert(t, group, quote.ImageMarker)
	require.NoError(t, os.WriteFile(quote.FilePath(f.cfg.DataDir, q.ID), make([]byte, size), 0o644))
	return q
}

func int64Ptr(v int64) *int64 { return &v }
