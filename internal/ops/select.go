package ops

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/hpungsan/quotebook/internal/db"
	"github.com/hpungsan/quotebook/internal/errors"
	"github.com/hpungsan/quotebook/internal/metrics"
	"github.com/hpungsan/quotebook/internal/quote"
)

// SelectInput contains parameters for the Select operation.
type SelectInput struct {
	ID       *int64   // exact lookup; filters and scope are ignored
	Scope    string   // required unless Global or ID is set
	User     string   // receives cleanup notices
	Global   bool     // search every scope
	WithTags bool     // include tags in the rendered quote
	List     bool     // list "id:tags" lines instead of picking one
	Page     int      // 1-based listing page
	Full     bool     // list from the page start to the end
	Filters  []string // regular expressions over the serialized tags
}

// SelectOutput contains the result of the Select operation. A pick or lookup
// fills Quote and Rendered; a listing fills Items and Page.
type SelectOutput struct {
	Quote    *quote.Quote    `json:"quote,omitempty"`
	Rendered string          `json:"rendered,omitempty"`
	Items    []quote.Summary `json:"items,omitempty"`
	Page     *Page           `json:"page,omitempty"`
	Draws    int             `json:"draws,omitempty"`
}

// Select looks up, lists or randomly picks quotes.
func (s *Selector) Select(ctx context.Context, input SelectInput) (*SelectOutput, error) {
	if input.ID != nil {
		return s.lookup(ctx, input)
	}
	if input.Scope == "" && !input.Global {
		return nil, errors.NewInvalidRequest("scope is required unless global is set")
	}

	filters := db.QueryFilters{}
	if !input.Global {
		filters.Group = &input.Scope
	}
	quotes, err := db.Query(ctx, s.db, filters)
	if err != nil {
		return nil, err
	}
	quotes = FilterByTags(quotes, input.Filters)
	if len(quotes) == 0 {
		return nil, errors.NewNotFound("no quote matches")
	}

	if input.List {
		return s.list(quotes, input), nil
	}
	return s.pick(ctx, quotes, input)
}

func (s *Selector) lookup(ctx context.Context, input SelectInput) (*SelectOutput, error) {
	q, err := db.GetByID(ctx, s.db, *input.ID)
	if err != nil {
		return nil, err
	}

	if input.List {
		return &SelectOutput{Items: []quote.Summary{q.ToSummary()}}, nil
	}

	if err := s.revalidate(q, input); err != nil {
		return nil, err
	}
	return &SelectOutput{Quote: q, Rendered: quote.Render(q, s.cfg.DataDir, input.WithTags)}, nil
}

func (s *Selector) list(quotes []quote.Quote, input SelectInput) *SelectOutput {
	start, end, page := Paginate(len(quotes), s.cfg.PageSize, input.Page, input.Full)

	items := make([]quote.Summary, 0, end-start)
	for i := start; i < end; i++ {
		items = append(items, quotes[i].ToSummary())
	}
	return &SelectOutput{Items: items, Page: &page}
}

// pick draws up to MaxDraws times. A draw that was shown recently in the
// scope is redrawn with probability LessRepetition percent; the last draw is
// kept regardless.
func (s *Selector) pick(ctx context.Context, quotes []quote.Quote, input SelectInput) (*SelectOutput, error) {
	lessRepetition := s.cfg.LessRepetitionPercent()

	var chosen *quote.Quote
	draws := 0
	for draws < MaxDraws {
		chosen = &quotes[s.rand.IntN(len(quotes))]
		draws++
		metrics.Draw()

		if s.cache == nil || !s.cache.Recent(ctx, input.Scope, chosen.ID) {
			break
		}
		if s.rand.IntN(100) >= lessRepetition {
			break
		}
		metrics.Repeat()
	}

	if err := s.revalidate(chosen, input); err != nil {
		return nil, err
	}

	if s.cache != nil {
		s.cache.Remember(ctx, input.Scope, chosen.ID, s.cfg.RecentTTL())
	}

	return &SelectOutput{
		Quote:    chosen,
		Rendered: quote.Render(chosen, s.cfg.DataDir, input.WithTags),
		Draws:    draws,
	}, nil
}

// revalidate checks the backing file of a file quote. A broken file schedules
// the quote for removal.
func (s *Selector) revalidate(q *quote.Quote, input SelectInput) error {
	if !q.IsLocalFile() {
		return nil
	}
	if err := s.validator.Check(quote.FilePath(s.cfg.DataDir, q.ID)); err != nil {
		log.Warn().Err(err).Int64("quote_id", q.ID).Msg("stored file failed revalidation")
		scope := input.Scope
		if scope == "" {
			scope = q.Group
		}
		s.janitor.Schedule(q.ID, scope, input.User)
		return err
	}
	return nil
}
