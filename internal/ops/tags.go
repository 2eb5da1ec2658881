package ops

import (
	"context"
	"database/sql"

	"github.com/hpungsan/quotebook/internal/db"
	"github.com/hpungsan/quotebook/internal/errors"
)

// TagsOutput contains the result of AddTags and RemoveTags.
type TagsOutput struct {
	ID    int64    `json:"id"`
	Count int      `json:"count"`
	Tags  []string `json:"tags"`
}

// AddTags appends the tags not already on quote id and reports how many were
// added. Duplicates are skipped silently.
func AddTags(ctx context.Context, database *sql.DB, id int64, tags []string) (*TagsOutput, error) {
	if len(tags) == 0 {
		return nil, errors.NewInvalidRequest("no tags given")
	}

	q, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}

	n := q.Tags.Add(tags...)
	if n > 0 {
		if err := db.UpdateTags(ctx, database, id, q.Tags); err != nil {
			return nil, err
		}
	}

	return &TagsOutput{ID: id, Count: n, Tags: q.Tags.Slice()}, nil
}

// RemoveTags drops the given tags from quote id and reports how many were
// removed. The scope tag is never removed.
func RemoveTags(ctx context.Context, database *sql.DB, id int64, tags []string) (*TagsOutput, error) {
	if len(tags) == 0 {
		return nil, errors.NewInvalidRequest("no tags given")
	}

	q, err := db.GetByID(ctx, database, id)
	if err != nil {
		return nil, err
	}

	removable := make([]string, 0, len(tags))
	for _, t := range tags {
		if t != q.Group {
			removable = append(removable, t)
		}
	}

	n := q.Tags.Remove(removable...)
	if n > 0 {
		if err := db.UpdateTags(ctx, database, id, q.Tags); err != nil {
			return nil, err
		}
	}

	return &TagsOutput{ID: id, Count: n, Tags: q.Tags.Slice()}, nil
}
