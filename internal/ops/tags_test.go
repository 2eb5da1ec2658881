package ops

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/hpungsan/quotebook/internal/db"
	"github.com/hpungsan/quotebook/internal/errors"
)

func TestAddTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	q := f.insert(t, "42", "a", "cat")

	out, err := AddTags(ctx, f.db, q.ID, []string{"cat", "dog", "dog", "bird"})
	require.NoError(t, err)
	require.Equal(t, 2, out.Count)
	require.Equal(t, []string{"42", "cat", "dog", "bird"}, out.Tags)

	got, err := db.GetByID(ctx, f.db, q.ID)
	require.NoError(t, err)
	require.Equal(t, out.Tags, got.Tags.Slice())
}

func TestAddTags_Errors(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	q := f.insert(t, "42", "a")

	_, err := AddTags(ctx, f.db, q.ID, nil)
	require.True(t, errors.Is(err, errors.ErrInvalidRequest))

	_, err = AddTags(ctx, f.db, 999, []string{"x"})
	require.True(t, errors.Is(err, errors.ErrNotFound))
}

func TestRemoveTags(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	q := f.insert(t, "42", "a", "cat", "dog", "bird")

	out, err := RemoveTags(ctx, f.db, q.ID, []string{"dog", "fish", "42"})
	require.NoError(t, err)
	require.Equal(t, 1, out.Count)
	require.Equal(t, []string{"42", "cat", "bird"}, out.Tags, "scope tag survives and order is stable")

	got, err := db.GetByID(ctx, f.db, q.ID)
	require.NoError(t, err)
	require.Equal(t, out.Tags, got.Tags.Slice())
}

func TestTagMutations_SizeBounds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	q := f.insert(t, "42", "a", "x")

	proposals := [][]string{{"x"}, {"y", "y"}, {"z", "x", "w"}, {"42"}}
	size := q.Tags.Len()
	for _, p := range proposals {
		out, err := AddTags(ctx, f.db, q.ID, p)
		require.NoError(t, err)
		require.LessOrEqual(t, len(out.Tags), size+len(p))
		requireUnique(t, out.Tags)
		size = len(out.Tags)

		out, err = RemoveTags(ctx, f.db, q.ID, p[:1])
		require.NoError(t, err)
		require.LessOrEqual(t, len(out.Tags), size)
		requireUnique(t, out.Tags)
		size = len(out.Tags)
	}
}

func requireUnique(t *testing.T, tags []string) {
	t.Helper()
	seen := map[string]bool{}
	for _, tag := range tags {
		require.False(t, seen[tag], "duplicate tag %q in %v", tag, tags)
		seen[tag] = true
	}
}
