package history

import (
	"path/filepath"
	"testing"

	"github.com/rebeliceyang/lazysearch/internal/filter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestAddAndGetRecent(t *testing.T) {
	s := newTestStore(t)

	exprs := []string{"a eq 1", "(a eq 1", "tags/any(item: item eq 'x') and b eq 2"}
	for _, e := range exprs {
		require.NoError(t, s.Add(NewEntry(e, "hotels", "cli", filter.Validate(e))))
	}

	entries, err := s.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	// newest first
	assert.Equal(t, exprs[2], entries[0].Expression)
	assert.True(t, entries[0].IsValid)
	assert.Equal(t, 5, entries[0].ComplexityScore)
	assert.Equal(t, "hotels", entries[0].IndexName)
	assert.Equal(t, "cli", entries[0].Source)
	assert.False(t, entries[0].ValidatedAt.IsZero())

	assert.False(t, entries[1].IsValid)
	assert.Equal(t, 1, entries[1].IssueCount)
	require.Len(t, entries[1].Issues, 1)
	assert.Contains(t, entries[1].Issues[0], "parentheses")

	limited, err := s.GetRecent(1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)
}

func TestSearch(t *testing.T) {
	s := newTestStore(t)

	for _, e := range []string{"rating ge 4", "price lt 100", "rating le 2"} {
		require.NoError(t, s.Add(NewEntry(e, "", "tui", filter.Validate(e))))
	}

	entries, err := s.Search("rating", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = s.Search("category", 10)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSearchMatchesWildcardsLiterally(t *testing.T) {
	s := newTestStore(t)

	for _, e := range []string{"hotel_id eq 'a'", "hotelXid eq 'b'", "discount eq '50%'", "discount eq '500'", `path eq 'a\b'`} {
		require.NoError(t, s.Add(NewEntry(e, "", "cli", filter.Validate(e))))
	}

	entries, err := s.Search("hotel_id", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hotel_id eq 'a'", entries[0].Expression)

	entries, err = s.Search("50%", 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "discount eq '50%'", entries[0].Expression)

	entries, err = s.Search(`a\b`, 10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
}

func TestStatsAndPrune(t *testing.T) {
	s := newTestStore(t)

	st, err := s.Stats()
	require.NoError(t, err)
	assert.Zero(t, st.Total)
	assert.Zero(t, st.AvgComplexity)

	for _, e := range []string{"a eq 1", "a eq 1 or b eq 2", "a eq 'x"} {
		require.NoError(t, s.Add(NewEntry(e, "", "cli", filter.Validate(e))))
	}

	st, err = s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 3, st.Total)
	assert.Equal(t, 1, st.Invalid)
	assert.Equal(t, 2, st.MaxComplexity)
	assert.InDelta(t, 2.0/3.0, st.AvgComplexity, 0.001)

	require.NoError(t, s.Prune(2))
	st, err = s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)

	require.NoError(t, s.Prune(0))
	st, err = s.Stats()
	require.NoError(t, err)
	assert.Equal(t, 2, st.Total)
}
