package ranking

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsert(t *testing.T) {
	t.Run("sorted by descending score", func(t *testing.T) {
		var list []Entry
		for _, s := range []int{100, 300, 40, 1200} {
			list = Insert(list, NewEntry(fmt.Sprint(s), s))
		}
		scores := make([]int, 0, len(list))
		for _, e := range list {
			scores = append(scores, e.Score)
		}
		assert.Equal(t, []int{1200, 300, 100, 40}, scores)
	})

	t.Run("keeps the best ten", func(t *testing.T) {
		var list []Entry
		for i := range 12 {
			list = Insert(list, NewEntry("p", i*10))
		}
		require.Len(t, list, MaxEntries)
		assert.Equal(t, 110, list[0].Score)
		assert.Equal(t, 20, list[MaxEntries-1].Score)
	})

	t.Run("a low score doesn't enter a full ranking", func(t *testing.T) {
		var list []Entry
		for range MaxEntries {
			list = Insert(list, NewEntry("p", 500))
		}
		list = Insert(list, NewEntry("late", 10))
		require.Len(t, list, MaxEntries)
		for _, e := range list {
			assert.NotEqual(t, "late", e.Name)
		}
	})

	t.Run("ties keep submission order", func(t *testing.T) {
		list := Insert(nil, NewEntry("first", 40))
		list = Insert(list, NewEntry("second", 40))
		assert.Equal(t, "first", list[0].Name)
		assert.Equal(t, "second", list[1].Name)
	})

	t.Run("extreme scores don't overflow the ordering", func(t *testing.T) {
		list := Insert(nil, NewEntry("low", math.MinInt))
		list = Insert(list, NewEntry("high", math.MaxInt))
		list = Insert(list, NewEntry("zero", 0))
		names := make([]string, 0, len(list))
		for _, e := range list {
			names = append(names, e.Name)
		}
		assert.Equal(t, []string{"high", "zero", "low"}, names)
	})

	t.Run("input is not modified", func(t *testing.T) {
		list := []Entry{NewEntry("a", 1)}
		out := Insert(list, NewEntry("b", 2))
		assert.Equal(t, "a", list[0].Name)
		assert.Equal(t, "b", out[0].Name)
	})
}

func TestNewEntry(t *testing.T) {
	e := NewEntry("  Ana  ", 40)
	assert.Equal(t, "Ana", e.Name)
	assert.NotEmpty(t, e.ID)
	assert.Equal(t, DefaultName, NewEntry("   ", 0).Name)
	assert.NotEqual(t, e.ID, NewEntry("Ana", 40).ID)
}

func TestFileStore(t *testing.T) {
	ctx := context.Background()

	t.Run("missing file is an empty ranking", func(t *testing.T) {
		store := NewFileStore(filepath.Join(t.TempDir(), "ranking.yaml"), nil)
		list, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)
	})

	t.Run("corrupt file is an empty ranking", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ranking.yaml")
		require.NoError(t, os.WriteFile(path, []byte("ranking: [this is: {not yaml"), 0o644))
		store := NewFileStore(path, nil)
		list, err := store.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, list)

		list, err = store.Submit(ctx, "Ana", 40)
		require.NoError(t, err)
		require.Len(t, list, 1)
	})

	t.Run("submissions persist across stores", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "ranking.yaml")
		store := NewFileStore(path, nil)
		_, err := store.Submit(ctx, "Ana", 100)
		require.NoError(t, err)
		_, err = store.Submit(ctx, "Bruno", 1200)
		require.NoError(t, err)

		list, err := NewFileStore(path, nil).List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		assert.Equal(t, "Bruno", list[0].Name)
		assert.Equal(t, 1200, list[0].Score)
		assert.Equal(t, "Ana", list[1].Name)
	})

	t.Run("unsorted file is sorted and truncated on load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "ranking.yaml")
		var b strings.Builder
		b.WriteString("ranking:\n")
		for i := range 12 {
			fmt.Fprintf(&b, "  - id: \"%d\"\n    name: p%d\n    score: %d\n", i, i, i)
		}
		require.NoError(t, os.WriteFile(path, []byte(b.String()), 0o644))

		list, err := NewFileStore(path, nil).List(ctx)
		require.NoError(t, err)
		require.Len(t, list, MaxEntries)
		assert.Equal(t, 11, list[0].Score)
		assert.Equal(t, 2, list[MaxEntries-1].Score)
	})
}

func TestTable(t *testing.T) {
	assert.Equal(t, "no scores yet", Table(nil))

	list := Insert(nil, Entry{Name: "Ana", Score: 1200})
	list = Insert(list, Entry{Name: "a very long player name", Score: 40})
	lines := Lines(list)
	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], " 1. Ana"), lines[0])
	assert.Contains(t, lines[0], "1,200")
	assert.Contains(t, lines[1], "…")
	assert.NotContains(t, lines[1], "player name")
	assert.Equal(t, strings.Join(lines, "\n"), Table(list))
}
