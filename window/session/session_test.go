package session

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"trontris/ranking"
	"trontris/tetris"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingStore struct {
	mu      sync.Mutex
	calls   int
	scores  []int
	release chan struct{}
	list    []ranking.Entry
}

func (c *countingStore) Submit(_ context.Context, name string, score int) ([]ranking.Entry, error) {
	if c.release != nil {
		<-c.release
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	c.scores = append(c.scores, score)
	c.list = ranking.Insert(c.list, ranking.Entry{Name: name, Score: score})
	return c.list, nil
}

func (c *countingStore) List(context.Context) ([]ranking.Entry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.list, nil
}

type mockMusic struct {
	on   bool
	fail bool
}

func (m *mockMusic) Play() error {
	if m.fail {
		return errors.New("no device")
	}
	m.on = true
	return nil
}
func (m *mockMusic) Stop()    { m.on = false }
func (m *mockMusic) On() bool { return m.on }

func newTestSession(store ranking.Store, music MusicPlayer) *Session {
	return New(&Options{
		Store:      store,
		Music:      music,
		Name:       "Ana",
		Randomizer: tetris.ShapeRandomizer(tetris.J),
		Logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
		Frame:      time.Second / 60,
	})
}

// endRun blocks the J under its spawn so the next one can't enter.
func endRun(t *testing.T, s *Session, score int) {
	t.Helper()
	s.tetris.Stack[2][3] = tetris.Red
	s.tetris.Score = score
	s.Step([]string{"ArrowDown"})
	require.True(t, s.tetris.GameOver)
}

func TestBindings(t *testing.T) {
	tests := []struct {
		key   string
		check func(*tetris.Tetris) bool
	}{
		{"ArrowLeft", func(g *tetris.Tetris) bool { return g.Tetromino.X == 2 }},
		{"ArrowRight", func(g *tetris.Tetris) bool { return g.Tetromino.X == 4 }},
		{"ArrowDown", func(g *tetris.Tetris) bool { return g.Tetromino.Y == 1 }},
		{"ArrowUp", func(g *tetris.Tetris) bool { return len(g.Tetromino.Grid) == 3 }},
		{"Space", func(g *tetris.Tetris) bool { return len(g.Tetromino.Grid) == 3 }},
		{"P", func(g *tetris.Tetris) bool { return g.Paused }},
		{"Q", func(g *tetris.Tetris) bool { return g.Tetromino.X == 3 && g.Tetromino.Y == 0 && !g.Paused }},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			s := newTestSession(nil, nil)
			assert.False(t, s.Step([]string{tt.key}))
			assert.True(t, tt.check(s.Tetris()))
		})
	}
}

func TestStepAdvancesTheGame(t *testing.T) {
	s := newTestSession(nil, nil)
	for range 61 {
		s.Step(nil)
	}
	assert.Equal(t, 1, s.Tetris().Tetromino.Y)
	assert.Equal(t, 61*(time.Second/60), s.Tetris().Elapsed)
}

func TestQuit(t *testing.T) {
	s := newTestSession(nil, nil)
	assert.True(t, s.Step([]string{"ArrowLeft", "Escape", "ArrowLeft"}))
	assert.Equal(t, 2, s.Tetris().Tetromino.X, "keys after quit are not applied")
}

func TestMusicToggle(t *testing.T) {
	m := &mockMusic{}
	s := newTestSession(nil, m)
	s.Step([]string{"M"})
	assert.True(t, s.MusicOn())
	s.Step([]string{"M"})
	assert.False(t, s.MusicOn())

	m.fail = true
	s.Step([]string{"M"})
	assert.False(t, s.MusicOn())
}

func TestScoreSubmittedOnce(t *testing.T) {
	store := &countingStore{}
	s := newTestSession(store, nil)
	endRun(t, s, 300)
	for range 10 {
		s.Step([]string{"ArrowDown", "P"})
	}
	s.Wait()

	assert.Equal(t, 1, store.calls)
	assert.Equal(t, []int{300}, store.scores)
	assert.Equal(t, []ranking.Entry{{Name: "Ana", Score: 300}}, s.Ranking())
}

func TestRankingOfPreviousRunIsDropped(t *testing.T) {
	store := &countingStore{release: make(chan struct{})}
	s := newTestSession(store, nil)
	endRun(t, s, 100)

	s.Step([]string{"R"})
	require.False(t, s.Tetris().GameOver)
	close(store.release)
	s.Wait()

	assert.Equal(t, 1, store.calls)
	assert.Nil(t, s.Ranking(), "wanted the new run to start without the old ranking")
}

func TestResetClearsRanking(t *testing.T) {
	store := &countingStore{}
	s := newTestSession(store, nil)
	endRun(t, s, 40)
	s.Wait()
	require.Len(t, s.Ranking(), 1)

	s.Step([]string{"R"})
	assert.Nil(t, s.Ranking())

	endRun(t, s, 1200)
	s.Wait()
	assert.Equal(t, []ranking.Entry{{Name: "Ana", Score: 1200}, {Name: "Ana", Score: 40}}, s.Ranking())
}
