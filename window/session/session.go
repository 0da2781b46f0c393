// Package session runs the desktop game without touching the display: it
// turns the keys pressed in a frame into actions, advances the game and
// submits the score of every finished run once.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"trontris/ranking"
	"trontris/tetris"
)

const rankingTimeout = 5 * time.Second

// Key names as ebiten.Key.String prints them.
const (
	quitKey  = "Escape"
	musicKey = "M"
)

// Bindings maps key names to game actions.
var Bindings = map[string]tetris.Action{
	"ArrowLeft":  tetris.MoveLeft,
	"ArrowRight": tetris.MoveRight,
	"ArrowDown":  tetris.MoveDown,
	"ArrowUp":    tetris.Rotate,
	"Space":      tetris.Rotate,
	"Z":          tetris.Rotate,
	"P":          tetris.TogglePause,
	"R":          tetris.Reset,
}

type MusicPlayer interface {
	Play() error
	Stop()
	On() bool
}

type Options struct {
	Store      ranking.Store
	Music      MusicPlayer
	Name       string
	Randomizer tetris.Randomizer
	Logger     *slog.Logger
	// Frame is the time a Step advances the game by.
	Frame time.Duration
}

// Session is driven from a single goroutine; only the ranking is shared with
// the submissions.
type Session struct {
	tetris *tetris.Tetris
	store  ranking.Store
	music  MusicPlayer
	name   string
	logger *slog.Logger
	frame  time.Duration

	mu      sync.Mutex
	run     int
	ranking []ranking.Entry

	submissions sync.WaitGroup
}

func New(o *Options) *Session {
	l := o.Logger
	if l == nil {
		l = slog.Default()
	}
	return &Session{
		tetris: tetris.New(o.Randomizer),
		store:  o.Store,
		music:  o.Music,
		name:   o.Name,
		logger: l,
		frame:  o.Frame,
	}
}

// Tetris returns the game state for drawing. It must not be modified.
func (s *Session) Tetris() *tetris.Tetris { return s.tetris }

func (s *Session) Name() string { return s.name }

func (s *Session) MusicOn() bool {
	return s.music != nil && s.music.On()
}

// Step handles the keys pressed during a frame, then advances the game by a
// frame. It reports whether the player asked to quit.
func (s *Session) Step(keys []string) (quit bool) {
	var over bool
	for _, k := range keys {
		switch k {
		case quitKey:
			return true
		case musicKey:
			s.toggleMusic()
			continue
		}
		a, ok := Bindings[k]
		if !ok {
			continue
		}
		if a == tetris.Reset && s.tetris.GameOver {
			s.newRun()
		}
		over = s.tetris.Apply(a) || over
	}
	if s.tetris.Advance(s.frame) {
		over = true
	}
	if over {
		s.logger.Info("game over", slog.Int("score", s.tetris.Score), slog.Int("lines", s.tetris.LinesClear))
		s.submit(s.tetris.Score)
	}
	return false
}

// Ranking returns the ranking after the current run's submission, nil until
// it arrives.
func (s *Session) Ranking() []ranking.Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranking
}

// Wait blocks until the submissions in flight are done.
func (s *Session) Wait() {
	s.submissions.Wait()
}

func (s *Session) newRun() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.run++
	s.ranking = nil
}

// submit sends the score off the frame loop. A ranking that comes back after
// a new run started is dropped.
func (s *Session) submit(score int) {
	if s.store == nil {
		return
	}
	s.mu.Lock()
	run := s.run
	s.mu.Unlock()

	s.submissions.Add(1)
	go func() {
		defer s.submissions.Done()
		ctx, cancel := context.WithTimeout(context.Background(), rankingTimeout)
		defer cancel()
		list, err := s.store.Submit(ctx, s.name, score)
		if err != nil {
			s.logger.Error("unable to submit score", slog.String("error", err.Error()))
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		if run != s.run {
			s.logger.Debug("dropping the ranking of a previous run", slog.Int("run", run))
			return
		}
		s.ranking = list
	}()
}

func (s *Session) toggleMusic() {
	if s.music == nil {
		return
	}
	if s.music.On() {
		s.music.Stop()
		return
	}
	if err := s.music.Play(); err != nil {
		s.logger.Warn("unable to play music", slog.String("error", err.Error()))
	}
}
