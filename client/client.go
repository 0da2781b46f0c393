// Package client is the terminal frontend: it reads the keyboard, moves
// between screens and renders the game.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"trontris/config"
	"trontris/ranking"
	"trontris/tetris"

	"github.com/eiannone/keyboard"
)

const (
	rankingTimeout = 5 * time.Second
	maxNameLength  = 16
)

type clientState int

const (
	lobby clientState = iota
	naming
	playing
	controls
	settings
	leaderboard
)

// state is the current screen and the screen an overlay returns to.
type state struct {
	current  clientState
	previous clientState
	mu       sync.Mutex
}

func (s *state) get() clientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

func (s *state) set(c clientState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
}

// open moves to an overlay and returns the screen it was opened from.
func (s *state) open(c clientState) clientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.previous = s.current
	s.current = c
	return s.previous
}

// close returns to the screen the overlay was opened from.
func (s *state) close() clientState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = s.previous
	return s.current
}

type tetrisGame interface {
	Start()
	GetUpdate() <-chan *tetris.Tetris
	Action(tetris.Action)
	Stop()
}

type renderer interface {
	reset()
	game(t *tetris.Tetris, name string)
	menu(msg string)
	nameInput(name, msg string)
	controls()
	settings(musicOn bool, volume float64, msg string)
	ranking(list []ranking.Entry)
}

type musicPlayer interface {
	Play() error
	Stop()
	SetVolume(v float64)
	On() bool
}

type Client struct {
	tetris tetrisGame
	render renderer
	store  ranking.Store
	music  musicPlayer
	logger *slog.Logger
	kbCh   <-chan keyboard.KeyEvent
	state  *state

	prefs     *config.Preferences
	prefsPath string
	name      []rune

	// cancel stops the update listener of the running game, nil when no
	// game is running.
	cancel context.CancelFunc
	// submissions tracks the ranking submissions still in flight.
	submissions sync.WaitGroup
}

type Options struct {
	Writer          io.Writer
	Store           ranking.Store
	Music           musicPlayer
	Preferences     *config.Preferences
	PreferencesPath string
	FrameRate       int
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	r, err := newRender(o.Writer, l)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	prefs := o.Preferences
	if prefs == nil {
		prefs = config.DefaultPreferences()
	}
	c := &Client{
		render:    r,
		store:     o.Store,
		music:     o.Music,
		logger:    l,
		kbCh:      kb,
		state:     &state{current: lobby},
		prefs:     prefs,
		prefsPath: o.PreferencesPath,
	}
	c.tetris = tetris.NewGame(&tetris.Options{
		FrameRate:  o.FrameRate,
		OnGameOver: c.gameOver,
		Logger:     l,
	})
	return c, nil
}

// Start shows the menu and blocks until the player quits.
func (c *Client) Start() {
	c.render.menu("")
	var wg sync.WaitGroup
	wg.Add(1)
	go c.listenKB(&wg)
	wg.Wait()

	c.stopGame()
	c.music.Stop()
	c.submissions.Wait()
}

func (c *Client) listenKB(wg *sync.WaitGroup) {
	defer wg.Done()
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		switch c.state.get() {
		case lobby:
			switch event.Rune {
			case 'p':
				c.openNameInput()
			case 'c':
				c.openControls()
			case 's':
				c.openSettings()
			case 'r':
				c.openRanking()
			case 'q':
				return
			}
		case naming:
			c.typeName(event)
		case playing:
			c.play(event)
		case controls, leaderboard:
			if event.Key == keyboard.KeyEsc {
				c.closeOverlay()
			}
		case settings:
			c.changeSettings(event)
		}
	}
}

func (c *Client) play(event keyboard.KeyEvent) {
	var a tetris.Action
	switch {
	case event.Key == keyboard.KeyArrowDown || event.Rune == 's':
		a = tetris.MoveDown
	case event.Key == keyboard.KeyArrowLeft || event.Rune == 'a':
		a = tetris.MoveLeft
	case event.Key == keyboard.KeyArrowRight || event.Rune == 'd':
		a = tetris.MoveRight
	case event.Key == keyboard.KeyArrowUp || event.Key == keyboard.KeySpace || event.Rune == 'w':
		a = tetris.Rotate
	case event.Rune == 'p':
		a = tetris.TogglePause
	case event.Rune == 'r':
		a = tetris.Reset
	case event.Rune == 'c':
		c.openControls()
		return
	case event.Rune == 'o':
		c.openSettings()
		return
	case event.Rune == 't':
		c.openRanking()
		return
	case event.Key == keyboard.KeyEsc:
		c.stopGame()
		c.state.set(lobby)
		c.render.menu("")
		return
	default:
		return
	}
	c.tetris.Action(a)
}

func (c *Client) openNameInput() {
	c.name = []rune(c.prefs.Name)
	c.state.set(naming)
	c.render.nameInput(string(c.name), "")
}

func (c *Client) typeName(event keyboard.KeyEvent) {
	switch {
	case event.Key == keyboard.KeyEnter:
		name := strings.TrimSpace(string(c.name))
		if name == "" {
			c.render.nameInput("", "a name is required")
			return
		}
		c.prefs.Name = name
		c.savePreferences()
		c.startGame()
		return
	case event.Key == keyboard.KeyEsc:
		c.state.set(lobby)
		c.render.menu("")
		return
	case event.Key == keyboard.KeyBackspace || event.Key == keyboard.KeyBackspace2:
		if len(c.name) > 0 {
			c.name = c.name[:len(c.name)-1]
		}
	case event.Key == keyboard.KeySpace:
		c.appendName(' ')
	case event.Rune != 0:
		c.appendName(event.Rune)
	}
	c.render.nameInput(string(c.name), "")
}

func (c *Client) appendName(r rune) {
	if len(c.name) < maxNameLength && utf8.ValidRune(r) {
		c.name = append(c.name, r)
	}
}

func (c *Client) startGame() {
	c.stopGame()
	c.state.set(playing)
	c.render.reset()

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel
	c.tetris.Start()
	go c.listenTetris(ctx, c.prefs.Name)

	if c.prefs.MusicOn && !c.music.On() {
		if err := c.music.Play(); err != nil {
			c.logger.Warn("unable to play music", slog.String("error", err.Error()))
		}
	}
}

// stopGame ends the running game, if any.
func (c *Client) stopGame() {
	if c.cancel == nil {
		return
	}
	c.cancel()
	c.cancel = nil
	c.tetris.Stop()
}

func (c *Client) listenTetris(ctx context.Context, name string) {
	for {
		select {
		case u := <-c.tetris.GetUpdate():
			// overlays cover the game, their frames are dropped.
			if c.state.get() == playing {
				c.render.game(u, name)
			}
		case <-ctx.Done():
			return
		}
	}
}

// gameOver submits the final score of a run without blocking the game.
func (c *Client) gameOver(score int) {
	name := c.prefs.Name
	c.submissions.Add(1)
	go func() {
		defer c.submissions.Done()
		ctx, cancel := context.WithTimeout(context.Background(), rankingTimeout)
		defer cancel()
		if _, err := c.store.Submit(ctx, name, score); err != nil {
			c.logger.Error("unable to submit score", slog.String("error", err.Error()))
			return
		}
		c.logger.Info("score submitted", slog.String("name", name), slog.Int("score", score))
	}()
}

// openOverlay shows an overlay screen, pausing the game when it is opened
// from it.
func (c *Client) openOverlay(s clientState) {
	if c.state.get() == s {
		return
	}
	if from := c.state.open(s); from == playing {
		c.tetris.Action(tetris.Pause)
	}
}

func (c *Client) closeOverlay() {
	if c.state.close() == playing {
		c.render.reset()
		c.tetris.Action(tetris.Resume)
		return
	}
	c.render.menu("")
}

func (c *Client) openControls() {
	c.openOverlay(controls)
	c.render.controls()
}

func (c *Client) openSettings() {
	c.openOverlay(settings)
	c.render.settings(c.music.On(), c.prefs.Volume, "")
}

func (c *Client) openRanking() {
	c.openOverlay(leaderboard)
	ctx, cancel := context.WithTimeout(context.Background(), rankingTimeout)
	defer cancel()
	list, err := c.store.List(ctx)
	if err != nil {
		c.logger.Error("unable to load ranking", slog.String("error", err.Error()))
	}
	c.render.ranking(list)
}

func (c *Client) changeSettings(event keyboard.KeyEvent) {
	var msg string
	switch {
	case event.Key == keyboard.KeyEsc:
		c.closeOverlay()
		return
	case event.Rune == 'm':
		msg = c.toggleMusic()
	case event.Rune == '+' || event.Rune == '=':
		c.setVolume(c.prefs.Volume + config.VolumeStep)
	case event.Rune == '-':
		c.setVolume(c.prefs.Volume - config.VolumeStep)
	default:
		return
	}
	c.savePreferences()
	c.render.settings(c.music.On(), c.prefs.Volume, msg)
}

// toggleMusic flips the music. The preference only turns on when the music
// actually plays.
func (c *Client) toggleMusic() string {
	if c.music.On() {
		c.music.Stop()
		c.prefs.MusicOn = false
		return ""
	}
	if err := c.music.Play(); err != nil {
		c.logger.Warn("unable to play music", slog.String("error", err.Error()))
		c.prefs.MusicOn = false
		return "music unavailable"
	}
	c.prefs.MusicOn = true
	return ""
}

func (c *Client) setVolume(v float64) {
	c.prefs.SetVolume(v)
	c.music.SetVolume(c.prefs.Volume)
}

func (c *Client) savePreferences() {
	if c.prefsPath == "" {
		return
	}
	if err := c.prefs.Save(c.prefsPath); err != nil {
		c.logger.Error("unable to save preferences", slog.String("error", err.Error()))
	}
}
