package tetris

import (
	"log/slog"
	"time"
)

// DefaultFrameRate is the number of frames per second of a Game.
const DefaultFrameRate = 30

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

type Options struct {
	// FrameRate defaults to DefaultFrameRate.
	FrameRate int
	// Randomizer used to draft tetrominos. Defaults to math/rand/v2.
	Randomizer Randomizer
	// OnGameOver is called from the game loop once per run with the final score.
	OnGameOver func(score int)
	Logger     *slog.Logger
}

// Game runs a Tetris on its own goroutine. Frames and actions are processed
// one at a time by that goroutine; every processed event publishes a copy of
// the state on the update channel.
type Game struct {
	updateCh chan *Tetris
	actionCh chan Action
	doneCh   chan bool

	tetris     *Tetris
	ticker     Ticker
	frame      time.Duration
	lastFrame  time.Time
	stopped    chan struct{}
	clock      func() time.Time
	onGameOver func(score int)
	logger     *slog.Logger
}

func NewGame(o *Options) *Game {
	if o == nil {
		o = &Options{}
	}
	fps := o.FrameRate
	if fps <= 0 {
		fps = DefaultFrameRate
	}
	frame := time.Second / time.Duration(fps)
	return NewConfigurableGame(newWrappedTicker(frame), frame, o)
}

func NewConfigurableGame(ticker Ticker, frame time.Duration, o *Options) *Game {
	if o == nil {
		o = &Options{}
	}
	logger := o.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Game{
		updateCh:   make(chan *Tetris),
		actionCh:   make(chan Action),
		doneCh:     make(chan bool),
		tetris:     New(o.Randomizer),
		ticker:     ticker,
		frame:      frame,
		clock:      time.Now,
		onGameOver: o.OnGameOver,
		logger:     logger,
	}
}

// Start begins a new run and the frame loop. The loop publishes the initial
// state first.
func (g *Game) Start() {
	g.tetris.reset()
	g.lastFrame = g.clock()
	g.ticker.Reset(g.frame)
	g.stopped = make(chan struct{})
	go g.listen(g.stopped)
}

// Stop ends the frame loop and waits for it to return. It must only be
// called after Start.
func (g *Game) Stop() {
	g.ticker.Stop()
	g.doneCh <- true
	<-g.stopped
}

func (g *Game) Action(a Action) {
	g.actionCh <- a
}

func (g *Game) GetUpdate() <-chan *Tetris {
	return g.updateCh
}

func (g *Game) listen(stopped chan struct{}) {
	defer close(stopped)
	if !g.publish() {
		return
	}
	for {
		var gameOver bool
		select {
		case now := <-g.ticker.C():
			delta := now.Sub(g.lastFrame)
			g.lastFrame = now
			if delta < 0 {
				delta = 0
			}
			gameOver = g.tetris.Advance(delta)
		case a := <-g.actionCh:
			gameOver = g.tetris.Apply(a)
			if a == Reset {
				g.logger.Debug("new run started")
			}
		case <-g.doneCh:
			return
		}
		if gameOver {
			g.logger.Info("game over",
				slog.Int("score", g.tetris.Score),
				slog.Int("lines", g.tetris.LinesClear),
				slog.Int("level", g.tetris.Level))
			if g.onGameOver != nil {
				g.onGameOver(g.tetris.Score)
			}
		}
		if !g.publish() {
			return
		}
	}
}

// publish sends a copy of the state, giving up if the game is stopped.
func (g *Game) publish() bool {
	select {
	case g.updateCh <- g.tetris.Copy():
		return true
	case <-g.doneCh:
		return false
	}
}
