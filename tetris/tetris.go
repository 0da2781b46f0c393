// Package tetris contains the logic of the game: the stack, the tetromino
// catalog, collision checks, the run state machine and the frame scheduler.
package tetris

import (
	"math/rand/v2"
	"time"
)

type Action string

const (
	MoveLeft    Action = "left"   // Moves the Tetromino one step to the left.
	MoveRight   Action = "right"  // Moves the Tetromino one step to the right.
	MoveDown    Action = "down"   // Moves the Tetromino one step down, locking it if blocked.
	Rotate      Action = "rotate" // Rotates the Tetromino clockwise.
	TogglePause Action = "pause"  // Pauses a running game or resumes a paused one.
	Pause       Action = "hold"   // Pauses a running game. Used by overlays.
	Resume      Action = "resume" // Resumes a paused game. Used by overlays.
	Reset       Action = "reset"  // Starts a new run. Only valid after game over.
)

const (
	minDropInterval  = 100 * time.Millisecond
	baseDropInterval = 1000 * time.Millisecond
	levelStep        = 50 * time.Millisecond
	linesPerLevel    = 10
)

// points awarded per lines cleared in a single lock, before the level multiplier.
var points = [...]int{0, 40, 100, 300, 1200}

// Tetris is the state of a single run. It is not safe for concurrent use:
// Game serialises access to it, the window frontend calls it from the
// ebiten update loop only.
type Tetris struct {
	Stack        Stack
	Tetromino    *Tetromino
	NexTetromino *Tetromino

	Score        int
	LinesClear   int
	Level        int
	DropInterval time.Duration
	// Elapsed is the time since the run started, paused time included. It
	// stops at game over.
	Elapsed time.Duration

	Paused   bool
	GameOver bool

	dropCounter time.Duration
	rand        Randomizer
}

// New returns a running game. A nil randomizer uses math/rand/v2.
func New(r Randomizer) *Tetris {
	if r == nil {
		r = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	t := &Tetris{rand: r}
	t.reset()
	return t
}

func (t *Tetris) reset() {
	t.Stack = EmptyStack()
	t.Tetromino = randomTetromino(t.rand)
	t.NexTetromino = randomTetromino(t.rand)
	t.Score = 0
	t.LinesClear = 0
	t.Level = 0
	t.DropInterval = DropInterval(0)
	t.Elapsed = 0
	t.Paused = false
	t.GameOver = false
	t.dropCounter = 0
}

// Apply runs an action if the current state accepts it and reports whether
// the run ended because of it. Inputs that the state doesn't accept are
// dropped.
func (t *Tetris) Apply(a Action) (gameOver bool) {
	if t.GameOver {
		if a == Reset {
			t.reset()
		}
		return false
	}

	switch a {
	case TogglePause:
		t.Paused = !t.Paused
		return false
	case Pause:
		t.Paused = true
		return false
	case Resume:
		t.Paused = false
		return false
	}
	if t.Paused {
		return false
	}

	switch a {
	case MoveLeft:
		t.Move(-1)
	case MoveRight:
		t.Move(1)
	case MoveDown:
		_, gameOver = t.Down()
	case Rotate:
		t.Rotate()
	}
	return gameOver
}

// Move shifts the tetromino horizontally by dir if the new position is free.
func (t *Tetris) Move(dir int) {
	t.Tetromino.X += dir
	if Collides(t.Tetromino, t.Stack) {
		t.Tetromino.X -= dir
	}
}

// Down moves the tetromino one row down. When it is blocked the tetromino is
// locked into the stack, complete lines are cleared and the next tetromino
// takes its place. If the new one is blocked right away the run is over.
func (t *Tetris) Down() (locked, gameOver bool) {
	t.Tetromino.Y++
	if !Collides(t.Tetromino, t.Stack) {
		return false, false
	}
	t.Tetromino.Y--

	t.Stack.lock(t.Tetromino)
	t.score(t.Stack.clearLines())

	t.Tetromino = t.NexTetromino
	t.NexTetromino = randomTetromino(t.rand)
	if Collides(t.Tetromino, t.Stack) {
		t.GameOver = true
		return true, true
	}
	return true, false
}

// Rotate turns the tetromino clockwise unless the rotated shape collides.
// There are no wall kicks.
func (t *Tetris) Rotate() {
	r := t.Tetromino.rotated()
	if !Collides(r, t.Stack) {
		t.Tetromino.Grid = r.Grid
	}
}

func (t *Tetris) score(lines int) {
	if lines == 0 {
		return
	}
	// the multiplier uses the level reached before these lines count.
	t.Score += Points(lines, t.Level)
	t.LinesClear += lines
	t.Level = Level(t.LinesClear)
	t.DropInterval = DropInterval(t.Level)
}

// Advance is the frame step. It accumulates the frame delta and applies
// gravity once the drop interval is exceeded, and reports whether the run
// ended during this frame. The run clock keeps going while paused; gravity
// doesn't. Nothing changes after game over.
func (t *Tetris) Advance(delta time.Duration) (gameOver bool) {
	if t.GameOver {
		return false
	}
	t.Elapsed += delta
	if t.Paused {
		return false
	}
	t.dropCounter += delta
	if t.dropCounter > t.DropInterval {
		_, gameOver = t.Down()
		t.dropCounter = 0
	}
	return gameOver
}

// Copy returns a deep copy of the state that is safe to hand to a renderer.
// The copy has no randomizer and must not be played.
func (t *Tetris) Copy() *Tetris {
	return &Tetris{
		Stack:        t.Stack.copy(),
		Tetromino:    t.Tetromino.copy(),
		NexTetromino: t.NexTetromino.copy(),
		Score:        t.Score,
		LinesClear:   t.LinesClear,
		Level:        t.Level,
		DropInterval: t.DropInterval,
		Elapsed:      t.Elapsed,
		Paused:       t.Paused,
		GameOver:     t.GameOver,
		dropCounter:  t.dropCounter,
	}
}

// Level returns the level reached after clearing the given lines.
func Level(lines int) int {
	return lines / linesPerLevel
}

// DropInterval returns the gravity period of a level.
func DropInterval(level int) time.Duration {
	return max(minDropInterval, baseDropInterval-time.Duration(level)*levelStep)
}

// Points returns the score for clearing n lines at once at the given level.
func Points(n, level int) int {
	if n < 0 {
		return 0
	}
	if n >= len(points) {
		n = len(points) - 1
	}
	return points[n] * (level + 1)
}
