// Package window is the desktop frontend. Ebiten calls Update at a fixed
// tick rate and every tick hands the pressed keys to a session, which
// advances the game by one tick worth of time.
package window

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"time"

	"trontris/ranking"
	"trontris/tetris"
	"trontris/window/session"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

const (
	TPS = 60

	cellSize     = 24
	boardX       = cellSize
	boardY       = cellSize
	boardWidth   = tetris.Cols * cellSize
	boardHeight  = tetris.Rows * cellSize
	panelX       = boardX + boardWidth + cellSize
	screenWidth  = panelX + 7*cellSize
	screenHeight = boardY + boardHeight + cellSize
)

var (
	background = color.RGBA{0x10, 0x10, 0x18, 0xff}
	gridColor  = color.RGBA{0x40, 0x40, 0x50, 0xff}
	overlay    = color.RGBA{0x00, 0x00, 0x00, 0xb0}
)

var palette = map[tetris.Color]color.RGBA{
	tetris.Cyan:   {0x00, 0xf0, 0xf0, 0xff},
	tetris.Yellow: {0xf0, 0xf0, 0x00, 0xff},
	tetris.Purple: {0xa0, 0x00, 0xf0, 0xff},
	tetris.Green:  {0x00, 0xf0, 0x00, 0xff},
	tetris.Red:    {0xf0, 0x00, 0x00, 0xff},
	tetris.Blue:   {0x00, 0x00, 0xf0, 0xff},
	tetris.Orange: {0xf0, 0xa0, 0x00, 0xff},
}

type Options struct {
	Store      ranking.Store
	Music      session.MusicPlayer
	Name       string
	Randomizer tetris.Randomizer
	Logger     *slog.Logger
}

// Game implements ebiten.Game.
type Game struct {
	session *session.Session
	music   session.MusicPlayer
	keys    []ebiten.Key
	names   []string
}

func New(o *Options) *Game {
	return &Game{
		session: session.New(&session.Options{
			Store:      o.Store,
			Music:      o.Music,
			Name:       o.Name,
			Randomizer: o.Randomizer,
			Logger:     o.Logger,
			Frame:      time.Second / TPS,
		}),
		music: o.Music,
	}
}

// Run opens the window and blocks until it is closed.
func Run(g *Game) error {
	ebiten.SetWindowTitle("Trontris")
	ebiten.SetWindowSize(screenWidth*2, screenHeight*2)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(TPS)
	err := ebiten.RunGame(g)
	g.session.Wait()
	if g.music != nil {
		g.music.Stop()
	}
	if err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("failed to run window: %w", err)
	}
	return nil
}

func (g *Game) Update() error {
	g.keys = inpututil.AppendJustPressedKeys(g.keys[:0])
	g.names = g.names[:0]
	for _, k := range g.keys {
		g.names = append(g.names, k.String())
	}
	if g.session.Step(g.names) {
		return ebiten.Termination
	}
	return nil
}

func (g *Game) Layout(_, _ int) (int, int) {
	return screenWidth, screenHeight
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.drawBoard(screen)
	g.drawPanel(screen)
	switch t := g.session.Tetris(); {
	case t.GameOver:
		g.drawGameOver(screen)
	case t.Paused:
		drawOverlay(screen, "PAUSED", "", "(p) resume")
	}
}

func (g *Game) drawBoard(screen *ebiten.Image) {
	game := g.session.Tetris()
	vector.StrokeRect(screen, boardX-1, boardY-1, boardWidth+2, boardHeight+2, 1, gridColor, false)
	for y, row := range game.Stack {
		for x, c := range row {
			drawCell(screen, boardX, boardY, x, y, c)
		}
	}
	t := game.Tetromino
	t.Cells(func(x, y int) bool {
		if y >= 0 {
			drawCell(screen, boardX, boardY, x, y, t.Color)
		}
		return true
	})
}

func (g *Game) drawPanel(screen *ebiten.Image) {
	game := g.session.Tetris()
	next := game.NexTetromino
	ebitenutil.DebugPrintAt(screen, "NEXT", panelX, boardY)
	next.Cells(func(x, y int) bool {
		drawCell(screen, panelX, boardY+cellSize, x-next.X, y-next.Y, next.Color)
		return true
	})

	music := "off"
	if g.session.MusicOn() {
		music = "on"
	}
	s := int(game.Elapsed / time.Second)
	hud := fmt.Sprintf("SCORE\n%06d\n\nLINES\n%d\n\nLEVEL\n%d\n\nTIME\n%02d:%02d\n\nPLAYER\n%s\n\n(m)usic: %s",
		game.Score, game.LinesClear, game.Level, s/60, s%60, g.session.Name(), music)
	ebitenutil.DebugPrintAt(screen, hud, panelX, boardY+4*cellSize)
}

func (g *Game) drawGameOver(screen *ebiten.Image) {
	lines := []string{"GAME OVER", fmt.Sprintf("score %06d", g.session.Tetris().Score), ""}
	lines = append(lines, ranking.Lines(g.session.Ranking())...)
	lines = append(lines, "", "(r) restart")
	drawOverlay(screen, lines...)
}

// drawCell fills the cell at board coordinates x, y. Empty cells are left
// as background.
func drawCell(screen *ebiten.Image, offsetX, offsetY, x, y int, c tetris.Color) {
	clr, ok := palette[c]
	if !ok {
		return
	}
	px := float32(offsetX + x*cellSize)
	py := float32(offsetY + y*cellSize)
	vector.DrawFilledRect(screen, px+1, py+1, cellSize-2, cellSize-2, clr, false)
}

// drawOverlay dims the board and prints the lines on top of it.
func drawOverlay(screen *ebiten.Image, lines ...string) {
	vector.DrawFilledRect(screen, boardX, boardY, boardWidth, boardHeight, overlay, false)
	const lineHeight = 16
	y := boardY + boardHeight/2 - len(lines)*lineHeight/2
	for i, l := range lines {
		ebitenutil.DebugPrintAt(screen, l, boardX+cellSize/2, y+i*lineHeight)
	}
}
