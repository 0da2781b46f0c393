package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"text/template"
	"time"

	"trontris/ranking"
	"trontris/terminal"
	"trontris/tetris"
)

// Screen coordinates of the layout. The board interior spans columns 4 to 23
// and rows 4 to 23.
const (
	boxRow   = 8
	boxCol   = 5
	boxWidth = 30

	boardBoxRow   = 11
	boardBoxCol   = 3
	boardBoxWidth = 20
)

//go:embed "layout.tmpl"
var layout string

type templateData struct {
	Game *tetris.Tetris
	Name string
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	mu       sync.Mutex
}

func newRender(w io.Writer, l *slog.Logger) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	if w == nil {
		w = os.Stdout
	}
	return &render{
		writer:   w,
		logger:   l,
		template: tmp,
	}, nil
}

func (r *render) reset() {
	r.print(terminal.Clear)
}

// game draws a frame of the run. Paused and finished runs get a box over
// the board.
func (r *render) game(t *tetris.Tetris, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprint(r.writer, terminal.ResetPos)
	if err := r.template.Execute(r.writer, &templateData{Game: t, Name: name}); err != nil {
		r.logger.Error("unable to execute template in game()", slog.String("error", err.Error()))
		return
	}
	switch {
	case t.GameOver:
		fmt.Fprint(r.writer, terminal.Box(boardBoxRow, boardBoxCol, boardBoxWidth,
			"Game Over",
			fmt.Sprintf("score %06d", t.Score),
			"",
			"(r)estart (esc)menu",
		))
	case t.Paused:
		fmt.Fprint(r.writer, terminal.Box(boardBoxRow, boardBoxCol, boardBoxWidth,
			"PAUSED",
			"(p) to resume",
		))
	}
}

func (r *render) menu(msg string) {
	r.screen(
		"Welcome to Trontris",
		"",
		"(p)lay  (c)ontrols  (s)ettings",
		"(r)anking  (q)uit",
		"",
		msg,
	)
}

func (r *render) nameInput(name, msg string) {
	r.screen(
		"Enter your name",
		"",
		"> "+name+"_",
		"",
		msg,
		"(enter) play  (esc) back",
	)
}

func (r *render) controls() {
	r.screen(
		"Controls",
		"",
		"left / a       move left",
		"right / d      move right",
		"down / s       move down",
		"up / w / space rotate",
		"p              pause",
		"r              restart",
		"c o t          overlays",
		"esc            menu",
		"",
		"(esc) back",
	)
}

func (r *render) settings(musicOn bool, volume float64, msg string) {
	music := "off"
	if musicOn {
		music = "on"
	}
	r.screen(
		"Settings",
		"",
		"(m)usic: "+music,
		fmt.Sprintf("(+/-) volume: %.1f", volume),
		"",
		msg,
		"(esc) back",
	)
}

func (r *render) ranking(list []ranking.Entry) {
	lines := []string{"Top 10", ""}
	if len(list) == 0 {
		lines = append(lines, ranking.Table(list))
	}
	lines = append(lines, ranking.Lines(list)...)
	lines = append(lines, "", "(esc) back")
	r.screen(lines...)
}

// screen clears the console and draws the lines in the menu box.
func (r *render) screen(lines ...string) {
	r.print(terminal.Clear + terminal.At(2, 3, title()) + terminal.Box(boxRow, boxCol, boxWidth, lines...))
}

func (r *render) print(s string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.writer, s)
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"board": board,
		"side":  side,
		"title": title,
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	l := strings.ReplaceAll(layout, "\n", "\r\n")
	return template.New("layout").Funcs(funcMap).Parse(l)
}

func title() string {
	return terminal.Bold("T R O N T R I S")
}

// board renders the stack with the active tetromino on top of it.
func board(d *templateData) [tetris.Rows][tetris.Cols]string {
	var rendered [tetris.Rows][tetris.Cols]string
	for y := range tetris.Rows {
		for x := range tetris.Cols {
			rendered[y][x] = terminal.BlankCell
			if d.Game != nil && y < len(d.Game.Stack) && x < len(d.Game.Stack[y]) {
				rendered[y][x] = terminal.Cell(d.Game.Stack[y][x])
			}
		}
	}
	if d.Game == nil || d.Game.Tetromino == nil {
		return rendered
	}
	cell := terminal.Cell(d.Game.Tetromino.Color)
	d.Game.Tetromino.Cells(func(x, y int) bool {
		if x >= 0 && x < tetris.Cols && y >= 0 && y < tetris.Rows {
			rendered[y][x] = cell
		}
		return true
	})
	return rendered
}

// side renders the panel to the right of the given board row. Every line
// ends clearing the rest of the console line.
func side(d *templateData, row int) string {
	var s string
	g := d.Game
	if g != nil {
		switch row {
		case 0:
			s = terminal.Bold("NEXT")
		case 1, 2:
			s = nextPiece(g.NexTetromino, row-1)
		case 4:
			s = terminal.Bold("SCORE")
		case 5:
			s = fmt.Sprintf("%06d", g.Score)
		case 7:
			s = terminal.Bold("LINES")
		case 8:
			s = fmt.Sprint(g.LinesClear)
		case 10:
			s = terminal.Bold("LEVEL")
		case 11:
			s = fmt.Sprint(g.Level)
		case 13:
			s = terminal.Bold("TIME")
		case 14:
			s = clock(g.Elapsed)
		case 16:
			s = terminal.Bold("PLAYER")
		case 17:
			s = d.Name
		}
	}
	return s + terminal.ClearLine
}

// nextPiece renders a row of the preview, four cells wide.
func nextPiece(t *tetris.Tetromino, row int) string {
	cells := []string{terminal.BlankCell, terminal.BlankCell, terminal.BlankCell, terminal.BlankCell}
	if t != nil && row < len(t.Grid) {
		for i, v := range t.Grid[row] {
			if v && i < len(cells) {
				cells[i] = terminal.Cell(t.Color)
			}
		}
	}
	return strings.Join(cells, "")
}

// clock formats a duration as mm:ss.
func clock(d time.Duration) string {
	s := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", s/60, s%60)
}
