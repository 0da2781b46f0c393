// Package terminal holds the ANSI sequences used to draw the game on a raw
// console.
package terminal

import (
	"fmt"
	"strings"

	"trontris/tetris"

	"github.com/mattn/go-runewidth"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	ResetPos   = "\033[H"        // Reset cursor position to 0,0
	Clear      = "\033[2J\033[H" // Clear the screen and reset the cursor
	ClearLine  = "\033[K"        // Clear from the cursor to the end of the line
	HideCursor = "\033[?25l"
	ShowCursor = "\033[?25h"

	// BlankCell is an empty cell of the board, two columns wide.
	BlankCell = "  "
)

var colorMap = map[tetris.Color]string{
	tetris.Cyan:   Cyan,
	tetris.Blue:   Blue,
	tetris.Orange: Orange,
	tetris.Yellow: Yellow,
	tetris.Green:  Green,
	tetris.Red:    Red,
	tetris.Purple: Magenta,
}

// Cell renders a board cell. Unknown and empty colors render blank.
func Cell(c tetris.Color) string {
	code, ok := colorMap[c]
	if !ok {
		return BlankCell
	}
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", code)
}

func Bold(s string) string {
	return "\033[1m" + s + "\033[0m"
}

// At moves the cursor to the 1-based row and column and prints s.
func At(row, col int, s string) string {
	return fmt.Sprintf("\033[%d;%dH%s", row, col, s)
}

// Center pads s with spaces on both sides to fill width columns. Longer
// strings are truncated.
func Center(s string, width int) string {
	s = runewidth.Truncate(s, width, "")
	left := (width - runewidth.StringWidth(s)) / 2
	return runewidth.FillRight(strings.Repeat(" ", left)+s, width)
}

/*
Box draws a bordered box with its top left corner at row, col. Every line is
centered in the inner width.

.	+----------+
.	|  line 1  |
.	|  line 2  |
.	+----------+
*/
func Box(row, col, width int, lines ...string) string {
	var b strings.Builder
	border := "+" + strings.Repeat("-", width) + "+"
	b.WriteString(At(row, col, border))
	for i, l := range lines {
		b.WriteString(At(row+i+1, col, "|"+Center(l, width)+"|"))
	}
	b.WriteString(At(row+len(lines)+1, col, border))
	return b.String()
}
