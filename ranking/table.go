package ranking

import (
	"strings"

	"github.com/mattn/go-runewidth"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const nameWidth = 16

var printer = message.NewPrinter(language.English)

// Lines renders the ranking one entry per line: "N. name — score".
// Names are cut or padded to a fixed display width so scores line up.
func Lines(list []Entry) []string {
	lines := make([]string, 0, len(list))
	for i, e := range list {
		name := runewidth.Truncate(e.Name, nameWidth, "…")
		name = runewidth.FillRight(name, nameWidth)
		lines = append(lines, printer.Sprintf("%2d. %s — %7d", i+1, name, e.Score))
	}
	return lines
}

// Table renders the ranking as a block of text, or a placeholder when empty.
func Table(list []Entry) string {
	if len(list) == 0 {
		return "no scores yet"
	}
	return strings.Join(Lines(list), "\n")
}
