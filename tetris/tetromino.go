package tetris

type Shape string

const (
	I Shape = "I"
	O Shape = "O"
	T Shape = "T"
	S Shape = "S"
	Z Shape = "Z"
	J Shape = "J"
	L Shape = "L"
)

// Color is the value held by a Stack cell. Empty means the cell is free.
type Color string

const (
	Empty  Color = ""
	Cyan   Color = "cyan"
	Yellow Color = "yellow"
	Purple Color = "purple"
	Green  Color = "green"
	Red    Color = "red"
	Blue   Color = "blue"
	Orange Color = "orange"
)

// spawn offset of the top-left cell of every new tetromino.
const (
	spawnX = 3
	spawnY = 0
)

type definition struct {
	grid  [][]bool
	color Color
}

// shapes is the order used when drafting a random tetromino.
var shapes = []Shape{I, O, T, S, Z, J, L}

/*
.	Rotation state 0 of every tetromino, as drafted.

.	I			O		T		S		Z		J		L
.	O O O O		O O		X O X	X O O	O O X	O X X	X X O
.				O O		O O O	O O X	X O O	O O O	O O O
*/
var catalog = map[Shape]definition{
	I: {grid: [][]bool{{true, true, true, true}}, color: Cyan},
	O: {grid: [][]bool{{true, true}, {true, true}}, color: Yellow},
	T: {grid: [][]bool{{false, true, false}, {true, true, true}}, color: Purple},
	S: {grid: [][]bool{{false, true, true}, {true, true, false}}, color: Green},
	Z: {grid: [][]bool{{true, true, false}, {false, true, true}}, color: Red},
	J: {grid: [][]bool{{true, false, false}, {true, true, true}}, color: Blue},
	L: {grid: [][]bool{{false, false, true}, {true, true, true}}, color: Orange},
}

// ColorOf returns the display color of a shape.
func ColorOf(s Shape) Color {
	return catalog[s].color
}

type Tetromino struct {
	// Grid is the current rotation of the shape. Rows go top to bottom.
	Grid [][]bool
	// X and Y are the Stack coordinates of Grid[0][0].
	X, Y  int
	Shape Shape
	Color Color
}

// NewTetromino returns the shape in rotation state 0 at the spawn location.
// The grid is cloned so rotating the piece never touches the catalog.
func NewTetromino(s Shape) *Tetromino {
	d := catalog[s]
	return &Tetromino{
		Grid:  cloneGrid(d.grid),
		X:     spawnX,
		Y:     spawnY,
		Shape: s,
		Color: d.color,
	}
}

// Randomizer is the uniform source used to draft tetrominos.
// *rand.Rand from math/rand/v2 satisfies it.
type Randomizer interface {
	IntN(n int) int
}

func randomTetromino(r Randomizer) *Tetromino {
	return NewTetromino(shapes[r.IntN(len(shapes))])
}

// Cells calls fn with the absolute Stack position of every occupied cell.
// Returning false stops the iteration.
func (t *Tetromino) Cells(fn func(x, y int) bool) {
	for ir, r := range t.Grid {
		for ic, c := range r {
			if c && !fn(t.X+ic, t.Y+ir) {
				return
			}
		}
	}
}

// rotated returns a candidate with the grid turned 90° clockwise at the same
// position: transpose, then reverse every row.
//
//	O X X		O O
//	O O O	->	O X
//				O X
func (t *Tetromino) rotated() *Tetromino {
	rows := len(t.Grid)
	if rows == 0 {
		return t.copy()
	}
	cols := len(t.Grid[0])
	grid := make([][]bool, cols)
	for c := range cols {
		grid[c] = make([]bool, rows)
		for r := range rows {
			grid[c][rows-1-r] = t.Grid[r][c]
		}
	}
	return &Tetromino{
		Grid:  grid,
		X:     t.X,
		Y:     t.Y,
		Shape: t.Shape,
		Color: t.Color,
	}
}

func (t *Tetromino) copy() *Tetromino {
	if t == nil {
		return nil
	}
	return &Tetromino{
		Grid:  cloneGrid(t.Grid),
		X:     t.X,
		Y:     t.Y,
		Shape: t.Shape,
		Color: t.Color,
	}
}

func cloneGrid(g [][]bool) [][]bool {
	out := make([][]bool, len(g))
	for i := range g {
		out[i] = make([]bool, len(g[i]))
		copy(out[i], g[i])
	}
	return out
}
