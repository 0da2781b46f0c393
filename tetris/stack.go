package tetris

const (
	Rows = 20
	Cols = 10
)

// Stack is the playfield. 20 rows x 10 columns.
// Columns are 0 > 9 left to right and represent the X axis.
// Rows are 0 > 19 top to bottom and represent the Y axis.
// An Empty cell is free. Otherwise it has the color it will be rendered with.
type Stack [][]Color

func EmptyStack() Stack {
	s := make(Stack, Rows)
	for i := range s {
		s[i] = make([]Color, Cols)
	}
	return s
}

// Full reports whether every cell of the row is occupied.
func (s Stack) Full(row int) bool {
	for _, c := range s[row] {
		if c == Empty {
			return false
		}
	}
	return true
}

func (s Stack) copy() Stack {
	if s == nil {
		return nil
	}
	out := make(Stack, len(s))
	for i := range s {
		out[i] = make([]Color, len(s[i]))
		copy(out[i], s[i])
	}
	return out
}

// Collides reports whether the tetromino overlaps an occupied cell or lies
// outside the stack. Cells above the top row are only checked against the
// side walls, which lets a piece spawn partially above the board.
//
//	. 	0 1 2 3 4 5 6 7 8 9			0 1 2
//	0	X X X O X X X X X X		0	O X X
//	1	X X X O O O X X X X		1	O O O
//	2	X X X X X X X X X X
func Collides(t *Tetromino, s Stack) bool {
	collision := false
	t.Cells(func(x, y int) bool {
		if x < 0 || x >= Cols || y >= Rows || (y >= 0 && s[y][x] != Empty) {
			collision = true
		}
		return !collision
	})
	return collision
}

// lock writes the tetromino color into the stack. Cells outside the board
// are dropped.
func (s Stack) lock(t *Tetromino) {
	t.Cells(func(x, y int) bool {
		if y >= 0 && y < Rows && x >= 0 && x < Cols {
			s[y][x] = t.Color
		}
		return true
	})
}

// clearLines scans bottom to top and removes every full row, inserting an
// empty one at the top. After a removal the same index is checked again,
// since the row above has just shifted into it. It returns the rows cleared.
func (s Stack) clearLines() int {
	cleared := 0
	for r := len(s) - 1; r >= 0; {
		if !s.Full(r) {
			r--
			continue
		}
		copy(s[1:r+1], s[:r])
		s[0] = make([]Color, Cols)
		cleared++
	}
	return cleared
}
