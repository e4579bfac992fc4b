package mines

import (
	"math/rand/v2"
)

// Minefield owns the cells of one board. Cells are stored row-major and
// neighbors are derived from coordinates, never stored.
type Minefield struct {
	rows, cols    int
	bombCount     int
	cells         []Cell
	steppedOnBomb bool
	openSafe      int
}

func newMinefield(rows, cols, bombCount int) (*Minefield, error) {
	if rows <= 0 || cols <= 0 {
		return nil, ErrInvalidParams
	}
	if bombCount < 0 {
		return nil, ErrInvalidParams
	}
	if bombCount >= rows*cols {
		return nil, ErrTooManyMines
	}
	f := &Minefield{
		rows:      rows,
		cols:      cols,
		bombCount: bombCount,
		cells:     make([]Cell, rows*cols),
	}
	for i := range f.cells {
		f.cells[i].Position = Position{Row: i / cols, Col: i % cols}
	}
	return f, nil
}

func (f *Minefield) Rows() int      { return f.rows }
func (f *Minefield) Cols() int      { return f.cols }
func (f *Minefield) BombCount() int { return f.bombCount }

func (f *Minefield) CellCount() int {
	return f.rows * f.cols
}

func (f *Minefield) IsValidCell(row, col int) bool {
	return 0 <= row && row < f.rows && 0 <= col && col < f.cols
}

func (f *Minefield) CellAt(row, col int) (*Cell, error) {
	if !f.IsValidCell(row, col) {
		return nil, cellError("cell", row, col, ErrOutOfBounds)
	}
	return f.at(row, col), nil
}

func (f *Minefield) at(row, col int) *Cell {
	return &f.cells[row*f.cols+col]
}

// Neighbors returns the in-bounds 8-neighborhood of (row, col).
func (f *Minefield) Neighbors(row, col int) []Position {
	ns := make([]Position, 0, 8)
	for dr := -1; dr <= 1; dr++ {
		for dc := -1; dc <= 1; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if f.IsValidCell(row+dr, col+dc) {
				ns = append(ns, Position{row + dr, col + dc})
			}
		}
	}
	return ns
}

// RandomCellWithoutBomb picks uniformly among cells without a mine.
// panics [AssertionError] if every cell is mined
func (f *Minefield) RandomCellWithoutBomb(r *rand.Rand) *Cell {
	free := f.CellCount() - f.MineCount()
	if free <= 0 {
		panic(AssertionError{"no cell without a mine"})
	}
	k := r.IntN(free)
	for i := range f.cells {
		if f.cells[i].Mine {
			continue
		}
		if k == 0 {
			return &f.cells[i]
		}
		k--
	}
	panic(AssertionError{"free cell count out of sync"})
}

func (f *Minefield) UpdateCellAdjacency() {
	for i := range f.cells {
		c := &f.cells[i]
		n := 0
		for _, p := range f.Neighbors(c.Row, c.Col) {
			if f.at(p.Row, p.Col).Mine {
				n++
			}
		}
		c.AdjacentMines = n
	}
}

// MakeMove opens the cell at (row, col), cascading through zero-count
// regions. Open and flagged cells are left alone.
func (f *Minefield) MakeMove(row, col int) error {
	if !f.IsValidCell(row, col) {
		return cellError("open", row, col, ErrOutOfBounds)
	}
	f.steppedOnBomb = false

	start := f.at(row, col)
	if start.Open || start.Flagged {
		return nil
	}
	if start.Mine {
		start.Open = true
		f.steppedOnBomb = true
		return nil
	}

	todo := []Position{start.Position}
	start.Open = true
	f.openSafe++
	for len(todo) > 0 {
		p := todo[len(todo)-1]
		todo = todo[:len(todo)-1]
		if f.at(p.Row, p.Col).AdjacentMines != 0 {
			continue
		}
		for _, n := range f.Neighbors(p.Row, p.Col) {
			c := f.at(n.Row, n.Col)
			if c.Open || c.Flagged || c.Mine {
				continue
			}
			c.Open = true
			f.openSafe++
			todo = append(todo, n)
		}
	}
	return nil
}

func (f *Minefield) SteppedOnBomb() bool {
	return f.steppedOnBomb
}

func (f *Minefield) OpenCount() int {
	n := 0
	for _, c := range f.cells {
		if c.Open {
			n++
		}
	}
	return n
}

// FlaggedCount counts flags on closed cells.
func (f *Minefield) FlaggedCount() int {
	n := 0
	for _, c := range f.cells {
		if c.Flagged && !c.Open {
			n++
		}
	}
	return n
}

func (f *Minefield) MineCount() int {
	n := 0
	for _, c := range f.cells {
		if c.Mine {
			n++
		}
	}
	return n
}

// Cleared reports whether every safe cell is open.
func (f *Minefield) Cleared() bool {
	return f.openSafe == f.CellCount()-f.bombCount
}

// Grid is the player view of the field in row-major order.
func (f *Minefield) Grid(reveal bool) Grid {
	g := make(Grid, len(f.cells))
	for i, c := range f.cells {
		g[i] = c.State(reveal)
	}
	return g
}
