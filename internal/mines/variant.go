package mines

import "fmt"

// FieldFactory builds an empty field for a game. It decides what extra data
// each cell carries.
type FieldFactory func(p GameParams) (*Minefield, error)

// PlainField builds a field of plain cells.
func PlainField(p GameParams) (*Minefield, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return newMinefield(p.Rows, p.Cols, p.BombCount())
}

// ColorField builds fields sized after a sprite, one color per cell. The
// sprite is copied so later edits to colors do not leak into games.
func ColorField(colors [][]string) FieldFactory {
	sprite := make([][]string, len(colors))
	for i, row := range colors {
		sprite[i] = append([]string(nil), row...)
	}
	return func(p GameParams) (*Minefield, error) {
		rows, cols, err := spriteSize(sprite)
		if err != nil {
			return nil, err
		}
		if p.Rows != rows || p.Cols != cols {
			return nil, fmt.Errorf("%w: sprite is %dx%d, params are %dx%d",
				ErrInvalidParams, rows, cols, p.Rows, p.Cols)
		}
		f, err := PlainField(p)
		if err != nil {
			return nil, err
		}
		for i := range f.cells {
			c := &f.cells[i]
			c.Color = sprite[c.Row][c.Col]
		}
		return f, nil
	}
}

func spriteSize(colors [][]string) (rows, cols int, err error) {
	if len(colors) == 0 || len(colors[0]) == 0 {
		return 0, 0, fmt.Errorf("%w: empty sprite", ErrInvalidParams)
	}
	rows, cols = len(colors), len(colors[0])
	for i, row := range colors {
		if len(row) != cols {
			return 0, 0, fmt.Errorf("%w: sprite row %d has %d cells, want %d",
				ErrInvalidParams, i, len(row), cols)
		}
	}
	return rows, cols, nil
}

// NewColorGame starts a sprite game whose board matches the color grid and
// whose mine count is derived from ratio.
func NewColorGame(colors [][]string, ratio float64, opts ...Option) (*Game, error) {
	rows, cols, err := spriteSize(colors)
	if err != nil {
		return nil, err
	}
	params := GameParams{Rows: rows, Cols: cols, Ratio: ratio}
	opts = append([]Option{WithFieldFactory(ColorField(colors))}, opts...)
	return NewGame(params, opts...)
}
