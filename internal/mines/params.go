package mines

import (
	"fmt"
	"math"
	"strings"
)

// GameParams describes a board. MineCount wins over Ratio when both are set.
type GameParams struct {
	Rows, Cols int
	MineCount  int
	Ratio      float64
}

func (p GameParams) Unpack() (rows int, cols int, mc int) {
	return p.Rows, p.Cols, p.BombCount()
}

func (p GameParams) CellCount() int {
	return p.Rows * p.Cols
}

// BombCount is MineCount, or round(Rows*Cols*Ratio) when MineCount is unset.
func (p GameParams) BombCount() int {
	if p.MineCount > 0 || p.Ratio <= 0 {
		return p.MineCount
	}
	return int(math.Round(float64(p.CellCount()) * p.Ratio))
}

func (p GameParams) Validate() error {
	if p.Rows <= 0 || p.Cols <= 0 {
		return fmt.Errorf("%w: board must be at least 1x1, got %dx%d",
			ErrInvalidParams, p.Rows, p.Cols)
	}
	if p.MineCount < 0 || p.Ratio < 0 || p.Ratio >= 1 {
		return fmt.Errorf("%w: negative mine count or ratio outside [0, 1)",
			ErrInvalidParams)
	}
	if p.BombCount() >= p.CellCount() {
		return fmt.Errorf("%w: %d mines on %d cells",
			ErrTooManyMines, p.BombCount(), p.CellCount())
	}
	return nil
}

func (p GameParams) PointInBounds(row, col int) bool {
	return 0 <= row && row < p.Rows && 0 <= col && col < p.Cols
}

// Seed identifies the board configuration, e.g. "9:9:10".
func (p GameParams) Seed() string {
	return fmt.Sprintf("%d:%d:%d", p.Rows, p.Cols, p.BombCount())
}

func ParseSeed(seed string) (*GameParams, error) {
	p := &GameParams{}
	sseed := strings.ReplaceAll(seed, ":", " ")
	n, err := fmt.Sscanf(sseed, "%d %d %d", &p.Rows, &p.Cols, &p.MineCount)
	if n != 3 || err != nil {
		return nil, fmt.Errorf(
			`invalid game params seed (sseed = "%s", n = %d, err = %w)`,
			sseed, n, err,
		)
	}
	return p, nil
}
