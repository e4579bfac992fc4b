package mines

import (
	"fmt"
	"math/rand/v2"
)

// Placer lays exactly f.BombCount() mines onto a mine-free field without ever
// mining the except cell. Adjacency is recomputed by the caller.
type Placer func(f *Minefield, except Position, r *rand.Rand) error

// ShufflePlacer picks mines with a partial Fisher-Yates shuffle over every
// cell but except, so dense boards cost no more than sparse ones.
func ShufflePlacer(f *Minefield, except Position, r *rand.Rand) error {
	if f.bombCount >= f.CellCount() {
		return ErrTooManyMines
	}

	/*
	 * Write down the list of possible mine locations.
	 */
	candidates := make([]int, 0, f.CellCount()-1)
	for i, c := range f.cells {
		if c.Position != except {
			candidates = append(candidates, i)
		}
	}

	/*
	 * Now pick n off the list at random.
	 */
	k := len(candidates)
	for range f.bombCount {
		i := r.IntN(k)
		f.cells[candidates[i]].Mine = true
		k--
		candidates[i] = candidates[k]
	}
	return nil
}

// RejectionPlacer draws random mine-free cells until enough mines are down,
// discarding draws that land on except. Expected draws grow sharply as the
// density approaches the cell count.
func RejectionPlacer(f *Minefield, except Position, r *rand.Rand) error {
	if f.bombCount >= f.CellCount() {
		return ErrTooManyMines
	}
	for count := 0; count < f.bombCount; {
		c := f.RandomCellWithoutBomb(r)
		if c.Position == except {
			continue
		}
		c.Mine = true
		count++
	}
	return nil
}

// FixedPlacer mines exactly the given positions. The field's bomb count must
// match the number of distinct positions.
func FixedPlacer(positions ...Position) Placer {
	return func(f *Minefield, except Position, _ *rand.Rand) error {
		seen := make(map[Position]bool, len(positions))
		for _, p := range positions {
			if !f.IsValidCell(p.Row, p.Col) {
				return cellError("place", p.Row, p.Col, ErrOutOfBounds)
			}
			if p == except {
				return cellError("place", p.Row, p.Col, ErrMineAtStart)
			}
			seen[p] = true
		}
		if len(seen) != f.bombCount {
			return fmt.Errorf("%w: %d fixed mines for a bomb count of %d",
				ErrInvalidParams, len(seen), f.bombCount)
		}
		for p := range seen {
			f.at(p.Row, p.Col).Mine = true
		}
		return nil
	}
}
