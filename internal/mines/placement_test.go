package mines

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacers(t *testing.T) {
	placers := map[string]Placer{
		"shuffle":   ShufflePlacer,
		"rejection": RejectionPlacer,
	}
	sizes := []struct {
		rows, cols, mines int
	}{
		{9, 9, 10},
		{16, 16, 40},
		{16, 30, 99},
		{4, 4, 15},
		{1, 2, 1},
	}

	for name, place := range placers {
		t.Run(name, func(t *testing.T) {
			r := rand.New(rand.NewPCG(5, 6))
			for _, size := range sizes {
				for range 20 {
					except := Position{r.IntN(size.rows), r.IntN(size.cols)}
					f, err := newMinefield(size.rows, size.cols, size.mines)
					require.NoError(t, err)

					require.NoError(t, place(f, except, r))
					assert.Equal(t, size.mines, f.MineCount())
					assert.False(t, f.at(except.Row, except.Col).Mine,
						"mine at excluded cell %s", except)
				}
			}
		})
	}
}

func TestShufflePlacerSpreadsMines(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 8))
	hits := make([]int, 9)
	for range 2000 {
		f, err := newMinefield(3, 3, 1)
		require.NoError(t, err)
		require.NoError(t, ShufflePlacer(f, Position{1, 1}, r))
		for i, c := range f.cells {
			if c.Mine {
				hits[i]++
			}
		}
	}
	assert.Zero(t, hits[4])
	for i, n := range hits {
		if i == 4 {
			continue
		}
		// 2000/8 = 250 expected per cell
		assert.InDelta(t, 250, n, 100, "cell %d", i)
	}
}

func TestFixedPlacer(t *testing.T) {
	t.Run("places given mines", func(t *testing.T) {
		f, err := newMinefield(3, 3, 2)
		require.NoError(t, err)
		require.NoError(t, FixedPlacer(Position{0, 0}, Position{2, 1})(f, Position{1, 1}, nil))
		assert.True(t, f.at(0, 0).Mine)
		assert.True(t, f.at(2, 1).Mine)
		assert.Equal(t, 2, f.MineCount())
	})

	t.Run("refuses the excluded cell", func(t *testing.T) {
		f, err := newMinefield(3, 3, 1)
		require.NoError(t, err)
		err = FixedPlacer(Position{1, 1})(f, Position{1, 1}, nil)
		assert.ErrorIs(t, err, ErrMineAtStart)
		assert.Zero(t, f.MineCount())
	})

	t.Run("refuses positions off the board", func(t *testing.T) {
		f, err := newMinefield(3, 3, 1)
		require.NoError(t, err)
		err = FixedPlacer(Position{3, 0})(f, Position{1, 1}, nil)
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})

	t.Run("count must match", func(t *testing.T) {
		f, err := newMinefield(3, 3, 2)
		require.NoError(t, err)
		err = FixedPlacer(Position{0, 0}, Position{0, 0})(f, Position{1, 1}, nil)
		assert.ErrorIs(t, err, ErrInvalidParams)
		assert.Zero(t, f.MineCount())
	})
}

func TestPlacementErrorLeavesGameUnstarted(t *testing.T) {
	g, err := NewGame(
		GameParams{Rows: 3, Cols: 3, MineCount: 1},
		WithPlacer(FixedPlacer(Position{0, 0})),
	)
	require.NoError(t, err)

	assert.ErrorIs(t, g.MakeMove(0, 0), ErrMineAtStart)
	assert.Equal(t, NotStarted, g.Phase())
	assert.Zero(t, g.field.OpenCount())
}

func BenchmarkShufflePlacerDense(b *testing.B) {
	r := rand.New(rand.NewPCG(1, 2))
	for range b.N {
		f, _ := newMinefield(100, 100, 9999)
		_ = ShufflePlacer(f, Position{50, 50}, r)
	}
}
