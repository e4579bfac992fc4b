package mines

import (
	"io"
	"math/rand/v2"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	logrus.SetOutput(io.Discard)
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	m.Run()
}

// fieldWithMines builds a field with mines at the given positions and
// adjacency already computed.
func fieldWithMines(t *testing.T, rows, cols int, mines ...Position) *Minefield {
	t.Helper()
	f, err := newMinefield(rows, cols, len(mines))
	require.NoError(t, err)
	for _, p := range mines {
		f.at(p.Row, p.Col).Mine = true
	}
	f.UpdateCellAdjacency()
	return f
}

func bruteForceAdjacency(f *Minefield, row, col int) int {
	n := 0
	for r := row - 1; r <= row+1; r++ {
		for c := col - 1; c <= col+1; c++ {
			if (r != row || c != col) &&
				r >= 0 && r < f.rows && c >= 0 && c < f.cols &&
				f.cells[r*f.cols+c].Mine {
				n++
			}
		}
	}
	return n
}

func TestNewMinefield(t *testing.T) {
	tests := []struct {
		name       string
		rows, cols int
		bombs      int
		err        error
	}{
		{"9x9(10)", 9, 9, 10, nil},
		{"1x2(1)", 1, 2, 1, nil},
		{"no mines", 3, 3, 0, nil},
		{"full board", 3, 3, 9, ErrTooManyMines},
		{"overfull board", 2, 2, 5, ErrTooManyMines},
		{"zero rows", 0, 3, 1, ErrInvalidParams},
		{"negative mines", 3, 3, -1, ErrInvalidParams},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			f, err := newMinefield(test.rows, test.cols, test.bombs)
			if test.err != nil {
				assert.ErrorIs(t, err, test.err)
				assert.Nil(t, f)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, test.rows*test.cols, f.CellCount())
			assert.Equal(t, 0, f.MineCount())
			assert.Equal(t, 0, f.OpenCount())
		})
	}
}

func TestCellAt(t *testing.T) {
	f := fieldWithMines(t, 3, 4)

	c, err := f.CellAt(2, 3)
	require.NoError(t, err)
	assert.Equal(t, Position{2, 3}, c.Position)

	for _, p := range []Position{{-1, 0}, {0, -1}, {3, 0}, {0, 4}} {
		_, err := f.CellAt(p.Row, p.Col)
		assert.ErrorIs(t, err, ErrOutOfBounds, "position %s", p)
		assert.False(t, f.IsValidCell(p.Row, p.Col))
	}
}

func TestNeighbors(t *testing.T) {
	f := fieldWithMines(t, 3, 3)
	assert.Len(t, f.Neighbors(0, 0), 3)
	assert.Len(t, f.Neighbors(0, 1), 5)
	assert.Len(t, f.Neighbors(1, 1), 8)
	assert.ElementsMatch(t,
		[]Position{{0, 1}, {1, 0}, {1, 1}},
		f.Neighbors(0, 0),
	)
}

func TestUpdateCellAdjacency(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 50 {
		f, err := newMinefield(8, 13, 30)
		require.NoError(t, err)
		require.NoError(t, ShufflePlacer(f, Position{4, 4}, r))
		f.UpdateCellAdjacency()
		for _, c := range f.cells {
			assert.Equal(t, bruteForceAdjacency(f, c.Row, c.Col), c.AdjacentMines,
				"adjacency at %s", c.Position)
		}
	}
}

func TestRandomCellWithoutBomb(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	f := fieldWithMines(t, 2, 2, Position{0, 0}, Position{0, 1}, Position{1, 0})

	for range 20 {
		c := f.RandomCellWithoutBomb(r)
		assert.Equal(t, Position{1, 1}, c.Position)
	}

	f.at(1, 1).Mine = true
	assert.PanicsWithValue(t, AssertionError{"no cell without a mine"}, func() {
		f.RandomCellWithoutBomb(r)
	})
}

func TestMakeMoveOnMine(t *testing.T) {
	f := fieldWithMines(t, 3, 3, Position{1, 1})

	require.NoError(t, f.MakeMove(1, 1))
	assert.True(t, f.SteppedOnBomb())
	assert.Equal(t, 1, f.OpenCount())
	assert.True(t, f.at(1, 1).Open)
	assert.False(t, f.Cleared())
}

func TestMakeMoveIsIdempotent(t *testing.T) {
	f := fieldWithMines(t, 3, 3, Position{2, 2})

	require.NoError(t, f.MakeMove(0, 2))
	before := append([]Cell(nil), f.cells...)
	require.NoError(t, f.MakeMove(0, 2))
	assert.Equal(t, before, f.cells)
	assert.False(t, f.SteppedOnBomb())
}

func TestMakeMoveSkipsFlagged(t *testing.T) {
	f := fieldWithMines(t, 3, 3, Position{2, 2})
	f.at(0, 0).Flagged = true

	require.NoError(t, f.MakeMove(0, 0))
	assert.Equal(t, 0, f.OpenCount())

	// the cascade from another cell goes around the flag
	require.NoError(t, f.MakeMove(0, 1))
	assert.False(t, f.at(0, 0).Open)
	assert.Equal(t, 7, f.OpenCount())
}

func TestMakeMoveOutOfBounds(t *testing.T) {
	f := fieldWithMines(t, 3, 3)
	assert.ErrorIs(t, f.MakeMove(3, 0), ErrOutOfBounds)
}

// expectedRegion computes the zero region containing start plus its
// boundary with a plain breadth-first search.
func expectedRegion(f *Minefield, start Position) map[Position]bool {
	region := map[Position]bool{start: true}
	if f.at(start.Row, start.Col).AdjacentMines != 0 {
		return region
	}
	queue := []Position{start}
	for len(queue) > 0 {
		p := queue[0]
		queue = queue[1:]
		for _, n := range f.Neighbors(p.Row, p.Col) {
			if region[n] || f.at(n.Row, n.Col).Mine {
				continue
			}
			region[n] = true
			if f.at(n.Row, n.Col).AdjacentMines == 0 {
				queue = append(queue, n)
			}
		}
	}
	return region
}

func TestCascadeOpensZeroRegionAndBoundary(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 4))
	for range 100 {
		f, err := newMinefield(12, 10, 18)
		require.NoError(t, err)
		start := Position{r.IntN(12), r.IntN(10)}
		require.NoError(t, ShufflePlacer(f, start, r))
		f.UpdateCellAdjacency()

		want := expectedRegion(f, start)
		require.NoError(t, f.MakeMove(start.Row, start.Col))

		for _, c := range f.cells {
			assert.Equal(t, want[c.Position], c.Open, "cell %s", c.Position)
		}
		assert.Equal(t, len(want), f.OpenCount())
	}
}

func TestCascadeOnLargeBoard(t *testing.T) {
	f, err := newMinefield(1000, 1000, 0)
	require.NoError(t, err)
	f.UpdateCellAdjacency()

	require.NoError(t, f.MakeMove(500, 500))
	assert.Equal(t, f.CellCount(), f.OpenCount())
	assert.True(t, f.Cleared())
}

func TestGridStates(t *testing.T) {
	f := fieldWithMines(t, 1, 3, Position{0, 2})
	f.at(0, 0).Flagged = true
	require.NoError(t, f.MakeMove(0, 1))

	assert.Equal(t, Grid{Flagged, 1, Unknown}, f.Grid(false))
	assert.Equal(t, Grid{Flagged, 1, UnflaggedMine}, f.Grid(true))
	assert.Equal(t, "* 1 ! \n", f.Grid(true).ToString(3))
}
