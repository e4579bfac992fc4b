package mines

import (
	"fmt"
	"strconv"
	"strings"
)

type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Row, p.Col)
}

type Cell struct {
	Position
	Mine          bool
	Open          bool
	Flagged       bool
	AdjacentMines int
	// Color is set by sprite fields and left empty otherwise.
	Color string
}

// CellState is the player-visible state of a cell.
type CellState int8

const (
	Unknown       CellState = -2
	Flagged       CellState = -1
	ExplodedMine  CellState = 65
	UnflaggedMine CellState = 67
	/*
	 * 0 to 8 mean the cell is open and has that many mined
	 * neighbors.
	 */
)

func (s CellState) String() string {
	switch {
	case s == Unknown:
		return " "
	case s == Flagged:
		return "*"
	case s == ExplodedMine:
		return "X"
	case s == UnflaggedMine:
		return "!"
	case 0 <= s && s <= 8:
		return strconv.Itoa(int(s))
	default:
		return "?"
	}
}

// State reports what a player may know about the cell. Mines under closed
// cells are shown only when reveal is set.
func (c Cell) State(reveal bool) CellState {
	switch {
	case c.Open && c.Mine:
		return ExplodedMine
	case c.Open:
		return CellState(c.AdjacentMines)
	case c.Flagged:
		return Flagged
	case reveal && c.Mine:
		return UnflaggedMine
	default:
		return Unknown
	}
}

type Grid []CellState

func (g Grid) ToString(width int) string {
	var b strings.Builder
	for y := range len(g) / width {
		for x := range width {
			i := y*width + x
			if i >= len(g) {
				break
			}
			fmt.Fprint(&b, g[i].String()+" ")
		}
		fmt.Fprint(&b, "\n")
	}
	return b.String()
}
