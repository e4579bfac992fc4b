package mines

import (
	"hash/maphash"
	"math/rand/v2"

	"github.com/sirupsen/logrus"
)

type Phase int8

const (
	NotStarted Phase = iota
	InProgress
	Won
	Lost
)

func (p Phase) String() string {
	switch p {
	case NotStarted:
		return "not_started"
	case InProgress:
		return "in_progress"
	case Won:
		return "won"
	case Lost:
		return "lost"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further moves are accepted.
func (p Phase) Terminal() bool {
	return p == Won || p == Lost
}

// Game is one minesweeper game instance. It is not safe for concurrent use;
// callers serving several goroutines must serialize access per game.
type Game struct {
	params    GameParams
	newField  FieldFactory
	place     Placer
	rnd       *rand.Rand
	log       *logrus.Entry
	field     *Minefield
	phase     Phase
	observers []Observer
}

type Option func(*Game)

func WithFieldFactory(f FieldFactory) Option {
	return func(g *Game) { g.newField = f }
}

func WithPlacer(p Placer) Option {
	return func(g *Game) { g.place = p }
}

func WithRand(r *rand.Rand) Option {
	return func(g *Game) { g.rnd = r }
}

func WithLogger(log *logrus.Entry) Option {
	return func(g *Game) { g.log = log }
}

func NewRand() *rand.Rand {
	return rand.New(rand.NewPCG(
		new(maphash.Hash).Sum64(), new(maphash.Hash).Sum64(),
	))
}

// NewGame validates params and builds an empty field. Mines are placed on
// the first move.
func NewGame(params GameParams, opts ...Option) (*Game, error) {
	g := &Game{
		params:   params,
		newField: PlainField,
		place:    ShufflePlacer,
	}
	for _, opt := range opts {
		opt(g)
	}
	if g.rnd == nil {
		g.rnd = NewRand()
	}
	if g.log == nil {
		g.log = logrus.NewEntry(logrus.StandardLogger())
	}
	if err := g.Init(); err != nil {
		return nil, err
	}
	return g, nil
}

// Init discards the field and starts over with a fresh, mine-free one.
// Observers stay registered.
func (g *Game) Init() error {
	field, err := g.newField(g.params)
	if err != nil {
		return err
	}
	g.field = field
	g.phase = NotStarted
	g.log.WithField("seed", g.params.Seed()).Debug("field initialized")
	return nil
}

func (g *Game) Play() {
	for _, o := range g.observers {
		o.OnGameStart()
		o.OnWaitingInput()
	}
}

func (g *Game) AddObserver(o Observer) {
	g.observers = append(g.observers, o)
}

func (g *Game) Params() GameParams { return g.params }
func (g *Game) Phase() Phase       { return g.phase }
func (g *Game) Rows() int          { return g.field.Rows() }
func (g *Game) Cols() int          { return g.field.Cols() }
func (g *Game) BombCount() int     { return g.field.BombCount() }

// RemainingBombCount is the bomb count minus placed flags. It goes negative
// when the player over-flags.
func (g *Game) RemainingBombCount() int {
	return g.field.BombCount() - g.field.FlaggedCount()
}

// CellAt returns a copy of the cell at (row, col).
func (g *Game) CellAt(row, col int) (Cell, error) {
	c, err := g.field.CellAt(row, col)
	if err != nil {
		return Cell{}, err
	}
	return *c, nil
}

// Cells returns a row-major copy of every cell.
func (g *Game) Cells() []Cell {
	return append([]Cell(nil), g.field.cells...)
}

// Grid is the player view; mines are revealed once the game is over.
func (g *Game) Grid() Grid {
	return g.field.Grid(g.phase.Terminal())
}

func (g *Game) IsValidCell(row, col int) bool {
	return g.field.IsValidCell(row, col)
}

// IsValidMove reports whether (row, col) is in bounds and still closed.
// Flagged cells count as valid moves; opening them is a no-op.
func (g *Game) IsValidMove(row, col int) bool {
	if !g.field.IsValidCell(row, col) {
		return false
	}
	return !g.field.at(row, col).Open
}

func (g *Game) checkMove(op string, row, col int) error {
	if !g.field.IsValidCell(row, col) {
		return cellError(op, row, col, ErrInvalidCell)
	}
	if g.phase.Terminal() {
		return cellError(op, row, col, ErrGameOver)
	}
	return nil
}

func (g *Game) MakeMove(row, col int) error {
	if err := g.checkMove("move", row, col); err != nil {
		return err
	}
	if g.field.at(row, col).Open {
		return nil
	}

	if g.phase == NotStarted {
		if err := g.placeMinesExceptFor(row, col); err != nil {
			return err
		}
		g.phase = InProgress
	}

	if err := g.field.MakeMove(row, col); err != nil {
		return err
	}
	g.log.WithFields(logrus.Fields{
		"row": row, "col": col, "bomb": g.field.SteppedOnBomb(),
	}).Debug("move")

	g.settle(row, col)
	return nil
}

// Chord opens every closed, unflagged neighbor of an open numbered cell once
// the flags around it match its count.
func (g *Game) Chord(row, col int) error {
	if err := g.checkMove("chord", row, col); err != nil {
		return err
	}
	c := g.field.at(row, col)
	if !c.Open || c.Mine || c.AdjacentMines == 0 {
		return nil
	}

	neighbors := g.field.Neighbors(row, col)
	var flags int
	for _, p := range neighbors {
		if g.field.at(p.Row, p.Col).Flagged {
			flags++
		}
	}
	if flags != c.AdjacentMines {
		return nil
	}

	opened := false
	for _, p := range neighbors {
		n := g.field.at(p.Row, p.Col)
		if n.Open || n.Flagged {
			continue
		}
		if err := g.field.MakeMove(p.Row, p.Col); err != nil {
			return err
		}
		opened = true
		if g.field.SteppedOnBomb() {
			g.settle(p.Row, p.Col)
			return nil
		}
	}
	if opened {
		g.settle(row, col)
	}
	return nil
}

func (g *Game) ToggleFlag(row, col int) error {
	if err := g.checkMove("flag", row, col); err != nil {
		return err
	}
	c := g.field.at(row, col)
	if c.Open {
		return nil
	}
	c.Flagged = !c.Flagged
	return nil
}

// settle moves the phase forward after a field mutation and notifies
// observers. (row, col) is the cell that triggered the mutation.
func (g *Game) settle(row, col int) {
	switch {
	case g.field.SteppedOnBomb():
		g.phase = Lost
		g.log.WithFields(logrus.Fields{"row": row, "col": col}).Info("bomb stepped")
		for _, o := range g.observers {
			o.OnBombStepped(row, col)
		}
	case g.field.Cleared():
		g.phase = Won
		g.log.WithField("seed", g.params.Seed()).Info("victory")
		for _, o := range g.observers {
			o.OnFieldChanged()
			o.OnVictory()
		}
	default:
		for _, o := range g.observers {
			o.OnFieldChanged()
			o.OnWaitingInput()
		}
	}
}

func (g *Game) placeMinesExceptFor(row, col int) error {
	if g.field.BombCount() >= g.field.CellCount() {
		return ErrTooManyMines
	}
	if err := g.place(g.field, Position{row, col}, g.rnd); err != nil {
		return err
	}
	g.field.UpdateCellAdjacency()

	if g.field.at(row, col).Mine {
		panic(AssertionError{"mine in starting cell"})
	}
	g.log.WithFields(logrus.Fields{
		"mines": g.field.MineCount(), "row": row, "col": col,
	}).Debug("mines placed")
	return nil
}
