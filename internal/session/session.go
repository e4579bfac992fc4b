package session

import (
	"errors"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/mines"
)

var (
	ErrNotFound = errors.New("session not found")
	ErrNotOwner = errors.New("session belongs to another player")
)

type EventKind string

const (
	EventStart   EventKind = "start"
	EventWaiting EventKind = "waiting"
	EventChanged EventKind = "changed"
	EventBomb    EventKind = "bomb"
	EventVictory EventKind = "victory"
)

type Event struct {
	Kind EventKind `json:"kind"`
	Row  *int      `json:"row,omitempty"`
	Col  *int      `json:"col,omitempty"`
	At   time.Time `json:"at"`
}

// Session serializes access to one game. Every mutating call and every
// snapshot holds mu for its whole duration. Observer callbacks run with mu
// held and only touch the subscriber set, which has its own lock.
type Session struct {
	ID       string
	PlayerID *int64

	mu         sync.Mutex
	game       *mines.Game
	startedAt  time.Time
	endedAt    time.Time
	lastActive time.Time
	now        func() time.Time
	log        *logrus.Entry

	subsMu  sync.Mutex
	subs    map[int]chan Event
	nextSub int
}

func newSession(
	params mines.GameParams,
	playerID *int64,
	now func() time.Time,
	log *logrus.Entry,
	opts ...mines.Option,
) (*Session, error) {
	id := xid.New().String()
	entry := log.WithField("session", id)

	s := &Session{
		ID:         id,
		PlayerID:   playerID,
		lastActive: now(),
		now:        now,
		log:        entry,
		subs:       make(map[int]chan Event),
	}

	opts = append([]mines.Option{mines.WithLogger(entry)}, opts...)
	game, err := mines.NewGame(params, opts...)
	if err != nil {
		return nil, err
	}
	game.AddObserver(s)
	s.game = game
	game.Play()
	return s, nil
}

// CheckOwner fails with [ErrNotOwner] when the session has an owner other
// than playerID. Anonymous sessions are open to everyone.
func (s *Session) CheckOwner(playerID *int64) error {
	if s.PlayerID == nil {
		return nil
	}
	if playerID == nil || *playerID != *s.PlayerID {
		return ErrNotOwner
	}
	return nil
}

func (s *Session) Params() mines.GameParams {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Params()
}

func (s *Session) Move(row, col int) (View, error) {
	return s.apply(func(g *mines.Game) error { return g.MakeMove(row, col) })
}

func (s *Session) Flag(row, col int) (View, error) {
	return s.apply(func(g *mines.Game) error { return g.ToggleFlag(row, col) })
}

func (s *Session) Chord(row, col int) (View, error) {
	return s.apply(func(g *mines.Game) error { return g.Chord(row, col) })
}

// Reset starts the same board configuration over. Subscribers stay.
func (s *Session) Reset() (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.game.Init(); err != nil {
		return View{}, err
	}
	s.startedAt = time.Time{}
	s.endedAt = time.Time{}
	s.lastActive = s.now()
	s.game.Play()
	s.log.Debug("session reset")
	return s.view(), nil
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

// Finished reports whether the game is won or lost.
func (s *Session) Finished() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Phase().Terminal()
}

// Playtime is the time between the first opened cell and the end of the
// game, or until now for a game still in progress.
func (s *Session) Playtime() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playtime()
}

func (s *Session) playtime() time.Duration {
	switch {
	case s.startedAt.IsZero():
		return 0
	case s.endedAt.IsZero():
		return s.now().Sub(s.startedAt)
	default:
		return s.endedAt.Sub(s.startedAt)
	}
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive
}

func (s *Session) apply(op func(*mines.Game) error) (View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	started := s.game.Phase() != mines.NotStarted
	if err := op(s.game); err != nil {
		return View{}, err
	}

	now := s.now()
	s.lastActive = now
	if !started && s.game.Phase() != mines.NotStarted {
		s.startedAt = now
	}
	if s.game.Phase().Terminal() && s.endedAt.IsZero() {
		s.endedAt = now
		s.log.WithFields(logrus.Fields{
			"phase":    s.game.Phase().String(),
			"playtime": s.playtime().String(),
		}).Info("game over")
	}
	return s.view(), nil
}

// Subscribe registers a listener for game events. Events are dropped for
// listeners whose buffer is full. cancel closes the channel.
func (s *Session) Subscribe(buffer int) (events <-chan Event, cancel func()) {
	ch := make(chan Event, buffer)

	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	s.subsMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
			close(ch)
		})
	}
}

func (s *Session) broadcast(kind EventKind, pos *mines.Position) {
	e := Event{Kind: kind, At: s.now()}
	if pos != nil {
		e.Row, e.Col = &pos.Row, &pos.Col
	}

	s.subsMu.Lock()
	defer s.subsMu.Unlock()
	for id, ch := range s.subs {
		select {
		case ch <- e:
		default:
			s.log.WithFields(logrus.Fields{
				"subscriber": id, "event": kind,
			}).Warn("subscriber too slow, event dropped")
		}
	}
}

// [Session] implements [mines.Observer]

func (s *Session) OnGameStart()    { s.broadcast(EventStart, nil) }
func (s *Session) OnWaitingInput() { s.broadcast(EventWaiting, nil) }
func (s *Session) OnFieldChanged() { s.broadcast(EventChanged, nil) }
func (s *Session) OnVictory()      { s.broadcast(EventVictory, nil) }

func (s *Session) OnBombStepped(row, col int) {
	s.broadcast(EventBomb, &mines.Position{Row: row, Col: col})
}
