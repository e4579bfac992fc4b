package session

import (
	"io"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minefield/internal/mines"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func newClock() *clock {
	return &clock{t: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func testStore(t *testing.T) (*Store, *clock) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	c := newClock()
	return NewStore(logrus.NewEntry(log), WithClock(c.Now)), c
}

// 1x5 board with the only mine in the middle.
var lineParams = mines.GameParams{Rows: 1, Cols: 5, MineCount: 1}

func lineSession(t *testing.T, store *Store, playerID *int64) *Session {
	t.Helper()
	s, err := store.Create(lineParams, playerID,
		mines.WithPlacer(mines.FixedPlacer(mines.Position{Row: 0, Col: 2})))
	require.NoError(t, err)
	return s
}

func drain(ch <-chan Event) []EventKind {
	var kinds []EventKind
	for {
		select {
		case e := <-ch:
			kinds = append(kinds, e.Kind)
		default:
			return kinds
		}
	}
}

func TestCreateRejectsBadParams(t *testing.T) {
	store, _ := testStore(t)
	_, err := store.Create(mines.GameParams{Rows: 2, Cols: 2, MineCount: 4}, nil)
	assert.ErrorIs(t, err, mines.ErrTooManyMines)
	assert.Zero(t, store.Len())
}

func TestStoreGet(t *testing.T) {
	store, _ := testStore(t)
	s := lineSession(t, store, nil)

	got, err := store.Get(s.ID)
	require.NoError(t, err)
	assert.Same(t, s, got)

	store.Delete(s.ID)
	_, err = store.Get(s.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSessionEvents(t *testing.T) {
	store, _ := testStore(t)
	s := lineSession(t, store, nil)
	events, cancel := s.Subscribe(16)
	defer cancel()

	_, err := s.Move(0, 0)
	require.NoError(t, err)
	assert.Equal(t, []EventKind{EventChanged, EventWaiting}, drain(events))

	_, err = s.Move(0, 3)
	require.NoError(t, err)
	v, err := s.Move(0, 4)
	require.NoError(t, err)
	assert.True(t, v.Won())
	assert.Equal(t,
		[]EventKind{EventChanged, EventWaiting, EventChanged, EventVictory},
		drain(events))
}

func TestSessionBombEventCarriesPosition(t *testing.T) {
	store, _ := testStore(t)
	s := lineSession(t, store, nil)
	events, cancel := s.Subscribe(16)
	defer cancel()

	_, err := s.Move(0, 0)
	require.NoError(t, err)
	drain(events)

	v, err := s.Move(0, 2)
	require.NoError(t, err)
	assert.True(t, v.Lost())

	e := <-events
	assert.Equal(t, EventBomb, e.Kind)
	require.NotNil(t, e.Row)
	require.NotNil(t, e.Col)
	assert.Equal(t, 0, *e.Row)
	assert.Equal(t, 2, *e.Col)

	_, err = s.Move(0, 4)
	assert.ErrorIs(t, err, mines.ErrGameOver)
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	store, _ := testStore(t)
	s := lineSession(t, store, nil)
	events, cancel := s.Subscribe(0)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Move(0, 0)
		_, _ = s.Move(0, 3)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("move blocked on a subscriber")
	}
	assert.Empty(t, drain(events))
}

func TestCancelClosesChannel(t *testing.T) {
	store, _ := testStore(t)
	s := lineSession(t, store, nil)
	events, cancel := s.Subscribe(1)
	cancel()
	cancel()

	_, ok := <-events
	assert.False(t, ok)

	_, err := s.Move(0, 0)
	assert.NoError(t, err)
}

func TestPlaytime(t *testing.T) {
	store, c := testStore(t)
	s := lineSession(t, store, nil)

	c.Advance(time.Minute)
	assert.Zero(t, s.Playtime())

	_, err := s.Flag(0, 1)
	require.NoError(t, err)
	assert.Zero(t, s.Playtime(), "flags do not start the clock")

	_, err = s.Move(0, 0)
	require.NoError(t, err)
	c.Advance(10 * time.Second)
	assert.Equal(t, 10*time.Second, s.Playtime())

	_, err = s.Flag(0, 1)
	require.NoError(t, err)
	_, err = s.Move(0, 1)
	require.NoError(t, err)
	_, err = s.Move(0, 3)
	require.NoError(t, err)
	c.Advance(5 * time.Second)
	v, err := s.Move(0, 4)
	require.NoError(t, err)
	require.True(t, v.Won())
	assert.True(t, s.Finished())

	c.Advance(time.Hour)
	assert.Equal(t, 15*time.Second, s.Playtime())
	assert.Equal(t, int64(15000), s.View().PlaytimeMs)
	require.NotNil(t, v.StartedAt)
	require.NotNil(t, v.EndedAt)
	assert.Equal(t, int64(15000), *v.EndedAt-*v.StartedAt)
}

func TestReset(t *testing.T) {
	store, _ := testStore(t)
	s := lineSession(t, store, nil)
	_, err := s.Move(0, 0)
	require.NoError(t, err)
	_, err = s.Move(0, 2)
	require.NoError(t, err)
	require.True(t, s.Finished())

	events, cancel := s.Subscribe(16)
	defer cancel()

	v, err := s.Reset()
	require.NoError(t, err)
	assert.Equal(t, mines.NotStarted.String(), v.Phase)
	assert.Nil(t, v.StartedAt)
	assert.Nil(t, v.EndedAt)
	assert.Equal(t, []EventKind{EventStart, EventWaiting}, drain(events))

	for _, state := range v.Grid {
		assert.Equal(t, mines.Unknown, state)
	}
}

func TestView(t *testing.T) {
	store, _ := testStore(t)
	s := lineSession(t, store, nil)
	_, err := s.Flag(0, 4)
	require.NoError(t, err)
	_, err = s.Flag(0, 3)
	require.NoError(t, err)

	v, err := s.Move(0, 0)
	require.NoError(t, err)
	assert.Equal(t, s.ID, v.SessionID)
	assert.Equal(t, 1, v.Rows)
	assert.Equal(t, 5, v.Cols)
	assert.Equal(t, 1, v.MineCount)
	assert.Equal(t, -1, v.Remaining)
	assert.Equal(t, "in_progress", v.Phase)
	assert.Equal(t,
		mines.Grid{0, 1, mines.Unknown, mines.Flagged, mines.Flagged}, v.Grid)
	assert.Nil(t, v.Colors)
}

func TestColorView(t *testing.T) {
	store, _ := testStore(t)
	colors := [][]string{{"#000", "#111"}, {"#222", "#333"}}
	s, err := store.Create(mines.GameParams{Rows: 2, Cols: 2, Ratio: 0.25}, nil,
		mines.WithFieldFactory(mines.ColorField(colors)))
	require.NoError(t, err)

	assert.Equal(t, []string{"#000", "#111", "#222", "#333"}, s.View().Colors)
}

func TestCheckOwner(t *testing.T) {
	store, _ := testStore(t)
	owner, other := int64(1), int64(2)

	anon := lineSession(t, store, nil)
	assert.NoError(t, anon.CheckOwner(nil))
	assert.NoError(t, anon.CheckOwner(&other))

	owned := lineSession(t, store, &owner)
	assert.NoError(t, owned.CheckOwner(&owner))
	assert.ErrorIs(t, owned.CheckOwner(&other), ErrNotOwner)
	assert.ErrorIs(t, owned.CheckOwner(nil), ErrNotOwner)
}

func TestSweep(t *testing.T) {
	store, c := testStore(t)
	idle := lineSession(t, store, nil)
	c.Advance(20 * time.Minute)
	active := lineSession(t, store, nil)
	c.Advance(5 * time.Minute)
	_, err := active.Move(0, 0)
	require.NoError(t, err)
	c.Advance(10 * time.Minute)

	assert.Equal(t, 1, store.Sweep(30*time.Minute))
	_, err = store.Get(idle.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Get(active.ID)
	assert.NoError(t, err)
}

func TestConcurrentAccess(t *testing.T) {
	store, _ := testStore(t)
	s, err := store.Create(mines.GameParams{Rows: 20, Cols: 20, MineCount: 1}, nil,
		mines.WithPlacer(mines.FixedPlacer(mines.Position{Row: 19, Col: 19})))
	require.NoError(t, err)
	events, cancel := s.Subscribe(1024)
	defer cancel()

	var wg sync.WaitGroup
	for row := range 19 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for col := range 20 {
				_, _ = s.Flag(row, col)
				_ = s.View()
				_, _ = s.Flag(row, col)
			}
		}()
	}
	wg.Wait()

	v := s.View()
	assert.Equal(t, 1, v.Remaining)
	assert.Equal(t, "not_started", v.Phase)
	assert.Empty(t, drain(events))
}
