package handlers

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/session"
)

func TestExecuteCommand(t *testing.T) {
	store := session.NewStore(testLog())
	s, err := store.Create(mines.GameParams{Rows: 1, Cols: 5, MineCount: 1}, nil,
		mines.WithPlacer(mines.FixedPlacer(mines.Position{Row: 0, Col: 2})))
	require.NoError(t, err)

	_, err = executeCommand(s, "x 1 1")
	assert.ErrorIs(t, err, ErrUnknownCommand)
	_, err = executeCommand(s, "o 1")
	assert.ErrorIs(t, err, ErrCommandArgs)
	_, err = executeCommand(s, "o a 1")
	assert.Error(t, err)
	_, err = executeCommand(s, "o 0 9")
	assert.ErrorIs(t, err, mines.ErrInvalidCell)

	view, err := executeCommand(s, "f 0 4")
	require.NoError(t, err)
	assert.Equal(t, mines.Flagged, view.Grid[4])

	view, err = executeCommand(s, "o 0 0")
	require.NoError(t, err)
	assert.Equal(t, "in_progress", view.Phase)

	view, err = executeCommand(s, "g")
	require.NoError(t, err)
	assert.Equal(t, mines.Grid{0, 1, mines.Unknown, mines.Unknown, mines.Flagged}, view.Grid)

	view, err = executeCommand(s, "r")
	require.NoError(t, err)
	assert.Equal(t, "not_started", view.Phase)
}

func TestConnectWS(t *testing.T) {
	f := newGameFixture(t)
	server := httptest.NewServer(f.mux)
	defer server.Close()

	s, err := f.store.Create(mines.GameParams{Rows: 1, Cols: 2, MineCount: 1}, nil)
	require.NoError(t, err)

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/game/" + s.ID + "/connect"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first wsMessage
	require.NoError(t, conn.ReadJSON(&first))
	require.NotNil(t, first.View)
	assert.Equal(t, "not_started", first.View.Phase)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("o 0 0")))

	// two events and the reply, in any order
	var events []session.EventKind
	var reply *session.View
	for range 3 {
		var msg wsMessage
		require.NoError(t, conn.ReadJSON(&msg))
		switch {
		case msg.Event != nil:
			events = append(events, msg.Event.Kind)
		case msg.View != nil:
			reply = msg.View
		}
	}
	assert.Equal(t, []session.EventKind{session.EventChanged, session.EventVictory}, events)
	require.NotNil(t, reply)
	assert.True(t, reply.Won())
	assert.Equal(t, 1, f.records.count())

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("o 0 1")))
	var msg wsMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Contains(t, msg.Error, mines.ErrGameOver.Error())
}

func TestConnectWSUnknownSession(t *testing.T) {
	f := newGameFixture(t)
	server := httptest.NewServer(f.mux)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/game/missing/connect"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, 404, resp.StatusCode)
}
