package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/session"
)

var (
	ErrUnknownCommand = errors.New("unknown command")
	ErrCommandArgs    = errors.New("invalid number of arguments")
)

// Maps known commands to number of arguments
var commandNargs = map[string]int{
	"g": 0,
	"o": 2,
	"f": 2,
	"c": 2,
	"r": 0,
}

// executeCommand runs one text command against s: "g" fetches the view,
// "o r c" opens, "f r c" toggles a flag, "c r c" chords and "r" resets.
func executeCommand(s *session.Session, command string) (session.View, error) {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return session.View{}, ErrUnknownCommand
	}
	nargs, ok := commandNargs[parts[0]]
	if !ok {
		return session.View{}, ErrUnknownCommand
	}
	if nargs != len(parts)-1 {
		return session.View{}, ErrCommandArgs
	}

	switch parts[0] {
	case "g":
		return s.View(), nil
	case "r":
		return s.Reset()
	}

	row, col, err := parseRowCol(parts[1:])
	if err != nil {
		return session.View{}, err
	}
	switch parts[0] {
	case "o":
		return s.Move(row, col)
	case "f":
		return s.Flag(row, col)
	default:
		return s.Chord(row, col)
	}
}

type wsMessage struct {
	Event *session.Event `json:"event,omitempty"`
	View  *session.View  `json:"view,omitempty"`
	Error string         `json:"error,omitempty"`
}

func (h *GameHandler) ConnectWS(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.sendGameError(w, err)
		return
	}

	conn, err := h.ws.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WithError(err).Warn("unable to upgrade connection")
		return
	}
	defer conn.Close()

	log := h.log.WithFields(logrus.Fields{"session": s.ID, "remote_addr": r.RemoteAddr})
	log.Debug("websocket connected")

	events, cancel := s.Subscribe(h.ws.EventBuffer)
	defer cancel()

	out := make(chan wsMessage)
	done := make(chan struct{})
	writerDone := make(chan struct{})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(writerDone)
		h.writeLoop(conn, log, events, out, done)
	}()

	send := func(m wsMessage) bool {
		select {
		case out <- m:
			return true
		case <-writerDone:
			return false
		}
	}

	view := s.View()
	if send(wsMessage{View: &view}) {
		h.readLoop(r.Context(), conn, log, s, send)
	}

	close(done)
	wg.Wait()
	log.Debug("websocket disconnected")
}

func (h *GameHandler) readLoop(
	ctx context.Context,
	conn *websocket.Conn,
	log *logrus.Entry,
	s *session.Session,
	send func(wsMessage) bool,
) {
	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err,
				websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.WithError(err).Debug("read failed")
			}
			return
		}
		if mt != websocket.TextMessage {
			continue
		}
		for _, command := range splitCommands(string(message)) {
			log.WithField("command", command).Debug("ws command")
			view, err := executeCommand(s, command)
			msg := wsMessage{}
			if err != nil {
				msg.Error = err.Error()
			} else {
				msg.View = &view
				h.afterMove(ctx, s, view)
			}
			if !send(msg) {
				return
			}
		}
	}
}

func (h *GameHandler) writeLoop(
	conn *websocket.Conn,
	log *logrus.Entry,
	events <-chan session.Event,
	out <-chan wsMessage,
	done <-chan struct{},
) {
	ping := time.NewTicker(h.ws.PingInterval)
	defer ping.Stop()

	write := func(m wsMessage) bool {
		_ = conn.SetWriteDeadline(time.Now().Add(h.ws.WriteTimeout))
		if err := conn.WriteJSON(m); err != nil {
			log.WithError(err).Debug("write failed")
			conn.Close()
			return false
		}
		return true
	}

	for {
		select {
		case <-done:
			_ = conn.WriteControl(
				websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
				time.Now().Add(h.ws.WriteTimeout),
			)
			return
		case e, ok := <-events:
			if !ok {
				return
			}
			if !write(wsMessage{Event: &e}) {
				return
			}
		case m := <-out:
			if !write(m) {
				return
			}
		case <-ping.C:
			if err := conn.WriteControl(
				websocket.PingMessage, nil, time.Now().Add(h.ws.WriteTimeout),
			); err != nil {
				log.WithError(err).Debug("ping failed")
				conn.Close()
				return
			}
		}
	}
}
