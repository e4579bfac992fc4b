package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/repository"
	"github.com/vancomm/minefield/internal/session"
)

// RecordStore keeps won games. *repository.Queries implements it.
type RecordStore interface {
	CreateRecord(ctx context.Context, params repository.CreateRecordParams) (*repository.Record, error)
	GetRecords(ctx context.Context, options ...repository.RecordsOption) ([]repository.Record, error)
}

type GameHandler struct {
	log     *logrus.Entry
	store   *session.Store
	records RecordStore
	ws      *config.WebSocket
	limits  *config.Game
}

// NewGameHandler builds the game endpoints. records may be nil, in which
// case won games are not saved.
func NewGameHandler(
	log *logrus.Entry,
	store *session.Store,
	records RecordStore,
	ws *config.WebSocket,
	limits *config.Game,
) *GameHandler {
	return &GameHandler{
		log:     log.WithField("component", "game"),
		store:   store,
		records: records,
		ws:      ws,
		limits:  limits,
	}
}

var ErrBoardTooLarge = errors.New("board too large")

func gameErrorStatus(err error) int {
	switch {
	case errors.Is(err, mines.ErrInvalidCell),
		errors.Is(err, mines.ErrOutOfBounds),
		errors.Is(err, mines.ErrInvalidParams),
		errors.Is(err, mines.ErrTooManyMines),
		errors.Is(err, ErrBoardTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, mines.ErrGameOver):
		return http.StatusConflict
	case errors.Is(err, session.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, session.ErrNotOwner):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func (h *GameHandler) sendGameError(w http.ResponseWriter, err error) {
	status := gameErrorStatus(err)
	if status == http.StatusInternalServerError {
		internalError(w, h.log, "game operation failed", err)
		return
	}
	sendError(w, h.log, status, err)
}

func (h *GameHandler) NewGame(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	dto, err := ParseNewGameDTO(query)
	if err != nil {
		sendError(w, h.log, http.StatusBadRequest, err)
		return
	}
	if dto.Rows > h.limits.MaxRows || dto.Cols > h.limits.MaxCols {
		h.sendGameError(w, fmt.Errorf("%w: at most %dx%d",
			ErrBoardTooLarge, h.limits.MaxRows, h.limits.MaxCols))
		return
	}

	s, err := h.store.Create(
		dto.Params(h.limits.DefaultRatio), middleware.PlayerID(r.Context()),
	)
	if err != nil {
		h.sendGameError(w, err)
		return
	}

	view := s.View()
	// the first click may come with the request
	if query.Has("row") || query.Has("col") {
		pos, err := ParsePosition(query)
		if err != nil {
			h.store.Delete(s.ID)
			sendError(w, h.log, http.StatusBadRequest, err)
			return
		}
		if view, err = s.Move(pos.Row, pos.Col); err != nil {
			h.store.Delete(s.ID)
			h.sendGameError(w, err)
			return
		}
		h.afterMove(r.Context(), s, view)
	}

	sendStatusJSONOrLog(w, h.log, http.StatusCreated, view)
}

// session looks up the session named in the path and checks that the
// requester may use it.
func (h *GameHandler) session(r *http.Request) (*session.Session, error) {
	s, err := h.store.Get(r.PathValue("id"))
	if err != nil {
		return nil, err
	}
	if err := s.CheckOwner(middleware.PlayerID(r.Context())); err != nil {
		return nil, err
	}
	return s, nil
}

func (h *GameHandler) Fetch(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.sendGameError(w, err)
		return
	}
	sendJSONOrLog(w, h.log, s.View())
}

type cellOp func(s *session.Session, row, col int) (session.View, error)

func (h *GameHandler) cellHandler(op cellOp) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pos, err := ParsePosition(r.URL.Query())
		if err != nil {
			sendError(w, h.log, http.StatusBadRequest, err)
			return
		}
		s, err := h.session(r)
		if err != nil {
			h.sendGameError(w, err)
			return
		}
		view, err := op(s, pos.Row, pos.Col)
		if err != nil {
			h.sendGameError(w, err)
			return
		}
		h.afterMove(r.Context(), s, view)
		sendJSONOrLog(w, h.log, view)
	}
}

func (h *GameHandler) Move() http.HandlerFunc {
	return h.cellHandler((*session.Session).Move)
}

func (h *GameHandler) Flag() http.HandlerFunc {
	return h.cellHandler((*session.Session).Flag)
}

func (h *GameHandler) Chord() http.HandlerFunc {
	return h.cellHandler((*session.Session).Chord)
}

func (h *GameHandler) Reset(w http.ResponseWriter, r *http.Request) {
	s, err := h.session(r)
	if err != nil {
		h.sendGameError(w, err)
		return
	}
	view, err := s.Reset()
	if err != nil {
		h.sendGameError(w, err)
		return
	}
	sendJSONOrLog(w, h.log, view)
}

// afterMove saves a record for a game the last move has won. Failures are
// logged; the move itself already happened.
func (h *GameHandler) afterMove(ctx context.Context, s *session.Session, view session.View) {
	if !view.Won() || h.records == nil {
		return
	}
	record, err := h.records.CreateRecord(ctx, repository.CreateRecordParams{
		SessionId: s.ID,
		PlayerId:  s.PlayerID,
		Params:    s.Params(),
		Playtime:  s.Playtime(),
	})
	if err != nil {
		h.log.WithError(err).WithField("session", s.ID).Error("unable to save record")
		return
	}
	h.log.WithFields(logrus.Fields{
		"session":     s.ID,
		"record":      record.RecordId,
		"playtime_ms": record.PlaytimeMs,
	}).Info("record saved")
}
