package handlers

import (
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/vancomm/minefield/internal/middleware"
	"github.com/vancomm/minefield/internal/mines"
	"github.com/vancomm/minefield/internal/repository"
)

var ErrNotLoggedIn = errors.New("not logged in")

type RecordsHandler struct {
	log     *logrus.Entry
	records RecordStore
}

func NewRecordsHandler(log *logrus.Entry, records RecordStore) *RecordsHandler {
	return &RecordsHandler{
		log:     log.WithField("component", "records"),
		records: records,
	}
}

func (h *RecordsHandler) options(r *http.Request) ([]repository.RecordsOption, error) {
	dto, err := ParseRecordsQuery(r.URL.Query())
	if err != nil {
		return nil, err
	}

	var options []repository.RecordsOption
	if dto.Rows != 0 || dto.Cols != 0 || dto.MineCount != 0 {
		options = append(options, repository.RecordsForParams(mines.GameParams{
			Rows: dto.Rows, Cols: dto.Cols, MineCount: dto.MineCount,
		}))
	}
	if dto.Username != "" {
		options = append(options, repository.RecordsForUsername(dto.Username))
	}
	if dto.Limit != 0 {
		options = append(options, repository.RecordsLimit(dto.Limit))
	}
	if dto.Mine {
		playerID := middleware.PlayerID(r.Context())
		if playerID == nil {
			return nil, ErrNotLoggedIn
		}
		options = append(options, repository.RecordsForPlayer(*playerID))
	}

	if _, err := repository.NewRecordFilters(options...); err != nil {
		return nil, err
	}
	return options, nil
}

// List returns the fastest won games, optionally narrowed to one board,
// one username or the requesting player.
func (h *RecordsHandler) List(w http.ResponseWriter, r *http.Request) {
	options, err := h.options(r)
	if errors.Is(err, ErrNotLoggedIn) {
		sendError(w, h.log, http.StatusUnauthorized, err)
		return
	}
	if err != nil {
		sendError(w, h.log, http.StatusBadRequest, err)
		return
	}

	records, err := h.records.GetRecords(r.Context(), options...)
	if err != nil {
		internalError(w, h.log, "unable to fetch records", err)
		return
	}
	if records == nil {
		records = []repository.Record{}
	}
	sendJSONOrLog(w, h.log, records)
}
