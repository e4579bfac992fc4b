package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/vancomm/minefield/internal/mines"
)

// Record is a won game, ranked by playtime within its board configuration.
type Record struct {
	RecordId   int64     `db:"record_id" json:"record_id"`
	SessionId  string    `db:"session_id" json:"session_id"`
	Username   *string   `db:"username" json:"username"`
	Rows       int       `db:"board_rows" json:"rows"`
	Cols       int       `db:"board_cols" json:"cols"`
	MineCount  int       `db:"mine_count" json:"mine_count"`
	PlaytimeMs int64     `db:"playtime_ms" json:"playtime_ms"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

type CreateRecordParams struct {
	SessionId string
	PlayerId  *int64
	Params    mines.GameParams
	Playtime  time.Duration
}

const selectRecords = `
	SELECT
		record_id,
		session_id,
		username,
		board_rows,
		board_cols,
		mine_count,
		playtime_ms,
		record.created_at
	FROM record
		LEFT OUTER JOIN player USING (player_id)`

// CreateRecord stores a won game. Saving the same session twice returns the
// first record.
func (q *Queries) CreateRecord(ctx context.Context, params CreateRecordParams) (*Record, error) {
	rows, _ := q.db.Query(
		ctx,
		`INSERT INTO record (
			session_id, player_id, board_rows, board_cols, mine_count, playtime_ms
		)
		VALUES (
			@session_id, @player_id, @board_rows, @board_cols, @mine_count, @playtime_ms
		)
		RETURNING record_id`,
		pgx.NamedArgs{
			"session_id":  params.SessionId,
			"player_id":   params.PlayerId,
			"board_rows":  params.Params.Rows,
			"board_cols":  params.Params.Cols,
			"mine_count":  params.Params.BombCount(),
			"playtime_ms": params.Playtime.Milliseconds(),
		},
	)
	_, err := pgx.CollectExactlyOneRow(rows, pgx.RowTo[int64])
	var pgErr *pgconn.PgError
	if err != nil &&
		!(errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation) {
		return nil, err
	}
	return q.FetchRecord(ctx, params.SessionId)
}

func (q *Queries) FetchRecord(ctx context.Context, sessionId string) (*Record, error) {
	rows, _ := q.db.Query(
		ctx, selectRecords+" WHERE session_id = $1", sessionId,
	)
	return pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByName[Record])
}

type RecordFilters struct {
	username *string
	playerId *int64
	params   *mines.GameParams
	limit    int
}

const (
	DefaultRecordsLimit = 50
	MaxRecordsLimit     = 500
)

func (f RecordFilters) WhereClause() (string, pgx.NamedArgs) {
	args := pgx.NamedArgs{}
	clauses := []string{}
	if f.username != nil {
		args["username"] = *f.username
		clauses = append(clauses, "username = @username")
	}
	if f.playerId != nil {
		args["player_id"] = *f.playerId
		clauses = append(clauses, "player_id = @player_id")
	}
	if f.params != nil {
		args["board_rows"] = f.params.Rows
		args["board_cols"] = f.params.Cols
		args["mine_count"] = f.params.BombCount()
		clauses = append(
			clauses,
			"board_rows = @board_rows",
			"board_cols = @board_cols",
			"mine_count = @mine_count",
		)
	}
	return strings.Join(clauses, " AND "), args
}

type RecordsOption func(*RecordFilters) error

func RecordsForUsername(username string) RecordsOption {
	return func(f *RecordFilters) error {
		f.username = &username
		return nil
	}
}

func RecordsForPlayer(playerId int64) RecordsOption {
	return func(f *RecordFilters) error {
		f.playerId = &playerId
		return nil
	}
}

func RecordsForParams(params mines.GameParams) RecordsOption {
	return func(f *RecordFilters) error {
		if err := params.Validate(); err != nil {
			return err
		}
		f.params = &params
		return nil
	}
}

func RecordsLimit(limit int) RecordsOption {
	return func(f *RecordFilters) error {
		if limit <= 0 || limit > MaxRecordsLimit {
			return fmt.Errorf("limit must be between 1 and %d", MaxRecordsLimit)
		}
		f.limit = limit
		return nil
	}
}

func NewRecordFilters(options ...RecordsOption) (*RecordFilters, error) {
	filters := &RecordFilters{limit: DefaultRecordsLimit}
	for _, op := range options {
		if err := op(filters); err != nil {
			return nil, err
		}
	}
	return filters, nil
}

// RecordsQuery builds the ranking query for the given filters.
func (f RecordFilters) RecordsQuery() (string, pgx.NamedArgs) {
	sql := selectRecords
	whereClause, args := f.WhereClause()
	if whereClause != "" {
		sql += " WHERE " + whereClause
	}
	sql += " ORDER BY playtime_ms, record.created_at LIMIT @limit"
	args["limit"] = f.limit
	return sql, args
}

func (q *Queries) GetRecords(ctx context.Context, options ...RecordsOption) ([]Record, error) {
	filters, err := NewRecordFilters(options...)
	if err != nil {
		return nil, err
	}
	sql, args := filters.RecordsQuery()
	rows, err := q.db.Query(ctx, sql, args)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToStructByName[Record])
}
