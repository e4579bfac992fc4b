package session

import (
	"time"

	"github.com/vancomm/minefield/internal/mines"
)

// View is a consistent snapshot of a session as the player sees it.
type View struct {
	SessionID  string     `json:"session_id"`
	Rows       int        `json:"rows"`
	Cols       int        `json:"cols"`
	MineCount  int        `json:"mine_count"`
	Remaining  int        `json:"remaining"`
	Phase      string     `json:"phase"`
	Grid       mines.Grid `json:"grid"`
	Colors     []string   `json:"colors,omitempty"`
	StartedAt  *int64     `json:"started_at,omitempty"`
	EndedAt    *int64     `json:"ended_at,omitempty"`
	PlaytimeMs int64      `json:"playtime_ms"`
}

func (v View) Won() bool  { return v.Phase == mines.Won.String() }
func (v View) Lost() bool { return v.Phase == mines.Lost.String() }

func unixMilli(t time.Time) *int64 {
	if t.IsZero() {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

func (s *Session) view() View {
	v := View{
		SessionID:  s.ID,
		Rows:       s.game.Rows(),
		Cols:       s.game.Cols(),
		MineCount:  s.game.BombCount(),
		Remaining:  s.game.RemainingBombCount(),
		Phase:      s.game.Phase().String(),
		Grid:       s.game.Grid(),
		StartedAt:  unixMilli(s.startedAt),
		EndedAt:    unixMilli(s.endedAt),
		PlaytimeMs: s.playtime().Milliseconds(),
	}

	cells := s.game.Cells()
	for _, c := range cells {
		if c.Color != "" {
			v.Colors = make([]string, len(cells))
			break
		}
	}
	if v.Colors != nil {
		for i, c := range cells {
			v.Colors[i] = c.Color
		}
	}
	return v
}
