package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vancomm/minefield/internal/mines"
)

type NewGameDTO struct {
	Rows      int     `schema:"rows,required"`
	Cols      int     `schema:"cols,required"`
	MineCount int     `schema:"mine_count"`
	Ratio     float64 `schema:"ratio"`
}

func ParseNewGameDTO(src map[string][]string) (NewGameDTO, error) {
	var dto NewGameDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

func (d NewGameDTO) Params(defaultRatio float64) mines.GameParams {
	p := mines.GameParams{
		Rows:      d.Rows,
		Cols:      d.Cols,
		MineCount: d.MineCount,
		Ratio:     d.Ratio,
	}
	if p.MineCount == 0 && p.Ratio == 0 {
		p.Ratio = defaultRatio
	}
	return p
}

type PositionDTO struct {
	Row int `schema:"row,required"`
	Col int `schema:"col,required"`
}

func ParsePosition(src map[string][]string) (PositionDTO, error) {
	var dto PositionDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

type RecordsQueryDTO struct {
	Rows      int    `schema:"rows"`
	Cols      int    `schema:"cols"`
	MineCount int    `schema:"mine_count"`
	Username  string `schema:"username"`
	Limit     int    `schema:"limit"`
	Mine      bool   `schema:"mine"`
}

func ParseRecordsQuery(src map[string][]string) (RecordsQueryDTO, error) {
	var dto RecordsQueryDTO
	err := decoder.Decode(&dto, src)
	return dto, err
}

// parseRowCol reads the two coordinates of a websocket command.
func parseRowCol(args []string) (row int, col int, err error) {
	if row, err = strconv.Atoi(args[0]); err != nil {
		return 0, 0, fmt.Errorf("row must be an int")
	}
	if col, err = strconv.Atoi(args[1]); err != nil {
		return 0, 0, fmt.Errorf("col must be an int")
	}
	return row, col, nil
}

func splitCommands(text string) []string {
	var commands []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			commands = append(commands, line)
		}
	}
	return commands
}
