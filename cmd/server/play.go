package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/vancomm/minefield/internal/mines"
)

var (
	flagRows  int
	flagCols  int
	flagMines int
	flagRatio float64
	flagBoard string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play a game in the terminal",
	Long: `Play a game in the terminal, one command per line.

Commands:
  o <row> <col>  - Open a cell
  f <row> <col>  - Toggle a flag
  c <row> <col>  - Chord around an open cell
  r              - Start over
  q              - Quit

Examples:
  minefield play
  minefield play --rows 16 --cols 30 --mines 99
  minefield play --board 9:9:10`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		params := mines.GameParams{
			Rows: flagRows, Cols: flagCols, MineCount: flagMines, Ratio: flagRatio,
		}
		if flagBoard != "" {
			p, err := mines.ParseSeed(flagBoard)
			if err != nil {
				return err
			}
			params = *p
		}
		return play(cmd.InOrStdin(), cmd.OutOrStdout(), params,
			mines.WithRand(mines.NewRand()),
			mines.WithLogger(log.WithField("component", "mines")),
		)
	},
}

func init() {
	playCmd.Flags().IntVar(&flagRows, "rows", 9, "Board rows")
	playCmd.Flags().IntVar(&flagCols, "cols", 9, "Board columns")
	playCmd.Flags().IntVar(&flagMines, "mines", 10, "Mine count (0 = use --ratio)")
	playCmd.Flags().Float64Var(&flagRatio, "ratio", 0, "Share of cells holding a mine")
	playCmd.Flags().StringVar(&flagBoard, "board", "", "Board as rows:cols:mines, overrides the other flags")
}

var errQuit = errors.New("quit")

func play(in io.Reader, out io.Writer, params mines.GameParams, opts ...mines.Option) error {
	game, err := mines.NewGame(params, opts...)
	if err != nil {
		return err
	}

	var started time.Time
	game.AddObserver(mines.ObserverFuncs{
		GameStart: func() {
			started = time.Time{}
			fmt.Fprintf(out, "new game %s\n", params.Seed())
		},
		FieldChanged: func() {
			if started.IsZero() {
				started = time.Now()
			}
		},
		BombStepped: func(row, col int) {
			fmt.Fprintf(out, "boom at %d:%d\n", row, col)
		},
		Victory: func() {
			fmt.Fprintf(out, "cleared in %s\n", time.Since(started).Round(time.Millisecond))
		},
	})
	game.Play()
	printBoard(out, game)

	scanner := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		err := playCommand(game, line)
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(out, "error: %s\n", err)
			continue
		}
		printBoard(out, game)
	}
}

func playCommand(game *mines.Game, line string) error {
	parts := strings.Fields(line)
	switch parts[0] {
	case "q":
		return errQuit
	case "r":
		if err := game.Init(); err != nil {
			return err
		}
		game.Play()
		return nil
	case "o", "f", "c":
	default:
		return fmt.Errorf("unknown command %q", parts[0])
	}

	if len(parts) != 3 {
		return fmt.Errorf("%s takes a row and a column", parts[0])
	}
	row, err := strconv.Atoi(parts[1])
	if err != nil {
		return fmt.Errorf("invalid row: %w", err)
	}
	col, err := strconv.Atoi(parts[2])
	if err != nil {
		return fmt.Errorf("invalid col: %w", err)
	}

	switch parts[0] {
	case "o":
		return game.MakeMove(row, col)
	case "f":
		return game.ToggleFlag(row, col)
	default:
		return game.Chord(row, col)
	}
}

func printBoard(out io.Writer, game *mines.Game) {
	fmt.Fprintf(out, "%s, %d mines left\n", game.Phase(), game.RemainingBombCount())
	fmt.Fprint(out, game.Grid().ToString(game.Cols()))
}
