// Package terminal is a line-based presentation layer that plays one game
// in the terminal.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/muesli/termenv"
	"github.com/rocketscienceinc/tictactoe-web/internal/entity"
	"github.com/rocketscienceinc/tictactoe-web/internal/tictactoe"
	"github.com/rocketscienceinc/tictactoe-web/internal/view"
)

const help = "enter \"<row> <col>\" (0-2), \"reset\" or \"quit\""

var errBadCommand = errors.New("unknown command")

type Terminal struct {
	logger      *slog.Logger
	output      *termenv.Output
	input       *bufio.Scanner
	engine      *tictactoe.Engine
	interactive bool
}

// New - builds a terminal game. The prompt is printed only when interactive is set.
func New(logger *slog.Logger, input io.Reader, output *termenv.Output, interactive bool) *Terminal {
	return &Terminal{
		logger:      logger.With("component", "terminal"),
		output:      output,
		input:       bufio.NewScanner(input),
		engine:      tictactoe.NewEngine(),
		interactive: interactive,
	}
}

// Run - reads commands until quit, end of input or ctx is canceled.
func (that *Terminal) Run(ctx context.Context) error {
	that.Render()

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		if that.interactive {
			fmt.Fprintf(that.output, "%s> ", view.PlayerSymbol(that.engine.State().Turn))
		}

		if !that.input.Scan() {
			if err := that.input.Err(); err != nil {
				return fmt.Errorf("failed to read input: %w", err)
			}
			return nil
		}

		line := strings.TrimSpace(that.input.Text())
		if line == "" {
			continue
		}

		if line == "quit" || line == "q" {
			return nil
		}

		redraw, err := that.handle(line)
		if err != nil {
			that.logger.Debug("command rejected", "command", line, "error", err)
			fmt.Fprintf(that.output, "%s\n%s\n", that.output.String(err.Error()).Faint(), help)
			continue
		}

		if redraw {
			that.Render()
		}
	}
}

func (that *Terminal) handle(line string) (bool, error) {
	if line == "reset" || line == "r" {
		return that.engine.Reset(), nil
	}

	fields := strings.Fields(line)
	if len(fields) != 2 {
		return false, fmt.Errorf("%w: %q", errBadCommand, line)
	}

	row, err := strconv.Atoi(fields[0])
	if err != nil {
		return false, fmt.Errorf("%w: %q", errBadCommand, line)
	}

	col, err := strconv.Atoi(fields[1])
	if err != nil {
		return false, fmt.Errorf("%w: %q", errBadCommand, line)
	}

	return that.engine.Activate(row, col)
}

// Render - draws the board, the status line and whose turn it is.
func (that *Terminal) Render() {
	board := view.New(that.engine.State())

	var b strings.Builder
	for i, row := range board.Rows {
		if i > 0 {
			b.WriteString("---+---+---\n")
		}

		for j, cell := range row {
			if j > 0 {
				b.WriteString("|")
			}
			b.WriteString(" " + that.symbol(cell.Symbol) + " ")
		}
		b.WriteString("\n")
	}

	if board.Finished {
		b.WriteString(that.output.String(board.Message).Bold().String() + "\n")
	} else {
		b.WriteString("turn: " + that.symbol(board.Turn) + "\n")
	}

	fmt.Fprint(that.output, b.String())
}

func (that *Terminal) symbol(symbol string) string {
	switch symbol {
	case view.SymbolFirst:
		return that.output.String(symbol).Foreground(that.output.Color("1")).Bold().String()
	case view.SymbolSecond:
		return that.output.String(symbol).Foreground(that.output.Color("4")).Bold().String()
	default:
		return symbol
	}
}

// State - returns the game currently shown.
func (that *Terminal) State() entity.Game {
	return that.engine.State()
}
