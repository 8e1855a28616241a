package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/tuannm99/novarow/internal/jsonval"
	"github.com/tuannm99/novarow/internal/record"
	"github.com/tuannm99/novarow/internal/rowenc"
)

const shellHelp = `meta commands:
  \q | quit | exit       quit
  \describe              print the schema columns
  \history [failed]      print history, or only rows that failed
  \help                  show help

rows:
  one JSON array or object per line, e.g. [1, "ann", null]`

type shell struct {
	app  *app
	ctx  *record.Context
	enc  *rowenc.Encoder
	hist *rowLog
	out  io.Writer
}

// eval handles one input line and reports whether the session should end.
func (s *shell) eval(line string) (quit bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return false
	}

	switch line {
	case `\q`, "quit", "exit":
		return true
	case `\help`:
		fmt.Fprintln(s.out, shellHelp)
		return false
	case `\history`, `\history failed`:
		s.hist.print(s.out, strings.HasSuffix(line, "failed"))
		return false
	case `\describe`:
		for i, col := range s.ctx.Columns() {
			fmt.Fprintf(s.out, "%d  %s %s\n", i, col.Name, col.Type)
		}
		return false
	}
	if strings.HasPrefix(line, `\`) {
		fmt.Fprintf(s.out, "unknown command: %s\n", line)
		return false
	}

	bundle, err := jsonval.Decode(s.ctx, []byte(line))
	if err == nil {
		var row rowenc.Row
		if row, err = s.enc.Encode(bundle); err == nil {
			err = s.app.writeRow(s.out, row)
		}
	}
	if err != nil {
		fmt.Fprintf(s.out, "error: %v\n", err)
	}

	if herr := s.hist.record(line, err); herr != nil {
		fmt.Fprintf(s.out, "history: %v\n", herr)
		s.app.logger.Debug("history.append", "path", s.hist.path, "err", herr)
	}
	return false
}

func newShellCmd(a *app) *cobra.Command {
	var (
		histPath string
		histMax  int
	)

	cmd := &cobra.Command{
		Use:   "shell",
		Short: "Encode rows interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, err := a.loadSchema()
			if err != nil {
				return err
			}
			enc, err := rowenc.NewEncoder(ctx, rowenc.WithLogger(a.logger))
			if err != nil {
				return err
			}

			h, err := openRowLog(histPath, histMax)
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "history: %v\n", err)
				a.logger.Debug("history.load", "path", histPath, "err", err)
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "rowenc> ",
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
				Stdout:          cmd.OutOrStdout(),
			})
			if err != nil {
				return fmt.Errorf("readline: %w", err)
			}
			defer func() { _ = rl.Close() }()

			for _, line := range h.rows() {
				if err := rl.SaveHistory(line); err != nil {
					a.logger.Debug("history.readline", "err", err)
					break
				}
			}

			s := &shell{app: a, ctx: ctx, enc: enc, hist: h, out: rl.Stdout()}
			fmt.Fprintf(s.out, "%d columns loaded from %s\n", ctx.NumCols(), a.cfg.Schema.Path)
			fmt.Fprintln(s.out, `type \help for help`)

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					continue
				}
				if err != nil {
					return nil
				}
				if s.eval(line) {
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&histPath, "history", defaultHistoryPath(), "history file path")
	cmd.Flags().IntVar(&histMax, "history-max", 2000, "max history entries loaded into memory")
	return cmd
}
