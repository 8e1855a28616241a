package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tuannm99/novarow/internal/encerr"
)

const outcomeOK = "ok"

// rowLog is the shell's persistent history. Each entry is a row as typed
// plus the outcome of encoding it, stored one "<outcome>\t<row>" per line.
type rowLog struct {
	path    string
	max     int
	entries []logEntry
}

type logEntry struct {
	outcome string
	row     string
}

func (e logEntry) failed() bool { return e.outcome != outcomeOK }

// openRowLog loads the last max entries of path. A missing file is an empty
// log; an empty path keeps the log in memory only.
func openRowLog(path string, max int) (*rowLog, error) {
	l := &rowLog{path: path, max: max}
	if path == "" {
		return l, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return l, nil
	}
	if err != nil {
		return l, err
	}
	for _, line := range strings.Split(string(data), "\n") {
		outcome, row, ok := strings.Cut(line, "\t")
		if !ok {
			// plain lines from older history files
			outcome, row = outcomeOK, line
		}
		if row = strings.TrimSpace(row); row != "" {
			l.add(logEntry{outcome: outcome, row: row})
		}
	}
	return l, nil
}

func (l *rowLog) add(e logEntry) {
	l.entries = append(l.entries, e)
	if l.max > 0 && len(l.entries) > l.max {
		l.entries = l.entries[len(l.entries)-l.max:]
	}
}

// record keeps row with the outcome of encErr and appends it to the file.
// The in-memory entry is kept even when the write fails.
func (l *rowLog) record(row string, encErr error) error {
	e := logEntry{outcome: outcomeOf(encErr), row: strings.TrimSpace(row)}
	if e.row == "" {
		return nil
	}
	l.add(e)
	if l.path == "" {
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(f, "%s\t%s\n", e.outcome, e.row); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func (l *rowLog) rows() []string {
	out := make([]string, len(l.entries))
	for i, e := range l.entries {
		out[i] = e.row
	}
	return out
}

// print lists the entries, or only the ones that failed to encode.
func (l *rowLog) print(w io.Writer, failedOnly bool) {
	for i, e := range l.entries {
		if failedOnly && !e.failed() {
			continue
		}
		fmt.Fprintf(w, "%5d  %-12s %s\n", i+1, e.outcome, e.row)
	}
}

func outcomeOf(err error) string {
	if err == nil {
		return outcomeOK
	}
	var e *encerr.Error
	if errors.As(err, &e) {
		return string(e.Kind)
	}
	return "error"
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".rowenc_history"
	}
	return filepath.Join(home, ".rowenc_history")
}
