package main

import (
	"bufio"
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/tuannm99/novarow/internal/jsonval"
	"github.com/tuannm99/novarow/internal/rowenc"
	"github.com/tuannm99/novarow/internal/wire"
)

type encodeFlags struct {
	values     string
	input      string
	format     string
	frame      bool
	metricsOut string
}

func newEncodeCmd(a *app) *cobra.Command {
	var f encodeFlags

	cmd := &cobra.Command{
		Use:   "encode",
		Short: "Encode JSON rows against the schema descriptor",
		Long: `Encode reads rows as JSON and writes their cell payloads.

A row is a JSON array (positional) or object (by column name). With --values
a single row is given inline; otherwise rows are read one per line from
--input, or stdin when --input is "-" or empty.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("format") {
				a.cfg.Output.Format = f.format
			}
			if cmd.Flags().Changed("frame") {
				a.cfg.Output.Frame = f.frame
			}
			return a.encode(cmd, f)
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&f.values, "values", "", "a single row as JSON")
	fl.StringVarP(&f.input, "input", "i", "", "file of JSON rows, one per line (default stdin)")
	fl.StringVarP(&f.format, "format", "f", "hex", "output format: hex|base64|raw")
	fl.BoolVar(&f.frame, "frame", false, "wrap each row in a frame: 4-byte length, uint16 value count, cells")
	fl.StringVar(&f.metricsOut, "metrics-out", "", "write encode metrics to this file in text exposition format")
	return cmd
}

func (a *app) encode(cmd *cobra.Command, f encodeFlags) error {
	ctx, err := a.loadSchema()
	if err != nil {
		return err
	}

	reg := prometheus.NewRegistry()
	metrics, err := rowenc.NewMetrics(reg)
	if err != nil {
		return err
	}
	enc, err := rowenc.NewEncoder(ctx, rowenc.WithLogger(a.logger), rowenc.WithMetrics(metrics))
	if err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	defer out.Flush()

	emit := func(line int, data []byte) error {
		bundle, err := jsonval.Decode(ctx, data)
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		row, err := enc.Encode(bundle)
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		return a.writeRow(out, row)
	}

	if f.values != "" {
		err = emit(1, []byte(f.values))
	} else {
		err = a.eachLine(cmd, f.input, emit)
	}
	if f.metricsOut != "" {
		if werr := prometheus.WriteToTextfile(f.metricsOut, reg); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

func (a *app) eachLine(cmd *cobra.Command, path string, fn func(int, []byte) error) error {
	var r io.Reader = cmd.InOrStdin()
	if path != "" && path != "-" {
		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()
		r = file
	}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64<<10), wire.MaxFrameSize)
	line := 0
	for sc.Scan() {
		line++
		data := bytes.TrimSpace(sc.Bytes())
		if len(data) == 0 {
			continue
		}
		if err := fn(line, data); err != nil {
			return err
		}
	}
	return sc.Err()
}

func (a *app) writeRow(w io.Writer, row rowenc.Row) error {
	b := row.Payload
	if a.cfg.Output.Frame {
		var err error
		if b, err = wire.AppendFrame(make([]byte, 0, 6+len(row.Payload)), row.Payload, row.Count); err != nil {
			return err
		}
	}

	switch a.cfg.Output.Format {
	case "raw":
		_, err := w.Write(b)
		return err
	case "base64":
		_, err := fmt.Fprintln(w, base64.StdEncoding.EncodeToString(b))
		return err
	case "hex":
		_, err := fmt.Fprintln(w, hex.EncodeToString(b))
		return err
	}
	return fmt.Errorf("unknown output format %q", a.cfg.Output.Format)
}
