package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tuannm99/novarow/internal"
	"github.com/tuannm99/novarow/internal/catalog"
	"github.com/tuannm99/novarow/internal/record"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type globalFlags struct {
	configPath string
	schemaPath string
	logLevel   string
}

type app struct {
	flags  globalFlags
	cfg    *internal.RowEncConfig
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "rowenc",
		Short:         "Encode rows into the cell wire format",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&a.flags.configPath, "config", "c", "", "config file (yaml)")
	pf.StringVarP(&a.flags.schemaPath, "schema", "s", "", "schema descriptor (overrides schema.path)")
	pf.StringVar(&a.flags.logLevel, "log-level", "", "log level (overrides log.level)")

	root.AddCommand(newEncodeCmd(a), newDescribeCmd(a), newShellCmd(a), newVersionCmd())
	return root
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := internal.LoadConfig(a.flags.configPath)
	if err != nil {
		return err
	}
	if a.flags.schemaPath != "" {
		cfg.Schema.Path = a.flags.schemaPath
	}
	if a.flags.logLevel != "" {
		cfg.Log.Level = a.flags.logLevel
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Log.Level)); err != nil {
		return fmt.Errorf("log level %q: %w", cfg.Log.Level, err)
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.EqualFold(cfg.Log.Format, "json") {
		handler = slog.NewJSONHandler(stderr, opts)
	} else {
		handler = slog.NewTextHandler(stderr, opts)
	}

	a.cfg = cfg
	a.logger = slog.New(handler).With("app", cfg.AppName)
	return nil
}

func (a *app) loadSchema() (*record.Context, error) {
	if a.cfg.Schema.Path == "" {
		return nil, fmt.Errorf("no schema: set --schema or schema.path")
	}
	ctx, err := catalog.Load(a.cfg.Schema.Path)
	if err != nil {
		return nil, err
	}
	a.logger.Debug("schema.loaded", "path", a.cfg.Schema.Path, "columns", ctx.NumCols())
	return ctx, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		// skip config loading
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "rowenc %s\n", version)
		},
	}
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "rowenc: %v\n", err)
		os.Exit(1)
	}
}
