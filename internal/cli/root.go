// Package cli implements profitctl, the command line for loading ledger data
// and running reports without a server.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/rpggio/profitability/internal/app"
	"github.com/rpggio/profitability/internal/config"
	"github.com/rpggio/profitability/internal/domain/access"
	"github.com/rpggio/profitability/internal/store"
	"github.com/spf13/cobra"
)

var (
	Version = "dev"
	Commit  = "none"
)

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	dbPath     string
	viewer     string
	format     string
	output     string
	verbose    bool
	now        func() time.Time
}

// env is an opened database with the services wired over it.
type env struct {
	cfg config.Config
	db  *store.DB
	app *app.App
}

func (e *env) Close() error { return e.db.Close() }

// NewRootCmd builds the profitctl command tree.
func NewRootCmd() *cobra.Command {
	opts := &options{now: time.Now}

	root := &cobra.Command{
		Use:           "profitctl",
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		Short:         "Cost and revenue attribution reports from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		Long: `profitctl loads ledger data and runs the profitability reports
against the same database the server uses.

Configuration comes from --config (YAML), then PROFIT_* environment
variables. Reports are computed for --viewer and respect what that
person may see.`,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", os.Getenv("PROFIT_CONFIG_PATH"), "Configuration file")
	flags.StringVar(&opts.dbPath, "db", "", "SQLite database path (overrides configuration)")
	flags.StringVar(&opts.viewer, "viewer", os.Getenv("PROFIT_VIEWER_ID"), "Person the reports are computed for")
	flags.StringVarP(&opts.format, "format", "f", FormatTable, "Output format (table, json, csv, xlsx)")
	flags.StringVarP(&opts.output, "output", "o", "", "Write output to a file")
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Log to stderr")

	root.AddCommand(
		newMigrateCmd(opts),
		newLoadCmd(opts),
		newReportsCmd(opts),
		newReportCmd(opts),
		newHourlyCostCmd(opts),
		newProjectCmd(opts),
		newHiringCmd(opts),
		newQuoteCmd(opts),
	)
	return root
}

// Execute runs profitctl with the process arguments.
func Execute() error {
	return NewRootCmd().Execute()
}

func (o *options) logger() *slog.Logger {
	if !o.verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func (o *options) loadConfig() (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if o.configPath != "" {
		cfg, err = config.LoadFile(o.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return config.Config{}, err
	}
	if o.dbPath != "" {
		cfg.DB.Driver = "sqlite"
		cfg.DB.Path = o.dbPath
	}
	return cfg, nil
}

func (o *options) open(ctx context.Context) (*env, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	db, err := app.OpenDB(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	a := app.New(db, config.NewStore(cfg), app.Options{Now: o.now, Logger: o.logger()})
	return &env{cfg: cfg, db: db, app: a}, nil
}

// scope resolves the viewer flag. An unknown person sees nothing rather
// than failing, so a typo shows up as an empty report.
func (o *options) scope(ctx context.Context, e *env) (access.Scope, error) {
	viewer := o.viewer
	if viewer == "" {
		viewer = e.cfg.Transport.ViewerID
	}
	if viewer == "" {
		return access.Scope{}, errors.New("no viewer: pass --viewer or set PROFIT_VIEWER_ID")
	}
	return e.app.Engine.Scope(ctx, viewer)
}

func (o *options) render(cmd *cobra.Command, title string, v any) error {
	if o.output != "" && o.format != FormatXLSX {
		f, err := os.Create(o.output)
		if err != nil {
			return fmt.Errorf("failed to create output: %w", err)
		}
		defer f.Close()
		return render(f, o.format, title, v, o.output)
	}
	return render(cmd.OutOrStdout(), o.format, title, v, o.output)
}
