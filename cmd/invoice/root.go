package main

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/jesses-code-adventures/invoice/internal/archive"
	"github.com/jesses-code-adventures/invoice/internal/config"
	"github.com/jesses-code-adventures/invoice/internal/database"
	"github.com/jesses-code-adventures/invoice/internal/formatter"
	"github.com/jesses-code-adventures/invoice/internal/logger"
	"github.com/jesses-code-adventures/invoice/internal/service"
)

// skipStore marks commands that run without opening the database.
const skipStore = "skip-store"

// app holds what commands share. The store is opened once the root flags
// are parsed.
type app struct {
	dbFile    string
	outputDir string
	debug     bool
	version   bool

	formats *formatter.Registry
	cfg     *config.Config
	log     zerolog.Logger
	db      *database.SQLiteDB
	svc     *service.BillingService
}

func newApp() *app {
	return &app{formats: formatter.DefaultRegistry()}
}

// execute runs the command tree and closes the store however the command
// ended. Cobra skips post-run hooks when a command fails.
func (a *app) execute(ctx context.Context, cmd *cobra.Command) error {
	err := cmd.ExecuteContext(ctx)
	if cerr := a.close(); err == nil {
		err = cerr
	}
	return err
}

func (a *app) newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "invoice",
		Short: "Manage timesheets and invoices",
		Long: `Keep accounts, clients, templates, timesheets and invoices in a local database
and generate numbered invoice and timesheet documents from them.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Annotations[skipStore] == "true" {
				return nil
			}
			return a.open(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !a.version {
				return cmd.Help()
			}
			schema, dirty, err := a.svc.SchemaVersion()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "invoice %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "database schema version %d%s\n", schema, dirtyMarker(dirty))
			return nil
		},
	}

	// -f and -d are left to subcommands (--from, --date, --desc).
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.dbFile, "file", "", "Database file (default $DATABASE_URL or ./invoice.db)")
	flags.StringVarP(&a.outputDir, "output", "o", "", "Directory to write generated files to (default $OUTPUT_DIR or .)")
	flags.BoolVar(&a.debug, "debug", false, "Turn on debug logging")
	rootCmd.Flags().BoolVarP(&a.version, "version", "v", false, "Display software and database version")

	rootCmd.AddCommand(
		newInitCmd(a),
		newDBCmd(a),
		newSummaryCmd(a),
		newAccountCmd(a),
		newClientCmd(a),
		newTemplateCmd(a),
		newTagCmd(a),
		newTimesheetCmd(a),
		newInvoiceCmd(a),
	)

	return rootCmd
}

func (a *app) open(cmd *cobra.Command) error {
	cfg, err := config.Load(config.Overrides{
		DatabaseURL: a.dbFile,
		OutputDir:   a.outputDir,
		Debug:       a.debug,
	})
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log, err := logger.New(logger.LogConfig{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: cfg.LogOutput})
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}

	db, err := database.NewDB(cfg)
	if err != nil {
		return err
	}

	var opts []service.Option
	mirror, err := archive.NewFromConfig(cmd.Context(), cfg)
	if err != nil {
		db.Close()
		return err
	}
	if mirror != nil {
		opts = append(opts, service.WithArchive(mirror))
	}

	a.cfg, a.log, a.db = cfg, log, db
	a.svc = service.NewBillingService(db, cfg, a.formats, log, opts...)
	log.Debug().Str("database", cfg.DatabaseURL).Str("output", cfg.OutputDir).Msg("store opened")
	return nil
}

func (a *app) close() error {
	if a.db == nil {
		return nil
	}
	err := a.db.Close()
	a.db = nil
	return err
}

func dirtyMarker(dirty bool) string {
	if dirty {
		return " (dirty)"
	}
	return ""
}
