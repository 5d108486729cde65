package main

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/writablebook-go/writablebook/postgresengine"
)

// app carries what every subcommand needs once the root command has resolved its configuration.
type app struct {
	cfg    *Config
	logger *slog.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "bookctl",
		Short:         "Manage writable books stored in PostgreSQL",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags())
			if err != nil {
				return err
			}

			logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel)
			if err != nil {
				return err
			}

			a.cfg = cfg
			a.logger = logger

			return nil
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String(flagDSN, defaultDSN, "PostgreSQL DSN (env BOOKSTORE_POSTGRES_DSN)")
	flags.String(flagReplicaDSN, "", "PostgreSQL replica DSN for eventually consistent reads")
	flags.String(flagAdapterType, adapterPGXPool, "database adapter: pgx.pool, sql.db or sqlx.db")
	flags.String(flagTableName, defaultTableName, "table holding the books")
	flags.String(flagLogLevel, defaultLogLevel, "log level: debug, info, warn or error")
	flags.Bool(flagOTel, false, "also report logs, metrics and spans to the global OpenTelemetry providers")

	rootCmd.AddCommand(
		newSchemaCommand(a),
		newNewCommand(a),
		newShowCommand(a),
		newEditCommand(a),
		newDeleteCommand(a),
		newFixturesCommand(),
	)

	return rootCmd
}

// withStore opens the book store for the duration of fn.
func (a *app) withStore(ctx context.Context, fn func(bs *postgresengine.BookStore) error) error {
	bs, closeStore, err := openStore(ctx, a.cfg, a.logger)
	if err != nil {
		return err
	}
	defer closeStore()

	return fn(bs)
}
