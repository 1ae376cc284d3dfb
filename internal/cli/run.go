package cli

import (
	"context"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/yawn/internal/query"
	"github.com/roach88/yawn/internal/querysql"
	"github.com/roach88/yawn/internal/store"
	"github.com/roach88/yawn/internal/store/pgstore"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Catalog  string
	Database string // SQLite path or PostgreSQL connection string
	Dialect  string
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <query.yaml>",
		Short: "Run a query document against a database",
		Long: `Compile a YAML query document against a CUE catalog and execute it.

With --dialect sqlite (the default) --db is the path of a SQLite database;
with --dialect postgres it is a PostgreSQL connection string.

Example:
  yawn run --catalog ./catalog --db ./books.db ./queries/longest.yaml
  yawn run --catalog ./catalog --dialect postgres --db postgres://localhost/books ./queries/longest.yaml --verbose`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Catalog, "catalog", "", "catalog directory (required)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "database path or connection string (required)")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "sqlite", "SQL dialect (sqlite|postgres)")
	_ = cmd.MarkFlagRequired("catalog")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runQuery(opts *RunOptions, docPath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	// Configure logging based on verbose flag
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: logLevel,
	}))

	dialect, err := querysql.ParseDialect(opts.Dialect)
	if err != nil {
		return outputCommandError(formatter, ErrCodeGeneric, err.Error())
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var compiler query.Compiler
	switch dialect {
	case querysql.Postgres:
		st, err := pgstore.Open(ctx, opts.Database, pgstore.Options{Logger: logger})
		if err != nil {
			return outputCommandError(formatter, ErrCodeExecute, "failed to open database: "+err.Error())
		}
		defer st.Close()
		compiler = st
	default:
		st, err := store.Open(opts.Database, store.Options{Logger: logger})
		if err != nil {
			return outputCommandError(formatter, ErrCodeExecute, "failed to open database: "+err.Error())
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		compiler = st
	}
	logger.Debug("database ready", "dialect", dialect.String())

	plan, err := loadPlan(formatter, opts.Catalog, docPath, compiler)
	if err != nil {
		return err
	}
	if _, err := resolvePlan(formatter, plan); err != nil {
		return err
	}

	rows, err := plan.List(ctx)
	if err != nil {
		return outputCommandError(formatter, ErrCodeExecute, err.Error())
	}
	logger.Info("query executed", "document", docPath, "rows", len(rows))
	return formatter.Rows(plan.Columns, rows)
}
