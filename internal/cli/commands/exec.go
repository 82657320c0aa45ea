package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gandaldf/sqlrebuild"
	"github.com/gandaldf/sqlrebuild/internal/cli/config"
	"github.com/gandaldf/sqlrebuild/internal/database"
)

// NewExecCommand creates the exec command.
func NewExecCommand() *cobra.Command {
	var vf valueFlags
	cmd := &cobra.Command{
		Use:   "exec [file]",
		Short: "Rewrite a SQL template and execute it",
		Long: `Rewrite a SQL template and execute every resulting statement in order
against the database selected by --driver and --dsn. The dialect and the
placeholder style follow the driver:

  mysql           MySQL rules, ? placeholders
  pgx, postgres   Postgres rules, $n placeholders
  sqlite          SQLite rules, ? placeholders

Execution stops at the first failing statement.`,
		Example: `  sqlrebuild exec migrate.sql --driver sqlite --dsn app.db
  sqlrebuild exec --driver pgx --dsn "$DATABASE_URL" --set 'ids=[1, 2]' purge.sql`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExec(cmd, args, &vf)
		},
	}
	vf.register(cmd)
	return cmd
}

func runExec(cmd *cobra.Command, args []string, vf *valueFlags) error {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	if cfg.Driver == "" {
		return fmt.Errorf("--driver is required (one of %s)", strings.Join(database.Names(), ", "))
	}

	sql, err := readInput(cmd, args)
	if err != nil {
		return err
	}
	values, err := vf.load()
	if err != nil {
		return err
	}
	_, lib, err := cfg.Engine(logger)
	if err != nil {
		return err
	}

	db, drv, err := database.Open(ctx, cfg.Driver, cfg.DSN)
	if err != nil {
		return err
	}
	defer db.Close()

	e := drv.Engine(lib)
	qs, err := e.Rebuild(sqlrebuild.NewQuery(sql, values))
	if err != nil {
		return fmt.Errorf("failed to rebuild statement: %w", err)
	}
	logger.Debug("executing", "driver", drv.Name, "dialect", drv.Dialect.String(), "statements", len(qs))

	results, execErr := e.ExecContext(ctx, db, qs...)
	out := toOutput(qs[:len(results)], false)
	for i, res := range results {
		if n, err := res.RowsAffected(); err == nil {
			out[i].RowsAffected = &n
		}
	}
	if err := render(cmd.OutOrStdout(), cfg.Output, out); err != nil {
		return err
	}
	if execErr != nil {
		return fmt.Errorf("failed to execute: %w", execErr)
	}
	return nil
}
