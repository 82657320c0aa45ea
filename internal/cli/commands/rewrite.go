package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gandaldf/sqlrebuild"
	"github.com/gandaldf/sqlrebuild/internal/cli/config"
)

// NewRewriteCommand creates the rewrite command.
func NewRewriteCommand() *cobra.Command {
	var vf valueFlags
	cmd := &cobra.Command{
		Use:   "rewrite [file]",
		Short: "Rewrite placeholders and expand list values",
		Long: `Rewrite every :name and ? placeholder of a SQL template so that each one
is backed by exactly one scalar value, expanding list values into
comma-separated placeholder lists. The template is split on unquoted
semicolons; each statement is printed with the values it binds.

The template is read from the file argument, or from stdin.`,
		Example: `  # Expand an IN list
  echo 'SELECT * FROM t WHERE id IN (:ids)' | sqlrebuild rewrite --set 'ids=[1, 2, 3]'

  # Positional values, Postgres placeholders, JSON output
  sqlrebuild rewrite query.sql --arg 7 --style dollar -o json

  # Values from a file
  sqlrebuild rewrite query.sql --values values.yaml`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := rebuildInput(cmd, args, &vf)
			if err != nil {
				return err
			}
			cfg := config.FromContext(cmd.Context())
			return render(cmd.OutOrStdout(), cfg.Output, toOutput(qs, true))
		},
	}
	vf.register(cmd)
	return cmd
}

// NewSplitCommand creates the split command.
func NewSplitCommand() *cobra.Command {
	var vf valueFlags
	cmd := &cobra.Command{
		Use:   "split [file]",
		Short: "Split a SQL template into statements",
		Long: `Split a SQL template on semicolons outside literals and comments and
print the rewritten statements without their values.

Placeholders still need values; pass them with --values, --set and --arg.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			qs, err := rebuildInput(cmd, args, &vf)
			if err != nil {
				return err
			}
			cfg := config.FromContext(cmd.Context())
			return render(cmd.OutOrStdout(), cfg.Output, toOutput(qs, false))
		},
	}
	vf.register(cmd)
	return cmd
}

// rebuildInput reads the template and values and rebuilds them with the
// configured dialect and settings.
func rebuildInput(cmd *cobra.Command, args []string, vf *valueFlags) ([]sqlrebuild.Query, error) {
	ctx := cmd.Context()
	cfg := config.FromContext(ctx)
	logger := config.GetLogger(ctx)

	sql, err := readInput(cmd, args)
	if err != nil {
		return nil, err
	}
	values, err := vf.load()
	if err != nil {
		return nil, err
	}
	d, lib, err := cfg.Engine(logger)
	if err != nil {
		return nil, err
	}

	qs, err := sqlrebuild.NewParser(d, lib).Rebuild(sqlrebuild.NewQuery(sql, values))
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild statement: %w", err)
	}
	logger.Debug("rebuilt input", "dialect", d.String(), "statements", len(qs))
	return qs, nil
}
