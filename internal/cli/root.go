// Package cli provides the command-line interface for sqlrebuild.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/gandaldf/sqlrebuild/internal/cli/commands"
	"github.com/gandaldf/sqlrebuild/internal/cli/config"
	"github.com/gandaldf/sqlrebuild/internal/database"
)

// Version information (set at build time).
var Version = "0.1.0"

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "sqlrebuild",
		Short: "Rewrite parameterized SQL for drivers that bind scalar values",
		Long: `sqlrebuild scans SQL templates with the lexical rules of their dialect,
splits them on unquoted semicolons, and rewrites :named and ? placeholders
so that every placeholder is backed by exactly one scalar value. List values
are expanded into IN (...) lists.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}
			logger := config.NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			if cfg.File != "" {
				logger.Debug("using config file", "path", cfg.File)
			}
			cmd.SetContext(config.WithContext(cmd.Context(), cfg, logger))
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	pf.StringP("dialect", "d", "", "SQL dialect (postgres|mysql|sqlite|sqlserver|noop)")
	pf.String("style", "", "placeholder style (named|question|dollar|atp)")
	pf.String("numbered", "", "character marking positional placeholders (default ?)")
	pf.Int("max-params", 0, "maximum placeholders per statement (0 for the dialect default, <0 unlimited)")
	pf.Int("max-name-len", 0, "maximum placeholder name length (0 for the default)")
	pf.String("driver", "", "database/sql driver for exec")
	pf.String("dsn", "", "data source name for exec")
	pf.StringP("output", "o", "", "output format (text|json|yaml)")
	pf.BoolP("verbose", "v", false, "verbose output")

	_ = rootCmd.RegisterFlagCompletionFunc("dialect", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"postgres", "mysql", "sqlite", "sqlserver", "noop"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("style", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"named", "question", "dollar", "atp"}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{config.OutputText, config.OutputJSON, config.OutputYAML}, cobra.ShellCompDirectiveNoFileComp
	})
	_ = rootCmd.RegisterFlagCompletionFunc("driver", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return database.Names(), cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewRewriteCommand())
	rootCmd.AddCommand(commands.NewSplitCommand())
	rootCmd.AddCommand(commands.NewExecCommand())

	return rootCmd
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
