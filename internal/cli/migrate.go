package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/gesthub/gesthub/internal/config"
	"github.com/gesthub/gesthub/pkg/pg"
	"github.com/spf13/cobra"
)

// MigrateCmd returns the migrate command group
func MigrateCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or inspect database migrations",
	}
	cmd.PersistentFlags().StringVar(&dir, "dir", "", "migrations directory (default MIGRATIONS_DIR)")

	run := func(name string, fn func(pg.Config, string) error) *cobra.Command {
		return &cobra.Command{
			Use:   name,
			Short: fmt.Sprintf("Run goose %s against the write database", name),
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				cfg := config.Get()
				path := dir
				if path == "" {
					path = cfg.MigrationsDir
				}
				if err := fn(cfg.PostgresWrite(), path); err != nil {
					return fmt.Errorf("migrate %s: %w", name, err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), color.New(color.FgGreen).Sprint("✓ migrate "+name))
				return nil
			},
		}
	}

	cmd.AddCommand(run("up", pg.Migrate))
	cmd.AddCommand(run("down", pg.Rollback))
	cmd.AddCommand(run("status", pg.MigrationStatus))

	return cmd
}
