// Package cli holds the operator commands: migrations, listing and the batch
// status refresh.
package cli

import (
	"github.com/gesthub/gesthub/internal/config"
	"github.com/spf13/cobra"
)

// RootCmd returns the gesthub command with every subcommand attached.
func RootCmd(version string) *cobra.Command {
	var envPath string

	rootCmd := &cobra.Command{
		Use:           "gesthub",
		Short:         "Track invoices waiting for client pickup",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.Load(envPath)
		},
	}
	rootCmd.PersistentFlags().StringVar(&envPath, "env", "", "path to a .env file")

	rootCmd.AddCommand(MigrateCmd())
	rootCmd.AddCommand(ListCmd())
	rootCmd.AddCommand(RefreshStatusCmd())
	rootCmd.AddCommand(RemindCmd())
	rootCmd.AddCommand(CollectCmd())

	return rootCmd
}
