package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/gesthub/gesthub/internal/model"
	"github.com/spf13/cobra"
)

// ListCmd returns the list command
func ListCmd() *cobra.Command {
	var tab, status, search, order string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List notas the way the dashboard shows them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := notaService()
			if err != nil {
				return err
			}
			q := model.NotaQuery{
				Tab:    model.Tab(tab),
				Status: status,
				Search: search,
				Order:  model.SortOrder(order),
				Now:    svc.Now(),
			}.Normalize()

			notas, err := svc.List(context.Background(), q)
			if err != nil {
				return err
			}
			return printNotas(cmd.OutOrStdout(), notas, q.Now)
		},
	}

	cmd.Flags().StringVar(&tab, "tab", string(model.TabPending), "pending or collected")
	cmd.Flags().StringVar(&status, "status", model.StatusAll, "status filter")
	cmd.Flags().StringVarP(&search, "q", "q", "", "company or invoice substring")
	cmd.Flags().StringVar(&order, "order", string(model.SortAsc), "asc or desc by send date")

	return cmd
}

// RefreshStatusCmd returns the refresh-status command
func RefreshStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh-status",
		Short: "Recompute the stored status of every open nota",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := notaService()
			if err != nil {
				return err
			}
			notas, err := svc.RefreshStatus(context.Background())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refreshed, %d notas in store\n", len(notas))
			return nil
		},
	}
}

// RemindCmd returns the remind command
func RemindCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remind <id>",
		Short: "Record a reminder for a nota and queue its link",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := notaService()
			if err != nil {
				return err
			}
			n, msg, err := svc.SendReminderByID(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s reminder #%d recorded as %s\n",
				color.New(color.FgGreen).Sprint("✓"), n.MessageCount, n.ID)
			fmt.Fprintln(cmd.OutOrStdout(), msg.URL)
			return nil
		},
	}
}

// CollectCmd returns the collect command
func CollectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collect <id>",
		Short: "Mark a nota as collected",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := notaService()
			if err != nil {
				return err
			}
			n, err := svc.MarkCollected(context.Background(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s collected\n",
				color.New(color.FgGreen).Sprint("✓"), n.CompanyName, n.InvoiceNumber)
			return nil
		},
	}
}
