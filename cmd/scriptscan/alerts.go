package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/sedalabs/scriptscan/internal/storage"
	"github.com/sedalabs/scriptscan/internal/types"
)

var alertStatusFilter string

var alertsCmd = &cobra.Command{
	Use:   "alerts",
	Short: "List and resolve duplicate alerts",
}

var alertsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List duplicate alerts",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := cmd.Context()

		filter := storage.AlertFilter{}
		if alertStatusFilter != "" {
			status := types.AlertStatus(alertStatusFilter)
			if !status.IsValid() {
				fmt.Fprintf(os.Stderr, "Error: invalid status %q\n", alertStatusFilter)
				os.Exit(1)
			}
			filter.Status = &status
		}

		alerts, err := store.ListAlerts(ctx, filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to list alerts: %v\n", err)
			os.Exit(1)
		}

		if len(alerts) == 0 {
			fmt.Println("No alerts.")
			return
		}

		yellow := color.New(color.FgYellow).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		gray := color.New(color.FgHiBlack).SprintFunc()

		for _, a := range alerts {
			var status string
			switch a.Status {
			case types.AlertPending:
				status = yellow(string(a.Status))
			case types.AlertMerged:
				status = green(string(a.Status))
			default:
				status = gray(string(a.Status))
			}
			fmt.Printf("%s  %-9s %5.1f%%  %s\n", a.ID, status, a.SimilarityScore*100, a.Description)
		}
	},
}

var alertsDismissCmd = &cobra.Command{
	Use:   "dismiss <alert-id>",
	Short: "Dismiss a pending alert as not duplicated work",
	Args:  cobra.ExactArgs(1),
	Run:   resolveAlertRun(types.AlertDismissed),
}

var alertsMergeCmd = &cobra.Command{
	Use:   "merge <alert-id>",
	Short: "Mark a pending alert as merged duplicate work",
	Args:  cobra.ExactArgs(1),
	Run:   resolveAlertRun(types.AlertMerged),
}

func resolveAlertRun(status types.AlertStatus) func(cmd *cobra.Command, args []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := store.ResolveAlert(cmd.Context(), args[0], status); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s alert %s\n", green(string(status)), args[0])
	}
}

func init() {
	alertsListCmd.Flags().StringVar(&alertStatusFilter, "status", "", "filter by status (pending, dismissed, merged)")

	alertsCmd.AddCommand(alertsListCmd)
	alertsCmd.AddCommand(alertsDismissCmd)
	alertsCmd.AddCommand(alertsMergeCmd)
	rootCmd.AddCommand(alertsCmd)
}
