package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Run one scan pass over all active projects",
	Long:  `Fetch every active project's scripts, ingest changed files, and raise duplicate alerts.`,
	Run: func(cmd *cobra.Command, args []string) {
		scn, _, err := buildScanner()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		stats, err := scn.Scan(cmd.Context())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: scan failed: %v\n", err)
			os.Exit(1)
		}

		cyan := color.New(color.FgCyan, color.Bold).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		fmt.Printf("\n%s\n\n", cyan("=== Scan Complete ==="))
		fmt.Printf("  Projects scanned:  %d\n", stats.Projects)
		fmt.Printf("  Files seen:        %d\n", stats.FilesSeen)
		fmt.Printf("  Files updated:     %d\n", stats.FilesUpdated)
		fmt.Printf("  Files unchanged:   %d\n", stats.FilesUnchanged)
		fmt.Printf("  Comparisons:       %d\n", stats.Comparisons)
		fmt.Printf("  Alerts created:    %d\n", stats.AlertsCreated)
		if stats.ProjectErrors > 0 || stats.FileErrors > 0 {
			fmt.Printf("  %s\n", yellow(fmt.Sprintf("Errors: %d project, %d file",
				stats.ProjectErrors, stats.FileErrors)))
		}
		fmt.Println()
	},
}

func init() {
	rootCmd.AddCommand(scanCmd)
}
