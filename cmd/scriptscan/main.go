// Command scriptscan runs the duplicate work detection engine: it
// ingests research scripts from registered projects, fingerprints
// them, and raises alerts when two files look like the same work.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/sedalabs/scriptscan/internal/config"
	"github.com/sedalabs/scriptscan/internal/storage"
)

var (
	configPath string

	cfg   *config.Config
	store storage.Storage
)

var rootCmd = &cobra.Command{
	Use:   "scriptscan",
	Short: "Duplicate work detection for research scripts",
	Long: `scriptscan scans registered project repositories for Python scripts,
R scripts, and Jupyter notebooks, fingerprints their structure, and
alerts when two files look like duplicated effort.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; real deployments use the environment
		_ = godotenv.Load()

		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		store, err = storage.NewStorage(cmd.Context(), &storage.Config{Path: cfg.Database.Path})
		if err != nil {
			return fmt.Errorf("failed to open storage: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			store.Close()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file (default "+config.DefaultPath+")")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
