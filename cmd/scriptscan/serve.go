package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sedalabs/scriptscan/internal/api"
	"github.com/sedalabs/scriptscan/internal/scanner"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API and the periodic scan loop",
	Long: `Start the engine as a long-running service: the HTTP API for
projects, alerts, and notifications, plus a background loop that scans
all active projects on a fixed interval.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		scn, manager, err := buildScanner()
		if err != nil {
			return err
		}

		interval, err := cfg.ScanInterval()
		if err != nil {
			return err
		}

		coordinator, err := scanner.NewCoordinator(scn, &scanner.CoordinatorConfig{
			Interval:    interval,
			ScanOnStart: cfg.Scan.OnStart,
		})
		if err != nil {
			return err
		}

		server, err := api.NewServer(&api.ServerConfig{
			Store:   store,
			Manager: manager,
			Scanner: scn,
		})
		if err != nil {
			return err
		}

		httpServer := &http.Server{
			Addr:              cfg.Server.Addr,
			Handler:           server,
			ReadHeaderTimeout: 10 * time.Second,
		}

		if err := coordinator.Start(cmd.Context()); err != nil {
			return err
		}

		errCh := make(chan error, 1)
		go func() {
			fmt.Printf("scriptscan listening on %s (scan interval %v)\n", cfg.Server.Addr, interval)
			if err := httpServer.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

		select {
		case sig := <-sigCh:
			fmt.Printf("\nReceived %v, shutting down...\n", sig)
		case err := <-errCh:
			coordinator.Stop()
			return fmt.Errorf("http server failed: %w", err)
		}

		coordinator.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("http shutdown failed: %w", err)
		}

		fmt.Println("scriptscan stopped.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
