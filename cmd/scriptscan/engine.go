package main

import (
	"fmt"

	"github.com/sedalabs/scriptscan/internal/alerting"
	"github.com/sedalabs/scriptscan/internal/notify"
	"github.com/sedalabs/scriptscan/internal/scanner"
	"github.com/sedalabs/scriptscan/internal/scoring"
	"github.com/sedalabs/scriptscan/internal/source"
)

// buildScanner assembles the scan pipeline from the loaded config and
// open storage: scorer, notifiers, alert manager, file source, scanner.
func buildScanner() (*scanner.Scanner, *alerting.Manager, error) {
	scoringCfg, err := cfg.ScoringConfig()
	if err != nil {
		return nil, nil, err
	}

	scorer, err := scoring.ForConfig(scoringCfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scorer: %w", err)
	}

	storeNotifier, err := notify.NewStoreNotifier(store)
	if err != nil {
		return nil, nil, err
	}
	dispatcher := notify.NewDispatcher(cfg.Notify.PerMinute, notify.LogNotifier{}, storeNotifier)

	manager, err := alerting.NewManager(&alerting.ManagerConfig{
		Store:     store,
		Scorer:    scorer,
		Notifier:  dispatcher,
		Threshold: scoringCfg.Threshold,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create alert manager: %w", err)
	}

	src := source.NewGitHubSource(&source.GitHubConfig{
		Token:   cfg.GitHub.Token,
		BaseURL: cfg.GitHub.BaseURL,
	})

	scn, err := scanner.NewScanner(&scanner.ScannerConfig{
		Store:                 store,
		Source:                src,
		Manager:               manager,
		MaxConcurrentProjects: cfg.Scan.MaxConcurrentProjects,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create scanner: %w", err)
	}
	return scn, manager, nil
}
