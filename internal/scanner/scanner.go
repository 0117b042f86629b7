// Package scanner orchestrates the scan pipeline: it walks every
// scannable project, gates files on content-hash changes, extracts
// fingerprints for changed files, and hands updated files to the
// alert manager for similarity comparison.
package scanner

import (
	"context"
	"fmt"
	"log"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/sedalabs/scriptscan/internal/alerting"
	"github.com/sedalabs/scriptscan/internal/changedetect"
	"github.com/sedalabs/scriptscan/internal/extractor"
	"github.com/sedalabs/scriptscan/internal/storage"
	"github.com/sedalabs/scriptscan/internal/types"
)

// FileSource supplies the current set of analyzable files for a project.
// Implementations fetch from GitHub, a local checkout, or anything else
// that can enumerate script content.
type FileSource interface {
	ProjectFiles(ctx context.Context, project *types.Project) ([]types.CandidateFile, error)
}

// ScanStats summarizes one scan pass
type ScanStats struct {
	Projects       int `json:"projects"`
	ProjectErrors  int `json:"project_errors"`
	FilesSeen      int `json:"files_seen"`
	FilesUnchanged int `json:"files_unchanged"`
	FilesUpdated   int `json:"files_updated"`
	FileErrors     int `json:"file_errors"`
	Comparisons    int `json:"comparisons"`
	AlertsCreated  int `json:"alerts_created"`
}

// ScannerConfig holds dependencies and tuning for a Scanner
type ScannerConfig struct {
	Store   storage.Storage
	Source  FileSource
	Manager *alerting.Manager

	// MaxConcurrentProjects caps how many projects are scanned in
	// parallel. Zero or negative means DefaultProjectConcurrency.
	MaxConcurrentProjects int
}

// DefaultProjectConcurrency is the project-level parallelism used when
// the config does not set one.
const DefaultProjectConcurrency = 4

// Scanner executes single scan passes over all scannable projects
type Scanner struct {
	store       storage.Storage
	source      FileSource
	manager     *alerting.Manager
	concurrency int
}

// NewScanner creates a scanner, validating its dependencies
func NewScanner(cfg *ScannerConfig) (*Scanner, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Source == nil {
		return nil, fmt.Errorf("source is required")
	}
	if cfg.Manager == nil {
		return nil, fmt.Errorf("manager is required")
	}

	concurrency := cfg.MaxConcurrentProjects
	if concurrency <= 0 {
		concurrency = DefaultProjectConcurrency
	}

	return &Scanner{
		store:       cfg.Store,
		source:      cfg.Source,
		manager:     cfg.Manager,
		concurrency: concurrency,
	}, nil
}

// Scan runs one full pass over every scannable project. A failure in
// one project is logged and counted but does not stop the others; Scan
// itself returns an error only when listing projects fails or the
// context is cancelled.
func (s *Scanner) Scan(ctx context.Context) (*ScanStats, error) {
	projects, err := s.store.ListScannableProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list scannable projects: %w", err)
	}

	stats := &ScanStats{Projects: len(projects)}
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for _, project := range projects {
		project := project
		g.Go(func() error {
			projStats, err := s.scanProject(gctx, project)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Context cancellation aborts the whole pass; anything
				// else is isolated to this project.
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Printf("[SCANNER] project %s (%s) failed: %v", project.Name, project.ID, err)
				stats.ProjectErrors++
				return nil
			}
			stats.FilesSeen += projStats.FilesSeen
			stats.FilesUnchanged += projStats.FilesUnchanged
			stats.FilesUpdated += projStats.FilesUpdated
			stats.FileErrors += projStats.FileErrors
			stats.Comparisons += projStats.Comparisons
			stats.AlertsCreated += projStats.AlertsCreated
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return stats, err
	}
	return stats, nil
}

// scanProject ingests one project's files. Per-file failures are logged
// and counted; only source enumeration failures abort the project.
func (s *Scanner) scanProject(ctx context.Context, project *types.Project) (*ScanStats, error) {
	candidates, err := s.source.ProjectFiles(ctx, project)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch files: %w", err)
	}

	stats := &ScanStats{}
	for _, candidate := range candidates {
		if ctx.Err() != nil {
			return stats, ctx.Err()
		}
		if !candidate.Kind.IsValid() {
			continue
		}
		stats.FilesSeen++

		result, err := s.ingestFile(ctx, project, candidate)
		if err != nil {
			log.Printf("[SCANNER] file %s in project %s failed: %v", candidate.Path, project.Name, err)
			stats.FileErrors++
			continue
		}
		if result == nil {
			stats.FilesUnchanged++
			continue
		}
		stats.FilesUpdated++
		stats.Comparisons += result.Compared
		stats.AlertsCreated += result.Created
	}
	return stats, nil
}

// ingestFile processes one candidate file. A nil result with nil error
// means the file's content was unchanged and nothing was done.
func (s *Scanner) ingestFile(ctx context.Context, project *types.Project, candidate types.CandidateFile) (*alerting.Result, error) {
	existing, err := s.store.GetFileByPath(ctx, project.ID, candidate.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to look up file: %w", err)
	}

	if existing != nil && !changedetect.Changed(existing.ContentHash, candidate.Content) {
		return nil, nil
	}

	ext, err := extractor.ForKind(candidate.Kind)
	if err != nil {
		return nil, err
	}

	file := &types.ScriptFile{
		ProjectID:   project.ID,
		FilePath:    candidate.Path,
		FileName:    candidate.Name,
		FileKind:    candidate.Kind,
		ContentHash: changedetect.Hash(candidate.Content),
		Fingerprint: ext.Extract(candidate.Content),
		SizeBytes:   int64(len(candidate.Content)),
	}
	if existing != nil {
		file.ID = existing.ID
	}

	if err := s.store.UpsertFile(ctx, file); err != nil {
		return nil, fmt.Errorf("failed to store file: %w", err)
	}

	result, err := s.manager.ProcessFile(ctx, file)
	if err != nil {
		return nil, fmt.Errorf("failed to compare file: %w", err)
	}
	return result, nil
}
