package alerting

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/sedalabs/scriptscan/internal/notify"
	"github.com/sedalabs/scriptscan/internal/scoring"
	"github.com/sedalabs/scriptscan/internal/storage"
	"github.com/sedalabs/scriptscan/internal/types"
)

// Manager thresholds similarity scores and owns alert creation
type Manager struct {
	store     storage.Storage
	scorer    scoring.Scorer
	notifier  notify.Notifier
	threshold float64

	// pairLocks serializes check-and-insert per unordered file pair so
	// concurrent workers cannot race two pending alerts into existence.
	// The storage unique index is the backstop.
	mu        sync.Mutex
	pairLocks map[string]*sync.Mutex
}

// ManagerConfig holds dependencies for creating a Manager
type ManagerConfig struct {
	Store     storage.Storage
	Scorer    scoring.Scorer
	Notifier  notify.Notifier
	Threshold float64
}

// Result reports what one ProcessFile call did
type Result struct {
	// Compared is the number of same-kind files scored against
	Compared int

	// Created is the number of new pending alerts filed
	Created int

	// Suppressed is the number of qualifying pairs already covered by a
	// pending alert
	Suppressed int
}

// NewManager creates an alert manager
func NewManager(cfg *ManagerConfig) (*Manager, error) {
	if cfg.Store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.Scorer == nil {
		return nil, fmt.Errorf("scorer is required")
	}
	if cfg.Notifier == nil {
		return nil, fmt.Errorf("notifier is required")
	}
	if cfg.Threshold < 0.0 || cfg.Threshold > 1.0 {
		return nil, fmt.Errorf("threshold must be between 0.0 and 1.0 (got %.2f)", cfg.Threshold)
	}

	return &Manager{
		store:     cfg.Store,
		scorer:    cfg.Scorer,
		notifier:  cfg.Notifier,
		threshold: cfg.Threshold,
		pairLocks: make(map[string]*sync.Mutex),
	}, nil
}

// ProcessFile compares a changed file against all other tracked files of
// the same kind, across every project, and ensures each pair at or above
// the threshold has exactly one pending alert. Scoring failures for
// individual pairs are logged and skipped.
func (m *Manager) ProcessFile(ctx context.Context, subject *types.ScriptFile) (*Result, error) {
	if subject == nil {
		return nil, fmt.Errorf("subject file is required")
	}

	others, err := m.store.ListFilesByKind(ctx, subject.FileKind)
	if err != nil {
		return nil, fmt.Errorf("failed to list comparison candidates: %w", err)
	}

	result := &Result{}
	for _, other := range others {
		if other.ID == subject.ID {
			continue
		}

		score, err := m.scorer.Score(ctx, subject.Fingerprint, other.Fingerprint)
		if err != nil {
			log.Printf("[ALERT] scoring %s vs %s failed: %v", subject.FilePath, other.FilePath, err)
			continue
		}
		result.Compared++

		if score < m.threshold {
			continue
		}

		created, err := m.EnsureAlert(ctx, subject, other, score)
		if err != nil {
			log.Printf("[ALERT] failed to ensure alert for %s vs %s: %v",
				subject.FilePath, other.FilePath, err)
			continue
		}
		if created {
			result.Created++
		} else {
			result.Suppressed++
		}
	}

	return result, nil
}

// EnsureAlert files a pending alert for the pair unless one already exists.
// Returns true if a new alert was created. Notification dispatch happens
// exactly once per created alert, after the alert is committed.
func (m *Manager) EnsureAlert(ctx context.Context, subject, similar *types.ScriptFile, score float64) (bool, error) {
	unlock := m.lockPair(subject.ID, similar.ID)
	defer unlock()

	existing, err := m.store.GetPendingAlertForPair(ctx, subject.ID, similar.ID)
	if err != nil {
		return false, err
	}
	if existing != nil {
		// Re-detection while pending is an idempotent no-op
		return false, nil
	}

	userID, err := m.ownerOf(ctx, subject)
	if err != nil {
		return false, err
	}

	alert := &types.DuplicateAlert{
		AlertKind:       types.AlertKindSimilarScript,
		SimilarityScore: score,
		Description: fmt.Sprintf("Found similar script: %s (%.1f%% similarity)",
			similar.FileName, score*100),
		Status:        types.AlertPending,
		SubjectFileID: subject.ID,
		SimilarFileID: similar.ID,
		UserID:        userID,
	}

	if err := m.store.CreateAlert(ctx, alert); err != nil {
		if errors.Is(err, storage.ErrPendingAlertExists) {
			// Another writer won the race; their alert stands
			return false, nil
		}
		return false, err
	}

	// Alert state is committed; notification is best-effort from here
	notice := notify.DuplicateNotice{
		File1:       subject.FileName,
		File2:       similar.FileName,
		Similarity:  fmt.Sprintf("%.1f%%", score*100),
		Description: alert.Description,
	}
	if err := m.notifier.SendDuplicateAlert(ctx, userID, notice); err != nil {
		log.Printf("[ALERT] notification dispatch failed for alert %s: %v", alert.ID, err)
	}

	return true, nil
}

// Dismiss resolves a pending alert as rejected by the user
func (m *Manager) Dismiss(ctx context.Context, alertID string) error {
	return m.store.ResolveAlert(ctx, alertID, types.AlertDismissed)
}

// Merge resolves a pending alert as merged by the user
func (m *Manager) Merge(ctx context.Context, alertID string) error {
	return m.store.ResolveAlert(ctx, alertID, types.AlertMerged)
}

func (m *Manager) ownerOf(ctx context.Context, file *types.ScriptFile) (string, error) {
	project, err := m.store.GetProject(ctx, file.ProjectID)
	if err != nil {
		return "", fmt.Errorf("failed to look up owning project: %w", err)
	}
	if project == nil {
		return "", fmt.Errorf("project %s not found for file %s", file.ProjectID, file.FilePath)
	}
	return project.OwnerID, nil
}

// lockPair acquires the mutex for an unordered file pair
func (m *Manager) lockPair(a, b string) func() {
	key := a + "\x00" + b
	if b < a {
		key = b + "\x00" + a
	}

	m.mu.Lock()
	lock, ok := m.pairLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		m.pairLocks[key] = lock
	}
	m.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
