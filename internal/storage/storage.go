package storage

import (
	"context"

	"github.com/sedalabs/scriptscan/internal/storage/sqlite"
	"github.com/sedalabs/scriptscan/internal/types"
)

// ErrPendingAlertExists is returned by CreateAlert when a pending alert
// already covers the same unordered file pair. Callers treat it as a
// successful no-op: the existing alert is the authoritative state.
var ErrPendingAlertExists = sqlite.ErrPendingAlertExists

// AlertFilter narrows ListAlerts results
type AlertFilter = sqlite.AlertFilter

// Storage defines the persistence interface for the detection engine
type Storage interface {
	// Projects
	CreateProject(ctx context.Context, project *types.Project) error
	GetProject(ctx context.Context, id string) (*types.Project, error)
	ListProjects(ctx context.Context) ([]*types.Project, error)
	ListScannableProjects(ctx context.Context) ([]*types.Project, error)
	SetProjectStatus(ctx context.Context, id string, status types.ProjectStatus) error

	// Script files
	GetFile(ctx context.Context, id string) (*types.ScriptFile, error)
	GetFileByPath(ctx context.Context, projectID, path string) (*types.ScriptFile, error)
	UpsertFile(ctx context.Context, file *types.ScriptFile) error
	ListFilesByKind(ctx context.Context, kind types.FileKind) ([]*types.ScriptFile, error)
	ListFilesByProject(ctx context.Context, projectID string) ([]*types.ScriptFile, error)

	// Duplicate alerts
	CreateAlert(ctx context.Context, alert *types.DuplicateAlert) error
	GetAlert(ctx context.Context, id string) (*types.DuplicateAlert, error)
	GetPendingAlertForPair(ctx context.Context, fileID, otherFileID string) (*types.DuplicateAlert, error)
	ListAlerts(ctx context.Context, filter AlertFilter) ([]*types.DuplicateAlert, error)
	ResolveAlert(ctx context.Context, id string, status types.AlertStatus) error

	// In-app notifications
	CreateNotification(ctx context.Context, n *types.Notification) error
	ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*types.Notification, error)
	MarkNotificationRead(ctx context.Context, id string) error

	// Config
	GetConfig(ctx context.Context, key string) (string, error)
	SetConfig(ctx context.Context, key, value string) error

	// Lifecycle
	Close() error
}

// Config holds database configuration
type Config struct {
	// Path is the SQLite database file path
	// Default: ".scriptscan/scriptscan.db"
	Path string
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Path: ".scriptscan/scriptscan.db",
	}
}

// NewStorage creates a new SQLite storage backend
func NewStorage(ctx context.Context, cfg *Config) (Storage, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if cfg.Path == "" {
		cfg.Path = ".scriptscan/scriptscan.db"
	}

	return sqlite.New(cfg.Path)
}
