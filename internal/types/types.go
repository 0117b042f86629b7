package types

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// FileKind identifies the extraction strategy for a tracked script
type FileKind string

const (
	// KindGeneralScript covers Python-style scripts with a real parser
	KindGeneralScript FileKind = "general_script"

	// KindStatisticalScript covers R-style scripts handled line by line
	KindStatisticalScript FileKind = "statistical_script"

	// KindNotebook covers Jupyter notebooks (counts only, no structural parse)
	KindNotebook FileKind = "notebook"
)

// IsValid checks if the file kind is one of the known kinds
func (k FileKind) IsValid() bool {
	switch k {
	case KindGeneralScript, KindStatisticalScript, KindNotebook:
		return true
	}
	return false
}

// KindForPath maps a file extension to its kind.
// Returns false for extensions the engine does not track.
func KindForPath(path string) (FileKind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".py":
		return KindGeneralScript, true
	case ".r":
		return KindStatisticalScript, true
	case ".ipynb":
		return KindNotebook, true
	}
	return "", false
}

// Fingerprint is the structural summary of a script used for similarity
// comparison. Set-valued fields are always non-nil so downstream set
// operations never have to guard against null.
type Fingerprint struct {
	Functions    []string `json:"functions"`
	Imports      []string `json:"imports"`
	PlotSignals  []string `json:"plot_signals"`
	ModelSignals []string `json:"model_signals"`
	LineCount    int      `json:"line_count"`

	// Notebook-only approximations. Notebooks carry no functions/imports;
	// their similarity is systematically underestimated and that is accepted.
	CellCount     int `json:"cell_count,omitempty"`
	CodeCells     int `json:"code_cells,omitempty"`
	MarkdownCells int `json:"markdown_cells,omitempty"`
}

// NewFingerprint returns a fingerprint with all set fields initialized empty
func NewFingerprint() Fingerprint {
	return Fingerprint{
		Functions:    []string{},
		Imports:      []string{},
		PlotSignals:  []string{},
		ModelSignals: []string{},
	}
}

// Normalize replaces nil set fields with empty slices.
// Fingerprints deserialized from storage pass through here so callers
// can always treat the fields as well-defined sets.
func (f *Fingerprint) Normalize() {
	if f.Functions == nil {
		f.Functions = []string{}
	}
	if f.Imports == nil {
		f.Imports = []string{}
	}
	if f.PlotSignals == nil {
		f.PlotSignals = []string{}
	}
	if f.ModelSignals == nil {
		f.ModelSignals = []string{}
	}
}

// ScriptFile is a tracked source artifact belonging to a project
type ScriptFile struct {
	ID           string      `json:"id"`
	ProjectID    string      `json:"project_id"`
	RepoID       string      `json:"repo_id,omitempty"`
	FilePath     string      `json:"file_path"`
	FileName     string      `json:"file_name"`
	FileKind     FileKind    `json:"file_kind"`
	ContentHash  string      `json:"content_hash"`
	Fingerprint  Fingerprint `json:"fingerprint"`
	SizeBytes    int64       `json:"size_bytes"`
	LastModified *time.Time  `json:"last_modified,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Validate checks if the script file has valid field values
func (s *ScriptFile) Validate() error {
	if s.ProjectID == "" {
		return fmt.Errorf("project_id is required")
	}
	if s.FilePath == "" {
		return fmt.Errorf("file_path is required")
	}
	if s.FileName == "" {
		return fmt.Errorf("file_name is required")
	}
	if !s.FileKind.IsValid() {
		return fmt.Errorf("invalid file kind: %s", s.FileKind)
	}
	return nil
}

// AlertStatus is the lifecycle state of a duplicate alert
type AlertStatus string

const (
	// AlertPending means the alert is open and actionable
	AlertPending AlertStatus = "pending"

	// AlertDismissed means a user rejected the alert; immutable history
	AlertDismissed AlertStatus = "dismissed"

	// AlertMerged means a user merged the duplicated work; immutable history
	AlertMerged AlertStatus = "merged"
)

// IsValid checks if the status is one of the known states
func (s AlertStatus) IsValid() bool {
	switch s {
	case AlertPending, AlertDismissed, AlertMerged:
		return true
	}
	return false
}

// IsTerminal reports whether the status is a resolved state.
// Terminal alerts are never reopened; a fresh detection creates a new alert.
func (s AlertStatus) IsTerminal() bool {
	return s == AlertDismissed || s == AlertMerged
}

// AlertKindSimilarScript is the only alert kind this engine emits
const AlertKindSimilarScript = "similar_script"

// DuplicateAlert records a pairwise similarity at or above threshold.
// SubjectFileID is the file whose change triggered detection; SimilarFileID
// is the existing file it matched. Neither reference is owning.
type DuplicateAlert struct {
	ID              string      `json:"id"`
	AlertKind       string      `json:"alert_kind"`
	SimilarityScore float64     `json:"similarity_score"`
	Description     string      `json:"description"`
	Status          AlertStatus `json:"status"`
	SubjectFileID   string      `json:"subject_file_id"`
	SimilarFileID   string      `json:"similar_file_id"`
	UserID          string      `json:"user_id,omitempty"`
	CreatedAt       time.Time   `json:"created_at"`
	ResolvedAt      *time.Time  `json:"resolved_at,omitempty"`
}

// Validate checks if the alert has valid field values
func (a *DuplicateAlert) Validate() error {
	if a.SubjectFileID == "" || a.SimilarFileID == "" {
		return fmt.Errorf("both file references are required")
	}
	if a.SubjectFileID == a.SimilarFileID {
		return fmt.Errorf("alert cannot reference a file against itself")
	}
	if a.SimilarityScore < 0.0 || a.SimilarityScore > 1.0 {
		return fmt.Errorf("similarity_score must be between 0.0 and 1.0 (got %.4f)", a.SimilarityScore)
	}
	if !a.Status.IsValid() {
		return fmt.Errorf("invalid alert status: %s", a.Status)
	}
	return nil
}

// ProjectStatus is the lifecycle state of a project (external concept;
// the engine only cares whether a project is active)
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPaused    ProjectStatus = "paused"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Project is the minimal project record the scan orchestrator needs
type Project struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	Status    ProjectStatus `json:"status"`
	RepoURL   string        `json:"repo_url,omitempty"`
	OwnerID   string        `json:"owner_id"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// Scannable reports whether the orchestrator should pick up this project
func (p *Project) Scannable() bool {
	return p.Status == ProjectActive && p.RepoURL != ""
}

// CandidateFile is one record supplied by a file source for a project.
// Content is the raw file text; the engine never fetches anything itself.
type CandidateFile struct {
	Path    string
	Name    string
	Kind    FileKind
	Content string
}

// Notification is an in-app notification row written when an alert fires
type Notification struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Kind      string    `json:"kind"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}
