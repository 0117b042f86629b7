package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sedalabs/scriptscan/internal/types"
)

// CreateProject creates a new project record
func (s *SQLiteStorage) CreateProject(ctx context.Context, project *types.Project) error {
	if project.Name == "" {
		return fmt.Errorf("project name is required")
	}
	if project.ID == "" {
		project.ID = uuid.NewString()
	}
	if project.Status == "" {
		project.Status = types.ProjectActive
	}

	now := time.Now()
	project.CreatedAt = now
	project.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO projects (id, name, status, repo_url, owner_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, project.ID, project.Name, project.Status, project.RepoURL, project.OwnerID,
		project.CreatedAt, project.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID
func (s *SQLiteStorage) GetProject(ctx context.Context, id string) (*types.Project, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, status, repo_url, owner_id, created_at, updated_at
		FROM projects
		WHERE id = ?
	`, id)

	project, err := scanProject(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

// ListProjects returns all projects
func (s *SQLiteStorage) ListProjects(ctx context.Context) ([]*types.Project, error) {
	return s.queryProjects(ctx, `
		SELECT id, name, status, repo_url, owner_id, created_at, updated_at
		FROM projects
		ORDER BY created_at ASC
	`)
}

// ListScannableProjects returns active projects with a linked repository.
// These are the only projects the scan orchestrator picks up.
func (s *SQLiteStorage) ListScannableProjects(ctx context.Context) ([]*types.Project, error) {
	return s.queryProjects(ctx, `
		SELECT id, name, status, repo_url, owner_id, created_at, updated_at
		FROM projects
		WHERE status = 'active' AND repo_url != ''
		ORDER BY created_at ASC
	`)
}

// SetProjectStatus updates a project's lifecycle status
func (s *SQLiteStorage) SetProjectStatus(ctx context.Context, id string, status types.ProjectStatus) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE projects SET status = ?, updated_at = ? WHERE id = ?
	`, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update project status: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("project %s not found", id)
	}
	return nil
}

func (s *SQLiteStorage) queryProjects(ctx context.Context, query string, args ...interface{}) ([]*types.Project, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var projects []*types.Project
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, project)
	}
	return projects, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProject(row rowScanner) (*types.Project, error) {
	var project types.Project
	err := row.Scan(
		&project.ID, &project.Name, &project.Status, &project.RepoURL,
		&project.OwnerID, &project.CreatedAt, &project.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &project, nil
}
