package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sedalabs/scriptscan/internal/types"
)

const fileColumns = `id, project_id, repo_id, file_path, file_name, file_kind,
	content_hash, fingerprint, size_bytes, last_modified, created_at, updated_at`

// GetFile retrieves a script file by ID
func (s *SQLiteStorage) GetFile(ctx context.Context, id string) (*types.ScriptFile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM script_files WHERE id = ?`, id)

	file, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file: %w", err)
	}
	return file, nil
}

// GetFileByPath retrieves a script file by its (project, path) identity
func (s *SQLiteStorage) GetFileByPath(ctx context.Context, projectID, path string) (*types.ScriptFile, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fileColumns+` FROM script_files WHERE project_id = ? AND file_path = ?`,
		projectID, path)

	file, err := scanFile(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get file by path: %w", err)
	}
	return file, nil
}

// UpsertFile creates a script file on first observation of a path, or
// updates the existing record in place on content change. The (project,
// path) unique constraint is the identity; the caller's ID is updated to
// the stored row's ID on update.
func (s *SQLiteStorage) UpsertFile(ctx context.Context, file *types.ScriptFile) error {
	if err := file.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fingerprint, err := json.Marshal(file.Fingerprint)
	if err != nil {
		return fmt.Errorf("failed to marshal fingerprint: %w", err)
	}

	now := time.Now()

	existing, err := s.GetFileByPath(ctx, file.ProjectID, file.FilePath)
	if err != nil {
		return err
	}

	if existing != nil {
		file.ID = existing.ID
		file.CreatedAt = existing.CreatedAt
		file.UpdatedAt = now

		_, err = s.db.ExecContext(ctx, `
			UPDATE script_files
			SET file_name = ?, file_kind = ?, content_hash = ?, fingerprint = ?,
			    size_bytes = ?, last_modified = ?, repo_id = ?, updated_at = ?
			WHERE id = ?
		`, file.FileName, file.FileKind, file.ContentHash, string(fingerprint),
			file.SizeBytes, file.LastModified, nullString(file.RepoID), file.UpdatedAt, file.ID)
		if err != nil {
			return fmt.Errorf("failed to update file: %w", err)
		}
		return nil
	}

	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	file.CreatedAt = now
	file.UpdatedAt = now

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO script_files (`+fileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, file.ID, file.ProjectID, nullString(file.RepoID), file.FilePath, file.FileName,
		file.FileKind, file.ContentHash, string(fingerprint), file.SizeBytes,
		file.LastModified, file.CreatedAt, file.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert file: %w", err)
	}
	return nil
}

// ListFilesByKind returns every tracked file of a kind across the whole
// corpus. Duplicate detection is deliberately cross-project.
func (s *SQLiteStorage) ListFilesByKind(ctx context.Context, kind types.FileKind) ([]*types.ScriptFile, error) {
	return s.queryFiles(ctx,
		`SELECT `+fileColumns+` FROM script_files WHERE file_kind = ? ORDER BY created_at ASC`,
		kind)
}

// ListFilesByProject returns all tracked files for one project
func (s *SQLiteStorage) ListFilesByProject(ctx context.Context, projectID string) ([]*types.ScriptFile, error) {
	return s.queryFiles(ctx,
		`SELECT `+fileColumns+` FROM script_files WHERE project_id = ? ORDER BY file_path ASC`,
		projectID)
}

func (s *SQLiteStorage) queryFiles(ctx context.Context, query string, args ...interface{}) ([]*types.ScriptFile, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}
	defer rows.Close()

	var files []*types.ScriptFile
	for rows.Next() {
		file, err := scanFile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		files = append(files, file)
	}
	return files, rows.Err()
}

func scanFile(row rowScanner) (*types.ScriptFile, error) {
	var file types.ScriptFile
	var repoID sql.NullString
	var fingerprint string
	var lastModified sql.NullTime

	err := row.Scan(
		&file.ID, &file.ProjectID, &repoID, &file.FilePath, &file.FileName,
		&file.FileKind, &file.ContentHash, &fingerprint, &file.SizeBytes,
		&lastModified, &file.CreatedAt, &file.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if repoID.Valid {
		file.RepoID = repoID.String
	}
	if lastModified.Valid {
		file.LastModified = &lastModified.Time
	}

	if err := json.Unmarshal([]byte(fingerprint), &file.Fingerprint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal fingerprint: %w", err)
	}
	file.Fingerprint.Normalize()

	return &file, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
