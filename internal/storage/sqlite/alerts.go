package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/sedalabs/scriptscan/internal/types"
)

// ErrPendingAlertExists signals that a pending alert already covers the
// unordered file pair. The partial unique index is the enforcement point,
// so two processes racing on the same pair cannot both insert.
var ErrPendingAlertExists = errors.New("pending alert already exists for file pair")

const alertColumns = `id, alert_kind, similarity_score, description, status,
	subject_file_id, similar_file_id, user_id, created_at, resolved_at`

// AlertFilter narrows ListAlerts results
type AlertFilter struct {
	Status *types.AlertStatus
	UserID string
	FileID string
	Limit  int
}

// CreateAlert inserts a new alert. Returns ErrPendingAlertExists when a
// pending alert for the same unordered pair is already present.
func (s *SQLiteStorage) CreateAlert(ctx context.Context, alert *types.DuplicateAlert) error {
	if alert.Status == "" {
		alert.Status = types.AlertPending
	}
	if alert.AlertKind == "" {
		alert.AlertKind = types.AlertKindSimilarScript
	}
	if err := alert.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}
	if alert.ID == "" {
		alert.ID = uuid.NewString()
	}
	alert.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO duplicate_alerts (`+alertColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, alert.ID, alert.AlertKind, alert.SimilarityScore, alert.Description, alert.Status,
		alert.SubjectFileID, alert.SimilarFileID, nullString(alert.UserID),
		alert.CreatedAt, alert.ResolvedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrPendingAlertExists
		}
		return fmt.Errorf("failed to insert alert: %w", err)
	}
	return nil
}

// GetAlert retrieves an alert by ID
func (s *SQLiteStorage) GetAlert(ctx context.Context, id string) (*types.DuplicateAlert, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+alertColumns+` FROM duplicate_alerts WHERE id = ?`, id)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}
	return alert, nil
}

// GetPendingAlertForPair looks up the pending alert for an unordered file
// pair. Both orderings are checked: re-detection from either direction must
// find the existing alert.
func (s *SQLiteStorage) GetPendingAlertForPair(ctx context.Context, fileID, otherFileID string) (*types.DuplicateAlert, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+alertColumns+` FROM duplicate_alerts
		WHERE status = 'pending'
		  AND ((subject_file_id = ? AND similar_file_id = ?)
		   OR  (subject_file_id = ? AND similar_file_id = ?))
	`, fileID, otherFileID, otherFileID, fileID)

	alert, err := scanAlert(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pending alert for pair: %w", err)
	}
	return alert, nil
}

// ListAlerts returns alerts matching the filter, newest first
func (s *SQLiteStorage) ListAlerts(ctx context.Context, filter AlertFilter) ([]*types.DuplicateAlert, error) {
	whereClauses := []string{}
	args := []interface{}{}

	if filter.Status != nil {
		whereClauses = append(whereClauses, "status = ?")
		args = append(args, *filter.Status)
	}
	if filter.UserID != "" {
		whereClauses = append(whereClauses, "user_id = ?")
		args = append(args, filter.UserID)
	}
	if filter.FileID != "" {
		whereClauses = append(whereClauses, "(subject_file_id = ? OR similar_file_id = ?)")
		args = append(args, filter.FileID, filter.FileID)
	}

	whereSQL := ""
	if len(whereClauses) > 0 {
		whereSQL = "WHERE " + strings.Join(whereClauses, " AND ")
	}

	limitSQL := ""
	if filter.Limit > 0 {
		limitSQL = fmt.Sprintf(" LIMIT %d", filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s FROM duplicate_alerts
		%s
		ORDER BY created_at DESC
		%s
	`, alertColumns, whereSQL, limitSQL), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query alerts: %w", err)
	}
	defer rows.Close()

	var alerts []*types.DuplicateAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, alert)
	}
	return alerts, rows.Err()
}

// ResolveAlert transitions a pending alert to dismissed or merged and stamps
// resolved_at. Resolved alerts are immutable history; resolving twice or
// resolving a missing alert is an error.
func (s *SQLiteStorage) ResolveAlert(ctx context.Context, id string, status types.AlertStatus) error {
	if !status.IsTerminal() {
		return fmt.Errorf("alert can only be resolved to dismissed or merged (got %s)", status)
	}

	result, err := s.db.ExecContext(ctx, `
		UPDATE duplicate_alerts
		SET status = ?, resolved_at = ?
		WHERE id = ? AND status = 'pending'
	`, status, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to resolve alert: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("no pending alert %s to resolve", id)
	}
	return nil
}

func scanAlert(row rowScanner) (*types.DuplicateAlert, error) {
	var alert types.DuplicateAlert
	var userID sql.NullString
	var resolvedAt sql.NullTime

	err := row.Scan(
		&alert.ID, &alert.AlertKind, &alert.SimilarityScore, &alert.Description,
		&alert.Status, &alert.SubjectFileID, &alert.SimilarFileID, &userID,
		&alert.CreatedAt, &resolvedAt,
	)
	if err != nil {
		return nil, err
	}

	if userID.Valid {
		alert.UserID = userID.String
	}
	if resolvedAt.Valid {
		alert.ResolvedAt = &resolvedAt.Time
	}
	return &alert, nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
