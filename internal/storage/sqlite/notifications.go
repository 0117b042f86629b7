package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sedalabs/scriptscan/internal/types"
)

// CreateNotification inserts an in-app notification row
func (s *SQLiteStorage) CreateNotification(ctx context.Context, n *types.Notification) error {
	if n.UserID == "" {
		return fmt.Errorf("user_id is required")
	}
	if n.Title == "" {
		return fmt.Errorf("title is required")
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.Kind == "" {
		n.Kind = "duplicate"
	}
	n.CreatedAt = time.Now()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notifications (id, user_id, title, message, kind, is_read, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.Title, n.Message, n.Kind, n.IsRead, n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}
	return nil
}

// ListNotifications returns a user's notifications, newest first
func (s *SQLiteStorage) ListNotifications(ctx context.Context, userID string, unreadOnly bool) ([]*types.Notification, error) {
	query := `
		SELECT id, user_id, title, message, kind, is_read, created_at
		FROM notifications
		WHERE user_id = ?`
	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*types.Notification
	for rows.Next() {
		var n types.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Kind, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// MarkNotificationRead flags a notification as read
func (s *SQLiteStorage) MarkNotificationRead(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = 1 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to mark notification read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("notification %s not found", id)
	}
	return nil
}
