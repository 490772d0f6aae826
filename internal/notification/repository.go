package notification

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// Repository handles notification data persistence
type Repository struct {
	db *sql.DB
}

// NewRepository creates a new notification repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

const insertQuery = `
	INSERT INTO notifications (recipient_id, title, message, type, metadata)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING id, recipient_id, title, message, type, metadata, is_read, created_at
`

// Create inserts a new notification
func (r *Repository) Create(ctx context.Context, recipientID int64, title, message string, notifType Type, metadata map[string]string) (*Notification, error) {
	return scanNotification(r.db.QueryRowContext(ctx, insertQuery, recipientID, title, message, notifType, marshalMetadata(metadata)))
}

// CreateTx inserts a new notification inside the caller's transaction.
// The distribution engine writes investor and partner notifications in the
// same transaction as the ledger mutation.
func (r *Repository) CreateTx(ctx context.Context, tx *sql.Tx, recipientID int64, title, message string, notifType Type, metadata map[string]string) (*Notification, error) {
	return scanNotification(tx.QueryRowContext(ctx, insertQuery, recipientID, title, message, notifType, marshalMetadata(metadata)))
}

// ListByRecipient retrieves notifications for a user, newest first
func (r *Repository) ListByRecipient(ctx context.Context, recipientID int64, limit, offset int, unreadOnly bool) ([]*Notification, int, error) {
	var total int
	countQuery := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND ($2 = false OR is_read = false)`
	if err := r.db.QueryRowContext(ctx, countQuery, recipientID, unreadOnly).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	query := `
		SELECT id, recipient_id, title, message, type, metadata, is_read, created_at
		FROM notifications
		WHERE recipient_id = $1 AND ($2 = false OR is_read = false)
		ORDER BY created_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.QueryContext(ctx, query, recipientID, unreadOnly, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		n := &Notification{}
		var rawMeta []byte
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.Title,
			&n.Message,
			&n.Type,
			&rawMeta,
			&n.IsRead,
			&n.CreatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		n.Metadata = unmarshalMetadata(rawMeta)
		notifications = append(notifications, n)
	}

	return notifications, total, nil
}

// MarkAsRead marks one notification as read, scoped to its recipient
func (r *Repository) MarkAsRead(ctx context.Context, id, recipientID int64) (bool, error) {
	query := `UPDATE notifications SET is_read = true WHERE id = $1 AND recipient_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, recipientID)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification as read: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return affected == 1, nil
}

// MarkAllAsRead marks all notifications as read for a recipient
func (r *Repository) MarkAllAsRead(ctx context.Context, recipientID int64) error {
	query := `UPDATE notifications SET is_read = true WHERE recipient_id = $1 AND is_read = false`
	if _, err := r.db.ExecContext(ctx, query, recipientID); err != nil {
		return fmt.Errorf("failed to mark all notifications as read: %w", err)
	}
	return nil
}

// GetUnreadCount returns the count of unread notifications for a recipient
func (r *Repository) GetUnreadCount(ctx context.Context, recipientID int64) (int, error) {
	var count int
	query := `SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = false`
	if err := r.db.QueryRowContext(ctx, query, recipientID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unread notifications: %w", err)
	}
	return count, nil
}

func scanNotification(row *sql.Row) (*Notification, error) {
	n := &Notification{}
	var rawMeta []byte
	err := row.Scan(
		&n.ID,
		&n.RecipientID,
		&n.Title,
		&n.Message,
		&n.Type,
		&rawMeta,
		&n.IsRead,
		&n.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create notification: %w", err)
	}
	n.Metadata = unmarshalMetadata(rawMeta)
	return n, nil
}

func marshalMetadata(metadata map[string]string) []byte {
	if len(metadata) == 0 {
		return []byte("{}")
	}
	raw, err := json.Marshal(metadata)
	if err != nil {
		return []byte("{}")
	}
	return raw
}

func unmarshalMetadata(raw []byte) map[string]string {
	if len(raw) == 0 {
		return nil
	}
	metadata := map[string]string{}
	if err := json.Unmarshal(raw, &metadata); err != nil || len(metadata) == 0 {
		return nil
	}
	return metadata
}
