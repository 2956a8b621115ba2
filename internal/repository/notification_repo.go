package repository

import (
	"context"
	"time"

	"github.com/procurehub/procurement-service/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NotificationRepository is the interface for user-facing notification records.
type NotificationRepository interface {
	Create(ctx context.Context, userID, title, message, notifType string, relatedID *string) (*models.Notification, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int, error)
	MarkRead(ctx context.Context, notificationID, userID string) error
}

// PostgresNotificationRepository is the NotificationRepository implementation backed by Postgres.
type PostgresNotificationRepository struct {
	DB *pgxpool.Pool
}

// NewPostgresNotificationRepository creates a new PostgresNotificationRepository.
func NewPostgresNotificationRepository(db *pgxpool.Pool) *PostgresNotificationRepository {
	return &PostgresNotificationRepository{DB: db}
}

// Create appends one notification.
func (r *PostgresNotificationRepository) Create(ctx context.Context, userID, title, message, notifType string, relatedID *string) (*models.Notification, error) {
	n := models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Title:     title,
		Message:   message,
		Type:      notifType,
		RelatedID: relatedID,
		CreatedAt: time.Now().UTC(),
	}
	_, err := r.DB.Exec(ctx, `INSERT INTO notifications (id, user_id, title, message, type, related_id, is_read, created_at)
	                          VALUES ($1, $2, $3, $4, $5, $6, FALSE, $7)`,
		n.ID, n.UserID, n.Title, n.Message, n.Type, n.RelatedID, n.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// ListForUser returns a user's notifications, newest first.
func (r *PostgresNotificationRepository) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Notification, error) {
	query := `SELECT id, user_id, title, message, type, related_id, is_read, created_at
	          FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	rows, err := r.DB.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.RelatedID, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// UnreadCount returns the user's unread badge count.
func (r *PostgresNotificationRepository) UnreadCount(ctx context.Context, userID string) (int, error) {
	var count int
	err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE`, userID).Scan(&count)
	return count, err
}

// MarkRead marks one of the user's notifications read.
func (r *PostgresNotificationRepository) MarkRead(ctx context.Context, notificationID, userID string) error {
	tag, err := r.DB.Exec(ctx, `UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2`,
		notificationID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return models.NewNotFoundError("notification not found")
	}
	return nil
}
