package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"social-service/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

const notificationColumns = `id, recipient_id, sender_id, kind, body, post_id, is_read, read_at, created_at`

// NotificationPage bundles one page of notifications with its counters.
type NotificationPage struct {
	Notifications []models.Notification
	Total         int64
	UnreadCount   int64
}

// NotificationRepository persists user notifications.
type NotificationRepository interface {
	Create(ctx context.Context, recipientID, senderID, kind, body string, postID *int64) (models.Notification, error)
	ListForUser(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (NotificationPage, error)
	MarkRead(ctx context.Context, notificationID int64, recipientID string) (models.Notification, error)
	MarkAllRead(ctx context.Context, userID string) error
	Delete(ctx context.Context, notificationID int64, recipientID string) error
}

// NotificationRepo is a sqlx implementation of NotificationRepository.
type NotificationRepo struct {
	db *sqlx.DB
}

// NewNotificationRepo constructs a NotificationRepo.
func NewNotificationRepo(db *sqlx.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

// Create stores a new unread notification.
func (r *NotificationRepo) Create(ctx context.Context, recipientID, senderID, kind, body string, postID *int64) (models.Notification, error) {
	var n models.Notification
	err := r.db.GetContext(ctx, &n, `INSERT INTO notifications (recipient_id, sender_id, kind, body, post_id)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING `+notificationColumns, recipientID, senderID, kind, body, postID)
	return n, err
}

// ListForUser returns one page of the user's notifications, newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	filter := ``
	if unreadOnly {
		filter = ` AND is_read = FALSE`
	}

	var result NotificationPage
	err := r.db.SelectContext(ctx, &result.Notifications, `SELECT `+notificationColumns+`
        FROM notifications
        WHERE recipient_id = $1`+filter+`
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`, userID, pageSize, (page-1)*pageSize)
	if err != nil {
		return NotificationPage{}, err
	}
	err = r.db.GetContext(ctx, &result.Total,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1`+filter, userID)
	if err != nil {
		return NotificationPage{}, err
	}
	err = r.db.GetContext(ctx, &result.UnreadCount,
		`SELECT COUNT(*) FROM notifications WHERE recipient_id = $1 AND is_read = FALSE`, userID)
	if err != nil {
		return NotificationPage{}, err
	}
	return result, nil
}

// MarkRead flips one of the recipient's notifications to read and returns it.
// Scoping by recipient means another user's notification id reads as not found.
func (r *NotificationRepo) MarkRead(ctx context.Context, notificationID int64, recipientID string) (models.Notification, error) {
	var n models.Notification
	err := r.db.GetContext(ctx, &n, `UPDATE notifications
        SET is_read = TRUE, read_at = COALESCE(read_at, NOW())
        WHERE id = $1 AND recipient_id = $2
        RETURNING `+notificationColumns, notificationID, recipientID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Notification{}, ErrNotificationNotFound
	}
	return n, err
}

// MarkAllRead flips every unread notification for the user in one statement.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE notifications
        SET is_read = TRUE, read_at = NOW()
        WHERE recipient_id = $1 AND is_read = FALSE`, userID)
	return err
}

// Delete removes one of the recipient's notifications.
func (r *NotificationRepo) Delete(ctx context.Context, notificationID int64, recipientID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = $1 AND recipient_id = $2`, notificationID, recipientID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrNotificationNotFound
	}
	return nil
}
