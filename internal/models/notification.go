package models

import "time"

// Notification kinds.
const (
	NotificationLike    = "like"
	NotificationComment = "comment"
	NotificationFollow  = "follow"
)

// Notification tells a user that someone interacted with them or their content.
type Notification struct {
	ID          int64      `db:"id" json:"id"`
	RecipientID string     `db:"recipient_id" json:"recipient_id"`
	SenderID    string     `db:"sender_id" json:"sender_id"`
	Kind        string     `db:"kind" json:"kind"`
	Body        string     `db:"body" json:"body"`
	PostID      *int64     `db:"post_id" json:"post_id,omitempty"`
	IsRead      bool       `db:"is_read" json:"is_read"`
	ReadAt      *time.Time `db:"read_at" json:"read_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`

	Sender *UserSummary `db:"-" json:"sender,omitempty"`
}
