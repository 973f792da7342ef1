package repositories

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/jmoiron/sqlx"

	"social-service/internal/models"
)

var (
	ErrMessageNotFound  = errors.New("message not found")
	ErrNotMessageSender = errors.New("only the sender may delete a message")
)

const messageColumns = `id, conversation_id, sender_id, receiver_id, body, kind,
    media_kind, media_url, is_read, read_at, edited, edited_at, reply_to, created_at`

// MessageRepository is the durable record of all direct messages and the
// read/unread projection over them. Timestamps are assigned by the database at
// insert time, so ordering within a conversation is store-authoritative; ties
// break by the serial message id.
type MessageRepository interface {
	CreateMessage(ctx context.Context, params CreateMessageParams) (models.Message, error)
	History(ctx context.Context, conversationID string, page, pageSize int) ([]models.Message, int64, error)
	MarkRead(ctx context.Context, conversationID, readerID string) error
	ConversationsFor(ctx context.Context, userID string) ([]models.ConversationSummary, error)
	DeleteMessage(ctx context.Context, messageID int64, requesterID string) error
}

// CreateMessageParams are the caller-supplied attributes of a new message.
// The message is always stored unread; id and created_at come from the database.
type CreateMessageParams struct {
	ConversationID string
	SenderID       string
	ReceiverID     string
	Body           string
	Kind           string
	MediaKind      *string
	MediaURL       *string
	ReplyTo        *int64
}

// MessageRepo is a sqlx-backed MessageRepository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// CreateMessage persists a new unread message and returns the stored record.
func (r *MessageRepo) CreateMessage(ctx context.Context, params CreateMessageParams) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `INSERT INTO messages
        (conversation_id, sender_id, receiver_id, body, kind, media_kind, media_url, reply_to)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
        RETURNING `+messageColumns,
		params.ConversationID, params.SenderID, params.ReceiverID,
		params.Body, params.Kind, params.MediaKind, params.MediaURL, params.ReplyTo)
	return msg, err
}

// History returns one page of a conversation in chronological order plus the
// total message count. The newest page is page 1: the store is windowed
// newest-first, then the window is reversed so callers always read
// oldest-to-newest.
func (r *MessageRepo) History(ctx context.Context, conversationID string, page, pageSize int) ([]models.Message, int64, error) {
	if page < 1 {
		page = 1
	}
	offset := (page - 1) * pageSize

	var msgs []models.Message
	err := r.db.SelectContext(ctx, &msgs, `SELECT `+messageColumns+`
        FROM messages
        WHERE conversation_id = $1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`, conversationID, pageSize, offset)
	if err != nil {
		return nil, 0, err
	}

	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}

	var total int64
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM messages WHERE conversation_id = $1`, conversationID); err != nil {
		return nil, 0, err
	}
	return msgs, total, nil
}

// MarkRead flips every unread message addressed to the reader in one
// conversation to read. A single set-based UPDATE keeps the transition atomic
// when two read-triggering requests race; calling it again is a no-op, so
// read_at is stamped exactly once per message.
func (r *MessageRepo) MarkRead(ctx context.Context, conversationID, readerID string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE messages
        SET is_read = TRUE, read_at = NOW()
        WHERE conversation_id = $1 AND receiver_id = $2 AND is_read = FALSE`,
		conversationID, readerID)
	return err
}

// ConversationsFor lists the user's conversations, newest activity first, each
// with its latest message and the count of unread messages addressed to the
// user. It scans every message the user participates in; fine at this scale,
// an incremental per-user index would be needed for large volumes.
func (r *MessageRepo) ConversationsFor(ctx context.Context, userID string) ([]models.ConversationSummary, error) {
	var last []models.Message
	err := r.db.SelectContext(ctx, &last, `SELECT DISTINCT ON (conversation_id) `+messageColumns+`
        FROM messages
        WHERE sender_id = $1 OR receiver_id = $1
        ORDER BY conversation_id, created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, err
	}

	type unreadRow struct {
		ConversationID string `db:"conversation_id"`
		Count          int64  `db:"count"`
	}
	var unread []unreadRow
	err = r.db.SelectContext(ctx, &unread, `SELECT conversation_id, COUNT(*) AS count
        FROM messages
        WHERE receiver_id = $1 AND is_read = FALSE
        GROUP BY conversation_id`, userID)
	if err != nil {
		return nil, err
	}
	unreadByConv := make(map[string]int64, len(unread))
	for _, row := range unread {
		unreadByConv[row.ConversationID] = row.Count
	}

	summaries := make([]models.ConversationSummary, 0, len(last))
	for _, msg := range last {
		summaries = append(summaries, models.ConversationSummary{
			ConversationID: msg.ConversationID,
			LastMessage:    msg,
			UnreadCount:    unreadByConv[msg.ConversationID],
		})
	}
	sort.Slice(summaries, func(i, j int) bool {
		a, b := summaries[i].LastMessage, summaries[j].LastMessage
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
	return summaries, nil
}

func (r *MessageRepo) getMessage(ctx context.Context, messageID int64) (models.Message, error) {
	var msg models.Message
	err := r.db.GetContext(ctx, &msg, `SELECT `+messageColumns+` FROM messages WHERE id = $1`, messageID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Message{}, ErrMessageNotFound
	}
	return msg, err
}

// DeleteMessage removes a message if the requester is its sender.
func (r *MessageRepo) DeleteMessage(ctx context.Context, messageID int64, requesterID string) error {
	msg, err := r.getMessage(ctx, messageID)
	if err != nil {
		return err
	}
	if msg.SenderID != requesterID {
		return ErrNotMessageSender
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM messages WHERE id = $1`, messageID)
	return err
}
