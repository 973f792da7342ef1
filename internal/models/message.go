package models

import "time"

// Message kinds. A message is plain text unless it carries media; "system"
// messages are service-generated.
const (
	MessageKindText   = "text"
	MessageKindImage  = "image"
	MessageKindVideo  = "video"
	MessageKindAudio  = "audio"
	MessageKindSystem = "system"
)

// Media kinds allowed on messages and stories.
const (
	MediaKindImage = "image"
	MediaKindVideo = "video"
	MediaKindAudio = "audio"
)

// Message is one unit of communication between exactly two users.
// The conversation id is derived from the participant pair and never changes.
type Message struct {
	ID             int64      `db:"id" json:"id"`
	ConversationID string     `db:"conversation_id" json:"conversation_id"`
	SenderID       string     `db:"sender_id" json:"sender_id"`
	ReceiverID     string     `db:"receiver_id" json:"receiver_id"`
	Body           string     `db:"body" json:"body"`
	Kind           string     `db:"kind" json:"kind"`
	MediaKind      *string    `db:"media_kind" json:"media_kind,omitempty"`
	MediaURL       *string    `db:"media_url" json:"media_url,omitempty"`
	IsRead         bool       `db:"is_read" json:"is_read"`
	ReadAt         *time.Time `db:"read_at" json:"read_at,omitempty"`
	Edited         bool       `db:"edited" json:"edited"`
	EditedAt       *time.Time `db:"edited_at" json:"edited_at,omitempty"`
	ReplyTo        *int64     `db:"reply_to" json:"reply_to,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"created_at"`
}

// ConversationSummary is the per-conversation entry in a user's inbox:
// the latest message plus how many messages addressed to the user are unread.
type ConversationSummary struct {
	ConversationID string       `json:"conversation_id"`
	OtherUser      *UserSummary `json:"other_user,omitempty"`
	LastMessage    Message      `json:"last_message"`
	UnreadCount    int64        `json:"unread_count"`
}

// ChatEvent is pushed over websocket connections.
type ChatEvent struct {
	Type    string   `json:"type"`
	Message *Message `json:"message,omitempty"`
}

// ChatEvent types.
const (
	// EventMessage is pushed to the receiver of a new message.
	EventMessage = "message"
	// EventMessageSent is the sender's confirmation echo, carrying the
	// stored record with server-assigned id and timestamp.
	EventMessageSent = "message_sent"
)
