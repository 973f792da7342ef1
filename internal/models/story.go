package models

import "time"

// StoryTTL is how long a story stays visible after creation.
const StoryTTL = 24 * time.Hour

// Story is an ephemeral post that expires after StoryTTL.
type Story struct {
	ID              int64     `db:"id" json:"id"`
	UserID          string    `db:"user_id" json:"user_id"`
	Body            string    `db:"body" json:"body"`
	MediaKind       *string   `db:"media_kind" json:"media_kind,omitempty"`
	MediaURL        *string   `db:"media_url" json:"media_url,omitempty"`
	BackgroundColor string    `db:"background_color" json:"background_color"`
	TextColor       string    `db:"text_color" json:"text_color"`
	FontStyle       string    `db:"font_style" json:"font_style"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`

	ViewCount int64 `db:"view_count" json:"view_count"`
}

// StoryGroup bundles one author's active stories for the story bar.
type StoryGroup struct {
	User    UserSummary `json:"user"`
	Stories []Story     `json:"stories"`
}
