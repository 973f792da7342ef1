package models

import "time"

// Post visibility levels.
const (
	VisibilityPublic  = "public"
	VisibilityFriends = "friends"
	VisibilityPrivate = "private"
)

// Post is a feed entry authored by one user.
type Post struct {
	ID         int64     `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	Body       string    `db:"body" json:"body"`
	Tags       string    `db:"tags" json:"tags"`
	Location   string    `db:"location" json:"location"`
	Visibility string    `db:"visibility" json:"visibility"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`

	// Filled by queries, not columns of the posts table itself.
	Author       *UserSummary `db:"-" json:"author,omitempty"`
	Media        []PostMedia  `db:"-" json:"media"`
	LikeCount    int64        `db:"like_count" json:"like_count"`
	CommentCount int64        `db:"comment_count" json:"comment_count"`
	LikedByMe    bool         `db:"liked_by_me" json:"liked_by_me"`
}

// PostMedia is one attached media descriptor.
type PostMedia struct {
	ID     int64  `db:"id" json:"id"`
	PostID int64  `db:"post_id" json:"-"`
	Kind   string `db:"kind" json:"kind"`
	URL    string `db:"url" json:"url"`
}

// PostComment is a comment on a post.
type PostComment struct {
	ID        int64     `db:"id" json:"id"`
	PostID    int64     `db:"post_id" json:"post_id"`
	UserID    string    `db:"user_id" json:"user_id"`
	Body      string    `db:"body" json:"body"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`

	Author    *UserSummary `db:"-" json:"author,omitempty"`
	LikeCount int64        `db:"like_count" json:"like_count"`
}
