package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"social-service/internal/models"
)

var (
	ErrStoryNotFound  = errors.New("story not found")
	ErrNotStoryAuthor = errors.New("only the author may delete a story")
)

const storyColumns = `s.id, s.user_id, s.body, s.media_kind, s.media_url,
    s.background_color, s.text_color, s.font_style, s.created_at,
    (SELECT COUNT(*) FROM story_views v WHERE v.story_id = s.id) AS view_count`

// StoryRepository persists stories. Expiry is enforced by query predicate
// rather than deletion, so a story simply stops appearing once it ages out.
type StoryRepository interface {
	CreateStory(ctx context.Context, story models.Story) (models.Story, error)
	GetStory(ctx context.Context, storyID int64) (models.Story, error)
	FeedFor(ctx context.Context, userID string) ([]models.Story, error)
	MarkViewed(ctx context.Context, storyID int64, viewerID string) error
	DeleteStory(ctx context.Context, storyID int64, requesterID string) error
}

// StoryRepo is a sqlx implementation of StoryRepository.
type StoryRepo struct {
	db *sqlx.DB
}

// NewStoryRepo constructs a StoryRepo.
func NewStoryRepo(db *sqlx.DB) *StoryRepo {
	return &StoryRepo{db: db}
}

// CreateStory stores a new story.
func (r *StoryRepo) CreateStory(ctx context.Context, story models.Story) (models.Story, error) {
	var stored models.Story
	err := r.db.GetContext(ctx, &stored, `INSERT INTO stories
        (user_id, body, media_kind, media_url, background_color, text_color, font_style)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, user_id, body, media_kind, media_url, background_color, text_color, font_style, created_at`,
		story.UserID, story.Body, story.MediaKind, story.MediaURL,
		story.BackgroundColor, story.TextColor, story.FontStyle)
	return stored, err
}

// GetStory fetches one story regardless of expiry.
func (r *StoryRepo) GetStory(ctx context.Context, storyID int64) (models.Story, error) {
	var story models.Story
	err := r.db.GetContext(ctx, &story, `SELECT `+storyColumns+` FROM stories s WHERE s.id = $1`, storyID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Story{}, ErrStoryNotFound
	}
	return story, err
}

// FeedFor lists active stories from followed users and the user themself,
// newest first.
func (r *StoryRepo) FeedFor(ctx context.Context, userID string) ([]models.Story, error) {
	var stories []models.Story
	err := r.db.SelectContext(ctx, &stories, `SELECT `+storyColumns+` FROM stories s
        WHERE s.created_at > NOW() - INTERVAL '24 hours'
        AND (s.user_id = $1 OR EXISTS(
            SELECT 1 FROM follows f WHERE f.follower_id = $1 AND f.followee_id = s.user_id))
        ORDER BY s.created_at DESC, s.id DESC`, userID)
	return stories, err
}

// MarkViewed records that the viewer saw the story; repeat views are no-ops.
func (r *StoryRepo) MarkViewed(ctx context.Context, storyID int64, viewerID string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO story_views (story_id, user_id)
        VALUES ($1, $2) ON CONFLICT DO NOTHING`, storyID, viewerID)
	return err
}

// DeleteStory removes a story if the requester authored it.
func (r *StoryRepo) DeleteStory(ctx context.Context, storyID int64, requesterID string) error {
	story, err := r.GetStory(ctx, storyID)
	if err != nil {
		return err
	}
	if story.UserID != requesterID {
		return ErrNotStoryAuthor
	}
	_, err = r.db.ExecContext(ctx, `DELETE FROM stories WHERE id = $1`, storyID)
	return err
}
