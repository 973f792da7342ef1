package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"social-service/internal/models"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotPostAuthor   = errors.New("only the author may delete a post")
)

// postSelect pulls a post together with its like/comment counters and whether
// the viewer has liked it. The viewer id may be empty for anonymous reads.
const postSelect = `SELECT p.id, p.user_id, p.body, p.tags, p.location, p.visibility, p.created_at,
    (SELECT COUNT(*) FROM post_likes l WHERE l.post_id = p.id) AS like_count,
    (SELECT COUNT(*) FROM post_comments c WHERE c.post_id = p.id) AS comment_count,
    EXISTS(SELECT 1 FROM post_likes l WHERE l.post_id = p.id AND l.user_id = NULLIF($1, '')::uuid) AS liked_by_me
    FROM posts p`

// feedVisibility keeps public posts, the viewer's own posts, and
// friends-visible posts from followed authors.
const feedVisibility = `(p.visibility = 'public'
    OR p.user_id = NULLIF($1, '')::uuid
    OR (p.visibility IN ('public', 'friends') AND EXISTS(
        SELECT 1 FROM follows f
        WHERE f.follower_id = NULLIF($1, '')::uuid AND f.followee_id = p.user_id)))`

// PostRepository persists posts, their media, likes and comments.
type PostRepository interface {
	CreatePost(ctx context.Context, userID, body, tags, location, visibility string, media []models.PostMedia) (models.Post, error)
	GetPost(ctx context.Context, postID int64, viewerID string) (models.Post, error)
	Feed(ctx context.Context, viewerID string, page, pageSize int) ([]models.Post, int64, error)
	PostsByUser(ctx context.Context, userID, viewerID string, page, pageSize int) ([]models.Post, int64, error)
	SearchPosts(ctx context.Context, query string, limit int) ([]models.Post, error)
	ToggleLike(ctx context.Context, postID int64, userID string) (liked bool, authorID string, err error)
	AddComment(ctx context.Context, postID int64, userID, body string) (models.PostComment, string, error)
	Comments(ctx context.Context, postID int64) ([]models.PostComment, error)
	ToggleCommentLike(ctx context.Context, commentID int64, userID string) (bool, error)
	DeletePost(ctx context.Context, postID int64, requesterID string) error
}

// PostRepo is a sqlx implementation of PostRepository.
type PostRepo struct {
	db *sqlx.DB
}

// NewPostRepo constructs a PostRepo.
func NewPostRepo(db *sqlx.DB) *PostRepo {
	return &PostRepo{db: db}
}

// CreatePost inserts the post and its media descriptors in one transaction.
func (r *PostRepo) CreatePost(ctx context.Context, userID, body, tags, location, visibility string, media []models.PostMedia) (models.Post, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Post{}, err
	}
	defer tx.Rollback()

	var post models.Post
	err = tx.GetContext(ctx, &post, `INSERT INTO posts (user_id, body, tags, location, visibility)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, user_id, body, tags, location, visibility, created_at`,
		userID, body, tags, location, visibility)
	if err != nil {
		return models.Post{}, err
	}

	post.Media = make([]models.PostMedia, 0, len(media))
	for _, m := range media {
		var stored models.PostMedia
		err = tx.GetContext(ctx, &stored, `INSERT INTO post_media (post_id, kind, url)
            VALUES ($1, $2, $3) RETURNING id, post_id, kind, url`, post.ID, m.Kind, m.URL)
		if err != nil {
			return models.Post{}, err
		}
		post.Media = append(post.Media, stored)
	}

	if err := tx.Commit(); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// GetPost fetches one post with counters, media and viewer like state.
func (r *PostRepo) GetPost(ctx context.Context, postID int64, viewerID string) (models.Post, error) {
	var post models.Post
	err := r.db.GetContext(ctx, &post, postSelect+` WHERE p.id = $2`, viewerID, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Post{}, ErrPostNotFound
	}
	if err != nil {
		return models.Post{}, err
	}
	if err := r.attachMedia(ctx, []*models.Post{&post}); err != nil {
		return models.Post{}, err
	}
	return post, nil
}

// Feed returns one page of posts visible to the viewer, newest first.
func (r *PostRepo) Feed(ctx context.Context, viewerID string, page, pageSize int) ([]models.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	where := ` WHERE ` + feedVisibility
	return r.pagedPosts(ctx,
		postSelect+where+` ORDER BY p.created_at DESC, p.id DESC LIMIT $2 OFFSET $3`,
		`SELECT COUNT(*) FROM posts p WHERE `+feedVisibility,
		[]interface{}{viewerID, pageSize, (page - 1) * pageSize},
		[]interface{}{viewerID})
}

// PostsByUser returns one page of a single author's posts visible to the viewer.
func (r *PostRepo) PostsByUser(ctx context.Context, userID, viewerID string, page, pageSize int) ([]models.Post, int64, error) {
	if page < 1 {
		page = 1
	}
	where := ` WHERE p.user_id = $2 AND ` + feedVisibility
	return r.pagedPosts(ctx,
		postSelect+where+` ORDER BY p.created_at DESC, p.id DESC LIMIT $3 OFFSET $4`,
		`SELECT COUNT(*) FROM posts p`+where,
		[]interface{}{viewerID, userID, pageSize, (page - 1) * pageSize},
		[]interface{}{viewerID, userID})
}

func (r *PostRepo) pagedPosts(ctx context.Context, listQuery, countQuery string, listArgs, countArgs []interface{}) ([]models.Post, int64, error) {
	var posts []models.Post
	if err := r.db.SelectContext(ctx, &posts, listQuery, listArgs...); err != nil {
		return nil, 0, err
	}
	var total int64
	if err := r.db.GetContext(ctx, &total, countQuery, countArgs...); err != nil {
		return nil, 0, err
	}
	refs := make([]*models.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}
	if err := r.attachMedia(ctx, refs); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

// SearchPosts matches public posts by body text or tags, case-insensitively.
func (r *PostRepo) SearchPosts(ctx context.Context, query string, limit int) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.SelectContext(ctx, &posts, postSelect+`
        WHERE p.visibility = 'public'
        AND (p.body ILIKE '%' || $2 || '%' OR p.tags ILIKE '%' || $2 || '%')
        ORDER BY p.created_at DESC, p.id DESC
        LIMIT $3`, "", query, limit)
	if err != nil {
		return nil, err
	}
	refs := make([]*models.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}
	if err := r.attachMedia(ctx, refs); err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *PostRepo) attachMedia(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]int64, 0, len(posts))
	byID := make(map[int64]*models.Post, len(posts))
	for _, p := range posts {
		ids = append(ids, p.ID)
		byID[p.ID] = p
		p.Media = []models.PostMedia{}
	}
	query, args, err := sqlx.In(`SELECT id, post_id, kind, url FROM post_media WHERE post_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	var media []models.PostMedia
	if err := r.db.SelectContext(ctx, &media, r.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, m := range media {
		if p, ok := byID[m.PostID]; ok {
			p.Media = append(p.Media, m)
		}
	}
	return nil
}

// ToggleLike likes the post if the user has not liked it, unlikes otherwise.
// It returns the resulting state and the post author for notification fan-out.
func (r *PostRepo) ToggleLike(ctx context.Context, postID int64, userID string) (bool, string, error) {
	var authorID string
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM posts WHERE id = $1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return false, "", ErrPostNotFound
	}
	if err != nil {
		return false, "", err
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM post_likes WHERE post_id = $1 AND user_id = $2`, postID, userID)
	if err != nil {
		return false, "", err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, "", err
	}
	if removed > 0 {
		return false, authorID, nil
	}

	_, err = r.db.ExecContext(ctx, `INSERT INTO post_likes (post_id, user_id)
        VALUES ($1, $2) ON CONFLICT DO NOTHING`, postID, userID)
	if err != nil {
		return false, "", err
	}
	return true, authorID, nil
}

// AddComment appends a comment and returns it with the post author id.
func (r *PostRepo) AddComment(ctx context.Context, postID int64, userID, body string) (models.PostComment, string, error) {
	var authorID string
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM posts WHERE id = $1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.PostComment{}, "", ErrPostNotFound
	}
	if err != nil {
		return models.PostComment{}, "", err
	}

	var comment models.PostComment
	err = r.db.GetContext(ctx, &comment, `INSERT INTO post_comments (post_id, user_id, body)
        VALUES ($1, $2, $3)
        RETURNING id, post_id, user_id, body, created_at`, postID, userID, body)
	if err != nil {
		return models.PostComment{}, "", err
	}
	return comment, authorID, nil
}

// Comments lists a post's comments oldest first, with like counts.
func (r *PostRepo) Comments(ctx context.Context, postID int64) ([]models.PostComment, error) {
	var comments []models.PostComment
	err := r.db.SelectContext(ctx, &comments, `SELECT c.id, c.post_id, c.user_id, c.body, c.created_at,
        (SELECT COUNT(*) FROM comment_likes l WHERE l.comment_id = c.id) AS like_count
        FROM post_comments c
        WHERE c.post_id = $1
        ORDER BY c.created_at, c.id`, postID)
	return comments, err
}

// ToggleCommentLike flips the user's like on a comment and reports the result.
func (r *PostRepo) ToggleCommentLike(ctx context.Context, commentID int64, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM post_comments WHERE id = $1)`, commentID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, ErrCommentNotFound
	}

	res, err := r.db.ExecContext(ctx,
		`DELETE FROM comment_likes WHERE comment_id = $1 AND user_id = $2`, commentID, userID)
	if err != nil {
		return false, err
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if removed > 0 {
		return false, nil
	}
	_, err = r.db.ExecContext(ctx, `INSERT INTO comment_likes (comment_id, user_id)
        VALUES ($1, $2) ON CONFLICT DO NOTHING`, commentID, userID)
	return true, err
}

// DeletePost removes a post if the requester authored it.
func (r *PostRepo) DeletePost(ctx context.Context, postID int64, requesterID string) error {
	var authorID string
	err := r.db.GetContext(ctx, &authorID, `SELECT user_id FROM posts WHERE id = $1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrPostNotFound
	}
	if err != nil {
		return err
	}
	if authorID != requesterID {
		return ErrNotPostAuthor
	}
	if _, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = $1`, postID); err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}
