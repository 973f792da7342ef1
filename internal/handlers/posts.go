package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
	"social-service/internal/telemetry"
)

const (
	maxPostBodyLength    = 2200
	maxCommentBodyLength = 500
	defaultFeedPage      = 20
	maxFeedPage          = 100
)

// PostHandler manages posts, likes and comments.
type PostHandler struct {
	users         repositories.UserRepository
	posts         repositories.PostRepository
	notifications repositories.NotificationRepository
	audit         *telemetry.AuditEmitter
}

// NewPostHandler builds a PostHandler.
func NewPostHandler(users repositories.UserRepository, posts repositories.PostRepository, notifications repositories.NotificationRepository, audit *telemetry.AuditEmitter) *PostHandler {
	return &PostHandler{users: users, posts: posts, notifications: notifications, audit: audit}
}

// CreatePost publishes a new post with optional media.
func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := userIDFromContext(c)

	var req struct {
		Body       string `json:"body"`
		Tags       string `json:"tags"`
		Location   string `json:"location"`
		Visibility string `json:"visibility"`
		Media      []struct {
			Kind string `json:"kind" binding:"required"`
			URL  string `json:"url" binding:"required"`
		} `json:"media"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" && len(req.Media) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post needs a body or media"})
		return
	}
	if len(req.Body) > maxPostBodyLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "post body too long"})
		return
	}

	if req.Visibility == "" {
		req.Visibility = models.VisibilityPublic
	}
	switch req.Visibility {
	case models.VisibilityPublic, models.VisibilityFriends, models.VisibilityPrivate:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown visibility"})
		return
	}

	media := make([]models.PostMedia, 0, len(req.Media))
	for _, m := range req.Media {
		switch m.Kind {
		case models.MediaKindImage, models.MediaKindVideo, models.MediaKindAudio:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown media kind"})
			return
		}
		media = append(media, models.PostMedia{Kind: m.Kind, URL: m.URL})
	}

	post, err := h.posts.CreatePost(c.Request.Context(), userID, req.Body, req.Tags, req.Location, req.Visibility, media)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create post"})
		return
	}

	if err := h.attachAuthors(c.Request.Context(), []*models.Post{&post}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load author info"})
		return
	}

	h.audit.Emit(c.Request.Context(), "post_created", "info",
		"post "+strconv.FormatInt(post.ID, 10)+" created", requestIDFromContext(c), &userID)
	c.JSON(http.StatusCreated, gin.H{"post": post})
}

// Feed returns one page of posts visible to the caller, newest first.
func (h *PostHandler) Feed(c *gin.Context) {
	viewerID := userIDFromContext(c)
	page, pageSize := pageParams(c, defaultFeedPage, maxFeedPage)

	posts, total, err := h.posts.Feed(c.Request.Context(), viewerID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load feed"})
		return
	}
	h.respondPosts(c, posts, page, pageSize, total)
}

// GetPost returns one post.
func (h *PostHandler) GetPost(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	post, err := h.posts.GetPost(c.Request.Context(), postID, userIDFromContext(c))
	if errors.Is(err, repositories.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load post"})
		return
	}

	if err := h.attachAuthors(c.Request.Context(), []*models.Post{&post}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load author info"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"post": post})
}

// PostsByUser returns one page of a single author's posts visible to the caller.
func (h *PostHandler) PostsByUser(c *gin.Context) {
	viewerID := userIDFromContext(c)
	page, pageSize := pageParams(c, defaultFeedPage, maxFeedPage)

	posts, total, err := h.posts.PostsByUser(c.Request.Context(), c.Param("user_id"), viewerID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load posts"})
		return
	}
	h.respondPosts(c, posts, page, pageSize, total)
}

// SearchPosts matches public posts by body or tags.
func (h *PostHandler) SearchPosts(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing search query"})
		return
	}

	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > maxSearchResults {
		limit = 20
	}

	posts, err := h.posts.SearchPosts(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}

	refs := make([]*models.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}
	if err := h.attachAuthors(c.Request.Context(), refs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load author info"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"posts": posts})
}

// ToggleLike flips the caller's like on a post. A fresh like notifies the
// post's author.
func (h *PostHandler) ToggleLike(c *gin.Context) {
	userID := userIDFromContext(c)
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	liked, authorID, err := h.posts.ToggleLike(c.Request.Context(), postID, userID)
	if errors.Is(err, repositories.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not toggle like"})
		return
	}

	if liked && authorID != userID {
		h.notify(c.Request.Context(), authorID, userID, models.NotificationLike, "liked your post", &postID)
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// AddComment appends a comment and notifies the post's author.
func (h *PostHandler) AddComment(c *gin.Context) {
	userID := userIDFromContext(c)
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	var req struct {
		Body string `json:"body" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" || len(req.Body) > maxCommentBodyLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment body"})
		return
	}

	comment, authorID, err := h.posts.AddComment(c.Request.Context(), postID, userID, req.Body)
	if errors.Is(err, repositories.ErrPostNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not add comment"})
		return
	}

	if authorID != userID {
		h.notify(c.Request.Context(), authorID, userID, models.NotificationComment, "commented on your post", &postID)
	}

	userByID, err := summariesByID(c.Request.Context(), h.users, []string{userID})
	if err == nil {
		if summary, ok := userByID[userID]; ok {
			comment.Author = &summary
		}
	}
	c.JSON(http.StatusCreated, gin.H{"comment": comment})
}

// Comments lists a post's comments oldest first.
func (h *PostHandler) Comments(c *gin.Context) {
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	comments, err := h.posts.Comments(c.Request.Context(), postID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load comments"})
		return
	}

	ids := make([]string, 0, len(comments))
	for _, comment := range comments {
		ids = append(ids, comment.UserID)
	}
	userByID, err := summariesByID(c.Request.Context(), h.users, ids)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load author info"})
		return
	}
	for i := range comments {
		if summary, ok := userByID[comments[i].UserID]; ok {
			author := summary
			comments[i].Author = &author
		}
	}
	c.JSON(http.StatusOK, gin.H{"comments": comments})
}

// ToggleCommentLike flips the caller's like on a comment.
func (h *PostHandler) ToggleCommentLike(c *gin.Context) {
	commentID, err := strconv.ParseInt(c.Param("comment_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	liked, err := h.posts.ToggleCommentLike(c.Request.Context(), commentID, userIDFromContext(c))
	if errors.Is(err, repositories.ErrCommentNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "comment not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not toggle like"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked})
}

// DeletePost removes one of the caller's own posts.
func (h *PostHandler) DeletePost(c *gin.Context) {
	userID := userIDFromContext(c)
	postID, ok := postIDParam(c)
	if !ok {
		return
	}

	err := h.posts.DeletePost(c.Request.Context(), postID, userID)
	switch {
	case errors.Is(err, repositories.ErrPostNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "post not found"})
		return
	case errors.Is(err, repositories.ErrNotPostAuthor):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author may delete a post"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete post"})
		return
	}

	h.audit.Emit(c.Request.Context(), "post_deleted", "info",
		"post "+strconv.FormatInt(postID, 10)+" deleted", requestIDFromContext(c), &userID)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (h *PostHandler) respondPosts(c *gin.Context, posts []models.Post, page, pageSize int, total int64) {
	refs := make([]*models.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}
	if err := h.attachAuthors(c.Request.Context(), refs); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load author info"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"posts":       posts,
		"page":        page,
		"total_pages": totalPages(total, pageSize),
		"total_count": total,
	})
}

func (h *PostHandler) attachAuthors(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.UserID)
	}
	userByID, err := summariesByID(ctx, h.users, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		if summary, ok := userByID[p.UserID]; ok {
			author := summary
			p.Author = &author
		}
	}
	return nil
}

// notify records a notification and publishes it as an event; a failure is
// logged, never surfaced.
func (h *PostHandler) notify(ctx context.Context, recipientID, senderID, kind, body string, postID *int64) {
	n, err := h.notifications.Create(ctx, recipientID, senderID, kind, body, postID)
	if err != nil {
		log.Printf("%s notification failed: %v", kind, err)
		return
	}
	_ = observability.PublishEvent(ctx, "notification_events."+kind, observability.EventEnvelope{
		EventType: "notification_events",
		EventName: kind,
		Payload:   n,
	}, nil)
}

func postIDParam(c *gin.Context) (int64, bool) {
	postID, err := strconv.ParseInt(c.Param("post_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid post id"})
		return 0, false
	}
	return postID, true
}
