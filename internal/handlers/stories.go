package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"social-service/internal/models"
	"social-service/internal/repositories"
)

// StoryHandler manages ephemeral stories.
type StoryHandler struct {
	users   repositories.UserRepository
	stories repositories.StoryRepository
}

// NewStoryHandler builds a StoryHandler.
func NewStoryHandler(users repositories.UserRepository, stories repositories.StoryRepository) *StoryHandler {
	return &StoryHandler{users: users, stories: stories}
}

// CreateStory publishes a story that expires after models.StoryTTL.
func (h *StoryHandler) CreateStory(c *gin.Context) {
	userID := userIDFromContext(c)

	var req struct {
		Body            string  `json:"body"`
		MediaKind       *string `json:"media_kind"`
		MediaURL        *string `json:"media_url"`
		BackgroundColor string  `json:"background_color"`
		TextColor       string  `json:"text_color"`
		FontStyle       string  `json:"font_style"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" && req.MediaURL == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "story needs a body or media"})
		return
	}
	if req.MediaKind != nil {
		switch *req.MediaKind {
		case models.MediaKindImage, models.MediaKindVideo, models.MediaKindAudio:
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown media kind"})
			return
		}
	}

	story, err := h.stories.CreateStory(c.Request.Context(), models.Story{
		UserID:          userID,
		Body:            req.Body,
		MediaKind:       req.MediaKind,
		MediaURL:        req.MediaURL,
		BackgroundColor: req.BackgroundColor,
		TextColor:       req.TextColor,
		FontStyle:       req.FontStyle,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create story"})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"story": story})
}

// StoryFeed returns the caller's active stories grouped per author, newest
// author activity first.
func (h *StoryHandler) StoryFeed(c *gin.Context) {
	userID := userIDFromContext(c)

	stories, err := h.stories.FeedFor(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load stories"})
		return
	}

	order := make([]string, 0)
	byUser := make(map[string][]models.Story)
	for _, story := range stories {
		if _, seen := byUser[story.UserID]; !seen {
			order = append(order, story.UserID)
		}
		byUser[story.UserID] = append(byUser[story.UserID], story)
	}

	userByID, err := summariesByID(c.Request.Context(), h.users, order)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user info"})
		return
	}

	groups := make([]models.StoryGroup, 0, len(order))
	for _, authorID := range order {
		groups = append(groups, models.StoryGroup{
			User:    userByID[authorID],
			Stories: byUser[authorID],
		})
	}
	c.JSON(http.StatusOK, gin.H{"story_groups": groups})
}

// ViewStory records that the caller saw a story.
func (h *StoryHandler) ViewStory(c *gin.Context) {
	storyID, ok := storyIDParam(c)
	if !ok {
		return
	}

	if _, err := h.stories.GetStory(c.Request.Context(), storyID); err != nil {
		if errors.Is(err, repositories.ErrStoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load story"})
		return
	}

	if err := h.stories.MarkViewed(c.Request.Context(), storyID, userIDFromContext(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not record view"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "viewed"})
}

// DeleteStory removes one of the caller's own stories.
func (h *StoryHandler) DeleteStory(c *gin.Context) {
	storyID, ok := storyIDParam(c)
	if !ok {
		return
	}

	err := h.stories.DeleteStory(c.Request.Context(), storyID, userIDFromContext(c))
	switch {
	case errors.Is(err, repositories.ErrStoryNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "story not found"})
		return
	case errors.Is(err, repositories.ErrNotStoryAuthor):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the author may delete a story"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete story"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func storyIDParam(c *gin.Context) (int64, bool) {
	storyID, err := strconv.ParseInt(c.Param("story_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid story id"})
		return 0, false
	}
	return storyID, true
}
