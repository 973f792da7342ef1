package handlers

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/repositories"
	"social-service/internal/telemetry"
)

const maxSearchResults = 50

// ProfileHandler manages profile pages and the follow graph.
type ProfileHandler struct {
	users         repositories.UserRepository
	posts         repositories.PostRepository
	notifications repositories.NotificationRepository
	audit         *telemetry.AuditEmitter
}

// NewProfileHandler builds a ProfileHandler.
func NewProfileHandler(users repositories.UserRepository, posts repositories.PostRepository, notifications repositories.NotificationRepository, audit *telemetry.AuditEmitter) *ProfileHandler {
	return &ProfileHandler{users: users, posts: posts, notifications: notifications, audit: audit}
}

// GetProfile returns a user's public profile with counters and whether the
// caller follows them.
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	viewerID := userIDFromContext(c)
	userID := c.Param("user_id")

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	followers, following, err := h.users.FollowCounts(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load follow counts"})
		return
	}

	_, postCount, err := h.posts.PostsByUser(c.Request.Context(), userID, viewerID, 1, 1)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load post count"})
		return
	}

	isFollowing := false
	if viewerID != "" && viewerID != userID {
		isFollowing, err = h.users.IsFollowing(c.Request.Context(), viewerID, userID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load follow state"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"stats": models.ProfileStats{
			PostsCount:     postCount,
			FollowersCount: followers,
			FollowingCount: following,
		},
		"is_following": isFollowing,
	})
}

// UpdateProfile changes the caller's own profile fields.
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID := userIDFromContext(c)

	var update models.ProfileUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), userID, update)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update profile"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// FollowToggle follows the addressed user, or unfollows when already
// following. A fresh follow notifies the followed user.
func (h *ProfileHandler) FollowToggle(c *gin.Context) {
	followerID := userIDFromContext(c)
	followeeID := c.Param("user_id")

	if followerID == followeeID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot follow yourself"})
		return
	}

	followee, err := h.users.GetUser(c.Request.Context(), followeeID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	following, err := h.users.IsFollowing(c.Request.Context(), followerID, followeeID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load follow state"})
		return
	}

	if following {
		if err := h.users.Unfollow(c.Request.Context(), followerID, followeeID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not unfollow"})
			return
		}
	} else {
		if err := h.users.Follow(c.Request.Context(), followerID, followeeID); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not follow"})
			return
		}
		follower, err := h.users.GetUser(c.Request.Context(), followerID)
		if err == nil {
			n, err := h.notifications.Create(c.Request.Context(), followeeID, followerID,
				models.NotificationFollow, follower.Username+" started following you", nil)
			if err != nil {
				log.Printf("follow notification failed: %v", err)
			} else {
				_ = observability.PublishEvent(c.Request.Context(), "notification_events."+models.NotificationFollow,
					observability.EventEnvelope{
						EventType: "notification_events",
						EventName: models.NotificationFollow,
						Payload:   n,
					}, nil)
			}
		}
	}

	h.audit.Emit(c.Request.Context(), "follow_toggled", "info",
		"follow of "+followee.Username+" toggled", requestIDFromContext(c), &followerID)
	c.JSON(http.StatusOK, gin.H{"following": !following})
}

// Followers lists the users following the addressed user.
func (h *ProfileHandler) Followers(c *gin.Context) {
	users, err := h.users.Followers(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load followers"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// Following lists the users the addressed user follows.
func (h *ProfileHandler) Following(c *gin.Context) {
	users, err := h.users.Following(c.Request.Context(), c.Param("user_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load following"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}

// SearchUsers matches users by username or email fragment.
func (h *ProfileHandler) SearchUsers(c *gin.Context) {
	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing search query"})
		return
	}

	limit := queryInt(c, "limit", 20)
	if limit < 1 || limit > maxSearchResults {
		limit = 20
	}

	users, err := h.users.SearchUsers(c.Request.Context(), query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": users})
}
