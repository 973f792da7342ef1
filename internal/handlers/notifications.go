package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"social-service/internal/repositories"
)

const defaultNotificationPage = 20

// NotificationHandler manages the caller's notification inbox.
type NotificationHandler struct {
	users         repositories.UserRepository
	notifications repositories.NotificationRepository
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(users repositories.UserRepository, notifications repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{users: users, notifications: notifications}
}

// List returns one page of the caller's notifications, newest first.
// ?unread_only=true filters to unread ones.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := userIDFromContext(c)
	page, pageSize := pageParams(c, defaultNotificationPage, maxFeedPage)
	unreadOnly := c.Query("unread_only") == "true"

	result, err := h.notifications.ListForUser(c.Request.Context(), userID, page, pageSize, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load notifications"})
		return
	}

	senderIDs := make([]string, 0, len(result.Notifications))
	for _, n := range result.Notifications {
		senderIDs = append(senderIDs, n.SenderID)
	}
	userByID, err := summariesByID(c.Request.Context(), h.users, senderIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load sender info"})
		return
	}
	for i := range result.Notifications {
		if summary, ok := userByID[result.Notifications[i].SenderID]; ok {
			sender := summary
			result.Notifications[i].Sender = &sender
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"notifications": result.Notifications,
		"page":          page,
		"total_pages":   totalPages(result.Total, pageSize),
		"total_count":   result.Total,
		"unread_count":  result.UnreadCount,
	})
}

// MarkRead flips one of the caller's notifications to read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	notificationID, ok := notificationIDParam(c)
	if !ok {
		return
	}

	n, err := h.notifications.MarkRead(c.Request.Context(), notificationID, userIDFromContext(c))
	if errors.Is(err, repositories.ErrNotificationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark notification read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"notification": n})
}

// MarkAllRead flips every unread notification of the caller.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	if err := h.notifications.MarkAllRead(c.Request.Context(), userIDFromContext(c)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark notifications read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// Delete removes one of the caller's notifications.
func (h *NotificationHandler) Delete(c *gin.Context) {
	notificationID, ok := notificationIDParam(c)
	if !ok {
		return
	}

	err := h.notifications.Delete(c.Request.Context(), notificationID, userIDFromContext(c))
	if errors.Is(err, repositories.ErrNotificationNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete notification"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func notificationIDParam(c *gin.Context) (int64, bool) {
	notificationID, err := strconv.ParseInt(c.Param("notification_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
		return 0, false
	}
	return notificationID, true
}
