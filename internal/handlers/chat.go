package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"social-service/internal/chat"
	"social-service/internal/models"
	"social-service/internal/repositories"
	"social-service/internal/telemetry"
	"social-service/internal/ws"
)

const (
	maxMessageBodyLength = 1000
	defaultHistoryPage   = 50
	maxHistoryPage       = 200
)

// ChatHandler manages direct message endpoints. Conversations are addressed
// by the other participant's user id; the canonical conversation id is derived
// server-side and never supplied by clients.
type ChatHandler struct {
	users      repositories.UserRepository
	messages   repositories.MessageRepository
	dispatcher *ws.Dispatcher
	audit      *telemetry.AuditEmitter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(users repositories.UserRepository, messages repositories.MessageRepository, dispatcher *ws.Dispatcher, audit *telemetry.AuditEmitter) *ChatHandler {
	return &ChatHandler{users: users, messages: messages, dispatcher: dispatcher, audit: audit}
}

// SendMessage stores a message to the addressed user and pushes it to live
// connections. The HTTP response carries the stored record; real-time delivery
// is best-effort on top of that.
func (h *ChatHandler) SendMessage(c *gin.Context) {
	senderID := userIDFromContext(c)
	receiverID := c.Param("user_id")

	var req struct {
		Body      string  `json:"body"`
		MediaKind *string `json:"media_kind"`
		MediaURL  *string `json:"media_url"`
		ReplyTo   *int64  `json:"reply_to"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	req.Body = strings.TrimSpace(req.Body)
	if req.Body == "" && req.MediaURL == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message needs a body or media"})
		return
	}
	if len(req.Body) > maxMessageBodyLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message body too long"})
		return
	}

	kind := models.MessageKindText
	if req.MediaKind != nil {
		switch *req.MediaKind {
		case models.MediaKindImage, models.MediaKindVideo, models.MediaKindAudio:
			kind = *req.MediaKind
		default:
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown media kind"})
			return
		}
		if req.MediaURL == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "media kind without media url"})
			return
		}
	}

	conversationID, err := chat.ConversationID(senderID, receiverID)
	if errors.Is(err, chat.ErrInvalidParticipants) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid recipient"})
		return
	}

	// Both participants must still resolve; a token can outlive its account.
	for _, participantID := range []string{senderID, receiverID} {
		if _, err := h.users.GetUser(c.Request.Context(), participantID); err != nil {
			if errors.Is(err, repositories.ErrUserNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
			return
		}
	}

	msg, err := h.messages.CreateMessage(c.Request.Context(), repositories.CreateMessageParams{
		ConversationID: conversationID,
		SenderID:       senderID,
		ReceiverID:     receiverID,
		Body:           req.Body,
		Kind:           kind,
		MediaKind:      req.MediaKind,
		MediaURL:       req.MediaURL,
		ReplyTo:        req.ReplyTo,
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not store message"})
		return
	}

	h.dispatcher.Dispatch(msg)
	h.audit.Emit(c.Request.Context(), "message_sent", "info",
		"message "+strconv.FormatInt(msg.ID, 10)+" sent in "+conversationID,
		requestIDFromContext(c), &senderID)

	c.JSON(http.StatusCreated, gin.H{"message": msg})
}

// GetConversation returns one page of history with the addressed user, oldest
// first within the page, and marks every message addressed to the caller as
// read. Opening a conversation is what clears its unread count.
func (h *ChatHandler) GetConversation(c *gin.Context) {
	userID := userIDFromContext(c)
	otherID := c.Param("user_id")

	conversationID, err := chat.ConversationID(userID, otherID)
	if errors.Is(err, chat.ErrInvalidParticipants) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation"})
		return
	}

	other, err := h.users.GetUser(c.Request.Context(), otherID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user"})
		return
	}

	page, pageSize := pageParams(c, defaultHistoryPage, maxHistoryPage)
	messages, total, err := h.messages.History(c.Request.Context(), conversationID, page, pageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load messages"})
		return
	}

	if err := h.messages.MarkRead(c.Request.Context(), conversationID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark messages read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conversationID,
		"other_user": models.UserSummary{
			ID:             other.ID,
			Username:       other.Username,
			ProfilePicture: other.ProfilePicture,
			IsVerified:     other.IsVerified,
		},
		"messages":    messages,
		"page":        page,
		"total_pages": totalPages(total, pageSize),
		"total_count": total,
	})
}

// ListConversations returns the caller's inbox: every conversation with its
// latest message, the other participant's summary and the unread count.
func (h *ChatHandler) ListConversations(c *gin.Context) {
	userID := userIDFromContext(c)

	summaries, err := h.messages.ConversationsFor(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load conversations"})
		return
	}

	otherIDs := make([]string, 0, len(summaries))
	for _, s := range summaries {
		otherIDs = append(otherIDs, otherParticipant(s.LastMessage, userID))
	}
	userByID, err := summariesByID(c.Request.Context(), h.users, otherIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not load user info"})
		return
	}

	for i := range summaries {
		if summary, ok := userByID[otherParticipant(summaries[i].LastMessage, userID)]; ok {
			user := summary
			summaries[i].OtherUser = &user
		}
	}

	c.JSON(http.StatusOK, gin.H{"conversations": summaries})
}

// MarkConversationRead clears the caller's unread count for one conversation
// without fetching history.
func (h *ChatHandler) MarkConversationRead(c *gin.Context) {
	userID := userIDFromContext(c)
	otherID := c.Param("user_id")

	conversationID, err := chat.ConversationID(userID, otherID)
	if errors.Is(err, chat.ErrInvalidParticipants) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid conversation"})
		return
	}

	if err := h.messages.MarkRead(c.Request.Context(), conversationID, userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not mark messages read"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "read"})
}

// DeleteMessage removes one of the caller's own sent messages.
func (h *ChatHandler) DeleteMessage(c *gin.Context) {
	userID := userIDFromContext(c)

	messageID, err := strconv.ParseInt(c.Param("message_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid message id"})
		return
	}

	err = h.messages.DeleteMessage(c.Request.Context(), messageID, userID)
	switch {
	case errors.Is(err, repositories.ErrMessageNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "message not found"})
		return
	case errors.Is(err, repositories.ErrNotMessageSender):
		c.JSON(http.StatusForbidden, gin.H{"error": "only the sender may delete a message"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not delete message"})
		return
	}

	h.audit.Emit(c.Request.Context(), "message_deleted", "info",
		"message "+strconv.FormatInt(messageID, 10)+" deleted",
		requestIDFromContext(c), &userID)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// otherParticipant picks the conversation partner out of a message.
func otherParticipant(msg models.Message, userID string) string {
	if msg.SenderID == userID {
		return msg.ReceiverID
	}
	return msg.SenderID
}
