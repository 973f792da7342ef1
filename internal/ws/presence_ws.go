package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"

	"social-service/internal/models"
	"social-service/internal/observability"
	"social-service/internal/security"
)

// PresenceHandler owns the per-user realtime connection lifecycle: it
// authenticates the socket, registers it in the presence registry and tears
// the registration down when the connection closes, however abruptly.
type PresenceHandler struct {
	registry   *Registry
	dispatcher *Dispatcher
	tokens     *security.TokenManager
}

// NewPresenceHandler constructs a PresenceHandler.
func NewPresenceHandler(registry *Registry, dispatcher *Dispatcher, tokens *security.TokenManager) *PresenceHandler {
	return &PresenceHandler{registry: registry, dispatcher: dispatcher, tokens: tokens}
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// clientEvent is what a connected client may send over the socket. The only
// supported type is "send_message", which re-dispatches an already persisted
// message over the push path; nothing received here is written to storage.
type clientEvent struct {
	Type    string          `json:"type"`
	Message *models.Message `json:"message,omitempty"`
}

// Handle upgrades the connection and registers the caller's presence.
func (h *PresenceHandler) Handle(c *gin.Context) {
	ctx, span := otel.Tracer("social-service/ws").Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	token := c.GetHeader("Authorization")
	if token == "" {
		token = c.Query("token")
		if token != "" {
			token = "Bearer " + token
		}
	}

	userID, err := h.validateToken(token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      newConnID(),
		UserID:      userID,
		DeviceID:    observability.DeviceIDFromRequest(c.Request),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	handle := newLockedConn(conn)
	h.registry.Join(userID, handle)

	observability.IncWSActive()
	observability.IncWSEvent("ws_connect")
	h.publishWSEvent(ctx, "ws_connect", info, "")

	go h.readLoop(ctx, conn, handle, info)
}

// readLoop consumes client events until the connection dies. Its sole
// mandatory job is to observe the close so presence is released promptly;
// stale entries would otherwise keep dispatch targeting a dead handle.
func (h *PresenceHandler) readLoop(ctx context.Context, conn *websocket.Conn, handle Conn, info ConnInfo) {
	var closeReason string
	defer func() {
		h.registry.Leave(handle)
		handle.Close()
		observability.DecWSActive()
		observability.IncWSEvent("ws_disconnect")
		h.publishWSEvent(ctx, "ws_disconnect", info, closeReason)
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				observability.IncWSEvent("ws_error")
				h.publishWSEvent(ctx, "ws_error", info, closeReason)
			}
			return
		}

		var event clientEvent
		if err := json.Unmarshal(payload, &event); err != nil {
			continue
		}
		if event.Type == "send_message" && event.Message != nil && event.Message.SenderID == info.UserID {
			h.dispatcher.Dispatch(*event.Message)
		}
	}
}

func (h *PresenceHandler) publishWSEvent(ctx context.Context, name string, info ConnInfo, reason string) {
	payload := map[string]interface{}{
		"ws": map[string]interface{}{
			"event":       name,
			"conn_id":     info.ConnID,
			"duration_ms": time.Since(info.ConnectedAt).Milliseconds(),
			"reason":      reason,
		},
		"identity": map[string]interface{}{
			"user_id":   info.UserID,
			"device_id": info.DeviceID,
			"ip":        info.IP,
		},
	}
	_ = observability.PublishEvent(ctx, "ws_events.presence", observability.EventEnvelope{
		EventType: "ws_events",
		EventName: name,
		Payload:   payload,
	}, observability.BuildHeaders(info.RequestID, info.TraceID))
}

func (h *PresenceHandler) validateToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "bearer") {
		return h.tokens.Validate(parts[1])
	}
	return "", fmt.Errorf("invalid token")
}
