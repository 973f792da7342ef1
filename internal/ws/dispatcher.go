package ws

import (
	"log"

	"social-service/internal/models"
	"social-service/internal/observability"
)

// Dispatcher pushes stored messages to live connections. Delivery is
// best-effort: no acknowledgment is awaited and a failed push is not retried,
// the receiver picks the message up from history instead.
type Dispatcher struct {
	registry *Registry
}

// NewDispatcher constructs a Dispatcher over the presence registry.
func NewDispatcher(registry *Registry) *Dispatcher {
	return &Dispatcher{registry: registry}
}

// Dispatch pushes msg to the receiver if they are online, then
// unconditionally echoes the stored record back to the sender's connection so
// their client sees the server-assigned id and timestamp. The echo does not
// depend on the receiver push succeeding or even being attempted.
func (d *Dispatcher) Dispatch(msg models.Message) {
	if conn, ok := d.registry.Lookup(msg.ReceiverID); ok {
		d.push(conn, models.ChatEvent{Type: models.EventMessage, Message: &msg})
		observability.IncDispatch("pushed")
	} else {
		observability.IncDispatch("offline")
	}

	if conn, ok := d.registry.Lookup(msg.SenderID); ok {
		d.push(conn, models.ChatEvent{Type: models.EventMessageSent, Message: &msg})
	}
}

// push writes one event; a write error means the handle is dead, so it is
// closed and evicted rather than retried.
func (d *Dispatcher) push(conn Conn, event models.ChatEvent) {
	if err := conn.WriteJSON(event); err != nil {
		log.Printf("websocket write error: %v", err)
		conn.Close()
		d.registry.Leave(conn)
		observability.IncWSEvent("ws_error")
	}
}
