package ws

import "sync"

// Conn is the slice of a websocket connection the presence registry and the
// dispatcher need. *websocket.Conn satisfies it; tests substitute fakes.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// lockedConn serializes writes to a shared handle. A gorilla connection
// supports at most one concurrent writer, but dispatch pushes arrive from
// many request goroutines at once, so every connection enters the registry
// wrapped in one of these.
type lockedConn struct {
	mu   sync.Mutex
	conn Conn
}

func newLockedConn(conn Conn) *lockedConn {
	return &lockedConn{conn: conn}
}

func (c *lockedConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

func (c *lockedConn) Close() error {
	return c.conn.Close()
}

// Registry tracks which users currently hold a live connection and which
// handle reaches them. Process-lifetime only; nothing here is persisted.
//
// A user has at most one handle. Joining again displaces the previous handle
// (last connection wins), so there is no multi-device fan-out.
type Registry struct {
	mu     sync.RWMutex
	byUser map[string]Conn
	byConn map[Conn]string
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]Conn),
		byConn: make(map[Conn]string),
	}
}

// Join records conn as the user's live handle, displacing any previous one.
func (r *Registry) Join(userID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byUser[userID]; ok {
		delete(r.byConn, old)
	}
	r.byUser[userID] = conn
	r.byConn[conn] = userID
}

// Leave removes the entry for conn, if it is still current. A handle that was
// displaced by a newer Join is already gone, so Leave on it is a no-op and
// never evicts the newer handle. Keyed by handle because disconnects arrive
// from the connection, not from the user.
func (r *Registry) Leave(conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if userID, ok := r.byConn[conn]; ok {
		delete(r.byUser, userID)
		delete(r.byConn, conn)
	}
}

// Lookup returns the user's live handle, if any.
func (r *Registry) Lookup(userID string) (Conn, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	conn, ok := r.byUser[userID]
	return conn, ok
}

// Online reports how many users currently hold a connection.
func (r *Registry) Online() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser)
}
