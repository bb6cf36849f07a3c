package chat

import "sync"

// Sender delivers one outbound frame to a connection. Implementations
// must not block; a false return means the frame was dropped.
type Sender interface {
	Send(data []byte) bool
}

// connection is the registry's record of one live session: its identity
// and the rooms it asked to receive broadcasts for. The joined-rooms set
// is routing state only, distinct from durable room membership.
type connection struct {
	id     string
	userID int64
	sender Sender
	rooms  map[string]struct{}
}

// Registry tracks live connections and their room subscriptions.
// All methods are safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	conns map[string]*connection

	// rooms indexes connections by joined room for fan-out.
	rooms map[string]map[string]*connection
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[string]*connection),
		rooms: make(map[string]map[string]*connection),
	}
}

// Register records a newly authenticated connection.
func (r *Registry) Register(connID string, userID int64, sender Sender) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[connID] = &connection{
		id:     connID,
		userID: userID,
		sender: sender,
		rooms:  make(map[string]struct{}),
	}
}

// Unregister removes a connection and all its room subscriptions.
func (r *Registry) Unregister(connID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return
	}

	for roomID := range conn.rooms {
		if members := r.rooms[roomID]; members != nil {
			delete(members, connID)
			if len(members) == 0 {
				delete(r.rooms, roomID)
			}
		}
	}

	delete(r.conns, connID)
}

// RecordJoin subscribes a connection to a room's broadcasts. Joining a
// room twice is a no-op; unknown connections are ignored.
func (r *Registry) RecordJoin(connID, roomID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	conn, ok := r.conns[connID]
	if !ok {
		return
	}

	if _, joined := conn.rooms[roomID]; joined {
		return
	}
	conn.rooms[roomID] = struct{}{}

	members := r.rooms[roomID]
	if members == nil {
		members = make(map[string]*connection)
		r.rooms[roomID] = members
	}
	members[connID] = conn
}

// UserID returns the authenticated user for a connection.
func (r *Registry) UserID(connID string) (int64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[connID]
	if !ok {
		return 0, false
	}
	return conn.userID, true
}

// Sender returns the sender for a single connection.
func (r *Registry) Sender(connID string) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.conns[connID]
	if !ok {
		return nil, false
	}
	return conn.sender, true
}

// ConnectionsInRoom returns the senders of every connection joined to the
// room, each exactly once.
func (r *Registry) ConnectionsInRoom(roomID string) []Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	senders := make([]Sender, 0, len(members))
	for _, conn := range members {
		senders = append(senders, conn.sender)
	}
	return senders
}

// ConnectionsExcept returns the senders of every connection joined to the
// room except the given one.
func (r *Registry) ConnectionsExcept(roomID, connID string) []Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()

	members := r.rooms[roomID]
	senders := make([]Sender, 0, len(members))
	for id, conn := range members {
		if id == connID {
			continue
		}
		senders = append(senders, conn.sender)
	}
	return senders
}

// All returns the senders of every live connection, for process-wide
// broadcasts such as presence changes.
func (r *Registry) All() []Sender {
	r.mu.RLock()
	defer r.mu.RUnlock()

	senders := make([]Sender, 0, len(r.conns))
	for _, conn := range r.conns {
		senders = append(senders, conn.sender)
	}
	return senders
}
