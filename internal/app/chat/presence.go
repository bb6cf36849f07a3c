package chat

import (
	"sync"
	"time"
)

// PresenceStatus is a user's coarse connectivity state.
type PresenceStatus string

const (
	StatusOnline  PresenceStatus = "online"
	StatusOffline PresenceStatus = "offline"
)

// Presence is a user's status plus, when offline, the last-seen timestamp.
type Presence struct {
	Status   PresenceStatus `json:"status"`
	LastSeen *time.Time     `json:"lastSeen,omitempty"`
}

// PresenceStore tracks online/offline state per user in memory.
// Entries are written on connect/disconnect and never deleted; a user
// with no entry is reported offline with no last-seen.
type PresenceStore struct {
	mu    sync.RWMutex
	users map[int64]Presence
}

// NewPresenceStore creates an empty presence store.
func NewPresenceStore() *PresenceStore {
	return &PresenceStore{
		users: make(map[int64]Presence),
	}
}

// SetOnline marks the user online, clearing any last-seen timestamp.
// The transition is unconditional.
func (p *PresenceStore) SetOnline(userID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.users[userID] = Presence{Status: StatusOnline}
}

// SetOffline marks the user offline with the given last-seen timestamp.
// The transition is unconditional.
func (p *PresenceStore) SetOffline(userID int64, lastSeen time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.users[userID] = Presence{Status: StatusOffline, LastSeen: &lastSeen}
}

// Get returns the user's presence. Unknown users are offline.
func (p *PresenceStore) Get(userID int64) Presence {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if presence, ok := p.users[userID]; ok {
		return presence
	}
	return Presence{Status: StatusOffline}
}

// GetMany returns the presence for each of the given user ids.
func (p *PresenceStore) GetMany(userIDs []int64) map[int64]Presence {
	p.mu.RLock()
	defer p.mu.RUnlock()

	result := make(map[int64]Presence, len(userIDs))
	for _, id := range userIDs {
		if presence, ok := p.users[id]; ok {
			result[id] = presence
		} else {
			result[id] = Presence{Status: StatusOffline}
		}
	}
	return result
}
