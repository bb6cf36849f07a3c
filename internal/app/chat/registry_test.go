package chat

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistryRegisterAndLookup(t *testing.T) {
	r := NewRegistry()
	s := &fakeSender{}

	r.Register("c1", 1, s)

	userID, ok := r.UserID("c1")
	assert.True(t, ok)
	assert.Equal(t, int64(1), userID)

	_, ok = r.UserID("missing")
	assert.False(t, ok)
}

func TestRegistryRecordJoinIsIdempotent(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", 1, &fakeSender{})

	r.RecordJoin("c1", "room-a")
	r.RecordJoin("c1", "room-a")

	assert.Len(t, r.ConnectionsInRoom("room-a"), 1)
}

func TestRegistryJoinUnknownConnectionIgnored(t *testing.T) {
	r := NewRegistry()

	r.RecordJoin("ghost", "room-a")

	assert.Empty(t, r.ConnectionsInRoom("room-a"))
}

func TestRegistryUnregisterDropsRoomRoutes(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", 1, &fakeSender{})
	r.Register("c2", 2, &fakeSender{})
	r.RecordJoin("c1", "room-a")
	r.RecordJoin("c1", "room-b")
	r.RecordJoin("c2", "room-a")

	r.Unregister("c1")

	assert.Len(t, r.ConnectionsInRoom("room-a"), 1)
	assert.Empty(t, r.ConnectionsInRoom("room-b"))
	_, ok := r.UserID("c1")
	assert.False(t, ok)
}

func TestRegistryConnectionsExcept(t *testing.T) {
	r := NewRegistry()
	a := &fakeSender{}
	b := &fakeSender{}
	r.Register("c1", 1, a)
	r.Register("c2", 2, b)
	r.RecordJoin("c1", "room-a")
	r.RecordJoin("c2", "room-a")

	senders := r.ConnectionsExcept("room-a", "c1")

	assert.Len(t, senders, 1)
	assert.Same(t, b, senders[0].(*fakeSender))
}

func TestRegistryAllSpansRooms(t *testing.T) {
	r := NewRegistry()
	r.Register("c1", 1, &fakeSender{})
	r.Register("c2", 2, &fakeSender{})
	r.RecordJoin("c1", "room-a")

	assert.Len(t, r.All(), 2)
}
