package chat

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresenceUnknownUserIsOffline(t *testing.T) {
	p := NewPresenceStore()

	presence := p.Get(42)

	assert.Equal(t, StatusOffline, presence.Status)
	assert.Nil(t, presence.LastSeen)
}

func TestPresenceSetOnlineIsIdempotent(t *testing.T) {
	p := NewPresenceStore()

	p.SetOnline(1)
	p.SetOnline(1)

	presence := p.Get(1)
	assert.Equal(t, StatusOnline, presence.Status)
	assert.Nil(t, presence.LastSeen)
}

func TestPresenceOfflineKeepsLastSeen(t *testing.T) {
	p := NewPresenceStore()
	lastSeen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p.SetOnline(1)
	p.SetOffline(1, lastSeen)

	presence := p.Get(1)
	assert.Equal(t, StatusOffline, presence.Status)
	require.NotNil(t, presence.LastSeen)
	assert.Equal(t, lastSeen, *presence.LastSeen)
}

func TestPresenceReconnectClearsLastSeen(t *testing.T) {
	p := NewPresenceStore()

	p.SetOffline(1, time.Now())
	p.SetOnline(1)

	presence := p.Get(1)
	assert.Equal(t, StatusOnline, presence.Status)
	assert.Nil(t, presence.LastSeen)
}

func TestPresenceGetMany(t *testing.T) {
	p := NewPresenceStore()
	lastSeen := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	p.SetOnline(1)
	p.SetOffline(2, lastSeen)

	result := p.GetMany([]int64{1, 2, 3})

	require.Len(t, result, 3)
	assert.Equal(t, StatusOnline, result[1].Status)
	assert.Equal(t, StatusOffline, result[2].Status)
	require.NotNil(t, result[2].LastSeen)
	assert.Equal(t, lastSeen, *result[2].LastSeen)
	assert.Equal(t, StatusOffline, result[3].Status)
	assert.Nil(t, result[3].LastSeen)
}
