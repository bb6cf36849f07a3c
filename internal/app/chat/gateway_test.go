package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theajstars/voyatek-assessment/internal/app/store"
)

// fakeSender records every frame handed to it.
type fakeSender struct {
	mu     sync.Mutex
	frames [][]byte
}

func (s *fakeSender) Send(data []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = append(s.frames, data)
	return true
}

// eventsOf decodes the sender's frames and returns the payloads of the
// named event, in order.
func eventsOf(t *testing.T, s *fakeSender, event string) []json.RawMessage {
	t.Helper()

	s.mu.Lock()
	defer s.mu.Unlock()

	var payloads []json.RawMessage
	for _, frame := range s.frames {
		var envelope Envelope
		require.NoError(t, json.Unmarshal(frame, &envelope))
		if envelope.Event == event {
			payloads = append(payloads, envelope.Data)
		}
	}
	return payloads
}

// fakeStore is an in-memory DurableStore.
type fakeStore struct {
	mu       sync.Mutex
	members  map[string]bool
	messages []store.Message
	profiles map[int64]store.UserProfile
	lastSeen map[int64]time.Time

	createErr   error
	profileErr  error
	lastSeenErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		members:  make(map[string]bool),
		profiles: make(map[int64]store.UserProfile),
		lastSeen: make(map[int64]time.Time),
	}
}

func memberKey(userID int64, roomID string) string {
	return fmt.Sprintf("%s|%d", roomID, userID)
}

func (f *fakeStore) addMember(userID int64, roomID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.members[memberKey(userID, roomID)] = true
}

func (f *fakeStore) MembershipExists(ctx context.Context, userID int64, roomID string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.members[memberKey(userID, roomID)], nil
}

func (f *fakeStore) CreateMessage(ctx context.Context, roomID string, userID int64, content string) (store.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.createErr != nil {
		return store.Message{}, f.createErr
	}

	m := store.Message{
		ID:        fmt.Sprintf("m%d", len(f.messages)+1),
		RoomID:    roomID,
		UserID:    userID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	f.messages = append(f.messages, m)
	return m, nil
}

func (f *fakeStore) GetUserProfile(ctx context.Context, userID int64) (store.UserProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.profileErr != nil {
		return store.UserProfile{}, f.profileErr
	}
	return f.profiles[userID], nil
}

func (f *fakeStore) UpdateLastSeen(ctx context.Context, userID int64, lastSeen time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.lastSeenErr != nil {
		return f.lastSeenErr
	}
	f.lastSeen[userID] = lastSeen
	return nil
}

func (f *fakeStore) messageCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages)
}

func newTestGateway(t *testing.T, st *fakeStore) *Gateway {
	t.Helper()

	limiter := NewSlidingWindow(5, 10*time.Second)
	t.Cleanup(limiter.Close)

	return NewGateway(NewRegistry(), NewPresenceStore(), limiter, st)
}

// connectAndJoin registers a connection and, when roomID is non-empty,
// joins it through the normal event path.
func connectAndJoin(t *testing.T, g *Gateway, connID string, userID int64, roomID string) *fakeSender {
	t.Helper()

	s := &fakeSender{}
	g.Connect(connID, userID, s)

	if roomID != "" {
		frame, err := json.Marshal(map[string]any{
			"event": EventJoinRoom,
			"data":  map[string]any{"roomId": roomID},
		})
		require.NoError(t, err)
		g.HandleEvent(context.Background(), connID, frame)
	}

	return s
}

func sendEvent(t *testing.T, g *Gateway, connID, event string, data map[string]any) {
	t.Helper()

	frame, err := json.Marshal(map[string]any{"event": event, "data": data})
	require.NoError(t, err)
	g.HandleEvent(context.Background(), connID, frame)
}

func TestConnectBroadcastsOnlineStatus(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	a := connectAndJoin(t, g, "ca", 1, "")
	b := connectAndJoin(t, g, "cb", 2, "")

	// b's connect reached every live connection, including b itself.
	require.Len(t, eventsOf(t, a, EventUserStatus), 2)

	var status UserStatusPayload
	payloads := eventsOf(t, b, EventUserStatus)
	require.Len(t, payloads, 1)
	require.NoError(t, json.Unmarshal(payloads[0], &status))
	assert.Equal(t, int64(2), status.UserID)
	assert.Equal(t, StatusOnline, status.Status)
	assert.Nil(t, status.LastSeen)

	assert.Equal(t, StatusOnline, g.Presence().Get(1).Status)
}

func TestJoinRoomRequiresMembership(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	st.addMember(1, "room-a")
	connectAndJoin(t, g, "ca", 1, "room-a")
	connectAndJoin(t, g, "cb", 2, "room-a") // not a member

	assert.Len(t, g.Registry().ConnectionsInRoom("room-a"), 1)
}

func TestSendMessageFanOutReachesWholeRoomOnce(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	st.addMember(1, "room-a")
	st.addMember(2, "room-a")
	st.profiles[1] = store.UserProfile{ID: 1, Name: "Ada", Email: "ada@example.com"}

	a := connectAndJoin(t, g, "ca", 1, "room-a")
	b := connectAndJoin(t, g, "cb", 2, "room-a")
	c := connectAndJoin(t, g, "cc", 3, "") // connected, never joined

	sendEvent(t, g, "ca", EventSendMessage, map[string]any{
		"roomId":   "room-a",
		"content":  "  hello world  ",
		"clientId": "tmp-1",
	})

	// Sender included, each joined connection exactly once.
	aMsgs := eventsOf(t, a, EventReceiveMessage)
	bMsgs := eventsOf(t, b, EventReceiveMessage)
	require.Len(t, aMsgs, 1)
	require.Len(t, bMsgs, 1)
	assert.Empty(t, eventsOf(t, c, EventReceiveMessage))

	var received ReceiveMessagePayload
	require.NoError(t, json.Unmarshal(aMsgs[0], &received))
	assert.Equal(t, "room-a", received.RoomID)
	assert.Equal(t, int64(1), received.UserID)
	assert.Equal(t, "hello world", received.Content, "content is trimmed before persisting")
	assert.Equal(t, "tmp-1", received.ClientID)
	require.NotNil(t, received.User)
	assert.Equal(t, "Ada", received.User.Name)

	assert.Equal(t, 1, st.messageCount())
}

func TestSendMessageNonMemberIsSilentlyDropped(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	st.addMember(2, "room-a")
	a := connectAndJoin(t, g, "ca", 1, "") // user 1 is not a member
	b := connectAndJoin(t, g, "cb", 2, "room-a")

	sendEvent(t, g, "ca", EventSendMessage, map[string]any{
		"roomId":  "room-a",
		"content": "sneaky",
	})

	assert.Empty(t, eventsOf(t, b, EventReceiveMessage))
	assert.Empty(t, eventsOf(t, a, EventError), "authorization failures give no feedback")
	assert.Equal(t, 0, st.messageCount())
}

func TestSendMessageBlankContentDropped(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	st.addMember(1, "room-a")
	a := connectAndJoin(t, g, "ca", 1, "room-a")

	sendEvent(t, g, "ca", EventSendMessage, map[string]any{
		"roomId":  "room-a",
		"content": "   ",
	})

	assert.Empty(t, eventsOf(t, a, EventReceiveMessage))
	assert.Equal(t, 0, st.messageCount())
}

func TestSendMessageRateLimitSurfacedToSenderOnly(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	st.addMember(1, "room-a")
	st.addMember(2, "room-a")
	a := connectAndJoin(t, g, "ca", 1, "room-a")
	b := connectAndJoin(t, g, "cb", 2, "room-a")

	for i := 0; i < 6; i++ {
		sendEvent(t, g, "ca", EventSendMessage, map[string]any{
			"roomId":  "room-a",
			"content": fmt.Sprintf("message %d", i+1),
		})
	}

	assert.Len(t, eventsOf(t, a, EventReceiveMessage), 5)
	assert.Len(t, eventsOf(t, b, EventReceiveMessage), 5)
	assert.Equal(t, 5, st.messageCount(), "the rejected message must not be persisted")

	errPayloads := eventsOf(t, a, EventError)
	require.Len(t, errPayloads, 1)
	var errPayload ErrorPayload
	require.NoError(t, json.Unmarshal(errPayloads[0], &errPayload))
	assert.Equal(t, "Rate limit exceeded", errPayload.Message)

	assert.Empty(t, eventsOf(t, b, EventError), "errors are never broadcast")
}

func TestSendMessagePersistFailureSurfacedWithClientID(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	st.addMember(1, "room-a")
	st.addMember(2, "room-a")
	a := connectAndJoin(t, g, "ca", 1, "room-a")
	b := connectAndJoin(t, g, "cb", 2, "room-a")

	st.createErr = errors.New("connection refused")

	sendEvent(t, g, "ca", EventSendMessage, map[string]any{
		"roomId":   "room-a",
		"content":  "hello",
		"clientId": "tmp-9",
	})

	failed := eventsOf(t, a, EventSendFailed)
	require.Len(t, failed, 1)
	var payload SendFailedPayload
	require.NoError(t, json.Unmarshal(failed[0], &payload))
	assert.Equal(t, "tmp-9", payload.ClientID)

	assert.Empty(t, eventsOf(t, b, EventReceiveMessage))
	assert.Empty(t, eventsOf(t, b, EventSendFailed))
}

func TestSendMessageProfileFailureStillBroadcasts(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	st.addMember(1, "room-a")
	a := connectAndJoin(t, g, "ca", 1, "room-a")

	st.profileErr = errors.New("timeout")

	sendEvent(t, g, "ca", EventSendMessage, map[string]any{
		"roomId":  "room-a",
		"content": "hello",
	})

	msgs := eventsOf(t, a, EventReceiveMessage)
	require.Len(t, msgs, 1, "a persisted message is broadcast even without an author profile")

	var received ReceiveMessagePayload
	require.NoError(t, json.Unmarshal(msgs[0], &received))
	assert.Nil(t, received.User)
}

func TestTypingRelaysToRoomExceptSender(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	st.addMember(1, "room-a")
	st.addMember(2, "room-a")
	a := connectAndJoin(t, g, "ca", 1, "room-a")
	b := connectAndJoin(t, g, "cb", 2, "room-a")

	sendEvent(t, g, "ca", EventTyping, map[string]any{
		"roomId":   "room-a",
		"isTyping": true,
	})

	assert.Empty(t, eventsOf(t, a, EventTyping))

	typing := eventsOf(t, b, EventTyping)
	require.Len(t, typing, 1)
	var payload TypingPayload
	require.NoError(t, json.Unmarshal(typing[0], &payload))
	assert.Equal(t, int64(1), payload.UserID)
	assert.True(t, payload.IsTyping)
}

func TestAckRelayReachesWholeRoom(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	for _, userID := range []int64{1, 2, 3} {
		st.addMember(userID, "room-a")
	}
	a := connectAndJoin(t, g, "ca", 1, "room-a")
	b := connectAndJoin(t, g, "cb", 2, "room-a")
	c := connectAndJoin(t, g, "cc", 3, "room-a")

	sendEvent(t, g, "cb", EventAckDelivery, map[string]any{
		"roomId":    "room-a",
		"messageId": "m1",
	})

	for _, s := range []*fakeSender{a, b, c} {
		acks := eventsOf(t, s, EventMessageDelivery)
		require.Len(t, acks, 1)

		var payload AckBroadcastPayload
		require.NoError(t, json.Unmarshal(acks[0], &payload))
		assert.Equal(t, "m1", payload.MessageID)
		assert.Equal(t, int64(2), payload.FromUserID)
		assert.False(t, payload.TS.IsZero())
	}
}

func TestAckFromNonMemberDropped(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	st.addMember(2, "room-a")
	connectAndJoin(t, g, "ca", 1, "") // not a member
	b := connectAndJoin(t, g, "cb", 2, "room-a")

	sendEvent(t, g, "ca", EventAckRead, map[string]any{
		"roomId":    "room-a",
		"messageId": "m1",
	})

	assert.Empty(t, eventsOf(t, b, EventMessageRead))
}

func TestDisconnectBroadcastsOfflineAndPersistsLastSeen(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	g.now = func() time.Time { return fixed }

	connectAndJoin(t, g, "ca", 1, "")
	b := connectAndJoin(t, g, "cb", 2, "")

	g.Disconnect(context.Background(), "ca")

	payloads := eventsOf(t, b, EventUserStatus)
	require.NotEmpty(t, payloads)
	var status UserStatusPayload
	require.NoError(t, json.Unmarshal(payloads[len(payloads)-1], &status))
	assert.Equal(t, int64(1), status.UserID)
	assert.Equal(t, StatusOffline, status.Status)
	require.NotNil(t, status.LastSeen)
	assert.Equal(t, fixed, status.LastSeen.UTC())

	presence := g.Presence().Get(1)
	assert.Equal(t, StatusOffline, presence.Status)

	st.mu.Lock()
	assert.Equal(t, fixed, st.lastSeen[1])
	st.mu.Unlock()

	_, ok := g.Registry().UserID("ca")
	assert.False(t, ok)
}

func TestDisconnectSwallowsLastSeenFailure(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	connectAndJoin(t, g, "ca", 1, "")
	b := connectAndJoin(t, g, "cb", 2, "")

	st.lastSeenErr = errors.New("store down")

	g.Disconnect(context.Background(), "ca")

	// The offline broadcast still happens.
	payloads := eventsOf(t, b, EventUserStatus)
	var status UserStatusPayload
	require.NoError(t, json.Unmarshal(payloads[len(payloads)-1], &status))
	assert.Equal(t, StatusOffline, status.Status)
}

func TestMalformedAndUnknownEventsDropped(t *testing.T) {
	st := newFakeStore()
	g := newTestGateway(t, st)

	a := connectAndJoin(t, g, "ca", 1, "")
	before := len(a.frames)

	g.HandleEvent(context.Background(), "ca", []byte("{not json"))
	g.HandleEvent(context.Background(), "ca", []byte(`{"event":"no_such_event","data":{}}`))
	g.HandleEvent(context.Background(), "ghost", []byte(`{"event":"typing","data":{"roomId":"room-a"}}`))

	a.mu.Lock()
	assert.Len(t, a.frames, before, "bad frames produce no feedback")
	a.mu.Unlock()
}
