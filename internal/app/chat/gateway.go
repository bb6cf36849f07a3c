package chat

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/theajstars/voyatek-assessment/internal/app/store"
	"github.com/theajstars/voyatek-assessment/internal/pkg/logx"
)

// DurableStore is the narrow persistence interface the realtime layer
// depends on. Everything else about storage lives behind it.
type DurableStore interface {
	MembershipExists(ctx context.Context, userID int64, roomID string) (bool, error)
	CreateMessage(ctx context.Context, roomID string, userID int64, content string) (store.Message, error)
	GetUserProfile(ctx context.Context, userID int64) (store.UserProfile, error)
	UpdateLastSeen(ctx context.Context, userID int64, lastSeen time.Time) error
}

// Gateway orchestrates the realtime layer: it owns the connection
// registry and presence store, applies membership and rate-limit checks
// to inbound events, persists messages, and fans outbound events to the
// right connections.
//
// Handlers run on per-connection goroutines; the registry, presence
// store and rate limiter are each individually locked, so no further
// synchronization happens here.
type Gateway struct {
	registry *Registry
	presence *PresenceStore
	limiter  *SlidingWindow
	guard    *MembershipGuard
	store    DurableStore
	logger   zerolog.Logger

	// now is replaceable in tests.
	now func() time.Time
}

// NewGateway wires a gateway from its collaborators.
func NewGateway(registry *Registry, presence *PresenceStore, limiter *SlidingWindow, durable DurableStore) *Gateway {
	return &Gateway{
		registry: registry,
		presence: presence,
		limiter:  limiter,
		guard:    NewMembershipGuard(durable),
		store:    durable,
		logger:   logx.Logger().With().Str("component", "Gateway").Logger(),
		now:      time.Now,
	}
}

// Registry exposes the connection registry to the transport layer.
func (g *Gateway) Registry() *Registry {
	return g.registry
}

// Presence exposes the presence store to the REST layer.
func (g *Gateway) Presence() *PresenceStore {
	return g.presence
}

// Connect records an authenticated connection, marks its user online and
// announces the status change to every live connection.
func (g *Gateway) Connect(connID string, userID int64, sender Sender) {
	g.registry.Register(connID, userID, sender)
	g.presence.SetOnline(userID)

	g.logger.Info().Str("conn_id", connID).Int64("user_id", userID).Msg("Connection established")

	g.broadcast(g.registry.All(), EventUserStatus, UserStatusPayload{
		UserID: userID,
		Status: StatusOnline,
	})
}

// Disconnect tears a connection down: routing state is dropped, the user
// goes offline with a last-seen timestamp (persisted best-effort), and
// the status change is announced process-wide.
func (g *Gateway) Disconnect(ctx context.Context, connID string) {
	userID, ok := g.registry.UserID(connID)
	if !ok {
		return
	}

	g.registry.Unregister(connID)

	lastSeen := g.now().UTC()
	g.presence.SetOffline(userID, lastSeen)

	// Best effort: a failed last-seen write must not disturb teardown.
	if err := g.store.UpdateLastSeen(ctx, userID, lastSeen); err != nil {
		g.logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to persist last seen")
	}

	g.logger.Info().Str("conn_id", connID).Int64("user_id", userID).Msg("Connection closed")

	g.broadcast(g.registry.All(), EventUserStatus, UserStatusPayload{
		UserID:   userID,
		Status:   StatusOffline,
		LastSeen: &lastSeen,
	})
}

// HandleEvent dispatches one inbound frame from a connection. Malformed
// frames, unknown events and events from unknown connections are dropped
// without feedback; only rate limiting and persist failures answer the
// sender.
func (g *Gateway) HandleEvent(ctx context.Context, connID string, raw []byte) {
	userID, ok := g.registry.UserID(connID)
	if !ok {
		g.logger.Warn().Str("conn_id", connID).Msg("Event from unknown connection dropped")
		return
	}

	var envelope Envelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		g.logger.Warn().Err(err).Str("conn_id", connID).Msg("Client sent invalid JSON")
		return
	}

	switch envelope.Event {
	case EventJoinRoom:
		g.handleJoinRoom(ctx, connID, userID, envelope.Data)
	case EventTyping:
		g.handleTyping(connID, userID, envelope.Data)
	case EventSendMessage:
		g.handleSendMessage(ctx, connID, userID, envelope.Data)
	case EventAckDelivery:
		g.handleAck(ctx, userID, envelope.Data, EventMessageDelivery)
	case EventAckRead:
		g.handleAck(ctx, userID, envelope.Data, EventMessageRead)
	default:
		g.logger.Warn().Str("event", envelope.Event).Str("conn_id", connID).Msg("Unsupported event dropped")
	}
}

// handleJoinRoom subscribes the connection to a room's broadcasts, but
// only when the user durably belongs to it. Nothing is broadcast.
func (g *Gateway) handleJoinRoom(ctx context.Context, connID string, userID int64, data json.RawMessage) {
	var payload JoinRoomPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		return
	}

	if !g.guard.IsMember(ctx, userID, payload.RoomID) {
		return
	}

	g.registry.RecordJoin(connID, payload.RoomID)
}

// handleTyping relays a typing indicator to everyone else in the room.
// Membership is deliberately not re-checked: the event is ephemeral and
// only ever reaches connections that themselves passed the join check.
func (g *Gateway) handleTyping(connID string, userID int64, data json.RawMessage) {
	var payload TypingPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" {
		return
	}

	g.broadcast(g.registry.ConnectionsExcept(payload.RoomID, connID), EventTyping, TypingPayload{
		RoomID:   payload.RoomID,
		UserID:   userID,
		IsTyping: payload.IsTyping,
	})
}

// handleSendMessage runs the full admission pipeline: validation, rate
// limit, membership, persist, author lookup, then room-wide fan-out
// including the sender.
func (g *Gateway) handleSendMessage(ctx context.Context, connID string, userID int64, data json.RawMessage) {
	var payload SendMessagePayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return
	}

	content := strings.TrimSpace(payload.Content)
	if payload.RoomID == "" || content == "" {
		return
	}

	if !g.limiter.Allow(userID) {
		g.sendTo(connID, EventError, ErrorPayload{Message: "Rate limit exceeded"})
		return
	}

	if !g.guard.IsMember(ctx, userID, payload.RoomID) {
		return
	}

	message, err := g.store.CreateMessage(ctx, payload.RoomID, userID, content)
	if err != nil {
		g.logger.Error().Err(err).
			Int64("user_id", userID).
			Str("room_id", payload.RoomID).
			Msg("Failed to persist message")

		g.sendTo(connID, EventSendFailed, SendFailedPayload{
			ClientID: payload.ClientID,
			Message:  "Message could not be saved",
		})
		return
	}

	var user *store.UserProfile
	if profile, err := g.store.GetUserProfile(ctx, userID); err != nil {
		// The message is durable already; broadcast with a null author
		// rather than dropping a persisted message.
		g.logger.Warn().Err(err).Int64("user_id", userID).Msg("Failed to fetch author profile")
	} else {
		user = &profile
	}

	g.broadcast(g.registry.ConnectionsInRoom(payload.RoomID), EventReceiveMessage, ReceiveMessagePayload{
		ID:        message.ID,
		RoomID:    message.RoomID,
		UserID:    message.UserID,
		Content:   message.Content,
		CreatedAt: message.CreatedAt,
		User:      user,
		ClientID:  payload.ClientID,
	})
}

// handleAck relays a delivery or read acknowledgment to the whole room,
// original sender included, so every member's devices can reconcile
// message state.
func (g *Gateway) handleAck(ctx context.Context, userID int64, data json.RawMessage, outEvent string) {
	var payload AckPayload
	if err := json.Unmarshal(data, &payload); err != nil || payload.RoomID == "" || payload.MessageID == "" {
		return
	}

	if !g.guard.IsMember(ctx, userID, payload.RoomID) {
		return
	}

	g.broadcast(g.registry.ConnectionsInRoom(payload.RoomID), outEvent, AckBroadcastPayload{
		RoomID:     payload.RoomID,
		MessageID:  payload.MessageID,
		FromUserID: userID,
		TS:         g.now().UTC(),
	})
}

// broadcast encodes the event once and hands it to each sender.
func (g *Gateway) broadcast(senders []Sender, event string, payload any) {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		g.logger.Error().Err(err).Str("event", event).Msg("Failed to encode broadcast")
		return
	}

	for _, sender := range senders {
		if !sender.Send(frame) {
			g.logger.Warn().Str("event", event).Msg("Dropped frame for slow connection")
		}
	}
}

// sendTo delivers an event to a single connection.
func (g *Gateway) sendTo(connID string, event string, payload any) {
	frame, err := encodeEvent(event, payload)
	if err != nil {
		g.logger.Error().Err(err).Str("event", event).Msg("Failed to encode event")
		return
	}

	sender, ok := g.registry.Sender(connID)
	if !ok {
		return
	}

	if !sender.Send(frame) {
		g.logger.Warn().Str("conn_id", connID).Str("event", event).Msg("Dropped frame for slow connection")
	}
}
