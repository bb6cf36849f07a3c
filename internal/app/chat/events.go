package chat

import (
	"encoding/json"
	"time"

	"github.com/theajstars/voyatek-assessment/internal/app/store"
)

// Inbound event names accepted from clients.
const (
	EventJoinRoom    = "join_room"
	EventTyping      = "typing"
	EventSendMessage = "send_message"
	EventAckDelivery = "ack_delivery"
	EventAckRead     = "ack_read"
)

// Outbound event names emitted to clients.
const (
	EventUserStatus      = "user_status"
	EventReceiveMessage  = "receive_message"
	EventMessageDelivery = "message_delivery"
	EventMessageRead     = "message_read"
	EventError           = "error"
	EventSendFailed      = "send_failed"
)

// Envelope is the wire frame for every event in both directions.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinRoomPayload asks to receive a room's broadcasts.
type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
}

// TypingPayload signals a typing-state change. The same shape is relayed
// outbound with the sender's user id attached.
type TypingPayload struct {
	RoomID   string `json:"roomId"`
	UserID   int64  `json:"userId,omitempty"`
	IsTyping bool   `json:"isTyping"`
}

// SendMessagePayload submits a message. ClientID is an optional
// client-chosen correlation id echoed back on the broadcast so optimistic
// UI entries can be reconciled.
type SendMessagePayload struct {
	RoomID   string `json:"roomId"`
	Content  string `json:"content"`
	ClientID string `json:"clientId,omitempty"`
}

// AckPayload acknowledges delivery of or reading of a message.
type AckPayload struct {
	RoomID    string `json:"roomId"`
	MessageID string `json:"messageId"`
}

// UserStatusPayload announces a presence change, process-wide.
type UserStatusPayload struct {
	UserID   int64          `json:"userId"`
	Status   PresenceStatus `json:"status"`
	LastSeen *time.Time     `json:"lastSeen,omitempty"`
}

// ReceiveMessagePayload is the room-wide broadcast of a persisted message.
// User is null when the author profile could not be fetched.
type ReceiveMessagePayload struct {
	ID        string             `json:"id"`
	RoomID    string             `json:"roomId"`
	UserID    int64              `json:"userId"`
	Content   string             `json:"content"`
	CreatedAt time.Time          `json:"createdAt"`
	User      *store.UserProfile `json:"user"`
	ClientID  string             `json:"clientId,omitempty"`
}

// AckBroadcastPayload is the room-wide relay of a delivery or read ack.
type AckBroadcastPayload struct {
	RoomID     string    `json:"roomId"`
	MessageID  string    `json:"messageId"`
	FromUserID int64     `json:"fromUserId"`
	TS         time.Time `json:"ts"`
}

// ErrorPayload is sent to a single connection, never broadcast.
type ErrorPayload struct {
	Message string `json:"message"`
}

// SendFailedPayload reports a message that passed admission but could not
// be persisted. ClientID lets the sender drop its optimistic entry.
type SendFailedPayload struct {
	ClientID string `json:"clientId,omitempty"`
	Message  string `json:"message"`
}

// encodeEvent marshals a payload into an envelope frame.
func encodeEvent(event string, payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}
