/*
Package store is the durable persistence layer: users, rooms, room
membership and messages, backed by PostgreSQL.

The realtime gateway consumes only a narrow slice of it (membership
checks, message creation, profile lookup, last-seen updates); the REST
handlers use the full surface.
*/
package store

import "time"

// User is a full account row, including the password hash. It never
// leaves the server; API responses use UserProfile.
type User struct {
	ID           int64
	Email        string
	Name         string
	PasswordHash string
	LastSeen     *time.Time
	CreatedAt    time.Time
}

// UserProfile is the public identity attached to messages and responses.
type UserProfile struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Room is a chat room. Private rooms carry an invite code.
type Room struct {
	ID         string     `json:"id"`
	Name       string     `json:"name"`
	IsPrivate  bool       `json:"isPrivate"`
	InviteCode *string    `json:"inviteCode,omitempty"`
	CreatedBy  int64      `json:"createdById"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// Message is a persisted chat message.
type Message struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	UserID    int64     `json:"userId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// MessageWithUser is a message joined with its author's profile, as
// returned by the room history endpoint.
type MessageWithUser struct {
	Message
	User UserProfile `json:"user"`
}

// RoomMember is a membership row joined with the member's identity and
// durable last-seen timestamp.
type RoomMember struct {
	UserID   int64
	Name     string
	Email    string
	LastSeen *time.Time
}
