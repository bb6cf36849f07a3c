package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a queried row does not exist.
var ErrNotFound = errors.New("store: not found")

// Postgres implements the durable store on top of a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres wraps an existing connection pool.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// CreateUser inserts a new account and returns the stored row.
func (s *Postgres) CreateUser(ctx context.Context, email, passwordHash, name string) (User, error) {
	const q = `
		INSERT INTO users (email, name, password_hash)
		VALUES ($1, $2, $3)
		RETURNING id, email, name, password_hash, last_seen, created_at`

	var u User
	err := s.pool.QueryRow(ctx, q, email, name, passwordHash).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.LastSeen, &u.CreatedAt)
	if err != nil {
		return User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

// GetUserByEmail fetches an account by email.
func (s *Postgres) GetUserByEmail(ctx context.Context, email string) (User, error) {
	const q = `
		SELECT id, email, name, password_hash, last_seen, created_at
		FROM users WHERE email = $1`

	var u User
	err := s.pool.QueryRow(ctx, q, email).
		Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.LastSeen, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// GetUserProfile fetches the public profile for a user id.
func (s *Postgres) GetUserProfile(ctx context.Context, userID int64) (UserProfile, error) {
	const q = `SELECT id, name, email FROM users WHERE id = $1`

	var p UserProfile
	err := s.pool.QueryRow(ctx, q, userID).Scan(&p.ID, &p.Name, &p.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return UserProfile{}, ErrNotFound
	}
	if err != nil {
		return UserProfile{}, fmt.Errorf("get user profile: %w", err)
	}
	return p, nil
}

// UpdateLastSeen records when the user was last connected.
func (s *Postgres) UpdateLastSeen(ctx context.Context, userID int64, lastSeen time.Time) error {
	const q = `UPDATE users SET last_seen = $2 WHERE id = $1`

	if _, err := s.pool.Exec(ctx, q, userID, lastSeen); err != nil {
		return fmt.Errorf("update last seen: %w", err)
	}
	return nil
}

// CreateRoom inserts a room and its creator's membership in one transaction.
func (s *Postgres) CreateRoom(ctx context.Context, name string, isPrivate bool, inviteCode *string, createdBy int64) (Room, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return Room{}, fmt.Errorf("create room: begin: %w", err)
	}
	defer tx.Rollback(ctx)

	const insertRoom = `
		INSERT INTO rooms (name, is_private, invite_code, created_by)
		VALUES ($1, $2, $3, $4)
		RETURNING id, name, is_private, invite_code, created_by, created_at`

	var room Room
	err = tx.QueryRow(ctx, insertRoom, name, isPrivate, inviteCode, createdBy).
		Scan(&room.ID, &room.Name, &room.IsPrivate, &room.InviteCode, &room.CreatedBy, &room.CreatedAt)
	if err != nil {
		return Room{}, fmt.Errorf("create room: %w", err)
	}

	const insertMember = `INSERT INTO room_members (room_id, user_id) VALUES ($1, $2)`
	if _, err := tx.Exec(ctx, insertMember, room.ID, createdBy); err != nil {
		return Room{}, fmt.Errorf("create room: add creator: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return Room{}, fmt.Errorf("create room: commit: %w", err)
	}
	return room, nil
}

// GetRoom fetches a room by id.
func (s *Postgres) GetRoom(ctx context.Context, roomID string) (Room, error) {
	const q = `
		SELECT id, name, is_private, invite_code, created_by, created_at
		FROM rooms WHERE id = $1`

	var room Room
	err := s.pool.QueryRow(ctx, q, roomID).
		Scan(&room.ID, &room.Name, &room.IsPrivate, &room.InviteCode, &room.CreatedBy, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Room{}, ErrNotFound
	}
	if err != nil {
		return Room{}, fmt.Errorf("get room: %w", err)
	}
	return room, nil
}

// GetRoomByInviteCode fetches a room by its invite code.
func (s *Postgres) GetRoomByInviteCode(ctx context.Context, inviteCode string) (Room, error) {
	const q = `
		SELECT id, name, is_private, invite_code, created_by, created_at
		FROM rooms WHERE invite_code = $1`

	var room Room
	err := s.pool.QueryRow(ctx, q, inviteCode).
		Scan(&room.ID, &room.Name, &room.IsPrivate, &room.InviteCode, &room.CreatedBy, &room.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Room{}, ErrNotFound
	}
	if err != nil {
		return Room{}, fmt.Errorf("get room by invite code: %w", err)
	}
	return room, nil
}

// AddMember adds a user to a room. Re-adding an existing member is a
// no-op; the return value reports whether a row was inserted.
func (s *Postgres) AddMember(ctx context.Context, roomID string, userID int64) (bool, error) {
	const q = `
		INSERT INTO room_members (room_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING`

	tag, err := s.pool.Exec(ctx, q, roomID, userID)
	if err != nil {
		return false, fmt.Errorf("add member: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// MembershipExists reports whether the user is a durable member of the
// room. An unknown room yields false, not an error.
func (s *Postgres) MembershipExists(ctx context.Context, userID int64, roomID string) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM room_members WHERE room_id = $1 AND user_id = $2)`

	var exists bool
	if err := s.pool.QueryRow(ctx, q, roomID, userID).Scan(&exists); err != nil {
		return false, fmt.Errorf("membership exists: %w", err)
	}
	return exists, nil
}

// ListRoomsForUser returns every room the user is a member of.
func (s *Postgres) ListRoomsForUser(ctx context.Context, userID int64) ([]Room, error) {
	const q = `
		SELECT r.id, r.name, r.is_private, r.invite_code, r.created_by, r.created_at
		FROM rooms r
		JOIN room_members m ON m.room_id = r.id
		WHERE m.user_id = $1
		ORDER BY r.created_at`

	rows, err := s.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	defer rows.Close()

	rooms := []Room{}
	for rows.Next() {
		var room Room
		if err := rows.Scan(&room.ID, &room.Name, &room.IsPrivate, &room.InviteCode, &room.CreatedBy, &room.CreatedAt); err != nil {
			return nil, fmt.Errorf("list rooms: scan: %w", err)
		}
		rooms = append(rooms, room)
	}
	return rooms, rows.Err()
}

// CreateMessage persists a message and returns the stored row.
func (s *Postgres) CreateMessage(ctx context.Context, roomID string, userID int64, content string) (Message, error) {
	const q = `
		INSERT INTO messages (room_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, room_id, user_id, content, created_at`

	var m Message
	err := s.pool.QueryRow(ctx, q, roomID, userID, content).
		Scan(&m.ID, &m.RoomID, &m.UserID, &m.Content, &m.CreatedAt)
	if err != nil {
		return Message{}, fmt.Errorf("create message: %w", err)
	}
	return m, nil
}

// ListMessages returns up to limit messages for a room, newest first.
// A non-empty cursor (a message id) resumes the scan strictly after that
// message in the newest-first ordering.
func (s *Postgres) ListMessages(ctx context.Context, roomID string, limit int, cursor string) ([]MessageWithUser, error) {
	const base = `
		SELECT m.id, m.room_id, m.user_id, m.content, m.created_at,
		       u.id, u.name, u.email
		FROM messages m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1`

	var rows pgx.Rows
	var err error
	if cursor == "" {
		rows, err = s.pool.Query(ctx, base+`
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT $2`, roomID, limit)
	} else {
		rows, err = s.pool.Query(ctx, base+`
			AND (m.created_at, m.id) < (SELECT created_at, id FROM messages WHERE id = $3)
			ORDER BY m.created_at DESC, m.id DESC
			LIMIT $2`, roomID, limit, cursor)
	}
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	messages := []MessageWithUser{}
	for rows.Next() {
		var m MessageWithUser
		err := rows.Scan(&m.ID, &m.RoomID, &m.UserID, &m.Content, &m.CreatedAt,
			&m.User.ID, &m.User.Name, &m.User.Email)
		if err != nil {
			return nil, fmt.Errorf("list messages: scan: %w", err)
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}

// ListRoomMembers returns all members of a room with their identity and
// durable last-seen timestamp.
func (s *Postgres) ListRoomMembers(ctx context.Context, roomID string) ([]RoomMember, error) {
	const q = `
		SELECT m.user_id, u.name, u.email, u.last_seen
		FROM room_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.room_id = $1
		ORDER BY m.joined_at`

	rows, err := s.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, fmt.Errorf("list room members: %w", err)
	}
	defer rows.Close()

	members := []RoomMember{}
	for rows.Next() {
		var m RoomMember
		if err := rows.Scan(&m.UserID, &m.Name, &m.Email, &m.LastSeen); err != nil {
			return nil, fmt.Errorf("list room members: scan: %w", err)
		}
		members = append(members, m)
	}
	return members, rows.Err()
}
