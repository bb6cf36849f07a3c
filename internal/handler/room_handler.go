/*
Package handler provides the HTTP handlers and routing for the chat server.

This file implements room creation, joining, listing, message history and
the member listing merged with live presence.
*/
package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/theajstars/voyatek-assessment/internal/app/chat"
	"github.com/theajstars/voyatek-assessment/internal/app/db"
	"github.com/theajstars/voyatek-assessment/internal/app/store"
	"github.com/theajstars/voyatek-assessment/internal/pkg/auth/jwt"
	"github.com/theajstars/voyatek-assessment/internal/pkg/errs"
	"github.com/theajstars/voyatek-assessment/internal/pkg/logx"
	"github.com/theajstars/voyatek-assessment/internal/pkg/req"
	"github.com/theajstars/voyatek-assessment/internal/pkg/resp"
)

const (
	defaultMessagePageSize = 20
	maxMessagePageSize     = 100
)

// HandleListRooms returns every room the caller is a member of.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)

		rooms, err := deps.Store.ListRoomsForUser(r.Context(), payload.UserID)
		if err != nil {
			logx.Error(err, "Failed to list rooms", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondSuccess(w, r, rooms)
	}
}

type CreateRoomInput struct {
	Name      string `json:"name"`
	IsPrivate bool   `json:"isPrivate,omitempty"`
}

// HandleCreateRoom creates a room with the caller as its first member.
// Private rooms get a generated invite code.
func HandleCreateRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)

		var input CreateRoomInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		name := strings.TrimSpace(input.Name)
		if name == "" {
			resp.RespondError(w, r, errs.NewError(errs.ErrRoomNameRequired))
			return
		}

		var inviteCode *string
		if input.IsPrivate {
			code := uuid.NewString()
			inviteCode = &code
		}

		room, err := deps.Store.CreateRoom(r.Context(), name, input.IsPrivate, inviteCode, payload.UserID)
		if err != nil {
			logx.Error(err, "Failed to create room", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		resp.RespondCreated(w, r, room)
	}
}

type JoinRoomInput struct {
	RoomID     string `json:"roomId,omitempty"`
	InviteCode string `json:"inviteCode,omitempty"`
}

// HandleJoinRoom adds the caller to a room, addressed either by invite
// code or by room id. Private rooms addressed by id are only joinable by
// their creator; rejoining an already-joined room succeeds quietly.
func HandleJoinRoom(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)

		var input JoinRoomInput
		if customErr := req.BindJSON(r, &input); customErr != nil {
			resp.RespondError(w, r, customErr)
			return
		}

		var room store.Room
		var err error

		switch {
		case input.InviteCode != "":
			room, err = deps.Store.GetRoomByInviteCode(r.Context(), input.InviteCode)
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrInvalidInviteCode))
				return
			}

		case input.RoomID != "":
			room, err = deps.Store.GetRoom(r.Context(), input.RoomID)
			if errors.Is(err, store.ErrNotFound) {
				resp.RespondError(w, r, errs.NewError(errs.ErrRoomNotFound))
				return
			}
			if err == nil && room.IsPrivate && room.CreatedBy != payload.UserID {
				resp.RespondError(w, r, errs.NewError(errs.ErrPrivateRoomInvite))
				return
			}

		default:
			resp.RespondError(w, r, errs.NewError(errs.ErrJoinTargetMissing))
			return
		}

		if err != nil {
			logx.Error(err, "Failed to resolve room for join", "user_id", payload.UserID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		inserted, err := deps.Store.AddMember(r.Context(), room.ID, payload.UserID)
		if err != nil && !db.IsUniqueViolation(err) {
			logx.Error(err, "Failed to join room", "user_id", payload.UserID, "room_id", room.ID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		message := "Successfully joined room"
		if !inserted {
			message = "Already a member of this room"
		}

		resp.RespondJSON(w, r, http.StatusOK, resp.JSONResponse{
			Code:    0,
			Message: message,
			Data:    room,
		})
	}
}

// messagePage is the paginated history response.
type messagePage struct {
	Messages   []store.MessageWithUser `json:"messages"`
	NextCursor *string                 `json:"nextCursor"`
}

// HandleListMessages returns a room's message history, oldest first
// within the page, paginated newest-first with an id cursor.
func HandleListMessages(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		roomID := chi.URLParam(r, "roomID")

		member, err := deps.Store.MembershipExists(r.Context(), payload.UserID, roomID)
		if err != nil {
			logx.Error(err, "Failed to check membership", "user_id", payload.UserID, "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if !member {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotRoomMember))
			return
		}

		limit := defaultMessagePageSize
		if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
			if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
				limit = parsed
			}
		}
		if limit > maxMessagePageSize {
			limit = maxMessagePageSize
		}

		cursor := r.URL.Query().Get("cursor")

		messages, err := deps.Store.ListMessages(r.Context(), roomID, limit, cursor)
		if err != nil {
			logx.Error(err, "Failed to list messages", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		var nextCursor *string
		if len(messages) == limit {
			last := messages[len(messages)-1].ID
			nextCursor = &last
		}

		// The query returns newest first; clients render oldest first.
		for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
			messages[i], messages[j] = messages[j], messages[i]
		}

		resp.RespondSuccess(w, r, messagePage{
			Messages:   messages,
			NextCursor: nextCursor,
		})
	}
}

// memberWithPresence is a room member merged with live presence state.
type memberWithPresence struct {
	UserID   int64               `json:"userId"`
	Name     string              `json:"name"`
	Email    string              `json:"email"`
	Status   chat.PresenceStatus `json:"status"`
	LastSeen *time.Time          `json:"lastSeen"`
}

// HandleListMembers returns a room's members with their presence. The
// in-memory presence wins; users the process has never seen fall back to
// the durable last-seen timestamp.
func HandleListMembers(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		payload := jwt.GetPayloadFromContext(r)
		roomID := chi.URLParam(r, "roomID")

		member, err := deps.Store.MembershipExists(r.Context(), payload.UserID, roomID)
		if err != nil {
			logx.Error(err, "Failed to check membership", "user_id", payload.UserID, "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}
		if !member {
			resp.RespondError(w, r, errs.NewError(errs.ErrNotRoomMember))
			return
		}

		members, err := deps.Store.ListRoomMembers(r.Context(), roomID)
		if err != nil {
			logx.Error(err, "Failed to list members", "room_id", roomID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUnknown))
			return
		}

		userIDs := make([]int64, 0, len(members))
		for _, m := range members {
			userIDs = append(userIDs, m.UserID)
		}
		presences := deps.Gateway.Presence().GetMany(userIDs)

		result := make([]memberWithPresence, 0, len(members))
		for _, m := range members {
			p := presences[m.UserID]

			lastSeen := p.LastSeen
			if lastSeen == nil {
				lastSeen = m.LastSeen
			}

			result = append(result, memberWithPresence{
				UserID:   m.UserID,
				Name:     m.Name,
				Email:    m.Email,
				Status:   p.Status,
				LastSeen: lastSeen,
			})
		}

		resp.RespondSuccess(w, r, result)
	}
}
