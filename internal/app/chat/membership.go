package chat

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/theajstars/voyatek-assessment/internal/pkg/logx"
)

// MembershipGuard answers whether a user durably belongs to a room by
// delegating to the store. It keeps no state and caches nothing; every
// event that needs authorization asks again.
type MembershipGuard struct {
	store  DurableStore
	logger zerolog.Logger
}

// NewMembershipGuard creates a guard backed by the given store.
func NewMembershipGuard(store DurableStore) *MembershipGuard {
	return &MembershipGuard{
		store:  store,
		logger: logx.Logger().With().Str("component", "MembershipGuard").Logger(),
	}
}

// IsMember reports whether the user belongs to the room. Store failures
// and unknown rooms both answer false; authorization never distinguishes
// a missing room from a missing membership.
func (m *MembershipGuard) IsMember(ctx context.Context, userID int64, roomID string) bool {
	exists, err := m.store.MembershipExists(ctx, userID, roomID)
	if err != nil {
		m.logger.Error().Err(err).
			Int64("user_id", userID).
			Str("room_id", roomID).
			Msg("Membership query failed, denying access")
		return false
	}
	return exists
}
