package domain

import "github.com/google/uuid"

type OperatorScope struct {
	OperatorID    uuid.UUID  `json:"operator_id"`
	IsGlobalAdmin bool       `json:"is_global_admin"`
	ScopedClubID  *uuid.UUID `json:"scoped_club_id,omitempty"`
}

func (s OperatorScope) IsElevated() bool {
	return s.IsGlobalAdmin || s.ScopedClubID != nil
}

// CanManageClub reports whether the operator acts for events owned by
// clubID. A nil clubID is reachable by global admins only.
func (s OperatorScope) CanManageClub(clubID *uuid.UUID) bool {
	if s.IsGlobalAdmin {
		return true
	}
	if s.ScopedClubID == nil || clubID == nil {
		return false
	}
	return *s.ScopedClubID == *clubID
}

// CanRedeem reports whether the operator may redeem the given ticket.
func (s OperatorScope) CanRedeem(t *Ticket) bool {
	return s.CanManageClub(t.ClubID)
}

// CanIssue reports whether the operator may issue tickets for an event
// owned by clubID.
func (s OperatorScope) CanIssue(clubID *uuid.UUID) bool {
	return s.CanManageClub(clubID)
}
