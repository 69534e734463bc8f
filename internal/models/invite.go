package models

import "time"

type InviteState string

const (
	InviteStatePending  InviteState = "PENDING"
	InviteStateAccepted InviteState = "ACCEPTED"
	InviteStateExpired  InviteState = "EXPIRED"
)

type Invite struct {
	ID         uint64     `gorm:"primarykey" json:"id"`
	Email      string     `gorm:"type:varchar(255);index:idx_invites_email_team;not null" json:"email"`
	TeamID     uint64     `gorm:"index:idx_invites_email_team;not null" json:"team_id"`
	Token      string     `gorm:"type:varchar(128);uniqueIndex;not null" json:"-"`
	Role       Role       `gorm:"type:varchar(20);not null" json:"role"`
	ExpiresAt  time.Time  `gorm:"index;not null" json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at"`

	// Relations
	Team Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
}

// State derives the lifecycle state at now. Acceptance wins over expiry so an
// invite accepted before it lapsed stays ACCEPTED forever.
func (i Invite) State(now time.Time) InviteState {
	switch {
	case i.AcceptedAt != nil:
		return InviteStateAccepted
	case now.After(i.ExpiresAt):
		return InviteStateExpired
	default:
		return InviteStatePending
	}
}
