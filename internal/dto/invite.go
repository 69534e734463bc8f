package dto

import (
	"time"

	"github.com/myokr/okr-api/internal/mailer"
	"github.com/myokr/okr-api/internal/models"
)

// InviteDTO represents an invite. The token is never returned.
type InviteDTO struct {
	ID         uint64             `json:"id"`
	Email      string             `json:"email"`
	TeamID     uint64             `json:"teamId"`
	Role       models.Role        `json:"role"`
	State      models.InviteState `json:"state"`
	ExpiresAt  time.Time          `json:"expiresAt"`
	AcceptedAt *time.Time         `json:"acceptedAt"`
}

// InviteDetailsDTO is what the accept page shows before the user commits.
type InviteDetailsDTO struct {
	Email      string      `json:"email"`
	Role       models.Role `json:"role"`
	ExpiresAt  time.Time   `json:"expiresAt"`
	Team       RefDTO      `json:"team"`
	Department *RefDTO     `json:"department"`
}

// DeliveryDTO is the email outcome for one recipient.
type DeliveryDTO struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// InviteBatchDTO is the response to an invite request.
type InviteBatchDTO struct {
	InvitesSent int           `json:"invitesSent"`
	Delivered   int           `json:"delivered"`
	Invites     []InviteDTO   `json:"invites"`
	Deliveries  []DeliveryDTO `json:"deliveries"`
}

// ToInviteDTO converts an Invite model, deriving its state at now.
func ToInviteDTO(invite models.Invite, now time.Time) InviteDTO {
	return InviteDTO{
		ID:         invite.ID,
		Email:      invite.Email,
		TeamID:     invite.TeamID,
		Role:       invite.Role,
		State:      invite.State(now),
		ExpiresAt:  invite.ExpiresAt,
		AcceptedAt: invite.AcceptedAt,
	}
}

// ToInviteDetailsDTO converts an invite loaded with its team and department.
func ToInviteDetailsDTO(invite models.Invite) InviteDetailsDTO {
	out := InviteDetailsDTO{
		Email:     invite.Email,
		Role:      invite.Role,
		ExpiresAt: invite.ExpiresAt,
		Team:      RefDTO{ID: invite.Team.ID, Name: invite.Team.Name},
	}
	if d := invite.Team.Department; d != nil {
		out.Department = &RefDTO{ID: d.ID, Name: d.Name}
	}
	return out
}

// ToInviteBatchDTO builds the invite response. InvitesSent counts the invites
// created, Delivered the emails that went out.
func ToInviteBatchDTO(invites []models.Invite, deliveries []mailer.DeliveryResult, now time.Time) InviteBatchDTO {
	out := InviteBatchDTO{
		InvitesSent: len(invites),
		Invites:     make([]InviteDTO, len(invites)),
		Deliveries:  make([]DeliveryDTO, len(deliveries)),
	}
	for i, inv := range invites {
		out.Invites[i] = ToInviteDTO(inv, now)
	}
	for i, d := range deliveries {
		out.Deliveries[i] = DeliveryDTO{Email: d.Email, Sent: d.Sent, Error: d.Error}
		if d.Sent {
			out.Delivered++
		}
	}
	return out
}
