package dto

import "github.com/myokr/okr-api/internal/models"

// Profile kinds
const (
	ProfileKindAdmin  = "admin"
	ProfileKindMember = "member"
)

// ProfileDTO is the caller's profile. Kind tells which of the optional
// blocks is filled: admins get Organization, everyone else Team and
// Objectives.
type ProfileDTO struct {
	Kind         string               `json:"kind"`
	User         UserDTO              `json:"user"`
	Organization *OrganizationTreeDTO `json:"organization,omitempty"`
	Team         *TeamDTO             `json:"team,omitempty"`
	Objectives   []ObjectiveDTO       `json:"objectives,omitempty"`
}

// NewAdminProfile builds the admin shape. org may be nil before the admin
// has created an organization.
func NewAdminProfile(user models.User, org *models.Organization) ProfileDTO {
	out := ProfileDTO{Kind: ProfileKindAdmin, User: ToUserDTO(user)}
	if org != nil {
		tree := ToOrganizationTreeDTO(*org)
		out.Organization = &tree
	}
	return out
}

// NewMemberProfile builds the manager and member shape.
func NewMemberProfile(user models.User, team *models.Team, objectives []models.Objective) ProfileDTO {
	out := ProfileDTO{
		Kind:       ProfileKindMember,
		User:       ToUserDTO(user),
		Objectives: ToObjectiveDTOs(objectives),
	}
	if team != nil {
		t := ToTeamDTO(*team)
		out.Team = &t
	}
	return out
}
