package dto

import (
	"time"

	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/utils"
)

// OrganizationDTO represents an organization in API responses
type OrganizationDTO struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   uint64    `json:"ownerId"`
	CreatedAt time.Time `json:"createdAt"`
}

// RefDTO is a bare id and name reference to a team or department.
type RefDTO struct {
	ID   uint64 `json:"id"`
	Name string `json:"name"`
}

// DepartmentDTO represents a department and the teams grouped under it
type DepartmentDTO struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	OrganizationID uint64    `json:"organizationId"`
	Teams          []TeamDTO `json:"teams"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// TeamDTO represents a team. Users and objectives are only filled when loaded.
type TeamDTO struct {
	ID             uint64         `json:"id"`
	Name           string         `json:"name"`
	OrganizationID uint64         `json:"organizationId"`
	DepartmentID   *uint64        `json:"departmentId"`
	Department     *RefDTO        `json:"department,omitempty"`
	Users          []UserDTO      `json:"users,omitempty"`
	Objectives     []ObjectiveDTO `json:"objectives,omitempty"`
	CreatedAt      time.Time      `json:"createdAt"`
	UpdatedAt      time.Time      `json:"updatedAt"`
}

// OrganizationTreeDTO is the whole hierarchy of an organization. Teams that
// belong to no department are listed separately.
type OrganizationTreeDTO struct {
	OrganizationDTO
	Departments     []DepartmentDTO `json:"departments"`
	UnassignedTeams []TeamDTO       `json:"unassignedTeams"`
}

// TeamListResponse represents a paginated list of teams
type TeamListResponse struct {
	Teams      []TeamDTO                `json:"teams"`
	Pagination utils.PaginationResponse `json:"pagination"`
}

// DepartmentListResponse represents a paginated list of departments
type DepartmentListResponse struct {
	Departments []DepartmentDTO          `json:"departments"`
	Pagination  utils.PaginationResponse `json:"pagination"`
}

// ToOrganizationDTO converts an Organization model to OrganizationDTO
func ToOrganizationDTO(org models.Organization) OrganizationDTO {
	return OrganizationDTO{
		ID:        org.ID,
		Name:      org.Name,
		OwnerID:   org.OwnerID,
		CreatedAt: org.CreatedAt,
	}
}

// ToTeamDTO converts a Team model to TeamDTO
func ToTeamDTO(team models.Team) TeamDTO {
	out := TeamDTO{
		ID:             team.ID,
		Name:           team.Name,
		OrganizationID: team.OrganizationID,
		DepartmentID:   team.DepartmentID,
		CreatedAt:      team.CreatedAt,
		UpdatedAt:      team.UpdatedAt,
	}
	if team.Department != nil {
		out.Department = &RefDTO{ID: team.Department.ID, Name: team.Department.Name}
	}
	if len(team.Users) > 0 {
		out.Users = ToUserDTOs(team.Users)
	}
	if len(team.Objectives) > 0 {
		out.Objectives = ToObjectiveDTOs(team.Objectives)
	}
	return out
}

// ToTeamDTOs converts a slice of teams.
func ToTeamDTOs(teams []models.Team) []TeamDTO {
	out := make([]TeamDTO, len(teams))
	for i, t := range teams {
		out[i] = ToTeamDTO(t)
	}
	return out
}

// ToDepartmentDTO converts a Department model to DepartmentDTO
func ToDepartmentDTO(dept models.Department) DepartmentDTO {
	return DepartmentDTO{
		ID:             dept.ID,
		Name:           dept.Name,
		OrganizationID: dept.OrganizationID,
		Teams:          ToTeamDTOs(dept.Teams),
		CreatedAt:      dept.CreatedAt,
		UpdatedAt:      dept.UpdatedAt,
	}
}

// ToDepartmentDTOs converts a slice of departments.
func ToDepartmentDTOs(depts []models.Department) []DepartmentDTO {
	out := make([]DepartmentDTO, len(depts))
	for i, d := range depts {
		out[i] = ToDepartmentDTO(d)
	}
	return out
}

// ToOrganizationTreeDTO groups the loaded teams under their departments.
func ToOrganizationTreeDTO(org models.Organization) OrganizationTreeDTO {
	tree := OrganizationTreeDTO{
		OrganizationDTO: ToOrganizationDTO(org),
		Departments:     make([]DepartmentDTO, len(org.Departments)),
		UnassignedTeams: []TeamDTO{},
	}

	index := make(map[uint64]int, len(org.Departments))
	for i, d := range org.Departments {
		d.Teams = nil
		tree.Departments[i] = ToDepartmentDTO(d)
		index[d.ID] = i
	}

	for _, team := range org.Teams {
		t := ToTeamDTO(team)
		if team.DepartmentID != nil {
			if i, ok := index[*team.DepartmentID]; ok {
				tree.Departments[i].Teams = append(tree.Departments[i].Teams, t)
				continue
			}
		}
		tree.UnassignedTeams = append(tree.UnassignedTeams, t)
	}
	return tree
}
