package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/dto"
	"github.com/myokr/okr-api/internal/response"
	"github.com/myokr/okr-api/internal/services"
	"github.com/myokr/okr-api/internal/utils"
	"go.uber.org/zap"
)

// TeamHandler serves the team endpoints.
type TeamHandler struct {
	teamService *services.TeamService
	log         *zap.Logger
}

// NewTeamHandler creates a new TeamHandler.
func NewTeamHandler(teamService *services.TeamService, log *zap.Logger) *TeamHandler {
	return &TeamHandler{teamService: teamService, log: log}
}

// Create creates a team. Existing users among emails join directly and the
// rest are invited.
func (h *TeamHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	type CreateTeamRequest struct {
		Name         string   `json:"name" binding:"required,max=255"`
		DepartmentID *uint64  `json:"departmentId"`
		LeaderID     *uint64  `json:"leaderId"`
		Emails       []string `json:"emails" binding:"omitempty,max=50,dive,required"`
	}

	var req CreateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.teamService.Create(c.Request.Context(), actor, services.CreateTeamInput{
		Name:         req.Name,
		DepartmentID: req.DepartmentID,
		LeaderID:     req.LeaderID,
		Emails:       req.Emails,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	body := gin.H{
		"team":     dto.ToTeamDTO(*result.Team),
		"attached": nonNil(result.Attached),
	}
	if result.Invites != nil {
		body["invites"] = dto.ToInviteBatchDTO(result.Invites.Invites, result.Invites.Deliveries, result.Invites.IssuedAt)
	}
	if result.InviteError != "" {
		body["inviteError"] = result.InviteError
	}
	response.Created(c, "Team created successfully", body)
}

// List lists teams visible to the caller.
func (h *TeamHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	teams, total, err := h.teamService.List(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Teams fetched successfully", dto.TeamListResponse{
		Teams:      dto.ToTeamDTOs(teams),
		Pagination: utils.NewPaginationResponse(params, total),
	})
}

// Get returns a team with its users and objectives.
func (h *TeamHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	team, err := h.teamService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Team fetched successfully", dto.ToTeamDTO(*team))
}

// Update renames a team, moves it or sets its leader.
func (h *TeamHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	type UpdateTeamRequest struct {
		Name            *string `json:"name" binding:"omitempty,max=255"`
		DepartmentID    *uint64 `json:"departmentId"`
		ClearDepartment bool    `json:"clearDepartment"`
		LeaderID        *uint64 `json:"leaderId"`
	}

	var req UpdateTeamRequest
	if !bindJSON(c, &req) {
		return
	}

	team, err := h.teamService.Update(c.Request.Context(), actor, id, services.UpdateTeamInput{
		Name:            req.Name,
		DepartmentID:    req.DepartmentID,
		ClearDepartment: req.ClearDepartment,
		LeaderID:        req.LeaderID,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Team updated successfully", dto.ToTeamDTO(*team))
}

// Delete removes a team without users or objectives.
func (h *TeamHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.teamService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Team deleted successfully", nil)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
