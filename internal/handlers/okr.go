package handlers

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/dto"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/response"
	"github.com/myokr/okr-api/internal/services"
	"github.com/myokr/okr-api/internal/utils"
	"go.uber.org/zap"
)

// OKRHandler serves objectives and key results.
type OKRHandler struct {
	okrService *services.OKRService
	log        *zap.Logger
}

// NewOKRHandler creates a new OKRHandler.
func NewOKRHandler(okrService *services.OKRService, log *zap.Logger) *OKRHandler {
	return &OKRHandler{okrService: okrService, log: log}
}

type keyResultRequest struct {
	ID           *uint64  `json:"id"`
	Title        *string  `json:"title" binding:"omitempty,max=255"`
	TargetValue  *float64 `json:"targetValue"`
	CurrentValue *float64 `json:"currentValue"`
	Status       *string  `json:"status" binding:"omitempty,oneof=NOT_STARTED IN_PROGRESS AT_RISK COMPLETED"`
}

func (r keyResultRequest) update() services.UpdateKeyResultInput {
	in := services.UpdateKeyResultInput{
		Title:        r.Title,
		TargetValue:  r.TargetValue,
		CurrentValue: r.CurrentValue,
	}
	if r.Status != nil {
		status := models.KeyResultStatus(*r.Status)
		in.Status = &status
	}
	return in
}

func (r keyResultRequest) create() services.KeyResultInput {
	in := services.KeyResultInput{}
	if r.Title != nil {
		in.Title = *r.Title
	}
	if r.TargetValue != nil {
		in.TargetValue = *r.TargetValue
	}
	if r.CurrentValue != nil {
		in.CurrentValue = *r.CurrentValue
	}
	if r.Status != nil {
		in.Status = models.KeyResultStatus(*r.Status)
	}
	return in
}

// parseDate accepts a plain date or an RFC 3339 timestamp.
func parseDate(c *gin.Context, field, value string) (time.Time, bool) {
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), true
		}
	}
	response.BadRequestWithDetails(c, "Invalid date", map[string]string{field: value})
	return time.Time{}, false
}

// CreateObjective creates an objective with its key results.
func (h *OKRHandler) CreateObjective(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	type CreateObjectiveRequest struct {
		Title       string             `json:"title" binding:"required,max=255"`
		Description string             `json:"description"`
		StartDate   string             `json:"startDate" binding:"required"`
		EndDate     string             `json:"endDate" binding:"required"`
		TeamID      uint64             `json:"teamId" binding:"required"`
		UserID      *uint64            `json:"userId"`
		KeyResults  []keyResultRequest `json:"keyResults" binding:"required,min=1,dive"`
	}

	var req CreateObjectiveRequest
	if !bindJSON(c, &req) {
		return
	}
	start, ok := parseDate(c, "startDate", req.StartDate)
	if !ok {
		return
	}
	end, ok := parseDate(c, "endDate", req.EndDate)
	if !ok {
		return
	}

	krs := make([]services.KeyResultInput, len(req.KeyResults))
	for i, kr := range req.KeyResults {
		krs[i] = kr.create()
	}

	objective, err := h.okrService.CreateObjective(c.Request.Context(), actor, services.CreateObjectiveInput{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   start,
		EndDate:     end,
		TeamID:      req.TeamID,
		UserID:      req.UserID,
		KeyResults:  krs,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Created(c, "OKR created successfully", dto.ToObjectiveDTO(*objective))
}

// ListTeamObjectives lists a team's objectives.
func (h *OKRHandler) ListTeamObjectives(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	teamID, ok := paramID(c, "teamId")
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	objectives, total, err := h.okrService.ListTeamObjectives(c.Request.Context(), actor, teamID, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "OKRs fetched successfully", dto.ObjectiveListResponse{
		Objectives: dto.ToObjectiveDTOs(objectives),
		Pagination: utils.NewPaginationResponse(params, total),
	})
}

// GetObjective returns one objective.
func (h *OKRHandler) GetObjective(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	objective, err := h.okrService.GetObjective(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "OKR fetched successfully", dto.ToObjectiveDTO(*objective))
}

// UpdateObjective applies a partial update and key result upserts.
func (h *OKRHandler) UpdateObjective(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	type UpdateObjectiveRequest struct {
		Title       *string            `json:"title" binding:"omitempty,max=255"`
		Description *string            `json:"description"`
		StartDate   *string            `json:"startDate"`
		EndDate     *string            `json:"endDate"`
		KeyResults  []keyResultRequest `json:"keyResults" binding:"omitempty,dive"`
	}

	var req UpdateObjectiveRequest
	if !bindJSON(c, &req) {
		return
	}

	input := services.UpdateObjectiveInput{
		Title:       req.Title,
		Description: req.Description,
	}
	if req.StartDate != nil {
		start, ok := parseDate(c, "startDate", *req.StartDate)
		if !ok {
			return
		}
		input.StartDate = &start
	}
	if req.EndDate != nil {
		end, ok := parseDate(c, "endDate", *req.EndDate)
		if !ok {
			return
		}
		input.EndDate = &end
	}
	for _, kr := range req.KeyResults {
		input.KeyResults = append(input.KeyResults, services.KeyResultUpsert{
			ID:                   kr.ID,
			UpdateKeyResultInput: kr.update(),
		})
	}

	objective, err := h.okrService.UpdateObjective(c.Request.Context(), actor, id, input)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "OKR updated successfully", dto.ToObjectiveDTO(*objective))
}

// DeleteObjective removes an objective and its key results.
func (h *OKRHandler) DeleteObjective(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.okrService.DeleteObjective(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "OKR deleted successfully", nil)
}

// AssignObjective assigns an objective to a member of its team.
func (h *OKRHandler) AssignObjective(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	type AssignRequest struct {
		UserID uint64 `json:"userId" binding:"required"`
	}

	var req AssignRequest
	if !bindJSON(c, &req) {
		return
	}

	objective, err := h.okrService.AssignObjective(c.Request.Context(), actor, id, req.UserID)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "OKR assigned successfully", dto.ToObjectiveDTO(*objective))
}

// AddKeyResult adds a key result to an objective.
func (h *OKRHandler) AddKeyResult(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req keyResultRequest
	if !bindJSON(c, &req) {
		return
	}

	kr, err := h.okrService.AddKeyResult(c.Request.Context(), actor, id, req.create())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Created(c, "Key result created successfully", dto.ToKeyResultDTO(*kr))
}

// UpdateKeyResult applies a partial key result update.
func (h *OKRHandler) UpdateKeyResult(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	var req keyResultRequest
	if !bindJSON(c, &req) {
		return
	}

	kr, err := h.okrService.UpdateKeyResult(c.Request.Context(), actor, id, req.update())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Key result updated successfully", dto.ToKeyResultDTO(*kr))
}

// DeleteKeyResult removes a key result.
func (h *OKRHandler) DeleteKeyResult(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.okrService.DeleteKeyResult(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Key result deleted successfully", nil)
}
