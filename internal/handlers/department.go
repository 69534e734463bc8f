package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/dto"
	"github.com/myokr/okr-api/internal/response"
	"github.com/myokr/okr-api/internal/services"
	"github.com/myokr/okr-api/internal/utils"
	"go.uber.org/zap"
)

// DepartmentHandler serves the admin department endpoints.
type DepartmentHandler struct {
	deptService *services.DepartmentService
	log         *zap.Logger
}

// NewDepartmentHandler creates a new DepartmentHandler.
func NewDepartmentHandler(deptService *services.DepartmentService, log *zap.Logger) *DepartmentHandler {
	return &DepartmentHandler{deptService: deptService, log: log}
}

// Create creates a department, optionally claiming existing teams.
func (h *DepartmentHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	type CreateDepartmentRequest struct {
		Name    string   `json:"name" binding:"required,max=255"`
		TeamIDs []uint64 `json:"teamIds"`
	}

	var req CreateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	dept, err := h.deptService.Create(c.Request.Context(), actor, services.CreateDepartmentInput{
		Name:    req.Name,
		TeamIDs: req.TeamIDs,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Created(c, "Department created successfully", dto.ToDepartmentDTO(*dept))
}

// List lists the organization's departments.
func (h *DepartmentHandler) List(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	depts, total, err := h.deptService.List(c.Request.Context(), actor, params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Departments fetched successfully", dto.DepartmentListResponse{
		Departments: dto.ToDepartmentDTOs(depts),
		Pagination:  utils.NewPaginationResponse(params, total),
	})
}

// Get returns one department with its teams.
func (h *DepartmentHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	dept, err := h.deptService.Get(c.Request.Context(), actor, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Department fetched successfully", dto.ToDepartmentDTO(*dept))
}

// Update renames a department or replaces its teams.
func (h *DepartmentHandler) Update(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	type UpdateDepartmentRequest struct {
		Name    *string   `json:"name" binding:"omitempty,max=255"`
		TeamIDs *[]uint64 `json:"teamIds"`
	}

	var req UpdateDepartmentRequest
	if !bindJSON(c, &req) {
		return
	}

	dept, err := h.deptService.Update(c.Request.Context(), actor, id, services.UpdateDepartmentInput{
		Name:    req.Name,
		TeamIDs: req.TeamIDs,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Department updated successfully", dto.ToDepartmentDTO(*dept))
}

// Delete removes an empty department.
func (h *DepartmentHandler) Delete(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	if err := h.deptService.Delete(c.Request.Context(), actor, id); err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Department deleted successfully", nil)
}
