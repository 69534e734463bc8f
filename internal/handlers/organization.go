package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/dto"
	"github.com/myokr/okr-api/internal/response"
	"github.com/myokr/okr-api/internal/services"
	"go.uber.org/zap"
)

type OrganizationHandler struct {
	orgService *services.OrganizationService
	log        *zap.Logger
}

func NewOrganizationHandler(orgService *services.OrganizationService, log *zap.Logger) *OrganizationHandler {
	return &OrganizationHandler{orgService: orgService, log: log}
}

// Create creates the admin's organization
func (h *OrganizationHandler) Create(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	type CreateOrgRequest struct {
		Name string `json:"name" binding:"required,max=255"`
	}

	var req CreateOrgRequest
	if !bindJSON(c, &req) {
		return
	}

	org, err := h.orgService.Create(c.Request.Context(), actor, req.Name)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Created(c, "Organization created successfully", dto.ToOrganizationDTO(*org))
}

// Get returns the caller's organization with its departments and teams
func (h *OrganizationHandler) Get(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	org, err := h.orgService.Get(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Organization fetched successfully", dto.ToOrganizationTreeDTO(*org))
}
