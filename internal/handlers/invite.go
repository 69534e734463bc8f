package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/dto"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/response"
	"github.com/myokr/okr-api/internal/services"
	"go.uber.org/zap"
)

// InviteHandler serves the invite lifecycle endpoints.
type InviteHandler struct {
	inviteService *services.InviteService
	log           *zap.Logger
}

// NewInviteHandler creates a new InviteHandler.
func NewInviteHandler(inviteService *services.InviteService, log *zap.Logger) *InviteHandler {
	return &InviteHandler{inviteService: inviteService, log: log}
}

// Send invites a batch of emails to a team.
func (h *InviteHandler) Send(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	type SendInviteRequest struct {
		TeamID  uint64   `json:"teamId" binding:"required"`
		Emails  []string `json:"emails" binding:"required,min=1,max=50,dive,required"`
		Role    string   `json:"role" binding:"omitempty,oneof=MEMBER MANAGER"`
		Message string   `json:"message" binding:"max=2000"`
	}

	var req SendInviteRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.inviteService.Issue(c.Request.Context(), actor, services.IssueInvitesInput{
		TeamID:  req.TeamID,
		Emails:  req.Emails,
		Role:    models.Role(req.Role),
		Message: req.Message,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.Created(c, "Invites created", dto.ToInviteBatchDTO(result.Invites, result.Deliveries, result.IssuedAt))
}

// Details shows what an invite grants without consuming it.
func (h *InviteHandler) Details(c *gin.Context) {
	invite, err := h.inviteService.Validate(c.Request.Context(), c.Param("token"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Invite is valid", dto.ToInviteDetailsDTO(*invite))
}

// Accept consumes an invite. A new account answers 201, a re-teamed one 200.
func (h *InviteHandler) Accept(c *gin.Context) {
	type AcceptInviteRequest struct {
		Token string `json:"token" binding:"required"`
		Name  string `json:"name" binding:"max=255"`
	}

	var req AcceptInviteRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.inviteService.Accept(c.Request.Context(), services.AcceptInviteInput{
		Token: req.Token,
		Name:  req.Name,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	body := gin.H{"user": dto.ToUserDTO(*result.User), "created": result.Created}
	if result.Created {
		response.Created(c, "Account created and invite accepted", body)
		return
	}
	response.OK(c, "Invite accepted", body)
}
