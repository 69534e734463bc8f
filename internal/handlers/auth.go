package handlers

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/constants"
	"github.com/myokr/okr-api/internal/dto"
	"github.com/myokr/okr-api/internal/middleware"
	"github.com/myokr/okr-api/internal/models"
	"github.com/myokr/okr-api/internal/response"
	"github.com/myokr/okr-api/internal/services"
	"go.uber.org/zap"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	cookie      sessions.Options
	log         *zap.Logger
}

// NewAuthHandler creates a new AuthHandler. cookie carries the session
// cookie attributes reused when the session is expired.
func NewAuthHandler(authService *services.AuthService, cookie sessions.Options, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cookie:      cookie,
		log:         log,
	}
}

// SendOTP emails a one-time code.
func (h *AuthHandler) SendOTP(c *gin.Context) {
	type SendOTPRequest struct {
		Email string `json:"email" binding:"required,email"`
		Type  string `json:"type" binding:"required,oneof=signup login forgot"`
		Name  string `json:"name" binding:"max=255"`
	}

	var req SendOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	err := h.authService.SendOTP(c.Request.Context(), services.SendOTPInput{
		Email: req.Email,
		Type:  services.OTPType(req.Type),
		Name:  req.Name,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "OTP sent successfully", nil)
}

// VerifyOTP consumes a code and starts the session.
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	type VerifyOTPRequest struct {
		Email string `json:"email" binding:"required,email"`
		OTP   string `json:"otp" binding:"required,len=6,numeric"`
	}

	var req VerifyOTPRequest
	if !bindJSON(c, &req) {
		return
	}

	result, err := h.authService.VerifyOTP(c.Request.Context(), req.Email, req.OTP)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	session := sessions.Default(c)
	session.Set(constants.SessionKeyToken, result.Token)
	if err := session.Save(); err != nil {
		h.log.Error("failed to save session", zap.Error(err))
		response.InternalError(c, "Failed to save session")
		return
	}

	response.OK(c, "OTP verified successfully", gin.H{"user": dto.ToUserDTO(*result.User)})
}

// Logout removes the authentication session.
func (h *AuthHandler) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Options(middleware.ExpiredSessionOptions(h.cookie))
	if err := session.Save(); err != nil {
		response.InternalError(c, "Failed to logout")
		return
	}

	response.OK(c, "Logged out successfully", nil)
}

// Profile returns the caller's profile in its role-dependent shape.
func (h *AuthHandler) Profile(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	profile, err := h.authService.Profile(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var body dto.ProfileDTO
	if profile.User.Role == models.RoleAdmin {
		body = dto.NewAdminProfile(*profile.User, profile.Organization)
	} else {
		body = dto.NewMemberProfile(*profile.User, profile.Team, profile.Objectives)
	}
	response.OK(c, "Profile fetched successfully", body)
}

// UpdateProfile changes the caller's name or email.
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	type UpdateProfileRequest struct {
		Name  *string `json:"name" binding:"omitempty,max=255"`
		Email *string `json:"email" binding:"omitempty,email"`
	}

	var req UpdateProfileRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.authService.UpdateProfile(c.Request.Context(), actor, services.UpdateProfileInput{
		Name:  req.Name,
		Email: req.Email,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	response.OK(c, "Profile updated successfully", dto.ToUserDTO(*user))
}

// DeleteProfile removes the caller and ends the session.
func (h *AuthHandler) DeleteProfile(c *gin.Context) {
	actor, ok := actorFrom(c)
	if !ok {
		return
	}

	if err := h.authService.DeleteProfile(c.Request.Context(), actor); err != nil {
		respondError(c, h.log, err)
		return
	}

	session := sessions.Default(c)
	session.Clear()
	session.Options(middleware.ExpiredSessionOptions(h.cookie))
	if err := session.Save(); err != nil {
		h.log.Warn("failed to clear session after profile delete", zap.Error(err))
	}

	response.OK(c, "Profile deleted successfully", nil)
}
