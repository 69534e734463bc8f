// Package router wires handlers and middleware into the HTTP surface.
package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	gorillahandlers "github.com/gorilla/handlers"
	"github.com/myokr/okr-api/internal/constants"
	"github.com/myokr/okr-api/internal/handlers"
	"github.com/myokr/okr-api/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Handlers groups every HTTP handler the API serves.
type Handlers struct {
	Auth         *handlers.AuthHandler
	Organization *handlers.OrganizationHandler
	Department   *handlers.DepartmentHandler
	Team         *handlers.TeamHandler
	Invite       *handlers.InviteHandler
	OKR          *handlers.OKRHandler
	AI           *handlers.AIHandler
}

// Options carries the shared infrastructure of the router.
type Options struct {
	DB            *gorm.DB
	Log           *zap.Logger
	Sessions      sessions.Store
	Resolver      middleware.SessionResolver
	ExposeMetrics bool
}

// New builds the gin engine with every route under /api/v1.
func New(opts Options, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.Logger(opts.Log),
		middleware.Metrics(),
		sessions.Sessions(constants.SessionCookieName, opts.Sessions),
	)

	health := handlers.Health(opts.DB)
	r.GET("/health", health)
	if opts.ExposeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	requireAuth := middleware.RequireAuth(opts.Resolver, opts.Log)
	requireAdmin := middleware.RequireAdmin()

	api := r.Group("/api/v1")
	api.GET("/health", health)
	{
		auth := api.Group("/auth")
		{
			auth.POST("/send-otp", h.Auth.SendOTP)
			auth.POST("/verify-otp", h.Auth.VerifyOTP)
			auth.POST("/logout", requireAuth, h.Auth.Logout)
			auth.GET("/profile", requireAuth, h.Auth.Profile)
			auth.PUT("/profile/update", requireAuth, h.Auth.UpdateProfile)
			auth.DELETE("/profile/delete", requireAuth, h.Auth.DeleteProfile)
		}

		org := api.Group("/organization", requireAuth)
		{
			org.POST("", requireAdmin, h.Organization.Create)
			org.GET("", h.Organization.Get)
		}

		dept := api.Group("/department", requireAuth, requireAdmin)
		{
			dept.POST("", h.Department.Create)
			dept.GET("", h.Department.List)
			dept.GET("/:id", h.Department.Get)
			dept.PUT("/:id", h.Department.Update)
			dept.DELETE("/:id", h.Department.Delete)
		}

		team := api.Group("/team", requireAuth)
		{
			team.POST("", requireAdmin, h.Team.Create)
			team.GET("", h.Team.List)
			team.GET("/:id", h.Team.Get)
			team.PUT("/:id", requireAdmin, h.Team.Update)
			team.DELETE("/:id", requireAdmin, h.Team.Delete)
		}

		invite := api.Group("/invite")
		{
			invite.POST("", requireAuth, requireAdmin, h.Invite.Send)
			invite.GET("/details/:token", h.Invite.Details)
			invite.POST("/accept", h.Invite.Accept)
		}

		okrs := api.Group("/okrs", requireAuth)
		{
			okrs.POST("/create", h.OKR.CreateObjective)
			okrs.GET("/team/:teamId", h.OKR.ListTeamObjectives)
			okrs.PUT("/key-result/:id", h.OKR.UpdateKeyResult)
			okrs.DELETE("/key-result/:id", h.OKR.DeleteKeyResult)
			okrs.GET("/:id", h.OKR.GetObjective)
			okrs.PUT("/:id", h.OKR.UpdateObjective)
			okrs.DELETE("/:id", h.OKR.DeleteObjective)
			okrs.POST("/:id/assign", h.OKR.AssignObjective)
			okrs.POST("/:id/key-result", h.OKR.AddKeyResult)
		}

		api.POST("/ai/generate-okr-suggestion", requireAuth, h.AI.Suggest)
	}

	return r
}

// WithCORS allows the frontend origin to call the API with credentials.
func WithCORS(h http.Handler, frontendURL string) http.Handler {
	return gorillahandlers.CORS(
		gorillahandlers.AllowedOrigins([]string{frontendURL}),
		gorillahandlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions}),
		gorillahandlers.AllowedHeaders([]string{"Content-Type", "Authorization", constants.HeaderRequestID}),
		gorillahandlers.ExposedHeaders([]string{constants.HeaderRequestID}),
		gorillahandlers.AllowCredentials(),
	)(h)
}
