package middleware

import (
	"context"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/constants"
	"github.com/myokr/okr-api/internal/response"
	"github.com/myokr/okr-api/internal/services"
	"go.uber.org/zap"
)

// SessionResolver turns a session token into the calling actor.
type SessionResolver interface {
	ResolveSession(ctx context.Context, raw string) (services.Actor, error)
}

// RequireAuth checks the session token from the session cookie, or from a
// Bearer header for non-browser clients, and stores the actor in context.
func RequireAuth(resolver SessionResolver, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := sessionToken(c)
		if raw == "" {
			response.Unauthorized(c, "")
			return
		}

		actor, err := resolver.ResolveSession(c.Request.Context(), raw)
		if err != nil {
			if services.KindOf(err) == services.KindUnauthorized {
				response.Unauthorized(c, "Session is invalid or expired")
				return
			}
			log.Error("failed to resolve session", zap.Error(err))
			response.InternalError(c, "")
			return
		}

		c.Set(constants.ContextKeyActor, actor)
		c.Set(constants.ContextKeyUserID, actor.UserID)
		c.Next()
	}
}

// RequireAdmin only lets ADMIN actors through. It must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			response.Unauthorized(c, "")
			return
		}
		if !actor.IsAdmin() {
			response.Forbidden(c, "Admin access required")
			return
		}
		c.Next()
	}
}

// GetActor retrieves the authenticated actor from context
func GetActor(c *gin.Context) (services.Actor, bool) {
	v, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return services.Actor{}, false
	}
	actor, ok := v.(services.Actor)
	return actor, ok
}

// GetUserID retrieves the current user ID from context
func GetUserID(c *gin.Context) (uint64, bool) {
	userID, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}

	switch v := userID.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if raw, ok := sessions.Default(c).Get(constants.SessionKeyToken).(string); ok {
		return raw
	}
	return ""
}
