package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/myokr/okr-api/internal/middleware"
	"github.com/myokr/okr-api/internal/response"
	"github.com/myokr/okr-api/internal/services"
	"go.uber.org/zap"
)

// respondError maps a service error onto the response envelope. Internal
// and upstream causes are logged and never shown to the client.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	var svcErr *services.Error
	if !errors.As(err, &svcErr) {
		log.Error("unhandled error", zap.String("path", c.FullPath()), zap.Error(err))
		response.InternalError(c, "")
		return
	}

	var details interface{}
	if len(svcErr.Details) > 0 {
		details = svcErr.Details
	}

	switch svcErr.Kind {
	case services.KindValidation:
		response.BadRequestWithDetails(c, svcErr.Message, details)
	case services.KindExpired:
		response.BadRequestCode(c, response.ErrCodeExpired, svcErr.Message)
	case services.KindAlreadyAccepted:
		response.BadRequestCode(c, response.ErrCodeAlreadyAccepted, svcErr.Message)
	case services.KindNotFound:
		response.NotFound(c, svcErr.Message)
	case services.KindConflict:
		response.Error(c, http.StatusConflict, response.ErrCodeConflict, svcErr.Message, details)
	case services.KindUnauthorized:
		response.Unauthorized(c, svcErr.Message)
	case services.KindForbidden:
		response.Forbidden(c, svcErr.Message)
	case services.KindUpstream:
		log.Error("upstream failure", zap.String("path", c.FullPath()), zap.Error(err))
		response.Upstream(c)
	default:
		log.Error("internal error", zap.String("path", c.FullPath()), zap.Error(err))
		response.InternalError(c, "")
	}
}

// bindJSON binds the body and answers 400 with per-field details on failure.
func bindJSON(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make(map[string]string, len(verrs))
			for _, fe := range verrs {
				fields[lowerFirst(fe.Field())] = fe.Tag()
			}
			response.BadRequestWithDetails(c, "Invalid request body", fields)
			return false
		}
		response.BadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// paramID parses a positive numeric path parameter.
func paramID(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid "+name)
		return 0, false
	}
	return id, true
}

// actorFrom returns the actor set by RequireAuth.
func actorFrom(c *gin.Context) (services.Actor, bool) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		response.Unauthorized(c, "Not authenticated")
	}
	return actor, ok
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
