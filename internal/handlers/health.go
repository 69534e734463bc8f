package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/response"
	"gorm.io/gorm"
)

// Health reports liveness and whether the database answers a ping.
func Health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			response.Error(c, http.StatusServiceUnavailable, response.ErrCodeUpstream, "Database is unavailable", nil)
			return
		}

		response.OK(c, "MyOKR API is running", gin.H{"status": "ok"})
	}
}
