package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/myokr/okr-api/internal/constants"
)

// PaginationParams is the resolved page window of a list request.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// PaginationResponse is the pagination block returned next to list data.
type PaginationResponse struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// GetPaginationParams reads ?page= and ?limit=, falling back to defaults on
// anything out of range.
func GetPaginationParams(c *gin.Context) PaginationParams {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(constants.DefaultPageSize)))

	if page < 1 {
		page = 1
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}

// NewPaginationResponse builds the response block for a total row count.
func NewPaginationResponse(params PaginationParams, total int64) PaginationResponse {
	if params.Limit <= 0 {
		return PaginationResponse{Page: params.Page, Total: total}
	}
	pages := int(total) / params.Limit
	if int(total)%params.Limit > 0 {
		pages++
	}
	return PaginationResponse{
		Page:       params.Page,
		Limit:      params.Limit,
		Total:      total,
		TotalPages: pages,
	}
}
