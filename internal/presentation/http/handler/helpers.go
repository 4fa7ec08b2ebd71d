package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sangkips/pharmacy-pos-api/internal/presentation/http/dto/response"
	"github.com/sangkips/pharmacy-pos-api/pkg/expiry"
	"github.com/sangkips/pharmacy-pos-api/pkg/pagination"
)

// parseID reads a numeric path parameter. It writes a 400 and returns
// false when the parameter is not a positive integer.
func parseID(c *gin.Context, param, resource string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(param), 10, 64)
	if err != nil || id == 0 {
		response.BadRequest(c, "Invalid "+resource+" ID")
		return 0, false
	}
	return uint(id), true
}

// pageParams builds page-based pagination from the page and per_page values
func pageParams(page, perPage int) *pagination.PaginationParams {
	params := &pagination.PaginationParams{Page: page, PerPage: perPage}
	params.Validate()
	return params
}

// wantsCursor reports whether the client asked for cursor-based pagination
func wantsCursor(c *gin.Context) bool {
	return c.Query("cursor") != "" || c.Query("limit") != ""
}

// parseDateParam parses an optional YYYY-MM-DD query value
func parseDateParam(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse(expiry.DateLayout, value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
