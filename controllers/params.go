// File: /controllers/params.go
package controllers

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"afisha-api/utils"
)

const dateTimeLayout = "2006-01-02 15:04:05"

// parseIDParam reads a positive numeric path parameter or answers 400.
func parseIDParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		utils.SendValidationError(c, "Parameter "+name+" must be a positive number")
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads from/size query parameters with the conventional
// defaults.
func parsePagination(c *gin.Context) (int, int, bool) {
	from, err := strconv.Atoi(c.DefaultQuery("from", "0"))
	if err != nil || from < 0 {
		utils.SendValidationError(c, "Parameter from must be zero or positive")
		return 0, 0, false
	}
	size, err := strconv.Atoi(c.DefaultQuery("size", "10"))
	if err != nil || size <= 0 {
		utils.SendValidationError(c, "Parameter size must be positive")
		return 0, 0, false
	}
	return from, size, true
}

// parseIDList splits a comma separated query value into ids. Repeated keys
// are merged.
func parseIDList(c *gin.Context, name string) ([]uint, bool) {
	var ids []uint
	for _, value := range c.QueryArray(name) {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			id, err := strconv.ParseUint(part, 10, 32)
			if err != nil {
				utils.SendValidationError(c, "Parameter "+name+" must contain numeric ids")
				return nil, false
			}
			ids = append(ids, uint(id))
		}
	}
	return ids, true
}

// parseTimeQuery reads an optional "yyyy-MM-dd HH:mm:ss" query parameter.
func parseTimeQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	parsed, err := time.Parse(dateTimeLayout, raw)
	if err != nil {
		utils.SendValidationError(c, "Parameter "+name+" must use the format "+dateTimeLayout)
		return nil, false
	}
	return &parsed, true
}

// parseBoolQuery reads an optional boolean query parameter.
func parseBoolQuery(c *gin.Context, name string) (*bool, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		utils.SendValidationError(c, "Parameter "+name+" must be true or false")
		return nil, false
	}
	return &value, true
}
