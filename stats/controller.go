// File: /stats/controller.go
package stats

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"afisha-api/utils"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

type HitRequest struct {
	App       string `json:"app" binding:"required,max=100"`
	URI       string `json:"uri" binding:"required,max=500"`
	IP        string `json:"ip" binding:"required,max=45"`
	Timestamp string `json:"timestamp" binding:"required"`
}

func (ctrl *Controller) RecordHit(c *gin.Context) {
	var req HitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	timestamp, err := time.Parse(utils.TimestampLayout, req.Timestamp)
	if err != nil {
		utils.SendValidationError(c, "Field timestamp must use the format "+utils.TimestampLayout)
		return
	}

	hit, err := ctrl.service.RecordHit(req.App, req.URI, req.IP, timestamp)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, hit)
}

func (ctrl *Controller) GetStats(c *gin.Context) {
	start, ok := parseRequiredTime(c, "start")
	if !ok {
		return
	}
	end, ok := parseRequiredTime(c, "end")
	if !ok {
		return
	}

	var uris []string
	for _, value := range c.QueryArray("uris") {
		for _, part := range strings.Split(value, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				uris = append(uris, part)
			}
		}
	}

	unique := false
	if raw := c.Query("unique"); raw != "" {
		parsed, err := strconv.ParseBool(raw)
		if err != nil {
			utils.SendValidationError(c, "Parameter unique must be true or false")
			return
		}
		unique = parsed
	}

	results, err := ctrl.service.GetStats(start, end, uris, unique)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func parseRequiredTime(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		utils.SendValidationError(c, "Parameter "+name+" is required")
		return time.Time{}, false
	}
	parsed, err := time.Parse(utils.TimestampLayout, raw)
	if err != nil {
		utils.SendValidationError(c, "Parameter "+name+" must use the format "+utils.TimestampLayout)
		return time.Time{}, false
	}
	return parsed, true
}

// SetupRoutes registers the stats endpoints.
func SetupRoutes(r *gin.Engine, service *Service) {
	ctrl := NewController(service)

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})

	r.POST("/hit", ctrl.RecordHit)
	r.GET("/stats", ctrl.GetStats)
}
