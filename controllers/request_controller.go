// File: /controllers/request_controller.go
package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"afisha-api/models"
	"afisha-api/services"
	"afisha-api/utils"
)

type RequestController struct {
	requests *services.RequestService
}

func NewRequestController(requests *services.RequestService) *RequestController {
	return &RequestController{requests: requests}
}

func (rc *RequestController) CreateRequest(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	eventID, err := strconv.ParseUint(c.Query("eventId"), 10, 32)
	if err != nil || eventID == 0 {
		utils.SendValidationError(c, "Parameter eventId must be a positive number")
		return
	}

	request, svcErr := rc.requests.Submit(userID, uint(eventID))
	if svcErr != nil {
		utils.SendAppError(c, svcErr)
		return
	}

	c.JSON(http.StatusCreated, request)
}

func (rc *RequestController) GetOwnRequests(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	requests, err := rc.requests.ListOwn(userID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

func (rc *RequestController) CancelRequest(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	requestID, ok := parseIDParam(c, "requestId")
	if !ok {
		return
	}

	request, err := rc.requests.Cancel(userID, requestID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, request)
}

func (rc *RequestController) GetEventRequests(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c, "eventId")
	if !ok {
		return
	}

	requests, err := rc.requests.ListForEvent(userID, eventID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, requests)
}

type ReviewRequestsRequest struct {
	RequestIDs []uint `json:"request_ids" binding:"required"`
	Status     string `json:"status" binding:"required"`
}

func (rc *RequestController) ReviewRequests(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c, "eventId")
	if !ok {
		return
	}

	var req ReviewRequestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	result, err := rc.requests.Review(userID, eventID, req.RequestIDs, models.RequestStatus(req.Status))
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
