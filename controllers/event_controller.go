// File: /controllers/event_controller.go
package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"afisha-api/models"
	"afisha-api/repositories"
	"afisha-api/services"
	"afisha-api/utils"
)

type EventController struct {
	events *services.EventService
}

func NewEventController(events *services.EventService) *EventController {
	return &EventController{events: events}
}

type NewEventRequest struct {
	Annotation        string          `json:"annotation" binding:"required,min=20,max=2000"`
	Category          uint            `json:"category" binding:"required"`
	Description       string          `json:"description" binding:"required,min=20,max=7000"`
	EventDate         time.Time       `json:"event_date" binding:"required"`
	Location          models.Location `json:"location" binding:"required"`
	Paid              bool            `json:"paid"`
	ParticipantLimit  int             `json:"participant_limit" binding:"min=0"`
	RequestModeration *bool           `json:"request_moderation"`
	Title             string          `json:"title" binding:"required,min=3,max=120"`
}

type UpdateEventRequest struct {
	Annotation        *string          `json:"annotation" binding:"omitempty,min=20,max=2000"`
	Category          *uint            `json:"category"`
	Description       *string          `json:"description" binding:"omitempty,min=20,max=7000"`
	EventDate         *time.Time       `json:"event_date"`
	Location          *models.Location `json:"location"`
	Paid              *bool            `json:"paid"`
	ParticipantLimit  *int             `json:"participant_limit" binding:"omitempty,min=0"`
	RequestModeration *bool            `json:"request_moderation"`
	Title             *string          `json:"title" binding:"omitempty,min=3,max=120"`
	StateAction       *string          `json:"state_action"`
}

func (r *UpdateEventRequest) toInput() services.UpdateEventInput {
	input := services.UpdateEventInput{
		Annotation:        r.Annotation,
		CategoryID:        r.Category,
		Description:       r.Description,
		EventDate:         r.EventDate,
		Location:          r.Location,
		Paid:              r.Paid,
		ParticipantLimit:  r.ParticipantLimit,
		RequestModeration: r.RequestModeration,
		Title:             r.Title,
	}
	if r.StateAction != nil {
		action := models.StateAction(*r.StateAction)
		input.StateAction = &action
	}
	return input
}

// --- Private API (/users/{userId}/events) ---

func (ec *EventController) CreateEvent(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}

	var req NewEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	// Moderation defaults to on when the field is absent.
	requestModeration := true
	if req.RequestModeration != nil {
		requestModeration = *req.RequestModeration
	}

	event, err := ec.events.Create(userID, services.NewEventInput{
		Annotation:        req.Annotation,
		CategoryID:        req.Category,
		Description:       req.Description,
		EventDate:         req.EventDate,
		Location:          req.Location,
		Paid:              req.Paid,
		ParticipantLimit:  req.ParticipantLimit,
		RequestModeration: requestModeration,
		Title:             req.Title,
	})
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, event)
}

func (ec *EventController) GetOwnEvents(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	from, size, ok := parsePagination(c)
	if !ok {
		return
	}

	events, err := ec.events.GetByInitiator(userID, from, size)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (ec *EventController) GetOwnEvent(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c, "eventId")
	if !ok {
		return
	}

	event, err := ec.events.GetOwn(userID, eventID)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

func (ec *EventController) UpdateOwnEvent(c *gin.Context) {
	userID, ok := parseIDParam(c, "userId")
	if !ok {
		return
	}
	eventID, ok := parseIDParam(c, "eventId")
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	event, err := ec.events.UpdateByOwner(userID, eventID, req.toInput())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// --- Admin API (/admin/events) ---

func (ec *EventController) GetEventsAdmin(c *gin.Context) {
	users, ok := parseIDList(c, "users")
	if !ok {
		return
	}
	categories, ok := parseIDList(c, "categories")
	if !ok {
		return
	}
	rangeStart, ok := parseTimeQuery(c, "rangeStart")
	if !ok {
		return
	}
	rangeEnd, ok := parseTimeQuery(c, "rangeEnd")
	if !ok {
		return
	}
	from, size, ok := parsePagination(c)
	if !ok {
		return
	}

	var states []models.EventState
	for _, raw := range c.QueryArray("states") {
		for _, part := range strings.Split(raw, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			state := models.EventState(part)
			switch state {
			case models.EventStatePending, models.EventStatePublished, models.EventStateCanceled:
				states = append(states, state)
			default:
				utils.SendValidationError(c, "Unknown event state: "+part)
				return
			}
		}
	}

	events, err := ec.events.GetByAdmin(repositories.AdminFilters{
		Users:      users,
		States:     states,
		Categories: categories,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
	}, from, size)
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (ec *EventController) UpdateEventAdmin(c *gin.Context) {
	eventID, ok := parseIDParam(c, "eventId")
	if !ok {
		return
	}

	var req UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	event, err := ec.events.UpdateByAdmin(eventID, req.toInput())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}

// --- Public API (/events) ---

func (ec *EventController) GetPublicEvents(c *gin.Context) {
	categories, ok := parseIDList(c, "categories")
	if !ok {
		return
	}
	paid, ok := parseBoolQuery(c, "paid")
	if !ok {
		return
	}
	rangeStart, ok := parseTimeQuery(c, "rangeStart")
	if !ok {
		return
	}
	rangeEnd, ok := parseTimeQuery(c, "rangeEnd")
	if !ok {
		return
	}
	onlyAvailable, ok := parseBoolQuery(c, "onlyAvailable")
	if !ok {
		return
	}
	from, size, ok := parsePagination(c)
	if !ok {
		return
	}

	sortBy := services.SortByEventDate
	switch strings.ToUpper(c.DefaultQuery("sort", string(services.SortByEventDate))) {
	case string(services.SortByEventDate):
	case string(services.SortByViews):
		sortBy = services.SortByViews
	default:
		utils.SendValidationError(c, "Parameter sort must be EVENT_DATE or VIEWS")
		return
	}

	filterAvailable := onlyAvailable != nil && *onlyAvailable

	events, err := ec.events.GetAllPublic(c.Request.Context(), repositories.PublicFilters{
		Text:       c.Query("text"),
		Categories: categories,
		Paid:       paid,
		RangeStart: rangeStart,
		RangeEnd:   rangeEnd,
	}, filterAvailable, sortBy, from, size, c.ClientIP())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, events)
}

func (ec *EventController) GetPublicEvent(c *gin.Context) {
	eventID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	event, err := ec.events.GetPublic(c.Request.Context(), eventID, c.ClientIP())
	if err != nil {
		utils.SendAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, event)
}
