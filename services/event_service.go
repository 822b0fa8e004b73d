// File: /services/event_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"time"

	"gorm.io/gorm"

	"afisha-api/models"
	"afisha-api/repositories"
	"afisha-api/utils"
)

// MinEventLeadTime is the minimum gap between now and an event's date, both
// at creation and on every reschedule.
const MinEventLeadTime = 2 * time.Hour

// StatsCollector is the injected view-statistics collaborator. Failures are
// non-fatal everywhere: a missing count renders as zero views.
type StatsCollector interface {
	RecordHit(ctx context.Context, uri, ip string, at time.Time)
	Views(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error)
}

type EventService struct {
	db       *gorm.DB
	events   *repositories.EventRepository
	requests *repositories.RequestRepository
	stats    StatsCollector
	email    *EmailService // nil disables notifications
}

func NewEventService(db *gorm.DB, stats StatsCollector, email *EmailService) *EventService {
	return &EventService{
		db:       db,
		events:   repositories.NewEventRepository(db),
		requests: repositories.NewRequestRepository(db),
		stats:    stats,
		email:    email,
	}
}

type NewEventInput struct {
	Annotation        string
	CategoryID        uint
	Description       string
	EventDate         time.Time
	Location          models.Location
	Paid              bool
	ParticipantLimit  int
	RequestModeration bool
	Title             string
}

// UpdateEventInput is a merge patch: nil fields are left untouched.
type UpdateEventInput struct {
	Annotation        *string
	CategoryID        *uint
	Description       *string
	EventDate         *time.Time
	Location          *models.Location
	Paid              *bool
	ParticipantLimit  *int
	RequestModeration *bool
	Title             *string
	StateAction       *models.StateAction
}

func (u *UpdateEventInput) hasFieldEdits() bool {
	return u.Annotation != nil || u.CategoryID != nil || u.Description != nil ||
		u.EventDate != nil || u.Location != nil || u.Paid != nil ||
		u.ParticipantLimit != nil || u.RequestModeration != nil || u.Title != nil
}

func (s *EventService) Create(userID uint, input NewEventInput) (*models.Event, error) {
	if err := validateEventDate(input.EventDate); err != nil {
		return nil, err
	}

	user, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}
	category, err := s.getCategory(input.CategoryID)
	if err != nil {
		return nil, err
	}

	event := models.Event{
		Annotation:        input.Annotation,
		Description:       input.Description,
		Title:             input.Title,
		CategoryID:        category.ID,
		InitiatorID:       user.ID,
		CreatedOn:         time.Now(),
		EventDate:         input.EventDate,
		Paid:              input.Paid,
		ParticipantLimit:  input.ParticipantLimit,
		RequestModeration: input.RequestModeration,
		Location:          input.Location,
		State:             models.EventStatePending,
	}

	if err := s.events.Create(&event); err != nil {
		return nil, err
	}

	event.Category = *category
	event.Initiator = *user
	return &event, nil
}

func (s *EventService) GetByInitiator(userID uint, from, size int) ([]models.Event, error) {
	if err := s.checkUserExists(userID); err != nil {
		return nil, err
	}

	events, err := s.events.FindByInitiator(userID, from, size)
	if err != nil {
		return nil, err
	}
	if err := s.attachConfirmedCounts(events); err != nil {
		return nil, err
	}
	return events, nil
}

func (s *EventService) GetOwn(userID, eventID uint) (*models.Event, error) {
	if err := s.checkUserExists(userID); err != nil {
		return nil, err
	}

	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != userID {
		return nil, utils.NotFoundError("Event with id %d not found", eventID)
	}

	if err := s.attachConfirmedCount(event); err != nil {
		return nil, err
	}
	return event, nil
}

// UpdateByOwner applies field edits and owner state actions (SEND_TO_REVIEW,
// CANCEL_REVIEW). Terminal events reject any modification.
func (s *EventService) UpdateByOwner(userID, eventID uint, input UpdateEventInput) (*models.Event, error) {
	if err := s.checkUserExists(userID); err != nil {
		return nil, err
	}

	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}
	if event.InitiatorID != userID {
		return nil, utils.NotFoundError("Event with id %d not found", eventID)
	}

	if input.StateAction != nil {
		action := *input.StateAction
		if !models.KnownStateAction(action) {
			return nil, utils.ValidationError("Unknown state action: %s", action)
		}
		if action != models.ActionSendToReview && action != models.ActionCancelReview {
			return nil, utils.ValidationError("State action %s is not available to the initiator", action)
		}
	}

	return s.applyUpdate(event, input)
}

// UpdateByAdmin applies field edits and admin state actions (PUBLISH_EVENT,
// REJECT_EVENT).
func (s *EventService) UpdateByAdmin(eventID uint, input UpdateEventInput) (*models.Event, error) {
	event, err := s.getEvent(eventID)
	if err != nil {
		return nil, err
	}

	if input.StateAction != nil {
		action := *input.StateAction
		if !models.KnownStateAction(action) {
			return nil, utils.ValidationError("Unknown state action: %s", action)
		}
		if action != models.ActionPublishEvent && action != models.ActionRejectEvent {
			return nil, utils.ValidationError("State action %s is reserved for the initiator", action)
		}
	}

	updated, err := s.applyUpdate(event, input)
	if err != nil {
		return nil, err
	}

	if input.StateAction != nil && *input.StateAction == models.ActionPublishEvent {
		s.notifyPublished(updated)
	}
	return updated, nil
}

func (s *EventService) applyUpdate(event *models.Event, input UpdateEventInput) (*models.Event, error) {
	if input.hasFieldEdits() && event.IsTerminal() {
		return nil, utils.ConflictError("Event %d is already %s and cannot be modified", event.ID, event.State)
	}

	if input.Annotation != nil {
		event.Annotation = *input.Annotation
	}
	if input.CategoryID != nil {
		category, err := s.getCategory(*input.CategoryID)
		if err != nil {
			return nil, err
		}
		event.CategoryID = category.ID
		event.Category = *category
	}
	if input.Description != nil {
		event.Description = *input.Description
	}
	if input.EventDate != nil {
		if err := validateEventDate(*input.EventDate); err != nil {
			return nil, err
		}
		event.EventDate = *input.EventDate
	}
	if input.Location != nil {
		event.Location = *input.Location
	}
	if input.Paid != nil {
		event.Paid = *input.Paid
	}
	if input.ParticipantLimit != nil {
		event.ParticipantLimit = *input.ParticipantLimit
	}
	if input.RequestModeration != nil {
		event.RequestModeration = *input.RequestModeration
	}
	if input.Title != nil {
		event.Title = *input.Title
	}

	if input.StateAction != nil {
		next, ok, stampPublication := models.Transition(event.State, *input.StateAction)
		if !ok {
			return nil, utils.ConflictError("Cannot apply %s to an event in state %s", *input.StateAction, event.State)
		}
		if stampPublication {
			if event.PublishedOn != nil {
				return nil, utils.ConflictError("Event %d has already been published", event.ID)
			}
			now := time.Now()
			event.PublishedOn = &now
		}
		event.State = next
	}

	if err := s.events.Save(event); err != nil {
		return nil, err
	}
	if err := s.attachConfirmedCount(event); err != nil {
		return nil, err
	}
	return event, nil
}

func (s *EventService) GetByAdmin(filters repositories.AdminFilters, from, size int) ([]models.Event, error) {
	events, err := s.events.FindByAdmin(filters, from, size)
	if err != nil {
		return nil, err
	}
	if err := s.attachConfirmedCounts(events); err != nil {
		return nil, err
	}
	return events, nil
}

type EventSort string

const (
	SortByEventDate EventSort = "EVENT_DATE"
	SortByViews     EventSort = "VIEWS"
)

// GetPublic returns a published event, records the view and merges the view
// count into the payload.
func (s *EventService) GetPublic(ctx context.Context, eventID uint, clientIP string) (*models.Event, error) {
	event, err := s.events.GetPublished(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Event with id %d not found", eventID)
		}
		return nil, err
	}

	if err := s.attachConfirmedCount(event); err != nil {
		return nil, err
	}

	s.stats.RecordHit(ctx, eventURI(event.ID), clientIP, time.Now())

	views, err := s.stats.Views(ctx, event.CreatedOn, time.Now(), []string{eventURI(event.ID)}, false)
	if err != nil {
		log.Printf("events: view lookup failed for event %d: %v", event.ID, err)
	} else {
		event.Views = views[eventURI(event.ID)]
	}
	return event, nil
}

// GetAllPublic lists published events with public filters, records the hits
// and merges view counts.
func (s *EventService) GetAllPublic(ctx context.Context, filters repositories.PublicFilters, onlyAvailable bool,
	sortBy EventSort, from, size int, clientIP string) ([]models.Event, error) {

	// Without an explicit range only upcoming events are listed.
	if filters.RangeStart == nil && filters.RangeEnd == nil {
		now := time.Now()
		filters.RangeStart = &now
	}
	if filters.RangeStart != nil && filters.RangeEnd != nil && filters.RangeEnd.Before(*filters.RangeStart) {
		return nil, utils.ValidationError("rangeEnd must not be before rangeStart")
	}

	events, err := s.events.FindPublished(filters, from, size)
	if err != nil {
		return nil, err
	}

	if err := s.attachConfirmedCounts(events); err != nil {
		return nil, err
	}

	if onlyAvailable {
		available := events[:0]
		for _, event := range events {
			if event.ParticipantLimit == 0 || event.ConfirmedRequests < int64(event.ParticipantLimit) {
				available = append(available, event)
			}
		}
		events = available
	}

	now := time.Now()
	s.stats.RecordHit(ctx, "/events", clientIP, now)
	for _, event := range events {
		s.stats.RecordHit(ctx, eventURI(event.ID), clientIP, now)
	}
	s.attachViews(ctx, events)

	if sortBy == SortByViews {
		sort.SliceStable(events, func(i, j int) bool {
			return events[i].Views > events[j].Views
		})
	}

	return events, nil
}

func eventURI(eventID uint) string {
	return fmt.Sprintf("/events/%d", eventID)
}

// attachViews merges collector counts into the given events. Collector
// failures leave views at zero.
func (s *EventService) attachViews(ctx context.Context, events []models.Event) {
	if len(events) == 0 {
		return
	}

	start := events[0].CreatedOn
	uris := make([]string, 0, len(events))
	for i := range events {
		if events[i].CreatedOn.Before(start) {
			start = events[i].CreatedOn
		}
		uris = append(uris, eventURI(events[i].ID))
		events[i].Views = 0
	}

	views, err := s.stats.Views(ctx, start, time.Now(), uris, false)
	if err != nil {
		log.Printf("events: view lookup failed: %v", err)
		return
	}
	for i := range events {
		events[i].Views = views[eventURI(events[i].ID)]
	}
}

func (s *EventService) attachConfirmedCount(event *models.Event) error {
	count, err := s.requests.ConfirmedCount(event.ID)
	if err != nil {
		return err
	}
	event.ConfirmedRequests = count
	return nil
}

func (s *EventService) attachConfirmedCounts(events []models.Event) error {
	for i := range events {
		if err := s.attachConfirmedCount(&events[i]); err != nil {
			return err
		}
	}
	return nil
}

func (s *EventService) notifyPublished(event *models.Event) {
	if s.email == nil {
		return
	}

	initiator := event.Initiator
	go func() {
		if err := s.email.SendEventPublishedEmail(initiator.Email, initiator.Name, event.Title); err != nil {
			log.Printf("events: publication email failed: %v", err)
		}
	}()
}

func validateEventDate(eventDate time.Time) error {
	if eventDate.Before(time.Now().Add(MinEventLeadTime)) {
		return utils.ValidationError("Event date must be at least %s in the future", MinEventLeadTime)
	}
	return nil
}

func (s *EventService) getEvent(eventID uint) (*models.Event, error) {
	event, err := s.events.Get(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Event with id %d not found", eventID)
		}
		return nil, err
	}
	return event, nil
}

func (s *EventService) getUser(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("User with id %d not found", userID)
		}
		return nil, err
	}
	return &user, nil
}

func (s *EventService) checkUserExists(userID uint) error {
	_, err := s.getUser(userID)
	return err
}

func (s *EventService) getCategory(categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Category with id %d not found", categoryID)
		}
		return nil, err
	}
	return &category, nil
}
