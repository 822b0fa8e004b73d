// File: /services/request_service.go
package services

import (
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"afisha-api/models"
	"afisha-api/repositories"
	"afisha-api/utils"
)

type RequestService struct {
	db       *gorm.DB
	events   *repositories.EventRepository
	requests *repositories.RequestRepository
	email    *EmailService // nil disables notifications
}

func NewRequestService(db *gorm.DB, email *EmailService) *RequestService {
	return &RequestService{
		db:       db,
		events:   repositories.NewEventRepository(db),
		requests: repositories.NewRequestRepository(db),
		email:    email,
	}
}

// Submit creates a participation request. The whole check-then-insert runs in
// one transaction with the event row locked, so two near-limit submissions
// cannot both slip under the participant limit.
func (s *RequestService) Submit(userID, eventID uint) (*models.ParticipationRequest, error) {
	requester, err := s.getUser(userID)
	if err != nil {
		return nil, err
	}

	var request models.ParticipationRequest
	var event *models.Event

	err = s.db.Transaction(func(tx *gorm.DB) error {
		events := s.events.WithTx(tx)
		requests := s.requests.WithTx(tx)

		event, err = events.GetLocked(eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Event with id %d not found", eventID)
			}
			return err
		}

		hasActive, err := requests.HasActiveRequest(userID, eventID)
		if err != nil {
			return err
		}
		if hasActive {
			return utils.ConflictError("User %d already has an active request for event %d", userID, eventID)
		}
		if event.InitiatorID == userID {
			return utils.ConflictError("The initiator cannot request to join their own event")
		}
		if event.State != models.EventStatePublished {
			return utils.ConflictError("Event %d is not published yet", eventID)
		}

		if event.ParticipantLimit > 0 {
			confirmed, err := requests.ConfirmedCount(eventID)
			if err != nil {
				return err
			}
			// Confirmed count must stay strictly below the limit before
			// adding one more.
			if confirmed >= int64(event.ParticipantLimit) {
				return utils.ConflictError("The participant limit for event %d has been reached", eventID)
			}
		}

		status := models.RequestStatusPending
		if !event.RequestModeration {
			status = models.RequestStatusConfirmed
		}

		request = models.ParticipationRequest{
			Created:     time.Now(),
			EventID:     eventID,
			RequesterID: userID,
			Status:      status,
		}
		return requests.Create(&request)
	})
	if err != nil {
		return nil, err
	}

	if request.Status == models.RequestStatusPending {
		s.notifyRequestReceived(event, requester)
	}
	return &request, nil
}

func (s *RequestService) ListOwn(userID uint) ([]models.ParticipationRequest, error) {
	if _, err := s.getUser(userID); err != nil {
		return nil, err
	}
	return s.requests.FindByRequester(userID)
}

// Cancel sets the caller's own request to CANCELED. Canceling a confirmed
// request does not re-evaluate other pending requests for the event.
func (s *RequestService) Cancel(userID, requestID uint) (*models.ParticipationRequest, error) {
	if _, err := s.getUser(userID); err != nil {
		return nil, err
	}

	request, err := s.requests.Get(requestID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Request with id %d not found", requestID)
		}
		return nil, err
	}
	if request.RequesterID != userID {
		return nil, utils.NotFoundError("Request with id %d not found", requestID)
	}
	if request.IsTerminal() {
		return nil, utils.ConflictError("Request %d has already been %s", requestID, request.Status)
	}

	request.Status = models.RequestStatusCanceled
	if err := s.requests.Save(request); err != nil {
		return nil, err
	}
	return request, nil
}

// ListForEvent returns all requests for an event; only its initiator may ask.
func (s *RequestService) ListForEvent(userID, eventID uint) ([]models.ParticipationRequest, error) {
	if _, err := s.getUser(userID); err != nil {
		return nil, err
	}

	event, err := s.events.Get(eventID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Event with id %d not found", eventID)
		}
		return nil, err
	}
	if event.InitiatorID != userID {
		return nil, utils.ValidationError("Requests for event %d are only visible to its initiator", eventID)
	}

	return s.requests.FindByEvent(eventID)
}

// ReviewResult partitions the processed requests by their final status.
type ReviewResult struct {
	ConfirmedRequests []models.ParticipationRequest `json:"confirmed_requests"`
	RejectedRequests  []models.ParticipationRequest `json:"rejected_requests"`
}

// Review confirms or rejects a batch of pending requests. Confirmation is
// iterate-and-stop: requests are confirmed in id order while capacity
// remains, and the first one that would exceed the limit aborts the rest
// with a conflict. Confirmations made before the stop stay committed.
func (s *RequestService) Review(userID, eventID uint, requestIDs []uint, decision models.RequestStatus) (*ReviewResult, error) {
	if decision != models.RequestStatusConfirmed && decision != models.RequestStatusRejected {
		return nil, utils.ValidationError("Decision must be CONFIRMED or REJECTED, got %s", decision)
	}
	if len(requestIDs) == 0 {
		return nil, utils.ValidationError("No request ids to review")
	}
	if _, err := s.getUser(userID); err != nil {
		return nil, err
	}

	result := &ReviewResult{
		ConfirmedRequests: []models.ParticipationRequest{},
		RejectedRequests:  []models.ParticipationRequest{},
	}
	limitHit := false

	err := s.db.Transaction(func(tx *gorm.DB) error {
		events := s.events.WithTx(tx)
		requests := s.requests.WithTx(tx)

		event, err := events.GetLocked(eventID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.NotFoundError("Event with id %d not found", eventID)
			}
			return err
		}
		if event.InitiatorID != userID {
			return utils.ValidationError("Requests for event %d can only be reviewed by its initiator", eventID)
		}
		// Without moderation or a limit, requests auto-confirm and there is
		// nothing to review.
		if !event.RequestModeration || event.ParticipantLimit == 0 {
			return utils.ConflictError("Event %d does not require request confirmation", eventID)
		}

		batch, err := requests.FindByIDs(requestIDs)
		if err != nil {
			return err
		}
		if len(batch) != len(requestIDs) {
			return utils.NotFoundError("Some of the requested ids do not exist")
		}
		for _, request := range batch {
			if request.EventID != eventID {
				return utils.NotFoundError("Request %d does not belong to event %d", request.ID, eventID)
			}
			if request.Status != models.RequestStatusPending {
				return utils.ConflictError("Request %d is not pending", request.ID)
			}
		}

		for i := range batch {
			if decision == models.RequestStatusRejected {
				batch[i].Status = models.RequestStatusRejected
				if err := requests.Save(&batch[i]); err != nil {
					return err
				}
				result.RejectedRequests = append(result.RejectedRequests, batch[i])
				continue
			}

			confirmed, err := requests.ConfirmedCount(eventID)
			if err != nil {
				return err
			}
			if confirmed >= int64(event.ParticipantLimit) {
				limitHit = true
				break
			}
			batch[i].Status = models.RequestStatusConfirmed
			if err := requests.Save(&batch[i]); err != nil {
				return err
			}
			result.ConfirmedRequests = append(result.ConfirmedRequests, batch[i])
		}

		return nil
	})
	if err != nil {
		return nil, err
	}
	if limitHit {
		return nil, utils.ConflictError("The participant limit for event %d has been reached", eventID)
	}

	return result, nil
}

func (s *RequestService) notifyRequestReceived(event *models.Event, requester *models.User) {
	if s.email == nil || event == nil {
		return
	}

	var initiator models.User
	if err := s.db.First(&initiator, event.InitiatorID).Error; err != nil {
		log.Printf("requests: failed to load initiator %d for notification: %v", event.InitiatorID, err)
		return
	}

	title := event.Title
	requesterName := requester.Name
	go func() {
		if err := s.email.SendRequestReceivedEmail(initiator.Email, initiator.Name, requesterName, title); err != nil {
			log.Printf("requests: notification email failed: %v", err)
		}
	}()
}

func (s *RequestService) getUser(userID uint) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("User with id %d not found", userID)
		}
		return nil, err
	}
	return &user, nil
}
