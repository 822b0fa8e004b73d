// File: /models/event.go
package models

import (
	"time"
)

type EventState string

const (
	EventStatePending   EventState = "PENDING"
	EventStatePublished EventState = "PUBLISHED"
	EventStateCanceled  EventState = "CANCELED"
)

type StateAction string

const (
	// Owner actions
	ActionSendToReview StateAction = "SEND_TO_REVIEW"
	ActionCancelReview StateAction = "CANCEL_REVIEW"
	// Admin actions
	ActionPublishEvent StateAction = "PUBLISH_EVENT"
	ActionRejectEvent  StateAction = "REJECT_EVENT"
)

type Location struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

type Event struct {
	ID                uint       `json:"id" gorm:"primaryKey"`
	Annotation        string     `json:"annotation" gorm:"not null;size:2000"`
	Description       string     `json:"description" gorm:"not null;type:text"`
	Title             string     `json:"title" gorm:"not null;size:120"`
	CategoryID        uint       `json:"-" gorm:"not null;index"`
	InitiatorID       uint       `json:"-" gorm:"not null;index"`
	CreatedOn         time.Time  `json:"created_on"`
	EventDate         time.Time  `json:"event_date" gorm:"not null;index"`
	PublishedOn       *time.Time `json:"published_on,omitempty"`
	Paid              bool       `json:"paid" gorm:"not null;default:false"`
	ParticipantLimit  int        `json:"participant_limit" gorm:"not null;default:0"` // 0 = unlimited
	RequestModeration bool       `json:"request_moderation" gorm:"not null;default:true"`
	Location          Location   `json:"location" gorm:"embedded"`
	State             EventState `json:"state" gorm:"not null;size:20;index"`

	Category  Category `json:"category" gorm:"foreignKey:CategoryID"`
	Initiator User     `json:"initiator" gorm:"foreignKey:InitiatorID"`

	// Derived on read, never stored. Confirmed count comes from a COUNT over
	// requests; views come from the stats collector.
	ConfirmedRequests int64 `json:"confirmed_requests" gorm:"-"`
	Views             int64 `json:"views" gorm:"-"`
}

func (e *Event) IsTerminal() bool {
	return e.State == EventStatePublished || e.State == EventStateCanceled
}

type stateTransition struct {
	next             EventState
	stampPublication bool
}

type stateActionKey struct {
	state  EventState
	action StateAction
}

// transitions is the full set of legal (state, action) pairs. Anything not
// listed is a conflict. SEND_TO_REVIEW is an idempotent resubmission after
// edits, so PENDING maps back onto PENDING.
var transitions = map[stateActionKey]stateTransition{
	{EventStatePending, ActionSendToReview}: {next: EventStatePending},
	{EventStatePending, ActionCancelReview}: {next: EventStateCanceled},
	{EventStatePending, ActionPublishEvent}: {next: EventStatePublished, stampPublication: true},
	{EventStatePending, ActionRejectEvent}:  {next: EventStateCanceled},
}

// Transition resolves the next state for an action applied to the current
// state. The second result reports whether the pair is legal at all; the
// third whether the transition stamps the publication time.
func Transition(state EventState, action StateAction) (EventState, bool, bool) {
	t, ok := transitions[stateActionKey{state, action}]
	if !ok {
		return state, false, false
	}
	return t.next, true, t.stampPublication
}

// KnownStateAction reports whether the action string is one of the defined
// transition actions. Unknown actions are a validation error rather than a
// conflict.
func KnownStateAction(action StateAction) bool {
	switch action {
	case ActionSendToReview, ActionCancelReview, ActionPublishEvent, ActionRejectEvent:
		return true
	}
	return false
}
