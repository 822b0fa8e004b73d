// File: /models/request.go
package models

import (
	"time"
)

type RequestStatus string

const (
	RequestStatusPending   RequestStatus = "PENDING"
	RequestStatusConfirmed RequestStatus = "CONFIRMED"
	RequestStatusRejected  RequestStatus = "REJECTED"
	RequestStatusCanceled  RequestStatus = "CANCELED"
)

// ParticipationRequest holds the event id only, never a live Event object, so
// the request table can be queried independently of the event graph.
type ParticipationRequest struct {
	ID          uint          `json:"id" gorm:"primaryKey"`
	Created     time.Time     `json:"created"`
	EventID     uint          `json:"event" gorm:"not null;index:idx_requests_event_status"`
	RequesterID uint          `json:"requester" gorm:"not null;index"`
	Status      RequestStatus `json:"status" gorm:"not null;size:20;index:idx_requests_event_status"`
}

// IsTerminal reports whether the request can no longer change status.
func (r *ParticipationRequest) IsTerminal() bool {
	return r.Status == RequestStatusRejected || r.Status == RequestStatusCanceled
}

// IsActive reports whether the request still counts against the one-active-
// request-per-(user, event) rule.
func (r *ParticipationRequest) IsActive() bool {
	return !r.IsTerminal()
}
