// File: /repositories/request_repository.go
package repositories

import (
	"gorm.io/gorm"

	"afisha-api/models"
)

type RequestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *RequestRepository) WithTx(tx *gorm.DB) *RequestRepository {
	return &RequestRepository{db: tx}
}

func (r *RequestRepository) Get(requestID uint) (*models.ParticipationRequest, error) {
	var request models.ParticipationRequest
	if err := r.db.First(&request, requestID).Error; err != nil {
		return nil, err
	}
	return &request, nil
}

func (r *RequestRepository) Create(request *models.ParticipationRequest) error {
	return r.db.Create(request).Error
}

func (r *RequestRepository) Save(request *models.ParticipationRequest) error {
	return r.db.Save(request).Error
}

// ConfirmedCount is recomputed on demand; the count is never cached on the
// event row.
func (r *RequestRepository) ConfirmedCount(eventID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.ParticipationRequest{}).
		Where("event_id = ? AND status = ?", eventID, models.RequestStatusConfirmed).
		Count(&count).Error
	return count, err
}

// HasActiveRequest reports whether the user already holds a request for the
// event that is neither canceled nor rejected.
func (r *RequestRepository) HasActiveRequest(requesterID, eventID uint) (bool, error) {
	var count int64
	err := r.db.Model(&models.ParticipationRequest{}).
		Where("requester_id = ? AND event_id = ? AND status NOT IN ?",
			requesterID, eventID,
			[]models.RequestStatus{models.RequestStatusCanceled, models.RequestStatusRejected}).
		Count(&count).Error
	return count > 0, err
}

func (r *RequestRepository) FindByRequester(requesterID uint) ([]models.ParticipationRequest, error) {
	var requests []models.ParticipationRequest
	err := r.db.Where("requester_id = ?", requesterID).Order("id ASC").Find(&requests).Error
	return requests, err
}

func (r *RequestRepository) FindByEvent(eventID uint) ([]models.ParticipationRequest, error) {
	var requests []models.ParticipationRequest
	err := r.db.Where("event_id = ?", eventID).Order("id ASC").Find(&requests).Error
	return requests, err
}

func (r *RequestRepository) FindByIDs(ids []uint) ([]models.ParticipationRequest, error) {
	var requests []models.ParticipationRequest
	if len(ids) == 0 {
		return requests, nil
	}
	err := r.db.Where("id IN ?", ids).Order("id ASC").Find(&requests).Error
	return requests, err
}
