// File: /repositories/event_repository.go
package repositories

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"afisha-api/models"
)

type EventRepository struct {
	db *gorm.DB
}

func NewEventRepository(db *gorm.DB) *EventRepository {
	return &EventRepository{db: db}
}

// WithTx returns a repository bound to the given transaction.
func (r *EventRepository) WithTx(tx *gorm.DB) *EventRepository {
	return &EventRepository{db: tx}
}

func (r *EventRepository) Get(eventID uint) (*models.Event, error) {
	var event models.Event
	err := r.db.Preload("Category").Preload("Initiator").First(&event, eventID).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

// GetLocked fetches the event with a row lock so capacity checks and status
// writes inside the surrounding transaction stay consistent under concurrent
// submissions. SQLite has a single writer and rejects the FOR UPDATE syntax,
// so the clause is applied for MySQL only.
func (r *EventRepository) GetLocked(eventID uint) (*models.Event, error) {
	tx := r.db
	if tx.Dialector.Name() == "mysql" {
		tx = tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var event models.Event
	if err := tx.First(&event, eventID).Error; err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) GetPublished(eventID uint) (*models.Event, error) {
	var event models.Event
	err := r.db.Preload("Category").Preload("Initiator").
		Where("id = ? AND state = ?", eventID, models.EventStatePublished).
		First(&event).Error
	if err != nil {
		return nil, err
	}
	return &event, nil
}

func (r *EventRepository) Save(event *models.Event) error {
	return r.db.Save(event).Error
}

func (r *EventRepository) Create(event *models.Event) error {
	return r.db.Create(event).Error
}

func (r *EventRepository) FindByInitiator(userID uint, from, size int) ([]models.Event, error) {
	var events []models.Event
	err := r.db.Preload("Category").Preload("Initiator").
		Where("initiator_id = ?", userID).
		Order("id ASC").Offset(from).Limit(size).
		Find(&events).Error
	return events, err
}

func (r *EventRepository) FindByIDs(ids []uint) ([]models.Event, error) {
	var events []models.Event
	if len(ids) == 0 {
		return events, nil
	}
	err := r.db.Preload("Category").Preload("Initiator").
		Where("id IN ?", ids).
		Find(&events).Error
	return events, err
}

func (r *EventRepository) CountByCategory(categoryID uint) (int64, error) {
	var count int64
	err := r.db.Model(&models.Event{}).Where("category_id = ?", categoryID).Count(&count).Error
	return count, err
}

// AdminFilters narrows the admin event search. Nil slices and times mean the
// dimension is not filtered.
type AdminFilters struct {
	Users      []uint
	States     []models.EventState
	Categories []uint
	RangeStart *time.Time
	RangeEnd   *time.Time
}

func (r *EventRepository) FindByAdmin(filters AdminFilters, from, size int) ([]models.Event, error) {
	query := r.db.Preload("Category").Preload("Initiator")

	if len(filters.Users) > 0 {
		query = query.Where("initiator_id IN ?", filters.Users)
	}
	if len(filters.States) > 0 {
		query = query.Where("state IN ?", filters.States)
	}
	if len(filters.Categories) > 0 {
		query = query.Where("category_id IN ?", filters.Categories)
	}
	if filters.RangeStart != nil {
		query = query.Where("event_date >= ?", *filters.RangeStart)
	}
	if filters.RangeEnd != nil {
		query = query.Where("event_date <= ?", *filters.RangeEnd)
	}

	var events []models.Event
	err := query.Order("id ASC").Offset(from).Limit(size).Find(&events).Error
	return events, err
}

// PublicFilters narrows the public event search. Only published events are
// ever returned.
type PublicFilters struct {
	Text       string
	Categories []uint
	Paid       *bool
	RangeStart *time.Time
	RangeEnd   *time.Time
}

func (r *EventRepository) FindPublished(filters PublicFilters, from, size int) ([]models.Event, error) {
	query := r.db.Preload("Category").Preload("Initiator").
		Where("state = ?", models.EventStatePublished)

	if filters.Text != "" {
		pattern := "%" + filters.Text + "%"
		query = query.Where("annotation LIKE ? OR description LIKE ?", pattern, pattern)
	}
	if len(filters.Categories) > 0 {
		query = query.Where("category_id IN ?", filters.Categories)
	}
	if filters.Paid != nil {
		query = query.Where("paid = ?", *filters.Paid)
	}
	if filters.RangeStart != nil {
		query = query.Where("event_date >= ?", *filters.RangeStart)
	}
	if filters.RangeEnd != nil {
		query = query.Where("event_date <= ?", *filters.RangeEnd)
	}

	var events []models.Event
	err := query.Order("event_date ASC").Offset(from).Limit(size).Find(&events).Error
	return events, err
}
