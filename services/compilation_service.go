// File: /services/compilation_service.go
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"afisha-api/models"
	"afisha-api/repositories"
	"afisha-api/utils"
)

type CompilationService struct {
	db     *gorm.DB
	events *repositories.EventRepository
}

func NewCompilationService(db *gorm.DB) *CompilationService {
	return &CompilationService{
		db:     db,
		events: repositories.NewEventRepository(db),
	}
}

// UpdateCompilationInput is a merge patch: nil fields are left untouched. A
// non-nil empty event list clears the compilation.
type UpdateCompilationInput struct {
	Title    *string
	Pinned   *bool
	EventIDs *[]uint
}

func (s *CompilationService) Create(title string, pinned bool, eventIDs []uint) (*models.Compilation, error) {
	events, err := s.resolveEvents(eventIDs)
	if err != nil {
		return nil, err
	}

	compilation := models.Compilation{
		Title:  title,
		Pinned: pinned,
		Events: events,
	}
	if err := s.db.Create(&compilation).Error; err != nil {
		if isDuplicateError(err) {
			return nil, utils.ConflictError("Compilation with title %s already exists", title)
		}
		return nil, err
	}
	return &compilation, nil
}

func (s *CompilationService) Update(compilationID uint, input UpdateCompilationInput) (*models.Compilation, error) {
	compilation, err := s.get(compilationID)
	if err != nil {
		return nil, err
	}

	if input.Title != nil && strings.TrimSpace(*input.Title) != "" {
		compilation.Title = *input.Title
	}
	if input.Pinned != nil {
		compilation.Pinned = *input.Pinned
	}

	if input.EventIDs != nil {
		events, err := s.resolveEvents(*input.EventIDs)
		if err != nil {
			return nil, err
		}
		if err := s.db.Model(compilation).Association("Events").Replace(events); err != nil {
			return nil, err
		}
		compilation.Events = events
	}

	if err := s.db.Save(compilation).Error; err != nil {
		if isDuplicateError(err) {
			return nil, utils.ConflictError("Compilation with title %s already exists", compilation.Title)
		}
		return nil, err
	}
	return compilation, nil
}

func (s *CompilationService) Delete(compilationID uint) error {
	compilation, err := s.get(compilationID)
	if err != nil {
		return err
	}
	if err := s.db.Model(compilation).Association("Events").Clear(); err != nil {
		return err
	}
	return s.db.Delete(compilation).Error
}

// GetAll filters by the pinned flag when one is given; a nil filter returns
// everything.
func (s *CompilationService) GetAll(pinned *bool, from, size int) ([]models.Compilation, error) {
	query := s.db.Preload("Events").Preload("Events.Category").Preload("Events.Initiator")
	if pinned != nil {
		query = query.Where("pinned = ?", *pinned)
	}

	var compilations []models.Compilation
	err := query.Order("id ASC").Offset(from).Limit(size).Find(&compilations).Error
	return compilations, err
}

func (s *CompilationService) Get(compilationID uint) (*models.Compilation, error) {
	return s.get(compilationID)
}

// resolveEvents requires every referenced id to exist: an unknown event id is
// a not-found error rather than being silently dropped.
func (s *CompilationService) resolveEvents(eventIDs []uint) ([]models.Event, error) {
	if len(eventIDs) == 0 {
		return []models.Event{}, nil
	}

	events, err := s.events.FindByIDs(eventIDs)
	if err != nil {
		return nil, err
	}
	if len(events) != len(uniqueIDs(eventIDs)) {
		return nil, utils.NotFoundError("Some of the referenced events do not exist")
	}
	return events, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	unique := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return unique
}

func (s *CompilationService) get(compilationID uint) (*models.Compilation, error) {
	var compilation models.Compilation
	err := s.db.Preload("Events").Preload("Events.Category").Preload("Events.Initiator").
		First(&compilation, compilationID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Compilation with id %d not found", compilationID)
		}
		return nil, err
	}
	return &compilation, nil
}
