// File: /services/category_service.go
package services

import (
	"errors"

	"gorm.io/gorm"

	"afisha-api/models"
	"afisha-api/repositories"
	"afisha-api/utils"
)

type CategoryService struct {
	db        *gorm.DB
	eventRepo *repositories.EventRepository
}

func NewCategoryService(db *gorm.DB) *CategoryService {
	return &CategoryService{
		db:        db,
		eventRepo: repositories.NewEventRepository(db),
	}
}

func (s *CategoryService) Create(name string) (*models.Category, error) {
	category := models.Category{Name: name}
	if err := s.db.Create(&category).Error; err != nil {
		if isDuplicateError(err) {
			return nil, utils.ConflictError("Category with name %s already exists", name)
		}
		return nil, err
	}
	return &category, nil
}

func (s *CategoryService) Update(categoryID uint, name string) (*models.Category, error) {
	category, err := s.get(categoryID)
	if err != nil {
		return nil, err
	}

	category.Name = name
	if err := s.db.Save(category).Error; err != nil {
		if isDuplicateError(err) {
			return nil, utils.ConflictError("Category with name %s already exists", name)
		}
		return nil, err
	}
	return category, nil
}

// Delete refuses to remove a category that any event still references.
func (s *CategoryService) Delete(categoryID uint) error {
	category, err := s.get(categoryID)
	if err != nil {
		return err
	}

	count, err := s.eventRepo.CountByCategory(categoryID)
	if err != nil {
		return err
	}
	if count > 0 {
		return utils.ConflictError("Category %d is still referenced by events", categoryID)
	}

	return s.db.Delete(category).Error
}

func (s *CategoryService) GetAll(from, size int) ([]models.Category, error) {
	var categories []models.Category
	err := s.db.Order("id ASC").Offset(from).Limit(size).Find(&categories).Error
	return categories, err
}

func (s *CategoryService) Get(categoryID uint) (*models.Category, error) {
	return s.get(categoryID)
}

func (s *CategoryService) get(categoryID uint) (*models.Category, error) {
	var category models.Category
	if err := s.db.First(&category, categoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, utils.NotFoundError("Category with id %d not found", categoryID)
		}
		return nil, err
	}
	return &category, nil
}
