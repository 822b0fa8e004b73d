// File: /services/user_service.go
package services

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"afisha-api/models"
	"afisha-api/utils"
)

type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

func (s *UserService) Create(name, email string) (*models.User, error) {
	user := models.User{Name: name, Email: email}
	if err := s.db.Create(&user).Error; err != nil {
		if isDuplicateError(err) {
			return nil, utils.ConflictError("User with email %s already exists", email)
		}
		return nil, err
	}
	return &user, nil
}

func (s *UserService) GetAll(ids []uint, from, size int) ([]models.User, error) {
	query := s.db.Order("id ASC")
	if len(ids) > 0 {
		query = query.Where("id IN ?", ids)
	}

	var users []models.User
	err := query.Offset(from).Limit(size).Find(&users).Error
	return users, err
}

func (s *UserService) Delete(userID uint) error {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.NotFoundError("User with id %d not found", userID)
		}
		return err
	}
	return s.db.Delete(&user).Error
}

// isDuplicateError matches unique-constraint violations across the MySQL and
// SQLite drivers without importing either.
func isDuplicateError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate") || strings.Contains(msg, "unique")
}
