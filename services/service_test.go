// File: /services/service_test.go
package services

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"afisha-api/models"
)

// newTestDB opens a fresh in-memory database for one test. The DSN carries
// the test name so parallel tests do not share state.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Category{},
		&models.Event{},
		&models.ParticipationRequest{},
		&models.Compilation{},
	))
	return db
}

var testUserSeq int

func createTestUser(t *testing.T, db *gorm.DB, name string) *models.User {
	t.Helper()

	testUserSeq++
	user := models.User{
		Name:  name,
		Email: fmt.Sprintf("%s-%d@example.com", strings.ToLower(name), testUserSeq),
	}
	require.NoError(t, db.Create(&user).Error)
	return &user
}

func createTestCategory(t *testing.T, db *gorm.DB, name string) *models.Category {
	t.Helper()

	category := models.Category{Name: name}
	require.NoError(t, db.Create(&category).Error)
	return &category
}

type eventOption func(*models.Event)

func withState(state models.EventState) eventOption {
	return func(e *models.Event) {
		e.State = state
		if state == models.EventStatePublished {
			now := time.Now()
			e.PublishedOn = &now
		}
	}
}

func withLimit(limit int) eventOption {
	return func(e *models.Event) { e.ParticipantLimit = limit }
}

func withModeration(moderation bool) eventOption {
	return func(e *models.Event) { e.RequestModeration = moderation }
}

func withEventDate(date time.Time) eventOption {
	return func(e *models.Event) { e.EventDate = date }
}

func createTestEvent(t *testing.T, db *gorm.DB, initiator *models.User, category *models.Category, opts ...eventOption) *models.Event {
	t.Helper()

	event := models.Event{
		Annotation:        "An annotation long enough for the public listing",
		Description:       "A description long enough to satisfy the field rules",
		Title:             "Test event",
		CategoryID:        category.ID,
		InitiatorID:       initiator.ID,
		CreatedOn:         time.Now(),
		EventDate:         time.Now().Add(48 * time.Hour),
		RequestModeration: true,
		Location:          models.Location{Lat: 55.75, Lon: 37.62},
		State:             models.EventStatePending,
	}
	for _, opt := range opts {
		opt(&event)
	}
	require.NoError(t, db.Create(&event).Error)
	return &event
}

func createTestRequest(t *testing.T, db *gorm.DB, requester *models.User, event *models.Event, status models.RequestStatus) *models.ParticipationRequest {
	t.Helper()

	request := models.ParticipationRequest{
		Created:     time.Now(),
		EventID:     event.ID,
		RequesterID: requester.ID,
		Status:      status,
	}
	require.NoError(t, db.Create(&request).Error)
	return &request
}
