// File: /services/event_service_test.go
package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"afisha-api/models"
	"afisha-api/repositories"
	"afisha-api/utils"
)

// stubStats stands in for the stats collector.
type stubStats struct {
	hits     []string
	views    map[string]int64
	viewsErr error
}

func (s *stubStats) RecordHit(ctx context.Context, uri, ip string, at time.Time) {
	s.hits = append(s.hits, uri)
}

func (s *stubStats) Views(ctx context.Context, start, end time.Time, uris []string, unique bool) (map[string]int64, error) {
	if s.viewsErr != nil {
		return nil, s.viewsErr
	}
	return s.views, nil
}

func TestCreateEvent(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	user := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")

	event, err := svc.Create(user.ID, NewEventInput{
		Annotation:        "An annotation long enough for the public listing",
		CategoryID:        category.ID,
		Description:       "A description long enough to satisfy the field rules",
		EventDate:         time.Now().Add(48 * time.Hour),
		Location:          models.Location{Lat: 55.75, Lon: 37.62},
		ParticipantLimit:  10,
		RequestModeration: true,
		Title:             "Garden concert",
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventStatePending, event.State)
	assert.Nil(t, event.PublishedOn)
	assert.Equal(t, user.ID, event.Initiator.ID)
	assert.Equal(t, category.ID, event.Category.ID)
}

func TestCreateEventTooSoon(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	user := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")

	_, err := svc.Create(user.ID, NewEventInput{
		Annotation:  "An annotation long enough for the public listing",
		CategoryID:  category.ID,
		Description: "A description long enough to satisfy the field rules",
		EventDate:   time.Now().Add(time.Hour),
		Title:       "Too soon",
	})
	assert.True(t, utils.IsValidation(err))
}

func TestCreateEventUnknownReferences(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	user := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")

	input := NewEventInput{
		Annotation:  "An annotation long enough for the public listing",
		Description: "A description long enough to satisfy the field rules",
		EventDate:   time.Now().Add(48 * time.Hour),
		Title:       "Missing refs",
	}

	input.CategoryID = 9999
	_, err := svc.Create(user.ID, input)
	assert.True(t, utils.IsNotFound(err))

	input.CategoryID = category.ID
	_, err = svc.Create(9999, input)
	assert.True(t, utils.IsNotFound(err))
}

func TestGetOwnForeignEvent(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	other := createTestUser(t, db, "Other")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category)

	_, err := svc.GetOwn(other.ID, event.ID)
	assert.True(t, utils.IsNotFound(err))
}

func TestUpdateByOwnerCancelReview(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category)

	action := models.ActionCancelReview
	updated, err := svc.UpdateByOwner(initiator.ID, event.ID, UpdateEventInput{StateAction: &action})
	require.NoError(t, err)
	assert.Equal(t, models.EventStateCanceled, updated.State)
	assert.Nil(t, updated.PublishedOn)
}

func TestUpdateByOwnerResubmitKeepsPending(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category)

	title := "Edited title"
	action := models.ActionSendToReview
	updated, err := svc.UpdateByOwner(initiator.ID, event.ID, UpdateEventInput{
		Title:       &title,
		StateAction: &action,
	})
	require.NoError(t, err)
	assert.Equal(t, models.EventStatePending, updated.State)
	assert.Equal(t, "Edited title", updated.Title)
}

func TestUpdateByOwnerRejectsAdminActions(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category)

	action := models.ActionPublishEvent
	_, err := svc.UpdateByOwner(initiator.ID, event.ID, UpdateEventInput{StateAction: &action})
	assert.True(t, utils.IsValidation(err))
}

func TestUpdateByOwnerUnknownAction(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category)

	action := models.StateAction("MAKE_IT_SO")
	_, err := svc.UpdateByOwner(initiator.ID, event.ID, UpdateEventInput{StateAction: &action})
	assert.True(t, utils.IsValidation(err))
}

func TestUpdateByAdminPublish(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category)

	action := models.ActionPublishEvent
	updated, err := svc.UpdateByAdmin(event.ID, UpdateEventInput{StateAction: &action})
	require.NoError(t, err)
	assert.Equal(t, models.EventStatePublished, updated.State)
	require.NotNil(t, updated.PublishedOn)
	assert.WithinDuration(t, time.Now(), *updated.PublishedOn, 5*time.Second)
}

func TestUpdateByAdminPublishTwice(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category)

	action := models.ActionPublishEvent
	_, err := svc.UpdateByAdmin(event.ID, UpdateEventInput{StateAction: &action})
	require.NoError(t, err)

	_, err = svc.UpdateByAdmin(event.ID, UpdateEventInput{StateAction: &action})
	assert.True(t, utils.IsConflict(err))
}

func TestUpdateByAdminRejectPublished(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category, withState(models.EventStatePublished))

	action := models.ActionRejectEvent
	_, err := svc.UpdateByAdmin(event.ID, UpdateEventInput{StateAction: &action})
	assert.True(t, utils.IsConflict(err))
}

func TestUpdateTerminalEventFields(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")

	for _, state := range []models.EventState{models.EventStatePublished, models.EventStateCanceled} {
		event := createTestEvent(t, db, initiator, category, withState(state))

		title := "New title"
		_, err := svc.UpdateByAdmin(event.ID, UpdateEventInput{Title: &title})
		assert.True(t, utils.IsConflict(err), "state %s", state)
	}
}

func TestGetPublicRecordsHitAndViews(t *testing.T) {
	db := newTestDB(t)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category, withState(models.EventStatePublished))

	stats := &stubStats{views: map[string]int64{fmt.Sprintf("/events/%d", event.ID): 42}}
	svc := NewEventService(db, stats, nil)

	got, err := svc.GetPublic(context.Background(), event.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Views)
	assert.Contains(t, stats.hits, fmt.Sprintf("/events/%d", event.ID))
}

func TestGetPublicUnpublishedEvent(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category)

	_, err := svc.GetPublic(context.Background(), event.ID, "10.0.0.1")
	assert.True(t, utils.IsNotFound(err))
}

func TestGetPublicSurvivesViewLookupFailure(t *testing.T) {
	db := newTestDB(t)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category, withState(models.EventStatePublished))

	stats := &stubStats{viewsErr: errors.New("collector down")}
	svc := NewEventService(db, stats, nil)

	got, err := svc.GetPublic(context.Background(), event.ID, "10.0.0.1")
	require.NoError(t, err)
	assert.Zero(t, got.Views)
}

func TestGetAllPublicOnlyAvailable(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	alice := createTestUser(t, db, "Alice")
	category := createTestCategory(t, db, "Concerts")
	full := createTestEvent(t, db, initiator, category, withState(models.EventStatePublished), withLimit(1))
	open := createTestEvent(t, db, initiator, category, withState(models.EventStatePublished), withLimit(5))
	unlimited := createTestEvent(t, db, initiator, category, withState(models.EventStatePublished))
	createTestRequest(t, db, alice, full, models.RequestStatusConfirmed)

	events, err := svc.GetAllPublic(context.Background(), repositories.PublicFilters{},
		true, SortByEventDate, 0, 10, "10.0.0.1")
	require.NoError(t, err)

	ids := make([]uint, 0, len(events))
	for _, e := range events {
		ids = append(ids, e.ID)
	}
	assert.NotContains(t, ids, full.ID)
	assert.Contains(t, ids, open.ID)
	assert.Contains(t, ids, unlimited.ID)
}

func TestGetAllPublicSortsByViews(t *testing.T) {
	db := newTestDB(t)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	quiet := createTestEvent(t, db, initiator, category, withState(models.EventStatePublished),
		withEventDate(time.Now().Add(24*time.Hour)))
	popular := createTestEvent(t, db, initiator, category, withState(models.EventStatePublished),
		withEventDate(time.Now().Add(48*time.Hour)))

	stats := &stubStats{views: map[string]int64{
		fmt.Sprintf("/events/%d", quiet.ID):   1,
		fmt.Sprintf("/events/%d", popular.ID): 100,
	}}
	svc := NewEventService(db, stats, nil)

	events, err := svc.GetAllPublic(context.Background(), repositories.PublicFilters{},
		false, SortByViews, 0, 10, "10.0.0.1")
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, popular.ID, events[0].ID)
	assert.Equal(t, quiet.ID, events[1].ID)
}

func TestGetAllPublicInvalidRange(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	start := time.Now().Add(48 * time.Hour)
	end := time.Now().Add(24 * time.Hour)
	_, err := svc.GetAllPublic(context.Background(), repositories.PublicFilters{
		RangeStart: &start,
		RangeEnd:   &end,
	}, false, SortByEventDate, 0, 10, "10.0.0.1")
	assert.True(t, utils.IsValidation(err))
}

func TestGetAllPublicRecordsListHit(t *testing.T) {
	db := newTestDB(t)

	initiator := createTestUser(t, db, "Initiator")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category, withState(models.EventStatePublished))

	stats := &stubStats{}
	svc := NewEventService(db, stats, nil)

	_, err := svc.GetAllPublic(context.Background(), repositories.PublicFilters{},
		false, SortByEventDate, 0, 10, "10.0.0.1")
	require.NoError(t, err)
	assert.Contains(t, stats.hits, "/events")
	assert.Contains(t, stats.hits, fmt.Sprintf("/events/%d", event.ID))
}

func TestConfirmedCountAttached(t *testing.T) {
	db := newTestDB(t)
	svc := NewEventService(db, &stubStats{}, nil)

	initiator := createTestUser(t, db, "Initiator")
	alice := createTestUser(t, db, "Alice")
	bob := createTestUser(t, db, "Bob")
	category := createTestCategory(t, db, "Concerts")
	event := createTestEvent(t, db, initiator, category, withState(models.EventStatePublished), withLimit(5))
	createTestRequest(t, db, alice, event, models.RequestStatusConfirmed)
	createTestRequest(t, db, bob, event, models.RequestStatusPending)

	got, err := svc.GetOwn(initiator.ID, event.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ConfirmedRequests)
}
