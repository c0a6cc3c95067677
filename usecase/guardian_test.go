package usecase

import (
	"context"
	"testing"
	"time"

	"campusguard/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newGuardianService(store *fakeGuardianStore, users *fakeUserStore, distance float64) (*GuardianService, *fakePublisher, *fakeNotifier) {
	pub := &fakePublisher{}
	push := &fakeNotifier{name: "push"}
	svc := &GuardianService{
		Sessions:  store,
		Users:     users,
		Fanout:    NewNotificationFanout([]Notifier{push}, time.Second, zap.NewNop()),
		Publisher: pub,
		RouteDistance: func(start, destination, location model.GeoPoint) float64 {
			return distance
		},
		DeviationThreshold: 500,
		Logger:             zap.NewNop(),
	}
	return svc, pub, push
}

func guardianUser() *model.User {
	return &model.User{
		UserID:   "u1",
		Username: "sam",
		EmergencyContacts: []model.EmergencyContact{
			{ContactID: "c1", Name: "Ada", Phone: "+15550000001", NotificationsEnabled: true},
			{ContactID: "c2", Name: "Ben", Phone: "+15550000002", NotificationsEnabled: true},
		},
	}
}

func startInput() StartGuardianInput {
	return StartGuardianInput{
		UserID:           "u1",
		Destination:      "North Library",
		DestinationPoint: model.NewGeoPoint(37.8740, -122.2600),
		CurrentLocation:  model.Location{Point: model.NewGeoPoint(37.8700, -122.2585)},
		DurationMinutes:  20,
		ContactIDs:       []string{"c1", "c2"},
	}
}

func TestStartGuardianSeedsCheckInAndNotifies(t *testing.T) {
	store := newFakeGuardianStore()
	svc, _, push := newGuardianService(store, &fakeUserStore{users: map[string]*model.User{"u1": guardianUser()}}, 0)

	session, err := svc.Start(context.Background(), startInput())
	require.NoError(t, err)

	require.Len(t, session.CheckIns, 1)
	assert.Equal(t, model.CheckInOnTime, session.CheckIns[0].Status)
	assert.Len(t, session.TrustedContacts, 2)
	for _, c := range session.TrustedContacts {
		assert.True(t, c.Notified)
	}
	assert.ElementsMatch(t, []string{"c1", "c2"}, push.sends)

	require.Len(t, session.AlertsSent, 1)
	assert.Equal(t, "session-started", session.AlertsSent[0].Kind)
}

func TestStartGuardianFiltersUnknownContacts(t *testing.T) {
	store := newFakeGuardianStore()
	svc, _, _ := newGuardianService(store, &fakeUserStore{users: map[string]*model.User{"u1": guardianUser()}}, 0)

	input := startInput()
	input.ContactIDs = []string{"c1", "stranger"}

	session, err := svc.Start(context.Background(), input)
	require.NoError(t, err)

	require.Len(t, session.TrustedContacts, 1)
	assert.Equal(t, "c1", session.TrustedContacts[0].ContactID)
}

func TestStartGuardianRejectsSecondActiveSession(t *testing.T) {
	store := newFakeGuardianStore()
	svc, _, _ := newGuardianService(store, &fakeUserStore{users: map[string]*model.User{"u1": guardianUser()}}, 0)

	_, err := svc.Start(context.Background(), startInput())
	require.NoError(t, err)

	_, err = svc.Start(context.Background(), startInput())
	assert.ErrorIs(t, err, ErrSessionAlreadyActive)
}

func TestStartGuardianValidation(t *testing.T) {
	svc, _, _ := newGuardianService(newFakeGuardianStore(), &fakeUserStore{users: map[string]*model.User{"u1": guardianUser()}}, 0)

	input := startInput()
	input.Destination = ""
	_, err := svc.Start(context.Background(), input)
	assert.ErrorIs(t, err, ErrValidation)

	input = startInput()
	input.DurationMinutes = 0
	_, err = svc.Start(context.Background(), input)
	assert.ErrorIs(t, err, ErrValidation)
}

func TestUpdateLocationOnRouteAppendsCheckInOnly(t *testing.T) {
	store := newFakeGuardianStore()
	svc, pub, _ := newGuardianService(store, &fakeUserStore{users: map[string]*model.User{"u1": guardianUser()}}, 40)

	created, err := svc.Start(context.Background(), startInput())
	require.NoError(t, err)

	session, err := svc.UpdateLocation(context.Background(), UpdateGuardianInput{
		SessionID: created.SessionID,
		UserID:    "u1",
		Location:  model.Location{Point: model.NewGeoPoint(37.8720, -122.2592)},
	})
	require.NoError(t, err)

	assert.Len(t, session.CheckIns, 2)
	assert.Empty(t, session.Deviations)
	assert.Empty(t, pub.byEvent(EventGuardianAlert))
}

func TestUpdateLocationDeviationTriggersOneBatch(t *testing.T) {
	store := newFakeGuardianStore()
	svc, pub, _ := newGuardianService(store, &fakeUserStore{users: map[string]*model.User{"u1": guardianUser()}}, 750)

	created, err := svc.Start(context.Background(), startInput())
	require.NoError(t, err)

	session, err := svc.UpdateLocation(context.Background(), UpdateGuardianInput{
		SessionID: created.SessionID,
		UserID:    "u1",
		Location:  model.Location{Point: model.NewGeoPoint(37.8800, -122.2700)},
	})
	require.NoError(t, err)

	// Exactly one deviation entry and one urgent batch on top of the
	// session-started batch.
	require.Len(t, session.Deviations, 1)
	assert.InDelta(t, 750, session.Deviations[0].DistanceMeters, 0.001)

	stored := store.sessions[created.SessionID]
	require.Len(t, stored.AlertsSent, 2)
	assert.Equal(t, "route-deviation", stored.AlertsSent[1].Kind)
	assert.Len(t, pub.byEvent(EventGuardianAlert), 1)
}

func TestUpdateLocationUnknownSession(t *testing.T) {
	svc, _, _ := newGuardianService(newFakeGuardianStore(), &fakeUserStore{users: map[string]*model.User{"u1": guardianUser()}}, 0)

	_, err := svc.UpdateLocation(context.Background(), UpdateGuardianInput{
		SessionID: "missing",
		UserID:    "u1",
		Location:  model.Location{Point: model.NewGeoPoint(37.87, -122.26)},
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCompleteGuardianSendsArrivedSafely(t *testing.T) {
	store := newFakeGuardianStore()
	svc, _, push := newGuardianService(store, &fakeUserStore{users: map[string]*model.User{"u1": guardianUser()}}, 0)

	created, err := svc.Start(context.Background(), startInput())
	require.NoError(t, err)
	push.sends = nil

	session, err := svc.Complete(context.Background(), created.SessionID, "u1")
	require.NoError(t, err)

	assert.Equal(t, model.GuardianCompleted, session.Status)
	assert.False(t, session.EndedAt.IsZero())
	assert.ElementsMatch(t, []string{"c1", "c2"}, push.sends)

	stored := store.sessions[created.SessionID]
	assert.Equal(t, "arrived-safely", stored.AlertsSent[len(stored.AlertsSent)-1].Kind)

	// The session is terminal: further updates fail.
	_, err = svc.UpdateLocation(context.Background(), UpdateGuardianInput{
		SessionID: created.SessionID,
		UserID:    "u1",
		Location:  model.Location{Point: model.NewGeoPoint(37.874, -122.26)},
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCancelGuardianSkipsFanout(t *testing.T) {
	store := newFakeGuardianStore()
	svc, _, push := newGuardianService(store, &fakeUserStore{users: map[string]*model.User{"u1": guardianUser()}}, 0)

	created, err := svc.Start(context.Background(), startInput())
	require.NoError(t, err)
	push.sends = nil

	session, err := svc.Cancel(context.Background(), created.SessionID, "u1")
	require.NoError(t, err)

	assert.Equal(t, model.GuardianCancelled, session.Status)
	assert.Empty(t, push.sends)
}
