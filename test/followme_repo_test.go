package test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"campusguard/model"
	"campusguard/repository"
	"campusguard/test/testutils"
	"campusguard/usecase"
	"campusguard/utils"
)

func newFollowMeSession(userID string) *model.FollowMeSession {
	now := time.Now().Truncate(time.Millisecond)
	loc := model.Location{Point: model.NewGeoPoint(37.8700, -122.2600), RecordedAt: now}
	return &model.FollowMeSession{
		SessionID:       utils.GenerateID(),
		UserID:          userID,
		Status:          model.FollowMeActive,
		SharingWith:     []model.Viewer{{ContactID: "c1", AddedAt: now}},
		CurrentLocation: loc,
		History:         []model.TrackPoint{{Point: loc.Point, Timestamp: now}},
		Settings:        model.FollowMeSettings{UpdateIntervalSeconds: 15, MaxHistoryPoints: 5},
		ExpiresAt:       now.Add(30 * time.Minute),
		StartedAt:       now,
	}
}

func TestFollowMeRepoHistoryCapIsAtomic(t *testing.T) {
	testutils.SetupTestEnvironment()
	client, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	if err := repository.SetupIndexes(client.Database(os.Getenv("MONGO_DB"))); err != nil {
		t.Fatalf("SetupIndexes failed: %v", err)
	}

	repo := repository.GetFollowMeRepo(client)
	ctx := context.Background()

	session := newFollowMeSession("user-1")
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	for i := 1; i <= 7; i++ {
		loc := model.Location{
			Point:      model.NewGeoPoint(37.8700+float64(i)*0.0001, -122.2600),
			Address:    fmt.Sprintf("point-%d", i),
			RecordedAt: time.Now(),
		}
		point := model.TrackPoint{Point: loc.Point, Address: loc.Address, Timestamp: loc.RecordedAt}
		if err := repo.AppendLocation(ctx, session.SessionID, loc, point, session.Settings.MaxHistoryPoints); err != nil {
			t.Fatalf("AppendLocation %d failed: %v", i, err)
		}
	}

	got, err := repo.GetActiveByUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetActiveByUser failed: %v", err)
	}
	if len(got.History) != 5 {
		t.Fatalf("expected history capped at 5, got %d", len(got.History))
	}
	// Oldest entries went first: start point and updates 1-2 are gone.
	if got.History[0].Address != "point-3" || got.History[4].Address != "point-7" {
		t.Errorf("unexpected trim window: first=%q last=%q", got.History[0].Address, got.History[4].Address)
	}
	if got.CurrentLocation.Address != "point-7" {
		t.Errorf("current location not updated: %q", got.CurrentLocation.Address)
	}
}

func TestFollowMeRepoSingleActiveSession(t *testing.T) {
	testutils.SetupTestEnvironment()
	client, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	if err := repository.SetupIndexes(client.Database(os.Getenv("MONGO_DB"))); err != nil {
		t.Fatalf("SetupIndexes failed: %v", err)
	}

	repo := repository.GetFollowMeRepo(client)
	ctx := context.Background()

	if err := repo.CreateSession(ctx, newFollowMeSession("user-1")); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	if err := repo.CreateSession(ctx, newFollowMeSession("user-1")); !errors.Is(err, usecase.ErrSessionAlreadyActive) {
		t.Fatalf("expected ErrSessionAlreadyActive, got %v", err)
	}

	// Stop frees the slot.
	if _, err := repo.StopSession(ctx, "user-1", time.Now()); err != nil {
		t.Fatalf("StopSession failed: %v", err)
	}
	if err := repo.CreateSession(ctx, newFollowMeSession("user-1")); err != nil {
		t.Fatalf("CreateSession after stop failed: %v", err)
	}
}

func TestFollowMeRepoExpireAndStop(t *testing.T) {
	testutils.SetupTestEnvironment()
	client, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	if err := repository.SetupIndexes(client.Database(os.Getenv("MONGO_DB"))); err != nil {
		t.Fatalf("SetupIndexes failed: %v", err)
	}

	repo := repository.GetFollowMeRepo(client)
	ctx := context.Background()

	session := newFollowMeSession("user-1")
	if err := repo.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}

	if err := repo.ExpireSession(ctx, session.SessionID, time.Now()); err != nil {
		t.Fatalf("ExpireSession failed: %v", err)
	}
	if _, err := repo.GetActiveByUser(ctx, "user-1"); !errors.Is(err, usecase.ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession after expiry, got %v", err)
	}
	if _, err := repo.StopSession(ctx, "user-1", time.Now()); !errors.Is(err, usecase.ErrNoActiveSession) {
		t.Errorf("expected ErrNoActiveSession stopping an expired session, got %v", err)
	}
}
