package test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"campusguard/model"
	"campusguard/repository"
	"campusguard/test/testutils"
	"campusguard/usecase"
	"campusguard/utils"
)

func newAlert(userID string) *model.SOSAlert {
	now := time.Now().Truncate(time.Millisecond)
	return &model.SOSAlert{
		AlertID:          utils.GenerateID(),
		UserID:           userID,
		Severity:         model.SeverityHigh,
		Location:         model.Location{Point: model.NewGeoPoint(37.87, -122.26), RecordedAt: now},
		TriggerSource:    model.TriggerManual,
		Status:           model.AlertActive,
		EnrichmentStatus: model.EnrichmentPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

func TestSOSAlertRepoLifecycle(t *testing.T) {
	testutils.SetupTestEnvironment()
	client, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	if err := repository.SetupIndexes(client.Database(os.Getenv("MONGO_DB"))); err != nil {
		t.Fatalf("SetupIndexes failed: %v", err)
	}

	repo := repository.GetSOSAlertRepo(client)
	ctx := context.Background()

	alert := newAlert("user-1")
	if err := repo.CreateAlert(ctx, alert); err != nil {
		t.Fatalf("CreateAlert failed: %v", err)
	}

	got, err := repo.GetAlert(ctx, alert.AlertID)
	if err != nil {
		t.Fatalf("GetAlert failed: %v", err)
	}
	if got.UserID != "user-1" || got.Status != model.AlertActive {
		t.Errorf("unexpected alert: %+v", got)
	}

	// Unknown id maps to the sentinel.
	if _, err := repo.GetAlert(ctx, "missing"); !errors.Is(err, usecase.ErrAlertNotFound) {
		t.Errorf("expected ErrAlertNotFound, got %v", err)
	}

	// Enrichment artifacts accumulate on the document.
	captures := []model.MediaCapture{{CaptureID: utils.GenerateID(), Kind: "photo", Status: "pending", RequestedAt: time.Now()}}
	if err := repo.AttachMediaCaptures(ctx, alert.AlertID, captures); err != nil {
		t.Fatalf("AttachMediaCaptures failed: %v", err)
	}
	records := []model.ContactNotification{{ContactID: "c1", Channel: "sms", Status: "delivered", NotifiedAt: time.Now()}}
	if err := repo.RecordNotifications(ctx, alert.AlertID, records); err != nil {
		t.Fatalf("RecordNotifications failed: %v", err)
	}

	got, _ = repo.GetAlert(ctx, alert.AlertID)
	if len(got.MediaCaptures) != 1 || len(got.Notifications) != 1 {
		t.Errorf("expected 1 capture and 1 notification, got %d and %d", len(got.MediaCaptures), len(got.Notifications))
	}
	if got.EnrichmentStatus != model.EnrichmentDone {
		t.Errorf("expected enrichment done, got %s", got.EnrichmentStatus)
	}

	// Resolution is terminal.
	resolved, err := repo.ResolveAlert(ctx, alert.AlertID, "guard-1", "ok", time.Now())
	if err != nil {
		t.Fatalf("ResolveAlert failed: %v", err)
	}
	if resolved.Status != model.AlertResolved || resolved.ResolvedBy != "guard-1" {
		t.Errorf("unexpected resolved alert: %+v", resolved)
	}

	if _, err := repo.ResolveAlert(ctx, alert.AlertID, "guard-2", "", time.Now()); !errors.Is(err, usecase.ErrAlreadyResolved) {
		t.Errorf("expected ErrAlreadyResolved, got %v", err)
	}
	got, _ = repo.GetAlert(ctx, alert.AlertID)
	if got.ResolvedBy != "guard-1" {
		t.Errorf("second resolve overwrote resolver: %s", got.ResolvedBy)
	}
}

func TestSOSAlertRepoPendingEnrichment(t *testing.T) {
	testutils.SetupTestEnvironment()
	client, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	repo := repository.GetSOSAlertRepo(client)
	ctx := context.Background()

	stale := newAlert("user-1")
	stale.CreatedAt = time.Now().Add(-5 * time.Minute)
	fresh := newAlert("user-2")
	done := newAlert("user-3")
	done.EnrichmentStatus = model.EnrichmentDone

	for _, a := range []*model.SOSAlert{stale, fresh, done} {
		if err := repo.CreateAlert(ctx, a); err != nil {
			t.Fatalf("CreateAlert failed: %v", err)
		}
	}

	ids, err := repo.PendingAlertIDs(ctx, time.Now().Add(-time.Minute))
	if err != nil {
		t.Fatalf("PendingAlertIDs failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != stale.AlertID {
		t.Errorf("expected only the stale pending alert, got %v", ids)
	}
}
