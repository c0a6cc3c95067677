package test

import (
	"context"
	"os"
	"testing"
	"time"

	"campusguard/model"
	"campusguard/repository"
	"campusguard/test/testutils"
	"campusguard/utils"
)

func newHazard(name string, lat, lng float64, risk model.RiskLevel, active bool) *model.HazardZone {
	now := time.Now()
	return &model.HazardZone{
		HazardID:     utils.GenerateID(),
		Name:         name,
		Center:       model.NewGeoPoint(lat, lng),
		RadiusMeters: 50,
		RiskLevel:    risk,
		Active:       active,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestHazardRepoFindNearbyOrdersByDistance(t *testing.T) {
	testutils.SetupTestEnvironment()
	client, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	if err := repository.SetupIndexes(client.Database(os.Getenv("MONGO_DB"))); err != nil {
		t.Fatalf("SetupIndexes failed: %v", err)
	}

	repo := repository.GetHazardRepo(client)
	ctx := context.Background()

	near := newHazard("broken streetlight", 37.8702, -122.2601, model.RiskMedium, true)
	further := newHazard("construction site", 37.8712, -122.2605, model.RiskHigh, true)
	inactive := newHazard("resolved incident", 37.8703, -122.2600, model.RiskHigh, false)
	distant := newHazard("off-campus", 37.9300, -122.2600, model.RiskHigh, true)

	for _, h := range []*model.HazardZone{near, further, inactive, distant} {
		if err := repo.CreateHazard(ctx, h); err != nil {
			t.Fatalf("CreateHazard failed: %v", err)
		}
	}

	found, err := repo.FindNearby(ctx, model.NewGeoPoint(37.8700, -122.2600), 500)
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}

	if len(found) != 2 {
		t.Fatalf("expected 2 hazards, got %d", len(found))
	}
	if found[0].HazardID != near.HazardID || found[1].HazardID != further.HazardID {
		t.Errorf("results not ordered by distance: %s, %s", found[0].Name, found[1].Name)
	}
	if found[0].DistanceMeters <= 0 || found[0].DistanceMeters >= found[1].DistanceMeters {
		t.Errorf("unexpected distances: %.1f, %.1f", found[0].DistanceMeters, found[1].DistanceMeters)
	}
}

func TestHazardRepoDeactivate(t *testing.T) {
	testutils.SetupTestEnvironment()
	client, cleanup := testutils.SetupTestDB(t)
	defer cleanup()

	if err := repository.SetupIndexes(client.Database(os.Getenv("MONGO_DB"))); err != nil {
		t.Fatalf("SetupIndexes failed: %v", err)
	}

	repo := repository.GetHazardRepo(client)
	ctx := context.Background()

	hazard := newHazard("dark alley", 37.8702, -122.2601, model.RiskHigh, true)
	if err := repo.CreateHazard(ctx, hazard); err != nil {
		t.Fatalf("CreateHazard failed: %v", err)
	}

	if err := repo.DeactivateHazard(ctx, hazard.HazardID); err != nil {
		t.Fatalf("DeactivateHazard failed: %v", err)
	}

	found, err := repo.FindNearby(ctx, model.NewGeoPoint(37.8700, -122.2600), 500)
	if err != nil {
		t.Fatalf("FindNearby failed: %v", err)
	}
	if len(found) != 0 {
		t.Errorf("deactivated hazard still returned: %v", found)
	}
}
