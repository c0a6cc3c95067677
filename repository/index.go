package repository

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"campusguard/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func SetupIndexes(db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alertsCollection := db.Collection("sos_alerts")
	guardianCollection := db.Collection("guardian_sessions")
	followMeCollection := db.Collection("followme_sessions")
	hazardsCollection := db.Collection("hazard_zones")
	usersCollection := db.Collection(os.Getenv("USERS_COLLECTION"))

	alertIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().
				SetName("user_alerts_date"),
		},
		{
			Keys: bson.D{
				{Key: "status", Value: 1},
				{Key: "created_at", Value: -1},
			},
			Options: options.Index().
				SetName("active_alerts"),
		},
		// Sweep index for the enrichment queue
		{
			Keys: bson.D{
				{Key: "enrichment_status", Value: 1},
				{Key: "created_at", Value: 1},
			},
			Options: options.Index().
				SetName("pending_enrichment"),
		},
		{
			Keys: bson.D{{Key: "location.point", Value: "2dsphere"}},
			Options: options.Index().
				SetName("alert_location_geo"),
		},
	}

	// One active session per user, enforced at the store so two concurrent
	// starts cannot both pass an application-level check.
	activeSessionIndex := func(status string) mongo.IndexModel {
		return mongo.IndexModel{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("one_active_session_per_user").
				SetUnique(true).
				SetPartialFilterExpression(bson.D{{Key: "status", Value: status}}),
		}
	}

	guardianIndexes := []mongo.IndexModel{
		activeSessionIndex(string(model.GuardianActive)),
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "started_at", Value: -1},
			},
			Options: options.Index().
				SetName("user_sessions_date"),
		},
	}

	followMeIndexes := []mongo.IndexModel{
		activeSessionIndex(string(model.FollowMeActive)),
		{
			Keys: bson.D{
				{Key: "user_id", Value: 1},
				{Key: "started_at", Value: -1},
			},
			Options: options.Index().
				SetName("user_sessions_date"),
		},
	}

	hazardIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "center", Value: "2dsphere"}},
			Options: options.Index().
				SetName("hazard_center_geo"),
		},
		{
			Keys: bson.D{{Key: "active", Value: 1}},
			Options: options.Index().
				SetName("active_hazards"),
		},
	}

	userIndexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().
				SetName("user_id_index").
				SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "last_known_location", Value: "2dsphere"}},
			Options: options.Index().
				SetName("user_location_geo"),
		},
	}

	for _, c := range []struct {
		collection *mongo.Collection
		indexes    []mongo.IndexModel
	}{
		{alertsCollection, alertIndexes},
		{guardianCollection, guardianIndexes},
		{followMeCollection, followMeIndexes},
		{hazardsCollection, hazardIndexes},
		{usersCollection, userIndexes},
	} {
		if _, err := c.collection.Indexes().CreateMany(ctx, c.indexes); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", c.collection.Name(), err)
		}
	}

	log.Println("Successfully created all indexes")
	return nil
}
