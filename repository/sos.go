package repository

import (
	"context"
	"fmt"
	"os"
	"time"

	"campusguard/model"
	"campusguard/usecase"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type SOSAlertRepo struct {
	MongoCollection *mongo.Collection
}

func GetSOSAlertRepo(client *mongo.Client) *SOSAlertRepo {
	return &SOSAlertRepo{
		MongoCollection: client.Database(os.Getenv("MONGO_DB")).Collection("sos_alerts"),
	}
}

func (r *SOSAlertRepo) CreateAlert(ctx context.Context, alert *model.SOSAlert) error {
	_, err := r.MongoCollection.InsertOne(ctx, alert)
	return err
}

func (r *SOSAlertRepo) GetAlert(ctx context.Context, alertID string) (*model.SOSAlert, error) {
	var alert model.SOSAlert
	err := r.MongoCollection.FindOne(ctx, bson.M{"_id": alertID}).Decode(&alert)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrAlertNotFound
		}
		return nil, err
	}
	return &alert, nil
}

// ResolveAlert flips an active alert to resolved in one atomic update. The
// filter includes the status so a second resolve cannot overwrite the
// first resolver.
func (r *SOSAlertRepo) ResolveAlert(ctx context.Context, alertID, resolverID, notes string, at time.Time) (*model.SOSAlert, error) {
	filter := bson.M{"_id": alertID, "status": model.AlertActive}
	update := bson.M{"$set": bson.M{
		"status":           model.AlertResolved,
		"resolved_by":      resolverID,
		"resolved_at":      at,
		"resolution_notes": notes,
		"updated_at":       at,
	}}

	var alert model.SOSAlert
	err := r.MongoCollection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&alert)
	if err == nil {
		return &alert, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, err
	}

	// No active alert matched: distinguish missing from already resolved.
	if _, lookupErr := r.GetAlert(ctx, alertID); lookupErr != nil {
		return nil, lookupErr
	}
	return nil, usecase.ErrAlreadyResolved
}

func (r *SOSAlertRepo) AttachMediaCaptures(ctx context.Context, alertID string, captures []model.MediaCapture) error {
	update := bson.M{
		"$push": bson.M{"media_captures": bson.M{"$each": captures}},
		"$set":  bson.M{"updated_at": time.Now()},
	}
	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"_id": alertID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrAlertNotFound
	}
	return nil
}

func (r *SOSAlertRepo) RecordNotifications(ctx context.Context, alertID string, records []model.ContactNotification) error {
	update := bson.M{
		"$push": bson.M{"notifications": bson.M{"$each": records}},
		"$set": bson.M{
			"enrichment_status": model.EnrichmentDone,
			"updated_at":        time.Now(),
		},
	}
	result, err := r.MongoCollection.UpdateOne(ctx, bson.M{"_id": alertID}, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrAlertNotFound
	}
	return nil
}

// PendingEnrichment returns alerts whose deferred step has not run yet.
// The sweep uses this after a restart so no alert loses its notification
// step to a dropped in-process queue.
func (r *SOSAlertRepo) PendingEnrichment(ctx context.Context, olderThan time.Time) ([]*model.SOSAlert, error) {
	filter := bson.M{
		"enrichment_status": model.EnrichmentPending,
		"created_at":        bson.M{"$lt": olderThan},
	}
	cursor, err := r.MongoCollection.Find(ctx, filter,
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query pending alerts: %w", err)
	}
	defer cursor.Close(ctx)

	var alerts []*model.SOSAlert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}

// PendingAlertIDs is the id-only view of PendingEnrichment used by the
// enrichment sweep.
func (r *SOSAlertRepo) PendingAlertIDs(ctx context.Context, olderThan time.Time) ([]string, error) {
	alerts, err := r.PendingEnrichment(ctx, olderThan)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(alerts))
	for _, alert := range alerts {
		ids = append(ids, alert.AlertID)
	}
	return ids, nil
}

// ActiveAlerts lists currently active alerts for the security dashboard.
func (r *SOSAlertRepo) ActiveAlerts(ctx context.Context) ([]*model.SOSAlert, error) {
	cursor, err := r.MongoCollection.Find(ctx, bson.M{"status": model.AlertActive},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var alerts []*model.SOSAlert
	if err := cursor.All(ctx, &alerts); err != nil {
		return nil, err
	}
	return alerts, nil
}
