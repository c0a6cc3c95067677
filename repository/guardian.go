package repository

import (
	"context"
	"os"
	"time"

	"campusguard/model"
	"campusguard/usecase"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type GuardianRepo struct {
	MongoCollection *mongo.Collection
}

func GetGuardianRepo(client *mongo.Client) *GuardianRepo {
	return &GuardianRepo{
		MongoCollection: client.Database(os.Getenv("MONGO_DB")).Collection("guardian_sessions"),
	}
}

// CreateSession inserts a new active session. The partial unique index on
// (user_id, status=active) turns a concurrent second start into a
// duplicate-key error, so the one-active-session invariant holds without a
// read-then-write check.
func (r *GuardianRepo) CreateSession(ctx context.Context, session *model.GuardianSession) error {
	_, err := r.MongoCollection.InsertOne(ctx, session)
	if mongo.IsDuplicateKeyError(err) {
		return usecase.ErrSessionAlreadyActive
	}
	return err
}

func (r *GuardianRepo) GetActiveSession(ctx context.Context, sessionID, userID string) (*model.GuardianSession, error) {
	filter := bson.M{"_id": sessionID, "user_id": userID, "status": model.GuardianActive}

	var session model.GuardianSession
	err := r.MongoCollection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

func (r *GuardianRepo) AppendCheckIn(ctx context.Context, sessionID string, checkIn model.CheckIn) error {
	filter := bson.M{"_id": sessionID, "status": model.GuardianActive}
	update := bson.M{"$push": bson.M{"check_ins": checkIn}}

	result, err := r.MongoCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

func (r *GuardianRepo) AppendDeviation(ctx context.Context, sessionID string, deviation model.RouteDeviation) error {
	filter := bson.M{"_id": sessionID, "status": model.GuardianActive}
	update := bson.M{"$push": bson.M{"deviations": deviation}}

	result, err := r.MongoCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

// RecordAlert appends to the alerts-sent log. Not filtered on status: the
// arrived-safely batch is recorded after the session is already completed.
func (r *GuardianRepo) RecordAlert(ctx context.Context, sessionID string, alert model.SessionAlert) error {
	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": sessionID},
		bson.M{"$push": bson.M{"alerts_sent": alert}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

func (r *GuardianRepo) MarkContactsNotified(ctx context.Context, sessionID string) error {
	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": sessionID},
		bson.M{"$set": bson.M{"trusted_contacts.$[].notified": true}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrSessionNotFound
	}
	return nil
}

func (r *GuardianRepo) CompleteSession(ctx context.Context, sessionID, userID string, endedAt time.Time) (*model.GuardianSession, error) {
	filter := bson.M{"_id": sessionID, "user_id": userID, "status": model.GuardianActive}
	update := bson.M{"$set": bson.M{
		"status":   model.GuardianCompleted,
		"ended_at": endedAt,
	}}

	var session model.GuardianSession
	err := r.MongoCollection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}

// CancelSession aborts an active session without the arrived-safely step.
func (r *GuardianRepo) CancelSession(ctx context.Context, sessionID, userID string, endedAt time.Time) (*model.GuardianSession, error) {
	filter := bson.M{"_id": sessionID, "user_id": userID, "status": model.GuardianActive}
	update := bson.M{"$set": bson.M{
		"status":   model.GuardianCancelled,
		"ended_at": endedAt,
	}}

	var session model.GuardianSession
	err := r.MongoCollection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrSessionNotFound
		}
		return nil, err
	}
	return &session, nil
}
