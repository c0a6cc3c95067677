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

type FollowMeRepo struct {
	MongoCollection *mongo.Collection
}

func GetFollowMeRepo(client *mongo.Client) *FollowMeRepo {
	return &FollowMeRepo{
		MongoCollection: client.Database(os.Getenv("MONGO_DB")).Collection("followme_sessions"),
	}
}

// CreateSession relies on the partial unique index on (user_id,
// status=active); see GuardianRepo.CreateSession.
func (r *FollowMeRepo) CreateSession(ctx context.Context, session *model.FollowMeSession) error {
	_, err := r.MongoCollection.InsertOne(ctx, session)
	if mongo.IsDuplicateKeyError(err) {
		return usecase.ErrSessionAlreadyActive
	}
	return err
}

func (r *FollowMeRepo) GetActiveByUser(ctx context.Context, userID string) (*model.FollowMeSession, error) {
	filter := bson.M{"user_id": userID, "status": model.FollowMeActive}

	var session model.FollowMeSession
	err := r.MongoCollection.FindOne(ctx, filter).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrNoActiveSession
		}
		return nil, err
	}
	return &session, nil
}

// AppendLocation sets the current location and appends to the history in a
// single atomic update; $slice keeps the history bounded by evicting the
// oldest entries first.
func (r *FollowMeRepo) AppendLocation(ctx context.Context, sessionID string, location model.Location, point model.TrackPoint, historyCap int) error {
	filter := bson.M{"_id": sessionID, "status": model.FollowMeActive}
	push := bson.M{"$each": bson.A{point}}
	if historyCap > 0 {
		push["$slice"] = -historyCap
	}
	update := bson.M{
		"$set":  bson.M{"current_location": location},
		"$push": bson.M{"history": push},
	}

	result, err := r.MongoCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrNoActiveSession
	}
	return nil
}

func (r *FollowMeRepo) ExpireSession(ctx context.Context, sessionID string, at time.Time) error {
	filter := bson.M{"_id": sessionID, "status": model.FollowMeActive}
	update := bson.M{"$set": bson.M{
		"status":   model.FollowMeExpired,
		"ended_at": at,
	}}

	result, err := r.MongoCollection.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrNoActiveSession
	}
	return nil
}

func (r *FollowMeRepo) StopSession(ctx context.Context, userID string, at time.Time) (*model.FollowMeSession, error) {
	filter := bson.M{"user_id": userID, "status": model.FollowMeActive}
	update := bson.M{"$set": bson.M{
		"status":   model.FollowMeStopped,
		"ended_at": at,
	}}

	var session model.FollowMeSession
	err := r.MongoCollection.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&session)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrNoActiveSession
		}
		return nil, err
	}
	return &session, nil
}
