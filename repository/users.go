package repository

import (
	"context"
	"os"

	"campusguard/model"
	"campusguard/usecase"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type UserRepo struct {
	MongoCollection *mongo.Collection
}

func GetUserRepo(client *mongo.Client) *UserRepo {
	return &UserRepo{
		MongoCollection: client.Database(os.Getenv("MONGO_DB")).Collection(os.Getenv("USERS_COLLECTION")),
	}
}

func (r *UserRepo) GetUser(ctx context.Context, userID string) (*model.User, error) {
	var user model.User
	err := r.MongoCollection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&user)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, usecase.ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// FindNearbyOptedIn returns users within radiusMeters of the point whose
// preferences opt them into nearby safety alerts, ordered by increasing
// distance. Ties at equal distance come back in index order, which is
// stable for a fixed data set.
func (r *UserRepo) FindNearbyOptedIn(ctx context.Context, point model.GeoPoint, radiusMeters float64, excludeUserID string) ([]*model.User, error) {
	filter := bson.M{
		"user_id":                      bson.M{"$ne": excludeUserID},
		"preferences.nearby_alerts_opt_in": true,
		"last_known_location": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    point,
				"$maxDistance": radiusMeters,
			},
		},
	}

	cursor, err := r.MongoCollection.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []*model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

// UpdateLastKnownLocation refreshes the point used by the nearby-user
// query shape. Called on every FollowMe location push.
func (r *UserRepo) UpdateLastKnownLocation(ctx context.Context, userID string, point model.GeoPoint) error {
	result, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{"$set": bson.M{"last_known_location": point}})
	if err != nil {
		return err
	}
	if result.MatchedCount == 0 {
		return usecase.ErrUserNotFound
	}
	return nil
}
