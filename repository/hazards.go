package repository

import (
	"context"
	"os"
	"time"

	"campusguard/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type HazardRepo struct {
	MongoCollection *mongo.Collection
}

func GetHazardRepo(client *mongo.Client) *HazardRepo {
	return &HazardRepo{
		MongoCollection: client.Database(os.Getenv("MONGO_DB")).Collection("hazard_zones"),
	}
}

func (r *HazardRepo) CreateHazard(ctx context.Context, hazard *model.HazardZone) error {
	hazard.CreatedAt = time.Now()
	hazard.UpdatedAt = hazard.CreatedAt

	_, err := r.MongoCollection.InsertOne(ctx, hazard)
	return err
}

func (r *HazardRepo) DeactivateHazard(ctx context.Context, hazardID string) error {
	_, err := r.MongoCollection.UpdateOne(ctx,
		bson.M{"_id": hazardID},
		bson.M{"$set": bson.M{"active": false, "updated_at": time.Now()}})
	return err
}

// FindNearby returns active hazard zones within radiusMeters of the point,
// ordered by increasing distance with the computed distance attached.
// $geoNear sorts by distance; equal distances keep their natural order,
// which is deterministic for a fixed data set.
func (r *HazardRepo) FindNearby(ctx context.Context, point model.GeoPoint, radiusMeters float64) ([]model.NearbyHazard, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$geoNear", Value: bson.M{
			"near":          point,
			"distanceField": "distance_meters",
			"maxDistance":   radiusMeters,
			"query":         bson.M{"active": true},
			"spherical":     true,
		}}},
	}

	cursor, err := r.MongoCollection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var hazards []model.NearbyHazard
	if err := cursor.All(ctx, &hazards); err != nil {
		return nil, err
	}
	return hazards, nil
}
