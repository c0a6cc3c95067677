package model

import "time"

// GeoPoint is a GeoJSON point, stored as [longitude, latitude] so the
// 2dsphere indexes can use it directly.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`
	Coordinates []float64 `bson:"coordinates" json:"coordinates"`
}

func NewGeoPoint(latitude, longitude float64) GeoPoint {
	return GeoPoint{
		Type:        "Point",
		Coordinates: []float64{longitude, latitude},
	}
}

func (p GeoPoint) Longitude() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[0]
}

func (p GeoPoint) Latitude() float64 {
	if len(p.Coordinates) < 2 {
		return 0
	}
	return p.Coordinates[1]
}

func (p GeoPoint) IsZero() bool {
	return len(p.Coordinates) < 2 || (p.Coordinates[0] == 0 && p.Coordinates[1] == 0)
}

// Location is a point plus the optional human-readable context a client
// may attach to it.
type Location struct {
	Point      GeoPoint  `bson:"point" json:"point"`
	Address    string    `bson:"address,omitempty" json:"address,omitempty"`
	RecordedAt time.Time `bson:"recorded_at" json:"recorded_at"`
}
