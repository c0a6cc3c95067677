package model

import "time"

type RiskLevel string

const (
	RiskLow    RiskLevel = "low"
	RiskMedium RiskLevel = "medium"
	RiskHigh   RiskLevel = "high"
)

// HazardZone is a known-unsafe route segment or area reported by security
// staff. FollowMe proximity checks query these by radius.
type HazardZone struct {
	HazardID     string    `bson:"_id" json:"id"`
	Name         string    `bson:"name" json:"name"`
	Description  string    `bson:"description,omitempty" json:"description,omitempty"`
	Center       GeoPoint  `bson:"center" json:"center"`
	RadiusMeters float64   `bson:"radius_meters" json:"radius_meters"`
	RiskLevel    RiskLevel `bson:"risk_level" json:"risk_level"`
	Active       bool      `bson:"active" json:"active"`
	ReportedBy   string    `bson:"reported_by,omitempty" json:"reported_by,omitempty"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt    time.Time `bson:"updated_at" json:"updated_at"`
}

// NearbyHazard is a hazard zone plus its distance from the queried point,
// as returned by the radius query (ordered by increasing distance).
type NearbyHazard struct {
	HazardZone     `bson:",inline"`
	DistanceMeters float64 `bson:"distance_meters" json:"distance_meters"`
}
