package dto

import (
	"time"

	"campusguard/model"
)

// LocationRequest is the wire shape clients send for a position. Latitude
// and longitude are plain numbers; the GeoJSON ordering is an internal
// storage concern.
type LocationRequest struct {
	Latitude  float64 `json:"latitude" binding:"required_with=Longitude,min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"min=-180,max=180"`
	Address   string  `json:"address,omitempty"`
}

func (l *LocationRequest) ToModel() model.Location {
	return model.Location{
		Point:      model.NewGeoPoint(l.Latitude, l.Longitude),
		Address:    l.Address,
		RecordedAt: time.Now(),
	}
}

type LocationResponse struct {
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	Address    string    `json:"address,omitempty"`
	RecordedAt time.Time `json:"recorded_at"`
}

func ToLocationResponse(loc model.Location) LocationResponse {
	return LocationResponse{
		Latitude:   loc.Point.Latitude(),
		Longitude:  loc.Point.Longitude(),
		Address:    loc.Address,
		RecordedAt: loc.RecordedAt,
	}
}
