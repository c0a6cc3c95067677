package model

import "time"

type FollowMeStatus string

const (
	FollowMeActive  FollowMeStatus = "active"
	FollowMeStopped FollowMeStatus = "stopped"
	FollowMeExpired FollowMeStatus = "expired"
)

type Viewer struct {
	ContactID string    `bson:"contact_id" json:"contact_id"`
	AddedAt   time.Time `bson:"added_at" json:"added_at"`
}

type TrackPoint struct {
	Point     GeoPoint  `bson:"point" json:"point"`
	Address   string    `bson:"address,omitempty" json:"address,omitempty"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}

type FollowMeSettings struct {
	UpdateIntervalSeconds int  `bson:"update_interval_seconds" json:"update_interval_seconds"`
	MaxHistoryPoints      int  `bson:"max_history_points" json:"max_history_points"`
	SharePreciseAddress   bool `bson:"share_precise_address" json:"share_precise_address"`
}

type FollowMeSession struct {
	SessionID       string           `bson:"_id" json:"id"`
	UserID          string           `bson:"user_id" json:"user_id"`
	Status          FollowMeStatus   `bson:"status" json:"status"`
	SharingWith     []Viewer         `bson:"sharing_with" json:"sharing_with"`
	CurrentLocation Location         `bson:"current_location" json:"current_location"`
	History         []TrackPoint     `bson:"history" json:"history"`
	Settings        FollowMeSettings `bson:"settings" json:"settings"`
	ExpiresAt       time.Time        `bson:"expires_at" json:"expires_at"`
	StartedAt       time.Time        `bson:"started_at" json:"started_at"`
	EndedAt         time.Time        `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}
