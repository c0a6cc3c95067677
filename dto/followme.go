package dto

import (
	"time"

	"campusguard/model"
)

type StartFollowMeRequest struct {
	Location        LocationRequest   `json:"location" binding:"required"`
	DurationSeconds int               `json:"duration_seconds" binding:"required,min=60,max=86400"`
	ShareWith       []string          `json:"share_with,omitempty"`
	Settings        *FollowMeSettings `json:"settings,omitempty"`
}

type FollowMeSettings struct {
	UpdateIntervalSeconds int  `json:"update_interval_seconds" binding:"omitempty,min=5,max=300"`
	MaxHistoryPoints      int  `json:"max_history_points" binding:"omitempty,min=1,max=1000"`
	SharePreciseAddress   bool `json:"share_precise_address"`
}

func (s *FollowMeSettings) ToModel() *model.FollowMeSettings {
	if s == nil {
		return nil
	}
	return &model.FollowMeSettings{
		UpdateIntervalSeconds: s.UpdateIntervalSeconds,
		MaxHistoryPoints:      s.MaxHistoryPoints,
		SharePreciseAddress:   s.SharePreciseAddress,
	}
}

type FollowMeLocationRequest struct {
	Location LocationRequest `json:"location" binding:"required"`
}

type FollowMeSessionResponse struct {
	ID              string                 `json:"id"`
	UserID          string                 `json:"user_id"`
	Status          string                 `json:"status"`
	SharingWith     []model.Viewer         `json:"sharing_with"`
	CurrentLocation LocationResponse       `json:"current_location"`
	History         []model.TrackPoint     `json:"history"`
	Settings        model.FollowMeSettings `json:"settings"`
	ExpiresAt       time.Time              `json:"expires_at"`
	StartedAt       time.Time              `json:"started_at"`
	EndedAt         *time.Time             `json:"ended_at,omitempty"`
}

type FollowMeUpdateResponse struct {
	Session FollowMeSessionResponse `json:"session"`
	Hazards []model.NearbyHazard    `json:"hazards,omitempty"`
}

func ToFollowMeSessionResponse(session *model.FollowMeSession) FollowMeSessionResponse {
	resp := FollowMeSessionResponse{
		ID:              session.SessionID,
		UserID:          session.UserID,
		Status:          string(session.Status),
		SharingWith:     session.SharingWith,
		CurrentLocation: ToLocationResponse(session.CurrentLocation),
		History:         session.History,
		Settings:        session.Settings,
		ExpiresAt:       session.ExpiresAt,
		StartedAt:       session.StartedAt,
	}
	if !session.EndedAt.IsZero() {
		endedAt := session.EndedAt
		resp.EndedAt = &endedAt
	}
	return resp
}
