package dto

import (
	"time"

	"campusguard/model"
)

type StartGuardianRequest struct {
	Destination     string          `json:"destination" binding:"required"`
	DestinationLat  float64         `json:"destination_latitude" binding:"min=-90,max=90"`
	DestinationLng  float64         `json:"destination_longitude" binding:"min=-180,max=180"`
	CurrentLocation LocationRequest `json:"current_location" binding:"required"`
	DurationMinutes int             `json:"duration_minutes" binding:"required,min=1,max=720"`
	ContactIDs      []string        `json:"contact_ids,omitempty"`
}

type GuardianLocationRequest struct {
	Location LocationRequest `json:"location" binding:"required"`
	Status   string          `json:"status,omitempty" binding:"omitempty,checkin_status"`
	Message  string          `json:"message,omitempty"`
}

type GuardianSessionResponse struct {
	ID               string                    `json:"id"`
	UserID           string                    `json:"user_id"`
	Destination      string                    `json:"destination"`
	Status           string                    `json:"status"`
	EstimatedArrival time.Time                 `json:"estimated_arrival"`
	TrustedContacts  []model.TrustedContactRef `json:"trusted_contacts"`
	CheckIns         []model.CheckIn           `json:"check_ins"`
	Deviations       []model.RouteDeviation    `json:"deviations,omitempty"`
	AlertsSent       []model.SessionAlert      `json:"alerts_sent,omitempty"`
	StartedAt        time.Time                 `json:"started_at"`
	EndedAt          *time.Time                `json:"ended_at,omitempty"`
}

func ToGuardianSessionResponse(session *model.GuardianSession) GuardianSessionResponse {
	resp := GuardianSessionResponse{
		ID:               session.SessionID,
		UserID:           session.UserID,
		Destination:      session.Destination,
		Status:           string(session.Status),
		EstimatedArrival: session.EstimatedArrival,
		TrustedContacts:  session.TrustedContacts,
		CheckIns:         session.CheckIns,
		Deviations:       session.Deviations,
		AlertsSent:       session.AlertsSent,
		StartedAt:        session.StartedAt,
	}
	if !session.EndedAt.IsZero() {
		endedAt := session.EndedAt
		resp.EndedAt = &endedAt
	}
	return resp
}
