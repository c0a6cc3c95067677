package dto

import (
	"time"

	"campusguard/model"
)

type TriggerSOSRequest struct {
	// UserID is only honored when the request carries no valid token; an
	// authenticated caller's id always comes from the token.
	UserID   string           `json:"user_id,omitempty"`
	Message  string           `json:"message,omitempty"`
	Severity string           `json:"severity,omitempty" binding:"omitempty,severity"`
	Source   string           `json:"source,omitempty" binding:"omitempty,oneof=manual auto hidden-gesture"`
	Location *LocationRequest `json:"location,omitempty"`
}

type ResolveSOSRequest struct {
	Notes string `json:"notes,omitempty"`
}

type SOSAlertResponse struct {
	ID              string                      `json:"id"`
	UserID          string                      `json:"user_id"`
	Message         string                      `json:"message,omitempty"`
	Severity        string                      `json:"severity"`
	Status          string                      `json:"status"`
	Source          string                      `json:"source"`
	Location        LocationResponse            `json:"location"`
	MediaCaptures   []model.MediaCapture        `json:"media_captures,omitempty"`
	Notifications   []model.ContactNotification `json:"notifications,omitempty"`
	ResolvedBy      string                      `json:"resolved_by,omitempty"`
	ResolvedAt      *time.Time                  `json:"resolved_at,omitempty"`
	ResolutionNotes string                      `json:"resolution_notes,omitempty"`
	CreatedAt       time.Time                   `json:"created_at"`
}

func ToSOSAlertResponse(alert *model.SOSAlert) SOSAlertResponse {
	resp := SOSAlertResponse{
		ID:              alert.AlertID,
		UserID:          alert.UserID,
		Message:         alert.Message,
		Severity:        string(alert.Severity),
		Status:          string(alert.Status),
		Source:          string(alert.TriggerSource),
		Location:        ToLocationResponse(alert.Location),
		MediaCaptures:   alert.MediaCaptures,
		Notifications:   alert.Notifications,
		ResolvedBy:      alert.ResolvedBy,
		ResolutionNotes: alert.ResolutionNotes,
		CreatedAt:       alert.CreatedAt,
	}
	if !alert.ResolvedAt.IsZero() {
		resolvedAt := alert.ResolvedAt
		resp.ResolvedAt = &resolvedAt
	}
	return resp
}

func ToSOSAlertResponses(alerts []*model.SOSAlert) []SOSAlertResponse {
	responses := make([]SOSAlertResponse, len(alerts))
	for i, alert := range alerts {
		responses[i] = ToSOSAlertResponse(alert)
	}
	return responses
}
