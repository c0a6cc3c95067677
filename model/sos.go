package model

import "time"

type AlertSeverity string
type AlertStatus string
type TriggerSource string
type EnrichmentStatus string

const (
	SeverityLow      AlertSeverity = "low"
	SeverityMedium   AlertSeverity = "medium"
	SeverityHigh     AlertSeverity = "high"
	SeverityCritical AlertSeverity = "critical"

	AlertActive   AlertStatus = "active"
	AlertResolved AlertStatus = "resolved"

	TriggerManual        TriggerSource = "manual"
	TriggerAuto          TriggerSource = "auto"
	TriggerHiddenGesture TriggerSource = "hidden-gesture"

	EnrichmentPending EnrichmentStatus = "pending"
	EnrichmentDone    EnrichmentStatus = "done"
)

// MediaCapture is a reference to a photo/video the client uploads after the
// alert is created. Records are attached as placeholders by the enrichment
// worker and filled in by the (external) upload path.
type MediaCapture struct {
	CaptureID   string    `bson:"capture_id" json:"capture_id"`
	Kind        string    `bson:"kind" json:"kind"` // photo or video
	Status      string    `bson:"status" json:"status"`
	RequestedAt time.Time `bson:"requested_at" json:"requested_at"`
}

// ContactNotification is the per-contact delivery record persisted onto the
// alert after fan-out settles.
type ContactNotification struct {
	ContactID  string    `bson:"contact_id" json:"contact_id"`
	Channel    string    `bson:"channel" json:"channel"` // push, sms or email
	Status     string    `bson:"status" json:"status"`   // delivered or failed
	NotifiedAt time.Time `bson:"notified_at" json:"notified_at"`
}

type SOSAlert struct {
	AlertID          string                `bson:"_id" json:"id"`
	UserID           string                `bson:"user_id" json:"user_id"`
	Message          string                `bson:"message,omitempty" json:"message,omitempty"`
	Severity         AlertSeverity         `bson:"severity" json:"severity"`
	Location         Location              `bson:"location" json:"location"`
	TriggerSource    TriggerSource         `bson:"trigger_source" json:"trigger_source"`
	Status           AlertStatus           `bson:"status" json:"status"`
	DeviceInfo       string                `bson:"device_info,omitempty" json:"device_info,omitempty"`
	MediaCaptures    []MediaCapture        `bson:"media_captures,omitempty" json:"media_captures,omitempty"`
	Notifications    []ContactNotification `bson:"notifications,omitempty" json:"notifications,omitempty"`
	EnrichmentStatus EnrichmentStatus      `bson:"enrichment_status" json:"enrichment_status"`
	ResolvedBy       string                `bson:"resolved_by,omitempty" json:"resolved_by,omitempty"`
	ResolvedAt       time.Time             `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
	ResolutionNotes  string                `bson:"resolution_notes,omitempty" json:"resolution_notes,omitempty"`
	CreatedAt        time.Time             `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time             `bson:"updated_at" json:"updated_at"`
}
