package model

import "time"

type GuardianStatus string
type CheckInStatus string

const (
	GuardianActive    GuardianStatus = "active"
	GuardianCompleted GuardianStatus = "completed"
	GuardianCancelled GuardianStatus = "cancelled"

	CheckInOnTime   CheckInStatus = "on_time"
	CheckInDelayed  CheckInStatus = "delayed"
	CheckInOffRoute CheckInStatus = "off_route"
)

// TrustedContactRef is a weak reference to a contact invited to watch a
// session; the contact record itself lives on the owner's user document.
type TrustedContactRef struct {
	ContactID string `bson:"contact_id" json:"contact_id"`
	Notified  bool   `bson:"notified" json:"notified"`
}

type CheckIn struct {
	Location  Location      `bson:"location" json:"location"`
	Status    CheckInStatus `bson:"status" json:"status"`
	Message   string        `bson:"message,omitempty" json:"message,omitempty"`
	Timestamp time.Time     `bson:"timestamp" json:"timestamp"`
}

type RouteDeviation struct {
	Location       Location  `bson:"location" json:"location"`
	DistanceMeters float64   `bson:"distance_meters" json:"distance_meters"`
	Timestamp      time.Time `bson:"timestamp" json:"timestamp"`
}

// SessionAlert records one notification batch sent out on behalf of the
// session (start, deviation, arrival).
type SessionAlert struct {
	Kind      string    `bson:"kind" json:"kind"`
	Attempted int       `bson:"attempted" json:"attempted"`
	Delivered int       `bson:"delivered" json:"delivered"`
	SentAt    time.Time `bson:"sent_at" json:"sent_at"`
}

type GuardianSession struct {
	SessionID        string              `bson:"_id" json:"id"`
	UserID           string              `bson:"user_id" json:"user_id"`
	Destination      string              `bson:"destination" json:"destination"`
	DestinationPoint GeoPoint            `bson:"destination_point" json:"destination_point"`
	StartPoint       GeoPoint            `bson:"start_point" json:"start_point"`
	EstimatedArrival time.Time           `bson:"estimated_arrival" json:"estimated_arrival"`
	TrustedContacts  []TrustedContactRef `bson:"trusted_contacts" json:"trusted_contacts"`
	CheckIns         []CheckIn           `bson:"check_ins" json:"check_ins"`
	Deviations       []RouteDeviation    `bson:"deviations,omitempty" json:"deviations,omitempty"`
	AlertsSent       []SessionAlert      `bson:"alerts_sent,omitempty" json:"alerts_sent,omitempty"`
	Status           GuardianStatus      `bson:"status" json:"status"`
	StartedAt        time.Time           `bson:"started_at" json:"started_at"`
	EndedAt          time.Time           `bson:"ended_at,omitempty" json:"ended_at,omitempty"`
}
