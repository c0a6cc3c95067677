package model

import "time"

// EmergencyContact is a person in the user's trusted circle. Which delivery
// channels fan-out attempts for a contact is decided by which of these
// fields are populated.
type EmergencyContact struct {
	ContactID            string `bson:"contact_id" json:"contact_id"`
	Name                 string `bson:"name" json:"name"`
	Relationship         string `bson:"relationship,omitempty" json:"relationship,omitempty"`
	Phone                string `bson:"phone,omitempty" json:"phone,omitempty"`
	Email                string `bson:"email,omitempty" json:"email,omitempty"`
	DeviceToken          string `bson:"device_token,omitempty" json:"device_token,omitempty"`
	NotificationsEnabled bool   `bson:"notifications_enabled" json:"notifications_enabled"`
}

type NotificationPreferences struct {
	NearbyAlertsOptIn bool `bson:"nearby_alerts_opt_in" json:"nearby_alerts_opt_in"`
}

type User struct {
	UserID            string                  `bson:"user_id" json:"user_id"`
	Username          string                  `bson:"username" json:"username"`
	Email             string                  `bson:"email" json:"email"`
	Phone             string                  `bson:"phone,omitempty" json:"phone,omitempty"`
	EmergencyContacts []EmergencyContact      `bson:"emergency_contacts,omitempty" json:"emergency_contacts,omitempty"`
	Preferences       NotificationPreferences `bson:"preferences" json:"preferences"`
	LastKnownLocation GeoPoint                `bson:"last_known_location,omitempty" json:"last_known_location,omitempty"`
	CreatedAt         time.Time               `bson:"created_at" json:"created_at"`
}

// TrustedCircleIDs returns the contact ids a viewer list may be drawn from.
func (u *User) TrustedCircleIDs() map[string]bool {
	ids := make(map[string]bool, len(u.EmergencyContacts))
	for _, c := range u.EmergencyContacts {
		ids[c.ContactID] = true
	}
	return ids
}

// ContactByID looks up a trusted contact on the user document.
func (u *User) ContactByID(contactID string) (EmergencyContact, bool) {
	for _, c := range u.EmergencyContacts {
		if c.ContactID == contactID {
			return c, true
		}
	}
	return EmergencyContact{}, false
}
