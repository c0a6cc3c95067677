package usecase

import "context"

// Event names pushed over the pub/sub channel.
const (
	EventSOSAlert       = "sos-alert"
	EventSOSResolved    = "sos-resolved"
	EventFollowMeUpdate = "followMeUpdate"
	EventRouteWarning   = "routeWarning"
	EventGuardianAlert  = "guardianAlert"
)

// Publisher pushes real-time events to topic groups: the shared security
// staff group, and per-user groups that viewers subscribe to. Passed in
// explicitly so components never reach into a global socket registry.
type Publisher interface {
	PublishToSecurity(ctx context.Context, event string, payload interface{}) error
	PublishToUser(ctx context.Context, userID string, event string, payload interface{}) error
}
