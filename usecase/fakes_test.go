package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"campusguard/model"
)

// In-memory fakes for the store and transport capabilities. Kept minimal:
// each fake enforces only the contract the real repository guarantees.

type fakeNotifier struct {
	name    string
	fail    map[string]bool // contact ids whose sends should fail
	deliver func(contact model.EmergencyContact) bool

	mu    sync.Mutex
	sends []string // contact ids in send order
}

func (f *fakeNotifier) Channel() string { return f.name }

func (f *fakeNotifier) CanDeliver(contact model.EmergencyContact) bool {
	if f.deliver != nil {
		return f.deliver(contact)
	}
	return true
}

func (f *fakeNotifier) Send(ctx context.Context, contact model.EmergencyContact, msg NotificationMessage) error {
	f.mu.Lock()
	f.sends = append(f.sends, contact.ContactID)
	f.mu.Unlock()
	if f.fail[contact.ContactID] {
		return fmt.Errorf("send to %s failed", contact.ContactID)
	}
	return nil
}

type publishedEvent struct {
	UserID  string // empty for the security channel
	Event   string
	Payload interface{}
}

type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *fakePublisher) PublishToSecurity(ctx context.Context, event string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Event: event, Payload: payload})
	return nil
}

func (p *fakePublisher) PublishToUser(ctx context.Context, userID string, event string, payload interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{UserID: userID, Event: event, Payload: payload})
	return nil
}

func (p *fakePublisher) byEvent(event string) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, e := range p.events {
		if e.Event == event {
			out = append(out, e)
		}
	}
	return out
}

type fakeQueue struct {
	ids []string
}

func (q *fakeQueue) Enqueue(alertID string) { q.ids = append(q.ids, alertID) }

type fakeUserStore struct {
	users  map[string]*model.User
	nearby []*model.User
}

func (s *fakeUserStore) GetUser(ctx context.Context, userID string) (*model.User, error) {
	u, ok := s.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return u, nil
}

func (s *fakeUserStore) FindNearbyOptedIn(ctx context.Context, point model.GeoPoint, radiusMeters float64, excludeUserID string) ([]*model.User, error) {
	return s.nearby, nil
}

func (s *fakeUserStore) UpdateLastKnownLocation(ctx context.Context, userID string, point model.GeoPoint) error {
	if u, ok := s.users[userID]; ok {
		u.LastKnownLocation = point
	}
	return nil
}

type fakeAlertStore struct {
	alerts map[string]*model.SOSAlert
}

func newFakeAlertStore() *fakeAlertStore {
	return &fakeAlertStore{alerts: map[string]*model.SOSAlert{}}
}

func (s *fakeAlertStore) CreateAlert(ctx context.Context, alert *model.SOSAlert) error {
	s.alerts[alert.AlertID] = alert
	return nil
}

func (s *fakeAlertStore) GetAlert(ctx context.Context, alertID string) (*model.SOSAlert, error) {
	a, ok := s.alerts[alertID]
	if !ok {
		return nil, ErrAlertNotFound
	}
	return a, nil
}

func (s *fakeAlertStore) ResolveAlert(ctx context.Context, alertID, resolverID, notes string, at time.Time) (*model.SOSAlert, error) {
	a, ok := s.alerts[alertID]
	if !ok {
		return nil, ErrAlertNotFound
	}
	if a.Status == model.AlertResolved {
		return nil, ErrAlreadyResolved
	}
	a.Status = model.AlertResolved
	a.ResolvedBy = resolverID
	a.ResolvedAt = at
	a.ResolutionNotes = notes
	return a, nil
}

func (s *fakeAlertStore) AttachMediaCaptures(ctx context.Context, alertID string, captures []model.MediaCapture) error {
	a, ok := s.alerts[alertID]
	if !ok {
		return ErrAlertNotFound
	}
	a.MediaCaptures = append(a.MediaCaptures, captures...)
	return nil
}

func (s *fakeAlertStore) RecordNotifications(ctx context.Context, alertID string, records []model.ContactNotification) error {
	a, ok := s.alerts[alertID]
	if !ok {
		return ErrAlertNotFound
	}
	a.Notifications = append(a.Notifications, records...)
	a.EnrichmentStatus = model.EnrichmentDone
	return nil
}

func (s *fakeAlertStore) PendingEnrichment(ctx context.Context, olderThan time.Time) ([]*model.SOSAlert, error) {
	var out []*model.SOSAlert
	for _, a := range s.alerts {
		if a.EnrichmentStatus == model.EnrichmentPending && a.CreatedAt.Before(olderThan) {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *fakeAlertStore) ActiveAlerts(ctx context.Context) ([]*model.SOSAlert, error) {
	var out []*model.SOSAlert
	for _, a := range s.alerts {
		if a.Status == model.AlertActive {
			out = append(out, a)
		}
	}
	return out, nil
}

type fakeGuardianStore struct {
	sessions map[string]*model.GuardianSession
}

func newFakeGuardianStore() *fakeGuardianStore {
	return &fakeGuardianStore{sessions: map[string]*model.GuardianSession{}}
}

func (s *fakeGuardianStore) CreateSession(ctx context.Context, session *model.GuardianSession) error {
	for _, existing := range s.sessions {
		if existing.UserID == session.UserID && existing.Status == model.GuardianActive {
			return ErrSessionAlreadyActive
		}
	}
	s.sessions[session.SessionID] = session
	return nil
}

func (s *fakeGuardianStore) GetActiveSession(ctx context.Context, sessionID, userID string) (*model.GuardianSession, error) {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.UserID != userID || sess.Status != model.GuardianActive {
		return nil, ErrSessionNotFound
	}
	copied := *sess
	return &copied, nil
}

func (s *fakeGuardianStore) AppendCheckIn(ctx context.Context, sessionID string, checkIn model.CheckIn) error {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.Status != model.GuardianActive {
		return ErrSessionNotFound
	}
	sess.CheckIns = append(sess.CheckIns, checkIn)
	return nil
}

func (s *fakeGuardianStore) AppendDeviation(ctx context.Context, sessionID string, deviation model.RouteDeviation) error {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.Status != model.GuardianActive {
		return ErrSessionNotFound
	}
	sess.Deviations = append(sess.Deviations, deviation)
	return nil
}

func (s *fakeGuardianStore) RecordAlert(ctx context.Context, sessionID string, alert model.SessionAlert) error {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	sess.AlertsSent = append(sess.AlertsSent, alert)
	return nil
}

func (s *fakeGuardianStore) MarkContactsNotified(ctx context.Context, sessionID string) error {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	for i := range sess.TrustedContacts {
		sess.TrustedContacts[i].Notified = true
	}
	return nil
}

func (s *fakeGuardianStore) CompleteSession(ctx context.Context, sessionID, userID string, endedAt time.Time) (*model.GuardianSession, error) {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.UserID != userID || sess.Status != model.GuardianActive {
		return nil, ErrSessionNotFound
	}
	sess.Status = model.GuardianCompleted
	sess.EndedAt = endedAt
	return sess, nil
}

func (s *fakeGuardianStore) CancelSession(ctx context.Context, sessionID, userID string, endedAt time.Time) (*model.GuardianSession, error) {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.UserID != userID || sess.Status != model.GuardianActive {
		return nil, ErrSessionNotFound
	}
	sess.Status = model.GuardianCancelled
	sess.EndedAt = endedAt
	return sess, nil
}

type fakeFollowMeStore struct {
	sessions map[string]*model.FollowMeSession
}

func newFakeFollowMeStore() *fakeFollowMeStore {
	return &fakeFollowMeStore{sessions: map[string]*model.FollowMeSession{}}
}

func (s *fakeFollowMeStore) CreateSession(ctx context.Context, session *model.FollowMeSession) error {
	for _, existing := range s.sessions {
		if existing.UserID == session.UserID && existing.Status == model.FollowMeActive {
			return ErrSessionAlreadyActive
		}
	}
	s.sessions[session.SessionID] = session
	return nil
}

func (s *fakeFollowMeStore) GetActiveByUser(ctx context.Context, userID string) (*model.FollowMeSession, error) {
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.Status == model.FollowMeActive {
			copied := *sess
			copied.History = append([]model.TrackPoint(nil), sess.History...)
			return &copied, nil
		}
	}
	return nil, ErrNoActiveSession
}

func (s *fakeFollowMeStore) AppendLocation(ctx context.Context, sessionID string, location model.Location, point model.TrackPoint, historyCap int) error {
	sess, ok := s.sessions[sessionID]
	if !ok || sess.Status != model.FollowMeActive {
		return ErrSessionNotFound
	}
	sess.CurrentLocation = location
	sess.History = append(sess.History, point)
	if historyCap > 0 && len(sess.History) > historyCap {
		sess.History = sess.History[len(sess.History)-historyCap:]
	}
	return nil
}

func (s *fakeFollowMeStore) ExpireSession(ctx context.Context, sessionID string, at time.Time) error {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return ErrSessionNotFound
	}
	sess.Status = model.FollowMeExpired
	sess.EndedAt = at
	return nil
}

func (s *fakeFollowMeStore) StopSession(ctx context.Context, userID string, at time.Time) (*model.FollowMeSession, error) {
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.Status == model.FollowMeActive {
			sess.Status = model.FollowMeStopped
			sess.EndedAt = at
			return sess, nil
		}
	}
	return nil, ErrNoActiveSession
}

type fakeHazardStore struct {
	hazards []model.NearbyHazard
	err     error
}

func (s *fakeHazardStore) FindNearby(ctx context.Context, point model.GeoPoint, radiusMeters float64) ([]model.NearbyHazard, error) {
	return s.hazards, s.err
}
