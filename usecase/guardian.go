package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"campusguard/model"
	"campusguard/utils"

	"go.uber.org/zap"
)

// GuardianStore persists escort sessions. CreateSession must fail with
// ErrSessionAlreadyActive when the user already has an active session; the
// mongo implementation enforces that with a partial unique index so no
// read-then-write window exists.
type GuardianStore interface {
	CreateSession(ctx context.Context, session *model.GuardianSession) error
	GetActiveSession(ctx context.Context, sessionID, userID string) (*model.GuardianSession, error)
	AppendCheckIn(ctx context.Context, sessionID string, checkIn model.CheckIn) error
	AppendDeviation(ctx context.Context, sessionID string, deviation model.RouteDeviation) error
	RecordAlert(ctx context.Context, sessionID string, alert model.SessionAlert) error
	MarkContactsNotified(ctx context.Context, sessionID string) error
	CompleteSession(ctx context.Context, sessionID, userID string, endedAt time.Time) (*model.GuardianSession, error)
	CancelSession(ctx context.Context, sessionID, userID string, endedAt time.Time) (*model.GuardianSession, error)
}

// RouteDistanceFunc reports how far a location is from the planned route.
// Implementations must be deterministic for a fixed (route, location) pair.
type RouteDistanceFunc func(start, destination, location model.GeoPoint) float64

type StartGuardianInput struct {
	UserID           string
	Destination      string
	DestinationPoint model.GeoPoint
	CurrentLocation  model.Location
	DurationMinutes  int
	ContactIDs       []string
}

type UpdateGuardianInput struct {
	SessionID string
	UserID    string
	Location  model.Location
	Status    model.CheckInStatus
	Message   string
}

type GuardianService struct {
	Sessions           GuardianStore
	Users              UserStore
	Fanout             *NotificationFanout
	Publisher          Publisher
	RouteDistance      RouteDistanceFunc
	DeviationThreshold float64 // meters
	Logger             *zap.Logger

	// OnDeviation, when set, is called for every detected deviation with
	// the cross-track distance in meters.
	OnDeviation func(distanceMeters float64)
}

// Start opens an escort session, seeds the check-in log with the caller's
// current position and notifies every invited contact that has
// notifications enabled.
func (s *GuardianService) Start(ctx context.Context, input StartGuardianInput) (*model.GuardianSession, error) {
	if strings.TrimSpace(input.UserID) == "" || strings.TrimSpace(input.Destination) == "" {
		return nil, fmt.Errorf("%w: user id and destination are required", ErrValidation)
	}
	if input.DurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: estimated duration must be positive", ErrValidation)
	}

	user, err := s.Users.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if input.CurrentLocation.RecordedAt.IsZero() {
		input.CurrentLocation.RecordedAt = now
	}

	contacts := make([]model.TrustedContactRef, 0, len(input.ContactIDs))
	recipients := make([]model.EmergencyContact, 0, len(input.ContactIDs))
	for _, id := range input.ContactIDs {
		contact, ok := user.ContactByID(id)
		if !ok {
			continue
		}
		contacts = append(contacts, model.TrustedContactRef{ContactID: id})
		recipients = append(recipients, contact)
	}

	session := &model.GuardianSession{
		SessionID:        utils.GenerateID(),
		UserID:           input.UserID,
		Destination:      input.Destination,
		DestinationPoint: input.DestinationPoint,
		StartPoint:       input.CurrentLocation.Point,
		EstimatedArrival: now.Add(time.Duration(input.DurationMinutes) * time.Minute),
		TrustedContacts:  contacts,
		CheckIns: []model.CheckIn{{
			Location:  input.CurrentLocation,
			Status:    model.CheckInOnTime,
			Timestamp: now,
		}},
		Status:    model.GuardianActive,
		StartedAt: now,
	}

	if err := s.Sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	msg := NotificationMessage{
		Title: fmt.Sprintf("%s started a Guardian session", user.Username),
		Body: fmt.Sprintf("%s is walking to %s, expected to arrive by %s. You'll be alerted if anything looks wrong.",
			user.Username, session.Destination, session.EstimatedArrival.Format(time.Kitchen)),
		Priority: PriorityNormal,
	}
	result := s.Fanout.Notify(ctx, recipients, msg)

	s.recordBatch(ctx, session, "session-started", result)
	if result.Attempted() > 0 {
		if err := s.Sessions.MarkContactsNotified(ctx, session.SessionID); err != nil {
			s.Logger.Warn("failed to mark contacts notified",
				zap.String("session_id", session.SessionID), zap.Error(err))
		} else {
			for i := range session.TrustedContacts {
				session.TrustedContacts[i].Notified = true
			}
		}
	}

	s.Logger.Info("guardian session started",
		zap.String("session_id", session.SessionID),
		zap.String("user_id", session.UserID),
		zap.String("destination", session.Destination),
		zap.Int("contacts", len(contacts)))

	return session, nil
}

// UpdateLocation appends a check-in and runs deviation detection against
// the planned route. A significant deviation appends exactly one deviation
// entry and triggers exactly one urgent notification batch.
func (s *GuardianService) UpdateLocation(ctx context.Context, input UpdateGuardianInput) (*model.GuardianSession, error) {
	session, err := s.Sessions.GetActiveSession(ctx, input.SessionID, input.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if input.Location.RecordedAt.IsZero() {
		input.Location.RecordedAt = now
	}
	status := input.Status
	if status == "" {
		status = model.CheckInOnTime
	}

	checkIn := model.CheckIn{
		Location:  input.Location,
		Status:    status,
		Message:   input.Message,
		Timestamp: now,
	}
	if err := s.Sessions.AppendCheckIn(ctx, session.SessionID, checkIn); err != nil {
		return nil, fmt.Errorf("failed to append check-in: %w", err)
	}
	session.CheckIns = append(session.CheckIns, checkIn)

	distance := s.RouteDistance(session.StartPoint, session.DestinationPoint, input.Location.Point)
	if distance > s.DeviationThreshold {
		if s.OnDeviation != nil {
			s.OnDeviation(distance)
		}
		if err := s.handleDeviation(ctx, session, input.Location, distance); err != nil {
			s.Logger.Error("route deviation handling failed",
				zap.String("session_id", session.SessionID), zap.Error(err))
		}
	}

	return session, nil
}

func (s *GuardianService) handleDeviation(ctx context.Context, session *model.GuardianSession, location model.Location, distance float64) error {
	deviation := model.RouteDeviation{
		Location:       location,
		DistanceMeters: distance,
		Timestamp:      time.Now(),
	}
	if err := s.Sessions.AppendDeviation(ctx, session.SessionID, deviation); err != nil {
		return fmt.Errorf("failed to record deviation: %w", err)
	}
	session.Deviations = append(session.Deviations, deviation)

	user, err := s.Users.GetUser(ctx, session.UserID)
	if err != nil {
		return err
	}

	msg := NotificationMessage{
		Title: fmt.Sprintf("Route deviation: %s", user.Username),
		Body: fmt.Sprintf("%s has moved %.0f m off the planned route to %s. Their last position is attached.",
			user.Username, distance, session.Destination),
		Priority: PriorityUrgent,
	}
	result := s.Fanout.Notify(ctx, s.sessionRecipients(user, session), msg)
	s.recordBatch(ctx, session, "route-deviation", result)

	if err := s.Publisher.PublishToUser(ctx, session.UserID, EventGuardianAlert, deviation); err != nil {
		s.Logger.Warn("failed to publish guardian alert",
			zap.String("session_id", session.SessionID), zap.Error(err))
	}

	s.Logger.Warn("route deviation detected",
		zap.String("session_id", session.SessionID),
		zap.Float64("distance_m", distance),
		zap.Int("contacts_notified", result.Delivered()))

	return nil
}

// Complete marks the session arrived and tells the trusted circle.
func (s *GuardianService) Complete(ctx context.Context, sessionID, userID string) (*model.GuardianSession, error) {
	session, err := s.Sessions.CompleteSession(ctx, sessionID, userID, time.Now())
	if err != nil {
		return nil, err
	}

	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	msg := NotificationMessage{
		Title:    fmt.Sprintf("%s arrived safely", user.Username),
		Body:     fmt.Sprintf("%s reached %s and closed their Guardian session.", user.Username, session.Destination),
		Priority: PriorityNormal,
	}
	result := s.Fanout.Notify(ctx, s.sessionRecipients(user, session), msg)
	s.recordBatch(ctx, session, "arrived-safely", result)

	s.Logger.Info("guardian session completed",
		zap.String("session_id", session.SessionID),
		zap.String("user_id", userID))

	return session, nil
}

// Cancel aborts an active session without the arrived-safely fan-out.
func (s *GuardianService) Cancel(ctx context.Context, sessionID, userID string) (*model.GuardianSession, error) {
	session, err := s.Sessions.CancelSession(ctx, sessionID, userID, time.Now())
	if err != nil {
		return nil, err
	}

	s.Logger.Info("guardian session cancelled",
		zap.String("session_id", session.SessionID),
		zap.String("user_id", userID))

	return session, nil
}

func (s *GuardianService) sessionRecipients(user *model.User, session *model.GuardianSession) []model.EmergencyContact {
	recipients := make([]model.EmergencyContact, 0, len(session.TrustedContacts))
	for _, ref := range session.TrustedContacts {
		if contact, ok := user.ContactByID(ref.ContactID); ok {
			recipients = append(recipients, contact)
		}
	}
	return recipients
}

func (s *GuardianService) recordBatch(ctx context.Context, session *model.GuardianSession, kind string, result FanoutResult) {
	alert := model.SessionAlert{
		Kind:      kind,
		Attempted: result.Attempted(),
		Delivered: result.Delivered(),
		SentAt:    time.Now(),
	}
	if err := s.Sessions.RecordAlert(ctx, session.SessionID, alert); err != nil {
		s.Logger.Warn("failed to record alert batch",
			zap.String("session_id", session.SessionID),
			zap.String("kind", kind), zap.Error(err))
		return
	}
	session.AlertsSent = append(session.AlertsSent, alert)
}
