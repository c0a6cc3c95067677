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

// FollowMeStore persists live-sharing sessions. History appends must be
// atomic with the FIFO trim so concurrent updates can never grow the
// history past its cap.
type FollowMeStore interface {
	CreateSession(ctx context.Context, session *model.FollowMeSession) error
	GetActiveByUser(ctx context.Context, userID string) (*model.FollowMeSession, error)
	AppendLocation(ctx context.Context, sessionID string, location model.Location, point model.TrackPoint, historyCap int) error
	ExpireSession(ctx context.Context, sessionID string, at time.Time) error
	StopSession(ctx context.Context, userID string, at time.Time) (*model.FollowMeSession, error)
}

// HazardStore answers "what known-unsafe areas sit within radius R of P",
// ordered by increasing distance.
type HazardStore interface {
	FindNearby(ctx context.Context, point model.GeoPoint, radiusMeters float64) ([]model.NearbyHazard, error)
}

type StartFollowMeInput struct {
	UserID          string
	Location        model.Location
	DurationSeconds int
	ShareWith       []string
	Settings        *model.FollowMeSettings
}

type FollowMeUpdate struct {
	Session *model.FollowMeSession
	Hazards []model.NearbyHazard
}

type FollowMeService struct {
	Sessions     FollowMeStore
	Users        UserStore
	Hazards      HazardStore
	Fanout       *NotificationFanout
	Publisher    Publisher
	HazardRadius float64 // meters
	Defaults     model.FollowMeSettings
	Logger       *zap.Logger
}

// Start opens a sharing session. The requested viewer list is filtered
// against the owner's trusted circle: ids outside the circle are dropped
// silently rather than rejected, so a client can never grant viewing
// rights to an arbitrary id.
func (s *FollowMeService) Start(ctx context.Context, input StartFollowMeInput) (*model.FollowMeSession, error) {
	if strings.TrimSpace(input.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}
	if input.DurationSeconds <= 0 {
		return nil, fmt.Errorf("%w: duration must be positive", ErrValidation)
	}

	user, err := s.Users.GetUser(ctx, input.UserID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if input.Location.RecordedAt.IsZero() {
		input.Location.RecordedAt = now
	}

	circle := user.TrustedCircleIDs()
	viewers := make([]model.Viewer, 0, len(input.ShareWith))
	recipients := make([]model.EmergencyContact, 0, len(input.ShareWith))
	for _, id := range input.ShareWith {
		if !circle[id] {
			continue
		}
		viewers = append(viewers, model.Viewer{ContactID: id, AddedAt: now})
		if contact, ok := user.ContactByID(id); ok {
			recipients = append(recipients, contact)
		}
	}

	settings := s.Defaults
	if input.Settings != nil {
		settings = *input.Settings
	}
	if settings.MaxHistoryPoints <= 0 {
		settings.MaxHistoryPoints = s.Defaults.MaxHistoryPoints
	}

	session := &model.FollowMeSession{
		SessionID:       utils.GenerateID(),
		UserID:          input.UserID,
		Status:          model.FollowMeActive,
		SharingWith:     viewers,
		CurrentLocation: input.Location,
		History: []model.TrackPoint{{
			Point:     input.Location.Point,
			Address:   input.Location.Address,
			Timestamp: now,
		}},
		Settings:  settings,
		ExpiresAt: now.Add(time.Duration(input.DurationSeconds) * time.Second),
		StartedAt: now,
	}

	if err := s.Sessions.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	msg := NotificationMessage{
		Title:    fmt.Sprintf("%s is sharing their location with you", user.Username),
		Body:     fmt.Sprintf("%s started Follow Me until %s.", user.Username, session.ExpiresAt.Format(time.Kitchen)),
		Priority: PriorityNormal,
	}
	s.Fanout.Notify(ctx, recipients, msg)

	s.Logger.Info("follow-me session started",
		zap.String("session_id", session.SessionID),
		zap.String("user_id", session.UserID),
		zap.Int("viewers", len(viewers)))

	return session, nil
}

// UpdateLocation records a new position, trims history to the cap oldest
// first, pushes the update to every viewer and warns the owner about
// nearby hazard zones. Expiry is lazy: the first update past expiresAt
// closes the session and reports it expired; there is no background
// sweeper racing with callers.
func (s *FollowMeService) UpdateLocation(ctx context.Context, userID string, location model.Location) (*FollowMeUpdate, error) {
	session, err := s.Sessions.GetActiveByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	if now.After(session.ExpiresAt) {
		if err := s.Sessions.ExpireSession(ctx, session.SessionID, now); err != nil {
			s.Logger.Warn("failed to expire follow-me session",
				zap.String("session_id", session.SessionID), zap.Error(err))
		}
		return nil, ErrSessionExpired
	}

	if location.RecordedAt.IsZero() {
		location.RecordedAt = now
	}
	point := model.TrackPoint{
		Point:     location.Point,
		Address:   location.Address,
		Timestamp: location.RecordedAt,
	}

	if err := s.Sessions.AppendLocation(ctx, session.SessionID, location, point, session.Settings.MaxHistoryPoints); err != nil {
		return nil, fmt.Errorf("failed to append location: %w", err)
	}
	session.CurrentLocation = location
	session.History = append(session.History, point)
	if max := session.Settings.MaxHistoryPoints; max > 0 && len(session.History) > max {
		session.History = session.History[len(session.History)-max:]
	}

	if !location.Point.IsZero() {
		if err := s.Users.UpdateLastKnownLocation(ctx, userID, location.Point); err != nil {
			s.Logger.Warn("failed to update last known location",
				zap.String("user_id", userID), zap.Error(err))
		}
	}

	s.publishUpdate(ctx, session)

	hazards := s.checkHazards(ctx, session, location.Point)

	return &FollowMeUpdate{Session: session, Hazards: hazards}, nil
}

func (s *FollowMeService) publishUpdate(ctx context.Context, session *model.FollowMeSession) {
	payload := map[string]interface{}{
		"session_id": session.SessionID,
		"user_id":    session.UserID,
		"location":   session.CurrentLocation,
		"expires_at": session.ExpiresAt,
	}
	if !session.Settings.SharePreciseAddress {
		loc := session.CurrentLocation
		loc.Address = ""
		payload["location"] = loc
	}
	for _, viewer := range session.SharingWith {
		if err := s.Publisher.PublishToUser(ctx, viewer.ContactID, EventFollowMeUpdate, payload); err != nil {
			s.Logger.Warn("failed to push follow-me update",
				zap.String("session_id", session.SessionID),
				zap.String("viewer_id", viewer.ContactID), zap.Error(err))
		}
	}
}

// checkHazards warns the owner, not the viewers, about elevated-risk zones
// near the new position. Session state is never altered here.
func (s *FollowMeService) checkHazards(ctx context.Context, session *model.FollowMeSession, point model.GeoPoint) []model.NearbyHazard {
	if s.Hazards == nil || s.HazardRadius <= 0 || point.IsZero() {
		return nil
	}

	found, err := s.Hazards.FindNearby(ctx, point, s.HazardRadius)
	if err != nil {
		s.Logger.Warn("hazard proximity query failed",
			zap.String("session_id", session.SessionID), zap.Error(err))
		return nil
	}

	elevated := found[:0]
	for _, h := range found {
		if h.RiskLevel == model.RiskMedium || h.RiskLevel == model.RiskHigh {
			elevated = append(elevated, h)
		}
	}
	if len(elevated) == 0 {
		return nil
	}

	payload := map[string]interface{}{
		"session_id": session.SessionID,
		"hazards":    elevated,
	}
	if err := s.Publisher.PublishToUser(ctx, session.UserID, EventRouteWarning, payload); err != nil {
		s.Logger.Warn("failed to publish route warning",
			zap.String("session_id", session.SessionID), zap.Error(err))
	}

	return elevated
}

// Stop closes the owner's active session and tells the viewers that
// sharing ended.
func (s *FollowMeService) Stop(ctx context.Context, userID string) (*model.FollowMeSession, error) {
	session, err := s.Sessions.StopSession(ctx, userID, time.Now())
	if err != nil {
		return nil, err
	}

	user, err := s.Users.GetUser(ctx, userID)
	if err != nil {
		return session, nil
	}

	recipients := make([]model.EmergencyContact, 0, len(session.SharingWith))
	for _, viewer := range session.SharingWith {
		if contact, ok := user.ContactByID(viewer.ContactID); ok {
			recipients = append(recipients, contact)
		}
	}
	msg := NotificationMessage{
		Title:    fmt.Sprintf("%s stopped sharing their location", user.Username),
		Body:     fmt.Sprintf("%s ended their Follow Me session.", user.Username),
		Priority: PriorityNormal,
	}
	s.Fanout.Notify(ctx, recipients, msg)

	s.Logger.Info("follow-me session stopped",
		zap.String("session_id", session.SessionID),
		zap.String("user_id", userID))

	return session, nil
}
