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

// SOSAlertStore is the persistence capability the lifecycle needs. All
// mutations are atomic single-document updates.
type SOSAlertStore interface {
	CreateAlert(ctx context.Context, alert *model.SOSAlert) error
	GetAlert(ctx context.Context, alertID string) (*model.SOSAlert, error)
	ResolveAlert(ctx context.Context, alertID, resolverID, notes string, at time.Time) (*model.SOSAlert, error)
	AttachMediaCaptures(ctx context.Context, alertID string, captures []model.MediaCapture) error
	RecordNotifications(ctx context.Context, alertID string, records []model.ContactNotification) error
	PendingEnrichment(ctx context.Context, olderThan time.Time) ([]*model.SOSAlert, error)
	ActiveAlerts(ctx context.Context) ([]*model.SOSAlert, error)
}

// UserStore resolves users, their trusted circle and the nearby opted-in
// query shape used by the safety fan-out.
type UserStore interface {
	GetUser(ctx context.Context, userID string) (*model.User, error)
	FindNearbyOptedIn(ctx context.Context, point model.GeoPoint, radiusMeters float64, excludeUserID string) ([]*model.User, error)
	UpdateLastKnownLocation(ctx context.Context, userID string, point model.GeoPoint) error
}

// EnrichmentQueue schedules the deferred enrich-and-notify step for an
// alert. The services package provides the worker behind it.
type EnrichmentQueue interface {
	Enqueue(alertID string)
}

type TriggerSOSInput struct {
	UserID     string
	Message    string
	Severity   model.AlertSeverity
	Location   *model.Location
	Source     model.TriggerSource
	DeviceInfo string
}

type SOSService struct {
	Alerts       SOSAlertStore
	Users        UserStore
	Fanout       *NotificationFanout
	Publisher    Publisher
	Enrichment   EnrichmentQueue
	NearbyRadius float64 // meters, for the opted-in nearby-user fan-out
	Logger       *zap.Logger
}

// TriggerSOS persists an active alert and acknowledges immediately. The
// security group is notified synchronously so dashboards update without
// polling; contact delivery and media placeholders happen shortly after on
// the enrichment queue so the caller never waits on SMS or email latency.
func (s *SOSService) TriggerSOS(ctx context.Context, input TriggerSOSInput) (*model.SOSAlert, error) {
	// SOS must work even when auth state is degraded, so the user id may
	// come from the request body rather than a token. It still has to exist.
	if strings.TrimSpace(input.UserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrValidation)
	}

	severity := input.Severity
	if severity == "" {
		severity = model.SeverityHigh
	}
	source := input.Source
	if source == "" {
		source = model.TriggerManual
	}

	now := time.Now()

	// An emergency trigger must never fail for lack of a location; a zero
	// point is stored and enrichment proceeds without it.
	location := model.Location{Point: model.NewGeoPoint(0, 0), RecordedAt: now}
	if input.Location != nil {
		location = *input.Location
		if location.RecordedAt.IsZero() {
			location.RecordedAt = now
		}
	}

	alert := &model.SOSAlert{
		AlertID:          utils.GenerateID(),
		UserID:           input.UserID,
		Message:          input.Message,
		Severity:         severity,
		Location:         location,
		TriggerSource:    source,
		Status:           model.AlertActive,
		DeviceInfo:       input.DeviceInfo,
		EnrichmentStatus: model.EnrichmentPending,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.Alerts.CreateAlert(ctx, alert); err != nil {
		return nil, fmt.Errorf("failed to create SOS alert: %w", err)
	}

	if err := s.Publisher.PublishToSecurity(ctx, EventSOSAlert, alert); err != nil {
		// Staff dashboards fall back to the alert list; the alert itself
		// is already durable.
		s.Logger.Warn("failed to publish sos-alert event",
			zap.String("alert_id", alert.AlertID), zap.Error(err))
	}

	s.Enrichment.Enqueue(alert.AlertID)

	s.Logger.Info("SOS alert triggered",
		zap.String("alert_id", alert.AlertID),
		zap.String("user_id", alert.UserID),
		zap.String("severity", string(alert.Severity)),
		zap.String("source", string(alert.TriggerSource)))

	return alert, nil
}

// EnrichAlert runs the deferred step for one alert: placeholder media
// records, contact fan-out, nearby opted-in users, then the delivery
// outcomes are persisted onto the alert. Safe to run more than once for the
// same alert; duplicate notifications are tolerable, lost ones are not.
func (s *SOSService) EnrichAlert(ctx context.Context, alertID string) error {
	alert, err := s.Alerts.GetAlert(ctx, alertID)
	if err != nil {
		return err
	}
	if alert.EnrichmentStatus == model.EnrichmentDone {
		return nil
	}

	captures := []model.MediaCapture{
		{CaptureID: utils.GenerateID(), Kind: "photo", Status: "pending", RequestedAt: time.Now()},
		{CaptureID: utils.GenerateID(), Kind: "video", Status: "pending", RequestedAt: time.Now()},
	}
	if err := s.Alerts.AttachMediaCaptures(ctx, alertID, captures); err != nil {
		s.Logger.Warn("failed to attach media captures", zap.String("alert_id", alertID), zap.Error(err))
	}

	user, err := s.Users.GetUser(ctx, alert.UserID)
	if err != nil {
		return fmt.Errorf("failed to load user %s for alert %s: %w", alert.UserID, alertID, err)
	}

	msg := NotificationMessage{
		Title:    fmt.Sprintf("EMERGENCY: %s needs help", user.Username),
		Body:     formatEmergencyBody(user, alert),
		Priority: PriorityEmergency,
	}

	result := s.Fanout.Notify(ctx, user.EmergencyContacts, msg)
	if err := s.Alerts.RecordNotifications(ctx, alertID, result.ContactNotifications()); err != nil {
		return fmt.Errorf("failed to record notification outcomes: %w", err)
	}

	s.notifyNearbyUsers(ctx, user, alert)

	s.Logger.Info("SOS alert enriched",
		zap.String("alert_id", alertID),
		zap.Int("contacts_attempted", result.Attempted()),
		zap.Int("contacts_delivered", result.Delivered()))

	return nil
}

// notifyNearbyUsers pushes a lower-urgency heads-up to opted-in users near
// the alert. Best effort; push only, no SMS or email for bystanders.
func (s *SOSService) notifyNearbyUsers(ctx context.Context, owner *model.User, alert *model.SOSAlert) {
	if alert.Location.Point.IsZero() || s.NearbyRadius <= 0 {
		return
	}

	nearby, err := s.Users.FindNearbyOptedIn(ctx, alert.Location.Point, s.NearbyRadius, owner.UserID)
	if err != nil {
		s.Logger.Warn("nearby-user query failed", zap.String("alert_id", alert.AlertID), zap.Error(err))
		return
	}

	for _, u := range nearby {
		if err := s.Publisher.PublishToUser(ctx, u.UserID, EventSOSAlert, alert); err != nil {
			s.Logger.Warn("failed to notify nearby user",
				zap.String("alert_id", alert.AlertID),
				zap.String("user_id", u.UserID), zap.Error(err))
		}
	}
}

// ResolveSOS transitions an active alert to resolved. Resolution is
// terminal: a second resolve fails and leaves the first resolver intact.
func (s *SOSService) ResolveSOS(ctx context.Context, alertID, resolverID, notes string) (*model.SOSAlert, error) {
	if strings.TrimSpace(alertID) == "" || strings.TrimSpace(resolverID) == "" {
		return nil, fmt.Errorf("%w: alert id and resolver id are required", ErrValidation)
	}

	alert, err := s.Alerts.ResolveAlert(ctx, alertID, resolverID, notes, time.Now())
	if err != nil {
		return nil, err
	}

	if err := s.Publisher.PublishToSecurity(ctx, EventSOSResolved, alert); err != nil {
		s.Logger.Warn("failed to publish sos-resolved event",
			zap.String("alert_id", alertID), zap.Error(err))
	}

	s.Logger.Info("SOS alert resolved",
		zap.String("alert_id", alertID),
		zap.String("resolved_by", resolverID))

	return alert, nil
}

// GetAlert fetches a single alert for the security view.
func (s *SOSService) GetAlert(ctx context.Context, alertID string) (*model.SOSAlert, error) {
	return s.Alerts.GetAlert(ctx, alertID)
}

// ActiveAlerts lists open alerts, newest first, for the security dashboard.
func (s *SOSService) ActiveAlerts(ctx context.Context) ([]*model.SOSAlert, error) {
	return s.Alerts.ActiveAlerts(ctx)
}

func formatEmergencyBody(user *model.User, alert *model.SOSAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s triggered an SOS alert (%s severity).", user.Username, alert.Severity)
	if alert.Message != "" {
		fmt.Fprintf(&b, " Message: %s.", alert.Message)
	}
	if alert.Location.Address != "" {
		fmt.Fprintf(&b, " Last location: %s.", alert.Location.Address)
	} else if !alert.Location.Point.IsZero() {
		fmt.Fprintf(&b, " Last location: %.5f, %.5f.",
			alert.Location.Point.Latitude(), alert.Location.Point.Longitude())
	}
	return b.String()
}
