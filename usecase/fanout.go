package usecase

import (
	"context"
	"sync"
	"time"

	"campusguard/model"

	"go.uber.org/zap"
)

type NotificationPriority string

const (
	PriorityNormal    NotificationPriority = "normal"
	PriorityUrgent    NotificationPriority = "urgent"
	PriorityEmergency NotificationPriority = "emergency"
)

// NotificationMessage is the logical message handed to every channel.
type NotificationMessage struct {
	Title    string
	Body     string
	Priority NotificationPriority
}

// Notifier is one delivery channel (push, sms, email). Implementations
// live in the services package; tests inject fakes.
type Notifier interface {
	Channel() string
	CanDeliver(contact model.EmergencyContact) bool
	Send(ctx context.Context, contact model.EmergencyContact, msg NotificationMessage) error
}

// DeliveryOutcome is one attempt against one contact over one channel.
type DeliveryOutcome struct {
	ContactID string    `json:"contact_id"`
	Channel   string    `json:"channel"`
	Delivered bool      `json:"delivered"`
	Error     string    `json:"error,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type FanoutResult struct {
	Outcomes []DeliveryOutcome `json:"outcomes"`
}

func (r FanoutResult) Attempted() int {
	return len(r.Outcomes)
}

func (r FanoutResult) Delivered() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Delivered {
			n++
		}
	}
	return n
}

func (r FanoutResult) Failed() int {
	return r.Attempted() - r.Delivered()
}

// ContactNotifications converts the outcomes into the per-contact records
// persisted onto an alert.
func (r FanoutResult) ContactNotifications() []model.ContactNotification {
	records := make([]model.ContactNotification, 0, len(r.Outcomes))
	for _, o := range r.Outcomes {
		status := "delivered"
		if !o.Delivered {
			status = "failed"
		}
		records = append(records, model.ContactNotification{
			ContactID:  o.ContactID,
			Channel:    o.Channel,
			Status:     status,
			NotifiedAt: o.Timestamp,
		})
	}
	return records
}

// NotificationFanout dispatches one logical message to many contacts over
// every channel each contact has configured. Attempts run in parallel and
// settle independently: a failure on one contact or channel never aborts
// delivery to the others, and the whole batch is bounded by the per-channel
// timeout rather than the slowest attempt.
type NotificationFanout struct {
	Channels       []Notifier
	ChannelTimeout time.Duration
	Logger         *zap.Logger

	// Observe, when set, is called once per settled attempt. It must be
	// safe for concurrent use.
	Observe func(channel string, delivered bool)
}

func NewNotificationFanout(channels []Notifier, channelTimeout time.Duration, logger *zap.Logger) *NotificationFanout {
	if channelTimeout <= 0 {
		channelTimeout = 10 * time.Second
	}
	return &NotificationFanout{
		Channels:       channels,
		ChannelTimeout: channelTimeout,
		Logger:         logger,
	}
}

// Notify blocks until every attempt settles. It never returns an error:
// delivery failures are data, not control flow. Callers must not invoke it
// twice for the same logical event; no de-duplication happens here.
func (f *NotificationFanout) Notify(ctx context.Context, recipients []model.EmergencyContact, msg NotificationMessage) FanoutResult {
	type attempt struct {
		contact model.EmergencyContact
		channel Notifier
	}

	var attempts []attempt
	for _, contact := range recipients {
		if !contact.NotificationsEnabled {
			continue
		}
		for _, ch := range f.Channels {
			if ch.CanDeliver(contact) {
				attempts = append(attempts, attempt{contact: contact, channel: ch})
			}
		}
	}

	outcomes := make([]DeliveryOutcome, len(attempts))
	var wg sync.WaitGroup
	for i, a := range attempts {
		wg.Add(1)
		go func(i int, a attempt) {
			defer wg.Done()

			sendCtx, cancel := context.WithTimeout(ctx, f.ChannelTimeout)
			defer cancel()

			outcome := DeliveryOutcome{
				ContactID: a.contact.ContactID,
				Channel:   a.channel.Channel(),
				Timestamp: time.Now(),
			}

			if err := a.channel.Send(sendCtx, a.contact, msg); err != nil {
				outcome.Error = err.Error()
				if f.Logger != nil {
					f.Logger.Warn("notification delivery failed",
						zap.String("contact_id", a.contact.ContactID),
						zap.String("channel", a.channel.Channel()),
						zap.Error(err))
				}
			} else {
				outcome.Delivered = true
			}
			if f.Observe != nil {
				f.Observe(outcome.Channel, outcome.Delivered)
			}
			outcomes[i] = outcome
		}(i, a)
	}
	wg.Wait()

	result := FanoutResult{Outcomes: outcomes}
	if f.Logger != nil {
		f.Logger.Info("notification fan-out settled",
			zap.String("priority", string(msg.Priority)),
			zap.Int("attempted", result.Attempted()),
			zap.Int("delivered", result.Delivered()),
			zap.Int("failed", result.Failed()))
	}
	return result
}
