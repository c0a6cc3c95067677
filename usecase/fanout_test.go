package usecase

import (
	"context"
	"testing"
	"time"

	"campusguard/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testContacts() []model.EmergencyContact {
	return []model.EmergencyContact{
		{ContactID: "c1", Name: "Ada", Phone: "+15550000001", Email: "ada@example.com", NotificationsEnabled: true},
		{ContactID: "c2", Name: "Ben", Phone: "+15550000002", Email: "ben@example.com", NotificationsEnabled: true},
	}
}

func TestFanoutAttemptsEveryContactChannelPair(t *testing.T) {
	push := &fakeNotifier{name: "push"}
	sms := &fakeNotifier{name: "sms"}
	fanout := NewNotificationFanout([]Notifier{push, sms}, time.Second, zap.NewNop())

	result := fanout.Notify(context.Background(), testContacts(), NotificationMessage{
		Title:    "test",
		Priority: PriorityEmergency,
	})

	// 2 contacts x 2 channels
	assert.Equal(t, 4, result.Attempted())
	assert.Equal(t, 4, result.Delivered())
	assert.Equal(t, 0, result.Failed())
}

func TestFanoutPartialFailureNeverAbortsBatch(t *testing.T) {
	push := &fakeNotifier{name: "push", fail: map[string]bool{"c1": true}}
	sms := &fakeNotifier{name: "sms"}
	fanout := NewNotificationFanout([]Notifier{push, sms}, time.Second, zap.NewNop())

	result := fanout.Notify(context.Background(), testContacts(), NotificationMessage{Priority: PriorityUrgent})

	assert.Equal(t, 4, result.Attempted())
	assert.Equal(t, 3, result.Delivered())
	assert.Equal(t, 1, result.Failed())

	// The failed attempt is recorded with its error, not dropped.
	var failed *DeliveryOutcome
	for i := range result.Outcomes {
		if !result.Outcomes[i].Delivered {
			failed = &result.Outcomes[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "c1", failed.ContactID)
	assert.Equal(t, "push", failed.Channel)
	assert.NotEmpty(t, failed.Error)
}

func TestFanoutSkipsDisabledContacts(t *testing.T) {
	push := &fakeNotifier{name: "push"}
	contacts := testContacts()
	contacts[1].NotificationsEnabled = false
	fanout := NewNotificationFanout([]Notifier{push}, time.Second, zap.NewNop())

	result := fanout.Notify(context.Background(), contacts, NotificationMessage{})

	assert.Equal(t, 1, result.Attempted())
	assert.Equal(t, []string{"c1"}, push.sends)
}

func TestFanoutRespectsChannelCapability(t *testing.T) {
	smsOnly := &fakeNotifier{name: "sms", deliver: func(c model.EmergencyContact) bool {
		return c.Phone != ""
	}}
	contacts := testContacts()
	contacts[0].Phone = ""
	fanout := NewNotificationFanout([]Notifier{smsOnly}, time.Second, zap.NewNop())

	result := fanout.Notify(context.Background(), contacts, NotificationMessage{})

	require.Equal(t, 1, result.Attempted())
	assert.Equal(t, "c2", result.Outcomes[0].ContactID)
}

func TestContactNotificationsMapOutcomes(t *testing.T) {
	now := time.Now()
	result := FanoutResult{Outcomes: []DeliveryOutcome{
		{ContactID: "c1", Channel: "sms", Delivered: true, Timestamp: now},
		{ContactID: "c1", Channel: "email", Delivered: false, Error: "boom", Timestamp: now},
	}}

	records := result.ContactNotifications()
	require.Len(t, records, 2)
	assert.Equal(t, "delivered", records[0].Status)
	assert.Equal(t, "failed", records[1].Status)
	assert.Equal(t, "email", records[1].Channel)
}
