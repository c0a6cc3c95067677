package services

import (
	"context"
	"fmt"

	"campusguard/model"
	"campusguard/usecase"
)

// PushClient is the injectable transport behind the push channel so the
// concrete vendor SDK stays swappable and tests can use a fake.
type PushClient interface {
	Push(ctx context.Context, deviceToken, title, body string, data map[string]string) error
}

// PushNotifier delivers to contacts with a registered device token.
type PushNotifier struct {
	Client PushClient
}

func NewPushNotifier(client PushClient) *PushNotifier {
	return &PushNotifier{Client: client}
}

func (n *PushNotifier) Channel() string {
	return "push"
}

func (n *PushNotifier) CanDeliver(contact model.EmergencyContact) bool {
	return contact.DeviceToken != ""
}

func (n *PushNotifier) Send(ctx context.Context, contact model.EmergencyContact, msg usecase.NotificationMessage) error {
	if n.Client == nil {
		return fmt.Errorf("push client not configured")
	}
	return n.Client.Push(ctx, contact.DeviceToken, msg.Title, msg.Body, map[string]string{
		"priority": string(msg.Priority),
	})
}
