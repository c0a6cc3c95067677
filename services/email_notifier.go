package services

import (
	"context"
	"fmt"

	"campusguard/model"
	"campusguard/usecase"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
)

// EmailNotifier delivers over SendGrid.
type EmailNotifier struct {
	FromName  string
	FromEmail string
	Client    *sendgrid.Client
}

func NewEmailNotifier(apiKey, fromName, fromEmail string) *EmailNotifier {
	return &EmailNotifier{
		FromName:  fromName,
		FromEmail: fromEmail,
		Client:    sendgrid.NewSendClient(apiKey),
	}
}

func (n *EmailNotifier) Channel() string {
	return "email"
}

func (n *EmailNotifier) CanDeliver(contact model.EmergencyContact) bool {
	return contact.Email != ""
}

func (n *EmailNotifier) Send(ctx context.Context, contact model.EmergencyContact, msg usecase.NotificationMessage) error {
	from := mail.NewEmail(n.FromName, n.FromEmail)
	to := mail.NewEmail(contact.Name, contact.Email)
	message := mail.NewSingleEmail(from, msg.Title, to, msg.Body, "")

	resp, err := n.Client.SendWithContext(ctx, message)
	if err != nil {
		return err
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid returned status %d", resp.StatusCode)
	}
	return nil
}
