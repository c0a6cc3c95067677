package services

import (
	"context"
	"fmt"

	"campusguard/model"
	"campusguard/usecase"

	"github.com/nyaruka/phonenumbers"
	"github.com/twilio/twilio-go"
	api "github.com/twilio/twilio-go/rest/api/v2010"
)

// SMSNotifier delivers over Twilio. A contact is eligible when it has a
// phone number that parses as a valid E.164 number.
type SMSNotifier struct {
	FromNumber string
	Client     *twilio.RestClient
}

func NewSMSNotifier(accountSid, authToken, fromNumber string) *SMSNotifier {
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: accountSid,
		Password: authToken,
	})

	return &SMSNotifier{
		FromNumber: fromNumber,
		Client:     client,
	}
}

func (n *SMSNotifier) Channel() string {
	return "sms"
}

func (n *SMSNotifier) CanDeliver(contact model.EmergencyContact) bool {
	return contact.Phone != ""
}

func (n *SMSNotifier) Send(ctx context.Context, contact model.EmergencyContact, msg usecase.NotificationMessage) error {
	to, err := NormalizePhone(contact.Phone)
	if err != nil {
		return fmt.Errorf("invalid phone for contact %s: %w", contact.ContactID, err)
	}

	params := &api.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(n.FromNumber)
	params.SetBody(fmt.Sprintf("%s\n%s", msg.Title, msg.Body))

	type sendResult struct {
		err error
	}
	done := make(chan sendResult, 1)
	go func() {
		_, err := n.Client.Api.CreateMessage(params)
		done <- sendResult{err: err}
	}()

	// The twilio client has no context support on CreateMessage; respect
	// the fan-out's per-channel timeout ourselves.
	select {
	case <-ctx.Done():
		return ctx.Err()
	case result := <-done:
		return result.err
	}
}

// NormalizePhone validates and formats a number as E.164.
func NormalizePhone(num string) (string, error) {
	if num == "" {
		return "", fmt.Errorf("missing number")
	}
	if num[0] != '+' {
		return "", fmt.Errorf("phone number must be in E.164 format with +")
	}

	parsed, err := phonenumbers.Parse(num, "")
	if err != nil || !phonenumbers.IsValidNumber(parsed) {
		return "", fmt.Errorf("invalid phone number")
	}

	return phonenumbers.Format(parsed, phonenumbers.E164), nil
}
