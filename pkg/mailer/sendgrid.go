package mailer

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/tutorhub/tutoring-api/pkg/config"
)

// Message is a single outbound notification email.
type Message struct {
	ToName    string
	ToAddress string
	Subject   string
	Body      string
}

// Mailer delivers notification messages.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// SendgridMailer delivers mail through the Sendgrid v3 API.
type SendgridMailer struct {
	client *sendgrid.Client
	from   *sgmail.Email
}

// NewSendgrid constructs a Sendgrid-backed mailer.
func NewSendgrid(cfg config.MailConfig) *SendgridMailer {
	return &SendgridMailer{
		client: sendgrid.NewSendClient(cfg.APIKey),
		from:   sgmail.NewEmail(cfg.FromName, cfg.FromAddress),
	}
}

// Send delivers one message. Non-2xx API responses are reported as errors so
// the caller's retry policy applies.
func (m *SendgridMailer) Send(ctx context.Context, msg Message) error {
	to := sgmail.NewEmail(msg.ToName, msg.ToAddress)
	mail := sgmail.NewSingleEmail(m.from, msg.Subject, to, msg.Body, "")

	resp, err := m.client.SendWithContext(ctx, mail)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: unexpected status %d", resp.StatusCode)
	}
	return nil
}
