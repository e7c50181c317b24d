package email

import (
	"context"
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

var _ Mailer = (*SendGridMailer)(nil)

type SendGridMailer struct {
	client *sendgrid.Client
}

func NewSendGridMailer(apiKey string) *SendGridMailer {
	return &SendGridMailer{client: sendgrid.NewSendClient(apiKey)}
}

func (s *SendGridMailer) Send(_ context.Context, msg Email) error {
	from := mail.NewEmail("", msg.From)
	to := mail.NewEmail("", msg.To)

	message := mail.NewV3Mail()
	message.SetFrom(from)
	message.Subject = msg.Subject

	p := mail.NewPersonalization()
	p.AddTos(to)
	message.AddPersonalizations(p)

	if msg.Text != "" {
		message.AddContent(mail.NewContent("text/plain", msg.Text))
	}
	if msg.HTML != "" {
		message.AddContent(mail.NewContent("text/html", msg.HTML))
	}

	resp, err := s.client.Send(message)
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrGatewayFailure, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: sendgrid status %d: %s", errs.ErrGatewayFailure, resp.StatusCode, resp.Body)
	}
	return nil
}
