package email

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

var _ Mailer = (*SMTPMailer)(nil)

// SMTPMailer talks to a plain SMTP relay. Port 465 gets an implicit TLS
// dial, anything else goes through smtp.SendMail.
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
	UseAuth  bool
}

func NewSMTPMailer(host string, port int, username, password string) *SMTPMailer {
	return &SMTPMailer{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		UseAuth:  username != "",
	}
}

func (m *SMTPMailer) Send(_ context.Context, msg Email) error {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("From: %s\r\n", msg.From))
	b.WriteString(fmt.Sprintf("To: %s\r\n", msg.To))
	b.WriteString(fmt.Sprintf("Subject: %s\r\n", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	if msg.HTML != "" {
		b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.HTML)
	} else {
		b.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
		b.WriteString(msg.Text)
	}

	addr := fmt.Sprintf("%s:%d", m.Host, m.Port)
	var auth smtp.Auth
	if m.UseAuth {
		auth = smtp.PlainAuth("", m.Username, m.Password, m.Host)
	}

	var err error
	if m.Port == 465 {
		err = m.sendTLS(addr, auth, msg, b.String())
	} else {
		err = smtp.SendMail(addr, auth, msg.From, []string{msg.To}, []byte(b.String()))
	}
	if err != nil {
		return fmt.Errorf("%w: %w", errs.ErrGatewayFailure, err)
	}
	return nil
}

func (m *SMTPMailer) sendTLS(addr string, auth smtp.Auth, msg Email, body string) error {
	conn, err := tls.Dial("tcp", addr, &tls.Config{ServerName: m.Host})
	if err != nil {
		return err
	}
	c, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		return err
	}
	defer c.Close()

	if auth != nil {
		if err = c.Auth(auth); err != nil {
			return err
		}
	}
	if err = c.Mail(msg.From); err != nil {
		return err
	}
	if err = c.Rcpt(msg.To); err != nil {
		return err
	}
	w, err := c.Data()
	if err != nil {
		return err
	}
	if _, err = w.Write([]byte(body)); err != nil {
		return err
	}
	return w.Close()
}
