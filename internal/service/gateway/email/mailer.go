package email

import "context"

// Email is one outbound message. Broadcast bodies are plain text; the
// HTML field is used by the transactional templates only.
type Email struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

//go:generate mockgen -source=./mailer.go -package=emailmocks -destination=./mocks/mailer.mock.go
type Mailer interface {
	Send(ctx context.Context, msg Email) error
}
