package domain

import (
	"fmt"
	"time"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

// Broadcast is the durable record of one transmit invocation. Created once;
// retry touches only its messages, never the record itself.
type Broadcast struct {
	ID             uint64
	SenderID       int64
	AlertID        int64
	SMSMessage     string
	EmailMessage   string
	Subject        string
	SenderAddress  string
	RecipientCount int
	SentSMS        bool
	SentEmail      bool
	SentClubhouse  bool
	CreatedAt      time.Time
}

// TransmitRequest carries the caller-supplied channel flags and bodies.
// Criteria travels separately because it is alert-mode specific.
type TransmitRequest struct {
	SenderID      int64
	SendSMS       bool
	SendEmail     bool
	SendClubhouse bool
	From          string
	Subject       string
	Message       string
	SMSMessage    string
}

// Validate enforces the channel-conditional field requirements.
func (r TransmitRequest) Validate() error {
	if !r.SendSMS && !r.SendEmail && !r.SendClubhouse {
		return fmt.Errorf("%w: no channel requested", errs.ErrInvalidParameter)
	}
	if r.SendSMS && r.SMSMessage == "" {
		return fmt.Errorf("%w: sms_message required", errs.ErrInvalidParameter)
	}
	if r.SendEmail {
		if r.From == "" {
			return fmt.Errorf("%w: from required", errs.ErrInvalidParameter)
		}
		if r.Message == "" {
			return fmt.Errorf("%w: message required", errs.ErrInvalidParameter)
		}
	}
	if (r.SendEmail || r.SendClubhouse) && r.Subject == "" {
		return fmt.Errorf("%w: subject required", errs.ErrInvalidParameter)
	}
	return nil
}

// Summary is what a transmit or retry call reports back. SMS counts are
// final; email and clubhouse counts are queued totals on transmit and
// resolved totals on retry.
type Summary struct {
	BroadcastID     uint64 `json:"broadcast_id"`
	RecipientCount  int    `json:"recipient_count"`
	SMSSuccesses    int    `json:"sms_successes"`
	SMSFails        int    `json:"sms_fails"`
	EmailQueued     int    `json:"email_queued"`
	EmailSuccesses  int    `json:"email_successes"`
	EmailFails      int    `json:"email_fails"`
	ClubhouseQueued int    `json:"clubhouse_queued"`
	ClubhouseFails  int    `json:"clubhouse_fails"`
}
