// Package phone manages the two-slot phone numbers a person carries and
// the SMS verification lifecycle around them.
package phone

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gotomicro/ego/core/elog"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/errs"
	"github.com/rangerops/clubhouse-rbs/internal/pkg/code"
	"github.com/rangerops/clubhouse-rbs/internal/repository"
	"github.com/rangerops/clubhouse-rbs/internal/service/gateway/sms"
)

//go:generate mockgen -source=./service.go -package=phonemocks -destination=./mocks/service.mock.go
type Service interface {
	// ValidateAndFormat normalizes a number and rejects it when another
	// person already holds it in either slot.
	ValidateAndFormat(ctx context.Context, personID int64, raw string) (string, error)
	// SetNumbers replaces both slots. An empty value clears a slot. A
	// changed number loses its verification state and, when the gateway
	// says it can take SMS, gets a fresh challenge.
	SetNumbers(ctx context.Context, personID int64, onPlaya, offPlaya string) (domain.SetNumbersResult, error)
	// IssueChallenge sends a new verification code to one slot. Returns
	// false when the gateway rejected the send.
	IssueChallenge(ctx context.Context, personID int64, slot domain.PhoneSlot) (bool, error)
	// Confirm checks a submitted code against the slot's pending challenge.
	Confirm(ctx context.Context, personID int64, slot domain.PhoneSlot, submitted string) (domain.ConfirmOutcome, error)
	// HandleInbound processes a provider callback for a received SMS,
	// honoring STOP and START keywords.
	HandleInbound(ctx context.Context, from, body string) error
}

type service struct {
	persons  repository.PersonRepository
	messages repository.MessageRepository
	gateway  sms.Client
	logger   *elog.Component
}

func NewService(persons repository.PersonRepository, messages repository.MessageRepository, gateway sms.Client) Service {
	return &service{
		persons:  persons,
		messages: messages,
		gateway:  gateway,
		logger:   elog.DefaultLogger,
	}
}

func (s *service) ValidateAndFormat(ctx context.Context, personID int64, raw string) (string, error) {
	number, err := Format(raw)
	if err != nil {
		return "", err
	}
	owner, err := s.persons.FindOwner(ctx, number)
	switch {
	case errors.Is(err, errs.ErrPersonNotFound):
		return number, nil
	case err != nil:
		return "", err
	case owner.ID != personID:
		return "", fmt.Errorf("%w: %s held by %s", errs.ErrPhoneNumberTaken, number, owner.Callsign)
	}
	return number, nil
}

func (s *service) SetNumbers(ctx context.Context, personID int64, onPlaya, offPlaya string) (domain.SetNumbersResult, error) {
	person, err := s.persons.GetByID(ctx, personID)
	if err != nil {
		return domain.SetNumbersResult{}, err
	}
	// Snapshot before mutation so a number moving between slots can carry
	// its verification state with it.
	before := person

	onOutcome, err := s.applySlot(ctx, &person, before, domain.SlotOnPlaya, onPlaya)
	if err != nil {
		return domain.SetNumbersResult{}, err
	}
	offOutcome, err := s.applySlot(ctx, &person, before, domain.SlotOffPlaya, offPlaya)
	if err != nil {
		return domain.SetNumbersResult{}, err
	}

	if err := s.persons.UpdatePhones(ctx, person); err != nil {
		return domain.SetNumbersResult{}, err
	}

	// Challenges go out only after the new numbers are durable.
	result := domain.SetNumbersResult{OnPlaya: onOutcome, OffPlaya: offOutcome}
	if onOutcome == domain.SlotCodeSent {
		result.OnPlaya = s.challengeOutcome(ctx, personID, domain.SlotOnPlaya)
	}
	if offOutcome == domain.SlotCodeSent {
		if person.SlotsEqual() && result.OnPlaya == domain.SlotCodeSent {
			// Same number in both slots shares one challenge.
			result.OffPlaya = domain.SlotCodeSent
		} else {
			result.OffPlaya = s.challengeOutcome(ctx, personID, domain.SlotOffPlaya)
		}
	}
	return result, nil
}

// applySlot mutates one slot on the in-memory person and reports what a
// durable commit of that mutation will mean. SlotCodeSent here means "a
// challenge is owed", the actual send happens after persistence.
func (s *service) applySlot(ctx context.Context, person *domain.Person, before domain.Person, slot domain.PhoneSlot, raw string) (domain.SlotOutcome, error) {
	target := person.Slot(slot)

	if strings.TrimSpace(raw) == "" {
		if target.Number == "" {
			return domain.SlotUnchanged, nil
		}
		*target = domain.Phone{}
		return domain.SlotUpdated, nil
	}

	number, err := s.ValidateAndFormat(ctx, person.ID, raw)
	if err != nil {
		return "", err
	}
	if number == target.Number {
		return domain.SlotUnchanged, nil
	}

	// A number the person already verified in the other slot keeps that
	// verification when copied over.
	if other := before.Slot(slot.Other()); other.Number == number {
		*target = *other
		return domain.SlotUpdated, nil
	}

	*target = domain.Phone{Number: number}

	capable, err := s.gateway.Lookup(ctx, number)
	if err != nil {
		// The update stands either way; the person just stays unverified
		// until a challenge can be issued later.
		s.logger.Warn("sms capability lookup failed",
			elog.Int64("person_id", person.ID),
			elog.String("slot", string(slot)),
			elog.FieldErr(err))
		return domain.SlotSendFail, nil
	}
	if !capable {
		return domain.SlotUpdated, nil
	}
	return domain.SlotCodeSent, nil
}

func (s *service) challengeOutcome(ctx context.Context, personID int64, slot domain.PhoneSlot) domain.SlotOutcome {
	sent, err := s.IssueChallenge(ctx, personID, slot)
	if err != nil || !sent {
		if err != nil {
			s.logger.Warn("challenge send failed",
				elog.Int64("person_id", personID),
				elog.String("slot", string(slot)),
				elog.FieldErr(err))
		}
		return domain.SlotSendFail
	}
	return domain.SlotCodeSent
}

func (s *service) IssueChallenge(ctx context.Context, personID int64, slot domain.PhoneSlot) (bool, error) {
	person, err := s.persons.GetByID(ctx, personID)
	if err != nil {
		return false, err
	}
	target := person.Slot(slot)
	if target.Number == "" {
		return false, fmt.Errorf("%w: slot %s has no number", errs.ErrInvalidParameter, slot)
	}
	if target.Stopped {
		return false, fmt.Errorf("%w: slot %s opted out", errs.ErrInvalidParameter, slot)
	}
	// Re-challenging a verified slot is refused at the API layer, not here.

	challenge, err := code.Generate()
	if err != nil {
		return false, err
	}
	target.Code = challenge
	if person.SlotsEqual() {
		person.Slot(slot.Other()).Code = challenge
	}
	if err := s.persons.UpdatePhones(ctx, person); err != nil {
		return false, err
	}

	body := fmt.Sprintf("Your Clubhouse verification code is %s", challenge)
	_, sendErr := s.gateway.Send(ctx, sms.SendReq{To: target.Number, Body: body})

	status := domain.StatusVerify
	if sendErr != nil {
		status = domain.StatusFailed
	}
	if _, err := s.messages.RecordAttempt(ctx, domain.Message{
		PersonID:  personID,
		Channel:   domain.ChannelSMS,
		Address:   target.Number,
		Direction: domain.DirectionOutbound,
		Status:    status,
		Body:      body,
	}); err != nil {
		s.logger.Error("record verification attempt failed",
			elog.Int64("person_id", personID),
			elog.FieldErr(err))
	}

	if sendErr != nil {
		return false, sendErr
	}
	return true, nil
}

func (s *service) Confirm(ctx context.Context, personID int64, slot domain.PhoneSlot, submitted string) (domain.ConfirmOutcome, error) {
	person, err := s.persons.GetByID(ctx, personID)
	if err != nil {
		return "", err
	}
	target := person.Slot(slot)
	if target.Verified {
		return domain.ConfirmAlreadyVerified, nil
	}
	submitted = strings.TrimSpace(submitted)
	if target.Code == "" || submitted != target.Code {
		return domain.ConfirmNoMatch, nil
	}

	target.Verified = true
	target.Code = ""
	if person.SlotsEqual() {
		other := person.Slot(slot.Other())
		other.Verified = true
		other.Code = ""
	}
	if err := s.persons.UpdatePhones(ctx, person); err != nil {
		return "", err
	}
	return domain.ConfirmConfirmed, nil
}

func (s *service) HandleInbound(ctx context.Context, from, body string) error {
	number, err := Format(from)
	if err != nil {
		return err
	}

	var personID int64
	person, err := s.persons.FindOwner(ctx, number)
	switch {
	case errors.Is(err, errs.ErrPersonNotFound):
		// Log the row anyway; unknown senders still show up in the audit trail.
	case err != nil:
		return err
	default:
		personID = person.ID
	}

	if _, err := s.messages.RecordAttempt(ctx, domain.Message{
		PersonID:  personID,
		Channel:   domain.ChannelSMS,
		Address:   number,
		Direction: domain.DirectionInbound,
		Status:    domain.StatusSent,
		Body:      body,
	}); err != nil {
		return err
	}
	if personID == 0 {
		return nil
	}

	switch keyword(body) {
	case "stop", "quit", "cancel", "unsubscribe":
		s.setStopped(&person, number, true)
	case "start", "subscribe":
		s.setStopped(&person, number, false)
	default:
		return nil
	}
	return s.persons.UpdatePhones(ctx, person)
}

// setStopped flips the opt-out flag on every slot holding the number.
func (s *service) setStopped(person *domain.Person, number string, stopped bool) {
	for _, slot := range []domain.PhoneSlot{domain.SlotOnPlaya, domain.SlotOffPlaya} {
		p := person.Slot(slot)
		if p.Number == number {
			p.Stopped = stopped
		}
	}
}

func keyword(body string) string {
	return strings.ToLower(strings.TrimSpace(body))
}
