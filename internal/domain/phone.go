package domain

import (
	"fmt"
	"strings"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

// PhoneSlot designates one of the two phone slots a person holds.
type PhoneSlot string

const (
	SlotOnPlaya  PhoneSlot = "on_playa"
	SlotOffPlaya PhoneSlot = "off_playa"
)

// ParsePhoneSlot normalizes the designators seen at the API boundary
// (hyphenated and underscored forms) to the canonical pair.
func ParsePhoneSlot(s string) (PhoneSlot, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_") {
	case "on_playa":
		return SlotOnPlaya, nil
	case "off_playa":
		return SlotOffPlaya, nil
	default:
		return "", fmt.Errorf("%w: phone slot %q", errs.ErrInvalidParameter, s)
	}
}

// Other returns the opposite slot designator.
func (s PhoneSlot) Other() PhoneSlot {
	if s == SlotOnPlaya {
		return SlotOffPlaya
	}
	return SlotOnPlaya
}

// Phone is the state of one slot.
type Phone struct {
	Number   string // E.164, empty when the slot is unset
	Verified bool
	Stopped  bool
	Code     string // pending challenge code, empty when none outstanding
}

// Person is the phone-relevant projection of the external person record.
type Person struct {
	ID             int64
	Callsign       string
	Status         string
	Email          string
	MessageAllowed bool
	OnPlaya        Phone
	OffPlaya       Phone
}

// Slot returns a pointer into the person's slot state.
func (p *Person) Slot(slot PhoneSlot) *Phone {
	if slot == SlotOnPlaya {
		return &p.OnPlaya
	}
	return &p.OffPlaya
}

// SlotsEqual reports whether both slots hold the same non-empty number.
func (p *Person) SlotsEqual() bool {
	return p.OnPlaya.Number != "" && p.OnPlaya.Number == p.OffPlaya.Number
}

// ConfirmOutcome is the result of submitting a challenge code.
type ConfirmOutcome string

const (
	ConfirmAlreadyVerified ConfirmOutcome = "already-verified"
	ConfirmNoMatch         ConfirmOutcome = "no-match"
	ConfirmConfirmed       ConfirmOutcome = "confirmed"
)

// SlotOutcome describes what SetNumbers did to one slot.
type SlotOutcome string

const (
	SlotUnchanged SlotOutcome = "unchanged"
	SlotUpdated   SlotOutcome = "updated"
	SlotCodeSent  SlotOutcome = "code-sent"
	SlotSendFail  SlotOutcome = "sent-fail"
)

// SetNumbersResult reports the per-slot outcome of a SetNumbers call.
type SetNumbersResult struct {
	OnPlaya  SlotOutcome `json:"on_playa"`
	OffPlaya SlotOutcome `json:"off_playa"`
}
