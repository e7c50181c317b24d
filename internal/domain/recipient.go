package domain

// Recipient is one eligible target with whatever channel addresses apply.
// Count-only selection leaves the address fields empty.
type Recipient struct {
	ID       int64
	Callsign string
	Status   string
	Email    string
	OnPlaya  Phone
	OffPlaya Phone
}

// PhoneFor picks the slot an alert should use: on-playa alerts prefer the
// on-playa number, everything else the off-playa one, falling back to the
// other slot. Stopped numbers are never returned.
func (r Recipient) PhoneFor(alert Alert) (string, bool) {
	first, second := r.OffPlaya, r.OnPlaya
	if alert.OnPlaya {
		first, second = r.OnPlaya, r.OffPlaya
	}
	if first.Number != "" && !first.Stopped {
		return first.Number, true
	}
	if second.Number != "" && !second.Stopped {
		return second.Number, true
	}
	return "", false
}
