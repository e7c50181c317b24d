package domain

// AlertMode decides which criteria a broadcast of this alert requires.
type AlertMode string

const (
	ModeSimple       AlertMode = "simple"
	ModePosition     AlertMode = "has_position"
	ModeSlot         AlertMode = "has_slot"
	ModeStatus       AlertMode = "has_status"
	ModeRestrictions AlertMode = "has_restrictions"
	ModeMuster       AlertMode = "has_muster_position"
)

// Alert is a named notification category. Reference data maintained by
// administrators; the engine only reads it.
type Alert struct {
	ID      int64
	Title   string
	OnPlaya bool
	Mode    AlertMode
}

// IsSimple alerts go out over SMS only, with a short framed body.
func (a Alert) IsSimple() bool {
	return a.Mode == ModeSimple
}
