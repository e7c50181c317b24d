package domain

// DispatchConfig carries the sandbox flags and SMS framing constants.
// It is injected at construction so tests run deterministic configurations
// instead of reading ambient global state.
type DispatchConfig struct {
	// SandboxBroadcast suppresses real SMS and email gateway calls.
	SandboxBroadcast bool
	// SandboxClubhouse suppresses internal mailbox writes only.
	SandboxClubhouse bool

	SMSPrefix    string
	SMSSuffix    string
	SMSCharLimit int
}

// DefaultDispatchConfig mirrors production constants.
func DefaultDispatchConfig() DispatchConfig {
	return DispatchConfig{
		SMSPrefix:    "[Rangers] ",
		SMSSuffix:    " (reply STOP to opt out)",
		SMSCharLimit: 160,
	}
}

// SMSLimit is the caller-visible body budget after framing.
func (c DispatchConfig) SMSLimit() int {
	return c.SMSCharLimit - len(c.SMSPrefix) - len(c.SMSSuffix)
}
