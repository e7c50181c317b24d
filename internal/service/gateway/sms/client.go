package sms

import "context"

// SendReq is one outbound SMS. Body arrives fully framed; the gateway does
// no wrapping of its own.
type SendReq struct {
	To   string // E.164
	Body string
}

type SendResp struct {
	ProviderID string
}

//go:generate mockgen -source=./client.go -package=smsmocks -destination=./mocks/client.mock.go
type Client interface {
	// Send delivers one message. A non-nil error is a gateway failure; the
	// caller records it, it never aborts a batch.
	Send(ctx context.Context, req SendReq) (SendResp, error)
	// Lookup reports whether the number can receive SMS (the capability
	// probe consulted before issuing a verification challenge).
	Lookup(ctx context.Context, number string) (bool, error)
}
