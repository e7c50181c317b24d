package domain

import "time"

// Channel is one delivery medium.
type Channel string

const (
	ChannelSMS       Channel = "sms"
	ChannelEmail     Channel = "email"
	ChannelClubhouse Channel = "clubhouse"
)

// MessageStatus tracks one delivery attempt. Verify marks a one-off
// verification-code send that belongs to no broadcast.
type MessageStatus string

const (
	StatusQueued MessageStatus = "queued"
	StatusSent   MessageStatus = "sent"
	StatusFailed MessageStatus = "failed"
	StatusVerify MessageStatus = "verify"
)

// Direction separates our sends from provider callbacks.
type Direction string

const (
	DirectionOutbound Direction = "outbound"
	DirectionInbound  Direction = "inbound"
)

// Message is one DeliveryLog row: a single (broadcast, recipient, channel)
// attempt. First attempts are append-only; retry updates status in place.
type Message struct {
	ID          uint64
	BroadcastID uint64 // zero for verification-code and inbound rows
	AlertID     int64
	PersonID    int64
	Channel     Channel
	Address     string
	Direction   Direction
	Status      MessageStatus
	Body        string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
