package delivery

const TaskTopic = "delivery_tasks"

// TaskRecipient ties one recipient address to the queued delivery-log row
// the consumer resolves when the send completes.
type TaskRecipient struct {
	MessageID uint64 `json:"message_id"`
	PersonID  int64  `json:"person_id"`
	Address   string `json:"address"`
}

// Task is one deferred channel batch for a broadcast. SMS never rides
// here; it is sent inline so the sender sees failures immediately.
type Task struct {
	BroadcastID uint64          `json:"broadcast_id"`
	AlertID     int64           `json:"alert_id"`
	SenderID    int64           `json:"sender_id"`
	Channel     string          `json:"channel"`
	Subject     string          `json:"subject"`
	Body        string          `json:"body"`
	From        string          `json:"from"`
	Recipients  []TaskRecipient `json:"recipients"`
}
