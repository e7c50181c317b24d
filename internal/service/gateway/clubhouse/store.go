package clubhouse

import "context"

// Post is one in-app mailbox entry.
type Post struct {
	PersonID int64
	SenderID int64
	Subject  string
	Body     string
}

//go:generate mockgen -source=./store.go -package=clubhousemocks -destination=./mocks/store.mock.go
// Store is the in-app mailbox. Deliveries append, reads belong to the
// web frontend and are out of scope here.
type Store interface {
	Deliver(ctx context.Context, post Post) error
}
