package clubhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ego-component/egorm"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

// mailboxMessage mirrors the frontend's in-app message table.
type mailboxMessage struct {
	ID       int64  `gorm:"primaryKey;autoIncrement"`
	PersonID int64  `gorm:"not null;index:idx_person_id;comment:'recipient'"`
	SenderID int64  `gorm:"not null;comment:'person who initiated the broadcast'"`
	Subject  string `gorm:"type:varchar(255);not null"`
	Body     string `gorm:"type:text;not null"`
	Unread   bool   `gorm:"not null;default:true"`
	Ctime    int64
}

func (mailboxMessage) TableName() string {
	return "clubhouse_message"
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *egorm.Component
}

func NewGormStore(db *egorm.Component) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Deliver(ctx context.Context, post Post) error {
	row := mailboxMessage{
		PersonID: post.PersonID,
		SenderID: post.SenderID,
		Subject:  post.Subject,
		Body:     post.Body,
		Unread:   true,
		Ctime:    time.Now().UnixMilli(),
	}
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("%w: mailbox insert: %w", errs.ErrGatewayFailure, err)
	}
	return nil
}
