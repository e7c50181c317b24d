package dao

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ego-component/egorm"
	"gorm.io/gorm"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

type BroadcastDAO interface {
	// Create persists the record of one transmit invocation.
	Create(ctx context.Context, data Broadcast) (Broadcast, error)
	// GetByID loads a single broadcast record.
	GetByID(ctx context.Context, id uint64) (Broadcast, error)
	// ListBySender returns a sender's broadcasts, newest first.
	ListBySender(ctx context.Context, senderID int64, limit int) ([]Broadcast, error)
}

// Broadcast is one row per transmit invocation, immutable after create.
type Broadcast struct {
	ID             uint64 `gorm:"primaryKey;comment:'snowflake id'"`
	SenderID       int64  `gorm:"type:BIGINT;NOT NULL;index:idx_sender_id;comment:'person who invoked the broadcast'"`
	AlertID        int64  `gorm:"type:BIGINT;NOT NULL;index:idx_alert_id"`
	SMSMessage     string `gorm:"type:TEXT;comment:'framed sms body'"`
	EmailMessage   string `gorm:"type:TEXT"`
	Subject        string `gorm:"type:VARCHAR(255)"`
	SenderAddress  string `gorm:"type:VARCHAR(255);comment:'email From address'"`
	RecipientCount int    `gorm:"type:INT;NOT NULL;comment:'recipient set size at send time'"`
	SentSMS        bool   `gorm:"NOT NULL;DEFAULT:false"`
	SentEmail      bool   `gorm:"NOT NULL;DEFAULT:false"`
	SentClubhouse  bool   `gorm:"NOT NULL;DEFAULT:false"`
	Ctime          int64
}

func (Broadcast) TableName() string {
	return "broadcast"
}

type broadcastDAO struct {
	db *egorm.Component
}

func NewBroadcastDAO(db *egorm.Component) BroadcastDAO {
	return &broadcastDAO{db: db}
}

func (d *broadcastDAO) Create(ctx context.Context, data Broadcast) (Broadcast, error) {
	data.Ctime = time.Now().UnixMilli()
	if err := d.db.WithContext(ctx).Create(&data).Error; err != nil {
		return Broadcast{}, fmt.Errorf("%w: %w", errs.ErrCreateBroadcastFailed, err)
	}
	return data, nil
}

func (d *broadcastDAO) GetByID(ctx context.Context, id uint64) (Broadcast, error) {
	var b Broadcast
	err := d.db.WithContext(ctx).First(&b, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Broadcast{}, fmt.Errorf("%w: id=%d", errs.ErrBroadcastNotFound, id)
		}
		return Broadcast{}, err
	}
	return b, nil
}

func (d *broadcastDAO) ListBySender(ctx context.Context, senderID int64, limit int) ([]Broadcast, error) {
	var bs []Broadcast
	err := d.db.WithContext(ctx).
		Where("sender_id = ?", senderID).
		Order("ctime DESC").
		Limit(limit).
		Find(&bs).Error
	return bs, err
}
