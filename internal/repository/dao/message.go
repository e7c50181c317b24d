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

type BroadcastMessageDAO interface {
	// Create appends one delivery-log row.
	Create(ctx context.Context, data BroadcastMessage) (BroadcastMessage, error)
	// BatchCreate appends one row per recipient for a channel batch.
	BatchCreate(ctx context.Context, datas []BroadcastMessage) ([]BroadcastMessage, error)
	// UpdateStatus mutates a row in place. Only task resolution and retry
	// use it; first attempts are append-only and history is never rewritten.
	UpdateStatus(ctx context.Context, id uint64, status string) error
	// ListByBroadcast returns every row of one broadcast.
	ListByBroadcast(ctx context.Context, broadcastID uint64) ([]BroadcastMessage, error)
	// ListFailedByBroadcast returns the rows retry re-attempts.
	ListFailedByBroadcast(ctx context.Context, broadcastID uint64) ([]BroadcastMessage, error)
	// CountByBroadcast returns the row count of one broadcast's log.
	CountByBroadcast(ctx context.Context, broadcastID uint64) (int64, error)
}

// BroadcastMessage is one delivery attempt: (broadcast, person, channel).
// BroadcastID is null for verification-code sends and inbound rows.
type BroadcastMessage struct {
	ID          uint64  `gorm:"primaryKey;autoIncrement"`
	BroadcastID *uint64 `gorm:"index:idx_broadcast_status,priority:1"`
	AlertID     int64   `gorm:"type:BIGINT"`
	PersonID    int64   `gorm:"type:BIGINT;NOT NULL;index:idx_person_id"`
	Channel     string  `gorm:"type:ENUM('sms','email','clubhouse');NOT NULL"`
	Address     string  `gorm:"type:VARCHAR(255);NOT NULL;comment:'phone, email or callsign'"`
	Direction   string  `gorm:"type:ENUM('outbound','inbound');NOT NULL;DEFAULT:'outbound'"`
	Status      string  `gorm:"type:ENUM('queued','sent','failed','verify');NOT NULL;index:idx_broadcast_status,priority:2"`
	Body        string  `gorm:"type:TEXT"`
	Ctime       int64
	Utime       int64
}

func (BroadcastMessage) TableName() string {
	return "broadcast_message"
}

type broadcastMessageDAO struct {
	db *egorm.Component
}

func NewBroadcastMessageDAO(db *egorm.Component) BroadcastMessageDAO {
	return &broadcastMessageDAO{db: db}
}

func (d *broadcastMessageDAO) Create(ctx context.Context, data BroadcastMessage) (BroadcastMessage, error) {
	now := time.Now().UnixMilli()
	data.Ctime, data.Utime = now, now
	err := d.db.WithContext(ctx).Create(&data).Error
	return data, err
}

func (d *broadcastMessageDAO) BatchCreate(ctx context.Context, datas []BroadcastMessage) ([]BroadcastMessage, error) {
	if len(datas) == 0 {
		return []BroadcastMessage{}, nil
	}
	const batchSize = 100
	now := time.Now().UnixMilli()
	for i := range datas {
		datas[i].Ctime, datas[i].Utime = now, now
	}
	err := d.db.WithContext(ctx).CreateInBatches(datas, batchSize).Error
	return datas, err
}

func (d *broadcastMessageDAO) UpdateStatus(ctx context.Context, id uint64, status string) error {
	res := d.db.WithContext(ctx).Model(&BroadcastMessage{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status": status,
			"utime":  time.Now().UnixMilli(),
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected < 1 {
		return fmt.Errorf("%w: id=%d", errs.ErrMessageNotFound, id)
	}
	return nil
}

func (d *broadcastMessageDAO) ListByBroadcast(ctx context.Context, broadcastID uint64) ([]BroadcastMessage, error) {
	var msgs []BroadcastMessage
	err := d.db.WithContext(ctx).
		Where("broadcast_id = ?", broadcastID).
		Order("id").
		Find(&msgs).Error
	return msgs, err
}

func (d *broadcastMessageDAO) ListFailedByBroadcast(ctx context.Context, broadcastID uint64) ([]BroadcastMessage, error) {
	var msgs []BroadcastMessage
	err := d.db.WithContext(ctx).
		Where("broadcast_id = ? AND status = ?", broadcastID, "failed").
		Order("id").
		Find(&msgs).Error
	if err != nil && errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return msgs, err
}

func (d *broadcastMessageDAO) CountByBroadcast(ctx context.Context, broadcastID uint64) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&BroadcastMessage{}).
		Where("broadcast_id = ?", broadcastID).
		Count(&n).Error
	return n, err
}
