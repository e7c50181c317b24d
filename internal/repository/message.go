package repository

import (
	"context"
	"time"

	"github.com/ecodeclub/ekit/slice"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/repository/dao"
)

type MessageRepository interface {
	// RecordAttempt appends one delivery-log row.
	RecordAttempt(ctx context.Context, m domain.Message) (domain.Message, error)
	// RecordAttempts appends a batch of rows and returns them with IDs set.
	RecordAttempts(ctx context.Context, ms []domain.Message) ([]domain.Message, error)
	// UpdateAttemptStatus resolves one row in place. Deferred-task
	// resolution and retry call this; first attempts always append.
	UpdateAttemptStatus(ctx context.Context, id uint64, status domain.MessageStatus) error

	ListByBroadcast(ctx context.Context, broadcastID uint64) ([]domain.Message, error)
	ListFailedByBroadcast(ctx context.Context, broadcastID uint64) ([]domain.Message, error)
	CountByBroadcast(ctx context.Context, broadcastID uint64) (int64, error)
}

type messageRepository struct {
	dao dao.BroadcastMessageDAO
}

func NewMessageRepository(d dao.BroadcastMessageDAO) MessageRepository {
	return &messageRepository{dao: d}
}

func (r *messageRepository) RecordAttempt(ctx context.Context, m domain.Message) (domain.Message, error) {
	created, err := r.dao.Create(ctx, r.toEntity(m))
	if err != nil {
		return domain.Message{}, err
	}
	return r.toDomain(created), nil
}

func (r *messageRepository) RecordAttempts(ctx context.Context, ms []domain.Message) ([]domain.Message, error) {
	if len(ms) == 0 {
		return nil, nil
	}
	entities := slice.Map(ms, func(_ int, m domain.Message) dao.BroadcastMessage {
		return r.toEntity(m)
	})
	created, err := r.dao.BatchCreate(ctx, entities)
	if err != nil {
		return nil, err
	}
	return slice.Map(created, func(_ int, m dao.BroadcastMessage) domain.Message {
		return r.toDomain(m)
	}), nil
}

func (r *messageRepository) UpdateAttemptStatus(ctx context.Context, id uint64, status domain.MessageStatus) error {
	return r.dao.UpdateStatus(ctx, id, string(status))
}

func (r *messageRepository) ListByBroadcast(ctx context.Context, broadcastID uint64) ([]domain.Message, error) {
	msgs, err := r.dao.ListByBroadcast(ctx, broadcastID)
	if err != nil {
		return nil, err
	}
	return slice.Map(msgs, func(_ int, m dao.BroadcastMessage) domain.Message {
		return r.toDomain(m)
	}), nil
}

func (r *messageRepository) ListFailedByBroadcast(ctx context.Context, broadcastID uint64) ([]domain.Message, error) {
	msgs, err := r.dao.ListFailedByBroadcast(ctx, broadcastID)
	if err != nil {
		return nil, err
	}
	return slice.Map(msgs, func(_ int, m dao.BroadcastMessage) domain.Message {
		return r.toDomain(m)
	}), nil
}

func (r *messageRepository) CountByBroadcast(ctx context.Context, broadcastID uint64) (int64, error) {
	return r.dao.CountByBroadcast(ctx, broadcastID)
}

func (r *messageRepository) toEntity(m domain.Message) dao.BroadcastMessage {
	var broadcastID *uint64
	if m.BroadcastID != 0 {
		id := m.BroadcastID
		broadcastID = &id
	}
	return dao.BroadcastMessage{
		ID:          m.ID,
		BroadcastID: broadcastID,
		AlertID:     m.AlertID,
		PersonID:    m.PersonID,
		Channel:     string(m.Channel),
		Address:     m.Address,
		Direction:   string(m.Direction),
		Status:      string(m.Status),
		Body:        m.Body,
	}
}

func (r *messageRepository) toDomain(m dao.BroadcastMessage) domain.Message {
	var broadcastID uint64
	if m.BroadcastID != nil {
		broadcastID = *m.BroadcastID
	}
	return domain.Message{
		ID:          m.ID,
		BroadcastID: broadcastID,
		AlertID:     m.AlertID,
		PersonID:    m.PersonID,
		Channel:     domain.Channel(m.Channel),
		Address:     m.Address,
		Direction:   domain.Direction(m.Direction),
		Status:      domain.MessageStatus(m.Status),
		Body:        m.Body,
		CreatedAt:   time.UnixMilli(m.Ctime),
		UpdatedAt:   time.UnixMilli(m.Utime),
	}
}
