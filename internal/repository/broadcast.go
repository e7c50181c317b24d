package repository

import (
	"context"
	"time"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/repository/dao"
)

type BroadcastRepository interface {
	Create(ctx context.Context, b domain.Broadcast) (domain.Broadcast, error)
	GetByID(ctx context.Context, id uint64) (domain.Broadcast, error)
	ListBySender(ctx context.Context, senderID int64, limit int) ([]domain.Broadcast, error)
}

type broadcastRepository struct {
	dao dao.BroadcastDAO
}

func NewBroadcastRepository(d dao.BroadcastDAO) BroadcastRepository {
	return &broadcastRepository{dao: d}
}

func (r *broadcastRepository) Create(ctx context.Context, b domain.Broadcast) (domain.Broadcast, error) {
	created, err := r.dao.Create(ctx, r.toEntity(b))
	if err != nil {
		return domain.Broadcast{}, err
	}
	return r.toDomain(created), nil
}

func (r *broadcastRepository) GetByID(ctx context.Context, id uint64) (domain.Broadcast, error) {
	b, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Broadcast{}, err
	}
	return r.toDomain(b), nil
}

func (r *broadcastRepository) ListBySender(ctx context.Context, senderID int64, limit int) ([]domain.Broadcast, error) {
	bs, err := r.dao.ListBySender(ctx, senderID, limit)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Broadcast, len(bs))
	for i := range bs {
		result[i] = r.toDomain(bs[i])
	}
	return result, nil
}

func (r *broadcastRepository) toEntity(b domain.Broadcast) dao.Broadcast {
	return dao.Broadcast{
		ID:             b.ID,
		SenderID:       b.SenderID,
		AlertID:        b.AlertID,
		SMSMessage:     b.SMSMessage,
		EmailMessage:   b.EmailMessage,
		Subject:        b.Subject,
		SenderAddress:  b.SenderAddress,
		RecipientCount: b.RecipientCount,
		SentSMS:        b.SentSMS,
		SentEmail:      b.SentEmail,
		SentClubhouse:  b.SentClubhouse,
	}
}

func (r *broadcastRepository) toDomain(b dao.Broadcast) domain.Broadcast {
	return domain.Broadcast{
		ID:             b.ID,
		SenderID:       b.SenderID,
		AlertID:        b.AlertID,
		SMSMessage:     b.SMSMessage,
		EmailMessage:   b.EmailMessage,
		Subject:        b.Subject,
		SenderAddress:  b.SenderAddress,
		RecipientCount: b.RecipientCount,
		SentSMS:        b.SentSMS,
		SentEmail:      b.SentEmail,
		SentClubhouse:  b.SentClubhouse,
		CreatedAt:      time.UnixMilli(b.Ctime),
	}
}
