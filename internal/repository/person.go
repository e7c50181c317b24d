package repository

import (
	"context"

	"github.com/ecodeclub/ekit/slice"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/repository/dao"
)

// PersonRepository exposes the personnel attributes this engine consumes:
// phone state mutation plus the recipient-selection queries. The CRUD layer
// owns everything else about a person.
type PersonRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Person, error)
	// FindOwner returns the person holding the number in either slot.
	FindOwner(ctx context.Context, number string) (domain.Person, error)
	UpdatePhones(ctx context.Context, p domain.Person) error

	ListMessageable(ctx context.Context) ([]domain.Recipient, error)
	ListByStatuses(ctx context.Context, statuses []string) ([]domain.Recipient, error)
	ListByPosition(ctx context.Context, positionID int64, signedUp bool) ([]domain.Recipient, error)
	ListBySlot(ctx context.Context, slotID int64) ([]domain.Recipient, error)
	ListByRestrictions(ctx context.Context, onSite, attending, training bool) ([]domain.Recipient, error)

	CountMessageable(ctx context.Context) (int, error)
	CountByStatuses(ctx context.Context, statuses []string) (int, error)
	CountByPosition(ctx context.Context, positionID int64, signedUp bool) (int, error)
	CountBySlot(ctx context.Context, slotID int64) (int, error)
	CountByRestrictions(ctx context.Context, onSite, attending, training bool) (int, error)
}

type personRepository struct {
	dao dao.PersonDAO
}

func NewPersonRepository(d dao.PersonDAO) PersonRepository {
	return &personRepository{dao: d}
}

func (r *personRepository) GetByID(ctx context.Context, id int64) (domain.Person, error) {
	p, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Person{}, err
	}
	return r.toDomain(p), nil
}

func (r *personRepository) FindOwner(ctx context.Context, number string) (domain.Person, error) {
	p, err := r.dao.FindByPhone(ctx, number)
	if err != nil {
		return domain.Person{}, err
	}
	return r.toDomain(p), nil
}

func (r *personRepository) UpdatePhones(ctx context.Context, p domain.Person) error {
	return r.dao.UpdatePhones(ctx, r.toEntity(p))
}

func (r *personRepository) ListMessageable(ctx context.Context) ([]domain.Recipient, error) {
	ps, err := r.dao.ListMessageable(ctx)
	return r.toRecipients(ps), err
}

func (r *personRepository) ListByStatuses(ctx context.Context, statuses []string) ([]domain.Recipient, error) {
	ps, err := r.dao.ListByStatuses(ctx, statuses)
	return r.toRecipients(ps), err
}

func (r *personRepository) ListByPosition(ctx context.Context, positionID int64, signedUp bool) ([]domain.Recipient, error) {
	ps, err := r.dao.ListByPosition(ctx, positionID, signedUp)
	return r.toRecipients(ps), err
}

func (r *personRepository) ListBySlot(ctx context.Context, slotID int64) ([]domain.Recipient, error) {
	ps, err := r.dao.ListBySlot(ctx, slotID)
	return r.toRecipients(ps), err
}

func (r *personRepository) ListByRestrictions(ctx context.Context, onSite, attending, training bool) ([]domain.Recipient, error) {
	ps, err := r.dao.ListByRestrictions(ctx, onSite, attending, training)
	return r.toRecipients(ps), err
}

func (r *personRepository) CountMessageable(ctx context.Context) (int, error) {
	n, err := r.dao.CountMessageable(ctx)
	return int(n), err
}

func (r *personRepository) CountByStatuses(ctx context.Context, statuses []string) (int, error) {
	n, err := r.dao.CountByStatuses(ctx, statuses)
	return int(n), err
}

func (r *personRepository) CountByPosition(ctx context.Context, positionID int64, signedUp bool) (int, error) {
	n, err := r.dao.CountByPosition(ctx, positionID, signedUp)
	return int(n), err
}

func (r *personRepository) CountBySlot(ctx context.Context, slotID int64) (int, error) {
	n, err := r.dao.CountBySlot(ctx, slotID)
	return int(n), err
}

func (r *personRepository) CountByRestrictions(ctx context.Context, onSite, attending, training bool) (int, error) {
	n, err := r.dao.CountByRestrictions(ctx, onSite, attending, training)
	return int(n), err
}

func (r *personRepository) toRecipients(ps []dao.Person) []domain.Recipient {
	return slice.Map(ps, func(_ int, p dao.Person) domain.Recipient {
		return domain.Recipient{
			ID:       p.ID,
			Callsign: p.Callsign,
			Status:   p.Status,
			Email:    p.Email,
			OnPlaya: domain.Phone{
				Number:   deref(p.OnPlayaPhone),
				Verified: p.OnPlayaVerified,
				Stopped:  p.OnPlayaStopped,
			},
			OffPlaya: domain.Phone{
				Number:   deref(p.OffPlayaPhone),
				Verified: p.OffPlayaVerified,
				Stopped:  p.OffPlayaStopped,
			},
		}
	})
}

func (r *personRepository) toDomain(p dao.Person) domain.Person {
	return domain.Person{
		ID:             p.ID,
		Callsign:       p.Callsign,
		Status:         p.Status,
		Email:          p.Email,
		MessageAllowed: p.MessageAllowed,
		OnPlaya: domain.Phone{
			Number:   deref(p.OnPlayaPhone),
			Verified: p.OnPlayaVerified,
			Stopped:  p.OnPlayaStopped,
			Code:     p.OnPlayaCode,
		},
		OffPlaya: domain.Phone{
			Number:   deref(p.OffPlayaPhone),
			Verified: p.OffPlayaVerified,
			Stopped:  p.OffPlayaStopped,
			Code:     p.OffPlayaCode,
		},
	}
}

func (r *personRepository) toEntity(p domain.Person) dao.Person {
	return dao.Person{
		ID:               p.ID,
		Callsign:         p.Callsign,
		Status:           p.Status,
		Email:            p.Email,
		MessageAllowed:   p.MessageAllowed,
		OnPlayaPhone:     nullable(p.OnPlaya.Number),
		OffPlayaPhone:    nullable(p.OffPlaya.Number),
		OnPlayaVerified:  p.OnPlaya.Verified,
		OffPlayaVerified: p.OffPlaya.Verified,
		OnPlayaStopped:   p.OnPlaya.Stopped,
		OffPlayaStopped:  p.OffPlaya.Stopped,
		OnPlayaCode:      p.OnPlaya.Code,
		OffPlayaCode:     p.OffPlaya.Code,
	}
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
