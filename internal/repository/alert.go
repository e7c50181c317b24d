package repository

import (
	"context"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/repository/cache"
	"github.com/rangerops/clubhouse-rbs/internal/repository/dao"
)

type AlertRepository interface {
	GetByID(ctx context.Context, id int64) (domain.Alert, error)
	List(ctx context.Context) ([]domain.Alert, error)
}

type alertRepository struct {
	dao   dao.AlertDAO
	cache *cache.AlertCache
}

func NewAlertRepository(d dao.AlertDAO, c *cache.AlertCache) AlertRepository {
	return &alertRepository{dao: d, cache: c}
}

func (r *alertRepository) GetByID(ctx context.Context, id int64) (domain.Alert, error) {
	if alert, err := r.cache.Get(ctx, id); err == nil {
		return alert, nil
	}
	a, err := r.dao.GetByID(ctx, id)
	if err != nil {
		return domain.Alert{}, err
	}
	alert := r.toDomain(a)
	r.cache.Set(ctx, alert)
	return alert, nil
}

func (r *alertRepository) List(ctx context.Context) ([]domain.Alert, error) {
	as, err := r.dao.List(ctx)
	if err != nil {
		return nil, err
	}
	result := make([]domain.Alert, len(as))
	for i := range as {
		result[i] = r.toDomain(as[i])
	}
	return result, nil
}

func (r *alertRepository) toDomain(a dao.Alert) domain.Alert {
	return domain.Alert{
		ID:      a.ID,
		Title:   a.Title,
		OnPlaya: a.OnPlaya,
		Mode:    domain.AlertMode(a.Mode),
	}
}
