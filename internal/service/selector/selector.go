// Package selector resolves an alert's audience from tagged criteria.
package selector

import (
	"context"
	"fmt"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/errs"
	"github.com/rangerops/clubhouse-rbs/internal/repository"
)

//go:generate mockgen -source=./selector.go -package=selectormocks -destination=./mocks/selector.mock.go
type Service interface {
	// Select materializes the audience for an alert. Results are ordered
	// by callsign and only contain people with messaging enabled.
	Select(ctx context.Context, alert domain.Alert, criteria domain.Criteria) ([]domain.Recipient, error)
	// Count sizes the audience without loading addresses. Used by the
	// preview endpoint so a sender can see reach before transmitting.
	Count(ctx context.Context, alert domain.Alert, criteria domain.Criteria) (int, error)
}

type service struct {
	repo repository.PersonRepository
}

func NewService(repo repository.PersonRepository) Service {
	return &service{repo: repo}
}

func (s *service) Select(ctx context.Context, alert domain.Alert, criteria domain.Criteria) ([]domain.Recipient, error) {
	if err := s.check(alert, criteria); err != nil {
		return nil, err
	}
	switch c := criteria.(type) {
	case domain.SimpleCriteria:
		return s.repo.ListMessageable(ctx)
	case domain.StatusCriteria:
		return s.repo.ListByStatuses(ctx, c.Statuses)
	case domain.PositionCriteria:
		return s.repo.ListByPosition(ctx, c.PositionID, c.SignedUp)
	case domain.MusterCriteria:
		return s.repo.ListByPosition(ctx, c.PositionID, c.SignedUp)
	case domain.SlotCriteria:
		return s.repo.ListBySlot(ctx, c.SlotID)
	case domain.RestrictionsCriteria:
		return s.repo.ListByRestrictions(ctx, c.OnSite, c.Attending, c.Training)
	default:
		return nil, fmt.Errorf("%w: unknown criteria %T", errs.ErrInvalidSelector, criteria)
	}
}

func (s *service) Count(ctx context.Context, alert domain.Alert, criteria domain.Criteria) (int, error) {
	if err := s.check(alert, criteria); err != nil {
		return 0, err
	}
	switch c := criteria.(type) {
	case domain.SimpleCriteria:
		return s.repo.CountMessageable(ctx)
	case domain.StatusCriteria:
		return s.repo.CountByStatuses(ctx, c.Statuses)
	case domain.PositionCriteria:
		return s.repo.CountByPosition(ctx, c.PositionID, c.SignedUp)
	case domain.MusterCriteria:
		return s.repo.CountByPosition(ctx, c.PositionID, c.SignedUp)
	case domain.SlotCriteria:
		return s.repo.CountBySlot(ctx, c.SlotID)
	case domain.RestrictionsCriteria:
		return s.repo.CountByRestrictions(ctx, c.OnSite, c.Attending, c.Training)
	default:
		return 0, fmt.Errorf("%w: unknown criteria %T", errs.ErrInvalidSelector, criteria)
	}
}

func (s *service) check(alert domain.Alert, criteria domain.Criteria) error {
	if criteria == nil {
		return fmt.Errorf("%w: no criteria", errs.ErrInvalidSelector)
	}
	if err := criteria.Validate(); err != nil {
		return err
	}
	if criteria.Mode() != alert.Mode {
		return fmt.Errorf("%w: criteria mode %q does not match alert mode %q",
			errs.ErrInvalidSelector, criteria.Mode(), alert.Mode)
	}
	return nil
}
