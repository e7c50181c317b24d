package web

import (
	"fmt"

	"github.com/rangerops/clubhouse-rbs/internal/domain"
	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

// criteriaPayload is the union of per-mode targeting fields. The alert's
// mode decides which variant gets built; stray fields for other modes are
// ignored rather than rejected.
type criteriaPayload struct {
	Statuses   []string `json:"statuses" form:"statuses"`
	PositionID int64    `json:"position_id" form:"position_id"`
	SignedUp   bool     `json:"signed_up" form:"signed_up"`
	SlotID     int64    `json:"slot_id" form:"slot_id"`
	OnSite     bool     `json:"on_site" form:"on_site"`
	Attending  bool     `json:"attending" form:"attending"`
	Training   bool     `json:"training" form:"training"`
}

func buildCriteria(mode domain.AlertMode, p criteriaPayload) (domain.Criteria, error) {
	switch mode {
	case domain.ModeSimple:
		return domain.SimpleCriteria{}, nil
	case domain.ModeStatus:
		return domain.StatusCriteria{Statuses: p.Statuses}, nil
	case domain.ModePosition:
		return domain.PositionCriteria{PositionID: p.PositionID, SignedUp: p.SignedUp}, nil
	case domain.ModeMuster:
		return domain.MusterCriteria{
			PositionCriteria: domain.PositionCriteria{PositionID: p.PositionID, SignedUp: p.SignedUp},
		}, nil
	case domain.ModeSlot:
		return domain.SlotCriteria{SlotID: p.SlotID}, nil
	case domain.ModeRestrictions:
		return domain.RestrictionsCriteria{OnSite: p.OnSite, Attending: p.Attending, Training: p.Training}, nil
	default:
		return nil, fmt.Errorf("%w: alert mode %q", errs.ErrInvalidSelector, mode)
	}
}
