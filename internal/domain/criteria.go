package domain

import (
	"fmt"

	"github.com/rangerops/clubhouse-rbs/internal/errs"
)

// Criteria is the targeting input of one broadcast. Each alert mode has its
// own variant; the selector dispatches on the concrete type instead of
// probing optional fields.
type Criteria interface {
	Mode() AlertMode
	Validate() error
}

// SimpleCriteria targets every messageable person.
type SimpleCriteria struct{}

func (SimpleCriteria) Mode() AlertMode { return ModeSimple }
func (SimpleCriteria) Validate() error { return nil }

// StatusCriteria targets people holding one of the given statuses.
type StatusCriteria struct {
	Statuses []string
}

func (StatusCriteria) Mode() AlertMode { return ModeStatus }

func (c StatusCriteria) Validate() error {
	if len(c.Statuses) == 0 {
		return fmt.Errorf("%w: statuses required", errs.ErrInvalidSelector)
	}
	return nil
}

// PositionCriteria targets people by position signup state.
type PositionCriteria struct {
	PositionID int64
	// SignedUp selects people signed up for the position when true,
	// people holding the position but not signed up when false.
	SignedUp bool
}

func (PositionCriteria) Mode() AlertMode { return ModePosition }

func (c PositionCriteria) Validate() error {
	if c.PositionID <= 0 {
		return fmt.Errorf("%w: position_id required", errs.ErrInvalidSelector)
	}
	return nil
}

// MusterCriteria composes position targeting for muster alerts.
type MusterCriteria struct {
	PositionCriteria
}

func (MusterCriteria) Mode() AlertMode { return ModeMuster }

// SlotCriteria targets people signed up for one shift slot.
type SlotCriteria struct {
	SlotID int64
}

func (SlotCriteria) Mode() AlertMode { return ModeSlot }

func (c SlotCriteria) Validate() error {
	if c.SlotID <= 0 {
		return fmt.Errorf("%w: slot_id required", errs.ErrInvalidSelector)
	}
	return nil
}

// RestrictionsCriteria narrows the audience by presence flags.
type RestrictionsCriteria struct {
	OnSite    bool
	Attending bool
	Training  bool
}

func (RestrictionsCriteria) Mode() AlertMode { return ModeRestrictions }

func (c RestrictionsCriteria) Validate() error {
	if !c.OnSite && !c.Attending && !c.Training {
		return fmt.Errorf("%w: at least one restriction flag required", errs.ErrInvalidSelector)
	}
	return nil
}
