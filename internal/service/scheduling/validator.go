package scheduling

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
)

// Rules are the clinic's schedule constraints.
type Rules struct {
	Location    *time.Location
	HorizonDays int
	OpensAt     Clock
	ClosesAt    Clock
	MinWorkday  int
	MaxWorkday  int
	MinSlot     int
	MaxSlot     int

	// BookingLead hides blocks starting sooner than this from open listings.
	BookingLead     time.Duration
	OpenBlocksLimit int
	MaxOpenBlocks   int
}

func DefaultRules() Rules {
	return Rules{
		Location:        time.UTC,
		HorizonDays:     180,
		OpensAt:         7 * 60,
		ClosesAt:        22 * 60,
		MinWorkday:      60,
		MaxWorkday:      720,
		MinSlot:         15,
		MaxSlot:         240,
		BookingLead:     30 * time.Minute,
		OpenBlocksLimit: 50,
		MaxOpenBlocks:   200,
	}
}

// Proposal is a schedule as submitted, before persistence.
type Proposal struct {
	ProfessionalID uuid.UUID
	Date           time.Time
	Start          Clock
	End            Clock
	SlotMinutes    int
}

// Validator checks proposals against Rules and the existing agenda.
type Validator struct {
	rules Rules
	now   func() time.Time
}

func NewValidator(rules Rules, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{rules: rules, now: now}
}

// Today is the current civil date in the clinic time zone.
func (v *Validator) Today() time.Time {
	return repo.CivilDate(v.now().In(v.rules.Location))
}

// CheckShape applies every rule that needs no storage.
func (v *Validator) CheckShape(p Proposal) error {
	date := repo.CivilDate(p.Date)
	today := v.Today()

	if date.Before(today) {
		return ErrDateInPast
	}
	if date.After(today.AddDate(0, 0, v.rules.HorizonDays)) {
		return ErrDateTooFar
	}
	if p.Start < v.rules.OpensAt || p.Start > v.rules.ClosesAt ||
		p.End < v.rules.OpensAt || p.End > v.rules.ClosesAt {
		return ErrOutsideOperatingHours
	}
	if p.End <= p.Start {
		return ErrInvalidTimeRange
	}
	span := int(p.End - p.Start)
	if span < v.rules.MinWorkday {
		return ErrWorkdayTooShort
	}
	if span > v.rules.MaxWorkday {
		return ErrWorkdayTooLong
	}
	if p.SlotMinutes < v.rules.MinSlot || p.SlotMinutes > v.rules.MaxSlot {
		return ErrSlotDurationOutOfRange
	}
	return nil
}

// Check runs CheckShape then the storage-backed rules.
func (v *Validator) Check(ctx context.Context, q repo.Queries, p Proposal) error {
	if err := v.CheckShape(p); err != nil {
		return err
	}

	if _, err := q.GetProfessional(ctx, p.ProfessionalID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrProfessionalNotFound
		}
		return fmt.Errorf("load professional: %w", err)
	}

	exists, err := q.ScheduleExists(ctx, p.ProfessionalID, p.Date)
	if err != nil {
		return fmt.Errorf("check existing schedule: %w", err)
	}
	if exists {
		return ErrScheduleExists
	}
	return nil
}
