package appointment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
)

// Validator decides whether a patient may take a block.
type Validator struct {
	policy Policy
	now    func() time.Time
}

func NewValidator(p Policy, now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	return &Validator{policy: p, now: now}
}

// CheckLead requires start strictly after now+lead.
func (v *Validator) CheckLead(start time.Time, lead time.Duration) error {
	if !start.After(v.now().Add(lead)) {
		return ErrLeadTimeNotMet
	}
	return nil
}

// CheckBooking runs every booking rule against a locked block. replacing is
// the appointment a reprogram gives up; it does not count against the
// patient.
func (v *Validator) CheckBooking(ctx context.Context, q repo.Queries, patientID uuid.UUID, b repo.BlockDetail, replacing *uuid.UUID, lead time.Duration) error {
	if err := v.CheckLead(b.StartAt, lead); err != nil {
		return err
	}
	if b.Kind != repo.BlockConsultation {
		return ErrBlockNotBookable
	}
	if !b.ScheduleActive {
		return ErrScheduleInactive
	}
	if !b.Available {
		return ErrBlockUnavailable
	}

	taken, err := q.HasActiveAppointment(ctx, b.ID)
	if err != nil {
		return fmt.Errorf("check block occupancy: %w", err)
	}
	if taken {
		return ErrBlockTaken
	}

	dup, err := q.FindDuplicate(ctx, patientID, b.ProfessionalID, b.StartAt, replacing)
	if err != nil {
		return fmt.Errorf("check duplicate booking: %w", err)
	}
	if dup {
		return ErrDuplicateBooking
	}

	if v.policy.DailyCap > 0 {
		n, err := q.CountActiveForPatientOn(ctx, patientID, b.ScheduleDate, replacing)
		if err != nil {
			return fmt.Errorf("count daily appointments: %w", err)
		}
		if n >= v.policy.DailyCap {
			return ErrDailyCapReached
		}
	}
	return nil
}
