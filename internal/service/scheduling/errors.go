package scheduling

import "github.com/mediconnect/mediconnect_backend/pkg/apperr"

var (
	ErrInvalidClock           = apperr.Validation("time must be HH:MM")
	ErrDateInPast             = apperr.Validation("schedule date is in the past")
	ErrDateTooFar             = apperr.Validation("schedule date is too far in the future")
	ErrOutsideOperatingHours  = apperr.Validation("schedule must fall within clinic operating hours")
	ErrInvalidTimeRange       = apperr.Validation("end time must be after start time")
	ErrWorkdayTooShort        = apperr.Validation("schedule is shorter than the minimum workday")
	ErrWorkdayTooLong         = apperr.Validation("schedule is longer than the maximum workday")
	ErrSlotDurationOutOfRange = apperr.Validation("appointment duration is out of range")
	ErrInvalidBlock           = apperr.Validation("block end must be after block start")
	ErrInvalidBlockKind       = apperr.Validation("unknown block kind")
	ErrBlockOutsideSchedule   = apperr.Validation("block falls outside the schedule")
	ErrBlocksOverlap          = apperr.Validation("blocks overlap")
	ErrNoBlocks               = apperr.Validation("schedule yields no blocks")
	ErrProfessionalRequired   = apperr.Validation("professional_id is required")

	ErrScheduleExists                = apperr.Conflict("professional already has a schedule on this date")
	ErrScheduleHasActiveAppointments = apperr.Conflict("schedule has active appointments")
	ErrScheduleHasHistory            = apperr.Conflict("schedule has appointment history; deactivate it instead")

	ErrProfessionalNotFound = apperr.NotFound("professional not found")
	ErrScheduleNotFound     = apperr.NotFound("schedule not found")

	ErrForbidden = apperr.Forbidden("not allowed to manage this schedule")
)
