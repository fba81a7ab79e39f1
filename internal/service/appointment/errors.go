package appointment

import "github.com/mediconnect/mediconnect_backend/pkg/apperr"

var (
	ErrLeadTimeNotMet   = apperr.Validation("not enough notice before the appointment starts")
	ErrPatientRequired  = apperr.Validation("patient_id is required")
	ErrReasonRequired   = apperr.Validation("cancellation reason is required")
	ErrSameBlock        = apperr.Validation("new block is the current block")
	ErrReasonNotAllowed = apperr.Validation("cancellation reason is reserved for staff")

	ErrDuplicateBooking = apperr.Conflict("patient already has this appointment")
	ErrDailyCapReached  = apperr.Conflict("patient reached the daily appointment limit")
	ErrBlockUnavailable = apperr.Conflict("block is no longer available")
	ErrScheduleInactive = apperr.Conflict("schedule is not active")
	ErrBlockTaken       = apperr.Conflict("block already has an appointment")
	ErrBlockNotBookable = apperr.Conflict("block is not open for consultations")

	ErrInvalidTransition = apperr.StateConflict("transition not allowed from the current status")

	ErrAppointmentNotFound = apperr.NotFound("appointment not found")
	ErrBlockNotFound       = apperr.NotFound("block not found")
	ErrPatientNotFound     = apperr.NotFound("patient not found")
	ErrReasonNotFound      = apperr.NotFound("cancellation reason not found")

	ErrForbidden = apperr.Forbidden("not allowed to act on this appointment")
)
