package report

import "github.com/mediconnect/mediconnect_backend/pkg/apperr"

var (
	ErrForbidden    = apperr.Forbidden("reports are restricted to staff")
	ErrInvalidRange = apperr.Validation("report start date is after end date")
	ErrInvalidState = apperr.Validation("unknown appointment status")
)
