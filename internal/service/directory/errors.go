package directory

import "github.com/mediconnect/mediconnect_backend/pkg/apperr"

var (
	ErrPatientNotFound      = apperr.NotFound("patient not found")
	ErrProfessionalNotFound = apperr.NotFound("professional not found")
	ErrInvalidPhone         = apperr.Validation("phone number is not valid")
	ErrInvalidEmail         = apperr.Validation("email address is not valid")
	ErrNameRequired         = apperr.Validation("full name is required")
	ErrNothingToUpdate      = apperr.Validation("no fields to update")
	ErrAlreadyRegistered    = apperr.Conflict("user already has a record")
)
