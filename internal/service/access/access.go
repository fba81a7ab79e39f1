// Package access maps an authenticated actor onto the clinic records it may
// touch: admins and receptionists act on anything, a professional on their
// own agenda, a patient on their own appointments.
package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/pkg/apperr"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

var (
	ErrForbidden          = apperr.Forbidden("not allowed to act on this resource")
	ErrNoProfessionalFile = apperr.Forbidden("user has no professional record")
	ErrNoPatientFile      = apperr.Forbidden("user has no patient record")
)

// Scope is what an actor may reach. Exactly one of the three shapes holds:
// unrestricted staff, a confined professional, or a patient.
type Scope struct {
	Actor          authorize.Actor
	ProfessionalID *uuid.UUID
	PatientID      *uuid.UUID
}

// Unrestricted reports whether the actor may act on any schedule or
// appointment.
func (s Scope) Unrestricted() bool {
	return s.Actor.IsAdmin() || s.Actor.Has(authorize.RoleReceptionist)
}

func (s Scope) IsStaff() bool { return s.Actor.IsStaff() }

func (s Scope) IsPatient() bool { return !s.Actor.IsStaff() && s.PatientID != nil }

// OwnsProfessional reports whether the actor may act on the professional's
// agenda.
func (s Scope) OwnsProfessional(id uuid.UUID) bool {
	if s.Unrestricted() {
		return true
	}
	return s.ProfessionalID != nil && *s.ProfessionalID == id
}

// CanSeeAppointment reports whether the actor may read or change an
// appointment between patientID and professionalID.
func (s Scope) CanSeeAppointment(patientID, professionalID uuid.UUID) bool {
	if s.Unrestricted() {
		return true
	}
	if s.ProfessionalID != nil && *s.ProfessionalID == professionalID {
		return true
	}
	return s.PatientID != nil && *s.PatientID == patientID
}

// Resolver loads the directory records behind an actor.
type Resolver struct {
	q repo.Queries
}

func NewResolver(q repo.Queries) *Resolver {
	return &Resolver{q: q}
}

func (r *Resolver) Resolve(ctx context.Context, actor authorize.Actor) (Scope, error) {
	sc := Scope{Actor: actor}
	if sc.Unrestricted() {
		return sc, nil
	}

	if actor.Has(authorize.RoleProfessional) {
		p, err := r.q.GetProfessionalByUser(ctx, actor.UserID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return Scope{}, ErrNoProfessionalFile
		case err != nil:
			return Scope{}, fmt.Errorf("resolve professional: %w", err)
		}
		sc.ProfessionalID = &p.ID
		return sc, nil
	}

	if actor.Has(authorize.RolePatient) {
		p, err := r.q.GetPatientByUser(ctx, actor.UserID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return Scope{}, ErrNoPatientFile
		case err != nil:
			return Scope{}, fmt.Errorf("resolve patient: %w", err)
		}
		sc.PatientID = &p.ID
		return sc, nil
	}

	return Scope{}, ErrForbidden
}
