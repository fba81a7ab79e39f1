package access

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/repo/repotest"
	"github.com/mediconnect/mediconnect_backend/pkg/apperr"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

func TestResolve(t *testing.T) {
	ctx := context.Background()
	store := repotest.New()

	docUser, patUser := uuid.New(), uuid.New()
	doc := repo.Professional{UserID: docUser, FullName: "Dr. Soto", Specialty: "Medicina General", Active: true}
	if err := store.CreateProfessional(ctx, &doc); err != nil {
		t.Fatal(err)
	}
	pat := repo.Patient{UserID: patUser, FullName: "Ana Pérez", NationalID: "11.111.111-1"}
	if err := store.CreatePatient(ctx, &pat); err != nil {
		t.Fatal(err)
	}

	r := NewResolver(store)

	t.Run("receptionist is unrestricted", func(t *testing.T) {
		sc, err := r.Resolve(ctx, authorize.Actor{UserID: uuid.New(), Roles: []authorize.Role{authorize.RoleReceptionist}})
		if err != nil {
			t.Fatal(err)
		}
		if !sc.Unrestricted() || !sc.OwnsProfessional(uuid.New()) {
			t.Error("receptionist should reach every agenda")
		}
	})

	t.Run("professional is confined", func(t *testing.T) {
		sc, err := r.Resolve(ctx, authorize.Actor{UserID: docUser, Roles: []authorize.Role{authorize.RoleProfessional}})
		if err != nil {
			t.Fatal(err)
		}
		if !sc.OwnsProfessional(doc.ID) || sc.OwnsProfessional(uuid.New()) {
			t.Error("professional ownership wrong")
		}
		if !sc.CanSeeAppointment(uuid.New(), doc.ID) {
			t.Error("professional should see own appointments")
		}
	})

	t.Run("patient sees own appointments", func(t *testing.T) {
		sc, err := r.Resolve(ctx, authorize.Actor{UserID: patUser, Roles: []authorize.Role{authorize.RolePatient}})
		if err != nil {
			t.Fatal(err)
		}
		if !sc.IsPatient() || !sc.CanSeeAppointment(pat.ID, uuid.New()) || sc.CanSeeAppointment(uuid.New(), doc.ID) {
			t.Error("patient scope wrong")
		}
	})

	t.Run("professional role without record", func(t *testing.T) {
		_, err := r.Resolve(ctx, authorize.Actor{UserID: uuid.New(), Roles: []authorize.Role{authorize.RoleProfessional}})
		if !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("err = %v, want forbidden", err)
		}
	})

	t.Run("no roles", func(t *testing.T) {
		_, err := r.Resolve(ctx, authorize.Actor{UserID: uuid.New()})
		if !errors.Is(err, ErrForbidden) {
			t.Errorf("err = %v, want ErrForbidden", err)
		}
	})
}
