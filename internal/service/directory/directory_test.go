package directory

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo/repotest"
	"github.com/mediconnect/mediconnect_backend/pkg/apperr"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

func ptr(s string) *string { return &s }

func TestUpdatePatientProfile(t *testing.T) {
	ctx := context.Background()
	svc := New(repotest.New(), "CL")

	userID := uuid.New()
	if _, err := svc.CreatePatient(ctx, NewPatient{UserID: userID, FullName: "Ana Pérez", NationalID: "11.111.111-1"}); err != nil {
		t.Fatal(err)
	}
	actor := authorize.Actor{UserID: userID, Roles: []authorize.Role{authorize.RolePatient}}

	tests := []struct {
		name    string
		update  PatientUpdate
		wantErr error
		check   func(t *testing.T, phone, email, name string)
	}{
		{
			name:   "local mobile is normalized",
			update: PatientUpdate{Phone: ptr("9 8765 4321")},
			check: func(t *testing.T, phone, _, _ string) {
				if phone != "+56987654321" {
					t.Errorf("phone = %q", phone)
				}
			},
		},
		{
			name:   "email lowercased, name kept",
			update: PatientUpdate{Email: ptr("Ana.Perez@Example.CL")},
			check: func(t *testing.T, _, email, name string) {
				if email != "ana.perez@example.cl" || name != "Ana Pérez" {
					t.Errorf("email=%q name=%q", email, name)
				}
			},
		},
		{name: "garbage phone", update: PatientUpdate{Phone: ptr("call me")}, wantErr: ErrInvalidPhone},
		{name: "bad email", update: PatientUpdate{Email: ptr("ana at example")}, wantErr: ErrInvalidEmail},
		{name: "blank name", update: PatientUpdate{FullName: ptr("  ")}, wantErr: ErrNameRequired},
		{name: "nothing", update: PatientUpdate{}, wantErr: ErrNothingToUpdate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := svc.UpdatePatientProfile(ctx, actor, tt.update)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if !errors.Is(err, apperr.ErrValidation) {
					t.Errorf("kind = %v", apperr.KindOf(err))
				}
				return
			}
			tt.check(t, p.Phone, p.Email, p.FullName)
		})
	}
}

func TestUpdatePatientProfile_NoRecord(t *testing.T) {
	svc := New(repotest.New(), "CL")
	_, err := svc.UpdatePatientProfile(context.Background(), authorize.Actor{UserID: uuid.New()}, PatientUpdate{Address: ptr("Av. Providencia 1")})
	if !errors.Is(err, ErrPatientNotFound) {
		t.Errorf("err = %v", err)
	}
}

func TestCreate_Duplicates(t *testing.T) {
	ctx := context.Background()
	svc := New(repotest.New(), "")
	userID := uuid.New()

	if _, err := svc.CreateProfessional(ctx, NewProfessional{UserID: userID, FullName: "Dr. Soto", Specialty: "Cardiología"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreateProfessional(ctx, NewProfessional{UserID: userID, FullName: "Dr. Soto"}); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("second professional: %v", err)
	}

	if _, err := svc.CreatePatient(ctx, NewPatient{UserID: uuid.New(), FullName: "Ana", NationalID: "1-9"}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.CreatePatient(ctx, NewPatient{UserID: uuid.New(), FullName: "Otra", NationalID: "1-9"}); !errors.Is(err, ErrAlreadyRegistered) {
		t.Errorf("same national id: %v", err)
	}
}
