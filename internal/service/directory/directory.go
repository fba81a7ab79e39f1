// Package directory keeps the patient and professional records behind user
// accounts.
package directory

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
	"github.com/mediconnect/mediconnect_backend/pkg/sms"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// PatientUpdate lists the fields a patient may change. Nil leaves a field
// untouched.
type PatientUpdate struct {
	FullName *string
	Email    *string
	Phone    *string
	Address  *string
}

type NewPatient struct {
	UserID     uuid.UUID
	FullName   string
	NationalID string
	Email      string
	Phone      string
	Address    string
}

type NewProfessional struct {
	UserID    uuid.UUID
	FullName  string
	Specialty string
	Email     string
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	MyPatient(ctx context.Context, actor authorize.Actor) (*repo.Patient, error)
	UpdatePatientProfile(ctx context.Context, actor authorize.Actor, u PatientUpdate) (*repo.Patient, error)
	GetProfessional(ctx context.Context, id uuid.UUID) (*repo.Professional, error)
	CreatePatient(ctx context.Context, p NewPatient) (*repo.Patient, error)
	CreateProfessional(ctx context.Context, p NewProfessional) (*repo.Professional, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type directoryService struct {
	store  repo.Store
	region string
	now    func() time.Time
}

// New builds the service. region is the default phone region, e.g. "CL".
func New(store repo.Store, region string) Service {
	if region == "" {
		region = "CL"
	}
	return &directoryService{store: store, region: region, now: time.Now}
}

func (s *directoryService) MyPatient(ctx context.Context, actor authorize.Actor) (*repo.Patient, error) {
	p, err := s.store.GetPatientByUser(ctx, actor.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrPatientNotFound
		}
		return nil, fmt.Errorf("get patient: %w", err)
	}
	return &p, nil
}

func (s *directoryService) UpdatePatientProfile(ctx context.Context, actor authorize.Actor, u PatientUpdate) (*repo.Patient, error) {
	ch, err := s.changes(u)
	if err != nil {
		return nil, err
	}
	if ch.Empty() {
		return nil, ErrNothingToUpdate
	}

	var out repo.Patient
	err = s.store.WithTx(ctx, func(q repo.Queries) error {
		p, err := q.GetPatientByUser(ctx, actor.UserID)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrPatientNotFound
			}
			return fmt.Errorf("get patient: %w", err)
		}
		out, err = q.UpdatePatient(ctx, p.ID, ch, s.now())
		if err != nil {
			return fmt.Errorf("update patient: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// changes validates and normalizes an update.
func (s *directoryService) changes(u PatientUpdate) (repo.PatientChanges, error) {
	var ch repo.PatientChanges
	if u.FullName != nil {
		name := strings.TrimSpace(*u.FullName)
		if name == "" {
			return ch, ErrNameRequired
		}
		ch.FullName = &name
	}
	if u.Email != nil {
		addr, err := normalizeEmail(*u.Email)
		if err != nil {
			return ch, err
		}
		ch.Email = &addr
	}
	if u.Phone != nil {
		phone, err := s.normalizePhone(*u.Phone)
		if err != nil {
			return ch, err
		}
		ch.Phone = &phone
	}
	if u.Address != nil {
		addr := strings.TrimSpace(*u.Address)
		ch.Address = &addr
	}
	return ch, nil
}

// normalizePhone returns E.164, or "" for a cleared number.
func (s *directoryService) normalizePhone(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	phone, err := sms.NormalizePhone(raw, s.region)
	if err != nil {
		return "", ErrInvalidPhone
	}
	return phone, nil
}

func normalizeEmail(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}
	a, err := mail.ParseAddress(raw)
	if err != nil || a.Address != raw {
		return "", ErrInvalidEmail
	}
	return strings.ToLower(a.Address), nil
}

func (s *directoryService) GetProfessional(ctx context.Context, id uuid.UUID) (*repo.Professional, error) {
	p, err := s.store.GetProfessional(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrProfessionalNotFound
		}
		return nil, fmt.Errorf("get professional: %w", err)
	}
	return &p, nil
}

func (s *directoryService) CreatePatient(ctx context.Context, in NewPatient) (*repo.Patient, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, ErrNameRequired
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	phone, err := s.normalizePhone(in.Phone)
	if err != nil {
		return nil, err
	}

	now := s.now()
	p := repo.Patient{
		ID:         repo.NewID(),
		UserID:     in.UserID,
		FullName:   name,
		NationalID: strings.TrimSpace(in.NationalID),
		Email:      email,
		Phone:      phone,
		Address:    strings.TrimSpace(in.Address),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.store.CreatePatient(ctx, &p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create patient: %w", err)
	}
	return &p, nil
}

func (s *directoryService) CreateProfessional(ctx context.Context, in NewProfessional) (*repo.Professional, error) {
	name := strings.TrimSpace(in.FullName)
	if name == "" {
		return nil, ErrNameRequired
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}

	p := repo.Professional{
		ID:        repo.NewID(),
		UserID:    in.UserID,
		FullName:  name,
		Specialty: strings.TrimSpace(in.Specialty),
		Email:     email,
		Active:    true,
	}
	if err := s.store.CreateProfessional(ctx, &p); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyRegistered
		}
		return nil, fmt.Errorf("create professional: %w", err)
	}
	return &p, nil
}
