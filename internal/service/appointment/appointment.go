package appointment

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/service/access"
	"github.com/mediconnect/mediconnect_backend/internal/service/notification"
	"github.com/mediconnect/mediconnect_backend/pkg/apperr"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
	"github.com/mediconnect/mediconnect_backend/pkg/observability"
)

// DefaultRescheduleReason is preferred when a reprogram names no reason.
const DefaultRescheduleReason = "Reprogramación"

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

type BookRequest struct {
	// PatientID defaults to the calling patient. Staff must set it.
	PatientID      *uuid.UUID
	BlockID        uuid.UUID
	ReasonForVisit string
	Notes          string
}

type CancelRequest struct {
	ReasonID uuid.UUID
	Note     string
}

type RescheduleRequest struct {
	NewBlockID uuid.UUID
	// ReasonID defaults to the staff reschedule reason.
	ReasonID *uuid.UUID
	Note     string
}

type ListRequest struct {
	PatientID      *uuid.UUID
	ProfessionalID *uuid.UUID
	Statuses       []repo.AppointmentStatus
	From           *time.Time
	To             *time.Time
	Page           int
	PerPage        int
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	Book(ctx context.Context, actor authorize.Actor, req BookRequest) (*repo.AppointmentDetail, error)
	Cancel(ctx context.Context, actor authorize.Actor, id uuid.UUID, req CancelRequest) (*repo.AppointmentDetail, error)
	Reprogram(ctx context.Context, actor authorize.Actor, id uuid.UUID, req RescheduleRequest) (*repo.AppointmentDetail, error)
	Confirm(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error)
	Start(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error)
	MarkAttended(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error)
	MarkNoShow(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error)
	Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error)
	List(ctx context.Context, actor authorize.Actor, req ListRequest) ([]repo.AppointmentDetail, error)
	ListReasons(ctx context.Context, actor authorize.Actor) ([]repo.CancellationReason, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type appointmentService struct {
	store     repo.Store
	access    *access.Resolver
	policy    Policy
	validator *Validator
	notifier  notification.Notifier
	reasons   ReasonCache
	metrics   *observability.ClinicMetrics
	now       func() time.Time
}

type Option func(*appointmentService)

func WithClock(now func() time.Time) Option {
	return func(s *appointmentService) { s.now = now }
}

func WithReasonCache(c ReasonCache) Option {
	return func(s *appointmentService) { s.reasons = c }
}

func WithMetrics(m *observability.ClinicMetrics) Option {
	return func(s *appointmentService) { s.metrics = m }
}

func New(store repo.Store, policy Policy, notifier notification.Notifier, opts ...Option) Service {
	s := &appointmentService{
		store:    store,
		access:   access.NewResolver(store),
		policy:   policy,
		notifier: notifier,
		now:      time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.notifier == nil {
		s.notifier = notification.Nop
	}
	if s.metrics == nil {
		s.metrics = observability.NewClinicMetrics()
	}
	s.validator = NewValidator(policy, s.now)
	return s
}

// reject records refusals that carry a user-facing kind.
func (s *appointmentService) reject(ctx context.Context, op string, err error) error {
	if kind := apperr.KindOf(err); kind != nil {
		s.metrics.Rejected(ctx, op, kind.Error())
	}
	return err
}

func (s *appointmentService) Book(ctx context.Context, actor authorize.Actor, req BookRequest) (*repo.AppointmentDetail, error) {
	sc, err := s.access.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}

	patientID, err := bookingPatient(sc, req.PatientID)
	if err != nil {
		return nil, s.reject(ctx, "book", err)
	}

	now := s.now()
	appt := repo.Appointment{
		ID:             repo.NewID(),
		PatientID:      patientID,
		BlockID:        req.BlockID,
		RequestedAt:    now,
		Status:         repo.StatusScheduled,
		ReasonForVisit: strings.TrimSpace(req.ReasonForVisit),
		Notes:          strings.TrimSpace(req.Notes),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err = s.store.WithTx(ctx, func(q repo.Queries) error {
		if _, err := q.GetPatient(ctx, patientID); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return ErrPatientNotFound
			}
			return fmt.Errorf("get patient: %w", err)
		}

		block, err := lockBlock(ctx, q, req.BlockID)
		if err != nil {
			return err
		}
		if !sc.IsPatient() && !sc.OwnsProfessional(block.ProfessionalID) {
			return ErrForbidden
		}
		if err := s.validator.CheckBooking(ctx, q, patientID, block, nil, s.policy.BookingLead); err != nil {
			return err
		}
		return occupy(ctx, q, &appt)
	})
	if err != nil {
		return nil, s.reject(ctx, "book", err)
	}

	s.metrics.Transition(ctx, "none", string(repo.StatusScheduled))
	d, err := s.store.GetAppointment(ctx, appt.ID)
	if err != nil {
		return nil, fmt.Errorf("reload appointment: %w", err)
	}
	slog.InfoContext(ctx, "appointment booked", "appointment_id", d.ID, "block_id", d.BlockID, "patient_id", d.PatientID)
	s.notifier.Booked(ctx, s.notice(d))
	return &d, nil
}

// bookingPatient decides whose appointment a booking creates.
func bookingPatient(sc access.Scope, requested *uuid.UUID) (uuid.UUID, error) {
	if sc.IsPatient() {
		if requested != nil && *requested != *sc.PatientID {
			return uuid.Nil, ErrForbidden
		}
		return *sc.PatientID, nil
	}
	if requested == nil {
		return uuid.Nil, ErrPatientRequired
	}
	return *requested, nil
}

func lockBlock(ctx context.Context, q repo.Queries, id uuid.UUID) (repo.BlockDetail, error) {
	b, err := q.LockBlock(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.BlockDetail{}, ErrBlockNotFound
		}
		return repo.BlockDetail{}, fmt.Errorf("lock block: %w", err)
	}
	return b, nil
}

// lockTarget locks the current and the target block of a reprogram in ID
// order and returns the target.
func lockTarget(ctx context.Context, q repo.Queries, current, target uuid.UUID) (repo.BlockDetail, error) {
	order := []uuid.UUID{current, target}
	if bytes.Compare(target[:], current[:]) < 0 {
		order = []uuid.UUID{target, current}
	}
	var out repo.BlockDetail
	for _, id := range order {
		b, err := lockBlock(ctx, q, id)
		if err != nil {
			return repo.BlockDetail{}, err
		}
		if id == target {
			out = b
		}
	}
	return out, nil
}

// occupy inserts a in its block and marks the block taken.
func occupy(ctx context.Context, q repo.Queries, a *repo.Appointment) error {
	if err := q.CreateAppointment(ctx, a); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return ErrBlockTaken
		}
		return fmt.Errorf("create appointment: %w", err)
	}
	if err := q.SetBlockAvailable(ctx, a.BlockID, false); err != nil {
		return fmt.Errorf("occupy block: %w", err)
	}
	return nil
}

func (s *appointmentService) lockOwned(ctx context.Context, q repo.Queries, sc access.Scope, id uuid.UUID) (repo.AppointmentDetail, error) {
	d, err := q.LockAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.AppointmentDetail{}, ErrAppointmentNotFound
		}
		return repo.AppointmentDetail{}, fmt.Errorf("lock appointment: %w", err)
	}
	if !sc.CanSeeAppointment(d.PatientID, d.ProfessionalID) {
		return repo.AppointmentDetail{}, ErrForbidden
	}
	return d, nil
}

// checkReason loads an active reason the scope may use.
func checkReason(ctx context.Context, q repo.Queries, sc access.Scope, id uuid.UUID) (repo.CancellationReason, error) {
	r, err := q.GetCancellationReason(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.CancellationReason{}, ErrReasonNotFound
		}
		return repo.CancellationReason{}, fmt.Errorf("get cancellation reason: %w", err)
	}
	if !r.Active {
		return repo.CancellationReason{}, ErrReasonNotFound
	}
	if r.StaffOnly && !sc.IsStaff() {
		return repo.CancellationReason{}, ErrReasonNotAllowed
	}
	return r, nil
}

// release cancels or no-shows d and frees its block.
func (s *appointmentService) release(ctx context.Context, q repo.Queries, d *repo.AppointmentDetail, t transition, reasonID *uuid.UUID, by uuid.UUID, note string) error {
	now := s.now()
	d.Status = t.to
	d.UpdatedAt = now
	if note = strings.TrimSpace(note); note != "" {
		d.Notes = note
	}
	if t.to == repo.StatusCancelled {
		d.CancellationReasonID = reasonID
		d.CancelledAt = &now
		d.CancelledBy = &by
	}
	if err := q.UpdateAppointment(ctx, &d.Appointment); err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	if t.freesBlock {
		if _, err := lockBlock(ctx, q, d.BlockID); err != nil {
			return err
		}
		if err := q.SetBlockAvailable(ctx, d.BlockID, true); err != nil {
			return fmt.Errorf("free block: %w", err)
		}
	}
	return nil
}

func (s *appointmentService) Cancel(ctx context.Context, actor authorize.Actor, id uuid.UUID, req CancelRequest) (*repo.AppointmentDetail, error) {
	if req.ReasonID == uuid.Nil {
		return nil, s.reject(ctx, "cancel", ErrReasonRequired)
	}
	sc, err := s.access.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}

	var (
		d      repo.AppointmentDetail
		from   repo.AppointmentStatus
		reason repo.CancellationReason
	)
	err = s.store.WithTx(ctx, func(q repo.Queries) error {
		var err error
		if d, err = s.lockOwned(ctx, q, sc, id); err != nil {
			return err
		}
		from = d.Status
		if !cancelTransition.allowed(from) {
			return ErrInvalidTransition
		}
		if err := s.validator.CheckLead(d.StartAt, s.policy.ChangeLead); err != nil {
			return err
		}
		if reason, err = checkReason(ctx, q, sc, req.ReasonID); err != nil {
			return err
		}
		return s.release(ctx, q, &d, cancelTransition, &reason.ID, actor.UserID, req.Note)
	})
	if err != nil {
		return nil, s.reject(ctx, "cancel", err)
	}

	d.CancellationReason = reason.Description
	s.metrics.Transition(ctx, string(from), string(d.Status))
	slog.InfoContext(ctx, "appointment cancelled", "appointment_id", d.ID, "reason", reason.Description, "by", actor.UserID)

	n := s.notice(d)
	n.Reason = reason.Description
	s.notifier.Cancelled(ctx, n)
	return &d, nil
}

func (s *appointmentService) Reprogram(ctx context.Context, actor authorize.Actor, id uuid.UUID, req RescheduleRequest) (*repo.AppointmentDetail, error) {
	sc, err := s.access.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}

	var old repo.AppointmentDetail
	var next repo.Appointment
	err = s.store.WithTx(ctx, func(q repo.Queries) error {
		var err error
		if old, err = s.lockOwned(ctx, q, sc, id); err != nil {
			return err
		}
		if !cancelTransition.allowed(old.Status) {
			return ErrInvalidTransition
		}
		if err := s.validator.CheckLead(old.StartAt, s.policy.ChangeLead); err != nil {
			return err
		}
		if req.NewBlockID == old.BlockID {
			return ErrSameBlock
		}

		target, err := lockTarget(ctx, q, old.BlockID, req.NewBlockID)
		if err != nil {
			return err
		}
		if !sc.IsPatient() && !sc.OwnsProfessional(target.ProfessionalID) {
			return ErrForbidden
		}
		if err := s.validator.CheckBooking(ctx, q, old.PatientID, target, &old.ID, s.policy.RebookLead); err != nil {
			return err
		}

		reasonID, err := s.rescheduleReason(ctx, q, sc, req.ReasonID)
		if err != nil {
			return err
		}
		if err := s.release(ctx, q, &old, cancelTransition, reasonID, actor.UserID, ""); err != nil {
			return err
		}

		now := s.now()
		next = repo.Appointment{
			ID:             repo.NewID(),
			PatientID:      old.PatientID,
			BlockID:        target.ID,
			RequestedAt:    now,
			Status:         repo.StatusScheduled,
			ReasonForVisit: old.ReasonForVisit,
			Notes:          strings.TrimSpace(req.Note),
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		return occupy(ctx, q, &next)
	})
	if err != nil {
		return nil, s.reject(ctx, "reprogram", err)
	}

	s.metrics.Transition(ctx, "none", string(repo.StatusScheduled))
	s.metrics.Transition(ctx, string(repo.StatusScheduled), string(repo.StatusCancelled))

	d, err := s.store.GetAppointment(ctx, next.ID)
	if err != nil {
		return nil, fmt.Errorf("reload appointment: %w", err)
	}
	slog.InfoContext(ctx, "appointment rescheduled", "from", old.ID, "to", d.ID, "by", actor.UserID)

	n := s.notice(d)
	prev := old.StartAt.In(s.policy.Location)
	n.PreviousStart = &prev
	s.notifier.Rescheduled(ctx, n)
	return &d, nil
}

// rescheduleReason resolves the reason recorded on the replaced appointment.
// With none requested it prefers the staff reschedule reason, then any staff
// reason, then none.
func (s *appointmentService) rescheduleReason(ctx context.Context, q repo.Queries, sc access.Scope, requested *uuid.UUID) (*uuid.UUID, error) {
	if requested != nil {
		r, err := checkReason(ctx, q, sc, *requested)
		if err != nil {
			return nil, err
		}
		return &r.ID, nil
	}

	all, err := q.ListCancellationReasons(ctx, true)
	if err != nil {
		return nil, fmt.Errorf("list cancellation reasons: %w", err)
	}
	var fallback *uuid.UUID
	for _, r := range all {
		if !r.Active || !r.StaffOnly {
			continue
		}
		if strings.EqualFold(r.Description, DefaultRescheduleReason) {
			return &r.ID, nil
		}
		if fallback == nil {
			fallback = &r.ID
		}
	}
	return fallback, nil
}

func (s *appointmentService) Confirm(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error) {
	return s.apply(ctx, actor, id, confirmTransition)
}

func (s *appointmentService) Start(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error) {
	return s.apply(ctx, actor, id, startTransition)
}

func (s *appointmentService) MarkAttended(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error) {
	return s.apply(ctx, actor, id, attendTransition)
}

func (s *appointmentService) MarkNoShow(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error) {
	return s.apply(ctx, actor, id, noShowTransition)
}

// apply runs a staff transition.
func (s *appointmentService) apply(ctx context.Context, actor authorize.Actor, id uuid.UUID, t transition) (*repo.AppointmentDetail, error) {
	sc, err := s.access.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	if !sc.IsStaff() {
		return nil, s.reject(ctx, t.name, ErrForbidden)
	}

	var d repo.AppointmentDetail
	var from repo.AppointmentStatus
	err = s.store.WithTx(ctx, func(q repo.Queries) error {
		var err error
		if d, err = s.lockOwned(ctx, q, sc, id); err != nil {
			return err
		}
		from = d.Status
		if !t.allowed(from) {
			return ErrInvalidTransition
		}
		if t.freesBlock {
			return s.release(ctx, q, &d, t, nil, actor.UserID, "")
		}
		d.Status = t.to
		d.UpdatedAt = s.now()
		if err := q.UpdateAppointment(ctx, &d.Appointment); err != nil {
			return fmt.Errorf("update appointment: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, s.reject(ctx, t.name, err)
	}

	s.metrics.Transition(ctx, string(from), string(t.to))
	slog.InfoContext(ctx, "appointment status changed", "appointment_id", id, "from", from, "to", t.to, "by", actor.UserID)
	return &d, nil
}

func (s *appointmentService) Get(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error) {
	sc, err := s.access.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	d, err := s.store.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrAppointmentNotFound
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	if !sc.CanSeeAppointment(d.PatientID, d.ProfessionalID) {
		return nil, ErrForbidden
	}
	return &d, nil
}

func (s *appointmentService) List(ctx context.Context, actor authorize.Actor, req ListRequest) ([]repo.AppointmentDetail, error) {
	sc, err := s.access.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}

	if req.Page < 1 {
		req.Page = 1
	}
	if req.PerPage < 1 || req.PerPage > 100 {
		req.PerPage = 20
	}
	for _, st := range req.Statuses {
		if !st.Valid() {
			return nil, apperr.Validation(fmt.Sprintf("unknown status %q", st))
		}
	}

	f := repo.AppointmentFilter{
		PatientID:      req.PatientID,
		ProfessionalID: req.ProfessionalID,
		Statuses:       req.Statuses,
		From:           req.From,
		To:             req.To,
		Limit:          req.PerPage,
		Offset:         (req.Page - 1) * req.PerPage,
	}
	switch {
	case sc.Unrestricted():
	case sc.ProfessionalID != nil:
		if req.ProfessionalID != nil && *req.ProfessionalID != *sc.ProfessionalID {
			return nil, ErrForbidden
		}
		f.ProfessionalID = sc.ProfessionalID
	case sc.PatientID != nil:
		if req.PatientID != nil && *req.PatientID != *sc.PatientID {
			return nil, ErrForbidden
		}
		f.PatientID = sc.PatientID
	default:
		return nil, ErrForbidden
	}

	out, err := s.store.ListAppointments(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}

func (s *appointmentService) ListReasons(ctx context.Context, actor authorize.Actor) ([]repo.CancellationReason, error) {
	staff := actor.IsStaff()
	audience := audiencePatient
	if staff {
		audience = audienceStaff
	}

	if s.reasons != nil {
		if cached, ok := s.reasons.Load(ctx, audience); ok {
			return cached, nil
		}
	}

	out, err := s.store.ListCancellationReasons(ctx, staff)
	if err != nil {
		return nil, fmt.Errorf("list cancellation reasons: %w", err)
	}
	if s.reasons != nil {
		s.reasons.Store(ctx, audience, out)
	}
	return out, nil
}

func (s *appointmentService) notice(d repo.AppointmentDetail) notification.Notice {
	return notification.Notice{
		AppointmentID:    d.ID,
		PatientName:      d.PatientName,
		PatientEmail:     d.PatientEmail,
		PatientPhone:     d.PatientPhone,
		ProfessionalName: d.ProfessionalName,
		Specialty:        d.Specialty,
		Start:            d.StartAt.In(s.policy.Location),
	}
}
