package scheduling

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/service/access"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
	"github.com/mediconnect/mediconnect_backend/pkg/observability"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// BlockSpec is an explicit block inside a new schedule, as "HH:MM" clock times.
type BlockSpec struct {
	Start string
	End   string
	Kind  repo.BlockKind
	Notes string
}

type CreateScheduleRequest struct {
	// ProfessionalID defaults to the calling professional.
	ProfessionalID *uuid.UUID
	Date           time.Time
	StartTime      string
	EndTime        string
	SlotMinutes    int
	Notes          string
	// Blocks replaces generation from SlotMinutes when non-empty.
	Blocks []BlockSpec
}

type ListRequest struct {
	ProfessionalID *uuid.UUID
	From           *time.Time
	To             *time.Time
	Active         *bool
	Page           int
	PerPage        int
}

type OpenBlocksRequest struct {
	ProfessionalID *uuid.UUID
	Specialty      string
	From           *time.Time
	To             *time.Time
	Limit          int
}

// ScheduleWithBlocks is a schedule and its blocks ordered by start.
type ScheduleWithBlocks struct {
	repo.Schedule
	Blocks []repo.Block
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	CreateSchedule(ctx context.Context, actor authorize.Actor, req CreateScheduleRequest) (*ScheduleWithBlocks, error)
	GetSchedule(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*ScheduleWithBlocks, error)
	ListSchedules(ctx context.Context, actor authorize.Actor, req ListRequest) ([]repo.Schedule, error)
	SetScheduleActive(ctx context.Context, actor authorize.Actor, id uuid.UUID, active bool) (*repo.Schedule, error)
	DeleteSchedule(ctx context.Context, actor authorize.Actor, id uuid.UUID) error
	ListOpenBlocks(ctx context.Context, req OpenBlocksRequest) ([]repo.OpenBlock, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

type schedulingService struct {
	store     repo.Store
	access    *access.Resolver
	validator *Validator
	rules     Rules
	metrics   *observability.ClinicMetrics
	now       func() time.Time
}

type Option func(*schedulingService)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *schedulingService) { s.now = now }
}

func New(store repo.Store, rules Rules, metrics *observability.ClinicMetrics, opts ...Option) Service {
	s := &schedulingService{
		store:   store,
		access:  access.NewResolver(store),
		rules:   rules,
		metrics: metrics,
		now:     time.Now,
	}
	for _, o := range opts {
		o(s)
	}
	if s.metrics == nil {
		s.metrics = observability.NewClinicMetrics()
	}
	s.validator = NewValidator(rules, s.now)
	return s
}

func (s *schedulingService) CreateSchedule(ctx context.Context, actor authorize.Actor, req CreateScheduleRequest) (*ScheduleWithBlocks, error) {
	sc, err := s.access.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}

	profID, err := s.targetProfessional(sc, req.ProfessionalID)
	if err != nil {
		return nil, err
	}

	start, err := ParseClock(req.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(req.EndTime)
	if err != nil {
		return nil, err
	}

	p := Proposal{
		ProfessionalID: profID,
		Date:           repo.CivilDate(req.Date),
		Start:          start,
		End:            end,
		SlotMinutes:    req.SlotMinutes,
	}
	if err := s.validator.CheckShape(p); err != nil {
		return nil, err
	}

	spans, err := s.spans(p, req.Blocks)
	if err != nil {
		return nil, err
	}
	if len(spans) == 0 {
		return nil, ErrNoBlocks
	}

	now := s.now()
	sched := repo.Schedule{
		ID:             repo.NewID(),
		ProfessionalID: profID,
		Date:           p.Date,
		StartTime:      start.String(),
		EndTime:        end.String(),
		SlotMinutes:    req.SlotMinutes,
		Active:         true,
		Notes:          req.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	blocks := make([]repo.Block, len(spans))
	for i, sp := range spans {
		blocks[i] = repo.Block{
			ID:         repo.NewID(),
			ScheduleID: sched.ID,
			StartAt:    sp.Start.On(p.Date, s.rules.Location),
			EndAt:      sp.End.On(p.Date, s.rules.Location),
			Available:  sp.Kind == repo.BlockConsultation,
			Kind:       sp.Kind,
			Notes:      sp.Notes,
		}
	}

	err = s.store.WithTx(ctx, func(q repo.Queries) error {
		if err := s.validator.Check(ctx, q, p); err != nil {
			return err
		}
		if err := q.CreateSchedule(ctx, &sched); err != nil {
			if errors.Is(err, repo.ErrDuplicate) {
				return ErrScheduleExists
			}
			return fmt.Errorf("create schedule: %w", err)
		}
		if err := q.CreateBlocks(ctx, blocks); err != nil {
			return fmt.Errorf("create blocks: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.BlocksCreated(ctx, len(blocks))
	slog.InfoContext(ctx, "schedule created",
		"schedule_id", sched.ID,
		"professional_id", profID,
		"date", sched.Date.Format(time.DateOnly),
		"blocks", len(blocks),
	)
	return &ScheduleWithBlocks{Schedule: sched, Blocks: blocks}, nil
}

func (s *schedulingService) spans(p Proposal, specs []BlockSpec) ([]Span, error) {
	if len(specs) == 0 {
		return Generate(p.Start, p.End, p.SlotMinutes), nil
	}
	explicit := make([]Span, len(specs))
	for i, b := range specs {
		start, err := ParseClock(b.Start)
		if err != nil {
			return nil, err
		}
		end, err := ParseClock(b.End)
		if err != nil {
			return nil, err
		}
		explicit[i] = Span{Start: start, End: end, Kind: b.Kind, Notes: b.Notes}
	}
	return Explicit(explicit, p.Start, p.End)
}

// targetProfessional picks the agenda a schedule request acts on.
func (s *schedulingService) targetProfessional(sc access.Scope, requested *uuid.UUID) (uuid.UUID, error) {
	switch {
	case requested != nil:
		if !sc.OwnsProfessional(*requested) {
			return uuid.Nil, ErrForbidden
		}
		return *requested, nil
	case sc.ProfessionalID != nil:
		return *sc.ProfessionalID, nil
	default:
		return uuid.Nil, ErrProfessionalRequired
	}
}

func (s *schedulingService) loadOwned(ctx context.Context, q repo.Queries, sc access.Scope, id uuid.UUID) (repo.Schedule, error) {
	sched, err := q.GetSchedule(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return repo.Schedule{}, ErrScheduleNotFound
		}
		return repo.Schedule{}, fmt.Errorf("get schedule: %w", err)
	}
	if !sc.OwnsProfessional(sched.ProfessionalID) {
		return repo.Schedule{}, ErrForbidden
	}
	return sched, nil
}

func (s *schedulingService) GetSchedule(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*ScheduleWithBlocks, error) {
	sc, err := s.access.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}
	sched, err := s.loadOwned(ctx, s.store, sc, id)
	if err != nil {
		return nil, err
	}
	blocks, err := s.store.ListBlocks(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return &ScheduleWithBlocks{Schedule: sched, Blocks: blocks}, nil
}

func (s *schedulingService) ListSchedules(ctx context.Context, actor authorize.Actor, req ListRequest) ([]repo.Schedule, error) {
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

	f := repo.ScheduleFilter{
		ProfessionalID: req.ProfessionalID,
		From:           req.From,
		To:             req.To,
		Active:         req.Active,
		Limit:          req.PerPage,
		Offset:         (req.Page - 1) * req.PerPage,
	}
	if !sc.Unrestricted() {
		if sc.ProfessionalID == nil {
			return nil, ErrForbidden
		}
		if req.ProfessionalID != nil && *req.ProfessionalID != *sc.ProfessionalID {
			return nil, ErrForbidden
		}
		f.ProfessionalID = sc.ProfessionalID
	}

	out, err := s.store.ListSchedules(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return out, nil
}

func (s *schedulingService) SetScheduleActive(ctx context.Context, actor authorize.Actor, id uuid.UUID, active bool) (*repo.Schedule, error) {
	sc, err := s.access.Resolve(ctx, actor)
	if err != nil {
		return nil, err
	}

	var sched repo.Schedule
	err = s.store.WithTx(ctx, func(q repo.Queries) error {
		var err error
		sched, err = s.loadOwned(ctx, q, sc, id)
		if err != nil {
			return err
		}
		now := s.now()
		if err := q.SetScheduleActive(ctx, id, active, now); err != nil {
			return fmt.Errorf("set schedule active: %w", err)
		}
		sched.Active = active
		sched.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &sched, nil
}

func (s *schedulingService) DeleteSchedule(ctx context.Context, actor authorize.Actor, id uuid.UUID) error {
	sc, err := s.access.Resolve(ctx, actor)
	if err != nil {
		return err
	}

	var removed int
	err = s.store.WithTx(ctx, func(q repo.Queries) error {
		if _, err := s.loadOwned(ctx, q, sc, id); err != nil {
			return err
		}

		active, total, err := q.ScheduleAppointmentCounts(ctx, id)
		if err != nil {
			return fmt.Errorf("count appointments: %w", err)
		}
		if active > 0 {
			return ErrScheduleHasActiveAppointments
		}
		if total > 0 {
			return ErrScheduleHasHistory
		}

		if removed, err = q.DeleteBlocks(ctx, id); err != nil {
			return fmt.Errorf("delete blocks: %w", err)
		}
		if err := q.DeleteSchedule(ctx, id); err != nil {
			return fmt.Errorf("delete schedule: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.InfoContext(ctx, "schedule deleted", "schedule_id", id, "blocks", removed, "by", actor.UserID)
	return nil
}

func (s *schedulingService) ListOpenBlocks(ctx context.Context, req OpenBlocksRequest) ([]repo.OpenBlock, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = s.rules.OpenBlocksLimit
	}
	limit = min(limit, s.rules.MaxOpenBlocks)

	today := s.validator.Today()
	from := today
	if req.From != nil && repo.CivilDate(*req.From).After(today) {
		from = repo.CivilDate(*req.From)
	}

	f := repo.OpenBlockFilter{
		ProfessionalID: req.ProfessionalID,
		Specialty:      req.Specialty,
		FromDate:       from,
		After:          s.now().Add(s.rules.BookingLead),
		Limit:          limit,
	}
	if req.To != nil {
		// To is an inclusive civil date; blocks must start before the next midnight.
		end := Clock(0).On(repo.CivilDate(*req.To).AddDate(0, 0, 1), s.rules.Location)
		f.Before = &end
	}

	out, err := s.store.ListOpenBlocks(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list open blocks: %w", err)
	}
	return out, nil
}
