// Package repotest provides an in-memory repo.Store for service tests.
//
// Transactions are serialized by a mutex and run against a copy of the data
// that replaces the live copy only on commit, so a failing transaction leaves
// no trace. Unique indexes of the real schema are enforced and reported as
// repo.ErrDuplicate.
package repotest

import (
	"context"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
)

type state struct {
	professionals map[uuid.UUID]repo.Professional
	patients      map[uuid.UUID]repo.Patient
	schedules     map[uuid.UUID]repo.Schedule
	blocks        map[uuid.UUID]repo.Block
	appointments  map[uuid.UUID]repo.Appointment
	reasons       map[uuid.UUID]repo.CancellationReason
}

func newState() *state {
	return &state{
		professionals: map[uuid.UUID]repo.Professional{},
		patients:      map[uuid.UUID]repo.Patient{},
		schedules:     map[uuid.UUID]repo.Schedule{},
		blocks:        map[uuid.UUID]repo.Block{},
		appointments:  map[uuid.UUID]repo.Appointment{},
		reasons:       map[uuid.UUID]repo.CancellationReason{},
	}
}

func (s *state) clone() *state {
	return &state{
		professionals: maps.Clone(s.professionals),
		patients:      maps.Clone(s.patients),
		schedules:     maps.Clone(s.schedules),
		blocks:        maps.Clone(s.blocks),
		appointments:  maps.Clone(s.appointments),
		reasons:       maps.Clone(s.reasons),
	}
}

// Store is a goroutine-safe in-memory repo.Store.
type Store struct {
	mu   sync.Mutex
	st   *state
	fail map[string]error
	txs  int
}

var _ repo.Store = (*Store)(nil)

func New() *Store {
	return &Store{st: newState(), fail: map[string]error{}}
}

// FailOn makes the named Queries method return err until cleared with a nil
// error.
func (s *Store) FailOn(method string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err == nil {
		delete(s.fail, method)
		return
	}
	s.fail[method] = err
}

// Commits reports how many transactions committed.
func (s *Store) Commits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.txs
}

func (s *Store) WithTx(ctx context.Context, fn func(q repo.Queries) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	if err := fn(&view{st: work, fail: s.fail}); err != nil {
		return err
	}
	s.st = work
	s.txs++
	return nil
}

// do runs fn against the live data outside any transaction.
func (s *Store) do(fn func(v *view) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(&view{st: s.st, fail: s.fail})
}

// view implements repo.Queries over one state.
type view struct {
	st   *state
	fail map[string]error
}

func (v *view) failed(method string) error {
	return v.fail[method]
}

// ---- directory ----

func (v *view) GetProfessional(_ context.Context, id uuid.UUID) (repo.Professional, error) {
	if err := v.failed("GetProfessional"); err != nil {
		return repo.Professional{}, err
	}
	p, ok := v.st.professionals[id]
	if !ok {
		return repo.Professional{}, repo.ErrNotFound
	}
	return p, nil
}

func (v *view) GetProfessionalByUser(_ context.Context, userID uuid.UUID) (repo.Professional, error) {
	for _, p := range v.st.professionals {
		if p.UserID == userID {
			return p, nil
		}
	}
	return repo.Professional{}, repo.ErrNotFound
}

func (v *view) CreateProfessional(_ context.Context, p *repo.Professional) error {
	if p.ID == uuid.Nil {
		p.ID = repo.NewID()
	}
	for _, other := range v.st.professionals {
		if other.UserID == p.UserID {
			return repo.ErrDuplicate
		}
	}
	v.st.professionals[p.ID] = *p
	return nil
}

func (v *view) GetPatient(_ context.Context, id uuid.UUID) (repo.Patient, error) {
	p, ok := v.st.patients[id]
	if !ok {
		return repo.Patient{}, repo.ErrNotFound
	}
	return p, nil
}

func (v *view) GetPatientByUser(_ context.Context, userID uuid.UUID) (repo.Patient, error) {
	for _, p := range v.st.patients {
		if p.UserID == userID {
			return p, nil
		}
	}
	return repo.Patient{}, repo.ErrNotFound
}

func (v *view) CreatePatient(_ context.Context, p *repo.Patient) error {
	if p.ID == uuid.Nil {
		p.ID = repo.NewID()
	}
	for _, other := range v.st.patients {
		if other.UserID == p.UserID || (p.NationalID != "" && other.NationalID == p.NationalID) {
			return repo.ErrDuplicate
		}
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	v.st.patients[p.ID] = *p
	return nil
}

func (v *view) UpdatePatient(_ context.Context, id uuid.UUID, ch repo.PatientChanges, at time.Time) (repo.Patient, error) {
	if err := v.failed("UpdatePatient"); err != nil {
		return repo.Patient{}, err
	}
	p, ok := v.st.patients[id]
	if !ok {
		return repo.Patient{}, repo.ErrNotFound
	}
	if ch.FullName != nil {
		p.FullName = *ch.FullName
	}
	if ch.Email != nil {
		p.Email = *ch.Email
	}
	if ch.Phone != nil {
		p.Phone = *ch.Phone
	}
	if ch.Address != nil {
		p.Address = *ch.Address
	}
	p.UpdatedAt = at
	v.st.patients[id] = p
	return p, nil
}

// ---- schedules ----

func (v *view) CreateSchedule(_ context.Context, s *repo.Schedule) error {
	if err := v.failed("CreateSchedule"); err != nil {
		return err
	}
	if s.ID == uuid.Nil {
		s.ID = repo.NewID()
	}
	s.Date = repo.CivilDate(s.Date)
	for _, other := range v.st.schedules {
		if other.ProfessionalID == s.ProfessionalID && other.Date.Equal(s.Date) {
			return repo.ErrDuplicate
		}
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = s.CreatedAt
	v.st.schedules[s.ID] = *s
	return nil
}

func (v *view) GetSchedule(_ context.Context, id uuid.UUID) (repo.Schedule, error) {
	s, ok := v.st.schedules[id]
	if !ok {
		return repo.Schedule{}, repo.ErrNotFound
	}
	return s, nil
}

func (v *view) ScheduleExists(_ context.Context, professionalID uuid.UUID, date time.Time) (bool, error) {
	date = repo.CivilDate(date)
	for _, s := range v.st.schedules {
		if s.ProfessionalID == professionalID && s.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (v *view) ListSchedules(_ context.Context, f repo.ScheduleFilter) ([]repo.Schedule, error) {
	var out []repo.Schedule
	for _, s := range v.st.schedules {
		if f.ProfessionalID != nil && s.ProfessionalID != *f.ProfessionalID {
			continue
		}
		if f.From != nil && s.Date.Before(repo.CivilDate(*f.From)) {
			continue
		}
		if f.To != nil && s.Date.After(repo.CivilDate(*f.To)) {
			continue
		}
		if f.Active != nil && s.Active != *f.Active {
			continue
		}
		out = append(out, s)
	}
	slices.SortFunc(out, func(a, b repo.Schedule) int {
		if c := a.Date.Compare(b.Date); c != 0 {
			return c
		}
		return strings.Compare(a.StartTime, b.StartTime)
	})
	return page(out, f.Limit, f.Offset), nil
}

func (v *view) SetScheduleActive(_ context.Context, id uuid.UUID, active bool, at time.Time) error {
	s, ok := v.st.schedules[id]
	if !ok {
		return repo.ErrNotFound
	}
	s.Active = active
	s.UpdatedAt = at
	v.st.schedules[id] = s
	return nil
}

func (v *view) DeleteSchedule(_ context.Context, id uuid.UUID) error {
	if err := v.failed("DeleteSchedule"); err != nil {
		return err
	}
	if _, ok := v.st.schedules[id]; !ok {
		return repo.ErrNotFound
	}
	delete(v.st.schedules, id)
	return nil
}

// ---- blocks ----

func (v *view) CreateBlocks(_ context.Context, blocks []repo.Block) error {
	if err := v.failed("CreateBlocks"); err != nil {
		return err
	}
	for i := range blocks {
		b := &blocks[i]
		if b.ID == uuid.Nil {
			b.ID = repo.NewID()
		}
		if b.Kind == "" {
			b.Kind = repo.BlockConsultation
		}
		for _, other := range v.st.blocks {
			if other.ScheduleID == b.ScheduleID && other.StartAt.Equal(b.StartAt) {
				return repo.ErrDuplicate
			}
		}
		v.st.blocks[b.ID] = *b
	}
	return nil
}

func (v *view) ListBlocks(_ context.Context, scheduleID uuid.UUID) ([]repo.Block, error) {
	var out []repo.Block
	for _, b := range v.st.blocks {
		if b.ScheduleID == scheduleID {
			out = append(out, b)
		}
	}
	slices.SortFunc(out, func(a, b repo.Block) int { return a.StartAt.Compare(b.StartAt) })
	return out, nil
}

func (v *view) DeleteBlocks(_ context.Context, scheduleID uuid.UUID) (int, error) {
	n := 0
	for id, b := range v.st.blocks {
		if b.ScheduleID == scheduleID {
			delete(v.st.blocks, id)
			n++
		}
	}
	return n, nil
}

func (v *view) LockBlock(_ context.Context, id uuid.UUID) (repo.BlockDetail, error) {
	b, ok := v.st.blocks[id]
	if !ok {
		return repo.BlockDetail{}, repo.ErrNotFound
	}
	s := v.st.schedules[b.ScheduleID]
	return repo.BlockDetail{
		Block:          b,
		ProfessionalID: s.ProfessionalID,
		ScheduleActive: s.Active,
		ScheduleDate:   s.Date,
	}, nil
}

func (v *view) SetBlockAvailable(_ context.Context, id uuid.UUID, available bool) error {
	if err := v.failed("SetBlockAvailable"); err != nil {
		return err
	}
	b, ok := v.st.blocks[id]
	if !ok {
		return repo.ErrNotFound
	}
	b.Available = available
	v.st.blocks[id] = b
	return nil
}

func (v *view) activeOn(blockID uuid.UUID) bool {
	for _, a := range v.st.appointments {
		if a.BlockID == blockID && a.Status.IsActive() {
			return true
		}
	}
	return false
}

func (v *view) ListOpenBlocks(_ context.Context, f repo.OpenBlockFilter) ([]repo.OpenBlock, error) {
	from := repo.CivilDate(f.FromDate)
	var out []repo.OpenBlock
	for _, b := range v.st.blocks {
		s := v.st.schedules[b.ScheduleID]
		p := v.st.professionals[s.ProfessionalID]
		switch {
		case !b.Available, b.Kind != repo.BlockConsultation, !s.Active:
			continue
		case s.Date.Before(from), !b.StartAt.After(f.After):
			continue
		case f.Before != nil && !b.StartAt.Before(*f.Before):
			continue
		case f.ProfessionalID != nil && s.ProfessionalID != *f.ProfessionalID:
			continue
		case f.Specialty != "" && !strings.EqualFold(p.Specialty, f.Specialty):
			continue
		case v.activeOn(b.ID):
			continue
		}
		out = append(out, repo.OpenBlock{
			Block:            b,
			ProfessionalID:   p.ID,
			ProfessionalName: p.FullName,
			Specialty:        p.Specialty,
		})
	}
	slices.SortFunc(out, func(a, b repo.OpenBlock) int { return a.StartAt.Compare(b.StartAt) })
	return page(out, f.Limit, 0), nil
}

// ---- appointments ----

func (v *view) CreateAppointment(_ context.Context, a *repo.Appointment) error {
	if err := v.failed("CreateAppointment"); err != nil {
		return err
	}
	if a.ID == uuid.Nil {
		a.ID = repo.NewID()
	}
	if a.Status.IsActive() && v.activeOn(a.BlockID) {
		return repo.ErrDuplicate
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.RequestedAt.IsZero() {
		a.RequestedAt = a.CreatedAt
	}
	a.UpdatedAt = a.CreatedAt
	v.st.appointments[a.ID] = *a
	return nil
}

func (v *view) detail(a repo.Appointment) repo.AppointmentDetail {
	b := v.st.blocks[a.BlockID]
	s := v.st.schedules[b.ScheduleID]
	p := v.st.professionals[s.ProfessionalID]
	pa := v.st.patients[a.PatientID]
	d := repo.AppointmentDetail{
		Appointment:       a,
		StartAt:           b.StartAt,
		EndAt:             b.EndAt,
		ScheduleID:        s.ID,
		ScheduleDate:      s.Date,
		ProfessionalID:    p.ID,
		ProfessionalName:  p.FullName,
		Specialty:         p.Specialty,
		PatientName:       pa.FullName,
		PatientNationalID: pa.NationalID,
		PatientEmail:      pa.Email,
		PatientPhone:      pa.Phone,
	}
	if a.CancellationReasonID != nil {
		d.CancellationReason = v.st.reasons[*a.CancellationReasonID].Description
	}
	return d
}

func (v *view) GetAppointment(_ context.Context, id uuid.UUID) (repo.AppointmentDetail, error) {
	a, ok := v.st.appointments[id]
	if !ok {
		return repo.AppointmentDetail{}, repo.ErrNotFound
	}
	return v.detail(a), nil
}

func (v *view) LockAppointment(ctx context.Context, id uuid.UUID) (repo.AppointmentDetail, error) {
	return v.GetAppointment(ctx, id)
}

func (v *view) UpdateAppointment(_ context.Context, a *repo.Appointment) error {
	if err := v.failed("UpdateAppointment"); err != nil {
		return err
	}
	cur, ok := v.st.appointments[a.ID]
	if !ok {
		return repo.ErrNotFound
	}
	cur.Status = a.Status
	cur.Notes = a.Notes
	cur.CancellationReasonID = a.CancellationReasonID
	cur.CancelledAt = a.CancelledAt
	cur.CancelledBy = a.CancelledBy
	cur.UpdatedAt = a.UpdatedAt
	v.st.appointments[a.ID] = cur
	return nil
}

func (v *view) HasActiveAppointment(_ context.Context, blockID uuid.UUID) (bool, error) {
	return v.activeOn(blockID), nil
}

func (v *view) ScheduleAppointmentCounts(_ context.Context, scheduleID uuid.UUID) (active, total int, err error) {
	for _, a := range v.st.appointments {
		if v.st.blocks[a.BlockID].ScheduleID != scheduleID {
			continue
		}
		total++
		if a.Status.IsActive() {
			active++
		}
	}
	return active, total, nil
}

func excluded(id uuid.UUID, exclude *uuid.UUID) bool {
	return exclude != nil && *exclude == id
}

func (v *view) FindDuplicate(_ context.Context, patientID, professionalID uuid.UUID, startAt time.Time, exclude *uuid.UUID) (bool, error) {
	for _, a := range v.st.appointments {
		if a.PatientID != patientID || !a.Status.IsActive() || excluded(a.ID, exclude) {
			continue
		}
		d := v.detail(a)
		if d.ProfessionalID == professionalID && d.StartAt.Equal(startAt) {
			return true, nil
		}
	}
	return false, nil
}

func (v *view) CountActiveForPatientOn(_ context.Context, patientID uuid.UUID, date time.Time, exclude *uuid.UUID) (int, error) {
	date = repo.CivilDate(date)
	n := 0
	for _, a := range v.st.appointments {
		if a.PatientID != patientID || !a.Status.IsActive() || excluded(a.ID, exclude) {
			continue
		}
		if v.detail(a).ScheduleDate.Equal(date) {
			n++
		}
	}
	return n, nil
}

func (v *view) matches(d repo.AppointmentDetail, f repo.AppointmentFilter) bool {
	switch {
	case f.PatientID != nil && d.PatientID != *f.PatientID:
		return false
	case f.ProfessionalID != nil && d.ProfessionalID != *f.ProfessionalID:
		return false
	case len(f.Statuses) > 0 && !slices.Contains(f.Statuses, d.Status):
		return false
	case f.From != nil && d.ScheduleDate.Before(repo.CivilDate(*f.From)):
		return false
	case f.To != nil && d.ScheduleDate.After(repo.CivilDate(*f.To)):
		return false
	case f.Specialty != "" && !strings.EqualFold(d.Specialty, f.Specialty):
		return false
	}
	if q := strings.ToLower(f.PatientQuery); q != "" {
		return strings.Contains(strings.ToLower(d.PatientName), q) ||
			strings.Contains(strings.ToLower(d.PatientNationalID), q) ||
			strings.Contains(strings.ToLower(d.PatientEmail), q)
	}
	return true
}

func (v *view) ListAppointments(_ context.Context, f repo.AppointmentFilter) ([]repo.AppointmentDetail, error) {
	var out []repo.AppointmentDetail
	for _, a := range v.st.appointments {
		if d := v.detail(a); v.matches(d, f) {
			out = append(out, d)
		}
	}
	slices.SortFunc(out, func(a, b repo.AppointmentDetail) int {
		if c := a.StartAt.Compare(b.StartAt); c != 0 {
			return c
		}
		return a.CreatedAt.Compare(b.CreatedAt)
	})
	return page(out, f.Limit, f.Offset), nil
}

// ---- reasons ----

func (v *view) GetCancellationReason(_ context.Context, id uuid.UUID) (repo.CancellationReason, error) {
	r, ok := v.st.reasons[id]
	if !ok {
		return repo.CancellationReason{}, repo.ErrNotFound
	}
	return r, nil
}

func (v *view) ListCancellationReasons(_ context.Context, includeStaffOnly bool) ([]repo.CancellationReason, error) {
	if err := v.failed("ListCancellationReasons"); err != nil {
		return nil, err
	}
	var out []repo.CancellationReason
	for _, r := range v.st.reasons {
		if r.Active && (includeStaffOnly || !r.StaffOnly) {
			out = append(out, r)
		}
	}
	slices.SortFunc(out, func(a, b repo.CancellationReason) int { return strings.Compare(a.Description, b.Description) })
	return out, nil
}

func (v *view) CreateCancellationReason(_ context.Context, r *repo.CancellationReason) error {
	if r.ID == uuid.Nil {
		r.ID = repo.NewID()
	}
	for _, other := range v.st.reasons {
		if other.Description == r.Description {
			return repo.ErrDuplicate
		}
	}
	v.st.reasons[r.ID] = *r
	return nil
}

// ---- stats ----

func (v *view) StatusCounts(ctx context.Context, f repo.AppointmentFilter) (map[repo.AppointmentStatus]int, error) {
	f.Statuses, f.Limit, f.Offset = nil, 0, 0
	list, _ := v.ListAppointments(ctx, f)
	out := map[repo.AppointmentStatus]int{}
	for _, d := range list {
		out[d.Status]++
	}
	return out, nil
}

func (v *view) BlockUsage(_ context.Context, f repo.AppointmentFilter) (repo.BlockUsage, error) {
	var out repo.BlockUsage
	for _, b := range v.st.blocks {
		s := v.st.schedules[b.ScheduleID]
		p := v.st.professionals[s.ProfessionalID]
		switch {
		case b.Kind != repo.BlockConsultation:
			continue
		case f.ProfessionalID != nil && s.ProfessionalID != *f.ProfessionalID:
			continue
		case f.From != nil && s.Date.Before(repo.CivilDate(*f.From)):
			continue
		case f.To != nil && s.Date.After(repo.CivilDate(*f.To)):
			continue
		case f.Specialty != "" && !strings.EqualFold(p.Specialty, f.Specialty):
			continue
		}
		out.Published++
		if !b.Available {
			out.Occupied++
		}
	}
	return out, nil
}

func page[T any](items []T, limit, offset int) []T {
	if offset > 0 {
		if offset >= len(items) {
			return nil
		}
		items = items[offset:]
	}
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}
