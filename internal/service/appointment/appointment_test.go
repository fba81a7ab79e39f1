package appointment

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/repo/repotest"
	"github.com/mediconnect/mediconnect_backend/internal/service/notification"
	"github.com/mediconnect/mediconnect_backend/internal/service/scheduling"
	"github.com/mediconnect/mediconnect_backend/pkg/apperr"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

var fixedNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

type recorder struct {
	mu      sync.Mutex
	notices []notification.Notice
}

func (r *recorder) send(_ context.Context, n notification.Notice) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.notices = append(r.notices, n)
}

func (r *recorder) kinds() []notification.Kind {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]notification.Kind, len(r.notices))
	for i, n := range r.notices {
		out[i] = n.Kind
	}
	return out
}

func (r *recorder) last() notification.Notice {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.notices[len(r.notices)-1]
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *repotest.Store
	svc   Service
	sent  *recorder

	cardio, derma    repo.Professional
	ana, bruno       repo.Patient
	anaA, brunoA     authorize.Actor
	reception        authorize.Actor
	cardioA          authorize.Actor
	patientReason    repo.CancellationReason
	rescheduleReason repo.CancellationReason
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{t: t, ctx: context.Background(), store: repotest.New(), sent: &recorder{}}

	f.cardio = repo.Professional{UserID: uuid.New(), FullName: "Dr. Soto", Specialty: "Cardiología", Active: true}
	f.derma = repo.Professional{UserID: uuid.New(), FullName: "Dra. Muñoz", Specialty: "Dermatología", Active: true}
	require.NoError(t, f.store.CreateProfessional(f.ctx, &f.cardio))
	require.NoError(t, f.store.CreateProfessional(f.ctx, &f.derma))

	f.ana = repo.Patient{UserID: uuid.New(), FullName: "Ana Pérez", NationalID: "11.111.111-1", Email: "ana@example.cl", Phone: "+56911111111"}
	f.bruno = repo.Patient{UserID: uuid.New(), FullName: "Bruno Díaz", NationalID: "22.222.222-2", Email: "bruno@example.cl"}
	require.NoError(t, f.store.CreatePatient(f.ctx, &f.ana))
	require.NoError(t, f.store.CreatePatient(f.ctx, &f.bruno))

	f.anaA = authorize.Actor{UserID: f.ana.UserID, Roles: []authorize.Role{authorize.RolePatient}}
	f.brunoA = authorize.Actor{UserID: f.bruno.UserID, Roles: []authorize.Role{authorize.RolePatient}}
	f.reception = authorize.Actor{UserID: uuid.New(), Roles: []authorize.Role{authorize.RoleReceptionist}}
	f.cardioA = authorize.Actor{UserID: f.cardio.UserID, Roles: []authorize.Role{authorize.RoleProfessional}}

	f.patientReason = repo.CancellationReason{Description: "No puedo asistir", Active: true}
	f.rescheduleReason = repo.CancellationReason{Description: DefaultRescheduleReason, Active: true, StaffOnly: true}
	require.NoError(t, f.store.CreateCancellationReason(f.ctx, &f.patientReason))
	require.NoError(t, f.store.CreateCancellationReason(f.ctx, &f.rescheduleReason))

	f.svc = New(f.store, DefaultPolicy(), notification.Func(f.sent.send), WithClock(func() time.Time { return fixedNow }))
	return f
}

// blocks publishes a schedule for p on the date of first with n 30-minute
// consultation blocks starting at first.
func (f *fixture) blocks(p repo.Professional, first time.Time, n int) []repo.Block {
	f.t.Helper()
	sched := repo.Schedule{
		ProfessionalID: p.ID,
		Date:           repo.CivilDate(first),
		StartTime:      first.Format("15:04"),
		EndTime:        first.Add(time.Duration(n) * 30 * time.Minute).Format("15:04"),
		SlotMinutes:    30,
		Active:         true,
	}
	require.NoError(f.t, f.store.CreateSchedule(f.ctx, &sched))

	out := make([]repo.Block, n)
	for i := range out {
		start := first.Add(time.Duration(i) * 30 * time.Minute)
		out[i] = repo.Block{ScheduleID: sched.ID, StartAt: start, EndAt: start.Add(30 * time.Minute), Available: true, Kind: repo.BlockConsultation}
	}
	require.NoError(f.t, f.store.CreateBlocks(f.ctx, out))
	return out
}

func (f *fixture) available(id uuid.UUID) bool {
	f.t.Helper()
	b, err := f.store.LockBlock(f.ctx, id)
	require.NoError(f.t, err)
	return b.Available
}

func (f *fixture) book(actor authorize.Actor, blockID uuid.UUID) *repo.AppointmentDetail {
	f.t.Helper()
	d, err := f.svc.Book(f.ctx, actor, BookRequest{BlockID: blockID, ReasonForVisit: "control"})
	require.NoError(f.t, err)
	return d
}

func tomorrowAt(clock string) time.Time {
	t, _ := time.Parse("15:04", clock)
	d := fixedNow.AddDate(0, 0, 1)
	return time.Date(d.Year(), d.Month(), d.Day(), t.Hour(), t.Minute(), 0, 0, time.UTC)
}

func TestBook_OccupiesBlockAndNotifies(t *testing.T) {
	f := newFixture(t)
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 4)

	d := f.book(f.anaA, bl[1].ID)

	assert.Equal(t, repo.StatusScheduled, d.Status)
	assert.Equal(t, f.ana.ID, d.PatientID)
	assert.Equal(t, "Dr. Soto", d.ProfessionalName)
	assert.False(t, f.available(bl[1].ID))
	assert.True(t, f.available(bl[0].ID))

	require.Equal(t, []notification.Kind{notification.KindBooked}, f.sent.kinds())
	assert.Equal(t, "ana@example.cl", f.sent.last().PatientEmail)
	assert.True(t, f.sent.last().Start.Equal(bl[1].StartAt))
}

func TestBook_Scenario0900To1100(t *testing.T) {
	f := newFixture(t)
	day := tomorrowAt("00:00")
	sched := repo.Schedule{ProfessionalID: f.cardio.ID, Date: day, StartTime: "09:00", EndTime: "11:00", SlotMinutes: 30, Active: true}
	require.NoError(t, f.store.CreateSchedule(f.ctx, &sched))

	spans := scheduling.Generate(scheduling.MustClock("09:00"), scheduling.MustClock("11:00"), 30)
	require.Len(t, spans, 4)
	bl := make([]repo.Block, len(spans))
	for i, sp := range spans {
		bl[i] = repo.Block{ScheduleID: sched.ID, StartAt: sp.Start.On(day, time.UTC), EndAt: sp.End.On(day, time.UTC), Available: true, Kind: sp.Kind}
	}
	require.NoError(t, f.store.CreateBlocks(f.ctx, bl))
	assert.True(t, bl[0].StartAt.Equal(tomorrowAt("09:00")))
	assert.True(t, bl[3].EndAt.Equal(tomorrowAt("11:00")))

	for i, b := range bl {
		actor := f.anaA
		if i%2 == 1 {
			actor = f.brunoA
		}
		f.book(actor, b.ID)
		assert.False(t, f.available(b.ID))
	}

	for _, b := range bl {
		_, err := f.svc.Book(f.ctx, f.anaA, BookRequest{BlockID: b.ID})
		assert.ErrorIs(t, err, apperr.ErrConflict)
	}
	list, err := f.svc.List(f.ctx, f.reception, ListRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 4)
}

func TestBook_ConcurrentRequestsYieldOneWinner(t *testing.T) {
	f := newFixture(t)
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 1)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i, actor := range []authorize.Actor{f.anaA, f.brunoA} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, errs[i] = f.svc.Book(f.ctx, actor, BookRequest{BlockID: bl[0].ID})
		}()
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperr.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error %v", err)
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, 1, conflicts)

	list, err := f.svc.List(f.ctx, f.reception, ListRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestBook_Rejections(t *testing.T) {
	f := newFixture(t)
	soon := f.blocks(f.cardio, fixedNow.Add(20*time.Minute), 1)
	later := f.blocks(f.derma, tomorrowAt("09:00"), 2)

	reserved := repo.Block{ID: repo.NewID(), ScheduleID: later[0].ScheduleID, StartAt: tomorrowAt("12:00"), EndAt: tomorrowAt("12:30"), Available: true, Kind: repo.BlockReserved}
	require.NoError(t, f.store.CreateBlocks(f.ctx, []repo.Block{reserved}))

	tests := []struct {
		name  string
		actor authorize.Actor
		req   BookRequest
		want  error
		kind  error
	}{
		{"20 minutes ahead", f.anaA, BookRequest{BlockID: soon[0].ID}, ErrLeadTimeNotMet, apperr.ErrValidation},
		{"reserved block", f.anaA, BookRequest{BlockID: reserved.ID}, ErrBlockNotBookable, apperr.ErrConflict},
		{"unknown block", f.anaA, BookRequest{BlockID: uuid.New()}, ErrBlockNotFound, apperr.ErrNotFound},
		{"patient books for someone else", f.anaA, BookRequest{PatientID: &f.bruno.ID, BlockID: later[0].ID}, ErrForbidden, apperr.ErrForbidden},
		{"staff without patient", f.reception, BookRequest{BlockID: later[0].ID}, ErrPatientRequired, apperr.ErrValidation},
		{"professional on foreign agenda", f.cardioA, BookRequest{PatientID: &f.ana.ID, BlockID: later[0].ID}, ErrForbidden, apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Book(f.ctx, tt.actor, tt.req)
			assert.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, tt.kind)
		})
	}

	assert.True(t, f.available(later[0].ID))
	assert.Empty(t, f.sent.kinds())
}

func TestBook_DuplicateSlotForSamePatient(t *testing.T) {
	f := newFixture(t)
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 1)
	f.book(f.anaA, bl[0].ID)

	// A second agenda entry of the same professional at the same instant.
	other := repo.Schedule{ProfessionalID: f.cardio.ID, Date: tomorrowAt("00:00").AddDate(0, 0, 1), StartTime: "09:00", EndTime: "09:30", SlotMinutes: 30, Active: true}
	require.NoError(t, f.store.CreateSchedule(f.ctx, &other))
	twin := repo.Block{ID: repo.NewID(), ScheduleID: other.ID, StartAt: bl[0].StartAt, EndAt: bl[0].EndAt, Available: true, Kind: repo.BlockConsultation}
	require.NoError(t, f.store.CreateBlocks(f.ctx, []repo.Block{twin}))

	_, err := f.svc.Book(f.ctx, f.anaA, BookRequest{BlockID: twin.ID})
	assert.ErrorIs(t, err, ErrDuplicateBooking)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.True(t, f.available(twin.ID))

	f.book(f.brunoA, twin.ID)
}

func TestBook_UniqueViolationIsBlockTaken(t *testing.T) {
	f := newFixture(t)
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 1)

	f.store.FailOn("CreateAppointment", repo.ErrDuplicate)
	_, err := f.svc.Book(f.ctx, f.anaA, BookRequest{BlockID: bl[0].ID})
	f.store.FailOn("CreateAppointment", nil)

	assert.ErrorIs(t, err, ErrBlockTaken)
	assert.ErrorIs(t, err, apperr.ErrConflict)
	assert.True(t, f.available(bl[0].ID))
	assert.Empty(t, f.sent.kinds())
}

func TestBook_InactiveSchedule(t *testing.T) {
	f := newFixture(t)
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 1)
	require.NoError(t, f.store.SetScheduleActive(f.ctx, bl[0].ScheduleID, false, fixedNow))

	_, err := f.svc.Book(f.ctx, f.anaA, BookRequest{BlockID: bl[0].ID})
	assert.ErrorIs(t, err, ErrScheduleInactive)
}

func TestBook_DailyCapAcrossProfessionals(t *testing.T) {
	f := newFixture(t)
	cardio := f.blocks(f.cardio, tomorrowAt("09:00"), 2)
	derma := f.blocks(f.derma, tomorrowAt("11:00"), 2)

	f.book(f.anaA, cardio[0].ID)
	f.book(f.anaA, cardio[1].ID)
	f.book(f.anaA, derma[0].ID)

	_, err := f.svc.Book(f.ctx, f.anaA, BookRequest{BlockID: derma[1].ID})
	assert.ErrorIs(t, err, ErrDailyCapReached)

	// Another patient is unaffected.
	f.book(f.brunoA, derma[1].ID)
}

func TestCancel_FreesBlockForRebooking(t *testing.T) {
	f := newFixture(t)
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 1)
	d := f.book(f.anaA, bl[0].ID)

	got, err := f.svc.Cancel(f.ctx, f.anaA, d.ID, CancelRequest{ReasonID: f.patientReason.ID, Note: "viaje"})
	require.NoError(t, err)

	assert.Equal(t, repo.StatusCancelled, got.Status)
	require.NotNil(t, got.CancelledAt)
	assert.True(t, got.CancelledAt.Equal(fixedNow))
	assert.Equal(t, f.ana.UserID, *got.CancelledBy)
	assert.Equal(t, "No puedo asistir", got.CancellationReason)
	assert.True(t, f.available(bl[0].ID))
	assert.Equal(t, "No puedo asistir", f.sent.last().Reason)

	f.book(f.brunoA, bl[0].ID)
	assert.False(t, f.available(bl[0].ID))
}

func TestCancel_Rejections(t *testing.T) {
	f := newFixture(t)
	soon := f.blocks(f.cardio, fixedNow.Add(90*time.Minute), 1)
	later := f.blocks(f.derma, tomorrowAt("09:00"), 2)

	near := f.book(f.anaA, soon[0].ID)
	far := f.book(f.anaA, later[0].ID)
	other := f.book(f.brunoA, later[1].ID)

	tests := []struct {
		name  string
		actor authorize.Actor
		id    uuid.UUID
		req   CancelRequest
		want  error
	}{
		{"90 minutes ahead", f.anaA, near.ID, CancelRequest{ReasonID: f.patientReason.ID}, ErrLeadTimeNotMet},
		{"staff also need notice", f.reception, near.ID, CancelRequest{ReasonID: f.patientReason.ID}, ErrLeadTimeNotMet},
		{"staff-only reason", f.anaA, far.ID, CancelRequest{ReasonID: f.rescheduleReason.ID}, ErrReasonNotAllowed},
		{"unknown reason", f.anaA, far.ID, CancelRequest{ReasonID: uuid.New()}, ErrReasonNotFound},
		{"missing reason", f.anaA, far.ID, CancelRequest{}, ErrReasonRequired},
		{"someone else's", f.anaA, other.ID, CancelRequest{ReasonID: f.patientReason.ID}, ErrForbidden},
		{"unknown appointment", f.anaA, uuid.New(), CancelRequest{ReasonID: f.patientReason.ID}, ErrAppointmentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.svc.Cancel(f.ctx, tt.actor, tt.id, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.ErrorIs(t, func() error {
		_, err := f.svc.Cancel(f.ctx, f.anaA, near.ID, CancelRequest{ReasonID: f.patientReason.ID})
		return err
	}(), apperr.ErrValidation)

	assert.False(t, f.available(soon[0].ID))
	assert.False(t, f.available(later[0].ID))
}

func TestCancel_TerminalIsStateConflict(t *testing.T) {
	f := newFixture(t)
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 1)
	d := f.book(f.anaA, bl[0].ID)

	_, err := f.svc.Cancel(f.ctx, f.anaA, d.ID, CancelRequest{ReasonID: f.patientReason.ID})
	require.NoError(t, err)

	_, err = f.svc.Cancel(f.ctx, f.anaA, d.ID, CancelRequest{ReasonID: f.patientReason.ID})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.ErrorIs(t, err, apperr.ErrStateConflict)
}

func TestReprogram(t *testing.T) {
	f := newFixture(t)
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 3)
	old := f.book(f.anaA, bl[0].ID)

	next, err := f.svc.Reprogram(f.ctx, f.anaA, old.ID, RescheduleRequest{NewBlockID: bl[2].ID})
	require.NoError(t, err)

	assert.NotEqual(t, old.ID, next.ID)
	assert.Equal(t, bl[2].ID, next.BlockID)
	assert.Equal(t, repo.StatusScheduled, next.Status)
	assert.Equal(t, "control", next.ReasonForVisit)

	prev, err := f.svc.Get(f.ctx, f.anaA, old.ID)
	require.NoError(t, err)
	assert.Equal(t, repo.StatusCancelled, prev.Status)
	assert.Equal(t, DefaultRescheduleReason, prev.CancellationReason)

	assert.True(t, f.available(bl[0].ID))
	assert.False(t, f.available(bl[2].ID))

	n := f.sent.last()
	assert.Equal(t, notification.KindRescheduled, n.Kind)
	require.NotNil(t, n.PreviousStart)
	assert.True(t, n.PreviousStart.Equal(bl[0].StartAt))
	assert.True(t, n.Start.Equal(bl[2].StartAt))
}

func TestReprogram_FailureLeavesOriginal(t *testing.T) {
	f := newFixture(t)
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 3)
	old := f.book(f.anaA, bl[0].ID)
	f.book(f.brunoA, bl[1].ID)

	check := func(t *testing.T) {
		t.Helper()
		d, err := f.svc.Get(f.ctx, f.anaA, old.ID)
		require.NoError(t, err)
		assert.Equal(t, repo.StatusScheduled, d.Status)
		assert.Nil(t, d.CancelledAt)
		assert.False(t, f.available(bl[0].ID))
	}

	t.Run("target taken", func(t *testing.T) {
		_, err := f.svc.Reprogram(f.ctx, f.anaA, old.ID, RescheduleRequest{NewBlockID: bl[1].ID})
		assert.ErrorIs(t, err, ErrBlockUnavailable)
		check(t)
	})

	t.Run("same block", func(t *testing.T) {
		_, err := f.svc.Reprogram(f.ctx, f.anaA, old.ID, RescheduleRequest{NewBlockID: bl[0].ID})
		assert.ErrorIs(t, err, ErrSameBlock)
		check(t)
	})

	t.Run("insert fails after the old one is cancelled", func(t *testing.T) {
		f.store.FailOn("CreateAppointment", errors.New("connection reset"))
		defer f.store.FailOn("CreateAppointment", nil)

		_, err := f.svc.Reprogram(f.ctx, f.anaA, old.ID, RescheduleRequest{NewBlockID: bl[2].ID})
		require.Error(t, err)
		check(t)
		assert.True(t, f.available(bl[2].ID))
	})

	assert.Equal(t, []notification.Kind{notification.KindBooked, notification.KindBooked}, f.sent.kinds())
}

func TestReprogram_DailyCapExcludesReplaced(t *testing.T) {
	f := newFixture(t)
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 4)
	f.book(f.anaA, bl[0].ID)
	f.book(f.anaA, bl[1].ID)
	third := f.book(f.anaA, bl[2].ID)

	_, err := f.svc.Reprogram(f.ctx, f.anaA, third.ID, RescheduleRequest{NewBlockID: bl[3].ID})
	assert.NoError(t, err)
}

func TestReprogram_LeadTimes(t *testing.T) {
	f := newFixture(t)
	near := f.blocks(f.cardio, fixedNow.Add(90*time.Minute), 1)
	soon := f.blocks(f.derma, fixedNow.Add(10*time.Minute), 1)
	later := f.blocks(f.cardio, tomorrowAt("09:00"), 2)
	past := f.blocks(f.derma, fixedNow.AddDate(0, 0, -1), 1)

	t.Run("current appointment needs two hours", func(t *testing.T) {
		d := f.book(f.anaA, near[0].ID)
		_, err := f.svc.Reprogram(f.ctx, f.anaA, d.ID, RescheduleRequest{NewBlockID: later[0].ID})
		assert.ErrorIs(t, err, ErrLeadTimeNotMet)
		assert.ErrorIs(t, err, apperr.ErrValidation)

		got, err := f.svc.Get(f.ctx, f.anaA, d.ID)
		require.NoError(t, err)
		assert.Equal(t, repo.StatusScheduled, got.Status)
		assert.False(t, f.available(near[0].ID))
		assert.True(t, f.available(later[0].ID))
	})

	t.Run("target only has to be in the future", func(t *testing.T) {
		d := f.book(f.brunoA, later[1].ID)
		next, err := f.svc.Reprogram(f.ctx, f.brunoA, d.ID, RescheduleRequest{NewBlockID: soon[0].ID})
		require.NoError(t, err)
		assert.Equal(t, soon[0].ID, next.BlockID)
		assert.True(t, f.available(later[1].ID))
	})

	t.Run("target already started", func(t *testing.T) {
		d := f.book(f.anaA, later[0].ID)
		_, err := f.svc.Reprogram(f.ctx, f.anaA, d.ID, RescheduleRequest{NewBlockID: past[0].ID})
		assert.ErrorIs(t, err, ErrLeadTimeNotMet)
		assert.False(t, f.available(later[0].ID))
	})
}

// lockRecorder records the blocks each transaction locks.
type lockRecorder struct {
	repo.Store
	mu     sync.Mutex
	locked []uuid.UUID
}

func (r *lockRecorder) WithTx(ctx context.Context, fn func(q repo.Queries) error) error {
	return r.Store.WithTx(ctx, func(q repo.Queries) error {
		return fn(recordingQueries{Queries: q, rec: r})
	})
}

func (r *lockRecorder) reset() []uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.locked
	r.locked = nil
	return out
}

type recordingQueries struct {
	repo.Queries
	rec *lockRecorder
}

func (q recordingQueries) LockBlock(ctx context.Context, id uuid.UUID) (repo.BlockDetail, error) {
	q.rec.mu.Lock()
	q.rec.locked = append(q.rec.locked, id)
	q.rec.mu.Unlock()
	return q.Queries.LockBlock(ctx, id)
}

func TestReprogram_LocksBlocksInIDOrder(t *testing.T) {
	f := newFixture(t)
	rec := &lockRecorder{Store: f.store}
	svc := New(rec, DefaultPolicy(), nil, WithClock(func() time.Time { return fixedNow }))
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 4)

	moves := []struct {
		name     string
		actor    authorize.Actor
		from, to repo.Block
	}{
		{"downwards", f.anaA, bl[1], bl[0]},
		{"upwards", f.brunoA, bl[2], bl[3]},
	}
	for _, m := range moves {
		t.Run(m.name, func(t *testing.T) {
			d, err := svc.Book(f.ctx, m.actor, BookRequest{BlockID: m.from.ID})
			require.NoError(t, err)
			rec.reset()

			_, err = svc.Reprogram(f.ctx, m.actor, d.ID, RescheduleRequest{NewBlockID: m.to.ID})
			require.NoError(t, err)

			want := []uuid.UUID{m.from.ID, m.to.ID}
			if bytes.Compare(m.to.ID[:], m.from.ID[:]) < 0 {
				want = []uuid.UUID{m.to.ID, m.from.ID}
			}
			locked := rec.reset()
			require.GreaterOrEqual(t, len(locked), 2)
			assert.Equal(t, want, locked[:2])
		})
	}
}

func TestStaffTransitions(t *testing.T) {
	f := newFixture(t)
	bl := f.blocks(f.cardio, tomorrowAt("09:00"), 4)

	t.Run("full visit keeps the block", func(t *testing.T) {
		d := f.book(f.anaA, bl[0].ID)
		_, err := f.svc.Confirm(f.ctx, f.reception, d.ID)
		require.NoError(t, err)
		_, err = f.svc.Confirm(f.ctx, f.reception, d.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		got, err := f.svc.Start(f.ctx, f.cardioA, d.ID)
		require.NoError(t, err)
		assert.Equal(t, repo.StatusInProgress, got.Status)

		_, err = f.svc.MarkNoShow(f.ctx, f.cardioA, d.ID)
		assert.ErrorIs(t, err, ErrInvalidTransition)

		got, err = f.svc.MarkAttended(f.ctx, f.cardioA, d.ID)
		require.NoError(t, err)
		assert.Equal(t, repo.StatusAttended, got.Status)
		assert.False(t, f.available(bl[0].ID))

		_, err = f.svc.Start(f.ctx, f.cardioA, d.ID)
		assert.ErrorIs(t, err, apperr.ErrStateConflict)
	})

	t.Run("no-show frees the block", func(t *testing.T) {
		d := f.book(f.anaA, bl[1].ID)
		got, err := f.svc.MarkNoShow(f.ctx, f.reception, d.ID)
		require.NoError(t, err)
		assert.Equal(t, repo.StatusNoShow, got.Status)
		assert.True(t, f.available(bl[1].ID))
	})

	t.Run("patients cannot drive the visit", func(t *testing.T) {
		d := f.book(f.anaA, bl[2].ID)
		_, err := f.svc.Confirm(f.ctx, f.anaA, d.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})

	t.Run("other professionals cannot touch it", func(t *testing.T) {
		d := f.book(f.brunoA, bl[3].ID)
		dermaA := authorize.Actor{UserID: f.derma.UserID, Roles: []authorize.Role{authorize.RoleProfessional}}
		_, err := f.svc.Confirm(f.ctx, dermaA, d.ID)
		assert.ErrorIs(t, err, ErrForbidden)
	})
}

func TestList_ConfinedToActor(t *testing.T) {
	f := newFixture(t)
	cardio := f.blocks(f.cardio, tomorrowAt("09:00"), 2)
	derma := f.blocks(f.derma, tomorrowAt("09:00"), 1)
	f.book(f.anaA, cardio[0].ID)
	f.book(f.brunoA, cardio[1].ID)
	f.book(f.brunoA, derma[0].ID)

	mine, err := f.svc.List(f.ctx, f.anaA, ListRequest{})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, f.ana.ID, mine[0].PatientID)

	agenda, err := f.svc.List(f.ctx, f.cardioA, ListRequest{})
	require.NoError(t, err)
	assert.Len(t, agenda, 2)

	_, err = f.svc.List(f.ctx, f.anaA, ListRequest{PatientID: &f.bruno.ID})
	assert.ErrorIs(t, err, ErrForbidden)

	_, err = f.svc.List(f.ctx, f.reception, ListRequest{Statuses: []repo.AppointmentStatus{"lost"}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

type memReasonCache struct {
	data  map[string][]repo.CancellationReason
	loads int
}

func (c *memReasonCache) Load(_ context.Context, audience string) ([]repo.CancellationReason, bool) {
	c.loads++
	r, ok := c.data[audience]
	return r, ok
}

func (c *memReasonCache) Store(_ context.Context, audience string, reasons []repo.CancellationReason) {
	c.data[audience] = reasons
}

func TestListReasons(t *testing.T) {
	f := newFixture(t)
	cache := &memReasonCache{data: map[string][]repo.CancellationReason{}}
	svc := New(f.store, DefaultPolicy(), nil, WithReasonCache(cache), WithClock(func() time.Time { return fixedNow }))

	patient, err := svc.ListReasons(f.ctx, f.anaA)
	require.NoError(t, err)
	require.Len(t, patient, 1)
	assert.Equal(t, "No puedo asistir", patient[0].Description)

	staff, err := svc.ListReasons(f.ctx, f.reception)
	require.NoError(t, err)
	assert.Len(t, staff, 2)

	f.store.FailOn("ListCancellationReasons", errors.New("db down"))
	cached, err := svc.ListReasons(f.ctx, f.anaA)
	require.NoError(t, err, "second read is served from the cache")
	assert.Equal(t, patient, cached)
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from   repo.AppointmentStatus
		action string
		want   bool
	}{
		{repo.StatusScheduled, "confirm", true},
		{repo.StatusConfirmed, "confirm", false},
		{repo.StatusConfirmed, "start", true},
		{repo.StatusInProgress, "attend", true},
		{repo.StatusScheduled, "attend", true},
		{repo.StatusInProgress, "cancel", false},
		{repo.StatusInProgress, "no_show", false},
		{repo.StatusConfirmed, "no_show", true},
		{repo.StatusAttended, "cancel", false},
		{repo.StatusScheduled, "archive", false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.action); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.action, got, tt.want)
		}
	}
}

func TestSeedReasons_Idempotent(t *testing.T) {
	f := newFixture(t)

	added, err := SeedReasons(f.ctx, f.store, DefaultReasons())
	require.NoError(t, err)
	// the fixture already holds the reschedule reason
	assert.Equal(t, len(DefaultReasons())-1, added)

	added, err = SeedReasons(f.ctx, f.store, DefaultReasons())
	require.NoError(t, err)
	assert.Zero(t, added)

	staff, err := f.svc.ListReasons(f.ctx, f.reception)
	require.NoError(t, err)
	assert.Len(t, staff, len(DefaultReasons())+1)
}
