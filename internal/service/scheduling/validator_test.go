package scheduling

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/repo/repotest"
	"github.com/mediconnect/mediconnect_backend/pkg/apperr"
)

var fixedNow = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func TestValidator_CheckShape(t *testing.T) {
	v := NewValidator(DefaultRules(), func() time.Time { return fixedNow })
	today := repo.CivilDate(fixedNow)

	base := Proposal{
		ProfessionalID: uuid.New(),
		Date:           today.AddDate(0, 0, 1),
		Start:          MustClock("09:00"),
		End:            MustClock("13:00"),
		SlotMinutes:    30,
	}

	tests := []struct {
		name   string
		mutate func(*Proposal)
		want   error
	}{
		{"valid", func(*Proposal) {}, nil},
		{"today allowed", func(p *Proposal) { p.Date = today }, nil},
		{"yesterday", func(p *Proposal) { p.Date = today.AddDate(0, 0, -1) }, ErrDateInPast},
		{"horizon edge", func(p *Proposal) { p.Date = today.AddDate(0, 0, 180) }, nil},
		{"past horizon", func(p *Proposal) { p.Date = today.AddDate(0, 0, 181) }, ErrDateTooFar},
		{"opens early", func(p *Proposal) { p.Start = MustClock("06:30") }, ErrOutsideOperatingHours},
		{"closes late", func(p *Proposal) { p.End = MustClock("22:30") }, ErrOutsideOperatingHours},
		{"full clinic day", func(p *Proposal) { p.Start, p.End = MustClock("08:00"), MustClock("20:00") }, nil},
		{"inverted", func(p *Proposal) { p.Start, p.End = MustClock("13:00"), MustClock("09:00") }, ErrInvalidTimeRange},
		{"too short", func(p *Proposal) { p.End = MustClock("09:45") }, ErrWorkdayTooShort},
		{"too long", func(p *Proposal) { p.Start, p.End = MustClock("07:00"), MustClock("20:00") }, ErrWorkdayTooLong},
		{"slot too small", func(p *Proposal) { p.SlotMinutes = 10 }, ErrSlotDurationOutOfRange},
		{"slot too big", func(p *Proposal) { p.SlotMinutes = 241 }, ErrSlotDurationOutOfRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := base
			tt.mutate(&p)
			err := v.CheckShape(p)
			if !errors.Is(err, tt.want) {
				t.Fatalf("CheckShape() = %v, want %v", err, tt.want)
			}
			if tt.want != nil && !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("error kind = %v, want validation", apperr.KindOf(err))
			}
		})
	}
}

func TestValidator_Check(t *testing.T) {
	ctx := context.Background()
	store := repotest.New()
	v := NewValidator(DefaultRules(), func() time.Time { return fixedNow })

	doc := repo.Professional{UserID: uuid.New(), FullName: "Dra. Rojas", Specialty: "Pediatría", Active: true}
	if err := store.CreateProfessional(ctx, &doc); err != nil {
		t.Fatal(err)
	}
	date := repo.CivilDate(fixedNow).AddDate(0, 0, 2)
	if err := store.CreateSchedule(ctx, &repo.Schedule{ProfessionalID: doc.ID, Date: date, StartTime: "09:00", EndTime: "12:00", SlotMinutes: 30, Active: true}); err != nil {
		t.Fatal(err)
	}

	p := Proposal{ProfessionalID: doc.ID, Date: date.AddDate(0, 0, 1), Start: MustClock("09:00"), End: MustClock("12:00"), SlotMinutes: 30}
	if err := v.Check(ctx, store, p); err != nil {
		t.Fatalf("free date: %v", err)
	}

	p.Date = date
	if err := v.Check(ctx, store, p); !errors.Is(err, ErrScheduleExists) || !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("taken date: %v", err)
	}

	p.ProfessionalID = uuid.New()
	if err := v.Check(ctx, store, p); !errors.Is(err, ErrProfessionalNotFound) {
		t.Errorf("unknown professional: %v", err)
	}
}
