// Package report exports appointment data as CSV and summarizes agenda
// utilization.
package report

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"slices"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/service/access"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

// ---------------------------------------------------------------------------
// DTOs
// ---------------------------------------------------------------------------

// Filter narrows every report. From and To are inclusive civil dates.
type Filter struct {
	Status         *repo.AppointmentStatus
	From           *time.Time
	To             *time.Time
	ProfessionalID *uuid.UUID
	Specialty      string
	// PatientQuery matches patient name, national id or email.
	PatientQuery string
}

type Utilization struct {
	Total    int                            `json:"total"`
	ByStatus map[repo.AppointmentStatus]int `json:"by_status"`
	// AttendanceRate and NoShowRate are percentages of closed, non-cancelled
	// appointments.
	AttendanceRate  float64 `json:"attendance_rate"`
	NoShowRate      float64 `json:"no_show_rate"`
	BlocksPublished int     `json:"blocks_published"`
	BlocksOccupied  int     `json:"blocks_occupied"`
	OccupancyRate   float64 `json:"occupancy_rate"`
}

// AttendedPatient aggregates one patient's attended visits.
type AttendedPatient struct {
	PatientID  uuid.UUID
	FullName   string
	NationalID string
	Email      string
	Phone      string
	Visits     int
	LastVisit  time.Time
}

// ---------------------------------------------------------------------------
// Interface
// ---------------------------------------------------------------------------

type Service interface {
	AppointmentsCSV(ctx context.Context, actor authorize.Actor, f Filter, w io.Writer) error
	AttendedCSV(ctx context.Context, actor authorize.Actor, f Filter, w io.Writer) error
	Utilization(ctx context.Context, actor authorize.Actor, f Filter) (*Utilization, error)
}

// ---------------------------------------------------------------------------
// Implementation
// ---------------------------------------------------------------------------

var appointmentHeader = []string{
	"ID Cita", "Fecha", "Hora Inicio", "Hora Fin", "Estado",
	"RUT Paciente", "Nombre Paciente", "Email Paciente", "Telefono Paciente",
	"Profesional", "Especialidad", "Motivo Consulta", "Observaciones",
	"Motivo Cancelacion", "Fecha Creacion",
}

var attendedHeader = []string{
	"RUT Paciente", "Nombre Paciente", "Email Paciente", "Telefono Paciente",
	"Atenciones", "Ultima Atencion",
}

type reportService struct {
	store  repo.Queries
	access *access.Resolver
	loc    *time.Location
}

func New(store repo.Queries, loc *time.Location) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &reportService{store: store, access: access.NewResolver(store), loc: loc}
}

// query turns a Filter into the repo filter an actor may run.
func (s *reportService) query(ctx context.Context, actor authorize.Actor, f Filter) (repo.AppointmentFilter, error) {
	if !actor.IsStaff() {
		return repo.AppointmentFilter{}, ErrForbidden
	}
	sc, err := s.access.Resolve(ctx, actor)
	if err != nil {
		return repo.AppointmentFilter{}, err
	}
	if f.From != nil && f.To != nil && repo.CivilDate(*f.From).After(repo.CivilDate(*f.To)) {
		return repo.AppointmentFilter{}, ErrInvalidRange
	}

	out := repo.AppointmentFilter{
		ProfessionalID: f.ProfessionalID,
		From:           f.From,
		To:             f.To,
		Specialty:      f.Specialty,
		PatientQuery:   f.PatientQuery,
	}
	if f.Status != nil {
		if !f.Status.Valid() {
			return repo.AppointmentFilter{}, ErrInvalidState
		}
		out.Statuses = []repo.AppointmentStatus{*f.Status}
	}
	if !sc.Unrestricted() {
		if f.ProfessionalID != nil && !sc.OwnsProfessional(*f.ProfessionalID) {
			return repo.AppointmentFilter{}, ErrForbidden
		}
		out.ProfessionalID = sc.ProfessionalID
	}
	return out, nil
}

func (s *reportService) AppointmentsCSV(ctx context.Context, actor authorize.Actor, f Filter, w io.Writer) error {
	q, err := s.query(ctx, actor, f)
	if err != nil {
		return err
	}
	rows, err := s.store.ListAppointments(ctx, q)
	if err != nil {
		return fmt.Errorf("list appointments: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(appointmentHeader); err != nil {
		return err
	}
	for _, d := range rows {
		rec := []string{
			d.ID.String(),
			d.ScheduleDate.Format(time.DateOnly),
			d.StartAt.In(s.loc).Format("15:04"),
			d.EndAt.In(s.loc).Format("15:04"),
			string(d.Status),
			d.PatientNationalID,
			d.PatientName,
			d.PatientEmail,
			d.PatientPhone,
			d.ProfessionalName,
			d.Specialty,
			d.ReasonForVisit,
			d.Notes,
			d.CancellationReason,
			d.RequestedAt.In(s.loc).Format(time.DateTime),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func (s *reportService) AttendedCSV(ctx context.Context, actor authorize.Actor, f Filter, w io.Writer) error {
	attended := repo.StatusAttended
	f.Status = &attended
	q, err := s.query(ctx, actor, f)
	if err != nil {
		return err
	}
	rows, err := s.store.ListAppointments(ctx, q)
	if err != nil {
		return fmt.Errorf("list appointments: %w", err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(attendedHeader); err != nil {
		return err
	}
	for _, p := range AggregateAttended(rows) {
		rec := []string{
			p.NationalID,
			p.FullName,
			p.Email,
			p.Phone,
			strconv.Itoa(p.Visits),
			p.LastVisit.In(s.loc).Format("2006-01-02 15:04"),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// AggregateAttended folds attended appointments into one row per patient,
// most recent visit first.
func AggregateAttended(rows []repo.AppointmentDetail) []AttendedPatient {
	byPatient := make(map[uuid.UUID]*AttendedPatient)
	for _, d := range rows {
		if d.Status != repo.StatusAttended {
			continue
		}
		p, ok := byPatient[d.PatientID]
		if !ok {
			p = &AttendedPatient{
				PatientID:  d.PatientID,
				FullName:   d.PatientName,
				NationalID: d.PatientNationalID,
				Email:      d.PatientEmail,
				Phone:      d.PatientPhone,
			}
			byPatient[d.PatientID] = p
		}
		p.Visits++
		if d.StartAt.After(p.LastVisit) {
			p.LastVisit = d.StartAt
		}
	}

	out := make([]AttendedPatient, 0, len(byPatient))
	for _, p := range byPatient {
		out = append(out, *p)
	}
	slices.SortFunc(out, func(a, b AttendedPatient) int {
		if c := b.LastVisit.Compare(a.LastVisit); c != 0 {
			return c
		}
		return bytes.Compare(a.PatientID[:], b.PatientID[:])
	})
	return out
}

func (s *reportService) Utilization(ctx context.Context, actor authorize.Actor, f Filter) (*Utilization, error) {
	q, err := s.query(ctx, actor, f)
	if err != nil {
		return nil, err
	}

	counts, err := s.store.StatusCounts(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("count appointments: %w", err)
	}
	usage, err := s.store.BlockUsage(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("block usage: %w", err)
	}
	return summarize(counts, usage), nil
}

func summarize(counts map[repo.AppointmentStatus]int, usage repo.BlockUsage) *Utilization {
	u := &Utilization{
		ByStatus:        make(map[repo.AppointmentStatus]int, len(repo.AllStatuses())),
		BlocksPublished: usage.Published,
		BlocksOccupied:  usage.Occupied,
	}
	for _, st := range repo.AllStatuses() {
		u.ByStatus[st] = counts[st]
		u.Total += counts[st]
	}

	closed := counts[repo.StatusAttended] + counts[repo.StatusNoShow]
	u.AttendanceRate = percent(counts[repo.StatusAttended], closed)
	u.NoShowRate = percent(counts[repo.StatusNoShow], closed)
	u.OccupancyRate = percent(usage.Occupied, usage.Published)
	return u
}

func percent(n, of int) float64 {
	if of == 0 {
		return 0
	}
	return math.Round(float64(n)*10000/float64(of)) / 100
}
