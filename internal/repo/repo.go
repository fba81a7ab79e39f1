// Package repo persists schedules, blocks, appointments and the clinic
// directory on PostgreSQL through ent's SQL builder.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("unique constraint violated")
)

// Queries is every read and write the services need. Implementations used
// inside WithTx see the transaction's own writes.
type Queries interface {
	GetProfessional(ctx context.Context, id uuid.UUID) (Professional, error)
	GetProfessionalByUser(ctx context.Context, userID uuid.UUID) (Professional, error)
	CreateProfessional(ctx context.Context, p *Professional) error

	GetPatient(ctx context.Context, id uuid.UUID) (Patient, error)
	GetPatientByUser(ctx context.Context, userID uuid.UUID) (Patient, error)
	CreatePatient(ctx context.Context, p *Patient) error
	UpdatePatient(ctx context.Context, id uuid.UUID, ch PatientChanges, at time.Time) (Patient, error)

	CreateSchedule(ctx context.Context, s *Schedule) error
	GetSchedule(ctx context.Context, id uuid.UUID) (Schedule, error)
	ScheduleExists(ctx context.Context, professionalID uuid.UUID, date time.Time) (bool, error)
	ListSchedules(ctx context.Context, f ScheduleFilter) ([]Schedule, error)
	SetScheduleActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error
	DeleteSchedule(ctx context.Context, id uuid.UUID) error

	CreateBlocks(ctx context.Context, blocks []Block) error
	ListBlocks(ctx context.Context, scheduleID uuid.UUID) ([]Block, error)
	DeleteBlocks(ctx context.Context, scheduleID uuid.UUID) (int, error)
	// LockBlock reads the block with FOR UPDATE.
	LockBlock(ctx context.Context, id uuid.UUID) (BlockDetail, error)
	SetBlockAvailable(ctx context.Context, id uuid.UUID, available bool) error
	ListOpenBlocks(ctx context.Context, f OpenBlockFilter) ([]OpenBlock, error)

	CreateAppointment(ctx context.Context, a *Appointment) error
	GetAppointment(ctx context.Context, id uuid.UUID) (AppointmentDetail, error)
	// LockAppointment reads the appointment with FOR UPDATE.
	LockAppointment(ctx context.Context, id uuid.UUID) (AppointmentDetail, error)
	UpdateAppointment(ctx context.Context, a *Appointment) error
	HasActiveAppointment(ctx context.Context, blockID uuid.UUID) (bool, error)
	// ScheduleAppointmentCounts counts appointments on the schedule's blocks:
	// the non-terminal ones and all of them.
	ScheduleAppointmentCounts(ctx context.Context, scheduleID uuid.UUID) (active, total int, err error)
	FindDuplicate(ctx context.Context, patientID, professionalID uuid.UUID, startAt time.Time, exclude *uuid.UUID) (bool, error)
	CountActiveForPatientOn(ctx context.Context, patientID uuid.UUID, date time.Time, exclude *uuid.UUID) (int, error)
	ListAppointments(ctx context.Context, f AppointmentFilter) ([]AppointmentDetail, error)

	GetCancellationReason(ctx context.Context, id uuid.UUID) (CancellationReason, error)
	ListCancellationReasons(ctx context.Context, includeStaffOnly bool) ([]CancellationReason, error)
	CreateCancellationReason(ctx context.Context, r *CancellationReason) error

	StatusCounts(ctx context.Context, f AppointmentFilter) (map[AppointmentStatus]int, error)
	BlockUsage(ctx context.Context, f AppointmentFilter) (BlockUsage, error)
}

// Store is Queries plus transactions. fn's error rolls the transaction back
// and is returned unchanged.
type Store interface {
	Queries
	WithTx(ctx context.Context, fn func(q Queries) error) error
}
