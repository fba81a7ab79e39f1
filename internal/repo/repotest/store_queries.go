package repotest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
)

// Non-transactional calls run against the live data under the store lock.

func (s *Store) GetProfessional(ctx context.Context, id uuid.UUID) (out repo.Professional, err error) {
	err = s.do(func(v *view) error {
		out, err = v.GetProfessional(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) GetProfessionalByUser(ctx context.Context, userID uuid.UUID) (out repo.Professional, err error) {
	err = s.do(func(v *view) error {
		out, err = v.GetProfessionalByUser(ctx, userID)
		return err
	})
	return out, err
}

func (s *Store) CreateProfessional(ctx context.Context, p *repo.Professional) error {
	return s.do(func(v *view) error { return v.CreateProfessional(ctx, p) })
}

func (s *Store) GetPatient(ctx context.Context, id uuid.UUID) (out repo.Patient, err error) {
	err = s.do(func(v *view) error {
		out, err = v.GetPatient(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) GetPatientByUser(ctx context.Context, userID uuid.UUID) (out repo.Patient, err error) {
	err = s.do(func(v *view) error {
		out, err = v.GetPatientByUser(ctx, userID)
		return err
	})
	return out, err
}

func (s *Store) CreatePatient(ctx context.Context, p *repo.Patient) error {
	return s.do(func(v *view) error { return v.CreatePatient(ctx, p) })
}

func (s *Store) UpdatePatient(ctx context.Context, id uuid.UUID, ch repo.PatientChanges, at time.Time) (out repo.Patient, err error) {
	err = s.do(func(v *view) error {
		out, err = v.UpdatePatient(ctx, id, ch, at)
		return err
	})
	return out, err
}

func (s *Store) CreateSchedule(ctx context.Context, sched *repo.Schedule) error {
	return s.do(func(v *view) error { return v.CreateSchedule(ctx, sched) })
}

func (s *Store) GetSchedule(ctx context.Context, id uuid.UUID) (out repo.Schedule, err error) {
	err = s.do(func(v *view) error {
		out, err = v.GetSchedule(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) ScheduleExists(ctx context.Context, professionalID uuid.UUID, date time.Time) (out bool, err error) {
	err = s.do(func(v *view) error {
		out, err = v.ScheduleExists(ctx, professionalID, date)
		return err
	})
	return out, err
}

func (s *Store) ListSchedules(ctx context.Context, f repo.ScheduleFilter) (out []repo.Schedule, err error) {
	err = s.do(func(v *view) error {
		out, err = v.ListSchedules(ctx, f)
		return err
	})
	return out, err
}

func (s *Store) SetScheduleActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error {
	return s.do(func(v *view) error { return v.SetScheduleActive(ctx, id, active, at) })
}

func (s *Store) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	return s.do(func(v *view) error { return v.DeleteSchedule(ctx, id) })
}

func (s *Store) CreateBlocks(ctx context.Context, blocks []repo.Block) error {
	return s.do(func(v *view) error { return v.CreateBlocks(ctx, blocks) })
}

func (s *Store) ListBlocks(ctx context.Context, scheduleID uuid.UUID) (out []repo.Block, err error) {
	err = s.do(func(v *view) error {
		out, err = v.ListBlocks(ctx, scheduleID)
		return err
	})
	return out, err
}

func (s *Store) DeleteBlocks(ctx context.Context, scheduleID uuid.UUID) (out int, err error) {
	err = s.do(func(v *view) error {
		out, err = v.DeleteBlocks(ctx, scheduleID)
		return err
	})
	return out, err
}

func (s *Store) LockBlock(ctx context.Context, id uuid.UUID) (out repo.BlockDetail, err error) {
	err = s.do(func(v *view) error {
		out, err = v.LockBlock(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) SetBlockAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	return s.do(func(v *view) error { return v.SetBlockAvailable(ctx, id, available) })
}

func (s *Store) ListOpenBlocks(ctx context.Context, f repo.OpenBlockFilter) (out []repo.OpenBlock, err error) {
	err = s.do(func(v *view) error {
		out, err = v.ListOpenBlocks(ctx, f)
		return err
	})
	return out, err
}

func (s *Store) CreateAppointment(ctx context.Context, a *repo.Appointment) error {
	return s.do(func(v *view) error { return v.CreateAppointment(ctx, a) })
}

func (s *Store) GetAppointment(ctx context.Context, id uuid.UUID) (out repo.AppointmentDetail, err error) {
	err = s.do(func(v *view) error {
		out, err = v.GetAppointment(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) LockAppointment(ctx context.Context, id uuid.UUID) (out repo.AppointmentDetail, err error) {
	err = s.do(func(v *view) error {
		out, err = v.LockAppointment(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) UpdateAppointment(ctx context.Context, a *repo.Appointment) error {
	return s.do(func(v *view) error { return v.UpdateAppointment(ctx, a) })
}

func (s *Store) HasActiveAppointment(ctx context.Context, blockID uuid.UUID) (out bool, err error) {
	err = s.do(func(v *view) error {
		out, err = v.HasActiveAppointment(ctx, blockID)
		return err
	})
	return out, err
}

func (s *Store) ScheduleAppointmentCounts(ctx context.Context, scheduleID uuid.UUID) (active, total int, err error) {
	err = s.do(func(v *view) error {
		active, total, err = v.ScheduleAppointmentCounts(ctx, scheduleID)
		return err
	})
	return active, total, err
}

func (s *Store) FindDuplicate(ctx context.Context, patientID, professionalID uuid.UUID, startAt time.Time, exclude *uuid.UUID) (out bool, err error) {
	err = s.do(func(v *view) error {
		out, err = v.FindDuplicate(ctx, patientID, professionalID, startAt, exclude)
		return err
	})
	return out, err
}

func (s *Store) CountActiveForPatientOn(ctx context.Context, patientID uuid.UUID, date time.Time, exclude *uuid.UUID) (out int, err error) {
	err = s.do(func(v *view) error {
		out, err = v.CountActiveForPatientOn(ctx, patientID, date, exclude)
		return err
	})
	return out, err
}

func (s *Store) ListAppointments(ctx context.Context, f repo.AppointmentFilter) (out []repo.AppointmentDetail, err error) {
	err = s.do(func(v *view) error {
		out, err = v.ListAppointments(ctx, f)
		return err
	})
	return out, err
}

func (s *Store) GetCancellationReason(ctx context.Context, id uuid.UUID) (out repo.CancellationReason, err error) {
	err = s.do(func(v *view) error {
		out, err = v.GetCancellationReason(ctx, id)
		return err
	})
	return out, err
}

func (s *Store) ListCancellationReasons(ctx context.Context, includeStaffOnly bool) (out []repo.CancellationReason, err error) {
	err = s.do(func(v *view) error {
		out, err = v.ListCancellationReasons(ctx, includeStaffOnly)
		return err
	})
	return out, err
}

func (s *Store) CreateCancellationReason(ctx context.Context, r *repo.CancellationReason) error {
	return s.do(func(v *view) error { return v.CreateCancellationReason(ctx, r) })
}

func (s *Store) StatusCounts(ctx context.Context, f repo.AppointmentFilter) (out map[repo.AppointmentStatus]int, err error) {
	err = s.do(func(v *view) error {
		out, err = v.StatusCounts(ctx, f)
		return err
	})
	return out, err
}

func (s *Store) BlockUsage(ctx context.Context, f repo.AppointmentFilter) (out repo.BlockUsage, err error) {
	err = s.do(func(v *view) error {
		out, err = v.BlockUsage(ctx, f)
		return err
	})
	return out, err
}
