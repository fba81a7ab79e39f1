package handler

import (
	"time"

	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/service/scheduling"
)

type scheduleView struct {
	ID             uuid.UUID   `json:"id"`
	ProfessionalID uuid.UUID   `json:"professional_id"`
	Date           string      `json:"date"`
	StartTime      string      `json:"start_time"`
	EndTime        string      `json:"end_time"`
	SlotMinutes    int         `json:"slot_minutes"`
	Active         bool        `json:"active"`
	Notes          string      `json:"notes,omitempty"`
	Blocks         []blockView `json:"blocks,omitempty"`
}

type blockView struct {
	ID         uuid.UUID      `json:"id"`
	ScheduleID uuid.UUID      `json:"schedule_id"`
	StartAt    time.Time      `json:"start_at"`
	EndAt      time.Time      `json:"end_at"`
	Available  bool           `json:"available"`
	Kind       repo.BlockKind `json:"kind"`
	Notes      string         `json:"notes,omitempty"`
}

type openBlockView struct {
	blockView
	ProfessionalID   uuid.UUID `json:"professional_id"`
	ProfessionalName string    `json:"professional_name"`
	Specialty        string    `json:"specialty"`
}

type appointmentView struct {
	ID                 uuid.UUID              `json:"id"`
	Status             repo.AppointmentStatus `json:"status"`
	PatientID          uuid.UUID              `json:"patient_id"`
	PatientName        string                 `json:"patient_name"`
	BlockID            uuid.UUID              `json:"block_id"`
	ScheduleID         uuid.UUID              `json:"schedule_id"`
	ProfessionalID     uuid.UUID              `json:"professional_id"`
	ProfessionalName   string                 `json:"professional_name"`
	Specialty          string                 `json:"specialty"`
	StartAt            time.Time              `json:"start_at"`
	EndAt              time.Time              `json:"end_at"`
	RequestedAt        time.Time              `json:"requested_at"`
	ReasonForVisit     string                 `json:"reason_for_visit,omitempty"`
	Notes              string                 `json:"notes,omitempty"`
	CancellationReason string                 `json:"cancellation_reason,omitempty"`
	CancelledAt        *time.Time             `json:"cancelled_at,omitempty"`
	CancelledBy        *uuid.UUID             `json:"cancelled_by,omitempty"`
}

type reasonView struct {
	ID          uuid.UUID `json:"id"`
	Description string    `json:"description"`
	StaffOnly   bool      `json:"staff_only"`
}

type patientView struct {
	ID         uuid.UUID `json:"id"`
	FullName   string    `json:"full_name"`
	NationalID string    `json:"national_id"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	Address    string    `json:"address,omitempty"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toScheduleView(s repo.Schedule, blocks []repo.Block) scheduleView {
	v := scheduleView{
		ID:             s.ID,
		ProfessionalID: s.ProfessionalID,
		Date:           s.Date.Format(dateLayout),
		StartTime:      s.StartTime,
		EndTime:        s.EndTime,
		SlotMinutes:    s.SlotMinutes,
		Active:         s.Active,
		Notes:          s.Notes,
	}
	for _, b := range blocks {
		v.Blocks = append(v.Blocks, toBlockView(b))
	}
	return v
}

func toScheduleWithBlocks(s *scheduling.ScheduleWithBlocks) scheduleView {
	return toScheduleView(s.Schedule, s.Blocks)
}

func toBlockView(b repo.Block) blockView {
	return blockView{
		ID:         b.ID,
		ScheduleID: b.ScheduleID,
		StartAt:    b.StartAt,
		EndAt:      b.EndAt,
		Available:  b.Available,
		Kind:       b.Kind,
		Notes:      b.Notes,
	}
}

func toAppointmentView(a *repo.AppointmentDetail) appointmentView {
	return appointmentView{
		ID:                 a.ID,
		Status:             a.Status,
		PatientID:          a.PatientID,
		PatientName:        a.PatientName,
		BlockID:            a.BlockID,
		ScheduleID:         a.ScheduleID,
		ProfessionalID:     a.ProfessionalID,
		ProfessionalName:   a.ProfessionalName,
		Specialty:          a.Specialty,
		StartAt:            a.StartAt,
		EndAt:              a.EndAt,
		RequestedAt:        a.RequestedAt,
		ReasonForVisit:     a.ReasonForVisit,
		Notes:              a.Notes,
		CancellationReason: a.CancellationReason,
		CancelledAt:        a.CancelledAt,
		CancelledBy:        a.CancelledBy,
	}
}

func toPatientView(p *repo.Patient) patientView {
	return patientView{
		ID:         p.ID,
		FullName:   p.FullName,
		NationalID: p.NationalID,
		Email:      p.Email,
		Phone:      p.Phone,
		Address:    p.Address,
		UpdatedAt:  p.UpdatedAt,
	}
}
