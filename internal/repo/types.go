package repo

import (
	"time"

	"github.com/google/uuid"
)

type Professional struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	FullName  string
	Specialty string
	Email     string
	Active    bool
}

type Patient struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	FullName   string
	NationalID string
	Email      string
	Phone      string
	Address    string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// PatientChanges lists the mutable patient fields; nil means unchanged.
type PatientChanges struct {
	FullName *string
	Email    *string
	Phone    *string
	Address  *string
}

func (c PatientChanges) Empty() bool {
	return c.FullName == nil && c.Email == nil && c.Phone == nil && c.Address == nil
}

// Schedule is one professional's working window on a calendar date. Date is
// a civil date at UTC midnight; StartTime and EndTime are "HH:MM" in the
// clinic time zone.
type Schedule struct {
	ID             uuid.UUID
	ProfessionalID uuid.UUID
	Date           time.Time
	StartTime      string
	EndTime        string
	SlotMinutes    int
	Active         bool
	Notes          string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Block struct {
	ID         uuid.UUID
	ScheduleID uuid.UUID
	StartAt    time.Time
	EndAt      time.Time
	Available  bool
	Kind       BlockKind
	Notes      string
}

// BlockDetail is a block with the schedule fields booking needs.
type BlockDetail struct {
	Block
	ProfessionalID uuid.UUID
	ScheduleActive bool
	ScheduleDate   time.Time
}

// OpenBlock is a bookable block as listed to patients.
type OpenBlock struct {
	Block
	ProfessionalID   uuid.UUID
	ProfessionalName string
	Specialty        string
}

type Appointment struct {
	ID                   uuid.UUID
	PatientID            uuid.UUID
	BlockID              uuid.UUID
	RequestedAt          time.Time
	Status               AppointmentStatus
	ReasonForVisit       string
	Notes                string
	CancellationReasonID *uuid.UUID
	CancelledAt          *time.Time
	CancelledBy          *uuid.UUID
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// AppointmentDetail joins an appointment with its block, schedule,
// professional, patient and cancellation reason.
type AppointmentDetail struct {
	Appointment
	StartAt            time.Time
	EndAt              time.Time
	ScheduleID         uuid.UUID
	ScheduleDate       time.Time
	ProfessionalID     uuid.UUID
	ProfessionalName   string
	Specialty          string
	PatientName        string
	PatientNationalID  string
	PatientEmail       string
	PatientPhone       string
	CancellationReason string
}

type CancellationReason struct {
	ID          uuid.UUID
	Description string
	Active      bool
	StaffOnly   bool
}

// ---- filters ----

// ScheduleFilter selects schedules. Dates are civil dates, inclusive.
type ScheduleFilter struct {
	ProfessionalID *uuid.UUID
	From           *time.Time
	To             *time.Time
	Active         *bool
	Limit          int
	Offset         int
}

// OpenBlockFilter selects bookable blocks starting strictly after After, on
// schedules dated FromDate or later.
type OpenBlockFilter struct {
	ProfessionalID *uuid.UUID
	Specialty      string
	FromDate       time.Time
	After          time.Time
	Before         *time.Time
	Limit          int
}

// AppointmentFilter selects appointments. From/To bound the schedule date,
// inclusive. PatientQuery matches name, national id or email. Limit 0 means
// no limit.
type AppointmentFilter struct {
	PatientID      *uuid.UUID
	ProfessionalID *uuid.UUID
	Statuses       []AppointmentStatus
	From           *time.Time
	To             *time.Time
	Specialty      string
	PatientQuery   string
	Limit          int
	Offset         int
}

// BlockUsage counts consultation blocks in the filtered range.
type BlockUsage struct {
	Published int
	Occupied  int
}

// CivilDate truncates t to its calendar date at UTC midnight.
func CivilDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// NewID returns a time-ordered identifier for a new row.
func NewID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}
