package repo

// AppointmentStatus is the closed set of appointment states.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "scheduled"
	StatusConfirmed  AppointmentStatus = "confirmed"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusAttended   AppointmentStatus = "attended"
	StatusCancelled  AppointmentStatus = "cancelled"
	StatusNoShow     AppointmentStatus = "no_show"
)

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []AppointmentStatus {
	return []AppointmentStatus{
		StatusScheduled, StatusConfirmed, StatusInProgress,
		StatusAttended, StatusCancelled, StatusNoShow,
	}
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress,
		StatusAttended, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// IsActive reports whether the appointment still holds its block.
func (s AppointmentStatus) IsActive() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

// IsCancelable reports whether the appointment has not started yet.
func (s AppointmentStatus) IsCancelable() bool {
	switch s {
	case StatusScheduled, StatusConfirmed:
		return true
	}
	return false
}

func (s AppointmentStatus) IsTerminal() bool {
	switch s {
	case StatusAttended, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// ActiveStatuses is derived from IsActive.
func ActiveStatuses() []AppointmentStatus {
	var out []AppointmentStatus
	for _, s := range AllStatuses() {
		if s.IsActive() {
			out = append(out, s)
		}
	}
	return out
}

func activeStatusArgs() []any {
	active := ActiveStatuses()
	out := make([]any, len(active))
	for i, s := range active {
		out[i] = string(s)
	}
	return out
}

// BlockKind classifies a time block. Only consultation blocks are bookable.
type BlockKind string

const (
	BlockConsultation BlockKind = "consultation"
	BlockReserved     BlockKind = "reserved"
	BlockBlocked      BlockKind = "blocked"
)

func (k BlockKind) Valid() bool {
	switch k {
	case BlockConsultation, BlockReserved, BlockBlocked:
		return true
	}
	return false
}
