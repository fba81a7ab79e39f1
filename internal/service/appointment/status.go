package appointment

import "github.com/mediconnect/mediconnect_backend/internal/repo"

// transition is one edge of the appointment state machine.
type transition struct {
	name       string
	allowed    func(repo.AppointmentStatus) bool
	to         repo.AppointmentStatus
	freesBlock bool
}

var (
	confirmTransition = transition{
		name:    "confirm",
		allowed: func(s repo.AppointmentStatus) bool { return s == repo.StatusScheduled },
		to:      repo.StatusConfirmed,
	}
	startTransition = transition{
		name:    "start",
		allowed: repo.AppointmentStatus.IsCancelable,
		to:      repo.StatusInProgress,
	}
	// attended keeps the block occupied as history.
	attendTransition = transition{
		name:    "attend",
		allowed: repo.AppointmentStatus.IsActive,
		to:      repo.StatusAttended,
	}
	noShowTransition = transition{
		name:       "no_show",
		allowed:    repo.AppointmentStatus.IsCancelable,
		to:         repo.StatusNoShow,
		freesBlock: true,
	}
	cancelTransition = transition{
		name:       "cancel",
		allowed:    repo.AppointmentStatus.IsCancelable,
		to:         repo.StatusCancelled,
		freesBlock: true,
	}
)

// CanTransition reports whether action may move an appointment out of from.
// Unknown actions are never allowed.
func CanTransition(from repo.AppointmentStatus, action string) bool {
	for _, t := range []transition{confirmTransition, startTransition, attendTransition, noShowTransition, cancelTransition} {
		if t.name == action {
			return t.allowed(from)
		}
	}
	return false
}
