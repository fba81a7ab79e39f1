// Package notification tells patients about changes to their appointments.
// Delivery is best effort: failures are logged and never reach the caller.
package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindBooked      Kind = "booked"
	KindCancelled   Kind = "cancelled"
	KindRescheduled Kind = "rescheduled"
)

func (k Kind) Valid() bool {
	switch k {
	case KindBooked, KindCancelled, KindRescheduled:
		return true
	}
	return false
}

// Notice is everything a channel needs to render one message. It is also the
// JSON payload published on NATS.
type Notice struct {
	Kind             Kind       `json:"kind"`
	AppointmentID    uuid.UUID  `json:"appointment_id"`
	PatientName      string     `json:"patient_name"`
	PatientEmail     string     `json:"patient_email,omitempty"`
	PatientPhone     string     `json:"patient_phone,omitempty"`
	ProfessionalName string     `json:"professional_name"`
	Specialty        string     `json:"specialty,omitempty"`
	Start            time.Time  `json:"start"`
	PreviousStart    *time.Time `json:"previous_start,omitempty"`
	Reason           string     `json:"reason,omitempty"`
}

// Notifier is called after an appointment change commits. Implementations
// must not block the caller on delivery.
type Notifier interface {
	Booked(ctx context.Context, n Notice)
	Cancelled(ctx context.Context, n Notice)
	Rescheduled(ctx context.Context, n Notice)
}

// Func adapts a single send function to Notifier, stamping the kind.
type Func func(ctx context.Context, n Notice)

func (f Func) Booked(ctx context.Context, n Notice) {
	n.Kind = KindBooked
	f(ctx, n)
}

func (f Func) Cancelled(ctx context.Context, n Notice) {
	n.Kind = KindCancelled
	f(ctx, n)
}

func (f Func) Rescheduled(ctx context.Context, n Notice) {
	n.Kind = KindRescheduled
	f(ctx, n)
}

// Nop drops every notice.
var Nop Notifier = Func(func(context.Context, Notice) {})
