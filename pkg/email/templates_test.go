package email

import (
	"strings"
	"testing"
	"time"
)

func TestAppointmentTemplates(t *testing.T) {
	start := time.Date(2026, 11, 3, 9, 30, 0, 0, time.UTC)
	data := AppointmentEmailData{
		PatientName:  "Ana Rojas",
		Email:        "ana@example.com",
		Professional: "Dr. Pérez",
		Specialty:    "Cardiología",
		Start:        start,
		Previous:     start.Add(-48 * time.Hour),
		Reason:       "Enfermedad del médico",
	}

	tests := []struct {
		name    string
		msg     Message
		subject string
		want    []string
	}{
		{"booked", BuildAppointmentBookedEmail(data), SubjectAppointmentBooked, []string{"03/11/2026", "09:30", "Dr. Pérez (Cardiología)"}},
		{"cancelled", BuildAppointmentCancelledEmail(data), SubjectAppointmentCancelled, []string{"Motivo: Enfermedad del médico"}},
		{"rescheduled", BuildAppointmentRescheduledEmail(data), SubjectAppointmentRescheduled, []string{"Fecha anterior: 01/11/2026 09:30", "Nueva hora: 09:30"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.msg.Subject != tt.subject {
				t.Errorf("subject = %q, want %q", tt.msg.Subject, tt.subject)
			}
			if len(tt.msg.To) != 1 || tt.msg.To[0] != "ana@example.com" {
				t.Errorf("to = %v", tt.msg.To)
			}
			for _, w := range tt.want {
				if !strings.Contains(tt.msg.TextBody, w) {
					t.Errorf("text body missing %q:\n%s", w, tt.msg.TextBody)
				}
			}
			if !strings.Contains(tt.msg.HTMLBody, "Ana Rojas") {
				t.Error("html body missing patient name")
			}
			if _, err := buildMessage("clinic@example.com", tt.msg); err != nil {
				t.Errorf("buildMessage: %v", err)
			}
		})
	}
}

func TestBuildMessage_Invalid(t *testing.T) {
	valid := Message{To: []string{"a@example.com"}, Subject: "s", TextBody: "b"}

	tests := []struct {
		name string
		from string
		msg  Message
	}{
		{"missing from", "", valid},
		{"missing recipient", "x@example.com", Message{To: []string{" "}, Subject: "s", TextBody: "b"}},
		{"missing subject", "x@example.com", Message{To: valid.To, TextBody: "b"}},
		{"missing body", "x@example.com", Message{To: valid.To, Subject: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := buildMessage(tt.from, tt.msg)
			if _, ok := err.(ErrInvalidMessage); !ok {
				t.Errorf("expected ErrInvalidMessage, got %v", err)
			}
		})
	}
}

func TestSend_Disabled(t *testing.T) {
	c, err := New(Config{Enabled: false})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := c.Send(t.Context(), Message{}); err == nil {
		t.Error("expected ErrDisabled")
	} else if _, ok := err.(ErrDisabled); !ok {
		t.Errorf("expected ErrDisabled, got %T", err)
	}
}
