package email

import (
	"fmt"
	"html"
	"strings"
	"time"
)

const (
	SubjectAppointmentBooked      = "Confirmación de Cita Médica"
	SubjectAppointmentCancelled   = "Cancelación de Cita Médica"
	SubjectAppointmentRescheduled = "Reprogramación de Cita Médica"
)

// AppointmentEmailData carries what the appointment templates render.
type AppointmentEmailData struct {
	AppName      string
	PatientName  string
	Email        string
	Professional string
	Specialty    string
	Start        time.Time
	Previous     time.Time // rescheduling only
	Reason       string    // cancellation only
}

func BuildAppointmentBookedEmail(d AppointmentEmailData) Message {
	lines := []string{
		"Su cita ha sido agendada con éxito.",
		"Fecha: " + formatDate(d.Start),
		"Hora: " + formatClock(d.Start),
		"Profesional: " + professionalLine(d),
		"Por favor llegue 10 minutos antes de la hora indicada.",
	}
	return render(d, SubjectAppointmentBooked, lines)
}

func BuildAppointmentCancelledEmail(d AppointmentEmailData) Message {
	lines := []string{
		"Su cita ha sido cancelada.",
		"Fecha: " + formatDate(d.Start),
		"Hora: " + formatClock(d.Start),
		"Profesional: " + professionalLine(d),
	}
	if d.Reason != "" {
		lines = append(lines, "Motivo: "+d.Reason)
	}
	lines = append(lines, "Puede agendar una nueva cita cuando lo desee.")
	return render(d, SubjectAppointmentCancelled, lines)
}

func BuildAppointmentRescheduledEmail(d AppointmentEmailData) Message {
	lines := []string{
		"Su cita ha sido reprogramada.",
		"Fecha anterior: " + formatDate(d.Previous) + " " + formatClock(d.Previous),
		"Nueva fecha: " + formatDate(d.Start),
		"Nueva hora: " + formatClock(d.Start),
		"Profesional: " + professionalLine(d),
	}
	return render(d, SubjectAppointmentRescheduled, lines)
}

func render(d AppointmentEmailData, subject string, lines []string) Message {
	appName := d.AppName
	if appName == "" {
		appName = "MediConnect"
	}
	greeting := "Estimado/a " + d.PatientName + ","
	if d.PatientName == "" {
		greeting = "Estimado/a paciente,"
	}
	closing := "Saludos cordiales,\nEquipo " + appName

	text := greeting + "\n\n" + strings.Join(lines, "\n") + "\n\n" + closing

	var b strings.Builder
	b.WriteString(`<!DOCTYPE html><html><head><meta charset="UTF-8"></head>`)
	b.WriteString(`<body style="font-family: Arial, sans-serif; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">`)
	fmt.Fprintf(&b, `<h2 style="color: #0f766e;">%s</h2>`, html.EscapeString(greeting))
	for _, l := range lines {
		fmt.Fprintf(&b, "<p>%s</p>", html.EscapeString(l))
	}
	fmt.Fprintf(&b, `<p style="color: #6b7280; font-size: 14px;">Saludos cordiales,<br>Equipo %s</p>`, html.EscapeString(appName))
	b.WriteString("</body></html>")

	return Message{
		To:       []string{d.Email},
		Subject:  subject,
		TextBody: text,
		HTMLBody: b.String(),
	}
}

func professionalLine(d AppointmentEmailData) string {
	if d.Specialty == "" {
		return d.Professional
	}
	return d.Professional + " (" + d.Specialty + ")"
}

func formatDate(t time.Time) string  { return t.Format("02/01/2006") }
func formatClock(t time.Time) string { return t.Format("15:04") }
