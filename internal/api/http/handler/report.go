package handler

import (
	"bytes"
	"context"
	"io"

	"github.com/gofiber/fiber/v3"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/service/report"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

type ReportHandler struct {
	svc report.Service
}

func NewReportHandler(svc report.Service) *ReportHandler {
	return &ReportHandler{svc: svc}
}

func reportFilter(c fiber.Ctx) (report.Filter, string) {
	var q struct {
		Status         string `query:"status"`
		From           string `query:"from"`
		To             string `query:"to"`
		ProfessionalID string `query:"professional_id"`
		Specialty      string `query:"specialty"`
		Patient        string `query:"patient"`
	}
	_ = c.Bind().Query(&q)

	var valid bool
	f := report.Filter{Specialty: q.Specialty, PatientQuery: q.Patient}
	if q.Status != "" {
		st := repo.AppointmentStatus(q.Status)
		f.Status = &st
	}
	if f.ProfessionalID, valid = optionalUUID(q.ProfessionalID); !valid {
		return f, "invalid professional_id"
	}
	if f.From, valid = optionalDate(q.From); !valid {
		return f, "from must be YYYY-MM-DD"
	}
	if f.To, valid = optionalDate(q.To); !valid {
		return f, "to must be YYYY-MM-DD"
	}
	return f, ""
}

type csvReport func(ctx context.Context, actor authorize.Actor, f report.Filter, w io.Writer) error

// The whole file is rendered before the first byte is sent so that a failure
// still maps to a proper status.
func (h *ReportHandler) sendCSV(c fiber.Ctx, name string, render csvReport) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	f, msg := reportFilter(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	var buf bytes.Buffer
	if err := render(c.Context(), actor, f, &buf); err != nil {
		return fail(c, err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+name+`"`)
	return c.Send(buf.Bytes())
}

// GET /reports/appointments.csv
func (h *ReportHandler) AppointmentsCSV(c fiber.Ctx) error {
	return h.sendCSV(c, "appointments.csv", h.svc.AppointmentsCSV)
}

// GET /reports/attended.csv
func (h *ReportHandler) AttendedCSV(c fiber.Ctx) error {
	return h.sendCSV(c, "attended.csv", h.svc.AttendedCSV)
}

// GET /reports/utilization
func (h *ReportHandler) Utilization(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	f, msg := reportFilter(c)
	if msg != "" {
		return badRequest(c, msg)
	}

	u, err := h.svc.Utilization(c.Context(), actor, f)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, u)
}
