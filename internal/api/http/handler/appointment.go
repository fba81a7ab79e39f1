package handler

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/service/appointment"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

type AppointmentHandler struct {
	svc appointment.Service
}

func NewAppointmentHandler(svc appointment.Service) *AppointmentHandler {
	return &AppointmentHandler{svc: svc}
}

// GET /appointments
func (h *AppointmentHandler) List(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		PatientID      string `query:"patient_id"`
		ProfessionalID string `query:"professional_id"`
		Status         string `query:"status"`
		From           string `query:"from"`
		To             string `query:"to"`
		Page           int    `query:"page"`
		PerPage        int    `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	req := appointment.ListRequest{Page: q.Page, PerPage: q.PerPage}
	if req.PatientID, valid = optionalUUID(q.PatientID); !valid {
		return badRequest(c, "invalid patient_id")
	}
	if req.ProfessionalID, valid = optionalUUID(q.ProfessionalID); !valid {
		return badRequest(c, "invalid professional_id")
	}
	if req.From, valid = optionalDate(q.From); !valid {
		return badRequest(c, "from must be YYYY-MM-DD")
	}
	if req.To, valid = optionalDate(q.To); !valid {
		return badRequest(c, "to must be YYYY-MM-DD")
	}
	// status=scheduled,confirmed
	for _, s := range strings.Split(q.Status, ",") {
		if s = strings.TrimSpace(s); s != "" {
			req.Statuses = append(req.Statuses, repo.AppointmentStatus(s))
		}
	}

	appts, err := h.svc.List(c.Context(), actor, req)
	if err != nil {
		return fail(c, err)
	}

	out := make([]appointmentView, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentView(&appts[i]))
	}
	return ok(c, out)
}

// GET /appointments/:id
func (h *AppointmentHandler) Get(c fiber.Ctx) error {
	return h.byID(c, h.svc.Get)
}

// POST /appointments
func (h *AppointmentHandler) Book(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		PatientID      string `json:"patient_id"`
		BlockID        string `json:"block_id"`
		ReasonForVisit string `json:"reason_for_visit"`
		Notes          string `json:"notes"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	blockID, err := uuid.Parse(body.BlockID)
	if err != nil {
		return badRequest(c, "block_id is required")
	}
	patientID, valid := optionalUUID(body.PatientID)
	if !valid {
		return badRequest(c, "invalid patient_id")
	}

	appt, err := h.svc.Book(c.Context(), actor, appointment.BookRequest{
		PatientID:      patientID,
		BlockID:        blockID,
		ReasonForVisit: body.ReasonForVisit,
		Notes:          body.Notes,
	})
	if err != nil {
		return fail(c, err)
	}

	return created(c, toAppointmentView(appt))
}

// PATCH /appointments/:id/cancel
func (h *AppointmentHandler) Cancel(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		ReasonID string `json:"reason_id"`
		Note     string `json:"note"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	reasonID, valid := optionalUUID(body.ReasonID)
	if !valid {
		return badRequest(c, "invalid reason_id")
	}

	req := appointment.CancelRequest{Note: body.Note}
	if reasonID != nil {
		req.ReasonID = *reasonID
	}

	appt, err := h.svc.Cancel(c.Context(), actor, id, req)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, toAppointmentView(appt))
}

// PATCH /appointments/:id/reschedule
func (h *AppointmentHandler) Reschedule(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	var body struct {
		NewBlockID string `json:"new_block_id"`
		ReasonID   string `json:"reason_id"`
		Note       string `json:"note"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	newBlockID, err := uuid.Parse(body.NewBlockID)
	if err != nil {
		return badRequest(c, "new_block_id is required")
	}
	reasonID, valid := optionalUUID(body.ReasonID)
	if !valid {
		return badRequest(c, "invalid reason_id")
	}

	appt, err := h.svc.Reprogram(c.Context(), actor, id, appointment.RescheduleRequest{
		NewBlockID: newBlockID,
		ReasonID:   reasonID,
		Note:       body.Note,
	})
	if err != nil {
		return fail(c, err)
	}

	return ok(c, toAppointmentView(appt))
}

// PATCH /appointments/:id/confirm
func (h *AppointmentHandler) Confirm(c fiber.Ctx) error {
	return h.byID(c, h.svc.Confirm)
}

// PATCH /appointments/:id/start
func (h *AppointmentHandler) Start(c fiber.Ctx) error {
	return h.byID(c, h.svc.Start)
}

// PATCH /appointments/:id/attend
func (h *AppointmentHandler) Attend(c fiber.Ctx) error {
	return h.byID(c, h.svc.MarkAttended)
}

// PATCH /appointments/:id/no-show
func (h *AppointmentHandler) NoShow(c fiber.Ctx) error {
	return h.byID(c, h.svc.MarkNoShow)
}

type appointmentOp func(ctx context.Context, actor authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error)

func (h *AppointmentHandler) byID(c fiber.Ctx, op appointmentOp) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid appointment id")
	}

	appt, err := op(c.Context(), actor, id)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, toAppointmentView(appt))
}

// GET /cancellation-reasons
func (h *AppointmentHandler) ListReasons(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}

	reasons, err := h.svc.ListReasons(c.Context(), actor)
	if err != nil {
		return fail(c, err)
	}

	out := make([]reasonView, 0, len(reasons))
	for _, r := range reasons {
		out = append(out, reasonView{ID: r.ID, Description: r.Description, StaffOnly: r.StaffOnly})
	}
	return ok(c, out)
}
