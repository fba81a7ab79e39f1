package handler

import (
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/service/scheduling"
)

type ScheduleHandler struct {
	svc scheduling.Service
}

func NewScheduleHandler(svc scheduling.Service) *ScheduleHandler {
	return &ScheduleHandler{svc: svc}
}

// ---------------------------------------------------------------------------
// Schedules
// ---------------------------------------------------------------------------

// POST /schedules
func (h *ScheduleHandler) Create(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		ProfessionalID string `json:"professional_id"`
		Date           string `json:"date"`
		StartTime      string `json:"start_time"`
		EndTime        string `json:"end_time"`
		SlotMinutes    int    `json:"slot_minutes"`
		Notes          string `json:"notes"`
		Blocks         []struct {
			Start string `json:"start"`
			End   string `json:"end"`
			Kind  string `json:"kind"`
			Notes string `json:"notes"`
		} `json:"blocks"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	date, err := time.Parse(dateLayout, body.Date)
	if err != nil {
		return badRequest(c, "date must be YYYY-MM-DD")
	}
	profID, valid := optionalUUID(body.ProfessionalID)
	if !valid {
		return badRequest(c, "invalid professional_id")
	}

	req := scheduling.CreateScheduleRequest{
		ProfessionalID: profID,
		Date:           date,
		StartTime:      body.StartTime,
		EndTime:        body.EndTime,
		SlotMinutes:    body.SlotMinutes,
		Notes:          body.Notes,
	}
	for _, b := range body.Blocks {
		req.Blocks = append(req.Blocks, scheduling.BlockSpec{
			Start: b.Start,
			End:   b.End,
			Kind:  repo.BlockKind(b.Kind),
			Notes: b.Notes,
		})
	}

	s, err := h.svc.CreateSchedule(c.Context(), actor, req)
	if err != nil {
		return fail(c, err)
	}

	return created(c, toScheduleWithBlocks(s))
}

// GET /schedules
func (h *ScheduleHandler) List(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}

	var q struct {
		ProfessionalID string `query:"professional_id"`
		From           string `query:"from"`
		To             string `query:"to"`
		Active         string `query:"active"`
		Page           int    `query:"page"`
		PerPage        int    `query:"per_page"`
	}
	_ = c.Bind().Query(&q)

	req := scheduling.ListRequest{Page: q.Page, PerPage: q.PerPage}
	if req.ProfessionalID, valid = optionalUUID(q.ProfessionalID); !valid {
		return badRequest(c, "invalid professional_id")
	}
	if req.From, valid = optionalDate(q.From); !valid {
		return badRequest(c, "from must be YYYY-MM-DD")
	}
	if req.To, valid = optionalDate(q.To); !valid {
		return badRequest(c, "to must be YYYY-MM-DD")
	}
	switch q.Active {
	case "":
	case "true", "false":
		active := q.Active == "true"
		req.Active = &active
	default:
		return badRequest(c, "active must be true or false")
	}

	schedules, err := h.svc.ListSchedules(c.Context(), actor, req)
	if err != nil {
		return fail(c, err)
	}

	out := make([]scheduleView, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, toScheduleView(s, nil))
	}
	return ok(c, out)
}

// GET /schedules/:id
func (h *ScheduleHandler) Get(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid schedule id")
	}

	s, err := h.svc.GetSchedule(c.Context(), actor, id)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, toScheduleWithBlocks(s))
}

// PATCH /schedules/:id/active
func (h *ScheduleHandler) SetActive(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid schedule id")
	}

	var body struct {
		Active *bool `json:"active"`
	}
	if err := c.Bind().JSON(&body); err != nil || body.Active == nil {
		return badRequest(c, "active is required")
	}

	s, err := h.svc.SetScheduleActive(c.Context(), actor, id, *body.Active)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, toScheduleView(*s, nil))
}

// DELETE /schedules/:id
func (h *ScheduleHandler) Delete(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}
	id, valid := idParam(c)
	if !valid {
		return badRequest(c, "invalid schedule id")
	}

	if err := h.svc.DeleteSchedule(c.Context(), actor, id); err != nil {
		return fail(c, err)
	}

	return noContent(c)
}

// ---------------------------------------------------------------------------
// Blocks
// ---------------------------------------------------------------------------

// GET /blocks/open
func (h *ScheduleHandler) ListOpenBlocks(c fiber.Ctx) error {
	var q struct {
		ProfessionalID string `query:"professional_id"`
		Specialty      string `query:"specialty"`
		From           string `query:"from"`
		To             string `query:"to"`
		Limit          int    `query:"limit"`
	}
	_ = c.Bind().Query(&q)

	var valid bool
	req := scheduling.OpenBlocksRequest{Specialty: q.Specialty, Limit: q.Limit}
	if req.ProfessionalID, valid = optionalUUID(q.ProfessionalID); !valid {
		return badRequest(c, "invalid professional_id")
	}
	if req.From, valid = optionalDate(q.From); !valid {
		return badRequest(c, "from must be YYYY-MM-DD")
	}
	if req.To, valid = optionalDate(q.To); !valid {
		return badRequest(c, "to must be YYYY-MM-DD")
	}

	blocks, err := h.svc.ListOpenBlocks(c.Context(), req)
	if err != nil {
		return fail(c, err)
	}

	out := make([]openBlockView, 0, len(blocks))
	for _, b := range blocks {
		out = append(out, openBlockView{
			blockView:        toBlockView(b.Block),
			ProfessionalID:   b.ProfessionalID,
			ProfessionalName: b.ProfessionalName,
			Specialty:        b.Specialty,
		})
	}
	return ok(c, out)
}
