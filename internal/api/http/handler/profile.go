package handler

import (
	"github.com/gofiber/fiber/v3"

	"github.com/mediconnect/mediconnect_backend/internal/service/directory"
)

type ProfileHandler struct {
	svc directory.Service
}

func NewProfileHandler(svc directory.Service) *ProfileHandler {
	return &ProfileHandler{svc: svc}
}

// GET /me/patient
func (h *ProfileHandler) GetPatient(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}

	p, err := h.svc.MyPatient(c.Context(), actor)
	if err != nil {
		return fail(c, err)
	}

	return ok(c, toPatientView(p))
}

// PATCH /me/patient
func (h *ProfileHandler) UpdatePatient(c fiber.Ctx) error {
	actor, valid := actorFrom(c)
	if !valid {
		return unauthorized(c)
	}

	var body struct {
		FullName *string `json:"full_name"`
		Email    *string `json:"email"`
		Phone    *string `json:"phone"`
		Address  *string `json:"address"`
	}
	if err := c.Bind().JSON(&body); err != nil {
		return badRequest(c, "invalid request body")
	}

	p, err := h.svc.UpdatePatientProfile(c.Context(), actor, directory.PatientUpdate{
		FullName: body.FullName,
		Email:    body.Email,
		Phone:    body.Phone,
		Address:  body.Address,
	})
	if err != nil {
		return fail(c, err)
	}

	return ok(c, toPatientView(p))
}
