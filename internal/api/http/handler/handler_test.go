package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediconnect/mediconnect_backend/internal/api/http/middleware"
	"github.com/mediconnect/mediconnect_backend/internal/repo"
	"github.com/mediconnect/mediconnect_backend/internal/service/appointment"
	"github.com/mediconnect/mediconnect_backend/internal/service/report"
	"github.com/mediconnect/mediconnect_backend/internal/service/scheduling"
	"github.com/mediconnect/mediconnect_backend/pkg/authorize"
)

var patientActor = authorize.Actor{UserID: uuid.New(), Roles: []authorize.Role{authorize.RolePatient}}

// newApp mounts routes behind a stub that plays the part of AuthRequired.
func newApp(actor *authorize.Actor, mount func(app *fiber.App)) *fiber.App {
	app := fiber.New()
	app.Use(func(c fiber.Ctx) error {
		if actor != nil {
			c.Locals(middleware.LocalsActor, *actor)
		}
		return c.Next()
	})
	mount(app)
	return app
}

func do(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, string) {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(raw)
}

// ---- fakes ----

type fakeAppointments struct {
	appointment.Service

	booked    appointment.BookRequest
	cancelled appointment.CancelRequest
	err       error
}

func (f *fakeAppointments) Book(_ context.Context, actor authorize.Actor, req appointment.BookRequest) (*repo.AppointmentDetail, error) {
	f.booked = req
	if f.err != nil {
		return nil, f.err
	}
	d := &repo.AppointmentDetail{StartAt: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)}
	d.ID = uuid.New()
	d.BlockID = req.BlockID
	d.Status = repo.StatusScheduled
	return d, nil
}

func (f *fakeAppointments) Cancel(_ context.Context, _ authorize.Actor, id uuid.UUID, req appointment.CancelRequest) (*repo.AppointmentDetail, error) {
	f.cancelled = req
	if f.err != nil {
		return nil, f.err
	}
	d := &repo.AppointmentDetail{}
	d.ID = id
	d.Status = repo.StatusCancelled
	return d, nil
}

func (f *fakeAppointments) Confirm(_ context.Context, _ authorize.Actor, id uuid.UUID) (*repo.AppointmentDetail, error) {
	if f.err != nil {
		return nil, f.err
	}
	d := &repo.AppointmentDetail{}
	d.ID = id
	d.Status = repo.StatusConfirmed
	return d, nil
}

type fakeSchedules struct {
	scheduling.Service

	created scheduling.CreateScheduleRequest
	open    scheduling.OpenBlocksRequest
}

func (f *fakeSchedules) CreateSchedule(_ context.Context, _ authorize.Actor, req scheduling.CreateScheduleRequest) (*scheduling.ScheduleWithBlocks, error) {
	f.created = req
	if req.SlotMinutes == 7 {
		return nil, scheduling.ErrSlotDurationOutOfRange
	}
	s := &scheduling.ScheduleWithBlocks{}
	s.ID = uuid.New()
	s.Date = req.Date
	s.StartTime, s.EndTime, s.SlotMinutes = req.StartTime, req.EndTime, req.SlotMinutes
	s.Blocks = []repo.Block{{ID: uuid.New(), Kind: repo.BlockConsultation, Available: true}}
	return s, nil
}

func (f *fakeSchedules) ListOpenBlocks(_ context.Context, req scheduling.OpenBlocksRequest) ([]repo.OpenBlock, error) {
	f.open = req
	return []repo.OpenBlock{{ProfessionalName: "Dr. Soto", Specialty: "Cardiología"}}, nil
}

type fakeReports struct {
	report.Service
	err error
}

func (f *fakeReports) AppointmentsCSV(_ context.Context, _ authorize.Actor, _ report.Filter, w io.Writer) error {
	if f.err != nil {
		return f.err
	}
	_, err := io.WriteString(w, "id,estado\n1,attended\n")
	return err
}

// ---- tests ----

func TestBook(t *testing.T) {
	blockID := uuid.New()

	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{"created", `{"block_id":"` + blockID.String() + `","reason_for_visit":"control"}`, nil, fiber.StatusCreated},
		{"missing block", `{}`, nil, fiber.StatusBadRequest},
		{"taken block", `{"block_id":"` + blockID.String() + `"}`, appointment.ErrBlockTaken, fiber.StatusConflict},
		{"lead time", `{"block_id":"` + blockID.String() + `"}`, appointment.ErrLeadTimeNotMet, fiber.StatusUnprocessableEntity},
		{"unknown block", `{"block_id":"` + blockID.String() + `"}`, appointment.ErrBlockNotFound, fiber.StatusNotFound},
		{"internal", `{"block_id":"` + blockID.String() + `"}`, assert.AnError, fiber.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &fakeAppointments{err: tt.err}
			h := NewAppointmentHandler(svc)
			app := newApp(&patientActor, func(app *fiber.App) { app.Post("/appointments", h.Book) })

			resp, body := do(t, app, fiber.MethodPost, "/appointments", tt.body)
			assert.Equal(t, tt.wantStatus, resp.StatusCode, body)
			if tt.wantStatus == fiber.StatusInternalServerError {
				assert.NotContains(t, body, assert.AnError.Error())
			}
			if tt.wantStatus == fiber.StatusCreated {
				assert.Equal(t, blockID, svc.booked.BlockID)
				assert.Equal(t, "control", svc.booked.ReasonForVisit)
				assert.Nil(t, svc.booked.PatientID)

				var out struct {
					Data appointmentView `json:"data"`
				}
				require.NoError(t, json.Unmarshal([]byte(body), &out))
				assert.Equal(t, repo.StatusScheduled, out.Data.Status)
			}
		})
	}
}

func TestBook_RequiresActor(t *testing.T) {
	h := NewAppointmentHandler(&fakeAppointments{})
	app := newApp(nil, func(app *fiber.App) { app.Post("/appointments", h.Book) })

	resp, _ := do(t, app, fiber.MethodPost, "/appointments", `{}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestCancel(t *testing.T) {
	reasonID := uuid.New()
	svc := &fakeAppointments{}
	h := NewAppointmentHandler(svc)
	app := newApp(&patientActor, func(app *fiber.App) { app.Patch("/appointments/:id/cancel", h.Cancel) })

	resp, body := do(t, app, fiber.MethodPatch, "/appointments/"+uuid.NewString()+"/cancel",
		`{"reason_id":"`+reasonID.String()+`","note":"viaje"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Equal(t, reasonID, svc.cancelled.ReasonID)
	assert.Equal(t, "viaje", svc.cancelled.Note)

	resp, _ = do(t, app, fiber.MethodPatch, "/appointments/not-a-uuid/cancel", `{}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestTransition_StateConflict(t *testing.T) {
	h := NewAppointmentHandler(&fakeAppointments{err: appointment.ErrInvalidTransition})
	app := newApp(&patientActor, func(app *fiber.App) { app.Patch("/appointments/:id/confirm", h.Confirm) })

	resp, body := do(t, app, fiber.MethodPatch, "/appointments/"+uuid.NewString()+"/confirm", "")
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode, body)
}

func TestCreateSchedule(t *testing.T) {
	svc := &fakeSchedules{}
	h := NewScheduleHandler(svc)
	app := newApp(&patientActor, func(app *fiber.App) { app.Post("/schedules", h.Create) })

	resp, body := do(t, app, fiber.MethodPost, "/schedules",
		`{"date":"2026-03-10","start_time":"09:00","end_time":"11:00","slot_minutes":30}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode, body)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC), svc.created.Date)
	assert.Contains(t, body, `"date":"2026-03-10"`)

	resp, _ = do(t, app, fiber.MethodPost, "/schedules", `{"date":"10/03/2026"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, _ = do(t, app, fiber.MethodPost, "/schedules",
		`{"date":"2026-03-10","start_time":"09:00","end_time":"11:00","slot_minutes":7}`)
	assert.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
}

func TestListOpenBlocks_Filters(t *testing.T) {
	svc := &fakeSchedules{}
	h := NewScheduleHandler(svc)
	app := newApp(&patientActor, func(app *fiber.App) { app.Get("/blocks/open", h.ListOpenBlocks) })

	resp, body := do(t, app, fiber.MethodGet, "/blocks/open?specialty=Cardiolog%C3%ADa&from=2026-03-03&limit=5", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode, body)
	assert.Equal(t, "Cardiología", svc.open.Specialty)
	assert.Equal(t, 5, svc.open.Limit)
	require.NotNil(t, svc.open.From)
	assert.Contains(t, body, `"professional_name":"Dr. Soto"`)

	resp, _ = do(t, app, fiber.MethodGet, "/blocks/open?professional_id=nope", "")
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestAppointmentsCSV(t *testing.T) {
	h := NewReportHandler(&fakeReports{})
	app := newApp(&patientActor, func(app *fiber.App) { app.Get("/reports/appointments.csv", h.AppointmentsCSV) })

	resp, body := do(t, app, fiber.MethodGet, "/reports/appointments.csv?from=2026-03-01", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/csv")
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "appointments.csv")
	assert.Equal(t, "id,estado\n1,attended\n", body)

	h = NewReportHandler(&fakeReports{err: report.ErrForbidden})
	app = newApp(&patientActor, func(app *fiber.App) { app.Get("/reports/appointments.csv", h.AppointmentsCSV) })
	resp, _ = do(t, app, fiber.MethodGet, "/reports/appointments.csv", "")
	assert.Equal(t, fiber.StatusForbidden, resp.StatusCode)
}
