package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var appointmentColumns = []string{
	"id", "patient_id", "block_id", "requested_at", "status", "reason_for_visit", "notes",
	"cancellation_reason_id", "cancelled_at", "cancelled_by", "created_at", "updated_at",
}

func (c *Client) CreateAppointment(ctx context.Context, a *Appointment) error {
	if a.ID == uuid.Nil {
		a.ID = NewID()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	if a.RequestedAt.IsZero() {
		a.RequestedAt = a.CreatedAt
	}
	a.UpdatedAt = a.CreatedAt
	q, args := builder().Insert(tableAppointments).
		Columns(appointmentColumns...).
		Values(a.ID, a.PatientID, a.BlockID, a.RequestedAt, string(a.Status), a.ReasonForVisit, a.Notes,
			nullUUID(a.CancellationReasonID), nullTime(a.CancelledAt), nullUUID(a.CancelledBy),
			a.CreatedAt, a.UpdatedAt).
		Query()
	if _, err := c.exec(ctx, q, args); err != nil {
		return fmt.Errorf("create appointment: %w", err)
	}
	return nil
}

// UpdateAppointment writes the mutable lifecycle fields of a.
func (c *Client) UpdateAppointment(ctx context.Context, a *Appointment) error {
	q, args := builder().Update(tableAppointments).
		Set("status", string(a.Status)).
		Set("notes", a.Notes).
		Set("cancellation_reason_id", nullUUID(a.CancellationReasonID)).
		Set("cancelled_at", nullTime(a.CancelledAt)).
		Set("cancelled_by", nullUUID(a.CancelledBy)).
		Set("updated_at", a.UpdatedAt).
		Where(entsql.EQ("id", a.ID)).
		Query()
	if err := c.execOne(ctx, q, args); err != nil {
		return fmt.Errorf("update appointment: %w", err)
	}
	return nil
}

// detailTables aliases the tables joined by appointment detail queries.
type detailTables struct {
	b  *entsql.DialectBuilder
	ap *entsql.SelectTable
	bl *entsql.SelectTable
	sc *entsql.SelectTable
	pr *entsql.SelectTable
	pa *entsql.SelectTable
	cr *entsql.SelectTable
}

func newDetailTables() detailTables {
	b := builder()
	return detailTables{
		b:  b,
		ap: b.Table(tableAppointments),
		bl: b.Table(tableBlocks),
		sc: b.Table(tableSchedules),
		pr: b.Table(tableProfessionals),
		pa: b.Table(tablePatients),
		cr: b.Table(tableReasons),
	}
}

func (t detailTables) selectDetail() *entsql.Selector {
	cols := make([]string, 0, len(appointmentColumns)+12)
	for _, col := range appointmentColumns {
		cols = append(cols, t.ap.C(col))
	}
	cols = append(cols,
		t.bl.C("start_at"), t.bl.C("end_at"), t.sc.C("id"), t.sc.C("date"),
		t.pr.C("id"), t.pr.C("full_name"), t.pr.C("specialty"),
		t.pa.C("full_name"), t.pa.C("national_id"), t.pa.C("email"), t.pa.C("phone"),
		t.cr.C("description"),
	)
	return t.b.Select(cols...).
		From(t.ap).
		Join(t.bl).On(t.ap.C("block_id"), t.bl.C("id")).
		Join(t.sc).On(t.bl.C("schedule_id"), t.sc.C("id")).
		Join(t.pr).On(t.sc.C("professional_id"), t.pr.C("id")).
		Join(t.pa).On(t.ap.C("patient_id"), t.pa.C("id")).
		LeftJoin(t.cr).On(t.ap.C("cancellation_reason_id"), t.cr.C("id"))
}

func scanDetail(rows *entsql.Rows) (AppointmentDetail, error) {
	var (
		d          AppointmentDetail
		status     string
		reasonID   uuid.NullUUID
		cancelAt   sql.NullTime
		cancelBy   uuid.NullUUID
		reasonDesc sql.NullString
	)
	err := rows.Scan(
		&d.ID, &d.PatientID, &d.BlockID, &d.RequestedAt, &status, &d.ReasonForVisit, &d.Notes,
		&reasonID, &cancelAt, &cancelBy, &d.CreatedAt, &d.UpdatedAt,
		&d.StartAt, &d.EndAt, &d.ScheduleID, &d.ScheduleDate,
		&d.ProfessionalID, &d.ProfessionalName, &d.Specialty,
		&d.PatientName, &d.PatientNationalID, &d.PatientEmail, &d.PatientPhone,
		&reasonDesc,
	)
	if err != nil {
		return d, err
	}
	d.Status = AppointmentStatus(status)
	d.CancellationReasonID = uuidPtr(reasonID)
	d.CancelledAt = timePtr(cancelAt)
	d.CancelledBy = uuidPtr(cancelBy)
	d.CancellationReason = reasonDesc.String
	d.ScheduleDate = CivilDate(d.ScheduleDate)
	return d, nil
}

func (c *Client) getDetail(ctx context.Context, id uuid.UUID, lock bool) (AppointmentDetail, error) {
	t := newDetailTables()
	sel := t.selectDetail().Where(entsql.EQ(t.ap.C("id"), id))
	if lock {
		sel.ForUpdate(entsql.WithLockTables(tableAppointments))
	}
	q, args := sel.Query()

	var (
		out   AppointmentDetail
		found bool
	)
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		d, err := scanDetail(rows)
		out, found = d, true
		return err
	})
	if err != nil {
		return AppointmentDetail{}, fmt.Errorf("get appointment: %w", err)
	}
	if !found {
		return AppointmentDetail{}, ErrNotFound
	}
	return out, nil
}

func (c *Client) GetAppointment(ctx context.Context, id uuid.UUID) (AppointmentDetail, error) {
	return c.getDetail(ctx, id, false)
}

func (c *Client) LockAppointment(ctx context.Context, id uuid.UUID) (AppointmentDetail, error) {
	return c.getDetail(ctx, id, true)
}

func (c *Client) HasActiveAppointment(ctx context.Context, blockID uuid.UUID) (bool, error) {
	b := builder()
	q, args := b.Select(entsql.Count("*")).
		From(b.Table(tableAppointments)).
		Where(entsql.And(
			entsql.EQ("block_id", blockID),
			entsql.In("status", activeStatusArgs()...),
		)).
		Query()
	n, err := c.count(ctx, q, args)
	if err != nil {
		return false, fmt.Errorf("check block occupancy: %w", err)
	}
	return n > 0, nil
}

func (c *Client) ScheduleAppointmentCounts(ctx context.Context, scheduleID uuid.UUID) (active, total int, err error) {
	b := builder()
	ap, bl := b.Table(tableAppointments), b.Table(tableBlocks)
	q, args := b.Select(ap.C("status"), entsql.Count("*")).
		From(ap).
		Join(bl).On(ap.C("block_id"), bl.C("id")).
		Where(entsql.EQ(bl.C("schedule_id"), scheduleID)).
		GroupBy(ap.C("status")).
		Query()
	err = c.query(ctx, q, args, func(rows *entsql.Rows) error {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		total += n
		if AppointmentStatus(status).IsActive() {
			active += n
		}
		return nil
	})
	if err != nil {
		return 0, 0, fmt.Errorf("count schedule appointments: %w", err)
	}
	return active, total, nil
}

func excludePred(col string, exclude *uuid.UUID) []*entsql.Predicate {
	if exclude == nil {
		return nil
	}
	return []*entsql.Predicate{entsql.NEQ(col, *exclude)}
}

func (c *Client) FindDuplicate(ctx context.Context, patientID, professionalID uuid.UUID, startAt time.Time, exclude *uuid.UUID) (bool, error) {
	b := builder()
	ap, bl, sc := b.Table(tableAppointments), b.Table(tableBlocks), b.Table(tableSchedules)
	preds := append([]*entsql.Predicate{
		entsql.EQ(ap.C("patient_id"), patientID),
		entsql.EQ(sc.C("professional_id"), professionalID),
		entsql.EQ(bl.C("start_at"), startAt),
		entsql.In(ap.C("status"), activeStatusArgs()...),
	}, excludePred(ap.C("id"), exclude)...)

	q, args := b.Select(entsql.Count("*")).
		From(ap).
		Join(bl).On(ap.C("block_id"), bl.C("id")).
		Join(sc).On(bl.C("schedule_id"), sc.C("id")).
		Where(entsql.And(preds...)).
		Query()
	n, err := c.count(ctx, q, args)
	if err != nil {
		return false, fmt.Errorf("find duplicate booking: %w", err)
	}
	return n > 0, nil
}

func (c *Client) CountActiveForPatientOn(ctx context.Context, patientID uuid.UUID, date time.Time, exclude *uuid.UUID) (int, error) {
	b := builder()
	ap, bl, sc := b.Table(tableAppointments), b.Table(tableBlocks), b.Table(tableSchedules)
	preds := append([]*entsql.Predicate{
		entsql.EQ(ap.C("patient_id"), patientID),
		entsql.EQ(sc.C("date"), dateArg(date)),
		entsql.In(ap.C("status"), activeStatusArgs()...),
	}, excludePred(ap.C("id"), exclude)...)

	q, args := b.Select(entsql.Count("*")).
		From(ap).
		Join(bl).On(ap.C("block_id"), bl.C("id")).
		Join(sc).On(bl.C("schedule_id"), sc.C("id")).
		Where(entsql.And(preds...)).
		Query()
	n, err := c.count(ctx, q, args)
	if err != nil {
		return 0, fmt.Errorf("count daily appointments: %w", err)
	}
	return n, nil
}

// appointmentPreds is the single translation of AppointmentFilter into SQL.
func (t detailTables) appointmentPreds(f AppointmentFilter) []*entsql.Predicate {
	var preds []*entsql.Predicate
	if f.PatientID != nil {
		preds = append(preds, entsql.EQ(t.ap.C("patient_id"), *f.PatientID))
	}
	if f.ProfessionalID != nil {
		preds = append(preds, entsql.EQ(t.sc.C("professional_id"), *f.ProfessionalID))
	}
	if len(f.Statuses) > 0 {
		vals := make([]any, len(f.Statuses))
		for i, s := range f.Statuses {
			vals[i] = string(s)
		}
		preds = append(preds, entsql.In(t.ap.C("status"), vals...))
	}
	if f.From != nil {
		preds = append(preds, entsql.GTE(t.sc.C("date"), dateArg(*f.From)))
	}
	if f.To != nil {
		preds = append(preds, entsql.LTE(t.sc.C("date"), dateArg(*f.To)))
	}
	if f.Specialty != "" {
		preds = append(preds, entsql.EqualFold(t.pr.C("specialty"), f.Specialty))
	}
	if f.PatientQuery != "" {
		preds = append(preds, entsql.Or(
			entsql.ContainsFold(t.pa.C("full_name"), f.PatientQuery),
			entsql.ContainsFold(t.pa.C("national_id"), f.PatientQuery),
			entsql.ContainsFold(t.pa.C("email"), f.PatientQuery),
		))
	}
	return preds
}

func (c *Client) ListAppointments(ctx context.Context, f AppointmentFilter) ([]AppointmentDetail, error) {
	t := newDetailTables()
	sel := t.selectDetail()
	if preds := t.appointmentPreds(f); len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy(t.bl.C("start_at"), t.ap.C("created_at"))
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}
	if f.Offset > 0 {
		sel.Offset(f.Offset)
	}

	q, args := sel.Query()
	var out []AppointmentDetail
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		d, err := scanDetail(rows)
		out = append(out, d)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return out, nil
}
