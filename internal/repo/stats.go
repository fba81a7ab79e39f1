package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// StatusCounts groups the filtered appointments by status. Statuses in the
// filter are ignored so every status is counted.
func (c *Client) StatusCounts(ctx context.Context, f AppointmentFilter) (map[AppointmentStatus]int, error) {
	f.Statuses = nil
	t := newDetailTables()
	sel := t.b.Select(t.ap.C("status"), entsql.Count("*")).
		From(t.ap).
		Join(t.bl).On(t.ap.C("block_id"), t.bl.C("id")).
		Join(t.sc).On(t.bl.C("schedule_id"), t.sc.C("id")).
		Join(t.pr).On(t.sc.C("professional_id"), t.pr.C("id")).
		Join(t.pa).On(t.ap.C("patient_id"), t.pa.C("id"))
	if preds := t.appointmentPreds(f); len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	q, args := sel.GroupBy(t.ap.C("status")).Query()

	out := make(map[AppointmentStatus]int)
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		var (
			status string
			n      int
		)
		if err := rows.Scan(&status, &n); err != nil {
			return err
		}
		out[AppointmentStatus(status)] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("count appointments by status: %w", err)
	}
	return out, nil
}

// BlockUsage counts consultation blocks of schedules matching the filter's
// date range, professional and specialty.
func (c *Client) BlockUsage(ctx context.Context, f AppointmentFilter) (BlockUsage, error) {
	t := newDetailTables()
	preds := []*entsql.Predicate{entsql.EQ(t.bl.C("kind"), string(BlockConsultation))}
	if f.ProfessionalID != nil {
		preds = append(preds, entsql.EQ(t.sc.C("professional_id"), *f.ProfessionalID))
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

	q, args := t.b.Select(t.bl.C("available"), entsql.Count("*")).
		From(t.bl).
		Join(t.sc).On(t.bl.C("schedule_id"), t.sc.C("id")).
		Join(t.pr).On(t.sc.C("professional_id"), t.pr.C("id")).
		Where(entsql.And(preds...)).
		GroupBy(t.bl.C("available")).
		Query()

	var out BlockUsage
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		var (
			available bool
			n         int
		)
		if err := rows.Scan(&available, &n); err != nil {
			return err
		}
		out.Published += n
		if !available {
			out.Occupied += n
		}
		return nil
	})
	if err != nil {
		return BlockUsage{}, fmt.Errorf("count block usage: %w", err)
	}
	return out, nil
}
