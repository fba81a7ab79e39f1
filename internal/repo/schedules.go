package repo

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var scheduleColumns = []string{
	"id", "professional_id", "date", "start_time", "end_time", "slot_minutes", "active", "notes",
	"created_at", "updated_at",
}

func scanSchedule(rows *entsql.Rows) (Schedule, error) {
	var s Schedule
	err := rows.Scan(&s.ID, &s.ProfessionalID, &s.Date, &s.StartTime, &s.EndTime, &s.SlotMinutes,
		&s.Active, &s.Notes, &s.CreatedAt, &s.UpdatedAt)
	s.Date = CivilDate(s.Date)
	return s, err
}

func (c *Client) CreateSchedule(ctx context.Context, s *Schedule) error {
	if s.ID == uuid.Nil {
		s.ID = NewID()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.UpdatedAt = s.CreatedAt
	q, args := builder().Insert(tableSchedules).
		Columns(scheduleColumns...).
		Values(s.ID, s.ProfessionalID, dateArg(s.Date), s.StartTime, s.EndTime, s.SlotMinutes, s.Active,
			s.Notes, s.CreatedAt, s.UpdatedAt).
		Query()
	if _, err := c.exec(ctx, q, args); err != nil {
		return fmt.Errorf("create schedule: %w", err)
	}
	return nil
}

func (c *Client) GetSchedule(ctx context.Context, id uuid.UUID) (Schedule, error) {
	b := builder()
	q, args := b.Select(scheduleColumns...).
		From(b.Table(tableSchedules)).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		out   Schedule
		found bool
	)
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		s, err := scanSchedule(rows)
		out, found = s, true
		return err
	})
	if err != nil {
		return Schedule{}, fmt.Errorf("get schedule: %w", err)
	}
	if !found {
		return Schedule{}, ErrNotFound
	}
	return out, nil
}

func (c *Client) ScheduleExists(ctx context.Context, professionalID uuid.UUID, date time.Time) (bool, error) {
	b := builder()
	q, args := b.Select(entsql.Count("*")).
		From(b.Table(tableSchedules)).
		Where(entsql.And(
			entsql.EQ("professional_id", professionalID),
			entsql.EQ("date", dateArg(date)),
		)).
		Query()
	n, err := c.count(ctx, q, args)
	if err != nil {
		return false, fmt.Errorf("check schedule: %w", err)
	}
	return n > 0, nil
}

func (c *Client) ListSchedules(ctx context.Context, f ScheduleFilter) ([]Schedule, error) {
	b := builder()
	sel := b.Select(scheduleColumns...).From(b.Table(tableSchedules))

	var preds []*entsql.Predicate
	if f.ProfessionalID != nil {
		preds = append(preds, entsql.EQ("professional_id", *f.ProfessionalID))
	}
	if f.From != nil {
		preds = append(preds, entsql.GTE("date", dateArg(*f.From)))
	}
	if f.To != nil {
		preds = append(preds, entsql.LTE("date", dateArg(*f.To)))
	}
	if f.Active != nil {
		preds = append(preds, entsql.EQ("active", *f.Active))
	}
	if len(preds) > 0 {
		sel.Where(entsql.And(preds...))
	}
	sel.OrderBy("date", "start_time")
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}
	if f.Offset > 0 {
		sel.Offset(f.Offset)
	}

	q, args := sel.Query()
	var out []Schedule
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		s, err := scanSchedule(rows)
		out = append(out, s)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list schedules: %w", err)
	}
	return out, nil
}

func (c *Client) SetScheduleActive(ctx context.Context, id uuid.UUID, active bool, at time.Time) error {
	q, args := builder().Update(tableSchedules).
		Set("active", active).
		Set("updated_at", at).
		Where(entsql.EQ("id", id)).
		Query()
	if err := c.execOne(ctx, q, args); err != nil {
		return fmt.Errorf("set schedule active: %w", err)
	}
	return nil
}

func (c *Client) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	q, args := builder().Delete(tableSchedules).Where(entsql.EQ("id", id)).Query()
	if err := c.execOne(ctx, q, args); err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	return nil
}
