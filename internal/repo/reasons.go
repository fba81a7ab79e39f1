package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var reasonColumns = []string{"id", "description", "active", "staff_only"}

func scanReason(rows *entsql.Rows) (CancellationReason, error) {
	var r CancellationReason
	err := rows.Scan(&r.ID, &r.Description, &r.Active, &r.StaffOnly)
	return r, err
}

func (c *Client) GetCancellationReason(ctx context.Context, id uuid.UUID) (CancellationReason, error) {
	b := builder()
	q, args := b.Select(reasonColumns...).
		From(b.Table(tableReasons)).
		Where(entsql.EQ("id", id)).
		Query()

	var (
		out   CancellationReason
		found bool
	)
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		r, err := scanReason(rows)
		out, found = r, true
		return err
	})
	if err != nil {
		return CancellationReason{}, fmt.Errorf("get cancellation reason: %w", err)
	}
	if !found {
		return CancellationReason{}, ErrNotFound
	}
	return out, nil
}

// ListCancellationReasons returns active reasons ordered by description.
func (c *Client) ListCancellationReasons(ctx context.Context, includeStaffOnly bool) ([]CancellationReason, error) {
	b := builder()
	preds := []*entsql.Predicate{entsql.EQ("active", true)}
	if !includeStaffOnly {
		preds = append(preds, entsql.EQ("staff_only", false))
	}
	q, args := b.Select(reasonColumns...).
		From(b.Table(tableReasons)).
		Where(entsql.And(preds...)).
		OrderBy("description").
		Query()

	var out []CancellationReason
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		r, err := scanReason(rows)
		out = append(out, r)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list cancellation reasons: %w", err)
	}
	return out, nil
}

func (c *Client) CreateCancellationReason(ctx context.Context, r *CancellationReason) error {
	if r.ID == uuid.Nil {
		r.ID = NewID()
	}
	q, args := builder().Insert(tableReasons).
		Columns(reasonColumns...).
		Values(r.ID, r.Description, r.Active, r.StaffOnly).
		Query()
	if _, err := c.exec(ctx, q, args); err != nil {
		return fmt.Errorf("create cancellation reason: %w", err)
	}
	return nil
}
