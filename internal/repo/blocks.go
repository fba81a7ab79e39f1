package repo

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var blockColumns = []string{"id", "schedule_id", "start_at", "end_at", "available", "kind", "notes"}

func blockDest(b *Block, kind *string) []any {
	return []any{&b.ID, &b.ScheduleID, &b.StartAt, &b.EndAt, &b.Available, kind, &b.Notes}
}

func scanBlock(rows *entsql.Rows) (Block, error) {
	var (
		b    Block
		kind string
	)
	err := rows.Scan(blockDest(&b, &kind)...)
	b.Kind = BlockKind(kind)
	return b, err
}

// CreateBlocks inserts all blocks in a single statement.
func (c *Client) CreateBlocks(ctx context.Context, blocks []Block) error {
	if len(blocks) == 0 {
		return nil
	}
	ins := builder().Insert(tableBlocks).Columns(blockColumns...)
	for i := range blocks {
		bl := &blocks[i]
		if bl.ID == uuid.Nil {
			bl.ID = NewID()
		}
		if bl.Kind == "" {
			bl.Kind = BlockConsultation
		}
		ins.Values(bl.ID, bl.ScheduleID, bl.StartAt, bl.EndAt, bl.Available, string(bl.Kind), bl.Notes)
	}
	q, args := ins.Query()
	if _, err := c.exec(ctx, q, args); err != nil {
		return fmt.Errorf("create blocks: %w", err)
	}
	return nil
}

func (c *Client) ListBlocks(ctx context.Context, scheduleID uuid.UUID) ([]Block, error) {
	b := builder()
	q, args := b.Select(blockColumns...).
		From(b.Table(tableBlocks)).
		Where(entsql.EQ("schedule_id", scheduleID)).
		OrderBy("start_at").
		Query()

	var out []Block
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		bl, err := scanBlock(rows)
		out = append(out, bl)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return out, nil
}

func (c *Client) DeleteBlocks(ctx context.Context, scheduleID uuid.UUID) (int, error) {
	q, args := builder().Delete(tableBlocks).Where(entsql.EQ("schedule_id", scheduleID)).Query()
	n, err := c.exec(ctx, q, args)
	if err != nil {
		return 0, fmt.Errorf("delete blocks: %w", err)
	}
	return int(n), nil
}

// lockBlockQuery locks the block row only; the schedule is read alongside.
func lockBlockQuery(id uuid.UUID) (string, []any) {
	b := builder()
	bl := b.Table(tableBlocks)
	sc := b.Table(tableSchedules)
	return b.Select(
		bl.C("id"), bl.C("schedule_id"), bl.C("start_at"), bl.C("end_at"), bl.C("available"),
		bl.C("kind"), bl.C("notes"), sc.C("professional_id"), sc.C("active"), sc.C("date"),
	).
		From(bl).
		Join(sc).On(bl.C("schedule_id"), sc.C("id")).
		Where(entsql.EQ(bl.C("id"), id)).
		ForUpdate(entsql.WithLockTables(tableBlocks)).
		Query()
}

func (c *Client) LockBlock(ctx context.Context, id uuid.UUID) (BlockDetail, error) {
	q, args := lockBlockQuery(id)

	var (
		out   BlockDetail
		found bool
	)
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		var kind string
		dest := append(blockDest(&out.Block, &kind), &out.ProfessionalID, &out.ScheduleActive, &out.ScheduleDate)
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		out.Kind = BlockKind(kind)
		out.ScheduleDate = CivilDate(out.ScheduleDate)
		found = true
		return nil
	})
	if err != nil {
		return BlockDetail{}, fmt.Errorf("lock block: %w", err)
	}
	if !found {
		return BlockDetail{}, ErrNotFound
	}
	return out, nil
}

func (c *Client) SetBlockAvailable(ctx context.Context, id uuid.UUID, available bool) error {
	q, args := builder().Update(tableBlocks).
		Set("available", available).
		Where(entsql.EQ("id", id)).
		Query()
	if err := c.execOne(ctx, q, args); err != nil {
		return fmt.Errorf("set block availability: %w", err)
	}
	return nil
}

func openBlocksQuery(f OpenBlockFilter) (string, []any) {
	b := builder()
	bl := b.Table(tableBlocks)
	sc := b.Table(tableSchedules)
	pr := b.Table(tableProfessionals)
	ap := b.Table(tableAppointments)

	active := b.Select(ap.C("id")).
		From(ap).
		Where(entsql.And(
			entsql.ColumnsEQ(ap.C("block_id"), bl.C("id")),
			entsql.In(ap.C("status"), activeStatusArgs()...),
		))

	preds := []*entsql.Predicate{
		entsql.EQ(bl.C("available"), true),
		entsql.EQ(bl.C("kind"), string(BlockConsultation)),
		entsql.EQ(sc.C("active"), true),
		entsql.GTE(sc.C("date"), dateArg(f.FromDate)),
		entsql.GT(bl.C("start_at"), f.After),
		entsql.Not(entsql.Exists(active)),
	}
	if f.Before != nil {
		preds = append(preds, entsql.LT(bl.C("start_at"), *f.Before))
	}
	if f.ProfessionalID != nil {
		preds = append(preds, entsql.EQ(sc.C("professional_id"), *f.ProfessionalID))
	}
	if f.Specialty != "" {
		preds = append(preds, entsql.EqualFold(pr.C("specialty"), f.Specialty))
	}

	return b.Select(
		bl.C("id"), bl.C("schedule_id"), bl.C("start_at"), bl.C("end_at"), bl.C("available"),
		bl.C("kind"), bl.C("notes"), pr.C("id"), pr.C("full_name"), pr.C("specialty"),
	).
		From(bl).
		Join(sc).On(bl.C("schedule_id"), sc.C("id")).
		Join(pr).On(sc.C("professional_id"), pr.C("id")).
		Where(entsql.And(preds...)).
		OrderBy(bl.C("start_at")).
		Limit(f.Limit).
		Query()
}

func (c *Client) ListOpenBlocks(ctx context.Context, f OpenBlockFilter) ([]OpenBlock, error) {
	q, args := openBlocksQuery(f)

	var out []OpenBlock
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		var (
			ob   OpenBlock
			kind string
		)
		dest := append(blockDest(&ob.Block, &kind), &ob.ProfessionalID, &ob.ProfessionalName, &ob.Specialty)
		if err := rows.Scan(dest...); err != nil {
			return err
		}
		ob.Kind = BlockKind(kind)
		out = append(out, ob)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list open blocks: %w", err)
	}
	return out, nil
}
