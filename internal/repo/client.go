package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/sqlgraph"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

const (
	tableProfessionals = "professionals"
	tablePatients      = "patients"
	tableSchedules     = "schedules"
	tableBlocks        = "blocks"
	tableAppointments  = "appointments"
	tableReasons       = "cancellation_reasons"
)

// Client implements Store on an ent SQL driver.
type Client struct {
	drv  dialect.Driver
	conn dialect.ExecQuerier
}

var _ Store = (*Client)(nil)

func NewClient(drv dialect.Driver) *Client {
	return &Client{drv: drv, conn: drv}
}

func (c *Client) Driver() dialect.Driver { return c.drv }

func (c *Client) Close() error { return c.drv.Close() }

// Ping checks the connection with a trivial query.
func (c *Client) Ping(ctx context.Context) error {
	return c.query(ctx, "SELECT 1", nil, func(rows *entsql.Rows) error {
		var one int
		return rows.Scan(&one)
	})
}

func (c *Client) WithTx(ctx context.Context, fn func(q Queries) error) error {
	tx, err := c.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	txc := &Client{drv: c.drv, conn: tx}

	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()

	if err := fn(txc); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			return fmt.Errorf("%w: rolling back transaction: %v", err, rerr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", mapErr(err))
	}
	return nil
}

func builder() *entsql.DialectBuilder {
	return entsql.Dialect(dialect.Postgres)
}

func (c *Client) query(ctx context.Context, q string, args []any, scan func(*entsql.Rows) error) error {
	rows := &entsql.Rows{}
	if err := c.conn.Query(ctx, q, args, rows); err != nil {
		return mapErr(err)
	}
	defer rows.Close()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

func (c *Client) exec(ctx context.Context, q string, args []any) (int64, error) {
	var res sql.Result
	if err := c.conn.Exec(ctx, q, args, &res); err != nil {
		return 0, mapErr(err)
	}
	return res.RowsAffected()
}

// execOne runs a statement that must touch exactly one row.
func (c *Client) execOne(ctx context.Context, q string, args []any) error {
	n, err := c.exec(ctx, q, args)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (c *Client) count(ctx context.Context, q string, args []any) (int, error) {
	var n int
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		return rows.Scan(&n)
	})
	return n, err
}

// mapErr turns unique violations into ErrDuplicate.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if (errors.As(err, &pqErr) && pqErr.Code == "23505") || sqlgraph.IsUniqueConstraintError(err) {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

func nullUUID(id *uuid.UUID) uuid.NullUUID {
	if id == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: *id, Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func uuidPtr(n uuid.NullUUID) *uuid.UUID {
	if !n.Valid {
		return nil
	}
	id := n.UUID
	return &id
}

func timePtr(n sql.NullTime) *time.Time {
	if !n.Valid {
		return nil
	}
	t := n.Time
	return &t
}

func dateArg(t time.Time) string {
	return t.Format(time.DateOnly)
}
