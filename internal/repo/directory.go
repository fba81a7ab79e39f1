package repo

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
)

var professionalColumns = []string{"id", "user_id", "full_name", "specialty", "email", "active"}

func scanProfessional(rows *entsql.Rows) (Professional, error) {
	var p Professional
	err := rows.Scan(&p.ID, &p.UserID, &p.FullName, &p.Specialty, &p.Email, &p.Active)
	return p, err
}

func (c *Client) getProfessional(ctx context.Context, col string, v uuid.UUID) (Professional, error) {
	b := builder()
	q, args := b.Select(professionalColumns...).
		From(b.Table(tableProfessionals)).
		Where(entsql.EQ(col, v)).
		Query()

	var (
		out   Professional
		found bool
	)
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		p, err := scanProfessional(rows)
		out, found = p, true
		return err
	})
	if err != nil {
		return Professional{}, fmt.Errorf("get professional: %w", err)
	}
	if !found {
		return Professional{}, ErrNotFound
	}
	return out, nil
}

func (c *Client) GetProfessional(ctx context.Context, id uuid.UUID) (Professional, error) {
	return c.getProfessional(ctx, "id", id)
}

func (c *Client) GetProfessionalByUser(ctx context.Context, userID uuid.UUID) (Professional, error) {
	return c.getProfessional(ctx, "user_id", userID)
}

func (c *Client) CreateProfessional(ctx context.Context, p *Professional) error {
	if p.ID == uuid.Nil {
		p.ID = NewID()
	}
	q, args := builder().Insert(tableProfessionals).
		Columns(professionalColumns...).
		Values(p.ID, p.UserID, p.FullName, p.Specialty, p.Email, p.Active).
		Query()
	if _, err := c.exec(ctx, q, args); err != nil {
		return fmt.Errorf("create professional: %w", err)
	}
	return nil
}

var patientColumns = []string{
	"id", "user_id", "full_name", "national_id", "email", "phone", "address", "created_at", "updated_at",
}

func scanPatient(rows *entsql.Rows) (Patient, error) {
	var p Patient
	err := rows.Scan(&p.ID, &p.UserID, &p.FullName, &p.NationalID, &p.Email, &p.Phone, &p.Address,
		&p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (c *Client) getPatient(ctx context.Context, col string, v uuid.UUID) (Patient, error) {
	b := builder()
	q, args := b.Select(patientColumns...).
		From(b.Table(tablePatients)).
		Where(entsql.EQ(col, v)).
		Query()

	var (
		out   Patient
		found bool
	)
	err := c.query(ctx, q, args, func(rows *entsql.Rows) error {
		p, err := scanPatient(rows)
		out, found = p, true
		return err
	})
	if err != nil {
		return Patient{}, fmt.Errorf("get patient: %w", err)
	}
	if !found {
		return Patient{}, ErrNotFound
	}
	return out, nil
}

func (c *Client) GetPatient(ctx context.Context, id uuid.UUID) (Patient, error) {
	return c.getPatient(ctx, "id", id)
}

func (c *Client) GetPatientByUser(ctx context.Context, userID uuid.UUID) (Patient, error) {
	return c.getPatient(ctx, "user_id", userID)
}

func (c *Client) CreatePatient(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = NewID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	p.UpdatedAt = p.CreatedAt
	q, args := builder().Insert(tablePatients).
		Columns(patientColumns...).
		Values(p.ID, p.UserID, p.FullName, p.NationalID, p.Email, p.Phone, p.Address, p.CreatedAt, p.UpdatedAt).
		Query()
	if _, err := c.exec(ctx, q, args); err != nil {
		return fmt.Errorf("create patient: %w", err)
	}
	return nil
}

func (c *Client) UpdatePatient(ctx context.Context, id uuid.UUID, ch PatientChanges, at time.Time) (Patient, error) {
	u := builder().Update(tablePatients).Set("updated_at", at)
	if ch.FullName != nil {
		u.Set("full_name", *ch.FullName)
	}
	if ch.Email != nil {
		u.Set("email", *ch.Email)
	}
	if ch.Phone != nil {
		u.Set("phone", *ch.Phone)
	}
	if ch.Address != nil {
		u.Set("address", *ch.Address)
	}
	q, args := u.Where(entsql.EQ("id", id)).Query()
	if err := c.execOne(ctx, q, args); err != nil {
		return Patient{}, fmt.Errorf("update patient: %w", err)
	}
	return c.GetPatient(ctx, id)
}
