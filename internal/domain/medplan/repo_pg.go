package medplan

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/carehome/medplan/internal/platform/db"
	"github.com/carehome/medplan/internal/platform/planvalidation"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

type repoPG struct{ db queryable }

// NewRepoPG returns a Repository backed by q, normally a *pgxpool.Pool.
func NewRepoPG(q queryable) Repository {
	return &repoPG{db: q}
}

func (r *repoPG) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

const planCols = `id, resident_id, title, notes, appointments, score, level, status,
	created_by, created_at, updated_at`

func (r *repoPG) scanPlan(row pgx.Row) (*Plan, error) {
	var p Plan
	var appointments []byte
	err := row.Scan(&p.ID, &p.ResidentID, &p.Title, &p.Notes, &appointments,
		&p.Score, &p.Level, &p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(appointments) > 0 {
		if err := json.Unmarshal(appointments, &p.Appointments); err != nil {
			return nil, fmt.Errorf("decode appointments for plan %s: %w", p.ID, err)
		}
	}
	if p.Appointments == nil {
		p.Appointments = []planvalidation.AppointmentEntry{}
	}
	return &p, nil
}

func encodeAppointments(apts []planvalidation.AppointmentEntry) ([]byte, error) {
	if apts == nil {
		apts = []planvalidation.AppointmentEntry{}
	}
	b, err := json.Marshal(apts)
	if err != nil {
		return nil, fmt.Errorf("encode appointments: %w", err)
	}
	return b, nil
}

func (r *repoPG) Create(ctx context.Context, p *Plan) error {
	apts, err := encodeAppointments(p.Appointments)
	if err != nil {
		return err
	}
	p.ID = uuid.New()
	err = r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medical_plan (id, resident_id, title, notes, appointments, score, level, status, created_by)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING created_at, updated_at`,
		p.ID, p.ResidentID, p.Title, p.Notes, apts, p.Score, p.Level, p.Status, p.CreatedBy,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert medical plan: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Plan, error) {
	p, err := r.scanPlan(r.conn(ctx).QueryRow(ctx, `SELECT `+planCols+` FROM medical_plan WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrPlanNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get medical plan %s: %w", id, err)
	}
	return p, nil
}

func (r *repoPG) Update(ctx context.Context, p *Plan) error {
	apts, err := encodeAppointments(p.Appointments)
	if err != nil {
		return err
	}
	err = r.conn(ctx).QueryRow(ctx, `
		UPDATE medical_plan
		SET title=$2, notes=$3, appointments=$4, score=$5, level=$6, status=$7, updated_at=NOW()
		WHERE id = $1
		RETURNING updated_at`,
		p.ID, p.Title, p.Notes, apts, p.Score, p.Level, p.Status,
	).Scan(&p.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrPlanNotFound
	}
	if err != nil {
		return fmt.Errorf("update medical plan %s: %w", p.ID, err)
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.conn(ctx).Exec(ctx, `DELETE FROM medical_plan WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete medical plan %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPlanNotFound
	}
	return nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Plan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM medical_plan`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medical plans: %w", err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+planCols+` FROM medical_plan ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list medical plans: %w", err)
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *repoPG) ListByResident(ctx context.Context, residentID uuid.UUID, limit, offset int) ([]*Plan, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM medical_plan WHERE resident_id = $1`, residentID).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count medical plans for resident %s: %w", residentID, err)
	}
	rows, err := r.conn(ctx).Query(ctx,
		`SELECT `+planCols+` FROM medical_plan WHERE resident_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		residentID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list medical plans for resident %s: %w", residentID, err)
	}
	items, err := r.collect(rows)
	return items, total, err
}

func (r *repoPG) collect(rows pgx.Rows) ([]*Plan, error) {
	defer rows.Close()
	items := []*Plan{}
	for rows.Next() {
		p, err := r.scanPlan(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate medical plans: %w", err)
	}
	return items, nil
}
