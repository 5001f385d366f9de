package postgres

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/xenking/optic-storefront/internal/domain/appointment"
)

const (
	appointmentColumns = `id, session_id, name, phone, email, kind, preferred_date, preferred_slot,
		notes, admin_notes, status, created_at`

	insertAppointmentSQL = `INSERT INTO appointments (` + appointmentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	getAppointmentSQL = `SELECT ` + appointmentColumns + ` FROM appointments WHERE id = $1`

	listAppointmentsBySessionSQL = `SELECT ` + appointmentColumns + `
		FROM appointments WHERE session_id = $1 ORDER BY preferred_date, created_at`

	appointmentFilterSQL = ` WHERE ($1 = '' OR status = $1) AND ($2::date IS NULL OR preferred_date = $2::date)`

	listAppointmentsSQL = `SELECT ` + appointmentColumns + ` FROM appointments` + appointmentFilterSQL + `
		ORDER BY preferred_date, created_at LIMIT $3 OFFSET $4`

	countAppointmentsSQL = `SELECT count(*) FROM appointments` + appointmentFilterSQL

	updateAppointmentSQL = `UPDATE appointments SET status = $2, admin_notes = COALESCE($3, admin_notes)
		WHERE id = $1 RETURNING ` + appointmentColumns

	countAppointmentsOnDateSQL = `SELECT count(*) FROM appointments WHERE preferred_date = $1::date`
)

var _ appointment.Repository = (*AppointmentRepository)(nil)

// AppointmentRepository implements appointment.Repository backed by PostgreSQL.
type AppointmentRepository struct {
	pool *pgxpool.Pool
}

// NewAppointmentRepository returns an AppointmentRepository that uses the given pool.
func NewAppointmentRepository(pool *pgxpool.Pool) *AppointmentRepository {
	return &AppointmentRepository{pool: pool}
}

// Create persists a new appointment.
func (r *AppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	_, err := r.pool.Exec(ctx, insertAppointmentSQL,
		a.ID, a.SessionID, a.Name, a.Phone, a.Email, string(a.Kind), a.PreferredDate, a.PreferredSlot,
		a.Notes, a.AdminNotes, string(a.Status), a.CreatedAt,
	)
	if err != nil {
		return errors.Wrapf(err, "create appointment %q", a.ID)
	}
	return nil
}

// GetByID returns a single appointment.
func (r *AppointmentRepository) GetByID(ctx context.Context, id string) (*appointment.Appointment, error) {
	return r.one(ctx, getAppointmentSQL, id)
}

// ListBySession returns the appointments of a session by preferred date.
func (r *AppointmentRepository) ListBySession(ctx context.Context, sessionID string) ([]appointment.Appointment, error) {
	rows, err := r.pool.Query(ctx, listAppointmentsBySessionSQL, sessionID)
	if err != nil {
		return nil, errors.Wrap(err, "list appointments by session")
	}
	list, err := pgx.CollectRows(rows, scanAppointment)
	if err != nil {
		return nil, errors.Wrap(err, "scan appointments")
	}
	return list, nil
}

// List returns a page of appointments matching f and the total number of matches.
func (r *AppointmentRepository) List(ctx context.Context, f appointment.ListFilter) ([]appointment.Appointment, int, error) {
	var date *time.Time
	if !f.Date.IsZero() {
		date = &f.Date
	}

	var total int
	if err := r.pool.QueryRow(ctx, countAppointmentsSQL, string(f.Status), date).Scan(&total); err != nil {
		return nil, 0, errors.Wrap(err, "count appointments")
	}

	rows, err := r.pool.Query(ctx, listAppointmentsSQL, string(f.Status), date, f.PerPage, (f.Page-1)*f.PerPage)
	if err != nil {
		return nil, 0, errors.Wrap(err, "list appointments")
	}
	list, err := pgx.CollectRows(rows, scanAppointment)
	if err != nil {
		return nil, 0, errors.Wrap(err, "scan appointments")
	}
	return list, total, nil
}

// Update sets the status and, when adminNotes is not nil, the staff notes.
func (r *AppointmentRepository) Update(ctx context.Context, id string, status appointment.Status, adminNotes *string) (*appointment.Appointment, error) {
	return r.one(ctx, updateAppointmentSQL, id, string(status), adminNotes)
}

// CountOnDate counts appointments preferring day.
func (r *AppointmentRepository) CountOnDate(ctx context.Context, day time.Time) (int, error) {
	var n int
	if err := r.pool.QueryRow(ctx, countAppointmentsOnDateSQL, day).Scan(&n); err != nil {
		return 0, errors.Wrap(err, "count appointments on date")
	}
	return n, nil
}

func (r *AppointmentRepository) one(ctx context.Context, sql string, args ...any) (*appointment.Appointment, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, errors.Wrapf(err, "query appointment %q", args[0])
	}
	a, err := pgx.CollectExactlyOneRow(rows, scanAppointment)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, appointment.ErrNotFound
		}
		return nil, errors.Wrapf(err, "query appointment %q", args[0])
	}
	return &a, nil
}

func scanAppointment(row pgx.CollectableRow) (appointment.Appointment, error) {
	var (
		a            appointment.Appointment
		kind, status string
	)
	err := row.Scan(
		&a.ID, &a.SessionID, &a.Name, &a.Phone, &a.Email, &kind, &a.PreferredDate, &a.PreferredSlot,
		&a.Notes, &a.AdminNotes, &status, &a.CreatedAt,
	)
	a.Kind = appointment.Kind(kind)
	a.Status = appointment.Status(status)
	return a, err
}
