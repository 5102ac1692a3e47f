package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iliyamo/table-reservation/internal/model"
)

// pgUniqueViolation is the SQLSTATE for a unique constraint violation.
const pgUniqueViolation = "23505"

// PgReservationRepo stores reservations in Postgres.  Two partial unique
// indexes over active reservations enforce the per-guest meal slot rule.
type PgReservationRepo struct{ pool *pgxpool.Pool }

func NewPgReservationRepo(pool *pgxpool.Pool) *PgReservationRepo {
	return &PgReservationRepo{pool: pool}
}

func (r *PgReservationRepo) Create(ctx context.Context, res model.Reservation) (*model.Reservation, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO reservations
			(id, guest_name, guest_phone, guest_email, expected_arrival_time, meal_period, table_size, status)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		RETURNING `+reservationColumns,
		uuid.NewString(), res.GuestName, res.GuestPhone, res.GuestEmail,
		res.ExpectedArrivalTime, string(res.MealPeriod), res.TableSize, string(res.Status))
	out, err := scanPgReservation(row)
	if err != nil {
		return nil, mapPgReservationErr(err)
	}
	return &out, nil
}

func (r *PgReservationRepo) Update(ctx context.Context, id string, u model.ReservationUpdate) (*model.Reservation, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	args := []any{id, time.Now().UTC()}
	sets := []string{"updated_at = $2"}
	add := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}
	if u.GuestName != nil {
		add("guest_name", *u.GuestName)
	}
	if u.GuestPhone != nil {
		add("guest_phone", *u.GuestPhone)
	}
	if u.GuestEmail != nil {
		add("guest_email", *u.GuestEmail)
	}
	if u.ExpectedArrivalTime != nil {
		add("expected_arrival_time", *u.ExpectedArrivalTime)
	}
	if u.MealPeriod != nil {
		add("meal_period", string(*u.MealPeriod))
	}
	if u.TableSize != nil {
		add("table_size", *u.TableSize)
	}
	if u.Status != nil {
		add("status", string(*u.Status))
	}
	row := r.pool.QueryRow(ctx,
		"UPDATE reservations SET "+strings.Join(sets, ", ")+" WHERE id = $1 RETURNING "+reservationColumns,
		args...)
	out, err := scanPgReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, mapPgReservationErr(err)
	}
	return &out, nil
}

func (r *PgReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	out, err := scanPgReservation(r.pool.QueryRow(ctx,
		"SELECT "+reservationColumns+" FROM reservations WHERE id = $1", id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func (r *PgReservationRepo) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if f.Status != "" {
		where = append(where, "status = "+arg(string(f.Status)))
	}
	if f.MealPeriod != "" {
		where = append(where, "meal_period = "+arg(string(f.MealPeriod)))
	}
	if f.Date != "" {
		where = append(where, "starts_with(expected_arrival_time, "+arg(f.Date)+")")
	}
	switch {
	case f.GuestEmail != "" && f.GuestPhone != "":
		where = append(where, "(guest_email = "+arg(f.GuestEmail)+" OR guest_phone = "+arg(f.GuestPhone)+")")
	case f.GuestEmail != "":
		where = append(where, "guest_email = "+arg(f.GuestEmail))
	case f.GuestPhone != "":
		where = append(where, "guest_phone = "+arg(f.GuestPhone))
	}
	q := "SELECT " + reservationColumns + " FROM reservations"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY expected_arrival_time DESC, created_at DESC"

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanPgReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

func (r *PgReservationRepo) FindConflict(ctx context.Context, cq model.ConflictQuery) (*model.Reservation, error) {
	args := []any{cq.Date, string(cq.MealPeriod)}
	var who []string
	if cq.GuestEmail != "" {
		args = append(args, cq.GuestEmail)
		who = append(who, fmt.Sprintf("guest_email = $%d", len(args)))
	}
	if cq.GuestPhone != "" {
		args = append(args, cq.GuestPhone)
		who = append(who, fmt.Sprintf("guest_phone = $%d", len(args)))
	}
	if len(who) == 0 {
		return nil, nil
	}
	q := "SELECT " + reservationColumns + ` FROM reservations
		WHERE left(expected_arrival_time, 10) = $1 AND meal_period = $2
		AND status IN ('Requested', 'Approved') AND (` + strings.Join(who, " OR ") + ")"
	if cq.ExcludeID != "" {
		args = append(args, cq.ExcludeID)
		q += fmt.Sprintf(" AND id <> $%d", len(args))
	}
	q += " LIMIT 1"
	out, err := scanPgReservation(r.pool.QueryRow(ctx, q, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &out, nil
}

func scanPgReservation(row pgx.Row) (model.Reservation, error) {
	var (
		r            model.Reservation
		meal, status string
	)
	err := row.Scan(&r.ID, &r.GuestName, &r.GuestPhone, &r.GuestEmail, &r.ExpectedArrivalTime,
		&meal, &r.TableSize, &status, &r.CreatedAt, &r.UpdatedAt)
	r.MealPeriod = model.MealPeriod(meal)
	r.Status = model.ReservationStatus(status)
	return r, err
}

func pgUniqueConstraint(err error) (string, bool) {
	var pe *pgconn.PgError
	if errors.As(err, &pe) && pe.Code == pgUniqueViolation {
		return pe.ConstraintName, true
	}
	return "", false
}

func mapPgReservationErr(err error) error {
	if _, ok := pgUniqueConstraint(err); ok {
		return model.ErrSlotTaken
	}
	return err
}

// PgUserRepo stores users in Postgres.
type PgUserRepo struct{ pool *pgxpool.Pool }

func NewPgUserRepo(pool *pgxpool.Pool) *PgUserRepo { return &PgUserRepo{pool: pool} }

func (r *PgUserRepo) Create(ctx context.Context, u model.User) (*model.User, error) {
	u.ID = uuid.NewString()
	u.Email = normalizeEmail(u.Email)
	_, err := r.pool.Exec(ctx,
		`INSERT INTO users (id, name, email, phone, role, password_hash) VALUES ($1,$2,$3,$4,$5,$6)`,
		u.ID, u.Name, u.Email, u.Phone, string(u.Role), u.PasswordHash)
	if err != nil {
		if name, ok := pgUniqueConstraint(err); ok {
			if strings.Contains(name, "phone") {
				return nil, ErrPhoneExists
			}
			return nil, ErrEmailExists
		}
		return nil, err
	}
	return &u, nil
}

func (r *PgUserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = $1", normalizeEmail(email))
}

func (r *PgUserRepo) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.findOne(ctx, "phone = $1", strings.TrimSpace(phone))
}

func (r *PgUserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	if uuid.Validate(id) != nil {
		return nil, nil
	}
	return r.findOne(ctx, "id = $1", id)
}

func (r *PgUserRepo) findOne(ctx context.Context, cond string, arg any) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE "+cond, arg).
		Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &role, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}
