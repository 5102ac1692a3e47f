package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/iliyamo/table-reservation/internal/model"
)

// mysqlDuplicateEntry is the MySQL error number for a unique key violation.
const mysqlDuplicateEntry = 1062

// ReservationRepo stores reservations in the MySQL `reservations` table.
// The table carries generated arrival_date and active_slot columns and two
// unique keys over them, so an active reservation for the same guest, date
// and meal period cannot be written twice even by concurrent requests.
type ReservationRepo struct {
	db *sql.DB
}

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

const reservationColumns = `id, guest_name, guest_phone, guest_email, expected_arrival_time,
	meal_period, table_size, status, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReservation(s rowScanner) (model.Reservation, error) {
	var (
		r  model.Reservation
		id uint64
	)
	err := s.Scan(&id, &r.GuestName, &r.GuestPhone, &r.GuestEmail, &r.ExpectedArrivalTime,
		&r.MealPeriod, &r.TableSize, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return model.Reservation{}, err
	}
	r.ID = strconv.FormatUint(id, 10)
	return r, nil
}

// Create inserts r and reads the row back to pick up the id and timestamps.
func (r *ReservationRepo) Create(ctx context.Context, res model.Reservation) (*model.Reservation, error) {
	const q = `INSERT INTO reservations
		(guest_name, guest_phone, guest_email, expected_arrival_time, meal_period, table_size, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	result, err := r.db.ExecContext(ctx, q, res.GuestName, res.GuestPhone, res.GuestEmail,
		res.ExpectedArrivalTime, res.MealPeriod, res.TableSize, res.Status)
	if err != nil {
		return nil, mapMySQLReservationErr(err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	created, err := r.FindByID(ctx, strconv.FormatInt(id, 10))
	if err != nil {
		return nil, err
	}
	if created == nil {
		return nil, fmt.Errorf("reservation %d vanished after insert", id)
	}
	return created, nil
}

// Update writes the non-nil fields of u and always refreshes updated_at.
// It returns (nil, nil) when no reservation has the given id.
func (r *ReservationRepo) Update(ctx context.Context, id string, u model.ReservationUpdate) (*model.Reservation, error) {
	rid, ok := parseMySQLID(id)
	if !ok {
		return nil, nil
	}
	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}
	add := func(col string, v any) {
		sets = append(sets, col+" = ?")
		args = append(args, v)
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
		add("meal_period", *u.MealPeriod)
	}
	if u.TableSize != nil {
		add("table_size", *u.TableSize)
	}
	if u.Status != nil {
		add("status", *u.Status)
	}
	args = append(args, rid)
	q := "UPDATE reservations SET " + strings.Join(sets, ", ") + " WHERE id = ?"
	if _, err := r.db.ExecContext(ctx, q, args...); err != nil {
		return nil, mapMySQLReservationErr(err)
	}
	return r.FindByID(ctx, id)
}

// FindByID returns the reservation with id or (nil, nil).
func (r *ReservationRepo) FindByID(ctx context.Context, id string) (*model.Reservation, error) {
	rid, ok := parseMySQLID(id)
	if !ok {
		return nil, nil
	}
	q := "SELECT " + reservationColumns + " FROM reservations WHERE id = ?"
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, rid))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

// List returns reservations matching f, latest arrival first.
func (r *ReservationRepo) List(ctx context.Context, f model.ReservationFilter) ([]model.Reservation, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	if f.MealPeriod != "" {
		where = append(where, "meal_period = ?")
		args = append(args, f.MealPeriod)
	}
	if f.Date != "" {
		where = append(where, `expected_arrival_time LIKE ? ESCAPE '\\'`)
		args = append(args, likePrefix(f.Date))
	}
	switch {
	case f.GuestEmail != "" && f.GuestPhone != "":
		where = append(where, "(guest_email = ? OR guest_phone = ?)")
		args = append(args, f.GuestEmail, f.GuestPhone)
	case f.GuestEmail != "":
		where = append(where, "guest_email = ?")
		args = append(args, f.GuestEmail)
	case f.GuestPhone != "":
		where = append(where, "guest_phone = ?")
		args = append(args, f.GuestPhone)
	}
	q := "SELECT " + reservationColumns + " FROM reservations"
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY expected_arrival_time DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Reservation{}
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// FindConflict looks for an active reservation of the same guest on the
// same date and meal period.
func (r *ReservationRepo) FindConflict(ctx context.Context, cq model.ConflictQuery) (*model.Reservation, error) {
	var (
		who  []string
		args = []any{cq.Date, cq.MealPeriod, model.StatusRequested, model.StatusApproved}
	)
	if cq.GuestEmail != "" {
		who = append(who, "guest_email = ?")
		args = append(args, cq.GuestEmail)
	}
	if cq.GuestPhone != "" {
		who = append(who, "guest_phone = ?")
		args = append(args, cq.GuestPhone)
	}
	if len(who) == 0 {
		return nil, nil
	}
	q := "SELECT " + reservationColumns + ` FROM reservations
		WHERE arrival_date = ? AND meal_period = ? AND status IN (?, ?)
		AND (` + strings.Join(who, " OR ") + ")"
	if cq.ExcludeID != "" {
		if rid, ok := parseMySQLID(cq.ExcludeID); ok {
			q += " AND id <> ?"
			args = append(args, rid)
		}
	}
	q += " LIMIT 1"
	res, err := scanReservation(r.db.QueryRowContext(ctx, q, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &res, nil
}

func parseMySQLID(id string) (uint64, bool) {
	n, err := strconv.ParseUint(id, 10, 64)
	return n, err == nil && n > 0
}

func isMySQLDuplicate(err error) (*mysql.MySQLError, bool) {
	var me *mysql.MySQLError
	if errors.As(err, &me) && me.Number == mysqlDuplicateEntry {
		return me, true
	}
	return nil, false
}

func mapMySQLReservationErr(err error) error {
	if _, ok := isMySQLDuplicate(err); ok {
		return model.ErrSlotTaken
	}
	return err
}

// likePrefix escapes LIKE wildcards in p and appends the trailing %.
func likePrefix(p string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(p) + "%"
}
