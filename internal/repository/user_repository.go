package repository

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"

	"github.com/iliyamo/table-reservation/internal/model"
)

// UserRepo mirrors the MySQL 'users' table.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id, name, email, phone, role, password_hash"

// Create inserts u and returns it with its new id.  The email is stored
// normalized.
func (r *UserRepo) Create(ctx context.Context, u model.User) (*model.User, error) {
	u.Email = normalizeEmail(u.Email)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, phone, role, password_hash) VALUES (?,?,?,?,?)",
		u.Name, u.Email, u.Phone, u.Role, u.PasswordHash)
	if err != nil {
		if me, ok := isMySQLDuplicate(err); ok {
			if strings.Contains(me.Message, "phone") {
				return nil, ErrPhoneExists
			}
			return nil, ErrEmailExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	u.ID = strconv.FormatInt(id, 10)
	return &u, nil
}

// FindByEmail fetches a user by normalized email.
func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.findOne(ctx, "email = ?", normalizeEmail(email))
}

// FindByPhone fetches a user by phone.
func (r *UserRepo) FindByPhone(ctx context.Context, phone string) (*model.User, error) {
	return r.findOne(ctx, "phone = ?", strings.TrimSpace(phone))
}

// FindByID fetches a user by id.
func (r *UserRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	uid, ok := parseMySQLID(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, "id = ?", uid)
}

func (r *UserRepo) findOne(ctx context.Context, cond string, arg any) (*model.User, error) {
	var (
		u  model.User
		id uint64
	)
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE "+cond+" LIMIT 1", arg).
		Scan(&id, &u.Name, &u.Email, &u.Phone, &u.Role, &u.PasswordHash)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	u.ID = strconv.FormatUint(id, 10)
	return &u, nil
}
