// Package auth registers users, checks their passwords and issues the access
// tokens the HTTP layer uses to tell guests from employees.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/iliyamo/table-reservation/internal/model"
	"github.com/iliyamo/table-reservation/internal/repository"
	"github.com/iliyamo/table-reservation/internal/reservation"
	"github.com/iliyamo/table-reservation/internal/utils"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrPhoneTaken         = errors.New("phone already registered")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNameRequired       = errors.New("name is required")
	ErrPasswordRequired   = errors.New("password is required")
	ErrInvalidRole        = errors.New("role must be guest or employee")
)

// UserStore is implemented by every user repository.
type UserStore interface {
	Create(ctx context.Context, u model.User) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByPhone(ctx context.Context, phone string) (*model.User, error)
	FindByID(ctx context.Context, id string) (*model.User, error)
}

type RegisterInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     model.Role
}

// Service implements register, login and me.
type Service struct {
	users      UserStore
	secret     string
	ttlMin     int
	bcryptCost int
}

func NewService(users UserStore, jwtSecret string, accessTTLMin, bcryptCost int) *Service {
	return &Service{users: users, secret: jwtSecret, ttlMin: accessTTLMin, bcryptCost: bcryptCost}
}

// Register validates in and stores a new user.  An empty role means guest.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*model.User, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	if in.Role == "" {
		in.Role = model.RoleGuest
	}
	if in.Name == "" {
		return nil, ErrNameRequired
	}
	if err := reservation.ValidateContact(in.Email, in.Phone); err != nil {
		return nil, err
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}
	if !in.Role.Valid() {
		return nil, ErrInvalidRole
	}

	if u, err := s.users.FindByEmail(ctx, in.Email); err != nil {
		return nil, fmt.Errorf("lookup email: %w", err)
	} else if u != nil {
		return nil, ErrEmailTaken
	}
	if u, err := s.users.FindByPhone(ctx, in.Phone); err != nil {
		return nil, fmt.Errorf("lookup phone: %w", err)
	} else if u != nil {
		return nil, ErrPhoneTaken
	}

	hash, err := utils.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u, err := s.users.Create(ctx, model.User{
		Name:         in.Name,
		Email:        in.Email,
		Phone:        in.Phone,
		Role:         in.Role,
		PasswordHash: hash,
	})
	switch {
	case errors.Is(err, repository.ErrEmailExists):
		return nil, ErrEmailTaken
	case errors.Is(err, repository.ErrPhoneExists):
		return nil, ErrPhoneTaken
	case err != nil:
		return nil, fmt.Errorf("create user: %w", err)
	}
	log.Printf("auth: registered user id=%s role=%s", u.ID, u.Role)
	return u, nil
}

// Login checks the password and returns a fresh access token.  Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Service) Login(ctx context.Context, email, password string) (utils.AccessToken, *model.User, error) {
	u, err := s.users.FindByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		return utils.AccessToken{}, nil, fmt.Errorf("lookup email: %w", err)
	}
	if u == nil || !utils.VerifyPassword(u.PasswordHash, password) {
		return utils.AccessToken{}, nil, ErrInvalidCredentials
	}
	tok, err := utils.NewAccessToken(s.secret, u.ID, string(u.Role), s.ttlMin)
	if err != nil {
		return utils.AccessToken{}, nil, fmt.Errorf("issue token: %w", err)
	}
	return tok, u, nil
}

// Me returns the user with id, or nil.
func (s *Service) Me(ctx context.Context, id string) (*model.User, error) {
	return s.users.FindByID(ctx, id)
}
