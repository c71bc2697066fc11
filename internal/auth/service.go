package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/user"
)

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrPasswordMismatch   = errors.New("passwords do not match")
)

//go:generate mockgen -source=service.go -destination=users_mock.go -package=auth
type Users interface {
	CreateUser(ctx context.Context, u *user.User) error
	GetUser(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, force bool) error
}

type Service struct {
	users  Users
	tokens *Tokens
}

func NewService(users Users, tokens *Tokens) *Service {
	return &Service{users: users, tokens: tokens}
}

type SignUpParams struct {
	user.Profile
	Password        string
	ConfirmPassword string
}

// SignUp registers a self-service account. New accounts have no role row.
func (s *Service) SignUp(ctx context.Context, params SignUpParams) (*user.User, error) {
	if params.Password != params.ConfirmPassword {
		return nil, ErrPasswordMismatch
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	hash, err := user.HashPassword(params.Password)
	if err != nil {
		return nil, err
	}

	u := user.NewUser(params.Profile, access.RoleNone, hash, false)
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "user signed up", "user_id", u.ID)

	return u, nil
}

type SignInResult struct {
	Token               string
	ExpiresAt           time.Time
	User                *user.User
	ForcePasswordChange bool
}

func (s *Service) SignIn(ctx context.Context, email, password string) (*SignInResult, error) {
	u, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if !user.CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}

	token, expiresAt, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}

	return &SignInResult{
		Token:               token,
		ExpiresAt:           expiresAt,
		User:                u,
		ForcePasswordChange: u.ForcePasswordChange,
	}, nil
}

// ChangePassword re-verifies the current password and clears the
// force-change flag.
func (s *Service) ChangePassword(ctx context.Context, sess access.Session, current, next, confirm string) error {
	if !sess.Authenticated() {
		return access.ErrUnauthenticated
	}

	if next != confirm {
		return ErrPasswordMismatch
	}

	u, err := s.users.GetUser(ctx, sess.UserID)
	if err != nil {
		return err
	}

	if !user.CheckPassword(u.PasswordHash, current) {
		return ErrInvalidCredentials
	}

	hash, err := user.HashPassword(next)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, u.ID, hash, false); err != nil {
		return fmt.Errorf("changing password: %w", err)
	}

	return nil
}

// Authenticate resolves a bearer token to a session, reading the role
// fresh from the store.
func (s *Service) Authenticate(ctx context.Context, token string) (access.Session, error) {
	id, err := s.tokens.Parse(token)
	if err != nil {
		return access.Session{}, err
	}

	u, err := s.users.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return access.Session{}, ErrInvalidToken
		}

		return access.Session{}, err
	}

	return u.Session(), nil
}
