package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=user
type Repository interface {
	CreateUser(ctx context.Context, u *User) error
	GetUser(ctx context.Context, id uuid.UUID) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	ListUsers(ctx context.Context) ([]*User, error)
	SetRole(ctx context.Context, id uuid.UUID, role access.Role) error
	UpdateProfile(ctx context.Context, u *User) error
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string, force bool) error
	DeleteUser(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo            Repository
	defaultPassword string
}

// NewService returns the user administration service. defaultPassword is
// assigned on reset and to users created without a password.
func NewService(repo Repository, defaultPassword string) *Service {
	return &Service{repo: repo, defaultPassword: defaultPassword}
}

// Profile is the self-described part of a user record.
type Profile struct {
	Email       string
	FirstName   string
	LastName    string
	Department  string
	Designation string
}

func (p Profile) Validate() error {
	var missing []string

	if strings.TrimSpace(p.FirstName) == "" {
		missing = append(missing, "first name")
	}

	if strings.TrimSpace(p.LastName) == "" {
		missing = append(missing, "last name")
	}

	if strings.TrimSpace(p.Email) == "" {
		missing = append(missing, "email")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	if _, err := mail.ParseAddress(p.Email); err != nil {
		return fmt.Errorf("%w: invalid email %q", ErrInvalidInput, p.Email)
	}

	return nil
}

// NewUser builds an unsaved user from a validated profile.
func NewUser(p Profile, role access.Role, passwordHash string, force bool) *User {
	return &User{
		Email:               strings.ToLower(strings.TrimSpace(p.Email)),
		FirstName:           strings.TrimSpace(p.FirstName),
		LastName:            strings.TrimSpace(p.LastName),
		Department:          strings.TrimSpace(p.Department),
		Designation:         strings.TrimSpace(p.Designation),
		Role:                role,
		PasswordHash:        passwordHash,
		ForcePasswordChange: force,
	}
}

type CreateParams struct {
	Profile
	Password string
	Role     access.Role
}

// List returns users matching search, for the admin panel.
func (s *Service) List(ctx context.Context, sess access.Session, search string) ([]*User, error) {
	if err := access.Authorize(sess, access.ActionViewAdminPanel); err != nil {
		return nil, err
	}

	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var out []*User

	for _, u := range users {
		if u.Matches(search) {
			out = append(out, u)
		}
	}

	return out, nil
}

// Get returns a user. Callers may always read their own record.
func (s *Service) Get(ctx context.Context, sess access.Session, id uuid.UUID) (*User, error) {
	if !sess.Authenticated() {
		return nil, access.ErrUnauthenticated
	}

	if sess.UserID != id {
		if err := access.Authorize(sess, access.ActionViewAdminPanel); err != nil {
			return nil, err
		}
	}

	return s.repo.GetUser(ctx, id)
}

// Create adds a user with a role. Without a password the default password
// is used and the user must change it at first sign-in.
func (s *Service) Create(ctx context.Context, sess access.Session, params CreateParams) (*User, error) {
	if err := access.Authorize(sess, access.ActionManageUsers); err != nil {
		return nil, err
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	if params.Role != access.RoleNone {
		if _, ok := access.ParseRole(string(params.Role)); !ok {
			return nil, fmt.Errorf("%w: unknown role %q", ErrInvalidInput, params.Role)
		}
	}

	password, force := params.Password, false
	if password == "" {
		password, force = s.defaultPassword, true
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := NewUser(params.Profile, params.Role, hash, force)
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	audit(ctx, sess, "user.create", u.ID, "role", u.Role)

	return u, nil
}

// SetRole replaces the user's role. RoleNone removes the role row.
func (s *Service) SetRole(ctx context.Context, sess access.Session, id uuid.UUID, role access.Role) error {
	if err := access.Authorize(sess, access.ActionManageUsers); err != nil {
		return err
	}

	if role != access.RoleNone {
		parsed, ok := access.ParseRole(string(role))
		if !ok {
			return fmt.Errorf("%w: unknown role %q", ErrInvalidInput, role)
		}

		role = parsed
	}

	if err := s.repo.SetRole(ctx, id, role); err != nil {
		return err
	}

	audit(ctx, sess, "user.set_role", id, "role", role)

	return nil
}

func (s *Service) UpdateDesignation(ctx context.Context, sess access.Session, id uuid.UUID, designation string) (*User, error) {
	return s.updateProfile(ctx, sess, id, func(u *User) { u.Designation = strings.TrimSpace(designation) })
}

func (s *Service) UpdateDepartment(ctx context.Context, sess access.Session, id uuid.UUID, department string) (*User, error) {
	return s.updateProfile(ctx, sess, id, func(u *User) { u.Department = strings.TrimSpace(department) })
}

func (s *Service) updateProfile(ctx context.Context, sess access.Session, id uuid.UUID, mutate func(*User)) (*User, error) {
	if err := access.Authorize(sess, access.ActionManageUsers); err != nil {
		return nil, err
	}

	u, err := s.repo.GetUser(ctx, id)
	if err != nil {
		return nil, err
	}

	mutate(u)

	if err := s.repo.UpdateProfile(ctx, u); err != nil {
		return nil, err
	}

	audit(ctx, sess, "user.update_profile", id)

	return u, nil
}

// ResetPassword sets the default password and forces a change at next sign-in.
func (s *Service) ResetPassword(ctx context.Context, sess access.Session, id uuid.UUID) error {
	if err := access.Authorize(sess, access.ActionManageUsers); err != nil {
		return err
	}

	hash, err := HashPassword(s.defaultPassword)
	if err != nil {
		return err
	}

	if err := s.repo.UpdatePassword(ctx, id, hash, true); err != nil {
		return err
	}

	audit(ctx, sess, "user.reset_password", id)

	return nil
}

func (s *Service) Delete(ctx context.Context, sess access.Session, id uuid.UUID) error {
	if err := access.Authorize(sess, access.ActionManageUsers); err != nil {
		return err
	}

	if sess.UserID == id {
		return fmt.Errorf("%w: cannot delete your own account", ErrInvalidInput)
	}

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		return err
	}

	audit(ctx, sess, "user.delete", id)

	return nil
}

// Bootstrap makes the account with the profile's email a super admin,
// creating it when missing. It runs without a session and is only reachable
// from the operator CLI.
func (s *Service) Bootstrap(ctx context.Context, p Profile, password string) (*User, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(p.Email)))
	if err == nil {
		if err := s.repo.SetRole(ctx, existing.ID, access.RoleSuperAdmin); err != nil {
			return nil, err
		}

		existing.Role = access.RoleSuperAdmin
		slog.InfoContext(ctx, "audit", "action", "user.bootstrap", "user_id", existing.ID, "created", false)

		return existing, nil
	}

	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	force := password == ""
	if force {
		password = s.defaultPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := NewUser(p, access.RoleSuperAdmin, hash, force)
	if err := s.repo.CreateUser(ctx, u); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "audit", "action", "user.bootstrap", "user_id", u.ID, "created", true)

	return u, nil
}

func audit(ctx context.Context, sess access.Session, action string, target uuid.UUID, extra ...any) {
	args := append([]any{"action", action, "user_id", target, "actor", sess.UserID}, extra...)
	slog.InfoContext(ctx, "audit", args...)
}
