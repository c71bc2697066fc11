package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/user"
)

const uniqueViolation = "23505"

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*user.User, error) {
	var u user.User

	var role sql.NullString

	if err := s.Scan(
		&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.Department, &u.Designation,
		&role, &u.PasswordHash, &u.ForcePasswordChange, &u.CreatedAt, &u.UpdatedAt,
	); err != nil {
		return nil, err
	}

	u.Role = access.Role(role.String)

	return &u, nil
}

const selectColumns = `
	u.id, u.email, u.first_name, u.last_name, u.department, u.designation,
	r.role, u.password_hash, u.force_password_change, u.created_at, u.updated_at
`

const fromUsers = ` FROM users u LEFT JOIN user_roles r ON r.user_id = u.id`

func (s *Store) CreateUser(ctx context.Context, u *user.User) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	query := `
		INSERT INTO users (email, first_name, last_name, department, designation, password_hash, force_password_change, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
		RETURNING id, created_at, updated_at
	`

	err = dbTx.QueryRowContext(ctx, query,
		u.Email,
		u.FirstName,
		u.LastName,
		u.Department,
		u.Designation,
		u.PasswordHash,
		u.ForcePasswordChange,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return user.ErrEmailTaken
		}

		return fmt.Errorf("creating user: %w", err)
	}

	if u.Role != access.RoleNone {
		if _, err := dbTx.ExecContext(ctx, `INSERT INTO user_roles (user_id, role) VALUES ($1, $2)`, u.ID, u.Role); err != nil {
			return fmt.Errorf("creating user role: %w", err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.getUser(ctx, `u.id = $1`, id)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getUser(ctx, `u.email = $1`, strings.ToLower(strings.TrimSpace(email)))
}

func (s *Store) getUser(ctx context.Context, where string, arg any) (*user.User, error) {
	query := `SELECT ` + selectColumns + fromUsers + ` WHERE ` + where

	u, err := scanUser(s.db.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}

		return nil, fmt.Errorf("getting user: %w", err)
	}

	return u, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*user.User, error) {
	query := `SELECT ` + selectColumns + fromUsers + ` ORDER BY u.created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing users: %w", err)
	}
	defer rows.Close()

	var users []*user.User

	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning user: %w", err)
		}

		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating users: %w", err)
	}

	return users, nil
}

// SetRole upserts the role row, or deletes it for RoleNone.
func (s *Store) SetRole(ctx context.Context, id uuid.UUID, role access.Role) error {
	if role == access.RoleNone {
		if _, err := s.db.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
			return fmt.Errorf("deleting role: %w", err)
		}

		return nil
	}

	query := `
		INSERT INTO user_roles (user_id, role)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO UPDATE SET role = EXCLUDED.role
	`

	if _, err := s.db.ExecContext(ctx, query, id, role); err != nil {
		return fmt.Errorf("setting role: %w", err)
	}

	return nil
}

func (s *Store) UpdateProfile(ctx context.Context, u *user.User) error {
	query := `
		UPDATE users
		SET first_name = $1, last_name = $2, department = $3, designation = $4, updated_at = NOW()
		WHERE id = $5
	`

	return s.execOne(ctx, "updating profile", query, u.FirstName, u.LastName, u.Department, u.Designation, u.ID)
}

func (s *Store) UpdatePassword(ctx context.Context, id uuid.UUID, hash string, force bool) error {
	query := `
		UPDATE users
		SET password_hash = $1, force_password_change = $2, updated_at = NOW()
		WHERE id = $3
	`

	return s.execOne(ctx, "updating password", query, hash, force, id)
}

// DeleteUser removes the role row and then the profile.
func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	if _, err := dbTx.ExecContext(ctx, `DELETE FROM user_roles WHERE user_id = $1`, id); err != nil {
		return fmt.Errorf("deleting role: %w", err)
	}

	res, err := dbTx.ExecContext(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting user: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return user.ErrNotFound
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) execOne(ctx context.Context, op, query string, args ...any) error {
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if n == 0 {
		return user.ErrNotFound
	}

	return nil
}
