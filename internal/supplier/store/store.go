package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/supplier"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// FindMatch returns the canonical name of the longest pattern contained in
// raw, or "" when none matches.
func (s *Store) FindMatch(ctx context.Context, raw string) (string, error) {
	query := `
		SELECT canonical
		FROM supplier_aliases
		WHERE $1 ILIKE '%' || pattern || '%'
		ORDER BY LENGTH(pattern) DESC, created_at DESC
		LIMIT 1
	`

	var canonical string

	err := s.db.QueryRowContext(ctx, query, raw).Scan(&canonical)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}

		return "", fmt.Errorf("finding supplier alias: %w", err)
	}

	return canonical, nil
}

func (s *Store) CreateAlias(ctx context.Context, a *supplier.Alias) error {
	query := `
		INSERT INTO supplier_aliases (pattern, canonical, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (pattern) DO UPDATE SET canonical = EXCLUDED.canonical
		RETURNING id, created_at
	`

	if err := s.db.QueryRowContext(ctx, query, a.Pattern, a.Canonical).Scan(&a.ID, &a.CreatedAt); err != nil {
		return fmt.Errorf("creating supplier alias: %w", err)
	}

	return nil
}

func (s *Store) ListAliases(ctx context.Context) ([]*supplier.Alias, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, pattern, canonical, created_at FROM supplier_aliases ORDER BY canonical, pattern`)
	if err != nil {
		return nil, fmt.Errorf("listing supplier aliases: %w", err)
	}
	defer rows.Close()

	var aliases []*supplier.Alias

	for rows.Next() {
		var a supplier.Alias
		if err := rows.Scan(&a.ID, &a.Pattern, &a.Canonical, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning supplier alias: %w", err)
		}

		aliases = append(aliases, &a)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating supplier aliases: %w", err)
	}

	return aliases, nil
}

func (s *Store) DeleteAlias(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM supplier_aliases WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting supplier alias: %w", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return supplier.ErrNotFound
	}

	return nil
}
