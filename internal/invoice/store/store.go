package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// scanInvoice reads an invoice row in selectColumns order.
func scanInvoice(s scanner) (*invoice.Invoice, error) {
	var inv invoice.Invoice

	var status string

	var paymentDate sql.NullTime

	if err := s.Scan(
		&inv.ID, &inv.InvoiceNumber, &inv.Supplier, &inv.Amount, &inv.Description,
		&inv.ReceivedDate, &paymentDate, &inv.AssignedTo, &inv.FinanceNotes, &inv.SupplyChainNotes,
		&status, &inv.Department, &inv.FileURL, &inv.UserID,
		&inv.CreatedAt, &inv.UpdatedAt,
	); err != nil {
		return nil, err
	}

	inv.Status = invoice.Status(status)

	if paymentDate.Valid {
		inv.PaymentDate = &paymentDate.Time
	}

	return &inv, nil
}

const selectColumns = `
	id, invoice_number, supplier, amount, description,
	received_date, payment_date, assigned_to, finance_notes, supply_chain_notes,
	status, department, file_url, user_id,
	created_at, updated_at
`

const insertQuery = `
	INSERT INTO invoices (
		invoice_number, supplier, amount, description, received_date, payment_date,
		assigned_to, finance_notes, supply_chain_notes, status, department, file_url, user_id,
		created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	RETURNING id, created_at, updated_at
`

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insert(ctx context.Context, q queryRower, inv *invoice.Invoice) error {
	return q.QueryRowContext(ctx, insertQuery,
		inv.InvoiceNumber,
		inv.Supplier,
		inv.Amount,
		inv.Description,
		inv.ReceivedDate,
		inv.PaymentDate,
		inv.AssignedTo,
		inv.FinanceNotes,
		inv.SupplyChainNotes,
		inv.Status,
		inv.Department,
		inv.FileURL,
		inv.UserID,
	).Scan(&inv.ID, &inv.CreatedAt, &inv.UpdatedAt)
}

func (s *Store) CreateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	if err := insert(ctx, s.db, inv); err != nil {
		return fmt.Errorf("creating invoice: %w", err)
	}

	return nil
}

// CreateInvoices inserts all invoices in one database transaction.
func (s *Store) CreateInvoices(ctx context.Context, invs []*invoice.Invoice) error {
	dbTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer dbTx.Rollback()

	for i, inv := range invs {
		if err := insert(ctx, dbTx, inv); err != nil {
			return fmt.Errorf("creating invoice %d: %w", i+1, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}

	return nil
}

func (s *Store) GetInvoice(ctx context.Context, id uuid.UUID) (*invoice.Invoice, error) {
	query := `SELECT ` + selectColumns + ` FROM invoices WHERE id = $1`

	inv, err := scanInvoice(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, invoice.ErrNotFound
		}

		return nil, fmt.Errorf("getting invoice: %w", err)
	}

	return inv, nil
}

func (s *Store) ListInvoices(ctx context.Context, filter invoice.ListFilter) ([]*invoice.Invoice, error) {
	query := `SELECT ` + selectColumns + ` FROM invoices WHERE 1 = 1`

	var args []any

	argIdx := 1

	if filter.Status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIdx)

		args = append(args, *filter.Status)
		argIdx++
	}

	if filter.Department != nil {
		query += fmt.Sprintf(" AND department = $%d", argIdx)

		args = append(args, *filter.Department)
		argIdx++
	}

	if filter.Search != "" {
		query += fmt.Sprintf(
			" AND (invoice_number ILIKE $%d OR supplier ILIKE $%d OR description ILIKE $%d)",
			argIdx, argIdx, argIdx,
		)

		args = append(args, "%"+filter.Search+"%")
		argIdx++
	}

	if filter.ReceivedFrom != nil {
		query += fmt.Sprintf(" AND received_date >= $%d", argIdx)

		args = append(args, *filter.ReceivedFrom)
		argIdx++
	}

	if filter.ReceivedTo != nil {
		query += fmt.Sprintf(" AND received_date <= $%d", argIdx)

		args = append(args, *filter.ReceivedTo)
	}

	query += " ORDER BY created_at DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing invoices: %w", err)
	}
	defer rows.Close()

	var invs []*invoice.Invoice

	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning invoice: %w", err)
		}

		invs = append(invs, inv)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating invoices: %w", err)
	}

	return invs, nil
}

// UpdateInvoice writes the editable fields. Status and payment date are
// owned by TransitionInvoice and are never touched here.
func (s *Store) UpdateInvoice(ctx context.Context, inv *invoice.Invoice) error {
	query := `
		UPDATE invoices
		SET invoice_number = $1, supplier = $2, amount = $3, description = $4, received_date = $5,
			assigned_to = $6, finance_notes = $7, supply_chain_notes = $8,
			department = $9, file_url = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING status, payment_date, updated_at
	`

	var (
		status      string
		paymentDate sql.NullTime
	)

	err := s.db.QueryRowContext(ctx, query,
		inv.InvoiceNumber,
		inv.Supplier,
		inv.Amount,
		inv.Description,
		inv.ReceivedDate,
		inv.AssignedTo,
		inv.FinanceNotes,
		inv.SupplyChainNotes,
		inv.Department,
		inv.FileURL,
		inv.ID,
	).Scan(&status, &paymentDate, &inv.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return invoice.ErrNotFound
		}

		return fmt.Errorf("updating invoice: %w", err)
	}

	inv.Status = invoice.Status(status)
	inv.PaymentDate = nil

	if paymentDate.Valid {
		inv.PaymentDate = &paymentDate.Time
	}

	return nil
}

// TransitionInvoice writes inv.Status and the workflow fields only while the
// stored status still equals from. A row that moved on in the meantime
// yields invoice.ErrInvalidTransition.
func (s *Store) TransitionInvoice(ctx context.Context, inv *invoice.Invoice, from invoice.Status) error {
	query := `
		UPDATE invoices
		SET status = $1, payment_date = $2, assigned_to = $3, finance_notes = $4,
			supply_chain_notes = $5, updated_at = NOW()
		WHERE id = $6 AND status = $7
		RETURNING updated_at
	`

	err := s.db.QueryRowContext(ctx, query,
		inv.Status,
		inv.PaymentDate,
		inv.AssignedTo,
		inv.FinanceNotes,
		inv.SupplyChainNotes,
		inv.ID,
		from,
	).Scan(&inv.UpdatedAt)
	if err == nil {
		return nil
	}

	if !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("transitioning invoice: %w", err)
	}

	var exists bool
	if err := s.db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM invoices WHERE id = $1)`, inv.ID).Scan(&exists); err != nil {
		return fmt.Errorf("transitioning invoice: %w", err)
	}

	if !exists {
		return invoice.ErrNotFound
	}

	return fmt.Errorf("%w: %s is no longer %s", invoice.ErrInvalidTransition, inv.ID, from)
}

func (s *Store) DeleteInvoice(ctx context.Context, id uuid.UUID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM invoices WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deleting invoice: %w", err)
	}

	if n == 0 {
		return invoice.ErrNotFound
	}

	return nil
}
