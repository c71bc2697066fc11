package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=invoice
type Repository interface {
	CreateInvoice(ctx context.Context, inv *Invoice) error
	CreateInvoices(ctx context.Context, invs []*Invoice) error
	GetInvoice(ctx context.Context, id uuid.UUID) (*Invoice, error)
	ListInvoices(ctx context.Context, filter ListFilter) ([]*Invoice, error)
	UpdateInvoice(ctx context.Context, inv *Invoice) error
	TransitionInvoice(ctx context.Context, inv *Invoice, from Status) error
	DeleteInvoice(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo        Repository
	attachments AttachmentOrigin
}

type Option func(*Service)

// WithAttachmentOrigin limits file URLs on created and edited invoices to o.
func WithAttachmentOrigin(o AttachmentOrigin) Option {
	return func(s *Service) {
		s.attachments = o
	}
}

func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{repo: repo}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

type CreateParams struct {
	InvoiceNumber string
	Supplier      string
	Amount        int64
	Description   string
	ReceivedDate  time.Time
	Department    string
	AssignedTo    string
	FileURL       string
}

// Validate checks the fields required before an invoice is stored.
func (p CreateParams) Validate() error {
	var missing []string

	if strings.TrimSpace(p.InvoiceNumber) == "" {
		missing = append(missing, "invoice number")
	}

	if strings.TrimSpace(p.Supplier) == "" {
		missing = append(missing, "supplier")
	}

	if p.ReceivedDate.IsZero() {
		missing = append(missing, "received date")
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	if p.Amount < 0 {
		return fmt.Errorf("%w: amount must not be negative", ErrInvalidInput)
	}

	return nil
}

type ListFilter struct {
	Status       *Status
	Department   *string
	Search       string
	ReceivedFrom *time.Time
	ReceivedTo   *time.Time
}

// UpdateParams is a partial edit. Status is deliberately absent: status
// only changes through the workflow methods.
type UpdateParams struct {
	InvoiceNumber    *string
	Supplier         *string
	Amount           *int64
	Description      *string
	ReceivedDate     *time.Time
	Department       *string
	AssignedTo       *string
	FileURL          *string
	FinanceNotes     *string
	SupplyChainNotes *string
}

func (s *Service) Create(ctx context.Context, sess access.Session, params CreateParams) (*Invoice, error) {
	if err := access.Authorize(sess, access.ActionCreateInvoice); err != nil {
		return nil, err
	}

	if err := params.Validate(); err != nil {
		return nil, err
	}

	if err := s.attachments.Check(strings.TrimSpace(params.FileURL)); err != nil {
		return nil, err
	}

	inv := newInvoice(sess, params)
	if err := s.repo.CreateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

// CreateBatch stores all params atomically, or none if any is invalid.
func (s *Service) CreateBatch(ctx context.Context, sess access.Session, params []CreateParams) ([]*Invoice, error) {
	if err := access.Authorize(sess, access.ActionCreateInvoice); err != nil {
		return nil, err
	}

	if len(params) == 0 {
		return nil, nil
	}

	invs := make([]*Invoice, len(params))

	for i, p := range params {
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		if err := s.attachments.Check(strings.TrimSpace(p.FileURL)); err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}

		invs[i] = newInvoice(sess, p)
	}

	if err := s.repo.CreateInvoices(ctx, invs); err != nil {
		return nil, fmt.Errorf("create invoices: %w", err)
	}

	return invs, nil
}

func newInvoice(sess access.Session, p CreateParams) *Invoice {
	return &Invoice{
		InvoiceNumber: strings.TrimSpace(p.InvoiceNumber),
		Supplier:      strings.TrimSpace(p.Supplier),
		Amount:        p.Amount,
		Description:   p.Description,
		ReceivedDate:  p.ReceivedDate,
		Department:    p.Department,
		AssignedTo:    p.AssignedTo,
		FileURL:       strings.TrimSpace(p.FileURL),
		Status:        StatusPending,
		UserID:        sess.UserID,
	}
}

func (s *Service) Get(ctx context.Context, sess access.Session, id uuid.UUID) (*Invoice, error) {
	if err := access.Authorize(sess, access.ActionViewInvoices); err != nil {
		return nil, err
	}

	return s.repo.GetInvoice(ctx, id)
}

func (s *Service) List(ctx context.Context, sess access.Session, filter ListFilter) ([]*Invoice, error) {
	if err := access.Authorize(sess, access.ActionViewInvoices); err != nil {
		return nil, err
	}

	return s.repo.ListInvoices(ctx, filter)
}

func (s *Service) Stats(ctx context.Context, sess access.Session, filter ListFilter) (Stats, error) {
	invs, err := s.List(ctx, sess, filter)
	if err != nil {
		return Stats{}, err
	}

	return ComputeStats(invs), nil
}

// ListOverdue returns the unpaid invoices that are at least OverdueDays old at now.
func (s *Service) ListOverdue(ctx context.Context, sess access.Session, now time.Time) ([]*Invoice, error) {
	invs, err := s.List(ctx, sess, ListFilter{})
	if err != nil {
		return nil, err
	}

	var overdue []*Invoice

	for _, inv := range invs {
		if inv.IsOverdue(now) {
			overdue = append(overdue, inv)
		}
	}

	return overdue, nil
}

func (s *Service) Update(ctx context.Context, sess access.Session, id uuid.UUID, params UpdateParams) (*Invoice, error) {
	if err := access.Authorize(sess, access.ActionEditInvoice); err != nil {
		return nil, err
	}

	if params.FileURL != nil {
		if err := s.attachments.Check(strings.TrimSpace(*params.FileURL)); err != nil {
			return nil, err
		}
	}

	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	applyUpdate(inv, params)

	if err := validateStored(inv); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateInvoice(ctx, inv); err != nil {
		return nil, err
	}

	return inv, nil
}

func applyUpdate(inv *Invoice, p UpdateParams) {
	if p.InvoiceNumber != nil {
		inv.InvoiceNumber = strings.TrimSpace(*p.InvoiceNumber)
	}

	if p.Supplier != nil {
		inv.Supplier = strings.TrimSpace(*p.Supplier)
	}

	if p.Amount != nil {
		inv.Amount = *p.Amount
	}

	if p.Description != nil {
		inv.Description = *p.Description
	}

	if p.ReceivedDate != nil {
		inv.ReceivedDate = *p.ReceivedDate
	}

	if p.Department != nil {
		inv.Department = *p.Department
	}

	if p.AssignedTo != nil {
		inv.AssignedTo = *p.AssignedTo
	}

	if p.FileURL != nil {
		inv.FileURL = strings.TrimSpace(*p.FileURL)
	}

	if p.FinanceNotes != nil {
		inv.FinanceNotes = *p.FinanceNotes
	}

	if p.SupplyChainNotes != nil {
		inv.SupplyChainNotes = *p.SupplyChainNotes
	}
}

func validateStored(inv *Invoice) error {
	return CreateParams{
		InvoiceNumber: inv.InvoiceNumber,
		Supplier:      inv.Supplier,
		Amount:        inv.Amount,
		ReceivedDate:  inv.ReceivedDate,
	}.Validate()
}

func (s *Service) UpdateFinanceNotes(ctx context.Context, sess access.Session, id uuid.UUID, notes string) (*Invoice, error) {
	return s.Update(ctx, sess, id, UpdateParams{FinanceNotes: &notes})
}

func (s *Service) UpdateSupplyChainNotes(ctx context.Context, sess access.Session, id uuid.UUID, notes string) (*Invoice, error) {
	return s.Update(ctx, sess, id, UpdateParams{SupplyChainNotes: &notes})
}

// Transition moves the invoice to status to if the workflow allows it.
func (s *Service) Transition(ctx context.Context, sess access.Session, id uuid.UUID, to Status) (*Invoice, error) {
	return s.transition(ctx, sess, id, to, nil)
}

func (s *Service) Approve(ctx context.Context, sess access.Session, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, sess, id, StatusApproved, nil)
}

func (s *Service) Reject(ctx context.Context, sess access.Session, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, sess, id, StatusRejected, nil)
}

func (s *Service) Reopen(ctx context.Context, sess access.Session, id uuid.UUID) (*Invoice, error) {
	return s.transition(ctx, sess, id, StatusPending, nil)
}

// AssignToSupplyChain hands the invoice to a named person in supply chain.
func (s *Service) AssignToSupplyChain(ctx context.Context, sess access.Session, id uuid.UUID, assignee, notes string) (*Invoice, error) {
	assignee = strings.TrimSpace(assignee)
	if assignee == "" {
		return nil, fmt.Errorf("%w: assignee is required", ErrInvalidInput)
	}

	return s.transition(ctx, sess, id, StatusAssignedToSupplyChain, func(inv *Invoice) {
		inv.AssignedTo = assignee
		inv.SupplyChainNotes = notes
	})
}

func (s *Service) SendToFinance(ctx context.Context, sess access.Session, id uuid.UUID, notes string) (*Invoice, error) {
	return s.transition(ctx, sess, id, StatusSentToFinance, func(inv *Invoice) {
		inv.SupplyChainNotes = notes
	})
}

// MarkPaid records the payment. The payment date is required.
func (s *Service) MarkPaid(ctx context.Context, sess access.Session, id uuid.UUID, paymentDate time.Time, notes string) (*Invoice, error) {
	if paymentDate.IsZero() {
		return nil, fmt.Errorf("%w: payment date is required", ErrInvalidInput)
	}

	return s.transition(ctx, sess, id, StatusPaid, func(inv *Invoice) {
		inv.PaymentDate = &paymentDate
		inv.FinanceNotes = notes
	})
}

func (s *Service) transition(ctx context.Context, sess access.Session, id uuid.UUID, to Status, mutate func(*Invoice)) (*Invoice, error) {
	if err := access.Authorize(sess, access.ActionTransition); err != nil {
		return nil, err
	}

	inv, err := s.repo.GetInvoice(ctx, id)
	if err != nil {
		return nil, err
	}

	from := inv.Status
	if err := checkTransition(from, to); err != nil {
		return nil, err
	}

	inv.Status = to
	if mutate != nil {
		mutate(inv)
	}

	if err := s.repo.TransitionInvoice(ctx, inv, from); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "audit",
		"action", "invoice.transition",
		"invoice_id", inv.ID,
		"from", from,
		"to", to,
		"actor", sess.UserID,
	)

	return inv, nil
}

func (s *Service) Delete(ctx context.Context, sess access.Session, id uuid.UUID) error {
	if err := access.Authorize(sess, access.ActionDeleteInvoice); err != nil {
		return err
	}

	if err := s.repo.DeleteInvoice(ctx, id); err != nil {
		return err
	}

	slog.InfoContext(ctx, "audit", "action", "invoice.delete", "invoice_id", id, "actor", sess.UserID)

	return nil
}
