package supplier

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

var (
	ErrNotFound     = errors.New("supplier alias not found")
	ErrInvalidInput = errors.New("invalid supplier alias")
)

// Alias maps supplier text containing Pattern to the Canonical name.
type Alias struct {
	ID        uuid.UUID
	Pattern   string
	Canonical string
	CreatedAt time.Time
}

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=supplier
type Repository interface {
	FindMatch(ctx context.Context, raw string) (string, error)
	CreateAlias(ctx context.Context, a *Alias) error
	ListAliases(ctx context.Context) ([]*Alias, error)
	DeleteAlias(ctx context.Context, id uuid.UUID) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve returns the canonical name for raw, or raw trimmed when no alias
// matches.
func (s *Service) Resolve(ctx context.Context, raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	canonical, err := s.repo.FindMatch(ctx, raw)
	if err != nil {
		return "", err
	}

	if canonical == "" {
		return raw, nil
	}

	return canonical, nil
}

// ResolveAll rewrites the supplier of every param in place.
func (s *Service) ResolveAll(ctx context.Context, params []invoice.CreateParams) error {
	for i := range params {
		name, err := s.Resolve(ctx, params[i].Supplier)
		if err != nil {
			return fmt.Errorf("resolving supplier %q: %w", params[i].Supplier, err)
		}

		params[i].Supplier = name
	}

	return nil
}

func (s *Service) List(ctx context.Context, sess access.Session) ([]*Alias, error) {
	if err := access.Authorize(sess, access.ActionViewInvoices); err != nil {
		return nil, err
	}

	return s.repo.ListAliases(ctx)
}

// Learn remembers that supplier text containing pattern means canonical.
func (s *Service) Learn(ctx context.Context, sess access.Session, pattern, canonical string) (*Alias, error) {
	if err := access.Authorize(sess, access.ActionEditInvoice); err != nil {
		return nil, err
	}

	a := &Alias{Pattern: strings.TrimSpace(pattern), Canonical: strings.TrimSpace(canonical)}
	if a.Pattern == "" || a.Canonical == "" {
		return nil, fmt.Errorf("%w: pattern and canonical name are required", ErrInvalidInput)
	}

	if err := s.repo.CreateAlias(ctx, a); err != nil {
		return nil, err
	}

	return a, nil
}

func (s *Service) Forget(ctx context.Context, sess access.Session, id uuid.UUID) error {
	if err := access.Authorize(sess, access.ActionEditInvoice); err != nil {
		return err
	}

	return s.repo.DeleteAlias(ctx, id)
}
