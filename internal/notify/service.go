package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/MrJamesThe3rd/invoicetracker/internal/access"
)

const (
	fnGenerateReport = "generate-report"
	fnOverdueEmail   = "send-supply-chain-email"
)

var ErrInvalidInput = errors.New("invalid report request")

type Period string

const (
	PeriodWeekly  Period = "weekly"
	PeriodMonthly Period = "monthly"
)

type Format string

const (
	FormatExcel Format = "excel"
	FormatPDF   Format = "pdf"
)

//go:generate mockgen -source=service.go -destination=invoker_mock.go -package=notify
type Invoker interface {
	Invoke(ctx context.Context, name string, req, resp any) error
}

// Service triggers the e-mail jobs run by the remote functions backend.
type Service struct {
	fn Invoker
}

func NewService(fn Invoker) *Service {
	return &Service{fn: fn}
}

// SendReport asks the backend to e-mail a periodic report and returns the
// number of e-mails it sent.
func (s *Service) SendReport(ctx context.Context, sess access.Session, period Period, format Format) (int, error) {
	if err := access.Authorize(sess, access.ActionSendReports); err != nil {
		return 0, err
	}

	if period != PeriodWeekly && period != PeriodMonthly {
		return 0, fmt.Errorf("%w: unknown period %q", ErrInvalidInput, period)
	}

	if format != FormatExcel && format != FormatPDF {
		return 0, fmt.Errorf("%w: unknown format %q", ErrInvalidInput, format)
	}

	req := struct {
		Type   Period `json:"type"`
		Format Format `json:"format"`
	}{Type: period, Format: format}

	var resp struct {
		EmailsSent int `json:"emails_sent"`
	}

	if err := s.fn.Invoke(ctx, fnGenerateReport, req, &resp); err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "audit",
		"action", "report.send",
		"period", period,
		"format", format,
		"emails_sent", resp.EmailsSent,
		"actor", sess.UserID,
	)

	return resp.EmailsSent, nil
}

// SendOverdueNotices asks the backend to e-mail supply chain about overdue
// invoices and returns its status message.
func (s *Service) SendOverdueNotices(ctx context.Context, sess access.Session) (string, error) {
	if err := access.Authorize(sess, access.ActionSendReports); err != nil {
		return "", err
	}

	var resp struct {
		Message string `json:"message"`
	}

	if err := s.fn.Invoke(ctx, fnOverdueEmail, struct{}{}, &resp); err != nil {
		return "", err
	}

	if resp.Message == "" {
		resp.Message = "Overdue invoice notifications have been sent"
	}

	slog.InfoContext(ctx, "audit", "action", "report.overdue_notices", "actor", sess.UserID)

	return resp.Message, nil
}
