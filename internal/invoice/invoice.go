package invoice

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var (
	ErrNotFound          = errors.New("invoice not found")
	ErrInvalidInput      = errors.New("invalid invoice")
	ErrInvalidTransition = errors.New("invalid status transition")
)

// Status represents where an invoice sits in its processing lifecycle.
type Status string

const (
	StatusPending               Status = "pending"
	StatusAssignedToSupplyChain Status = "assigned_to_supply_chain"
	StatusSentToFinance         Status = "sent_to_finance"
	StatusPaid                  Status = "paid"
	StatusRejected              Status = "rejected"
	StatusApproved              Status = "approved"
)

// Statuses lists every valid status value.
var Statuses = []Status{
	StatusPending,
	StatusApproved,
	StatusAssignedToSupplyChain,
	StatusSentToFinance,
	StatusPaid,
	StatusRejected,
}

// ParseStatus validates s as a status value.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if Status(s) == st {
			return st, nil
		}
	}

	return "", fmt.Errorf("%w: unknown status %q", ErrInvalidInput, s)
}

// Invoice is a supplier invoice tracked from receipt to payment.
type Invoice struct {
	ID               uuid.UUID
	InvoiceNumber    string
	Supplier         string
	Amount           int64 // Amount in cents
	Description      string
	ReceivedDate     time.Time
	PaymentDate      *time.Time
	AssignedTo       string
	FinanceNotes     string
	SupplyChainNotes string
	Status           Status
	Department       string
	FileURL          string
	UserID           uuid.UUID
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Display is the derived presentation state of the invoice at now.
func (inv *Invoice) Display(now time.Time) Display {
	return StatusDisplay(inv.Status, inv.ReceivedDate, now)
}

// DaysElapsed is the number of whole days since the invoice was received.
func (inv *Invoice) DaysElapsed(now time.Time) int {
	return DaysElapsed(inv.ReceivedDate, now)
}

// IsOverdue reports whether the invoice is unpaid and at least OverdueDays old.
func (inv *Invoice) IsOverdue(now time.Time) bool {
	return inv.Status != StatusPaid && inv.DaysElapsed(now) >= OverdueDays
}

// Stats are the dashboard counters for a set of invoices.
type Stats struct {
	Total       int
	Pending     int
	Approved    int
	Paid        int
	TotalAmount int64
}

// ComputeStats folds invoices into dashboard counters.
func ComputeStats(invoices []*Invoice) Stats {
	var s Stats

	for _, inv := range invoices {
		s.Total++
		s.TotalAmount += inv.Amount

		switch inv.Status {
		case StatusPending:
			s.Pending++
		case StatusApproved:
			s.Approved++
		case StatusPaid:
			s.Paid++
		}
	}

	return s
}
