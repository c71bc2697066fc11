package invoice

import (
	"time"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/report"
)

type invoiceResponse struct {
	ID               uuid.UUID        `json:"id"`
	InvoiceNumber    string           `json:"invoice_number"`
	Supplier         string           `json:"supplier"`
	Amount           int64            `json:"amount"`
	AmountDisplay    string           `json:"amount_display"`
	Description      string           `json:"description"`
	ReceivedDate     string           `json:"received_date"`
	PaymentDate      *string          `json:"payment_date,omitempty"`
	AssignedTo       string           `json:"assigned_to,omitempty"`
	FinanceNotes     string           `json:"finance_notes,omitempty"`
	SupplyChainNotes string           `json:"supply_chain_notes,omitempty"`
	Status           invoice.Status   `json:"status"`
	DisplayStatus    string           `json:"display_status"`
	Severity         invoice.Severity `json:"severity"`
	DaysElapsed      int              `json:"days_elapsed"`
	Department       string           `json:"department,omitempty"`
	FileURL          string           `json:"file_url,omitempty"`
	UserID           uuid.UUID        `json:"user_id"`
	CreatedAt        time.Time        `json:"created_at"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// toResponse derives the display fields at now; they are never read back.
func toResponse(inv *invoice.Invoice, now time.Time) invoiceResponse {
	d := inv.Display(now)

	resp := invoiceResponse{
		ID:               inv.ID,
		InvoiceNumber:    inv.InvoiceNumber,
		Supplier:         inv.Supplier,
		Amount:           inv.Amount,
		AmountDisplay:    report.FormatAmount(inv.Amount),
		Description:      inv.Description,
		ReceivedDate:     inv.ReceivedDate.Format(time.DateOnly),
		AssignedTo:       inv.AssignedTo,
		FinanceNotes:     inv.FinanceNotes,
		SupplyChainNotes: inv.SupplyChainNotes,
		Status:           inv.Status,
		DisplayStatus:    d.Label,
		Severity:         d.Severity,
		DaysElapsed:      inv.DaysElapsed(now),
		Department:       inv.Department,
		FileURL:          inv.FileURL,
		UserID:           inv.UserID,
		CreatedAt:        inv.CreatedAt,
		UpdatedAt:        inv.UpdatedAt,
	}

	if inv.PaymentDate != nil {
		resp.PaymentDate = new(inv.PaymentDate.Format(time.DateOnly))
	}

	return resp
}

func toResponseList(invs []*invoice.Invoice, now time.Time) []invoiceResponse {
	resp := make([]invoiceResponse, len(invs))
	for i, inv := range invs {
		resp[i] = toResponse(inv, now)
	}

	return resp
}

type statsResponse struct {
	Total         int    `json:"total"`
	Pending       int    `json:"pending"`
	Approved      int    `json:"approved"`
	Paid          int    `json:"paid"`
	TotalAmount   int64  `json:"total_amount"`
	AmountDisplay string `json:"amount_display"`
}

func toStatsResponse(s invoice.Stats) statsResponse {
	return statsResponse{
		Total:         s.Total,
		Pending:       s.Pending,
		Approved:      s.Approved,
		Paid:          s.Paid,
		TotalAmount:   s.TotalAmount,
		AmountDisplay: report.FormatAmount(s.TotalAmount),
	}
}
