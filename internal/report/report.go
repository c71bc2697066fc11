// Package report renders invoice lists as CSV, HTML and XLSX documents.
// Every renderer takes the whole list and the reference time; output is a
// pure function of both.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

const dateLayout = "2006-01-02"

// Columns is the header shared by every report format.
var Columns = []string{
	"Invoice Number",
	"Supplier",
	"Amount",
	"Received Date",
	"Days Elapsed",
	"Status",
	"Description",
	"Assigned To",
	"Payment Date",
}

// Row is one invoice as it appears in a report at a given time.
type Row struct {
	InvoiceNumber string
	Supplier      string
	Amount        string
	ReceivedDate  string
	DaysElapsed   int
	Status        string
	Description   string
	AssignedTo    string
	PaymentDate   string
	// Class is "overdue", "paid" or empty.
	Class string
}

type Summary struct {
	Count       int
	TotalAmount string
	Paid        int
	Overdue     int
}

func Rows(invs []*invoice.Invoice, now time.Time) []Row {
	rows := make([]Row, 0, len(invs))

	for _, inv := range invs {
		row := Row{
			InvoiceNumber: inv.InvoiceNumber,
			Supplier:      inv.Supplier,
			Amount:        FormatAmount(inv.Amount),
			ReceivedDate:  inv.ReceivedDate.Format(dateLayout),
			DaysElapsed:   inv.DaysElapsed(now),
			Status:        inv.Display(now).Label,
			Description:   inv.Description,
			AssignedTo:    inv.AssignedTo,
		}

		if inv.PaymentDate != nil {
			row.PaymentDate = inv.PaymentDate.Format(dateLayout)
		}

		switch {
		case inv.Status == invoice.StatusPaid:
			row.Class = "paid"
		case inv.IsOverdue(now):
			row.Class = "overdue"
		}

		rows = append(rows, row)
	}

	return rows
}

func Summarize(invs []*invoice.Invoice, now time.Time) Summary {
	var total int64

	s := Summary{Count: len(invs)}

	for _, inv := range invs {
		total += inv.Amount

		if inv.Status == invoice.StatusPaid {
			s.Paid++
		}

		if inv.IsOverdue(now) {
			s.Overdue++
		}
	}

	s.TotalAmount = FormatAmount(total)

	return s
}

// FormatAmount renders an amount in cents with two decimal places.
func FormatAmount(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}
