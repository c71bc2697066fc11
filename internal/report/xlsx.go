package report

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

const (
	InvoicesSheet = "Invoices"
	SummarySheet  = "Summary"
)

// XLSX renders a workbook with an invoice sheet and a summary sheet.
func XLSX(invs []*invoice.Invoice, now time.Time) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", InvoicesSheet); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}

	if err := f.SetSheetRow(InvoicesSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("writing header: %w", err)
	}

	for i, r := range Rows(invs, now) {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}

		values := []any{
			r.InvoiceNumber,
			r.Supplier,
			float64(invs[i].Amount) / 100,
			r.ReceivedDate,
			r.DaysElapsed,
			r.Status,
			r.Description,
			r.AssignedTo,
			r.PaymentDate,
		}

		if err := f.SetSheetRow(InvoicesSheet, cell, &values); err != nil {
			return nil, fmt.Errorf("writing row %d: %w", i+1, err)
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return nil, fmt.Errorf("creating summary sheet: %w", err)
	}

	s := Summarize(invs, now)
	summary := [][]any{
		{"Report Date", now.Format(dateLayout)},
		{"Total Invoices", s.Count},
		{"Total Amount", s.TotalAmount},
		{"Paid", s.Paid},
		{"Overdue", s.Overdue},
	}

	for i, row := range summary {
		if err := f.SetSheetRow(SummarySheet, fmt.Sprintf("A%d", i+1), &row); err != nil {
			return nil, fmt.Errorf("writing summary: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("writing workbook: %w", err)
	}

	return buf.Bytes(), nil
}
