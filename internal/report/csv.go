package report

import (
	"strconv"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

// CSV renders a comma-separated report. Text fields are always
// double-quoted; amount, day count and dates are written bare.
func CSV(invs []*invoice.Invoice, now time.Time) []byte {
	var b strings.Builder

	b.WriteString(strings.Join(Columns, ","))
	b.WriteString("\n")

	for _, r := range Rows(invs, now) {
		fields := []string{
			quote(r.InvoiceNumber),
			quote(r.Supplier),
			r.Amount,
			r.ReceivedDate,
			strconv.Itoa(r.DaysElapsed),
			quote(r.Status),
			quote(r.Description),
			quote(r.AssignedTo),
			r.PaymentDate,
		}

		b.WriteString(strings.Join(fields, ","))
		b.WriteString("\n")
	}

	return []byte(b.String())
}

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
