package report

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Invoice Report</title>
<style>
body { font-family: sans-serif; margin: 24px; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ddd; padding: 6px 8px; text-align: left; }
th { background: #f4f4f4; }
tr.overdue { background: #fde8e8; }
tr.paid { background: #e6f6ea; }
.summary span { margin-right: 24px; }
</style>
</head>
<body>
<h1>Invoice Report</h1>
<p>Generated on {{.GeneratedOn}}</p>
<div class="summary">
<span>Total invoices: {{.Summary.Count}}</span>
<span>Total amount: {{.Summary.TotalAmount}}</span>
<span>Paid: {{.Summary.Paid}}</span>
<span>Overdue: {{.Summary.Overdue}}</span>
</div>
<table>
<thead>
<tr>{{range .Columns}}<th>{{.}}</th>{{end}}</tr>
</thead>
<tbody>
{{- range .Rows}}
<tr{{if .Class}} class="{{.Class}}"{{end}}><td>{{.InvoiceNumber}}</td><td>{{.Supplier}}</td><td>{{.Amount}}</td><td>{{.ReceivedDate}}</td><td>{{.DaysElapsed}}</td><td>{{.Status}}</td><td>{{.Description}}</td><td>{{.AssignedTo}}</td><td>{{.PaymentDate}}</td></tr>
{{- end}}
</tbody>
</table>
</body>
</html>
`))

// HTML renders a standalone document with a summary block followed by the
// invoice table. now is embedded as the generation timestamp.
func HTML(invs []*invoice.Invoice, now time.Time) ([]byte, error) {
	data := struct {
		GeneratedOn string
		Summary     Summary
		Columns     []string
		Rows        []Row
	}{
		GeneratedOn: now.Format("2006-01-02 15:04:05 MST"),
		Summary:     Summarize(invs, now),
		Columns:     Columns,
		Rows:        Rows(invs, now),
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("rendering html report: %w", err)
	}

	return buf.Bytes(), nil
}
