package view

import (
	"context"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	"github.com/MrJamesThe3rd/invoicetracker/internal/report"
)

const dbTimeout = 5 * time.Second

func FormatAmount(cents int64) string {
	return report.FormatAmount(cents)
}

// FormatDate formats a time.Time into YYYY-MM-DD.
func FormatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.Format("2006-01-02")
}

// DbCtx returns a context with a standard timeout for database operations.
func DbCtx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), dbTimeout)
}

var severityColors = map[invoice.Severity]lipgloss.Color{
	invoice.SeverityNormal:     lipgloss.Color("252"),
	invoice.SeverityInProgress: lipgloss.Color("39"),
	invoice.SeverityAlert:      lipgloss.Color("214"),
	invoice.SeverityOverdue:    lipgloss.Color("196"),
	invoice.SeverityPaid:       lipgloss.Color("46"),
}

// RenderDisplay colours a status label by its severity.
func RenderDisplay(d invoice.Display) string {
	return lipgloss.NewStyle().Foreground(severityColors[d.Severity]).Render(d.Label)
}
