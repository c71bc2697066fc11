package invoice

import (
	"strings"
	"time"
)

const (
	AlertDays   = 10
	OverdueDays = 20
)

// Severity is the visual treatment of a display label.
type Severity string

const (
	SeverityNormal     Severity = "normal"
	SeverityInProgress Severity = "in_progress"
	SeverityAlert      Severity = "alert"
	SeverityOverdue    Severity = "overdue"
	SeverityPaid       Severity = "paid"
)

// Display is the user-facing label derived from status and elapsed days.
// It is never stored and never written back to the status field.
type Display struct {
	Label    string
	Severity Severity
}

// DaysElapsed returns floor((now - received) / 24h).
func DaysElapsed(received, now time.Time) int {
	d := now.Sub(received)
	days := int(d / (24 * time.Hour))

	// Integer division truncates toward zero; floor for receipts in the future.
	if d < 0 && d%(24*time.Hour) != 0 {
		days--
	}

	return days
}

// StatusDisplay derives the label for status at now.
func StatusDisplay(status Status, received, now time.Time) Display {
	if status == StatusPaid {
		return Display{Label: "Paid", Severity: SeverityPaid}
	}

	if status == StatusSentToFinance || status == StatusAssignedToSupplyChain {
		return Display{Label: status.Label(), Severity: SeverityInProgress}
	}

	days := DaysElapsed(received, now)

	switch {
	case days >= OverdueDays:
		return Display{Label: "Overdue", Severity: SeverityOverdue}
	case days >= AlertDays:
		return Display{Label: "Alert", Severity: SeverityAlert}
	}

	return Display{Label: status.Label(), Severity: SeverityNormal}
}

// Label is the raw status upper-cased with underscores as spaces,
// e.g. "SENT TO FINANCE".
func (s Status) Label() string {
	return strings.ToUpper(strings.ReplaceAll(string(s), "_", " "))
}
