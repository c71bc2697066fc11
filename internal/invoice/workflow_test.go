package invoice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to invoice.Status
		want     bool
	}{
		{invoice.StatusPending, invoice.StatusApproved, true},
		{invoice.StatusPending, invoice.StatusAssignedToSupplyChain, true},
		{invoice.StatusPending, invoice.StatusPaid, false},
		{invoice.StatusApproved, invoice.StatusPaid, true},
		{invoice.StatusAssignedToSupplyChain, invoice.StatusAssignedToSupplyChain, true},
		{invoice.StatusAssignedToSupplyChain, invoice.StatusPaid, false},
		{invoice.StatusSentToFinance, invoice.StatusPaid, true},
		{invoice.StatusSentToFinance, invoice.StatusPending, false},
		{invoice.StatusRejected, invoice.StatusPending, true},
		{invoice.StatusRejected, invoice.StatusPaid, false},
		{invoice.StatusPaid, invoice.StatusPending, false},
		{invoice.StatusPaid, invoice.StatusRejected, false},
		{invoice.Status("bogus"), invoice.StatusPending, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.want, invoice.CanTransition(tt.from, tt.to))
		})
	}
}

func TestPaidIsTerminal(t *testing.T) {
	assert.Empty(t, invoice.NextStatuses(invoice.StatusPaid))

	for _, s := range invoice.Statuses {
		assert.False(t, invoice.CanTransition(invoice.StatusPaid, s), "paid -> %s", s)
	}
}

func TestNextStatuses_ReturnsCopy(t *testing.T) {
	next := invoice.NextStatuses(invoice.StatusRejected)
	require.Equal(t, []invoice.Status{invoice.StatusPending}, next)

	next[0] = invoice.StatusPaid
	assert.Equal(t, []invoice.Status{invoice.StatusPending}, invoice.NextStatuses(invoice.StatusRejected))
}

func TestParseStatus(t *testing.T) {
	for _, s := range invoice.Statuses {
		got, err := invoice.ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}

	_, err := invoice.ParseStatus("overdue")
	assert.ErrorIs(t, err, invoice.ErrInvalidInput)
}
