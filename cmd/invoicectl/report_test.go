package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

func TestBuildFilter(t *testing.T) {
	f, err := buildFilter("sent_to_finance", "IT", "acme", "2024-03-01", "")
	require.NoError(t, err)

	require.NotNil(t, f.Status)
	assert.Equal(t, domain.StatusSentToFinance, *f.Status)
	require.NotNil(t, f.Department)
	assert.Equal(t, "IT", *f.Department)
	assert.Equal(t, "acme", f.Search)
	require.NotNil(t, f.ReceivedFrom)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), *f.ReceivedFrom)
	assert.Nil(t, f.ReceivedTo)

	_, err = buildFilter("", "", "", "03/01/2024", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRender(t *testing.T) {
	invs := []*domain.Invoice{{InvoiceNumber: "INV-9", Supplier: "Acme", Status: domain.StatusPaid}}
	now := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)

	data, err := render("csv", invs, now)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"INV-9"`)

	_, err = render("pdf", invs, now)
	assert.Error(t, err)
}
