package importer

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

var ErrNoHeader = errors.New("no invoice header row found")

type field int

const (
	fieldNumber field = iota
	fieldSupplier
	fieldAmount
	fieldReceived
	fieldDescription
	fieldDepartment
	fieldAssignedTo
)

// aliases maps normalised header names to the field they hold.
var aliases = map[string]field{
	"invoice number": fieldNumber,
	"invoice no":     fieldNumber,
	"invoice":        fieldNumber,
	"number":         fieldNumber,
	"reference":      fieldNumber,
	"supplier":       fieldSupplier,
	"supplier name":  fieldSupplier,
	"vendor":         fieldSupplier,
	"amount":         fieldAmount,
	"total":          fieldAmount,
	"invoice amount": fieldAmount,
	"received date":  fieldReceived,
	"received":       fieldReceived,
	"invoice date":   fieldReceived,
	"date":           fieldReceived,
	"description":    fieldDescription,
	"details":        fieldDescription,
	"department":     fieldDepartment,
	"dept":           fieldDepartment,
	"assigned to":    fieldAssignedTo,
	"assignee":       fieldAssignedTo,
}

var requiredFields = []field{fieldNumber, fieldSupplier, fieldAmount, fieldReceived}

// dateLayouts are tried in order. Day-first layouts come before
// month-first ones.
var dateLayouts = []string{
	"2006-01-02",
	"02/01/2006",
	"02-01-2006",
	"02.01.2006",
	"2006/01/02",
	"2 Jan 2006",
	"Jan 2, 2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// colIndex maps each recognised field to its column.
type colIndex map[field]int

func normalise(header string) string {
	h := strings.ToLower(strings.TrimSpace(header))
	h = strings.NewReplacer("_", " ", "#", "", ".", "").Replace(h)

	return strings.Join(strings.Fields(h), " ")
}

// detectHeader returns the first row whose cells name every required field.
func detectHeader(rows [][]string) (colIndex, int, error) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if f, ok := aliases[normalise(cell)]; ok {
				if _, seen := cols[f]; !seen {
					cols[f] = i
				}
			}
		}

		if hasRequired(cols) {
			return cols, rowIdx, nil
		}
	}

	return nil, 0, ErrNoHeader
}

func hasRequired(cols colIndex) bool {
	for _, f := range requiredFields {
		if _, ok := cols[f]; !ok {
			return false
		}
	}

	return true
}

// parseRows converts data rows. firstRowNum is the 1-based number of the
// first data row in the source.
func parseRows(cols colIndex, rows [][]string, firstRowNum int) *Result {
	res := &Result{}

	for i, row := range rows {
		rowNum := firstRowNum + i

		if blank(row) {
			continue
		}

		params, err := parseRow(cols, row)
		if err != nil {
			res.Errors = append(res.Errors, RowError{Row: rowNum, Err: err})
			continue
		}

		res.Invoices = append(res.Invoices, params)
	}

	return res
}

func parseRow(cols colIndex, row []string) (invoice.CreateParams, error) {
	p := invoice.CreateParams{
		InvoiceNumber: cell(row, cols, fieldNumber),
		Supplier:      cell(row, cols, fieldSupplier),
		Description:   cell(row, cols, fieldDescription),
		Department:    cell(row, cols, fieldDepartment),
		AssignedTo:    cell(row, cols, fieldAssignedTo),
	}

	if raw := cell(row, cols, fieldAmount); raw != "" {
		amount, err := invoice.ParseAmount(raw)
		if err != nil {
			return p, err
		}

		p.Amount = amount
	}

	if raw := cell(row, cols, fieldReceived); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return p, err
		}

		p.ReceivedDate = date
	}

	return p, p.Validate()
}

func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: unrecognised date %q", invoice.ErrInvalidInput, s)
}

func cell(row []string, cols colIndex, f field) string {
	idx, ok := cols[f]
	if !ok || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}

	return true
}
