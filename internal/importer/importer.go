package importer

import (
	"fmt"
	"io"

	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// RowError reports a data row that could not be turned into an invoice.
// Row is the 1-based line or sheet row number.
type RowError struct {
	Row int
	Err error
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Result holds the parsed invoices and the rows that were rejected.
type Result struct {
	Invoices []invoice.CreateParams
	Errors   []RowError
}

type Importer interface {
	Parse(r io.Reader) (*Result, error)
}
