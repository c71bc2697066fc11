package importer_test

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/MrJamesThe3rd/invoicetracker/internal/importer"
	"github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
)

func TestCSVParser_Parse(t *testing.T) {
	type args struct {
		csvContent string
	}

	type testCase struct {
		name    string
		args    args
		wantLen int
		verify  func(t *testing.T, res *importer.Result)
		wantErr error
	}

	tests := []testCase{
		{
			name: "CommaSeparated",
			args: args{
				csvContent: "Invoice Number,Supplier,Amount,Received Date,Description,Department\n" +
					`INV-1,"Acme, Inc.","1,250.00",2024-03-01,Toner,IT` + "\n" +
					"INV-2,Globex,99.95,05/03/2024,,Finance\n",
			},
			wantLen: 2,
			verify: func(t *testing.T, res *importer.Result) {
				first := res.Invoices[0]
				assert.Equal(t, "INV-1", first.InvoiceNumber)
				assert.Equal(t, "Acme, Inc.", first.Supplier)
				assert.Equal(t, int64(125000), first.Amount)
				assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), first.ReceivedDate)
				assert.Equal(t, "IT", first.Department)

				second := res.Invoices[1]
				assert.Equal(t, int64(9995), second.Amount)
				assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), second.ReceivedDate)
				assert.Empty(t, res.Errors)
			},
		},
		{
			name: "SemicolonEuropeanWithPreamble",
			args: args{
				csvContent: "Supplier invoices export;;;\n" +
					"Generated;2024-03-31;;\n" +
					"\n" +
					"Invoice No;Vendor;Total;Invoice Date;Assignee\n" +
					"F-77;Société Générale;1.234,56;15.03.2024;Dana\n",
			},
			wantLen: 1,
			verify: func(t *testing.T, res *importer.Result) {
				inv := res.Invoices[0]
				assert.Equal(t, "Société Générale", inv.Supplier)
				assert.Equal(t, int64(123456), inv.Amount)
				assert.Equal(t, "Dana", inv.AssignedTo)
			},
		},
		{
			name: "RowErrorsAreReported",
			args: args{
				csvContent: "invoice_number,supplier,amount,received_date\n" +
					"A-1,Acme,10.00,2024-01-01\n" +
					",Acme,10.00,2024-01-02\n" +
					"A-3,Acme,ten,2024-01-03\n" +
					"A-4,Acme,10.00,yesterday\n" +
					",,,\n" +
					"A-5,Acme,-5.00,2024-01-05\n",
			},
			wantLen: 1,
			verify: func(t *testing.T, res *importer.Result) {
				require.Len(t, res.Errors, 4)

				rows := make([]int, len(res.Errors))
				for i, e := range res.Errors {
					rows[i] = e.Row
					assert.ErrorIs(t, e, invoice.ErrInvalidInput)
				}

				assert.Equal(t, []int{3, 4, 5, 7}, rows)
				assert.Contains(t, res.Errors[0].Error(), "row 3: ")
			},
		},
		{
			name: "NoHeader",
			args: args{
				csvContent: "foo,bar\n1,2\n",
			},
			wantErr: importer.ErrNoHeader,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importer.NewCSVParser().Parse(strings.NewReader(tt.args.csvContent))

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}

			require.NoError(t, err)
			assert.Len(t, got.Invoices, tt.wantLen)

			if tt.verify != nil {
				tt.verify(t, got)
			}
		})
	}
}

func TestCSVParser_Windows1252(t *testing.T) {
	// "Invoice Number;Supplier;Amount;Date\nF-1;Café Lda;5,00;01-02-2024\n" with é = 0xE9.
	var buf bytes.Buffer
	buf.WriteString("Invoice Number;Supplier;Amount;Date\nF-1;Caf")
	buf.WriteByte(0xE9)
	buf.WriteString(" Lda;5,00;01-02-2024\n")

	got, err := importer.NewCSVParser().Parse(&buf)
	require.NoError(t, err)
	require.Len(t, got.Invoices, 1)
	assert.Equal(t, "Café Lda", got.Invoices[0].Supplier)
	assert.Equal(t, time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC), got.Invoices[0].ReceivedDate)
}

func TestXLSXParser_Parse(t *testing.T) {
	f := excelize.NewFile()

	rows := [][]any{
		{"Invoice Number", "Supplier", "Amount", "Received Date"},
		{"X-1", "Initech", "42.10", "2024-04-02"},
		{"X-2", "", "1.00", "2024-04-03"},
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	require.NoError(t, f.Close())

	got, err := importer.NewService().Import(importer.FormatXLSX, buf)
	require.NoError(t, err)
	require.Len(t, got.Invoices, 1)
	assert.Equal(t, int64(4210), got.Invoices[0].Amount)
	require.Len(t, got.Errors, 1)
	assert.Equal(t, 3, got.Errors[0].Row)
}

func TestService_UnknownFormat(t *testing.T) {
	_, err := importer.NewService().Import(importer.Format("ods"), strings.NewReader(""))
	assert.Error(t, err)
}

func TestFormatFromFilename(t *testing.T) {
	assert.Equal(t, importer.FormatXLSX, importer.FormatFromFilename("/tmp/March.XLSX"))
	assert.Equal(t, importer.FormatCSV, importer.FormatFromFilename("march.csv"))
	assert.Equal(t, importer.FormatCSV, importer.FormatFromFilename("export"))
}

func TestService_FormatIsCaseInsensitive(t *testing.T) {
	got, err := importer.NewService().Import(importer.Format("CSV"),
		strings.NewReader("Invoice Number,Supplier,Amount,Received Date\nA-1,Acme,1.00,2024-01-01\n"))
	require.NoError(t, err)
	assert.Len(t, got.Invoices, 1)
}
