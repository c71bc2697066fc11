package main

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/invoicetracker/internal/http/invoice"
	domain "github.com/MrJamesThe3rd/invoicetracker/internal/invoice"
	invoiceStore "github.com/MrJamesThe3rd/invoicetracker/internal/invoice/store"
	"github.com/MrJamesThe3rd/invoicetracker/internal/report"
)

func newReportCmd(a *app) *cobra.Command {
	var (
		as, format, output string
		status, department string
		search, from, to   string
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write an invoice report to a file or stdout",
		Example: `  invoicectl report --as finance@example.com --format xlsx --from 2024-03-01 --to 2024-03-31 -o march.xlsx
  invoicectl report --as finance@example.com --status pending`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.sessionFor(cmd.Context(), as)
			if err != nil {
				return err
			}

			filter, err := buildFilter(status, department, search, from, to)
			if err != nil {
				return err
			}

			invs, err := domain.NewService(invoiceStore.New(a.db)).List(cmd.Context(), sess, filter)
			if err != nil {
				return err
			}

			data, err := render(format, invs, time.Now())
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %d invoices to %s\n", len(invs), output)

			return nil
		},
	}

	cmd.Flags().StringVar(&as, "as", "", "email of the user to act as")
	cmd.Flags().StringVar(&format, "format", "csv", "csv, html or xlsx")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVar(&status, "status", "", "only invoices with this status")
	cmd.Flags().StringVar(&department, "department", "", "only invoices of this department")
	cmd.Flags().StringVar(&search, "search", "", "free-text search")
	cmd.Flags().StringVar(&from, "from", "", "received on or after (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "received on or before (YYYY-MM-DD)")

	return cmd
}

func buildFilter(status, department, search, from, to string) (domain.ListFilter, error) {
	return invoice.FilterFromValues(url.Values{
		"status":     {status},
		"department": {department},
		"search":     {search},
		"from":       {from},
		"to":         {to},
	})
}

func render(format string, invs []*domain.Invoice, now time.Time) ([]byte, error) {
	switch format {
	case "csv":
		return report.CSV(invs, now), nil
	case "html":
		return report.HTML(invs, now)
	case "xlsx":
		return report.XLSX(invs, now)
	}

	return nil, fmt.Errorf("unknown report format %q", format)
}
