package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/invoicetracker/internal/functions"
	"github.com/MrJamesThe3rd/invoicetracker/internal/notify"
)

func newNotifyCmd(a *app) *cobra.Command {
	var as string

	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Trigger e-mail jobs on the functions backend",
	}

	cmd.PersistentFlags().StringVar(&as, "as", "", "email of the user to act as")

	service := func() *notify.Service {
		fn := functions.NewClient(a.cfg.Functions.BaseURL, a.cfg.Functions.APIKey, a.cfg.Functions.Timeout)
		return notify.NewService(fn)
	}

	overdue := &cobra.Command{
		Use:   "overdue",
		Short: "E-mail overdue notices for unpaid invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.sessionFor(cmd.Context(), as)
			if err != nil {
				return err
			}

			msg, err := service().SendOverdueNotices(cmd.Context(), sess)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), msg)

			return nil
		},
	}

	var period, format string

	report := &cobra.Command{
		Use:     "report",
		Short:   "E-mail the periodic invoice report",
		Example: `  invoicectl notify report --as admin@example.com --period monthly --format excel`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			sess, err := a.sessionFor(cmd.Context(), as)
			if err != nil {
				return err
			}

			n, err := service().SendReport(cmd.Context(), sess, notify.Period(period), notify.Format(format))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%d e-mails sent\n", n)

			return nil
		},
	}

	report.Flags().StringVar(&period, "period", string(notify.PeriodWeekly), "weekly or monthly")
	report.Flags().StringVar(&format, "format", string(notify.FormatExcel), "excel or pdf")

	cmd.AddCommand(overdue, report)

	return cmd
}
