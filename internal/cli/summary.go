package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"salesreport/internal/engine"
	"salesreport/internal/models"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func newSummaryCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Print record summary, monthly totals and the category table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, opts, err := flags.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res, err := engine.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			p := message.NewPrinter(language.Make(cfg.Locale))
			return printReport(cmd.OutOrStdout(), p, res)
		},
	}
}

func amount(p *message.Printer, d decimal.Decimal) string {
	return p.Sprintf("%.2f", d.InexactFloat64())
}

func printReport(out io.Writer, p *message.Printer, res *engine.Result) error {
	r := res.Report
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(out, "Source: %s\n", r.Source)
	fmt.Fprintf(out, "Records: %s\n", p.Sprintf("%d", r.Summary.Records))
	if r.Summary.FirstDate != nil {
		fmt.Fprintf(out, "Period: %s to %s\n",
			r.Summary.FirstDate.Format(models.DateLayout), r.Summary.LastDate.Format(models.DateLayout))
	}
	fmt.Fprintf(out, "Cutoff: %s (exclusive)\n\n", r.Cutoff.Format(models.DateLayout))

	if len(r.Preview) > 0 {
		fmt.Fprintln(w, "Date_Sold\tCategory\tTotal_Sales\t")
		for _, rec := range r.Preview {
			fmt.Fprintf(w, "%s\t%s\t%s\t\n", rec.DateSold.Format(models.DateLayout), rec.Category, amount(p, rec.TotalSales))
		}
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "Month\tTotal_Sales\t")
	for _, item := range r.Monthly {
		fmt.Fprintf(w, "%s\t%s\t\n", item.Month, amount(p, item.Total))
	}
	fmt.Fprintln(w)

	table := r.ByCategory
	if len(table.Rows) > 0 {
		fmt.Fprint(w, "Month\t")
		for _, c := range table.Categories {
			fmt.Fprintf(w, "%s\t", c)
		}
		fmt.Fprintln(w)
		for _, row := range table.Rows {
			fmt.Fprintf(w, "%s\t", row.Month)
			for _, c := range table.Categories {
				fmt.Fprintf(w, "%s\t", amount(p, row.Totals[c]))
			}
			fmt.Fprintln(w)
		}
	}
	return w.Flush()
}
