package cli

import (
	"fmt"

	"salesreport/internal/engine"
	"salesreport/internal/export"

	"github.com/spf13/cobra"
)

func newExportCmd(flags *globalFlags) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the report tables to an XLSX workbook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, opts, err := flags.setup(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			res, err := engine.Run(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if err := export.Save(out, res.Report, res.Records); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%d records, %d months)\n", out, len(res.Records), len(res.Report.Monthly))
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "sales_report.xlsx", "output workbook path")
	return cmd
}
