// Package cli implements the salesreport command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"salesreport/internal/config"
	"salesreport/internal/engine"
	"salesreport/internal/logging"

	"github.com/spf13/cobra"
)

// Version and BuildDate are set at build time with -ldflags.
var (
	Version   = "dev"
	BuildDate = "unknown"
)

// globalFlags are the persistent flags shared by every subcommand.
type globalFlags struct {
	configPath string
	dataPath   string
	cutoff     string
	quarter    string
	verbose    bool
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:   "salesreport",
		Short: "Quarterly sales report over a CSV of sales records",
		Long: `salesreport loads a CSV of sales records, removes duplicate rows and
computes monthly and per-category totals for one reporting quarter.

Example Usage:
  salesreport summary --quarter 2024-Q1
  salesreport export --out q1.xlsx --data ./sales_data.csv`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", config.DefaultPath, "path to the configuration file")
	pf.StringVar(&flags.dataPath, "data", "", "sales CSV path (overrides data_path)")
	pf.StringVar(&flags.cutoff, "cutoff", "", "exclusive cutoff date YYYY-MM-DD (overrides quarter)")
	pf.StringVar(&flags.quarter, "quarter", "", "reporting quarter, e.g. 2024-Q1")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(newSummaryCmd(flags), newExportCmd(flags), newVersionCmd())
	return root
}

// Execute runs the CLI and exits non-zero on failure.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, applies flag overrides and returns the pipeline
// options for one run. Logs go to stderr so stdout stays clean for output.
func (g *globalFlags) setup(stderr io.Writer) (*config.Config, engine.Options, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, engine.Options{}, err
	}
	if g.dataPath != "" {
		cfg.DataPath = g.dataPath
	}
	if g.cutoff != "" || g.quarter != "" {
		cfg.Cutoff, cfg.Quarter = g.cutoff, g.quarter
	}
	cutoff, err := cfg.CutoffDate()
	if err != nil {
		return nil, engine.Options{}, err
	}

	logCfg := cfg.Logging()
	logCfg.Output = stderr
	if g.verbose {
		logCfg.Level = "debug"
	}
	logger, err := logging.New(logCfg)
	if err != nil {
		return nil, engine.Options{}, err
	}
	slog.SetDefault(logger)

	return cfg, engine.Options{
		Path:        cfg.DataPath,
		Cutoff:      cutoff,
		PreviewRows: cfg.PreviewRows,
		Logger:      logging.WithComponent(logger, logging.ComponentCLI),
	}, nil
}
