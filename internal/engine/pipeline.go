package engine

import (
	"context"
	"log/slog"
	"time"

	"salesreport/internal/models"

	"github.com/google/uuid"
)

// DefaultPreviewRows matches the head of the cleaned data shown above the report.
const DefaultPreviewRows = 5

type Options struct {
	Path        string
	Cutoff      time.Time
	PreviewRows int
	Logger      *slog.Logger
}

// Result is one report generation: the cleaned records and everything derived
// from them.
type Result struct {
	Records []models.SalesRecord
	Report  *models.Report
}

// Run loads, cleans and aggregates the source once. Nothing is cached between
// runs; a failed load returns no report.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	t0 := time.Now()

	records, dropped, err := load(opts.Path)
	if err != nil {
		logger.ErrorContext(ctx, "load failed", "path", opts.Path, "error", err)
		return nil, err
	}
	logger.DebugContext(ctx, "source loaded",
		"path", opts.Path, "rows", len(records), "duplicates_dropped", dropped)

	report := Build(records, opts.Cutoff, opts.PreviewRows)
	report.Source = opts.Path

	logger.InfoContext(ctx, "report generated",
		"run_id", report.RunID,
		"rows", len(records),
		"months", len(report.Monthly),
		"categories", len(report.ByCategory.Categories),
		"cutoff", report.Cutoff.Format(models.DateLayout),
		"duration", time.Since(t0))

	return &Result{Records: records, Report: report}, nil
}

// Build derives a report from an already cleaned record set.
func Build(records []models.SalesRecord, cutoff time.Time, previewRows int) *models.Report {
	if previewRows <= 0 {
		previewRows = DefaultPreviewRows
	}
	n := min(len(records), previewRows)
	preview := make([]models.SalesRecord, n)
	copy(preview, records[:n])

	return &models.Report{
		RunID:       uuid.NewString(),
		GeneratedAt: time.Now().UTC(),
		Cutoff:      DateOf(cutoff),
		Preview:     preview,
		Summary:     Summarize(records),
		Monthly:     MonthlyTotals(records, cutoff),
		ByCategory:  CategoryMonthlyTotals(records, cutoff),
	}
}
