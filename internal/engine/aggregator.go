package engine

import (
	"sort"
	"time"

	"salesreport/internal/models"

	"github.com/shopspring/decimal"
)

// monthSums groups records sold strictly before cutoff by year-month and
// category. Both cutoff and sale dates compare as calendar dates.
func monthSums(records []models.SalesRecord, cutoff time.Time) (map[string]decimal.Decimal, map[string]map[string]decimal.Decimal) {
	cutoff = DateOf(cutoff)
	months := make(map[string]decimal.Decimal)
	cells := make(map[string]map[string]decimal.Decimal)

	for _, r := range records {
		if !DateOf(r.DateSold).Before(cutoff) {
			continue
		}
		m := r.Month()
		months[m] = months[m].Add(r.TotalSales)

		byCat, ok := cells[m]
		if !ok {
			byCat = make(map[string]decimal.Decimal)
			cells[m] = byCat
		}
		byCat[r.Category] = byCat[r.Category].Add(r.TotalSales)
	}
	return months, cells
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MonthlyTotals sums TotalSales per calendar month for records sold before
// cutoff. Months without qualifying records are absent.
func MonthlyTotals(records []models.SalesRecord, cutoff time.Time) models.MonthlyTotals {
	months, _ := monthSums(records, cutoff)

	out := make(models.MonthlyTotals, 0, len(months))
	for _, m := range sortedKeys(months) {
		out = append(out, models.MonthlyItem{Month: m, Total: months[m]})
	}
	return out
}

// Categories lists every category observed in records, sorted.
func Categories(records []models.SalesRecord) []string {
	set := make(map[string]struct{})
	for _, r := range records {
		set[r.Category] = struct{}{}
	}
	return sortedKeys(set)
}

// CategoryMonthlyTotals returns a dense table over the months of
// MonthlyTotals and every category observed anywhere in records (including
// records past the cutoff). Missing combinations are zero.
func CategoryMonthlyTotals(records []models.SalesRecord, cutoff time.Time) models.CategoryMonthlyTotals {
	months, cells := monthSums(records, cutoff)
	categories := Categories(records)

	out := models.CategoryMonthlyTotals{
		Categories: categories,
		Rows:       make([]models.CategoryMonthRow, 0, len(months)),
	}
	for _, m := range sortedKeys(months) {
		totals := make(map[string]decimal.Decimal, len(categories))
		for _, c := range categories {
			totals[c] = cells[m][c]
		}
		out.Rows = append(out.Rows, models.CategoryMonthRow{Month: m, Totals: totals})
	}
	return out
}

// Summarize counts records and finds the first and last sale dates.
func Summarize(records []models.SalesRecord) models.Summary {
	s := models.Summary{Records: len(records)}
	if len(records) == 0 {
		return s
	}
	first, last := records[0].DateSold, records[0].DateSold
	for _, r := range records[1:] {
		if r.DateSold.Before(first) {
			first = r.DateSold
		}
		if r.DateSold.After(last) {
			last = r.DateSold
		}
	}
	s.FirstDate, s.LastDate = &first, &last
	return s
}
