package models

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// MonthLayout is the year-month key format used by every aggregate.
const MonthLayout = "2006-01"

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

type SalesRecord struct {
	DateSold   time.Time       `json:"date_sold"`
	Category   string          `json:"category"`
	TotalSales decimal.Decimal `json:"total_sales"`
}

// Month returns the year-month key of the sale, e.g. "2024-01".
func (r SalesRecord) Month() string {
	return r.DateSold.Format(MonthLayout)
}

type MonthlyItem struct {
	Month string          `json:"month"`
	Total decimal.Decimal `json:"total_sales"`
}

// MonthlyTotals is ordered by month ascending.
type MonthlyTotals []MonthlyItem

// Get returns the total for month and whether the month is present.
func (m MonthlyTotals) Get(month string) (decimal.Decimal, bool) {
	for _, item := range m {
		if item.Month == month {
			return item.Total, true
		}
	}
	return decimal.Zero, false
}

type CategoryMonthRow struct {
	Month  string                     `json:"month"`
	Totals map[string]decimal.Decimal `json:"totals"`
}

// CategoryMonthlyTotals is a dense month x category table: every row carries
// an entry for every category in Categories.
type CategoryMonthlyTotals struct {
	Categories []string           `json:"categories"`
	Rows       []CategoryMonthRow `json:"rows"`
}

// Row returns the totals for month, or nil when the month is absent.
func (c CategoryMonthlyTotals) Row(month string) map[string]decimal.Decimal {
	for _, row := range c.Rows {
		if row.Month == month {
			return row.Totals
		}
	}
	return nil
}

type Summary struct {
	Records   int        `json:"records"`
	FirstDate *time.Time `json:"first_date"`
	LastDate  *time.Time `json:"last_date"`
}

// MarshalJSON writes dates as plain calendar dates.
func (r SalesRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		DateSold   string          `json:"date_sold"`
		Category   string          `json:"category"`
		TotalSales decimal.Decimal `json:"total_sales"`
	}{r.DateSold.Format(DateLayout), r.Category, r.TotalSales})
}

func (s Summary) MarshalJSON() ([]byte, error) {
	var first, last *string
	if s.FirstDate != nil {
		d := s.FirstDate.Format(DateLayout)
		first = &d
	}
	if s.LastDate != nil {
		d := s.LastDate.Format(DateLayout)
		last = &d
	}
	return json.Marshal(struct {
		Records   int     `json:"records"`
		FirstDate *string `json:"first_date"`
		LastDate  *string `json:"last_date"`
	}{s.Records, first, last})
}

type Report struct {
	RunID       string                `json:"run_id"`
	GeneratedAt time.Time             `json:"generated_at"`
	Source      string                `json:"source"`
	Cutoff      time.Time             `json:"cutoff"`
	Preview     []SalesRecord         `json:"preview"`
	Summary     Summary               `json:"summary"`
	Monthly     MonthlyTotals         `json:"monthly_sales"`
	ByCategory  CategoryMonthlyTotals `json:"category_monthly_sales"`
}

// MarshalJSON writes the cutoff as a calendar date.
func (r Report) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RunID       string                `json:"run_id"`
		GeneratedAt time.Time             `json:"generated_at"`
		Source      string                `json:"source"`
		Cutoff      string                `json:"cutoff"`
		Preview     []SalesRecord         `json:"preview"`
		Summary     Summary               `json:"summary"`
		Monthly     MonthlyTotals         `json:"monthly_sales"`
		ByCategory  CategoryMonthlyTotals `json:"category_monthly_sales"`
	}{r.RunID, r.GeneratedAt, r.Source, r.Cutoff.Format(DateLayout), r.Preview, r.Summary, r.Monthly, r.ByCategory})
}
