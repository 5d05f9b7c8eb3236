package engine

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"salesreport/internal/models"

	"github.com/shopspring/decimal"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales_data.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func rec(date, category, total string) models.SalesRecord {
	d, err := time.Parse(models.DateLayout, date)
	if err != nil {
		panic(err)
	}
	return models.SalesRecord{DateSold: d, Category: category, TotalSales: decimal.RequireFromString(total)}
}

func TestLoad(t *testing.T) {
	path := writeCSV(t, `Date_Sold,Month,Category,Total_Sales
2024-01-05,2024-01,Clothing,100.00
2024-01-05,2024-01,Clothing,100.00
2024-02-11,2024-02,Grocery,42.5
2024-03-30,2024-03,Toys,19.99
`)

	// 1. Run Loader
	records, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}

	// 2. Assertions

	// Duplicate row dropped, input order kept
	if len(records) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(records))
	}
	if records[0].Category != "Clothing" || records[1].Category != "Grocery" || records[2].Category != "Toys" {
		t.Errorf("Unexpected order: %+v", records)
	}

	// Row 0 Check
	if !records[0].TotalSales.Equal(decimal.NewFromInt(100)) {
		t.Errorf("Row 0 Total: Expected 100, got %s", records[0].TotalSales)
	}
	want := time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC)
	if !records[0].DateSold.Equal(want) {
		t.Errorf("Row 0 Date: Expected %v, got %v", want, records[0].DateSold)
	}

	// Amount precision kept
	if records[2].TotalSales.String() != "19.99" {
		t.Errorf("Row 2 Total: Expected 19.99, got %s", records[2].TotalSales)
	}
}

func TestLoadDuplicatesComparedAcrossAllColumns(t *testing.T) {
	path := writeCSV(t, `Date_Sold,Category,Total_Sales,Store
2024-01-05,Clothing,100,North
2024-01-05,Clothing,100.0,North
2024-01-05,Clothing,100,South
`)

	records, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	// Rows 1 and 2 are equal by value; row 3 differs in Store.
	if len(records) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(records))
	}
}

func TestLoadDuplicatesComparedAfterNormalizing(t *testing.T) {
	records, err := Read(strings.NewReader("Date_Sold,Category,Total_Sales\n" +
		"2024-01-05,Toys,100\n" +
		"2024-01-05,Toys ,100\n" +
		"2024-01-05T00:00:00Z,Toys,100.00\n" +
		"2024-01-05 09:30:00,Toys,100\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 row, got %d: %+v", len(records), records)
	}
	if got := Clean(records); !reflect.DeepEqual(got, records) {
		t.Errorf("Clean changed loaded records:\n%v\n%v", records, got)
	}
}

func TestLoadTimestampedDates(t *testing.T) {
	records, err := Read(strings.NewReader("Category,Total_Sales,Date_Sold\nToys,5,2024-03-31 23:59:59\nToys,6,2024-02-01T08:00:00Z\n"))
	if err != nil {
		t.Fatal(err)
	}
	if got := records[0].DateSold; !got.Equal(time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected 2024-03-31, got %v", got)
	}
	if got := records[1].Month(); got != "2024-02" {
		t.Errorf("Expected month 2024-02, got %s", got)
	}
}

func TestLoadHeaderWithBOM(t *testing.T) {
	records, err := Read(strings.NewReader("\ufeffDate_Sold,Category,Total_Sales\n2024-01-01,Toys,1\n"))
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(records))
	}
}

func TestLoadSourceNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.csv"))
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("Expected ErrSourceNotFound, got %v", err)
	}
	if errors.Is(err, ErrParse) {
		t.Error("Source not found must not match ErrParse")
	}
}

func TestLoadParseFailures(t *testing.T) {
	cases := []struct {
		name   string
		csv    string
		line   int
		column string
	}{
		{"bad date", "Date_Sold,Category,Total_Sales\n2024-01-01,Toys,1\n2024-13-45,Toys,2\n", 3, ColDateSold},
		{"empty date", "Date_Sold,Category,Total_Sales\n,Toys,1\n", 2, ColDateSold},
		{"bad amount", "Date_Sold,Category,Total_Sales\n2024-01-01,Toys,abc\n", 2, ColTotalSales},
		{"negative amount", "Date_Sold,Category,Total_Sales\n2024-01-01,Toys,-3\n", 2, ColTotalSales},
		{"missing column", "Date_Sold,Category\n2024-01-01,Toys\n", 1, ColTotalSales},
		{"empty file", "", 1, ""},
		{"ragged row", "Date_Sold,Category,Total_Sales\n2024-01-01,Toys\n", 2, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeCSV(t, tc.csv))
			if !errors.Is(err, ErrParse) {
				t.Fatalf("Expected ErrParse, got %v", err)
			}
			var pe *ParseError
			if !errors.As(err, &pe) {
				t.Fatalf("Expected *ParseError, got %T", err)
			}
			if pe.Line != tc.line || pe.Column != tc.column {
				t.Errorf("Expected line %d column %q, got line %d column %q", tc.line, tc.column, pe.Line, pe.Column)
			}
		})
	}
}

func TestClean(t *testing.T) {
	// Scenario: two identical records collapse to one
	records := []models.SalesRecord{
		rec("2024-01-05", "Clothing", "100"),
		rec("2024-01-05", "Clothing", "100"),
	}
	cleaned := Clean(records)
	if len(cleaned) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(cleaned))
	}
	if len(records) != 2 {
		t.Error("Clean must not modify its input")
	}
}

func TestCleanIdempotent(t *testing.T) {
	records := []models.SalesRecord{
		rec("2024-01-05", "Clothing", "100"),
		rec("2024-01-06", "Clothing", "100"),
		rec("2024-01-05", "Clothing", "100.00"),
		rec("2024-01-05", "Toys", "100"),
		rec("2024-01-06", "Clothing", "100"),
	}

	once := Clean(records)
	if len(once) > len(records) {
		t.Fatalf("Clean grew the set: %d > %d", len(once), len(records))
	}
	if len(once) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(once))
	}
	twice := Clean(once)
	if !reflect.DeepEqual(once, twice) {
		t.Errorf("Clean is not idempotent:\n%v\n%v", once, twice)
	}
}

func TestFieldParsers(t *testing.T) {
	d, err := parseDate(" 2023-12-01 ")
	if err != nil || d.Format(models.MonthLayout) != "2023-12" {
		t.Errorf("parseDate failed: %v %v", d, err)
	}

	if _, err := parseDate("01/12/2023"); err == nil {
		t.Error("parseDate accepted a non-ISO date")
	}

	a, err := parseAmount("123.45")
	if err != nil || a.String() != "123.45" {
		t.Errorf("parseAmount failed: %v %v", a, err)
	}

	if _, err := parseAmount(""); err == nil {
		t.Error("parseAmount accepted an empty amount")
	}
}
