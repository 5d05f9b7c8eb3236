package engine

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"

	"salesreport/internal/models"

	"github.com/shopspring/decimal"
	"github.com/zeebo/xxh3"
)

// Required input columns.
const (
	ColDateSold   = "Date_Sold"
	ColCategory   = "Category"
	ColTotalSales = "Total_Sales"
)

var (
	// ErrSourceNotFound is returned by Load when the input path does not exist.
	ErrSourceNotFound = errors.New("source not found")
	// ErrParse matches every *ParseError.
	ErrParse = errors.New("parse failure")

	errMissingHeader = errors.New("missing header row")
	errMissingColumn = errors.New("missing required column")
	errNegative      = errors.New("negative amount")
)

// ParseError reports the input line and column that could not be interpreted.
// Line is 1-based and counts the header row.
type ParseError struct {
	Line   int
	Column string
	Value  string
	Err    error
}

func (e *ParseError) Error() string {
	switch {
	case e.Column == "":
		return fmt.Sprintf("line %d: %v", e.Line, e.Err)
	case e.Value == "" && errors.Is(e.Err, errMissingColumn):
		return fmt.Sprintf("line %d: %v %q", e.Line, e.Err, e.Column)
	default:
		return fmt.Sprintf("line %d: column %s: cannot parse %q: %v", e.Line, e.Column, e.Value, e.Err)
	}
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

// --- 1. FIELD PARSERS ---

var dateLayouts = []string{
	models.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	time.RFC3339Nano,
}

// parseDate parses "2024-01-05" (and timestamped variants) into the calendar
// date at UTC midnight.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return DateOf(t), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// parseAmount parses "123.45" keeping every stored digit.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, errNegative
	}
	return d, nil
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// --- 2. LOADER ---

// Load reads the sales CSV at path, drops rows that duplicate an earlier row
// in every column and parses the date and amount columns. Any unparseable row
// aborts the whole load.
func Load(path string) ([]models.SalesRecord, error) {
	records, _, err := load(path)
	return records, err
}

func load(path string) ([]models.SalesRecord, int, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, 0, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, 0, fmt.Errorf("open source: %w", err)
	}
	defer f.Close()

	records, dropped, err := read(f)
	if err != nil {
		return nil, 0, fmt.Errorf("load %s: %w", path, err)
	}
	return records, dropped, nil
}

// Read is Load for an already opened source.
func Read(r io.Reader) ([]models.SalesRecord, error) {
	records, _, err := read(r)
	return records, err
}

type columnIndex struct {
	date, category, total int
}

func read(r io.Reader) ([]models.SalesRecord, int, error) {
	cr := csv.NewReader(bufio.NewReader(r))
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, 0, &ParseError{Line: 1, Err: errMissingHeader}
	}
	if err != nil {
		return nil, 0, csvError(err)
	}
	idx, err := indexColumns(header)
	if err != nil {
		return nil, 0, err
	}

	records := make([]models.SalesRecord, 0, 1024)
	seen := make(map[xxh3.Uint128]struct{})
	dropped := 0

	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, csvError(err)
		}
		line, _ := cr.FieldPos(0)

		rec, err := parseRow(row, idx, line)
		if err != nil {
			return nil, 0, err
		}

		key := xxh3.HashString128(rowKey(rec, row, idx))
		if _, dup := seen[key]; dup {
			dropped++
			continue
		}
		seen[key] = struct{}{}
		records = append(records, rec)
	}
	return records, dropped, nil
}

// rowKey identifies a row by its parsed record plus every extra column, so
// rows that normalize to the same record with equal extras are duplicates.
func rowKey(rec models.SalesRecord, row []string, idx columnIndex) string {
	var b strings.Builder
	b.WriteString(recordKey(rec))
	for i, v := range row {
		if i == idx.date || i == idx.category || i == idx.total {
			continue
		}
		b.WriteString("\x1f")
		b.WriteString(v)
	}
	return b.String()
}

func indexColumns(header []string) (columnIndex, error) {
	pos := make(map[string]int, len(header))
	for i, name := range header {
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		pos[strings.TrimSpace(name)] = i
	}

	var idx columnIndex
	for _, c := range []struct {
		name string
		dst  *int
	}{
		{ColDateSold, &idx.date},
		{ColCategory, &idx.category},
		{ColTotalSales, &idx.total},
	} {
		i, ok := pos[c.name]
		if !ok {
			return idx, &ParseError{Line: 1, Column: c.name, Err: errMissingColumn}
		}
		*c.dst = i
	}
	return idx, nil
}

func parseRow(row []string, idx columnIndex, line int) (models.SalesRecord, error) {
	date, err := parseDate(row[idx.date])
	if err != nil {
		return models.SalesRecord{}, &ParseError{Line: line, Column: ColDateSold, Value: row[idx.date], Err: err}
	}
	total, err := parseAmount(row[idx.total])
	if err != nil {
		return models.SalesRecord{}, &ParseError{Line: line, Column: ColTotalSales, Value: row[idx.total], Err: err}
	}
	return models.SalesRecord{
		DateSold:   date,
		Category:   strings.TrimSpace(row[idx.category]),
		TotalSales: total,
	}, nil
}

func csvError(err error) error {
	var pe *csv.ParseError
	if errors.As(err, &pe) {
		return &ParseError{Line: pe.Line, Err: pe.Err}
	}
	return fmt.Errorf("read source: %w", err)
}

// --- 3. CLEANER ---

// Clean returns records without exact duplicates, keeping the first
// occurrence of each. The input slice is not modified.
func Clean(records []models.SalesRecord) []models.SalesRecord {
	out := make([]models.SalesRecord, 0, len(records))
	seen := make(map[xxh3.Uint128]struct{}, len(records))
	for _, r := range records {
		key := xxh3.HashString128(recordKey(r))
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, r)
	}
	return out
}

func recordKey(r models.SalesRecord) string {
	return r.DateSold.Format(time.RFC3339Nano) + "\x1f" + r.Category + "\x1f" + r.TotalSales.String()
}
