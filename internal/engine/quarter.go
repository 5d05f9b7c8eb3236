package engine

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"salesreport/internal/models"
)

var ErrNoCutoff = errors.New("no cutoff or quarter given")

// QuarterCutoff returns the exclusive upper bound of quarter q (1-4) of year,
// i.e. the first day of the following quarter.
func QuarterCutoff(year, q int) (time.Time, error) {
	if q < 1 || q > 4 {
		return time.Time{}, fmt.Errorf("quarter %d out of range 1-4", q)
	}
	return time.Date(year, time.Month(q*3+1), 1, 0, 0, 0, 0, time.UTC), nil
}

// ParseQuarter accepts "2024-Q1", "2024Q1" and "2024-q1".
func ParseQuarter(s string) (year, q int, err error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	ys, qs, ok := strings.Cut(s, "Q")
	ys = strings.TrimSuffix(ys, "-")
	if !ok || len(ys) != 4 || len(qs) != 1 {
		return 0, 0, fmt.Errorf("invalid quarter %q: want YYYY-Qn", s)
	}
	if year, err = strconv.Atoi(ys); err != nil {
		return 0, 0, fmt.Errorf("invalid quarter %q: %w", s, err)
	}
	if q, err = strconv.Atoi(qs); err != nil || q < 1 || q > 4 {
		return 0, 0, fmt.Errorf("invalid quarter %q: want Q1-Q4", s)
	}
	return year, q, nil
}

// ResolveCutoff picks the explicit cutoff date when set, otherwise the end
// boundary of quarter.
func ResolveCutoff(cutoff, quarter string) (time.Time, error) {
	if cutoff = strings.TrimSpace(cutoff); cutoff != "" {
		t, err := time.Parse(models.DateLayout, cutoff)
		if err != nil {
			return time.Time{}, fmt.Errorf("invalid cutoff %q: want YYYY-MM-DD", cutoff)
		}
		return t, nil
	}
	if strings.TrimSpace(quarter) == "" {
		return time.Time{}, ErrNoCutoff
	}
	year, q, err := ParseQuarter(quarter)
	if err != nil {
		return time.Time{}, err
	}
	return QuarterCutoff(year, q)
}
