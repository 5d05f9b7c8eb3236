// Package export renders a generated report into an XLSX workbook.
package export

import (
	"fmt"

	"salesreport/internal/models"

	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetMonthly    = "Monthly"
	SheetByCategory = "By Category"
	SheetRecords    = "Records"
)

// Workbook builds the report workbook. The caller owns the returned file and
// must Close it.
func Workbook(report *models.Report, records []models.SalesRecord) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", SheetMonthly); err != nil {
		f.Close()
		return nil, err
	}
	for _, name := range []string{SheetByCategory, SheetRecords} {
		if _, err := f.NewSheet(name); err != nil {
			f.Close()
			return nil, err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		f.Close()
		return nil, err
	}

	for _, write := range []func(*excelize.File, int) error{
		func(f *excelize.File, style int) error { return writeMonthly(f, style, report.Monthly) },
		func(f *excelize.File, style int) error { return writeByCategory(f, style, report.ByCategory) },
		func(f *excelize.File, style int) error { return writeRecords(f, style, records) },
	} {
		if err := write(f, bold); err != nil {
			f.Close()
			return nil, err
		}
	}
	f.SetActiveSheet(0)
	return f, nil
}

// Save writes the workbook to path.
func Save(path string, report *models.Report, records []models.SalesRecord) error {
	f, err := Workbook(report, records)
	if err != nil {
		return fmt.Errorf("build workbook: %w", err)
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook %s: %w", path, err)
	}
	return nil
}

func header(f *excelize.File, sheet string, style int, cols []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &cols); err != nil {
		return err
	}
	last, err := excelize.CoordinatesToCellName(len(cols), 1)
	if err != nil {
		return err
	}
	return f.SetCellStyle(sheet, "A1", last, style)
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	return f.SetSheetRow(sheet, cell, &values)
}

func writeMonthly(f *excelize.File, style int, monthly models.MonthlyTotals) error {
	if err := header(f, SheetMonthly, style, []interface{}{"Month", "Total_Sales"}); err != nil {
		return err
	}
	for i, item := range monthly {
		if err := writeRow(f, SheetMonthly, i+2, []interface{}{item.Month, item.Total.InexactFloat64()}); err != nil {
			return err
		}
	}
	return nil
}

// writeByCategory lays the dense table out as one column per category plus a
// row total.
func writeByCategory(f *excelize.File, style int, table models.CategoryMonthlyTotals) error {
	cols := make([]interface{}, 0, len(table.Categories)+2)
	cols = append(cols, "Month")
	for _, c := range table.Categories {
		cols = append(cols, c)
	}
	cols = append(cols, "Total")
	if err := header(f, SheetByCategory, style, cols); err != nil {
		return err
	}

	for i, row := range table.Rows {
		values := make([]interface{}, 0, len(cols))
		values = append(values, row.Month)
		var total float64
		for _, c := range table.Categories {
			v := row.Totals[c].InexactFloat64()
			total += v
			values = append(values, v)
		}
		values = append(values, total)
		if err := writeRow(f, SheetByCategory, i+2, values); err != nil {
			return err
		}
	}
	return nil
}

func writeRecords(f *excelize.File, style int, records []models.SalesRecord) error {
	if err := header(f, SheetRecords, style, []interface{}{"Date_Sold", "Category", "Total_Sales"}); err != nil {
		return err
	}
	for i, r := range records {
		values := []interface{}{r.DateSold.Format(models.DateLayout), r.Category, r.TotalSales.InexactFloat64()}
		if err := writeRow(f, SheetRecords, i+2, values); err != nil {
			return err
		}
	}
	return nil
}
