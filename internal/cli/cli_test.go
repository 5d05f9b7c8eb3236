package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"salesreport/internal/export"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const salesCSV = `Date_Sold,Month,Category,Total_Sales
2024-01-05,2024-01,Clothing,100
2024-01-05,2024-01,Clothing,100
2024-01-10,2024-01,Grocery,50
2024-02-10,2024-02,Toys,30
2024-04-01,2024-04,Electronics,999
`

// run executes the CLI against a temp config file holding cfgYAML.
func run(t *testing.T, cfgYAML string, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{"SALES_DATA_PATH", "SALES_QUARTER", "SALES_CUTOFF", "SALES_LOCALE", "SALES_PREVIEW_ROWS", "PORT", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(k, "")
	}
	cfgPath := filepath.Join(t.TempDir(), "salesreport.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(cfgYAML), 0o644))

	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(append(args, "--config", cfgPath))
	err := cmd.Execute()
	return out.String(), err
}

func writeCSV(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales_data.csv")
	require.NoError(t, os.WriteFile(path, []byte(salesCSV), 0o644))
	return path
}

func TestSummary(t *testing.T) {
	out, err := run(t, "quarter: 2024-Q1\nlocale: en-US\n", "summary", "--data", writeCSV(t))
	require.NoError(t, err)

	assert.Contains(t, out, "Records: 4")
	assert.Contains(t, out, "Period: 2024-01-05 to 2024-04-01")
	assert.Contains(t, out, "Cutoff: 2024-04-01 (exclusive)")
	assert.Contains(t, out, "150.00")
	assert.Contains(t, out, "Electronics")
}

func TestSummaryQuarterFlag(t *testing.T) {
	out, err := run(t, "quarter: 2024-Q1\n", "summary", "--data", writeCSV(t), "--quarter", "2024-Q2")
	require.NoError(t, err)
	assert.Contains(t, out, "Cutoff: 2024-07-01 (exclusive)")
}

func TestSummarySourceNotFound(t *testing.T) {
	_, err := run(t, "quarter: 2024-Q1\n", "summary", "--data", filepath.Join(t.TempDir(), "missing.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source not found")
}

func TestSummaryInvalidConfig(t *testing.T) {
	_, err := run(t, "server:\n  port: nope\n", "summary", "--data", writeCSV(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port")
}

func TestExport(t *testing.T) {
	outPath := filepath.Join(t.TempDir(), "q1.xlsx")

	out, err := run(t, "quarter: 2024-Q1\n", "export", "--data", writeCSV(t), "--cutoff", "2024-02-01", "-o", outPath)
	require.NoError(t, err)
	assert.Contains(t, out, "1 months")

	f, err := excelize.OpenFile(outPath)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetMonthly)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"Month", "Total_Sales"}, {"2024-01", "150"}}, rows)
}

func TestVersion(t *testing.T) {
	out, err := run(t, "", "version")
	require.NoError(t, err)
	assert.Contains(t, out, "Version:")
}
