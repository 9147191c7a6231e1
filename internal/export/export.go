// Package export writes ledger reports to disk as CSV, JSON or PDF.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"

	"selfin/internal/core"
)

// Format is a report file type.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatJSON Format = "json"
	FormatPDF  Format = "pdf"
)

// now is replaced in tests.
var now = time.Now

// ParseFormat accepts csv, json or pdf in any case.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatJSON, FormatPDF:
		return f, nil
	default:
		return "", fmt.Errorf("unsupported export format %q (want csv, json or pdf)", s)
	}
}

// Export writes the report in the given format and returns its absolute path.
func Export(l core.Ledger, s core.Summary, format Format, name, dir string) (string, error) {
	switch format {
	case FormatCSV:
		return ExportCSV(l, s, name, dir)
	case FormatJSON:
		return ExportJSON(l, s, name, dir)
	case FormatPDF:
		return ExportPDF(l, s, name, dir)
	default:
		return "", fmt.Errorf("unsupported export format %q", format)
	}
}

// ExportCSV writes one row per record followed by the three totals.
func ExportCSV(l core.Ledger, s core.Summary, name, dir string) (string, error) {
	outputFilename, err := generateFilename(name, dir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)

	records := [][]string{{"Type", "Label", "Amount"}}
	for _, r := range l.Income {
		records = append(records, []string{string(core.KindIncome), r.Source, core.FormatAmount(r.Amount)})
	}
	for _, r := range l.Expenses {
		records = append(records, []string{string(core.KindExpense), r.Category, core.FormatAmount(r.Amount)})
	}
	records = append(records,
		[]string{"total", "Total Income", core.FormatDecimal(s.TotalIncome)},
		[]string{"total", "Total Expenses", core.FormatDecimal(s.TotalExpenses)},
		[]string{"total", "Balance", core.FormatDecimal(s.Balance)},
	)

	if err := writer.WriteAll(records); err != nil {
		return "", fmt.Errorf("error writing CSV records: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// Report is the JSON export document.
type Report struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Income      []core.IncomeRecord  `json:"income"`
	Expenses    []core.ExpenseRecord `json:"expenses"`
	Summary     ReportSummary        `json:"summary"`
}

// ReportSummary carries totals as fixed two-decimal strings.
type ReportSummary struct {
	TotalIncome   string `json:"total_income"`
	TotalExpenses string `json:"total_expenses"`
	Balance       string `json:"balance"`
}

// NewReport builds the JSON export document for l.
func NewReport(l core.Ledger, s core.Summary) Report {
	l.Normalize()
	return Report{
		GeneratedAt: now().UTC(),
		Income:      l.Income,
		Expenses:    l.Expenses,
		Summary: ReportSummary{
			TotalIncome:   s.TotalIncome.StringFixed(2),
			TotalExpenses: s.TotalExpenses.StringFixed(2),
			Balance:       s.Balance.StringFixed(2),
		},
	}
}

func ExportJSON(l core.Ledger, s core.Summary, name, dir string) (string, error) {
	outputFilename, err := generateFilename(name, dir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(NewReport(l, s)); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// ExportPDF renders both tables and the summary on A4 pages.
func ExportPDF(l core.Ledger, s core.Summary, name, dir string) (string, error) {
	outputFilename, err := generateFilename(name, dir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	generated := now().Format("2006-01-02")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Arial", "I", 8)
		pdf.SetTextColor(128, 128, 128)
		pdf.CellFormat(0, 10, tr("Generated by selfin | "+generated), "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "R", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFillColor(40, 40, 40)
	pdf.SetTextColor(255, 255, 255)
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, "  Self-Finance Ledger", "", 1, "L", true, 0, "")
	pdf.Ln(8)

	drawTable := func(title, labelHeader string, rows [][2]string) {
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(0, 0, 0)
		pdf.Cell(0, 8, tr(title))
		pdf.Ln(8)

		pdf.SetFont("Arial", "B", 10)
		pdf.SetFillColor(240, 240, 240)
		pdf.CellFormat(130, 7, tr(labelHeader), "1", 0, "L", true, 0, "")
		pdf.CellFormat(60, 7, "Amount", "1", 1, "R", true, 0, "")

		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(50, 50, 50)
		if len(rows) == 0 {
			pdf.CellFormat(190, 7, "No records", "1", 1, "C", false, 0, "")
		}
		for _, row := range rows {
			pdf.CellFormat(130, 7, tr(row[0]), "1", 0, "L", false, 0, "")
			pdf.CellFormat(60, 7, row[1], "1", 1, "R", false, 0, "")
		}
		pdf.Ln(8)
	}

	income := make([][2]string, 0, len(l.Income))
	for _, r := range l.Income {
		income = append(income, [2]string{r.Source, core.FormatAmount(r.Amount)})
	}
	expenses := make([][2]string, 0, len(l.Expenses))
	for _, r := range l.Expenses {
		expenses = append(expenses, [2]string{r.Category, core.FormatAmount(r.Amount)})
	}
	drawTable("Income", "Source", income)
	drawTable("Expenses", "Category", expenses)

	pdf.SetFont("Arial", "B", 11)
	if s.Balance.IsNegative() {
		pdf.SetTextColor(192, 0, 0)
	} else {
		pdf.SetTextColor(0, 128, 0)
	}
	pdf.MultiCell(190, 6, tr(s.Line()), "", "L", false)

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

// generateFilename builds <dir>/<base>_<timestamp>.<ext>, creating dir if needed.
func generateFilename(base, dir, ext string) (string, error) {
	if base == "" {
		base = "ledger"
	}
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := now().Format("20060102_150405")
	return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, timestamp, ext)), nil
}
