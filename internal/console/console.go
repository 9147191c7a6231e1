// Package console renders the ledger for the terminal.
package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/pterm/pterm"

	"selfin/internal/core"
)

var (
	heading     = color.New(color.FgCyan, color.Bold).SprintFunc()
	brightGreen = color.New(color.FgGreen, color.Bold).SprintFunc()
	boldRed     = color.New(color.FgRed, color.Bold).SprintFunc()
)

// Console writes tables and status lines to out.
type Console struct {
	out io.Writer
}

// New returns a Console writing to out, or stdout when out is nil.
func New(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// RenderLedger prints the income table, the expense table and the summary line.
func (c *Console) RenderLedger(l core.Ledger, s core.Summary) error {
	income := make([][]string, 0, len(l.Income))
	for _, r := range l.Income {
		income = append(income, []string{r.Source, core.FormatAmount(r.Amount)})
	}
	expenses := make([][]string, 0, len(l.Expenses))
	for _, r := range l.Expenses {
		expenses = append(expenses, []string{r.Category, core.FormatAmount(r.Amount)})
	}

	if err := c.table("Income", "Source", income); err != nil {
		return err
	}
	if err := c.table("Expenses", "Category", expenses); err != nil {
		return err
	}

	_, err := fmt.Fprintln(c.out, SummaryLine(s))
	return err
}

func (c *Console) table(title, labelHeader string, rows [][]string) error {
	data := pterm.TableData{{labelHeader, "Amount"}}
	data = append(data, rows...)

	rendered, err := pterm.DefaultTable.
		WithHasHeader().
		WithBoxed().
		WithHeaderStyle(pterm.NewStyle(pterm.FgLightCyan)).
		WithRightAlignment().
		WithData(data).
		Srender()
	if err != nil {
		return fmt.Errorf("render %s table: %w", title, err)
	}

	_, err = fmt.Fprintf(c.out, "%s\n%s\n", heading(title), rendered)
	return err
}

// SummaryLine is core.Summary.Line with the balance coloured by sign.
func SummaryLine(s core.Summary) string {
	balance := core.FormatDecimal(s.Balance)
	if s.Balance.IsNegative() {
		balance = boldRed(balance)
	} else {
		balance = brightGreen(balance)
	}
	return fmt.Sprintf("Total Income: %s | Total Expenses: %s | Balance: %s",
		core.FormatDecimal(s.TotalIncome), core.FormatDecimal(s.TotalExpenses), balance)
}

// Success prints a confirmation message.
func (c *Console) Success(msg string) {
	pterm.Success.WithWriter(c.out).Println(msg)
}

// Error prints an error message.
func (c *Console) Error(msg string) {
	pterm.Error.WithWriter(c.out).Println(msg)
}

// Info prints an informational message.
func (c *Console) Info(format string, a ...any) {
	pterm.Info.WithWriter(c.out).Printfln(format, a...)
}
