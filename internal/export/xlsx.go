// Package export renders the aggregate into a spreadsheet workbook:
// one sheet per primary aggregate, downloaded under a date-stamped
// filename. The operation is terminal; callers get whatever error the
// encoder produces and nothing more.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/techcolloid1243/finance-planner/internal/core"
	"github.com/techcolloid1243/finance-planner/internal/report"
)

const (
	sheetSummary  = "Summary"
	sheetEntries  = "Monthly Entries"
	sheetHoldings = "Holdings"
)

// Filename returns the download name for the given date, e.g.
// "finance-planner-2026-08-31.xlsx".
func Filename(t time.Time) string {
	return "finance-planner-" + t.Format("2006-01-02") + ".xlsx"
}

// Write encodes the workbook for the aggregate into w.
func Write(s core.FinanceState, w io.Writer) error {
	f, err := Workbook(s)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Workbook builds the three-sheet workbook: Summary (label/amount pairs
// for the scalar fields), Monthly Entries (sorted month descending, as
// the display layer shows them), Holdings.
func Workbook(s core.FinanceState) (*excelize.File, error) {
	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return nil, fmt.Errorf("name summary sheet: %w", err)
	}
	summary := [][]any{
		{"Label", "Amount"},
		{"My Monthly Income", amount(s.MyMonthlyIncome)},
		{"Spouse Monthly Income", amount(s.SpouseMonthlyIncome)},
		{"My Total Savings", amount(s.MyTotalSavings)},
		{"Spouse Total Savings", amount(s.SpouseTotalSavings)},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(sheetEntries); err != nil {
		return nil, fmt.Errorf("create entries sheet: %w", err)
	}
	entries := [][]any{
		{"Month", "Savings", "Savings Type", "Expenses", "Expense Type", "Net", "Comment"},
	}
	for _, e := range report.SortedEntries(s) {
		entries = append(entries, []any{
			e.Month, amount(e.Savings), e.SavingsType, amount(e.Expenses), e.ExpenseType, amount(e.Net()), e.Comment,
		})
	}
	if err := writeRows(f, sheetEntries, entries); err != nil {
		return nil, err
	}

	if _, err := f.NewSheet(sheetHoldings); err != nil {
		return nil, fmt.Errorf("create holdings sheet: %w", err)
	}
	holdings := [][]any{{"Type", "Amount"}}
	for _, h := range s.SavingsHoldings {
		holdings = append(holdings, []any{h.Type, amount(h.Amount)})
	}
	if err := writeRows(f, sheetHoldings, holdings); err != nil {
		return nil, err
	}

	return f, nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return fmt.Errorf("cell coordinates: %w", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return fmt.Errorf("set cell %s!%s: %w", sheet, cell, err)
			}
		}
	}
	return nil
}

func amount(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
