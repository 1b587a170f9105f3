package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/techcolloid1243/finance-planner/internal/core"
)

func TestFilename(t *testing.T) {
	day := time.Date(2026, 8, 31, 10, 0, 0, 0, time.UTC)
	if got := Filename(day); got != "finance-planner-2026-08-31.xlsx" {
		t.Fatalf("got %q", got)
	}
}

func TestWorkbookSheetsAndCells(t *testing.T) {
	s := core.DefaultState()
	s.MyMonthlyIncome = decimal.NewFromInt(50000)
	s.SpouseTotalSavings = decimal.NewFromInt(200000)
	s.Entries = []core.MonthlyEntry{
		{ID: "a", Month: "2026-01", Savings: decimal.NewFromInt(10000), SavingsType: "MF",
			Expenses: decimal.NewFromInt(4000), ExpenseType: "Rent", Comment: "jan"},
		{ID: "b", Month: "2026-02", Savings: decimal.NewFromInt(5000), SavingsType: "Cash"},
	}
	s.SavingsHoldings = []core.SavingsHolding{
		{ID: "h1", Type: "MF", Amount: decimal.NewFromInt(5000)},
	}

	f, err := Workbook(s)
	if err != nil {
		t.Fatalf("workbook: %v", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	want := []string{"Summary", "Monthly Entries", "Holdings"}
	if len(sheets) != len(want) {
		t.Fatalf("sheets = %v", sheets)
	}
	for i, name := range want {
		if sheets[i] != name {
			t.Fatalf("sheet %d = %q, want %q", i, sheets[i], name)
		}
	}

	cell := func(sheet, ref string) string {
		t.Helper()
		v, err := f.GetCellValue(sheet, ref)
		if err != nil {
			t.Fatalf("read %s!%s: %v", sheet, ref, err)
		}
		return v
	}

	if cell("Summary", "A2") != "My Monthly Income" || cell("Summary", "B2") != "50000" {
		t.Fatalf("summary row = %q %q", cell("Summary", "A2"), cell("Summary", "B2"))
	}
	if cell("Summary", "B5") != "200000" {
		t.Fatalf("spouse savings cell = %q", cell("Summary", "B5"))
	}

	// Entries sorted month descending: 2026-02 first.
	if cell("Monthly Entries", "A2") != "2026-02" {
		t.Fatalf("first entry month = %q", cell("Monthly Entries", "A2"))
	}
	if cell("Monthly Entries", "A3") != "2026-01" || cell("Monthly Entries", "G3") != "jan" {
		t.Fatalf("second entry = %q comment %q", cell("Monthly Entries", "A3"), cell("Monthly Entries", "G3"))
	}
	// Net column: 10000 - 4000.
	if cell("Monthly Entries", "F3") != "6000" {
		t.Fatalf("net = %q", cell("Monthly Entries", "F3"))
	}

	if cell("Holdings", "A2") != "MF" || cell("Holdings", "B2") != "5000" {
		t.Fatalf("holdings row = %q %q", cell("Holdings", "A2"), cell("Holdings", "B2"))
	}
}

func TestWriteProducesReadableWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := Write(core.DefaultState(), &buf); err != nil {
		t.Fatalf("write: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	if got := len(f.GetSheetList()); got != 3 {
		t.Fatalf("sheets = %d", got)
	}
}
