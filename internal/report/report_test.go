package report

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/techcolloid1243/finance-planner/internal/core"
)

func d(i int64) decimal.Decimal { return decimal.NewFromInt(i) }

func TestTotalsOnEmptyState(t *testing.T) {
	s := core.DefaultState()
	for i, got := range []decimal.Decimal{
		CombinedMonthlyIncome(s),
		CombinedTotalSavings(s),
		TotalPlannedMonthlySavings(s),
		TotalPlannedMonthlyExpenses(s),
		ProjectedSavingsOnly(s, 12),
	} {
		if !got.IsZero() {
			t.Fatalf("total %d on empty state = %s", i, got)
		}
	}
	if len(ExpensesByType(s)) != 0 || len(HoldingsByType(s)) != 0 || len(ProjectionByType(s, 12)) != 0 {
		t.Fatalf("empty state produced groups")
	}
}

func TestCombinedMonthlyIncome(t *testing.T) {
	s := core.DefaultState()
	s.MyMonthlyIncome = d(50000)
	s.SpouseMonthlyIncome = d(30000)
	if got := CombinedMonthlyIncome(s); !got.Equal(d(80000)) {
		t.Fatalf("got %s", got)
	}
}

func TestProjectedSavingsOnly(t *testing.T) {
	s := core.DefaultState()
	s.MyTotalSavings = d(100000)
	s.Entries = []core.MonthlyEntry{{ID: "a", Month: "2026-01", Savings: d(10000)}}
	// 100000 + 6 * 10000
	if got := ProjectedSavingsOnly(s, 6); !got.Equal(d(160000)) {
		t.Fatalf("got %s", got)
	}
}

func TestPlannedTotalsAreFlatAcrossMonths(t *testing.T) {
	s := core.DefaultState()
	s.Entries = []core.MonthlyEntry{
		{ID: "a", Month: "2026-01", Savings: d(10000), Expenses: d(4000)},
		{ID: "b", Month: "2026-02", Savings: d(5000), Expenses: d(1000)},
		{ID: "c", Month: "2026-02", Savings: d(2000)},
	}
	if got := TotalPlannedMonthlySavings(s); !got.Equal(d(17000)) {
		t.Fatalf("savings = %s", got)
	}
	if got := TotalPlannedMonthlyExpenses(s); !got.Equal(d(5000)) {
		t.Fatalf("expenses = %s", got)
	}
}

func TestHoldingsByType(t *testing.T) {
	s := core.DefaultState()
	s.SavingsHoldings = []core.SavingsHolding{
		{ID: "1", Type: "MF", Amount: d(5000)},
		{ID: "2", Type: "Gold", Amount: d(2000)},
		{ID: "3", Type: "MF", Amount: d(1000)},
	}
	got := HoldingsByType(s)
	if len(got) != 2 {
		t.Fatalf("groups = %+v", got)
	}
	if got[0].Label != "MF" || !got[0].Total.Equal(d(6000)) {
		t.Fatalf("MF group = %+v", got[0])
	}
	if got[1].Label != "Gold" || !got[1].Total.Equal(d(2000)) {
		t.Fatalf("Gold group = %+v", got[1])
	}
	sum := got[0].Total.Add(got[1].Total)
	if !sum.Equal(d(8000)) {
		t.Fatalf("group sum = %s", sum)
	}
}

func TestExpensesByTypeUncategorized(t *testing.T) {
	s := core.DefaultState()
	s.Entries = []core.MonthlyEntry{
		{ID: "a", Month: "2026-01", Expenses: d(4000), ExpenseType: "Rent"},
		{ID: "b", Month: "2026-01", Expenses: d(500)},
		{ID: "c", Month: "2026-02", Expenses: d(300), ExpenseType: "Rent"},
	}
	got := ExpensesByType(s)
	if len(got) != 2 {
		t.Fatalf("groups = %+v", got)
	}
	if got[0].Label != "Rent" || !got[0].Total.Equal(d(4300)) {
		t.Fatalf("Rent group = %+v", got[0])
	}
	if got[1].Label != core.UncategorizedLabel || !got[1].Total.Equal(d(500)) {
		t.Fatalf("Uncategorized group = %+v", got[1])
	}
}

func TestGroupsExistOnlyWithMembers(t *testing.T) {
	s := core.DefaultState()
	// A zero-valued member still creates its group; a type with no
	// members never appears.
	s.SavingsHoldings = []core.SavingsHolding{{ID: "1", Type: "Crypto", Amount: d(0)}}
	got := HoldingsByType(s)
	if len(got) != 1 || got[0].Label != "Crypto" || !got[0].Total.IsZero() {
		t.Fatalf("got %+v", got)
	}
}

func TestProjectionByType(t *testing.T) {
	s := core.DefaultState()
	s.SavingsHoldings = []core.SavingsHolding{
		{ID: "1", Type: "MF", Amount: d(5000)},
		{ID: "2", Type: "Gold", Amount: d(2000)},
	}
	s.Entries = []core.MonthlyEntry{
		{ID: "a", Month: "2026-01", Savings: d(1000), SavingsType: "MF"},
		{ID: "b", Month: "2026-01", Savings: d(500), SavingsType: "Cash"},
		{ID: "c", Month: "2026-01", Expenses: d(100)}, // untyped, ignored
	}
	rows := ProjectionByType(s, 10)
	if len(rows) != 3 {
		t.Fatalf("rows = %+v", rows)
	}
	// Sorted descending by projected value:
	// MF 5000+10*1000=15000, Cash 0+10*500=5000, Gold 2000+0=2000.
	want := []struct {
		typ       string
		projected int64
	}{{"MF", 15000}, {"Cash", 5000}, {"Gold", 2000}}
	for i, w := range want {
		if rows[i].Type != w.typ || !rows[i].Projected.Equal(d(w.projected)) {
			t.Fatalf("row %d = %+v, want %s %d", i, rows[i], w.typ, w.projected)
		}
	}
	if !rows[0].Current.Equal(d(5000)) || !rows[0].Monthly.Equal(d(1000)) {
		t.Fatalf("MF row = %+v", rows[0])
	}
}

func TestSavingsSeriesLength(t *testing.T) {
	series := SavingsSeries(d(100), d(10), 12)
	if len(series) != 13 {
		t.Fatalf("len = %d", len(series))
	}
	if !series[0].Equal(d(100)) || !series[12].Equal(d(220)) {
		t.Fatalf("endpoints = %s, %s", series[0], series[12])
	}

	if got := SavingsSeries(d(0), d(5), 0); len(got) != 1 || !got[0].IsZero() {
		t.Fatalf("zero-month series = %v", got)
	}
}

func TestSortedEntries(t *testing.T) {
	s := core.DefaultState()
	s.Entries = []core.MonthlyEntry{
		{ID: "a", Month: "2026-01"},
		{ID: "b", Month: "2026-03"},
		{ID: "c", Month: "2026-03"},
		{ID: "d", Month: "2025-12"},
	}
	got := SortedEntries(s)
	order := []string{"b", "c", "a", "d"}
	for i, id := range order {
		if got[i].ID != id {
			t.Fatalf("position %d = %q, want %q", i, got[i].ID, id)
		}
	}
	// Input order untouched.
	if s.Entries[0].ID != "a" {
		t.Fatalf("input mutated")
	}
}
