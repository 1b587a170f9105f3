// Package report computes the derived views: combined totals, category
// aggregations and linear savings projections. Everything here is a
// pure function over a FinanceState snapshot.
package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/techcolloid1243/finance-planner/internal/core"
)

// CategoryTotal is one (label, total) pair, shaped for pie-chart
// rendering.
type CategoryTotal struct {
	Label string          `json:"label"`
	Total decimal.Decimal `json:"total"`
}

// ProjectionRow is one line of the projection-by-type table.
type ProjectionRow struct {
	Type      string          `json:"type"`
	Current   decimal.Decimal `json:"current"`
	Monthly   decimal.Decimal `json:"monthly"`
	Projected decimal.Decimal `json:"projected"`
}

// CombinedMonthlyIncome is the pairwise sum of both incomes.
func CombinedMonthlyIncome(s core.FinanceState) decimal.Decimal {
	return s.MyMonthlyIncome.Add(s.SpouseMonthlyIncome)
}

// CombinedTotalSavings is the pairwise sum of both savings baselines.
func CombinedTotalSavings(s core.FinanceState) decimal.Decimal {
	return s.MyTotalSavings.Add(s.SpouseTotalSavings)
}

// TotalPlannedMonthlySavings sums savings over ALL entries regardless of
// month. The upstream product treats "planned monthly" as a flat total
// across the whole entry history; that literal behavior is kept.
func TotalPlannedMonthlySavings(s core.FinanceState) decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Entries {
		total = total.Add(e.Savings)
	}
	return total
}

// TotalPlannedMonthlyExpenses sums expenses over ALL entries, same flat
// semantics as TotalPlannedMonthlySavings.
func TotalPlannedMonthlyExpenses(s core.FinanceState) decimal.Decimal {
	total := decimal.Zero
	for _, e := range s.Entries {
		total = total.Add(e.Expenses)
	}
	return total
}

// ProjectedSavingsOnly is the linear projection: combined total savings
// plus months times the flat planned monthly savings.
func ProjectedSavingsOnly(s core.FinanceState, months int) decimal.Decimal {
	return CombinedTotalSavings(s).Add(
		TotalPlannedMonthlySavings(s).Mul(decimal.NewFromInt(int64(months))))
}

// ExpensesByType groups entry expenses by expense type, bucketing absent
// types under Uncategorized. Groups exist only when at least one entry
// contributes, even if that entry's value is zero.
func ExpensesByType(s core.FinanceState) []CategoryTotal {
	return groupBy(len(s.Entries), func(i int) (string, decimal.Decimal) {
		label := s.Entries[i].ExpenseType
		if label == "" {
			label = core.UncategorizedLabel
		}
		return label, s.Entries[i].Expenses
	})
}

// HoldingsByType groups holding amounts by holding type.
func HoldingsByType(s core.FinanceState) []CategoryTotal {
	return groupBy(len(s.SavingsHoldings), func(i int) (string, decimal.Decimal) {
		return s.SavingsHoldings[i].Type, s.SavingsHoldings[i].Amount
	})
}

func groupBy(n int, at func(i int) (string, decimal.Decimal)) []CategoryTotal {
	totals := map[string]decimal.Decimal{}
	var order []string
	for i := 0; i < n; i++ {
		label, v := at(i)
		if _, seen := totals[label]; !seen {
			order = append(order, label)
		}
		totals[label] = totals[label].Add(v)
	}
	out := make([]CategoryTotal, 0, len(order))
	for _, label := range order {
		out = append(out, CategoryTotal{Label: label, Total: totals[label]})
	}
	return out
}

// ProjectionByType builds the projection table over the union of holding
// types and entry savings types: projected = current + months * monthly
// per type, rows sorted descending by projected value.
func ProjectionByType(s core.FinanceState, months int) []ProjectionRow {
	current := map[string]decimal.Decimal{}
	monthly := map[string]decimal.Decimal{}
	var order []string
	note := func(t string) {
		if _, ok := current[t]; !ok {
			if _, ok := monthly[t]; !ok {
				order = append(order, t)
			}
		}
	}
	for _, h := range s.SavingsHoldings {
		note(h.Type)
		current[h.Type] = current[h.Type].Add(h.Amount)
	}
	for _, e := range s.Entries {
		if e.SavingsType == "" {
			continue
		}
		note(e.SavingsType)
		monthly[e.SavingsType] = monthly[e.SavingsType].Add(e.Savings)
	}

	m := decimal.NewFromInt(int64(months))
	rows := make([]ProjectionRow, 0, len(order))
	for _, t := range order {
		rows = append(rows, ProjectionRow{
			Type:      t,
			Current:   current[t],
			Monthly:   monthly[t],
			Projected: current[t].Add(monthly[t].Mul(m)),
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Projected.GreaterThan(rows[j].Projected)
	})
	return rows
}

// SavingsSeries is the line-chart series: months+1 points, point i being
// start + i * monthly.
func SavingsSeries(start, monthly decimal.Decimal, months int) []decimal.Decimal {
	out := make([]decimal.Decimal, 0, months+1)
	for i := 0; i <= months; i++ {
		out = append(out, start.Add(monthly.Mul(decimal.NewFromInt(int64(i)))))
	}
	return out
}

// SortedEntries returns entries ordered by month descending, ties kept
// in insertion order — the display-layer ordering.
func SortedEntries(s core.FinanceState) []core.MonthlyEntry {
	out := append([]core.MonthlyEntry(nil), s.Entries...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Month > out[j].Month
	})
	return out
}
