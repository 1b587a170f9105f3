package http

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/techcolloid1243/finance-planner/internal/core"
	"github.com/techcolloid1243/finance-planner/internal/report"
)

// dashboardPayload is the data contract the chart/table rendering
// consumes: labeled numeric series only.
type dashboardPayload struct {
	Revision uint64 `json:"revision"`
	Months   int    `json:"months"`

	CombinedMonthlyIncome       decimal.Decimal `json:"combinedMonthlyIncome"`
	CombinedTotalSavings        decimal.Decimal `json:"combinedTotalSavings"`
	TotalPlannedMonthlySavings  decimal.Decimal `json:"totalPlannedMonthlySavings"`
	TotalPlannedMonthlyExpenses decimal.Decimal `json:"totalPlannedMonthlyExpenses"`
	ProjectedSavings            decimal.Decimal `json:"projectedSavings"`

	ExpensesByType   []report.CategoryTotal `json:"expensesByType"`
	HoldingsByType   []report.CategoryTotal `json:"holdingsByType"`
	ProjectionByType []report.ProjectionRow `json:"projectionByType"`
	SavingsSeries    []decimal.Decimal      `json:"savingsSeries"`
}

// buildDashboard recomputes the derived views, memoized per (revision,
// months) — recompute happens only when the underlying state changes.
func (s *Server) buildDashboard(months int) dashboardPayload {
	snapshot, revision := s.store.Snapshot()
	key := fmt.Sprintf("%d:%d", revision, months)
	if payload, ok := s.dashCache.Get(key); ok {
		return payload
	}

	payload := dashboardPayload{
		Revision:                    revision,
		Months:                      months,
		CombinedMonthlyIncome:       report.CombinedMonthlyIncome(snapshot),
		CombinedTotalSavings:        report.CombinedTotalSavings(snapshot),
		TotalPlannedMonthlySavings:  report.TotalPlannedMonthlySavings(snapshot),
		TotalPlannedMonthlyExpenses: report.TotalPlannedMonthlyExpenses(snapshot),
		ProjectedSavings:            report.ProjectedSavingsOnly(snapshot, months),
		ExpensesByType:              report.ExpensesByType(snapshot),
		HoldingsByType:              report.HoldingsByType(snapshot),
		ProjectionByType:            report.ProjectionByType(snapshot, months),
		SavingsSeries: report.SavingsSeries(
			report.CombinedTotalSavings(snapshot),
			report.TotalPlannedMonthlySavings(snapshot),
			months),
	}
	s.dashCache.Set(key, payload)
	return payload
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", s.defaultMonths)
	writeJSON(w, http.StatusOK, s.buildDashboard(months))
}

// handleDashboardPartial renders the dashboard fragment for the HTMX
// front end.
func (s *Server) handleDashboardPartial(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	months := queryInt(r, "months", s.defaultMonths)
	payload := s.buildDashboard(months)

	if s.templates == nil {
		_, _ = fmt.Fprintf(w, `<section id="dashboard"><div class="placeholder">Projected savings after %d months: %s</div></section>`,
			months, payload.ProjectedSavings.String())
		return
	}
	if err := s.templates.ExecuteTemplate(w, "dashboard.html", payload); err != nil {
		slog.ErrorContext(r.Context(), "Dashboard template execution failed", "error", err, "template", "dashboard.html")
		_, _ = w.Write([]byte(`<section id="dashboard"><div class="placeholder">Error rendering dashboard</div></section>`))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		slog.ErrorContext(r.Context(), "Templates not loaded", "path", r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	snapshot, _ := s.store.Snapshot()
	data := indexData{
		Months:   s.defaultMonths,
		Month:    core.CurrentMonth(),
		SignedIn: s.auth.Current() != nil,
		Enums: enums{
			Savings:   core.SavingsTypes,
			Expense:   core.ExpenseTypes,
			Insurance: core.InsuranceTypes,
		},
		EntryCount:     len(snapshot.Entries),
		HoldingCount:   len(snapshot.SavingsHoldings),
		InsuranceCount: len(snapshot.Insurances),
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		slog.ErrorContext(r.Context(), "Index template execution failed", "error", err, "template", "index.html")
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

type indexData struct {
	Months         int
	Month          string
	SignedIn       bool
	Enums          enums
	EntryCount     int
	HoldingCount   int
	InsuranceCount int
}

type enums struct {
	Savings   []string
	Expense   []string
	Insurance []string
}
