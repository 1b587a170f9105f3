package http

import (
	"log/slog"
	"net/http"

	"github.com/techcolloid1243/finance-planner/internal/core"
)

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	snapshot, revision := s.store.Snapshot()
	writeJSON(w, http.StatusOK, stateResponse{State: snapshot, Revision: revision})
}

type stateResponse struct {
	State    core.FinanceState `json:"state"`
	Revision uint64            `json:"revision"`
}

type setFieldRequest struct {
	Key   string        `json:"key"`
	Value lenientAmount `json:"value"`
}

// handleSetField replaces one of the four scalar fields. Unknown keys
// and malformed values never error: the former are no-ops, the latter
// coerce to zero.
func (s *Server) handleSetField(w http.ResponseWriter, r *http.Request) {
	var req setFieldRequest
	if err := decodeBody(r, &req); err != nil {
		slog.ErrorContext(r.Context(), "Set field decode error", "error", err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	snapshot, revision := s.store.SetScalarField(req.Key, req.Value.Decimal)
	writeJSON(w, http.StatusOK, stateResponse{State: snapshot, Revision: revision})
}

type entryRequest struct {
	ID          string        `json:"id"`
	Month       string        `json:"month"`
	Savings     lenientAmount `json:"savings"`
	Expenses    lenientAmount `json:"expenses"`
	SavingsType string        `json:"savingsType"`
	ExpenseType string        `json:"expenseType"`
	Comment     string        `json:"comment"`
}

func (s *Server) handleUpsertEntry(w http.ResponseWriter, r *http.Request) {
	var req entryRequest
	if err := decodeBody(r, &req); err != nil {
		slog.ErrorContext(r.Context(), "Entry decode error", "error", err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	stored := s.store.UpsertEntry(core.MonthlyEntry{
		ID:          req.ID,
		Month:       sanitizeInput(req.Month),
		Savings:     req.Savings.Decimal,
		Expenses:    req.Expenses.Decimal,
		SavingsType: sanitizeInput(req.SavingsType),
		ExpenseType: sanitizeInput(req.ExpenseType),
		Comment:     sanitizeInput(req.Comment),
	})
	slog.InfoContext(r.Context(), "Entry upserted", "entry_id", stored.ID, "month", stored.Month)
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleRemoveEntry(w http.ResponseWriter, r *http.Request) {
	// Removal of an unknown id is a no-op by design.
	s.store.RemoveEntry(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

type holdingRequest struct {
	ID     string        `json:"id"`
	Type   string        `json:"type"`
	Amount lenientAmount `json:"amount"`
}

func (s *Server) handleUpsertHolding(w http.ResponseWriter, r *http.Request) {
	var req holdingRequest
	if err := decodeBody(r, &req); err != nil {
		slog.ErrorContext(r.Context(), "Holding decode error", "error", err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	stored := s.store.UpsertHolding(core.SavingsHolding{
		ID:     req.ID,
		Type:   sanitizeInput(req.Type),
		Amount: req.Amount.Decimal,
	})
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleRemoveHolding(w http.ResponseWriter, r *http.Request) {
	s.store.RemoveHolding(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

type insuranceRequest struct {
	ID            string        `json:"id"`
	Type          string        `json:"type"`
	CoveredPeople string        `json:"coveredPeople"`
	Limit         lenientAmount `json:"limit"`
}

func (s *Server) handleUpsertInsurance(w http.ResponseWriter, r *http.Request) {
	var req insuranceRequest
	if err := decodeBody(r, &req); err != nil {
		slog.ErrorContext(r.Context(), "Insurance decode error", "error", err)
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	stored := s.store.UpsertInsurance(core.InsuranceItem{
		ID:            req.ID,
		Type:          sanitizeInput(req.Type),
		CoveredPeople: sanitizeInput(req.CoveredPeople),
		Limit:         req.Limit.Decimal,
	})
	writeJSON(w, http.StatusOK, stored)
}

func (s *Server) handleRemoveInsurance(w http.ResponseWriter, r *http.Request) {
	s.store.RemoveInsurance(r.PathValue("id"))
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleEnums(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string][]string{
		"savingsTypes":   core.SavingsTypes,
		"expenseTypes":   core.ExpenseTypes,
		"insuranceTypes": core.InsuranceTypes,
	})
}

func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.adapter.Metrics())
}
