package memory

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/techcolloid1243/finance-planner/internal/core"
)

func TestGetAbsent(t *testing.T) {
	s := New()
	_, found, err := s.Get(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if found {
		t.Fatalf("expected no document")
	}
}

func TestSetThenGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	st := core.DefaultState()
	st.MyMonthlyIncome = decimal.NewFromInt(50000)
	st.Entries = []core.MonthlyEntry{{ID: "a", Month: "2026-01", Savings: decimal.NewFromInt(1)}}

	if err := s.Set(ctx, "u1", st); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, found, err := s.Get(ctx, "u1")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if !got.MyMonthlyIncome.Equal(st.MyMonthlyIncome) || len(got.Entries) != 1 {
		t.Fatalf("round trip lost data: %+v", got)
	}
	if s.Sets() != 1 {
		t.Fatalf("sets = %d", s.Sets())
	}
	if !s.Exists("u1") || s.Exists("u2") {
		t.Fatalf("existence wrong")
	}
}

func TestMergeOverlaysTopLevelFields(t *testing.T) {
	s := New()
	ctx := context.Background()

	first := core.DefaultState()
	first.MyMonthlyIncome = decimal.NewFromInt(100)
	first.Entries = []core.MonthlyEntry{
		{ID: "a", Month: "2026-01"},
		{ID: "b", Month: "2026-02"},
	}
	if err := s.Set(ctx, "u1", first); err != nil {
		t.Fatalf("set: %v", err)
	}

	// A merge replaces every top-level field it carries, arrays
	// included: the shorter entries list wins wholesale.
	second := core.DefaultState()
	second.MyMonthlyIncome = decimal.NewFromInt(200)
	second.Entries = []core.MonthlyEntry{{ID: "c", Month: "2026-03"}}
	if err := s.Merge(ctx, "u1", second); err != nil {
		t.Fatalf("merge: %v", err)
	}

	got, _, err := s.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !got.MyMonthlyIncome.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("income = %s", got.MyMonthlyIncome)
	}
	if len(got.Entries) != 1 || got.Entries[0].ID != "c" {
		t.Fatalf("entries not replaced wholesale: %+v", got.Entries)
	}
	if s.Merges() != 1 {
		t.Fatalf("merges = %d", s.Merges())
	}
}

func TestMergeCreatesDocument(t *testing.T) {
	s := New()
	st := core.DefaultState()
	st.MyTotalSavings = decimal.NewFromInt(7)
	if err := s.Merge(context.Background(), "u1", st); err != nil {
		t.Fatalf("merge: %v", err)
	}
	got, found, err := s.Get(context.Background(), "u1")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	if !got.MyTotalSavings.Equal(decimal.NewFromInt(7)) {
		t.Fatalf("savings = %s", got.MyTotalSavings)
	}
}
