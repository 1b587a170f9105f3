package state

import (
	"sync"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/techcolloid1243/finance-planner/internal/core"
)

func TestSetScalarField(t *testing.T) {
	st := New()
	s, rev := st.SetScalarField(core.FieldMyMonthlyIncome, decimal.NewFromInt(50000))
	if !s.MyMonthlyIncome.Equal(decimal.NewFromInt(50000)) {
		t.Fatalf("got %s", s.MyMonthlyIncome)
	}
	if rev != 1 {
		t.Fatalf("returned revision = %d", rev)
	}
	if got := st.Revision(); got != rev {
		t.Fatalf("store revision = %d, returned %d", got, rev)
	}
}

func TestSetScalarFieldUnknownKeyIsNoop(t *testing.T) {
	st := New()
	before, _ := st.Snapshot()
	after, _ := st.SetScalarField("totalDebt", decimal.NewFromInt(99))
	if !after.MyMonthlyIncome.Equal(before.MyMonthlyIncome) ||
		!after.MyTotalSavings.Equal(before.MyTotalSavings) {
		t.Fatalf("unknown key mutated state: %+v", after)
	}
}

func TestUpsertEntryInsertPrepends(t *testing.T) {
	st := New()
	first := st.UpsertEntry(core.MonthlyEntry{Month: "2026-01", Savings: decimal.NewFromInt(1000)})
	second := st.UpsertEntry(core.MonthlyEntry{Month: "2026-02", Savings: decimal.NewFromInt(2000)})

	if first.ID == "" || second.ID == "" || first.ID == second.ID {
		t.Fatalf("expected distinct generated ids, got %q and %q", first.ID, second.ID)
	}
	s, _ := st.Snapshot()
	if len(s.Entries) != 2 {
		t.Fatalf("len = %d", len(s.Entries))
	}
	if s.Entries[0].ID != second.ID {
		t.Fatalf("newest entry not first: %+v", s.Entries)
	}
}

func TestUpsertEntryDefaults(t *testing.T) {
	st := New()
	e := st.UpsertEntry(core.MonthlyEntry{
		Savings:  decimal.NewFromInt(1000),
		Expenses: decimal.NewFromInt(500),
	})
	if e.Month != core.CurrentMonth() {
		t.Fatalf("month = %q", e.Month)
	}
	if e.SavingsType != core.DefaultSavingsType {
		t.Fatalf("savings type = %q", e.SavingsType)
	}
	if e.ExpenseType != core.DefaultExpenseType {
		t.Fatalf("expense type = %q", e.ExpenseType)
	}

	// Zero amounts stay untyped.
	zero := st.UpsertEntry(core.MonthlyEntry{Month: "2026-03"})
	if zero.SavingsType != "" || zero.ExpenseType != "" {
		t.Fatalf("zero entry got types: %+v", zero)
	}
}

func TestUpsertEntryUpdateInPlace(t *testing.T) {
	st := New()
	st.UpsertEntry(core.MonthlyEntry{Month: "2026-01"})
	target := st.UpsertEntry(core.MonthlyEntry{Month: "2026-02"})
	st.UpsertEntry(core.MonthlyEntry{Month: "2026-03"})

	target.Comment = "updated"
	target.Savings = decimal.NewFromInt(7500)
	got := st.UpsertEntry(target)
	if got.ID != target.ID {
		t.Fatalf("id changed on update: %q -> %q", target.ID, got.ID)
	}

	s, _ := st.Snapshot()
	if len(s.Entries) != 3 {
		t.Fatalf("update grew the list: len = %d", len(s.Entries))
	}
	// Position preserved: the updated entry stays in the middle.
	if s.Entries[1].ID != target.ID || s.Entries[1].Comment != "updated" {
		t.Fatalf("entry not updated in place: %+v", s.Entries)
	}
}

func TestRemoveEntryAbsentIDIsNoop(t *testing.T) {
	st := New()
	st.UpsertEntry(core.MonthlyEntry{Month: "2026-01"})
	st.RemoveEntry("nope")
	s, _ := st.Snapshot()
	if len(s.Entries) != 1 {
		t.Fatalf("len = %d", len(s.Entries))
	}
}

func TestRemoveEntry(t *testing.T) {
	st := New()
	keep := st.UpsertEntry(core.MonthlyEntry{Month: "2026-01"})
	drop := st.UpsertEntry(core.MonthlyEntry{Month: "2026-02"})
	st.RemoveEntry(drop.ID)
	s, _ := st.Snapshot()
	if len(s.Entries) != 1 || s.Entries[0].ID != keep.ID {
		t.Fatalf("got %+v", s.Entries)
	}
}

func TestUpsertHoldingDefaultType(t *testing.T) {
	st := New()
	h := st.UpsertHolding(core.SavingsHolding{Amount: decimal.NewFromInt(5000)})
	if h.Type != core.SavingsTypes[0] {
		t.Fatalf("type = %q", h.Type)
	}
}

func TestUpsertInsuranceDefaultType(t *testing.T) {
	st := New()
	in := st.UpsertInsurance(core.InsuranceItem{CoveredPeople: "Self"})
	if in.Type != core.InsuranceTypes[0] {
		t.Fatalf("type = %q", in.Type)
	}
}

func TestRemoveHoldingAndInsurance(t *testing.T) {
	st := New()
	h := st.UpsertHolding(core.SavingsHolding{Amount: decimal.NewFromInt(1)})
	in := st.UpsertInsurance(core.InsuranceItem{})
	st.RemoveHolding(h.ID)
	st.RemoveInsurance(in.ID)
	s, _ := st.Snapshot()
	if len(s.SavingsHoldings) != 0 || len(s.Insurances) != 0 {
		t.Fatalf("removal failed: %+v", s)
	}
}

func TestSubscribeDeliversEveryMutation(t *testing.T) {
	st := New()
	var revs []uint64
	unsub := st.Subscribe(func(_ core.FinanceState, rev uint64) {
		revs = append(revs, rev)
	})
	st.UpsertEntry(core.MonthlyEntry{Month: "2026-01"})
	st.SetScalarField(core.FieldMyTotalSavings, decimal.NewFromInt(1))
	unsub()
	st.UpsertEntry(core.MonthlyEntry{Month: "2026-02"})

	if len(revs) != 2 || revs[0] != 1 || revs[1] != 2 {
		t.Fatalf("revisions seen: %v", revs)
	}
}

func TestReplaceNotifiesAndNormalizes(t *testing.T) {
	st := New()
	var seen core.FinanceState
	st.Subscribe(func(s core.FinanceState, _ uint64) { seen = s })
	st.Replace(core.FinanceState{MyMonthlyIncome: decimal.NewFromInt(42)})
	if seen.Entries == nil {
		t.Fatalf("replaced state not normalized")
	}
	if !seen.MyMonthlyIncome.Equal(decimal.NewFromInt(42)) {
		t.Fatalf("got %s", seen.MyMonthlyIncome)
	}
}

func TestListenersDeliveredInRevisionOrder(t *testing.T) {
	st := New()
	entered := make(chan struct{})
	release := make(chan struct{})

	var mu sync.Mutex
	var seen []uint64
	var last core.FinanceState
	st.Subscribe(func(s core.FinanceState, rev uint64) {
		if rev == 1 {
			close(entered)
			<-release
		}
		mu.Lock()
		seen = append(seen, rev)
		last = s
		mu.Unlock()
	})

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		st.SetScalarField(core.FieldMyMonthlyIncome, decimal.NewFromInt(1))
	}()
	<-entered
	go func() {
		defer wg.Done()
		st.SetScalarField(core.FieldMyMonthlyIncome, decimal.NewFromInt(2))
	}()

	// Revision 1's listener is still blocked, so revision 2 must not
	// have been applied or delivered yet.
	mu.Lock()
	pending := len(seen)
	mu.Unlock()
	if pending != 0 {
		t.Fatalf("deliveries before release: %d", pending)
	}

	close(release)
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	if len(seen) != 2 || seen[0] != 1 || seen[1] != 2 {
		t.Fatalf("delivery order = %v", seen)
	}
	// The last delivery carries the newest state.
	if !last.MyMonthlyIncome.Equal(decimal.NewFromInt(2)) {
		t.Fatalf("last delivered income = %s", last.MyMonthlyIncome)
	}
}

func TestPureUpsertsDoNotMutateInput(t *testing.T) {
	s := core.DefaultState()
	s.Entries = []core.MonthlyEntry{{ID: "e", Month: "2026-01"}}
	s.SavingsHoldings = []core.SavingsHolding{{ID: "h", Type: "MF", Amount: decimal.NewFromInt(1)}}
	s.Insurances = []core.InsuranceItem{{ID: "i", Type: "Term"}}

	next, _ := UpsertEntry(s, core.MonthlyEntry{ID: "e", Month: "2026-02"})
	if s.Entries[0].Month != "2026-01" {
		t.Fatalf("input entries mutated: %+v", s.Entries)
	}
	if next.Entries[0].Month != "2026-02" {
		t.Fatalf("update lost: %+v", next.Entries)
	}

	next, _ = UpsertHolding(s, core.SavingsHolding{ID: "h", Type: "Gold", Amount: decimal.NewFromInt(2)})
	if s.SavingsHoldings[0].Type != "MF" {
		t.Fatalf("input holdings mutated: %+v", s.SavingsHoldings)
	}
	if next.SavingsHoldings[0].Type != "Gold" {
		t.Fatalf("update lost: %+v", next.SavingsHoldings)
	}

	next, _ = UpsertInsurance(s, core.InsuranceItem{ID: "i", Type: "Personal Health"})
	if s.Insurances[0].Type != "Term" {
		t.Fatalf("input insurances mutated: %+v", s.Insurances)
	}
	if next.Insurances[0].Type != "Personal Health" {
		t.Fatalf("update lost: %+v", next.Insurances)
	}
}

func TestSnapshotIsIsolated(t *testing.T) {
	st := New()
	st.UpsertEntry(core.MonthlyEntry{Month: "2026-01"})
	s, _ := st.Snapshot()
	s.Entries[0].Month = "1999-12"
	again, _ := st.Snapshot()
	if again.Entries[0].Month != "2026-01" {
		t.Fatalf("snapshot mutation leaked into the store")
	}
}
