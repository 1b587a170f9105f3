// Package state holds the single FinanceState snapshot and the mutator
// operations that produce new snapshots from it. Mutators are pure
// functions of (previous state, arguments); the Store applies them
// through one replacement primitive and fans the new snapshot out to
// registered listeners.
package state

import (
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/techcolloid1243/finance-planner/internal/core"
)

// Listener receives every new snapshot together with its revision.
// Listeners run synchronously inside the mutation and are delivered in
// revision order; they must not call back into the Store.
type Listener func(s core.FinanceState, revision uint64)

// Store owns the current snapshot. The application root creates one and
// hands read access to the persistence adapter and the view layer.
type Store struct {
	mu        sync.Mutex
	current   core.FinanceState
	revision  uint64
	listeners map[int]Listener
	nextID    int

	// notifyMu serializes mutations end to end: revision N's listeners
	// finish before revision N+1's begin, so the last local write
	// always carries the newest state.
	notifyMu sync.Mutex
}

// New returns a Store holding the empty default aggregate at revision 0.
func New() *Store {
	return &Store{
		current:   core.DefaultState(),
		listeners: map[int]Listener{},
	}
}

// Snapshot returns the current aggregate and its revision. The returned
// value is a deep copy; callers may keep it across mutations.
func (st *Store) Snapshot() (core.FinanceState, uint64) {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.current.Clone(), st.revision
}

// Revision returns the current revision without copying the snapshot.
func (st *Store) Revision() uint64 {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.revision
}

// Subscribe registers a listener and returns its unsubscribe function.
func (st *Store) Subscribe(fn Listener) func() {
	st.mu.Lock()
	id := st.nextID
	st.nextID++
	st.listeners[id] = fn
	st.mu.Unlock()
	return func() {
		st.mu.Lock()
		delete(st.listeners, id)
		st.mu.Unlock()
	}
}

// Replace adopts a whole new aggregate, e.g. one hydrated from storage.
// Like every mutation it bumps the revision and notifies listeners, so
// adopted state is re-persisted the same way user edits are.
func (st *Store) Replace(s core.FinanceState) {
	st.apply(func(core.FinanceState) core.FinanceState {
		return core.Normalize(s)
	})
}

func (st *Store) apply(mutate func(core.FinanceState) core.FinanceState) (core.FinanceState, uint64) {
	st.notifyMu.Lock()
	defer st.notifyMu.Unlock()

	st.mu.Lock()
	next := mutate(st.current.Clone())
	st.current = next
	st.revision++
	rev := st.revision
	fns := make([]Listener, 0, len(st.listeners))
	for _, fn := range st.listeners {
		fns = append(fns, fn)
	}
	st.mu.Unlock()

	// mu is released here so reads stay available while listeners run.
	for _, fn := range fns {
		fn(next.Clone(), rev)
	}
	return next, rev
}

// SetScalarField replaces one of the four numeric top-level fields and
// returns the new snapshot with the revision it produced. Unknown keys
// are a no-op; nothing surfaces to the caller.
func (st *Store) SetScalarField(key string, value decimal.Decimal) (core.FinanceState, uint64) {
	return st.apply(func(s core.FinanceState) core.FinanceState {
		return SetScalarField(s, key, value)
	})
}

// UpsertEntry inserts or updates a monthly entry and returns the stored
// form (with any defaults and the generated id applied).
func (st *Store) UpsertEntry(partial core.MonthlyEntry) core.MonthlyEntry {
	var stored core.MonthlyEntry
	st.apply(func(s core.FinanceState) core.FinanceState {
		next, e := UpsertEntry(s, partial)
		stored = e
		return next
	})
	return stored
}

// RemoveEntry drops the entry with the given id; absent ids are a no-op.
func (st *Store) RemoveEntry(id string) {
	st.apply(func(s core.FinanceState) core.FinanceState {
		return RemoveEntry(s, id)
	})
}

// UpsertHolding inserts or updates a savings holding.
func (st *Store) UpsertHolding(partial core.SavingsHolding) core.SavingsHolding {
	var stored core.SavingsHolding
	st.apply(func(s core.FinanceState) core.FinanceState {
		next, h := UpsertHolding(s, partial)
		stored = h
		return next
	})
	return stored
}

// RemoveHolding drops the holding with the given id; absent ids are a no-op.
func (st *Store) RemoveHolding(id string) {
	st.apply(func(s core.FinanceState) core.FinanceState {
		return RemoveHolding(s, id)
	})
}

// UpsertInsurance inserts or updates an insurance item.
func (st *Store) UpsertInsurance(partial core.InsuranceItem) core.InsuranceItem {
	var stored core.InsuranceItem
	st.apply(func(s core.FinanceState) core.FinanceState {
		next, in := UpsertInsurance(s, partial)
		stored = in
		return next
	})
	return stored
}

// RemoveInsurance drops the insurance item with the given id; absent ids
// are a no-op.
func (st *Store) RemoveInsurance(id string) {
	st.apply(func(s core.FinanceState) core.FinanceState {
		return RemoveInsurance(s, id)
	})
}

func newID() string { return uuid.NewString() }

// SetScalarField is the pure form of the scalar mutator.
func SetScalarField(s core.FinanceState, key string, value decimal.Decimal) core.FinanceState {
	switch key {
	case core.FieldMyMonthlyIncome:
		s.MyMonthlyIncome = value
	case core.FieldSpouseMonthlyIncome:
		s.SpouseMonthlyIncome = value
	case core.FieldMyTotalSavings:
		s.MyTotalSavings = value
	case core.FieldSpouseTotalSavings:
		s.SpouseTotalSavings = value
	}
	return s
}

// UpsertEntry is the pure form of the entry mutator. A matching id
// replaces that entry in place (position preserved); otherwise a new
// entry is synthesized with defaults and prepended.
func UpsertEntry(s core.FinanceState, partial core.MonthlyEntry) (core.FinanceState, core.MonthlyEntry) {
	if partial.ID != "" {
		for i, e := range s.Entries {
			if e.ID == partial.ID {
				entries := append([]core.MonthlyEntry(nil), s.Entries...)
				entries[i] = partial
				s.Entries = entries
				return s, partial
			}
		}
	}

	e := partial
	e.ID = newID()
	if e.Month == "" {
		e.Month = core.CurrentMonth()
	}
	if e.SavingsType == "" && e.Savings.IsPositive() {
		e.SavingsType = core.DefaultSavingsType
	}
	if e.ExpenseType == "" && e.Expenses.IsPositive() {
		e.ExpenseType = core.DefaultExpenseType
	}
	s.Entries = append([]core.MonthlyEntry{e}, s.Entries...)
	return s, e
}

// RemoveEntry is the pure form of entry removal.
func RemoveEntry(s core.FinanceState, id string) core.FinanceState {
	out := s.Entries[:0:0]
	for _, e := range s.Entries {
		if e.ID != id {
			out = append(out, e)
		}
	}
	s.Entries = out
	return core.Normalize(s)
}

// UpsertHolding is the pure form of the holding mutator.
func UpsertHolding(s core.FinanceState, partial core.SavingsHolding) (core.FinanceState, core.SavingsHolding) {
	if partial.ID != "" {
		for i, h := range s.SavingsHoldings {
			if h.ID == partial.ID {
				holdings := append([]core.SavingsHolding(nil), s.SavingsHoldings...)
				holdings[i] = partial
				s.SavingsHoldings = holdings
				return s, partial
			}
		}
	}

	h := partial
	h.ID = newID()
	if h.Type == "" {
		h.Type = core.SavingsTypes[0]
	}
	s.SavingsHoldings = append([]core.SavingsHolding{h}, s.SavingsHoldings...)
	return s, h
}

// RemoveHolding is the pure form of holding removal.
func RemoveHolding(s core.FinanceState, id string) core.FinanceState {
	out := s.SavingsHoldings[:0:0]
	for _, h := range s.SavingsHoldings {
		if h.ID != id {
			out = append(out, h)
		}
	}
	s.SavingsHoldings = out
	return core.Normalize(s)
}

// UpsertInsurance is the pure form of the insurance mutator.
func UpsertInsurance(s core.FinanceState, partial core.InsuranceItem) (core.FinanceState, core.InsuranceItem) {
	if partial.ID != "" {
		for i, in := range s.Insurances {
			if in.ID == partial.ID {
				insurances := append([]core.InsuranceItem(nil), s.Insurances...)
				insurances[i] = partial
				s.Insurances = insurances
				return s, partial
			}
		}
	}

	in := partial
	in.ID = newID()
	if in.Type == "" {
		in.Type = core.InsuranceTypes[0]
	}
	s.Insurances = append([]core.InsuranceItem{in}, s.Insurances...)
	return s, in
}

// RemoveInsurance is the pure form of insurance removal.
func RemoveInsurance(s core.FinanceState, id string) core.FinanceState {
	out := s.Insurances[:0:0]
	for _, in := range s.Insurances {
		if in.ID != id {
			out = append(out, in)
		}
	}
	s.Insurances = out
	return core.Normalize(s)
}
