package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// Closed category sets consumed by forms, aggregation and validation.
// Order matters: the first element is the default for new holdings and
// insurance items, the last is the catch-all for untyped entries.
var (
	SavingsTypes = []string{"MF", "Stocks", "Gold", "Property", "Cash", "FD", "Crypto", "Other"}

	ExpenseTypes = []string{"Rent", "Groceries", "Utilities", "Transport", "Education", "Entertainment", "Healthcare", "Misc"}

	InsuranceTypes = []string{"Company Health", "Term", "Personal Health", "Parents Health"}
)

const (
	// DefaultSavingsType is applied when an entry carries savings but no type.
	DefaultSavingsType = "Other"
	// DefaultExpenseType is applied when an entry carries expenses but no type.
	DefaultExpenseType = "Misc"
	// UncategorizedLabel buckets entries whose expense type is absent.
	UncategorizedLabel = "Uncategorized"
)

type (
	// MonthlyEntry is one recorded month's savings/expense pair. Multiple
	// entries may share the same month.
	MonthlyEntry struct {
		ID          string          `json:"id"`
		Month       string          `json:"month"` // YYYY-MM
		Savings     decimal.Decimal `json:"savings"`
		Expenses    decimal.Decimal `json:"expenses"`
		SavingsType string          `json:"savingsType,omitempty"`
		ExpenseType string          `json:"expenseType,omitempty"`
		Comment     string          `json:"comment,omitempty"`
	}

	// SavingsHolding is one categorized chunk of current savings/assets.
	SavingsHolding struct {
		ID     string          `json:"id"`
		Type   string          `json:"type"`
		Amount decimal.Decimal `json:"amount"`
	}

	// InsuranceItem records one coverage: type, who it covers, and the limit.
	InsuranceItem struct {
		ID            string          `json:"id"`
		Type          string          `json:"type"`
		CoveredPeople string          `json:"coveredPeople"`
		Limit         decimal.Decimal `json:"limit"`
	}

	// FinanceState is the root aggregate: all of a household's financial
	// data, persisted as a whole on every mutation. Field names match the
	// document schema so a remote document written by any client round-trips.
	FinanceState struct {
		MyMonthlyIncome     decimal.Decimal  `json:"myMonthlyIncome"`
		SpouseMonthlyIncome decimal.Decimal  `json:"spouseMonthlyIncome"`
		MyTotalSavings      decimal.Decimal  `json:"myTotalSavings"`
		SpouseTotalSavings  decimal.Decimal  `json:"spouseTotalSavings"`
		Entries             []MonthlyEntry   `json:"entries"`
		SavingsHoldings     []SavingsHolding `json:"savingsHoldings"`
		Insurances          []InsuranceItem  `json:"insurances"`
	}
)

// Scalar field keys accepted by the state store.
const (
	FieldMyMonthlyIncome     = "myMonthlyIncome"
	FieldSpouseMonthlyIncome = "spouseMonthlyIncome"
	FieldMyTotalSavings      = "myTotalSavings"
	FieldSpouseTotalSavings  = "spouseTotalSavings"
)

// DefaultState returns the empty aggregate a fresh session starts from.
func DefaultState() FinanceState {
	return FinanceState{
		Entries:         []MonthlyEntry{},
		SavingsHoldings: []SavingsHolding{},
		Insurances:      []InsuranceItem{},
	}
}

// Normalize fills absent sequence fields with empty slices, guarding
// against schema drift in documents written by older clients. It mutates
// nothing shared: callers pass a value and keep the returned one.
func Normalize(s FinanceState) FinanceState {
	if s.Entries == nil {
		s.Entries = []MonthlyEntry{}
	}
	if s.SavingsHoldings == nil {
		s.SavingsHoldings = []SavingsHolding{}
	}
	if s.Insurances == nil {
		s.Insurances = []InsuranceItem{}
	}
	return s
}

// Clone returns a deep copy; mutators operate on copies so the previous
// snapshot is never mutated in place.
func (s FinanceState) Clone() FinanceState {
	out := s
	out.Entries = append([]MonthlyEntry(nil), s.Entries...)
	out.SavingsHoldings = append([]SavingsHolding(nil), s.SavingsHoldings...)
	out.Insurances = append([]InsuranceItem(nil), s.Insurances...)
	return Normalize(out)
}

// Net is the entry's savings minus expenses.
func (e MonthlyEntry) Net() decimal.Decimal {
	return e.Savings.Sub(e.Expenses)
}

// CurrentMonth returns the current calendar month in YYYY-MM form, the
// default for new entries.
func CurrentMonth() string {
	return time.Now().Format("2006-01")
}

// ValidSavingsType reports whether t is a member of SavingsTypes.
// Free-form holding types are tolerated elsewhere; this only backs form
// rendering and aggregation defaults.
func ValidSavingsType(t string) bool { return contains(SavingsTypes, t) }

// ValidExpenseType reports whether t is a member of ExpenseTypes.
func ValidExpenseType(t string) bool { return contains(ExpenseTypes, t) }

// ValidInsuranceType reports whether t is a member of InsuranceTypes.
func ValidInsuranceType(t string) bool { return contains(InsuranceTypes, t) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
