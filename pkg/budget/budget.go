package budget

import (
	"math"
	"slices"
)

// StorageKey identifies the budget snapshot of a user in the snapshot store.
const StorageKey = "zenzero_state"

// Tolerance used by every zero-balance comparison.
const ZeroBalanceTolerance = 0.01

// MiscCategory labels spending that could not be attributed to a category.
const MiscCategory = "Misc"

const DateLayout = "2006-01-02"

type Classification string

const (
	Movable Classification = "movable"
	Bill    Classification = "bill"
	Debt    Classification = "debt"
)

func (c Classification) Valid() bool {
	switch c {
	case Movable, Bill, Debt:
		return true
	}
	return false
}

type IncomeSource struct {
	Id        string
	Name      string
	Amount    float64
	Frequency Frequency
}

type Category struct {
	Id       string
	Name     string
	Budgeted float64
	// Spent accumulates within the current activity period.
	Spent          float64
	Frequency      Frequency
	Classification Classification
	// DueDate is a day of month or a specific date, free text.
	DueDate string
	// TotalBalance is the remaining balance of a debt category.
	TotalBalance float64
	PayoffMonths int
	// TargetPayoffMonths is the payoff horizon chosen by the user, used for estimation only.
	TargetPayoffMonths int
	Icon               string
}

// Allocation holds the budget split in canonical weekly terms.
type Allocation struct {
	Income    float64
	Bills     float64
	Savings   float64
	Spendable float64
	Total     float64
}

// Unassigned returns income minus everything allocated.
func (a Allocation) Unassigned() float64 {
	return a.Income - (a.Bills + a.Savings + a.Spendable)
}

// Balanced reports whether the allocation satisfies the zero-based invariant.
func (a Allocation) Balanced() bool {
	return math.Abs(a.Unassigned()) <= ZeroBalanceTolerance
}

type Goal struct {
	Name    string
	Target  float64
	Current float64
}

type CategorySpend struct {
	Category string
	Amount   float64
}

type DailyRecord struct {
	// Date is an ISO calendar day (YYYY-MM-DD) and the unique key of the record.
	Date             string
	Spent            float64
	Saved            float64
	CheckInCompleted bool
	Breakdown        []CategorySpend
}

type Badge struct {
	Id          string
	Name        string
	Description string
	Icon        string
	EarnedAt    string
}

const CheckinSlots = 7

type WeekCheckins [CheckinSlots]bool

// Filled returns the number of check-in slots already used this week.
func (w WeekCheckins) Filled() int {
	n := 0
	for _, slot := range w {
		if slot {
			n++
		}
	}
	return n
}

// State is the root of a user's budget. Operations in this package never mutate a State
// they receive; they return a new one.
type State struct {
	Allocations         Allocation
	IncomeSources       []IncomeSource
	Categories          []Category
	Goal                Goal
	History             []DailyRecord
	CurrentWeekCheckins WeekCheckins
	Badges              []Badge
}

func (s State) clone() State {
	c := s
	c.IncomeSources = slices.Clone(s.IncomeSources)
	c.Categories = slices.Clone(s.Categories)
	c.Badges = slices.Clone(s.Badges)
	c.History = slices.Clone(s.History)
	for i, record := range s.History {
		c.History[i] = record.clone()
	}
	return c
}

func (r DailyRecord) clone() DailyRecord {
	c := r
	c.Breakdown = slices.Clone(r.Breakdown)
	return c
}

func (s State) findCategory(id string) int {
	if id == "" {
		return -1
	}
	for idx, category := range s.Categories {
		if category.Id == id {
			return idx
		}
	}
	return -1
}

func (s State) findRecord(date string) int {
	for idx, record := range s.History {
		if record.Date == date {
			return idx
		}
	}
	return -1
}

func (s State) hasBadge(id string) bool {
	for _, badge := range s.Badges {
		if badge.Id == id {
			return true
		}
	}
	return false
}

// DebtCategories returns copies of all categories classified as debt.
func (s State) DebtCategories() []Category {
	var debts []Category
	for _, category := range s.Categories {
		if category.Classification == Debt {
			debts = append(debts, category)
		}
	}
	return debts
}

// LastRecords returns copies of the last n history records.
func (s State) LastRecords(n int) []DailyRecord {
	if n > len(s.History) {
		n = len(s.History)
	}
	records := make([]DailyRecord, 0, n)
	for _, record := range s.History[len(s.History)-n:] {
		records = append(records, record.clone())
	}
	return records
}

// DefaultState is the budget every user starts with and the fallback for unreadable snapshots.
func DefaultState() State {
	return State{
		Allocations: Allocation{
			Income:    1250,
			Bills:     0,
			Savings:   0,
			Spendable: 1250,
			Total:     1250,
		},
		IncomeSources: []IncomeSource{
			{Id: "1", Name: "Primary Salary", Amount: 5000, Frequency: Monthly},
		},
		Categories: []Category{
			{Id: "c1", Name: "Rent", Budgeted: 375, Frequency: Weekly, Classification: Bill, DueDate: "1"},
			{Id: "c2", Name: "Groceries", Budgeted: 100, Frequency: Weekly, Classification: Movable},
			{Id: "c3", Name: "Gas", Budgeted: 75, Frequency: Weekly, Classification: Movable},
			{Id: "c4", Name: "Credit Card", Budgeted: 200, Frequency: Weekly, Classification: Debt, TotalBalance: 5000, PayoffMonths: 6, DueDate: "15"},
		},
		Goal: Goal{
			Name:    "Emergency Fund",
			Target:  5000,
			Current: 1200,
		},
		History: []DailyRecord{},
		Badges:  []Badge{},
	}
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
