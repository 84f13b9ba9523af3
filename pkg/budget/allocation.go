package budget

import (
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

var ErrInvalidIncomeSource = errors.New("invalid income source")
var ErrInvalidCategory = errors.New("invalid category")
var ErrInvalidGoal = errors.New("invalid goal")

// Summary is the derived view of a budget expressed in a display frequency.
type Summary struct {
	View Frequency

	TotalWeeklyIncome       float64
	TotalBudgetedWeekly     float64
	RemainingToAssignWeekly float64

	TotalIncome       float64
	TotalBudgeted     float64
	RemainingToAssign float64
	// IsZeroBalanced compares RemainingToAssign, in display units, against the tolerance.
	IsZeroBalanced bool
	// IsAllocationBalanced reports the advisory income = bills + savings + spendable invariant.
	IsAllocationBalanced bool

	Allocations         Allocation
	Categories          []CategoryLine
	GoalProgressPercent int
}

type CategoryLine struct {
	Category        Category
	ViewAllocation  float64
	ProgressPercent float64
	Payoff          *PayoffEstimate
}

type PayoffEstimate struct {
	// Never is set when the category receives no payment.
	Never         bool
	WeeklyPayment float64
	MonthsLeft    int
	PayoffMonth   time.Time
	// RequiredWeeklyPayment is the payment needed to hit TargetPayoffMonths, zero when no target is set.
	RequiredWeeklyPayment float64
}

// Summarize computes totals and the remaining amount to assign. Internal values are weekly;
// the non-weekly fields are re-expressed in view.
func Summarize(state State, view Frequency, now time.Time) Summary {
	totalWeeklyIncome := 0.0
	for _, source := range state.IncomeSources {
		totalWeeklyIncome += ToWeekly(source.Amount, source.Frequency)
	}
	totalBudgetedWeekly := 0.0
	for _, category := range state.Categories {
		totalBudgetedWeekly += ToWeekly(category.Budgeted, category.Frequency)
	}
	remainingWeekly := totalWeeklyIncome - totalBudgetedWeekly - state.Allocations.Savings
	remaining := FromWeekly(remainingWeekly, view)

	lines := make([]CategoryLine, 0, len(state.Categories))
	for _, category := range state.Categories {
		lines = append(lines, categoryLine(category, view, now))
	}

	return Summary{
		View:                    view,
		TotalWeeklyIncome:       totalWeeklyIncome,
		TotalBudgetedWeekly:     totalBudgetedWeekly,
		RemainingToAssignWeekly: remainingWeekly,
		TotalIncome:             FromWeekly(totalWeeklyIncome, view),
		TotalBudgeted:           FromWeekly(totalBudgetedWeekly, view),
		RemainingToAssign:       remaining,
		IsZeroBalanced:          math.Abs(remaining) < ZeroBalanceTolerance,
		IsAllocationBalanced:    state.Allocations.Balanced(),
		Allocations:             state.Allocations,
		Categories:              lines,
		GoalProgressPercent:     GoalProgressPercent(state.Goal),
	}
}

func categoryLine(category Category, view Frequency, now time.Time) CategoryLine {
	viewAllocation := FromWeekly(ToWeekly(category.Budgeted, category.Frequency), view)
	denominator := viewAllocation
	if denominator == 0 {
		denominator = 1
	}
	line := CategoryLine{
		Category:        category,
		ViewAllocation:  viewAllocation,
		ProgressPercent: math.Min(100, category.Spent/denominator*100),
	}
	if category.Classification == Debt {
		estimate := EstimatePayoff(category, now)
		line.Payoff = &estimate
	}
	return line
}

// GoalProgressPercent returns how far the goal is, capped at 100.
func GoalProgressPercent(goal Goal) int {
	target := goal.Target
	if target == 0 {
		target = 1
	}
	return int(math.Min(100, math.Round(goal.Current/target*100)))
}

// EstimatePayoff projects when a debt category is paid off at its current budgeted payment.
func EstimatePayoff(category Category, now time.Time) PayoffEstimate {
	estimate := PayoffEstimate{WeeklyPayment: ToWeekly(category.Budgeted, category.Frequency)}
	if category.TargetPayoffMonths > 0 {
		estimate.RequiredWeeklyPayment = category.TotalBalance / float64(category.TargetPayoffMonths*4)
	}
	if estimate.WeeklyPayment <= 0 {
		estimate.Never = true
		return estimate
	}
	monthlyPayment := estimate.WeeklyPayment * 4
	estimate.MonthsLeft = int(math.Ceil(category.TotalBalance / monthlyPayment))
	estimate.PayoffMonth = now.AddDate(0, estimate.MonthsLeft, 0)
	return estimate
}

// UpdateIncomeSources replaces the income sources and sets allocations.income to the new weekly
// total. Bills, savings and spendable are left as they are until the next explicit reallocation.
func UpdateIncomeSources(state State, sources []IncomeSource) (State, error) {
	next := state.clone()
	next.IncomeSources = make([]IncomeSource, 0, len(sources))
	totalWeeklyIncome := 0.0
	for _, source := range sources {
		if !finite(source.Amount) || source.Amount < 0 {
			return state, fmt.Errorf("%w: amount of %q must be a non-negative number", ErrInvalidIncomeSource, source.Name)
		}
		if !source.Frequency.Valid() {
			return state, fmt.Errorf("%w: unknown frequency %q", ErrInvalidIncomeSource, source.Frequency)
		}
		if source.Id == "" {
			source.Id = "inc" + uuid.NewString()
		}
		totalWeeklyIncome += ToWeekly(source.Amount, source.Frequency)
		next.IncomeSources = append(next.IncomeSources, source)
	}
	next.Allocations.Income = totalWeeklyIncome
	return next, nil
}

// UpdateCategories replaces the category list. Spent amounts are carried over from existing
// categories with the same id, so an edit never wipes the current period's activity.
func UpdateCategories(state State, categories []Category) (State, error) {
	next := state.clone()
	next.Categories = make([]Category, 0, len(categories))
	seen := make(map[string]bool, len(categories))
	for _, category := range categories {
		if !finite(category.Budgeted, category.TotalBalance) || category.Budgeted < 0 || category.TotalBalance < 0 {
			return state, fmt.Errorf("%w: amounts of %q must be non-negative numbers", ErrInvalidCategory, category.Name)
		}
		if !category.Frequency.Valid() {
			return state, fmt.Errorf("%w: unknown frequency %q", ErrInvalidCategory, category.Frequency)
		}
		if !category.Classification.Valid() {
			return state, fmt.Errorf("%w: unknown classification %q", ErrInvalidCategory, category.Classification)
		}
		if category.TargetPayoffMonths < 0 {
			return state, fmt.Errorf("%w: target payoff months must not be negative", ErrInvalidCategory)
		}
		if category.Id == "" {
			category.Id = "c" + uuid.NewString()
		}
		if seen[category.Id] {
			return state, fmt.Errorf("%w: duplicated id %q", ErrInvalidCategory, category.Id)
		}
		seen[category.Id] = true

		category.Spent = 0
		if idx := state.findCategory(category.Id); idx != -1 {
			category.Spent = state.Categories[idx].Spent
		}
		next.Categories = append(next.Categories, category)
	}
	return next, nil
}

// UpdateGoal changes the goal name and target. Current never decreases through a manual edit.
func UpdateGoal(state State, goal Goal) (State, error) {
	if goal.Name == "" {
		return state, fmt.Errorf("%w: name is required", ErrInvalidGoal)
	}
	if !finite(goal.Target, goal.Current) || goal.Target <= 0 || goal.Current < 0 {
		return state, fmt.Errorf("%w: target must be positive and current non-negative", ErrInvalidGoal)
	}
	next := state.clone()
	next.Goal = Goal{
		Name:    goal.Name,
		Target:  goal.Target,
		Current: math.Max(state.Goal.Current, goal.Current),
	}
	return next, nil
}
