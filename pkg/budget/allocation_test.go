package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, time.March, 10, 9, 30, 0, 0, time.UTC)

func TestSummarize(t *testing.T) {
	t.Run("should compute weekly totals of the default budget", func(t *testing.T) {
		// when
		summary := Summarize(DefaultState(), Weekly, now)

		// then
		assert.Equal(t, 1250.0, summary.TotalWeeklyIncome)
		assert.Equal(t, 750.0, summary.TotalBudgetedWeekly)
		assert.Equal(t, 500.0, summary.RemainingToAssign)
		assert.False(t, summary.IsZeroBalanced)
		assert.True(t, summary.IsAllocationBalanced)
		assert.Equal(t, 24, summary.GoalProgressPercent)
		assert.Len(t, summary.Categories, 4)
	})

	t.Run("should report unassigned income as not zero balanced", func(t *testing.T) {
		// given
		state := DefaultState()
		state.Allocations.Savings = 0
		state.IncomeSources = []IncomeSource{{Id: "1", Name: "Salary", Amount: 1250, Frequency: Weekly}}
		state.Categories = []Category{
			{Id: "c1", Name: "Rent", Budgeted: 375, Frequency: Weekly, Classification: Bill},
			{Id: "c2", Name: "Groceries", Budgeted: 100, Frequency: Weekly, Classification: Movable},
			{Id: "c3", Name: "Gas", Budgeted: 75, Frequency: Weekly, Classification: Movable},
		}

		// when
		summary := Summarize(state, Weekly, now)

		// then
		assert.Equal(t, 1250.0, summary.TotalWeeklyIncome)
		assert.Equal(t, 550.0, summary.TotalBudgetedWeekly)
		assert.Equal(t, 700.0, summary.RemainingToAssign)
		assert.False(t, summary.IsZeroBalanced)
	})

	t.Run("should express totals in the monthly view", func(t *testing.T) {
		// when
		summary := Summarize(DefaultState(), Monthly, now)

		// then
		assert.Equal(t, 5000.0, summary.TotalIncome)
		assert.Equal(t, 3000.0, summary.TotalBudgeted)
		assert.Equal(t, 2000.0, summary.RemainingToAssign)
		assert.Equal(t, 500.0, summary.RemainingToAssignWeekly)
		assert.Equal(t, 1500.0, summary.Categories[0].ViewAllocation)
	})

	t.Run("should be zero balanced when everything is assigned", func(t *testing.T) {
		// given
		state := DefaultState()
		state.Categories = append(state.Categories, Category{Id: "c5", Name: "Fun", Budgeted: 2000, Frequency: Monthly, Classification: Movable})

		// when
		summary := Summarize(state, Biweekly, now)

		// then
		assert.InDelta(t, 0, summary.RemainingToAssign, 1e-9)
		assert.True(t, summary.IsZeroBalanced)
	})

	t.Run("should subtract savings from the remaining amount", func(t *testing.T) {
		// given
		state := DefaultState()
		state.Allocations.Savings = 100

		// when
		summary := Summarize(state, Weekly, now)

		// then
		assert.Equal(t, 400.0, summary.RemainingToAssign)
	})

	t.Run("should cap category progress at 100 percent", func(t *testing.T) {
		// given
		state := DefaultState()
		state.Categories[1].Spent = 250

		// when
		summary := Summarize(state, Weekly, now)

		// then
		assert.Equal(t, 100.0, summary.Categories[1].ProgressPercent)
		assert.Equal(t, 0.0, summary.Categories[2].ProgressPercent)
	})

	t.Run("should attach a payoff estimate to debt categories only", func(t *testing.T) {
		// when
		summary := Summarize(DefaultState(), Weekly, now)

		// then
		assert.Nil(t, summary.Categories[0].Payoff)
		require.NotNil(t, summary.Categories[3].Payoff)
		assert.Equal(t, 7, summary.Categories[3].Payoff.MonthsLeft)
	})
}

func TestEstimatePayoff(t *testing.T) {
	t.Run("should project the payoff month from the weekly payment", func(t *testing.T) {
		// given
		debt := Category{Name: "Card", Budgeted: 200, Frequency: Weekly, Classification: Debt, TotalBalance: 5000}

		// when
		estimate := EstimatePayoff(debt, now)

		// then
		assert.False(t, estimate.Never)
		assert.Equal(t, 200.0, estimate.WeeklyPayment)
		assert.Equal(t, 7, estimate.MonthsLeft)
		assert.Equal(t, time.Date(2026, time.October, 10, 9, 30, 0, 0, time.UTC), estimate.PayoffMonth)
		assert.Zero(t, estimate.RequiredWeeklyPayment)
	})

	t.Run("should compute the payment needed for a target", func(t *testing.T) {
		// given
		debt := Category{Name: "Loan", Budgeted: 400, Frequency: Monthly, Classification: Debt, TotalBalance: 5000, TargetPayoffMonths: 10}

		// when
		estimate := EstimatePayoff(debt, now)

		// then
		assert.Equal(t, 100.0, estimate.WeeklyPayment)
		assert.Equal(t, 13, estimate.MonthsLeft)
		assert.Equal(t, 125.0, estimate.RequiredWeeklyPayment)
	})

	t.Run("should never pay off without a payment", func(t *testing.T) {
		// when
		estimate := EstimatePayoff(Category{Budgeted: 0, Frequency: Weekly, TotalBalance: 900}, now)

		// then
		assert.True(t, estimate.Never)
		assert.Zero(t, estimate.MonthsLeft)
		assert.True(t, estimate.PayoffMonth.IsZero())
	})
}

func TestGoalProgressPercent(t *testing.T) {
	assert.Equal(t, 24, GoalProgressPercent(Goal{Target: 5000, Current: 1200}))
	assert.Equal(t, 100, GoalProgressPercent(Goal{Target: 5000, Current: 8000}))
	assert.Equal(t, 100, GoalProgressPercent(Goal{Target: 0, Current: 3}))
	assert.Equal(t, 0, GoalProgressPercent(Goal{Target: 0, Current: 0}))
}

func TestUpdateIncomeSources(t *testing.T) {
	t.Run("should set income to the weekly total and keep the other buckets", func(t *testing.T) {
		// given
		state := DefaultState()
		state.Allocations.Bills = 300

		// when
		next, err := UpdateIncomeSources(state, []IncomeSource{
			{Id: "1", Name: "Salary", Amount: 4000, Frequency: Monthly},
			{Name: "Side gig", Amount: 400, Frequency: Biweekly},
		})

		// then
		require.NoError(t, err)
		assert.Equal(t, 1200.0, next.Allocations.Income)
		assert.Equal(t, 300.0, next.Allocations.Bills)
		assert.Equal(t, 1250.0, next.Allocations.Spendable)
		assert.NotEmpty(t, next.IncomeSources[1].Id)
		assert.Equal(t, 1250.0, state.Allocations.Income, "input state must not change")
	})

	t.Run("should reject a negative amount", func(t *testing.T) {
		// given
		state := DefaultState()

		// when
		next, err := UpdateIncomeSources(state, []IncomeSource{{Name: "Refund", Amount: -5, Frequency: Weekly}})

		// then
		assert.ErrorIs(t, err, ErrInvalidIncomeSource)
		assert.Equal(t, state, next)
	})

	t.Run("should reject an unknown frequency", func(t *testing.T) {
		// when
		_, err := UpdateIncomeSources(DefaultState(), []IncomeSource{{Name: "Bonus", Amount: 5, Frequency: "yearly"}})

		// then
		assert.ErrorIs(t, err, ErrInvalidIncomeSource)
	})
}

func TestUpdateCategories(t *testing.T) {
	t.Run("should carry spent amounts of kept categories", func(t *testing.T) {
		// given
		state := DefaultState()
		state.Categories[1].Spent = 42

		// when
		next, err := UpdateCategories(state, []Category{
			{Id: "c2", Name: "Food", Budgeted: 120, Spent: 0, Frequency: Weekly, Classification: Movable},
			{Name: "Gym", Budgeted: 40, Spent: 99, Frequency: Monthly, Classification: Bill},
		})

		// then
		require.NoError(t, err)
		require.Len(t, next.Categories, 2)
		assert.Equal(t, "Food", next.Categories[0].Name)
		assert.Equal(t, 42.0, next.Categories[0].Spent)
		assert.Zero(t, next.Categories[1].Spent)
		assert.NotEmpty(t, next.Categories[1].Id)
	})

	t.Run("should reject duplicated ids", func(t *testing.T) {
		// when
		_, err := UpdateCategories(DefaultState(), []Category{
			{Id: "a", Name: "One", Frequency: Weekly, Classification: Movable},
			{Id: "a", Name: "Two", Frequency: Weekly, Classification: Movable},
		})

		// then
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})

	t.Run("should reject an unknown classification", func(t *testing.T) {
		// when
		_, err := UpdateCategories(DefaultState(), []Category{{Name: "Odd", Frequency: Weekly, Classification: "luxury"}})

		// then
		assert.ErrorIs(t, err, ErrInvalidCategory)
	})
}

func TestUpdateGoal(t *testing.T) {
	t.Run("should update name and target", func(t *testing.T) {
		// when
		next, err := UpdateGoal(DefaultState(), Goal{Name: "Vacation", Target: 3000, Current: 1500})

		// then
		require.NoError(t, err)
		assert.Equal(t, Goal{Name: "Vacation", Target: 3000, Current: 1500}, next.Goal)
	})

	t.Run("should never lower current progress", func(t *testing.T) {
		// when
		next, err := UpdateGoal(DefaultState(), Goal{Name: "Vacation", Target: 3000, Current: 10})

		// then
		require.NoError(t, err)
		assert.Equal(t, 1200.0, next.Goal.Current)
	})

	t.Run("should reject a goal without a positive target", func(t *testing.T) {
		// when
		_, err := UpdateGoal(DefaultState(), Goal{Name: "Vacation", Target: 0})

		// then
		assert.ErrorIs(t, err, ErrInvalidGoal)
	})
}
