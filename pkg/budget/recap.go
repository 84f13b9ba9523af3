package budget

import "time"

type WeeklyStats struct {
	From           string
	To             string
	Spent          float64
	Saved          float64
	DaysCheckedIn  int
	CheckinsFilled int
	SavingsAdded   float64
	IncomeReceived float64
	Breakdown      []CategorySpend
}

// ComputeWeeklyStats aggregates the history of the seven days ending on today.
func ComputeWeeklyStats(state State, today time.Time) WeeklyStats {
	to := today.UTC().Format(DateLayout)
	from := today.UTC().AddDate(0, 0, -(CheckinSlots - 1)).Format(DateLayout)

	stats := WeeklyStats{
		From:           from,
		To:             to,
		CheckinsFilled: state.CurrentWeekCheckins.Filled(),
		SavingsAdded:   state.Allocations.Savings,
		IncomeReceived: state.Allocations.Income,
		Breakdown:      []CategorySpend{},
	}
	for _, record := range state.History {
		// ISO dates compare lexically
		if record.Date < from || record.Date > to {
			continue
		}
		stats.Spent += record.Spent
		stats.Saved += record.Saved
		if record.CheckInCompleted {
			stats.DaysCheckedIn++
		}
		for _, spend := range record.Breakdown {
			stats.Breakdown = mergeSpend(stats.Breakdown, spend.Category, spend.Amount)
		}
	}
	return stats
}

type GoalStatus string

const (
	GoalCrushed    GoalStatus = "CRUSHED"
	GoalInProgress GoalStatus = "IN PROGRESS"
)

type MonthlyMetrics struct {
	TotalIncome   float64
	SavingsGrowth float64
	BillsBudgeted float64
	Goal          Goal
	GoalStatus    GoalStatus
	GoalProgress  int
}

func ComputeMonthlyMetrics(state State) MonthlyMetrics {
	metrics := MonthlyMetrics{
		TotalIncome:   state.Allocations.Income,
		SavingsGrowth: state.Allocations.Savings,
		Goal:          state.Goal,
		GoalStatus:    GoalInProgress,
		GoalProgress:  GoalProgressPercent(state.Goal),
	}
	for _, category := range state.Categories {
		if category.Classification == Bill {
			metrics.BillsBudgeted += ToWeekly(category.Budgeted, category.Frequency)
		}
	}
	if state.Goal.Current >= state.Goal.Target {
		metrics.GoalStatus = GoalCrushed
	}
	return metrics
}
