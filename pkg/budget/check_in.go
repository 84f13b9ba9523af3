package budget

import (
	"fmt"
	"time"
)

// BuildCheckInRecord turns the amounts entered per category id during a daily check-in into the
// record of that day. Amounts that are not positive are dropped.
func BuildCheckInRecord(state State, breakdown map[string]float64, date string) (DailyRecord, error) {
	record := DailyRecord{
		Date:             date,
		Saved:            state.Allocations.Savings,
		CheckInCompleted: true,
		Breakdown:        []CategorySpend{},
	}

	byName := map[string]int{}
	add := func(name string, amount float64) {
		record.Spent += amount
		if idx, ok := byName[name]; ok {
			record.Breakdown[idx].Amount += amount
			return
		}
		byName[name] = len(record.Breakdown)
		record.Breakdown = append(record.Breakdown, CategorySpend{Category: name, Amount: amount})
	}

	for categoryId, amount := range breakdown {
		if !finite(amount) {
			return DailyRecord{}, fmt.Errorf("%w: spend for %q", ErrInvalidAmount, categoryId)
		}
	}
	// Category order first, so the breakdown is stable.
	for _, category := range state.Categories {
		if amount := breakdown[category.Id]; amount > 0 {
			add(category.Name, amount)
		}
	}
	for categoryId, amount := range breakdown {
		if state.findCategory(categoryId) == -1 && amount > 0 {
			add(MiscCategory, amount)
		}
	}
	return record, nil
}

// CompleteCheckIn stores the record of a daily check-in, fills the next free weekly slot and
// awards check-in badges.
func CompleteCheckIn(state State, record DailyRecord, now time.Time) (State, []Badge) {
	next, awarded := AwardBadges(state, CheckInBadges(state, record), now)

	record = record.clone()
	if idx := next.findRecord(record.Date); idx != -1 {
		next.History[idx] = record
	} else {
		next.History = append(next.History, record)
	}

	// First free slot, not the weekday.
	for i, filled := range next.CurrentWeekCheckins {
		if !filled {
			next.CurrentWeekCheckins[i] = true
			break
		}
	}
	return next, awarded
}

// CompleteWeeklyReset closes the weekly ritual: it evaluates budget discipline and starts a new
// check-in week.
func CompleteWeeklyReset(state State, now time.Time) (State, []Badge) {
	next, awarded := AwardBadges(state, WeeklyResetBadges(state), now)
	next.CurrentWeekCheckins = WeekCheckins{}
	return next, awarded
}

// CompleteMonthlyRecap closes the monthly ritual. The goal is evaluated before it is replaced;
// a replacement goal always starts from zero.
func CompleteMonthlyRecap(state State, newGoal *Goal, now time.Time) (State, []Badge, error) {
	if newGoal != nil && (newGoal.Name == "" || !finite(newGoal.Target) || newGoal.Target <= 0) {
		return state, nil, fmt.Errorf("%w: replacement goal needs a name and a positive target", ErrInvalidGoal)
	}
	next, awarded := AwardBadges(state, MonthlyRecapBadges(state), now)
	if newGoal != nil {
		next.Goal = Goal{Name: newGoal.Name, Target: newGoal.Target, Current: 0}
	}
	return next, awarded, nil
}
