package budget

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrInvalidAmount = errors.New("amount must be a positive number")
var ErrUnknownActivityKind = errors.New("unknown activity kind")

type ActivityKind string

const (
	Spending ActivityKind = "spending"
	Income   ActivityKind = "income"
	Savings  ActivityKind = "savings"
)

func (k ActivityKind) Valid() bool {
	switch k {
	case Spending, Income, Savings:
		return true
	}
	return false
}

// LogActivity applies one spending, income or savings event and records it in the history
// record of today. Invalid input leaves the state untouched.
func LogActivity(state State, kind ActivityKind, amount float64, categoryId string, today string) (State, error) {
	if !kind.Valid() {
		return state, fmt.Errorf("%w: %q", ErrUnknownActivityKind, kind)
	}
	if !finite(amount) || amount <= 0 {
		return state, ErrInvalidAmount
	}

	next := state.clone()
	categoryName := MiscCategory

	switch kind {
	case Income:
		next.Allocations.Income += amount
	case Spending:
		if idx := next.findCategory(categoryId); idx != -1 {
			next.Categories[idx].Spent += amount
			categoryName = next.Categories[idx].Name
		} else {
			log.Warnf("category %q not found, spending of %.2f recorded as %s", categoryId, amount, MiscCategory)
		}
	case Savings:
		next.Allocations.Savings += amount
		next.Goal.Current += amount
	}

	spent, saved := 0.0, 0.0
	if kind == Spending {
		spent = amount
	}
	if kind == Savings {
		saved = amount
	}

	idx := next.findRecord(today)
	if idx == -1 {
		record := DailyRecord{
			Date:             today,
			Spent:            spent,
			Saved:            saved,
			CheckInCompleted: false,
			Breakdown:        []CategorySpend{},
		}
		if kind == Spending {
			record.Breakdown = append(record.Breakdown, CategorySpend{Category: categoryName, Amount: amount})
		}
		next.History = append(next.History, record)
		return next, nil
	}

	record := &next.History[idx]
	record.Spent += spent
	record.Saved += saved
	if kind == Spending {
		record.Breakdown = mergeSpend(record.Breakdown, categoryName, amount)
	}
	return next, nil
}

func mergeSpend(breakdown []CategorySpend, category string, amount float64) []CategorySpend {
	for i := range breakdown {
		if breakdown[i].Category == category {
			breakdown[i].Amount += amount
			return breakdown
		}
	}
	return append(breakdown, CategorySpend{Category: category, Amount: amount})
}

// ResetActivity wipes the current period: every category's spent goes back to zero and
// spendable is reset to the whole income.
func ResetActivity(state State) State {
	next := state.clone()
	for i := range next.Categories {
		next.Categories[i].Spent = 0
	}
	next.Allocations.Spendable = next.Allocations.Income
	return next
}
