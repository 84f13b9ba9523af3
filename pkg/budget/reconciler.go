package budget

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidSuggestion = errors.New("invalid suggestion")

// AllocationSuggestion is a reallocation proposed by the advisor. It is untrusted until
// ValidateSuggestion accepts it.
type AllocationSuggestion struct {
	Allocations Allocation
	Explanation string
}

type GoalSuggestion struct {
	Name      string
	Amount    float64
	Reasoning string
}

type WeeklyReview struct {
	Strengths  []string
	Weaknesses []string
	Advice     string
}

const reviewPoints = 3

// ValidateSuggestion checks that a suggested allocation can replace the current one: every value
// finite, no negative bucket and income fully assigned.
func ValidateSuggestion(s AllocationSuggestion) error {
	a := s.Allocations
	if !finite(a.Income, a.Bills, a.Savings, a.Spendable, a.Total) {
		return fmt.Errorf("%w: allocation values must be finite numbers", ErrInvalidSuggestion)
	}
	if a.Bills < 0 || a.Savings < 0 || a.Spendable < 0 {
		return fmt.Errorf("%w: bills, savings and spendable must not be negative", ErrInvalidSuggestion)
	}
	if !a.Balanced() {
		return fmt.Errorf("%w: %.2f of income left unassigned", ErrInvalidSuggestion, a.Unassigned())
	}
	return nil
}

// ApplySuggestion replaces the allocations with a validated suggestion. The change in savings
// flows into the goal.
func ApplySuggestion(state State, s AllocationSuggestion) (State, error) {
	if err := ValidateSuggestion(s); err != nil {
		return state, err
	}
	next := state.clone()
	next.Goal.Current += s.Allocations.Savings - state.Allocations.Savings
	next.Allocations = s.Allocations
	return next, nil
}

func ValidateGoalSuggestion(s GoalSuggestion) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: goal name is empty", ErrInvalidSuggestion)
	}
	if !finite(s.Amount) || s.Amount <= 0 {
		return fmt.Errorf("%w: goal amount must be a positive number", ErrInvalidSuggestion)
	}
	return nil
}

// NormalizeReview keeps at most three strengths and weaknesses, dropping blank entries.
func NormalizeReview(r WeeklyReview) (WeeklyReview, error) {
	normalized := WeeklyReview{
		Strengths:  keepPoints(r.Strengths),
		Weaknesses: keepPoints(r.Weaknesses),
		Advice:     strings.TrimSpace(r.Advice),
	}
	if normalized.Advice == "" {
		return WeeklyReview{}, fmt.Errorf("%w: review has no advice", ErrInvalidSuggestion)
	}
	return normalized, nil
}

func keepPoints(points []string) []string {
	kept := make([]string, 0, reviewPoints)
	for _, p := range points {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		kept = append(kept, p)
		if len(kept) == reviewPoints {
			break
		}
	}
	return kept
}
