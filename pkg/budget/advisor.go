package budget

import (
	"context"
	"errors"
)

var ErrAdvisorUnavailable = errors.New("advisor is unavailable, please try again")
var ErrInvalidMood = errors.New("unknown mood")

type Mood string

const (
	MoodGreat Mood = "great"
	MoodOkay  Mood = "okay"
	MoodTough Mood = "tough"
)

func (m Mood) Valid() bool {
	switch m {
	case MoodGreat, MoodOkay, MoodTough:
		return true
	}
	return false
}

type ReallocationRequest struct {
	Allocations    Allocation
	YesterdaySpend float64
	Goal           Goal
	DebtCategories []Category
}

type ReviewRequest struct {
	History []DailyRecord
	Goal    Goal
	Mood    Mood
}

type GoalRequest struct {
	Allocations Allocation
	Goal        Goal
	History     []DailyRecord
}

// Advisor produces untrusted suggestions. Nothing it returns touches the state before it is
// validated.
type Advisor interface {
	Reallocate(ctx context.Context, req ReallocationRequest) (AllocationSuggestion, error)
	WeeklyReview(ctx context.Context, req ReviewRequest) (WeeklyReview, error)
	SuggestGoal(ctx context.Context, req GoalRequest) (GoalSuggestion, error)
}
