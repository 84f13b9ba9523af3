package advisor

import (
	"context"
	"fmt"
	"math"
	"sync"

	"github.com/forgevyn/zenzero/pkg/budget"
)

// StubClient gives deterministic advice without calling a model. It is used when the advisor
// is disabled and in tests.
type StubClient struct {
	mu    sync.Mutex
	err   error
	calls int

	Reallocation *budget.AllocationSuggestion
	Review       *budget.WeeklyReview
	Goal         *budget.GoalSuggestion
}

func NewStubClient() *StubClient {
	return &StubClient{}
}

// Fail makes every following call return err. A nil err restores normal answers.
func (s *StubClient) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

func (s *StubClient) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}

func (s *StubClient) begin(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.err
}

// Reallocate keeps bills and savings and gives spendable whatever income is left, dipping into
// savings and then bills when income does not cover them.
func (s *StubClient) Reallocate(ctx context.Context, req budget.ReallocationRequest) (budget.AllocationSuggestion, error) {
	if err := s.begin(ctx); err != nil {
		return budget.AllocationSuggestion{}, err
	}
	if s.Reallocation != nil {
		return *s.Reallocation, nil
	}

	next := req.Allocations
	next.Spendable = next.Income - next.Bills - next.Savings
	if next.Spendable < 0 {
		next.Savings += next.Spendable
		next.Spendable = 0
	}
	if next.Savings < 0 {
		next.Bills = math.Max(0, next.Bills+next.Savings)
		next.Savings = 0
	}
	return budget.AllocationSuggestion{
		Allocations: next,
		Explanation: fmt.Sprintf("Spent $%.2f yesterday. Bills and savings stay funded and $%.2f remains spendable.",
			req.YesterdaySpend, next.Spendable),
	}, nil
}

func (s *StubClient) WeeklyReview(ctx context.Context, req budget.ReviewRequest) (budget.WeeklyReview, error) {
	if err := s.begin(ctx); err != nil {
		return budget.WeeklyReview{}, err
	}
	if s.Review != nil {
		return *s.Review, nil
	}
	checkIns := 0
	for _, record := range req.History {
		if record.CheckInCompleted {
			checkIns++
		}
	}
	return budget.WeeklyReview{
		Strengths:  []string{fmt.Sprintf("Checked in on %d of the last %d days.", checkIns, len(req.History))},
		Weaknesses: []string{},
		Advice:     fmt.Sprintf("Keep %s moving toward $%.0f.", req.Goal.Name, req.Goal.Target),
	}, nil
}

func (s *StubClient) SuggestGoal(ctx context.Context, req budget.GoalRequest) (budget.GoalSuggestion, error) {
	if err := s.begin(ctx); err != nil {
		return budget.GoalSuggestion{}, err
	}
	if s.Goal != nil {
		return *s.Goal, nil
	}
	return budget.GoalSuggestion{
		Name:      req.Goal.Name,
		Amount:    math.Max(req.Goal.Target, req.Goal.Current+req.Allocations.Savings*4),
		Reasoning: "Based on your current weekly savings over a four-week month.",
	}, nil
}
