package budget

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/forgevyn/zenzero/internal/event_bus"
	"github.com/forgevyn/zenzero/internal/utils"
	"github.com/forgevyn/zenzero/pkg/user"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ctx = user.WithUser(context.Background(), user.User{Id: 1, Name: "Test User"})

var (
	repo     *RepositoryStub
	writer   *SnapshotWriter
	advisor  *advisorFake
	eventBus *event_bus.EventBus
	clock    *utils.MockClock
	service  *ServiceImpl
)

func setup(t *testing.T) func() {
	repo = NewStubBudgetRepo()
	writer = NewSnapshotWriter(repo)
	advisor = &advisorFake{}
	eventBus = event_bus.NewEventBus()
	clock = &utils.MockClock{FixedNow: now}
	service = NewBudgetService(repo, writer, advisor, eventBus, clock, time.Second)
	return func() {
		t.Log("Teardown after test")
	}
}

type advisorFake struct {
	mu           sync.Mutex
	err          error
	reallocation AllocationSuggestion
	review       WeeklyReview
	goal         GoalSuggestion
	reallocReqs  []ReallocationRequest
	reviewReqs   []ReviewRequest
	goalReqs     []GoalRequest
}

func (a *advisorFake) Reallocate(ctx context.Context, req ReallocationRequest) (AllocationSuggestion, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reallocReqs = append(a.reallocReqs, req)
	return a.reallocation, a.err
}

func (a *advisorFake) WeeklyReview(ctx context.Context, req ReviewRequest) (WeeklyReview, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.reviewReqs = append(a.reviewReqs, req)
	return a.review, a.err
}

func (a *advisorFake) SuggestGoal(ctx context.Context, req GoalRequest) (GoalSuggestion, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.goalReqs = append(a.goalReqs, req)
	return a.goal, a.err
}

func balancedSuggestion() AllocationSuggestion {
	return AllocationSuggestion{
		Allocations: Allocation{Income: 1250, Bills: 575, Savings: 100, Spendable: 575, Total: 1250},
		Explanation: "Moved 100 into savings.",
	}
}

func TestServiceImpl_GetState(t *testing.T) {
	t.Run("should start a new user from the default budget", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		state, err := service.GetState(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, DefaultState(), state)
	})

	t.Run("should load the stored snapshot", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		stored := DefaultState()
		stored.Goal = Goal{Name: "Car", Target: 9000, Current: 10}
		data, err := EncodeSnapshot(stored)
		require.NoError(t, err)
		repo.Put(1, data)

		// when
		state, err := service.GetState(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, stored.Goal, state.Goal)
	})

	t.Run("should fall back to the default budget on a malformed snapshot", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		repo.Put(1, []byte(`{"categories":42}`))

		// when
		state, err := service.GetState(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, DefaultState(), state)
	})

	t.Run("should return error when context has no user", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.GetState(context.Background())

		// then
		assert.ErrorIs(t, err, user.ErrNoUser)
		assert.Contains(t, err.Error(), "failed to get current user")
	})

	t.Run("should keep budgets of users apart", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		other := user.WithUser(context.Background(), user.User{Id: 2})
		_, err := service.LogActivity(other, Savings, 300, "")
		require.NoError(t, err)

		// when
		state, err := service.GetState(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, 1200.0, state.Goal.Current)
	})
}

func TestServiceImpl_Summary(t *testing.T) {
	t.Run("should summarize in the requested view", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		summary, err := service.Summary(ctx, Monthly)

		// then
		require.NoError(t, err)
		assert.Equal(t, 2000.0, summary.RemainingToAssign)
	})

	t.Run("should reject an unknown view", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.Summary(ctx, "daily")

		// then
		assert.ErrorIs(t, err, ErrInvalidFrequency)
	})
}

func TestServiceImpl_LogActivity(t *testing.T) {
	t.Run("should persist and publish an accepted mutation", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		var changes []event_bus.BudgetStateChanged
		event_bus.SubscribeTyped(eventBus, event_bus.BudgetStateChangedType, func(e event_bus.EventT[event_bus.BudgetStateChanged]) error {
			changes = append(changes, e.Data)
			return nil
		})

		// when
		state, err := service.LogActivity(ctx, Spending, 12.5, "c3")

		// then
		require.NoError(t, err)
		assert.Equal(t, 12.5, state.Categories[2].Spent)
		assert.Equal(t, "2026-03-10", state.History[0].Date)
		assert.Equal(t, 1, writer.Pending())
		assert.Equal(t, []event_bus.BudgetStateChanged{{UserId: 1, Operation: "activity.logged", IsZeroBalanced: true}}, changes)

		writer.Flush(context.Background())
		data, err := repo.LoadSnapshot(context.Background(), 1)
		require.NoError(t, err)
		stored, err := DecodeSnapshot(data)
		require.NoError(t, err)
		assert.Equal(t, 12.5, stored.Categories[2].Spent)
	})

	t.Run("should not persist a rejected mutation", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.LogActivity(ctx, Spending, -1, "c3")

		// then
		assert.ErrorIs(t, err, ErrInvalidAmount)
		assert.Zero(t, writer.Pending())
		state, err := service.GetState(ctx)
		require.NoError(t, err)
		assert.Empty(t, state.History)
	})

	t.Run("should serialize concurrent mutations", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		var wg sync.WaitGroup
		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := service.LogActivity(ctx, Spending, 1, "c2")
				assert.NoError(t, err)
			}()
		}
		wg.Wait()

		// then
		state, err := service.GetState(ctx)
		require.NoError(t, err)
		assert.Equal(t, 50.0, state.Categories[1].Spent)
		assert.Equal(t, 50.0, state.History[0].Spent)
	})

	t.Run("should keep serving when the snapshot store fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		repo.FailSaves(errors.New("connection refused"))

		// when
		_, err := service.LogActivity(ctx, Income, 50, "")
		writer.Flush(context.Background())

		// then
		require.NoError(t, err)
		state, err := service.GetState(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1300.0, state.Allocations.Income)
		assert.Equal(t, 1, writer.Pending())
	})
}

func TestServiceImpl_UpdateBudget(t *testing.T) {
	t.Run("should update income, categories and goal", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.UpdateIncomeSources(ctx, []IncomeSource{{Id: "1", Name: "Salary", Amount: 6000, Frequency: Monthly}})
		require.NoError(t, err)
		_, err = service.UpdateCategories(ctx, []Category{{Id: "c1", Name: "Rent", Budgeted: 1500, Frequency: Monthly, Classification: Bill}})
		require.NoError(t, err)
		state, err := service.UpdateGoal(ctx, Goal{Name: "Trip", Target: 2000, Current: 0})

		// then
		require.NoError(t, err)
		assert.Equal(t, 1500.0, state.Allocations.Income)
		assert.Len(t, state.Categories, 1)
		assert.Equal(t, Goal{Name: "Trip", Target: 2000, Current: 1200}, state.Goal)
	})

	t.Run("should reset the activity period", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.LogActivity(ctx, Spending, 40, "c2")
		require.NoError(t, err)

		// when
		state, err := service.ResetActivity(ctx)

		// then
		require.NoError(t, err)
		assert.Zero(t, state.Categories[1].Spent)
		assert.Equal(t, state.Allocations.Income, state.Allocations.Spendable)
	})
}

func TestServiceImpl_SuggestReallocation(t *testing.T) {
	t.Run("should return the record and a validated suggestion without changing the state", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		advisor.reallocation = balancedSuggestion()

		// when
		proposal, err := service.SuggestReallocation(ctx, map[string]float64{"c2": 30, "c3": 15})

		// then
		require.NoError(t, err)
		assert.Equal(t, 45.0, proposal.Record.Spent)
		assert.Equal(t, balancedSuggestion(), proposal.Suggestion)
		require.Len(t, advisor.reallocReqs, 1)
		assert.Equal(t, 45.0, advisor.reallocReqs[0].YesterdaySpend)
		assert.Len(t, advisor.reallocReqs[0].DebtCategories, 1)

		state, err := service.GetState(ctx)
		require.NoError(t, err)
		assert.Equal(t, DefaultState(), state)
		assert.Zero(t, writer.Pending())
	})

	t.Run("should report an unavailable advisor", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		advisor.err = context.DeadlineExceeded

		// when
		_, err := service.SuggestReallocation(ctx, map[string]float64{"c2": 30})

		// then
		assert.ErrorIs(t, err, ErrAdvisorUnavailable)
	})

	t.Run("should treat an unbalanced suggestion as unavailable advice", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		advisor.reallocation = AllocationSuggestion{Allocations: Allocation{Income: 1250, Bills: 0, Savings: 0, Spendable: 10}}

		// when
		_, err := service.SuggestReallocation(ctx, nil)

		// then
		assert.ErrorIs(t, err, ErrAdvisorUnavailable)
		assert.Contains(t, err.Error(), "unassigned")
	})
}

func TestServiceImpl_ConfirmCheckIn(t *testing.T) {
	t.Run("should apply the suggestion, store the record and award the first badge at once", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		var awarded []event_bus.BadgeAwarded
		event_bus.SubscribeTyped(eventBus, event_bus.BadgeAwardedType, func(e event_bus.EventT[event_bus.BadgeAwarded]) error {
			awarded = append(awarded, e.Data)
			return nil
		})
		suggestion := balancedSuggestion()

		// when
		result, err := service.ConfirmCheckIn(ctx, map[string]float64{"c2": 30}, &suggestion)

		// then
		require.NoError(t, err)
		assert.Equal(t, suggestion.Allocations, result.State.Allocations)
		assert.Equal(t, 1300.0, result.State.Goal.Current)
		require.NotNil(t, result.Record)
		assert.Equal(t, 30.0, result.Record.Spent)
		assert.Zero(t, result.Record.Saved)
		assert.Equal(t, []DailyRecord{*result.Record}, result.State.History)
		assert.Equal(t, 1, result.State.CurrentWeekCheckins.Filled())
		require.Len(t, result.Badges, 1)
		assert.Equal(t, string(FirstCheckInBadge), result.Badges[0].Id)
		require.Len(t, awarded, 1)
		assert.Equal(t, 1, awarded[0].TotalBadges)
		assert.Equal(t, 1, writer.Pending())
	})

	t.Run("should keep the allocation without a suggestion", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		result, err := service.ConfirmCheckIn(ctx, map[string]float64{"c2": 30}, nil)

		// then
		require.NoError(t, err)
		assert.Equal(t, DefaultState().Allocations, result.State.Allocations)
		assert.Len(t, result.State.History, 1)
	})

	t.Run("should reject an invalid suggestion and change nothing", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		suggestion := AllocationSuggestion{Allocations: Allocation{Income: 1250, Spendable: -5, Bills: 1255}}

		// when
		_, err := service.ConfirmCheckIn(ctx, map[string]float64{"c2": 30}, &suggestion)

		// then
		assert.ErrorIs(t, err, ErrInvalidSuggestion)
		state, err := service.GetState(ctx)
		require.NoError(t, err)
		assert.Equal(t, DefaultState(), state)
		assert.Zero(t, writer.Pending())
	})
}

func TestServiceImpl_WeeklyReport(t *testing.T) {
	t.Run("should return stats and the normalized review", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		advisor.review = WeeklyReview{Strengths: []string{"a", "b", "c", "d"}, Weaknesses: []string{"e"}, Advice: "Cook at home."}
		_, err := service.ConfirmCheckIn(ctx, map[string]float64{"c2": 30}, nil)
		require.NoError(t, err)

		// when
		report, err := service.WeeklyReport(ctx, MoodTough)

		// then
		require.NoError(t, err)
		assert.Equal(t, 30.0, report.Stats.Spent)
		assert.Equal(t, 1, report.Stats.DaysCheckedIn)
		assert.Equal(t, []string{"a", "b", "c"}, report.Review.Strengths)
		require.Len(t, advisor.reviewReqs, 1)
		assert.Equal(t, MoodTough, advisor.reviewReqs[0].Mood)
		assert.Len(t, advisor.reviewReqs[0].History, 1)
	})

	t.Run("should default the mood to okay", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		advisor.review = WeeklyReview{Advice: "Fine."}

		// when
		_, err := service.WeeklyReport(ctx, "")

		// then
		require.NoError(t, err)
		assert.Equal(t, MoodOkay, advisor.reviewReqs[0].Mood)
	})

	t.Run("should return stats when the advisor fails", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		advisor.err = errors.New("quota exceeded")
		_, err := service.LogActivity(ctx, Spending, 8, "c3")
		require.NoError(t, err)

		// when
		report, err := service.WeeklyReport(ctx, MoodGreat)

		// then
		assert.ErrorIs(t, err, ErrAdvisorUnavailable)
		assert.Equal(t, 8.0, report.Stats.Spent)
		assert.Empty(t, report.Review.Advice)
	})

	t.Run("should reject an unknown mood", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		_, err := service.WeeklyReport(ctx, "meh")

		// then
		assert.ErrorIs(t, err, ErrInvalidMood)
		assert.Empty(t, advisor.reviewReqs)
	})
}

func TestServiceImpl_CompleteWeeklyReset(t *testing.T) {
	t.Run("should clear the week and award budget master", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.ConfirmCheckIn(ctx, map[string]float64{"c2": 30}, nil)
		require.NoError(t, err)

		// when
		result, err := service.CompleteWeeklyReset(ctx)

		// then
		require.NoError(t, err)
		assert.Zero(t, result.State.CurrentWeekCheckins.Filled())
		assert.Nil(t, result.Record)
		require.Len(t, result.Badges, 1)
		assert.Equal(t, string(BudgetMasterBadge), result.Badges[0].Id)
	})
}

func TestServiceImpl_MonthlyRecap(t *testing.T) {
	t.Run("should report metrics", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// when
		metrics, err := service.MonthlyMetrics(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, GoalInProgress, metrics.GoalStatus)
		assert.Equal(t, 375.0, metrics.BillsBudgeted)
	})

	t.Run("should suggest a validated goal", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		advisor.goal = GoalSuggestion{Name: "Emergency Fund", Amount: 6000, Reasoning: "You saved steadily."}

		// when
		suggestion, err := service.SuggestGoal(ctx)

		// then
		require.NoError(t, err)
		assert.Equal(t, advisor.goal, suggestion)
		assert.Equal(t, DefaultState().Goal, advisor.goalReqs[0].Goal)
	})

	t.Run("should reject a goal suggestion without amount", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		advisor.goal = GoalSuggestion{Name: "Emergency Fund", Amount: 0}

		// when
		_, err := service.SuggestGoal(ctx)

		// then
		assert.ErrorIs(t, err, ErrAdvisorUnavailable)
	})

	t.Run("should crush the goal and start the new one from zero", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.LogActivity(ctx, Savings, 3800, "")
		require.NoError(t, err)

		// when
		result, err := service.CompleteMonthlyRecap(ctx, &Goal{Name: "House", Target: 20000})

		// then
		require.NoError(t, err)
		require.Len(t, result.Badges, 1)
		assert.Equal(t, string(GoalCrusherBadge), result.Badges[0].Id)
		assert.Equal(t, Goal{Name: "House", Target: 20000}, result.State.Goal)
	})
}

func TestServiceImpl_Badges(t *testing.T) {
	t.Run("should list the catalog with earned flags", func(t *testing.T) {
		teardown := setup(t)
		defer teardown()

		// given
		_, err := service.ConfirmCheckIn(ctx, nil, nil)
		require.NoError(t, err)

		// when
		statuses, err := service.Badges(ctx)

		// then
		require.NoError(t, err)
		require.Len(t, statuses, len(BadgeCatalog()))
		for _, status := range statuses {
			if status.Definition.Id == FirstCheckInBadge {
				assert.True(t, status.Earned)
				assert.Equal(t, "2026-03-10T09:30:00Z", status.EarnedAt)
			} else {
				assert.False(t, status.Earned)
				assert.Empty(t, status.EarnedAt)
			}
		}
	})
}
