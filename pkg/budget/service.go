package budget

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/forgevyn/zenzero/internal/event_bus"
	"github.com/forgevyn/zenzero/internal/utils"
	"github.com/forgevyn/zenzero/pkg/user"
	log "github.com/sirupsen/logrus"
)

// advisorHistoryDays is the number of trailing history records sent to the advisor.
const advisorHistoryDays = 7

type Service interface {
	GetState(ctx context.Context) (State, error)
	Summary(ctx context.Context, view Frequency) (Summary, error)
	UpdateIncomeSources(ctx context.Context, sources []IncomeSource) (State, error)
	UpdateCategories(ctx context.Context, categories []Category) (State, error)
	UpdateGoal(ctx context.Context, goal Goal) (State, error)
	LogActivity(ctx context.Context, kind ActivityKind, amount float64, categoryId string) (State, error)
	ResetActivity(ctx context.Context) (State, error)

	SuggestReallocation(ctx context.Context, breakdown map[string]float64) (CheckInProposal, error)
	ConfirmCheckIn(ctx context.Context, breakdown map[string]float64, suggestion *AllocationSuggestion) (RitualResult, error)
	WeeklyReport(ctx context.Context, mood Mood) (WeeklyReport, error)
	CompleteWeeklyReset(ctx context.Context) (RitualResult, error)
	MonthlyMetrics(ctx context.Context) (MonthlyMetrics, error)
	SuggestGoal(ctx context.Context) (GoalSuggestion, error)
	CompleteMonthlyRecap(ctx context.Context, newGoal *Goal) (RitualResult, error)
	Badges(ctx context.Context) ([]BadgeStatus, error)
}

// CheckInProposal is what a daily check-in would store, together with the advisor's
// reallocation. Nothing is applied until ConfirmCheckIn.
type CheckInProposal struct {
	Record     DailyRecord
	Suggestion AllocationSuggestion
}

type RitualResult struct {
	State  State
	Record *DailyRecord
	Badges []Badge
}

type WeeklyReport struct {
	Stats  WeeklyStats
	Review WeeklyReview
}

type BadgeStatus struct {
	Definition BadgeDefinition
	Earned     bool
	EarnedAt   string
}

type ServiceImpl struct {
	repo           Repository
	writer         *SnapshotWriter
	advisor        Advisor
	eventBus       *event_bus.EventBus
	clock          utils.Clock
	advisorTimeout time.Duration

	mu      sync.Mutex
	budgets map[int]*userBudget
}

// userBudget is the in-memory source of truth for one user. mu serializes every transition.
type userBudget struct {
	mu     sync.Mutex
	loaded bool
	state  State
}

func NewBudgetService(
	repo Repository,
	writer *SnapshotWriter,
	advisor Advisor,
	eventBus *event_bus.EventBus,
	clock utils.Clock,
	advisorTimeout time.Duration,
) *ServiceImpl {
	return &ServiceImpl{
		repo:           repo,
		writer:         writer,
		advisor:        advisor,
		eventBus:       eventBus,
		clock:          clock,
		advisorTimeout: advisorTimeout,
		budgets:        map[int]*userBudget{},
	}
}

// acquire returns the locked budget of the current user, loading it on first access.
func (s *ServiceImpl) acquire(ctx context.Context) (int, *userBudget, error) {
	userId, err := user.CurrentId(ctx)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to get current user: %w", err)
	}

	s.mu.Lock()
	b, ok := s.budgets[userId]
	if !ok {
		b = &userBudget{}
		s.budgets[userId] = b
	}
	s.mu.Unlock()

	b.mu.Lock()
	if b.loaded {
		return userId, b, nil
	}
	data, err := s.repo.LoadSnapshot(ctx, userId)
	switch {
	case errors.Is(err, ErrSnapshotNotFound):
		log.Debugf("no budget stored for user %d, starting from default", userId)
		b.state = DefaultState()
	case err != nil:
		b.mu.Unlock()
		return 0, nil, fmt.Errorf("failed to load budget: %w", err)
	default:
		b.state = RestoreState(data)
	}
	b.loaded = true
	return userId, b, nil
}

func (s *ServiceImpl) snapshot(ctx context.Context) (State, error) {
	_, b, err := s.acquire(ctx)
	if err != nil {
		return State{}, err
	}
	defer b.mu.Unlock()
	return b.state.clone(), nil
}

// mutate applies one transition under the user's lock. A failing transition leaves the
// stored state untouched.
func (s *ServiceImpl) mutate(
	ctx context.Context,
	operation string,
	transition func(State) (State, []Badge, error),
) (State, []Badge, error) {
	userId, b, err := s.acquire(ctx)
	if err != nil {
		return State{}, nil, err
	}
	next, awarded, err := transition(b.state)
	if err != nil {
		b.mu.Unlock()
		return State{}, nil, err
	}
	b.state = next
	s.persist(userId, next)
	b.mu.Unlock()

	s.publish(ctx, userId, operation, next, awarded)
	return next.clone(), awarded, nil
}

func (s *ServiceImpl) persist(userId int, state State) {
	data, err := EncodeSnapshot(state)
	if err != nil {
		log.Errorf("budget of user %d not persisted: %v", userId, err)
		return
	}
	s.writer.Enqueue(userId, data)
}

func (s *ServiceImpl) publish(ctx context.Context, userId int, operation string, state State, awarded []Badge) {
	err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.BudgetStateChangedType, event_bus.BudgetStateChanged{
		UserId:         userId,
		Operation:      operation,
		IsZeroBalanced: state.Allocations.Balanced(),
	}))
	if err != nil {
		log.Errorf("failed to publish budget change event: %v", err)
	}
	for _, badge := range awarded {
		err := s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.BadgeAwardedType, event_bus.BadgeAwarded{
			UserId:      userId,
			BadgeId:     badge.Id,
			Name:        badge.Name,
			Icon:        badge.Icon,
			EarnedAt:    badge.EarnedAt,
			TotalBadges: len(state.Badges),
		}))
		if err != nil {
			log.Errorf("failed to publish badge event: %v", err)
		}
	}
}

func (s *ServiceImpl) today() string {
	return s.clock.Now().UTC().Format(DateLayout)
}

func (s *ServiceImpl) GetState(ctx context.Context) (State, error) {
	return s.snapshot(ctx)
}

func (s *ServiceImpl) Summary(ctx context.Context, view Frequency) (Summary, error) {
	if !view.Valid() {
		return Summary{}, fmt.Errorf("%w: unknown view %q", ErrInvalidFrequency, view)
	}
	state, err := s.snapshot(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(state, view, s.clock.Now()), nil
}

func (s *ServiceImpl) UpdateIncomeSources(ctx context.Context, sources []IncomeSource) (State, error) {
	state, _, err := s.mutate(ctx, "income.updated", func(current State) (State, []Badge, error) {
		next, err := UpdateIncomeSources(current, sources)
		return next, nil, err
	})
	return state, err
}

func (s *ServiceImpl) UpdateCategories(ctx context.Context, categories []Category) (State, error) {
	state, _, err := s.mutate(ctx, "categories.updated", func(current State) (State, []Badge, error) {
		next, err := UpdateCategories(current, categories)
		return next, nil, err
	})
	return state, err
}

func (s *ServiceImpl) UpdateGoal(ctx context.Context, goal Goal) (State, error) {
	state, _, err := s.mutate(ctx, "goal.updated", func(current State) (State, []Badge, error) {
		next, err := UpdateGoal(current, goal)
		return next, nil, err
	})
	return state, err
}

func (s *ServiceImpl) LogActivity(ctx context.Context, kind ActivityKind, amount float64, categoryId string) (State, error) {
	today := s.today()
	state, _, err := s.mutate(ctx, "activity.logged", func(current State) (State, []Badge, error) {
		next, err := LogActivity(current, kind, amount, categoryId, today)
		return next, nil, err
	})
	return state, err
}

func (s *ServiceImpl) ResetActivity(ctx context.Context) (State, error) {
	state, _, err := s.mutate(ctx, "activity.reset", func(current State) (State, []Badge, error) {
		return ResetActivity(current), nil, nil
	})
	return state, err
}

func (s *ServiceImpl) SuggestReallocation(ctx context.Context, breakdown map[string]float64) (CheckInProposal, error) {
	state, err := s.snapshot(ctx)
	if err != nil {
		return CheckInProposal{}, err
	}
	record, err := BuildCheckInRecord(state, breakdown, s.today())
	if err != nil {
		return CheckInProposal{}, err
	}

	advisorCtx, cancel := context.WithTimeout(ctx, s.advisorTimeout)
	defer cancel()
	suggestion, err := s.advisor.Reallocate(advisorCtx, ReallocationRequest{
		Allocations:    state.Allocations,
		YesterdaySpend: record.Spent,
		Goal:           state.Goal,
		DebtCategories: state.DebtCategories(),
	})
	if err != nil {
		log.Errorf("reallocation advice failed: %v", err)
		return CheckInProposal{}, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	if err := ValidateSuggestion(suggestion); err != nil {
		log.Warnf("advisor returned an unusable reallocation: %v", err)
		return CheckInProposal{}, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	return CheckInProposal{Record: record, Suggestion: suggestion}, nil
}

// ConfirmCheckIn completes the daily check-in in one transition. The record is built from the
// state before the suggestion is applied, so its saved amount reflects the allocation the day
// was lived with.
func (s *ServiceImpl) ConfirmCheckIn(ctx context.Context, breakdown map[string]float64, suggestion *AllocationSuggestion) (RitualResult, error) {
	now := s.clock.Now()
	var record DailyRecord
	state, awarded, err := s.mutate(ctx, "checkin.completed", func(current State) (State, []Badge, error) {
		var err error
		record, err = BuildCheckInRecord(current, breakdown, now.UTC().Format(DateLayout))
		if err != nil {
			return current, nil, err
		}
		next := current
		if suggestion != nil {
			next, err = ApplySuggestion(current, *suggestion)
			if err != nil {
				return current, nil, err
			}
		}
		next, awarded := CompleteCheckIn(next, record, now)
		return next, awarded, nil
	})
	if err != nil {
		return RitualResult{}, err
	}
	return RitualResult{State: state, Record: &record, Badges: awarded}, nil
}

func (s *ServiceImpl) WeeklyReport(ctx context.Context, mood Mood) (WeeklyReport, error) {
	if mood == "" {
		mood = MoodOkay
	}
	if !mood.Valid() {
		return WeeklyReport{}, fmt.Errorf("%w: %q", ErrInvalidMood, mood)
	}
	state, err := s.snapshot(ctx)
	if err != nil {
		return WeeklyReport{}, err
	}
	stats := ComputeWeeklyStats(state, s.clock.Now())

	advisorCtx, cancel := context.WithTimeout(ctx, s.advisorTimeout)
	defer cancel()
	review, err := s.advisor.WeeklyReview(advisorCtx, ReviewRequest{
		History: state.LastRecords(advisorHistoryDays),
		Goal:    state.Goal,
		Mood:    mood,
	})
	if err != nil {
		log.Errorf("weekly review failed: %v", err)
		return WeeklyReport{Stats: stats}, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	review, err = NormalizeReview(review)
	if err != nil {
		log.Warnf("advisor returned an unusable review: %v", err)
		return WeeklyReport{Stats: stats}, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	return WeeklyReport{Stats: stats, Review: review}, nil
}

func (s *ServiceImpl) CompleteWeeklyReset(ctx context.Context) (RitualResult, error) {
	now := s.clock.Now()
	state, awarded, err := s.mutate(ctx, "weekly.reset", func(current State) (State, []Badge, error) {
		next, awarded := CompleteWeeklyReset(current, now)
		return next, awarded, nil
	})
	if err != nil {
		return RitualResult{}, err
	}
	return RitualResult{State: state, Badges: awarded}, nil
}

func (s *ServiceImpl) MonthlyMetrics(ctx context.Context) (MonthlyMetrics, error) {
	state, err := s.snapshot(ctx)
	if err != nil {
		return MonthlyMetrics{}, err
	}
	return ComputeMonthlyMetrics(state), nil
}

func (s *ServiceImpl) SuggestGoal(ctx context.Context) (GoalSuggestion, error) {
	state, err := s.snapshot(ctx)
	if err != nil {
		return GoalSuggestion{}, err
	}

	advisorCtx, cancel := context.WithTimeout(ctx, s.advisorTimeout)
	defer cancel()
	suggestion, err := s.advisor.SuggestGoal(advisorCtx, GoalRequest{
		Allocations: state.Allocations,
		Goal:        state.Goal,
		History:     state.LastRecords(advisorHistoryDays),
	})
	if err != nil {
		log.Errorf("goal suggestion failed: %v", err)
		return GoalSuggestion{}, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	if err := ValidateGoalSuggestion(suggestion); err != nil {
		log.Warnf("advisor returned an unusable goal: %v", err)
		return GoalSuggestion{}, fmt.Errorf("%w: %v", ErrAdvisorUnavailable, err)
	}
	return suggestion, nil
}

func (s *ServiceImpl) CompleteMonthlyRecap(ctx context.Context, newGoal *Goal) (RitualResult, error) {
	now := s.clock.Now()
	state, awarded, err := s.mutate(ctx, "monthly.recap", func(current State) (State, []Badge, error) {
		return CompleteMonthlyRecap(current, newGoal, now)
	})
	if err != nil {
		return RitualResult{}, err
	}
	return RitualResult{State: state, Badges: awarded}, nil
}

func (s *ServiceImpl) Badges(ctx context.Context) ([]BadgeStatus, error) {
	state, err := s.snapshot(ctx)
	if err != nil {
		return nil, err
	}
	earned := make(map[string]Badge, len(state.Badges))
	for _, badge := range state.Badges {
		earned[badge.Id] = badge
	}
	statuses := make([]BadgeStatus, 0, len(badgeCatalog))
	for _, def := range BadgeCatalog() {
		badge, ok := earned[string(def.Id)]
		statuses = append(statuses, BadgeStatus{Definition: def, Earned: ok, EarnedAt: badge.EarnedAt})
	}
	return statuses, nil
}
