package budget

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/forgevyn/zenzero/internal/rest"
	"github.com/forgevyn/zenzero/pkg/user"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service Service
}

func NewBudgetHandler(service Service) *Handler {
	return &Handler{service}
}

// GetState godoc
// @Summary Get the budget
// @Description Get the whole budget state of the current user
// @Tags Budget
// @Produce json
// @Success 200 {object} StateDTO
// @Failure 401 {object} rest.ErrorResponse "No session"
// @Router /api/budget [get]
// @Security XSessionToken
func (h *Handler) GetState(w http.ResponseWriter, r *http.Request) {
	log.Trace("Getting budget")
	state, err := h.service.GetState(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, StateToDTO(state))
}

// GetSummary godoc
// @Summary Get the allocation summary
// @Description Totals and remaining amount to assign, expressed in the requested view
// @Tags Budget
// @Produce json
// @Param view query string false "weekly, biweekly or monthly (default weekly)"
// @Success 200 {object} SummaryDTO
// @Failure 400 {object} rest.ErrorResponse "Unknown view"
// @Router /api/budget/summary [get]
// @Security XSessionToken
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	view := Frequency(r.URL.Query().Get("view"))
	if view == "" {
		view = Weekly
	}
	log.Debugf("Getting budget summary in %s view", view)
	summary, err := h.service.Summary(r.Context(), view)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, SummaryToDTO(summary))
}

// UpdateIncome godoc
// @Summary Replace income sources
// @Tags Budget
// @Accept json
// @Produce json
// @Param sources body []IncomeSourceDTO true "Income sources"
// @Success 200 {object} StateDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid income source"
// @Router /api/budget/income [put]
// @Security XSessionToken
func (h *Handler) UpdateIncome(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating income sources")
	var sources []IncomeSourceDTO
	if !decodeBody(w, r, &sources) {
		return
	}
	state, err := h.service.UpdateIncomeSources(r.Context(), dtoToIncomeSources(sources))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, StateToDTO(state))
}

// UpdateCategories godoc
// @Summary Replace categories
// @Tags Budget
// @Accept json
// @Produce json
// @Param categories body []CategoryDTO true "Categories"
// @Success 200 {object} StateDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid category"
// @Router /api/budget/categories [put]
// @Security XSessionToken
func (h *Handler) UpdateCategories(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating categories")
	var categories []CategoryDTO
	if !decodeBody(w, r, &categories) {
		return
	}
	state, err := h.service.UpdateCategories(r.Context(), dtoToCategories(categories))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, StateToDTO(state))
}

// UpdateGoal godoc
// @Summary Update the savings goal
// @Tags Budget
// @Accept json
// @Produce json
// @Param goal body GoalDTO true "Goal"
// @Success 200 {object} StateDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid goal"
// @Router /api/budget/goal [put]
// @Security XSessionToken
func (h *Handler) UpdateGoal(w http.ResponseWriter, r *http.Request) {
	log.Debug("Updating goal")
	var goal GoalDTO
	if !decodeBody(w, r, &goal) {
		return
	}
	state, err := h.service.UpdateGoal(r.Context(), Goal(goal))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, StateToDTO(state))
}

// LogActivity godoc
// @Summary Log spending, income or savings
// @Tags Budget
// @Accept json
// @Produce json
// @Param activity body ActivityDTO true "Activity"
// @Success 201 {object} StateDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid activity"
// @Router /api/budget/activity [post]
// @Security XSessionToken
func (h *Handler) LogActivity(w http.ResponseWriter, r *http.Request) {
	var activity ActivityDTO
	if !decodeBody(w, r, &activity) {
		return
	}
	log.Debugf("Logging %s activity of %.2f", activity.Kind, activity.Amount)
	if activity.Kind == Spending && activity.CategoryId == "" {
		rest.WriteError(w, http.StatusBadRequest, "Category is required", "Spending must name the category it was spent on")
		return
	}
	state, err := h.service.LogActivity(r.Context(), activity.Kind, activity.Amount, activity.CategoryId)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, StateToDTO(state))
}

// ResetActivity godoc
// @Summary Reset the current period
// @Description Zero every category's spent amount and reset spendable to income
// @Tags Budget
// @Produce json
// @Success 200 {object} StateDTO
// @Router /api/budget/activity [delete]
// @Security XSessionToken
func (h *Handler) ResetActivity(w http.ResponseWriter, r *http.Request) {
	log.Debug("Resetting activity")
	state, err := h.service.ResetActivity(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, StateToDTO(state))
}

// SuggestReallocation godoc
// @Summary Propose a check-in reallocation
// @Description Ask the advisor for a reallocation after the spending entered in a check-in. Nothing is stored.
// @Tags CheckIn
// @Accept json
// @Produce json
// @Param checkin body CheckInRequestDTO true "Spending per category id"
// @Success 200 {object} CheckInProposalDTO
// @Failure 503 {object} rest.ErrorResponse "Advisor unavailable"
// @Router /api/checkin/reallocation [post]
// @Security XSessionToken
func (h *Handler) SuggestReallocation(w http.ResponseWriter, r *http.Request) {
	log.Debug("Requesting check-in reallocation")
	var req CheckInRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}
	proposal, err := h.service.SuggestReallocation(r.Context(), req.Breakdown)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, CheckInProposalDTO{
		Record:     recordToDTO(proposal.Record),
		Suggestion: SuggestionDTO{Allocations: AllocationDTO(proposal.Suggestion.Allocations), Explanation: proposal.Suggestion.Explanation},
	})
}

// ConfirmCheckIn godoc
// @Summary Confirm the daily check-in
// @Description Store the check-in record and apply the accepted suggestion, if any, in one step
// @Tags CheckIn
// @Accept json
// @Produce json
// @Param checkin body CheckInRequestDTO true "Spending per category id and accepted suggestion"
// @Success 201 {object} RitualResultDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid suggestion"
// @Router /api/checkin [post]
// @Security XSessionToken
func (h *Handler) ConfirmCheckIn(w http.ResponseWriter, r *http.Request) {
	log.Debug("Confirming check-in")
	var req CheckInRequestDTO
	if !decodeBody(w, r, &req) {
		return
	}
	var suggestion *AllocationSuggestion
	if req.Suggestion != nil {
		suggestion = &AllocationSuggestion{
			Allocations: Allocation(req.Suggestion.Allocations),
			Explanation: req.Suggestion.Explanation,
		}
	}
	result, err := h.service.ConfirmCheckIn(r.Context(), req.Breakdown, suggestion)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusCreated, ritualToDTO(result))
}

// GetWeeklyReview godoc
// @Summary Weekly stats and review
// @Description Stats of the last seven days with the advisor's review. Stats are returned even when the advisor is unavailable.
// @Tags Review
// @Produce json
// @Param mood query string false "great, okay or tough"
// @Success 200 {object} WeeklyReportDTO
// @Failure 503 {object} WeeklyReportDTO "Advisor unavailable, review missing"
// @Router /api/review/weekly [get]
// @Security XSessionToken
func (h *Handler) GetWeeklyReview(w http.ResponseWriter, r *http.Request) {
	mood := Mood(r.URL.Query().Get("mood"))
	log.Debugf("Getting weekly review (mood %q)", mood)
	report, err := h.service.WeeklyReport(r.Context(), mood)
	if errors.Is(err, ErrAdvisorUnavailable) {
		rest.WriteJSON(w, http.StatusServiceUnavailable, weeklyReportToDTO(report, false))
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, weeklyReportToDTO(report, true))
}

// CompleteWeeklyReset godoc
// @Summary Complete the weekly reset
// @Tags Review
// @Produce json
// @Success 200 {object} RitualResultDTO
// @Router /api/review/weekly [post]
// @Security XSessionToken
func (h *Handler) CompleteWeeklyReset(w http.ResponseWriter, r *http.Request) {
	log.Debug("Completing weekly reset")
	result, err := h.service.CompleteWeeklyReset(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ritualToDTO(result))
}

// GetMonthlyRecap godoc
// @Summary Monthly metrics
// @Tags Recap
// @Produce json
// @Success 200 {object} MonthlyMetricsDTO
// @Router /api/recap/monthly [get]
// @Security XSessionToken
func (h *Handler) GetMonthlyRecap(w http.ResponseWriter, r *http.Request) {
	log.Debug("Getting monthly recap")
	metrics, err := h.service.MonthlyMetrics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, metricsToDTO(metrics))
}

// SuggestGoal godoc
// @Summary Suggest next month's goal
// @Tags Recap
// @Produce json
// @Success 200 {object} GoalSuggestionDTO
// @Failure 503 {object} rest.ErrorResponse "Advisor unavailable"
// @Router /api/recap/monthly/goal-suggestion [get]
// @Security XSessionToken
func (h *Handler) SuggestGoal(w http.ResponseWriter, r *http.Request) {
	log.Debug("Requesting goal suggestion")
	suggestion, err := h.service.SuggestGoal(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, GoalSuggestionDTO(suggestion))
}

// CompleteMonthlyRecap godoc
// @Summary Complete the monthly recap
// @Description Evaluate the goal and optionally start a new one from zero
// @Tags Recap
// @Accept json
// @Produce json
// @Param recap body MonthlyRecapRequestDTO false "Optional new goal"
// @Success 200 {object} RitualResultDTO
// @Failure 400 {object} rest.ErrorResponse "Invalid goal"
// @Router /api/recap/monthly [post]
// @Security XSessionToken
func (h *Handler) CompleteMonthlyRecap(w http.ResponseWriter, r *http.Request) {
	log.Debug("Completing monthly recap")
	var req MonthlyRecapRequestDTO
	if r.ContentLength != 0 && !decodeBody(w, r, &req) {
		return
	}
	var newGoal *Goal
	if req.NewGoal != nil {
		goal := Goal(*req.NewGoal)
		newGoal = &goal
	}
	result, err := h.service.CompleteMonthlyRecap(r.Context(), newGoal)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	rest.WriteJSON(w, http.StatusOK, ritualToDTO(result))
}

// ListBadges godoc
// @Summary List badges
// @Description Every badge of the catalog with its earned flag
// @Tags Badges
// @Produce json
// @Success 200 {array} BadgeDTO
// @Router /api/badges [get]
// @Security XSessionToken
func (h *Handler) ListBadges(w http.ResponseWriter, r *http.Request) {
	log.Trace("Listing badges")
	statuses, err := h.service.Badges(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	dto := make([]BadgeDTO, 0, len(statuses))
	for _, status := range statuses {
		dto = append(dto, BadgeDTO{
			Id:          string(status.Definition.Id),
			Name:        status.Definition.Name,
			Description: status.Definition.Description,
			Icon:        status.Definition.Icon,
			EarnedAt:    status.EarnedAt,
			Earned:      status.Earned,
		})
	}
	rest.WriteJSON(w, http.StatusOK, dto)
}

// maxBodyBytes bounds budget request bodies. They carry no images, so they stay well below the
// profile limit of the user handler.
const maxBodyBytes = 1 << 20

func decodeBody(w http.ResponseWriter, r *http.Request, target any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		log.Debugf("invalid request body: %v", err)
		rest.WriteError(w, http.StatusBadRequest, "Invalid request body format", err.Error())
		return false
	}
	return true
}

var clientErrors = []error{
	ErrInvalidAmount,
	ErrUnknownActivityKind,
	ErrInvalidIncomeSource,
	ErrInvalidCategory,
	ErrInvalidGoal,
	ErrInvalidSuggestion,
	ErrInvalidFrequency,
	ErrInvalidMood,
}

func writeServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, user.ErrNoUser) {
		rest.WriteError(w, http.StatusUnauthorized, "Not signed in", "")
		return
	}
	if errors.Is(err, ErrAdvisorUnavailable) {
		rest.WriteError(w, http.StatusServiceUnavailable, "Advisor is unavailable", "Please try again in a moment")
		return
	}
	for _, clientErr := range clientErrors {
		if errors.Is(err, clientErr) {
			rest.WriteError(w, http.StatusBadRequest, clientErr.Error(), err.Error())
			return
		}
	}
	log.Errorf("budget request failed: %v", err)
	rest.WriteError(w, http.StatusInternalServerError, "Internal server error", "")
}
