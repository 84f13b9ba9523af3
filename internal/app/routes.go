package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Session
	r.HandleFunc("/api/session", deps.UserHandler.Login).Methods("POST")
	r.HandleFunc("/api/session", deps.UserHandler.Logout).Methods("DELETE")

	// User profile
	r.HandleFunc("/api/user/current", deps.UserHandler.CurrentUser).Methods("GET")
	r.HandleFunc("/api/user/current", deps.UserHandler.UpdateProfile).Methods("PUT")
	r.HandleFunc("/api/user/current/theme", deps.UserHandler.ToggleTheme).Methods("PUT")

	// Budget
	r.HandleFunc("/api/budget", deps.BudgetHandler.GetState).Methods("GET")
	r.HandleFunc("/api/budget/summary", deps.BudgetHandler.GetSummary).Methods("GET")
	r.HandleFunc("/api/budget/income", deps.BudgetHandler.UpdateIncome).Methods("PUT")
	r.HandleFunc("/api/budget/categories", deps.BudgetHandler.UpdateCategories).Methods("PUT")
	r.HandleFunc("/api/budget/goal", deps.BudgetHandler.UpdateGoal).Methods("PUT")
	r.HandleFunc("/api/budget/activity", deps.BudgetHandler.LogActivity).Methods("POST")
	r.HandleFunc("/api/budget/activity", deps.BudgetHandler.ResetActivity).Methods("DELETE")

	// Daily check-in
	r.HandleFunc("/api/checkin/reallocation", deps.BudgetHandler.SuggestReallocation).Methods("POST")
	r.HandleFunc("/api/checkin", deps.BudgetHandler.ConfirmCheckIn).Methods("POST")

	// Weekly review
	r.HandleFunc("/api/review/weekly", deps.BudgetHandler.GetWeeklyReview).Methods("GET")
	r.HandleFunc("/api/review/weekly", deps.BudgetHandler.CompleteWeeklyReset).Methods("POST")

	// Monthly recap
	r.HandleFunc("/api/recap/monthly", deps.BudgetHandler.GetMonthlyRecap).Methods("GET")
	r.HandleFunc("/api/recap/monthly/goal-suggestion", deps.BudgetHandler.SuggestGoal).Methods("GET")
	r.HandleFunc("/api/recap/monthly", deps.BudgetHandler.CompleteMonthlyRecap).Methods("POST")

	// Badges
	r.HandleFunc("/api/badges", deps.BudgetHandler.ListBadges).Methods("GET")
}
