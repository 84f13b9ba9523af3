package advisor

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/forgevyn/zenzero/pkg/budget"
)

type debtJSON struct {
	Id                 string  `json:"id"`
	Name               string  `json:"name"`
	Budgeted           float64 `json:"budgeted"`
	Frequency          string  `json:"frequency"`
	TotalBalance       float64 `json:"totalBalance"`
	PayoffMonths       int     `json:"payoffMonths,omitempty"`
	TargetPayoffMonths int     `json:"targetPayoffMonths,omitempty"`
}

type goalJSON struct {
	Name    string  `json:"name"`
	Target  float64 `json:"target"`
	Current float64 `json:"current"`
}

type spendJSON struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type recordJSON struct {
	Date             string      `json:"date"`
	Spent            float64     `json:"spent"`
	Saved            float64     `json:"saved"`
	CheckInCompleted bool        `json:"checkInCompleted"`
	Breakdown        []spendJSON `json:"breakdown,omitempty"`
}

func reallocationPrompt(req budget.ReallocationRequest) string {
	debts := make([]debtJSON, 0, len(req.DebtCategories))
	for _, c := range req.DebtCategories {
		debts = append(debts, debtJSON{
			Id:                 c.Id,
			Name:               c.Name,
			Budgeted:           c.Budgeted,
			Frequency:          string(c.Frequency),
			TotalBalance:       c.TotalBalance,
			PayoffMonths:       c.PayoffMonths,
			TargetPayoffMonths: c.TargetPayoffMonths,
		})
	}

	var b strings.Builder
	b.WriteString("You are a Zero-Based Budgeting assistant with a focus on Debt Acceleration.\n")
	fmt.Fprintf(&b, "Current Budget: %s\n", toJSON(allocationJSON(req.Allocations)))
	fmt.Fprintf(&b, "Yesterday's Spend: $%.2f\n", req.YesterdaySpend)
	fmt.Fprintf(&b, "Monthly Goal: %s ($%.2f/$%.2f)\n", req.Goal.Name, req.Goal.Current, req.Goal.Target)
	fmt.Fprintf(&b, "Debt Categories & Acceleration Targets: %s\n\n", toJSON(debts))
	b.WriteString("Strategy:\n")
	b.WriteString("1. If the user overspent, reduce 'spendable' first, then 'savings'.\n")
	b.WriteString("2. If the user underspent, check if any 'debt' category has a 'targetPayoffMonths'.\n")
	b.WriteString("3. Prioritize funding debt acceleration (Snowball/Avalanche hybrid) before adding to 'savings' if a debt target is set.\n")
	b.WriteString("4. Keep the budget zero-based: income must equal bills + savings + spendable exactly, with debt payments counted in bills. Keep income unchanged. No value may be negative.\n\n")
	b.WriteString("Provide a concise explanation of how you prioritized debt acceleration if targets were present.\n")
	return b.String()
}

func reviewPrompt(req budget.ReviewRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Analyze the following weekly financial history: %s\n", toJSON(historyJSON(req.History)))
	fmt.Fprintf(&b, "Current Goal Progress: %s\n", toJSON(goalJSON(req.Goal)))
	fmt.Fprintf(&b, "The user describes their week as %s.\n", req.Mood)
	b.WriteString("Identify 3 strengths, 3 weaknesses, and provide coaching advice for the next week.\n")
	return b.String()
}

func goalPrompt(req budget.GoalRequest) string {
	var b strings.Builder
	b.WriteString("Based on the user's spending patterns and performance:\n")
	fmt.Fprintf(&b, "Budget: %s\n", toJSON(allocationJSON(req.Allocations)))
	fmt.Fprintf(&b, "Goal Progress: %s\n", toJSON(goalJSON(req.Goal)))
	fmt.Fprintf(&b, "Recent History: %s\n\n", toJSON(historyJSON(req.History)))
	b.WriteString("Suggest a revised monthly savings goal with a positive amount. Highlight areas where they over or under-performed.\n")
	return b.String()
}

func historyJSON(history []budget.DailyRecord) []recordJSON {
	records := make([]recordJSON, 0, len(history))
	for _, record := range history {
		r := recordJSON{
			Date:             record.Date,
			Spent:            record.Spent,
			Saved:            record.Saved,
			CheckInCompleted: record.CheckInCompleted,
		}
		for _, spend := range record.Breakdown {
			r.Breakdown = append(r.Breakdown, spendJSON(spend))
		}
		records = append(records, r)
	}
	return records
}

func toJSON(v any) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "{}"
	}
	return string(data)
}
