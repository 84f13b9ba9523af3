package budget

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

var ErrMalformedSnapshot = errors.New("malformed budget snapshot")

type snapshot struct {
	Allocations         allocationJSON     `json:"allocations"`
	IncomeSources       []incomeSourceJSON `json:"incomeSources"`
	Categories          []categoryJSON     `json:"categories"`
	Goal                goalJSON           `json:"goal"`
	History             []dailyRecordJSON  `json:"history"`
	CurrentWeekCheckins []bool             `json:"currentWeekCheckins"`
	Badges              []badgeJSON        `json:"badges"`
}

type allocationJSON struct {
	Income    float64 `json:"income"`
	Bills     float64 `json:"bills"`
	Savings   float64 `json:"savings"`
	Spendable float64 `json:"spendable"`
	Total     float64 `json:"total"`
}

type incomeSourceJSON struct {
	Id        string    `json:"id"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Frequency Frequency `json:"frequency"`
}

type categoryJSON struct {
	Id                 string         `json:"id"`
	Name               string         `json:"name"`
	Budgeted           float64        `json:"budgeted"`
	Spent              float64        `json:"spent"`
	Frequency          Frequency      `json:"frequency"`
	Classification     Classification `json:"classification"`
	DueDate            string         `json:"dueDate,omitempty"`
	TotalBalance       float64        `json:"totalBalance,omitempty"`
	PayoffMonths       int            `json:"payoffMonths,omitempty"`
	TargetPayoffMonths int            `json:"targetPayoffMonths,omitempty"`
	Icon               string         `json:"icon,omitempty"`
}

type goalJSON struct {
	Name    string  `json:"name"`
	Target  float64 `json:"target"`
	Current float64 `json:"current"`
}

type categorySpendJSON struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type dailyRecordJSON struct {
	Date             string              `json:"date"`
	Spent            float64             `json:"spent"`
	Saved            float64             `json:"saved"`
	CheckInCompleted bool                `json:"checkInCompleted"`
	Breakdown        []categorySpendJSON `json:"breakdown,omitempty"`
}

type badgeJSON struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	EarnedAt    string `json:"earnedAt,omitempty"`
}

// EncodeSnapshot serializes the whole state into one JSON document.
func EncodeSnapshot(state State) ([]byte, error) {
	s := snapshot{
		Allocations:         allocationJSON(state.Allocations),
		IncomeSources:       make([]incomeSourceJSON, 0, len(state.IncomeSources)),
		Categories:          make([]categoryJSON, 0, len(state.Categories)),
		Goal:                goalJSON(state.Goal),
		History:             make([]dailyRecordJSON, 0, len(state.History)),
		CurrentWeekCheckins: state.CurrentWeekCheckins[:],
		Badges:              make([]badgeJSON, 0, len(state.Badges)),
	}
	for _, source := range state.IncomeSources {
		s.IncomeSources = append(s.IncomeSources, incomeSourceJSON(source))
	}
	for _, category := range state.Categories {
		s.Categories = append(s.Categories, categoryJSON(category))
	}
	for _, record := range state.History {
		r := dailyRecordJSON{
			Date:             record.Date,
			Spent:            record.Spent,
			Saved:            record.Saved,
			CheckInCompleted: record.CheckInCompleted,
		}
		for _, spend := range record.Breakdown {
			r.Breakdown = append(r.Breakdown, categorySpendJSON(spend))
		}
		s.History = append(s.History, r)
	}
	for _, badge := range state.Badges {
		s.Badges = append(s.Badges, badgeJSON(badge))
	}
	data, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot restores a state written by EncodeSnapshot. The snapshot is only trusted when
// its categories field is a list.
func DecodeSnapshot(data []byte) (State, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}
	categories, ok := fields["categories"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(categories), []byte("[")) {
		return State{}, fmt.Errorf("%w: categories is not a list", ErrMalformedSnapshot)
	}

	var s snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return State{}, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
	}

	state := State{
		Allocations:   Allocation(s.Allocations),
		IncomeSources: make([]IncomeSource, 0, len(s.IncomeSources)),
		Categories:    make([]Category, 0, len(s.Categories)),
		Goal:          Goal(s.Goal),
		History:       make([]DailyRecord, 0, len(s.History)),
		Badges:        make([]Badge, 0, len(s.Badges)),
	}
	for _, source := range s.IncomeSources {
		state.IncomeSources = append(state.IncomeSources, IncomeSource(source))
	}
	for _, category := range s.Categories {
		state.Categories = append(state.Categories, Category(category))
	}
	for _, r := range s.History {
		record := DailyRecord{
			Date:             r.Date,
			Spent:            r.Spent,
			Saved:            r.Saved,
			CheckInCompleted: r.CheckInCompleted,
			Breakdown:        make([]CategorySpend, 0, len(r.Breakdown)),
		}
		for _, spend := range r.Breakdown {
			record.Breakdown = append(record.Breakdown, CategorySpend(spend))
		}
		state.History = append(state.History, record)
	}
	// Older snapshots may carry fewer slots; missing ones are unfilled.
	copy(state.CurrentWeekCheckins[:], s.CurrentWeekCheckins)
	for _, badge := range s.Badges {
		state.Badges = append(state.Badges, Badge(badge))
	}
	return state, nil
}

// RestoreState decodes a snapshot and falls back to DefaultState when it cannot be trusted.
func RestoreState(data []byte) State {
	state, err := DecodeSnapshot(data)
	if err != nil {
		log.Warnf("using default budget: %v", err)
		return DefaultState()
	}
	return state
}
