package budget

type AllocationDTO struct {
	Income    float64 `json:"income"`
	Bills     float64 `json:"bills"`
	Savings   float64 `json:"savings"`
	Spendable float64 `json:"spendable"`
	Total     float64 `json:"total"`
}

type IncomeSourceDTO struct {
	Id        string    `json:"id,omitempty"`
	Name      string    `json:"name"`
	Amount    float64   `json:"amount"`
	Frequency Frequency `json:"frequency"`
}

type CategoryDTO struct {
	Id                 string         `json:"id,omitempty"`
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

type GoalDTO struct {
	Name    string  `json:"name"`
	Target  float64 `json:"target"`
	Current float64 `json:"current"`
}

type CategorySpendDTO struct {
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type DailyRecordDTO struct {
	Date             string             `json:"date"`
	Spent            float64            `json:"spent"`
	Saved            float64            `json:"saved"`
	CheckInCompleted bool               `json:"checkInCompleted"`
	Breakdown        []CategorySpendDTO `json:"breakdown"`
}

type BadgeDTO struct {
	Id          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	EarnedAt    string `json:"earnedAt,omitempty"`
	Earned      bool   `json:"earned"`
}

type StateDTO struct {
	Allocations         AllocationDTO     `json:"allocations"`
	IncomeSources       []IncomeSourceDTO `json:"incomeSources"`
	Categories          []CategoryDTO     `json:"categories"`
	Goal                GoalDTO           `json:"goal"`
	History             []DailyRecordDTO  `json:"history"`
	CurrentWeekCheckins []bool            `json:"currentWeekCheckins"`
	Badges              []BadgeDTO        `json:"badges"`
}

type PayoffDTO struct {
	Never                 bool    `json:"never"`
	WeeklyPayment         float64 `json:"weeklyPayment"`
	MonthsLeft            int     `json:"monthsLeft,omitempty"`
	PayoffMonth           string  `json:"payoffMonth,omitempty"`
	RequiredWeeklyPayment float64 `json:"requiredWeeklyPayment,omitempty"`
}

type CategoryLineDTO struct {
	Category        CategoryDTO `json:"category"`
	ViewAllocation  float64     `json:"viewAllocation"`
	ProgressPercent float64     `json:"progressPercent"`
	Payoff          *PayoffDTO  `json:"payoff,omitempty"`
}

type SummaryDTO struct {
	View                    Frequency         `json:"view"`
	TotalWeeklyIncome       float64           `json:"totalWeeklyIncome"`
	TotalBudgetedWeekly     float64           `json:"totalBudgetedWeekly"`
	RemainingToAssignWeekly float64           `json:"remainingToAssignWeekly"`
	TotalIncome             float64           `json:"totalIncome"`
	TotalBudgeted           float64           `json:"totalBudgeted"`
	RemainingToAssign       float64           `json:"remainingToAssign"`
	IsZeroBalanced          bool              `json:"isZeroBalanced"`
	IsAllocationBalanced    bool              `json:"isAllocationBalanced"`
	Allocations             AllocationDTO     `json:"allocations"`
	Categories              []CategoryLineDTO `json:"categories"`
	GoalProgressPercent     int               `json:"goalProgressPercent"`
}

type ActivityDTO struct {
	Kind       ActivityKind `json:"kind"`
	Amount     float64      `json:"amount"`
	CategoryId string       `json:"categoryId,omitempty"`
}

type SuggestionDTO struct {
	Allocations AllocationDTO `json:"allocations"`
	Explanation string        `json:"explanation"`
}

type CheckInRequestDTO struct {
	// Breakdown maps category ids to the amount spent since the last check-in.
	Breakdown  map[string]float64 `json:"breakdown"`
	Suggestion *SuggestionDTO     `json:"suggestion,omitempty"`
}

type CheckInProposalDTO struct {
	Record     DailyRecordDTO `json:"record"`
	Suggestion SuggestionDTO  `json:"suggestion"`
}

type RitualResultDTO struct {
	State  StateDTO        `json:"state"`
	Record *DailyRecordDTO `json:"record,omitempty"`
	Badges []BadgeDTO      `json:"newBadges"`
}

type WeeklyStatsDTO struct {
	From           string             `json:"from"`
	To             string             `json:"to"`
	Spent          float64            `json:"spent"`
	Saved          float64            `json:"saved"`
	DaysCheckedIn  int                `json:"daysCheckedIn"`
	CheckinsFilled int                `json:"checkinsFilled"`
	SavingsAdded   float64            `json:"savingsAdded"`
	IncomeReceived float64            `json:"incomeReceived"`
	Breakdown      []CategorySpendDTO `json:"breakdown"`
}

type WeeklyReviewDTO struct {
	Strengths  []string `json:"strengths"`
	Weaknesses []string `json:"weaknesses"`
	Advice     string   `json:"advice"`
}

type WeeklyReportDTO struct {
	Stats  WeeklyStatsDTO   `json:"stats"`
	Review *WeeklyReviewDTO `json:"review,omitempty"`
}

type MonthlyMetricsDTO struct {
	TotalIncome   float64    `json:"totalIncome"`
	SavingsGrowth float64    `json:"savingsGrowth"`
	BillsBudgeted float64    `json:"billsBudgeted"`
	Goal          GoalDTO    `json:"goal"`
	GoalStatus    GoalStatus `json:"goalStatus"`
	GoalProgress  int        `json:"goalProgress"`
}

type GoalSuggestionDTO struct {
	Name      string  `json:"name"`
	Amount    float64 `json:"amount"`
	Reasoning string  `json:"reasoning"`
}

type MonthlyRecapRequestDTO struct {
	NewGoal *GoalDTO `json:"newGoal,omitempty"`
}

func StateToDTO(state State) StateDTO {
	dto := StateDTO{
		Allocations:         AllocationDTO(state.Allocations),
		IncomeSources:       make([]IncomeSourceDTO, 0, len(state.IncomeSources)),
		Categories:          make([]CategoryDTO, 0, len(state.Categories)),
		Goal:                GoalDTO(state.Goal),
		History:             make([]DailyRecordDTO, 0, len(state.History)),
		CurrentWeekCheckins: state.CurrentWeekCheckins[:],
		Badges:              badgesToDTO(state.Badges),
	}
	for _, source := range state.IncomeSources {
		dto.IncomeSources = append(dto.IncomeSources, IncomeSourceDTO(source))
	}
	for _, category := range state.Categories {
		dto.Categories = append(dto.Categories, CategoryDTO(category))
	}
	for _, record := range state.History {
		dto.History = append(dto.History, recordToDTO(record))
	}
	return dto
}

func recordToDTO(record DailyRecord) DailyRecordDTO {
	return DailyRecordDTO{
		Date:             record.Date,
		Spent:            record.Spent,
		Saved:            record.Saved,
		CheckInCompleted: record.CheckInCompleted,
		Breakdown:        spendToDTO(record.Breakdown),
	}
}

func spendToDTO(breakdown []CategorySpend) []CategorySpendDTO {
	dto := make([]CategorySpendDTO, 0, len(breakdown))
	for _, spend := range breakdown {
		dto = append(dto, CategorySpendDTO(spend))
	}
	return dto
}

func badgesToDTO(badges []Badge) []BadgeDTO {
	dto := make([]BadgeDTO, 0, len(badges))
	for _, badge := range badges {
		dto = append(dto, BadgeDTO{
			Id:          badge.Id,
			Name:        badge.Name,
			Description: badge.Description,
			Icon:        badge.Icon,
			EarnedAt:    badge.EarnedAt,
			Earned:      true,
		})
	}
	return dto
}

func SummaryToDTO(summary Summary) SummaryDTO {
	dto := SummaryDTO{
		View:                    summary.View,
		TotalWeeklyIncome:       summary.TotalWeeklyIncome,
		TotalBudgetedWeekly:     summary.TotalBudgetedWeekly,
		RemainingToAssignWeekly: summary.RemainingToAssignWeekly,
		TotalIncome:             summary.TotalIncome,
		TotalBudgeted:           summary.TotalBudgeted,
		RemainingToAssign:       summary.RemainingToAssign,
		IsZeroBalanced:          summary.IsZeroBalanced,
		IsAllocationBalanced:    summary.IsAllocationBalanced,
		Allocations:             AllocationDTO(summary.Allocations),
		Categories:              make([]CategoryLineDTO, 0, len(summary.Categories)),
		GoalProgressPercent:     summary.GoalProgressPercent,
	}
	for _, line := range summary.Categories {
		lineDTO := CategoryLineDTO{
			Category:        CategoryDTO(line.Category),
			ViewAllocation:  line.ViewAllocation,
			ProgressPercent: line.ProgressPercent,
		}
		if line.Payoff != nil {
			payoff := &PayoffDTO{
				Never:                 line.Payoff.Never,
				WeeklyPayment:         line.Payoff.WeeklyPayment,
				MonthsLeft:            line.Payoff.MonthsLeft,
				RequiredWeeklyPayment: line.Payoff.RequiredWeeklyPayment,
			}
			if !line.Payoff.Never {
				payoff.PayoffMonth = line.Payoff.PayoffMonth.Format("2006-01")
			}
			lineDTO.Payoff = payoff
		}
		dto.Categories = append(dto.Categories, lineDTO)
	}
	return dto
}

func ritualToDTO(result RitualResult) RitualResultDTO {
	dto := RitualResultDTO{
		State:  StateToDTO(result.State),
		Badges: badgesToDTO(result.Badges),
	}
	if result.Record != nil {
		record := recordToDTO(*result.Record)
		dto.Record = &record
	}
	return dto
}

func weeklyReportToDTO(report WeeklyReport, withReview bool) WeeklyReportDTO {
	dto := WeeklyReportDTO{
		Stats: WeeklyStatsDTO{
			From:           report.Stats.From,
			To:             report.Stats.To,
			Spent:          report.Stats.Spent,
			Saved:          report.Stats.Saved,
			DaysCheckedIn:  report.Stats.DaysCheckedIn,
			CheckinsFilled: report.Stats.CheckinsFilled,
			SavingsAdded:   report.Stats.SavingsAdded,
			IncomeReceived: report.Stats.IncomeReceived,
			Breakdown:      spendToDTO(report.Stats.Breakdown),
		},
	}
	if withReview {
		dto.Review = &WeeklyReviewDTO{
			Strengths:  report.Review.Strengths,
			Weaknesses: report.Review.Weaknesses,
			Advice:     report.Review.Advice,
		}
	}
	return dto
}

func metricsToDTO(metrics MonthlyMetrics) MonthlyMetricsDTO {
	return MonthlyMetricsDTO{
		TotalIncome:   metrics.TotalIncome,
		SavingsGrowth: metrics.SavingsGrowth,
		BillsBudgeted: metrics.BillsBudgeted,
		Goal:          GoalDTO(metrics.Goal),
		GoalStatus:    metrics.GoalStatus,
		GoalProgress:  metrics.GoalProgress,
	}
}

func dtoToIncomeSources(dto []IncomeSourceDTO) []IncomeSource {
	sources := make([]IncomeSource, 0, len(dto))
	for _, source := range dto {
		sources = append(sources, IncomeSource(source))
	}
	return sources
}

func dtoToCategories(dto []CategoryDTO) []Category {
	categories := make([]Category, 0, len(dto))
	for _, category := range dto {
		categories = append(categories, Category(category))
	}
	return categories
}
