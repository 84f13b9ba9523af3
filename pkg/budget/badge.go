package budget

import "time"

type BadgeId string

const (
	FirstCheckInBadge    BadgeId = "first-check-in"
	ConsistentSaverBadge BadgeId = "consistent-saver"
	BudgetMasterBadge    BadgeId = "budget-master"
	GoalCrusherBadge     BadgeId = "goal-crusher"
	ZenLegendBadge       BadgeId = "zen-legend"
)

// StreakLength is the number of consecutive completed check-ins for ConsistentSaverBadge.
const StreakLength = 30

// MilestoneBadgeCount is the number of earned badges that unlocks ZenLegendBadge.
const MilestoneBadgeCount = 25

// BadgeDefinition describes a badge that can be earned.
type BadgeDefinition struct {
	Id          BadgeId
	Name        string
	Description string
	Icon        string
}

var badgeCatalog = []BadgeDefinition{
	{Id: ConsistentSaverBadge, Name: "Consistent Saver", Description: "30-day daily check-in streak.", Icon: "🔥"},
	{Id: GoalCrusherBadge, Name: "Goal Crusher", Description: "Exceeded monthly savings goal.", Icon: "💰"},
	{Id: BudgetMasterBadge, Name: "Budget Master", Description: "Stayed within budget for a full week.", Icon: "📊"},
	{Id: FirstCheckInBadge, Name: "Early Bird", Description: "Completed your first daily check-in.", Icon: "🎯"},
	{Id: ZenLegendBadge, Name: "Zen Legend", Description: "Earned 25 badges.", Icon: "🏆"},
}

// BadgeCatalog returns every badge definition in display order.
func BadgeCatalog() []BadgeDefinition {
	return append([]BadgeDefinition(nil), badgeCatalog...)
}

func lookupBadge(id BadgeId) (BadgeDefinition, bool) {
	for _, def := range badgeCatalog {
		if def.Id == id {
			return def, true
		}
	}
	return BadgeDefinition{}, false
}

// CheckInBadges returns the badges a check-in qualifies for. It must be evaluated against the
// history as it was before the completed record is stored.
func CheckInBadges(state State, record DailyRecord) []BadgeId {
	var ids []BadgeId
	if len(state.History) == 0 {
		ids = append(ids, FirstCheckInBadge)
	}
	if len(state.History) >= StreakLength-1 && record.CheckInCompleted {
		streak := true
		for _, prior := range state.History[len(state.History)-(StreakLength-1):] {
			if !prior.CheckInCompleted {
				streak = false
				break
			}
		}
		if streak {
			ids = append(ids, ConsistentSaverBadge)
		}
	}
	return ids
}

// WeeklyResetBadges awards BudgetMasterBadge when no category spent more than it was budgeted.
func WeeklyResetBadges(state State) []BadgeId {
	for _, category := range state.Categories {
		if category.Spent > category.Budgeted {
			return nil
		}
	}
	return []BadgeId{BudgetMasterBadge}
}

// MonthlyRecapBadges awards GoalCrusherBadge when the goal has been reached.
func MonthlyRecapBadges(state State) []BadgeId {
	if state.Goal.Current >= state.Goal.Target {
		return []BadgeId{GoalCrusherBadge}
	}
	return nil
}

// AwardBadges adds badges that are not yet earned and returns the newly earned ones. Unknown ids
// and badges already present are ignored. Reaching MilestoneBadgeCount earned badges awards
// ZenLegendBadge as part of the same call.
func AwardBadges(state State, ids []BadgeId, now time.Time) (State, []Badge) {
	next := state.clone()
	var awarded []Badge
	earnedAt := now.UTC().Format(time.RFC3339)

	award := func(id BadgeId) {
		def, ok := lookupBadge(id)
		if !ok || next.hasBadge(string(id)) {
			return
		}
		badge := Badge{
			Id:          string(def.Id),
			Name:        def.Name,
			Description: def.Description,
			Icon:        def.Icon,
			EarnedAt:    earnedAt,
		}
		next.Badges = append(next.Badges, badge)
		awarded = append(awarded, badge)
	}

	for _, id := range ids {
		award(id)
	}
	if len(awarded) > 0 && len(next.Badges) >= MilestoneBadgeCount {
		award(ZenLegendBadge)
	}
	return next, awarded
}
