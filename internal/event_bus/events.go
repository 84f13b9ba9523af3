package event_bus

const (
	BudgetStateChangedType EventType = "budget.state.changed"
	BadgeAwardedType       EventType = "budget.badge.awarded"
)

// BudgetStateChanged is published after every accepted budget mutation.
type BudgetStateChanged struct {
	UserId    int
	Operation string
	// IsZeroBalanced reflects allocations.income = bills + savings + spendable after the mutation.
	IsZeroBalanced bool
}

type BadgeAwarded struct {
	UserId   int
	BadgeId  string
	Name     string
	Icon     string
	EarnedAt string
	// TotalBadges is the number of badges the user holds including this one.
	TotalBadges int
}
