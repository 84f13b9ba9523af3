package budget

import "errors"

var ErrInvalidFrequency = errors.New("invalid frequency")

type Frequency string

const (
	Weekly   Frequency = "weekly"
	Biweekly Frequency = "biweekly"
	Monthly  Frequency = "monthly"
)

// Valid reports whether f is one of the known frequencies.
func (f Frequency) Valid() bool {
	switch f {
	case Weekly, Biweekly, Monthly:
		return true
	}
	return false
}

// ToWeekly converts an amount expressed in frequency f into the canonical weekly amount.
// A month is treated as exactly four weeks. Unknown frequencies return the amount unchanged.
func ToWeekly(amount float64, f Frequency) float64 {
	switch f {
	case Biweekly:
		return amount / 2
	case Monthly:
		return amount / 4
	default:
		return amount
	}
}

// FromWeekly is the inverse of ToWeekly.
func FromWeekly(weeklyAmount float64, f Frequency) float64 {
	switch f {
	case Biweekly:
		return weeklyAmount * 2
	case Monthly:
		return weeklyAmount * 4
	default:
		return weeklyAmount
	}
}
