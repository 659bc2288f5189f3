package service

import (
	"time"

	"github.com/shopspring/decimal"
)

var (
	// dailyPenaltyRate is charged per day overdue, as a fraction of the
	// installment amount.
	dailyPenaltyRate = decimal.NewFromFloat(0.01)

	// penaltyCap bounds the total penalty to 30% of the installment amount
	// regardless of how long it stays overdue.
	penaltyCap = decimal.NewFromFloat(0.30)
)

// LatePenalty computes the penalty owed on an overdue installment amount.
// The penalty is a full recomputation from days overdue, not an increment,
// so repeated sweeps over the same installment converge instead of
// compounding.
func LatePenalty(amount decimal.Decimal, daysOverdue int) decimal.Decimal {
	if daysOverdue <= 0 || amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	rate := dailyPenaltyRate.Mul(decimal.NewFromInt(int64(daysOverdue)))
	if rate.GreaterThan(penaltyCap) {
		rate = penaltyCap
	}
	return amount.Mul(rate).Round(2)
}

// DaysOverdue returns the whole days elapsed since dueDate, zero if the due
// date has not passed.
func DaysOverdue(dueDate, now time.Time) int {
	if !dueDate.Before(now) {
		return 0
	}
	return int(now.Sub(dueDate).Hours() / 24)
}
