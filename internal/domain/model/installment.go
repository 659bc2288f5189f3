package model

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// Installment is one entry in a loan's payment schedule. Installments are
// created exactly once at first successful disbursement and mutated only by
// the allocation engine and the overdue accrual sweep, always under the
// owning loan's row lock.
type Installment struct {
	ID             string
	LoanID         string
	Number         int
	DueDate        time.Time
	Principal      decimal.Decimal
	Interest       decimal.Decimal
	Amount         decimal.Decimal // Principal + Interest
	AmountPaid     decimal.Decimal
	Penalty        decimal.Decimal
	Status         valueobject.InstallmentStatus
	LastReminderAt *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Outstanding returns the amount still owed on the installment, including
// any accrued penalty.
func (i Installment) Outstanding() decimal.Decimal {
	return i.Amount.Add(i.Penalty).Sub(i.AmountPaid)
}

// IsDue reports whether the installment is unpaid and past its due date.
func (i Installment) IsDue(now time.Time) bool {
	return i.Status.IsOpen() && i.DueDate.Before(now)
}
