package model

import (
	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// LoanProduct is a read-only reference entity describing the terms under
// which loans are issued.
type LoanProduct struct {
	ID              string
	Name            string
	Currency        string
	MinAmount       decimal.Decimal
	MaxAmount       decimal.Decimal
	InterestRate    decimal.Decimal // annual rate as a percentage, e.g. 15.00
	DurationDays    int
	ScheduleType    valueobject.ScheduleType
	GracePeriodDays int // days after harvest before an installment is due
	Active          bool
}

// AllowsAmount reports whether amount falls within the product's bounds.
func (p LoanProduct) AllowsAmount(amount decimal.Decimal) bool {
	return amount.GreaterThanOrEqual(p.MinAmount) && amount.LessThanOrEqual(p.MaxAmount)
}
