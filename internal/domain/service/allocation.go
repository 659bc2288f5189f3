package service

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// Allocation records how much of a payment landed on one installment.
type Allocation struct {
	InstallmentID string
	Number        int
	Applied       decimal.Decimal
	NewStatus     valueobject.InstallmentStatus
}

// AllocationResult is the outcome of distributing a payment across a loan's
// open installments.
type AllocationResult struct {
	Allocations  []Allocation
	Installments []model.Installment // updated copies of the touched installments
	TotalApplied decimal.Decimal
	Remainder    decimal.Decimal // unallocated surplus, credited back to the caller
}

// Allocate distributes amount across the open installments oldest-due-first.
// An installment is settled in full (amount + penalty − already paid) before
// any money reaches the next one; a payment that cannot cover the current
// installment is applied partially and allocation stops. Input installments
// are not mutated; updated copies are returned.
func Allocate(installments []model.Installment, amount decimal.Decimal, now time.Time) AllocationResult {
	result := AllocationResult{
		TotalApplied: decimal.Zero,
		Remainder:    amount,
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		result.Remainder = decimal.Zero
		return result
	}

	open := make([]model.Installment, 0, len(installments))
	for _, inst := range installments {
		if inst.Status.IsOpen() {
			open = append(open, inst)
		}
	}
	sort.Slice(open, func(i, j int) bool { return open[i].DueDate.Before(open[j].DueDate) })

	remaining := amount
	for _, inst := range open {
		if remaining.LessThanOrEqual(decimal.Zero) {
			break
		}

		totalDue := inst.Outstanding()
		if totalDue.LessThanOrEqual(decimal.Zero) {
			continue
		}

		updated := inst
		var applied decimal.Decimal
		if remaining.GreaterThanOrEqual(totalDue) {
			applied = totalDue
			updated.AmountPaid = updated.AmountPaid.Add(totalDue)
			updated.Status = valueobject.InstallmentStatusPaid
		} else {
			applied = remaining
			updated.AmountPaid = updated.AmountPaid.Add(remaining)
			updated.Status = valueobject.InstallmentStatusPartial
		}
		updated.UpdatedAt = now
		remaining = remaining.Sub(applied)

		result.Allocations = append(result.Allocations, Allocation{
			InstallmentID: updated.ID,
			Number:        updated.Number,
			Applied:       applied,
			NewStatus:     updated.Status,
		})
		result.Installments = append(result.Installments, updated)
		result.TotalApplied = result.TotalApplied.Add(applied)

		if updated.Status.Equal(valueobject.InstallmentStatusPartial) {
			break
		}
	}

	result.Remainder = remaining
	return result
}
