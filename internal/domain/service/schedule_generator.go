package service

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

const daysPerPeriod = 30

var (
	twelve  = decimal.NewFromInt(12)
	hundred = decimal.NewFromInt(100)
)

// ScheduleGenerator builds a loan's installment plan at disbursement time.
// The generator is pure: persistence and the schedule-exists guard live in
// the reconcile path that invokes it.
type ScheduleGenerator struct{}

// NewScheduleGenerator creates a ScheduleGenerator.
func NewScheduleGenerator() *ScheduleGenerator {
	return &ScheduleGenerator{}
}

// Generate builds the installment plan for a disbursed loan according to the
// product's schedule type. HARVEST and CUSTOM schedules require explicit
// dates; an empty date list falls back to FIXED.
func (g *ScheduleGenerator) Generate(loan model.Loan, product model.LoanProduct, harvestDates []time.Time, disbursedAt time.Time) ([]model.Installment, error) {
	switch {
	case product.ScheduleType.Equal(valueobject.ScheduleTypeHarvest) && len(harvestDates) > 0:
		return g.generateHarvest(loan, product, harvestDates, product.GracePeriodDays, disbursedAt)
	case product.ScheduleType.Equal(valueobject.ScheduleTypeCustom) && len(harvestDates) > 0:
		return g.generateHarvest(loan, product, harvestDates, 0, disbursedAt)
	default:
		return g.generateFixed(loan, product, disbursedAt)
	}
}

// generateFixed produces equal-principal installments spaced 30 days apart.
// Interest for installment i is charged on the balance remaining before that
// installment's principal is repaid, at the product's monthly rate.
func (g *ScheduleGenerator) generateFixed(loan model.Loan, product model.LoanProduct, disbursedAt time.Time) ([]model.Installment, error) {
	n := product.DurationDays / daysPerPeriod
	if n <= 0 {
		return nil, fmt.Errorf("fixed schedule requires a duration of at least %d days, got %d", daysPerPeriod, product.DurationDays)
	}

	principal := loan.AmountApproved()
	monthlyRate := product.InterestRate.Div(hundred).Div(twelve)

	// Equal principal per installment; the last one absorbs the rounding
	// remainder so principal parts sum exactly to the approved amount.
	share := principal.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	remaining := principal

	installments := make([]model.Installment, 0, n)
	for i := 1; i <= n; i++ {
		principalPart := share
		if i == n {
			principalPart = remaining
		}
		interest := remaining.Mul(monthlyRate).Round(2)
		remaining = remaining.Sub(principalPart)

		installments = append(installments, model.Installment{
			ID:         uuid.New().String(),
			LoanID:     loan.ID(),
			Number:     i,
			DueDate:    disbursedAt.AddDate(0, 0, daysPerPeriod*i),
			Principal:  principalPart,
			Interest:   interest,
			Amount:     principalPart.Add(interest),
			AmountPaid: decimal.Zero,
			Penalty:    decimal.Zero,
			Status:     valueobject.InstallmentStatusPending,
			CreatedAt:  disbursedAt,
			UpdatedAt:  disbursedAt,
		})
	}
	return installments, nil
}

// generateHarvest divides the approved amount evenly across the harvest
// dates. Each installment is due gracePeriodDays after its harvest, and its
// interest accrues at the monthly rate proportionally to the months elapsed
// between disbursement and the due date.
func (g *ScheduleGenerator) generateHarvest(loan model.Loan, product model.LoanProduct, harvestDates []time.Time, gracePeriodDays int, disbursedAt time.Time) ([]model.Installment, error) {
	dates := make([]time.Time, len(harvestDates))
	copy(dates, harvestDates)
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	n := len(dates)
	principal := loan.AmountApproved()
	monthlyRate := product.InterestRate.Div(hundred).Div(twelve)

	share := principal.Div(decimal.NewFromInt(int64(n))).RoundDown(2)
	remaining := principal

	installments := make([]model.Installment, 0, n)
	for i, harvest := range dates {
		principalPart := share
		if i == n-1 {
			principalPart = remaining
		}
		remaining = remaining.Sub(principalPart)

		dueDate := harvest.AddDate(0, 0, gracePeriodDays)
		months := monthsElapsed(disbursedAt, dueDate)
		interest := principalPart.Mul(monthlyRate).Mul(decimal.NewFromInt(int64(months))).Round(2)

		installments = append(installments, model.Installment{
			ID:         uuid.New().String(),
			LoanID:     loan.ID(),
			Number:     i + 1,
			DueDate:    dueDate,
			Principal:  principalPart,
			Interest:   interest,
			Amount:     principalPart.Add(interest),
			AmountPaid: decimal.Zero,
			Penalty:    decimal.Zero,
			Status:     valueobject.InstallmentStatusPending,
			CreatedAt:  disbursedAt,
			UpdatedAt:  disbursedAt,
		})
	}
	return installments, nil
}

// monthsElapsed counts 30-day periods from start to end, rounded up, with a
// minimum of one.
func monthsElapsed(start, end time.Time) int {
	days := int(end.Sub(start).Hours() / 24)
	if days <= 0 {
		return 1
	}
	months := (days + daysPerPeriod - 1) / daysPerPeriod
	if months < 1 {
		return 1
	}
	return months
}
