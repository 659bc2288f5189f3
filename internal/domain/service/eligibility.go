package service

import (
	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// EligibilityPolicy holds the portfolio-level limits applied at
// application time.
type EligibilityPolicy struct {
	MinimumCreditScore int
	MaximumExposure    decimal.Decimal // per-farmer cap across open loans
}

// EligibilityInput gathers everything the policy needs to decide.
type EligibilityInput struct {
	Product         model.LoanProduct
	Amount          decimal.Decimal
	CreditScore     int
	HasOpenLoan     bool
	CurrentExposure decimal.Decimal
}

// CheckEligibility applies the lending policy to a loan application. A nil
// return means eligible; otherwise a ValidationError carries the specific
// rejection reason shown to the applicant.
func CheckEligibility(policy EligibilityPolicy, in EligibilityInput) error {
	if !in.Product.Active {
		return valueobject.NewValidationError("loan product %s is not available", in.Product.Name)
	}
	if !in.Product.AllowsAmount(in.Amount) {
		return valueobject.NewValidationError(
			"requested amount %s is outside product limits (%s - %s)",
			in.Amount.StringFixed(2), in.Product.MinAmount.StringFixed(2), in.Product.MaxAmount.StringFixed(2),
		)
	}
	if in.HasOpenLoan {
		return valueobject.NewValidationError("farmer has an existing active loan")
	}
	if in.CreditScore < policy.MinimumCreditScore {
		return valueobject.NewValidationError(
			"credit score %d is below the minimum requirement of %d",
			in.CreditScore, policy.MinimumCreditScore,
		)
	}
	if policy.MaximumExposure.GreaterThan(decimal.Zero) &&
		in.CurrentExposure.Add(in.Amount).GreaterThan(policy.MaximumExposure) {
		return valueobject.NewValidationError("maximum exposure limit reached")
	}
	return nil
}
