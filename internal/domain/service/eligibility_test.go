package service_test

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/service"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

func eligibilityFixture() (service.EligibilityPolicy, service.EligibilityInput) {
	policy := service.EligibilityPolicy{
		MinimumCreditScore: 50,
		MaximumExposure:    decimal.NewFromInt(5000),
	}
	in := service.EligibilityInput{
		Product: model.LoanProduct{
			ID:        "product-001",
			Name:      "Seed Loan",
			MinAmount: decimal.NewFromInt(100),
			MaxAmount: decimal.NewFromInt(2000),
			Active:    true,
		},
		Amount:          decimal.NewFromInt(500),
		CreditScore:     70,
		HasOpenLoan:     false,
		CurrentExposure: decimal.Zero,
	}
	return policy, in
}

func TestCheckEligibility(t *testing.T) {
	t.Run("eligible application passes", func(t *testing.T) {
		policy, in := eligibilityFixture()
		assert.NoError(t, service.CheckEligibility(policy, in))
	})

	t.Run("inactive product", func(t *testing.T) {
		policy, in := eligibilityFixture()
		in.Product.Active = false
		err := service.CheckEligibility(policy, in)
		require.Error(t, err)
		assert.True(t, valueobject.IsValidation(err))
		assert.Contains(t, err.Error(), "not available")
	})

	t.Run("amount below product minimum", func(t *testing.T) {
		policy, in := eligibilityFixture()
		in.Amount = decimal.NewFromInt(50)
		err := service.CheckEligibility(policy, in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside product limits")
	})

	t.Run("amount above product maximum", func(t *testing.T) {
		policy, in := eligibilityFixture()
		in.Amount = decimal.NewFromInt(2001)
		err := service.CheckEligibility(policy, in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "outside product limits")
	})

	t.Run("existing open loan", func(t *testing.T) {
		policy, in := eligibilityFixture()
		in.HasOpenLoan = true
		err := service.CheckEligibility(policy, in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "existing active loan")
	})

	t.Run("credit score below minimum", func(t *testing.T) {
		policy, in := eligibilityFixture()
		in.CreditScore = 49
		err := service.CheckEligibility(policy, in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "below the minimum")
	})

	t.Run("exposure cap reached", func(t *testing.T) {
		policy, in := eligibilityFixture()
		in.CurrentExposure = decimal.NewFromInt(4600)
		err := service.CheckEligibility(policy, in)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "maximum exposure")
	})

	t.Run("exposure cap disabled when zero", func(t *testing.T) {
		policy, in := eligibilityFixture()
		policy.MaximumExposure = decimal.Zero
		in.CurrentExposure = decimal.NewFromInt(1_000_000)
		assert.NoError(t, service.CheckEligibility(policy, in))
	})
}
