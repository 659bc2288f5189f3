package model_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/event"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func newPendingLoan(t *testing.T) model.Loan {
	t.Helper()
	loan, err := model.NewLoan("farmer-001", "product-001", decimal.NewFromInt(500), "RWF", 72, testNow)
	require.NoError(t, err)
	return loan
}

func TestNewLoan(t *testing.T) {
	loan := newPendingLoan(t)

	assert.NotEmpty(t, loan.ID())
	assert.Equal(t, valueobject.LoanStatusPending, loan.Status())
	assert.True(t, loan.AmountApproved().IsZero(), "approved amount fixed only at approval")
	assert.Equal(t, 72, loan.CreditScore())

	require.Len(t, loan.DomainEvents(), 1)
	_, ok := loan.DomainEvents()[0].(event.LoanApplied)
	assert.True(t, ok)
}

func TestNewLoan_Validation(t *testing.T) {
	_, err := model.NewLoan("", "product-001", decimal.NewFromInt(500), "RWF", 72, testNow)
	assert.Error(t, err)

	_, err = model.NewLoan("farmer-001", "", decimal.NewFromInt(500), "RWF", 72, testNow)
	assert.Error(t, err)

	_, err = model.NewLoan("farmer-001", "product-001", decimal.Zero, "RWF", 72, testNow)
	assert.Error(t, err)

	_, err = model.NewLoan("farmer-001", "product-001", decimal.NewFromInt(500), "", 72, testNow)
	assert.Error(t, err)
}

func TestLoan_Approve(t *testing.T) {
	loan := newPendingLoan(t)

	approved, err := loan.Approve(decimal.NewFromInt(400), testNow)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanStatusApproved, approved.Status())
	assert.True(t, decimal.NewFromInt(400).Equal(approved.AmountApproved()))
	require.NotNil(t, approved.ApprovedAt())

	// Original copy is untouched.
	assert.Equal(t, valueobject.LoanStatusPending, loan.Status())
	assert.True(t, loan.AmountApproved().IsZero())

	// Approving again is an invalid transition and leaves the copy unchanged.
	again, err := approved.Approve(decimal.NewFromInt(400), testNow)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
	assert.Equal(t, valueobject.LoanStatusApproved, again.Status())
}

func TestLoan_ApproveDefaultsToRequestedAmount(t *testing.T) {
	loan := newPendingLoan(t)

	approved, err := loan.Approve(decimal.Zero, testNow)
	require.NoError(t, err)
	assert.True(t, loan.AmountRequested().Equal(approved.AmountApproved()))
}

func TestLoan_Reject(t *testing.T) {
	loan := newPendingLoan(t)

	rejected, err := loan.Reject("credit score too low", testNow)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanStatusRejected, rejected.Status())
	assert.True(t, rejected.Status().IsTerminal())

	_, err = rejected.Approve(decimal.NewFromInt(400), testNow)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
}

func TestLoan_MarkDisbursed(t *testing.T) {
	loan := newPendingLoan(t)
	dueDate := testNow.AddDate(0, 0, 90)

	// Disbursing before approval is illegal and must not mutate anything.
	same, err := loan.MarkDisbursed(testNow, dueDate)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
	assert.Equal(t, valueobject.LoanStatusPending, same.Status())
	assert.Nil(t, same.DisbursedAt())

	approved, err := loan.Approve(decimal.NewFromInt(500), testNow)
	require.NoError(t, err)
	withRef, err := approved.AttachGatewayReference("ref-123", testNow)
	require.NoError(t, err)

	disbursed, err := withRef.MarkDisbursed(testNow, dueDate)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanStatusDisbursed, disbursed.Status())
	assert.Equal(t, "ref-123", disbursed.GatewayReference())
	require.NotNil(t, disbursed.DueAt())
	assert.Equal(t, dueDate, *disbursed.DueAt())
	assert.True(t, disbursed.Status().IsRepayable())
}

func TestLoan_AttachGatewayReferenceRequiresApproved(t *testing.T) {
	loan := newPendingLoan(t)
	_, err := loan.AttachGatewayReference("ref-123", testNow)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
}

func disbursedTestLoan(t *testing.T) model.Loan {
	t.Helper()
	loan := newPendingLoan(t)
	approved, err := loan.Approve(decimal.NewFromInt(500), testNow)
	require.NoError(t, err)
	withRef, err := approved.AttachGatewayReference("ref-123", testNow)
	require.NoError(t, err)
	disbursed, err := withRef.MarkDisbursed(testNow, testNow.AddDate(0, 0, 90))
	require.NoError(t, err)
	return disbursed.ClearEvents()
}

func TestLoan_RecomputeStatus(t *testing.T) {
	t.Run("fully repaid becomes PAID", func(t *testing.T) {
		loan := disbursedTestLoan(t)
		next := loan.RecomputeStatus(decimal.NewFromInt(500), false, testNow)
		assert.Equal(t, valueobject.LoanStatusPaid, next.Status())
		require.Len(t, next.DomainEvents(), 1)
		_, ok := next.DomainEvents()[0].(event.LoanPaidOff)
		assert.True(t, ok)
	})

	t.Run("overdue installments set OVERDUE", func(t *testing.T) {
		loan := disbursedTestLoan(t)
		next := loan.RecomputeStatus(decimal.NewFromInt(100), true, testNow)
		assert.Equal(t, valueobject.LoanStatusOverdue, next.Status())
	})

	t.Run("partial repayment activates the loan", func(t *testing.T) {
		loan := disbursedTestLoan(t)
		next := loan.RecomputeStatus(decimal.NewFromInt(100), false, testNow)
		assert.Equal(t, valueobject.LoanStatusActive, next.Status())
	})

	t.Run("overdue recovers once arrears clear", func(t *testing.T) {
		loan := disbursedTestLoan(t)
		overdue := loan.RecomputeStatus(decimal.Zero, true, testNow)
		recovered := overdue.RecomputeStatus(decimal.NewFromInt(200), false, testNow)
		assert.Equal(t, valueobject.LoanStatusActive, recovered.Status())
	})

	t.Run("idempotent with identical inputs", func(t *testing.T) {
		loan := disbursedTestLoan(t)
		once := loan.RecomputeStatus(decimal.NewFromInt(500), false, testNow)
		twice := once.RecomputeStatus(decimal.NewFromInt(500), false, testNow)
		assert.Equal(t, once.Status(), twice.Status())
		assert.Len(t, twice.DomainEvents(), len(once.DomainEvents()),
			"repeated recomputation must not raise duplicate events")
	})

	t.Run("non-repayable statuses are untouched", func(t *testing.T) {
		loan := newPendingLoan(t)
		next := loan.RecomputeStatus(decimal.NewFromInt(500), true, testNow)
		assert.Equal(t, valueobject.LoanStatusPending, next.Status())
	})
}

func TestLoan_Complete(t *testing.T) {
	loan := disbursedTestLoan(t)

	paid, err := loan.Complete(testNow)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanStatusPaid, paid.Status())
	require.Len(t, paid.DomainEvents(), 1)
	_, ok := paid.DomainEvents()[0].(event.LoanPaidOff)
	assert.True(t, ok)

	// Completing a paid loan is a no-op, not an error.
	again, err := paid.Complete(testNow)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanStatusPaid, again.Status())
	assert.Len(t, again.DomainEvents(), 1)

	_, err = newPendingLoan(t).Complete(testNow)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
}

func TestLoan_MarkDefaulted(t *testing.T) {
	loan := disbursedTestLoan(t)

	defaulted, err := loan.MarkDefaulted(testNow)
	require.NoError(t, err)
	assert.Equal(t, valueobject.LoanStatusDefaulted, defaulted.Status())

	_, err = defaulted.MarkDefaulted(testNow)
	assert.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
}

func TestLoan_ClearEvents(t *testing.T) {
	loan := newPendingLoan(t)
	require.NotEmpty(t, loan.DomainEvents())

	cleared := loan.ClearEvents()
	assert.Empty(t, cleared.DomainEvents())
	assert.NotEmpty(t, loan.DomainEvents(), "clearing returns a copy")
}
