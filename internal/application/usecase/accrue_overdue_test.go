package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonathan-321/congenial-eureka/internal/application/usecase"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

type accrueFixture struct {
	loanRepo        *mockLoanRepository
	installmentRepo *mockInstallmentRepository
	repaymentRepo   *mockRepaymentRepository
	farmers         *mockFarmerDirectory
	notifier        *mockNotifier
	publisher       *mockEventPublisher
	uc              *usecase.AccrueOverdueUseCase
}

func newAccrueFixture(reminderWindow time.Duration) *accrueFixture {
	f := &accrueFixture{
		loanRepo:        &mockLoanRepository{},
		installmentRepo: &mockInstallmentRepository{},
		repaymentRepo:   &mockRepaymentRepository{},
		farmers:         &mockFarmerDirectory{},
		notifier:        &mockNotifier{},
		publisher:       &mockEventPublisher{},
	}
	f.uc = usecase.NewAccrueOverdueUseCase(
		&mockAtomic{}, f.loanRepo, f.installmentRepo, f.repaymentRepo,
		f.farmers, f.notifier, f.publisher, reminderWindow, testLogger(),
	)
	return f
}

func TestAccrueOverdue_MarksAndPenalizes(t *testing.T) {
	f := newAccrueFixture(24 * time.Hour)
	now := time.Now().UTC()

	overdue := openInstallmentFixture("i-1", 1, now.AddDate(0, 0, -10), decimal.NewFromInt(1000))
	future := openInstallmentFixture("i-2", 2, now.AddDate(0, 0, 20), decimal.NewFromInt(1000))

	f.installmentRepo.listDueFunc = func(ctx context.Context, before time.Time) ([]model.Installment, error) {
		return []model.Installment{overdue}, nil
	}
	f.installmentRepo.listOpenByLoanFunc = func(ctx context.Context, loanID string) ([]model.Installment, error) {
		return []model.Installment{overdue, future}, nil
	}
	f.loanRepo.findByIDForUpdateFunc = func(ctx context.Context, id string) (model.Loan, error) {
		return activeLoanFixture(), nil
	}

	require.NoError(t, f.uc.Execute(context.Background()))

	// Only the past-due installment is touched; ten days late at 1% per day.
	require.Len(t, f.installmentRepo.updatedInstallments, 1)
	updated := f.installmentRepo.updatedInstallments[0]
	assert.Equal(t, "i-1", updated.ID)
	assert.Equal(t, valueobject.InstallmentStatusOverdue, updated.Status)
	assert.True(t, decimal.NewFromInt(100).Equal(updated.Penalty), "penalty: %s", updated.Penalty)
	require.NotNil(t, updated.LastReminderAt)

	// The loan moves to OVERDUE and the transition event is published.
	require.Len(t, f.loanRepo.updatedLoans, 1)
	assert.Equal(t, valueobject.LoanStatusOverdue, f.loanRepo.updatedLoans[0].Status())
	assert.NotEmpty(t, f.publisher.publishedEvents)

	// One reminder SMS carrying the outstanding amount and the late fee.
	require.Len(t, f.notifier.sent, 1)
	assert.Contains(t, f.notifier.sent[0].Message, "1100.00")
	assert.Contains(t, f.notifier.sent[0].Message, "100.00")
}

func TestAccrueOverdue_PenaltyIsRecomputedNotAccumulated(t *testing.T) {
	f := newAccrueFixture(24 * time.Hour)
	now := time.Now().UTC()

	// Already swept once: carries a penalty and a fresh reminder timestamp.
	reminderAt := now.Add(-1 * time.Hour)
	inst := openInstallmentFixture("i-1", 1, now.AddDate(0, 0, -10), decimal.NewFromInt(1000))
	inst.Status = valueobject.InstallmentStatusOverdue
	inst.Penalty = decimal.NewFromInt(100)
	inst.LastReminderAt = &reminderAt

	f.installmentRepo.listDueFunc = func(ctx context.Context, before time.Time) ([]model.Installment, error) {
		return []model.Installment{inst}, nil
	}
	f.installmentRepo.listOpenByLoanFunc = func(ctx context.Context, loanID string) ([]model.Installment, error) {
		return []model.Installment{inst}, nil
	}
	f.loanRepo.findByIDForUpdateFunc = func(ctx context.Context, id string) (model.Loan, error) {
		return activeLoanFixture(), nil
	}

	require.NoError(t, f.uc.Execute(context.Background()))

	require.Len(t, f.installmentRepo.updatedInstallments, 1)
	updated := f.installmentRepo.updatedInstallments[0]
	assert.True(t, decimal.NewFromInt(100).Equal(updated.Penalty),
		"a second sweep on the same day must not double the penalty, got %s", updated.Penalty)
	assert.Empty(t, f.notifier.sent, "reminded an hour ago, the throttle window holds")
	assert.Equal(t, reminderAt, *updated.LastReminderAt)
}

func TestAccrueOverdue_ReminderAfterWindowElapses(t *testing.T) {
	f := newAccrueFixture(24 * time.Hour)
	now := time.Now().UTC()

	reminderAt := now.Add(-25 * time.Hour)
	inst := openInstallmentFixture("i-1", 1, now.AddDate(0, 0, -5), decimal.NewFromInt(200))
	inst.Status = valueobject.InstallmentStatusOverdue
	inst.LastReminderAt = &reminderAt

	f.installmentRepo.listDueFunc = func(ctx context.Context, before time.Time) ([]model.Installment, error) {
		return []model.Installment{inst}, nil
	}
	f.installmentRepo.listOpenByLoanFunc = func(ctx context.Context, loanID string) ([]model.Installment, error) {
		return []model.Installment{inst}, nil
	}
	f.loanRepo.findByIDForUpdateFunc = func(ctx context.Context, id string) (model.Loan, error) {
		return activeLoanFixture(), nil
	}

	require.NoError(t, f.uc.Execute(context.Background()))

	require.Len(t, f.notifier.sent, 1)
	require.Len(t, f.installmentRepo.updatedInstallments, 1)
	got := f.installmentRepo.updatedInstallments[0]
	require.NotNil(t, got.LastReminderAt)
	assert.True(t, got.LastReminderAt.After(reminderAt), "reminder timestamp must advance")
}

func TestAccrueOverdue_OneBadLoanDoesNotStallTheSweep(t *testing.T) {
	f := newAccrueFixture(24 * time.Hour)
	now := time.Now().UTC()

	instA := openInstallmentFixture("i-a", 1, now.AddDate(0, 0, -3), decimal.NewFromInt(100))
	instA.LoanID = "loan-bad"
	instB := openInstallmentFixture("i-b", 1, now.AddDate(0, 0, -3), decimal.NewFromInt(100))
	instB.LoanID = "loan-good"

	f.installmentRepo.listDueFunc = func(ctx context.Context, before time.Time) ([]model.Installment, error) {
		return []model.Installment{instA, instB}, nil
	}
	f.installmentRepo.listOpenByLoanFunc = func(ctx context.Context, loanID string) ([]model.Installment, error) {
		if loanID == "loan-bad" {
			return nil, context.DeadlineExceeded
		}
		return []model.Installment{instB}, nil
	}
	f.loanRepo.findByIDForUpdateFunc = func(ctx context.Context, id string) (model.Loan, error) {
		return activeLoanFixture(), nil
	}

	err := f.uc.Execute(context.Background())

	require.NoError(t, err, "per-loan failures are logged, not returned")
	require.Len(t, f.installmentRepo.updatedInstallments, 1)
	assert.Equal(t, "i-b", f.installmentRepo.updatedInstallments[0].ID)
}

func TestAccrueOverdue_NothingDue(t *testing.T) {
	f := newAccrueFixture(24 * time.Hour)

	require.NoError(t, f.uc.Execute(context.Background()))

	assert.Empty(t, f.installmentRepo.updatedInstallments)
	assert.Empty(t, f.loanRepo.updatedLoans)
	assert.Empty(t, f.notifier.sent)
}
