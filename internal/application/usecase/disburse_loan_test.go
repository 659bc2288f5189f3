package usecase_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Jonathan-321/congenial-eureka/internal/application/usecase"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

type disburseFixture struct {
	loanRepo *mockLoanRepository
	txRepo   *mockTransactionRepository
	farmers  *mockFarmerDirectory
	gateway  *mockMoneyGateway
	watcher  *mockStatusWatcher
	uc       *usecase.DisburseLoanUseCase
}

func newDisburseFixture() *disburseFixture {
	f := &disburseFixture{
		loanRepo: &mockLoanRepository{},
		txRepo:   &mockTransactionRepository{},
		farmers:  &mockFarmerDirectory{},
		gateway:  &mockMoneyGateway{},
		watcher:  &mockStatusWatcher{},
	}
	f.loanRepo.findByIDForUpdateFunc = func(ctx context.Context, id string) (model.Loan, error) {
		return approvedLoanFixture(), nil
	}
	f.uc = usecase.NewDisburseLoanUseCase(
		&mockAtomic{}, f.loanRepo, f.txRepo, f.farmers, f.gateway, f.watcher, testLogger(),
	)
	return f
}

func TestDisburseLoan_InitiatesTransfer(t *testing.T) {
	f := newDisburseFixture()

	resp, err := f.uc.Execute(context.Background(), "loan-001")

	require.NoError(t, err)
	assert.Equal(t, "loan-001", resp.LoanID)
	assert.NotEmpty(t, resp.Reference)
	assert.Equal(t, "PENDING", resp.Status, "the loan funds are only confirmed by reconciliation")
	assert.True(t, decimal.NewFromInt(500).Equal(resp.Amount))

	// The transaction row and the gateway reference are committed before the
	// network call, so a crash mid-transfer still leaves a reconcilable trail.
	require.Len(t, f.txRepo.createdTransactions, 1)
	tx := f.txRepo.createdTransactions[0]
	assert.Equal(t, valueobject.TransactionTypeDisbursement, tx.Type)
	assert.Equal(t, valueobject.TransactionStatusPending, tx.Status)

	require.Len(t, f.loanRepo.updatedLoans, 1)
	assert.Equal(t, tx.Reference, f.loanRepo.updatedLoans[0].GatewayReference())

	require.Len(t, f.gateway.transfers, 1)
	assert.Equal(t, tx.Reference, f.gateway.transfers[0].Reference)
	assert.Equal(t, "+250788123456", f.gateway.transfers[0].PhoneNumber)

	require.Len(t, f.watcher.watched, 1)
	assert.Equal(t, tx.Reference, f.watcher.watched[0].Reference)
	assert.Equal(t, valueobject.TransactionTypeDisbursement, f.watcher.watched[0].Type)
}

func TestDisburseLoan_GatewayFailureMarksTransactionFailed(t *testing.T) {
	f := newDisburseFixture()
	f.gateway.transferFunc = func(ctx context.Context, req port.PaymentRequest) error {
		return &valueobject.GatewayError{Op: "transfer", StatusCode: 500}
	}

	_, err := f.uc.Execute(context.Background(), "loan-001")

	require.Error(t, err)
	assert.True(t, valueobject.IsGateway(err))

	require.Len(t, f.txRepo.statusUpdates, 1)
	assert.Equal(t, valueobject.TransactionStatusFailed, f.txRepo.statusUpdates[0].Status)
	assert.Empty(t, f.watcher.watched, "failed submissions are not polled")
}

func TestDisburseLoan_NonApprovedLoanIsRejected(t *testing.T) {
	f := newDisburseFixture()
	f.loanRepo.findByIDForUpdateFunc = func(ctx context.Context, id string) (model.Loan, error) {
		return activeLoanFixture(), nil
	}

	_, err := f.uc.Execute(context.Background(), "loan-001")

	require.ErrorIs(t, err, valueobject.ErrInvalidStatusTransition)
	assert.Empty(t, f.gateway.transfers)
	assert.Empty(t, f.loanRepo.updatedLoans)
}

func TestDisburseLoan_UnknownLoan(t *testing.T) {
	f := newDisburseFixture()
	f.loanRepo.findByIDForUpdateFunc = func(ctx context.Context, id string) (model.Loan, error) {
		return model.Loan{}, valueobject.ErrNotFound
	}

	_, err := f.uc.Execute(context.Background(), "missing")

	require.Error(t, err)
	assert.ErrorIs(t, err, valueobject.ErrNotFound)
}
