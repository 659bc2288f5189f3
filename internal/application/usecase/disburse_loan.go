package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jonathan-321/congenial-eureka/internal/application/dto"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// DisburseLoanUseCase pushes an approved loan's funds to the farmer's
// mobile-money account. The gateway call is asynchronous: the loan stays
// APPROVED until reconciliation confirms the transfer, at which point the
// schedule is generated and the loan becomes DISBURSED.
type DisburseLoanUseCase struct {
	atomic   port.Atomic
	loanRepo port.LoanRepository
	txRepo   port.TransactionRepository
	farmers  port.FarmerDirectory
	gateway  port.MoneyGateway
	watcher  port.StatusWatcher
	logger   *slog.Logger
}

// NewDisburseLoanUseCase wires dependencies.
func NewDisburseLoanUseCase(
	atomic port.Atomic,
	loanRepo port.LoanRepository,
	txRepo port.TransactionRepository,
	farmers port.FarmerDirectory,
	gateway port.MoneyGateway,
	watcher port.StatusWatcher,
	logger *slog.Logger,
) *DisburseLoanUseCase {
	return &DisburseLoanUseCase{
		atomic:   atomic,
		loanRepo: loanRepo,
		txRepo:   txRepo,
		farmers:  farmers,
		gateway:  gateway,
		watcher:  watcher,
		logger:   logger,
	}
}

// Execute initiates the disbursement transfer.
func (uc *DisburseLoanUseCase) Execute(ctx context.Context, loanID string) (dto.PaymentInitiatedResponse, error) {
	now := time.Now().UTC()

	var (
		loan model.Loan
		tx   model.Transaction
	)
	err := uc.atomic.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = uc.loanRepo.FindByIDForUpdate(ctx, loanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}

		farmer, err := uc.farmers.FindByID(ctx, loan.FarmerID())
		if err != nil {
			return fmt.Errorf("find farmer: %w", err)
		}

		tx = model.NewTransaction(
			loan.ID(), valueobject.TransactionTypeDisbursement,
			loan.AmountApproved(), loan.Currency(), farmer.PhoneNumber, now,
		)
		loan, err = loan.AttachGatewayReference(tx.Reference, now)
		if err != nil {
			return err
		}

		if err := uc.txRepo.Create(ctx, tx); err != nil {
			return fmt.Errorf("create transaction: %w", err)
		}
		return uc.loanRepo.Update(ctx, loan)
	})
	if err != nil {
		return dto.PaymentInitiatedResponse{}, err
	}

	if err := uc.gateway.Transfer(ctx, port.PaymentRequest{
		Reference:   tx.Reference,
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		PhoneNumber: tx.PhoneNumber,
		Message:     "Loan Disbursement",
		Note:        "Farm Loan",
	}); err != nil {
		if markErr := uc.txRepo.UpdateStatus(ctx, tx.ID, valueobject.TransactionStatusFailed, ""); markErr != nil {
			uc.logger.Error("mark transaction failed", "reference", tx.Reference, "error", markErr)
		}
		return dto.PaymentInitiatedResponse{}, err
	}

	uc.watcher.Watch(tx.Reference, valueobject.TransactionTypeDisbursement)
	uc.logger.Info("disbursement initiated", "loan_id", loan.ID(), "reference", tx.Reference)

	return dto.PaymentInitiatedResponse{
		LoanID:    loan.ID(),
		Reference: tx.Reference,
		Amount:    tx.Amount,
		Status:    tx.Status.String(),
	}, nil
}
