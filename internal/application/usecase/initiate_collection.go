package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/application/dto"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// InitiateCollectionUseCase asks the farmer's wallet to release a repayment.
// The money is not applied to the loan here; reconciliation records the
// repayment once the gateway confirms the collection.
type InitiateCollectionUseCase struct {
	atomic   port.Atomic
	loanRepo port.LoanRepository
	txRepo   port.TransactionRepository
	farmers  port.FarmerDirectory
	gateway  port.MoneyGateway
	watcher  port.StatusWatcher
	logger   *slog.Logger
}

// NewInitiateCollectionUseCase wires dependencies.
func NewInitiateCollectionUseCase(
	atomic port.Atomic,
	loanRepo port.LoanRepository,
	txRepo port.TransactionRepository,
	farmers port.FarmerDirectory,
	gateway port.MoneyGateway,
	watcher port.StatusWatcher,
	logger *slog.Logger,
) *InitiateCollectionUseCase {
	return &InitiateCollectionUseCase{
		atomic:   atomic,
		loanRepo: loanRepo,
		txRepo:   txRepo,
		farmers:  farmers,
		gateway:  gateway,
		watcher:  watcher,
		logger:   logger,
	}
}

// Execute initiates a repayment collection for the loan.
func (uc *InitiateCollectionUseCase) Execute(ctx context.Context, req dto.CollectionRequest) (dto.PaymentInitiatedResponse, error) {
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return dto.PaymentInitiatedResponse{}, valueobject.NewValidationError("repayment amount must be positive")
	}
	now := time.Now().UTC()

	var tx model.Transaction
	err := uc.atomic.WithinTx(ctx, func(ctx context.Context) error {
		loan, err := uc.loanRepo.FindByIDForUpdate(ctx, req.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		if !loan.Status().IsRepayable() {
			return valueobject.NewValidationError("loan %s is not accepting repayments", loan.ID())
		}

		farmer, err := uc.farmers.FindByID(ctx, loan.FarmerID())
		if err != nil {
			return fmt.Errorf("find farmer: %w", err)
		}

		tx = model.NewTransaction(
			loan.ID(), valueobject.TransactionTypeRepayment,
			req.Amount, loan.Currency(), farmer.PhoneNumber, now,
		)
		return uc.txRepo.Create(ctx, tx)
	})
	if err != nil {
		return dto.PaymentInitiatedResponse{}, err
	}

	if err := uc.gateway.RequestToPay(ctx, port.PaymentRequest{
		Reference:   tx.Reference,
		Amount:      tx.Amount,
		Currency:    tx.Currency,
		PhoneNumber: tx.PhoneNumber,
		Message:     "Loan Repayment",
		Note:        "Farm Loan Repayment",
	}); err != nil {
		if markErr := uc.txRepo.UpdateStatus(ctx, tx.ID, valueobject.TransactionStatusFailed, ""); markErr != nil {
			uc.logger.Error("mark transaction failed", "reference", tx.Reference, "error", markErr)
		}
		return dto.PaymentInitiatedResponse{}, err
	}

	uc.watcher.Watch(tx.Reference, valueobject.TransactionTypeRepayment)
	uc.logger.Info("collection initiated", "loan_id", req.LoanID, "reference", tx.Reference)

	return dto.PaymentInitiatedResponse{
		LoanID:    req.LoanID,
		Reference: tx.Reference,
		Amount:    tx.Amount,
		Status:    tx.Status.String(),
	}, nil
}
