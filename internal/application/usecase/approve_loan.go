package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jonathan-321/congenial-eureka/internal/application/dto"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
)

// ApproveLoanUseCase moves a pending application to APPROVED.
type ApproveLoanUseCase struct {
	atomic    port.Atomic
	loanRepo  port.LoanRepository
	farmers   port.FarmerDirectory
	publisher port.EventPublisher
	notifier  port.Notifier
	logger    *slog.Logger
}

// NewApproveLoanUseCase wires dependencies.
func NewApproveLoanUseCase(
	atomic port.Atomic,
	loanRepo port.LoanRepository,
	farmers port.FarmerDirectory,
	publisher port.EventPublisher,
	notifier port.Notifier,
	logger *slog.Logger,
) *ApproveLoanUseCase {
	return &ApproveLoanUseCase{
		atomic:    atomic,
		loanRepo:  loanRepo,
		farmers:   farmers,
		publisher: publisher,
		notifier:  notifier,
		logger:    logger,
	}
}

// Execute approves the loan. A zero amount approves the requested amount.
func (uc *ApproveLoanUseCase) Execute(ctx context.Context, req dto.ApproveLoanRequest) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	var loan model.Loan
	err := uc.atomic.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = uc.loanRepo.FindByIDForUpdate(ctx, req.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		loan, err = loan.Approve(req.Amount, now)
		if err != nil {
			return err
		}
		return uc.loanRepo.Update(ctx, loan)
	})
	if err != nil {
		return dto.LoanResponse{}, err
	}

	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		uc.logger.Error("publish loan events failed", "loan_id", loan.ID(), "error", err)
	}
	uc.notifyApproval(ctx, loan)

	return dto.FromLoan(loan), nil
}

func (uc *ApproveLoanUseCase) notifyApproval(ctx context.Context, loan model.Loan) {
	farmer, err := uc.farmers.FindByID(ctx, loan.FarmerID())
	if err != nil {
		uc.logger.Warn("farmer lookup for sms failed", "farmer_id", loan.FarmerID(), "error", err)
		return
	}
	message := fmt.Sprintf(
		"Your loan of %s %s has been approved. Funds will be sent to your mobile money account shortly.",
		loan.AmountApproved().StringFixed(2), loan.Currency(),
	)
	if err := uc.notifier.Send(ctx, farmer.PhoneNumber, message); err != nil {
		uc.logger.Warn("approval sms failed", "loan_id", loan.ID(), "error", err)
	}
}
