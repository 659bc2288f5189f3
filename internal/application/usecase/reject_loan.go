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

// RejectLoanUseCase moves a pending application to REJECTED.
type RejectLoanUseCase struct {
	atomic    port.Atomic
	loanRepo  port.LoanRepository
	publisher port.EventPublisher
	logger    *slog.Logger
}

// NewRejectLoanUseCase wires dependencies.
func NewRejectLoanUseCase(
	atomic port.Atomic,
	loanRepo port.LoanRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *RejectLoanUseCase {
	return &RejectLoanUseCase{
		atomic:    atomic,
		loanRepo:  loanRepo,
		publisher: publisher,
		logger:    logger,
	}
}

// Execute rejects the loan with the given reason.
func (uc *RejectLoanUseCase) Execute(ctx context.Context, req dto.RejectLoanRequest) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	var loan model.Loan
	err := uc.atomic.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = uc.loanRepo.FindByIDForUpdate(ctx, req.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		loan, err = loan.Reject(req.Reason, now)
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

	resp := dto.FromLoan(loan)
	resp.RejectionReason = req.Reason
	return resp, nil
}
