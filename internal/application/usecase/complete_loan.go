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

// CompleteLoanUseCase settles a loan whose installment book is fully paid.
// Reconciliation normally pays loans off on the final repayment; this is the
// explicit correction for loans whose derived state drifted (missed webhook
// and exhausted poll budget). A loan with open installments is refused, and
// completing an already paid loan succeeds without changes.
type CompleteLoanUseCase struct {
	atomic          port.Atomic
	loanRepo        port.LoanRepository
	installmentRepo port.InstallmentRepository
	publisher       port.EventPublisher
	logger          *slog.Logger
}

// NewCompleteLoanUseCase wires dependencies.
func NewCompleteLoanUseCase(
	atomic port.Atomic,
	loanRepo port.LoanRepository,
	installmentRepo port.InstallmentRepository,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *CompleteLoanUseCase {
	return &CompleteLoanUseCase{
		atomic:          atomic,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		publisher:       publisher,
		logger:          logger,
	}
}

// Execute marks the loan PAID once every installment is settled.
func (uc *CompleteLoanUseCase) Execute(ctx context.Context, loanID string) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	var loan model.Loan
	err := uc.atomic.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = uc.loanRepo.FindByIDForUpdate(ctx, loanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}
		if loan.Status().Equal(valueobject.LoanStatusPaid) {
			return nil
		}

		unpaid, err := uc.installmentRepo.CountUnpaid(ctx, loanID)
		if err != nil {
			return fmt.Errorf("count unpaid installments: %w", err)
		}
		if unpaid > 0 {
			return valueobject.NewValidationError("loan has %d unpaid installments", unpaid)
		}

		loan, err = loan.Complete(now)
		if err != nil {
			return err
		}
		return uc.loanRepo.Update(ctx, loan)
	})
	if err != nil {
		return dto.LoanResponse{}, err
	}

	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		uc.logger.Error("publish loan events failed", "loan_id", loanID, "error", err)
	}
	return dto.FromLoan(loan), nil
}
