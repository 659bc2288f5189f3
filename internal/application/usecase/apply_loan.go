package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jonathan-321/congenial-eureka/internal/application/dto"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/service"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// ApplyLoanUseCase takes a loan application through eligibility screening.
// Ineligible applications are persisted in REJECTED status with the reason,
// so every application leaves an audit trail.
type ApplyLoanUseCase struct {
	atomic      port.Atomic
	loanRepo    port.LoanRepository
	productRepo port.ProductRepository
	farmers     port.FarmerDirectory
	scorer      port.CreditScorer
	publisher   port.EventPublisher
	notifier    port.Notifier
	policy      service.EligibilityPolicy
	logger      *slog.Logger
}

// NewApplyLoanUseCase wires dependencies.
func NewApplyLoanUseCase(
	atomic port.Atomic,
	loanRepo port.LoanRepository,
	productRepo port.ProductRepository,
	farmers port.FarmerDirectory,
	scorer port.CreditScorer,
	publisher port.EventPublisher,
	notifier port.Notifier,
	policy service.EligibilityPolicy,
	logger *slog.Logger,
) *ApplyLoanUseCase {
	return &ApplyLoanUseCase{
		atomic:      atomic,
		loanRepo:    loanRepo,
		productRepo: productRepo,
		farmers:     farmers,
		scorer:      scorer,
		publisher:   publisher,
		notifier:    notifier,
		policy:      policy,
		logger:      logger,
	}
}

// Execute screens and records the application. The returned response carries
// PENDING for accepted applications and REJECTED, with the reason, for
// ineligible ones; only infrastructure failures surface as errors.
func (uc *ApplyLoanUseCase) Execute(ctx context.Context, req dto.ApplyLoanRequest) (dto.LoanResponse, error) {
	now := time.Now().UTC()

	product, err := uc.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		if errors.Is(err, valueobject.ErrNotFound) {
			return dto.LoanResponse{}, valueobject.NewValidationError("unknown loan product %s", req.ProductID)
		}
		return dto.LoanResponse{}, fmt.Errorf("find product: %w", err)
	}

	farmer, err := uc.farmers.FindByID(ctx, req.FarmerID)
	if err != nil {
		if errors.Is(err, valueobject.ErrNotFound) {
			return dto.LoanResponse{}, valueobject.NewValidationError("unknown farmer %s", req.FarmerID)
		}
		return dto.LoanResponse{}, fmt.Errorf("find farmer: %w", err)
	}

	score, err := uc.scorer.Score(ctx, farmer.ID)
	if err != nil {
		return dto.LoanResponse{}, fmt.Errorf("credit score: %w", err)
	}

	loan, err := model.NewLoan(farmer.ID, product.ID, req.Amount, product.Currency, score, now)
	if err != nil {
		return dto.LoanResponse{}, valueobject.NewValidationError("%s", err.Error())
	}

	var rejectionReason string
	err = uc.atomic.WithinTx(ctx, func(ctx context.Context) error {
		hasOpen, err := uc.loanRepo.HasOpenLoan(ctx, farmer.ID)
		if err != nil {
			return fmt.Errorf("check open loans: %w", err)
		}
		exposure, err := uc.loanRepo.OutstandingExposure(ctx, farmer.ID)
		if err != nil {
			return fmt.Errorf("sum exposure: %w", err)
		}

		if eligErr := service.CheckEligibility(uc.policy, service.EligibilityInput{
			Product:         product,
			Amount:          req.Amount,
			CreditScore:     score,
			HasOpenLoan:     hasOpen,
			CurrentExposure: exposure,
		}); eligErr != nil {
			rejectionReason = eligErr.Error()
			loan, err = loan.Reject(rejectionReason, now)
			if err != nil {
				return fmt.Errorf("reject loan: %w", err)
			}
		}

		return uc.loanRepo.Create(ctx, loan)
	})
	if err != nil {
		return dto.LoanResponse{}, err
	}

	uc.publish(ctx, loan)
	uc.notify(ctx, farmer, loan, rejectionReason)

	resp := dto.FromLoan(loan)
	resp.RejectionReason = rejectionReason
	return resp, nil
}

func (uc *ApplyLoanUseCase) publish(ctx context.Context, loan model.Loan) {
	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		uc.logger.Error("publish loan events failed", "loan_id", loan.ID(), "error", err)
	}
}

func (uc *ApplyLoanUseCase) notify(ctx context.Context, farmer port.Farmer, loan model.Loan, rejectionReason string) {
	message := fmt.Sprintf(
		"Your loan application for %s %s has been received and is being reviewed.",
		loan.AmountRequested().StringFixed(2), loan.Currency(),
	)
	if rejectionReason != "" {
		message = fmt.Sprintf("Your loan application could not be accepted: %s", rejectionReason)
	}
	if err := uc.notifier.Send(ctx, farmer.PhoneNumber, message); err != nil {
		uc.logger.Warn("application sms failed", "loan_id", loan.ID(), "error", err)
	}
}
