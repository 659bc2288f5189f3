package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/event"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/service"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
	"github.com/Jonathan-321/congenial-eureka/pkg/observability"
)

// Reconciliation outcomes recorded in metrics.
const (
	outcomeApplied          = "applied"
	outcomeDuplicate        = "duplicate"
	outcomeUnknownReference = "unknown_reference"
	outcomeFailed           = "failed"
	outcomeError            = "error"
)

// ReconcileUseCase is the single entry point through which every gateway
// verdict reaches the ledger. The webhook handler and the status poller both
// call it, so duplicate and out-of-order deliveries are expected traffic:
// the transaction's terminal-state check and the repayment existence check
// make a second delivery a no-op.
type ReconcileUseCase struct {
	atomic          port.Atomic
	loanRepo        port.LoanRepository
	productRepo     port.ProductRepository
	installmentRepo port.InstallmentRepository
	txRepo          port.TransactionRepository
	repaymentRepo   port.RepaymentRepository
	harvests        port.HarvestCalendar
	farmers         port.FarmerDirectory
	notifier        port.Notifier
	publisher       port.EventPublisher
	generator       *service.ScheduleGenerator
	logger          *slog.Logger
}

// NewReconcileUseCase wires dependencies.
func NewReconcileUseCase(
	atomic port.Atomic,
	loanRepo port.LoanRepository,
	productRepo port.ProductRepository,
	installmentRepo port.InstallmentRepository,
	txRepo port.TransactionRepository,
	repaymentRepo port.RepaymentRepository,
	harvests port.HarvestCalendar,
	farmers port.FarmerDirectory,
	notifier port.Notifier,
	publisher port.EventPublisher,
	logger *slog.Logger,
) *ReconcileUseCase {
	return &ReconcileUseCase{
		atomic:          atomic,
		loanRepo:        loanRepo,
		productRepo:     productRepo,
		installmentRepo: installmentRepo,
		txRepo:          txRepo,
		repaymentRepo:   repaymentRepo,
		harvests:        harvests,
		farmers:         farmers,
		notifier:        notifier,
		publisher:       publisher,
		generator:       service.NewScheduleGenerator(),
		logger:          logger,
	}
}

// Reconcile applies one gateway verdict to the ledger. Unknown references
// and already-terminal transactions are ignored without error; only
// infrastructure failures surface to the caller.
func (uc *ReconcileUseCase) Reconcile(ctx context.Context, reference string, status port.GatewayStatus) error {
	if status.Pending {
		return nil
	}
	now := time.Now().UTC()

	var (
		outcome = outcomeApplied
		loan    model.Loan
		events  []event.DomainEvent
		message string
	)

	err := uc.atomic.WithinTx(ctx, func(ctx context.Context) error {
		tx, err := uc.txRepo.FindByReferenceForUpdate(ctx, reference)
		if err != nil {
			if errors.Is(err, valueobject.ErrNotFound) {
				outcome = outcomeUnknownReference
				uc.logger.Warn("reconcile: unknown reference ignored", "reference", reference)
				return nil
			}
			return fmt.Errorf("find transaction: %w", err)
		}
		if tx.Status.IsTerminal() {
			outcome = outcomeDuplicate
			uc.logger.Debug("reconcile: duplicate delivery ignored",
				"reference", reference, "status", tx.Status.String())
			return nil
		}

		if status.Status.Equal(valueobject.TransactionStatusFailed) {
			outcome = outcomeFailed
			uc.logger.Info("reconcile: transaction failed",
				"reference", reference, "reason", status.Reason)
			return uc.txRepo.UpdateStatus(ctx, tx.ID, valueobject.TransactionStatusFailed, status.FinancialID)
		}

		if err := uc.txRepo.UpdateStatus(ctx, tx.ID, valueobject.TransactionStatusSuccessful, status.FinancialID); err != nil {
			return fmt.Errorf("mark transaction successful: %w", err)
		}

		loan, err = uc.loanRepo.FindByIDForUpdate(ctx, tx.LoanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}

		switch {
		case tx.Type.Equal(valueobject.TransactionTypeDisbursement):
			loan, message, err = uc.applyDisbursement(ctx, loan, now)
		case tx.Type.Equal(valueobject.TransactionTypeRepayment):
			var duplicate bool
			loan, events, message, duplicate, err = uc.applyRepayment(ctx, loan, tx, now)
			if duplicate {
				outcome = outcomeDuplicate
			}
		default:
			err = fmt.Errorf("unknown transaction type %q", tx.Type.String())
		}
		return err
	})
	if err != nil {
		observability.ReconciliationsTotal.WithLabelValues(outcomeError).Inc()
		return err
	}
	observability.ReconciliationsTotal.WithLabelValues(outcome).Inc()

	if outcome != outcomeApplied {
		return nil
	}

	events = append(events, loan.DomainEvents()...)
	if err := uc.publisher.Publish(ctx, events...); err != nil {
		uc.logger.Error("publish reconciliation events failed",
			"loan_id", loan.ID(), "reference", reference, "error", err)
	}
	uc.notify(ctx, loan, message)
	return nil
}

// applyDisbursement moves the loan to DISBURSED and generates the payment
// schedule exactly once.
func (uc *ReconcileUseCase) applyDisbursement(ctx context.Context, loan model.Loan, now time.Time) (model.Loan, string, error) {
	product, err := uc.productRepo.FindByID(ctx, loan.ProductID())
	if err != nil {
		return loan, "", fmt.Errorf("find product: %w", err)
	}

	dueDate := now.AddDate(0, 0, product.DurationDays)
	loan, err = loan.MarkDisbursed(now, dueDate)
	if err != nil {
		return loan, "", fmt.Errorf("mark disbursed: %w", err)
	}

	exists, err := uc.installmentRepo.ExistsForLoan(ctx, loan.ID())
	if err != nil {
		return loan, "", fmt.Errorf("check schedule: %w", err)
	}
	if !exists {
		var harvestDates []time.Time
		if product.ScheduleType.Equal(valueobject.ScheduleTypeHarvest) {
			harvestDates, err = uc.harvests.UpcomingHarvests(ctx, loan.FarmerID())
			if err != nil {
				// No harvest data: the generator falls back to FIXED.
				uc.logger.Warn("harvest calendar unavailable, using fixed schedule",
					"loan_id", loan.ID(), "error", err)
				harvestDates = nil
			}
		}
		installments, err := uc.generator.Generate(loan, product, harvestDates, now)
		if err != nil {
			return loan, "", fmt.Errorf("generate schedule: %w", err)
		}
		if err := uc.installmentRepo.CreateBatch(ctx, installments); err != nil {
			return loan, "", fmt.Errorf("persist schedule: %w", err)
		}
	}

	if err := uc.loanRepo.Update(ctx, loan); err != nil {
		return loan, "", fmt.Errorf("update loan: %w", err)
	}

	message := fmt.Sprintf(
		"Your loan of %s %s has been sent to your mobile money account. First payment is due on %s.",
		loan.AmountApproved().StringFixed(2), loan.Currency(), dueDate.Format("2 Jan 2006"),
	)
	return loan, message, nil
}

// applyRepayment records the repayment once, waterfalls it across open
// installments and rederives the loan status.
func (uc *ReconcileUseCase) applyRepayment(ctx context.Context, loan model.Loan, tx model.Transaction, now time.Time) (model.Loan, []event.DomainEvent, string, bool, error) {
	exists, err := uc.repaymentRepo.ExistsByReference(ctx, tx.Reference)
	if err != nil {
		return loan, nil, "", false, fmt.Errorf("check repayment: %w", err)
	}
	if exists {
		return loan, nil, "", true, nil
	}

	repayment := model.NewRepayment(loan.ID(), tx.Amount, tx.Reference, now)
	if err := uc.repaymentRepo.Create(ctx, repayment); err != nil {
		return loan, nil, "", false, fmt.Errorf("create repayment: %w", err)
	}

	open, err := uc.installmentRepo.ListOpenByLoan(ctx, loan.ID())
	if err != nil {
		return loan, nil, "", false, fmt.Errorf("list installments: %w", err)
	}

	allocation := service.Allocate(open, tx.Amount, now)
	for _, inst := range allocation.Installments {
		if err := uc.installmentRepo.Update(ctx, inst); err != nil {
			return loan, nil, "", false, fmt.Errorf("update installment %d: %w", inst.Number, err)
		}
	}

	totalRepaid, err := uc.repaymentRepo.TotalRepaid(ctx, loan.ID())
	if err != nil {
		return loan, nil, "", false, fmt.Errorf("sum repayments: %w", err)
	}

	loan = loan.RecomputeStatus(totalRepaid, hasOverdue(open, allocation.Installments, now), now)
	if err := uc.loanRepo.Update(ctx, loan); err != nil {
		return loan, nil, "", false, fmt.Errorf("update loan: %w", err)
	}

	events := []event.DomainEvent{
		event.NewRepaymentReceived(loan.ID(), tx.Amount, tx.Currency, tx.Reference, totalRepaid),
	}

	message := fmt.Sprintf(
		"Payment of %s %s received. Thank you.",
		tx.Amount.StringFixed(2), tx.Currency,
	)
	if loan.Status().Equal(valueobject.LoanStatusPaid) {
		message = fmt.Sprintf(
			"Payment of %s %s received. Your loan is now fully repaid. Thank you!",
			tx.Amount.StringFixed(2), tx.Currency,
		)
	}
	return loan, events, message, false, nil
}

// hasOverdue reports whether any installment is still open and past due
// after the allocation, preferring the allocation's updated copies.
func hasOverdue(before, updated []model.Installment, now time.Time) bool {
	latest := make(map[string]model.Installment, len(before))
	for _, inst := range before {
		latest[inst.ID] = inst
	}
	for _, inst := range updated {
		latest[inst.ID] = inst
	}
	for _, inst := range latest {
		if inst.IsDue(now) {
			return true
		}
	}
	return false
}

func (uc *ReconcileUseCase) notify(ctx context.Context, loan model.Loan, message string) {
	if message == "" {
		return
	}
	farmer, err := uc.farmers.FindByID(ctx, loan.FarmerID())
	if err != nil {
		uc.logger.Warn("farmer lookup for sms failed", "farmer_id", loan.FarmerID(), "error", err)
		return
	}
	if err := uc.notifier.Send(ctx, farmer.PhoneNumber, message); err != nil {
		uc.logger.Warn("reconciliation sms failed", "loan_id", loan.ID(), "error", err)
	}
}
