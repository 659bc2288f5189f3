package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/service"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// AccrueOverdueUseCase is the daily sweep over past-due installments. Each
// affected loan is processed in its own transaction under its row lock, so a
// long sweep never blocks reconciliations of unrelated loans. Penalties are
// recomputed from days overdue on every run, never accumulated.
type AccrueOverdueUseCase struct {
	atomic          port.Atomic
	loanRepo        port.LoanRepository
	installmentRepo port.InstallmentRepository
	repaymentRepo   port.RepaymentRepository
	farmers         port.FarmerDirectory
	notifier        port.Notifier
	publisher       port.EventPublisher
	reminderWindow  time.Duration
	logger          *slog.Logger
}

// NewAccrueOverdueUseCase wires dependencies. reminderWindow caps reminder
// SMS frequency per installment.
func NewAccrueOverdueUseCase(
	atomic port.Atomic,
	loanRepo port.LoanRepository,
	installmentRepo port.InstallmentRepository,
	repaymentRepo port.RepaymentRepository,
	farmers port.FarmerDirectory,
	notifier port.Notifier,
	publisher port.EventPublisher,
	reminderWindow time.Duration,
	logger *slog.Logger,
) *AccrueOverdueUseCase {
	if reminderWindow <= 0 {
		reminderWindow = 24 * time.Hour
	}
	return &AccrueOverdueUseCase{
		atomic:          atomic,
		loanRepo:        loanRepo,
		installmentRepo: installmentRepo,
		repaymentRepo:   repaymentRepo,
		farmers:         farmers,
		notifier:        notifier,
		publisher:       publisher,
		reminderWindow:  reminderWindow,
		logger:          logger,
	}
}

// Execute runs one sweep. Per-loan failures are logged and skipped so one
// bad loan cannot stall the whole portfolio.
func (uc *AccrueOverdueUseCase) Execute(ctx context.Context) error {
	now := time.Now().UTC()

	due, err := uc.installmentRepo.ListDue(ctx, now)
	if err != nil {
		return fmt.Errorf("list due installments: %w", err)
	}

	loanIDs := make([]string, 0)
	seen := make(map[string]bool)
	for _, inst := range due {
		if !seen[inst.LoanID] {
			seen[inst.LoanID] = true
			loanIDs = append(loanIDs, inst.LoanID)
		}
	}

	var processed, failed int
	for _, loanID := range loanIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := uc.accrueLoan(ctx, loanID, now); err != nil {
			failed++
			uc.logger.Error("overdue accrual failed for loan", "loan_id", loanID, "error", err)
			continue
		}
		processed++
	}

	uc.logger.Info("overdue sweep finished",
		"loans_processed", processed, "loans_failed", failed)
	return nil
}

func (uc *AccrueOverdueUseCase) accrueLoan(ctx context.Context, loanID string, now time.Time) error {
	var (
		loan      model.Loan
		reminders []model.Installment
	)
	err := uc.atomic.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		loan, err = uc.loanRepo.FindByIDForUpdate(ctx, loanID)
		if err != nil {
			return fmt.Errorf("find loan: %w", err)
		}

		// The due list was read without the lock; re-read under it.
		open, err := uc.installmentRepo.ListOpenByLoan(ctx, loanID)
		if err != nil {
			return fmt.Errorf("list installments: %w", err)
		}

		anyOverdue := false
		for _, inst := range open {
			if !inst.DueDate.Before(now) {
				continue
			}
			anyOverdue = true

			days := service.DaysOverdue(inst.DueDate, now)
			inst.Penalty = service.LatePenalty(inst.Amount, days)
			inst.Status = valueobject.InstallmentStatusOverdue
			if inst.LastReminderAt == nil || now.Sub(*inst.LastReminderAt) >= uc.reminderWindow {
				reminderAt := now
				inst.LastReminderAt = &reminderAt
				reminders = append(reminders, inst)
			}
			inst.UpdatedAt = now

			if err := uc.installmentRepo.Update(ctx, inst); err != nil {
				return fmt.Errorf("update installment %d: %w", inst.Number, err)
			}
		}
		if !anyOverdue {
			return nil
		}

		totalRepaid, err := uc.repaymentRepo.TotalRepaid(ctx, loanID)
		if err != nil {
			return fmt.Errorf("sum repayments: %w", err)
		}
		loan = loan.RecomputeStatus(totalRepaid, true, now)
		return uc.loanRepo.Update(ctx, loan)
	})
	if err != nil {
		return err
	}

	if err := uc.publisher.Publish(ctx, loan.DomainEvents()...); err != nil {
		uc.logger.Error("publish overdue events failed", "loan_id", loanID, "error", err)
	}
	uc.sendReminders(ctx, loan, reminders)
	return nil
}

func (uc *AccrueOverdueUseCase) sendReminders(ctx context.Context, loan model.Loan, reminders []model.Installment) {
	if len(reminders) == 0 {
		return
	}
	farmer, err := uc.farmers.FindByID(ctx, loan.FarmerID())
	if err != nil {
		uc.logger.Warn("farmer lookup for reminder failed", "farmer_id", loan.FarmerID(), "error", err)
		return
	}
	for _, inst := range reminders {
		message := fmt.Sprintf(
			"Reminder: payment %d of your loan (%s %s, incl. late fee %s) was due on %s. Please pay as soon as possible.",
			inst.Number, inst.Outstanding().StringFixed(2), loan.Currency(),
			inst.Penalty.StringFixed(2), inst.DueDate.Format("2 Jan 2006"),
		)
		if err := uc.notifier.Send(ctx, farmer.PhoneNumber, message); err != nil {
			uc.logger.Warn("reminder sms failed",
				"loan_id", loan.ID(), "installment", inst.Number, "error", err)
		}
	}
}
