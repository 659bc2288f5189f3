package port

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// Atomic runs fn inside a single database transaction. Repository calls made
// with the ctx passed to fn join that transaction; the transaction is
// committed when fn returns nil and rolled back otherwise. All loan-mutating
// use cases run their work through this seam so a loan aggregate is always
// written atomically.
type Atomic interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// LoanRepository persists the Loan aggregate.
type LoanRepository interface {
	Create(ctx context.Context, loan model.Loan) error
	FindByID(ctx context.Context, id string) (model.Loan, error)
	// FindByIDForUpdate acquires the exclusive row lock that serializes all
	// mutations of one loan. Must be called inside Atomic.WithinTx.
	FindByIDForUpdate(ctx context.Context, id string) (model.Loan, error)
	Update(ctx context.Context, loan model.Loan) error
	// HasOpenLoan reports whether the farmer has a loan in a non-terminal
	// status.
	HasOpenLoan(ctx context.Context, farmerID string) (bool, error)
	// OutstandingExposure sums the approved amounts of the farmer's
	// disbursed and active loans.
	OutstandingExposure(ctx context.Context, farmerID string) (decimal.Decimal, error)
}

// ProductRepository reads loan products.
type ProductRepository interface {
	FindByID(ctx context.Context, id string) (model.LoanProduct, error)
	ListActive(ctx context.Context) ([]model.LoanProduct, error)
}

// InstallmentRepository persists payment schedule entries.
type InstallmentRepository interface {
	ExistsForLoan(ctx context.Context, loanID string) (bool, error)
	CreateBatch(ctx context.Context, installments []model.Installment) error
	// ListOpenByLoan returns the loan's PENDING, PARTIAL and OVERDUE
	// installments ordered by due date ascending.
	ListOpenByLoan(ctx context.Context, loanID string) ([]model.Installment, error)
	ListByLoan(ctx context.Context, loanID string) ([]model.Installment, error)
	// ListDue returns PENDING, PARTIAL and OVERDUE installments whose due
	// date is before the cutoff, across all loans. OVERDUE entries are
	// included so each sweep recomputes their penalty.
	ListDue(ctx context.Context, before time.Time) ([]model.Installment, error)
	Update(ctx context.Context, installment model.Installment) error
	// CountUnpaid counts installments not yet fully paid for a loan.
	CountUnpaid(ctx context.Context, loanID string) (int, error)
}

// TransactionRepository persists gateway money-movement records.
type TransactionRepository interface {
	Create(ctx context.Context, tx model.Transaction) error
	FindByReference(ctx context.Context, reference string) (model.Transaction, error)
	// FindByReferenceForUpdate locks the transaction row; reconciliation
	// uses it to serialize duplicate deliveries for the same reference.
	FindByReferenceForUpdate(ctx context.Context, reference string) (model.Transaction, error)
	UpdateStatus(ctx context.Context, id string, status valueobject.TransactionStatus, financialID string) error
}

// RepaymentRepository persists confirmed repayments.
type RepaymentRepository interface {
	ExistsByReference(ctx context.Context, reference string) (bool, error)
	Create(ctx context.Context, repayment model.Repayment) error
	TotalRepaid(ctx context.Context, loanID string) (decimal.Decimal, error)
	ListByLoan(ctx context.Context, loanID string) ([]model.Repayment, error)
}
