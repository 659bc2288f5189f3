package usecase

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/application/dto"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
)

// LoanQueries serves the read-only loan endpoints. Reads run outside any
// transaction; slightly stale data is acceptable for display.
type LoanQueries struct {
	loanRepo        port.LoanRepository
	productRepo     port.ProductRepository
	installmentRepo port.InstallmentRepository
	repaymentRepo   port.RepaymentRepository
}

// NewLoanQueries wires dependencies.
func NewLoanQueries(
	loanRepo port.LoanRepository,
	productRepo port.ProductRepository,
	installmentRepo port.InstallmentRepository,
	repaymentRepo port.RepaymentRepository,
) *LoanQueries {
	return &LoanQueries{
		loanRepo:        loanRepo,
		productRepo:     productRepo,
		installmentRepo: installmentRepo,
		repaymentRepo:   repaymentRepo,
	}
}

// GetLoan returns a loan by ID.
func (q *LoanQueries) GetLoan(ctx context.Context, loanID string) (dto.LoanResponse, error) {
	loan, err := q.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return dto.LoanResponse{}, err
	}
	return dto.FromLoan(loan), nil
}

// GetLoanBalance returns the loan's repayment position including the full
// installment book.
func (q *LoanQueries) GetLoanBalance(ctx context.Context, loanID string) (dto.BalanceResponse, error) {
	loan, err := q.loanRepo.FindByID(ctx, loanID)
	if err != nil {
		return dto.BalanceResponse{}, err
	}

	totalRepaid, err := q.repaymentRepo.TotalRepaid(ctx, loanID)
	if err != nil {
		return dto.BalanceResponse{}, fmt.Errorf("sum repayments: %w", err)
	}

	installments, err := q.installmentRepo.ListByLoan(ctx, loanID)
	if err != nil {
		return dto.BalanceResponse{}, fmt.Errorf("list installments: %w", err)
	}

	penaltyDue := decimal.Zero
	outstanding := decimal.Zero
	responses := make([]dto.InstallmentResponse, 0, len(installments))
	for _, inst := range installments {
		if inst.Status.IsOpen() {
			outstanding = outstanding.Add(inst.Outstanding())
			penaltyDue = penaltyDue.Add(inst.Penalty)
		}
		responses = append(responses, dto.FromInstallment(inst))
	}

	return dto.BalanceResponse{
		LoanID:         loan.ID(),
		Status:         loan.Status().String(),
		AmountApproved: loan.AmountApproved(),
		TotalRepaid:    totalRepaid,
		Outstanding:    outstanding,
		PenaltyDue:     penaltyDue,
		Installments:   responses,
	}, nil
}

// ListProducts returns the active loan products.
func (q *LoanQueries) ListProducts(ctx context.Context) ([]dto.ProductResponse, error) {
	products, err := q.productRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.ProductResponse, 0, len(products))
	for _, p := range products {
		responses = append(responses, dto.FromProduct(p))
	}
	return responses, nil
}
