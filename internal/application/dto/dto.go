package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// ApplyLoanRequest carries a new loan application.
type ApplyLoanRequest struct {
	FarmerID  string          `json:"farmer_id"`
	ProductID string          `json:"product_id"`
	Amount    decimal.Decimal `json:"amount"`
}

// ApproveLoanRequest approves a pending application. A zero Amount approves
// the requested amount.
type ApproveLoanRequest struct {
	LoanID string          `json:"loan_id"`
	Amount decimal.Decimal `json:"amount"`
}

// RejectLoanRequest rejects a pending application.
type RejectLoanRequest struct {
	LoanID string `json:"loan_id"`
	Reason string `json:"reason"`
}

// CollectionRequest asks the farmer's wallet for a repayment.
type CollectionRequest struct {
	LoanID string          `json:"loan_id"`
	Amount decimal.Decimal `json:"amount"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// LoanResponse is the external representation of a loan.
type LoanResponse struct {
	ID               string          `json:"id"`
	FarmerID         string          `json:"farmer_id"`
	ProductID        string          `json:"product_id"`
	AmountRequested  decimal.Decimal `json:"amount_requested"`
	AmountApproved   decimal.Decimal `json:"amount_approved"`
	Currency         string          `json:"currency"`
	Status           string          `json:"status"`
	CreditScore      int             `json:"credit_score"`
	GatewayReference string          `json:"gateway_reference,omitempty"`
	RejectionReason  string          `json:"rejection_reason,omitempty"`
	AppliedAt        time.Time       `json:"applied_at"`
	ApprovedAt       *time.Time      `json:"approved_at,omitempty"`
	DisbursedAt      *time.Time      `json:"disbursed_at,omitempty"`
	DueAt            *time.Time      `json:"due_at,omitempty"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// InstallmentResponse is one payment schedule entry.
type InstallmentResponse struct {
	ID         string          `json:"id"`
	Number     int             `json:"number"`
	DueDate    time.Time       `json:"due_date"`
	Principal  decimal.Decimal `json:"principal"`
	Interest   decimal.Decimal `json:"interest"`
	Amount     decimal.Decimal `json:"amount"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Penalty    decimal.Decimal `json:"penalty"`
	Status     string          `json:"status"`
}

// BalanceResponse is a loan's repayment position.
type BalanceResponse struct {
	LoanID         string                `json:"loan_id"`
	Status         string                `json:"status"`
	AmountApproved decimal.Decimal       `json:"amount_approved"`
	TotalRepaid    decimal.Decimal       `json:"total_repaid"`
	Outstanding    decimal.Decimal       `json:"outstanding"`
	PenaltyDue     decimal.Decimal       `json:"penalty_due"`
	Installments   []InstallmentResponse `json:"installments"`
}

// ProductResponse is the external representation of a loan product.
type ProductResponse struct {
	ID              string          `json:"id"`
	Name            string          `json:"name"`
	Currency        string          `json:"currency"`
	MinAmount       decimal.Decimal `json:"min_amount"`
	MaxAmount       decimal.Decimal `json:"max_amount"`
	InterestRate    decimal.Decimal `json:"interest_rate"`
	DurationDays    int             `json:"duration_days"`
	ScheduleType    string          `json:"schedule_type"`
	GracePeriodDays int             `json:"grace_period_days"`
}

// PaymentInitiatedResponse acknowledges an asynchronous gateway call. The
// final verdict arrives later through reconciliation.
type PaymentInitiatedResponse struct {
	LoanID    string          `json:"loan_id"`
	Reference string          `json:"reference"`
	Amount    decimal.Decimal `json:"amount"`
	Status    string          `json:"status"`
}

// ---------------------------------------------------------------------------
// Mapping helpers
// ---------------------------------------------------------------------------

// FromLoan converts the aggregate into its external representation.
func FromLoan(loan model.Loan) LoanResponse {
	return LoanResponse{
		ID:               loan.ID(),
		FarmerID:         loan.FarmerID(),
		ProductID:        loan.ProductID(),
		AmountRequested:  loan.AmountRequested(),
		AmountApproved:   loan.AmountApproved(),
		Currency:         loan.Currency(),
		Status:           loan.Status().String(),
		CreditScore:      loan.CreditScore(),
		GatewayReference: loan.GatewayReference(),
		AppliedAt:        loan.AppliedAt(),
		ApprovedAt:       loan.ApprovedAt(),
		DisbursedAt:      loan.DisbursedAt(),
		DueAt:            loan.DueAt(),
		UpdatedAt:        loan.UpdatedAt(),
	}
}

// FromInstallment converts one schedule entry.
func FromInstallment(inst model.Installment) InstallmentResponse {
	return InstallmentResponse{
		ID:         inst.ID,
		Number:     inst.Number,
		DueDate:    inst.DueDate,
		Principal:  inst.Principal,
		Interest:   inst.Interest,
		Amount:     inst.Amount,
		AmountPaid: inst.AmountPaid,
		Penalty:    inst.Penalty,
		Status:     inst.Status.String(),
	}
}

// FromProduct converts a loan product.
func FromProduct(p model.LoanProduct) ProductResponse {
	return ProductResponse{
		ID:              p.ID,
		Name:            p.Name,
		Currency:        p.Currency,
		MinAmount:       p.MinAmount,
		MaxAmount:       p.MaxAmount,
		InterestRate:    p.InterestRate,
		DurationDays:    p.DurationDays,
		ScheduleType:    p.ScheduleType.String(),
		GracePeriodDays: p.GracePeriodDays,
	}
}
