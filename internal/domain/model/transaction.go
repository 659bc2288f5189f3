package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// Transaction records a single attempt to move money through the external
// gateway. One row is created per gateway call; the reference doubles as the
// gateway's externalId and is the idempotency key for reconciliation.
type Transaction struct {
	ID          string
	LoanID      string
	Type        valueobject.TransactionType
	Amount      decimal.Decimal
	Currency    string
	Reference   string
	PhoneNumber string
	Status      valueobject.TransactionStatus
	FinancialID string // gateway-side transaction id, when reported
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewTransaction creates a PENDING transaction with a fresh UUID reference.
func NewTransaction(loanID string, txType valueobject.TransactionType, amount decimal.Decimal, currency, phoneNumber string, now time.Time) Transaction {
	return Transaction{
		ID:          uuid.New().String(),
		LoanID:      loanID,
		Type:        txType,
		Amount:      amount,
		Currency:    currency,
		Reference:   uuid.New().String(),
		PhoneNumber: phoneNumber,
		Status:      valueobject.TransactionStatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Repayment records a confirmed repayment applied to a loan. Exactly one
// repayment exists per SUCCESSFUL repayment transaction; the reference
// carries the guarantee.
type Repayment struct {
	ID        string
	LoanID    string
	Amount    decimal.Decimal
	Reference string
	PaidAt    time.Time
}

// NewRepayment creates a repayment row for a reconciled transaction.
func NewRepayment(loanID string, amount decimal.Decimal, reference string, paidAt time.Time) Repayment {
	return Repayment{
		ID:        uuid.New().String(),
		LoanID:    loanID,
		Amount:    amount,
		Reference: reference,
		PaidAt:    paidAt,
	}
}
