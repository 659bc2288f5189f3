package event

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DomainEvent is implemented by every event raised by the loan aggregates.
type DomainEvent interface {
	EventID() string
	EventType() string
	AggregateID() string
	AggregateType() string
	OccurredAt() time.Time
}

// BaseEvent provides the default DomainEvent implementation.
type BaseEvent struct {
	ID            string    `json:"event_id"`
	Type          string    `json:"event_type"`
	Aggregate     string    `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
	At            time.Time `json:"occurred_at"`
}

// NewBaseEvent creates a BaseEvent with a generated UUID and the current time.
func NewBaseEvent(eventType, aggregateID, aggregateType string) BaseEvent {
	return BaseEvent{
		ID:            uuid.New().String(),
		Type:          eventType,
		Aggregate:     aggregateID,
		AggregateKind: aggregateType,
		At:            time.Now().UTC(),
	}
}

func (e BaseEvent) EventID() string       { return e.ID }
func (e BaseEvent) EventType() string     { return e.Type }
func (e BaseEvent) AggregateID() string   { return e.Aggregate }
func (e BaseEvent) AggregateType() string { return e.AggregateKind }
func (e BaseEvent) OccurredAt() time.Time { return e.At }

// ---------------------------------------------------------------------------
// Loan lifecycle events
// ---------------------------------------------------------------------------

// LoanApplied is raised when a new loan application enters the system.
type LoanApplied struct {
	BaseEvent
	FarmerID        string          `json:"farmer_id"`
	ProductID       string          `json:"product_id"`
	AmountRequested decimal.Decimal `json:"amount_requested"`
	Currency        string          `json:"currency"`
	CreditScore     int             `json:"credit_score"`
}

func NewLoanApplied(loanID, farmerID, productID string, amount decimal.Decimal, currency string, score int) LoanApplied {
	return LoanApplied{
		BaseEvent:       NewBaseEvent("loan.applied", loanID, "Loan"),
		FarmerID:        farmerID,
		ProductID:       productID,
		AmountRequested: amount,
		Currency:        currency,
		CreditScore:     score,
	}
}

// LoanApproved is raised when a pending application is approved.
type LoanApproved struct {
	BaseEvent
	FarmerID       string          `json:"farmer_id"`
	AmountApproved decimal.Decimal `json:"amount_approved"`
}

func NewLoanApproved(loanID, farmerID string, amount decimal.Decimal) LoanApproved {
	return LoanApproved{
		BaseEvent:      NewBaseEvent("loan.approved", loanID, "Loan"),
		FarmerID:       farmerID,
		AmountApproved: amount,
	}
}

// LoanRejected is raised when a pending application is rejected.
type LoanRejected struct {
	BaseEvent
	FarmerID string `json:"farmer_id"`
	Reason   string `json:"reason"`
}

func NewLoanRejected(loanID, farmerID, reason string) LoanRejected {
	return LoanRejected{
		BaseEvent: NewBaseEvent("loan.rejected", loanID, "Loan"),
		FarmerID:  farmerID,
		Reason:    reason,
	}
}

// LoanDisbursed is raised when the gateway confirms funds reached the farmer.
type LoanDisbursed struct {
	BaseEvent
	FarmerID         string          `json:"farmer_id"`
	AmountApproved   decimal.Decimal `json:"amount_approved"`
	Currency         string          `json:"currency"`
	GatewayReference string          `json:"gateway_reference"`
	DueDate          time.Time       `json:"due_date"`
}

func NewLoanDisbursed(loanID, farmerID string, amount decimal.Decimal, currency, reference string, dueDate time.Time) LoanDisbursed {
	return LoanDisbursed{
		BaseEvent:        NewBaseEvent("loan.disbursed", loanID, "Loan"),
		FarmerID:         farmerID,
		AmountApproved:   amount,
		Currency:         currency,
		GatewayReference: reference,
		DueDate:          dueDate,
	}
}

// RepaymentReceived is raised when a confirmed repayment is applied.
type RepaymentReceived struct {
	BaseEvent
	Amount           decimal.Decimal `json:"amount"`
	Currency         string          `json:"currency"`
	GatewayReference string          `json:"gateway_reference"`
	TotalRepaid      decimal.Decimal `json:"total_repaid"`
}

func NewRepaymentReceived(loanID string, amount decimal.Decimal, currency, reference string, totalRepaid decimal.Decimal) RepaymentReceived {
	return RepaymentReceived{
		BaseEvent:        NewBaseEvent("loan.repayment_received", loanID, "Loan"),
		Amount:           amount,
		Currency:         currency,
		GatewayReference: reference,
		TotalRepaid:      totalRepaid,
	}
}

// LoanPaidOff is raised when total repayments cover the approved amount.
type LoanPaidOff struct {
	BaseEvent
	FarmerID string `json:"farmer_id"`
}

func NewLoanPaidOff(loanID, farmerID string) LoanPaidOff {
	return LoanPaidOff{
		BaseEvent: NewBaseEvent("loan.paid_off", loanID, "Loan"),
		FarmerID:  farmerID,
	}
}

// LoanOverdue is raised the first time a recompute derives OVERDUE.
type LoanOverdue struct {
	BaseEvent
	FarmerID string `json:"farmer_id"`
}

func NewLoanOverdue(loanID, farmerID string) LoanOverdue {
	return LoanOverdue{
		BaseEvent: NewBaseEvent("loan.overdue", loanID, "Loan"),
		FarmerID:  farmerID,
	}
}

// LoanDefaulted is raised when a loan is administratively written off.
type LoanDefaulted struct {
	BaseEvent
	FarmerID string `json:"farmer_id"`
}

func NewLoanDefaulted(loanID, farmerID string) LoanDefaulted {
	return LoanDefaulted{
		BaseEvent: NewBaseEvent("loan.defaulted", loanID, "Loan"),
		FarmerID:  farmerID,
	}
}
