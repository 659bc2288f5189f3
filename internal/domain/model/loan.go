package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/event"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// ---------------------------------------------------------------------------
// Loan aggregate root
// ---------------------------------------------------------------------------

// Loan is an immutable aggregate. Mutations return a new copy. All writes to
// a loan and its installments are serialized under the loan's row lock, so
// the aggregate itself never needs internal synchronisation.
type Loan struct {
	id               string
	farmerID         string
	productID        string
	amountRequested  decimal.Decimal
	amountApproved   decimal.Decimal // zero until approved
	currency         string
	status           valueobject.LoanStatus
	creditScore      int
	gatewayReference string
	appliedAt        time.Time
	approvedAt       *time.Time
	disbursedAt      *time.Time
	dueAt            *time.Time
	updatedAt        time.Time
	domainEvents     []event.DomainEvent
}

// NewLoan creates a loan application in PENDING status.
func NewLoan(farmerID, productID string, amountRequested decimal.Decimal, currency string, creditScore int, now time.Time) (Loan, error) {
	if farmerID == "" {
		return Loan{}, errors.New("farmer ID is required")
	}
	if productID == "" {
		return Loan{}, errors.New("product ID is required")
	}
	if amountRequested.LessThanOrEqual(decimal.Zero) {
		return Loan{}, errors.New("requested amount must be positive")
	}
	if currency == "" {
		return Loan{}, errors.New("currency is required")
	}

	id := uuid.New().String()
	loan := Loan{
		id:              id,
		farmerID:        farmerID,
		productID:       productID,
		amountRequested: amountRequested,
		currency:        currency,
		status:          valueobject.LoanStatusPending,
		creditScore:     creditScore,
		appliedAt:       now,
		updatedAt:       now,
	}
	loan.domainEvents = append(loan.domainEvents, event.NewLoanApplied(
		id, farmerID, productID, amountRequested, currency, creditScore,
	))
	return loan, nil
}

// ReconstructLoan rebuilds a Loan aggregate from persistence.
func ReconstructLoan(
	id, farmerID, productID string,
	amountRequested, amountApproved decimal.Decimal,
	currency string,
	status valueobject.LoanStatus,
	creditScore int,
	gatewayReference string,
	appliedAt time.Time,
	approvedAt, disbursedAt, dueAt *time.Time,
	updatedAt time.Time,
) Loan {
	return Loan{
		id:               id,
		farmerID:         farmerID,
		productID:        productID,
		amountRequested:  amountRequested,
		amountApproved:   amountApproved,
		currency:         currency,
		status:           status,
		creditScore:      creditScore,
		gatewayReference: gatewayReference,
		appliedAt:        appliedAt,
		approvedAt:       approvedAt,
		disbursedAt:      disbursedAt,
		dueAt:            dueAt,
		updatedAt:        updatedAt,
	}
}

// ---------------------------------------------------------------------------
// State transitions
// ---------------------------------------------------------------------------

// Approve transitions PENDING -> APPROVED and fixes the approved amount.
// A zero approvedAmount approves the requested amount.
func (l Loan) Approve(approvedAmount decimal.Decimal, now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusPending) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	amount := approvedAmount
	if amount.IsZero() {
		amount = l.amountRequested
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return l, errors.New("approved amount must be positive")
	}

	next := l
	next.status = valueobject.LoanStatusApproved
	next.amountApproved = amount
	next.approvedAt = &now
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanApproved(l.id, l.farmerID, amount))
	return next, nil
}

// Reject transitions PENDING -> REJECTED.
func (l Loan) Reject(reason string, now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusPending) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l
	next.status = valueobject.LoanStatusRejected
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanRejected(l.id, l.farmerID, reason))
	return next, nil
}

// AttachGatewayReference records the external reference of the in-flight
// disbursement. Only valid while the loan awaits gateway confirmation.
func (l Loan) AttachGatewayReference(reference string, now time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusApproved) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l
	next.gatewayReference = reference
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	return next, nil
}

// MarkDisbursed transitions APPROVED -> DISBURSED once the gateway confirms
// a successful transfer, setting the disbursement and due dates.
func (l Loan) MarkDisbursed(now, dueDate time.Time) (Loan, error) {
	if !l.status.Equal(valueobject.LoanStatusApproved) {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l
	next.status = valueobject.LoanStatusDisbursed
	next.disbursedAt = &now
	next.dueAt = &dueDate
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanDisbursed(
		l.id, l.farmerID, l.amountApproved, l.currency, l.gatewayReference, dueDate,
	))
	return next, nil
}

// RecomputeStatus derives ACTIVE vs OVERDUE vs PAID from the repaid total and
// the installment book. It is idempotent: calling it any number of times with
// the same inputs yields the same status and raises no duplicate events.
// Loans outside the repayable stages are returned unchanged.
func (l Loan) RecomputeStatus(totalRepaid decimal.Decimal, hasOverdueInstallments bool, now time.Time) Loan {
	if !l.status.IsRepayable() {
		return l
	}

	var target valueobject.LoanStatus
	switch {
	case !l.amountApproved.IsZero() && totalRepaid.GreaterThanOrEqual(l.amountApproved):
		target = valueobject.LoanStatusPaid
	case hasOverdueInstallments:
		target = valueobject.LoanStatusOverdue
	default:
		target = valueobject.LoanStatusActive
	}

	if l.status.Equal(target) {
		return l
	}

	next := l
	next.status = target
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	switch target {
	case valueobject.LoanStatusPaid:
		next.domainEvents = append(next.domainEvents, event.NewLoanPaidOff(l.id, l.farmerID))
	case valueobject.LoanStatusOverdue:
		next.domainEvents = append(next.domainEvents, event.NewLoanOverdue(l.id, l.farmerID))
	}
	return next
}

// Complete settles a repayable loan whose installment book is fully paid,
// transitioning it to PAID. Completing an already paid loan is a no-op.
// Callers verify the installment book before invoking this.
func (l Loan) Complete(now time.Time) (Loan, error) {
	if l.status.Equal(valueobject.LoanStatusPaid) {
		return l, nil
	}
	if !l.status.IsRepayable() {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l
	next.status = valueobject.LoanStatusPaid
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanPaidOff(l.id, l.farmerID))
	return next, nil
}

// MarkDefaulted transitions any non-terminal status -> DEFAULTED. This is an
// explicit administrative action.
func (l Loan) MarkDefaulted(now time.Time) (Loan, error) {
	if l.status.IsTerminal() {
		return l, valueobject.ErrInvalidStatusTransition
	}
	next := l
	next.status = valueobject.LoanStatusDefaulted
	next.updatedAt = now
	next.domainEvents = copyEvents(l.domainEvents)
	next.domainEvents = append(next.domainEvents, event.NewLoanDefaulted(l.id, l.farmerID))
	return next, nil
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

func (l Loan) ID() string                       { return l.id }
func (l Loan) FarmerID() string                 { return l.farmerID }
func (l Loan) ProductID() string                { return l.productID }
func (l Loan) AmountRequested() decimal.Decimal { return l.amountRequested }
func (l Loan) AmountApproved() decimal.Decimal  { return l.amountApproved }
func (l Loan) Currency() string                 { return l.currency }
func (l Loan) Status() valueobject.LoanStatus   { return l.status }
func (l Loan) CreditScore() int                 { return l.creditScore }
func (l Loan) GatewayReference() string         { return l.gatewayReference }
func (l Loan) AppliedAt() time.Time             { return l.appliedAt }
func (l Loan) ApprovedAt() *time.Time           { return l.approvedAt }
func (l Loan) DisbursedAt() *time.Time          { return l.disbursedAt }
func (l Loan) DueAt() *time.Time                { return l.dueAt }
func (l Loan) UpdatedAt() time.Time             { return l.updatedAt }
func (l Loan) DomainEvents() []event.DomainEvent {
	return l.domainEvents
}

// ClearEvents returns a copy with an empty event list.
func (l Loan) ClearEvents() Loan {
	next := l
	next.domainEvents = nil
	return next
}

func copyEvents(events []event.DomainEvent) []event.DomainEvent {
	if events == nil {
		return nil
	}
	out := make([]event.DomainEvent, len(events))
	copy(out, events)
	return out
}
