package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// LoanStatus – immutable value object
// ---------------------------------------------------------------------------

// LoanStatus represents the lifecycle stage of a loan.
type LoanStatus struct {
	value string
}

const (
	loanStatusPending   = "PENDING"
	loanStatusApproved  = "APPROVED"
	loanStatusDisbursed = "DISBURSED"
	loanStatusActive    = "ACTIVE"
	loanStatusOverdue   = "OVERDUE"
	loanStatusPaid      = "PAID"
	loanStatusDefaulted = "DEFAULTED"
	loanStatusRejected  = "REJECTED"
)

var (
	LoanStatusPending   = LoanStatus{value: loanStatusPending}
	LoanStatusApproved  = LoanStatus{value: loanStatusApproved}
	LoanStatusDisbursed = LoanStatus{value: loanStatusDisbursed}
	LoanStatusActive    = LoanStatus{value: loanStatusActive}
	LoanStatusOverdue   = LoanStatus{value: loanStatusOverdue}
	LoanStatusPaid      = LoanStatus{value: loanStatusPaid}
	LoanStatusDefaulted = LoanStatus{value: loanStatusDefaulted}
	LoanStatusRejected  = LoanStatus{value: loanStatusRejected}
)

var validLoanStatuses = map[string]LoanStatus{
	loanStatusPending:   LoanStatusPending,
	loanStatusApproved:  LoanStatusApproved,
	loanStatusDisbursed: LoanStatusDisbursed,
	loanStatusActive:    LoanStatusActive,
	loanStatusOverdue:   LoanStatusOverdue,
	loanStatusPaid:      LoanStatusPaid,
	loanStatusDefaulted: LoanStatusDefaulted,
	loanStatusRejected:  LoanStatusRejected,
}

// NewLoanStatus creates a LoanStatus from a raw string.
func NewLoanStatus(s string) (LoanStatus, error) {
	v, ok := validLoanStatuses[s]
	if !ok {
		return LoanStatus{}, fmt.Errorf("invalid loan status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s LoanStatus) String() string { return s.value }

// IsZero returns true if the status has not been initialised.
func (s LoanStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses carry the same value.
func (s LoanStatus) Equal(other LoanStatus) bool { return s.value == other.value }

// IsTerminal reports whether the loan can no longer change state.
func (s LoanStatus) IsTerminal() bool {
	return s.value == loanStatusPaid || s.value == loanStatusDefaulted || s.value == loanStatusRejected
}

// IsRepayable reports whether repayments may be collected against the loan.
func (s LoanStatus) IsRepayable() bool {
	return s.value == loanStatusDisbursed || s.value == loanStatusActive || s.value == loanStatusOverdue
}
