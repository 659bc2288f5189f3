package valueobject

import "fmt"

// ---------------------------------------------------------------------------
// TransactionType – immutable value object
// ---------------------------------------------------------------------------

// TransactionType distinguishes money moving out (disbursement) from money
// moving in (repayment collection).
type TransactionType struct {
	value string
}

const (
	transactionTypeDisbursement = "DISBURSEMENT"
	transactionTypeRepayment    = "REPAYMENT"
)

var (
	TransactionTypeDisbursement = TransactionType{value: transactionTypeDisbursement}
	TransactionTypeRepayment    = TransactionType{value: transactionTypeRepayment}
)

var validTransactionTypes = map[string]TransactionType{
	transactionTypeDisbursement: TransactionTypeDisbursement,
	transactionTypeRepayment:    TransactionTypeRepayment,
}

// NewTransactionType creates a TransactionType from a raw string.
func NewTransactionType(s string) (TransactionType, error) {
	v, ok := validTransactionTypes[s]
	if !ok {
		return TransactionType{}, fmt.Errorf("invalid transaction type: %q", s)
	}
	return v, nil
}

// String returns the string representation of the type.
func (t TransactionType) String() string { return t.value }

// IsZero returns true when not initialised.
func (t TransactionType) IsZero() bool { return t.value == "" }

// Equal returns true when both types match.
func (t TransactionType) Equal(other TransactionType) bool { return t.value == other.value }

// ---------------------------------------------------------------------------
// TransactionStatus – immutable value object
// ---------------------------------------------------------------------------

// TransactionStatus is the local view of an external money movement's state.
type TransactionStatus struct {
	value string
}

const (
	transactionStatusPending    = "PENDING"
	transactionStatusSuccessful = "SUCCESSFUL"
	transactionStatusFailed     = "FAILED"
)

var (
	TransactionStatusPending    = TransactionStatus{value: transactionStatusPending}
	TransactionStatusSuccessful = TransactionStatus{value: transactionStatusSuccessful}
	TransactionStatusFailed     = TransactionStatus{value: transactionStatusFailed}
)

var validTransactionStatuses = map[string]TransactionStatus{
	transactionStatusPending:    TransactionStatusPending,
	transactionStatusSuccessful: TransactionStatusSuccessful,
	transactionStatusFailed:     TransactionStatusFailed,
}

// NewTransactionStatus creates a TransactionStatus from a raw string.
func NewTransactionStatus(s string) (TransactionStatus, error) {
	v, ok := validTransactionStatuses[s]
	if !ok {
		return TransactionStatus{}, fmt.Errorf("invalid transaction status: %q", s)
	}
	return v, nil
}

// String returns the string representation of the status.
func (s TransactionStatus) String() string { return s.value }

// IsZero returns true when not initialised.
func (s TransactionStatus) IsZero() bool { return s.value == "" }

// Equal returns true when both statuses match.
func (s TransactionStatus) Equal(other TransactionStatus) bool { return s.value == other.value }

// IsTerminal reports whether the transaction has reached a final state.
// Reconciliation of a terminal transaction is a no-op.
func (s TransactionStatus) IsTerminal() bool {
	return s.value == transactionStatusSuccessful || s.value == transactionStatusFailed
}
