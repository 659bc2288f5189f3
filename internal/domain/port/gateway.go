package port

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// PaymentRequest is one outbound transfer or collection call. Reference is
// the caller-generated UUID sent to the gateway as externalId; the gateway
// echoes it back in webhooks and status checks.
type PaymentRequest struct {
	Reference   string
	Amount      decimal.Decimal
	Currency    string
	PhoneNumber string // E.164 without the leading '+'
	Message     string
	Note        string
}

// GatewayStatus is the gateway's authoritative view of a transaction.
type GatewayStatus struct {
	Status      valueobject.TransactionStatus
	Pending     bool // the gateway has not decided yet
	FinancialID string
	Reason      string
}

// MoneyGateway issues disbursement and collection requests to the external
// mobile-money network. Implementations must honour the context deadline;
// a failed or rejected call returns a *valueobject.GatewayError.
type MoneyGateway interface {
	// Transfer pushes funds to the payee (loan disbursement).
	Transfer(ctx context.Context, req PaymentRequest) error
	// RequestToPay asks the payer to release funds (repayment collection).
	RequestToPay(ctx context.Context, req PaymentRequest) error
	// TransferStatus checks a disbursement by reference.
	TransferStatus(ctx context.Context, reference string) (GatewayStatus, error)
	// RequestToPayStatus checks a collection by reference.
	RequestToPayStatus(ctx context.Context, reference string) (GatewayStatus, error)
}

// StatusWatcher begins polling the gateway for a transaction's terminal
// status. Watching is fire-and-forget: results flow through the
// reconciliation coordinator, never back to the caller.
type StatusWatcher interface {
	Watch(reference string, txType valueobject.TransactionType)
}
