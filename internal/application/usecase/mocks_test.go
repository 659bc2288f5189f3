package usecase_test

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/event"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
)

// mockAtomic runs the callback in the caller's context; there is no real
// transaction in unit tests.
type mockAtomic struct {
	withinTxFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockAtomic) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withinTxFunc != nil {
		return m.withinTxFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockLoanRepository struct {
	createFunc            func(ctx context.Context, loan model.Loan) error
	findByIDFunc          func(ctx context.Context, id string) (model.Loan, error)
	findByIDForUpdateFunc func(ctx context.Context, id string) (model.Loan, error)
	updateFunc            func(ctx context.Context, loan model.Loan) error
	hasOpenLoanFunc       func(ctx context.Context, farmerID string) (bool, error)
	exposureFunc          func(ctx context.Context, farmerID string) (decimal.Decimal, error)

	createdLoans []model.Loan
	updatedLoans []model.Loan
}

func (m *mockLoanRepository) Create(ctx context.Context, loan model.Loan) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, loan)
	}
	m.createdLoans = append(m.createdLoans, loan)
	return nil
}

func (m *mockLoanRepository) FindByID(ctx context.Context, id string) (model.Loan, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.Loan{}, valueobject.ErrNotFound
}

func (m *mockLoanRepository) FindByIDForUpdate(ctx context.Context, id string) (model.Loan, error) {
	if m.findByIDForUpdateFunc != nil {
		return m.findByIDForUpdateFunc(ctx, id)
	}
	return model.Loan{}, valueobject.ErrNotFound
}

func (m *mockLoanRepository) Update(ctx context.Context, loan model.Loan) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, loan)
	}
	m.updatedLoans = append(m.updatedLoans, loan)
	return nil
}

func (m *mockLoanRepository) HasOpenLoan(ctx context.Context, farmerID string) (bool, error) {
	if m.hasOpenLoanFunc != nil {
		return m.hasOpenLoanFunc(ctx, farmerID)
	}
	return false, nil
}

func (m *mockLoanRepository) OutstandingExposure(ctx context.Context, farmerID string) (decimal.Decimal, error) {
	if m.exposureFunc != nil {
		return m.exposureFunc(ctx, farmerID)
	}
	return decimal.Zero, nil
}

type mockProductRepository struct {
	findByIDFunc   func(ctx context.Context, id string) (model.LoanProduct, error)
	listActiveFunc func(ctx context.Context) ([]model.LoanProduct, error)
}

func (m *mockProductRepository) FindByID(ctx context.Context, id string) (model.LoanProduct, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return model.LoanProduct{}, valueobject.ErrNotFound
}

func (m *mockProductRepository) ListActive(ctx context.Context) ([]model.LoanProduct, error) {
	if m.listActiveFunc != nil {
		return m.listActiveFunc(ctx)
	}
	return nil, nil
}

type mockInstallmentRepository struct {
	existsForLoanFunc  func(ctx context.Context, loanID string) (bool, error)
	createBatchFunc    func(ctx context.Context, installments []model.Installment) error
	listOpenByLoanFunc func(ctx context.Context, loanID string) ([]model.Installment, error)
	listByLoanFunc     func(ctx context.Context, loanID string) ([]model.Installment, error)
	listDueFunc        func(ctx context.Context, before time.Time) ([]model.Installment, error)
	updateFunc         func(ctx context.Context, installment model.Installment) error
	countUnpaidFunc    func(ctx context.Context, loanID string) (int, error)

	createdBatches      [][]model.Installment
	updatedInstallments []model.Installment
}

func (m *mockInstallmentRepository) ExistsForLoan(ctx context.Context, loanID string) (bool, error) {
	if m.existsForLoanFunc != nil {
		return m.existsForLoanFunc(ctx, loanID)
	}
	return false, nil
}

func (m *mockInstallmentRepository) CreateBatch(ctx context.Context, installments []model.Installment) error {
	if m.createBatchFunc != nil {
		return m.createBatchFunc(ctx, installments)
	}
	m.createdBatches = append(m.createdBatches, installments)
	return nil
}

func (m *mockInstallmentRepository) ListOpenByLoan(ctx context.Context, loanID string) ([]model.Installment, error) {
	if m.listOpenByLoanFunc != nil {
		return m.listOpenByLoanFunc(ctx, loanID)
	}
	return nil, nil
}

func (m *mockInstallmentRepository) ListByLoan(ctx context.Context, loanID string) ([]model.Installment, error) {
	if m.listByLoanFunc != nil {
		return m.listByLoanFunc(ctx, loanID)
	}
	return nil, nil
}

func (m *mockInstallmentRepository) ListDue(ctx context.Context, before time.Time) ([]model.Installment, error) {
	if m.listDueFunc != nil {
		return m.listDueFunc(ctx, before)
	}
	return nil, nil
}

func (m *mockInstallmentRepository) Update(ctx context.Context, installment model.Installment) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, installment)
	}
	m.updatedInstallments = append(m.updatedInstallments, installment)
	return nil
}

func (m *mockInstallmentRepository) CountUnpaid(ctx context.Context, loanID string) (int, error) {
	if m.countUnpaidFunc != nil {
		return m.countUnpaidFunc(ctx, loanID)
	}
	return 0, nil
}

type statusUpdate struct {
	ID          string
	Status      valueobject.TransactionStatus
	FinancialID string
}

type mockTransactionRepository struct {
	createFunc                   func(ctx context.Context, tx model.Transaction) error
	findByReferenceFunc          func(ctx context.Context, reference string) (model.Transaction, error)
	findByReferenceForUpdateFunc func(ctx context.Context, reference string) (model.Transaction, error)
	updateStatusFunc             func(ctx context.Context, id string, status valueobject.TransactionStatus, financialID string) error

	createdTransactions []model.Transaction
	statusUpdates       []statusUpdate
}

func (m *mockTransactionRepository) Create(ctx context.Context, tx model.Transaction) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, tx)
	}
	m.createdTransactions = append(m.createdTransactions, tx)
	return nil
}

func (m *mockTransactionRepository) FindByReference(ctx context.Context, reference string) (model.Transaction, error) {
	if m.findByReferenceFunc != nil {
		return m.findByReferenceFunc(ctx, reference)
	}
	return model.Transaction{}, valueobject.ErrNotFound
}

func (m *mockTransactionRepository) FindByReferenceForUpdate(ctx context.Context, reference string) (model.Transaction, error) {
	if m.findByReferenceForUpdateFunc != nil {
		return m.findByReferenceForUpdateFunc(ctx, reference)
	}
	return model.Transaction{}, valueobject.ErrNotFound
}

func (m *mockTransactionRepository) UpdateStatus(ctx context.Context, id string, status valueobject.TransactionStatus, financialID string) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, financialID)
	}
	m.statusUpdates = append(m.statusUpdates, statusUpdate{ID: id, Status: status, FinancialID: financialID})
	return nil
}

type mockRepaymentRepository struct {
	existsByReferenceFunc func(ctx context.Context, reference string) (bool, error)
	createFunc            func(ctx context.Context, repayment model.Repayment) error
	totalRepaidFunc       func(ctx context.Context, loanID string) (decimal.Decimal, error)
	listByLoanFunc        func(ctx context.Context, loanID string) ([]model.Repayment, error)

	createdRepayments []model.Repayment
}

func (m *mockRepaymentRepository) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	if m.existsByReferenceFunc != nil {
		return m.existsByReferenceFunc(ctx, reference)
	}
	return false, nil
}

func (m *mockRepaymentRepository) Create(ctx context.Context, repayment model.Repayment) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, repayment)
	}
	m.createdRepayments = append(m.createdRepayments, repayment)
	return nil
}

func (m *mockRepaymentRepository) TotalRepaid(ctx context.Context, loanID string) (decimal.Decimal, error) {
	if m.totalRepaidFunc != nil {
		return m.totalRepaidFunc(ctx, loanID)
	}
	total := decimal.Zero
	for _, r := range m.createdRepayments {
		total = total.Add(r.Amount)
	}
	return total, nil
}

func (m *mockRepaymentRepository) ListByLoan(ctx context.Context, loanID string) ([]model.Repayment, error) {
	if m.listByLoanFunc != nil {
		return m.listByLoanFunc(ctx, loanID)
	}
	return nil, nil
}

type mockHarvestCalendar struct {
	upcomingHarvestsFunc func(ctx context.Context, farmerID string) ([]time.Time, error)
}

func (m *mockHarvestCalendar) UpcomingHarvests(ctx context.Context, farmerID string) ([]time.Time, error) {
	if m.upcomingHarvestsFunc != nil {
		return m.upcomingHarvestsFunc(ctx, farmerID)
	}
	return nil, nil
}

type mockFarmerDirectory struct {
	findByIDFunc func(ctx context.Context, id string) (port.Farmer, error)
}

func (m *mockFarmerDirectory) FindByID(ctx context.Context, id string) (port.Farmer, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return port.Farmer{ID: id, Name: "Test Farmer", PhoneNumber: "+250788123456"}, nil
}

type mockCreditScorer struct {
	scoreFunc func(ctx context.Context, farmerID string) (int, error)
}

func (m *mockCreditScorer) Score(ctx context.Context, farmerID string) (int, error) {
	if m.scoreFunc != nil {
		return m.scoreFunc(ctx, farmerID)
	}
	return 70, nil
}

type sentSMS struct {
	PhoneNumber string
	Message     string
}

type mockNotifier struct {
	sendFunc func(ctx context.Context, phoneNumber, message string) error
	sent     []sentSMS
}

func (m *mockNotifier) Send(ctx context.Context, phoneNumber, message string) error {
	if m.sendFunc != nil {
		return m.sendFunc(ctx, phoneNumber, message)
	}
	m.sent = append(m.sent, sentSMS{PhoneNumber: phoneNumber, Message: message})
	return nil
}

type mockEventPublisher struct {
	publishFunc     func(ctx context.Context, events ...event.DomainEvent) error
	publishedEvents []event.DomainEvent
}

func (m *mockEventPublisher) Publish(ctx context.Context, events ...event.DomainEvent) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, events...)
	}
	m.publishedEvents = append(m.publishedEvents, events...)
	return nil
}

type mockMoneyGateway struct {
	transferFunc           func(ctx context.Context, req port.PaymentRequest) error
	requestToPayFunc       func(ctx context.Context, req port.PaymentRequest) error
	transferStatusFunc     func(ctx context.Context, reference string) (port.GatewayStatus, error)
	requestToPayStatusFunc func(ctx context.Context, reference string) (port.GatewayStatus, error)

	transfers     []port.PaymentRequest
	requestToPays []port.PaymentRequest
}

func (m *mockMoneyGateway) Transfer(ctx context.Context, req port.PaymentRequest) error {
	if m.transferFunc != nil {
		return m.transferFunc(ctx, req)
	}
	m.transfers = append(m.transfers, req)
	return nil
}

func (m *mockMoneyGateway) RequestToPay(ctx context.Context, req port.PaymentRequest) error {
	if m.requestToPayFunc != nil {
		return m.requestToPayFunc(ctx, req)
	}
	m.requestToPays = append(m.requestToPays, req)
	return nil
}

func (m *mockMoneyGateway) TransferStatus(ctx context.Context, reference string) (port.GatewayStatus, error) {
	if m.transferStatusFunc != nil {
		return m.transferStatusFunc(ctx, reference)
	}
	return port.GatewayStatus{}, fmt.Errorf("no status for %s", reference)
}

func (m *mockMoneyGateway) RequestToPayStatus(ctx context.Context, reference string) (port.GatewayStatus, error) {
	if m.requestToPayStatusFunc != nil {
		return m.requestToPayStatusFunc(ctx, reference)
	}
	return port.GatewayStatus{}, fmt.Errorf("no status for %s", reference)
}

type watchedRef struct {
	Reference string
	Type      valueobject.TransactionType
}

type mockStatusWatcher struct {
	watched []watchedRef
}

func (m *mockStatusWatcher) Watch(reference string, txType valueobject.TransactionType) {
	m.watched = append(m.watched, watchedRef{Reference: reference, Type: txType})
}
