package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
	"github.com/Jonathan-321/congenial-eureka/pkg/postgres"
)

const loanColumns = `
	id, farmer_id, product_id, amount_requested, amount_approved,
	currency, status, credit_score, gateway_reference,
	applied_at, approved_at, disbursed_at, due_at, updated_at`

// LoanRepo implements port.LoanRepository on PostgreSQL.
type LoanRepo struct {
	pool *pgxpool.Pool
}

// NewLoanRepo creates a PostgreSQL-backed loan repository.
func NewLoanRepo(pool *pgxpool.Pool) *LoanRepo {
	return &LoanRepo{pool: pool}
}

func (r *LoanRepo) Create(ctx context.Context, loan model.Loan) error {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		INSERT INTO loans (` + loanColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`
	_, err := q.Exec(ctx, query,
		loan.ID(), loan.FarmerID(), loan.ProductID(),
		loan.AmountRequested(), loan.AmountApproved(),
		loan.Currency(), loan.Status().String(), loan.CreditScore(), loan.GatewayReference(),
		loan.AppliedAt(), loan.ApprovedAt(), loan.DisbursedAt(), loan.DueAt(), loan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("insert loan: %w", mapError(err))
	}
	return nil
}

func (r *LoanRepo) FindByID(ctx context.Context, id string) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	return r.scanOne(ctx, query, id)
}

// FindByIDForUpdate locks the loan row for the duration of the enclosing
// transaction. All mutations of a loan and its schedule go through this lock.
func (r *LoanRepo) FindByIDForUpdate(ctx context.Context, id string) (model.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`
	return r.scanOne(ctx, query, id)
}

func (r *LoanRepo) Update(ctx context.Context, loan model.Loan) error {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		UPDATE loans SET
			amount_approved   = $2,
			status            = $3,
			gateway_reference = $4,
			approved_at       = $5,
			disbursed_at      = $6,
			due_at            = $7,
			updated_at        = $8
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		loan.ID(), loan.AmountApproved(), loan.Status().String(), loan.GatewayReference(),
		loan.ApprovedAt(), loan.DisbursedAt(), loan.DueAt(), loan.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("update loan: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return valueobject.ErrNotFound
	}
	return nil
}

func (r *LoanRepo) HasOpenLoan(ctx context.Context, farmerID string) (bool, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		SELECT EXISTS (
			SELECT 1 FROM loans
			WHERE farmer_id = $1 AND status NOT IN ('PAID','DEFAULTED','REJECTED')
		)
	`
	var exists bool
	if err := q.QueryRow(ctx, query, farmerID).Scan(&exists); err != nil {
		return false, fmt.Errorf("check open loan: %w", mapError(err))
	}
	return exists, nil
}

func (r *LoanRepo) OutstandingExposure(ctx context.Context, farmerID string) (decimal.Decimal, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		SELECT COALESCE(SUM(amount_approved), 0)
		FROM loans
		WHERE farmer_id = $1 AND status IN ('DISBURSED','ACTIVE','OVERDUE')
	`
	var exposure decimal.Decimal
	if err := q.QueryRow(ctx, query, farmerID).Scan(&exposure); err != nil {
		return decimal.Zero, fmt.Errorf("sum exposure: %w", mapError(err))
	}
	return exposure, nil
}

func (r *LoanRepo) scanOne(ctx context.Context, query string, args ...any) (model.Loan, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	loan, err := scanLoanRow(q.QueryRow(ctx, query, args...))
	if err != nil {
		return model.Loan{}, err
	}
	return loan, nil
}

func scanLoanRow(s scannable) (model.Loan, error) {
	var (
		id, farmerID, productID          string
		amountRequested, amountApproved  decimal.Decimal
		currency, statusStr, gatewayRef  string
		creditScore                      int
		appliedAt, updatedAt             time.Time
		approvedAt, disbursedAt, dueAt   *time.Time
	)
	err := s.Scan(
		&id, &farmerID, &productID, &amountRequested, &amountApproved,
		&currency, &statusStr, &creditScore, &gatewayRef,
		&appliedAt, &approvedAt, &disbursedAt, &dueAt, &updatedAt,
	)
	if err != nil {
		return model.Loan{}, fmt.Errorf("scan loan: %w", mapError(err))
	}

	status, err := valueobject.NewLoanStatus(statusStr)
	if err != nil {
		return model.Loan{}, fmt.Errorf("parse loan status: %w", err)
	}

	return model.ReconstructLoan(
		id, farmerID, productID,
		amountRequested, amountApproved,
		currency, status, creditScore, gatewayRef,
		appliedAt, approvedAt, disbursedAt, dueAt, updatedAt,
	), nil
}
