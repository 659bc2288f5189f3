package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/pkg/postgres"
)

// RepaymentRepo implements port.RepaymentRepository on PostgreSQL.
type RepaymentRepo struct {
	pool *pgxpool.Pool
}

// NewRepaymentRepo creates a PostgreSQL-backed repayment repository.
func NewRepaymentRepo(pool *pgxpool.Pool) *RepaymentRepo {
	return &RepaymentRepo{pool: pool}
}

func (r *RepaymentRepo) ExistsByReference(ctx context.Context, reference string) (bool, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM loan_repayments WHERE reference = $1)`, reference,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check repayment exists: %w", mapError(err))
	}
	return exists, nil
}

func (r *RepaymentRepo) Create(ctx context.Context, repayment model.Repayment) error {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		INSERT INTO loan_repayments (id, loan_id, amount, reference, paid_at)
		VALUES ($1,$2,$3,$4,$5)
	`
	_, err := q.Exec(ctx, query,
		repayment.ID, repayment.LoanID, repayment.Amount, repayment.Reference, repayment.PaidAt,
	)
	if err != nil {
		return fmt.Errorf("insert repayment: %w", mapError(err))
	}
	return nil
}

func (r *RepaymentRepo) TotalRepaid(ctx context.Context, loanID string) (decimal.Decimal, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	var total decimal.Decimal
	err := q.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM loan_repayments WHERE loan_id = $1`, loanID,
	).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum repayments: %w", mapError(err))
	}
	return total, nil
}

func (r *RepaymentRepo) ListByLoan(ctx context.Context, loanID string) ([]model.Repayment, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		SELECT id, loan_id, amount, reference, paid_at
		FROM loan_repayments
		WHERE loan_id = $1
		ORDER BY paid_at
	`
	rows, err := q.Query(ctx, query, loanID)
	if err != nil {
		return nil, fmt.Errorf("query repayments: %w", mapError(err))
	}
	defer rows.Close()

	var repayments []model.Repayment
	for rows.Next() {
		var rep model.Repayment
		if err := rows.Scan(&rep.ID, &rep.LoanID, &rep.Amount, &rep.Reference, &rep.PaidAt); err != nil {
			return nil, fmt.Errorf("scan repayment: %w", mapError(err))
		}
		repayments = append(repayments, rep)
	}
	return repayments, rows.Err()
}
