package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
	"github.com/Jonathan-321/congenial-eureka/pkg/postgres"
)

const installmentColumns = `
	id, loan_id, number, due_date, principal, interest, amount,
	amount_paid, penalty, status, last_reminder_at, created_at, updated_at`

// InstallmentRepo implements port.InstallmentRepository on PostgreSQL.
type InstallmentRepo struct {
	pool *pgxpool.Pool
}

// NewInstallmentRepo creates a PostgreSQL-backed installment repository.
func NewInstallmentRepo(pool *pgxpool.Pool) *InstallmentRepo {
	return &InstallmentRepo{pool: pool}
}

func (r *InstallmentRepo) ExistsForLoan(ctx context.Context, loanID string) (bool, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	var exists bool
	err := q.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM payment_schedules WHERE loan_id = $1)`, loanID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check schedule exists: %w", mapError(err))
	}
	return exists, nil
}

func (r *InstallmentRepo) CreateBatch(ctx context.Context, installments []model.Installment) error {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		INSERT INTO payment_schedules (` + installmentColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`
	for _, inst := range installments {
		_, err := q.Exec(ctx, query,
			inst.ID, inst.LoanID, inst.Number, inst.DueDate,
			inst.Principal, inst.Interest, inst.Amount,
			inst.AmountPaid, inst.Penalty, inst.Status.String(),
			inst.LastReminderAt, inst.CreatedAt, inst.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert installment %d: %w", inst.Number, mapError(err))
		}
	}
	return nil
}

func (r *InstallmentRepo) ListOpenByLoan(ctx context.Context, loanID string) ([]model.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM payment_schedules
		WHERE loan_id = $1 AND status <> 'PAID'
		ORDER BY due_date, number
	`
	return r.list(ctx, query, loanID)
}

func (r *InstallmentRepo) ListByLoan(ctx context.Context, loanID string) ([]model.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM payment_schedules
		WHERE loan_id = $1
		ORDER BY number
	`
	return r.list(ctx, query, loanID)
}

func (r *InstallmentRepo) ListDue(ctx context.Context, before time.Time) ([]model.Installment, error) {
	query := `
		SELECT ` + installmentColumns + `
		FROM payment_schedules
		WHERE status IN ('PENDING','PARTIAL','OVERDUE') AND due_date < $1
		ORDER BY loan_id, number
	`
	return r.list(ctx, query, before)
}

func (r *InstallmentRepo) Update(ctx context.Context, installment model.Installment) error {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		UPDATE payment_schedules SET
			amount_paid      = $2,
			penalty          = $3,
			status           = $4,
			last_reminder_at = $5,
			updated_at       = $6
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		installment.ID, installment.AmountPaid, installment.Penalty,
		installment.Status.String(), installment.LastReminderAt, installment.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update installment: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return valueobject.ErrNotFound
	}
	return nil
}

func (r *InstallmentRepo) CountUnpaid(ctx context.Context, loanID string) (int, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	var count int
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM payment_schedules WHERE loan_id = $1 AND status <> 'PAID'`, loanID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unpaid installments: %w", mapError(err))
	}
	return count, nil
}

func (r *InstallmentRepo) list(ctx context.Context, query string, args ...any) ([]model.Installment, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query installments: %w", mapError(err))
	}
	defer rows.Close()

	var installments []model.Installment
	for rows.Next() {
		inst, err := scanInstallmentRow(rows)
		if err != nil {
			return nil, err
		}
		installments = append(installments, inst)
	}
	return installments, rows.Err()
}

func scanInstallmentRow(s scannable) (model.Installment, error) {
	var (
		inst      model.Installment
		statusStr string
	)
	err := s.Scan(
		&inst.ID, &inst.LoanID, &inst.Number, &inst.DueDate,
		&inst.Principal, &inst.Interest, &inst.Amount,
		&inst.AmountPaid, &inst.Penalty, &statusStr,
		&inst.LastReminderAt, &inst.CreatedAt, &inst.UpdatedAt,
	)
	if err != nil {
		return model.Installment{}, fmt.Errorf("scan installment: %w", mapError(err))
	}

	status, err := valueobject.NewInstallmentStatus(statusStr)
	if err != nil {
		return model.Installment{}, fmt.Errorf("parse installment status: %w", err)
	}
	inst.Status = status
	return inst, nil
}
