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

const transactionColumns = `
	id, loan_id, type, amount, currency, reference,
	phone_number, status, financial_id, created_at, updated_at`

// TransactionRepo implements port.TransactionRepository on PostgreSQL.
type TransactionRepo struct {
	pool *pgxpool.Pool
}

// NewTransactionRepo creates a PostgreSQL-backed transaction repository.
func NewTransactionRepo(pool *pgxpool.Pool) *TransactionRepo {
	return &TransactionRepo{pool: pool}
}

func (r *TransactionRepo) Create(ctx context.Context, tx model.Transaction) error {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`
	_, err := q.Exec(ctx, query,
		tx.ID, tx.LoanID, tx.Type.String(), tx.Amount, tx.Currency, tx.Reference,
		tx.PhoneNumber, tx.Status.String(), tx.FinancialID, tx.CreatedAt, tx.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert transaction: %w", mapError(err))
	}
	return nil
}

func (r *TransactionRepo) FindByReference(ctx context.Context, reference string) (model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1`
	return r.scanOne(ctx, query, reference)
}

// FindByReferenceForUpdate locks the transaction row so that duplicate
// gateway notifications for the same reference are processed one at a time.
func (r *TransactionRepo) FindByReferenceForUpdate(ctx context.Context, reference string) (model.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE reference = $1 FOR UPDATE`
	return r.scanOne(ctx, query, reference)
}

func (r *TransactionRepo) UpdateStatus(ctx context.Context, id string, status valueobject.TransactionStatus, financialID string) error {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `
		UPDATE transactions SET
			status       = $2,
			financial_id = CASE WHEN $3 <> '' THEN $3 ELSE financial_id END,
			updated_at   = $4
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, id, status.String(), financialID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("update transaction status: %w", mapError(err))
	}
	if tag.RowsAffected() == 0 {
		return valueobject.ErrNotFound
	}
	return nil
}

func (r *TransactionRepo) scanOne(ctx context.Context, query string, args ...any) (model.Transaction, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	var (
		tx                 model.Transaction
		typeStr, statusStr string
	)
	err := q.QueryRow(ctx, query, args...).Scan(
		&tx.ID, &tx.LoanID, &typeStr, &tx.Amount, &tx.Currency, &tx.Reference,
		&tx.PhoneNumber, &statusStr, &tx.FinancialID, &tx.CreatedAt, &tx.UpdatedAt,
	)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("scan transaction: %w", mapError(err))
	}

	txType, err := valueobject.NewTransactionType(typeStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parse transaction type: %w", err)
	}
	status, err := valueobject.NewTransactionStatus(statusStr)
	if err != nil {
		return model.Transaction{}, fmt.Errorf("parse transaction status: %w", err)
	}
	tx.Type = txType
	tx.Status = status
	return tx, nil
}
