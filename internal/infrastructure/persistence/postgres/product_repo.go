package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/model"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
	"github.com/Jonathan-321/congenial-eureka/pkg/postgres"
)

const productColumns = `
	id, name, currency, min_amount, max_amount, interest_rate,
	duration_days, schedule_type, grace_period_days, active`

// ProductRepo implements port.ProductRepository on PostgreSQL.
type ProductRepo struct {
	pool *pgxpool.Pool
}

// NewProductRepo creates a PostgreSQL-backed product repository.
func NewProductRepo(pool *pgxpool.Pool) *ProductRepo {
	return &ProductRepo{pool: pool}
}

func (r *ProductRepo) FindByID(ctx context.Context, id string) (model.LoanProduct, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `SELECT ` + productColumns + ` FROM loan_products WHERE id = $1`
	return scanProductRow(q.QueryRow(ctx, query, id))
}

func (r *ProductRepo) ListActive(ctx context.Context) ([]model.LoanProduct, error) {
	q := postgres.QuerierFrom(ctx, r.pool)
	query := `SELECT ` + productColumns + ` FROM loan_products WHERE active ORDER BY name`
	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", mapError(err))
	}
	defer rows.Close()

	var products []model.LoanProduct
	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func scanProductRow(s scannable) (model.LoanProduct, error) {
	var (
		p                    model.LoanProduct
		minAmount, maxAmount decimal.Decimal
		rate                 decimal.Decimal
		scheduleTypeStr      string
	)
	err := s.Scan(
		&p.ID, &p.Name, &p.Currency, &minAmount, &maxAmount, &rate,
		&p.DurationDays, &scheduleTypeStr, &p.GracePeriodDays, &p.Active,
	)
	if err != nil {
		return model.LoanProduct{}, fmt.Errorf("scan product: %w", mapError(err))
	}

	scheduleType, err := valueobject.NewScheduleType(scheduleTypeStr)
	if err != nil {
		return model.LoanProduct{}, fmt.Errorf("parse schedule type: %w", err)
	}

	p.MinAmount = minAmount
	p.MaxAmount = maxAmount
	p.InterestRate = rate
	p.ScheduleType = scheduleType
	return p, nil
}
