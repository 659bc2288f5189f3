package adapter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/internal/domain/valueobject"
	"github.com/Jonathan-321/congenial-eureka/pkg/postgres"
)

// PostgresHarvestCalendar reads the farmer's crop cycles and returns future
// expected harvest dates. An empty result makes the schedule generator fall
// back to a fixed plan.
type PostgresHarvestCalendar struct {
	pool *pgxpool.Pool
}

// NewPostgresHarvestCalendar creates a harvest calendar over the pool.
func NewPostgresHarvestCalendar(pool *pgxpool.Pool) *PostgresHarvestCalendar {
	return &PostgresHarvestCalendar{pool: pool}
}

var _ port.HarvestCalendar = (*PostgresHarvestCalendar)(nil)

func (c *PostgresHarvestCalendar) UpcomingHarvests(ctx context.Context, farmerID string) ([]time.Time, error) {
	q := postgres.QuerierFrom(ctx, c.pool)
	rows, err := q.Query(ctx, `
		SELECT expected_harvest_date
		FROM crop_cycles
		WHERE farmer_id = $1 AND expected_harvest_date > now()
		ORDER BY expected_harvest_date
	`, farmerID)
	if err != nil {
		return nil, fmt.Errorf("query crop cycles: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var d time.Time
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan crop cycle: %w", err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return valueobject.ErrNotFound
	}
	return err
}
