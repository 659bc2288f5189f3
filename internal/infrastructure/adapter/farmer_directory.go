package adapter

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jonathan-321/congenial-eureka/internal/domain/port"
	"github.com/Jonathan-321/congenial-eureka/pkg/postgres"
)

// PostgresFarmerDirectory reads farmer records from the farmers table. The
// loan core only needs the identity and phone number; account management is
// owned by a separate system writing the same table.
type PostgresFarmerDirectory struct {
	pool *pgxpool.Pool
}

// NewPostgresFarmerDirectory creates a farmer directory over the pool.
func NewPostgresFarmerDirectory(pool *pgxpool.Pool) *PostgresFarmerDirectory {
	return &PostgresFarmerDirectory{pool: pool}
}

var _ port.FarmerDirectory = (*PostgresFarmerDirectory)(nil)

func (d *PostgresFarmerDirectory) FindByID(ctx context.Context, id string) (port.Farmer, error) {
	q := postgres.QuerierFrom(ctx, d.pool)
	var farmer port.Farmer
	err := q.QueryRow(ctx,
		`SELECT id, name, phone_number FROM farmers WHERE id = $1`, id,
	).Scan(&farmer.ID, &farmer.Name, &farmer.PhoneNumber)
	if err != nil {
		return port.Farmer{}, fmt.Errorf("find farmer: %w", mapNotFound(err))
	}
	return farmer, nil
}
