package repository

import (
	"context"

	"shopcore/internal/domain/inventory"
	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type InventoryRepository struct {
	db db.DBTX
}

func NewInventoryRepository(db db.DBTX) *InventoryRepository {
	return &InventoryRepository{db: db}
}

const getInventoryForUpdateSQL = `
SELECT variant_id, available
FROM inventory
WHERE variant_id = $1
FOR UPDATE`

func (r *InventoryRepository) GetForUpdate(ctx context.Context, variantID uuid.UUID) (*inventory.Record, error) {
	var (
		vid       pgtype.UUID
		available int32
	)
	err := r.db.QueryRow(ctx, getInventoryForUpdateSQL, pgconv.UUIDToPgtype(variantID)).
		Scan(&vid, &available)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("inventory record not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find inventory record", err)
	}
	return inventory.Reconstruct(uuid.UUID(vid.Bytes), available), nil
}

const reserveInventorySQL = `
UPDATE inventory
SET available = available - $2
WHERE variant_id = $1 AND available >= $2`

// Reserve decrements availability with a guarded update; zero rows affected
// means another transaction consumed the stock since the caller's read.
func (r *InventoryRepository) Reserve(ctx context.Context, variantID uuid.UUID, quantity int32) error {
	tag, err := r.db.Exec(ctx, reserveInventorySQL, pgconv.UUIDToPgtype(variantID), quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to reserve inventory", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("insufficient stock", nil, infra.KindConflict)
	}
	return nil
}

const releaseInventorySQL = `
UPDATE inventory
SET available = available + $2
WHERE variant_id = $1`

func (r *InventoryRepository) Release(ctx context.Context, variantID uuid.UUID, quantity int32) error {
	tag, err := r.db.Exec(ctx, releaseInventorySQL, pgconv.UUIDToPgtype(variantID), quantity)
	if err != nil {
		return infra.WrapRepoErr("failed to release inventory", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("inventory record not found", nil, infra.KindNotFound)
	}
	return nil
}
