package readstore

import (
	"context"

	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// CatalogReadStore backs the add-to-cart snapshot with the product_variants
// table. It is the only place the cart side touches catalog data.
type CatalogReadStore struct {
	db db.DBTX
}

func NewCatalogReadStore(db db.DBTX) *CatalogReadStore {
	return &CatalogReadStore{db: db}
}

const findVariantSQL = `
SELECT id, sku, product_name, option_labels, price, purchasable
FROM product_variants
WHERE id = $1`

func (s *CatalogReadStore) VariantByID(ctx context.Context, variantID uuid.UUID) (*shared.VariantSnapshot, error) {
	var (
		id           pgtype.UUID
		sku, name    pgtype.Text
		optionLabels []string
		price        pgtype.Numeric
		purchasable  bool
	)
	err := s.db.QueryRow(ctx, findVariantSQL, pgconv.UUIDToPgtype(variantID)).
		Scan(&id, &sku, &name, &optionLabels, &price, &purchasable)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("variant not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find variant", err)
	}

	priceDec, err := pgconv.DecimalFromNumeric(price)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid variant price", err)
	}

	return &shared.VariantSnapshot{
		VariantID:    uuid.UUID(id.Bytes),
		SKU:          sku.String,
		ProductName:  name.String,
		OptionLabels: optionLabels,
		Price:        priceDec,
		Purchasable:  purchasable,
	}, nil
}
