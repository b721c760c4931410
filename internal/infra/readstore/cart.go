package readstore

import (
	"context"

	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"
	"shopcore/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type CartReadStore struct {
	db db.DBTX
}

func NewCartReadStore(db db.DBTX) *CartReadStore {
	return &CartReadStore{db: db}
}

const findCartViewSQL = `
SELECT id, user_id, coupon_code, discount, total, updated_at
FROM carts
WHERE user_id = $1`

const findCartItemViewsSQL = `
SELECT variant_id, sku, product_name, quantity, unit_price
FROM cart_items
WHERE cart_id = $1
ORDER BY added_at`

func (s *CartReadStore) FindByUser(ctx context.Context, userID uuid.UUID) (*queries.CartView, error) {
	var (
		id, uid         pgtype.UUID
		couponCode      pgtype.Text
		discount, total pgtype.Numeric
		updatedAt       pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, findCartViewSQL, pgconv.UUIDToPgtype(userID)).
		Scan(&id, &uid, &couponCode, &discount, &total, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart view", err)
	}

	view := &queries.CartView{
		ID:         uuid.UUID(id.Bytes),
		UserID:     uuid.UUID(uid.Bytes),
		CouponCode: pgconv.StringPtrFromPgtype(couponCode),
		UpdatedAt:  pgconv.TimeFromPgtype(updatedAt),
	}
	if view.Discount, err = pgconv.DecimalFromNumeric(discount); err != nil {
		return nil, infra.WrapRepoErr("invalid cart discount", err)
	}
	if view.Total, err = pgconv.DecimalFromNumeric(total); err != nil {
		return nil, infra.WrapRepoErr("invalid cart total", err)
	}

	rows, err := s.db.Query(ctx, findCartItemViewsSQL, id)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart item views", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			variantID pgtype.UUID
			sku, name pgtype.Text
			quantity  int32
			unitPrice pgtype.Numeric
		)
		if err := rows.Scan(&variantID, &sku, &name, &quantity, &unitPrice); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart item view", err)
		}
		item := queries.CartItemView{
			VariantID:   uuid.UUID(variantID.Bytes),
			SKU:         sku.String,
			ProductName: name.String,
			Quantity:    quantity,
		}
		if item.UnitPrice, err = pgconv.DecimalFromNumeric(unitPrice); err != nil {
			return nil, infra.WrapRepoErr("invalid cart item price", err)
		}
		item.Subtotal = item.UnitPrice.Mul(decimal.NewFromInt32(quantity))
		view.Items = append(view.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart item views", err)
	}

	return view, nil
}
