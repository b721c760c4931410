package repository

import (
	"context"

	"shopcore/internal/domain/cart"
	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CartRepository struct {
	db db.DBTX
}

func NewCartRepository(db db.DBTX) *CartRepository {
	return &CartRepository{db: db}
}

const findCartByUserSQL = `
SELECT id, user_id, coupon_code, discount, total, updated_at
FROM carts
WHERE user_id = $1`

const findCartItemsSQL = `
SELECT variant_id, sku, product_name, option_labels, quantity, unit_price
FROM cart_items
WHERE cart_id = $1
ORDER BY added_at`

func (r *CartRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error) {
	var (
		id, uid         pgtype.UUID
		couponCode      pgtype.Text
		discount, total pgtype.Numeric
		updatedAt       pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, findCartByUserSQL, pgconv.UUIDToPgtype(userID)).
		Scan(&id, &uid, &couponCode, &discount, &total, &updatedAt)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("cart not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find cart", err)
	}

	items, err := r.findItems(ctx, uuid.UUID(id.Bytes))
	if err != nil {
		return nil, err
	}

	discountDec, err := pgconv.DecimalFromNumeric(discount)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid cart discount", err)
	}
	totalDec, err := pgconv.DecimalFromNumeric(total)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid cart total", err)
	}

	return cart.Reconstruct(
		uuid.UUID(id.Bytes),
		uuid.UUID(uid.Bytes),
		items,
		pgconv.StringPtrFromPgtype(couponCode),
		discountDec,
		totalDec,
		pgconv.TimeFromPgtype(updatedAt),
	), nil
}

func (r *CartRepository) findItems(ctx context.Context, cartID uuid.UUID) ([]cart.Item, error) {
	rows, err := r.db.Query(ctx, findCartItemsSQL, pgconv.UUIDToPgtype(cartID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find cart items", err)
	}
	defer rows.Close()

	var items []cart.Item
	for rows.Next() {
		var (
			variantID    pgtype.UUID
			sku, name    pgtype.Text
			optionLabels []string
			quantity     int32
			unitPrice    pgtype.Numeric
		)
		if err := rows.Scan(&variantID, &sku, &name, &optionLabels, &quantity, &unitPrice); err != nil {
			return nil, infra.WrapRepoErr("failed to scan cart item", err)
		}
		price, err := pgconv.DecimalFromNumeric(unitPrice)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid cart item price", err)
		}
		items = append(items, cart.Item{
			VariantID:    uuid.UUID(variantID.Bytes),
			SKU:          sku.String,
			ProductName:  name.String,
			OptionLabels: optionLabels,
			Quantity:     quantity,
			UnitPrice:    price,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate cart items", err)
	}
	return items, nil
}

const upsertCartSQL = `
INSERT INTO carts (id, user_id, coupon_code, discount, total, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)
ON CONFLICT (user_id) DO UPDATE SET
    coupon_code = EXCLUDED.coupon_code,
    discount    = EXCLUDED.discount,
    total       = EXCLUDED.total,
    updated_at  = EXCLUDED.updated_at`

const deleteCartItemsSQL = `DELETE FROM cart_items WHERE cart_id = $1`

const insertCartItemSQL = `
INSERT INTO cart_items (cart_id, variant_id, sku, product_name, option_labels, quantity, unit_price, added_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, now())`

// Save persists the whole cart state: the header row is upserted and the item
// rows replaced wholesale. Simpler than diffing lines and the cart is small.
func (r *CartRepository) Save(ctx context.Context, c *cart.Cart) error {
	_, err := r.db.Exec(ctx, upsertCartSQL,
		pgconv.UUIDToPgtype(c.ID()),
		pgconv.UUIDToPgtype(c.UserID()),
		pgconv.StringPtrToPgtype(c.CouponCode()),
		pgconv.DecimalToNumeric(c.Discount()),
		pgconv.DecimalToNumeric(c.Total()),
		pgconv.TimeToPgtype(c.UpdatedAt()),
	)
	if err != nil {
		return wrapPgErr("failed to upsert cart", err)
	}

	if _, err := r.db.Exec(ctx, deleteCartItemsSQL, pgconv.UUIDToPgtype(c.ID())); err != nil {
		return infra.WrapRepoErr("failed to clear cart items", err)
	}
	for _, item := range c.Items() {
		_, err := r.db.Exec(ctx, insertCartItemSQL,
			pgconv.UUIDToPgtype(c.ID()),
			pgconv.UUIDToPgtype(item.VariantID),
			pgconv.StringToPgtype(item.SKU),
			pgconv.StringToPgtype(item.ProductName),
			item.OptionLabels,
			item.Quantity,
			pgconv.DecimalToNumeric(item.UnitPrice),
		)
		if err != nil {
			return wrapPgErr("failed to insert cart item", err)
		}
	}
	return nil
}

const clearCartSQL = `
UPDATE carts SET coupon_code = NULL, discount = 0, total = 0, updated_at = now()
WHERE id = $1`

func (r *CartRepository) Clear(ctx context.Context, cartID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, deleteCartItemsSQL, pgconv.UUIDToPgtype(cartID)); err != nil {
		return infra.WrapRepoErr("failed to clear cart items", err)
	}
	if _, err := r.db.Exec(ctx, clearCartSQL, pgconv.UUIDToPgtype(cartID)); err != nil {
		return infra.WrapRepoErr("failed to reset cart", err)
	}
	return nil
}
