package repository

import (
	"context"
	"encoding/json"

	"shopcore/internal/domain/order"
	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type OrderRepository struct {
	db db.DBTX
}

func NewOrderRepository(db db.DBTX) *OrderRepository {
	return &OrderRepository{db: db}
}

// addressRecord is the JSONB shape of an address snapshot. Addresses are
// denormalized documents, not rows; they never need relational access.
type addressRecord struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func addressToRecord(a order.Address) addressRecord {
	return addressRecord{
		FullName:   a.FullName,
		Line1:      a.Line1,
		Line2:      a.Line2,
		City:       a.City,
		State:      a.State,
		PostalCode: a.PostalCode,
		Country:    a.Country,
	}
}

func (r addressRecord) toDomain() order.Address {
	return order.Address{
		FullName:   r.FullName,
		Line1:      r.Line1,
		Line2:      r.Line2,
		City:       r.City,
		State:      r.State,
		PostalCode: r.PostalCode,
		Country:    r.Country,
	}
}

const insertOrderSQL = `
INSERT INTO orders (
    id, number, user_id,
    shipping_address, billing_address,
    payment_method, payment_method_ref, payment_status, status,
    subtotal, shipping_fee, tax, discount, grand_total,
    coupon_code, tracking_number, cancel_reason, refunded_amount,
    created_at, updated_at
) VALUES (
    $1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
    $11, $12, $13, $14, $15, $16, $17, $18, $19, $20
)`

const insertOrderItemSQL = `
INSERT INTO order_items (order_id, variant_id, sku, product_name, option_labels, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) error {
	shippingJSON, err := json.Marshal(addressToRecord(o.ShippingAddress()))
	if err != nil {
		return infra.WrapRepoErr("failed to encode shipping address", err)
	}
	billingJSON, err := json.Marshal(addressToRecord(o.BillingAddress()))
	if err != nil {
		return infra.WrapRepoErr("failed to encode billing address", err)
	}

	totals := o.Totals()
	_, err = r.db.Exec(ctx, insertOrderSQL,
		pgconv.UUIDToPgtype(o.ID()),
		pgconv.StringToPgtype(o.Number().String()),
		pgconv.UUIDToPgtype(o.UserID()),
		shippingJSON,
		billingJSON,
		pgconv.StringToPgtype(string(o.PaymentMethod())),
		pgconv.StringPtrToPgtype(o.PaymentMethodRef()),
		pgconv.StringToPgtype(string(o.PaymentStatus())),
		pgconv.StringToPgtype(string(o.Status())),
		pgconv.DecimalToNumeric(totals.Subtotal),
		pgconv.DecimalToNumeric(totals.Shipping),
		pgconv.DecimalToNumeric(totals.Tax),
		pgconv.DecimalToNumeric(totals.Discount),
		pgconv.DecimalToNumeric(totals.GrandTotal),
		pgconv.StringPtrToPgtype(o.CouponCode()),
		pgconv.StringPtrToPgtype(o.TrackingNumber()),
		pgconv.StringPtrToPgtype(o.CancelReason()),
		pgconv.DecimalToNumeric(o.RefundedAmount()),
		pgconv.TimeToPgtype(o.CreatedAt()),
		pgconv.TimeToPgtype(o.UpdatedAt()),
	)
	if err != nil {
		return wrapPgErr("failed to insert order", err)
	}

	for _, item := range o.Items() {
		_, err := r.db.Exec(ctx, insertOrderItemSQL,
			pgconv.UUIDToPgtype(o.ID()),
			pgconv.UUIDToPgtype(item.VariantID),
			pgconv.StringToPgtype(item.SKU),
			pgconv.StringToPgtype(item.ProductName),
			item.OptionLabels,
			item.Quantity,
			pgconv.DecimalToNumeric(item.UnitPrice),
			pgconv.DecimalToNumeric(item.Subtotal),
		)
		if err != nil {
			return wrapPgErr("failed to insert order item", err)
		}
	}
	return nil
}

const findOrderForUpdateSQL = `
SELECT id, number, user_id,
       shipping_address, billing_address,
       payment_method, payment_method_ref, payment_status, status,
       subtotal, shipping_fee, tax, discount, grand_total,
       coupon_code, tracking_number, cancel_reason, refunded_amount,
       created_at, updated_at
FROM orders
WHERE id = $1
FOR UPDATE`

const findOrderItemsSQL = `
SELECT variant_id, sku, product_name, option_labels, quantity, unit_price, subtotal
FROM order_items
WHERE order_id = $1
ORDER BY variant_id`

func (r *OrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	var (
		oid, userID                              pgtype.UUID
		number, paymentMethod                    pgtype.Text
		paymentMethodRef                         pgtype.Text
		paymentStatus, status                    pgtype.Text
		shippingJSON, billingJSON                []byte
		subtotal, shippingFee, tax, discount     pgtype.Numeric
		grandTotal, refundedAmount               pgtype.Numeric
		couponCode, trackingNumber, cancelReason pgtype.Text
		createdAt, updatedAt                     pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, findOrderForUpdateSQL, pgconv.UUIDToPgtype(id)).Scan(
		&oid, &number, &userID,
		&shippingJSON, &billingJSON,
		&paymentMethod, &paymentMethodRef, &paymentStatus, &status,
		&subtotal, &shippingFee, &tax, &discount, &grandTotal,
		&couponCode, &trackingNumber, &cancelReason, &refundedAmount,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order", err)
	}

	var shippingRec, billingRec addressRecord
	if err := json.Unmarshal(shippingJSON, &shippingRec); err != nil {
		return nil, infra.WrapRepoErr("failed to decode shipping address", err)
	}
	if err := json.Unmarshal(billingJSON, &billingRec); err != nil {
		return nil, infra.WrapRepoErr("failed to decode billing address", err)
	}

	items, err := r.findItems(ctx, id)
	if err != nil {
		return nil, err
	}

	totals := order.Totals{}
	if totals.Subtotal, err = pgconv.DecimalFromNumeric(subtotal); err != nil {
		return nil, infra.WrapRepoErr("invalid order subtotal", err)
	}
	if totals.Shipping, err = pgconv.DecimalFromNumeric(shippingFee); err != nil {
		return nil, infra.WrapRepoErr("invalid order shipping fee", err)
	}
	if totals.Tax, err = pgconv.DecimalFromNumeric(tax); err != nil {
		return nil, infra.WrapRepoErr("invalid order tax", err)
	}
	if totals.Discount, err = pgconv.DecimalFromNumeric(discount); err != nil {
		return nil, infra.WrapRepoErr("invalid order discount", err)
	}
	if totals.GrandTotal, err = pgconv.DecimalFromNumeric(grandTotal); err != nil {
		return nil, infra.WrapRepoErr("invalid order grand total", err)
	}
	refunded, err := pgconv.DecimalFromNumeric(refundedAmount)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid refunded amount", err)
	}

	return order.Reconstruct(
		uuid.UUID(oid.Bytes),
		order.Number(number.String),
		uuid.UUID(userID.Bytes),
		items,
		shippingRec.toDomain(), billingRec.toDomain(),
		order.PaymentMethod(paymentMethod.String),
		pgconv.StringPtrFromPgtype(paymentMethodRef),
		order.PaymentStatus(paymentStatus.String),
		order.Status(status.String),
		totals,
		pgconv.StringPtrFromPgtype(couponCode),
		pgconv.StringPtrFromPgtype(trackingNumber),
		pgconv.StringPtrFromPgtype(cancelReason),
		refunded,
		pgconv.TimeFromPgtype(createdAt),
		pgconv.TimeFromPgtype(updatedAt),
	), nil
}

func (r *OrderRepository) findItems(ctx context.Context, orderID uuid.UUID) ([]order.Item, error) {
	rows, err := r.db.Query(ctx, findOrderItemsSQL, pgconv.UUIDToPgtype(orderID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find order items", err)
	}
	defer rows.Close()

	var items []order.Item
	for rows.Next() {
		var (
			variantID           pgtype.UUID
			sku, name           pgtype.Text
			optionLabels        []string
			quantity            int32
			unitPrice, subtotal pgtype.Numeric
		)
		if err := rows.Scan(&variantID, &sku, &name, &optionLabels, &quantity, &unitPrice, &subtotal); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item", err)
		}
		price, err := pgconv.DecimalFromNumeric(unitPrice)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid order item price", err)
		}
		sub, err := pgconv.DecimalFromNumeric(subtotal)
		if err != nil {
			return nil, infra.WrapRepoErr("invalid order item subtotal", err)
		}
		items = append(items, order.Item{
			VariantID:    uuid.UUID(variantID.Bytes),
			SKU:          sku.String,
			ProductName:  name.String,
			OptionLabels: optionLabels,
			Quantity:     quantity,
			UnitPrice:    price,
			Subtotal:     sub,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order items", err)
	}
	return items, nil
}

const updateOrderSQL = `
UPDATE orders SET
    payment_status  = $2,
    status          = $3,
    tracking_number = $4,
    cancel_reason   = $5,
    refunded_amount = $6,
    updated_at      = $7
WHERE id = $1`

// Update persists only the mutable fields. Items, totals and addresses are
// immutable after creation.
func (r *OrderRepository) Update(ctx context.Context, o *order.Order) error {
	tag, err := r.db.Exec(ctx, updateOrderSQL,
		pgconv.UUIDToPgtype(o.ID()),
		pgconv.StringToPgtype(string(o.PaymentStatus())),
		pgconv.StringToPgtype(string(o.Status())),
		pgconv.StringPtrToPgtype(o.TrackingNumber()),
		pgconv.StringPtrToPgtype(o.CancelReason()),
		pgconv.DecimalToNumeric(o.RefundedAmount()),
		pgconv.TimeToPgtype(o.UpdatedAt()),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to update order", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("order not found", nil, infra.KindNotFound)
	}
	return nil
}
