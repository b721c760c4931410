package readstore

import (
	"context"
	"encoding/json"

	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"
	"shopcore/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// OrderReadStore serves denormalized order views straight off the tables the
// command side writes. Reads run on the pool, outside any transaction.
type OrderReadStore struct {
	db db.DBTX
}

func NewOrderReadStore(db db.DBTX) *OrderReadStore {
	return &OrderReadStore{db: db}
}

type addressDoc struct {
	FullName   string `json:"full_name"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (d addressDoc) toView() queries.AddressView {
	return queries.AddressView{
		FullName:   d.FullName,
		Line1:      d.Line1,
		Line2:      d.Line2,
		City:       d.City,
		State:      d.State,
		PostalCode: d.PostalCode,
		Country:    d.Country,
	}
}

const findOrderViewSQL = `
SELECT id, number, user_id, status, payment_status, payment_method,
       shipping_address, billing_address,
       subtotal, shipping_fee, tax, discount, grand_total, refunded_amount,
       coupon_code, tracking_number, cancel_reason,
       created_at, updated_at
FROM orders
WHERE id = $1`

const findOrderItemViewsSQL = `
SELECT variant_id, sku, product_name, option_labels, quantity, unit_price, subtotal
FROM order_items
WHERE order_id = $1
ORDER BY variant_id`

func (s *OrderReadStore) FindByID(ctx context.Context, id uuid.UUID) (*queries.OrderView, error) {
	var (
		oid, userID                              pgtype.UUID
		number, status                           pgtype.Text
		paymentStatus, paymentMethod             pgtype.Text
		shippingJSON, billingJSON                []byte
		subtotal, shippingFee, tax, discount     pgtype.Numeric
		grandTotal, refundedAmount               pgtype.Numeric
		couponCode, trackingNumber, cancelReason pgtype.Text
		createdAt, updatedAt                     pgtype.Timestamptz
	)
	err := s.db.QueryRow(ctx, findOrderViewSQL, pgconv.UUIDToPgtype(id)).Scan(
		&oid, &number, &userID, &status, &paymentStatus, &paymentMethod,
		&shippingJSON, &billingJSON,
		&subtotal, &shippingFee, &tax, &discount, &grandTotal, &refundedAmount,
		&couponCode, &trackingNumber, &cancelReason,
		&createdAt, &updatedAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("order not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find order view", err)
	}

	var shipping, billing addressDoc
	if err := json.Unmarshal(shippingJSON, &shipping); err != nil {
		return nil, infra.WrapRepoErr("failed to decode shipping address", err)
	}
	if err := json.Unmarshal(billingJSON, &billing); err != nil {
		return nil, infra.WrapRepoErr("failed to decode billing address", err)
	}

	view := &queries.OrderView{
		ID:              uuid.UUID(oid.Bytes),
		Number:          number.String,
		UserID:          uuid.UUID(userID.Bytes),
		Status:          status.String,
		PaymentStatus:   paymentStatus.String,
		PaymentMethod:   paymentMethod.String,
		ShippingAddress: shipping.toView(),
		BillingAddress:  billing.toView(),
		CouponCode:      pgconv.StringPtrFromPgtype(couponCode),
		TrackingNumber:  pgconv.StringPtrFromPgtype(trackingNumber),
		CancelReason:    pgconv.StringPtrFromPgtype(cancelReason),
		CreatedAt:       pgconv.TimeFromPgtype(createdAt),
		UpdatedAt:       pgconv.TimeFromPgtype(updatedAt),
	}
	if view.Subtotal, err = pgconv.DecimalFromNumeric(subtotal); err != nil {
		return nil, infra.WrapRepoErr("invalid order subtotal", err)
	}
	if view.Shipping, err = pgconv.DecimalFromNumeric(shippingFee); err != nil {
		return nil, infra.WrapRepoErr("invalid order shipping fee", err)
	}
	if view.Tax, err = pgconv.DecimalFromNumeric(tax); err != nil {
		return nil, infra.WrapRepoErr("invalid order tax", err)
	}
	if view.Discount, err = pgconv.DecimalFromNumeric(discount); err != nil {
		return nil, infra.WrapRepoErr("invalid order discount", err)
	}
	if view.GrandTotal, err = pgconv.DecimalFromNumeric(grandTotal); err != nil {
		return nil, infra.WrapRepoErr("invalid order grand total", err)
	}
	if view.RefundedAmount, err = pgconv.DecimalFromNumeric(refundedAmount); err != nil {
		return nil, infra.WrapRepoErr("invalid refunded amount", err)
	}

	items, err := s.findItems(ctx, id)
	if err != nil {
		return nil, err
	}
	view.Items = items

	return view, nil
}

func (s *OrderReadStore) findItems(ctx context.Context, orderID uuid.UUID) ([]queries.OrderItemView, error) {
	rows, err := s.db.Query(ctx, findOrderItemViewsSQL, pgconv.UUIDToPgtype(orderID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find order item views", err)
	}
	defer rows.Close()

	var items []queries.OrderItemView
	for rows.Next() {
		var (
			variantID           pgtype.UUID
			sku, name           pgtype.Text
			optionLabels        []string
			quantity            int32
			unitPrice, subtotal pgtype.Numeric
		)
		if err := rows.Scan(&variantID, &sku, &name, &optionLabels, &quantity, &unitPrice, &subtotal); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order item view", err)
		}
		item := queries.OrderItemView{
			VariantID:    uuid.UUID(variantID.Bytes),
			SKU:          sku.String,
			ProductName:  name.String,
			OptionLabels: optionLabels,
			Quantity:     quantity,
		}
		if item.UnitPrice, err = pgconv.DecimalFromNumeric(unitPrice); err != nil {
			return nil, infra.WrapRepoErr("invalid item unit price", err)
		}
		if item.Subtotal, err = pgconv.DecimalFromNumeric(subtotal); err != nil {
			return nil, infra.WrapRepoErr("invalid item subtotal", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order item views", err)
	}
	return items, nil
}

const listOrdersByUserSQL = `
SELECT o.id, o.number, o.status, o.payment_status, o.grand_total, o.created_at,
       (SELECT COUNT(*) FROM order_items oi WHERE oi.order_id = o.id) AS item_count
FROM orders o
WHERE o.user_id = $1
ORDER BY o.created_at DESC`

func (s *OrderReadStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*queries.OrderListItem, error) {
	rows, err := s.db.Query(ctx, listOrdersByUserSQL, pgconv.UUIDToPgtype(userID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list orders", err)
	}
	defer rows.Close()

	var items []*queries.OrderListItem
	for rows.Next() {
		var (
			id                    pgtype.UUID
			number                pgtype.Text
			status, paymentStatus pgtype.Text
			grandTotal            pgtype.Numeric
			createdAt             pgtype.Timestamptz
			itemCount             int64
		)
		if err := rows.Scan(&id, &number, &status, &paymentStatus, &grandTotal, &createdAt, &itemCount); err != nil {
			return nil, infra.WrapRepoErr("failed to scan order list item", err)
		}
		item := &queries.OrderListItem{
			ID:            uuid.UUID(id.Bytes),
			Number:        number.String,
			Status:        status.String,
			PaymentStatus: paymentStatus.String,
			ItemCount:     int32(itemCount),
			CreatedAt:     pgconv.TimeFromPgtype(createdAt),
		}
		if item.GrandTotal, err = pgconv.DecimalFromNumeric(grandTotal); err != nil {
			return nil, infra.WrapRepoErr("invalid order grand total", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate order list", err)
	}
	return items, nil
}
