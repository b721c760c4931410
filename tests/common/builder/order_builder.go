//go:build unit || e2e

package builder

import (
	"time"

	domorder "shopcore/internal/domain/order"
	reqdto "shopcore/internal/handler/dto/request"
	"shopcore/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderBuilder struct {
	UserID           uuid.UUID
	Items            []domorder.Item
	Shipping         domorder.Address
	Billing          domorder.Address
	PaymentMethod    domorder.PaymentMethod
	PaymentMethodRef *string
	Subtotal         decimal.Decimal
	ShippingFee      decimal.Decimal
	Tax              decimal.Decimal
	Discount         decimal.Decimal
	CouponCode       *string
	Now              time.Time
}

func NewOrderBuilder() *OrderBuilder {
	now := time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)
	variantID := uuid.New()
	unitPrice := decimal.NewFromInt(25)
	item, _ := domorder.NewItem(variantID, "SKU-TOTE-NVY-M", "Canvas Tote", []string{"Navy", "M"}, 2, unitPrice)
	address, _ := domorder.NewAddress("Alex Doe", "1 Main St", "", "Springfield", "IL", "62701", "US")

	return &OrderBuilder{
		UserID:        uuid.New(),
		Items:         []domorder.Item{item},
		Shipping:      address,
		Billing:       address,
		PaymentMethod: domorder.PaymentMethodWallet,
		Subtotal:      decimal.NewFromInt(50),
		ShippingFee:   decimal.NewFromInt(10),
		Tax:           decimal.NewFromInt(5),
		Discount:      decimal.Zero,
		Now:           now,
	}
}

func (b *OrderBuilder) With(mutate func(*OrderBuilder)) *OrderBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *OrderBuilder) BuildDomain() (*domorder.Order, error) {
	totals, err := domorder.NewTotals(b.Subtotal, b.ShippingFee, b.Tax, b.Discount)
	if err != nil {
		return nil, err
	}
	return domorder.New(
		b.UserID, b.Items,
		b.Shipping, b.Billing,
		b.PaymentMethod, b.PaymentMethodRef,
		totals, b.CouponCode, b.Now,
	)
}

// BuildReconstructed produces an order in an arbitrary point of its lifecycle,
// the way a repository would hand it back.
func (b *OrderBuilder) BuildReconstructed(id uuid.UUID, status domorder.Status, payStatus domorder.PaymentStatus) *domorder.Order {
	totals, _ := domorder.NewTotals(b.Subtotal, b.ShippingFee, b.Tax, b.Discount)
	return domorder.Reconstruct(
		id,
		domorder.GenerateNumber(b.Now),
		b.UserID,
		b.Items,
		b.Shipping, b.Billing,
		b.PaymentMethod, b.PaymentMethodRef,
		payStatus, status,
		totals, b.CouponCode,
		nil, nil,
		decimal.Zero,
		b.Now, b.Now,
	)
}

func (b *OrderBuilder) BuildView() *queries.OrderView {
	grand := b.Subtotal.Add(b.ShippingFee).Add(b.Tax).Sub(b.Discount)
	items := make([]queries.OrderItemView, len(b.Items))
	for i, it := range b.Items {
		items[i] = queries.OrderItemView{
			VariantID:    it.VariantID,
			SKU:          it.SKU,
			ProductName:  it.ProductName,
			OptionLabels: it.OptionLabels,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice,
			Subtotal:     it.Subtotal,
		}
	}
	return &queries.OrderView{
		ID:            uuid.New(),
		Number:        domorder.GenerateNumber(b.Now).String(),
		UserID:        b.UserID,
		Status:        domorder.StatusPending.String(),
		PaymentStatus: domorder.PaymentPending.String(),
		PaymentMethod: string(b.PaymentMethod),
		ShippingAddress: queries.AddressView{
			FullName:   b.Shipping.FullName,
			Line1:      b.Shipping.Line1,
			City:       b.Shipping.City,
			State:      b.Shipping.State,
			PostalCode: b.Shipping.PostalCode,
			Country:    b.Shipping.Country,
		},
		BillingAddress: queries.AddressView{
			FullName:   b.Billing.FullName,
			Line1:      b.Billing.Line1,
			City:       b.Billing.City,
			State:      b.Billing.State,
			PostalCode: b.Billing.PostalCode,
			Country:    b.Billing.Country,
		},
		Subtotal:       b.Subtotal,
		Shipping:       b.ShippingFee,
		Tax:            b.Tax,
		Discount:       b.Discount,
		GrandTotal:     grand,
		RefundedAmount: decimal.Zero,
		CouponCode:     b.CouponCode,
		Items:          items,
		CreatedAt:      b.Now,
		UpdatedAt:      b.Now,
	}
}

func (b *OrderBuilder) BuildListItem() *queries.OrderListItem {
	grand := b.Subtotal.Add(b.ShippingFee).Add(b.Tax).Sub(b.Discount)
	var count int32
	for _, it := range b.Items {
		count += it.Quantity
	}
	return &queries.OrderListItem{
		ID:            uuid.New(),
		Number:        domorder.GenerateNumber(b.Now).String(),
		Status:        domorder.StatusPending.String(),
		PaymentStatus: domorder.PaymentPending.String(),
		GrandTotal:    grand,
		ItemCount:     count,
		CreatedAt:     b.Now,
	}
}

func (b *OrderBuilder) BuildPlaceRequestDTO() reqdto.PlaceOrderRequest {
	return reqdto.PlaceOrderRequest{
		ShippingAddress: reqdto.AddressRequest{
			FullName:   b.Shipping.FullName,
			Line1:      b.Shipping.Line1,
			City:       b.Shipping.City,
			State:      b.Shipping.State,
			PostalCode: b.Shipping.PostalCode,
			Country:    b.Shipping.Country,
		},
		PaymentMethod: string(b.PaymentMethod),
	}
}

// Fluent builder methods
func (b *OrderBuilder) WithUserID(userID uuid.UUID) *OrderBuilder {
	b.UserID = userID
	return b
}

func (b *OrderBuilder) WithItems(items []domorder.Item) *OrderBuilder {
	b.Items = items
	return b
}

func (b *OrderBuilder) WithNoItems() *OrderBuilder {
	b.Items = nil
	return b
}

func (b *OrderBuilder) WithPaymentMethod(method domorder.PaymentMethod) *OrderBuilder {
	b.PaymentMethod = method
	return b
}

func (b *OrderBuilder) WithSubtotal(subtotal decimal.Decimal) *OrderBuilder {
	b.Subtotal = subtotal
	return b
}

func (b *OrderBuilder) WithDiscount(discount decimal.Decimal) *OrderBuilder {
	b.Discount = discount
	return b
}

func (b *OrderBuilder) WithCouponCode(code string) *OrderBuilder {
	b.CouponCode = &code
	return b
}

func (b *OrderBuilder) WithNow(now time.Time) *OrderBuilder {
	b.Now = now
	return b
}
