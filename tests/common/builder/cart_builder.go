//go:build unit || e2e

package builder

import (
	"time"

	domcart "shopcore/internal/domain/cart"
	"shopcore/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CartBuilder struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Items      []domcart.Item
	CouponCode *string
	Discount   decimal.Decimal
	Now        time.Time
}

func NewCartBuilder() *CartBuilder {
	return &CartBuilder{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Items: []domcart.Item{
			{
				VariantID:    uuid.New(),
				SKU:          "SKU-TOTE-NVY-M",
				ProductName:  "Canvas Tote",
				OptionLabels: []string{"Navy", "M"},
				Quantity:     2,
				UnitPrice:    decimal.NewFromInt(25),
			},
		},
		Discount: decimal.Zero,
		Now:      time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
	}
}

func (b *CartBuilder) With(mutate func(*CartBuilder)) *CartBuilder {
	mutate(b)
	return b
}

func (b *CartBuilder) subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range b.Items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

func (b *CartBuilder) total() decimal.Decimal {
	total := b.subtotal().Sub(b.Discount)
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Build methods
func (b *CartBuilder) BuildDomain() *domcart.Cart {
	return domcart.Reconstruct(b.ID, b.UserID, b.Items, b.CouponCode, b.Discount, b.total(), b.Now)
}

func (b *CartBuilder) BuildView() *queries.CartView {
	items := make([]queries.CartItemView, len(b.Items))
	for i, it := range b.Items {
		items[i] = queries.CartItemView{
			VariantID:   it.VariantID,
			SKU:         it.SKU,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		}
	}
	return &queries.CartView{
		ID:         b.ID,
		UserID:     b.UserID,
		Items:      items,
		CouponCode: b.CouponCode,
		Discount:   b.Discount,
		Total:      b.total(),
		UpdatedAt:  b.Now,
	}
}

// Fluent builder methods
func (b *CartBuilder) WithUserID(userID uuid.UUID) *CartBuilder {
	b.UserID = userID
	return b
}

func (b *CartBuilder) WithItems(items []domcart.Item) *CartBuilder {
	b.Items = items
	return b
}

func (b *CartBuilder) WithNoItems() *CartBuilder {
	b.Items = nil
	return b
}

func (b *CartBuilder) WithCouponCode(code string) *CartBuilder {
	b.CouponCode = &code
	return b
}

func (b *CartBuilder) WithDiscount(discount decimal.Decimal) *CartBuilder {
	b.Discount = discount
	return b
}
