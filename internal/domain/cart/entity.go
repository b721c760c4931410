package cart

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("quantity must not be negative")
	ErrItemNotFound    = errors.New("item not found in cart")
	ErrNegativePrice   = errors.New("price cannot be negative")
)

// VariantSnapshot carries the catalog fields captured at add-to-cart time.
// The price is frozen here; later catalog changes do not reprice the cart.
type VariantSnapshot struct {
	VariantID    uuid.UUID
	SKU          string
	ProductName  string
	OptionLabels []string
	Price        decimal.Decimal
}

type Item struct {
	VariantID    uuid.UUID
	SKU          string
	ProductName  string
	OptionLabels []string
	Quantity     int32
	UnitPrice    decimal.Decimal
}

func (i Item) Subtotal() decimal.Decimal {
	return i.UnitPrice.Mul(decimal.NewFromInt32(i.Quantity))
}

type Cart struct {
	id         uuid.UUID
	userID     uuid.UUID
	items      []Item
	couponCode *string
	discount   decimal.Decimal
	total      decimal.Decimal
	updatedAt  time.Time
}

func New(userID uuid.UUID, now time.Time) *Cart {
	return &Cart{
		id:        uuid.New(),
		userID:    userID,
		discount:  decimal.Zero,
		total:     decimal.Zero,
		updatedAt: now,
	}
}

func Reconstruct(
	id, userID uuid.UUID,
	items []Item,
	couponCode *string,
	discount, total decimal.Decimal,
	updatedAt time.Time,
) *Cart {
	return &Cart{
		id:         id,
		userID:     userID,
		items:      items,
		couponCode: couponCode,
		discount:   discount,
		total:      total,
		updatedAt:  updatedAt,
	}
}

// AddItem upserts a line: adding a variant already in the cart increases its
// quantity, keeping one row per (cart, variant).
func (c *Cart) AddItem(v VariantSnapshot, quantity int32, now time.Time) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	if v.Price.IsNegative() {
		return ErrNegativePrice
	}

	for i := range c.items {
		if c.items[i].VariantID == v.VariantID {
			c.items[i].Quantity += quantity
			c.recompute(now)
			return nil
		}
	}

	c.items = append(c.items, Item{
		VariantID:    v.VariantID,
		SKU:          v.SKU,
		ProductName:  v.ProductName,
		OptionLabels: v.OptionLabels,
		Quantity:     quantity,
		UnitPrice:    v.Price,
	})
	c.recompute(now)
	return nil
}

// UpdateQuantity sets an absolute quantity; zero removes the line.
func (c *Cart) UpdateQuantity(variantID uuid.UUID, quantity int32, now time.Time) error {
	if quantity < 0 {
		return ErrInvalidQuantity
	}
	if quantity == 0 {
		return c.RemoveItem(variantID, now)
	}

	for i := range c.items {
		if c.items[i].VariantID == variantID {
			c.items[i].Quantity = quantity
			c.recompute(now)
			return nil
		}
	}
	return ErrItemNotFound
}

func (c *Cart) RemoveItem(variantID uuid.UUID, now time.Time) error {
	for i := range c.items {
		if c.items[i].VariantID == variantID {
			c.items = append(c.items[:i], c.items[i+1:]...)
			c.recompute(now)
			return nil
		}
	}
	return ErrItemNotFound
}

// ApplyCoupon records the code and its computed discount. Validation of the
// coupon itself belongs to the usage tracker, not the cart.
func (c *Cart) ApplyCoupon(code string, discount decimal.Decimal, now time.Time) {
	c.couponCode = &code
	c.discount = discount
	c.recompute(now)
}

func (c *Cart) RemoveCoupon(now time.Time) {
	c.couponCode = nil
	c.discount = decimal.Zero
	c.recompute(now)
}

func (c *Cart) Clear(now time.Time) {
	c.items = nil
	c.couponCode = nil
	c.discount = decimal.Zero
	c.recompute(now)
}

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range c.items {
		sum = sum.Add(it.Subtotal())
	}
	return sum
}

// total = sum(quantity * price_at_addition) - discount, floored at zero
func (c *Cart) recompute(now time.Time) {
	total := c.Subtotal().Sub(c.discount)
	if total.IsNegative() {
		total = decimal.Zero
	}
	c.total = total
	c.updatedAt = now
}

func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

func (c *Cart) VariantIDs() []uuid.UUID {
	ids := make([]uuid.UUID, len(c.items))
	for i, it := range c.items {
		ids[i] = it.VariantID
	}
	return ids
}

func (c *Cart) ID() uuid.UUID             { return c.id }
func (c *Cart) UserID() uuid.UUID         { return c.userID }
func (c *Cart) Items() []Item             { return c.items }
func (c *Cart) CouponCode() *string       { return c.couponCode }
func (c *Cart) Discount() decimal.Decimal { return c.discount }
func (c *Cart) Total() decimal.Decimal    { return c.total }
func (c *Cart) UpdatedAt() time.Time      { return c.updatedAt }
