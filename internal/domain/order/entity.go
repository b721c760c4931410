package order

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNoItems              = errors.New("order must contain at least one item")
	ErrInvalidTransition    = errors.New("invalid order status transition")
	ErrInvalidQuantity      = errors.New("item quantity must be positive")
	ErrItemSubtotalMismatch = errors.New("item subtotal does not equal quantity times unit price")
)

// Item is an immutable snapshot of a cart line at order time. It deliberately
// copies SKU, name and option labels instead of referencing live catalog rows
// so historical orders survive catalog changes.
type Item struct {
	VariantID    uuid.UUID
	SKU          string
	ProductName  string
	OptionLabels []string
	Quantity     int32
	UnitPrice    decimal.Decimal
	Subtotal     decimal.Decimal
}

func NewItem(variantID uuid.UUID, sku, productName string, optionLabels []string, quantity int32, unitPrice decimal.Decimal) (Item, error) {
	if quantity <= 0 {
		return Item{}, ErrInvalidQuantity
	}
	if unitPrice.IsNegative() {
		return Item{}, ErrNegativeAmount
	}
	return Item{
		VariantID:    variantID,
		SKU:          sku,
		ProductName:  productName,
		OptionLabels: optionLabels,
		Quantity:     quantity,
		UnitPrice:    unitPrice,
		Subtotal:     unitPrice.Mul(decimal.NewFromInt32(quantity)),
	}, nil
}

type Order struct {
	id               uuid.UUID
	number           Number
	userID           uuid.UUID
	items            []Item
	shippingAddress  Address
	billingAddress   Address
	paymentMethod    PaymentMethod
	paymentMethodRef *string
	paymentStatus    PaymentStatus
	status           Status
	totals           Totals
	couponCode       *string
	trackingNumber   *string
	cancelReason     *string
	refundedAmount   decimal.Decimal
	createdAt        time.Time
	updatedAt        time.Time
}

func New(
	userID uuid.UUID,
	items []Item,
	shipping, billing Address,
	paymentMethod PaymentMethod,
	paymentMethodRef *string,
	totals Totals,
	couponCode *string,
	now time.Time,
) (*Order, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	itemSum := decimal.Zero
	for _, it := range items {
		if !it.Subtotal.Equal(it.UnitPrice.Mul(decimal.NewFromInt32(it.Quantity))) {
			return nil, ErrItemSubtotalMismatch
		}
		itemSum = itemSum.Add(it.Subtotal)
	}
	if !itemSum.Equal(totals.Subtotal) || !totals.Reconciles() {
		return nil, ErrTotalsMismatch
	}

	return &Order{
		id:               uuid.New(),
		number:           GenerateNumber(now),
		userID:           userID,
		items:            items,
		shippingAddress:  shipping,
		billingAddress:   billing,
		paymentMethod:    paymentMethod,
		paymentMethodRef: paymentMethodRef,
		paymentStatus:    PaymentPending,
		status:           StatusPending,
		totals:           totals,
		couponCode:       couponCode,
		refundedAmount:   decimal.Zero,
		createdAt:        now,
		updatedAt:        now,
	}, nil
}

func Reconstruct(
	id uuid.UUID,
	number Number,
	userID uuid.UUID,
	items []Item,
	shipping, billing Address,
	paymentMethod PaymentMethod,
	paymentMethodRef *string,
	paymentStatus PaymentStatus,
	status Status,
	totals Totals,
	couponCode *string,
	trackingNumber *string,
	cancelReason *string,
	refundedAmount decimal.Decimal,
	createdAt, updatedAt time.Time,
) *Order {
	return &Order{
		id:               id,
		number:           number,
		userID:           userID,
		items:            items,
		shippingAddress:  shipping,
		billingAddress:   billing,
		paymentMethod:    paymentMethod,
		paymentMethodRef: paymentMethodRef,
		paymentStatus:    paymentStatus,
		status:           status,
		totals:           totals,
		couponCode:       couponCode,
		trackingNumber:   trackingNumber,
		cancelReason:     cancelReason,
		refundedAmount:   refundedAmount,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// Transition moves the order along the state machine. Anything outside the
// allowed-transitions table fails, including transitions out of terminal states.
func (o *Order) Transition(to Status, now time.Time) error {
	if !to.IsValid() || !o.status.CanTransitionTo(to) {
		return ErrInvalidTransition
	}
	o.status = to
	o.updatedAt = now
	return nil
}

func (o *Order) Cancel(reason string, now time.Time) error {
	if !o.status.IsCancellable() {
		return ErrInvalidTransition
	}
	o.status = StatusCancelled
	o.cancelReason = &reason
	o.updatedAt = now
	return nil
}

func (o *Order) MarkPaid(now time.Time) {
	o.paymentStatus = PaymentPaid
	o.updatedAt = now
}

// RecordRefund accumulates refunded amounts and derives the payment status.
func (o *Order) RecordRefund(amount decimal.Decimal, now time.Time) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrNegativeAmount
	}
	newTotal := o.refundedAmount.Add(amount)
	if newTotal.GreaterThan(o.totals.GrandTotal) {
		return ErrNegativeAmount
	}
	o.refundedAmount = newTotal
	if newTotal.Equal(o.totals.GrandTotal) {
		o.paymentStatus = PaymentRefunded
	} else {
		o.paymentStatus = PaymentPartiallyRefunded
	}
	o.updatedAt = now
	return nil
}

func (o *Order) RefundableAmount() decimal.Decimal {
	if o.paymentMethod != PaymentMethodWallet || o.paymentStatus == PaymentPending || o.paymentStatus == PaymentFailed {
		return decimal.Zero
	}
	return o.totals.GrandTotal.Sub(o.refundedAmount)
}

func (o *Order) IsWalletPaid() bool {
	return o.paymentMethod == PaymentMethodWallet &&
		(o.paymentStatus == PaymentPaid || o.paymentStatus == PaymentPartiallyRefunded)
}

func (o *Order) ID() uuid.UUID                   { return o.id }
func (o *Order) Number() Number                  { return o.number }
func (o *Order) UserID() uuid.UUID               { return o.userID }
func (o *Order) Items() []Item                   { return o.items }
func (o *Order) ShippingAddress() Address        { return o.shippingAddress }
func (o *Order) BillingAddress() Address         { return o.billingAddress }
func (o *Order) PaymentMethod() PaymentMethod    { return o.paymentMethod }
func (o *Order) PaymentMethodRef() *string       { return o.paymentMethodRef }
func (o *Order) PaymentStatus() PaymentStatus    { return o.paymentStatus }
func (o *Order) Status() Status                  { return o.status }
func (o *Order) Totals() Totals                  { return o.totals }
func (o *Order) CouponCode() *string             { return o.couponCode }
func (o *Order) TrackingNumber() *string         { return o.trackingNumber }
func (o *Order) CancelReason() *string           { return o.cancelReason }
func (o *Order) RefundedAmount() decimal.Decimal { return o.refundedAmount }
func (o *Order) CreatedAt() time.Time            { return o.createdAt }
func (o *Order) UpdatedAt() time.Time            { return o.updatedAt }
