package queries

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OrderItemView struct {
	VariantID    uuid.UUID
	SKU          string
	ProductName  string
	OptionLabels []string
	Quantity     int32
	UnitPrice    decimal.Decimal
	Subtotal     decimal.Decimal
}

type AddressView struct {
	FullName   string
	Line1      string
	Line2      string
	City       string
	State      string
	PostalCode string
	Country    string
}

type OrderView struct {
	ID              uuid.UUID
	Number          string
	UserID          uuid.UUID
	Status          string
	PaymentStatus   string
	PaymentMethod   string
	ShippingAddress AddressView
	BillingAddress  AddressView
	Subtotal        decimal.Decimal
	Shipping        decimal.Decimal
	Tax             decimal.Decimal
	Discount        decimal.Decimal
	GrandTotal      decimal.Decimal
	RefundedAmount  decimal.Decimal
	CouponCode      *string
	TrackingNumber  *string
	CancelReason    *string
	Items           []OrderItemView
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OrderListItem struct {
	ID            uuid.UUID
	Number        string
	Status        string
	PaymentStatus string
	GrandTotal    decimal.Decimal
	ItemCount     int32
	CreatedAt     time.Time
}

type TransactionView struct {
	ID           uuid.UUID
	Direction    string
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	RefType      string
	RefID        *uuid.UUID
	Status       string
	Description  string
	CreatedAt    time.Time
}

type WalletView struct {
	ID           uuid.UUID
	Balance      decimal.Decimal
	Currency     string
	Status       string
	Transactions []TransactionView
}

type CartItemView struct {
	VariantID   uuid.UUID
	SKU         string
	ProductName string
	Quantity    int32
	UnitPrice   decimal.Decimal
	Subtotal    decimal.Decimal
}

type CartView struct {
	ID         uuid.UUID
	UserID     uuid.UUID
	Items      []CartItemView
	CouponCode *string
	Discount   decimal.Decimal
	Total      decimal.Decimal
	UpdatedAt  time.Time
}
