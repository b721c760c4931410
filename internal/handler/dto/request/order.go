package request

import (
	"strings"

	"shopcore/internal/domain/order"
)

type AddressRequest struct {
	FullName   string `json:"full_name" binding:"required"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city" binding:"required"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postal_code" binding:"required"`
	Country    string `json:"country" binding:"required"`
}

func (r AddressRequest) ToDomain() (order.Address, error) {
	return order.NewAddress(r.FullName, r.Line1, r.Line2, r.City, r.State, r.PostalCode, r.Country)
}

type PlaceOrderRequest struct {
	ShippingAddress AddressRequest `json:"shipping_address" binding:"required"`
	// Billing address defaults to the shipping address when omitted.
	BillingAddress   *AddressRequest `json:"billing_address,omitempty"`
	PaymentMethod    string          `json:"payment_method" binding:"required"`
	PaymentMethodRef *string         `json:"payment_method_ref,omitempty"`
}

func (r PlaceOrderRequest) BillingOrShipping() AddressRequest {
	if r.BillingAddress != nil {
		return *r.BillingAddress
	}
	return r.ShippingAddress
}

type CancelOrderRequest struct {
	Reason string `json:"reason,omitempty"`
}

func (r CancelOrderRequest) TrimmedReason() string {
	return strings.TrimSpace(r.Reason)
}

type RefundOrderRequest struct {
	// Amount is a decimal string; empty means a full refund of the
	// remaining refundable amount.
	Amount *string `json:"amount,omitempty"`
	Reason string  `json:"reason,omitempty"`
}

type AdvanceStatusRequest struct {
	Status string `json:"status" binding:"required"`
}
