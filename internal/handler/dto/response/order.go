package response

import (
	"time"

	"shopcore/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jinzhu/copier"
)

// Monetary amounts serialize as decimal strings to keep wire precision.
type OrderItemResponse struct {
	VariantID    uuid.UUID `json:"variantId"`
	SKU          string    `json:"sku"`
	ProductName  string    `json:"productName"`
	OptionLabels []string  `json:"optionLabels,omitempty"`
	Quantity     int32     `json:"quantity"`
	UnitPrice    string    `json:"unitPrice"`
	Subtotal     string    `json:"subtotal"`
}

type AddressResponse struct {
	FullName   string `json:"fullName"`
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	State      string `json:"state,omitempty"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
}

type OrderResponse struct {
	ID              uuid.UUID           `json:"id"`
	Number          string              `json:"number"`
	Status          string              `json:"status"`
	PaymentStatus   string              `json:"paymentStatus"`
	PaymentMethod   string              `json:"paymentMethod"`
	ShippingAddress AddressResponse     `json:"shippingAddress"`
	BillingAddress  AddressResponse     `json:"billingAddress"`
	Subtotal        string              `json:"subtotal"`
	Shipping        string              `json:"shipping"`
	Tax             string              `json:"tax"`
	Discount        string              `json:"discount"`
	GrandTotal      string              `json:"grandTotal"`
	RefundedAmount  string              `json:"refundedAmount"`
	CouponCode      *string             `json:"couponCode,omitempty"`
	TrackingNumber  *string             `json:"trackingNumber,omitempty"`
	CancelReason    *string             `json:"cancelReason,omitempty"`
	Items           []OrderItemResponse `json:"items"`
	CreatedAt       time.Time           `json:"createdAt"`
	UpdatedAt       time.Time           `json:"updatedAt"`
}

type OrderListResponse struct {
	ID            uuid.UUID `json:"id"`
	Number        string    `json:"number"`
	Status        string    `json:"status"`
	PaymentStatus string    `json:"paymentStatus"`
	GrandTotal    string    `json:"grandTotal"`
	ItemCount     int32     `json:"itemCount"`
	CreatedAt     time.Time `json:"createdAt"`
}

func FromOrderView(v *queries.OrderView) *OrderResponse {
	items := make([]OrderItemResponse, len(v.Items))
	for i, it := range v.Items {
		items[i] = OrderItemResponse{
			VariantID:    it.VariantID,
			SKU:          it.SKU,
			ProductName:  it.ProductName,
			OptionLabels: it.OptionLabels,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice.String(),
			Subtotal:     it.Subtotal.String(),
		}
	}

	var shipping, billing AddressResponse
	_ = copier.Copy(&shipping, &v.ShippingAddress)
	_ = copier.Copy(&billing, &v.BillingAddress)

	return &OrderResponse{
		ID:              v.ID,
		Number:          v.Number,
		Status:          v.Status,
		PaymentStatus:   v.PaymentStatus,
		PaymentMethod:   v.PaymentMethod,
		ShippingAddress: shipping,
		BillingAddress:  billing,
		Subtotal:        v.Subtotal.String(),
		Shipping:        v.Shipping.String(),
		Tax:             v.Tax.String(),
		Discount:        v.Discount.String(),
		GrandTotal:      v.GrandTotal.String(),
		RefundedAmount:  v.RefundedAmount.String(),
		CouponCode:      v.CouponCode,
		TrackingNumber:  v.TrackingNumber,
		CancelReason:    v.CancelReason,
		Items:           items,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

func FromOrderListItem(v *queries.OrderListItem) *OrderListResponse {
	return &OrderListResponse{
		ID:            v.ID,
		Number:        v.Number,
		Status:        v.Status,
		PaymentStatus: v.PaymentStatus,
		GrandTotal:    v.GrandTotal.String(),
		ItemCount:     v.ItemCount,
		CreatedAt:     v.CreatedAt,
	}
}
