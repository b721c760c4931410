package response

import (
	"time"

	"shopcore/internal/usecase/queries"

	"github.com/google/uuid"
)

type CartItemResponse struct {
	VariantID   uuid.UUID `json:"variantId"`
	SKU         string    `json:"sku"`
	ProductName string    `json:"productName"`
	Quantity    int32     `json:"quantity"`
	UnitPrice   string    `json:"unitPrice"`
	Subtotal    string    `json:"subtotal"`
}

type CartResponse struct {
	ID         uuid.UUID          `json:"id"`
	Items      []CartItemResponse `json:"items"`
	CouponCode *string            `json:"couponCode,omitempty"`
	Discount   string             `json:"discount"`
	Total      string             `json:"total"`
	UpdatedAt  time.Time          `json:"updatedAt"`
}

func FromCartView(v *queries.CartView) *CartResponse {
	items := make([]CartItemResponse, len(v.Items))
	for i, it := range v.Items {
		items[i] = CartItemResponse{
			VariantID:   it.VariantID,
			SKU:         it.SKU,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice.String(),
			Subtotal:    it.Subtotal.String(),
		}
	}
	return &CartResponse{
		ID:         v.ID,
		Items:      items,
		CouponCode: v.CouponCode,
		Discount:   v.Discount.String(),
		Total:      v.Total.String(),
		UpdatedAt:  v.UpdatedAt,
	}
}
