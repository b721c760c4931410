package request

import (
	"strings"

	"github.com/google/uuid"
)

type AddCartItemRequest struct {
	VariantID uuid.UUID `json:"variant_id" binding:"required"`
	Quantity  int32     `json:"quantity" binding:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	// Zero removes the line.
	Quantity int32 `json:"quantity" binding:"gte=0"`
}

type ApplyCouponRequest struct {
	Code string `json:"code" binding:"required"`
}

func (r ApplyCouponRequest) NormalizedCode() string {
	return strings.ToUpper(strings.TrimSpace(r.Code))
}
