package commands

import (
	"fmt"

	"shopcore/internal/pkg/errs"

	"github.com/google/uuid"
)

// InsufficientStockError names the first offending variant so the client can
// correct the cart instead of retrying blindly.
type InsufficientStockError struct {
	VariantID uuid.UUID
	Requested int32
	Available int32
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for variant %s: requested %d, available %d",
		e.VariantID, e.Requested, e.Available)
}

func (e *InsufficientStockError) Unwrap() error {
	return errs.ErrInsufficientStock
}

// CouponRejectedError carries the coupon code alongside the underlying
// sentinel (expired/ineligible or limit exceeded).
type CouponRejectedError struct {
	Code   string
	Reason error
}

func (e *CouponRejectedError) Error() string {
	return fmt.Sprintf("coupon %s rejected: %s", e.Code, e.Reason)
}

func (e *CouponRejectedError) Unwrap() error {
	return e.Reason
}
