package errs

import "errors"

// Domain-specific sentinel errors shared across usecase layers
var (
	// Cart errors
	ErrCartNotFound       = errors.New("cart not found")
	ErrEmptyCart          = errors.New("cart is empty")
	ErrVariantNotFound    = errors.New("product variant not found")
	ErrVariantUnavailable = errors.New("product variant is not purchasable")

	// Order errors
	ErrOrderNotFound          = errors.New("order not found")
	ErrInvalidStateTransition = errors.New("invalid order state transition")
	ErrInsufficientStock      = errors.New("insufficient stock")
	ErrRefundExceedsTotal     = errors.New("refund amount exceeds refundable total")

	// Coupon errors
	ErrCouponNotFound            = errors.New("coupon not found")
	ErrCouponExpiredOrIneligible = errors.New("coupon expired or not eligible")
	ErrCouponLimitExceeded       = errors.New("coupon usage limit exceeded")

	// Wallet errors
	ErrWalletNotFound     = errors.New("wallet not found")
	ErrWalletNotActive    = errors.New("wallet is not active")
	ErrInsufficientFunds  = errors.New("insufficient wallet funds")
	ErrCurrencyMismatch   = errors.New("currency does not match the wallet")
	ErrWalletContention   = errors.New("wallet update contention")
	ErrTransactionTimeout = errors.New("transaction timed out")

	// Payment callback errors
	ErrInvalidCallbackSignature = errors.New("invalid callback signature")

	// Operation errors
	ErrDatabaseOperationFailed = errors.New("database operation failed")
)
