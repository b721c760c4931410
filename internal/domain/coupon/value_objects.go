package coupon

import (
	"errors"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCouponCode    = errors.New("invalid coupon code format")
	ErrInvalidDiscountValue = errors.New("invalid discount value")
)

var couponCodeRegex = regexp.MustCompile(`^[A-Z0-9]{3,20}$`)

type Code string

func NewCode(code string) (Code, error) {
	code = strings.TrimSpace(strings.ToUpper(code))
	if !couponCodeRegex.MatchString(code) {
		return Code(""), ErrInvalidCouponCode
	}
	return Code(code), nil
}

func (c Code) String() string {
	return string(c)
}

type DiscountKind string

const (
	DiscountPercentage   DiscountKind = "PERCENTAGE"
	DiscountFixed        DiscountKind = "FIXED"
	DiscountFreeShipping DiscountKind = "FREE_SHIPPING"
)

func (k DiscountKind) IsValid() bool {
	switch k {
	case DiscountPercentage, DiscountFixed, DiscountFreeShipping:
		return true
	default:
		return false
	}
}

type Discount struct {
	kind  DiscountKind
	value decimal.Decimal
}

func NewDiscount(kind DiscountKind, value decimal.Decimal) (Discount, error) {
	switch kind {
	case DiscountPercentage:
		if value.LessThanOrEqual(decimal.Zero) || value.GreaterThan(decimal.NewFromInt(100)) {
			return Discount{}, ErrInvalidDiscountValue
		}
	case DiscountFixed:
		if value.LessThanOrEqual(decimal.Zero) {
			return Discount{}, ErrInvalidDiscountValue
		}
	case DiscountFreeShipping:
		value = decimal.Zero
	default:
		return Discount{}, ErrInvalidDiscountValue
	}
	return Discount{kind: kind, value: value}, nil
}

func (d Discount) Kind() DiscountKind {
	return d.kind
}

func (d Discount) Value() decimal.Decimal {
	return d.value
}

// AmountFor computes the discount granted against a cart subtotal and shipping
// charge. Fixed discounts never exceed the subtotal.
func (d Discount) AmountFor(subtotal, shipping decimal.Decimal) decimal.Decimal {
	switch d.kind {
	case DiscountPercentage:
		return subtotal.Mul(d.value).Div(decimal.NewFromInt(100)).Round(2)
	case DiscountFixed:
		if d.value.GreaterThan(subtotal) {
			return subtotal
		}
		return d.value
	case DiscountFreeShipping:
		return shipping
	default:
		return decimal.Zero
	}
}
