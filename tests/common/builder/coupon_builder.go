//go:build unit || e2e

package builder

import (
	"time"

	domcoupon "shopcore/internal/domain/coupon"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CouponBuilder struct {
	CampaignID           uuid.UUID
	Name                 string
	DiscountKind         domcoupon.DiscountKind
	DiscountValue        decimal.Decimal
	MinPurchase          decimal.Decimal
	ValidFrom            *time.Time
	ValidTo              *time.Time
	MaxGlobalUsage       int32
	MaxUsagePerUser      int32
	GlobalUsage          int32
	ApplicableVariantIDs []uuid.UUID

	UserCouponID uuid.UUID
	UserID       uuid.UUID
	Code         string
	UsageCount   int32
}

func NewCouponBuilder() *CouponBuilder {
	return &CouponBuilder{
		CampaignID:      uuid.New(),
		Name:            "Autumn promo",
		DiscountKind:    domcoupon.DiscountFixed,
		DiscountValue:   decimal.NewFromInt(10),
		MinPurchase:     decimal.Zero,
		MaxGlobalUsage:  100,
		MaxUsagePerUser: 1,
		GlobalUsage:     0,
		UserCouponID:    uuid.New(),
		UserID:          uuid.New(),
		Code:            "SAVE10",
		UsageCount:      0,
	}
}

func (b *CouponBuilder) With(mutate func(*CouponBuilder)) *CouponBuilder {
	mutate(b)
	return b
}

// Build methods
func (b *CouponBuilder) BuildCampaign() (*domcoupon.Campaign, error) {
	discount, err := domcoupon.NewDiscount(b.DiscountKind, b.DiscountValue)
	if err != nil {
		return nil, err
	}
	return domcoupon.NewCampaign(
		b.CampaignID, b.Name, discount, b.MinPurchase,
		b.ValidFrom, b.ValidTo,
		b.MaxGlobalUsage, b.MaxUsagePerUser, b.GlobalUsage,
		b.ApplicableVariantIDs,
	)
}

func (b *CouponBuilder) BuildUserCoupon() (*domcoupon.UserCoupon, error) {
	code, err := domcoupon.NewCode(b.Code)
	if err != nil {
		return nil, err
	}
	return domcoupon.NewUserCoupon(b.UserCouponID, b.CampaignID, b.UserID, code, b.UsageCount), nil
}

// Fluent builder methods
func (b *CouponBuilder) WithDiscount(kind domcoupon.DiscountKind, value decimal.Decimal) *CouponBuilder {
	b.DiscountKind = kind
	b.DiscountValue = value
	return b
}

func (b *CouponBuilder) WithMinPurchase(min decimal.Decimal) *CouponBuilder {
	b.MinPurchase = min
	return b
}

func (b *CouponBuilder) WithValidity(from, to *time.Time) *CouponBuilder {
	b.ValidFrom = from
	b.ValidTo = to
	return b
}

func (b *CouponBuilder) WithCaps(global, perUser int32) *CouponBuilder {
	b.MaxGlobalUsage = global
	b.MaxUsagePerUser = perUser
	return b
}

func (b *CouponBuilder) WithGlobalUsage(used int32) *CouponBuilder {
	b.GlobalUsage = used
	return b
}

func (b *CouponBuilder) WithApplicableVariants(ids ...uuid.UUID) *CouponBuilder {
	b.ApplicableVariantIDs = ids
	return b
}

func (b *CouponBuilder) WithUserID(userID uuid.UUID) *CouponBuilder {
	b.UserID = userID
	return b
}

func (b *CouponBuilder) WithCode(code string) *CouponBuilder {
	b.Code = code
	return b
}

func (b *CouponBuilder) WithUsageCount(count int32) *CouponBuilder {
	b.UsageCount = count
	return b
}
