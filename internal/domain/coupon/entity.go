package coupon

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrCouponExpired     = errors.New("coupon has expired")
	ErrCouponNotYetValid = errors.New("coupon is not yet valid")
	ErrMinPurchaseNotMet = errors.New("minimum purchase amount not met")
	ErrNotApplicable     = errors.New("coupon is not applicable to the cart contents")
	ErrGlobalCapReached  = errors.New("campaign global usage cap reached")
	ErrUserCapReached    = errors.New("per-user usage cap reached")
)

// Campaign is the discount rule shared by all redemption codes issued for it.
type Campaign struct {
	id              uuid.UUID
	name            string
	discount        Discount
	minPurchase     decimal.Decimal
	validFrom       *time.Time
	validTo         *time.Time
	maxGlobalUsage  int32
	maxUsagePerUser int32
	globalUsage     int32
	// Empty means the campaign applies to the whole catalog.
	applicableVariantIDs map[uuid.UUID]struct{}
}

func NewCampaign(
	id uuid.UUID,
	name string,
	discount Discount,
	minPurchase decimal.Decimal,
	validFrom, validTo *time.Time,
	maxGlobalUsage, maxUsagePerUser int32,
	globalUsage int32,
	applicableVariantIDs []uuid.UUID,
) (*Campaign, error) {
	if minPurchase.IsNegative() {
		return nil, ErrInvalidDiscountValue
	}
	if maxGlobalUsage <= 0 || maxUsagePerUser <= 0 {
		return nil, errors.New("usage caps must be positive")
	}

	var scope map[uuid.UUID]struct{}
	if len(applicableVariantIDs) > 0 {
		scope = make(map[uuid.UUID]struct{}, len(applicableVariantIDs))
		for _, vid := range applicableVariantIDs {
			scope[vid] = struct{}{}
		}
	}

	return &Campaign{
		id:                   id,
		name:                 name,
		discount:             discount,
		minPurchase:          minPurchase,
		validFrom:            validFrom,
		validTo:              validTo,
		maxGlobalUsage:       maxGlobalUsage,
		maxUsagePerUser:      maxUsagePerUser,
		globalUsage:          globalUsage,
		applicableVariantIDs: scope,
	}, nil
}

func (c *Campaign) IsValidAt(t time.Time) bool {
	if c.validFrom != nil && t.Before(*c.validFrom) {
		return false
	}
	if c.validTo != nil && t.After(*c.validTo) {
		return false
	}
	return true
}

// ValidateFor is the read-only eligibility check: validity window, minimum
// purchase, catalog scope, and both usage caps. It takes no locks; the
// authoritative cap enforcement happens in the atomic increment at checkout.
func (c *Campaign) ValidateFor(now time.Time, cartSubtotal decimal.Decimal, variantIDs []uuid.UUID, userUsage int32) error {
	if c.validFrom != nil && now.Before(*c.validFrom) {
		return ErrCouponNotYetValid
	}
	if c.validTo != nil && now.After(*c.validTo) {
		return ErrCouponExpired
	}
	if cartSubtotal.LessThan(c.minPurchase) {
		return ErrMinPurchaseNotMet
	}
	if c.applicableVariantIDs != nil {
		applicable := false
		for _, vid := range variantIDs {
			if _, ok := c.applicableVariantIDs[vid]; ok {
				applicable = true
				break
			}
		}
		if !applicable {
			return ErrNotApplicable
		}
	}
	if c.globalUsage >= c.maxGlobalUsage {
		return ErrGlobalCapReached
	}
	if userUsage >= c.maxUsagePerUser {
		return ErrUserCapReached
	}
	return nil
}

func (c *Campaign) DiscountFor(subtotal, shipping decimal.Decimal) decimal.Decimal {
	return c.discount.AmountFor(subtotal, shipping)
}

func (c *Campaign) ID() uuid.UUID                { return c.id }
func (c *Campaign) Name() string                 { return c.name }
func (c *Campaign) Discount() Discount           { return c.discount }
func (c *Campaign) MinPurchase() decimal.Decimal { return c.minPurchase }
func (c *Campaign) ValidFrom() *time.Time        { return c.validFrom }
func (c *Campaign) ValidTo() *time.Time          { return c.validTo }
func (c *Campaign) MaxGlobalUsage() int32        { return c.maxGlobalUsage }
func (c *Campaign) MaxUsagePerUser() int32       { return c.maxUsagePerUser }
func (c *Campaign) GlobalUsage() int32           { return c.globalUsage }

// UserCoupon binds a campaign to one user through a redemption code. The
// redeemed flag is always derived from the usage count against the campaign
// cap, never stored independently, so reversals stay consistent.
type UserCoupon struct {
	id         uuid.UUID
	campaignID uuid.UUID
	userID     uuid.UUID
	code       Code
	usageCount int32
}

func NewUserCoupon(id, campaignID, userID uuid.UUID, code Code, usageCount int32) *UserCoupon {
	return &UserCoupon{
		id:         id,
		campaignID: campaignID,
		userID:     userID,
		code:       code,
		usageCount: usageCount,
	}
}

func (uc *UserCoupon) IsRedeemed(maxUsagePerUser int32) bool {
	return uc.usageCount >= maxUsagePerUser
}

func (uc *UserCoupon) ID() uuid.UUID         { return uc.id }
func (uc *UserCoupon) CampaignID() uuid.UUID { return uc.campaignID }
func (uc *UserCoupon) UserID() uuid.UUID     { return uc.userID }
func (uc *UserCoupon) Code() Code            { return uc.code }
func (uc *UserCoupon) UsageCount() int32     { return uc.usageCount }
