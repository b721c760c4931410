package repository

import (
	"context"

	"shopcore/internal/domain/coupon"
	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type CouponRepository struct {
	db db.DBTX
}

func NewCouponRepository(db db.DBTX) *CouponRepository {
	return &CouponRepository{db: db}
}

const findUserCouponSQL = `
SELECT id, campaign_id, user_id, code, usage_count
FROM user_coupons
WHERE user_id = $1 AND code = $2`

func (r *CouponRepository) FindUserCouponByCode(ctx context.Context, userID uuid.UUID, code string) (*coupon.UserCoupon, error) {
	normalized, err := coupon.NewCode(code)
	if err != nil {
		return nil, infra.WrapRepoErr("malformed coupon code", err, infra.KindNotFound)
	}

	var (
		id, campaignID, uid pgtype.UUID
		storedCode          pgtype.Text
		usageCount          int32
	)
	err = r.db.QueryRow(ctx, findUserCouponSQL, pgconv.UUIDToPgtype(userID), pgconv.StringToPgtype(normalized.String())).
		Scan(&id, &campaignID, &uid, &storedCode, &usageCount)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("user coupon not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find user coupon", err)
	}

	return coupon.NewUserCoupon(
		uuid.UUID(id.Bytes),
		uuid.UUID(campaignID.Bytes),
		uuid.UUID(uid.Bytes),
		coupon.Code(storedCode.String),
		usageCount,
	), nil
}

const findCampaignSQL = `
SELECT id, name, discount_kind, discount_value, min_purchase,
       valid_from, valid_to, max_global_usage, max_usage_per_user, global_usage
FROM coupon_campaigns
WHERE id = $1`

const findCampaignVariantsSQL = `
SELECT variant_id FROM campaign_variants WHERE campaign_id = $1`

func (r *CouponRepository) FindCampaignByID(ctx context.Context, id uuid.UUID) (*coupon.Campaign, error) {
	var (
		cid                               pgtype.UUID
		name, discountKind                pgtype.Text
		discountValue, minPurchase        pgtype.Numeric
		validFrom, validTo                pgtype.Timestamptz
		maxGlobal, maxPerUser, globalUsed int32
	)
	err := r.db.QueryRow(ctx, findCampaignSQL, pgconv.UUIDToPgtype(id)).Scan(
		&cid, &name, &discountKind, &discountValue, &minPurchase,
		&validFrom, &validTo, &maxGlobal, &maxPerUser, &globalUsed,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("campaign not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find campaign", err)
	}

	value, err := pgconv.DecimalFromNumeric(discountValue)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid discount value", err)
	}
	minP, err := pgconv.DecimalFromNumeric(minPurchase)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid minimum purchase", err)
	}
	discount, err := coupon.NewDiscount(coupon.DiscountKind(discountKind.String), value)
	if err != nil {
		return nil, infra.WrapRepoErr("stored discount is invalid", err)
	}

	variantIDs, err := r.findCampaignVariants(ctx, id)
	if err != nil {
		return nil, err
	}

	campaign, err := coupon.NewCampaign(
		uuid.UUID(cid.Bytes),
		name.String,
		discount,
		minP,
		pgconv.TimePtrFromPgtype(validFrom),
		pgconv.TimePtrFromPgtype(validTo),
		maxGlobal, maxPerUser, globalUsed,
		variantIDs,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("stored campaign is invalid", err)
	}
	return campaign, nil
}

func (r *CouponRepository) findCampaignVariants(ctx context.Context, campaignID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.db.Query(ctx, findCampaignVariantsSQL, pgconv.UUIDToPgtype(campaignID))
	if err != nil {
		return nil, infra.WrapRepoErr("failed to find campaign variants", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var vid pgtype.UUID
		if err := rows.Scan(&vid); err != nil {
			return nil, infra.WrapRepoErr("failed to scan campaign variant", err)
		}
		ids = append(ids, uuid.UUID(vid.Bytes))
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate campaign variants", err)
	}
	return ids, nil
}

const incrementUserUsageSQL = `
UPDATE user_coupons uc
SET usage_count = uc.usage_count + 1
FROM coupon_campaigns cc
WHERE uc.id = $1 AND cc.id = uc.campaign_id
  AND uc.usage_count < cc.max_usage_per_user`

const incrementGlobalUsageSQL = `
UPDATE coupon_campaigns
SET global_usage = global_usage + 1
WHERE id = $1 AND global_usage < max_global_usage`

// IncrementUsage is the authoritative cap enforcement: both counters move
// through cap-guarded conditional updates, so two checkouts racing for the
// last slot cannot both succeed.
func (r *CouponRepository) IncrementUsage(ctx context.Context, userCouponID, campaignID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, incrementUserUsageSQL, pgconv.UUIDToPgtype(userCouponID))
	if err != nil {
		return infra.WrapRepoErr("failed to increment user coupon usage", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("per-user usage cap reached", nil, infra.KindConflict)
	}

	tag, err = r.db.Exec(ctx, incrementGlobalUsageSQL, pgconv.UUIDToPgtype(campaignID))
	if err != nil {
		return infra.WrapRepoErr("failed to increment campaign usage", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("campaign usage cap reached", nil, infra.KindConflict)
	}
	return nil
}

const decrementUserUsageSQL = `
UPDATE user_coupons
SET usage_count = usage_count - 1
WHERE id = $1 AND usage_count > 0`

const decrementGlobalUsageSQL = `
UPDATE coupon_campaigns
SET global_usage = global_usage - 1
WHERE id = $1 AND global_usage > 0`

// DecrementUsage floors both counters at zero; a counter already at zero is
// left untouched rather than treated as an error.
func (r *CouponRepository) DecrementUsage(ctx context.Context, userCouponID, campaignID uuid.UUID) error {
	if _, err := r.db.Exec(ctx, decrementUserUsageSQL, pgconv.UUIDToPgtype(userCouponID)); err != nil {
		return infra.WrapRepoErr("failed to decrement user coupon usage", err)
	}
	if _, err := r.db.Exec(ctx, decrementGlobalUsageSQL, pgconv.UUIDToPgtype(campaignID)); err != nil {
		return infra.WrapRepoErr("failed to decrement campaign usage", err)
	}
	return nil
}
