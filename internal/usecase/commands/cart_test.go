//go:build unit

package commands_test

import (
	"context"
	"testing"
	"time"

	"shopcore/internal/domain/coupon"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/commands"
	"shopcore/internal/usecase/shared"
	"shopcore/tests/common/builder"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (e *testEnv) seedVariant(price decimal.Decimal, purchasable bool) uuid.UUID {
	id := uuid.New()
	e.catalog.variants[id] = &shared.VariantSnapshot{
		VariantID:    id,
		SKU:          "SKU-MUG-WHT-L",
		ProductName:  "Stoneware Mug",
		OptionLabels: []string{"White", "Large"},
		Price:        price,
		Purchasable:  purchasable,
	}
	return id
}

func TestAddItem(t *testing.T) {
	ctx := context.Background()

	t.Run("creates the cart on first add and freezes the price", func(t *testing.T) {
		env := newTestEnv()
		variantID := env.seedVariant(decimal.NewFromFloat(12.50), true)

		view, err := env.carts.AddItem(ctx, env.userID, variantID, 2)
		require.NoError(t, err)

		require.Len(t, view.Items, 1)
		assert.Equal(t, variantID, view.Items[0].VariantID)
		assert.Equal(t, "SKU-MUG-WHT-L", view.Items[0].SKU)
		assert.Equal(t, int32(2), view.Items[0].Quantity)
		assert.True(t, view.Items[0].UnitPrice.Equal(decimal.NewFromFloat(12.50)))
		assert.True(t, view.Total.Equal(decimal.NewFromInt(25)))

		// a later catalog price change must not move the cart line
		env.catalog.variants[variantID].Price = decimal.NewFromInt(99)
		view, err = env.carts.AddItem(ctx, env.userID, variantID, 1)
		require.NoError(t, err)
		assert.Equal(t, int32(3), view.Items[0].Quantity)
		assert.True(t, view.Items[0].UnitPrice.Equal(decimal.NewFromFloat(12.50)))
	})

	t.Run("unknown variant", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.carts.AddItem(ctx, env.userID, uuid.New(), 1)
		require.ErrorIs(t, err, errs.ErrVariantNotFound)
	})

	t.Run("unpurchasable variant", func(t *testing.T) {
		env := newTestEnv()
		variantID := env.seedVariant(decimal.NewFromInt(20), false)

		_, err := env.carts.AddItem(ctx, env.userID, variantID, 1)
		require.ErrorIs(t, err, errs.ErrVariantUnavailable)
	})

	t.Run("non-positive quantity", func(t *testing.T) {
		env := newTestEnv()
		variantID := env.seedVariant(decimal.NewFromInt(20), true)

		_, err := env.carts.AddItem(ctx, env.userID, variantID, 0)
		require.Error(t, err)
	})
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("sets the absolute quantity", func(t *testing.T) {
		env := newTestEnv()
		cartB := env.seedCart(builder.NewCartBuilder(), 10)
		variantID := cartB.Items[0].VariantID

		view, err := env.carts.UpdateQuantity(ctx, env.userID, variantID, 5)
		require.NoError(t, err)
		assert.Equal(t, int32(5), view.Items[0].Quantity)
	})

	t.Run("zero removes the line", func(t *testing.T) {
		env := newTestEnv()
		cartB := env.seedCart(builder.NewCartBuilder(), 10)

		view, err := env.carts.UpdateQuantity(ctx, env.userID, cartB.Items[0].VariantID, 0)
		require.NoError(t, err)
		assert.Empty(t, view.Items)
	})

	t.Run("line not in the cart", func(t *testing.T) {
		env := newTestEnv()
		env.seedCart(builder.NewCartBuilder(), 10)

		_, err := env.carts.UpdateQuantity(ctx, env.userID, uuid.New(), 2)
		require.ErrorIs(t, err, errs.ErrVariantNotFound)
	})

	t.Run("no cart yet", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.carts.UpdateQuantity(ctx, env.userID, uuid.New(), 2)
		require.ErrorIs(t, err, errs.ErrCartNotFound)
	})
}

func TestRemoveItem(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the line", func(t *testing.T) {
		env := newTestEnv()
		cartB := env.seedCart(builder.NewCartBuilder(), 10)

		view, err := env.carts.RemoveItem(ctx, env.userID, cartB.Items[0].VariantID)
		require.NoError(t, err)
		assert.Empty(t, view.Items)
	})

	t.Run("line not in the cart", func(t *testing.T) {
		env := newTestEnv()
		env.seedCart(builder.NewCartBuilder(), 10)

		_, err := env.carts.RemoveItem(ctx, env.userID, uuid.New())
		require.ErrorIs(t, err, errs.ErrVariantNotFound)
	})
}

func TestApplyCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("eligible coupon stores code and discount", func(t *testing.T) {
		env := newTestEnv()
		env.seedCart(builder.NewCartBuilder(), 10)
		env.seedCoupon(builder.NewCouponBuilder().WithCode("SAVE10"))

		view, err := env.carts.ApplyCoupon(ctx, env.userID, "SAVE10")
		require.NoError(t, err)

		require.NotNil(t, view.CouponCode)
		assert.Equal(t, "SAVE10", *view.CouponCode)
		assert.True(t, view.Discount.Equal(decimal.NewFromInt(10)))
		assert.True(t, view.Total.Equal(decimal.NewFromInt(40)))
	})

	t.Run("percentage discount is computed from the subtotal", func(t *testing.T) {
		env := newTestEnv()
		env.seedCart(builder.NewCartBuilder(), 10)
		env.seedCoupon(builder.NewCouponBuilder().WithCode("SAVE15").WithDiscount(coupon.DiscountPercentage, decimal.NewFromInt(15)))

		view, err := env.carts.ApplyCoupon(ctx, env.userID, "SAVE15")
		require.NoError(t, err)
		assert.True(t, view.Discount.Equal(decimal.NewFromFloat(7.5)))
	})

	t.Run("coupon on an empty cart", func(t *testing.T) {
		env := newTestEnv()
		env.seedCart(builder.NewCartBuilder().WithNoItems(), 0)
		env.seedCoupon(builder.NewCouponBuilder().WithCode("SAVE10"))

		_, err := env.carts.ApplyCoupon(ctx, env.userID, "SAVE10")
		require.ErrorIs(t, err, errs.ErrEmptyCart)
	})

	t.Run("unknown code", func(t *testing.T) {
		env := newTestEnv()
		env.seedCart(builder.NewCartBuilder(), 10)

		_, err := env.carts.ApplyCoupon(ctx, env.userID, "NOPE")
		require.ErrorIs(t, err, errs.ErrCouponNotFound)

		var couponErr *commands.CouponRejectedError
		require.ErrorAs(t, err, &couponErr)
		assert.Equal(t, "NOPE", couponErr.Code)
	})

	t.Run("expired coupon", func(t *testing.T) {
		env := newTestEnv()
		env.seedCart(builder.NewCartBuilder(), 10)
		expired := env.clk.Now().Add(-time.Hour)
		env.seedCoupon(builder.NewCouponBuilder().WithCode("SAVE10").WithValidity(nil, &expired))

		_, err := env.carts.ApplyCoupon(ctx, env.userID, "SAVE10")
		require.ErrorIs(t, err, errs.ErrCouponExpiredOrIneligible)
	})

	t.Run("per-user cap already consumed", func(t *testing.T) {
		env := newTestEnv()
		env.seedCart(builder.NewCartBuilder(), 10)
		env.seedCoupon(builder.NewCouponBuilder().WithCode("SAVE10").WithUsageCount(1))

		_, err := env.carts.ApplyCoupon(ctx, env.userID, "SAVE10")
		require.ErrorIs(t, err, errs.ErrCouponLimitExceeded)
	})

	t.Run("subtotal below the minimum purchase", func(t *testing.T) {
		env := newTestEnv()
		env.seedCart(builder.NewCartBuilder(), 10)
		env.seedCoupon(builder.NewCouponBuilder().WithCode("SAVE10").WithMinPurchase(decimal.NewFromInt(60)))

		_, err := env.carts.ApplyCoupon(ctx, env.userID, "SAVE10")
		require.ErrorIs(t, err, errs.ErrCouponExpiredOrIneligible)
	})
}

func TestRemoveCoupon(t *testing.T) {
	ctx := context.Background()

	t.Run("restores the undiscounted total", func(t *testing.T) {
		env := newTestEnv()
		env.seedCart(
			builder.NewCartBuilder().
				WithCouponCode("SAVE10").
				WithDiscount(decimal.NewFromInt(10)),
			10,
		)

		view, err := env.carts.RemoveCoupon(ctx, env.userID)
		require.NoError(t, err)
		assert.Nil(t, view.CouponCode)
		assert.True(t, view.Discount.IsZero())
		assert.True(t, view.Total.Equal(decimal.NewFromInt(50)))
	})
}
