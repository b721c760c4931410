//go:build unit

package cart_test

import (
	"testing"
	"time"

	"shopcore/internal/domain/cart"
	"shopcore/tests/common/builder"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC)

func snapshot(price int64) cart.VariantSnapshot {
	return cart.VariantSnapshot{
		VariantID:    uuid.New(),
		SKU:          "SKU-MUG-BLK",
		ProductName:  "Stoneware Mug",
		OptionLabels: []string{"Black"},
		Price:        decimal.NewFromInt(price),
	}
}

func TestAddItem(t *testing.T) {
	t.Run("adds a new line with the snapshotted price", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		v := snapshot(15)

		require.NoError(t, c.AddItem(v, 2, now))
		require.Len(t, c.Items(), 1)
		assert.Equal(t, v.VariantID, c.Items()[0].VariantID)
		assert.True(t, c.Items()[0].UnitPrice.Equal(decimal.NewFromInt(15)))
		assert.True(t, c.Total().Equal(decimal.NewFromInt(30)))
	})

	t.Run("adding the same variant merges into one line", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		v := snapshot(15)

		require.NoError(t, c.AddItem(v, 2, now))
		require.NoError(t, c.AddItem(v, 3, now))
		require.Len(t, c.Items(), 1)
		assert.Equal(t, int32(5), c.Items()[0].Quantity)
	})

	t.Run("price changes after adding do not reprice the line", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		v := snapshot(15)
		require.NoError(t, c.AddItem(v, 1, now))

		v.Price = decimal.NewFromInt(99)
		require.NoError(t, c.AddItem(v, 1, now))

		assert.True(t, c.Items()[0].UnitPrice.Equal(decimal.NewFromInt(15)))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		c := cart.New(uuid.New(), now)
		require.ErrorIs(t, c.AddItem(snapshot(15), 0, now), cart.ErrInvalidQuantity)
		require.ErrorIs(t, c.AddItem(snapshot(15), -1, now), cart.ErrInvalidQuantity)
	})
}

func TestUpdateQuantity(t *testing.T) {
	t.Run("sets absolute quantity", func(t *testing.T) {
		b := builder.NewCartBuilder()
		c := b.BuildDomain()
		variantID := b.Items[0].VariantID

		require.NoError(t, c.UpdateQuantity(variantID, 5, now))
		assert.Equal(t, int32(5), c.Items()[0].Quantity)
		assert.True(t, c.Total().Equal(decimal.NewFromInt(125)))
	})

	t.Run("zero removes the line", func(t *testing.T) {
		b := builder.NewCartBuilder()
		c := b.BuildDomain()

		require.NoError(t, c.UpdateQuantity(b.Items[0].VariantID, 0, now))
		assert.True(t, c.IsEmpty())
	})

	t.Run("unknown variant", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		err := c.UpdateQuantity(uuid.New(), 2, now)
		require.ErrorIs(t, err, cart.ErrItemNotFound)
	})

	t.Run("negative quantity", func(t *testing.T) {
		b := builder.NewCartBuilder()
		c := b.BuildDomain()
		err := c.UpdateQuantity(b.Items[0].VariantID, -1, now)
		require.ErrorIs(t, err, cart.ErrInvalidQuantity)
	})
}

func TestRemoveItem(t *testing.T) {
	t.Run("removes an existing line", func(t *testing.T) {
		b := builder.NewCartBuilder()
		c := b.BuildDomain()

		require.NoError(t, c.RemoveItem(b.Items[0].VariantID, now))
		assert.True(t, c.IsEmpty())
		assert.True(t, c.Total().IsZero())
	})

	t.Run("unknown variant", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		require.ErrorIs(t, c.RemoveItem(uuid.New(), now), cart.ErrItemNotFound)
	})
}

func TestCoupon(t *testing.T) {
	t.Run("discount reduces the total", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()

		c.ApplyCoupon("SAVE10", decimal.NewFromInt(10), now)
		require.NotNil(t, c.CouponCode())
		assert.Equal(t, "SAVE10", *c.CouponCode())
		assert.True(t, c.Total().Equal(decimal.NewFromInt(40)))
	})

	t.Run("total floors at zero", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()

		c.ApplyCoupon("BIGONE", decimal.NewFromInt(500), now)
		assert.True(t, c.Total().IsZero())
	})

	t.Run("removing the coupon restores the total", func(t *testing.T) {
		c := builder.NewCartBuilder().BuildDomain()
		c.ApplyCoupon("SAVE10", decimal.NewFromInt(10), now)

		c.RemoveCoupon(now)
		assert.Nil(t, c.CouponCode())
		assert.True(t, c.Discount().IsZero())
		assert.True(t, c.Total().Equal(decimal.NewFromInt(50)))
	})
}

func TestClear(t *testing.T) {
	c := builder.NewCartBuilder().WithCouponCode("SAVE10").WithDiscount(decimal.NewFromInt(10)).BuildDomain()

	c.Clear(now)
	assert.True(t, c.IsEmpty())
	assert.Nil(t, c.CouponCode())
	assert.True(t, c.Discount().IsZero())
	assert.True(t, c.Total().IsZero())
}

func TestVariantIDs(t *testing.T) {
	c := cart.New(uuid.New(), now)
	v1, v2 := snapshot(10), snapshot(20)
	require.NoError(t, c.AddItem(v1, 1, now))
	require.NoError(t, c.AddItem(v2, 1, now))

	assert.Equal(t, []uuid.UUID{v1.VariantID, v2.VariantID}, c.VariantIDs())
}
