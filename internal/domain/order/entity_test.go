//go:build unit

package order_test

import (
	"strings"
	"testing"
	"time"

	"shopcore/internal/domain/order"
	"shopcore/tests/common/builder"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testCase struct {
	name   string
	mutate func(*builder.OrderBuilder)
	errIs  error
}

func TestOrder(t *testing.T) {
	t.Run("basic success case", func(t *testing.T) {
		actual, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)
		require.NotNil(t, actual)

		assert.NotEqual(t, uuid.Nil, actual.ID())
		assert.True(t, strings.HasPrefix(actual.Number().String(), "ORD-20260901-"))
		assert.Equal(t, order.StatusPending, actual.Status())
		assert.Equal(t, order.PaymentPending, actual.PaymentStatus())
		assert.True(t, actual.Totals().GrandTotal.Equal(decimal.NewFromInt(65)))
		assert.True(t, actual.RefundedAmount().IsZero())
		assert.Equal(t, actual.CreatedAt(), actual.UpdatedAt())
	})

	t.Run("creation validation", func(t *testing.T) {
		runCases(t, []testCase{
			{
				name:   "no items",
				mutate: func(b *builder.OrderBuilder) { b.WithNoItems() },
				errIs:  order.ErrNoItems,
			},
			{
				name: "item sum does not match subtotal",
				mutate: func(b *builder.OrderBuilder) {
					b.WithSubtotal(decimal.NewFromInt(999))
				},
				errIs: order.ErrTotalsMismatch,
			},
			{
				name: "negative discount",
				mutate: func(b *builder.OrderBuilder) {
					b.WithDiscount(decimal.NewFromInt(-1))
				},
				errIs: order.ErrNegativeAmount,
			},
			{
				name: "discount exceeding subtotal floors the total",
				mutate: func(b *builder.OrderBuilder) {
					b.WithDiscount(decimal.NewFromInt(70))
				},
			},
		})
	})

	t.Run("unique id and number per order", func(t *testing.T) {
		o1, err1 := builder.NewOrderBuilder().BuildDomain()
		o2, err2 := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err1)
		require.NoError(t, err2)

		assert.NotEqual(t, o1.ID(), o2.ID())
		assert.NotEqual(t, o1.Number(), o2.Number())
	})
}

func TestOrderItem(t *testing.T) {
	variantID := uuid.New()

	t.Run("subtotal is derived from quantity and unit price", func(t *testing.T) {
		item, err := order.NewItem(variantID, "SKU-1", "Mug", nil, 3, decimal.NewFromFloat(4.50))
		require.NoError(t, err)
		assert.True(t, item.Subtotal.Equal(decimal.NewFromFloat(13.50)))
	})

	t.Run("zero quantity is rejected", func(t *testing.T) {
		_, err := order.NewItem(variantID, "SKU-1", "Mug", nil, 0, decimal.NewFromInt(5))
		require.ErrorIs(t, err, order.ErrInvalidQuantity)
	})

	t.Run("negative unit price is rejected", func(t *testing.T) {
		_, err := order.NewItem(variantID, "SKU-1", "Mug", nil, 1, decimal.NewFromInt(-5))
		require.ErrorIs(t, err, order.ErrNegativeAmount)
	})
}

func TestStatusTransitions(t *testing.T) {
	cases := []struct {
		from    order.Status
		to      order.Status
		allowed bool
	}{
		{order.StatusPending, order.StatusProcessing, true},
		{order.StatusPending, order.StatusCancelled, true},
		{order.StatusPending, order.StatusShipped, false},
		{order.StatusPending, order.StatusDelivered, false},
		{order.StatusProcessing, order.StatusShipped, true},
		{order.StatusProcessing, order.StatusCancelled, true},
		{order.StatusProcessing, order.StatusDelivered, false},
		{order.StatusShipped, order.StatusDelivered, true},
		{order.StatusShipped, order.StatusCancelled, false},
		{order.StatusDelivered, order.StatusReturnRequested, true},
		{order.StatusDelivered, order.StatusShipped, false},
		{order.StatusReturnRequested, order.StatusReturned, true},
		{order.StatusCancelled, order.StatusPending, false},
		{order.StatusCancelled, order.StatusProcessing, false},
		{order.StatusReturned, order.StatusDelivered, false},
	}

	for _, c := range cases {
		name := string(c.from) + " to " + string(c.to)
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, c.allowed, c.from.CanTransitionTo(c.to))
		})
	}

	t.Run("terminal states", func(t *testing.T) {
		assert.True(t, order.StatusCancelled.IsTerminal())
		assert.True(t, order.StatusReturned.IsTerminal())
		assert.False(t, order.StatusDelivered.IsTerminal())
	})

	t.Run("transition mutates status and timestamp", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		later := o.CreatedAt().Add(time.Hour)
		require.NoError(t, o.Transition(order.StatusProcessing, later))
		assert.Equal(t, order.StatusProcessing, o.Status())
		assert.Equal(t, later, o.UpdatedAt())

		err = o.Transition(order.StatusDelivered, later)
		require.ErrorIs(t, err, order.ErrInvalidTransition)
		assert.Equal(t, order.StatusProcessing, o.Status())
	})
}

func TestOrderCancel(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	t.Run("cancellable before shipping", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, o.Cancel("changed my mind", now))
		assert.Equal(t, order.StatusCancelled, o.Status())
		require.NotNil(t, o.CancelReason())
		assert.Equal(t, "changed my mind", *o.CancelReason())
	})

	t.Run("second cancellation is rejected", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)

		require.NoError(t, o.Cancel("first", now))
		err = o.Cancel("second", now)
		require.ErrorIs(t, err, order.ErrInvalidTransition)
	})

	t.Run("shipped order cannot be cancelled", func(t *testing.T) {
		o := builder.NewOrderBuilder().BuildReconstructed(uuid.New(), order.StatusShipped, order.PaymentPaid)
		err := o.Cancel("too late", now)
		require.ErrorIs(t, err, order.ErrInvalidTransition)
	})
}

func TestRecordRefund(t *testing.T) {
	now := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)

	newPaidOrder := func(t *testing.T) *order.Order {
		t.Helper()
		o := builder.NewOrderBuilder().BuildReconstructed(uuid.New(), order.StatusDelivered, order.PaymentPaid)
		return o
	}

	t.Run("partial refund accumulates", func(t *testing.T) {
		o := newPaidOrder(t)

		require.NoError(t, o.RecordRefund(decimal.NewFromInt(20), now))
		assert.Equal(t, order.PaymentPartiallyRefunded, o.PaymentStatus())
		assert.True(t, o.RefundedAmount().Equal(decimal.NewFromInt(20)))
		assert.True(t, o.RefundableAmount().Equal(decimal.NewFromInt(45)))

		require.NoError(t, o.RecordRefund(decimal.NewFromInt(45), now))
		assert.Equal(t, order.PaymentRefunded, o.PaymentStatus())
		assert.True(t, o.RefundableAmount().IsZero())
	})

	t.Run("refund beyond grand total is rejected", func(t *testing.T) {
		o := newPaidOrder(t)
		err := o.RecordRefund(decimal.NewFromInt(66), now)
		require.Error(t, err)
		assert.True(t, o.RefundedAmount().IsZero())
	})

	t.Run("non-positive refund is rejected", func(t *testing.T) {
		o := newPaidOrder(t)
		require.Error(t, o.RecordRefund(decimal.Zero, now))
	})

	t.Run("unpaid orders have nothing refundable", func(t *testing.T) {
		o, err := builder.NewOrderBuilder().BuildDomain()
		require.NoError(t, err)
		assert.True(t, o.RefundableAmount().IsZero())
	})

	t.Run("cash on delivery has no wallet leg to refund", func(t *testing.T) {
		o := builder.NewOrderBuilder().
			WithPaymentMethod(order.PaymentMethodCashOnDelivery).
			BuildReconstructed(uuid.New(), order.StatusDelivered, order.PaymentPaid)
		assert.True(t, o.RefundableAmount().IsZero())
		assert.False(t, o.IsWalletPaid())
	})
}

func TestTotals(t *testing.T) {
	t.Run("grand total is derived", func(t *testing.T) {
		totals, err := order.NewTotals(
			decimal.NewFromInt(50), decimal.NewFromInt(10),
			decimal.NewFromInt(5), decimal.NewFromInt(15),
		)
		require.NoError(t, err)
		assert.True(t, totals.GrandTotal.Equal(decimal.NewFromInt(50)))
		assert.True(t, totals.Reconciles())
	})

	t.Run("grand total floors at zero", func(t *testing.T) {
		totals, err := order.NewTotals(
			decimal.NewFromInt(10), decimal.Zero,
			decimal.Zero, decimal.NewFromInt(50),
		)
		require.NoError(t, err)
		assert.True(t, totals.GrandTotal.IsZero())
	})

	t.Run("negative legs are rejected", func(t *testing.T) {
		_, err := order.NewTotals(
			decimal.NewFromInt(-1), decimal.Zero,
			decimal.Zero, decimal.Zero,
		)
		require.ErrorIs(t, err, order.ErrNegativeAmount)
	})
}

func TestAddress(t *testing.T) {
	t.Run("required fields", func(t *testing.T) {
		_, err := order.NewAddress("", "1 Main St", "", "Springfield", "IL", "62701", "US")
		require.ErrorIs(t, err, order.ErrIncompleteAddress)

		_, err = order.NewAddress("Alex Doe", "1 Main St", "", "Springfield", "IL", "", "US")
		require.ErrorIs(t, err, order.ErrIncompleteAddress)
	})

	t.Run("fields are trimmed", func(t *testing.T) {
		a, err := order.NewAddress("  Alex Doe  ", " 1 Main St ", "", "Springfield", "", "62701", "US")
		require.NoError(t, err)
		assert.Equal(t, "Alex Doe", a.FullName)
		assert.Equal(t, "1 Main St", a.Line1)
	})
}

func runCases(t *testing.T, cases []testCase) {
	t.Helper()
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			actual, err := builder.NewOrderBuilder().With(c.mutate).BuildDomain()

			if c.errIs == nil {
				require.NotNil(t, actual)
				require.NoError(t, err)
			} else {
				require.Nil(t, actual)
				require.Error(t, err)
				require.ErrorIs(t, err, c.errIs)
			}
		})
	}
}
