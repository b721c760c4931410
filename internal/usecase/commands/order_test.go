//go:build unit

package commands_test

import (
	"context"
	"testing"

	"shopcore/internal/domain/order"
	"shopcore/internal/domain/wallet"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/commands"
	"shopcore/tests/common/builder"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedOrder installs a reconstructed order for the environment user and stocks
// every line's variant as if it had been reserved at checkout.
func (e *testEnv) seedOrder(b *builder.OrderBuilder, status order.Status, payStatus order.PaymentStatus) *order.Order {
	b.WithUserID(e.userID)
	o := b.BuildReconstructed(uuid.New(), status, payStatus)
	e.tx.orderRepo.byID[o.ID()] = o
	for _, it := range o.Items() {
		e.tx.inventoryRepo.available[it.VariantID] = 8
	}
	return o
}

func TestCancel(t *testing.T) {
	ctx := context.Background()

	t.Run("cancelling a wallet-paid order compensates everything", func(t *testing.T) {
		env := newTestEnv()
		env.tx.walletRepo.balance = decimal.NewFromInt(35)
		o := env.seedOrder(builder.NewOrderBuilder().WithCouponCode("SAVE10"), order.StatusPending, order.PaymentPaid)
		env.seedCoupon(builder.NewCouponBuilder().WithCode("SAVE10").WithUsageCount(1))
		variantID := o.Items()[0].VariantID

		view, err := env.orders.Cancel(ctx, o.ID(), env.userID, "changed my mind")
		require.NoError(t, err)

		assert.Equal(t, order.StatusCancelled.String(), view.Status)
		assert.Equal(t, order.PaymentRefunded.String(), view.PaymentStatus)
		require.NotNil(t, view.CancelReason)
		assert.Equal(t, "changed my mind", *view.CancelReason)

		// inventory restored, coupon usage reversed, wallet credited
		assert.Equal(t, int32(10), env.tx.inventoryRepo.available[variantID])
		assert.Equal(t, 1, env.tx.couponRepo.decrements)
		assert.True(t, env.tx.walletRepo.balance.Equal(decimal.NewFromInt(100)))
		require.NotNil(t, env.tx.walletRepo.lastTxn())
		assert.Equal(t, wallet.DirectionCredit, env.tx.walletRepo.lastTxn().Direction)
		assert.Contains(t, env.tx.auditRepo.actions(), "order.cancelled")
	})

	t.Run("cash on delivery cancellation skips the wallet", func(t *testing.T) {
		env := newTestEnv()
		o := env.seedOrder(
			builder.NewOrderBuilder().WithPaymentMethod(order.PaymentMethodCashOnDelivery),
			order.StatusProcessing, order.PaymentPending,
		)

		view, err := env.orders.Cancel(ctx, o.ID(), env.userID, "")
		require.NoError(t, err)

		assert.Equal(t, order.StatusCancelled.String(), view.Status)
		assert.Empty(t, env.tx.walletRepo.txns)
		assert.True(t, env.tx.walletRepo.balance.Equal(decimal.NewFromInt(100)))
	})

	t.Run("cancelling twice fails without re-applying compensation", func(t *testing.T) {
		env := newTestEnv()
		env.tx.walletRepo.balance = decimal.NewFromInt(35)
		o := env.seedOrder(builder.NewOrderBuilder(), order.StatusPending, order.PaymentPaid)
		variantID := o.Items()[0].VariantID

		_, err := env.orders.Cancel(ctx, o.ID(), env.userID, "first")
		require.NoError(t, err)

		_, err = env.orders.Cancel(ctx, o.ID(), env.userID, "second")
		require.ErrorIs(t, err, errs.ErrInvalidStateTransition)

		assert.Equal(t, int32(10), env.tx.inventoryRepo.available[variantID])
		assert.True(t, env.tx.walletRepo.balance.Equal(decimal.NewFromInt(100)))
		assert.Len(t, env.tx.walletRepo.txns, 1)
	})

	t.Run("shipped orders cannot be cancelled", func(t *testing.T) {
		env := newTestEnv()
		o := env.seedOrder(builder.NewOrderBuilder(), order.StatusShipped, order.PaymentPaid)

		_, err := env.orders.Cancel(ctx, o.ID(), env.userID, "")
		require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	})

	t.Run("someone else's order reads as not found", func(t *testing.T) {
		env := newTestEnv()
		o := env.seedOrder(builder.NewOrderBuilder(), order.StatusPending, order.PaymentPaid)

		_, err := env.orders.Cancel(ctx, o.ID(), uuid.New(), "")
		require.ErrorIs(t, err, errs.ErrOrderNotFound)
	})

	t.Run("unknown order", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.orders.Cancel(ctx, uuid.New(), env.userID, "")
		require.ErrorIs(t, err, errs.ErrOrderNotFound)
	})

	t.Run("order coupon outliving campaign cleanup is tolerated", func(t *testing.T) {
		env := newTestEnv()
		env.tx.walletRepo.balance = decimal.NewFromInt(35)
		o := env.seedOrder(builder.NewOrderBuilder().WithCouponCode("GONE10"), order.StatusPending, order.PaymentPaid)

		view, err := env.orders.Cancel(ctx, o.ID(), env.userID, "")
		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled.String(), view.Status)
		assert.Equal(t, 0, env.tx.couponRepo.decrements)
	})
}

func TestRefund(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("full refund by default", func(t *testing.T) {
		env := newTestEnv()
		env.tx.walletRepo.balance = decimal.NewFromInt(35)
		o := env.seedOrder(builder.NewOrderBuilder(), order.StatusDelivered, order.PaymentPaid)

		view, err := env.orders.Refund(ctx, o.ID(), adminID, commands.RefundInput{Reason: "damaged goods"})
		require.NoError(t, err)

		assert.Equal(t, order.PaymentRefunded.String(), view.PaymentStatus)
		assert.True(t, view.RefundedAmount.Equal(decimal.NewFromInt(65)))
		assert.True(t, env.tx.walletRepo.balance.Equal(decimal.NewFromInt(100)))
		require.NotNil(t, env.tx.walletRepo.lastTxn())
		assert.Equal(t, wallet.RefRefund, env.tx.walletRepo.lastTxn().RefType)
		assert.Equal(t, wallet.ActorAdmin, env.tx.walletRepo.lastTxn().Actor)
		assert.Contains(t, env.tx.auditRepo.actions(), "order.refunded")
	})

	t.Run("partial refunds accumulate", func(t *testing.T) {
		env := newTestEnv()
		env.tx.walletRepo.balance = decimal.NewFromInt(35)
		o := env.seedOrder(builder.NewOrderBuilder(), order.StatusDelivered, order.PaymentPaid)

		twenty := decimal.NewFromInt(20)
		view, err := env.orders.Refund(ctx, o.ID(), adminID, commands.RefundInput{Amount: &twenty})
		require.NoError(t, err)

		assert.Equal(t, order.PaymentPartiallyRefunded.String(), view.PaymentStatus)
		assert.True(t, view.RefundedAmount.Equal(twenty))
		assert.True(t, env.tx.walletRepo.balance.Equal(decimal.NewFromInt(55)))

		rest := decimal.NewFromInt(45)
		view, err = env.orders.Refund(ctx, o.ID(), adminID, commands.RefundInput{Amount: &rest})
		require.NoError(t, err)
		assert.Equal(t, order.PaymentRefunded.String(), view.PaymentStatus)
	})

	t.Run("refund above the refundable remainder is rejected", func(t *testing.T) {
		env := newTestEnv()
		env.tx.walletRepo.balance = decimal.NewFromInt(35)
		o := env.seedOrder(builder.NewOrderBuilder(), order.StatusDelivered, order.PaymentPaid)

		tooMuch := decimal.NewFromInt(66)
		_, err := env.orders.Refund(ctx, o.ID(), adminID, commands.RefundInput{Amount: &tooMuch})
		require.ErrorIs(t, err, errs.ErrRefundExceedsTotal)
		assert.True(t, env.tx.walletRepo.balance.Equal(decimal.NewFromInt(35)))
	})

	t.Run("undelivered orders are not refundable", func(t *testing.T) {
		env := newTestEnv()
		o := env.seedOrder(builder.NewOrderBuilder(), order.StatusProcessing, order.PaymentPaid)

		_, err := env.orders.Refund(ctx, o.ID(), adminID, commands.RefundInput{})
		require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	})

	t.Run("nothing left to refund", func(t *testing.T) {
		env := newTestEnv()
		o := env.seedOrder(
			builder.NewOrderBuilder().WithPaymentMethod(order.PaymentMethodCashOnDelivery),
			order.StatusDelivered, order.PaymentPaid,
		)

		_, err := env.orders.Refund(ctx, o.ID(), adminID, commands.RefundInput{})
		require.ErrorIs(t, err, errs.ErrRefundExceedsTotal)
	})
}

func TestAdvanceStatus(t *testing.T) {
	ctx := context.Background()
	adminID := uuid.New()

	t.Run("walks the forward edges", func(t *testing.T) {
		env := newTestEnv()
		o := env.seedOrder(builder.NewOrderBuilder(), order.StatusPending, order.PaymentPaid)

		for _, next := range []order.Status{
			order.StatusProcessing, order.StatusShipped, order.StatusDelivered,
			order.StatusReturnRequested, order.StatusReturned,
		} {
			view, err := env.orders.AdvanceStatus(ctx, o.ID(), adminID, next)
			require.NoError(t, err)
			assert.Equal(t, next.String(), view.Status)
		}
		assert.Contains(t, env.tx.auditRepo.actions(), "order.status_changed")
	})

	t.Run("skipping a state is rejected", func(t *testing.T) {
		env := newTestEnv()
		o := env.seedOrder(builder.NewOrderBuilder(), order.StatusPending, order.PaymentPaid)

		_, err := env.orders.AdvanceStatus(ctx, o.ID(), adminID, order.StatusDelivered)
		require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	})

	t.Run("terminal states have no exits", func(t *testing.T) {
		env := newTestEnv()
		o := env.seedOrder(builder.NewOrderBuilder(), order.StatusCancelled, order.PaymentRefunded)

		_, err := env.orders.AdvanceStatus(ctx, o.ID(), adminID, order.StatusProcessing)
		require.ErrorIs(t, err, errs.ErrInvalidStateTransition)
	})

	t.Run("unknown order", func(t *testing.T) {
		env := newTestEnv()

		_, err := env.orders.AdvanceStatus(ctx, uuid.New(), adminID, order.StatusProcessing)
		require.ErrorIs(t, err, errs.ErrOrderNotFound)
	})
}
