package commands

import (
	"context"
	"errors"
	"time"

	"shopcore/internal/domain/coupon"
	"shopcore/internal/domain/order"
	"shopcore/internal/domain/wallet"
	"shopcore/internal/infra"
	"shopcore/internal/pkg/clock"
	"shopcore/internal/pkg/config"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/queries"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PlaceOrderInput struct {
	ShippingAddress  order.Address
	BillingAddress   order.Address
	PaymentMethod    order.PaymentMethod
	PaymentMethodRef *string
}

type CheckoutCommands interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*queries.OrderView, error)
}

type checkoutCommandsImpl struct {
	uow          shared.UnitOfWork
	orderQueries queries.OrderQueries
	pricing      order.PricingPolicy
	clock        clock.Clock
	walletCfg    config.WalletConfig
}

func NewCheckoutCommands(
	uow shared.UnitOfWork,
	orderQueries queries.OrderQueries,
	pricing order.PricingPolicy,
	clk clock.Clock,
	cfg config.Config,
) CheckoutCommands {
	return &checkoutCommandsImpl{
		uow:          uow,
		orderQueries: orderQueries,
		pricing:      pricing,
		clock:        clk,
		walletCfg:    cfg.Wallet,
	}
}

// PlaceOrder converts the caller's cart into an immutable order while
// mutating inventory, coupon counters and (for wallet payment) the wallet
// balance inside one unit of work. Any failure rolls back every write.
func (c *checkoutCommandsImpl) PlaceOrder(ctx context.Context, userID uuid.UUID, input PlaceOrderInput) (*queries.OrderView, error) {
	if !input.PaymentMethod.IsValid() {
		return nil, errs.New("unsupported payment method")
	}

	var orderID uuid.UUID
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := c.clock.Now()

		// 1. Load the cart; an absent or empty cart cannot check out.
		userCart, err := tx.Carts().FindByUser(ctx, userID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrEmptyCart
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if userCart.IsEmpty() {
			return errs.ErrEmptyCart
		}

		subtotal := userCart.Subtotal()
		shipping := c.pricing.ShippingFee(subtotal)
		tax := c.pricing.Tax(subtotal)

		// 2. Re-validate the applied coupon against current cart contents;
		// time has passed since it was applied client-side.
		discount := decimal.Zero
		var userCoupon *coupon.UserCoupon
		var campaign *coupon.Campaign
		if code := userCart.CouponCode(); code != nil {
			userCoupon, campaign, discount, err = c.revalidateCoupon(ctx, tx, userID, *code, subtotal, shipping, userCart.VariantIDs(), now)
			if err != nil {
				return err
			}
		}

		// 3. Fresh in-transaction inventory reads; abort on the first
		// variant that cannot be fulfilled. Partial fulfillment never happens.
		for _, item := range userCart.Items() {
			record, err := tx.Inventory().GetForUpdate(ctx, item.VariantID)
			if err != nil {
				if infra.IsKind(err, infra.KindNotFound) {
					return &InsufficientStockError{VariantID: item.VariantID, Requested: item.Quantity}
				}
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			if !record.CanFulfill(item.Quantity) {
				return &InsufficientStockError{
					VariantID: item.VariantID,
					Requested: item.Quantity,
					Available: record.Available(),
				}
			}
		}

		// 4. Snapshot cart lines into immutable order items.
		items := make([]order.Item, 0, len(userCart.Items()))
		for _, ci := range userCart.Items() {
			item, err := order.NewItem(ci.VariantID, ci.SKU, ci.ProductName, ci.OptionLabels, ci.Quantity, ci.UnitPrice)
			if err != nil {
				return err
			}
			items = append(items, item)
		}

		totals, err := order.NewTotals(subtotal, shipping, tax, discount)
		if err != nil {
			return err
		}

		newOrder, err := order.New(
			userID, items,
			input.ShippingAddress, input.BillingAddress,
			input.PaymentMethod, input.PaymentMethodRef,
			totals, userCart.CouponCode(), now,
		)
		if err != nil {
			return err
		}
		if err := tx.Orders().Create(ctx, newOrder); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		orderID = newOrder.ID()

		// 5. Decrement inventory for every line.
		for _, item := range newOrder.Items() {
			if err := tx.Inventory().Reserve(ctx, item.VariantID, item.Quantity); err != nil {
				if infra.IsKind(err, infra.KindConflict) {
					return &InsufficientStockError{VariantID: item.VariantID, Requested: item.Quantity}
				}
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}

		// 6. Wallet payment debits the grand total through the single
		// balance-mutation primitive; insufficient funds aborts the unit.
		if input.PaymentMethod == order.PaymentMethodWallet {
			refID := newOrder.ID()
			_, err := applyBalanceChange(ctx, tx.Wallets(), c.clock, c.walletCfg.MaxUpdateAttempts, balanceChange{
				userID:      userID,
				direction:   wallet.DirectionDebit,
				amount:      totals.GrandTotal,
				refType:     wallet.RefOrder,
				refID:       &refID,
				actor:       wallet.ActorUser,
				description: "payment for order " + newOrder.Number().String(),
			})
			if err != nil {
				return err
			}
			newOrder.MarkPaid(now)
			if err := tx.Orders().Update(ctx, newOrder); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}

		// 7. Commit coupon usage; cap races surface as conflicts here even
		// though validation passed above.
		if userCoupon != nil {
			if err := tx.Coupons().IncrementUsage(ctx, userCoupon.ID(), campaign.ID()); err != nil {
				if infra.IsKind(err, infra.KindConflict) {
					return &CouponRejectedError{Code: userCoupon.Code().String(), Reason: errs.ErrCouponLimitExceeded}
				}
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}

		// 8. Clear the cart in the same unit.
		if err := tx.Carts().Clear(ctx, userCart.ID()); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		recordAudit(ctx, tx, shared.AuditEvent{
			Action:     "order.placed",
			ActorID:    userID,
			EntityType: "order",
			EntityID:   newOrder.ID(),
			Detail: map[string]any{
				"number":      newOrder.Number().String(),
				"grand_total": totals.GrandTotal.String(),
				"payment":     string(input.PaymentMethod),
			},
		})
		return nil
	})
	if err != nil {
		return nil, mapUnitError(err)
	}

	// Read-after-write: return the complete view from the read store.
	return c.orderQueries.GetByIDSystem(ctx, orderID)
}

func (c *checkoutCommandsImpl) revalidateCoupon(
	ctx context.Context,
	tx shared.Tx,
	userID uuid.UUID,
	code string,
	subtotal, shipping decimal.Decimal,
	variantIDs []uuid.UUID,
	now time.Time,
) (*coupon.UserCoupon, *coupon.Campaign, decimal.Decimal, error) {
	userCoupon, err := tx.Coupons().FindUserCouponByCode(ctx, userID, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, decimal.Zero, &CouponRejectedError{Code: code, Reason: errs.ErrCouponNotFound}
		}
		return nil, nil, decimal.Zero, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	campaign, err := tx.Coupons().FindCampaignByID(ctx, userCoupon.CampaignID())
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, nil, decimal.Zero, &CouponRejectedError{Code: code, Reason: errs.ErrCouponNotFound}
		}
		return nil, nil, decimal.Zero, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}

	if err := campaign.ValidateFor(now, subtotal, variantIDs, userCoupon.UsageCount()); err != nil {
		switch {
		case errors.Is(err, coupon.ErrGlobalCapReached), errors.Is(err, coupon.ErrUserCapReached):
			return nil, nil, decimal.Zero, &CouponRejectedError{Code: code, Reason: errs.ErrCouponLimitExceeded}
		default:
			return nil, nil, decimal.Zero, &CouponRejectedError{Code: code, Reason: errs.ErrCouponExpiredOrIneligible}
		}
	}

	return userCoupon, campaign, campaign.DiscountFor(subtotal, shipping), nil
}

// mapUnitError converts transaction-level failures into the retryable
// sentinels the client contract promises.
func mapUnitError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.Mark(err, errs.ErrTransactionTimeout)
	}
	return err
}
