package commands

import (
	"context"

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

type RefundInput struct {
	// Amount defaults to the full refundable amount when nil.
	Amount *decimal.Decimal
	Reason string
}

type OrderCommands interface {
	Cancel(ctx context.Context, orderID, userID uuid.UUID, reason string) (*queries.OrderView, error)
	// Refund is admin-initiated and reverses only the wallet leg; goods may
	// already be consumed, so inventory is never restored here.
	Refund(ctx context.Context, orderID, adminID uuid.UUID, input RefundInput) (*queries.OrderView, error)
	AdvanceStatus(ctx context.Context, orderID, adminID uuid.UUID, to order.Status) (*queries.OrderView, error)
}

type orderCommandsImpl struct {
	uow          shared.UnitOfWork
	orderQueries queries.OrderQueries
	clock        clock.Clock
	walletCfg    config.WalletConfig
}

func NewOrderCommands(
	uow shared.UnitOfWork,
	orderQueries queries.OrderQueries,
	clk clock.Clock,
	cfg config.Config,
) OrderCommands {
	return &orderCommandsImpl{
		uow:          uow,
		orderQueries: orderQueries,
		clock:        clk,
		walletCfg:    cfg.Wallet,
	}
}

// Cancel reverses a PENDING/PROCESSING order inside one unit: inventory is
// restored, coupon usage decremented, and any wallet debit compensated before
// the status flips. A second cancellation fails the state check and applies
// nothing.
func (c *orderCommandsImpl) Cancel(ctx context.Context, orderID, userID uuid.UUID, reason string) (*queries.OrderView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := c.clock.Now()

		o, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrOrderNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if o.UserID() != userID {
			return errs.ErrOrderNotFound
		}
		if !o.Status().IsCancellable() {
			return errs.ErrInvalidStateTransition
		}

		// 1. Restore inventory for every ordered line.
		for _, item := range o.Items() {
			if err := tx.Inventory().Release(ctx, item.VariantID, item.Quantity); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
		}

		// 2. Reverse coupon usage, floored at zero by the repository.
		if code := o.CouponCode(); code != nil {
			if err := c.reverseCouponUsage(ctx, tx, o.UserID(), *code); err != nil {
				return err
			}
		}

		// 3. Compensating wallet credit if the order was wallet-paid.
		wasPaid := o.IsWalletPaid()
		if wasPaid {
			refID := o.ID()
			_, err := applyBalanceChange(ctx, tx.Wallets(), c.clock, c.walletCfg.MaxUpdateAttempts, balanceChange{
				userID:      o.UserID(),
				direction:   wallet.DirectionCredit,
				amount:      o.RefundableAmount(),
				refType:     wallet.RefOrder,
				refID:       &refID,
				actor:       wallet.ActorUser,
				description: "cancellation of order " + o.Number().String(),
			})
			if err != nil {
				return err
			}
		}

		// 4. Flip the status; payment status follows the compensation.
		if wasPaid {
			if err := o.RecordRefund(o.RefundableAmount(), now); err != nil {
				return err
			}
		}
		if err := o.Cancel(reason, now); err != nil {
			return errs.ErrInvalidStateTransition
		}
		if err := tx.Orders().Update(ctx, o); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		recordAudit(ctx, tx, shared.AuditEvent{
			Action:     "order.cancelled",
			ActorID:    userID,
			EntityType: "order",
			EntityID:   o.ID(),
			Detail:     map[string]any{"reason": reason},
		})
		return nil
	})
	if err != nil {
		return nil, mapUnitError(err)
	}

	return c.orderQueries.GetByIDSystem(ctx, orderID)
}

func (c *orderCommandsImpl) Refund(ctx context.Context, orderID, adminID uuid.UUID, input RefundInput) (*queries.OrderView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := c.clock.Now()

		o, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrOrderNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !o.Status().IsRefundable() {
			return errs.ErrInvalidStateTransition
		}

		refundable := o.RefundableAmount()
		if refundable.LessThanOrEqual(decimal.Zero) {
			return errs.ErrRefundExceedsTotal
		}

		amount := refundable
		if input.Amount != nil {
			amount = *input.Amount
			if amount.LessThanOrEqual(decimal.Zero) || amount.GreaterThan(refundable) {
				return errs.ErrRefundExceedsTotal
			}
		}

		refID := o.ID()
		_, err = applyBalanceChange(ctx, tx.Wallets(), c.clock, c.walletCfg.MaxUpdateAttempts, balanceChange{
			userID:      o.UserID(),
			direction:   wallet.DirectionCredit,
			amount:      amount,
			refType:     wallet.RefRefund,
			refID:       &refID,
			actor:       wallet.ActorAdmin,
			description: "refund for order " + o.Number().String(),
		})
		if err != nil {
			return err
		}

		if err := o.RecordRefund(amount, now); err != nil {
			return errs.ErrRefundExceedsTotal
		}
		if err := tx.Orders().Update(ctx, o); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		recordAudit(ctx, tx, shared.AuditEvent{
			Action:     "order.refunded",
			ActorID:    adminID,
			EntityType: "order",
			EntityID:   o.ID(),
			Detail:     map[string]any{"amount": amount.String(), "reason": input.Reason},
		})
		return nil
	})
	if err != nil {
		return nil, mapUnitError(err)
	}

	return c.orderQueries.GetByIDSystem(ctx, orderID)
}

func (c *orderCommandsImpl) AdvanceStatus(ctx context.Context, orderID, adminID uuid.UUID, to order.Status) (*queries.OrderView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		o, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrOrderNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if err := o.Transition(to, c.clock.Now()); err != nil {
			return errs.ErrInvalidStateTransition
		}
		if err := tx.Orders().Update(ctx, o); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		recordAudit(ctx, tx, shared.AuditEvent{
			Action:     "order.status_changed",
			ActorID:    adminID,
			EntityType: "order",
			EntityID:   o.ID(),
			Detail:     map[string]any{"to": to.String()},
		})
		return nil
	})
	if err != nil {
		return nil, mapUnitError(err)
	}

	return c.orderQueries.GetByIDSystem(ctx, orderID)
}

func (c *orderCommandsImpl) reverseCouponUsage(ctx context.Context, tx shared.Tx, userID uuid.UUID, code string) error {
	userCoupon, err := tx.Coupons().FindUserCouponByCode(ctx, userID, code)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			// The coupon snapshot on the order outlives campaign cleanup;
			// nothing left to decrement.
			return nil
		}
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if err := tx.Coupons().DecrementUsage(ctx, userCoupon.ID(), userCoupon.CampaignID()); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}
