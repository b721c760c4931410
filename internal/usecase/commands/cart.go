package commands

import (
	"context"
	"errors"

	"shopcore/internal/domain/cart"
	"shopcore/internal/domain/coupon"
	"shopcore/internal/domain/order"
	"shopcore/internal/infra"
	"shopcore/internal/pkg/clock"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/queries"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
)

type CartCommands interface {
	AddItem(ctx context.Context, userID, variantID uuid.UUID, quantity int32) (*queries.CartView, error)
	UpdateQuantity(ctx context.Context, userID, variantID uuid.UUID, quantity int32) (*queries.CartView, error)
	RemoveItem(ctx context.Context, userID, variantID uuid.UUID) (*queries.CartView, error)
	ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*queries.CartView, error)
	RemoveCoupon(ctx context.Context, userID uuid.UUID) (*queries.CartView, error)
}

type cartCommandsImpl struct {
	uow         shared.UnitOfWork
	catalog     shared.CatalogReadStore
	cartQueries queries.CartQueries
	pricing     order.PricingPolicy
	clock       clock.Clock
}

func NewCartCommands(
	uow shared.UnitOfWork,
	catalog shared.CatalogReadStore,
	cartQueries queries.CartQueries,
	pricing order.PricingPolicy,
	clk clock.Clock,
) CartCommands {
	return &cartCommandsImpl{
		uow:         uow,
		catalog:     catalog,
		cartQueries: cartQueries,
		pricing:     pricing,
		clock:       clk,
	}
}

// AddItem snapshots the variant's current price and labels into the cart.
// Availability is advisory here; the authoritative stock check happens at
// checkout inside the transaction.
func (c *cartCommandsImpl) AddItem(ctx context.Context, userID, variantID uuid.UUID, quantity int32) (*queries.CartView, error) {
	snapshot, err := c.catalog.VariantByID(ctx, variantID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrVariantNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	if !snapshot.Purchasable {
		return nil, errs.ErrVariantUnavailable
	}

	err = c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		userCart, err := c.findOrCreateCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := userCart.AddItem(cart.VariantSnapshot{
			VariantID:    snapshot.VariantID,
			SKU:          snapshot.SKU,
			ProductName:  snapshot.ProductName,
			OptionLabels: snapshot.OptionLabels,
			Price:        snapshot.Price,
		}, quantity, c.clock.Now()); err != nil {
			return err
		}
		return c.saveCart(ctx, tx, userCart)
	})
	if err != nil {
		return nil, err
	}
	return c.cartQueries.GetByUser(ctx, userID)
}

func (c *cartCommandsImpl) UpdateQuantity(ctx context.Context, userID, variantID uuid.UUID, quantity int32) (*queries.CartView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		userCart, err := c.findCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := userCart.UpdateQuantity(variantID, quantity, c.clock.Now()); err != nil {
			if errors.Is(err, cart.ErrItemNotFound) {
				return errs.ErrVariantNotFound
			}
			return err
		}
		return c.saveCart(ctx, tx, userCart)
	})
	if err != nil {
		return nil, err
	}
	return c.cartQueries.GetByUser(ctx, userID)
}

func (c *cartCommandsImpl) RemoveItem(ctx context.Context, userID, variantID uuid.UUID) (*queries.CartView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		userCart, err := c.findCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		if err := userCart.RemoveItem(variantID, c.clock.Now()); err != nil {
			if errors.Is(err, cart.ErrItemNotFound) {
				return errs.ErrVariantNotFound
			}
			return err
		}
		return c.saveCart(ctx, tx, userCart)
	})
	if err != nil {
		return nil, err
	}
	return c.cartQueries.GetByUser(ctx, userID)
}

// ApplyCoupon validates eligibility and stores the code with its computed
// discount. No counters move here; usage commits atomically at checkout.
func (c *cartCommandsImpl) ApplyCoupon(ctx context.Context, userID uuid.UUID, code string) (*queries.CartView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		now := c.clock.Now()

		userCart, err := c.findCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		if userCart.IsEmpty() {
			return errs.ErrEmptyCart
		}

		userCoupon, err := tx.Coupons().FindUserCouponByCode(ctx, userID, code)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return &CouponRejectedError{Code: code, Reason: errs.ErrCouponNotFound}
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		campaign, err := tx.Coupons().FindCampaignByID(ctx, userCoupon.CampaignID())
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return &CouponRejectedError{Code: code, Reason: errs.ErrCouponNotFound}
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		subtotal := userCart.Subtotal()
		if err := campaign.ValidateFor(now, subtotal, userCart.VariantIDs(), userCoupon.UsageCount()); err != nil {
			switch {
			case errors.Is(err, coupon.ErrGlobalCapReached), errors.Is(err, coupon.ErrUserCapReached):
				return &CouponRejectedError{Code: code, Reason: errs.ErrCouponLimitExceeded}
			default:
				return &CouponRejectedError{Code: code, Reason: errs.ErrCouponExpiredOrIneligible}
			}
		}

		discount := campaign.DiscountFor(subtotal, c.pricing.ShippingFee(subtotal))
		userCart.ApplyCoupon(userCoupon.Code().String(), discount, now)
		return c.saveCart(ctx, tx, userCart)
	})
	if err != nil {
		return nil, err
	}
	return c.cartQueries.GetByUser(ctx, userID)
}

func (c *cartCommandsImpl) RemoveCoupon(ctx context.Context, userID uuid.UUID) (*queries.CartView, error) {
	err := c.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		userCart, err := c.findCart(ctx, tx, userID)
		if err != nil {
			return err
		}
		userCart.RemoveCoupon(c.clock.Now())
		return c.saveCart(ctx, tx, userCart)
	})
	if err != nil {
		return nil, err
	}
	return c.cartQueries.GetByUser(ctx, userID)
}

func (c *cartCommandsImpl) findCart(ctx context.Context, tx shared.Tx, userID uuid.UUID) (*cart.Cart, error) {
	userCart, err := tx.Carts().FindByUser(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrCartNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return userCart, nil
}

func (c *cartCommandsImpl) findOrCreateCart(ctx context.Context, tx shared.Tx, userID uuid.UUID) (*cart.Cart, error) {
	userCart, err := tx.Carts().FindByUser(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return cart.New(userID, c.clock.Now()), nil
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return userCart, nil
}

func (c *cartCommandsImpl) saveCart(ctx context.Context, tx shared.Tx, userCart *cart.Cart) error {
	if err := tx.Carts().Save(ctx, userCart); err != nil {
		return errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return nil
}
