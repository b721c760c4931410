package shared

import (
	"context"

	"shopcore/internal/domain/cart"
	"shopcore/internal/domain/coupon"
	"shopcore/internal/domain/inventory"
	"shopcore/internal/domain/order"
	"shopcore/internal/domain/wallet"
	"shopcore/internal/infra/db"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type UnitOfWork interface {
	// Within: Full transaction for write operations with retry logic.
	// Every checkout/cancel/refund unit runs inside exactly one call.
	Within(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	// WithinReadOnly: Read-only transaction for multi-table consistent reads
	WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error
}

// Tx hands out repositories bound to the open transaction, so every write in
// the unit commits or rolls back together.
type Tx interface {
	Carts() CartRepository
	Orders() OrderRepository
	Inventory() InventoryRepository
	Coupons() CouponRepository
	Wallets() WalletRepository
	Audit() AuditRepository
	DB() db.DBTX
}

type CartRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*cart.Cart, error)
	Save(ctx context.Context, c *cart.Cart) error
	Clear(ctx context.Context, cartID uuid.UUID) error
}

type OrderRepository interface {
	Create(ctx context.Context, o *order.Order) error
	// FindByIDForUpdate locks the order row for the duration of the
	// transaction so concurrent cancellations serialize.
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*order.Order, error)
	Update(ctx context.Context, o *order.Order) error
}

type InventoryRepository interface {
	// GetForUpdate reads the row with a lock; the fresh in-transaction read is
	// what keeps available quantity from going negative under concurrency.
	GetForUpdate(ctx context.Context, variantID uuid.UUID) (*inventory.Record, error)
	Reserve(ctx context.Context, variantID uuid.UUID, quantity int32) error
	Release(ctx context.Context, variantID uuid.UUID, quantity int32) error
}

type CouponRepository interface {
	FindUserCouponByCode(ctx context.Context, userID uuid.UUID, code string) (*coupon.UserCoupon, error)
	FindCampaignByID(ctx context.Context, id uuid.UUID) (*coupon.Campaign, error)
	// IncrementUsage bumps the per-user and campaign counters with
	// cap-guarded conditional updates; a conflict kind signals a lost race
	// for the last slot.
	IncrementUsage(ctx context.Context, userCouponID, campaignID uuid.UUID) error
	// DecrementUsage floors both counters at zero.
	DecrementUsage(ctx context.Context, userCouponID, campaignID uuid.UUID) error
}

type WalletRepository interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error)
	FindByWalletID(ctx context.Context, walletID uuid.UUID) (*wallet.Wallet, error)
	// CompareAndSetBalance succeeds only when the stored version still equals
	// expectedVersion; it reports false on a lost race without writing.
	CompareAndSetBalance(ctx context.Context, walletID uuid.UUID, newBalance decimal.Decimal, expectedVersion int64) (bool, error)
	InsertTransaction(ctx context.Context, txn wallet.Transaction) error
	FindTransactionByGatewayID(ctx context.Context, gatewayTxnID string) (*wallet.Transaction, error)
	MarkTransactionCompleted(ctx context.Context, txnID uuid.UUID, balanceAfter decimal.Decimal) error
	MarkTransactionFailed(ctx context.Context, txnID uuid.UUID) error
}

type AuditRepository interface {
	// Record is fire-and-forget; callers log failures and never abort the
	// surrounding unit because of one.
	Record(ctx context.Context, event AuditEvent) error
}

type AuditEvent struct {
	Action     string
	ActorID    uuid.UUID
	EntityType string
	EntityID   uuid.UUID
	Detail     map[string]any
}
