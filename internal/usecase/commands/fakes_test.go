//go:build unit

package commands_test

import (
	"context"

	"shopcore/internal/domain/cart"
	"shopcore/internal/domain/coupon"
	"shopcore/internal/domain/inventory"
	"shopcore/internal/domain/order"
	"shopcore/internal/domain/wallet"
	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/errs"
	"shopcore/internal/usecase/queries"
	"shopcore/internal/usecase/shared"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// In-memory collaborators standing in for the postgres unit of work. They do
// not simulate rollback; assertions about atomicity target the pre-write
// validation order instead.

func notFoundErr(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindNotFound)
}

func conflictErr(msg string) error {
	return infra.WrapRepoErr(msg, nil, infra.KindConflict)
}

type fakeUoW struct {
	tx *fakeTx
}

func (u *fakeUoW) Within(ctx context.Context, fn func(ctx context.Context, tx shared.Tx) error) error {
	return fn(ctx, u.tx)
}

func (u *fakeUoW) WithinReadOnly(ctx context.Context, fn func(ctx context.Context, db db.DBTX) error) error {
	return fn(ctx, nil)
}

type fakeTx struct {
	cartRepo      *fakeCartRepo
	orderRepo     *fakeOrderRepo
	inventoryRepo *fakeInventoryRepo
	couponRepo    *fakeCouponRepo
	walletRepo    *fakeWalletRepo
	auditRepo     *fakeAuditRepo
}

func (t *fakeTx) Carts() shared.CartRepository          { return t.cartRepo }
func (t *fakeTx) Orders() shared.OrderRepository        { return t.orderRepo }
func (t *fakeTx) Inventory() shared.InventoryRepository { return t.inventoryRepo }
func (t *fakeTx) Coupons() shared.CouponRepository      { return t.couponRepo }
func (t *fakeTx) Wallets() shared.WalletRepository      { return t.walletRepo }
func (t *fakeTx) Audit() shared.AuditRepository         { return t.auditRepo }
func (t *fakeTx) DB() db.DBTX                           { return nil }

type fakeCartRepo struct {
	byUser    map[uuid.UUID]*cart.Cart
	clearedID uuid.UUID
}

func newFakeCartRepo() *fakeCartRepo {
	return &fakeCartRepo{byUser: make(map[uuid.UUID]*cart.Cart)}
}

func (r *fakeCartRepo) FindByUser(_ context.Context, userID uuid.UUID) (*cart.Cart, error) {
	c, ok := r.byUser[userID]
	if !ok {
		return nil, notFoundErr("cart not found")
	}
	return c, nil
}

func (r *fakeCartRepo) Save(_ context.Context, c *cart.Cart) error {
	r.byUser[c.UserID()] = c
	return nil
}

func (r *fakeCartRepo) Clear(_ context.Context, cartID uuid.UUID) error {
	r.clearedID = cartID
	return nil
}

type fakeOrderRepo struct {
	byID map[uuid.UUID]*order.Order
}

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{byID: make(map[uuid.UUID]*order.Order)}
}

func (r *fakeOrderRepo) Create(_ context.Context, o *order.Order) error {
	r.byID[o.ID()] = o
	return nil
}

func (r *fakeOrderRepo) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*order.Order, error) {
	o, ok := r.byID[id]
	if !ok {
		return nil, notFoundErr("order not found")
	}
	return o, nil
}

func (r *fakeOrderRepo) Update(_ context.Context, o *order.Order) error {
	if _, ok := r.byID[o.ID()]; !ok {
		return notFoundErr("order not found")
	}
	r.byID[o.ID()] = o
	return nil
}

type fakeInventoryRepo struct {
	available  map[uuid.UUID]int32
	reserveErr error
}

func newFakeInventoryRepo() *fakeInventoryRepo {
	return &fakeInventoryRepo{available: make(map[uuid.UUID]int32)}
}

func (r *fakeInventoryRepo) GetForUpdate(_ context.Context, variantID uuid.UUID) (*inventory.Record, error) {
	qty, ok := r.available[variantID]
	if !ok {
		return nil, notFoundErr("inventory not found")
	}
	return inventory.Reconstruct(variantID, qty), nil
}

func (r *fakeInventoryRepo) Reserve(_ context.Context, variantID uuid.UUID, quantity int32) error {
	if r.reserveErr != nil {
		return r.reserveErr
	}
	if r.available[variantID] < quantity {
		return conflictErr("insufficient stock")
	}
	r.available[variantID] -= quantity
	return nil
}

func (r *fakeInventoryRepo) Release(_ context.Context, variantID uuid.UUID, quantity int32) error {
	if _, ok := r.available[variantID]; !ok {
		return notFoundErr("inventory not found")
	}
	r.available[variantID] += quantity
	return nil
}

type fakeCouponRepo struct {
	userCoupon   *coupon.UserCoupon
	campaign     *coupon.Campaign
	incrementErr error
	increments   int
	decrements   int
}

func (r *fakeCouponRepo) FindUserCouponByCode(_ context.Context, userID uuid.UUID, code string) (*coupon.UserCoupon, error) {
	if r.userCoupon == nil || r.userCoupon.UserID() != userID || r.userCoupon.Code().String() != code {
		return nil, notFoundErr("coupon not found")
	}
	return r.userCoupon, nil
}

func (r *fakeCouponRepo) FindCampaignByID(_ context.Context, id uuid.UUID) (*coupon.Campaign, error) {
	if r.campaign == nil || r.campaign.ID() != id {
		return nil, notFoundErr("campaign not found")
	}
	return r.campaign, nil
}

func (r *fakeCouponRepo) IncrementUsage(_ context.Context, _, _ uuid.UUID) error {
	if r.incrementErr != nil {
		return r.incrementErr
	}
	r.increments++
	return nil
}

func (r *fakeCouponRepo) DecrementUsage(_ context.Context, _, _ uuid.UUID) error {
	r.decrements++
	return nil
}

type fakeWalletRepo struct {
	walletID    uuid.UUID
	userID      uuid.UUID
	balance     decimal.Decimal
	currency    string
	status      wallet.Status
	version     int64
	casFailures int

	txns      []wallet.Transaction
	completed map[uuid.UUID]decimal.Decimal
	failed    map[uuid.UUID]bool
}

func newFakeWalletRepo(userID uuid.UUID, balance decimal.Decimal) *fakeWalletRepo {
	return &fakeWalletRepo{
		walletID:  uuid.New(),
		userID:    userID,
		balance:   balance,
		currency:  "USD",
		status:    wallet.StatusActive,
		version:   1,
		completed: make(map[uuid.UUID]decimal.Decimal),
		failed:    make(map[uuid.UUID]bool),
	}
}

func (r *fakeWalletRepo) snapshot() *wallet.Wallet {
	return wallet.Reconstruct(r.walletID, r.userID, r.balance, r.currency, r.status, r.version)
}

func (r *fakeWalletRepo) FindByUser(_ context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	if userID != r.userID {
		return nil, notFoundErr("wallet not found")
	}
	return r.snapshot(), nil
}

func (r *fakeWalletRepo) FindByWalletID(_ context.Context, walletID uuid.UUID) (*wallet.Wallet, error) {
	if walletID != r.walletID {
		return nil, notFoundErr("wallet not found")
	}
	return r.snapshot(), nil
}

func (r *fakeWalletRepo) CompareAndSetBalance(_ context.Context, walletID uuid.UUID, newBalance decimal.Decimal, expectedVersion int64) (bool, error) {
	if walletID != r.walletID {
		return false, nil
	}
	if r.casFailures > 0 {
		// A concurrent writer won this round.
		r.casFailures--
		r.version++
		return false, nil
	}
	if expectedVersion != r.version {
		return false, nil
	}
	r.balance = newBalance
	r.version++
	return true, nil
}

func (r *fakeWalletRepo) InsertTransaction(_ context.Context, txn wallet.Transaction) error {
	r.txns = append(r.txns, txn)
	return nil
}

func (r *fakeWalletRepo) FindTransactionByGatewayID(_ context.Context, gatewayTxnID string) (*wallet.Transaction, error) {
	for i := range r.txns {
		if r.txns[i].GatewayTxnID != nil && *r.txns[i].GatewayTxnID == gatewayTxnID {
			return &r.txns[i], nil
		}
	}
	return nil, notFoundErr("transaction not found")
}

func (r *fakeWalletRepo) MarkTransactionCompleted(_ context.Context, txnID uuid.UUID, balanceAfter decimal.Decimal) error {
	r.completed[txnID] = balanceAfter
	for i := range r.txns {
		if r.txns[i].ID == txnID {
			r.txns[i].Status = wallet.TxCompleted
			r.txns[i].BalanceAfter = balanceAfter
		}
	}
	return nil
}

func (r *fakeWalletRepo) MarkTransactionFailed(_ context.Context, txnID uuid.UUID) error {
	r.failed[txnID] = true
	for i := range r.txns {
		if r.txns[i].ID == txnID {
			r.txns[i].Status = wallet.TxFailed
		}
	}
	return nil
}

func (r *fakeWalletRepo) lastTxn() *wallet.Transaction {
	if len(r.txns) == 0 {
		return nil
	}
	return &r.txns[len(r.txns)-1]
}

type fakeAuditRepo struct {
	events []shared.AuditEvent
}

func (r *fakeAuditRepo) Record(_ context.Context, event shared.AuditEvent) error {
	r.events = append(r.events, event)
	return nil
}

func (r *fakeAuditRepo) actions() []string {
	out := make([]string, len(r.events))
	for i, e := range r.events {
		out[i] = e.Action
	}
	return out
}

type fakeCatalog struct {
	variants map[uuid.UUID]*shared.VariantSnapshot
}

func (c *fakeCatalog) VariantByID(_ context.Context, variantID uuid.UUID) (*shared.VariantSnapshot, error) {
	v, ok := c.variants[variantID]
	if !ok {
		return nil, notFoundErr("variant not found")
	}
	return v, nil
}

// stubOrderQueries mirrors the order repository so read-after-write returns
// what the command just committed.
type stubOrderQueries struct {
	orders *fakeOrderRepo
}

func (q *stubOrderQueries) GetByID(ctx context.Context, id, userID uuid.UUID) (*queries.OrderView, error) {
	view, err := q.GetByIDSystem(ctx, id)
	if err != nil {
		return nil, err
	}
	if view.UserID != userID {
		return nil, errs.ErrOrderNotFound
	}
	return view, nil
}

func (q *stubOrderQueries) GetByIDSystem(_ context.Context, id uuid.UUID) (*queries.OrderView, error) {
	o, ok := q.orders.byID[id]
	if !ok {
		return nil, errs.ErrOrderNotFound
	}
	return viewFromOrder(o), nil
}

func (q *stubOrderQueries) ListByUser(_ context.Context, userID uuid.UUID) ([]*queries.OrderListItem, error) {
	var items []*queries.OrderListItem
	for _, o := range q.orders.byID {
		if o.UserID() == userID {
			items = append(items, &queries.OrderListItem{
				ID:            o.ID(),
				Number:        o.Number().String(),
				Status:        o.Status().String(),
				PaymentStatus: o.PaymentStatus().String(),
				GrandTotal:    o.Totals().GrandTotal,
				CreatedAt:     o.CreatedAt(),
			})
		}
	}
	return items, nil
}

func viewFromOrder(o *order.Order) *queries.OrderView {
	items := make([]queries.OrderItemView, len(o.Items()))
	for i, it := range o.Items() {
		items[i] = queries.OrderItemView{
			VariantID:   it.VariantID,
			SKU:         it.SKU,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal,
		}
	}
	return &queries.OrderView{
		ID:             o.ID(),
		Number:         o.Number().String(),
		UserID:         o.UserID(),
		Status:         o.Status().String(),
		PaymentStatus:  o.PaymentStatus().String(),
		PaymentMethod:  string(o.PaymentMethod()),
		Subtotal:       o.Totals().Subtotal,
		Shipping:       o.Totals().Shipping,
		Tax:            o.Totals().Tax,
		Discount:       o.Totals().Discount,
		GrandTotal:     o.Totals().GrandTotal,
		RefundedAmount: o.RefundedAmount(),
		CouponCode:     o.CouponCode(),
		CancelReason:   o.CancelReason(),
		Items:          items,
		CreatedAt:      o.CreatedAt(),
		UpdatedAt:      o.UpdatedAt(),
	}
}

type stubCartQueries struct {
	carts *fakeCartRepo
}

func (q *stubCartQueries) GetByUser(_ context.Context, userID uuid.UUID) (*queries.CartView, error) {
	c, ok := q.carts.byUser[userID]
	if !ok {
		return &queries.CartView{UserID: userID}, nil
	}
	items := make([]queries.CartItemView, len(c.Items()))
	for i, it := range c.Items() {
		items[i] = queries.CartItemView{
			VariantID:   it.VariantID,
			SKU:         it.SKU,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			UnitPrice:   it.UnitPrice,
			Subtotal:    it.Subtotal(),
		}
	}
	return &queries.CartView{
		ID:         c.ID(),
		UserID:     c.UserID(),
		Items:      items,
		CouponCode: c.CouponCode(),
		Discount:   c.Discount(),
		Total:      c.Total(),
		UpdatedAt:  c.UpdatedAt(),
	}, nil
}

type stubWalletQueries struct {
	wallets *fakeWalletRepo
}

func (q *stubWalletQueries) GetByUser(_ context.Context, userID uuid.UUID) (*queries.WalletView, error) {
	if userID != q.wallets.userID {
		return nil, errs.ErrWalletNotFound
	}
	return &queries.WalletView{
		ID:       q.wallets.walletID,
		Balance:  q.wallets.balance,
		Currency: q.wallets.currency,
		Status:   string(q.wallets.status),
	}, nil
}
