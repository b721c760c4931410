package wallet

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrNotActive         = errors.New("wallet is not active")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrNonPositiveAmount = errors.New("amount must be positive")
)

type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusBlocked  Status = "BLOCKED"
	StatusInactive Status = "INACTIVE"
)

type Direction string

const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

type ReferenceType string

const (
	RefOrder          ReferenceType = "ORDER"
	RefRefund         ReferenceType = "REFUND"
	RefPaymentGateway ReferenceType = "PAYMENT_GATEWAY"
	RefAdjustment     ReferenceType = "ADJUSTMENT"
)

type TxStatus string

const (
	TxPending    TxStatus = "PENDING"
	TxCompleted  TxStatus = "COMPLETED"
	TxFailed     TxStatus = "FAILED"
	TxRolledBack TxStatus = "ROLLED_BACK"
)

type Actor string

const (
	ActorUser   Actor = "USER"
	ActorAdmin  Actor = "ADMIN"
	ActorSystem Actor = "SYSTEM"
)

// Wallet carries a decimal balance guarded by a monotonically increasing
// version counter; the version is the compare-and-swap key for every
// balance write.
type Wallet struct {
	id       uuid.UUID
	userID   uuid.UUID
	balance  decimal.Decimal
	currency string
	status   Status
	version  int64
}

func Reconstruct(id, userID uuid.UUID, balance decimal.Decimal, currency string, status Status, version int64) *Wallet {
	return &Wallet{
		id:       id,
		userID:   userID,
		balance:  balance,
		currency: currency,
		status:   status,
		version:  version,
	}
}

// Apply computes the balance after a credit or debit without persisting it.
// A debit that would drive the balance negative is rejected before any write.
func (w *Wallet) Apply(direction Direction, amount decimal.Decimal) (decimal.Decimal, error) {
	if w.status != StatusActive {
		return decimal.Zero, ErrNotActive
	}
	if amount.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrNonPositiveAmount
	}

	if direction == DirectionDebit {
		next := w.balance.Sub(amount)
		if next.IsNegative() {
			return decimal.Zero, ErrInsufficientFunds
		}
		return next, nil
	}
	return w.balance.Add(amount), nil
}

func (w *Wallet) ID() uuid.UUID            { return w.id }
func (w *Wallet) UserID() uuid.UUID        { return w.userID }
func (w *Wallet) Balance() decimal.Decimal { return w.balance }
func (w *Wallet) Currency() string         { return w.currency }
func (w *Wallet) Status() Status           { return w.status }
func (w *Wallet) Version() int64           { return w.version }

// Transaction is one append-only ledger row. Rows are never mutated after
// reaching COMPLETED; reversals append a compensating row instead.
type Transaction struct {
	ID           uuid.UUID
	WalletID     uuid.UUID
	Direction    Direction
	Amount       decimal.Decimal
	BalanceAfter decimal.Decimal
	RefType      ReferenceType
	RefID        *uuid.UUID
	GatewayTxnID *string
	Status       TxStatus
	Actor        Actor
	Description  string
	CreatedAt    time.Time
}

func NewCompletedTransaction(
	walletID uuid.UUID,
	direction Direction,
	amount, balanceAfter decimal.Decimal,
	refType ReferenceType,
	refID *uuid.UUID,
	actor Actor,
	description string,
	now time.Time,
) Transaction {
	return Transaction{
		ID:           uuid.New(),
		WalletID:     walletID,
		Direction:    direction,
		Amount:       amount,
		BalanceAfter: balanceAfter,
		RefType:      refType,
		RefID:        refID,
		Status:       TxCompleted,
		Actor:        actor,
		Description:  description,
		CreatedAt:    now,
	}
}

// NewPendingTopup creates the PENDING ledger row that anchors webhook
// idempotency: the gateway transaction id lives on this row and later
// callbacks are matched against it.
func NewPendingTopup(walletID uuid.UUID, amount decimal.Decimal, gatewayTxnID string, now time.Time) Transaction {
	return Transaction{
		ID:           uuid.New(),
		WalletID:     walletID,
		Direction:    DirectionCredit,
		Amount:       amount,
		BalanceAfter: decimal.Zero,
		RefType:      RefPaymentGateway,
		GatewayTxnID: &gatewayTxnID,
		Status:       TxPending,
		Actor:        ActorUser,
		Description:  "wallet top-up",
		CreatedAt:    now,
	}
}
