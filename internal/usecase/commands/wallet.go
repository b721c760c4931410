package commands

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"log/slog"

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

type balanceChange struct {
	userID      uuid.UUID
	direction   wallet.Direction
	amount      decimal.Decimal
	refType     wallet.ReferenceType
	refID       *uuid.UUID
	actor       wallet.Actor
	description string
}

// applyBalanceChange is the single choke point for every wallet balance
// mutation: optimistic read-compute-write on the version counter, plus the
// ledger row append, both on the caller's transaction handle.
//
// The wallet is the only aggregate touched from two independent call paths
// (order orchestration and the gateway callback), hence the CAS loop on top
// of the surrounding transaction.
func applyBalanceChange(
	ctx context.Context,
	wallets shared.WalletRepository,
	clk clock.Clock,
	maxAttempts int,
	change balanceChange,
) (*wallet.Transaction, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		w, err := wallets.FindByUser(ctx, change.userID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return nil, errs.ErrWalletNotFound
			}
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		newBalance, err := w.Apply(change.direction, change.amount)
		if err != nil {
			switch err {
			case wallet.ErrInsufficientFunds:
				return nil, errs.ErrInsufficientFunds
			case wallet.ErrNotActive:
				return nil, errs.ErrWalletNotActive
			default:
				return nil, err
			}
		}

		ok, err := wallets.CompareAndSetBalance(ctx, w.ID(), newBalance, w.Version())
		if err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !ok {
			// Version mismatch: a concurrent writer won, retry the whole cycle.
			slog.Warn("wallet balance CAS lost race, retrying",
				"wallet_id", w.ID(), "attempt", attempt+1)
			continue
		}

		txn := wallet.NewCompletedTransaction(
			w.ID(), change.direction, change.amount, newBalance,
			change.refType, change.refID, change.actor, change.description, clk.Now(),
		)
		if err := wallets.InsertTransaction(ctx, txn); err != nil {
			return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		return &txn, nil
	}

	return nil, errs.ErrWalletContention
}

type TopupResult struct {
	GatewayTxnID string
	RedirectURL  string
	Amount       decimal.Decimal
}

type CallbackInput struct {
	GatewayTxnID string
	Succeeded    bool
	Signature    string
	RawPayload   []byte
}

type CallbackResult struct {
	// Duplicate marks an already-processed notification; it is an
	// acknowledged no-op, not an error.
	Duplicate bool
}

type WalletCommands interface {
	InitiateTopup(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency string) (*TopupResult, error)
	ProcessGatewayCallback(ctx context.Context, input CallbackInput) (*CallbackResult, error)
}

type walletCommandsImpl struct {
	uow           shared.UnitOfWork
	walletQueries queries.WalletQueries
	clock         clock.Clock
	gatewayCfg    config.GatewayConfig
	walletCfg     config.WalletConfig
}

func NewWalletCommands(
	uow shared.UnitOfWork,
	walletQueries queries.WalletQueries,
	clk clock.Clock,
	cfg config.Config,
) WalletCommands {
	return &walletCommandsImpl{
		uow:           uow,
		walletQueries: walletQueries,
		clock:         clk,
		gatewayCfg:    cfg.Gateway,
		walletCfg:     cfg.Wallet,
	}
}

func (w *walletCommandsImpl) InitiateTopup(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, currency string) (*TopupResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return nil, wallet.ErrNonPositiveAmount
	}

	gatewayTxnID := uuid.New().String()

	err := w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		wlt, err := tx.Wallets().FindByUser(ctx, userID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return errs.ErrWalletNotFound
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if wlt.Status() != wallet.StatusActive {
			return errs.ErrWalletNotActive
		}
		if currency != "" && currency != wlt.Currency() {
			return errs.ErrCurrencyMismatch
		}

		pending := wallet.NewPendingTopup(wlt.ID(), amount, gatewayTxnID, w.clock.Now())
		if err := tx.Wallets().InsertTransaction(ctx, pending); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		recordAudit(ctx, tx, shared.AuditEvent{
			Action:     "wallet.topup_initiated",
			ActorID:    userID,
			EntityType: "wallet_transaction",
			EntityID:   pending.ID,
			Detail:     map[string]any{"amount": amount.String(), "gateway_txn_id": gatewayTxnID},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &TopupResult{
		GatewayTxnID: gatewayTxnID,
		RedirectURL:  w.gatewayCfg.RedirectBase + "?ref=" + gatewayTxnID,
		Amount:       amount,
	}, nil
}

// ProcessGatewayCallback consumes at-least-once gateway notifications. The
// gateway transaction id on the pending ledger row is the idempotency key;
// anything already COMPLETED or FAILED acknowledges as a duplicate without
// side effects.
func (w *walletCommandsImpl) ProcessGatewayCallback(ctx context.Context, input CallbackInput) (*CallbackResult, error) {
	if !verifySignature(w.gatewayCfg.SigningSecret, input.RawPayload, input.Signature) {
		return nil, errs.ErrInvalidCallbackSignature
	}

	result := &CallbackResult{}
	err := w.uow.Within(ctx, func(ctx context.Context, tx shared.Tx) error {
		txn, err := tx.Wallets().FindTransactionByGatewayID(ctx, input.GatewayTxnID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				// Unknown reference: acknowledge, nothing to apply.
				result.Duplicate = true
				return nil
			}
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		if txn.Status != wallet.TxPending {
			result.Duplicate = true
			return nil
		}

		if !input.Succeeded {
			if err := tx.Wallets().MarkTransactionFailed(ctx, txn.ID); err != nil {
				return errs.Mark(err, errs.ErrDatabaseOperationFailed)
			}
			recordAudit(ctx, tx, shared.AuditEvent{
				Action:     "wallet.topup_failed",
				ActorID:    uuid.Nil,
				EntityType: "wallet_transaction",
				EntityID:   txn.ID,
				Detail:     map[string]any{"gateway_txn_id": input.GatewayTxnID},
			})
			return nil
		}

		credited, err := applyBalanceChangeByWallet(ctx, tx.Wallets(), w.clock, w.walletCfg.MaxUpdateAttempts, txn)
		if err != nil {
			return err
		}
		if err := tx.Wallets().MarkTransactionCompleted(ctx, txn.ID, credited); err != nil {
			return errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		recordAudit(ctx, tx, shared.AuditEvent{
			Action:     "wallet.topup_completed",
			ActorID:    uuid.Nil,
			EntityType: "wallet_transaction",
			EntityID:   txn.ID,
			Detail:     map[string]any{"gateway_txn_id": input.GatewayTxnID},
		})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// applyBalanceChangeByWallet credits the pending top-up amount onto its wallet
// with the same CAS loop as applyBalanceChange, but completes the existing
// PENDING row instead of appending a new one.
func applyBalanceChangeByWallet(
	ctx context.Context,
	wallets shared.WalletRepository,
	clk clock.Clock,
	maxAttempts int,
	pending *wallet.Transaction,
) (decimal.Decimal, error) {
	for attempt := 0; attempt < maxAttempts; attempt++ {
		w, err := wallets.FindByWalletID(ctx, pending.WalletID)
		if err != nil {
			if infra.IsKind(err, infra.KindNotFound) {
				return decimal.Zero, errs.ErrWalletNotFound
			}
			return decimal.Zero, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}

		newBalance, err := w.Apply(wallet.DirectionCredit, pending.Amount)
		if err != nil {
			if err == wallet.ErrNotActive {
				return decimal.Zero, errs.ErrWalletNotActive
			}
			return decimal.Zero, err
		}

		ok, err := wallets.CompareAndSetBalance(ctx, w.ID(), newBalance, w.Version())
		if err != nil {
			return decimal.Zero, errs.Mark(err, errs.ErrDatabaseOperationFailed)
		}
		if !ok {
			slog.Warn("wallet balance CAS lost race, retrying",
				"wallet_id", w.ID(), "attempt", attempt+1)
			continue
		}
		return newBalance, nil
	}
	return decimal.Zero, errs.ErrWalletContention
}

func verifySignature(secret string, payload []byte, signature string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

// recordAudit is fire-and-forget: audit failures are logged, never propagated,
// so they cannot abort the surrounding unit.
func recordAudit(ctx context.Context, tx shared.Tx, event shared.AuditEvent) {
	if err := tx.Audit().Record(ctx, event); err != nil {
		slog.Warn("failed to record audit event", "action", event.Action, "error", err.Error())
	}
}
