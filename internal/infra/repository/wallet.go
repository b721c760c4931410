package repository

import (
	"context"

	"shopcore/internal/domain/wallet"
	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

type WalletRepository struct {
	db db.DBTX
}

func NewWalletRepository(db db.DBTX) *WalletRepository {
	return &WalletRepository{db: db}
}

const findWalletByUserSQL = `
SELECT id, user_id, balance, currency, status, version
FROM wallets
WHERE user_id = $1`

const findWalletByIDSQL = `
SELECT id, user_id, balance, currency, status, version
FROM wallets
WHERE id = $1`

func (r *WalletRepository) FindByUser(ctx context.Context, userID uuid.UUID) (*wallet.Wallet, error) {
	return r.scanWallet(r.db.QueryRow(ctx, findWalletByUserSQL, pgconv.UUIDToPgtype(userID)))
}

func (r *WalletRepository) FindByWalletID(ctx context.Context, walletID uuid.UUID) (*wallet.Wallet, error) {
	return r.scanWallet(r.db.QueryRow(ctx, findWalletByIDSQL, pgconv.UUIDToPgtype(walletID)))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *WalletRepository) scanWallet(row rowScanner) (*wallet.Wallet, error) {
	var (
		id, userID       pgtype.UUID
		balance          pgtype.Numeric
		currency, status pgtype.Text
		version          int64
	)
	if err := row.Scan(&id, &userID, &balance, &currency, &status, &version); err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("wallet not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find wallet", err)
	}

	balanceDec, err := pgconv.DecimalFromNumeric(balance)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid wallet balance", err)
	}

	return wallet.Reconstruct(
		uuid.UUID(id.Bytes),
		uuid.UUID(userID.Bytes),
		balanceDec,
		currency.String,
		wallet.Status(status.String),
		version,
	), nil
}

const casBalanceSQL = `
UPDATE wallets
SET balance = $2, version = version + 1, updated_at = now()
WHERE id = $1 AND version = $3`

// CompareAndSetBalance writes the new balance only when the version column
// still matches the caller's read. False means a concurrent writer bumped the
// version first; nothing was written.
func (r *WalletRepository) CompareAndSetBalance(ctx context.Context, walletID uuid.UUID, newBalance decimal.Decimal, expectedVersion int64) (bool, error) {
	tag, err := r.db.Exec(ctx, casBalanceSQL,
		pgconv.UUIDToPgtype(walletID),
		pgconv.DecimalToNumeric(newBalance),
		expectedVersion,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to update wallet balance", err)
	}
	return tag.RowsAffected() == 1, nil
}

const insertTransactionSQL = `
INSERT INTO wallet_transactions (
    id, wallet_id, direction, amount, balance_after,
    ref_type, ref_id, gateway_txn_id, status, actor, description, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

func (r *WalletRepository) InsertTransaction(ctx context.Context, txn wallet.Transaction) error {
	_, err := r.db.Exec(ctx, insertTransactionSQL,
		pgconv.UUIDToPgtype(txn.ID),
		pgconv.UUIDToPgtype(txn.WalletID),
		pgconv.StringToPgtype(string(txn.Direction)),
		pgconv.DecimalToNumeric(txn.Amount),
		pgconv.DecimalToNumeric(txn.BalanceAfter),
		pgconv.StringToPgtype(string(txn.RefType)),
		pgconv.UUIDPtrToPgtype(txn.RefID),
		pgconv.StringPtrToPgtype(txn.GatewayTxnID),
		pgconv.StringToPgtype(string(txn.Status)),
		pgconv.StringToPgtype(string(txn.Actor)),
		pgconv.StringToPgtype(txn.Description),
		pgconv.TimeToPgtype(txn.CreatedAt),
	)
	if err != nil {
		return wrapPgErr("failed to insert wallet transaction", err)
	}
	return nil
}

const findTransactionByGatewaySQL = `
SELECT id, wallet_id, direction, amount, balance_after,
       ref_type, ref_id, gateway_txn_id, status, actor, description, created_at
FROM wallet_transactions
WHERE gateway_txn_id = $1
FOR UPDATE`

// FindTransactionByGatewayID locks the ledger row so concurrent deliveries of
// the same gateway notification serialize on it.
func (r *WalletRepository) FindTransactionByGatewayID(ctx context.Context, gatewayTxnID string) (*wallet.Transaction, error) {
	var (
		id, walletID     pgtype.UUID
		direction        pgtype.Text
		amount, balAfter pgtype.Numeric
		refType          pgtype.Text
		refID            pgtype.UUID
		gatewayID        pgtype.Text
		status, actor    pgtype.Text
		description      pgtype.Text
		createdAt        pgtype.Timestamptz
	)
	err := r.db.QueryRow(ctx, findTransactionByGatewaySQL, pgconv.StringToPgtype(gatewayTxnID)).Scan(
		&id, &walletID, &direction, &amount, &balAfter,
		&refType, &refID, &gatewayID, &status, &actor, &description, &createdAt,
	)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("wallet transaction not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find wallet transaction", err)
	}

	amountDec, err := pgconv.DecimalFromNumeric(amount)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid transaction amount", err)
	}
	balAfterDec, err := pgconv.DecimalFromNumeric(balAfter)
	if err != nil {
		return nil, infra.WrapRepoErr("invalid transaction balance", err)
	}

	return &wallet.Transaction{
		ID:           uuid.UUID(id.Bytes),
		WalletID:     uuid.UUID(walletID.Bytes),
		Direction:    wallet.Direction(direction.String),
		Amount:       amountDec,
		BalanceAfter: balAfterDec,
		RefType:      wallet.ReferenceType(refType.String),
		RefID:        pgconv.UUIDPtrFromPgtype(refID),
		GatewayTxnID: pgconv.StringPtrFromPgtype(gatewayID),
		Status:       wallet.TxStatus(status.String),
		Actor:        wallet.Actor(actor.String),
		Description:  description.String,
		CreatedAt:    createdAt.Time,
	}, nil
}

const markTransactionCompletedSQL = `
UPDATE wallet_transactions
SET status = $2, balance_after = $3
WHERE id = $1 AND status = $4`

func (r *WalletRepository) MarkTransactionCompleted(ctx context.Context, txnID uuid.UUID, balanceAfter decimal.Decimal) error {
	tag, err := r.db.Exec(ctx, markTransactionCompletedSQL,
		pgconv.UUIDToPgtype(txnID),
		pgconv.StringToPgtype(string(wallet.TxCompleted)),
		pgconv.DecimalToNumeric(balanceAfter),
		pgconv.StringToPgtype(string(wallet.TxPending)),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to complete wallet transaction", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("transaction is not pending", nil, infra.KindConflict)
	}
	return nil
}

const markTransactionFailedSQL = `
UPDATE wallet_transactions
SET status = $2
WHERE id = $1 AND status = $3`

func (r *WalletRepository) MarkTransactionFailed(ctx context.Context, txnID uuid.UUID) error {
	tag, err := r.db.Exec(ctx, markTransactionFailedSQL,
		pgconv.UUIDToPgtype(txnID),
		pgconv.StringToPgtype(string(wallet.TxFailed)),
		pgconv.StringToPgtype(string(wallet.TxPending)),
	)
	if err != nil {
		return infra.WrapRepoErr("failed to mark wallet transaction failed", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("transaction is not pending", nil, infra.KindConflict)
	}
	return nil
}
