package readstore

import (
	"context"

	"shopcore/internal/infra"
	"shopcore/internal/infra/db"
	"shopcore/internal/pkg/pgconv"
	"shopcore/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type WalletReadStore struct {
	db db.DBTX
}

func NewWalletReadStore(db db.DBTX) *WalletReadStore {
	return &WalletReadStore{db: db}
}

const findWalletViewSQL = `
SELECT id, balance, currency, status
FROM wallets
WHERE user_id = $1`

const recentTransactionsSQL = `
SELECT id, direction, amount, balance_after, ref_type, ref_id, status, description, created_at
FROM wallet_transactions
WHERE wallet_id = $1
ORDER BY created_at DESC
LIMIT $2`

func (s *WalletReadStore) FindByUser(ctx context.Context, userID uuid.UUID, txLimit int32) (*queries.WalletView, error) {
	var (
		id               pgtype.UUID
		balance          pgtype.Numeric
		currency, status pgtype.Text
	)
	err := s.db.QueryRow(ctx, findWalletViewSQL, pgconv.UUIDToPgtype(userID)).
		Scan(&id, &balance, &currency, &status)
	if err != nil {
		if pgconv.IsNoRows(err) {
			return nil, infra.WrapRepoErr("wallet not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to find wallet view", err)
	}

	view := &queries.WalletView{
		ID:       uuid.UUID(id.Bytes),
		Currency: currency.String,
		Status:   status.String,
	}
	if view.Balance, err = pgconv.DecimalFromNumeric(balance); err != nil {
		return nil, infra.WrapRepoErr("invalid wallet balance", err)
	}

	rows, err := s.db.Query(ctx, recentTransactionsSQL, id, txLimit)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list wallet transactions", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			txnID            pgtype.UUID
			direction        pgtype.Text
			amount, balAfter pgtype.Numeric
			refType          pgtype.Text
			refID            pgtype.UUID
			txnStatus        pgtype.Text
			description      pgtype.Text
			createdAt        pgtype.Timestamptz
		)
		if err := rows.Scan(&txnID, &direction, &amount, &balAfter, &refType, &refID, &txnStatus, &description, &createdAt); err != nil {
			return nil, infra.WrapRepoErr("failed to scan wallet transaction", err)
		}
		txn := queries.TransactionView{
			ID:          uuid.UUID(txnID.Bytes),
			Direction:   direction.String,
			RefType:     refType.String,
			RefID:       pgconv.UUIDPtrFromPgtype(refID),
			Status:      txnStatus.String,
			Description: description.String,
			CreatedAt:   pgconv.TimeFromPgtype(createdAt),
		}
		if txn.Amount, err = pgconv.DecimalFromNumeric(amount); err != nil {
			return nil, infra.WrapRepoErr("invalid transaction amount", err)
		}
		if txn.BalanceAfter, err = pgconv.DecimalFromNumeric(balAfter); err != nil {
			return nil, infra.WrapRepoErr("invalid transaction balance", err)
		}
		view.Transactions = append(view.Transactions, txn)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate wallet transactions", err)
	}

	return view, nil
}
