package queries

import (
	"context"

	"shopcore/internal/infra"
	"shopcore/internal/pkg/errs"

	"github.com/google/uuid"
)

type WalletReadStore interface {
	FindByUser(ctx context.Context, userID uuid.UUID, txLimit int32) (*WalletView, error)
}

type WalletQueries interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*WalletView, error)
}

type walletQueriesImpl struct {
	store WalletReadStore
}

func NewWalletQueries(store WalletReadStore) WalletQueries {
	return &walletQueriesImpl{store: store}
}

const recentTransactionLimit = 20

func (q *walletQueriesImpl) GetByUser(ctx context.Context, userID uuid.UUID) (*WalletView, error) {
	view, err := q.store.FindByUser(ctx, userID, recentTransactionLimit)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			return nil, errs.ErrWalletNotFound
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}
