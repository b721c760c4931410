package queries

import (
	"context"

	"shopcore/internal/infra"
	"shopcore/internal/pkg/errs"

	"github.com/google/uuid"
)

type CartReadStore interface {
	FindByUser(ctx context.Context, userID uuid.UUID) (*CartView, error)
}

type CartQueries interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*CartView, error)
}

type cartQueriesImpl struct {
	store CartReadStore
}

func NewCartQueries(store CartReadStore) CartQueries {
	return &cartQueriesImpl{store: store}
}

func (q *cartQueriesImpl) GetByUser(ctx context.Context, userID uuid.UUID) (*CartView, error) {
	view, err := q.store.FindByUser(ctx, userID)
	if err != nil {
		if infra.IsKind(err, infra.KindNotFound) {
			// An absent cart reads as an empty cart.
			return &CartView{UserID: userID}, nil
		}
		return nil, errs.Mark(err, errs.ErrDatabaseOperationFailed)
	}
	return view, nil
}
