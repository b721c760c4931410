package components

import (
	"shopcore/internal/infra/db"
	"shopcore/internal/infra/readstore"
	"shopcore/internal/infra/uow"
	"shopcore/internal/usecase/queries"
	"shopcore/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		// UnitOfWork owns the write path; every repository is handed out
		// lazily on an open transaction.
		uow.NewPostgresUoW,
		// Read side runs on the pool, outside transactions.
		fx.Annotate(
			readstore.NewOrderReadStore,
			fx.As(new(queries.OrderReadStore)),
		),
		fx.Annotate(
			readstore.NewWalletReadStore,
			fx.As(new(queries.WalletReadStore)),
		),
		fx.Annotate(
			readstore.NewCartReadStore,
			fx.As(new(queries.CartReadStore)),
		),
		fx.Annotate(
			readstore.NewCatalogReadStore,
			fx.As(new(shared.CatalogReadStore)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}
