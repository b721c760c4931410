package components

import (
	"shopcore/internal/domain/order"
	"shopcore/internal/pkg/clock"
	"shopcore/internal/usecase/commands"
	"shopcore/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	fx.Annotate(
		order.NewStandardPricing,
		fx.As(new(order.PricingPolicy)),
	),
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewCartCommands,
		commands.NewCheckoutCommands,
		commands.NewOrderCommands,
		commands.NewWalletCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewCartQueries,
		queries.NewOrderQueries,
		queries.NewWalletQueries,
	),
)
