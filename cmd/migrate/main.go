// Command migrate creates or alters the tables of every persistence model and exits.
package main

import (
	"context"
	"log/slog"

	"projectbasis/config"
	logs "projectbasis/internal/infra/log"
	"projectbasis/internal/infra/persistence/postgres"

	"go.uber.org/fx"
	"gorm.io/gorm"
)

type migrateParams struct {
	fx.In
	fx.Lifecycle
	fx.Shutdowner

	DB     *gorm.DB
	Logger *slog.Logger
}

func main() {
	fx.New(
		fx.Provide(
			config.New,
			logs.New,
			postgres.New,
		),
		fx.Invoke(migrate),
	).Run()
}

func migrate(params migrateParams) {
	params.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := postgres.SyncSchema(params.DB.WithContext(ctx)); err != nil {
				return err
			}
			params.Logger.Info("Schema synchronised")

			return params.Shutdown()
		},
	})
}
