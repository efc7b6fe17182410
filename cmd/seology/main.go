package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/seology-ai/seology/internal/audit"
	"github.com/seology-ai/seology/internal/chat"
	"github.com/seology-ai/seology/internal/clock"
	"github.com/seology-ai/seology/internal/completion"
	"github.com/seology-ai/seology/internal/config"
	"github.com/seology-ai/seology/internal/connection"
	"github.com/seology-ai/seology/internal/creditmetrics"
	"github.com/seology-ai/seology/internal/migration"
	"github.com/seology-ai/seology/internal/observability"
	"github.com/seology-ai/seology/internal/observability/logger"
	"github.com/seology-ai/seology/internal/seed"
	"github.com/seology-ai/seology/internal/server"
	"github.com/seology-ai/seology/internal/store"
	"github.com/seology-ai/seology/internal/usage"
	"github.com/seology-ai/seology/pkg/db"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var version = "dev"

func main() {
	app := fx.New(
		config.Module,
		logger.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		fx.Invoke(func(conn *gorm.DB, cfg config.Config) error {
			sqlDB, err := conn.DB()
			if err != nil {
				return err
			}
			if err := migration.RunMigrations(sqlDB); err != nil {
				return err
			}
			if cfg.Bootstrap.SeedDevData && !cfg.IsProduction() {
				return seed.EnsureDemoShop(conn)
			}
			return nil
		}),

		connection.Module,
		store.Module,
		completion.Module,
		audit.Module,
		usage.Module,
		chat.Module,
		creditmetrics.Module,

		fx.Provide(server.NewEngine),
		fx.Provide(server.NewServer),
		fx.Invoke(func(s *server.Server) {
			s.RegisterAPIRoutes()
		}),
		fx.Invoke(server.RunHTTP),
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
