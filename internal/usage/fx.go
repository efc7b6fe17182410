package usage

import (
	"github.com/bwmarrin/snowflake"
	"github.com/seology-ai/seology/internal/events"
	"github.com/seology-ai/seology/internal/usage/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("usage.service",
	fx.Provide(func(db *gorm.DB, genID *snowflake.Node) *events.Outbox {
		return events.NewOutbox(db, genID)
	}),
	fx.Provide(service.NewService),
)
