package store

import (
	"github.com/seology-ai/seology/internal/store/service"
	"go.uber.org/fx"
)

var Module = fx.Module("store.snapshot",
	fx.Provide(service.NewService),
)
