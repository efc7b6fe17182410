package chat

import "go.uber.org/fx"

var Module = fx.Module("chat.service",
	fx.Provide(NewService),
)
