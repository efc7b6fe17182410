package completion

import "go.uber.org/fx"

var Module = fx.Module("completion",
	fx.Provide(func(client *AnthropicClient) Client { return client }),
	fx.Provide(NewAnthropicClient),
)
