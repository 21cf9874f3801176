package sweeper

import (
	"context"

	"go.uber.org/fx"
)

var Module = fx.Module("sweeper",
	fx.Provide(ProvideConfig),
	fx.Provide(NewLocker),
	fx.Provide(New),
	fx.Invoke(RegisterSweeper),
)

func RegisterSweeper(lc fx.Lifecycle, sweep *Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			runCtx, cancel := context.WithCancel(context.Background())

			go sweep.RunForever(runCtx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
