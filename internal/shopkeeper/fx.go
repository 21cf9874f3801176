package shopkeeper

import "go.uber.org/fx"

var Module = fx.Module("shopkeeper",
	fx.Provide(Provide),
)
