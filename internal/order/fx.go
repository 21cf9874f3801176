package order

import (
	"github.com/shopstack/shopstack/internal/order/repository"
	"github.com/shopstack/shopstack/internal/order/service"
	"go.uber.org/fx"
)

var Module = fx.Module("order.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
