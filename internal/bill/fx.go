package bill

import (
	"github.com/shopstack/shopstack/internal/bill/repository"
	"github.com/shopstack/shopstack/internal/bill/service"
	"go.uber.org/fx"
)

var Module = fx.Module("bill.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
