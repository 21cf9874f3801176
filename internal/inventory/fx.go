package inventory

import (
	"github.com/shopstack/shopstack/internal/inventory/repository"
	"github.com/shopstack/shopstack/internal/inventory/service"
	"go.uber.org/fx"
)

var Module = fx.Module("inventory.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
