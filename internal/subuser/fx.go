package subuser

import (
	"github.com/shopstack/shopstack/internal/subuser/repository"
	"github.com/shopstack/shopstack/internal/subuser/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subuser.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
