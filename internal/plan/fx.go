package plan

import (
	"github.com/shopstack/shopstack/internal/plan/repository"
	"github.com/shopstack/shopstack/internal/plan/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plan.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
