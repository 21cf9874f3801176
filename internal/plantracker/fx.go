package plantracker

import (
	"github.com/shopstack/shopstack/internal/plantracker/repository"
	"github.com/shopstack/shopstack/internal/plantracker/service"
	"go.uber.org/fx"
)

var Module = fx.Module("plantracker.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
