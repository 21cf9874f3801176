package organization

import (
	"github.com/shopstack/shopstack/internal/organization/repository"
	"github.com/shopstack/shopstack/internal/organization/service"
	"go.uber.org/fx"
)

var Module = fx.Module("organization.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
