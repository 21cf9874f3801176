package report

import (
	"github.com/shopstack/shopstack/internal/report/repository"
	"github.com/shopstack/shopstack/internal/report/service"
	"go.uber.org/fx"
)

var Module = fx.Module("report.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
